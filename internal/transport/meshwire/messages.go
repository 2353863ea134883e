package meshwire

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/rmacdonaldsmith/meshchat-go/pkg/transport"
)

// User is the user block of a node.
type User struct {
	ID        string
	LongName  string
	ShortName string
}

// NodeInfo is one entry of the radio's node database.
type NodeInfo struct {
	Num  uint32
	User *User
}

// MyNodeInfo identifies the radio the client is attached to.
type MyNodeInfo struct {
	MyNodeNum uint32
}

// Data is an application payload.
type Data struct {
	PortNum transport.PortNum
	Payload []byte
}

// MeshPacket is a packet sent or received over the mesh.
type MeshPacket struct {
	From      uint32
	To        uint32
	Channel   uint32
	ID        uint32
	HopLimit  uint32
	WantAck   bool
	Decoded   *Data
	Encrypted []byte
}

// FromRadio is one message from the radio to the client. At most one of the
// payload fields is set.
type FromRadio struct {
	ID                uint32
	Packet            *MeshPacket
	MyInfo            *MyNodeInfo
	NodeInfo          *NodeInfo
	ConfigCompleteID  uint32
	HasConfigComplete bool
	Rebooted          bool
}

// ToRadio is one message from the client to the radio. At most one of the payload
// fields should be set.
type ToRadio struct {
	Packet       *MeshPacket
	WantConfigID uint32
	Disconnect   bool
	Heartbeat    bool
}

// Marshal encodes u.
func (u *User) Marshal() []byte {
	var b []byte
	b = appendString(b, 1, u.ID)
	b = appendString(b, 2, u.LongName)
	b = appendString(b, 3, u.ShortName)
	return b
}

// Unmarshal decodes b into u.
func (u *User) Unmarshal(b []byte) error {
	return walk(b, func(num protowire.Number, typ protowire.Type, v []byte) int {
		if typ != protowire.BytesType {
			return skip
		}
		switch num {
		case 1:
			return consumeString(v, &u.ID)
		case 2:
			return consumeString(v, &u.LongName)
		case 3:
			return consumeString(v, &u.ShortName)
		}
		return skip
	})
}

// Marshal encodes n.
func (n *NodeInfo) Marshal() []byte {
	var b []byte
	b = appendUint32(b, 1, n.Num)
	if n.User != nil {
		b = appendMessage(b, 2, n.User.Marshal())
	}
	return b
}

// Unmarshal decodes b into n.
func (n *NodeInfo) Unmarshal(b []byte) error {
	var inner error
	err := walk(b, func(num protowire.Number, typ protowire.Type, v []byte) int {
		switch {
		case num == 1 && typ == protowire.VarintType:
			return consumeUint32(v, &n.Num)
		case num == 2 && typ == protowire.BytesType:
			n.User = &User{}
			return consumeMessage(v, n.User.Unmarshal, &inner)
		}
		return skip
	})
	if err != nil {
		return err
	}
	return inner
}

// Record converts n to the transport's raw node record.
func (n *NodeInfo) Record() transport.NodeRecord {
	rec := transport.NodeRecord{Num: transport.NodeID(n.Num)}
	if n.User != nil {
		rec.User = &transport.UserProfile{
			ID:        n.User.ID,
			ShortName: n.User.ShortName,
			LongName:  n.User.LongName,
		}
	}
	return rec
}

// Marshal encodes m.
func (m *MyNodeInfo) Marshal() []byte {
	return appendUint32(nil, 1, m.MyNodeNum)
}

// Unmarshal decodes b into m.
func (m *MyNodeInfo) Unmarshal(b []byte) error {
	return walk(b, func(num protowire.Number, typ protowire.Type, v []byte) int {
		if num == 1 && typ == protowire.VarintType {
			return consumeUint32(v, &m.MyNodeNum)
		}
		return skip
	})
}

// Marshal encodes d.
func (d *Data) Marshal() []byte {
	var b []byte
	b = appendUint32(b, 1, uint32(d.PortNum))
	b = appendBytes(b, 2, d.Payload)
	return b
}

// Unmarshal decodes b into d.
func (d *Data) Unmarshal(b []byte) error {
	return walk(b, func(num protowire.Number, typ protowire.Type, v []byte) int {
		switch {
		case num == 1 && typ == protowire.VarintType:
			var port uint32
			n := consumeUint32(v, &port)
			d.PortNum = transport.PortNum(port)
			return n
		case num == 2 && typ == protowire.BytesType:
			return consumeBytes(v, &d.Payload)
		}
		return skip
	})
}

// Marshal encodes p.
func (p *MeshPacket) Marshal() []byte {
	var b []byte
	b = appendFixed32(b, 1, p.From)
	b = appendFixed32(b, 2, p.To)
	b = appendUint32(b, 3, p.Channel)
	if p.Decoded != nil {
		b = appendMessage(b, 4, p.Decoded.Marshal())
	} else if p.Encrypted != nil {
		b = appendBytes(b, 5, p.Encrypted)
	}
	b = appendFixed32(b, 6, p.ID)
	b = appendUint32(b, 9, p.HopLimit)
	b = appendBool(b, 10, p.WantAck)
	return b
}

// Unmarshal decodes b into p.
func (p *MeshPacket) Unmarshal(b []byte) error {
	var inner error
	err := walk(b, func(num protowire.Number, typ protowire.Type, v []byte) int {
		switch {
		case num == 1 && typ == protowire.Fixed32Type:
			return consumeFixed32(v, &p.From)
		case num == 2 && typ == protowire.Fixed32Type:
			return consumeFixed32(v, &p.To)
		case num == 3 && typ == protowire.VarintType:
			return consumeUint32(v, &p.Channel)
		case num == 4 && typ == protowire.BytesType:
			p.Decoded = &Data{}
			return consumeMessage(v, p.Decoded.Unmarshal, &inner)
		case num == 5 && typ == protowire.BytesType:
			return consumeBytes(v, &p.Encrypted)
		case num == 6 && typ == protowire.Fixed32Type:
			return consumeFixed32(v, &p.ID)
		case num == 9 && typ == protowire.VarintType:
			return consumeUint32(v, &p.HopLimit)
		case num == 10 && typ == protowire.VarintType:
			return consumeBool(v, &p.WantAck)
		}
		return skip
	})
	if err != nil {
		return err
	}
	return inner
}

// Packet converts p to the transport's inbound packet. Decoded stays nil for
// packets the radio could not decrypt.
func (p *MeshPacket) Packet() *transport.Packet {
	pkt := &transport.Packet{
		ID:      p.ID,
		From:    transport.NodeID(p.From),
		To:      transport.NodeID(p.To),
		Channel: p.Channel,
	}
	if p.Decoded != nil {
		pkt.Decoded = &transport.Data{
			Port:    p.Decoded.PortNum,
			Payload: p.Decoded.Payload,
		}
	}
	return pkt
}

// Marshal encodes f.
func (f *FromRadio) Marshal() []byte {
	var b []byte
	b = appendUint32(b, 1, f.ID)
	switch {
	case f.Packet != nil:
		b = appendMessage(b, 2, f.Packet.Marshal())
	case f.MyInfo != nil:
		b = appendMessage(b, 3, f.MyInfo.Marshal())
	case f.NodeInfo != nil:
		b = appendMessage(b, 4, f.NodeInfo.Marshal())
	case f.HasConfigComplete:
		b = protowire.AppendTag(b, 7, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(f.ConfigCompleteID))
	case f.Rebooted:
		b = appendBool(b, 8, true)
	}
	return b
}

// UnmarshalFromRadio decodes one FromRadio message.
func UnmarshalFromRadio(b []byte) (*FromRadio, error) {
	f := &FromRadio{}
	var inner error
	err := walk(b, func(num protowire.Number, typ protowire.Type, v []byte) int {
		switch {
		case num == 1 && typ == protowire.VarintType:
			return consumeUint32(v, &f.ID)
		case num == 2 && typ == protowire.BytesType:
			f.Packet = &MeshPacket{}
			return consumeMessage(v, f.Packet.Unmarshal, &inner)
		case num == 3 && typ == protowire.BytesType:
			f.MyInfo = &MyNodeInfo{}
			return consumeMessage(v, f.MyInfo.Unmarshal, &inner)
		case num == 4 && typ == protowire.BytesType:
			f.NodeInfo = &NodeInfo{}
			return consumeMessage(v, f.NodeInfo.Unmarshal, &inner)
		case num == 7 && typ == protowire.VarintType:
			f.HasConfigComplete = true
			return consumeUint32(v, &f.ConfigCompleteID)
		case num == 8 && typ == protowire.VarintType:
			return consumeBool(v, &f.Rebooted)
		}
		return skip
	})
	if err == nil {
		err = inner
	}
	if err != nil {
		return nil, fmt.Errorf("decode FromRadio: %w", err)
	}
	return f, nil
}

// Marshal encodes t.
func (t *ToRadio) Marshal() []byte {
	var b []byte
	switch {
	case t.Packet != nil:
		b = appendMessage(b, 1, t.Packet.Marshal())
	case t.WantConfigID != 0:
		b = appendUint32(b, 3, t.WantConfigID)
	case t.Disconnect:
		b = appendBool(b, 4, true)
	case t.Heartbeat:
		b = appendMessage(b, 7, nil)
	}
	return b
}

// UnmarshalToRadio decodes one ToRadio message.
func UnmarshalToRadio(b []byte) (*ToRadio, error) {
	t := &ToRadio{}
	var inner error
	err := walk(b, func(num protowire.Number, typ protowire.Type, v []byte) int {
		switch {
		case num == 1 && typ == protowire.BytesType:
			t.Packet = &MeshPacket{}
			return consumeMessage(v, t.Packet.Unmarshal, &inner)
		case num == 3 && typ == protowire.VarintType:
			return consumeUint32(v, &t.WantConfigID)
		case num == 4 && typ == protowire.VarintType:
			return consumeBool(v, &t.Disconnect)
		case num == 7 && typ == protowire.BytesType:
			t.Heartbeat = true
			return skip
		}
		return skip
	})
	if err == nil {
		err = inner
	}
	if err != nil {
		return nil, fmt.Errorf("decode ToRadio: %w", err)
	}
	return t, nil
}
