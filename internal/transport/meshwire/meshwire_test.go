package meshwire

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protowire"

	"github.com/rmacdonaldsmith/meshchat-go/pkg/transport"
)

// nodeInfoBytes builds a FromRadio{node_info} by hand, including fields meshwire
// does not model (position=3, snr=4) to check they are skipped.
func nodeInfoBytes() []byte {
	var user []byte
	user = protowire.AppendTag(user, 1, protowire.BytesType)
	user = protowire.AppendString(user, "!0000002a")
	user = protowire.AppendTag(user, 2, protowire.BytesType)
	user = protowire.AppendString(user, "Alpha Bravo")
	user = protowire.AppendTag(user, 3, protowire.BytesType)
	user = protowire.AppendString(user, "AB")
	user = protowire.AppendTag(user, 5, protowire.VarintType) // hw_model
	user = protowire.AppendVarint(user, 9)

	var node []byte
	node = protowire.AppendTag(node, 1, protowire.VarintType)
	node = protowire.AppendVarint(node, 42)
	node = protowire.AppendTag(node, 2, protowire.BytesType)
	node = protowire.AppendBytes(node, user)
	node = protowire.AppendTag(node, 3, protowire.BytesType) // position
	node = protowire.AppendBytes(node, []byte{0x08, 0x01})
	node = protowire.AppendTag(node, 4, protowire.Fixed32Type) // snr
	node = protowire.AppendFixed32(node, 0x41200000)

	var msg []byte
	msg = protowire.AppendTag(msg, 1, protowire.VarintType)
	msg = protowire.AppendVarint(msg, 7)
	msg = protowire.AppendTag(msg, 4, protowire.BytesType)
	msg = protowire.AppendBytes(msg, node)
	return msg
}

func TestUnmarshalFromRadio_NodeInfo(t *testing.T) {
	msg, err := UnmarshalFromRadio(nodeInfoBytes())
	require.NoError(t, err)
	require.NotNil(t, msg.NodeInfo)
	require.NotNil(t, msg.NodeInfo.User)

	assert.Equal(t, uint32(7), msg.ID)
	assert.Equal(t, uint32(42), msg.NodeInfo.Num)
	assert.Equal(t, "!0000002a", msg.NodeInfo.User.ID)
	assert.Equal(t, "Alpha Bravo", msg.NodeInfo.User.LongName)
	assert.Equal(t, "AB", msg.NodeInfo.User.ShortName)

	rec := msg.NodeInfo.Record()
	assert.Equal(t, transport.NodeID(42), rec.Num)
	assert.Equal(t, "AB", rec.User.ShortName)
}

func TestUnmarshalFromRadio_NodeWithoutUser(t *testing.T) {
	f := &FromRadio{NodeInfo: &NodeInfo{Num: 5}}
	msg, err := UnmarshalFromRadio(f.Marshal())
	require.NoError(t, err)
	require.NotNil(t, msg.NodeInfo)
	assert.Nil(t, msg.NodeInfo.User)
	assert.Nil(t, msg.NodeInfo.Record().User)
}

func TestUnmarshalFromRadio_TextPacket(t *testing.T) {
	f := &FromRadio{Packet: &MeshPacket{
		From:    0xa1b2c3d4,
		To:      uint32(transport.BroadcastID),
		Channel: 2,
		ID:      0x1234,
		Decoded: &Data{PortNum: transport.PortTextMessage, Payload: []byte("hi")},
	}}

	msg, err := UnmarshalFromRadio(f.Marshal())
	require.NoError(t, err)
	require.NotNil(t, msg.Packet)

	pkt := msg.Packet.Packet()
	assert.Equal(t, transport.NodeID(0xa1b2c3d4), pkt.From)
	assert.Equal(t, transport.BroadcastID, pkt.To)
	assert.Equal(t, uint32(2), pkt.Channel)
	assert.Equal(t, uint32(0x1234), pkt.ID)
	require.NotNil(t, pkt.Decoded)
	assert.Equal(t, transport.PortTextMessage, pkt.Decoded.Port)
	assert.Equal(t, []byte("hi"), pkt.Decoded.Payload)
}

func TestUnmarshalFromRadio_EncryptedPacket(t *testing.T) {
	f := &FromRadio{Packet: &MeshPacket{From: 9, Encrypted: []byte{1, 2, 3}}}
	msg, err := UnmarshalFromRadio(f.Marshal())
	require.NoError(t, err)

	assert.Equal(t, []byte{1, 2, 3}, msg.Packet.Encrypted)
	assert.Nil(t, msg.Packet.Packet().Decoded)
}

func TestUnmarshalFromRadio_ConfigComplete(t *testing.T) {
	var b []byte
	b = protowire.AppendTag(b, 7, protowire.VarintType)
	b = protowire.AppendVarint(b, 0xdeadbeef)

	msg, err := UnmarshalFromRadio(b)
	require.NoError(t, err)
	assert.True(t, msg.HasConfigComplete)
	assert.Equal(t, uint32(0xdeadbeef), msg.ConfigCompleteID)

	zero := &FromRadio{HasConfigComplete: true}
	msg, err = UnmarshalFromRadio(zero.Marshal())
	require.NoError(t, err)
	assert.True(t, msg.HasConfigComplete, "presence survives a zero id")
}

func TestUnmarshalFromRadio_Truncated(t *testing.T) {
	b := nodeInfoBytes()
	_, err := UnmarshalFromRadio(b[:len(b)-3])
	assert.Error(t, err)
}

func TestToRadio_TextPacketEncoding(t *testing.T) {
	msg := &ToRadio{Packet: &MeshPacket{
		To:       uint32(transport.BroadcastID),
		ID:       77,
		HopLimit: 3,
		Decoded:  &Data{PortNum: transport.PortTextMessage, Payload: []byte("hello")},
	}}
	b := msg.Marshal()

	// First field is ToRadio.packet (1, bytes)
	num, typ, n := protowire.ConsumeTag(b)
	require.Greater(t, n, 0)
	assert.Equal(t, protowire.Number(1), num)
	assert.Equal(t, protowire.BytesType, typ)

	decoded, err := UnmarshalToRadio(b)
	require.NoError(t, err)
	require.NotNil(t, decoded.Packet)
	assert.Equal(t, uint32(0xffffffff), decoded.Packet.To)
	assert.Equal(t, uint32(77), decoded.Packet.ID)
	assert.Equal(t, uint32(3), decoded.Packet.HopLimit)
	assert.False(t, decoded.Packet.WantAck)
	assert.Equal(t, transport.PortTextMessage, decoded.Packet.Decoded.PortNum)
	assert.Equal(t, "hello", string(decoded.Packet.Decoded.Payload))
}

func TestToRadio_ControlMessages(t *testing.T) {
	want, err := UnmarshalToRadio((&ToRadio{WantConfigID: 99}).Marshal())
	require.NoError(t, err)
	assert.Equal(t, uint32(99), want.WantConfigID)

	hb := (&ToRadio{Heartbeat: true}).Marshal()
	assert.Equal(t, []byte{0x3a, 0x00}, hb)
	decoded, err := UnmarshalToRadio(hb)
	require.NoError(t, err)
	assert.True(t, decoded.Heartbeat)

	bye, err := UnmarshalToRadio((&ToRadio{Disconnect: true}).Marshal())
	require.NoError(t, err)
	assert.True(t, bye.Disconnect)
}

func TestAppendFrame(t *testing.T) {
	frame, err := AppendFrame(nil, []byte{0x01, 0x02, 0x03})
	require.NoError(t, err)
	assert.Equal(t, []byte{0x94, 0xc3, 0x00, 0x03, 0x01, 0x02, 0x03}, frame)

	_, err = AppendFrame(nil, make([]byte, MaxPayload+1))
	assert.ErrorIs(t, err, ErrFrameTooLarge)
}

func TestFrameReader_SkipsConsoleNoise(t *testing.T) {
	var stream bytes.Buffer
	stream.WriteString("INFO | booting\r\n")
	f1, _ := AppendFrame(nil, []byte("one"))
	stream.Write(f1)
	stream.Write([]byte{0x94, 'x', '\n'}) // stray Start1
	stream.WriteString("DEBUG | radio ready\n")
	f2, _ := AppendFrame(nil, []byte("two"))
	stream.Write(f2)

	var console []string
	fr := NewFrameReader(&stream)
	fr.OnConsole = func(line string) { console = append(console, line) }

	p, err := fr.Next()
	require.NoError(t, err)
	assert.Equal(t, "one", string(p))

	p, err = fr.Next()
	require.NoError(t, err)
	assert.Equal(t, "two", string(p))

	_, err = fr.Next()
	assert.ErrorIs(t, err, io.EOF)

	assert.Equal(t, []string{"INFO | booting", "\x94x", "DEBUG | radio ready"}, console)
}

func TestFrameReader_SkipsOversizeHeader(t *testing.T) {
	var stream bytes.Buffer
	stream.Write([]byte{0x94, 0xc3, 0x7f, 0xff})
	f, _ := AppendFrame(nil, []byte("ok"))
	stream.Write(f)

	p, err := NewFrameReader(&stream).Next()
	require.NoError(t, err)
	assert.Equal(t, "ok", string(p))
}

func TestFrameReader_EmptyPayload(t *testing.T) {
	f, _ := AppendFrame(nil, nil)
	p, err := NewFrameReader(bytes.NewReader(f)).Next()
	require.NoError(t, err)
	assert.Empty(t, p)
}
