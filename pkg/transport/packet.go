package transport

import (
	"fmt"
	"strconv"
)

// NodeID is a mesh node number. Zero means "absent".
type NodeID uint32

// BroadcastID addresses every node on the mesh.
const BroadcastID NodeID = 0xffffffff

// String renders the id the way the radio firmware does, e.g. "!a1b2c3d4".
func (id NodeID) String() string {
	return fmt.Sprintf("!%08x", uint32(id))
}

// ParseNodeID accepts "!a1b2c3d4", "0xa1b2c3d4" or a decimal node number.
func ParseNodeID(s string) (NodeID, error) {
	var (
		v   uint64
		err error
	)
	switch {
	case len(s) > 1 && s[0] == '!':
		v, err = strconv.ParseUint(s[1:], 16, 32)
	case len(s) > 2 && (s[:2] == "0x" || s[:2] == "0X"):
		v, err = strconv.ParseUint(s[2:], 16, 32)
	default:
		v, err = strconv.ParseUint(s, 10, 32)
	}
	if err != nil {
		return 0, fmt.Errorf("invalid node id %q: %w", s, err)
	}
	return NodeID(v), nil
}

// UserProfile is the user block attached to a node record.
type UserProfile struct {
	ID        string
	ShortName string
	LongName  string
}

// NodeRecord is one raw entry from the radio's node database.
type NodeRecord struct {
	Num NodeID

	// User is nil when the radio has not heard the node's user info yet
	User *UserProfile
}

// Data is the decoded application payload of a packet.
type Data struct {
	Port    PortNum
	Payload []byte
}

// Packet is one inbound mesh packet.
type Packet struct {
	ID      uint32
	From    NodeID
	To      NodeID
	Channel uint32

	// Decoded is nil when the payload is still encrypted or could not be decoded
	Decoded *Data
}
