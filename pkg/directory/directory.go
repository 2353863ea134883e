package directory

import (
	"fmt"

	"github.com/rmacdonaldsmith/meshchat-go/pkg/transport"
)

// UnknownName is used for any name the radio did not report.
const UnknownName = "Unknown"

// Identity is the display identity of one node.
type Identity struct {
	ID        transport.NodeID
	ShortName string
	LongName  string
}

// Unknown returns the synthetic identity used for nodes missing from the directory.
func Unknown(id transport.NodeID) Identity {
	return Identity{ID: id, ShortName: UnknownName, LongName: UnknownName}
}

func (i Identity) String() string {
	return fmt.Sprintf("Node ID: %s, Short Name: %s, Long Name: %s", i.ID, i.ShortName, i.LongName)
}

// Directory is an ordered, read-only snapshot of node identities.
type Directory struct {
	byID  map[transport.NodeID]int
	nodes []Identity
}

// Build creates a directory from raw node records. It never fails: records without a
// user profile, or with empty names, get "Unknown" for the missing fields. A node that
// appears twice keeps its first position and takes the later record's names.
func Build(records []transport.NodeRecord) *Directory {
	d := &Directory{
		byID:  make(map[transport.NodeID]int, len(records)),
		nodes: make([]Identity, 0, len(records)),
	}

	for _, rec := range records {
		ident := fromRecord(rec)
		if idx, ok := d.byID[rec.Num]; ok {
			d.nodes[idx] = ident
			continue
		}
		d.byID[rec.Num] = len(d.nodes)
		d.nodes = append(d.nodes, ident)
	}

	return d
}

func fromRecord(rec transport.NodeRecord) Identity {
	ident := Unknown(rec.Num)
	if rec.User == nil {
		return ident
	}
	if rec.User.ShortName != "" {
		ident.ShortName = rec.User.ShortName
	}
	if rec.User.LongName != "" {
		ident.LongName = rec.User.LongName
	}
	return ident
}

// Resolve returns the identity for id, or Unknown(id) when id is not in the directory.
func (d *Directory) Resolve(id transport.NodeID) Identity {
	if d == nil {
		return Unknown(id)
	}
	if idx, ok := d.byID[id]; ok {
		return d.nodes[idx]
	}
	return Unknown(id)
}

// Contains reports whether id was part of the snapshot.
func (d *Directory) Contains(id transport.NodeID) bool {
	if d == nil {
		return false
	}
	_, ok := d.byID[id]
	return ok
}

// List returns the identities in snapshot order. The slice is a copy.
func (d *Directory) List() []Identity {
	if d == nil {
		return nil
	}
	return append([]Identity(nil), d.nodes...)
}

// Len returns the number of nodes in the directory.
func (d *Directory) Len() int {
	if d == nil {
		return 0
	}
	return len(d.nodes)
}
