package directory

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rmacdonaldsmith/meshchat-go/pkg/transport"
)

func TestBuild_ShortNameOnly(t *testing.T) {
	dir := Build([]transport.NodeRecord{
		{Num: 1, User: &transport.UserProfile{ShortName: "AB"}},
	})

	got := dir.Resolve(1)
	assert.Equal(t, transport.NodeID(1), got.ID)
	assert.Equal(t, "AB", got.ShortName)
	assert.Equal(t, UnknownName, got.LongName)

	missing := dir.Resolve(2)
	assert.Equal(t, transport.NodeID(2), missing.ID)
	assert.Equal(t, UnknownName, missing.ShortName)
	assert.Equal(t, UnknownName, missing.LongName)
}

func TestBuild_MissingFields(t *testing.T) {
	dir := Build([]transport.NodeRecord{
		{Num: 10},
		{Num: 11, User: &transport.UserProfile{}},
		{Num: 12, User: &transport.UserProfile{LongName: "Long Only"}},
		{Num: 13, User: &transport.UserProfile{ShortName: "BO", LongName: "Both"}},
	})
	require.Equal(t, 4, dir.Len())

	tests := []struct {
		id    transport.NodeID
		short string
		long  string
	}{
		{10, UnknownName, UnknownName},
		{11, UnknownName, UnknownName},
		{12, UnknownName, "Long Only"},
		{13, "BO", "Both"},
	}
	for _, tt := range tests {
		got := dir.Resolve(tt.id)
		assert.Equal(t, tt.short, got.ShortName, "short name for %s", tt.id)
		assert.Equal(t, tt.long, got.LongName, "long name for %s", tt.id)
	}
}

func TestList_PreservesInsertionOrder(t *testing.T) {
	dir := Build([]transport.NodeRecord{
		{Num: 30, User: &transport.UserProfile{ShortName: "C"}},
		{Num: 10, User: &transport.UserProfile{ShortName: "A"}},
		{Num: 20, User: &transport.UserProfile{ShortName: "B"}},
	})

	list := dir.List()
	require.Len(t, list, 3)
	assert.Equal(t, []string{"C", "A", "B"}, []string{list[0].ShortName, list[1].ShortName, list[2].ShortName})

	// Mutating the returned slice must not leak into the directory
	list[0].ShortName = "X"
	assert.Equal(t, "C", dir.Resolve(30).ShortName)
}

func TestBuild_DuplicateKeepsFirstPosition(t *testing.T) {
	dir := Build([]transport.NodeRecord{
		{Num: 1, User: &transport.UserProfile{ShortName: "OLD"}},
		{Num: 2, User: &transport.UserProfile{ShortName: "TWO"}},
		{Num: 1, User: &transport.UserProfile{ShortName: "NEW"}},
	})

	require.Equal(t, 2, dir.Len())
	list := dir.List()
	assert.Equal(t, transport.NodeID(1), list[0].ID)
	assert.Equal(t, "NEW", list[0].ShortName)
	assert.True(t, dir.Contains(2))
	assert.False(t, dir.Contains(3))
}

func TestDirectory_EmptyAndNil(t *testing.T) {
	empty := Build(nil)
	assert.Equal(t, 0, empty.Len())
	assert.Empty(t, empty.List())
	assert.Equal(t, Unknown(5), empty.Resolve(5))

	var nilDir *Directory
	assert.Equal(t, Unknown(5), nilDir.Resolve(5))
	assert.Equal(t, 0, nilDir.Len())
}

func TestResolve_ConcurrentLookups(t *testing.T) {
	dir := Build([]transport.NodeRecord{
		{Num: 1, User: &transport.UserProfile{ShortName: "AB", LongName: "Alpha Bravo"}},
	})

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if got := dir.Resolve(1); got.ShortName != "AB" {
					t.Errorf("goroutine %d: expected AB, got %s", i, got.ShortName)
				}
				_ = dir.Resolve(transport.NodeID(j + 2))
			}
		}(i)
	}
	wg.Wait()
}

func TestIdentity_String(t *testing.T) {
	ident := Identity{ID: 0xdeadbeef, ShortName: "DB", LongName: "Dead Beef"}
	assert.Equal(t, "Node ID: !deadbeef, Short Name: DB, Long Name: Dead Beef", ident.String())
}
