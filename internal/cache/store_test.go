package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thinkex/thinkex/pkg/board"
)

func testList(id string) *board.ClusterList {
	return &board.ClusterList{
		ID:    id,
		Title: "Board " + id,
		Clusters: []board.Cluster{
			{Title: "Backlog", QAs: []board.Card{
				{ID: "q1", Type: board.CardTypeQA, QA: &board.QAPayload{Question: "one"}},
			}},
		},
	}
}

func TestSetGetList(t *testing.T) {
	s := New()

	_, _, ok := s.GetList("L1")
	assert.False(t, ok)

	s.SetList(testList("L1"))
	got, stale, ok := s.GetList("L1")
	require.True(t, ok)
	assert.False(t, stale)
	assert.Equal(t, "L1", got.ID)
}

func TestGetListReturnsClone(t *testing.T) {
	s := New()
	orig := testList("L1")
	s.SetList(orig)

	// Mutating what went in or came out must not touch the cached copy.
	orig.Clusters[0].QAs[0].QA.Question = "mutated input"
	got, _, _ := s.GetList("L1")
	got.Clusters[0].QAs[0].QA.Question = "mutated output"

	fresh, _, _ := s.GetList("L1")
	assert.Equal(t, "one", fresh.Clusters[0].QAs[0].QA.Question)
}

func TestInvalidateList(t *testing.T) {
	s := New()
	s.SetList(testList("L1"))

	s.InvalidateList("L1")
	got, stale, ok := s.GetList("L1")
	require.True(t, ok)
	assert.True(t, stale)
	// The snapshot survives invalidation; only the freshness flag flips.
	assert.Equal(t, "L1", got.ID)

	// A fresh Set clears staleness.
	s.SetList(testList("L1"))
	_, stale, _ = s.GetList("L1")
	assert.False(t, stale)

	// Invalidating an unknown id is a no-op.
	s.InvalidateList("missing")
}

func TestPatchListPreservesStaleness(t *testing.T) {
	s := New()
	s.SetList(testList("L1"))
	s.InvalidateList("L1")

	patched := testList("L1")
	patched.Clusters[0].QAs[0].QA.Question = "patched"
	s.PatchList(patched)

	// The new snapshot lands but the pending-refetch flag survives.
	got, stale, ok := s.GetList("L1")
	require.True(t, ok)
	assert.True(t, stale)
	assert.Equal(t, "patched", got.Clusters[0].QAs[0].QA.Question)

	// Patching a fresh entry keeps it fresh.
	s.SetList(testList("L2"))
	s.PatchList(testList("L2"))
	_, stale, _ = s.GetList("L2")
	assert.False(t, stale)

	// Patching an uncached list stores it fresh.
	s.PatchList(testList("L3"))
	_, stale, ok = s.GetList("L3")
	require.True(t, ok)
	assert.False(t, stale)
}

func TestDropList(t *testing.T) {
	s := New()
	s.SetList(testList("L1"))
	s.DropList("L1")
	_, _, ok := s.GetList("L1")
	assert.False(t, ok)
}

func TestBoards(t *testing.T) {
	s := New()

	_, ok := s.GetBoards()
	assert.False(t, ok)

	s.SetBoards([]board.ClusterListInfo{{ID: "L1", Title: "One"}})
	infos, ok := s.GetBoards()
	require.True(t, ok)
	require.Len(t, infos, 1)
	assert.Equal(t, "One", infos[0].Title)

	t.Run("empty set is still fresh", func(t *testing.T) {
		s.SetBoards(nil)
		infos, ok := s.GetBoards()
		assert.True(t, ok)
		assert.Empty(t, infos)
	})

	t.Run("invalidate discards", func(t *testing.T) {
		s.InvalidateBoards()
		_, ok := s.GetBoards()
		assert.False(t, ok)
	})
}
