package reconcile

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thinkex/thinkex/internal/api"
	"github.com/thinkex/thinkex/internal/cache"
	"github.com/thinkex/thinkex/internal/realtime"
	"github.com/thinkex/thinkex/pkg/board"
)

// setupReconciler wires a reconciler over a fresh cache and an httptest
// backend, pre-seeding the cache with testList.
func setupReconciler(t *testing.T, handler http.HandlerFunc) (*Reconciler, *cache.Store, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := api.NewClient(srv.URL)
	require.NoError(t, err)

	store := cache.New()
	store.SetList(testList())
	return New(store, client, nil), store, srv
}

func okHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func failHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusInternalServerError)
	w.Write([]byte(`{"detail": "boom"}`))
}

func mustMarshal(t *testing.T, v any) json.RawMessage {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return data
}

func TestDropCommitSuccess(t *testing.T) {
	var gotPath atomic.Value
	rec, store, _ := setupReconciler(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath.Store(r.URL.Path)
		okHandler(w, r)
	})

	ev := DropEvent{ActiveID: "qA", ActiveCluster: "Backlog", OverID: "qE", OverCluster: "Done"}
	committed, err := rec.Drop(context.Background(), "L1", ev)
	require.NoError(t, err)
	assert.True(t, committed)

	assert.Equal(t, "/cluster-lists/L1/qa/qA/move", gotPath.Load())

	// The optimistic arrangement survives, but the entry is marked stale so
	// the next read refetches the server's authoritative order.
	list, stale, ok := store.GetList("L1")
	require.True(t, ok)
	assert.True(t, stale)
	assert.Equal(t, []string{"qB", "qC", "qD"}, cardIDs(list.Clusters[0]))
	assert.Equal(t, []string{"qE", "qA"}, cardIDs(list.Clusters[1]))
}

func TestDropRollbackOnFailure(t *testing.T) {
	rec, store, _ := setupReconciler(t, failHandler)

	before, _, ok := store.GetList("L1")
	require.True(t, ok)

	ev := DropEvent{ActiveID: "qA", ActiveCluster: "Backlog", OverID: "qE", OverCluster: "Done"}

	// The rejection is reported, but only after the rollback completed.
	committed, err := rec.Drop(context.Background(), "L1", ev)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
	assert.False(t, committed)

	after, stale, ok := store.GetList("L1")
	require.True(t, ok)
	assert.True(t, stale)
	assert.True(t, before.Equal(after), "rollback must restore the exact pre-drop snapshot")
	assert.Len(t, after.Cards(), len(before.Cards()))
}

func TestDropNoOpSkipsNetwork(t *testing.T) {
	var calls atomic.Int32
	rec, store, _ := setupReconciler(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		okHandler(w, r)
	})

	ev := DropEvent{ActiveID: "qA", ActiveCluster: "Backlog", OverID: "qA", OverCluster: "Backlog"}
	committed, err := rec.Drop(context.Background(), "L1", ev)
	require.NoError(t, err)
	assert.False(t, committed)

	assert.Zero(t, calls.Load())
	_, stale, ok := store.GetList("L1")
	require.True(t, ok)
	assert.False(t, stale, "a no-op drop must not invalidate the cache")
}

func TestDropUncachedList(t *testing.T) {
	rec, _, _ := setupReconciler(t, okHandler)
	ev := DropEvent{ActiveID: "qA", ActiveCluster: "Backlog", OverCluster: "Done"}
	_, err := rec.Drop(context.Background(), "missing", ev)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not cached")
}

func TestDropIntraClusterCommit(t *testing.T) {
	var gotBody atomic.Value
	rec, _, _ := setupReconciler(t, func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			ClusterTitle string   `json:"cluster_title"`
			OrderedQAIDs []string `json:"ordered_qa_ids"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		gotBody.Store(body.ClusterTitle + ":" + strings.Join(body.OrderedQAIDs, ","))
		okHandler(w, r)
	})

	ev := DropEvent{ActiveID: "qB", ActiveCluster: "Backlog", OverID: "qD", OverCluster: "Backlog"}
	committed, err := rec.Drop(context.Background(), "L1", ev)
	require.NoError(t, err)
	assert.True(t, committed)
	assert.Equal(t, "Backlog:qA,qC,qD,qB", gotBody.Load())
}

func TestHandleMessageNodeUpdate(t *testing.T) {
	rec, store, _ := setupReconciler(t, okHandler)

	rec.HandleMessage(realtime.Message{
		Type: realtime.MessageNodeUpdate,
		Payload: mustMarshal(t, map[string]any{
			"list_id": "L1",
			"node":    map[string]any{"_id": "qB", "question": "revised"},
		}),
	})

	list, _, ok := store.GetList("L1")
	require.True(t, ok)
	ci, qi, found := list.FindCard("qB")
	require.True(t, found)

	// Field-level merge: the sent field wins, omitted fields are retained,
	// and position within the cluster is untouched.
	assert.Equal(t, "revised", list.Clusters[ci].QAs[qi].QA.Question)
	assert.Equal(t, []string{"qA", "qB", "qC", "qD"}, cardIDs(list.Clusters[0]))
}

func TestHandleMessageNodeUpdateUnknownCard(t *testing.T) {
	rec, store, _ := setupReconciler(t, okHandler)
	before, _, _ := store.GetList("L1")

	rec.HandleMessage(realtime.Message{
		Type: realtime.MessageNodeUpdate,
		Payload: mustMarshal(t, map[string]any{
			"list_id": "L1",
			"node":    map[string]any{"_id": "ghost", "question": "x"},
		}),
	})

	after, _, _ := store.GetList("L1")
	assert.True(t, before.Equal(after), "updates never create entities")
}

func TestHandleMessageNewNode(t *testing.T) {
	rec, store, _ := setupReconciler(t, okHandler)

	rec.HandleMessage(realtime.Message{
		Type: realtime.MessageNewNode,
		Payload: mustMarshal(t, map[string]any{
			"list_id":       "L1",
			"cluster_title": "done", // case-insensitive resolution
			"node":          map[string]any{"_id": "qF", "type": "qa", "question": "new"},
		}),
	})

	list, _, ok := store.GetList("L1")
	require.True(t, ok)
	assert.Equal(t, []string{"qE", "qF"}, cardIDs(list.Clusters[1]))
}

func TestHandleMessageNewNodeDuplicate(t *testing.T) {
	rec, store, _ := setupReconciler(t, okHandler)

	rec.HandleMessage(realtime.Message{
		Type: realtime.MessageNewNode,
		Payload: mustMarshal(t, map[string]any{
			"list_id":       "L1",
			"cluster_title": "Done",
			"node":          map[string]any{"_id": "qA", "question": "dup"},
		}),
	})

	list, _, _ := store.GetList("L1")
	assert.NoError(t, list.Validate())
	assert.Equal(t, []string{"qE"}, cardIDs(list.Clusters[1]))
}

func TestHandleMessageNewNodeUnknownCluster(t *testing.T) {
	rec, store, _ := setupReconciler(t, okHandler)
	before, _, _ := store.GetList("L1")

	rec.HandleMessage(realtime.Message{
		Type: realtime.MessageNewNode,
		Payload: mustMarshal(t, map[string]any{
			"list_id":       "L1",
			"cluster_title": "Nowhere",
			"node":          map[string]any{"_id": "qF"},
		}),
	})

	after, _, _ := store.GetList("L1")
	assert.True(t, before.Equal(after), "clusters are never fabricated from events")
}

func TestHandleMessageClusterListUpdate(t *testing.T) {
	rec, store, _ := setupReconciler(t, okHandler)

	rec.HandleMessage(realtime.Message{
		Type:    realtime.MessageClusterListUpdate,
		Payload: mustMarshal(t, map[string]any{"list_id": "L1"}),
	})

	_, stale, ok := store.GetList("L1")
	require.True(t, ok)
	assert.True(t, stale)
}

func TestHandleMessageClusterListUpdateNoListID(t *testing.T) {
	rec, store, _ := setupReconciler(t, okHandler)
	store.SetBoards([]board.ClusterListInfo{{ID: "L1", Title: "Board"}})

	rec.HandleMessage(realtime.Message{
		Type:    realtime.MessageClusterListUpdate,
		Payload: mustMarshal(t, map[string]any{}),
	})

	_, fresh := store.GetBoards()
	assert.False(t, fresh, "an update without a list id invalidates the board index")
}

func TestHandleMessageUnknownTypeIgnored(t *testing.T) {
	rec, store, _ := setupReconciler(t, okHandler)
	before, _, _ := store.GetList("L1")

	rec.HandleMessage(realtime.Message{
		Type:    "future_event",
		Payload: mustMarshal(t, map[string]any{"anything": true}),
	})

	after, staleAfter, _ := store.GetList("L1")
	assert.True(t, before.Equal(after))
	assert.False(t, staleAfter)
}

func TestHandleMessageMalformedPayloadDropped(t *testing.T) {
	rec, store, _ := setupReconciler(t, okHandler)
	before, _, _ := store.GetList("L1")

	for _, typ := range []realtime.MessageType{
		realtime.MessageClusterListUpdate,
		realtime.MessageNodeUpdate,
		realtime.MessageNewNode,
	} {
		rec.HandleMessage(realtime.Message{Type: typ, Payload: json.RawMessage(`"not an object"`)})
	}

	after, _, _ := store.GetList("L1")
	assert.True(t, before.Equal(after))
}

// TestMessagesQueuedDuringCommit holds the remote write open, injects a
// server update mid-flight, and checks it is only merged after the commit
// settles - the update must not be clobbered by the rollback path.
func TestMessagesQueuedDuringCommit(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	rec, store, _ := setupReconciler(t, func(w http.ResponseWriter, r *http.Request) {
		close(entered)
		<-release
		failHandler(w, r) // force the rollback path
	})

	done := make(chan error, 1)
	go func() {
		ev := DropEvent{ActiveID: "qA", ActiveCluster: "Backlog", OverID: "qE", OverCluster: "Done"}
		_, err := rec.Drop(context.Background(), "L1", ev)
		done <- err
	}()

	<-entered
	rec.HandleMessage(realtime.Message{
		Type: realtime.MessageNodeUpdate,
		Payload: mustMarshal(t, map[string]any{
			"list_id": "L1",
			"node":    map[string]any{"_id": "qB", "question": "arrived mid-commit"},
		}),
	})

	// The queued update is invisible while the commit is in flight.
	list, _, ok := store.GetList("L1")
	require.True(t, ok)
	ci, qi, found := list.FindCard("qB")
	require.True(t, found)
	assert.NotEqual(t, "arrived mid-commit", list.Clusters[ci].QAs[qi].QA.Question)

	close(release)
	require.Error(t, <-done)

	// After settlement the rollback has restored the snapshot and the queued
	// update has been replayed on top of it.
	list, stale, ok := store.GetList("L1")
	require.True(t, ok)
	assert.Equal(t, []string{"qA", "qB", "qC", "qD"}, cardIDs(list.Clusters[0]))
	ci, qi, found = list.FindCard("qB")
	require.True(t, found)
	assert.Equal(t, "arrived mid-commit", list.Clusters[ci].QAs[qi].QA.Question)

	// The post-settlement invalidation must survive the replay: the next
	// read still refetches the authoritative arrangement.
	assert.True(t, stale)
}

// TestMergePreservesPendingInvalidation pins down that splicing an event
// into a stale snapshot does not cancel the pending refetch.
func TestMergePreservesPendingInvalidation(t *testing.T) {
	rec, store, _ := setupReconciler(t, okHandler)
	store.InvalidateList("L1")

	rec.HandleMessage(realtime.Message{
		Type: realtime.MessageNodeUpdate,
		Payload: mustMarshal(t, map[string]any{
			"list_id": "L1",
			"node":    map[string]any{"_id": "qB", "question": "revised"},
		}),
	})

	list, stale, ok := store.GetList("L1")
	require.True(t, ok)
	assert.True(t, stale, "merge must not erase the pending-refetch flag")
	ci, qi, found := list.FindCard("qB")
	require.True(t, found)
	assert.Equal(t, "revised", list.Clusters[ci].QAs[qi].QA.Question)

	store.InvalidateList("L1")
	rec.HandleMessage(realtime.Message{
		Type: realtime.MessageNewNode,
		Payload: mustMarshal(t, map[string]any{
			"list_id":       "L1",
			"cluster_title": "Done",
			"node":          map[string]any{"_id": "qF", "question": "new"},
		}),
	})

	_, stale, _ = store.GetList("L1")
	assert.True(t, stale)
}
