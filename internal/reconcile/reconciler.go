package reconcile

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/thinkex/thinkex/internal/api"
	"github.com/thinkex/thinkex/internal/cache"
	"github.com/thinkex/thinkex/internal/realtime"
	"github.com/thinkex/thinkex/pkg/board"
)

// Reconciler owns the convergence contract between the local cache and the
// remote store: after any drop gesture the cache holds either the confirmed
// server arrangement or the exact pre-mutation snapshot, never an
// inconsistent intermediate.
//
// Real-time messages that arrive while a commit is in flight are queued and
// replayed after settlement instead of racing the rollback. (The original
// client let such merges race and documented it as accepted; queuing closes
// that window without changing observable behavior in the common case.)
type Reconciler struct {
	cache *cache.Store
	api   *api.Client
	log   *zap.Logger

	mu       sync.Mutex
	inFlight bool
	pending  []realtime.Message
}

// New creates a reconciler over the given cache and API client. A nil
// logger disables diagnostics.
func New(store *cache.Store, client *api.Client, log *zap.Logger) *Reconciler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Reconciler{cache: store, api: client, log: log}
}

// Drop handles one completed drag gesture against the cached list:
//
//  1. snapshot the cached list (full deep copy, taken synchronously)
//  2. apply the computed rearrangement to the cache (optimistic patch)
//  3. issue the corresponding remote write
//  4. on failure, restore the snapshot
//  5. either way, invalidate the entry so the next read refetches the
//     server's authoritative arrangement
//
// committed reports whether the remote write landed. A rejected write rolls
// the cache back to the exact pre-drop snapshot and then returns the commit
// error, so callers can report the failure while local state is already
// safe. No-op drops return (false, nil) without touching the network.
func (r *Reconciler) Drop(ctx context.Context, listID string, ev DropEvent) (committed bool, err error) {
	r.mu.Lock()
	snapshot, _, ok := r.cache.GetList(listID)
	if !ok {
		r.mu.Unlock()
		return false, fmt.Errorf("list %s is not cached", listID)
	}

	outcome := ComputeReorder(ev, snapshot)
	if outcome == nil {
		r.mu.Unlock()
		return false, nil
	}

	// The optimistic patch is visible to readers before the remote write
	// is dispatched.
	r.cache.SetList(outcome.Reordered)
	r.inFlight = true
	r.mu.Unlock()

	var commitErr error
	switch outcome.Kind {
	case OutcomeMove:
		commitErr = r.api.MoveCard(ctx, listID, outcome.CardID, outcome.DestCluster)
	case OutcomeReorder:
		commitErr = r.api.ReorderCluster(ctx, listID, outcome.ClusterTitle, outcome.OrderedIDs)
	}

	r.mu.Lock()
	if commitErr != nil {
		r.cache.SetList(snapshot)
		r.log.Warn("remote write failed, rolled back optimistic patch",
			zap.String("list_id", listID),
			zap.String("card_id", ev.ActiveID),
			zap.Error(commitErr))
	}
	r.cache.InvalidateList(listID)

	// Replayed merges go through PatchList, so the invalidation above
	// survives them.
	pending := r.pending
	r.pending = nil
	r.inFlight = false
	for _, msg := range pending {
		r.applyLocked(msg)
	}
	r.mu.Unlock()

	if commitErr != nil {
		return false, fmt.Errorf("remote write rejected: %w", commitErr)
	}
	return true, nil
}

// HandleMessage merges one server-update message into the cache. Messages
// arriving mid-commit are queued and replayed once the commit settles.
// Malformed payloads and references to entities the cache does not hold are
// logged and dropped; nothing here is an error to the caller.
func (r *Reconciler) HandleMessage(msg realtime.Message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.inFlight {
		r.pending = append(r.pending, msg)
		return
	}
	r.applyLocked(msg)
}

// applyLocked dispatches one message. Caller holds r.mu.
func (r *Reconciler) applyLocked(msg realtime.Message) {
	switch msg.Type {
	case realtime.MessageClusterListUpdate:
		r.applyClusterListUpdate(msg.Payload)
	case realtime.MessageNodeUpdate:
		r.applyNodeUpdate(msg.Payload)
	case realtime.MessageNewNode:
		r.applyNewNode(msg.Payload)
	default:
		r.log.Info("ignoring unknown server update", zap.String("type", string(msg.Type)))
	}
}

// applyClusterListUpdate invalidates, never patches: the event carries no
// payload precise enough to patch with.
func (r *Reconciler) applyClusterListUpdate(raw json.RawMessage) {
	var p realtime.ClusterListUpdatePayload
	if err := json.Unmarshal(raw, &p); err != nil {
		r.log.Warn("dropping malformed cluster_list_update", zap.Error(err))
		return
	}
	if p.ListID == "" {
		r.cache.InvalidateBoards()
		return
	}
	r.cache.InvalidateList(p.ListID)
}

// applyNodeUpdate locates the card by id anywhere in the cached list and
// shallow-merges the incoming fields over it in place, preserving cluster
// membership and position. Updates never create entities: an unknown id is
// dropped silently.
func (r *Reconciler) applyNodeUpdate(raw json.RawMessage) {
	var p realtime.NodeUpdatePayload
	if err := json.Unmarshal(raw, &p); err != nil {
		r.log.Warn("dropping malformed node_update", zap.Error(err))
		return
	}
	nodeID, err := p.NodeID()
	if err != nil || nodeID == "" {
		r.log.Warn("dropping node_update without a card id", zap.Error(err))
		return
	}

	list, _, ok := r.cache.GetList(p.ListID)
	if !ok {
		return
	}
	ci, qi, found := list.FindCard(nodeID)
	if !found {
		r.log.Debug("node_update for unknown card, dropped",
			zap.String("list_id", p.ListID),
			zap.String("card_id", nodeID))
		return
	}

	merged, err := board.MergeCardJSON(list.Clusters[ci].QAs[qi], p.Node)
	if err != nil {
		r.log.Warn("dropping unmergeable node_update",
			zap.String("card_id", nodeID),
			zap.Error(err))
		return
	}
	list.Clusters[ci].QAs[qi] = merged
	r.cache.PatchList(list)
}

// applyNewNode appends the new card to its cluster. A cluster the cache
// does not hold is never fabricated - the event is dropped and the next
// full refetch supplies it. A card id already present anywhere in the list
// is also dropped, keeping the one-cluster-per-card invariant.
func (r *Reconciler) applyNewNode(raw json.RawMessage) {
	var p realtime.NewNodePayload
	if err := json.Unmarshal(raw, &p); err != nil {
		r.log.Warn("dropping malformed new_node", zap.Error(err))
		return
	}
	if p.Node.ID == "" {
		r.log.Warn("dropping new_node without a card id", zap.String("list_id", p.ListID))
		return
	}

	list, _, ok := r.cache.GetList(p.ListID)
	if !ok {
		return
	}
	ci := list.FindCluster(p.ClusterTitle)
	if ci < 0 {
		r.log.Debug("new_node for unknown cluster, dropped",
			zap.String("list_id", p.ListID),
			zap.String("cluster", p.ClusterTitle))
		return
	}
	if _, _, exists := list.FindCard(p.Node.ID); exists {
		r.log.Debug("new_node duplicates an existing card, dropped",
			zap.String("card_id", p.Node.ID))
		return
	}

	list.Clusters[ci].QAs = append(list.Clusters[ci].QAs, p.Node)
	r.cache.PatchList(list)
}
