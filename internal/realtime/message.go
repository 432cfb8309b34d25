// Package realtime implements the client side of the ThinkEx pub/sub
// channel: a subscription that delivers server-update messages as typed
// envelopes, a fire-and-forget publisher for client messages, and a polling
// fallback used while the channel is disconnected.
package realtime

import (
	"encoding/json"

	"github.com/thinkex/thinkex/pkg/board"
)

// MessageType names the server-update event variants. Unknown types are
// delivered as-is so the consumer can log and ignore them; new server-side
// event kinds must never crash the client.
type MessageType string

const (
	// MessageClusterListUpdate is a coarse-grained "this list changed"
	// signal. It carries no payload precise enough to patch with, so the
	// consumer invalidates rather than patches.
	MessageClusterListUpdate MessageType = "cluster_list_update"

	// MessageNodeUpdate carries updated fields for an existing card.
	MessageNodeUpdate MessageType = "node_update"

	// MessageNewNode carries a brand-new card plus the cluster to place
	// it in.
	MessageNewNode MessageType = "new_node"
)

// Message is the JSON envelope published on the server-update channel.
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// ClusterListUpdatePayload identifies the list that changed.
type ClusterListUpdatePayload struct {
	ListID string `json:"list_id"`
}

// NodeUpdatePayload carries a partial card update. Node stays raw because
// the merge contract is field-level: fields present in the payload win,
// fields omitted are retained from the cached card.
type NodeUpdatePayload struct {
	ListID string          `json:"list_id"`
	Node   json.RawMessage `json:"node"`
}

// NodeID extracts the card id from the raw node payload.
func (p NodeUpdatePayload) NodeID() (string, error) {
	var probe struct {
		ID string `json:"_id"`
	}
	if err := json.Unmarshal(p.Node, &probe); err != nil {
		return "", err
	}
	return probe.ID, nil
}

// NewNodePayload carries a complete new card and its destination cluster.
type NewNodePayload struct {
	ListID       string     `json:"list_id"`
	ClusterTitle string     `json:"cluster_title"`
	Node         board.Card `json:"node"`
}
