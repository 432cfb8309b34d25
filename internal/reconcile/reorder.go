// Package reconcile implements the reconciliation layer: optimistic
// mutations for drag/move/reorder gestures against the local cache with
// rollback on remote write failure, and merge handlers that splice
// server-pushed events into cached snapshots.
package reconcile

import (
	"strings"

	"github.com/thinkex/thinkex/pkg/board"
)

// DropEvent describes one completed drag gesture. ActiveID/ActiveCluster
// identify the dragged card and its claimed owner. The drop target is either
// a hovered card (OverID set, OverCluster its owner) or empty cluster space
// (OverID empty, OverCluster the cluster's own title).
type DropEvent struct {
	ActiveID      string
	ActiveCluster string
	OverID        string
	OverCluster   string
}

// OutcomeKind distinguishes the two remote writes a drop can produce.
type OutcomeKind int

const (
	// OutcomeReorder relocates a card within its own cluster.
	OutcomeReorder OutcomeKind = iota
	// OutcomeMove transfers a card to another cluster (append semantics).
	OutcomeMove
)

// Outcome is the computed result of a drop: the full rearranged list for the
// optimistic cache patch, plus the parameters of the remote write that makes
// it authoritative.
type Outcome struct {
	Kind      OutcomeKind
	Reordered *board.ClusterList

	// Reorder parameters.
	ClusterTitle string
	OrderedIDs   []string

	// Move parameters.
	CardID      string
	DestCluster string
}

// ComputeReorder classifies a drop event against the current snapshot and
// computes the rearranged list. Returns nil when the drop is a no-op
// (dropped on itself, same position) or when the event is malformed (the
// dragged card cannot be located where it claims to be - on desync the
// operation aborts rather than guessing). The input snapshot is never
// mutated; the outcome carries an independent copy.
func ComputeReorder(ev DropEvent, current *board.ClusterList) *Outcome {
	if current == nil || ev.ActiveID == "" {
		return nil
	}
	if ev.OverID != "" && ev.ActiveID == ev.OverID {
		return nil
	}

	srcIdx := current.FindCluster(ev.ActiveCluster)
	if srcIdx < 0 {
		return nil
	}
	src := &current.Clusters[srcIdx]
	oldIndex := -1
	for i := range src.QAs {
		if src.QAs[i].ID == ev.ActiveID {
			oldIndex = i
			break
		}
	}
	if oldIndex < 0 {
		// Data desync: the card is not where the event says it is.
		return nil
	}

	destTitle := resolveDropCluster(ev, current)
	if destTitle == "" {
		return nil
	}

	if strings.EqualFold(destTitle, src.Title) {
		return computeIntraClusterMove(ev, current, srcIdx, oldIndex)
	}
	return computeInterClusterMove(ev, current, srcIdx, oldIndex, destTitle)
}

// resolveDropCluster determines which cluster the drop targets. A hovered
// card resolves to its owning cluster; empty cluster space resolves to the
// cluster's own title.
func resolveDropCluster(ev DropEvent, current *board.ClusterList) string {
	if ev.OverID != "" {
		if ci, _, ok := current.FindCard(ev.OverID); ok {
			return current.Clusters[ci].Title
		}
	}
	if ev.OverCluster != "" {
		if ci := current.FindCluster(ev.OverCluster); ci >= 0 {
			return current.Clusters[ci].Title
		}
	}
	return ""
}

// computeIntraClusterMove is classic array-move: remove the card, reinsert
// it at the target card's index. Dropping on the cluster container (no
// target card) inside the same cluster changes nothing.
func computeIntraClusterMove(ev DropEvent, current *board.ClusterList, srcIdx, oldIndex int) *Outcome {
	if ev.OverID == "" {
		return nil
	}
	newIndex := -1
	for i := range current.Clusters[srcIdx].QAs {
		if current.Clusters[srcIdx].QAs[i].ID == ev.OverID {
			newIndex = i
			break
		}
	}
	if newIndex < 0 || newIndex == oldIndex {
		return nil
	}

	reordered := current.Clone()
	qas := reordered.Clusters[srcIdx].QAs
	moved := qas[oldIndex]
	qas = append(qas[:oldIndex], qas[oldIndex+1:]...)
	qas = append(qas[:newIndex], append([]board.Card{moved}, qas[newIndex:]...)...)
	reordered.Clusters[srcIdx].QAs = qas

	ordered := make([]string, len(qas))
	for i := range qas {
		ordered[i] = qas[i].ID
	}
	return &Outcome{
		Kind:         OutcomeReorder,
		Reordered:    reordered,
		ClusterTitle: reordered.Clusters[srcIdx].Title,
		OrderedIDs:   ordered,
	}
}

// computeInterClusterMove removes the card from its source cluster and
// appends it to the destination. Append, not positional insert: the backend
// move operation has append semantics and the optimistic patch must agree
// with it.
func computeInterClusterMove(ev DropEvent, current *board.ClusterList, srcIdx, oldIndex int, destTitle string) *Outcome {
	reordered := current.Clone()
	destIdx := reordered.FindCluster(destTitle)
	if destIdx < 0 {
		return nil
	}

	src := &reordered.Clusters[srcIdx]
	moved := src.QAs[oldIndex]
	src.QAs = append(src.QAs[:oldIndex], src.QAs[oldIndex+1:]...)
	dest := &reordered.Clusters[destIdx]
	dest.QAs = append(dest.QAs, moved)

	return &Outcome{
		Kind:        OutcomeMove,
		Reordered:   reordered,
		CardID:      ev.ActiveID,
		DestCluster: dest.Title,
	}
}
