// Package board provides the type definitions and JSON wire formats for the
// ThinkEx knowledge board: cluster lists, clusters, and the tagged card
// variants they contain. These are the shapes exchanged with the backend API
// and cached locally by the client, so the wire field names here must stay in
// lockstep with the server.
//
// A cluster has no surrogate id - its title is its identifier within a list.
// Card ids are globally unique and stable, which is what lets a card be
// located anywhere in a list regardless of which cluster currently owns it.
package board

import (
	"fmt"
	"strings"
)

// ClusterList is one board: a titled, ordered sequence of clusters.
type ClusterList struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	Clusters []Cluster `json:"clusters"`
}

// ClusterListInfo is the summary shape returned by the board index endpoint.
type ClusterListInfo struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// Cluster is a named column of cards. The title acts as the cluster's
// identifier within its list; the wire field is "qas" for historical reasons
// (the first card kind was question/answer pairs).
type Cluster struct {
	Title string `json:"title"`
	QAs   []Card `json:"qas"`
}

// FindCluster returns the index of the cluster with the given title, or -1.
// Resolution is case-insensitive, matching the backend's lookup behavior.
func (l *ClusterList) FindCluster(title string) int {
	for i := range l.Clusters {
		if strings.EqualFold(l.Clusters[i].Title, title) {
			return i
		}
	}
	return -1
}

// FindCard locates a card by id anywhere in the list. Returns the owning
// cluster index, the card's position within it, and whether it was found.
func (l *ClusterList) FindCard(cardID string) (clusterIdx, cardIdx int, ok bool) {
	for ci := range l.Clusters {
		for qi := range l.Clusters[ci].QAs {
			if l.Clusters[ci].QAs[qi].ID == cardID {
				return ci, qi, true
			}
		}
	}
	return -1, -1, false
}

// Cards returns every card in the list in display order: clusters in board
// order, cards in cluster order. The result shares no memory with the list.
func (l *ClusterList) Cards() []Card {
	var out []Card
	for ci := range l.Clusters {
		for qi := range l.Clusters[ci].QAs {
			out = append(out, l.Clusters[ci].QAs[qi].Clone())
		}
	}
	return out
}

// Clone returns a deep copy of the list. Used for cache snapshots and
// pre-mutation rollback copies, so no memory may be shared with the receiver.
func (l *ClusterList) Clone() *ClusterList {
	if l == nil {
		return nil
	}
	out := &ClusterList{
		ID:       l.ID,
		Title:    l.Title,
		Clusters: make([]Cluster, len(l.Clusters)),
	}
	for i := range l.Clusters {
		out.Clusters[i] = l.Clusters[i].Clone()
	}
	return out
}

// Clone returns a deep copy of the cluster.
func (c Cluster) Clone() Cluster {
	out := Cluster{Title: c.Title, QAs: make([]Card, len(c.QAs))}
	for i := range c.QAs {
		out.QAs[i] = c.QAs[i].Clone()
	}
	return out
}

// Equal reports deep structural equality of two lists.
func (l *ClusterList) Equal(o *ClusterList) bool {
	if l == nil || o == nil {
		return l == o
	}
	if l.ID != o.ID || l.Title != o.Title || len(l.Clusters) != len(o.Clusters) {
		return false
	}
	for i := range l.Clusters {
		if !l.Clusters[i].Equal(o.Clusters[i]) {
			return false
		}
	}
	return true
}

// Equal reports deep structural equality of two clusters.
func (c Cluster) Equal(o Cluster) bool {
	if c.Title != o.Title || len(c.QAs) != len(o.QAs) {
		return false
	}
	for i := range c.QAs {
		if !c.QAs[i].Equal(o.QAs[i]) {
			return false
		}
	}
	return true
}

// Validate checks the structural invariants of a list: non-empty id, unique
// cluster titles (case-insensitive, titles are identifiers), and card ids
// that appear exactly once across the whole list.
func (l *ClusterList) Validate() error {
	if l.ID == "" {
		return fmt.Errorf("cluster list id cannot be empty")
	}
	titles := make(map[string]struct{}, len(l.Clusters))
	cards := make(map[string]string)
	for _, cluster := range l.Clusters {
		key := strings.ToLower(cluster.Title)
		if _, dup := titles[key]; dup {
			return fmt.Errorf("duplicate cluster title %q in list %s", cluster.Title, l.ID)
		}
		titles[key] = struct{}{}
		for _, card := range cluster.QAs {
			if card.ID == "" {
				return fmt.Errorf("card with empty id in cluster %q", cluster.Title)
			}
			if owner, dup := cards[card.ID]; dup {
				return fmt.Errorf("card %s appears in clusters %q and %q", card.ID, owner, cluster.Title)
			}
			cards[card.ID] = cluster.Title
		}
	}
	return nil
}
