// Package changes implements the change detector that drives transient
// "new"/"updated" highlights and the auto-scroll target: given the current
// flattened card sequence and the snapshot remembered from the previous run,
// classify what appeared or changed.
package changes

import "github.com/thinkex/thinkex/pkg/board"

// Class is a per-card classification for one scan.
type Class int

const (
	ClassNone Class = iota
	ClassNew
	ClassUpdated
)

func (c Class) String() string {
	switch c {
	case ClassNew:
		return "new"
	case ClassUpdated:
		return "updated"
	}
	return "unchanged"
}

// Result is the outcome of one scan. Classes holds entries only for cards
// classified New or Updated; ScrollTarget is the single card to bring into
// view ("" when nothing qualifies).
type Result struct {
	Classes      map[string]Class
	ScrollTarget string
}

// Detector remembers the previous card snapshot across scans. It is scoped
// to one viewing session and is not safe for concurrent use; callers drive
// it from a single loop.
type Detector struct {
	prev   map[string]board.Card
	seeded bool
}

// NewDetector returns a detector with no remembered snapshot.
func NewDetector() *Detector {
	return &Detector{}
}

// Scan classifies the current cards against the remembered snapshot.
//
// While loading is true the scan is suppressed entirely: no classification,
// no snapshot update. The first non-empty completed scan only seeds the
// snapshot - the initial batch is never classified as new, which is what
// keeps every card from flashing on first paint. Empty scans before that do
// not seed, so a board that starts empty does not flash whatever its first
// fetch happens to carry.
//
// Each later scan compares cards by id with deep field equality: absent
// before means New, present-but-different means Updated. The scroll target
// is the first New card in display order, else the first Updated, else
// none. The snapshot is then unconditionally replaced with the full current
// set, so the next comparison baseline is always the immediately preceding
// scan.
//
// This is a full O(n) deep-equality pass per scan. Fine at hundreds of
// cards; a content hash or version counter would be needed well beyond that.
func (d *Detector) Scan(cards []board.Card, loading bool) Result {
	if loading {
		return Result{}
	}

	if !d.seeded {
		if len(cards) == 0 {
			return Result{}
		}
		d.prev = snapshot(cards)
		d.seeded = true
		return Result{}
	}

	result := Result{Classes: make(map[string]Class)}
	var firstNew, firstUpdated string
	for _, card := range cards {
		prev, known := d.prev[card.ID]
		switch {
		case !known:
			result.Classes[card.ID] = ClassNew
			if firstNew == "" {
				firstNew = card.ID
			}
		case !prev.Equal(card):
			result.Classes[card.ID] = ClassUpdated
			if firstUpdated == "" {
				firstUpdated = card.ID
			}
		}
	}

	if firstNew != "" {
		result.ScrollTarget = firstNew
	} else {
		result.ScrollTarget = firstUpdated
	}

	d.prev = snapshot(cards)
	return result
}

func snapshot(cards []board.Card) map[string]board.Card {
	m := make(map[string]board.Card, len(cards))
	for _, card := range cards {
		m[card.ID] = card.Clone()
	}
	return m
}
