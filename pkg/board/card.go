package board

import (
	"encoding/json"
	"fmt"
)

// CardType discriminates the card variants. The zero value on the wire is
// treated as a Q&A card, which is the only kind older backends emit.
type CardType string

const (
	CardTypeQA         CardType = "qa"
	CardTypeResearch   CardType = "research"
	CardTypeSourceNote CardType = "source_note"
	CardTypeFlashcard  CardType = "flashcard"
)

// Valid reports whether t is one of the known card types.
func (t CardType) Valid() bool {
	switch t {
	case CardTypeQA, CardTypeResearch, CardTypeSourceNote, CardTypeFlashcard:
		return true
	}
	return false
}

// QAPayload is a plain question/answer pair.
type QAPayload struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// ResearchPayload is a question/answer bundle with related sub-questions.
type ResearchPayload struct {
	Question     string   `json:"question"`
	Answer       string   `json:"answer"`
	SubQuestions []string `json:"sub_questions"`
}

// SourceNotePayload captures an excerpt from an external source.
type SourceNotePayload struct {
	SourceTitle string `json:"source_title"`
	SourceURL   string `json:"source_url"`
	Content     string `json:"content"`
}

// FlashcardFace is one front/back pair in a flashcard set.
type FlashcardFace struct {
	Front string `json:"front"`
	Back  string `json:"back"`
}

// FlashcardPayload is an ordered set of flashcards.
type FlashcardPayload struct {
	Cards []FlashcardFace `json:"cards"`
}

// Card is a tagged variant over the four card kinds. Exactly one of the
// payload pointers is non-nil, selected by Type. The wire format is flat:
// variant fields sit alongside _id/type/created_at rather than nested, so
// marshalling goes through an intermediate envelope.
type Card struct {
	ID        string
	Type      CardType
	CreatedAt string

	QA         *QAPayload
	Research   *ResearchPayload
	SourceNote *SourceNotePayload
	Flashcards *FlashcardPayload
}

// cardWire is the flat JSON shape shared by all variants.
type cardWire struct {
	ID        string   `json:"_id"`
	Type      CardType `json:"type,omitempty"`
	CreatedAt string   `json:"created_at,omitempty"`

	Question     string          `json:"question,omitempty"`
	Answer       string          `json:"answer,omitempty"`
	SubQuestions []string        `json:"sub_questions,omitempty"`
	SourceTitle  string          `json:"source_title,omitempty"`
	SourceURL    string          `json:"source_url,omitempty"`
	Content      string          `json:"content,omitempty"`
	Cards        []FlashcardFace `json:"cards,omitempty"`
}

// UnmarshalJSON decodes the flat wire shape and populates exactly one
// variant payload. A missing type field means Q&A.
func (c *Card) UnmarshalJSON(data []byte) error {
	var w cardWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	typ := w.Type
	if typ == "" {
		typ = CardTypeQA
	}
	if !typ.Valid() {
		return fmt.Errorf("unknown card type %q", w.Type)
	}

	*c = Card{ID: w.ID, Type: typ, CreatedAt: w.CreatedAt}
	switch typ {
	case CardTypeQA:
		c.QA = &QAPayload{Question: w.Question, Answer: w.Answer}
	case CardTypeResearch:
		c.Research = &ResearchPayload{Question: w.Question, Answer: w.Answer, SubQuestions: w.SubQuestions}
	case CardTypeSourceNote:
		c.SourceNote = &SourceNotePayload{SourceTitle: w.SourceTitle, SourceURL: w.SourceURL, Content: w.Content}
	case CardTypeFlashcard:
		c.Flashcards = &FlashcardPayload{Cards: w.Cards}
	}
	return nil
}

// MarshalJSON flattens the active variant back into the wire shape.
func (c Card) MarshalJSON() ([]byte, error) {
	w := cardWire{ID: c.ID, Type: c.Type, CreatedAt: c.CreatedAt}
	switch {
	case c.QA != nil:
		w.Question = c.QA.Question
		w.Answer = c.QA.Answer
	case c.Research != nil:
		w.Question = c.Research.Question
		w.Answer = c.Research.Answer
		w.SubQuestions = c.Research.SubQuestions
	case c.SourceNote != nil:
		w.SourceTitle = c.SourceNote.SourceTitle
		w.SourceURL = c.SourceNote.SourceURL
		w.Content = c.SourceNote.Content
	case c.Flashcards != nil:
		w.Cards = c.Flashcards.Cards
	}
	return json.Marshal(w)
}

// Validate checks that the card has an id and that the populated payload
// matches the declared type.
func (c Card) Validate() error {
	if c.ID == "" {
		return fmt.Errorf("card id cannot be empty")
	}
	if !c.Type.Valid() {
		return fmt.Errorf("card %s: unknown type %q", c.ID, c.Type)
	}
	var want bool
	switch c.Type {
	case CardTypeQA:
		want = c.QA != nil
	case CardTypeResearch:
		want = c.Research != nil
	case CardTypeSourceNote:
		want = c.SourceNote != nil
	case CardTypeFlashcard:
		want = c.Flashcards != nil
	}
	if !want {
		return fmt.Errorf("card %s: type %s has no matching payload", c.ID, c.Type)
	}
	count := 0
	for _, set := range []bool{c.QA != nil, c.Research != nil, c.SourceNote != nil, c.Flashcards != nil} {
		if set {
			count++
		}
	}
	if count != 1 {
		return fmt.Errorf("card %s: expected exactly one payload, found %d", c.ID, count)
	}
	return nil
}

// Clone returns a deep copy of the card.
func (c Card) Clone() Card {
	out := Card{ID: c.ID, Type: c.Type, CreatedAt: c.CreatedAt}
	if c.QA != nil {
		qa := *c.QA
		out.QA = &qa
	}
	if c.Research != nil {
		r := *c.Research
		r.SubQuestions = append([]string(nil), c.Research.SubQuestions...)
		out.Research = &r
	}
	if c.SourceNote != nil {
		sn := *c.SourceNote
		out.SourceNote = &sn
	}
	if c.Flashcards != nil {
		fc := FlashcardPayload{Cards: append([]FlashcardFace(nil), c.Flashcards.Cards...)}
		out.Flashcards = &fc
	}
	return out
}

// Equal reports deep structural equality of two cards.
func (c Card) Equal(o Card) bool {
	if c.ID != o.ID || c.Type != o.Type || c.CreatedAt != o.CreatedAt {
		return false
	}
	switch {
	case c.QA != nil || o.QA != nil:
		if c.QA == nil || o.QA == nil {
			return false
		}
		return *c.QA == *o.QA
	case c.Research != nil || o.Research != nil:
		if c.Research == nil || o.Research == nil {
			return false
		}
		if c.Research.Question != o.Research.Question || c.Research.Answer != o.Research.Answer {
			return false
		}
		return stringSlicesEqual(c.Research.SubQuestions, o.Research.SubQuestions)
	case c.SourceNote != nil || o.SourceNote != nil:
		if c.SourceNote == nil || o.SourceNote == nil {
			return false
		}
		return *c.SourceNote == *o.SourceNote
	case c.Flashcards != nil || o.Flashcards != nil:
		if c.Flashcards == nil || o.Flashcards == nil {
			return false
		}
		if len(c.Flashcards.Cards) != len(o.Flashcards.Cards) {
			return false
		}
		for i := range c.Flashcards.Cards {
			if c.Flashcards.Cards[i] != o.Flashcards.Cards[i] {
				return false
			}
		}
		return true
	}
	return true
}

func stringSlicesEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// MergeCardJSON overlays the fields present in raw onto the existing card:
// incoming fields win, omitted fields are retained. The merge is shallow and
// operates at the wire-field level, which is exactly the contract node_update
// events carry.
func MergeCardJSON(existing Card, raw json.RawMessage) (Card, error) {
	base, err := json.Marshal(existing)
	if err != nil {
		return Card{}, fmt.Errorf("failed to marshal existing card: %w", err)
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(base, &fields); err != nil {
		return Card{}, fmt.Errorf("failed to decompose existing card: %w", err)
	}
	var incoming map[string]json.RawMessage
	if err := json.Unmarshal(raw, &incoming); err != nil {
		return Card{}, fmt.Errorf("malformed card update: %w", err)
	}
	for k, v := range incoming {
		fields[k] = v
	}
	merged, err := json.Marshal(fields)
	if err != nil {
		return Card{}, fmt.Errorf("failed to recompose card: %w", err)
	}
	var out Card
	if err := json.Unmarshal(merged, &out); err != nil {
		return Card{}, fmt.Errorf("merged card is invalid: %w", err)
	}
	return out, nil
}
