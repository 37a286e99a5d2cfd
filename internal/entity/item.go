package entity

import "strings"

// Grade is the outcome of a single review, a closed three-value set.
type Grade string

const (
	GradeAgain Grade = "again"
	GradeHard  Grade = "hard"
	GradeGood  Grade = "good"
)

// ParseGrade converts an arbitrary string into a Grade, defaulting to again.
func ParseGrade(s string) Grade {
	switch Grade(strings.ToLower(strings.TrimSpace(s))) {
	case GradeHard:
		return GradeHard
	case GradeGood:
		return GradeGood
	default:
		return GradeAgain
	}
}

// Srs holds per-item spaced-repetition scheduling state.
// All timestamps are Unix milliseconds.
type Srs struct {
	DueAt          int64   `json:"dueAt"`
	IntervalDays   float64 `json:"intervalDays"`
	Ease           float64 `json:"ease"`
	CorrectStreak  int     `json:"correctStreak"`
	TotalReviews   int     `json:"totalReviews"`
	LastReviewedAt *int64  `json:"lastReviewedAt,omitempty"`
}

// VocabItem represents a single user-authored flashcard.
type VocabItem struct {
	ID        string   `json:"id"`
	DeckID    string   `json:"deckId"`
	Term      string   `json:"term"`    // source-language (Swahili) side
	Meaning   string   `json:"meaning"` // target-language (Korean) side
	Gloss     string   `json:"gloss,omitempty"`
	Pos       string   `json:"pos,omitempty"`
	Tags      []string `json:"tags,omitempty"`
	Example   string   `json:"example,omitempty"`
	Note      string   `json:"note,omitempty"`
	Srs       Srs      `json:"srs"`
	CreatedAt int64    `json:"createdAt"`
	UpdatedAt int64    `json:"updatedAt"`
}

// ItemDraft carries the user-supplied fields of a new item. Identity,
// timestamps and scheduling state are assigned by the reducer.
type ItemDraft struct {
	DeckID  string   `json:"deckId"`
	Term    string   `json:"term"`
	Meaning string   `json:"meaning"`
	Gloss   string   `json:"gloss,omitempty"`
	Pos     string   `json:"pos,omitempty"`
	Tags    []string `json:"tags,omitempty"`
	Example string   `json:"example,omitempty"`
	Note    string   `json:"note,omitempty"`
}

// ItemPatch is a partial update; nil fields are left untouched.
type ItemPatch struct {
	DeckID  *string   `json:"deckId,omitempty"`
	Term    *string   `json:"term,omitempty"`
	Meaning *string   `json:"meaning,omitempty"`
	Gloss   *string   `json:"gloss,omitempty"`
	Pos     *string   `json:"pos,omitempty"`
	Tags    *[]string `json:"tags,omitempty"`
	Example *string   `json:"example,omitempty"`
	Note    *string   `json:"note,omitempty"`
}

// Apply merges the patch into a copy of the item.
func (p ItemPatch) Apply(item VocabItem) VocabItem {
	if p.DeckID != nil {
		item.DeckID = *p.DeckID
	}
	if p.Term != nil {
		item.Term = *p.Term
	}
	if p.Meaning != nil {
		item.Meaning = *p.Meaning
	}
	if p.Gloss != nil {
		item.Gloss = *p.Gloss
	}
	if p.Pos != nil {
		item.Pos = *p.Pos
	}
	if p.Tags != nil {
		item.Tags = append([]string(nil), (*p.Tags)...)
	}
	if p.Example != nil {
		item.Example = *p.Example
	}
	if p.Note != nil {
		item.Note = *p.Note
	}
	return item
}
