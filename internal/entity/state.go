package entity

import "strings"

// Deck is a named collection of vocab items.
type Deck struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedAt int64  `json:"createdAt"`
	UpdatedAt int64  `json:"updatedAt"`
}

// Reserved deck identifiers. These decks display catalog-backed content
// instead of local items and cannot be renamed or deleted.
const (
	DeckAllID       = "deck-all"
	CloudDeckPrefix = "deck-cloud-"
	DefaultDeckID   = "deck-default"
)

// IsReservedDeckID reports whether the deck is one of the system decks.
func IsReservedDeckID(id string) bool {
	return id == DeckAllID || strings.HasPrefix(id, CloudDeckPrefix)
}

// WrongNoteItem tracks a quiz or review miss for the remedial queue.
// It references an item but does not own it.
type WrongNoteItem struct {
	ItemID      string `json:"itemId"`
	WrongCount  int    `json:"wrongCount"`
	LastWrongAt int64  `json:"lastWrongAt"`
}

// ReviewLogItem is one append-only audit record of a review outcome.
type ReviewLogItem struct {
	ItemID string `json:"itemId"`
	Grade  Grade  `json:"grade"`
	At     int64  `json:"at"`
}

// ReviewLogCap bounds the review log to the most recent entries.
const ReviewLogCap = 1000

// QuizSource selects where quiz questions are drawn from.
type QuizSource string

const (
	QuizSourceAll      QuizSource = "all"
	QuizSourceWrong    QuizSource = "wrong"
	QuizSourceDeck     QuizSource = "deck"
	QuizSourceCategory QuizSource = "category"
)

// AppSettings is the pure configuration portion of the app state.
type AppSettings struct {
	Mode          StudyMode  `json:"mode"`
	DueOnly       bool       `json:"dueOnly"`
	ShowSecondary bool       `json:"showSecondary"`
	UILanguage    string     `json:"uiLanguage"`
	ActiveTab     string     `json:"activeTab"`
	BottomTab     string     `json:"bottomTab"`
	QuizSize      int        `json:"quizSize"`
	QuizSource    QuizSource `json:"quizSource"`
	QuizDeckID    string     `json:"quizDeckId,omitempty"`
	QuizCategory  string     `json:"quizCategory,omitempty"`
}

// SettingsPatch is a partial settings update; nil fields are left untouched.
type SettingsPatch struct {
	Mode          *StudyMode  `json:"mode,omitempty"`
	DueOnly       *bool       `json:"dueOnly,omitempty"`
	ShowSecondary *bool       `json:"showSecondary,omitempty"`
	UILanguage    *string     `json:"uiLanguage,omitempty"`
	ActiveTab     *string     `json:"activeTab,omitempty"`
	BottomTab     *string     `json:"bottomTab,omitempty"`
	QuizSize      *int        `json:"quizSize,omitempty"`
	QuizSource    *QuizSource `json:"quizSource,omitempty"`
	QuizDeckID    *string     `json:"quizDeckId,omitempty"`
	QuizCategory  *string     `json:"quizCategory,omitempty"`
}

// Apply merges the patch into a copy of the settings.
func (p SettingsPatch) Apply(s AppSettings) AppSettings {
	if p.Mode != nil {
		s.Mode = *p.Mode
	}
	if p.DueOnly != nil {
		s.DueOnly = *p.DueOnly
	}
	if p.ShowSecondary != nil {
		s.ShowSecondary = *p.ShowSecondary
	}
	if p.UILanguage != nil {
		s.UILanguage = *p.UILanguage
	}
	if p.ActiveTab != nil {
		s.ActiveTab = *p.ActiveTab
	}
	if p.BottomTab != nil {
		s.BottomTab = *p.BottomTab
	}
	if p.QuizSize != nil {
		s.QuizSize = *p.QuizSize
	}
	if p.QuizSource != nil {
		s.QuizSource = *p.QuizSource
	}
	if p.QuizDeckID != nil {
		s.QuizDeckID = *p.QuizDeckID
	}
	if p.QuizCategory != nil {
		s.QuizCategory = *p.QuizCategory
	}
	return s
}

// AppState is the root aggregate: the single in-memory source of truth.
type AppState struct {
	Now       int64           `json:"now"`
	Decks     []Deck          `json:"decks"`
	Items     []VocabItem     `json:"items"`
	Wrong     []WrongNoteItem `json:"wrong"`
	ReviewLog []ReviewLogItem `json:"reviewLog"`
	Settings  AppSettings     `json:"settings"`
}

// NewDefaultState seeds the state used when no prior snapshot exists.
func NewDefaultState(now int64) AppState {
	return AppState{
		Now: now,
		Decks: []Deck{
			{ID: DeckAllID, Name: "All words", CreatedAt: now, UpdatedAt: now},
			{ID: DefaultDeckID, Name: "My words", CreatedAt: now, UpdatedAt: now},
		},
		Items:     []VocabItem{},
		Wrong:     []WrongNoteItem{},
		ReviewLog: []ReviewLogItem{},
		Settings: AppSettings{
			Mode:          ModeSwahili,
			ShowSecondary: true,
			UILanguage:    "ko",
			ActiveTab:     "study",
			BottomTab:     "home",
			QuizSize:      10,
			QuizSource:    QuizSourceAll,
		},
	}
}
