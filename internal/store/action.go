// Package store holds the domain state reducer and the dispatching Store
// that owns the in-memory AppState. All mutation flows through actions.
package store

import "github.com/kamusiapp/kamusi/internal/entity"

// Action is the closed set of state transitions. Reduce handles every
// variant; unknown actions are a no-op.
type Action interface {
	isAction()
}

// AddItem creates a new vocab item from a draft. ID is assigned by the
// dispatching Store when left empty, keeping the reducer deterministic.
type AddItem struct {
	ID    string
	Draft entity.ItemDraft
}

// UpdateItem merges a partial patch into the matching item.
type UpdateItem struct {
	ID    string
	Patch entity.ItemPatch
}

// DeleteItem removes an item and cascades removal of its wrong-note entry.
type DeleteItem struct {
	ID string
}

// Review applies a graded flashcard review to an item.
type Review struct {
	ID    string
	Grade entity.Grade
}

// QuizAnswer records a quiz outcome: correct maps to grade good, incorrect
// to again plus a wrong-note upsert. A correct answer does not clear an
// existing wrong-note; only MarkKnown does.
type QuizAnswer struct {
	ID      string
	Correct bool
}

// MarkKnown clears the wrong-note for an item (flashcard "mastered" flow).
type MarkKnown struct {
	ID string
}

// ClearWrongNotes empties the wrong-answers notebook.
type ClearWrongNotes struct{}

// AddDeck creates a deck. Blank names are a no-op. ID is assigned by the
// dispatching Store when left empty.
type AddDeck struct {
	ID   string
	Name string
}

// RenameDeck renames a non-reserved deck. Blank names are a no-op.
type RenameDeck struct {
	ID   string
	Name string
}

// DeleteDeck removes a deck unless it is reserved or still referenced by
// any item (referential integrity is enforced here, not in the UI).
type DeleteDeck struct {
	ID string
}

// PatchSettings shallow-merges into the settings.
type PatchSettings struct {
	Patch entity.SettingsPatch
}

// Hydrate replaces the whole state; the escape hatch used by the
// persistence layer once the authoritative load resolves.
type Hydrate struct {
	State entity.AppState
}

func (AddItem) isAction()         {}
func (UpdateItem) isAction()      {}
func (DeleteItem) isAction()      {}
func (Review) isAction()          {}
func (QuizAnswer) isAction()      {}
func (MarkKnown) isAction()       {}
func (ClearWrongNotes) isAction() {}
func (AddDeck) isAction()         {}
func (RenameDeck) isAction()      {}
func (DeleteDeck) isAction()      {}
func (PatchSettings) isAction()   {}
func (Hydrate) isAction()         {}
