package store

import (
	"strings"

	"github.com/samber/lo"

	"github.com/kamusiapp/kamusi/internal/entity"
	"github.com/kamusiapp/kamusi/internal/srs"
)

// Reduce applies one action to the state and returns the successor state.
// It never mutates its input: every transition copies the slices it touches,
// so callers may diff or serialize the previous state safely. "now" is
// supplied once per dispatch to keep the function pure.
func Reduce(state entity.AppState, action Action, now int64) entity.AppState {
	next := state
	next.Now = now

	switch a := action.(type) {
	case AddItem:
		item := entity.VocabItem{
			ID:        a.ID,
			DeckID:    a.Draft.DeckID,
			Term:      a.Draft.Term,
			Meaning:   a.Draft.Meaning,
			Gloss:     a.Draft.Gloss,
			Pos:       a.Draft.Pos,
			Tags:      append([]string(nil), a.Draft.Tags...),
			Example:   a.Draft.Example,
			Note:      a.Draft.Note,
			Srs:       srs.New(now),
			CreatedAt: now,
			UpdatedAt: now,
		}
		// Most-recent-first ordering.
		next.Items = append([]entity.VocabItem{item}, state.Items...)

	case UpdateItem:
		next.Items = lo.Map(state.Items, func(it entity.VocabItem, _ int) entity.VocabItem {
			if it.ID != a.ID {
				return it
			}
			patched := a.Patch.Apply(it)
			patched.UpdatedAt = now
			return patched
		})

	case DeleteItem:
		next.Items = lo.Reject(state.Items, func(it entity.VocabItem, _ int) bool {
			return it.ID == a.ID
		})
		next.Wrong = lo.Reject(state.Wrong, func(w entity.WrongNoteItem, _ int) bool {
			return w.ItemID == a.ID
		})

	case Review:
		next = applyReview(next, state, a.ID, a.Grade, now)

	case QuizAnswer:
		grade := entity.GradeGood
		if !a.Correct {
			grade = entity.GradeAgain
		}
		known := lo.SomeBy(state.Items, func(it entity.VocabItem) bool { return it.ID == a.ID })
		next = applyReview(next, state, a.ID, grade, now)
		if !a.Correct && known {
			next.Wrong = upsertWrongNote(next.Wrong, a.ID, now)
		}

	case MarkKnown:
		next.Wrong = lo.Reject(state.Wrong, func(w entity.WrongNoteItem, _ int) bool {
			return w.ItemID == a.ID
		})

	case ClearWrongNotes:
		next.Wrong = []entity.WrongNoteItem{}

	case AddDeck:
		name := strings.TrimSpace(a.Name)
		if name == "" {
			return state
		}
		deck := entity.Deck{ID: a.ID, Name: name, CreatedAt: now, UpdatedAt: now}
		next.Decks = append(append([]entity.Deck(nil), state.Decks...), deck)

	case RenameDeck:
		name := strings.TrimSpace(a.Name)
		if name == "" || entity.IsReservedDeckID(a.ID) {
			return state
		}
		next.Decks = lo.Map(state.Decks, func(d entity.Deck, _ int) entity.Deck {
			if d.ID != a.ID {
				return d
			}
			d.Name = name
			d.UpdatedAt = now
			return d
		})

	case DeleteDeck:
		if entity.IsReservedDeckID(a.ID) {
			return state
		}
		inUse := lo.SomeBy(state.Items, func(it entity.VocabItem) bool {
			return it.DeckID == a.ID
		})
		if inUse {
			return state
		}
		next.Decks = lo.Reject(state.Decks, func(d entity.Deck, _ int) bool {
			return d.ID == a.ID
		})

	case PatchSettings:
		next.Settings = a.Patch.Apply(state.Settings)

	case Hydrate:
		next = a.State
		next.Now = now
	}

	return next
}

// applyReview replaces the item's scheduling state and appends to the
// capped review log. Unknown item IDs are a no-op.
func applyReview(next, state entity.AppState, id string, grade entity.Grade, now int64) entity.AppState {
	_, found := lo.Find(state.Items, func(it entity.VocabItem) bool { return it.ID == id })
	if !found {
		return next
	}

	next.Items = lo.Map(state.Items, func(it entity.VocabItem, _ int) entity.VocabItem {
		if it.ID != id {
			return it
		}
		it.Srs = srs.ApplyReview(it.Srs, grade, now)
		it.UpdatedAt = now
		return it
	})

	log := make([]entity.ReviewLogItem, 0, len(state.ReviewLog)+1)
	log = append(log, state.ReviewLog...)
	log = append(log, entity.ReviewLogItem{ItemID: id, Grade: grade, At: now})
	if len(log) > entity.ReviewLogCap {
		log = log[len(log)-entity.ReviewLogCap:]
	}
	next.ReviewLog = log
	return next
}

// upsertWrongNote increments an existing entry or prepends a fresh one.
func upsertWrongNote(wrong []entity.WrongNoteItem, id string, now int64) []entity.WrongNoteItem {
	if lo.SomeBy(wrong, func(w entity.WrongNoteItem) bool { return w.ItemID == id }) {
		return lo.Map(wrong, func(w entity.WrongNoteItem, _ int) entity.WrongNoteItem {
			if w.ItemID != id {
				return w
			}
			w.WrongCount++
			w.LastWrongAt = now
			return w
		})
	}
	note := entity.WrongNoteItem{ItemID: id, WrongCount: 1, LastWrongAt: now}
	return append([]entity.WrongNoteItem{note}, wrong...)
}
