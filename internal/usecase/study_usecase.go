package usecase

import (
	"context"
	"fmt"
	"math/rand"
	"sort"

	"github.com/samber/lo"

	"github.com/kamusiapp/kamusi/internal/entity"
	"github.com/kamusiapp/kamusi/internal/repository"
	"github.com/kamusiapp/kamusi/internal/srs"
)

// QuizQuestion is one prompt/answer pair drawn for a quiz round.
type QuizQuestion struct {
	ItemID    string
	Prompt    string
	Answer    string
	Secondary string
	FromCache bool
}

// StudyUsecase builds the review and quiz queues consumed by the study
// screens, reading local items and, for catalog-backed sources, the
// offline mirror.
type StudyUsecase interface {
	DueItems(state entity.AppState, now int64) []entity.VocabItem
	DeckItems(state entity.AppState, deckID string) []entity.VocabItem
	BuildQuiz(ctx context.Context, state entity.AppState, now, seed int64) ([]QuizQuestion, error)
}

// NewStudyUsecase wires the mirror used for remote-category quizzes.
func NewStudyUsecase(mirror repository.MirrorStore) StudyUsecase {
	return &studyUsecase{mirror: mirror}
}

type studyUsecase struct {
	mirror repository.MirrorStore
}

// DueItems returns the items whose review time has passed, most overdue
// first.
func (u *studyUsecase) DueItems(state entity.AppState, now int64) []entity.VocabItem {
	due := lo.Filter(state.Items, func(it entity.VocabItem, _ int) bool {
		return srs.IsDue(it.Srs, now)
	})
	// Sort a copy so the caller's state slice stays untouched.
	out := append([]entity.VocabItem(nil), due...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Srs.DueAt < out[j].Srs.DueAt
	})
	return out
}

// DeckItems returns the local items of one deck; the all-words deck
// aggregates every local item.
func (u *studyUsecase) DeckItems(state entity.AppState, deckID string) []entity.VocabItem {
	if deckID == entity.DeckAllID {
		return append([]entity.VocabItem(nil), state.Items...)
	}
	return lo.Filter(state.Items, func(it entity.VocabItem, _ int) bool {
		return it.DeckID == deckID
	})
}

// BuildQuiz assembles a quiz round from the configured source. The seed
// drives the shuffle so a round can be rebuilt deterministically.
func (u *studyUsecase) BuildQuiz(ctx context.Context, state entity.AppState, now, seed int64) ([]QuizQuestion, error) {
	settings := state.Settings
	var pool []QuizQuestion

	switch settings.QuizSource {
	case entity.QuizSourceWrong:
		byID := lo.KeyBy(state.Items, func(it entity.VocabItem) string { return it.ID })
		for _, note := range state.Wrong {
			if it, ok := byID[note.ItemID]; ok {
				pool = append(pool, itemQuestion(it))
			}
		}
	case entity.QuizSourceDeck:
		for _, it := range u.DeckItems(state, settings.QuizDeckID) {
			pool = append(pool, itemQuestion(it))
		}
	case entity.QuizSourceCategory:
		records, err := u.mirror.Query(ctx, repository.MirrorQuery{
			Mode:     settings.Mode,
			Category: settings.QuizCategory,
		})
		if err != nil {
			return nil, fmt.Errorf("query mirror for quiz: %w", err)
		}
		for i := range records {
			pool = append(pool, cachedQuestion(&records[i]))
		}
	default: // QuizSourceAll
		items := state.Items
		if settings.DueOnly {
			items = u.DueItems(state, now)
		}
		for _, it := range items {
			pool = append(pool, itemQuestion(it))
		}
	}

	rng := rand.New(rand.NewSource(seed))
	rng.Shuffle(len(pool), func(i, j int) {
		pool[i], pool[j] = pool[j], pool[i]
	})

	size := settings.QuizSize
	if size <= 0 || size > len(pool) {
		size = len(pool)
	}
	return pool[:size], nil
}

func itemQuestion(it entity.VocabItem) QuizQuestion {
	return QuizQuestion{
		ItemID:    it.ID,
		Prompt:    it.Term,
		Answer:    it.Meaning,
		Secondary: it.Gloss,
	}
}

func cachedQuestion(rec *entity.CachedVocab) QuizQuestion {
	q := QuizQuestion{
		ItemID:    rec.ID,
		Prompt:    rec.Term,
		FromCache: true,
	}
	if rec.MeaningKo != nil {
		q.Answer = rec.MeaningKo.Text
	}
	if rec.MeaningEn != nil {
		q.Secondary = rec.MeaningEn.Text
	}
	if q.Answer == "" && rec.MeaningSw != nil {
		q.Answer = rec.MeaningSw.Text
	}
	return q
}
