// Package srs implements the spaced-repetition scheduler: pure functions
// computing the next review date and difficulty parameters for an item.
package srs

import "github.com/kamusiapp/kamusi/internal/entity"

// Scheduling bounds. The interval floor (~1 hour) prevents degenerate
// near-zero review loops; the ceiling keeps intervals from running away.
const (
	MinIntervalDays = 0.04
	MaxIntervalDays = 180.0
	MinEase         = 1.3
	MaxEase         = 2.8
	InitialEase     = 2.2

	dayMillis = 86_400_000
)

// New returns the scheduling state assigned to a freshly added item:
// due immediately, zero interval, default ease.
func New(now int64) entity.Srs {
	return entity.Srs{
		DueAt:        now,
		IntervalDays: 0,
		Ease:         InitialEase,
	}
}

// IsDue reports whether the item's scheduled review time has passed.
func IsDue(s entity.Srs, now int64) bool {
	return s.DueAt <= now
}

// ApplyReview computes the successor scheduling state for a review outcome.
// It is pure and total: any valid state and grade produce a valid state.
//
// The bucket multipliers are asymmetric: failure demotes fast (x0.35),
// success promotes gently, weighted by ease. The specific constants are a
// frozen reference behaviour, not tunables.
func ApplyReview(prev entity.Srs, grade entity.Grade, now int64) entity.Srs {
	next := prev

	switch grade {
	case entity.GradeAgain:
		next.Ease = clamp(prev.Ease-0.2, MinEase, MaxEase)
		next.IntervalDays = max(MinIntervalDays, prev.IntervalDays*0.35)
		next.CorrectStreak = 0
	case entity.GradeHard:
		next.Ease = clamp(prev.Ease-0.05, MinEase, MaxEase)
		if prev.IntervalDays <= 0.1 {
			next.IntervalDays = 0.5
		} else {
			next.IntervalDays = prev.IntervalDays * max(1.2, next.Ease*0.9)
		}
		next.CorrectStreak = prev.CorrectStreak + 1
	case entity.GradeGood:
		next.Ease = clamp(prev.Ease+0.03, MinEase, MaxEase)
		if prev.IntervalDays <= 0.1 {
			next.IntervalDays = 1
		} else {
			next.IntervalDays = prev.IntervalDays * next.Ease
		}
		next.CorrectStreak = prev.CorrectStreak + 1
	}

	next.IntervalDays = clamp(next.IntervalDays, MinIntervalDays, MaxIntervalDays)
	next.DueAt = now + int64(next.IntervalDays*dayMillis)
	next.TotalReviews = prev.TotalReviews + 1
	reviewed := now
	next.LastReviewedAt = &reviewed
	return next
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
