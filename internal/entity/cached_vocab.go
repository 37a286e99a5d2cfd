package entity

import (
	"fmt"
	"strings"
)

// StudyMode is the two-valued axis of study direction: a Korean speaker
// learning Swahili, or a Swahili speaker learning Korean.
type StudyMode string

const (
	ModeSwahili StudyMode = "sw"
	ModeKorean  StudyMode = "ko"
)

// ParseStudyMode converts an arbitrary string into a StudyMode.
func ParseStudyMode(s string) (StudyMode, error) {
	switch StudyMode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeSwahili:
		return ModeSwahili, nil
	case ModeKorean:
		return ModeKorean, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidStudyMode, s)
	}
}

// TombstonePrefix marks soft-deleted catalog records. Any consumer must
// filter these before display or caching.
const TombstonePrefix = "__deleted__"

// Meaning is one parallel-language rendering of a catalog term.
type Meaning struct {
	Text          string `json:"text"`
	Pronunciation string `json:"pronunciation,omitempty"`
	AudioURL      string `json:"audioUrl,omitempty"`
}

// ExampleSentence carries a usage example with its translations.
type ExampleSentence struct {
	Text          string `json:"text"`
	Pronunciation string `json:"pronunciation,omitempty"`
	AudioURL      string `json:"audioUrl,omitempty"`
	TranslationKo string `json:"translationKo,omitempty"`
	TranslationEn string `json:"translationEn,omitempty"`
	TranslationSw string `json:"translationSw,omitempty"`
}

// CachedVocab is a denormalized snapshot of one remote catalog entry,
// as mirrored into the offline cache.
type CachedVocab struct {
	ID            string           `json:"id"`
	Mode          StudyMode        `json:"mode"`
	Term          string           `json:"term"`
	Pronunciation string           `json:"pronunciation,omitempty"`
	AudioURL      string           `json:"audioUrl,omitempty"`
	ImageURL      string           `json:"imageUrl,omitempty"`
	MeaningKo     *Meaning         `json:"meaningKo,omitempty"`
	MeaningEn     *Meaning         `json:"meaningEn,omitempty"`
	MeaningSw     *Meaning         `json:"meaningSw,omitempty"`
	Example       *ExampleSentence `json:"example,omitempty"`
	Pos           string           `json:"pos,omitempty"`
	Category      string           `json:"category,omitempty"`
	Difficulty    int              `json:"difficulty"`
	CreatedAt     int64            `json:"createdAt"`
}

// Tombstoned reports whether the record is a soft-delete marker.
func (v *CachedVocab) Tombstoned() bool {
	return strings.HasPrefix(v.Term, TombstonePrefix)
}

// suspiciousFragments are obvious injection markers; free-text fields
// containing them fail validation and the record is dropped.
var suspiciousFragments = []string{
	"<script", "</script", "javascript:", "onerror=", "onload=", "<iframe",
}

func containsSuspicious(s string) bool {
	lower := strings.ToLower(s)
	for _, frag := range suspiciousFragments {
		if strings.Contains(lower, frag) {
			return true
		}
	}
	return false
}

// Validate checks the record at the boundary where external data enters
// the system. Tombstones are valid records; callers filter them separately.
func (v *CachedVocab) Validate() error {
	if strings.TrimSpace(v.ID) == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidCachedVocab)
	}
	if v.Mode != ModeSwahili && v.Mode != ModeKorean {
		return fmt.Errorf("%w: mode %q", ErrInvalidStudyMode, v.Mode)
	}
	if strings.TrimSpace(v.Term) == "" {
		return fmt.Errorf("%w: missing term", ErrInvalidCachedVocab)
	}
	if v.Difficulty < 1 || v.Difficulty > 5 {
		return fmt.Errorf("%w: difficulty %d out of range", ErrInvalidCachedVocab, v.Difficulty)
	}
	if v.CreatedAt <= 0 {
		return fmt.Errorf("%w: missing creation timestamp", ErrInvalidCachedVocab)
	}
	free := []string{v.Term, v.Pronunciation, v.Pos, v.Category}
	for _, m := range []*Meaning{v.MeaningKo, v.MeaningEn, v.MeaningSw} {
		if m != nil {
			free = append(free, m.Text, m.Pronunciation)
		}
	}
	if v.Example != nil {
		free = append(free, v.Example.Text, v.Example.TranslationKo, v.Example.TranslationEn, v.Example.TranslationSw)
	}
	for _, s := range free {
		if containsSuspicious(s) {
			return fmt.Errorf("%w: suspicious content", ErrInvalidCachedVocab)
		}
	}
	return nil
}
