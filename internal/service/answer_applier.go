package service

import (
	"strconv"
	"strings"

	"github.com/medemi-triage-server/internal/domain"
	"github.com/medemi-triage-server/internal/vocabulary"
)

type painPhrase struct {
	phrase string
	score  int
}

// Checked in order; the first phrase found wins.
var painPhrases = []painPhrase{
	{"no pain", 0},
	{"mild", 2},
	{"moderate", 5},
	{"severe", 8},
	{"worst pain ever", 10},
	{"unbearable", 10},
}

var (
	affirmativeAnswers     = map[string]bool{"yes": true, "y": true, "yeah": true, "yep": true, "maybe": true, "possibly": true}
)

// ApplyAnswer writes a validated answer into the record under the field
// addressed by key.
func ApplyAnswer(record *domain.PatientRecord, key domain.QuestionKey, raw string) {
	switch key {
	case domain.KeyAge:
		if n, err := strconv.Atoi(strings.TrimSpace(raw)); err == nil {
			record.Age = strconv.Itoa(n)
		} else {
			record.Age = raw
		}
	case domain.KeyGender:
		record.Gender = strings.ToLower(strings.TrimSpace(raw))
	case domain.KeyDuration:
		record.Duration = raw
	case domain.KeyModifiers:
		record.AddModifiers(vocabulary.ScanModifiers(raw)...)
	case domain.KeyPastMedicalHistory:
		record.AddHistory(vocabulary.ScanHistory(raw)...)
	case domain.KeyPainScale:
		record.SetPainScore(PainScoreFromText(raw))
	case domain.KeyPregnancyPossibility:
		record.SetPregnancyPossible(IsAffirmative(raw))
	default:
		record.SetAnswer(key, raw)
	}
}

// PainScoreFromText reads a pain score from an answer. The first integer in
// the text wins, clamped to [0,10]; otherwise the first matching descriptive
// phrase is mapped, and an unrecognised answer scores 0.
func PainScoreFromText(text string) int {
	if m := digitsPattern.FindString(text); m != "" {
		if n, err := strconv.Atoi(m); err == nil {
			return clamp(n, domain.MinPainScore, domain.MaxPainScore)
		}
		// Too many digits for an int: the answer is off the scale.
		return domain.MaxPainScore
	}

	lower := strings.ToLower(text)
	for _, p := range painPhrases {
		if strings.Contains(lower, p.phrase) {
			return p.score
		}
	}
	return 0
}

// IsAffirmative reports whether an answer to a yes/no question admits the
// possibility.
func IsAffirmative(raw string) bool {
	return affirmativeAnswers[strings.ToLower(strings.TrimSpace(raw))]
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
