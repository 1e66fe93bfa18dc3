package service

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/medemi-triage-server/internal/domain"
)

// Corrective messages returned for rejected answers.
const (
	MsgAgeUnusual       = "The age seems unusual. Please confirm the correct age."
	MsgAgeInfant        = "For infants under 1 year, please specify age in months"
	MsgAgeNotNumber     = "Please provide age as a number"
	MsgDurationNoUnit   = "Please specify duration with time units"
	MsgDurationNoAmount = "Please include how long"
)

var (
	durationUnits = []string{"hour", "day", "week", "month", "year", "minute"}
	digitsPattern = regexp.MustCompile(`\d+`)
)

// ValidateAnswer checks a raw answer for the given question key. It returns
// nil when the answer is acceptable. Only age and duration are validated;
// every other answer is free text.
func ValidateAnswer(key domain.QuestionKey, raw string) *domain.ValidationError {
	var msg string
	switch key {
	case domain.KeyAge:
		msg = validateAge(raw)
	case domain.KeyDuration:
		msg = validateDuration(raw)
	}
	if msg == "" {
		return nil
	}
	return domain.NewValidationError(string(key), msg, raw)
}

func validateAge(raw string) string {
	age, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		if strings.Contains(strings.ToLower(raw), "month") {
			return ""
		}
		return MsgAgeNotNumber
	}
	if age < domain.MinAge || age > domain.MaxAge {
		return MsgAgeUnusual
	}
	if age < 1 {
		return MsgAgeInfant
	}
	return ""
}

func validateDuration(raw string) string {
	lower := strings.ToLower(raw)
	hasUnit := false
	for _, unit := range durationUnits {
		if strings.Contains(lower, unit) {
			hasUnit = true
			break
		}
	}
	if !hasUnit {
		return MsgDurationNoUnit
	}
	if !digitsPattern.MatchString(raw) {
		return MsgDurationNoAmount
	}
	return ""
}
