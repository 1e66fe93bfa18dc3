package external

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/medemi-triage-server/internal/domain"
)

// rawExtraction accepts whatever types the model emits; fields are coerced
// afterwards.
type rawExtraction struct {
	Symptoms           json.RawMessage `json:"symptoms"`
	Modifiers          json.RawMessage `json:"modifiers"`
	PastMedicalHistory json.RawMessage `json:"past_medical_history"`
	Duration           json.RawMessage `json:"duration"`
	Age                json.RawMessage `json:"age"`
	Gender             json.RawMessage `json:"gender"`
	Habits             json.RawMessage `json:"habits"`
}

// DecodeExtraction parses a model reply. The JSON object is taken from the
// first '{' to the last '}' so surrounding prose is ignored. ok is false, and
// the result empty, when no object can be decoded.
//
// Scalars given as numbers or booleans are coerced to strings, null means
// absent, and non-string list items are dropped. A malformed habits object is
// ignored without discarding the rest of the payload.
func DecodeExtraction(text string) (result domain.ExtractionResult, ok bool) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return domain.ExtractionResult{}, false
	}

	var raw rawExtraction
	if err := json.Unmarshal([]byte(text[start:end+1]), &raw); err != nil {
		return domain.ExtractionResult{}, false
	}

	result = domain.ExtractionResult{
		Symptoms:           stringList(raw.Symptoms),
		Modifiers:          stringList(raw.Modifiers),
		PastMedicalHistory: stringList(raw.PastMedicalHistory),
		Duration:           scalarString(raw.Duration),
		Age:                scalarString(raw.Age),
		Gender:             scalarString(raw.Gender),
	}

	if len(raw.Habits) > 0 && string(raw.Habits) != "null" {
		var habits domain.ExtractedHabits
		if err := json.Unmarshal(raw.Habits, &habits); err == nil && habits != (domain.ExtractedHabits{}) {
			result.Habits = &habits
		}
	}

	return result, true
}

func stringList(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}
	var items []interface{}
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil
	}
	var out []string
	for _, item := range items {
		if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
			out = append(out, strings.TrimSpace(s))
		}
	}
	return out
}

func scalarString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		s := strings.TrimSpace(t)
		if strings.EqualFold(s, "null") || strings.EqualFold(s, "none") {
			return ""
		}
		return s
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}
