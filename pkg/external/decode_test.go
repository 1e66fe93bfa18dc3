package external

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medemi-triage-server/internal/domain"
)

func TestDecodeExtraction(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		wantOK bool
		want   domain.ExtractionResult
	}{
		{
			name: "clean object",
			input: `{"symptoms": ["fever", "cough"], "modifiers": ["mild"], "past_medical_history": [],
				"duration": "3 days", "age": "45", "gender": "female"}`,
			wantOK: true,
			want: domain.ExtractionResult{
				Symptoms:  []string{"fever", "cough"},
				Modifiers: []string{"mild"},
				Duration:  "3 days",
				Age:       "45",
				Gender:    "female",
			},
		},
		{
			name:   "object wrapped in prose",
			input:  "Sure! Here is the JSON:\n```json\n{\"symptoms\": [\"headache\"], \"age\": 45}\n```\nLet me know.",
			wantOK: true,
			want: domain.ExtractionResult{
				Symptoms: []string{"headache"},
				Age:      "45",
			},
		},
		{
			name:   "nulls and mixed list items",
			input:  `{"symptoms": ["nausea", 3, null, " "], "gender": null, "duration": "null", "age": 7.5}`,
			wantOK: true,
			want: domain.ExtractionResult{
				Symptoms: []string{"nausea"},
				Age:      "7.5",
			},
		},
		{
			name:   "list given as a string is dropped",
			input:  `{"symptoms": "fever", "age": "30"}`,
			wantOK: true,
			want:   domain.ExtractionResult{Age: "30"},
		},
		{name: "no braces", input: "I could not find anything", wantOK: false},
		{name: "empty reply", input: "", wantOK: false},
		{name: "truncated object", input: `{"symptoms": ["fever"`, wantOK: false},
		{name: "not json between braces", input: "{symptoms: fever}", wantOK: false},
		{name: "braces reversed", input: "} nothing {", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := DecodeExtraction(tt.input)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeExtraction_Habits(t *testing.T) {
	got, ok := DecodeExtraction(`{"symptoms": ["cough"], "habits": {"smoking": {"years": 12, "packs_per_day": 0.5}, "vaping": false, "alcohol": null, "drug_use": true}}`)
	require.True(t, ok)
	require.NotNil(t, got.Habits)
	require.NotNil(t, got.Habits.Smoking)
	assert.Equal(t, 12, got.Habits.Smoking.Years)
	assert.Equal(t, 0.5, got.Habits.Smoking.PacksPerDay)
	assert.Nil(t, got.Habits.Alcohol)
	assert.True(t, got.Habits.DrugUse)

	got, ok = DecodeExtraction(`{"symptoms": ["cough"], "habits": null}`)
	require.True(t, ok)
	assert.Nil(t, got.Habits)

	// A malformed habits object does not discard the rest of the payload.
	got, ok = DecodeExtraction(`{"symptoms": ["cough"], "habits": {"vaping": "sometimes"}}`)
	require.True(t, ok)
	assert.Nil(t, got.Habits)
	assert.Equal(t, []string{"cough"}, got.Symptoms)

	got, ok = DecodeExtraction(`{"habits": {"vaping": false, "drug_use": false}}`)
	require.True(t, ok)
	assert.Nil(t, got.Habits)
}

func TestBuildExtractionPrompt(t *testing.T) {
	prompt := BuildExtractionPrompt("I have a fever of 100%", "")
	assert.Contains(t, prompt, "INPUT TEXT:\nI have a fever of 100%\n")
	assert.NotContains(t, prompt, "Additional Information:")
	assert.Contains(t, prompt, "shortness of breath")
	assert.Contains(t, prompt, "sudden onset")
	assert.Contains(t, prompt, "on antidepressants")
	assert.NotContains(t, prompt, "%!")

	withTranscript := BuildExtractionPrompt("fever", "Q: What is the patient's age?\nA: 40")
	assert.True(t, strings.Contains(withTranscript, "fever\n\nAdditional Information:\nQ: What is the patient's age?\nA: 40"))
}

func TestExtractionCacheKey(t *testing.T) {
	a := ExtractionCacheKey("mistral:7b", "prompt one")
	b := ExtractionCacheKey("mistral:7b", "prompt two")
	c := ExtractionCacheKey("llama3", "prompt one")

	assert.True(t, strings.HasPrefix(a, extractionKeyPrefix))
	assert.NotEqual(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Equal(t, a, ExtractionCacheKey("mistral:7b", "prompt one"))
	assert.NotContains(t, a, "prompt")
}
