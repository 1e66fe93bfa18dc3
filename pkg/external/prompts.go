package external

import (
	"fmt"
	"strings"

	"github.com/medemi-triage-server/internal/vocabulary"
)

const extractionPromptTemplate = `You are a medical information extraction system. Your task is to analyze patient text and extract structured data with high precision.

INPUT TEXT:
%s

EXTRACTION RULES:
1. Extract ONLY information explicitly stated in the text
2. Map extracted terms to the closest match from the allowed lists below
3. If no close match exists in an allowed list, omit that item
4. Do not infer, assume, or add information not present in the source text
5. Preserve clinical accuracy - if uncertain about a mapping, omit it

ALLOWED VALUES:

Symptoms (select all that apply):
%s

Modifiers (select all that apply):
%s

Past Medical Conditions (select all that apply):
%s

EXTRACTION TARGETS:
- symptoms: List of current symptoms from allowed symptoms list
- modifiers: Qualifying terms (severity, frequency, location) from allowed modifiers list
- past_medical_history: Previous diagnoses/conditions from allowed conditions list
- duration: How long symptoms have been present (extract exact phrase, e.g., "3 days", "2 weeks")
- age: Patient age (number only, e.g., "45")
- gender: Patient gender (e.g., "male", "female", "non-binary", or null if not stated)
- habits: null unless lifestyle habits are mentioned; otherwise an object {"smoking": {"years": 0, "packs_per_day": 0} or null, "vaping": true/false, "alcohol": {"drinks_per_week": 0} or null, "drug_use": true/false}

OUTPUT FORMAT:
Return ONLY valid JSON with this exact structure (no additional text):
{
  "symptoms": [],
  "modifiers": [],
  "past_medical_history": [],
  "duration": "",
  "age": "",
  "gender": "",
  "habits": null
}

Now extract from the input text above.`

// BuildExtractionPrompt renders the extraction prompt for a narrative,
// appending the Q&A transcript when one exists.
func BuildExtractionPrompt(narrative, transcript string) string {
	input := narrative
	if strings.TrimSpace(transcript) != "" {
		input = fmt.Sprintf("%s\n\nAdditional Information:\n%s", narrative, transcript)
	}
	return fmt.Sprintf(extractionPromptTemplate,
		input,
		strings.Join(vocabulary.Symptoms, ", "),
		strings.Join(vocabulary.Modifiers, ", "),
		strings.Join(vocabulary.History, ", "),
	)
}
