package domain

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/medemi-triage-server/internal/vocabulary"
)

// Age bounds for a numeric age.
const (
	MinAge = 0
	MaxAge = 120
)

// Pain score bounds.
const (
	MinPainScore = 0
	MaxPainScore = 10
)

// PatientRecord is the structured model built up over a triage session.
//
// List fields only ever hold canonical vocabulary terms: the Add* methods
// drop anything else. Scalar string fields are empty until supplied.
type PatientRecord struct {
	Symptoms           []string `json:"symptoms"`
	Modifiers          []string `json:"modifiers"`
	PastMedicalHistory []string `json:"past_medical_history"`
	Habits             Habits   `json:"habits"`

	// Age is either a decimal integer in [0,120] or a month-denominated
	// phrase for infants ("6 months").
	Age      string `json:"age,omitempty"`
	Gender   string `json:"gender,omitempty"`
	Duration string `json:"duration,omitempty"`

	PainScore         *int  `json:"pain_score,omitempty"`
	PregnancyPossible *bool `json:"pregnancy_possible,omitempty"`

	// Answers holds free-text replies to the open-ended questions, keyed by
	// question key.
	Answers map[QuestionKey]string `json:"answers,omitempty"`
}

// Habits is the structured lifestyle sub-record.
type Habits struct {
	Smoking SmokingHabit `json:"smoking"`
	Vaping  bool         `json:"vaping"`
	Alcohol AlcoholHabit `json:"alcohol"`
	DrugUse bool         `json:"drug_use"`
}

type SmokingHabit struct {
	Present     bool    `json:"present"`
	Years       int     `json:"years"`
	PacksPerDay float64 `json:"packs_per_day"`
}

// PackYears is years smoked times packs per day.
func (s SmokingHabit) PackYears() float64 {
	return float64(s.Years) * s.PacksPerDay
}

type AlcoholHabit struct {
	Present       bool `json:"present"`
	DrinksPerWeek int  `json:"drinks_per_week"`
}

// NewPatientRecord returns an empty record with the habits sub-record
// initialised.
func NewPatientRecord() *PatientRecord {
	return &PatientRecord{
		Symptoms:           []string{},
		Modifiers:          []string{},
		PastMedicalHistory: []string{},
		Answers:            make(map[QuestionKey]string),
	}
}

// AddSymptoms appends canonical symptoms not already present. Unknown terms
// are silently dropped.
func (r *PatientRecord) AddSymptoms(terms ...string) {
	r.Symptoms = appendCanonical(r.Symptoms, terms, vocabulary.IsSymptom)
}

// AddModifiers appends canonical modifiers not already present.
func (r *PatientRecord) AddModifiers(terms ...string) {
	r.Modifiers = appendCanonical(r.Modifiers, terms, vocabulary.IsModifier)
}

// AddHistory appends canonical history conditions not already present.
func (r *PatientRecord) AddHistory(terms ...string) {
	r.PastMedicalHistory = appendCanonical(r.PastMedicalHistory, terms, vocabulary.IsHistory)
}

func appendCanonical(existing, terms []string, canonical func(string) bool) []string {
	if existing == nil {
		existing = []string{}
	}
	for _, t := range terms {
		t = strings.TrimSpace(t)
		if !canonical(t) || contains(existing, t) {
			continue
		}
		existing = append(existing, t)
	}
	return existing
}

func contains(list []string, term string) bool {
	for _, v := range list {
		if v == term {
			return true
		}
	}
	return false
}

func containsAny(list, terms []string) bool {
	for _, t := range terms {
		if contains(list, t) {
			return true
		}
	}
	return false
}

func (r *PatientRecord) HasSymptom(symptom string) bool {
	return contains(r.Symptoms, symptom)
}

func (r *PatientRecord) HasAnySymptom(symptoms ...string) bool {
	return containsAny(r.Symptoms, symptoms)
}

func (r *PatientRecord) HasModifier(modifier string) bool {
	return contains(r.Modifiers, modifier)
}

func (r *PatientRecord) HasHistory(condition string) bool {
	return contains(r.PastMedicalHistory, condition)
}

func (r *PatientRecord) HasAnyHistory(conditions ...string) bool {
	return containsAny(r.PastMedicalHistory, conditions)
}

// NumericAge parses Age as a decimal integer. ok is false for an absent or
// month-denominated age.
func (r *PatientRecord) NumericAge() (age int, ok bool) {
	if r.Age == "" {
		return 0, false
	}
	age, err := strconv.Atoi(strings.TrimSpace(r.Age))
	if err != nil {
		return 0, false
	}
	return age, true
}

// SetAge stores an age. A numeric value outside [0,120] is rejected and the
// record left unchanged; a non-numeric value is stored verbatim.
func (r *PatientRecord) SetAge(raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	if n, err := strconv.Atoi(raw); err == nil {
		if n < MinAge || n > MaxAge {
			return NewValidationError("age", fmt.Sprintf("age must be between %d and %d", MinAge, MaxAge), raw)
		}
		r.Age = strconv.Itoa(n)
		return nil
	}
	r.Age = raw
	return nil
}

// SetPainScore stores score clamped to [0,10].
func (r *PatientRecord) SetPainScore(score int) {
	if score < MinPainScore {
		score = MinPainScore
	}
	if score > MaxPainScore {
		score = MaxPainScore
	}
	r.PainScore = &score
}

// SetPregnancyPossible records the answer to the pregnancy question.
func (r *PatientRecord) SetPregnancyPossible(possible bool) {
	r.PregnancyPossible = &possible
}

// SetAnswer stores a free-text answer for an open-ended question.
func (r *PatientRecord) SetAnswer(key QuestionKey, answer string) {
	if r.Answers == nil {
		r.Answers = make(map[QuestionKey]string)
	}
	r.Answers[key] = answer
}

// HasAnswer reports whether a free-text answer was recorded for key.
func (r *PatientRecord) HasAnswer(key QuestionKey) bool {
	_, ok := r.Answers[key]
	return ok
}

// IsEmpty reports whether nothing has been recorded yet.
func (r *PatientRecord) IsEmpty() bool {
	return len(r.Symptoms) == 0 && len(r.Modifiers) == 0 && len(r.PastMedicalHistory) == 0 &&
		r.Age == "" && r.Gender == "" && r.Duration == "" &&
		r.PainScore == nil && r.PregnancyPossible == nil &&
		len(r.Answers) == 0 && r.Habits == (Habits{})
}

// Clone returns a deep copy of the record.
func (r *PatientRecord) Clone() *PatientRecord {
	c := *r
	c.Symptoms = append([]string{}, r.Symptoms...)
	c.Modifiers = append([]string{}, r.Modifiers...)
	c.PastMedicalHistory = append([]string{}, r.PastMedicalHistory...)
	if r.PainScore != nil {
		v := *r.PainScore
		c.PainScore = &v
	}
	if r.PregnancyPossible != nil {
		v := *r.PregnancyPossible
		c.PregnancyPossible = &v
	}
	c.Answers = make(map[QuestionKey]string, len(r.Answers))
	for k, v := range r.Answers {
		c.Answers[k] = v
	}
	return &c
}

// RiskFactors summarises recorded habits for display.
func (r *PatientRecord) RiskFactors() []string {
	var factors []string
	if r.Habits.Smoking.Present {
		factors = append(factors, fmt.Sprintf("Smoking (%d years)", r.Habits.Smoking.Years))
	}
	if r.Habits.Vaping {
		factors = append(factors, "Vaping")
	}
	if r.Habits.Alcohol.Present {
		factors = append(factors, fmt.Sprintf("Alcohol (%d drinks/week)", r.Habits.Alcohol.DrinksPerWeek))
	}
	if r.Habits.DrugUse {
		factors = append(factors, "Substance use")
	}
	return factors
}

// SymptomSummary joins the symptom list for use as a default booking reason.
func (r *PatientRecord) SymptomSummary() string {
	return strings.Join(r.Symptoms, ", ")
}
