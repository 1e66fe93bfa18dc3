package domain

import (
	"strconv"
	"strings"
)

// ExtractionResult is the structured payload returned by the extraction
// collaborator. Every field is optional; the zero value means nothing could
// be extracted.
type ExtractionResult struct {
	Symptoms           []string         `json:"symptoms"`
	Modifiers          []string         `json:"modifiers"`
	PastMedicalHistory []string         `json:"past_medical_history"`
	Duration           string           `json:"duration"`
	Age                string           `json:"age"`
	Gender             string           `json:"gender"`
	Habits             *ExtractedHabits `json:"habits,omitempty"`
}

// ExtractedHabits mirrors the optional habits object in the extraction
// payload. A nil sub-object means the habit was not mentioned.
type ExtractedHabits struct {
	Smoking *ExtractedSmoking `json:"smoking,omitempty"`
	Vaping  bool              `json:"vaping"`
	Alcohol *ExtractedAlcohol `json:"alcohol,omitempty"`
	DrugUse bool              `json:"drug_use"`
}

type ExtractedSmoking struct {
	Years       int     `json:"years"`
	PacksPerDay float64 `json:"packs_per_day"`
}

type ExtractedAlcohol struct {
	DrinksPerWeek int `json:"drinks_per_week"`
}

// IsEmpty reports whether the result carries no information.
func (e ExtractionResult) IsEmpty() bool {
	return len(e.Symptoms) == 0 && len(e.Modifiers) == 0 && len(e.PastMedicalHistory) == 0 &&
		e.Duration == "" && e.Age == "" && e.Gender == "" && e.Habits == nil
}

// Seed copies an initial extraction into an empty record. Lists are filtered
// through the vocabulary; scalars are copied when non-empty.
func (r *PatientRecord) Seed(e ExtractionResult) {
	r.AddSymptoms(e.Symptoms...)
	r.AddModifiers(e.Modifiers...)
	r.AddHistory(e.PastMedicalHistory...)
	r.fillScalars(e)
	if e.Habits != nil {
		r.Habits = e.Habits.toHabits()
	}
}

// Merge folds a finalisation extraction into the record: lists are unioned
// (existing order kept, new terms appended) and scalars only fill fields that
// are still empty. Answers the patient already gave are never replaced, and
// habits are left untouched.
func (r *PatientRecord) Merge(e ExtractionResult) {
	r.AddSymptoms(e.Symptoms...)
	r.AddModifiers(e.Modifiers...)
	r.AddHistory(e.PastMedicalHistory...)
	r.fillScalars(e)
}

func (r *PatientRecord) fillScalars(e ExtractionResult) {
	if r.Age == "" && !isZeroAge(e.Age) {
		// An out-of-range numeric age is dropped; the age question will ask.
		_ = r.SetAge(e.Age)
	}
	if r.Gender == "" && e.Gender != "" {
		r.Gender = e.Gender
	}
	if r.Duration == "" && e.Duration != "" {
		r.Duration = e.Duration
	}
}

// isZeroAge treats an extracted bare "0" as absent: the dialogue only accepts
// zero with a month phrase, so the age question asks instead.
func isZeroAge(raw string) bool {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	return err == nil && n == 0
}

func (h *ExtractedHabits) toHabits() Habits {
	var out Habits
	if h.Smoking != nil {
		out.Smoking = SmokingHabit{Present: true, Years: h.Smoking.Years, PacksPerDay: h.Smoking.PacksPerDay}
	}
	out.Vaping = h.Vaping
	if h.Alcohol != nil {
		out.Alcohol = AlcoholHabit{Present: true, DrinksPerWeek: h.Alcohol.DrinksPerWeek}
	}
	out.DrugUse = h.DrugUse
	return out
}
