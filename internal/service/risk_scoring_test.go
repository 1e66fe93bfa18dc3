package service

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"github.com/medemi-triage-server/internal/domain"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	return logger
}

func newRecord(age string, symptoms, modifiers, history []string) *domain.PatientRecord {
	r := domain.NewPatientRecord()
	r.Age = age
	r.AddSymptoms(symptoms...)
	r.AddModifiers(modifiers...)
	r.AddHistory(history...)
	return r
}

func TestRiskScoringEngine_Classify(t *testing.T) {
	engine := NewRiskScoringEngine(quietLogger())

	tests := []struct {
		name      string
		record    *domain.PatientRecord
		wantScore float64
		wantTier  domain.UrgencyTier
	}{
		{
			name:      "fever and cough at 65 lands in less urgent",
			record:    newRecord("65", []string{"fever", "cough"}, []string{"moderate"}, nil),
			// (2+1+2) * 2.0
			wantScore: 10.0,
			wantTier:  domain.TIER_LESS_URGENT,
		},
		{
			name: "cardiac emergency at 70",
			record: newRecord("70",
				[]string{"chest pain", "shortness of breath"},
				[]string{"severe"},
				[]string{"heart disease"}),
			// (3+3+3) * 2.5 + 3
			wantScore: 25.5,
			wantTier:  domain.TIER_IMMEDIATE,
		},
		{
			name: "elderly cardiac presentation",
			record: newRecord("65",
				[]string{"chest pain", "shortness of breath"},
				[]string{"severe"},
				[]string{"heart disease"}),
			// (3+3+3) * 2.0 + 3
			wantScore: 21.0,
			wantTier:  domain.TIER_IMMEDIATE,
		},
		{
			name:      "mild cough in an adult",
			record:    newRecord("30", []string{"cough"}, []string{"mild"}, nil),
			wantScore: 2.0,
			wantTier:  domain.TIER_NON_URGENT,
		},
		{
			name:      "fractional age multiplier is rounded",
			record:    newRecord("63", []string{"fever", "cough"}, nil, nil),
			wantScore: 5.4,
			wantTier:  domain.TIER_NON_URGENT,
		},
		{
			name:      "infant multiplier",
			record:    newRecord("1", []string{"fever"}, nil, nil),
			wantScore: 2.6,
			wantTier:  domain.TIER_NON_URGENT,
		},
		{
			name:      "month-denominated age applies no multiplier",
			record:    newRecord("6 months", []string{"fever"}, nil, nil),
			wantScore: 2.0,
			wantTier:  domain.TIER_NON_URGENT,
		},
		{
			name:      "negative total is clamped to zero",
			record:    newRecord("30", nil, []string{"improving"}, nil),
			wantScore: 0,
			wantTier:  domain.TIER_NON_URGENT,
		},
		{
			name: "psychiatric comorbidity bonus",
			record: newRecord("30",
				[]string{"anxiety"},
				nil,
				[]string{"on antidepressants"}),
			wantScore: 7.0,
			wantTier:  domain.TIER_LESS_URGENT,
		},
		{
			name: "urgent band",
			record: newRecord("40",
				[]string{"chest pain", "shortness of breath", "fever"},
				[]string{"severe", "sudden onset"},
				nil),
			wantScore: 14.0,
			wantTier:  domain.TIER_URGENT,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, tier := engine.Classify(tt.record)
			assert.InDelta(t, tt.wantScore, score, 1e-9)
			assert.Equal(t, tt.wantTier, tier)
		})
	}
}

func TestRiskScoringEngine_PainBuckets(t *testing.T) {
	engine := NewRiskScoringEngine(nil)

	tests := []struct {
		pain int
		want float64
	}{
		{0, 0}, {1, 1}, {3, 1}, {4, 2}, {5, 2}, {6, 3}, {7, 3}, {8, 5}, {10, 5},
	}

	for _, tt := range tests {
		record := newRecord("30", []string{"headache"}, nil, nil)
		record.SetPainScore(tt.pain)
		assert.Equal(t, tt.want, engine.Score(record), "pain score %d", tt.pain)
	}
}

func TestRiskScoringEngine_Habits(t *testing.T) {
	engine := NewRiskScoringEngine(nil)

	t.Run("smoking amplified by respiratory symptoms", func(t *testing.T) {
		record := newRecord("30", []string{"cough"}, nil, nil)
		record.Habits.Smoking = domain.SmokingHabit{Present: true, Years: 10, PacksPerDay: 1}
		b := engine.Evaluate(record)
		assert.Equal(t, 3.0, b.Habits)
		assert.Equal(t, 4.0, b.Final)
	})

	t.Run("heavy smoker without respiratory symptoms", func(t *testing.T) {
		record := newRecord("30", nil, nil, nil)
		record.Habits.Smoking = domain.SmokingHabit{Present: true, Years: 40, PacksPerDay: 1}
		assert.Equal(t, 5.0, engine.Evaluate(record).Habits)
	})

	t.Run("vaping with chest symptoms", func(t *testing.T) {
		record := newRecord("30", []string{"chest pain"}, nil, nil)
		record.Habits.Vaping = true
		assert.Equal(t, 4.0, engine.Evaluate(record).Habits)
	})

	t.Run("alcohol with gastrointestinal symptoms", func(t *testing.T) {
		record := newRecord("30", []string{"nausea"}, nil, nil)
		record.Habits.Alcohol = domain.AlcoholHabit{Present: true, DrinksPerWeek: 10}
		assert.Equal(t, 4.0, engine.Evaluate(record).Habits)
	})

	t.Run("drug use with stimulant-risk symptoms", func(t *testing.T) {
		record := newRecord("30", []string{"dizziness"}, nil, nil)
		record.Habits.DrugUse = true
		assert.Equal(t, 7.0, engine.Evaluate(record).Habits)
	})

	t.Run("habits are not amplified by age", func(t *testing.T) {
		record := newRecord("70", nil, nil, nil)
		record.Habits.DrugUse = true
		b := engine.Evaluate(record)
		assert.Equal(t, 2.5, b.AgeMultiplier)
		assert.Equal(t, 4.0, b.Final)
	})
}
