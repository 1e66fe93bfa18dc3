package service

import (
	"math"

	"github.com/sirupsen/logrus"

	"github.com/medemi-triage-server/internal/domain"
	"github.com/medemi-triage-server/internal/vocabulary"
)

// Psychiatric comorbidity bonus added when psychiatric medication history
// coincides with mental-health symptoms.
const psychiatricBonus = 3.0

// RiskScoringEngine computes the numeric urgency score of a patient record.
// Scoring is a pure function of the record; the engine only carries a logger.
type RiskScoringEngine struct {
	logger *logrus.Logger
}

// NewRiskScoringEngine creates a new risk scoring engine
func NewRiskScoringEngine(logger *logrus.Logger) *RiskScoringEngine {
	return &RiskScoringEngine{logger: logger}
}

// Score returns the final rounded, non-negative score.
func (e *RiskScoringEngine) Score(record *domain.PatientRecord) float64 {
	return e.Evaluate(record).Final
}

// Evaluate computes the score and itemises each contribution.
//
// Order matters: symptom, modifier and pain contributions are amplified by the
// age multiplier; history, the psychiatric bonus and habits are added after.
func (e *RiskScoringEngine) Evaluate(record *domain.PatientRecord) domain.ScoreBreakdown {
	var b domain.ScoreBreakdown

	for _, s := range record.Symptoms {
		b.Symptoms += float64(vocabulary.SymptomWeight(s))
	}
	for _, m := range record.Modifiers {
		b.Modifiers += float64(vocabulary.ModifierWeight(m))
	}
	b.Pain = painBucket(record.PainScore)

	b.AgeMultiplier = ageMultiplier(record)
	b.AmplifiedBase = (b.Symptoms + b.Modifiers + b.Pain) * b.AgeMultiplier

	for _, p := range record.PastMedicalHistory {
		b.History += float64(vocabulary.HistoryWeight(p))
	}

	if record.HasAnyHistory(vocabulary.PsychiatricMedications...) &&
		record.HasAnySymptom(vocabulary.MentalHealthSymptoms...) {
		b.PsychiatricBonus = psychiatricBonus
	}

	b.Habits = habitRisk(record)

	b.Raw = b.AmplifiedBase + b.History + b.PsychiatricBonus + b.Habits
	b.Final = math.Max(0, roundTenth(b.Raw))

	if e.logger != nil {
		e.logger.WithFields(logrus.Fields{
			"symptom_count":  len(record.Symptoms),
			"age_multiplier": b.AgeMultiplier,
			"raw_score":      b.Raw,
			"final_score":    b.Final,
		}).Debug("Computed risk score")
	}

	return b
}

// Classify scores the record and maps the score onto its urgency tier.
func (e *RiskScoringEngine) Classify(record *domain.PatientRecord) (float64, domain.UrgencyTier) {
	score := e.Score(record)
	return score, domain.ClassifyScore(score)
}

// painBucket maps a 0-10 pain score onto its additive contribution.
func painBucket(painScore *int) float64 {
	if painScore == nil || *painScore <= 0 {
		return 0
	}
	switch p := *painScore; {
	case p >= 8:
		return 5
	case p >= 6:
		return 3
	case p >= 4:
		return 2
	default:
		return 1
	}
}

// ageMultiplier amplifies risk for the elderly and for infants. A non-numeric
// age (e.g. "6 months") applies no amplification.
func ageMultiplier(record *domain.PatientRecord) float64 {
	age, ok := record.NumericAge()
	if !ok {
		return 1
	}
	switch {
	case age >= 60:
		return 1.5 + float64(age-60)/10
	case age < 2:
		return 1.3
	default:
		return 1
	}
}

func habitRisk(record *domain.PatientRecord) float64 {
	var risk float64
	h := record.Habits

	if h.Smoking.Present {
		packYears := h.Smoking.PackYears()
		var base float64
		switch {
		case packYears > 30:
			base = 5
		case packYears > 20:
			base = 4
		case packYears > 10:
			base = 3
		case packYears > 5:
			base = 2
		default:
			base = 1
		}
		if record.HasAnySymptom(vocabulary.RespiratorySymptoms...) {
			base *= 1.5
		}
		risk += base
	}

	if h.Vaping {
		risk += 2
		if record.HasAnySymptom(vocabulary.BreathingChestSymptoms...) {
			risk += 2
		}
	}

	if h.Alcohol.Present {
		switch {
		case h.Alcohol.DrinksPerWeek > 14:
			risk += 3
		case h.Alcohol.DrinksPerWeek > 7:
			risk += 2
		default:
			risk += 1
		}
		if record.HasAnySymptom(vocabulary.GastrointestinalSymptoms...) {
			risk += 2
		}
	}

	if h.DrugUse {
		risk += 4
		if record.HasAnySymptom(vocabulary.StimulantRiskSymptoms...) {
			risk += 3
		}
	}

	return roundTenth(risk)
}

func roundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}
