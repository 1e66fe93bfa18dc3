// Package domain contains the core entities of the triage engine: the
// structured patient record, the resumable session context, urgency
// classifications and the assessment produced at the end of a dialogue.
//
// Output is advisory triage guidance only. Scores, tiers and candidate
// conditions are produced by fixed heuristic rules and are not a diagnosis.
package domain

import (
	"errors"
	"time"
)

// UrgencyTier is the triage priority derived from the numeric risk score.
type UrgencyTier string

const (
	TIER_IMMEDIATE   UrgencyTier = "IMMEDIATE"
	TIER_URGENT      UrgencyTier = "URGENT"
	TIER_LESS_URGENT UrgencyTier = "LESS_URGENT"
	TIER_NON_URGENT  UrgencyTier = "NON_URGENT"
)

// Score thresholds separating the urgency tiers.
const (
	ImmediateThreshold  = 20.0
	UrgentThreshold     = 12.0
	LessUrgentThreshold = 6.0
)

// DiagnosisUrgency tags a candidate condition produced by the diagnosis rules.
type DiagnosisUrgency string

const (
	EMERGENCY   DiagnosisUrgency = "EMERGENCY"
	URGENT      DiagnosisUrgency = "URGENT"
	LESS_URGENT DiagnosisUrgency = "LESS_URGENT"
	NON_URGENT  DiagnosisUrgency = "NON_URGENT"
)

// Stage is the position of a session in the dialogue lifecycle.
type Stage string

const (
	STAGE_INITIAL         Stage = "INITIAL"
	STAGE_QUESTIONS       Stage = "QUESTIONS"
	STAGE_COMPLETE        Stage = "COMPLETE"
	STAGE_SHOW_ASSESSMENT Stage = "SHOW_ASSESSMENT"
)

var (
	ErrNotFound              = errors.New("not found")
	ErrAlreadyExists         = errors.New("already exists")
	ErrInvalidStage          = errors.New("operation not allowed in current session stage")
	ErrNoPendingQuestion     = errors.New("session has no pending question")
	ErrSessionComplete       = errors.New("session dialogue already complete")
	ErrExtractionUnavailable = errors.New("extraction service unavailable")
	ErrEmptyNarrative        = errors.New("narrative text is required")
)

// ClassifyScore maps a risk score onto its urgency tier.
func ClassifyScore(score float64) UrgencyTier {
	switch {
	case score >= ImmediateThreshold:
		return TIER_IMMEDIATE
	case score >= UrgentThreshold:
		return TIER_URGENT
	case score >= LessUrgentThreshold:
		return TIER_LESS_URGENT
	default:
		return TIER_NON_URGENT
	}
}

// IsValid reports whether t is one of the four urgency tiers.
func (t UrgencyTier) IsValid() bool {
	switch t {
	case TIER_IMMEDIATE, TIER_URGENT, TIER_LESS_URGENT, TIER_NON_URGENT:
		return true
	default:
		return false
	}
}

func (t UrgencyTier) String() string {
	return string(t)
}

// Advice returns the patient-facing priority banner for the tier.
func (t UrgencyTier) Advice() string {
	switch t {
	case TIER_IMMEDIATE:
		return "PRIORITY: IMMEDIATE - CALL 911 OR GO TO ER IMMEDIATELY!"
	case TIER_URGENT:
		return "PRIORITY: URGENT - Should be seen within 2-4 hours"
	case TIER_LESS_URGENT:
		return "PRIORITY: LESS URGENT - Should be seen within 24 hours"
	default:
		return "PRIORITY: NON-URGENT - Routine appointment recommended"
	}
}

// Guidance returns the follow-up sentence shown beneath the banner.
func (t UrgencyTier) Guidance() string {
	switch t {
	case TIER_IMMEDIATE:
		return "These symptoms require emergency medical attention."
	case TIER_URGENT:
		return "Please seek urgent care or emergency services."
	case TIER_LESS_URGENT:
		return "Schedule an appointment with a doctor today."
	default:
		return "A regular appointment with a primary care doctor can be scheduled."
	}
}

// LogFields returns structured logging fields for audit trails.
func (t UrgencyTier) LogFields() map[string]any {
	return map[string]any{
		"urgency_tier": string(t),
		"is_valid":     t.IsValid(),
		"emergency":    t == TIER_IMMEDIATE,
	}
}

// Rank orders diagnosis urgencies from most to least urgent. Unknown tags
// rank after every known one.
func (u DiagnosisUrgency) Rank() int {
	switch u {
	case EMERGENCY:
		return 0
	case URGENT:
		return 1
	case LESS_URGENT:
		return 2
	case NON_URGENT:
		return 3
	default:
		return 4
	}
}

// IsValid reports whether u is a known diagnosis urgency.
func (u DiagnosisUrgency) IsValid() bool {
	return u.Rank() < 4
}

// Label is the bracketed badge used in rendered reports.
func (u DiagnosisUrgency) Label() string {
	switch u {
	case EMERGENCY:
		return "[CRITICAL]"
	case URGENT:
		return "[URGENT]"
	case LESS_URGENT:
		return "[MODERATE]"
	case NON_URGENT:
		return "[ROUTINE]"
	default:
		return "[UNKNOWN]"
	}
}

func (u DiagnosisUrgency) String() string {
	return string(u)
}

// IsValid reports whether s is a known session stage.
func (s Stage) IsValid() bool {
	switch s {
	case STAGE_INITIAL, STAGE_QUESTIONS, STAGE_COMPLETE, STAGE_SHOW_ASSESSMENT:
		return true
	default:
		return false
	}
}

func (s Stage) String() string {
	return string(s)
}

// Diagnosis is a candidate condition emitted by the diagnosis rule engine.
type Diagnosis struct {
	Condition string           `json:"condition"`
	Reasoning string           `json:"reasoning"`
	Urgency   DiagnosisUrgency `json:"urgency"`
}

// SpecialtyRecommendation pairs a recommended specialty with the reason shown
// to the patient.
type SpecialtyRecommendation struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// ScoreBreakdown itemises each step of the risk score for auditing.
type ScoreBreakdown struct {
	Symptoms         float64 `json:"symptoms"`
	Modifiers        float64 `json:"modifiers"`
	Pain             float64 `json:"pain"`
	AgeMultiplier    float64 `json:"age_multiplier"`
	AmplifiedBase    float64 `json:"amplified_base"`
	History          float64 `json:"history"`
	PsychiatricBonus float64 `json:"psychiatric_bonus"`
	Habits           float64 `json:"habits"`
	Raw              float64 `json:"raw"`
	Final            float64 `json:"final"`
}

// Assessment is the read-only output computed once the dialogue finishes.
type Assessment struct {
	Score            float64                   `json:"score"`
	Tier             UrgencyTier               `json:"tier"`
	TierAdvice       string                    `json:"tier_advice"`
	TierGuidance     string                    `json:"tier_guidance"`
	Breakdown        ScoreBreakdown            `json:"breakdown"`
	Diagnoses        []Diagnosis               `json:"diagnoses"`
	Specialties      []SpecialtyRecommendation `json:"specialties"`
	RiskFactors      []string                  `json:"risk_factors,omitempty"`
	DoctorGroups     []DoctorGroup             `json:"doctor_groups,omitempty"`
	DirectoryMessage string                    `json:"directory_message,omitempty"`
	Disclaimer       string                    `json:"disclaimer"`
	GeneratedAt      time.Time                 `json:"generated_at"`
}

// AssessmentDisclaimer accompanies every assessment.
const AssessmentDisclaimer = "These are potential conditions based on reported symptoms. Only a healthcare provider can provide an accurate diagnosis."

// SpecialtyNames returns the recommended specialty names in rank order.
func (a *Assessment) SpecialtyNames() []string {
	names := make([]string, 0, len(a.Specialties))
	for _, s := range a.Specialties {
		names = append(names, s.Name)
	}
	return names
}
