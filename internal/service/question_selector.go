package service

import (
	"fmt"
	"strings"

	"github.com/medemi-triage-server/internal/domain"
	"github.com/medemi-triage-server/internal/vocabulary"
)

// GuardianAgeLimit is the age below which questions are addressed to a
// guardian rather than the patient.
const GuardianAgeLimit = 13

// Pregnancy question age window, inclusive.
const (
	pregnancyMinAge = 15
	pregnancyMaxAge = 50
)

const (
	painScaleQuestion = "On a scale of 0-10, where 0 is no pain and 10 is the worst pain imaginable, how would you rate the pain?"
	pregnancyQuestion = "Is there any possibility of pregnancy?"
)

var femaleGenders = map[string]bool{"female": true, "f": true, "woman": true}

// questionStep is one entry of the base question sequence. pending reports
// whether the record still lacks the information the question asks for.
type questionStep struct {
	key     domain.QuestionKey
	text    func(r *domain.PatientRecord) string
	pending func(r *domain.PatientRecord) bool
}

func fixedText(text string) func(*domain.PatientRecord) string {
	return func(*domain.PatientRecord) string { return text }
}

func unanswered(key domain.QuestionKey) func(*domain.PatientRecord) bool {
	return func(r *domain.PatientRecord) bool { return !r.HasAnswer(key) }
}

func unansweredWithSymptoms(key domain.QuestionKey) func(*domain.PatientRecord) bool {
	return func(r *domain.PatientRecord) bool { return len(r.Symptoms) > 0 && !r.HasAnswer(key) }
}

var baseSequence = []questionStep{
	{
		key:     domain.KeyAge,
		text:    fixedText("What is the patient's age?"),
		pending: func(r *domain.PatientRecord) bool { return r.Age == "" },
	},
	{
		key:     domain.KeyGender,
		text:    fixedText("What is the patient's gender? (male/female/other)"),
		pending: func(r *domain.PatientRecord) bool { return r.Gender == "" },
	},
	{
		key:     domain.KeyDuration,
		text:    fixedText("How long have the symptoms been present?"),
		pending: func(r *domain.PatientRecord) bool { return r.Duration == "" },
	},
	{
		key: domain.KeyModifiers,
		text: func(r *domain.PatientRecord) string {
			return fmt.Sprintf("How would you describe the severity of the %s? (mild/moderate/severe)", r.Symptoms[0])
		},
		pending: func(r *domain.PatientRecord) bool { return len(r.Modifiers) == 0 && len(r.Symptoms) > 0 },
	},
	{
		key:     domain.KeyPastMedicalHistory,
		text:    fixedText("Are there any existing medical conditions or chronic illnesses?"),
		pending: func(r *domain.PatientRecord) bool { return len(r.PastMedicalHistory) == 0 && len(r.Symptoms) > 0 },
	},
	{
		key:     domain.KeyCurrentMedications,
		text:    fixedText("Are you currently taking any medications? If yes, please list them."),
		pending: unanswered(domain.KeyCurrentMedications),
	},
	{
		key:     domain.KeyAllergies,
		text:    fixedText("Do you have any known allergies (medications, food, environmental)?"),
		pending: unanswered(domain.KeyAllergies),
	},
	{
		key:     domain.KeyRecentTravel,
		text:    fixedText("Have you traveled recently or been exposed to anyone who is sick?"),
		pending: unanswered(domain.KeyRecentTravel),
	},
	{
		key:     domain.KeySymptomTriggers,
		text:    fixedText("Have you noticed anything that makes the symptoms better or worse?"),
		pending: unansweredWithSymptoms(domain.KeySymptomTriggers),
	},
	{
		key:     domain.KeyPreviousEpisodes,
		text:    fixedText("Have you experienced similar symptoms before?"),
		pending: unansweredWithSymptoms(domain.KeyPreviousEpisodes),
	},
	{
		key:  domain.KeyFeverPresent,
		text: fixedText("Do you have a fever? If yes, what is your temperature?"),
		pending: func(r *domain.PatientRecord) bool {
			return !r.HasSymptom("fever") && !r.HasAnswer(domain.KeyFeverPresent)
		},
	},
	{
		key:     domain.KeyEatingDrinking,
		text:    fixedText("Are you able to eat and drink normally?"),
		pending: unanswered(domain.KeyEatingDrinking),
	},
	{
		key:     domain.KeySleepPatterns,
		text:    fixedText("How have your sleep patterns been affected?"),
		pending: unanswered(domain.KeySleepPatterns),
	},
	{
		key:     domain.KeyStressLevel,
		text:    fixedText("On a scale of 1-10, how would you rate your current stress level?"),
		pending: unanswered(domain.KeyStressLevel),
	},
}

// NextQuestion selects the next follow-up question for the record. It is a
// pure function of the record and the asked-set; ok is false once nothing
// remains to ask.
//
// Selection order: the pain-scale override, the pregnancy override, then the
// first base question not yet asked whose field is still unset.
func NextQuestion(record *domain.PatientRecord, asked domain.QuestionSet) (q domain.Question, ok bool) {
	switch {
	case needsPainScale(record, asked):
		q = domain.Question{Key: domain.KeyPainScale, Text: painScaleQuestion}
	case needsPregnancyCheck(record, asked):
		q = domain.Question{Key: domain.KeyPregnancyPossibility, Text: pregnancyQuestion}
	default:
		step, found := nextBaseStep(record, asked)
		if !found {
			return domain.Question{}, false
		}
		q = domain.Question{Key: step.key, Text: step.text(record)}
	}

	if IsGuardianContext(record) {
		q.Text = FormatForGuardian(q.Text)
	}
	return q, true
}

func nextBaseStep(record *domain.PatientRecord, asked domain.QuestionSet) (questionStep, bool) {
	for _, step := range baseSequence {
		if asked.Has(step.key) {
			continue
		}
		if step.pending(record) {
			return step, true
		}
	}
	return questionStep{}, false
}

func needsPainScale(record *domain.PatientRecord, asked domain.QuestionSet) bool {
	return record.HasAnySymptom(vocabulary.PainSymptoms...) && !asked.Has(domain.KeyPainScale)
}

func needsPregnancyCheck(record *domain.PatientRecord, asked domain.QuestionSet) bool {
	if asked.Has(domain.KeyPregnancyPossibility) {
		return false
	}
	age, ok := record.NumericAge()
	if !ok || age < pregnancyMinAge || age > pregnancyMaxAge {
		return false
	}
	if !femaleGenders[strings.ToLower(strings.TrimSpace(record.Gender))] {
		return false
	}
	return record.HasAnySymptom(vocabulary.PregnancyRelevantSymptoms...)
}

// IsGuardianContext reports whether questions should address a guardian: the
// age is known and either under GuardianAgeLimit or non-numeric (an infant
// age given in months).
func IsGuardianContext(record *domain.PatientRecord) bool {
	if strings.TrimSpace(record.Age) == "" {
		return false
	}
	age, ok := record.NumericAge()
	return !ok || age < GuardianAgeLimit
}

var guardianSubstitutions = []struct{ from, to string }{
	{"Do you", "Does the patient"},
	{"Are you", "Is the patient"},
	{"Have you", "Has the patient"},
	{"your", "the patient's"},
	{"Your", "The patient's"},
}

// FormatForGuardian rewrites second-person phrasing into third person.
func FormatForGuardian(text string) string {
	for _, r := range guardianSubstitutions {
		text = strings.ReplaceAll(text, r.from, r.to)
	}
	return text
}
