package service

import (
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/medemi-triage-server/internal/domain"
)

// MaxDiagnoses caps the number of candidate conditions returned.
const MaxDiagnoses = 5

// DiagnosisEngine evaluates a fixed, ordered list of heuristic rules against a
// patient record and returns candidate conditions ranked by urgency.
type DiagnosisEngine struct {
	logger *logrus.Logger
	rules  []*DiagnosisRule
}

// DiagnosisRule is one entry in the ordered rule list. Evaluator returns the
// candidate it proposes, if any.
type DiagnosisRule struct {
	Code      string
	Name      string
	Evaluator func(record *domain.PatientRecord) (domain.Diagnosis, bool)
}

var nonSpecificDiagnosis = domain.Diagnosis{
	Condition: "Non-specific Symptoms",
	Reasoning: "Symptoms require clinical evaluation for accurate diagnosis",
	Urgency:   domain.LESS_URGENT,
}

// NewDiagnosisEngine creates a new diagnosis engine
func NewDiagnosisEngine(logger *logrus.Logger) *DiagnosisEngine {
	engine := &DiagnosisEngine{logger: logger}
	engine.initializeRules()
	return engine
}

// Rules returns the rule list in evaluation order.
func (e *DiagnosisEngine) Rules() []*DiagnosisRule {
	return e.rules
}

// Infer runs every rule in order, falls back to a generic candidate when none
// fires, then stable-sorts by urgency rank and keeps the top MaxDiagnoses.
func (e *DiagnosisEngine) Infer(record *domain.PatientRecord) []domain.Diagnosis {
	var diagnoses []domain.Diagnosis
	var fired []string

	for _, rule := range e.rules {
		if d, ok := rule.Evaluator(record); ok {
			diagnoses = append(diagnoses, d)
			fired = append(fired, rule.Code)
		}
	}

	if len(diagnoses) == 0 {
		diagnoses = append(diagnoses, nonSpecificDiagnosis)
	}

	sort.SliceStable(diagnoses, func(i, j int) bool {
		return diagnoses[i].Urgency.Rank() < diagnoses[j].Urgency.Rank()
	})

	if len(diagnoses) > MaxDiagnoses {
		diagnoses = diagnoses[:MaxDiagnoses]
	}

	if e.logger != nil {
		e.logger.WithFields(logrus.Fields{
			"total_rules": len(e.rules),
			"fired_rules": fired,
			"candidates":  len(diagnoses),
		}).Debug("Completed diagnosis rule evaluation")
	}

	return diagnoses
}

func (e *DiagnosisEngine) initializeRules() {
	e.addRule("DX01", "Acute coronary syndrome", e.evaluateAcuteCoronary)
	e.addRule("DX02", "Angina", e.evaluateAngina)
	e.addRule("DX03", "Respiratory exacerbation", e.evaluateRespiratoryExacerbation)
	e.addRule("DX04", "Pneumonia", e.evaluatePneumonia)
	e.addRule("DX05", "Acute abdomen", e.evaluateAcuteAbdomen)
	e.addRule("DX06", "Gastroenteritis", e.evaluateGastroenteritis)
	e.addRule("DX07", "Headache", e.evaluateHeadache)
	e.addRule("DX08", "Ectopic pregnancy or torsion", e.evaluatePelvicEmergency)
	e.addRule("DX09", "Gynecological flare", e.evaluateGynecologicalFlare)
	e.addRule("DX10", "Breast mass", e.evaluateBreastMass)
	e.addRule("DX11", "Febrile illness", e.evaluateFebrileIllness)

	if e.logger != nil {
		e.logger.WithField("rule_count", len(e.rules)).Info("Initialized diagnosis rules")
	}
}

func (e *DiagnosisEngine) addRule(code, name string, evaluator func(record *domain.PatientRecord) (domain.Diagnosis, bool)) {
	e.rules = append(e.rules, &DiagnosisRule{
		Code:      code,
		Name:      name,
		Evaluator: evaluator,
	})
}

func (e *DiagnosisEngine) evaluateAcuteCoronary(r *domain.PatientRecord) (domain.Diagnosis, bool) {
	if !r.HasSymptom("chest pain") {
		return domain.Diagnosis{}, false
	}
	if !r.HasSymptom("shortness of breath") && !r.HasModifier("severe") {
		return domain.Diagnosis{}, false
	}
	return domain.Diagnosis{
		Condition: "Acute Coronary Syndrome / Heart Attack",
		Reasoning: "Chest pain with shortness of breath is a critical cardiac warning sign",
		Urgency:   domain.EMERGENCY,
	}, true
}

func (e *DiagnosisEngine) evaluateAngina(r *domain.PatientRecord) (domain.Diagnosis, bool) {
	if !r.HasSymptom("chest pain") {
		return domain.Diagnosis{}, false
	}
	if !r.HasHistory("heart disease") && !r.Habits.Smoking.Present {
		return domain.Diagnosis{}, false
	}
	return domain.Diagnosis{
		Condition: "Angina Pectoris",
		Reasoning: "History of heart disease or smoking increases risk of cardiac chest pain",
		Urgency:   domain.URGENT,
	}, true
}

func (e *DiagnosisEngine) evaluateRespiratoryExacerbation(r *domain.PatientRecord) (domain.Diagnosis, bool) {
	if !r.HasSymptom("shortness of breath") || !r.HasAnyHistory("asthma", "COPD") {
		return domain.Diagnosis{}, false
	}
	return domain.Diagnosis{
		Condition: "Asthma Exacerbation / COPD Exacerbation",
		Reasoning: "Known respiratory condition with worsening symptoms",
		Urgency:   domain.URGENT,
	}, true
}

func (e *DiagnosisEngine) evaluatePneumonia(r *domain.PatientRecord) (domain.Diagnosis, bool) {
	if !r.HasSymptom("shortness of breath") || !r.HasSymptom("fever") || !r.HasSymptom("cough") {
		return domain.Diagnosis{}, false
	}
	return domain.Diagnosis{
		Condition: "Pneumonia",
		Reasoning: "Combination of fever, cough, and breathing difficulty suggests lung infection",
		Urgency:   domain.URGENT,
	}, true
}

func (e *DiagnosisEngine) evaluateAcuteAbdomen(r *domain.PatientRecord) (domain.Diagnosis, bool) {
	if !r.HasSymptom("abdominal pain") || !suddenSevere(r) {
		return domain.Diagnosis{}, false
	}
	return domain.Diagnosis{
		Condition: "Acute Appendicitis / Bowel Obstruction",
		Reasoning: "Severe, sudden abdominal pain requires urgent evaluation",
		Urgency:   domain.EMERGENCY,
	}, true
}

func (e *DiagnosisEngine) evaluateGastroenteritis(r *domain.PatientRecord) (domain.Diagnosis, bool) {
	if !r.HasSymptom("abdominal pain") || !r.HasSymptom("nausea") || !r.HasSymptom("vomiting") {
		return domain.Diagnosis{}, false
	}
	return domain.Diagnosis{
		Condition: "Gastroenteritis / Food Poisoning",
		Reasoning: "Abdominal pain with nausea and vomiting suggests GI infection",
		Urgency:   domain.LESS_URGENT,
	}, true
}

// evaluateHeadache always fires for a headache: thunderclap presentation is an
// emergency, anything else is the common benign form.
func (e *DiagnosisEngine) evaluateHeadache(r *domain.PatientRecord) (domain.Diagnosis, bool) {
	if !r.HasSymptom("headache") {
		return domain.Diagnosis{}, false
	}
	if suddenSevere(r) {
		return domain.Diagnosis{
			Condition: "Subarachnoid Hemorrhage / Stroke",
			Reasoning: "Sudden severe 'thunderclap' headache is a medical emergency",
			Urgency:   domain.EMERGENCY,
		}, true
	}
	return domain.Diagnosis{
		Condition: "Tension Headache / Migraine",
		Reasoning: "Most common types of headache",
		Urgency:   domain.LESS_URGENT,
	}, true
}

func (e *DiagnosisEngine) evaluatePelvicEmergency(r *domain.PatientRecord) (domain.Diagnosis, bool) {
	if !r.HasSymptom("pelvic pain") {
		return domain.Diagnosis{}, false
	}
	if !r.HasSymptom("abnormal vaginal bleeding") && !r.HasModifier("severe") {
		return domain.Diagnosis{}, false
	}
	return domain.Diagnosis{
		Condition: "Ectopic Pregnancy / Ovarian Torsion",
		Reasoning: "Severe pelvic pain with bleeding requires urgent evaluation",
		Urgency:   domain.EMERGENCY,
	}, true
}

func (e *DiagnosisEngine) evaluateGynecologicalFlare(r *domain.PatientRecord) (domain.Diagnosis, bool) {
	if !r.HasSymptom("pelvic pain") || !r.HasAnyHistory("PCOS", "endometriosis") {
		return domain.Diagnosis{}, false
	}
	return domain.Diagnosis{
		Condition: "PCOS/Endometriosis Flare",
		Reasoning: "Known gynecological condition with worsening symptoms",
		Urgency:   domain.URGENT,
	}, true
}

func (e *DiagnosisEngine) evaluateBreastMass(r *domain.PatientRecord) (domain.Diagnosis, bool) {
	if !r.HasSymptom("breast lumps") {
		return domain.Diagnosis{}, false
	}
	return domain.Diagnosis{
		Condition: "Breast Mass (Requires Evaluation)",
		Reasoning: "Any breast lump requires clinical examination and imaging",
		Urgency:   domain.URGENT,
	}, true
}

func (e *DiagnosisEngine) evaluateFebrileIllness(r *domain.PatientRecord) (domain.Diagnosis, bool) {
	if !r.HasSymptom("fever") {
		return domain.Diagnosis{}, false
	}
	if r.HasSymptom("chills") && r.HasSymptom("night sweats") {
		return domain.Diagnosis{
			Condition: "Severe Infection / Sepsis",
			Reasoning: "Fever with chills and night sweats indicates significant infection",
			Urgency:   domain.URGENT,
		}, true
	}
	return domain.Diagnosis{
		Condition: "Viral Infection / Flu",
		Reasoning: "Fever is common with viral illnesses",
		Urgency:   domain.LESS_URGENT,
	}, true
}

func suddenSevere(r *domain.PatientRecord) bool {
	return r.HasModifier("severe") && r.HasModifier("sudden onset")
}
