package service

import (
	"github.com/sirupsen/logrus"

	"github.com/medemi-triage-server/internal/domain"
)

// MaxSpecialties caps the number of recommended specialties.
const MaxSpecialties = 3

type specialtyEntry struct {
	name     string
	symptoms []string
}

// specialtyTable is evaluated in order; earlier specialties rank higher.
var specialtyTable = []specialtyEntry{
	{"Cardiology", []string{"chest pain", "shortness of breath", "orthopnea", "edema"}},
	{"Pulmonology", []string{"shortness of breath", "cough", "orthopnea"}},
	{"Gastroenterology", []string{"abdominal pain", "diarrhea", "vomiting", "nausea"}},
	{"Neurology", []string{"headache", "dizziness", "neck pain", "memory problems"}},
	{"Infectious Disease", []string{"fever", "chills", "night sweats"}},
	{"Rheumatology", []string{"joint pain", "muscle aches", "rash"}},
	{"Endocrinology", []string{"weight loss", "weight gain", "fatigue"}},
	{"Nephrology", []string{"reduced urine output", "edema"}},
	{"Psychiatry", []string{
		"anxiety", "depression", "panic attacks", "mood swings", "insomnia",
		"hopelessness", "suicidal thoughts", "hallucinations", "paranoia",
		"loss of interest", "racing thoughts", "social withdrawal", "excessive worry",
		"irritability", "restlessness", "sadness", "difficulty concentrating",
	}},
	{"Gynecology", []string{
		"pelvic pain", "abnormal vaginal bleeding", "missed period", "irregular periods",
		"heavy menstrual bleeding", "painful periods", "vaginal discharge",
		"painful intercourse", "breast pain", "breast lumps", "hot flashes",
		"vaginal itching", "vaginal dryness", "spotting between periods",
		"postmenopausal bleeding", "painful ovulation", "breast tenderness",
		"nipple discharge", "vulvar pain",
	}},
	{"Urology", []string{
		"painful urination", "frequent urination", "burning sensation during urination",
		"urgency to urinate", "reduced urine output",
	}},
	{"ENT", []string{"sore throat", "runny nose"}},
	{"Dermatology", []string{"rash", "swelling"}},
	{"Orthopedics", []string{"joint pain", "muscle aches", "back pain"}},
	{domain.GeneralMedicine, []string{"fever", "cough", "headache", "nausea", "fatigue"}},
}

var specialtyReasons = map[string]string{
	"Cardiology":           "Heart and cardiovascular system evaluation needed",
	"Pulmonology":          "Lung and respiratory system assessment required",
	"Gastroenterology":     "Digestive system evaluation needed",
	"Neurology":            "Nervous system assessment required",
	"Infectious Disease":   "Specialized evaluation for infection symptoms",
	"Rheumatology":         "Joint, muscle, and autoimmune condition assessment",
	"Endocrinology":        "Hormonal and metabolic system evaluation",
	"Nephrology":           "Kidney function assessment needed",
	"Psychiatry":           "Mental health evaluation and treatment needed",
	"Gynecology":           "Women's reproductive health evaluation needed",
	"Urology":              "Urinary system evaluation needed",
	"ENT":                  "Ear, nose, and throat evaluation",
	"Dermatology":          "Skin condition evaluation",
	"Orthopedics":          "Bone, joint, and musculoskeletal assessment",
	domain.GeneralMedicine: "Comprehensive medical evaluation",
}

const defaultSpecialtyReason = "Specialized medical evaluation recommended"

// SpecialtyReason returns the patient-facing reason for a specialty.
func SpecialtyReason(name string) string {
	if reason, ok := specialtyReasons[name]; ok {
		return reason
	}
	return defaultSpecialtyReason
}

// SpecialtyRouter maps a record's symptoms onto recommended specialties.
type SpecialtyRouter struct {
	logger *logrus.Logger
}

// NewSpecialtyRouter creates a new specialty router
func NewSpecialtyRouter(logger *logrus.Logger) *SpecialtyRouter {
	return &SpecialtyRouter{logger: logger}
}

// Route returns up to MaxSpecialties matching specialties in table order, or
// General Medicine when nothing matches.
func (r *SpecialtyRouter) Route(record *domain.PatientRecord) []string {
	var matched []string
	seen := make(map[string]bool)

	for _, entry := range specialtyTable {
		if seen[entry.name] || !record.HasAnySymptom(entry.symptoms...) {
			continue
		}
		seen[entry.name] = true
		matched = append(matched, entry.name)
		if len(matched) == MaxSpecialties {
			break
		}
	}

	if len(matched) == 0 {
		matched = []string{domain.GeneralMedicine}
	}

	if r.logger != nil {
		r.logger.WithField("specialties", matched).Debug("Routed specialties")
	}
	return matched
}

// Recommend returns Route's output paired with each specialty's reason.
func (r *SpecialtyRouter) Recommend(record *domain.PatientRecord) []domain.SpecialtyRecommendation {
	names := r.Route(record)
	recs := make([]domain.SpecialtyRecommendation, 0, len(names))
	for _, name := range names {
		recs = append(recs, domain.SpecialtyRecommendation{Name: name, Reason: SpecialtyReason(name)})
	}
	return recs
}
