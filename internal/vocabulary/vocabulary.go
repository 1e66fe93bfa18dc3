// Package vocabulary holds the canonical, closed vocabulary of symptom,
// modifier, medical-history and habit terms recognised by the triage engine.
//
// Normalisation of free text onto these terms is the extractor's job. This
// package only answers membership, weight and literal-scan questions; a term
// outside the vocabulary is never an error, it is simply not recognised.
package vocabulary

import "strings"

// Symptoms is the ordered set of recognised symptom tags.
var Symptoms = []string{
	"fever", "cough", "headache", "nausea", "fatigue", "dizziness",
	"shortness of breath", "chest pain", "abdominal pain", "diarrhea",
	"vomiting", "sore throat", "runny nose", "muscle aches", "joint pain",
	"rash", "swelling", "weight loss", "weight gain", "night sweats", "chills",
	"edema", "orthopnea", "reduced urine output", "back pain", "neck pain",
	"insomnia", "anxiety", "panic attacks", "mood swings", "sadness",
	"hopelessness", "loss of interest", "difficulty concentrating",
	"memory problems", "restlessness", "irritability", "suicidal thoughts",
	"hallucinations", "paranoia", "racing thoughts", "appetite changes",
	"social withdrawal", "excessive worry", "pelvic pain",
	"abnormal vaginal bleeding", "missed period", "irregular periods",
	"heavy menstrual bleeding", "painful periods", "vaginal discharge",
	"painful intercourse", "breast pain", "breast lumps", "hot flashes",
	"vaginal itching", "vaginal dryness", "spotting between periods",
	"postmenopausal bleeding", "painful urination", "frequent urination",
	"lower back pain", "bloating", "constipation",
	"painful bowel movements during period", "painful ovulation",
	"breast tenderness", "nipple discharge", "vulvar pain",
	"burning sensation during urination", "urgency to urinate",
}

// Modifiers is the ordered set of recognised symptom qualifiers.
var Modifiers = []string{
	"mild", "moderate", "severe", "intermittent", "constant", "sudden onset",
	"gradual onset", "worsening", "improving", "persistent", "recurring",
	"sharp", "dull", "throbbing", "burning", "stabbing", "cramping",
}

// History is the ordered set of recognised past-medical-history tags.
var History = []string{
	"diabetes", "hypertension", "asthma", "heart disease", "cancer", "stroke",
	"kidney disease", "liver disease", "COPD", "arthritis", "depression",
	"anxiety", "thyroid disorder", "autoimmune disease", "allergies",
	"previous surgeries", "cardiomyopathy", "bipolar disorder",
	"schizophrenia", "PTSD", "OCD", "panic disorder", "eating disorder",
	"ADHD", "autism", "personality disorder", "substance abuse disorder",
	"on antidepressants", "on antipsychotics", "on mood stabilizers",
	"on anti-anxiety medication", "PCOS", "endometriosis", "fibroids",
	"ovarian cysts", "menopause", "pregnancy complications",
	"previous miscarriage", "infertility", "cervical dysplasia",
	"on birth control", "pelvic inflammatory disease", "adenomyosis",
	"uterine prolapse", "ovarian cancer", "breast cancer", "cervical cancer",
	"endometrial cancer", "HPV", "sexually transmitted infection",
	"gestational diabetes", "preeclampsia", "ectopic pregnancy",
	"cesarean section", "hysterectomy", "tubal ligation",
}

// Habits lists the lifestyle habits the extractor may report.
var Habits = []string{"smoking", "alcohol", "drug use", "vaping", "tobacco chewing"}

var (
	symptomSet  = toSet(Symptoms)
	modifierSet = toSet(Modifiers)
	historySet  = toSet(History)
)

func toSet(terms []string) map[string]struct{} {
	set := make(map[string]struct{}, len(terms))
	for _, t := range terms {
		set[t] = struct{}{}
	}
	return set
}

// IsSymptom reports whether term is a canonical symptom tag.
func IsSymptom(term string) bool {
	_, ok := symptomSet[term]
	return ok
}

// IsModifier reports whether term is a canonical modifier tag.
func IsModifier(term string) bool {
	_, ok := modifierSet[term]
	return ok
}

// IsHistory reports whether term is a canonical history tag.
func IsHistory(term string) bool {
	_, ok := historySet[term]
	return ok
}

// ScanModifiers returns every modifier literally contained in text,
// case-insensitively, in vocabulary order.
func ScanModifiers(text string) []string {
	return scan(Modifiers, text)
}

// ScanHistory returns every history tag literally contained in text,
// case-insensitively, in vocabulary order. Overlapping tags ("cancer" and
// "breast cancer") are both reported.
func ScanHistory(text string) []string {
	return scan(History, text)
}

func scan(terms []string, text string) []string {
	lower := strings.ToLower(text)
	var found []string
	for _, term := range terms {
		if strings.Contains(lower, strings.ToLower(term)) {
			found = append(found, term)
		}
	}
	return found
}
