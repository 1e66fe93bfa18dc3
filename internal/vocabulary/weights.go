package vocabulary

// Weight tables used by the risk scoring engine.
//
// These values are heuristic placeholders carried over unchanged for
// behavioural compatibility. They are not clinically validated.

var symptomWeights = map[string]int{
	"fever": 2, "cough": 1, "shortness of breath": 3, "chest pain": 3,
	"abdominal pain": 2, "diarrhea": 1, "vomiting": 1, "sore throat": 1,
	"runny nose": 1, "muscle aches": 1, "joint pain": 1, "rash": 2,
	"swelling": 2, "weight loss": 2, "weight gain": 1, "night sweats": 2,
	"chills": 1, "edema": 2, "orthopnea": 3, "reduced urine output": 3,
	"dizziness": 2, "nausea": 1, "back pain": 2, "neck pain": 2,
	"insomnia": 1, "anxiety": 2, "panic attacks": 3, "mood swings": 2,
	"sadness": 1, "hopelessness": 3, "loss of interest": 2,
	"difficulty concentrating": 1, "memory problems": 2, "restlessness": 1,
	"irritability": 1, "suicidal thoughts": 5, "hallucinations": 4,
	"paranoia": 3, "racing thoughts": 2, "appetite changes": 1,
	"social withdrawal": 2, "excessive worry": 2,
	"pelvic pain": 2, "abnormal vaginal bleeding": 3, "missed period": 1,
	"irregular periods": 1, "heavy menstrual bleeding": 2, "painful periods": 1,
	"vaginal discharge": 1, "painful intercourse": 1, "breast pain": 1,
	"breast lumps": 3, "hot flashes": 1, "vaginal itching": 1,
	"vaginal dryness": 1, "spotting between periods": 2,
	"postmenopausal bleeding": 3, "painful urination": 2,
	"frequent urination": 1, "lower back pain": 1, "bloating": 1,
	"constipation": 1, "painful bowel movements during period": 2,
	"painful ovulation": 1, "breast tenderness": 1, "nipple discharge": 2,
	"vulvar pain": 2, "burning sensation during urination": 2,
	"urgency to urinate": 1,
}

var modifierWeights = map[string]int{
	"mild": 1, "moderate": 2, "severe": 3, "intermittent": 1, "constant": 2,
	"sudden onset": 3, "gradual onset": 1, "worsening": 2, "improving": -1,
	"persistent": 2, "recurring": 1, "sharp": 2, "stabbing": 3, "burning": 2,
	"throbbing": 1, "cramping": 1,
}

var historyWeights = map[string]int{
	"diabetes": 2, "hypertension": 2, "asthma": 2, "heart disease": 3,
	"cancer": 3, "stroke": 3, "kidney disease": 3, "liver disease": 3,
	"COPD": 3, "arthritis": 1, "depression": 2, "anxiety": 2,
	"thyroid disorder": 1, "autoimmune disease": 2, "allergies": 1,
	"previous surgeries": 1, "cardiomyopathy": 3,
	"bipolar disorder": 3, "schizophrenia": 3, "PTSD": 2, "OCD": 2,
	"panic disorder": 2, "eating disorder": 2, "ADHD": 1, "autism": 1,
	"personality disorder": 2, "substance abuse disorder": 3,
	"on antidepressants": 2, "on antipsychotics": 2, "on mood stabilizers": 2,
	"on anti-anxiety medication": 1,
	"PCOS": 1, "endometriosis": 2, "fibroids": 1, "ovarian cysts": 1,
	"menopause": 1, "pregnancy complications": 2, "previous miscarriage": 1,
	"infertility": 1, "cervical dysplasia": 2, "on birth control": 1,
	"pelvic inflammatory disease": 2, "adenomyosis": 2, "uterine prolapse": 2,
	"ovarian cancer": 3, "breast cancer": 3, "cervical cancer": 3,
	"endometrial cancer": 3, "HPV": 1, "sexually transmitted infection": 2,
	"gestational diabetes": 2, "preeclampsia": 3, "ectopic pregnancy": 3,
}

// SymptomWeight returns the score contribution of a symptom, 0 when unweighted.
func SymptomWeight(symptom string) int { return symptomWeights[symptom] }

// ModifierWeight returns the signed score contribution of a modifier.
func ModifierWeight(modifier string) int { return modifierWeights[modifier] }

// HistoryWeight returns the score contribution of a history tag.
func HistoryWeight(condition string) int { return historyWeights[condition] }

// Fixed symptom and history subsets referenced by the scoring and
// question-selection rules.
var (
	PainSymptoms = []string{"chest pain", "abdominal pain", "headache", "back pain", "pelvic pain"}

	PregnancyRelevantSymptoms = []string{"nausea", "vomiting", "fatigue", "missed period", "pelvic pain"}

	PsychiatricMedications = []string{
		"on antidepressants", "on antipsychotics", "on mood stabilizers", "on anti-anxiety medication",
	}

	MentalHealthSymptoms = []string{
		"suicidal thoughts", "hallucinations", "paranoia", "panic attacks",
		"hopelessness", "anxiety", "mood swings", "sadness", "insomnia",
		"loss of interest", "social withdrawal",
	}

	RespiratorySymptoms      = []string{"shortness of breath", "chest pain", "cough"}
	BreathingChestSymptoms   = []string{"shortness of breath", "chest pain"}
	GastrointestinalSymptoms = []string{"abdominal pain", "nausea", "vomiting"}
	StimulantRiskSymptoms    = []string{"chest pain", "dizziness", "anxiety"}
)
