package domain

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"
)

// QuestionKey identifies a follow-up question independently of its wording.
type QuestionKey string

const (
	KeyPainScale            QuestionKey = "pain_scale"
	KeyPregnancyPossibility QuestionKey = "pregnancy_possibility"
	KeyAge                  QuestionKey = "age"
	KeyGender               QuestionKey = "gender"
	KeyDuration             QuestionKey = "duration"
	KeyModifiers            QuestionKey = "modifiers"
	KeyPastMedicalHistory   QuestionKey = "past_medical_history"
	KeyCurrentMedications   QuestionKey = "current_medications"
	KeyAllergies            QuestionKey = "allergies"
	KeyRecentTravel         QuestionKey = "recent_travel"
	KeySymptomTriggers      QuestionKey = "symptom_triggers"
	KeyPreviousEpisodes     QuestionKey = "previous_episodes"
	KeyFeverPresent         QuestionKey = "fever_present"
	KeyEatingDrinking       QuestionKey = "eating_drinking"
	KeySleepPatterns        QuestionKey = "sleep_patterns"
	KeyStressLevel          QuestionKey = "stress_level"
)

func (k QuestionKey) String() string {
	return string(k)
}

// Question is a follow-up prompt ready to show to the user.
type Question struct {
	Key  QuestionKey `json:"key"`
	Text string      `json:"text"`
}

// QuestionSet is the set of question keys already posed in a session. It
// serialises as a sorted JSON array.
type QuestionSet map[QuestionKey]struct{}

func NewQuestionSet(keys ...QuestionKey) QuestionSet {
	s := make(QuestionSet, len(keys))
	for _, k := range keys {
		s[k] = struct{}{}
	}
	return s
}

func (s QuestionSet) Has(key QuestionKey) bool {
	_, ok := s[key]
	return ok
}

func (s QuestionSet) Add(key QuestionKey) {
	s[key] = struct{}{}
}

// Remove drops key so the question can be offered again.
func (s QuestionSet) Remove(key QuestionKey) {
	delete(s, key)
}

// Keys returns the members in lexical order.
func (s QuestionSet) Keys() []QuestionKey {
	keys := make([]QuestionKey, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

func (s QuestionSet) Clone() QuestionSet {
	c := make(QuestionSet, len(s))
	for k := range s {
		c[k] = struct{}{}
	}
	return c
}

func (s QuestionSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Keys())
}

func (s *QuestionSet) UnmarshalJSON(data []byte) error {
	var keys []QuestionKey
	if err := json.Unmarshal(data, &keys); err != nil {
		return fmt.Errorf("decoding question set: %w", err)
	}
	*s = NewQuestionSet(keys...)
	return nil
}

// SessionContext is the complete, serialisable state of one triage dialogue.
// A turn loads it, advances it and saves it back; nothing is held in memory
// between turns.
type SessionContext struct {
	ID              string         `json:"id"`
	Stage           Stage          `json:"stage"`
	Record          *PatientRecord `json:"record"`
	Asked           QuestionSet    `json:"asked"`
	PendingQuestion *Question      `json:"pending_question,omitempty"`
	InitialText     string         `json:"initial_text"`
	Transcript      []string       `json:"transcript"`
	Assessment      *Assessment    `json:"assessment,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

// NewSessionContext returns a fresh session in the INITIAL stage.
func NewSessionContext(id string, now time.Time) *SessionContext {
	return &SessionContext{
		ID:         id,
		Stage:      STAGE_INITIAL,
		Record:     NewPatientRecord(),
		Asked:      NewQuestionSet(),
		Transcript: []string{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Normalize fills nil collections left by a partial or legacy payload so a
// loaded session is safe to mutate.
func (s *SessionContext) Normalize() {
	if s.Record == nil {
		s.Record = NewPatientRecord()
	}
	if s.Record.Answers == nil {
		s.Record.Answers = make(map[QuestionKey]string)
	}
	if s.Asked == nil {
		s.Asked = NewQuestionSet()
	}
	if s.Transcript == nil {
		s.Transcript = []string{}
	}
	if s.Stage == "" {
		s.Stage = STAGE_INITIAL
	}
}

// AppendExchange records an accepted question/answer pair.
func (s *SessionContext) AppendExchange(question, answer string) {
	s.Transcript = append(s.Transcript, fmt.Sprintf("Q: %s\nA: %s", question, answer))
}

// IsFinished reports whether the dialogue has produced its assessment.
func (s *SessionContext) IsFinished() bool {
	return s.Stage == STAGE_COMPLETE || s.Stage == STAGE_SHOW_ASSESSMENT
}

// LogFields returns non-identifying fields describing the session state.
func (s *SessionContext) LogFields() map[string]any {
	fields := map[string]any{
		"session_id":     s.ID,
		"stage":          string(s.Stage),
		"asked_count":    len(s.Asked),
		"symptom_count":  len(s.Record.Symptoms),
		"transcript_len": len(s.Transcript),
	}
	if s.PendingQuestion != nil {
		fields["pending_question"] = string(s.PendingQuestion.Key)
	}
	return fields
}
