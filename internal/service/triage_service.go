package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/medemi-triage-server/internal/directory"
	"github.com/medemi-triage-server/internal/domain"
)

// Greeting opens every dialogue.
const Greeting = "Hello! This is a medical triage assistant. Please describe the patient's symptoms and any relevant medical history."

// TurnResult is the outcome of one dialogue turn.
type TurnResult struct {
	SessionID string       `json:"session_id"`
	Stage     domain.Stage `json:"stage"`

	// Accepted is false when the answer failed validation; the same
	// question is then re-offered alongside ValidationMessage.
	Accepted          bool                  `json:"accepted"`
	ValidationMessage string                `json:"validation_message,omitempty"`
	Question          *domain.Question      `json:"question,omitempty"`
	Record            *domain.PatientRecord `json:"record"`
	Assessment        *domain.Assessment    `json:"assessment,omitempty"`
}

// TriageService drives the dialogue: extraction, question selection, answer
// handling and the final assessment. Session state lives entirely in the
// session store; the service holds no per-session memory.
type TriageService struct {
	logger    *logrus.Logger
	store     domain.SessionStore
	extractor domain.Extractor
	directory domain.DoctorDirectory
	scoring   *RiskScoringEngine
	diagnosis *DiagnosisEngine
	router    *SpecialtyRouter
	now       func() time.Time
	newID     func() string
}

// NewTriageService creates a new triage service
func NewTriageService(
	logger *logrus.Logger,
	store domain.SessionStore,
	extractor domain.Extractor,
	doctors domain.DoctorDirectory,
) *TriageService {
	return &TriageService{
		logger:    logger,
		store:     store,
		extractor: extractor,
		directory: doctors,
		scoring:   NewRiskScoringEngine(logger),
		diagnosis: NewDiagnosisEngine(logger),
		router:    NewSpecialtyRouter(logger),
		now:       func() time.Time { return time.Now().UTC() },
		newID:     uuid.NewString,
	}
}

// StartSession creates a session from the patient's narrative and returns the
// first follow-up question.
func (s *TriageService) StartSession(ctx context.Context, narrative string) (*TurnResult, error) {
	if strings.TrimSpace(narrative) == "" {
		return nil, domain.ErrEmptyNarrative
	}

	session := domain.NewSessionContext(s.newID(), s.now())
	session.InitialText = narrative

	logger := s.logger.WithField("session_id", session.ID)
	logger.Info("Starting triage session")

	// Step 1: Seed the record from the narrative
	extraction := s.extractor.Extract(ctx, narrative, "")
	session.Record.Seed(extraction)
	if extraction.IsEmpty() {
		logger.Warn("Extraction returned nothing, all fields will be asked")
	}

	// Step 2: Select the first question, or finalize if nothing is missing
	session.Stage = domain.STAGE_QUESTIONS
	if next, ok := NextQuestion(session.Record, session.Asked); ok {
		session.PendingQuestion = &next
	} else {
		s.finalize(ctx, session)
	}

	if err := s.save(ctx, session); err != nil {
		return nil, err
	}

	logger.WithFields(logrus.Fields(session.LogFields())).Info("Triage session started")
	return s.turnResult(session, true, ""), nil
}

// SubmitAnswer applies the user's answer to the pending question. A rejected
// answer leaves the record and asked-set exactly as they were and re-offers
// the question.
func (s *TriageService) SubmitAnswer(ctx context.Context, sessionID, answer string) (*TurnResult, error) {
	session, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if session.IsFinished() {
		return nil, domain.ErrSessionComplete
	}
	if session.Stage != domain.STAGE_QUESTIONS {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidStage, session.Stage)
	}
	if session.PendingQuestion == nil {
		return nil, domain.ErrNoPendingQuestion
	}

	pending := *session.PendingQuestion
	logger := s.logger.WithFields(logrus.Fields{
		"session_id": session.ID,
		"question":   string(pending.Key),
	})

	alreadyAsked := session.Asked.Has(pending.Key)
	session.Asked.Add(pending.Key)

	if verr := ValidateAnswer(pending.Key, answer); verr != nil {
		if !alreadyAsked {
			session.Asked.Remove(pending.Key)
		}
		logger.Debug("Answer rejected by validation")
		if err := s.save(ctx, session); err != nil {
			return nil, err
		}
		return s.turnResult(session, false, verr.Message), nil
	}

	ApplyAnswer(session.Record, pending.Key, answer)
	session.AppendExchange(pending.Text, answer)

	if next, ok := NextQuestion(session.Record, session.Asked); ok {
		session.PendingQuestion = &next
	} else {
		session.PendingQuestion = nil
		s.finalize(ctx, session)
	}

	if err := s.save(ctx, session); err != nil {
		return nil, err
	}

	logger.WithField("stage", session.Stage).Debug("Answer accepted")
	return s.turnResult(session, true, ""), nil
}

// GetSession returns the stored session.
func (s *TriageService) GetSession(ctx context.Context, sessionID string) (*domain.SessionContext, error) {
	return s.load(ctx, sessionID)
}

// Resume returns the current turn of a stored session: its pending question
// or, once finished, its assessment.
func (s *TriageService) Resume(ctx context.Context, sessionID string) (*TurnResult, error) {
	session, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return s.turnResult(session, true, ""), nil
}

// GetAssessment returns the assessment of a finished session.
func (s *TriageService) GetAssessment(ctx context.Context, sessionID string) (*domain.Assessment, error) {
	session, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !session.IsFinished() || session.Assessment == nil {
		return nil, fmt.Errorf("%w: assessment not ready in stage %s", domain.ErrInvalidStage, session.Stage)
	}
	return session.Assessment, nil
}

// AbandonSession discards a session. Abandoning is safe at any stage.
func (s *TriageService) AbandonSession(ctx context.Context, sessionID string) error {
	if err := s.store.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("abandoning session: %w", err)
	}
	s.logger.WithField("session_id", sessionID).Info("Triage session abandoned")
	return nil
}

// Assess computes the assessment for a record without touching any session.
func (s *TriageService) Assess(record *domain.PatientRecord) *domain.Assessment {
	breakdown := s.scoring.Evaluate(record)
	tier := domain.ClassifyScore(breakdown.Final)
	specialties := s.router.Recommend(record)

	assessment := &domain.Assessment{
		Score:        breakdown.Final,
		Tier:         tier,
		TierAdvice:   tier.Advice(),
		TierGuidance: tier.Guidance(),
		Breakdown:    breakdown,
		Diagnoses:    s.diagnosis.Infer(record),
		Specialties:  specialties,
		RiskFactors:  record.RiskFactors(),
		Disclaimer:   domain.AssessmentDisclaimer,
		GeneratedAt:  s.now(),
	}

	var doctors []domain.Doctor
	if s.directory != nil {
		doctors = s.directory.Doctors()
	}
	assessment.DoctorGroups, assessment.DirectoryMessage = directory.Match(doctors, assessment.SpecialtyNames())

	s.logger.WithFields(logrus.Fields(tier.LogFields())).WithField("score", assessment.Score).Info("Assessment computed")
	return assessment
}

// finalize merges a second extraction over the full transcript into the
// record, then computes the assessment.
func (s *TriageService) finalize(ctx context.Context, session *domain.SessionContext) {
	session.Stage = domain.STAGE_COMPLETE

	if len(session.Transcript) > 0 {
		transcript := strings.Join(session.Transcript, "\n")
		extraction := s.extractor.Extract(ctx, session.InitialText, transcript)
		session.Record.Merge(extraction)
	}

	session.Assessment = s.Assess(session.Record)
	session.Stage = domain.STAGE_SHOW_ASSESSMENT
}

func (s *TriageService) load(ctx context.Context, sessionID string) (*domain.SessionContext, error) {
	session, err := s.store.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("loading session: %w", err)
	}
	session.Normalize()
	return session, nil
}

func (s *TriageService) save(ctx context.Context, session *domain.SessionContext) error {
	session.UpdatedAt = s.now()
	if err := s.store.Save(ctx, session); err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	return nil
}

func (s *TriageService) turnResult(session *domain.SessionContext, accepted bool, message string) *TurnResult {
	return &TurnResult{
		SessionID:         session.ID,
		Stage:             session.Stage,
		Accepted:          accepted,
		ValidationMessage: message,
		Question:          session.PendingQuestion,
		Record:            session.Record,
		Assessment:        session.Assessment,
	}
}
