package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sirupsen/logrus"

	"github.com/medemi-triage-server/internal/directory"
	"github.com/medemi-triage-server/internal/domain"
	"github.com/medemi-triage-server/internal/report"
	"github.com/medemi-triage-server/internal/service"
)

// Tool names.
const (
	ToolStartTriage    = "start_triage"
	ToolAnswerQuestion = "answer_question"
	ToolGetAssessment  = "get_assessment"
	ToolListDoctors    = "list_doctors"
)

// StartTriageParams defines parameters for the start_triage tool
type StartTriageParams struct {
	Narrative string `json:"narrative" jsonschema:"the patient's description of their symptoms and relevant history"`
}

// AnswerQuestionParams defines parameters for the answer_question tool
type AnswerQuestionParams struct {
	SessionID string `json:"session_id" jsonschema:"session ID returned by start_triage"`
	Answer    string `json:"answer" jsonschema:"the patient's answer to the pending question"`
}

// GetAssessmentParams defines parameters for the get_assessment tool
type GetAssessmentParams struct {
	SessionID string `json:"session_id" jsonschema:"session ID returned by start_triage"`
}

// ListDoctorsParams defines parameters for the list_doctors tool
type ListDoctorsParams struct {
	Specialty string `json:"specialty,omitempty" jsonschema:"optional specialty filter, e.g. Cardiology"`
}

// ListDoctorsResult is the structured output of list_doctors.
type ListDoctorsResult struct {
	Doctors []domain.Doctor `json:"doctors"`
	Message string          `json:"message,omitempty"`
}

func (s *Server) handleStartTriage(ctx context.Context, req *mcp.CallToolRequest, params StartTriageParams) (*mcp.CallToolResult, any, error) {
	s.logger.WithField("tool", ToolStartTriage).Info("Tool invoked")

	turn, err := s.triage.StartSession(ctx, params.Narrative)
	if err != nil {
		return s.toolError(err), nil, nil
	}

	text := service.Greeting + "\n\n" + describeTurn(turn)
	return textResult(text), turn, nil
}

func (s *Server) handleAnswerQuestion(ctx context.Context, req *mcp.CallToolRequest, params AnswerQuestionParams) (*mcp.CallToolResult, any, error) {
	s.logger.WithFields(logrus.Fields{"tool": ToolAnswerQuestion, "session_id": params.SessionID}).Info("Tool invoked")

	if strings.TrimSpace(params.SessionID) == "" {
		return s.createErrorResult("Missing required parameter", fmt.Errorf("session_id is required")), nil, nil
	}

	turn, err := s.triage.SubmitAnswer(ctx, params.SessionID, params.Answer)
	if err != nil {
		return s.toolError(err), nil, nil
	}
	return textResult(describeTurn(turn)), turn, nil
}

func (s *Server) handleGetAssessment(ctx context.Context, req *mcp.CallToolRequest, params GetAssessmentParams) (*mcp.CallToolResult, any, error) {
	s.logger.WithFields(logrus.Fields{"tool": ToolGetAssessment, "session_id": params.SessionID}).Info("Tool invoked")

	if strings.TrimSpace(params.SessionID) == "" {
		return s.createErrorResult("Missing required parameter", fmt.Errorf("session_id is required")), nil, nil
	}

	session, err := s.triage.GetSession(ctx, params.SessionID)
	if err != nil {
		return s.toolError(err), nil, nil
	}
	if !session.IsFinished() || session.Assessment == nil {
		return s.toolError(fmt.Errorf("%w: answer the remaining questions first", domain.ErrInvalidStage)), nil, nil
	}

	return textResult(report.FormatAssessment(session.Record, session.Assessment)), session.Assessment, nil
}

func (s *Server) handleListDoctors(ctx context.Context, req *mcp.CallToolRequest, params ListDoctorsParams) (*mcp.CallToolResult, any, error) {
	s.logger.WithField("tool", ToolListDoctors).Info("Tool invoked")

	var doctors []domain.Doctor
	if s.directory != nil {
		doctors = s.directory.Doctors()
	}
	if len(doctors) == 0 {
		result := ListDoctorsResult{Doctors: []domain.Doctor{}, Message: domain.DirectoryUnavailableMessage}
		return textResult(result.Message), result, nil
	}

	if specialty := strings.TrimSpace(params.Specialty); specialty != "" {
		doctors = directory.BySpecialty(doctors, specialty)
	}

	result := ListDoctorsResult{Doctors: doctors}
	if len(doctors) == 0 {
		result.Doctors = []domain.Doctor{}
		result.Message = fmt.Sprintf("No doctors found for specialty %q.", params.Specialty)
		return textResult(result.Message), result, nil
	}

	var b strings.Builder
	for _, d := range doctors {
		fmt.Fprintf(&b, "%s (%s), %s. Available: %s\n", d.Name, d.Qualification, d.Specialization, strings.Join(d.TimeSlots, ", "))
	}
	return textResult(b.String()), result, nil
}

// describeTurn renders a turn as the text a patient would see.
func describeTurn(turn *service.TurnResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Session: %s\n", turn.SessionID)
	if !turn.Accepted && turn.ValidationMessage != "" {
		b.WriteString(turn.ValidationMessage + "\n")
	}
	if turn.Question != nil {
		b.WriteString("Question: " + turn.Question.Text + "\n")
	}
	if turn.Assessment != nil {
		b.WriteString(report.FormatAssessment(turn.Record, turn.Assessment))
	}
	return b.String()
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}

// toolError maps service errors onto tool errors. Tool failures are reported
// in the result so the client model can see them.
func (s *Server) toolError(err error) *mcp.CallToolResult {
	switch {
	case errors.Is(err, domain.ErrEmptyNarrative):
		return s.createErrorResult("Invalid input", err)
	case errors.Is(err, domain.ErrNotFound):
		return s.createErrorResult("Session not found", err)
	case errors.Is(err, domain.ErrSessionComplete),
		errors.Is(err, domain.ErrNoPendingQuestion),
		errors.Is(err, domain.ErrInvalidStage):
		return s.createErrorResult("Session state", err)
	default:
		s.logger.WithError(err).Error("Tool call failed")
		return s.createErrorResult("Internal error", err)
	}
}

// createErrorResult creates a standardized error result for tool calls
func (s *Server) createErrorResult(message string, err error) *mcp.CallToolResult {
	errorText := fmt.Sprintf("Error: %s", message)
	if err != nil {
		errorText += fmt.Sprintf(" - %v", err)
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: errorText},
		},
		IsError: true,
	}
}
