// Package console runs the triage dialogue on a terminal.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/medemi-triage-server/internal/report"
	"github.com/medemi-triage-server/internal/service"
)

const (
	rule = "================================================================================"

	// ReceptionMessage answers a booking request on the console.
	ReceptionMessage = "Great! Please call our reception at 1-800-MEDICAL to book."
	FarewellMessage  = "Take care! Feel free to return if your symptoms worsen."
)

// ErrQuit is returned when the user leaves the dialogue early.
var ErrQuit = errors.New("dialogue ended by user")

// Options configures a Console.
type Options struct {
	// Reports, when set, renders a PDF of the assessment into ReportDir.
	Reports   *report.Generator
	ReportDir string
	Logger    *logrus.Logger
}

// Console drives one triage dialogue over a reader and writer.
type Console struct {
	triage    *service.TriageService
	reports   *report.Generator
	reportDir string
	logger    *logrus.Logger

	in  *bufio.Scanner
	out io.Writer
}

// New creates a console reading answers from in and writing to out.
func New(triage *service.TriageService, in io.Reader, out io.Writer, opts Options) *Console {
	logger := opts.Logger
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}
	return &Console{
		triage:    triage,
		reports:   opts.Reports,
		reportDir: opts.ReportDir,
		logger:    logger,
		in:        bufio.NewScanner(in),
		out:       out,
	}
}

// Run performs a full dialogue: narrative, follow-up questions, assessment
// and booking prompt. Typing "quit" or closing the input abandons the
// session and returns ErrQuit.
func (c *Console) Run(ctx context.Context) error {
	c.printf("%s\nMEDICAL TRIAGE ASSISTANT\n%s\n", rule, rule)
	c.printf("\nBot: %s\n", service.Greeting)
	c.printf("Bot: Type 'quit' at any time to leave.\n\n")

	narrative, err := c.prompt()
	for err == nil && narrative == "" {
		c.printf("Bot: Please describe the symptoms so I can help.\n")
		narrative, err = c.prompt()
	}
	if err != nil {
		return err
	}

	c.printf("\nAnalyzing your information...\n")
	turn, err := c.triage.StartSession(ctx, narrative)
	if err != nil {
		return fmt.Errorf("starting session: %w", err)
	}

	if turn.Question != nil {
		c.printf("\nBot: Thank you. I'd like to ask a few follow-up questions to better understand your situation.\n")
	}

	for turn.Assessment == nil {
		if turn.Question == nil {
			return fmt.Errorf("session %s has neither a question nor an assessment", turn.SessionID)
		}
		c.printf("\nBot: %s\n", turn.Question.Text)

		answer, err := c.prompt()
		if err != nil {
			c.abandon(ctx, turn.SessionID)
			return err
		}

		next, err := c.triage.SubmitAnswer(ctx, turn.SessionID, answer)
		if err != nil {
			return fmt.Errorf("submitting answer: %w", err)
		}
		if !next.Accepted {
			c.printf("Bot: %s\n", next.ValidationMessage)
		}
		turn = next
	}

	c.printf("\nProcessing complete information...\n\n")
	c.printf("%s", report.FormatAssessment(turn.Record, turn.Assessment))

	c.saveReport(ctx, turn.SessionID)
	return c.offerBooking()
}

func (c *Console) offerBooking() error {
	c.printf("\nBot: Would you like to book an appointment? (yes/no)\n")
	answer, err := c.prompt()
	if err != nil && !errors.Is(err, ErrQuit) {
		return err
	}

	switch strings.ToLower(answer) {
	case "yes", "y":
		c.printf("\nBot: %s\n", ReceptionMessage)
	default:
		c.printf("\nBot: %s\n", FarewellMessage)
	}
	c.printf("\n%s\n", rule)
	return nil
}

func (c *Console) saveReport(ctx context.Context, sessionID string) {
	if c.reports == nil || c.reportDir == "" {
		return
	}

	session, err := c.triage.GetSession(ctx, sessionID)
	if err != nil {
		c.logger.WithError(err).Warn("Could not reload session for report")
		return
	}

	pdf, err := c.reports.Render(session)
	if err != nil {
		if errors.Is(err, report.ErrFontUnavailable) {
			c.printf("\n(PDF report skipped: no usable font installed)\n")
		}
		c.logger.WithError(err).Warn("PDF report not generated")
		return
	}

	if err := os.MkdirAll(c.reportDir, 0o755); err != nil {
		c.logger.WithError(err).Warn("Could not create report directory")
		return
	}
	path := filepath.Join(c.reportDir, fmt.Sprintf("triage-assessment-%s.pdf", sessionID))
	if err := os.WriteFile(path, pdf, 0o600); err != nil {
		c.logger.WithError(err).Warn("Could not write PDF report")
		return
	}
	c.printf("\nReport saved to %s\n", path)
}

func (c *Console) abandon(ctx context.Context, sessionID string) {
	if err := c.triage.AbandonSession(ctx, sessionID); err != nil {
		c.logger.WithError(err).WithField("session_id", sessionID).Warn("Could not abandon session")
	}
}

// prompt reads one trimmed line. End of input and "quit" yield ErrQuit.
func (c *Console) prompt() (string, error) {
	c.printf("You: ")
	if !c.in.Scan() {
		if err := c.in.Err(); err != nil {
			return "", fmt.Errorf("reading input: %w", err)
		}
		return "", ErrQuit
	}
	line := strings.TrimSpace(c.in.Text())
	if strings.EqualFold(line, "quit") || strings.EqualFold(line, "exit") {
		return "", ErrQuit
	}
	return line, nil
}

func (c *Console) printf(format string, args ...any) {
	fmt.Fprintf(c.out, format, args...)
}
