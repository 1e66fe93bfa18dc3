// Package report renders a finished triage session as a PDF summary.
package report

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/signintech/gopdf"
	"github.com/sirupsen/logrus"

	"github.com/medemi-triage-server/internal/domain"
)

// ErrFontUnavailable is returned when no configured TrueType font loads.
var ErrFontUnavailable = errors.New("no usable report font")

// DefaultFontPaths are tried after the configured font path.
var DefaultFontPaths = []string{
	"/usr/share/fonts/ttf-dejavu/DejaVuSans.ttf",
	"/usr/share/fonts/dejavu/DejaVuSans.ttf",
	"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
}

const (
	fontFamily   = "DejaVu"
	marginLeft   = 40.0
	marginTop    = 40.0
	textWidth    = 515.0
	pageBottom   = 790.0
	lineHeight   = 14.0
	sectionSpace = 10.0
)

// Generator renders assessment reports.
type Generator struct {
	fontPaths []string
	logger    *logrus.Logger
	now       func() time.Time
}

// NewGenerator creates a generator trying fontPath first, then the
// DefaultFontPaths.
func NewGenerator(fontPath string, logger *logrus.Logger) *Generator {
	var paths []string
	if strings.TrimSpace(fontPath) != "" {
		paths = append(paths, fontPath)
	}
	return NewGeneratorWithFonts(append(paths, DefaultFontPaths...), logger)
}

// NewGeneratorWithFonts creates a generator restricted to the given fonts.
func NewGeneratorWithFonts(fontPaths []string, logger *logrus.Logger) *Generator {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Generator{fontPaths: fontPaths, logger: logger, now: time.Now}
}

// Render builds the PDF for a session whose assessment has been shown.
func (g *Generator) Render(session *domain.SessionContext) ([]byte, error) {
	if session == nil || !session.IsFinished() || session.Assessment == nil {
		return nil, fmt.Errorf("%w: report requires a completed assessment", domain.ErrInvalidStage)
	}

	pdf := &gopdf.GoPdf{}
	pdf.Start(gopdf.Config{PageSize: *gopdf.PageSizeA4})
	pdf.SetMargins(marginLeft, marginTop, marginLeft, marginTop)
	pdf.AddPage()

	if err := g.loadFont(pdf); err != nil {
		return nil, err
	}

	w := &writer{pdf: pdf}
	g.writeReport(w, session)
	if w.err != nil {
		return nil, fmt.Errorf("failed to render report: %w", w.err)
	}

	var buf bytes.Buffer
	if _, err := pdf.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write PDF: %w", err)
	}

	g.logger.WithFields(logrus.Fields{
		"session_id": session.ID,
		"bytes":      buf.Len(),
	}).Info("Rendered assessment report")

	return buf.Bytes(), nil
}

func (g *Generator) loadFont(pdf *gopdf.GoPdf) error {
	var lastErr error
	for _, path := range g.fontPaths {
		if err := pdf.AddTTFFont(fontFamily, path); err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	if lastErr == nil {
		return ErrFontUnavailable
	}
	return fmt.Errorf("%w: %v", ErrFontUnavailable, lastErr)
}

func (g *Generator) writeReport(w *writer, session *domain.SessionContext) {
	a := session.Assessment
	r := session.Record

	w.heading(18, "Medical Triage Assessment")
	w.line(10, fmt.Sprintf("Generated: %s", g.now().Format("02 Jan 2006 15:04")))
	w.line(10, fmt.Sprintf("Session: %s", session.ID))
	w.space()

	w.heading(14, "Patient")
	w.field("Age", r.Age)
	w.field("Gender", r.Gender)
	w.field("Duration", r.Duration)
	w.field("Symptoms", strings.Join(r.Symptoms, ", "))
	w.field("Modifiers", strings.Join(r.Modifiers, ", "))
	w.field("Medical history", strings.Join(r.PastMedicalHistory, ", "))
	if r.PainScore != nil {
		w.field("Pain score", fmt.Sprintf("%d/10", *r.PainScore))
	}
	w.field("Risk factors", strings.Join(a.RiskFactors, ", "))
	w.space()

	w.heading(14, "Urgency")
	w.line(12, fmt.Sprintf("Risk score: %.1f", a.Score))
	w.line(12, a.TierAdvice)
	if a.TierGuidance != "" {
		w.paragraph(11, a.TierGuidance)
	}
	w.space()

	w.heading(14, "Possible conditions")
	for i, d := range a.Diagnoses {
		w.paragraph(11, fmt.Sprintf("%d. %s (%s)", i+1, d.Condition, d.Urgency.Label()))
		w.paragraph(10, "   "+d.Reasoning)
	}
	w.space()

	w.heading(14, "Recommended specialists")
	for _, s := range a.Specialties {
		w.paragraph(11, fmt.Sprintf("- %s: %s", s.Name, s.Reason))
	}

	if len(a.DoctorGroups) > 0 || a.DirectoryMessage != "" {
		w.space()
		w.heading(14, "Available doctors")
		if a.DirectoryMessage != "" {
			w.paragraph(11, a.DirectoryMessage)
		}
		for _, group := range a.DoctorGroups {
			w.line(11, group.Specialty)
			for _, doc := range group.Doctors {
				w.paragraph(10, fmt.Sprintf("   %s, %s (%s)", doc.Name, doc.Qualification, strings.Join(doc.TimeSlots, ", ")))
			}
		}
	}

	w.space()
	w.paragraph(9, a.Disclaimer)
}

// writer accumulates the first drawing error so report code stays linear.
type writer struct {
	pdf *gopdf.GoPdf
	err error
}

func (w *writer) setFont(size float64) {
	if w.err != nil {
		return
	}
	w.err = w.pdf.SetFont(fontFamily, "", size)
}

func (w *writer) breakIfNeeded() {
	if w.pdf.GetY()+lineHeight > pageBottom {
		w.pdf.AddPage()
	}
}

func (w *writer) cell(text string, height float64) {
	if w.err != nil {
		return
	}
	w.breakIfNeeded()
	if err := w.pdf.Cell(nil, text); err != nil {
		w.err = err
		return
	}
	w.pdf.Br(height)
}

func (w *writer) heading(size float64, text string) {
	w.setFont(size)
	w.cell(text, size+6)
}

func (w *writer) line(size float64, text string) {
	w.setFont(size)
	w.cell(text, lineHeight)
}

func (w *writer) field(label, value string) {
	if value == "" {
		value = "Not reported"
	}
	w.line(11, fmt.Sprintf("%s: %s", label, value))
}

func (w *writer) paragraph(size float64, text string) {
	w.setFont(size)
	if w.err != nil {
		return
	}
	lines, err := w.pdf.SplitText(text, textWidth)
	if err != nil {
		w.err = err
		return
	}
	for _, l := range lines {
		w.cell(l, lineHeight)
	}
}

func (w *writer) space() {
	if w.err == nil {
		w.pdf.Br(sectionSpace)
	}
}
