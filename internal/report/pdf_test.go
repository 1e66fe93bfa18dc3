package report

import (
	"bytes"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medemi-triage-server/internal/domain"
)

func finishedSession() *domain.SessionContext {
	s := domain.NewSessionContext("session-report", time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC))
	s.Record.Age = "58"
	s.Record.Gender = "female"
	s.Record.Duration = "2 days"
	s.Record.AddSymptoms("headache", "nausea")
	s.Record.SetPainScore(6)
	s.Stage = domain.STAGE_SHOW_ASSESSMENT
	s.Assessment = &domain.Assessment{
		Score:      9.0,
		Tier:       domain.TIER_LESS_URGENT,
		TierAdvice: domain.TIER_LESS_URGENT.Advice(),
		Diagnoses: []domain.Diagnosis{{
			Condition: "Tension Headache / Migraine",
			Reasoning: "Most common types of headache",
			Urgency:   domain.LESS_URGENT,
		}},
		Specialties: []domain.SpecialtyRecommendation{
			{Name: "Neurology", Reason: "Nervous system assessment required"},
		},
		DoctorGroups: []domain.DoctorGroup{{
			Specialty: "Neurology",
			Doctors:   []domain.Doctor{{Name: "Dr. Kiran Menon", Qualification: "MD, DM (Neurology)", TimeSlots: []string{"10:00 AM"}}},
		}},
		Disclaimer: domain.AssessmentDisclaimer,
	}
	return s
}

func TestGenerator_RequiresCompletedAssessment(t *testing.T) {
	g := NewGeneratorWithFonts(DefaultFontPaths, logrus.New())

	s := finishedSession()
	s.Stage = domain.STAGE_QUESTIONS
	s.Assessment = nil

	_, err := g.Render(s)
	assert.True(t, errors.Is(err, domain.ErrInvalidStage))

	_, err = g.Render(nil)
	assert.True(t, errors.Is(err, domain.ErrInvalidStage))
}

func TestGenerator_MissingFont(t *testing.T) {
	g := NewGeneratorWithFonts([]string{"/nonexistent/font.ttf"}, logrus.New())
	_, err := g.Render(finishedSession())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrFontUnavailable))

	g = NewGeneratorWithFonts(nil, logrus.New())
	_, err = g.Render(finishedSession())
	assert.True(t, errors.Is(err, ErrFontUnavailable))
}

func TestGenerator_Render(t *testing.T) {
	var font string
	for _, p := range DefaultFontPaths {
		if _, err := os.Stat(p); err == nil {
			font = p
			break
		}
	}
	if font == "" {
		t.Skip("DejaVuSans.ttf not installed")
	}

	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)
	g := NewGenerator(font, logger)

	data, err := g.Render(finishedSession())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
}

func TestNewGenerator_ConfiguredFontFirst(t *testing.T) {
	g := NewGenerator("/opt/fonts/custom.ttf", nil)
	require.Len(t, g.fontPaths, len(DefaultFontPaths)+1)
	assert.Equal(t, "/opt/fonts/custom.ttf", g.fontPaths[0])

	g = NewGenerator("  ", nil)
	assert.Equal(t, DefaultFontPaths, g.fontPaths)
}
