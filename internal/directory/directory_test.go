package directory

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medemi-triage-server/internal/domain"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

var testDoctors = []domain.Doctor{
	{Name: "Anita Rao", Specialization: "Cardiology", Qualification: "MD", TimeSlots: []string{"09:00 AM"}},
	{Name: "Sara Thomas", Specialization: "Gastroenterology", Qualification: "MD", TimeSlots: []string{"10:00 AM"}},
	{Name: "John Mathew", Specialization: "General Medicine", Qualification: "MBBS", TimeSlots: []string{"02:00 PM"}},
}

func TestLoad_JSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doctors.json")
	content := `{"doctors": [
		{"name": "Anita Rao", "specialization": "Cardiology", "qualification": "MD", "time_slots": ["09:00 AM", "11:00 AM"]}
	]}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	dir := Load(path, quietLogger())
	require.Len(t, dir.Doctors(), 1)

	doc, ok := dir.FindByName("anita rao")
	require.True(t, ok)
	assert.Equal(t, "Cardiology", doc.Specialization)
	assert.Equal(t, []string{"09:00 AM", "11:00 AM"}, doc.TimeSlots)
	assert.True(t, doc.HasSlot("11:00 AM"))
}

func TestLoad_MissingFileYieldsEmptyDirectory(t *testing.T) {
	dir := Load(filepath.Join(t.TempDir(), "missing.json"), quietLogger())
	assert.Empty(t, dir.Doctors())

	groups, msg := Match(dir.Doctors(), []string{"Cardiology"})
	assert.Nil(t, groups)
	assert.Equal(t, domain.DirectoryUnavailableMessage, msg)
}

func TestLoad_MalformedFileYieldsEmptyDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doctors.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"doctors": [`), 0o600))

	dir := Load(path, quietLogger())
	assert.Empty(t, dir.Doctors())
}

func TestMatch_GroupsInRecommendationOrder(t *testing.T) {
	groups, msg := Match(testDoctors, []string{"Gastroenterology", "Neurology", "Cardiology"})
	assert.Empty(t, msg)
	require.Len(t, groups, 2)
	assert.Equal(t, "Gastroenterology", groups[0].Specialty)
	assert.Equal(t, "Cardiology", groups[1].Specialty)
	assert.Equal(t, "Anita Rao", groups[1].Doctors[0].Name)
}

func TestMatch_FallsBackToGeneralMedicine(t *testing.T) {
	groups, msg := Match(testDoctors, []string{"Psychiatry", "Dermatology"})
	assert.Empty(t, msg)
	require.Len(t, groups, 1)
	assert.Equal(t, domain.GeneralMedicine, groups[0].Specialty)
	require.Len(t, groups[0].Doctors, 1)
	assert.Equal(t, "John Mathew", groups[0].Doctors[0].Name)
}

func TestNew_SkipsUnnamedEntries(t *testing.T) {
	dir := New(append([]domain.Doctor{{Specialization: "Cardiology"}}, testDoctors...))
	assert.Len(t, dir.Doctors(), 3)

	_, ok := dir.FindByName("")
	assert.False(t, ok)
}
