package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medemi-triage-server/internal/config"
)

func writeConfig(t *testing.T, dir, body string) *config.Manager {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	cm, err := config.NewManager(path)
	require.NoError(t, err)
	return cm
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestBuild_LocalBackends(t *testing.T) {
	dir := t.TempDir()
	doctors := filepath.Join(dir, "doctors.json")
	require.NoError(t, os.WriteFile(doctors, []byte(`{"doctors": [
		{"name": "Dr. Meera Iyer", "specialization": "General Medicine", "qualification": "MBBS", "time_slots": ["09:00 AM"]}
	]}`), 0o600))

	cm := writeConfig(t, dir, fmt.Sprintf(`
session:
  backend: sqlite
  sqlite_path: %s
directory:
  path: %s
`, filepath.Join(dir, "sessions.db"), doctors))

	app, err := Build(context.Background(), cm, quietLogger())
	require.NoError(t, err)
	defer app.Close()

	assert.Nil(t, app.DB)
	assert.Nil(t, app.Cache)
	require.NotNil(t, app.Extractor)
	assert.Len(t, app.Directory.Doctors(), 1)

	count, err := app.Sessions.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)

	deps := app.APIDependencies()
	assert.Nil(t, deps.Database)
	assert.NotNil(t, deps.Triage)
	assert.NotNil(t, deps.Bookings)
	assert.NotNil(t, deps.Reports)
}

func TestBuild_BadSessionBackend(t *testing.T) {
	cm := writeConfig(t, t.TempDir(), `
session:
  backend: carrier-pigeon
`)

	_, err := Build(context.Background(), cm, quietLogger())
	assert.Error(t, err)
}
