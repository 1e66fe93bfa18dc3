package sessionstore

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medemi-triage-server/internal/domain"
)

func sampleSession(id string) *domain.SessionContext {
	s := domain.NewSessionContext(id, time.Date(2025, 5, 4, 9, 30, 0, 0, time.UTC))
	s.Stage = domain.STAGE_QUESTIONS
	s.InitialText = "I have had a fever and cough since Monday"
	s.Record.AddSymptoms("fever", "cough")
	s.Record.SetPainScore(3)
	s.Asked.Add(domain.KeyAge)
	s.PendingQuestion = &domain.Question{Key: domain.KeyGender, Text: "What is the patient's gender? (male/female/other)"}
	s.AppendExchange("What is the patient's age?", "34")
	return s
}

// exerciseStore runs the shared contract every backend must honour.
func exerciseStore(t *testing.T, store domain.SessionStore) {
	t.Helper()
	ctx := context.Background()

	_, err := store.Get(ctx, "missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	original := sampleSession("session-1")
	require.NoError(t, store.Save(ctx, original))

	loaded, err := store.Get(ctx, "session-1")
	require.NoError(t, err)
	assert.Equal(t, domain.STAGE_QUESTIONS, loaded.Stage)
	assert.Equal(t, []string{"fever", "cough"}, loaded.Record.Symptoms)
	assert.Equal(t, 3, *loaded.Record.PainScore)
	assert.True(t, loaded.Asked.Has(domain.KeyAge))
	assert.Equal(t, domain.KeyGender, loaded.PendingQuestion.Key)
	assert.Len(t, loaded.Transcript, 1)

	// Mutating a loaded copy must not leak into the stored state.
	loaded.Record.AddSymptoms("headache")
	again, err := store.Get(ctx, "session-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"fever", "cough"}, again.Record.Symptoms)

	// Saving again overwrites.
	loaded.Stage = domain.STAGE_SHOW_ASSESSMENT
	require.NoError(t, store.Save(ctx, loaded))
	again, err = store.Get(ctx, "session-1")
	require.NoError(t, err)
	assert.Equal(t, domain.STAGE_SHOW_ASSESSMENT, again.Stage)
	assert.Contains(t, again.Record.Symptoms, "headache")

	require.NoError(t, store.Save(ctx, sampleSession("session-2")))
	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	require.NoError(t, store.Delete(ctx, "session-1"))
	_, err = store.Get(ctx, "session-1")
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	// Deleting an absent session is not an error.
	require.NoError(t, store.Delete(ctx, "session-1"))
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore(100, time.Hour)
	defer store.Close()
	exerciseStore(t, store)
}

func TestMemoryStore_EvictsLeastRecentlyUsed(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(2, time.Hour)

	require.NoError(t, store.Save(ctx, sampleSession("a")))
	require.NoError(t, store.Save(ctx, sampleSession("b")))
	require.NoError(t, store.Save(ctx, sampleSession("c")))

	_, err := store.Get(ctx, "a")
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestSQLiteStore(t *testing.T) {
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "nested", "sessions.db"), time.Hour)
	require.NoError(t, err)
	defer store.Close()
	exerciseStore(t, store)
}

func TestSQLiteStore_ExpiredSessionsAreInvisible(t *testing.T) {
	ctx := context.Background()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "sessions.db"), time.Minute)
	require.NoError(t, err)
	defer store.Close()

	base := time.Date(2025, 5, 4, 9, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return base }
	require.NoError(t, store.Save(ctx, sampleSession("old")))

	store.now = func() time.Time { return base.Add(2 * time.Minute) }
	_, err = store.Get(ctx, "old")
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	purged, err := store.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), purged)
}

func TestSQLiteStore_RequiresPath(t *testing.T) {
	_, err := NewSQLiteStore("", time.Hour)
	assert.Error(t, err)
}

func TestNew_SelectsBackend(t *testing.T) {
	ctx := context.Background()

	store, err := New(ctx, domain.SessionConfig{}, Options{})
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, store)

	store, err = New(ctx, domain.SessionConfig{
		Backend:    domain.SessionBackendSQLite,
		SQLitePath: filepath.Join(t.TempDir(), "s.db"),
	}, Options{})
	require.NoError(t, err)
	assert.IsType(t, &SQLiteStore{}, store)
	require.NoError(t, store.Close())

	_, err = New(ctx, domain.SessionConfig{Backend: domain.SessionBackendPostgres}, Options{})
	assert.Error(t, err)

	_, err = New(ctx, domain.SessionConfig{Backend: "etcd"}, Options{})
	assert.Error(t, err)
}
