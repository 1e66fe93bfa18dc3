// Package sessionstore persists triage session state between dialogue turns.
// Sessions are stored as self-contained JSON documents so any backend can
// resume a dialogue exactly where the previous turn left it.
package sessionstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/medemi-triage-server/internal/domain"
)

// Default limits applied when the configuration leaves them unset.
const (
	DefaultTTL         = 24 * time.Hour
	DefaultMaxSessions = 10000
)

// Options carries connection details the session config does not hold.
type Options struct {
	DatabaseURL string
	RedisURL    string
	Logger      *logrus.Logger
}

// New opens the store selected by cfg.Backend.
func New(ctx context.Context, cfg domain.SessionConfig, opts Options) (domain.SessionStore, error) {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	var (
		store domain.SessionStore
		err   error
	)
	switch cfg.Backend {
	case "", domain.SessionBackendMemory:
		maxSessions := cfg.MaxSessions
		if maxSessions <= 0 {
			maxSessions = DefaultMaxSessions
		}
		store = NewMemoryStore(maxSessions, ttl)
	case domain.SessionBackendSQLite:
		store, err = NewSQLiteStore(cfg.SQLitePath, ttl)
	case domain.SessionBackendPostgres:
		if opts.DatabaseURL == "" {
			return nil, fmt.Errorf("postgres session store requires a database URL")
		}
		store, err = NewPostgresStoreFromURL(opts.DatabaseURL, ttl)
	case domain.SessionBackendRedis:
		if opts.RedisURL == "" {
			return nil, fmt.Errorf("redis session store requires a redis URL")
		}
		store, err = NewRedisStore(ctx, opts.RedisURL, ttl)
	default:
		return nil, fmt.Errorf("unknown session backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, fmt.Errorf("opening %s session store: %w", cfg.Backend, err)
	}

	if opts.Logger != nil {
		opts.Logger.WithFields(logrus.Fields{
			"backend": backendName(cfg.Backend),
			"ttl":     ttl,
		}).Info("Session store ready")
	}
	return store, nil
}

func backendName(b string) string {
	if b == "" {
		return domain.SessionBackendMemory
	}
	return b
}

func encodeSession(session *domain.SessionContext) ([]byte, error) {
	data, err := json.Marshal(session)
	if err != nil {
		return nil, fmt.Errorf("encoding session: %w", err)
	}
	return data, nil
}

func decodeSession(data []byte) (*domain.SessionContext, error) {
	var session domain.SessionContext
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("decoding session: %w", err)
	}
	session.Normalize()
	return &session, nil
}

func notFound(id string) error {
	return fmt.Errorf("session %s: %w", id, domain.ErrNotFound)
}
