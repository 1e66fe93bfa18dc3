package domain

import (
	"context"
)

// Extractor turns a free-text narrative, optionally followed by the Q&A
// transcript, into structured fields. Implementations never fail: any
// problem yields an empty result.
type Extractor interface {
	Extract(ctx context.Context, narrative, transcript string) ExtractionResult
}

// SessionStore persists serialisable session state between turns.
type SessionStore interface {
	Save(ctx context.Context, session *SessionContext) error
	Get(ctx context.Context, id string) (*SessionContext, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
	Close() error
}

// DoctorDirectory is the read-only doctor data source.
type DoctorDirectory interface {
	Doctors() []Doctor
	FindByName(name string) (Doctor, bool)
}

// BookingRepository persists accepted booking requests.
type BookingRepository interface {
	Create(ctx context.Context, booking *Booking) error
	GetByID(ctx context.Context, bookingID string) (*Booking, error)
	ListBySession(ctx context.Context, sessionID string) ([]*Booking, error)
}

// ConfigManager defines the interface for configuration management
type ConfigManager interface {
	GetConfig() *Config
	GetDatabaseConfig() *DatabaseConfig
	GetExtractorConfig() *ExtractorConfig
	GetServerConfig() *ServerConfig
	Reload() error
	Validate() error
	GetDatabaseConnectionString() string
	GetDatabaseURL() string
	GetRedisConnectionString() string
	IsProduction() bool
	IsDevelopment() bool
}
