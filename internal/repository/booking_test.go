package repository

import (
	"context"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/medemi-triage-server/internal/database"
	"github.com/medemi-triage-server/internal/domain"
)

// migratedPool starts PostgreSQL, applies the schema and returns a pool.
func migratedPool(t *testing.T) *database.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping PostgreSQL container test in short mode")
	}
	ctx := context.Background()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	container, err := postgres.Run(ctx, "postgres:15-alpine",
		postgres.WithDatabase("bookings"),
		postgres.WithUsername("triage"),
		postgres.WithPassword("triage"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	url := fmt.Sprintf("postgres://triage:triage@%s:%s/bookings?sslmode=disable", host, port.Port())
	require.NoError(t, database.Migrate(ctx, url, "../../migrations", logger))

	db, err := database.NewConnection(ctx, database.Config{
		Host:     host,
		Port:     port.Int(),
		Database: "bookings",
		Username: "triage",
		Password: "triage",
		MaxConns: 4,
		MinConns: 1,
		SSLMode:  "disable",
	}, logger)
	require.NoError(t, err)
	t.Cleanup(db.Close)
	return db
}

func testBooking(id, sessionID string, at time.Time) *domain.Booking {
	return &domain.Booking{
		BookingID:           id,
		BookingTime:         at,
		SessionID:           sessionID,
		DoctorName:          "Anita Rao",
		DoctorQualification: "MD, DM (Cardiology)",
		Specialization:      "Cardiology",
		PatientName:         "Jane Doe",
		PatientAge:          67,
		PatientGender:       "Female",
		PatientPhone:        "9876543210",
		PatientID:           "New Patient",
		PreferredDate:       "2025-06-02",
		PreferredTime:       "09:00 AM",
		AppointmentType:     "First Visit",
		Urgency:             "Urgent",
		ReasonForVisit:      "chest pain, shortness of breath",
	}
}

func TestBookingRepository_Postgres(t *testing.T) {
	db := migratedPool(t)
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	repo := NewBookingRepository(db.Pool, logger)
	ctx := context.Background()
	base := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

	t.Run("create and get", func(t *testing.T) {
		booking := testBooking("BK20250601093000", "session-1", base.Add(30*time.Minute))
		require.NoError(t, repo.Create(ctx, booking))

		got, err := repo.GetByID(ctx, booking.BookingID)
		require.NoError(t, err)
		assert.Equal(t, booking.DoctorName, got.DoctorName)
		assert.Equal(t, booking.PreferredDate, got.PreferredDate)
		assert.Equal(t, booking.PatientAge, got.PatientAge)
		assert.True(t, got.BookingTime.Equal(booking.BookingTime))
	})

	t.Run("missing id", func(t *testing.T) {
		_, err := repo.GetByID(ctx, "BK19990101000000")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("duplicate id", func(t *testing.T) {
		require.NoError(t, repo.Create(ctx, testBooking("BK20250601090000", "session-3", base)))
		err := repo.Create(ctx, testBooking("BK20250601090000", "session-3", base))
		assert.ErrorIs(t, err, domain.ErrAlreadyExists)
	})

	t.Run("list by session oldest first", func(t *testing.T) {
		require.NoError(t, repo.Create(ctx, testBooking("BK20250601090200", "session-2", base.Add(2*time.Minute))))
		require.NoError(t, repo.Create(ctx, testBooking("BK20250601090100", "session-2", base.Add(time.Minute))))
		require.NoError(t, repo.Create(ctx, testBooking("BK20250601090300", "other", base)))

		bookings, err := repo.ListBySession(ctx, "session-2")
		require.NoError(t, err)
		require.Len(t, bookings, 2)
		assert.Equal(t, "BK20250601090100", bookings[0].BookingID)
		assert.Equal(t, "BK20250601090200", bookings[1].BookingID)
	})
}
