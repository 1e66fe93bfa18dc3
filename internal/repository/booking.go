package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/medemi-triage-server/internal/domain"
)

// BookingRepository handles booking persistence in PostgreSQL
type BookingRepository struct {
	db  *pgxpool.Pool
	log *logrus.Logger
}

// NewBookingRepository creates a new booking repository
func NewBookingRepository(db *pgxpool.Pool, logger *logrus.Logger) *BookingRepository {
	return &BookingRepository{
		db:  db,
		log: logger,
	}
}

// uniqueViolation is the PostgreSQL SQLSTATE for a duplicate key.
const uniqueViolation = "23505"

const bookingColumns = `
	booking_id, booking_time, session_id, doctor_name, doctor_qualification,
	specialization, patient_name, patient_age, patient_gender, patient_phone,
	patient_email, patient_id, preferred_date::text, preferred_time,
	appointment_type, urgency, reason_for_visit, medical_history,
	insurance_provider, insurance_id, preferred_language, special_needs,
	additional_notes`

// Create inserts a new booking
func (r *BookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	query := `
		INSERT INTO bookings (
			booking_id, booking_time, session_id, doctor_name, doctor_qualification,
			specialization, patient_name, patient_age, patient_gender, patient_phone,
			patient_email, patient_id, preferred_date, preferred_time,
			appointment_type, urgency, reason_for_visit, medical_history,
			insurance_provider, insurance_id, preferred_language, special_needs,
			additional_notes
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13::date, $14,
			$15, $16, $17, $18, $19, $20, $21, $22, $23
		)`

	_, err := r.db.Exec(ctx, query,
		b.BookingID,
		b.BookingTime,
		b.SessionID,
		b.DoctorName,
		b.DoctorQualification,
		b.Specialization,
		b.PatientName,
		b.PatientAge,
		b.PatientGender,
		b.PatientPhone,
		b.PatientEmail,
		b.PatientID,
		b.PreferredDate,
		b.PreferredTime,
		b.AppointmentType,
		b.Urgency,
		b.ReasonForVisit,
		b.MedicalHistory,
		b.InsuranceProvider,
		b.InsuranceID,
		b.PreferredLanguage,
		b.SpecialNeeds,
		b.AdditionalNotes,
	)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("booking %s: %w", b.BookingID, domain.ErrAlreadyExists)
		}
		r.log.WithFields(logrus.Fields{
			"booking_id": b.BookingID,
			"error":      err,
		}).Error("Failed to create booking")
		return fmt.Errorf("creating booking: %w", err)
	}

	r.log.WithFields(logrus.Fields{
		"booking_id":     b.BookingID,
		"specialization": b.Specialization,
	}).Info("Booking created successfully")

	return nil
}

// GetByID retrieves a booking by its ID
func (r *BookingRepository) GetByID(ctx context.Context, bookingID string) (*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE booking_id = $1`

	b, err := scanBooking(r.db.QueryRow(ctx, query, bookingID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("booking not found: %w", domain.ErrNotFound)
		}
		r.log.WithFields(logrus.Fields{
			"booking_id": bookingID,
			"error":      err,
		}).Error("Failed to get booking by ID")
		return nil, fmt.Errorf("getting booking by ID: %w", err)
	}

	return b, nil
}

// ListBySession returns the bookings made from one triage session, oldest first
func (r *BookingRepository) ListBySession(ctx context.Context, sessionID string) ([]*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE session_id = $1 ORDER BY booking_time`

	rows, err := r.db.Query(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("listing bookings by session: %w", err)
	}
	defer rows.Close()

	var bookings []*domain.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning booking: %w", err)
		}
		bookings = append(bookings, b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating bookings: %w", err)
	}

	return bookings, nil
}

func scanBooking(row pgx.Row) (*domain.Booking, error) {
	var b domain.Booking
	err := row.Scan(
		&b.BookingID,
		&b.BookingTime,
		&b.SessionID,
		&b.DoctorName,
		&b.DoctorQualification,
		&b.Specialization,
		&b.PatientName,
		&b.PatientAge,
		&b.PatientGender,
		&b.PatientPhone,
		&b.PatientEmail,
		&b.PatientID,
		&b.PreferredDate,
		&b.PreferredTime,
		&b.AppointmentType,
		&b.Urgency,
		&b.ReasonForVisit,
		&b.MedicalHistory,
		&b.InsuranceProvider,
		&b.InsuranceID,
		&b.PreferredLanguage,
		&b.SpecialNeeds,
		&b.AdditionalNotes,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}
