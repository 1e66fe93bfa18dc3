package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/medemi-triage-server/internal/domain"
)

// Booking window, in days from today.
const (
	minBookingDaysAhead = 1
	maxBookingDaysAhead = 30
)

const (
	bookingIDPrefix     = "BK"
	bookingIDTimeLayout = "20060102150405"
	bookingDateLayout   = "2006-01-02"
	defaultPatientID    = "New Patient"
	defaultUrgency      = "Normal"
)

var phonePattern = regexp.MustCompile(`^\d{10}$`)

// BookingService validates and records appointment requests made against the
// doctor directory.
type BookingService struct {
	logger    *logrus.Logger
	repo      domain.BookingRepository
	directory domain.DoctorDirectory
	sessions  domain.SessionStore
	now       func() time.Time
}

// NewBookingService creates a new booking service. sessions may be nil, in
// which case no reason for visit is pre-filled.
func NewBookingService(
	logger *logrus.Logger,
	repo domain.BookingRepository,
	doctors domain.DoctorDirectory,
	sessions domain.SessionStore,
) *BookingService {
	return &BookingService{
		logger:    logger,
		repo:      repo,
		directory: doctors,
		sessions:  sessions,
		now:       time.Now,
	}
}

// NewBookingID derives a booking ID from the booking time.
func NewBookingID(t time.Time) string {
	return bookingIDPrefix + t.Format(bookingIDTimeLayout)
}

// Book validates the request and records the booking. Validation problems
// are returned together as domain.ValidationErrors.
func (b *BookingService) Book(ctx context.Context, req *domain.BookingRequest) (*domain.Booking, error) {
	doctor, ok := b.directory.FindByName(req.DoctorName)
	if !ok {
		return nil, domain.ValidationErrors{
			domain.NewValidationError("doctor_name", "Please select a doctor", req.DoctorName),
		}
	}

	if strings.TrimSpace(req.ReasonForVisit) == "" {
		req.ReasonForVisit = b.defaultReason(ctx, req.SessionID)
	}

	if errs := b.Validate(req, doctor); len(errs) > 0 {
		return nil, errs
	}

	now := b.now()
	booking := &domain.Booking{
		BookingID:           NewBookingID(now),
		BookingTime:         now.UTC(),
		SessionID:           req.SessionID,
		DoctorName:          doctor.Name,
		DoctorQualification: doctor.Qualification,
		Specialization:      doctor.Specialization,
		PatientName:         strings.TrimSpace(req.PatientName),
		PatientAge:          req.PatientAge,
		PatientGender:       req.PatientGender,
		PatientPhone:        req.PatientPhone,
		PatientEmail:        req.PatientEmail,
		PatientID:           orDefault(req.PatientID, defaultPatientID),
		PreferredDate:       req.PreferredDate,
		PreferredTime:       req.PreferredTime,
		AppointmentType:     req.AppointmentType,
		Urgency:             orDefault(req.Urgency, defaultUrgency),
		ReasonForVisit:      strings.TrimSpace(req.ReasonForVisit),
		MedicalHistory:      req.MedicalHistory,
		InsuranceProvider:   req.InsuranceProvider,
		InsuranceID:         req.InsuranceID,
		PreferredLanguage:   req.PreferredLanguage,
		SpecialNeeds:        req.SpecialNeeds,
		AdditionalNotes:     req.AdditionalNotes,
	}

	if err := b.repo.Create(ctx, booking); err != nil {
		return nil, fmt.Errorf("creating booking: %w", err)
	}

	b.logger.WithFields(logrus.Fields{
		"booking_id":       booking.BookingID,
		"specialization":   booking.Specialization,
		"appointment_type": booking.AppointmentType,
		"urgency":          booking.Urgency,
	}).Info("Booking created")

	return booking, nil
}

// GetBooking returns a stored booking.
func (b *BookingService) GetBooking(ctx context.Context, bookingID string) (*domain.Booking, error) {
	return b.repo.GetByID(ctx, bookingID)
}

// Validate checks every booking field and collects all problems.
func (b *BookingService) Validate(req *domain.BookingRequest, doctor domain.Doctor) domain.ValidationErrors {
	var errs domain.ValidationErrors
	add := func(field, msg string, value interface{}) {
		errs = append(errs, domain.NewValidationError(field, msg, value))
	}

	if len(strings.TrimSpace(req.PatientName)) < 2 {
		add("patient_name", "Please enter a valid full name", req.PatientName)
	}
	if req.PatientAge <= domain.MinAge || req.PatientAge > domain.MaxAge {
		add("patient_age", "Please enter a valid age", req.PatientAge)
	}
	if !oneOf(req.PatientGender, domain.BookingGenders) {
		add("patient_gender", "Please select gender", req.PatientGender)
	}
	if !phonePattern.MatchString(req.PatientPhone) {
		add("patient_phone", "Please enter a valid 10-digit phone number", req.PatientPhone)
	}
	if !b.dateInWindow(req.PreferredDate) {
		add("preferred_date", "Please select a valid preferred date (1-30 days ahead)", req.PreferredDate)
	}
	if req.PreferredTime == "" || !doctor.HasSlot(req.PreferredTime) {
		add("preferred_time", "Please select a preferred time slot", req.PreferredTime)
	}
	if !oneOf(req.AppointmentType, domain.AppointmentTypes) {
		add("appointment_type", "Please select appointment type", req.AppointmentType)
	}
	if req.Urgency != "" && !oneOf(req.Urgency, domain.BookingUrgencies) {
		add("urgency", "Please select urgency", req.Urgency)
	}
	if len(strings.TrimSpace(req.ReasonForVisit)) < 5 {
		add("reason_for_visit", "Please provide a reason for visit", req.ReasonForVisit)
	}
	if !req.Consent {
		add("consent", "Please confirm consent to book appointment", req.Consent)
	}

	return errs
}

func (b *BookingService) dateInWindow(raw string) bool {
	date, err := time.ParseInLocation(bookingDateLayout, raw, time.UTC)
	if err != nil {
		return false
	}
	now := b.now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	earliest := today.AddDate(0, 0, minBookingDaysAhead)
	latest := today.AddDate(0, 0, maxBookingDaysAhead)
	return !date.Before(earliest) && !date.After(latest)
}

// defaultReason pre-fills the reason for visit from the session's finalized
// symptom list.
func (b *BookingService) defaultReason(ctx context.Context, sessionID string) string {
	if sessionID == "" || b.sessions == nil {
		return ""
	}
	session, err := b.sessions.Get(ctx, sessionID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			b.logger.WithError(err).WithField("session_id", sessionID).Warn("Could not load session for booking reason")
		}
		return ""
	}
	session.Normalize()
	return session.Record.SymptomSummary()
}

func oneOf(value string, options []string) bool {
	for _, o := range options {
		if value == o {
			return true
		}
	}
	return false
}

func orDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
