package domain

import "time"

// GeneralMedicine is the fallback specialty.
const GeneralMedicine = "General Medicine"

// DirectoryUnavailableMessage is shown when no doctor data can be loaded.
const DirectoryUnavailableMessage = "Doctor information not available. Please contact reception for appointments."

// Doctor is a read-only entry from the doctor directory.
type Doctor struct {
	Name           string   `json:"name" mapstructure:"name"`
	Specialization string   `json:"specialization" mapstructure:"specialization"`
	Qualification  string   `json:"qualification" mapstructure:"qualification"`
	TimeSlots      []string `json:"time_slots" mapstructure:"time_slots"`
}

// HasSlot reports whether slot is one of the doctor's advertised time slots.
func (d Doctor) HasSlot(slot string) bool {
	for _, s := range d.TimeSlots {
		if s == slot {
			return true
		}
	}
	return false
}

// DoctorGroup lists the doctors available for one recommended specialty.
type DoctorGroup struct {
	Specialty string   `json:"specialty"`
	Doctors   []Doctor `json:"doctors"`
}

// Appointment option values accepted on a booking request.
var (
	AppointmentTypes = []string{"First Visit", "Follow-up", "Emergency Consultation", "Routine Checkup", "Second Opinion"}
	BookingUrgencies = []string{"Normal", "Urgent", "Emergency"}
	BookingGenders   = []string{"Male", "Female", "Other"}
)

// BookingRequest is an appointment request submitted after an assessment.
type BookingRequest struct {
	SessionID         string `json:"session_id,omitempty"`
	DoctorName        string `json:"doctor_name"`
	PatientName       string `json:"patient_name"`
	PatientAge        int    `json:"patient_age"`
	PatientGender     string `json:"patient_gender"`
	PatientPhone      string `json:"patient_phone"`
	PatientEmail      string `json:"patient_email,omitempty"`
	PatientID         string `json:"patient_id,omitempty"`
	PreferredDate     string `json:"preferred_date"`
	PreferredTime     string `json:"preferred_time"`
	AppointmentType   string `json:"appointment_type"`
	Urgency           string `json:"urgency,omitempty"`
	ReasonForVisit    string `json:"reason_for_visit,omitempty"`
	MedicalHistory    string `json:"medical_history,omitempty"`
	InsuranceProvider string `json:"insurance_provider,omitempty"`
	InsuranceID       string `json:"insurance_id,omitempty"`
	PreferredLanguage string `json:"preferred_language,omitempty"`
	SpecialNeeds      string `json:"special_needs,omitempty"`
	AdditionalNotes   string `json:"additional_notes,omitempty"`
	Consent           bool   `json:"consent"`
}

// Booking is an accepted appointment request.
type Booking struct {
	BookingID           string    `json:"booking_id"`
	BookingTime         time.Time `json:"booking_time"`
	SessionID           string    `json:"session_id,omitempty"`
	DoctorName          string    `json:"doctor_name"`
	DoctorQualification string    `json:"doctor_qualification"`
	Specialization      string    `json:"specialization"`
	PatientName         string    `json:"patient_name"`
	PatientAge          int       `json:"patient_age"`
	PatientGender       string    `json:"patient_gender"`
	PatientPhone        string    `json:"patient_phone"`
	PatientEmail        string    `json:"patient_email,omitempty"`
	PatientID           string    `json:"patient_id"`
	PreferredDate       string    `json:"preferred_date"`
	PreferredTime       string    `json:"preferred_time"`
	AppointmentType     string    `json:"appointment_type"`
	Urgency             string    `json:"urgency"`
	ReasonForVisit      string    `json:"reason_for_visit"`
	MedicalHistory      string    `json:"medical_history,omitempty"`
	InsuranceProvider   string    `json:"insurance_provider,omitempty"`
	InsuranceID         string    `json:"insurance_id,omitempty"`
	PreferredLanguage   string    `json:"preferred_language,omitempty"`
	SpecialNeeds        string    `json:"special_needs,omitempty"`
	AdditionalNotes     string    `json:"additional_notes,omitempty"`
}
