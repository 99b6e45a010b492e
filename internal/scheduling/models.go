package scheduling

import "time"

// Doctor is an immutable directory snapshot supplied by the scheduling API.
// The portal never mutates it.
type Doctor struct {
	ID             int64    `json:"id"`
	Name           string   `json:"name"`
	Specialization string   `json:"specialization"`
	Email          string   `json:"email"`
	Availability   []string `json:"availableTimes"`
}

// PatientRecord identifies the patient behind an auth token.
type PatientRecord struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type AppointmentStatus int

const (
	StatusScheduled AppointmentStatus = 0
	StatusCompleted AppointmentStatus = 1
)

// AppointmentEntry is one appointment as reported by the scheduling API for
// a given date and optional patient-name filter.
type AppointmentEntry struct {
	ID              int64             `json:"id"`
	DoctorID        int64             `json:"doctorId"`
	Patient         PatientRecord     `json:"patient"`
	AppointmentTime time.Time         `json:"appointmentTime"`
	Status          AppointmentStatus `json:"status"`
}

// DeleteResult reports the outcome of a doctor removal.
type DeleteResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// SaveResult reports the outcome of creating a doctor.
type SaveResult struct {
	Success bool    `json:"success"`
	Message string  `json:"message"`
	Doctor  *Doctor `json:"doctor,omitempty"`
}
