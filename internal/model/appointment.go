package model

import (
	"time"

	"github.com/google/uuid"
)

type AppointmentStatus string

const (
	AppointmentStatusScheduled AppointmentStatus = "scheduled"
	AppointmentStatusArrived   AppointmentStatus = "arrived"
	AppointmentStatusCompleted AppointmentStatus = "completed"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
	AppointmentStatusNoShow    AppointmentStatus = "no_show"
)

type Appointment struct {
	ID          uuid.UUID         `db:"id" json:"id"`
	PatientID   *uuid.UUID        `db:"patient_id" json:"patient_id,omitempty"`
	DoctorID    *uuid.UUID        `db:"doctor_id" json:"doctor_id,omitempty"`
	Date        time.Time         `db:"date" json:"date"`
	Notes       string            `db:"notes" json:"notes,omitempty"`
	DoctorNotes string            `db:"doctor_notes" json:"doctor_notes,omitempty"`
	Status      AppointmentStatus `db:"status" json:"status"`
	AISummary   string            `db:"ai_summary" json:"ai_summary,omitempty"`
	CreatedAt   time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time         `db:"updated_at" json:"updated_at"`

	// Eager-loaded relations
	Patient *Patient      `db:"-" json:"patient,omitempty"`
	Doctor  *User         `db:"-" json:"doctor,omitempty"`
	Files   []MedicalFile `db:"-" json:"files,omitempty"`
	Payment *Payment      `db:"-" json:"payment,omitempty"`
}

type CreateAppointmentRequest struct {
	PatientID *uuid.UUID `json:"patient_id"`
	DoctorID  *uuid.UUID `json:"doctor_id"`
	Date      time.Time  `json:"date" binding:"required"`
	Notes     string     `json:"notes" binding:"max=2000"`
}

type RescheduleRequest struct {
	Date time.Time `json:"date" binding:"required"`
}

type DoctorNotesRequest struct {
	Notes string       `json:"notes"`
	Files []FileUpload `json:"-"`
}

type ChatRequest struct {
	Message string `json:"message" binding:"required"`
}

// FileUpload carries one uploaded file through the workflow.
type FileUpload struct {
	Name string
	Data []byte
}

// FileError pairs a failed upload with the reason it failed.
type FileError struct {
	Name string `json:"name"`
	Err  string `json:"error"`
}

// AttachmentResult is the per-file outcome of a notes submission. One bad
// file never blocks the rest, so both slices can be populated at once.
type AttachmentResult struct {
	Saved  []MedicalFile `json:"saved"`
	Failed []FileError   `json:"failed"`
}

type AppointmentFilters struct {
	DoctorID    *uuid.UUID
	PatientID   *uuid.UUID
	PatientName string
	Status      AppointmentStatus
	DateFrom    time.Time
	DateTo      time.Time
}
