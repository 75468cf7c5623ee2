package model

import (
	"time"

	"github.com/google/uuid"
)

// MedicalFile is an attachment created when a doctor submits clinical notes.
// Rows are immutable and live only as long as their appointment.
type MedicalFile struct {
	ID            uuid.UUID `db:"id" json:"id"`
	AppointmentID uuid.UUID `db:"appointment_id" json:"appointment_id"`
	FilePath      string    `db:"file_path" json:"file_path"`
	FileName      string    `db:"file_name" json:"file_name"`
	UploadedAt    time.Time `db:"uploaded_at" json:"uploaded_at"`
}
