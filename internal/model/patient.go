package model

import (
	"time"

	"github.com/google/uuid"
)

type Patient struct {
	ID            uuid.UUID  `db:"id" json:"id"`
	Name          string     `db:"name" json:"name"`
	Age           int        `db:"age" json:"age"`
	Diagnosis     string     `db:"diagnosis" json:"diagnosis"`
	DateOfVisit   time.Time  `db:"date_of_visit" json:"date_of_visit"`
	DateOfRevisit *time.Time `db:"date_of_revisit" json:"date_of_revisit,omitempty"`
	DoctorID      uuid.UUID  `db:"doctor_id" json:"doctor_id"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updated_at"`
}

type CreatePatientRequest struct {
	Name          string     `json:"name" binding:"required"`
	Age           int        `json:"age" binding:"min=0,max=120"`
	Diagnosis     string     `json:"diagnosis" binding:"required"`
	DateOfVisit   time.Time  `json:"date_of_visit" binding:"required"`
	DateOfRevisit *time.Time `json:"date_of_revisit"`
}

type UpdatePatientRequest struct {
	Name          *string    `json:"name"`
	Age           *int       `json:"age" binding:"omitempty,min=0,max=120"`
	Diagnosis     *string    `json:"diagnosis"`
	DateOfVisit   *time.Time `json:"date_of_visit"`
	DateOfRevisit *time.Time `json:"date_of_revisit"`
}

type PatientFilters struct {
	DoctorID uuid.UUID
	Name     string
}
