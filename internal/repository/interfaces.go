package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/clinichq/clinic-api/internal/model"
)

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	Get(ctx context.Context, id uuid.UUID) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	Update(ctx context.Context, user *model.User) error
	List(ctx context.Context) ([]*model.User, error)
	ListByRole(ctx context.Context, role model.Role) ([]*model.User, error)
	UpdateRole(ctx context.Context, id uuid.UUID, role model.Role) error
	Count(ctx context.Context) (int, error)
	CountByRole(ctx context.Context, role model.Role) (int, error)
}

type PatientRepository interface {
	Create(ctx context.Context, patient *model.Patient) error
	Get(ctx context.Context, id uuid.UUID) (*model.Patient, error)
	Update(ctx context.Context, patient *model.Patient) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filters *model.PatientFilters) ([]*model.Patient, error)
	Count(ctx context.Context) (int, error)
	CountByVisitMonth(ctx context.Context) ([]model.MonthCount, error)
}

type AppointmentRepository interface {
	Create(ctx context.Context, appointment *model.Appointment) error
	Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
	Update(ctx context.Context, appointment *model.Appointment) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error)
	ListForDay(ctx context.Context, day time.Time) ([]*model.Appointment, error)
	ListWithPaymentInfo(ctx context.Context) ([]*model.Appointment, error)
	Count(ctx context.Context) (int, error)
}

type MedicalFileRepository interface {
	Create(ctx context.Context, file *model.MedicalFile) error
	ListForAppointment(ctx context.Context, appointmentID uuid.UUID) ([]model.MedicalFile, error)
}

type PaymentRepository interface {
	Create(ctx context.Context, payment *model.Payment) error
	GetByAppointment(ctx context.Context, appointmentID uuid.UUID) (*model.Payment, error)
}

// TokenRepository stores short-lived auth tokens (revocations, password
// resets) outside the relational store.
type TokenRepository interface {
	RevokeToken(ctx context.Context, token string, expiry time.Duration) error
	IsRevoked(ctx context.Context, token string) (bool, error)
	StoreResetToken(ctx context.Context, userID uuid.UUID, token string, expiry time.Duration) error
	ValidateResetToken(ctx context.Context, token string) (uuid.UUID, error)
}
