package patient

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/clinichq/clinic-api/pkg/errors"

	"github.com/clinichq/clinic-api/internal/model"
	"github.com/clinichq/clinic-api/internal/repository"
	"github.com/clinichq/clinic-api/internal/service/authz"
)

// Service manages patient records. Every read and write is scoped through
// the ownership gate: doctors only ever see their own patients, and the
// doctor id on a record always comes from the authenticated principal,
// never from the request body.
type Service struct {
	repo            repository.PatientRepository
	appointmentRepo repository.AppointmentRepository
}

func NewService(repo repository.PatientRepository, appointmentRepo repository.AppointmentRepository) *Service {
	return &Service{repo: repo, appointmentRepo: appointmentRepo}
}

func (s *Service) Create(ctx context.Context, principal model.Principal, req *model.CreatePatientRequest) (*model.Patient, error) {
	patient := &model.Patient{
		ID:            uuid.New(),
		Name:          req.Name,
		Age:           req.Age,
		Diagnosis:     req.Diagnosis,
		DateOfVisit:   req.DateOfVisit,
		DateOfRevisit: req.DateOfRevisit,
		DoctorID:      principal.UserID,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}

	if err := s.repo.Create(ctx, patient); err != nil {
		return nil, err
	}
	return patient, nil
}

func (s *Service) Get(ctx context.Context, principal model.Principal, id uuid.UUID) (*model.Patient, error) {
	patient, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !authz.CanAccess(principal, &patient.DoctorID) {
		return nil, apperrors.Unauthorized("patient belongs to another doctor", nil)
	}
	return patient, nil
}

func (s *Service) Update(ctx context.Context, principal model.Principal, id uuid.UUID, req *model.UpdatePatientRequest) (*model.Patient, error) {
	patient, err := s.Get(ctx, principal, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		patient.Name = *req.Name
	}
	if req.Age != nil {
		patient.Age = *req.Age
	}
	if req.Diagnosis != nil {
		patient.Diagnosis = *req.Diagnosis
	}
	if req.DateOfVisit != nil {
		patient.DateOfVisit = *req.DateOfVisit
	}
	if req.DateOfRevisit != nil {
		patient.DateOfRevisit = req.DateOfRevisit
	}
	patient.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, patient); err != nil {
		return nil, err
	}
	return patient, nil
}

func (s *Service) Delete(ctx context.Context, principal model.Principal, id uuid.UUID) error {
	if _, err := s.Get(ctx, principal, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// List returns patients visible to the principal. Doctors are restricted to
// their own records, staff roles see everything.
func (s *Service) List(ctx context.Context, principal model.Principal, name string) ([]*model.Patient, error) {
	filters := &model.PatientFilters{Name: name}
	if principal.Role == model.RoleDoctor {
		filters.DoctorID = principal.UserID
	}
	return s.repo.List(ctx, filters)
}

func (s *Service) ListForDoctor(ctx context.Context, doctorID uuid.UUID) ([]*model.Patient, error) {
	return s.repo.List(ctx, &model.PatientFilters{DoctorID: doctorID})
}

// History returns the patient's appointments newest first, eager relations
// included.
func (s *Service) History(ctx context.Context, principal model.Principal, patientID uuid.UUID) ([]*model.Appointment, error) {
	if _, err := s.Get(ctx, principal, patientID); err != nil {
		return nil, err
	}
	appointments, err := s.appointmentRepo.List(ctx, &model.AppointmentFilters{PatientID: &patientID})
	if err != nil {
		return nil, err
	}
	sort.Slice(appointments, func(i, j int) bool {
		return appointments[i].Date.After(appointments[j].Date)
	})
	return appointments, nil
}

// Report is the full chronological record, oldest first.
func (s *Service) Report(ctx context.Context, principal model.Principal, patientID uuid.UUID) ([]*model.Appointment, error) {
	appointments, err := s.History(ctx, principal, patientID)
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(appointments)-1; i < j; i, j = i+1, j-1 {
		appointments[i], appointments[j] = appointments[j], appointments[i]
	}
	return appointments, nil
}
