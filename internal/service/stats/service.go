package stats

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/clinichq/clinic-api/internal/model"
	"github.com/clinichq/clinic-api/internal/repository"
)

const (
	snapshotKey = "clinic_stats"
	snapshotTTL = 30 * time.Second
)

// Service aggregates dashboard numbers. The snapshot is cached briefly so a
// dashboard polling every few seconds does not hammer the store with count
// queries.
type Service struct {
	users        repository.UserRepository
	patients     repository.PatientRepository
	appointments repository.AppointmentRepository
	cache        *cache.Cache
}

func NewService(users repository.UserRepository, patients repository.PatientRepository,
	appointments repository.AppointmentRepository) *Service {
	return &Service{
		users:        users,
		patients:     patients,
		appointments: appointments,
		cache:        cache.New(snapshotTTL, 2*snapshotTTL),
	}
}

func (s *Service) Snapshot(ctx context.Context) (*model.ClinicStats, error) {
	if cached, ok := s.cache.Get(snapshotKey); ok {
		return cached.(*model.ClinicStats), nil
	}

	stats, err := s.collect(ctx)
	if err != nil {
		return nil, err
	}
	s.cache.Set(snapshotKey, stats, cache.DefaultExpiration)
	return stats, nil
}

func (s *Service) collect(ctx context.Context) (*model.ClinicStats, error) {
	totalUsers, err := s.users.Count(ctx)
	if err != nil {
		return nil, err
	}
	totalDoctors, err := s.users.CountByRole(ctx, model.RoleDoctor)
	if err != nil {
		return nil, err
	}
	totalPatients, err := s.patients.Count(ctx)
	if err != nil {
		return nil, err
	}
	totalAppointments, err := s.appointments.Count(ctx)
	if err != nil {
		return nil, err
	}

	months, err := s.patients.CountByVisitMonth(ctx)
	if err != nil {
		return nil, err
	}
	perMonth := make(map[string]int, len(months))
	for _, mc := range months {
		if mc.Month < 1 || mc.Month > 12 {
			continue
		}
		perMonth[time.Month(mc.Month).String()] = mc.Count
	}

	return &model.ClinicStats{
		TotalUsers:        totalUsers,
		TotalDoctors:      totalDoctors,
		TotalPatients:     totalPatients,
		TotalAppointments: totalAppointments,
		PatientsPerMonth:  perMonth,
	}, nil
}

// PatientsByDoctor groups every doctor with the patients assigned to them.
func (s *Service) PatientsByDoctor(ctx context.Context) ([]model.DoctorPatients, error) {
	doctors, err := s.users.ListByRole(ctx, model.RoleDoctor)
	if err != nil {
		return nil, err
	}

	out := make([]model.DoctorPatients, 0, len(doctors))
	for _, doctor := range doctors {
		patients, err := s.patients.List(ctx, &model.PatientFilters{DoctorID: doctor.ID})
		if err != nil {
			return nil, err
		}
		group := model.DoctorPatients{Doctor: *doctor, Patients: make([]model.Patient, 0, len(patients))}
		for _, p := range patients {
			group.Patients = append(group.Patients, *p)
		}
		out = append(out, group)
	}
	return out, nil
}
