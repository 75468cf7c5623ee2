package patient

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/clinichq/clinic-api/pkg/errors"

	"github.com/clinichq/clinic-api/internal/model"
)

type fakePatientRepo struct {
	patients map[uuid.UUID]*model.Patient
}

func newFakePatientRepo() *fakePatientRepo {
	return &fakePatientRepo{patients: make(map[uuid.UUID]*model.Patient)}
}

func (r *fakePatientRepo) Create(ctx context.Context, p *model.Patient) error {
	cp := *p
	r.patients[p.ID] = &cp
	return nil
}

func (r *fakePatientRepo) Get(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	p, ok := r.patients[id]
	if !ok {
		return nil, apperrors.NotFound("patient", nil)
	}
	cp := *p
	return &cp, nil
}

func (r *fakePatientRepo) Update(ctx context.Context, p *model.Patient) error {
	if _, ok := r.patients[p.ID]; !ok {
		return apperrors.NotFound("patient", nil)
	}
	cp := *p
	r.patients[p.ID] = &cp
	return nil
}

func (r *fakePatientRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := r.patients[id]; !ok {
		return apperrors.NotFound("patient", nil)
	}
	delete(r.patients, id)
	return nil
}

func (r *fakePatientRepo) List(ctx context.Context, filters *model.PatientFilters) ([]*model.Patient, error) {
	var out []*model.Patient
	for _, p := range r.patients {
		if filters != nil {
			if filters.DoctorID != uuid.Nil && p.DoctorID != filters.DoctorID {
				continue
			}
			if filters.Name != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(filters.Name)) {
				continue
			}
		}
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakePatientRepo) Count(ctx context.Context) (int, error) {
	return len(r.patients), nil
}

func (r *fakePatientRepo) CountByVisitMonth(ctx context.Context) ([]model.MonthCount, error) {
	return nil, nil
}

type fakeAppointmentLister struct {
	appointments []*model.Appointment
}

func (r *fakeAppointmentLister) Create(ctx context.Context, a *model.Appointment) error { return nil }
func (r *fakeAppointmentLister) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	return nil, apperrors.NotFound("appointment", nil)
}
func (r *fakeAppointmentLister) Update(ctx context.Context, a *model.Appointment) error { return nil }
func (r *fakeAppointmentLister) Delete(ctx context.Context, id uuid.UUID) error         { return nil }

func (r *fakeAppointmentLister) List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	var out []*model.Appointment
	for _, a := range r.appointments {
		if filters != nil && filters.PatientID != nil {
			if a.PatientID == nil || *a.PatientID != *filters.PatientID {
				continue
			}
		}
		out = append(out, a)
	}
	return out, nil
}

func (r *fakeAppointmentLister) ListForDay(ctx context.Context, day time.Time) ([]*model.Appointment, error) {
	return nil, nil
}
func (r *fakeAppointmentLister) ListWithPaymentInfo(ctx context.Context) ([]*model.Appointment, error) {
	return nil, nil
}
func (r *fakeAppointmentLister) Count(ctx context.Context) (int, error) { return 0, nil }

func newService() (*Service, *fakePatientRepo, *fakeAppointmentLister) {
	repo := newFakePatientRepo()
	appointments := &fakeAppointmentLister{}
	return NewService(repo, appointments), repo, appointments
}

func doctor(id uuid.UUID) model.Principal {
	return model.Principal{UserID: id, Role: model.RoleDoctor}
}

func TestCreateForcesDoctorIDFromPrincipal(t *testing.T) {
	svc, repo, _ := newService()
	doctorID := uuid.New()

	patient, err := svc.Create(context.Background(), doctor(doctorID), &model.CreatePatientRequest{
		Name:        "Jane Roe",
		Age:         42,
		Diagnosis:   "hypertension",
		DateOfVisit: time.Now(),
	})
	require.NoError(t, err)
	assert.Equal(t, doctorID, patient.DoctorID)

	stored, err := repo.Get(context.Background(), patient.ID)
	require.NoError(t, err)
	assert.Equal(t, doctorID, stored.DoctorID)
}

func TestGetOwnership(t *testing.T) {
	svc, repo, _ := newService()
	doctorID := uuid.New()
	p := &model.Patient{ID: uuid.New(), Name: "Jane Roe", DoctorID: doctorID}
	require.NoError(t, repo.Create(context.Background(), p))

	_, err := svc.Get(context.Background(), doctor(uuid.New()), p.ID)
	assert.True(t, apperrors.IsUnauthorized(err))

	_, err = svc.Get(context.Background(), doctor(doctorID), uuid.New())
	assert.True(t, apperrors.IsNotFound(err))

	got, err := svc.Get(context.Background(), model.Principal{UserID: uuid.New(), Role: model.RoleAdmin}, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)
}

func TestUpdateAppliesOnlyProvidedFields(t *testing.T) {
	svc, repo, _ := newService()
	doctorID := uuid.New()
	p := &model.Patient{ID: uuid.New(), Name: "Jane Roe", Age: 42, Diagnosis: "hypertension", DoctorID: doctorID}
	require.NoError(t, repo.Create(context.Background(), p))

	newAge := 43
	updated, err := svc.Update(context.Background(), doctor(doctorID), p.ID, &model.UpdatePatientRequest{Age: &newAge})
	require.NoError(t, err)
	assert.Equal(t, 43, updated.Age)
	assert.Equal(t, "Jane Roe", updated.Name)
	assert.Equal(t, "hypertension", updated.Diagnosis)

	_, err = svc.Update(context.Background(), doctor(uuid.New()), p.ID, &model.UpdatePatientRequest{Age: &newAge})
	assert.True(t, apperrors.IsUnauthorized(err))
}

func TestDeleteOwnership(t *testing.T) {
	svc, repo, _ := newService()
	doctorID := uuid.New()
	p := &model.Patient{ID: uuid.New(), Name: "Jane Roe", DoctorID: doctorID}
	require.NoError(t, repo.Create(context.Background(), p))

	assert.True(t, apperrors.IsUnauthorized(svc.Delete(context.Background(), doctor(uuid.New()), p.ID)))
	require.NoError(t, svc.Delete(context.Background(), doctor(doctorID), p.ID))
	_, err := repo.Get(context.Background(), p.ID)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestListScopesDoctorsToOwnPatients(t *testing.T) {
	svc, repo, _ := newService()
	d1, d2 := uuid.New(), uuid.New()
	require.NoError(t, repo.Create(context.Background(), &model.Patient{ID: uuid.New(), Name: "Alice", DoctorID: d1}))
	require.NoError(t, repo.Create(context.Background(), &model.Patient{ID: uuid.New(), Name: "Bob", DoctorID: d2}))

	mine, err := svc.List(context.Background(), doctor(d1), "")
	require.NoError(t, err)
	assert.Len(t, mine, 1)
	assert.Equal(t, "Alice", mine[0].Name)

	all, err := svc.List(context.Background(), model.Principal{UserID: uuid.New(), Role: model.RoleSecretary}, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestHistoryAndReportOrdering(t *testing.T) {
	svc, repo, appointments := newService()
	doctorID := uuid.New()
	p := &model.Patient{ID: uuid.New(), Name: "Jane Roe", DoctorID: doctorID}
	require.NoError(t, repo.Create(context.Background(), p))

	older := &model.Appointment{ID: uuid.New(), PatientID: &p.ID, Date: time.Now().Add(-48 * time.Hour)}
	newer := &model.Appointment{ID: uuid.New(), PatientID: &p.ID, Date: time.Now().Add(-24 * time.Hour)}
	appointments.appointments = []*model.Appointment{older, newer}

	history, err := svc.History(context.Background(), doctor(doctorID), p.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, newer.ID, history[0].ID)

	report, err := svc.Report(context.Background(), doctor(doctorID), p.ID)
	require.NoError(t, err)
	require.Len(t, report, 2)
	assert.Equal(t, older.ID, report[0].ID)

	_, err = svc.History(context.Background(), doctor(uuid.New()), p.ID)
	assert.True(t, apperrors.IsUnauthorized(err))
}
