package appointment

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/clinichq/clinic-api/pkg/errors"

	"github.com/clinichq/clinic-api/internal/ai"
	"github.com/clinichq/clinic-api/internal/model"
)

type fakeAppointmentRepo struct {
	appointments map[uuid.UUID]*model.Appointment
	failUpdate   bool
}

func newFakeAppointmentRepo() *fakeAppointmentRepo {
	return &fakeAppointmentRepo{appointments: make(map[uuid.UUID]*model.Appointment)}
}

func (r *fakeAppointmentRepo) Create(ctx context.Context, a *model.Appointment) error {
	cp := *a
	r.appointments[a.ID] = &cp
	return nil
}

func (r *fakeAppointmentRepo) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	a, ok := r.appointments[id]
	if !ok {
		return nil, apperrors.NotFound("appointment", nil)
	}
	cp := *a
	return &cp, nil
}

func (r *fakeAppointmentRepo) Update(ctx context.Context, a *model.Appointment) error {
	if r.failUpdate {
		return fmt.Errorf("write conflict")
	}
	if _, ok := r.appointments[a.ID]; !ok {
		return apperrors.NotFound("appointment", nil)
	}
	cp := *a
	r.appointments[a.ID] = &cp
	return nil
}

func (r *fakeAppointmentRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := r.appointments[id]; !ok {
		return apperrors.NotFound("appointment", nil)
	}
	delete(r.appointments, id)
	return nil
}

func (r *fakeAppointmentRepo) List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	var out []*model.Appointment
	for _, a := range r.appointments {
		if filters != nil {
			if filters.DoctorID != nil && (a.DoctorID == nil || *a.DoctorID != *filters.DoctorID) {
				continue
			}
			if filters.PatientID != nil && (a.PatientID == nil || *a.PatientID != *filters.PatientID) {
				continue
			}
			if filters.PatientName != "" {
				if a.Patient == nil || !containsFold(a.Patient.Name, filters.PatientName) {
					continue
				}
			}
			if !filters.DateFrom.IsZero() && a.Date.Before(filters.DateFrom) {
				continue
			}
			if !filters.DateTo.IsZero() && !a.Date.Before(filters.DateTo) {
				continue
			}
		}
		cp := *a
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeAppointmentRepo) ListForDay(ctx context.Context, day time.Time) ([]*model.Appointment, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	return r.List(ctx, &model.AppointmentFilters{DateFrom: start, DateTo: start.Add(24 * time.Hour)})
}

func (r *fakeAppointmentRepo) ListWithPaymentInfo(ctx context.Context) ([]*model.Appointment, error) {
	return r.List(ctx, nil)
}

func (r *fakeAppointmentRepo) Count(ctx context.Context) (int, error) {
	return len(r.appointments), nil
}

func containsFold(haystack, needle string) bool {
	h, n := []rune(haystack), []rune(needle)
	for i := 0; i+len(n) <= len(h); i++ {
		match := true
		for j := range n {
			a, b := h[i+j], n[j]
			if a != b && toLower(a) != toLower(b) {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return len(n) == 0
}

func toLower(r rune) rune {
	if r >= 'A' && r <= 'Z' {
		return r + 32
	}
	return r
}

type fakeFileRepo struct {
	files []*model.MedicalFile
}

func (r *fakeFileRepo) Create(ctx context.Context, f *model.MedicalFile) error {
	cp := *f
	r.files = append(r.files, &cp)
	return nil
}

func (r *fakeFileRepo) ListForAppointment(ctx context.Context, id uuid.UUID) ([]model.MedicalFile, error) {
	var out []model.MedicalFile
	for _, f := range r.files {
		if f.AppointmentID == id {
			out = append(out, *f)
		}
	}
	return out, nil
}

type fakeStore struct {
	saved   []string
	failFor map[string]bool
}

func (s *fakeStore) Save(name string, data []byte) (string, error) {
	if s.failFor[name] {
		return "", fmt.Errorf("disk full")
	}
	s.saved = append(s.saved, name)
	return "/uploads/" + uuid.New().String(), nil
}

type fakeAI struct {
	summarizeFn func(ai.PatientContext) (string, error)
	chatFn      func(ai.PatientContext, string) (string, error)
	calls       int
}

func (f *fakeAI) Summarize(ctx context.Context, p ai.PatientContext) (string, error) {
	f.calls++
	if f.summarizeFn == nil {
		return "summary", nil
	}
	return f.summarizeFn(p)
}

func (f *fakeAI) Chat(ctx context.Context, p ai.PatientContext, message string) (string, error) {
	f.calls++
	if f.chatFn == nil {
		return "reply", nil
	}
	return f.chatFn(p, message)
}

type fixture struct {
	svc   *Service
	repo  *fakeAppointmentRepo
	files *fakeFileRepo
	store *fakeStore
	ai    *fakeAI
}

func newFixture() *fixture {
	repo := newFakeAppointmentRepo()
	files := &fakeFileRepo{}
	store := &fakeStore{failFor: map[string]bool{}}
	aiClient := &fakeAI{}
	return &fixture{
		svc:   NewService(repo, files, store, aiClient, nil),
		repo:  repo,
		files: files,
		store: store,
		ai:    aiClient,
	}
}

func (f *fixture) seed(doctorID uuid.UUID, status model.AppointmentStatus) *model.Appointment {
	patientID := uuid.New()
	a := &model.Appointment{
		ID:        uuid.New(),
		DoctorID:  &doctorID,
		PatientID: &patientID,
		Date:      time.Now().Add(48 * time.Hour),
		Status:    status,
		Patient: &model.Patient{
			ID:        patientID,
			Name:      "Jane Roe",
			Age:       42,
			Diagnosis: "hypertension",
			DoctorID:  doctorID,
		},
	}
	f.repo.appointments[a.ID] = a
	return a
}

func asDoctor(id uuid.UUID) model.Principal {
	return model.Principal{UserID: id, Role: model.RoleDoctor}
}

func TestCreateRequiresDoctorAndPatient(t *testing.T) {
	f := newFixture()
	doctorID, patientID := uuid.New(), uuid.New()

	_, err := f.svc.Create(context.Background(), &model.CreateAppointmentRequest{
		PatientID: &patientID,
		Date:      time.Now().Add(time.Hour),
	})
	assert.True(t, apperrors.Is(err, apperrors.ErrValidation))

	_, err = f.svc.Create(context.Background(), &model.CreateAppointmentRequest{
		DoctorID: &doctorID,
		Date:     time.Now().Add(time.Hour),
	})
	assert.True(t, apperrors.Is(err, apperrors.ErrValidation))

	appointment, err := f.svc.Create(context.Background(), &model.CreateAppointmentRequest{
		DoctorID:  &doctorID,
		PatientID: &patientID,
		Date:      time.Now().Add(time.Hour),
	})
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusScheduled, appointment.Status)
}

func TestMarkOperationsSetStatusUnconditionally(t *testing.T) {
	f := newFixture()
	doctorID := uuid.New()

	assert.True(t, apperrors.IsNotFound(f.svc.MarkArrived(context.Background(), uuid.New())))

	// no transition guard: any state is reachable from any state
	a := f.seed(doctorID, model.AppointmentStatusCompleted)
	require.NoError(t, f.svc.MarkNoShow(context.Background(), a.ID))
	stored, _ := f.repo.Get(context.Background(), a.ID)
	assert.Equal(t, model.AppointmentStatusNoShow, stored.Status)

	require.NoError(t, f.svc.MarkArrived(context.Background(), a.ID))
	stored, _ = f.repo.Get(context.Background(), a.ID)
	assert.Equal(t, model.AppointmentStatusArrived, stored.Status)

	require.NoError(t, f.svc.MarkCancelled(context.Background(), a.ID))
	stored, _ = f.repo.Get(context.Background(), a.ID)
	assert.Equal(t, model.AppointmentStatusCancelled, stored.Status)
}

func TestReschedule(t *testing.T) {
	f := newFixture()
	a := f.seed(uuid.New(), model.AppointmentStatusCompleted)
	originalDate := a.Date

	err := f.svc.Reschedule(context.Background(), a.ID, time.Now().Add(-24*time.Hour))
	assert.True(t, apperrors.Is(err, apperrors.ErrValidation))

	stored, _ := f.repo.Get(context.Background(), a.ID)
	assert.True(t, stored.Date.Equal(originalDate))
	assert.Equal(t, model.AppointmentStatusCompleted, stored.Status)

	newDate := time.Now().Add(24 * time.Hour)
	require.NoError(t, f.svc.Reschedule(context.Background(), a.ID, newDate))

	stored, _ = f.repo.Get(context.Background(), a.ID)
	assert.True(t, stored.Date.Equal(newDate))
	assert.Equal(t, model.AppointmentStatusScheduled, stored.Status)

	assert.True(t, apperrors.IsNotFound(f.svc.Reschedule(context.Background(), uuid.New(), newDate)))
}

func TestAddDoctorNotes(t *testing.T) {
	f := newFixture()
	doctorID := uuid.New()
	a := f.seed(doctorID, model.AppointmentStatusArrived)

	_, err := f.svc.AddDoctorNotes(context.Background(), asDoctor(uuid.New()), a.ID, &model.DoctorNotesRequest{Notes: "x"})
	assert.True(t, apperrors.IsUnauthorized(err))

	_, err = f.svc.AddDoctorNotes(context.Background(), asDoctor(doctorID), uuid.New(), &model.DoctorNotesRequest{Notes: "x"})
	assert.True(t, apperrors.IsNotFound(err))

	result, err := f.svc.AddDoctorNotes(context.Background(), asDoctor(doctorID), a.ID, &model.DoctorNotesRequest{Notes: "stable"})
	require.NoError(t, err)
	assert.Empty(t, result.Failed)

	stored, _ := f.repo.Get(context.Background(), a.ID)
	assert.Equal(t, model.AppointmentStatusCompleted, stored.Status)
	assert.Equal(t, "stable", stored.DoctorNotes)
}

func TestAddDoctorNotesEmptyNotesStoredAsEmptyString(t *testing.T) {
	f := newFixture()
	doctorID := uuid.New()
	a := f.seed(doctorID, model.AppointmentStatusScheduled)

	_, err := f.svc.AddDoctorNotes(context.Background(), asDoctor(doctorID), a.ID, &model.DoctorNotesRequest{})
	require.NoError(t, err)

	stored, _ := f.repo.Get(context.Background(), a.ID)
	assert.Equal(t, "", stored.DoctorNotes)
	assert.Equal(t, model.AppointmentStatusCompleted, stored.Status)
}

func TestAddDoctorNotesFileFailureIsIsolated(t *testing.T) {
	f := newFixture()
	doctorID := uuid.New()
	a := f.seed(doctorID, model.AppointmentStatusArrived)
	f.store.failFor["bad.pdf"] = true

	result, err := f.svc.AddDoctorNotes(context.Background(), asDoctor(doctorID), a.ID, &model.DoctorNotesRequest{
		Notes: "stable",
		Files: []model.FileUpload{
			{Name: "scan.png", Data: []byte("a")},
			{Name: "bad.pdf", Data: []byte("b")},
			{Name: "labs.pdf", Data: []byte("c")},
			{Name: "empty.txt"}, // zero-length uploads are skipped
		},
	})
	require.NoError(t, err)

	assert.Len(t, result.Saved, 2)
	require.Len(t, result.Failed, 1)
	assert.Equal(t, "bad.pdf", result.Failed[0].Name)

	// notes survived the partial failure
	stored, _ := f.repo.Get(context.Background(), a.ID)
	assert.Equal(t, "stable", stored.DoctorNotes)
	assert.Equal(t, model.AppointmentStatusCompleted, stored.Status)

	files, _ := f.files.ListForAppointment(context.Background(), a.ID)
	assert.Len(t, files, 2)
}

func TestGenerateAISummary(t *testing.T) {
	f := newFixture()
	doctorID := uuid.New()
	a := f.seed(doctorID, model.AppointmentStatusCompleted)
	a.DoctorNotes = "patient is stable"
	f.repo.appointments[a.ID] = a

	_, err := f.svc.GenerateAISummary(context.Background(), asDoctor(uuid.New()), a.ID)
	assert.True(t, apperrors.IsUnauthorized(err))

	f.ai.summarizeFn = func(p ai.PatientContext) (string, error) {
		assert.Equal(t, "Jane Roe", p.Name)
		assert.Equal(t, 42, p.Age)
		assert.Equal(t, "patient is stable", p.DoctorNotes)
		return "Patient stable.", nil
	}

	summary, err := f.svc.GenerateAISummary(context.Background(), asDoctor(doctorID), a.ID)
	require.NoError(t, err)
	assert.Equal(t, "Patient stable.", summary)

	stored, _ := f.repo.Get(context.Background(), a.ID)
	assert.Equal(t, "Patient stable.", stored.AISummary)
}

func TestGenerateAISummaryBlankNotesNeverCallsAdapter(t *testing.T) {
	f := newFixture()
	doctorID := uuid.New()
	a := f.seed(doctorID, model.AppointmentStatusCompleted)
	a.DoctorNotes = "   "
	f.repo.appointments[a.ID] = a

	_, err := f.svc.GenerateAISummary(context.Background(), asDoctor(doctorID), a.ID)
	assert.True(t, apperrors.Is(err, apperrors.ErrEmptyInput))
	assert.Zero(t, f.ai.calls)
}

func TestGenerateAISummaryUpstreamFailures(t *testing.T) {
	f := newFixture()
	doctorID := uuid.New()
	a := f.seed(doctorID, model.AppointmentStatusCompleted)
	a.DoctorNotes = "stable"
	f.repo.appointments[a.ID] = a

	f.ai.summarizeFn = func(ai.PatientContext) (string, error) {
		return "", fmt.Errorf("rate limited")
	}
	_, err := f.svc.GenerateAISummary(context.Background(), asDoctor(doctorID), a.ID)
	assert.True(t, apperrors.Is(err, apperrors.ErrUpstream))

	// an empty reply is treated exactly like a failure
	f.ai.summarizeFn = func(ai.PatientContext) (string, error) { return "  ", nil }
	_, err = f.svc.GenerateAISummary(context.Background(), asDoctor(doctorID), a.ID)
	assert.True(t, apperrors.Is(err, apperrors.ErrUpstream))
}

func TestGenerateAISummarySaveFailureIsNotUpstream(t *testing.T) {
	f := newFixture()
	doctorID := uuid.New()
	a := f.seed(doctorID, model.AppointmentStatusCompleted)
	a.DoctorNotes = "stable"
	f.repo.appointments[a.ID] = a

	f.ai.summarizeFn = func(ai.PatientContext) (string, error) { return "Patient stable.", nil }
	f.repo.failUpdate = true

	_, err := f.svc.GenerateAISummary(context.Background(), asDoctor(doctorID), a.ID)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrInternal))
	assert.False(t, apperrors.Is(err, apperrors.ErrUpstream))
}

func TestChatWithAI(t *testing.T) {
	f := newFixture()
	doctorID := uuid.New()
	a := f.seed(doctorID, model.AppointmentStatusCompleted)

	_, err := f.svc.ChatWithAI(context.Background(), asDoctor(uuid.New()), a.ID, "hello")
	assert.True(t, apperrors.IsUnauthorized(err))

	_, err = f.svc.ChatWithAI(context.Background(), asDoctor(doctorID), a.ID, "  ")
	assert.True(t, apperrors.Is(err, apperrors.ErrValidation))

	f.ai.chatFn = func(p ai.PatientContext, msg string) (string, error) {
		return "No contraindications noted.", nil
	}
	reply, err := f.svc.ChatWithAI(context.Background(), asDoctor(doctorID), a.ID, "Any contraindications?")
	require.NoError(t, err)
	assert.Equal(t, "No contraindications noted.", reply)

	// adapter failures become a user-facing reply, not an error
	f.ai.chatFn = func(ai.PatientContext, string) (string, error) {
		return "", fmt.Errorf("timeout")
	}
	reply, err = f.svc.ChatWithAI(context.Background(), asDoctor(doctorID), a.ID, "Any contraindications?")
	require.NoError(t, err)
	assert.Equal(t, chatFailureReply, reply)
}

func TestListByFilterCombinesIndependentFilters(t *testing.T) {
	f := newFixture()
	d1, d2 := uuid.New(), uuid.New()

	a1 := f.seed(d1, model.AppointmentStatusScheduled)
	a1.Patient.Name = "Alice Carter"
	a2 := f.seed(d1, model.AppointmentStatusScheduled)
	a2.Patient.Name = "Bob Hughes"
	a3 := f.seed(d2, model.AppointmentStatusScheduled)
	a3.Patient.Name = "alice mcdonald"

	all, err := f.svc.ListByFilter(context.Background(), nil, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	byDoctor, err := f.svc.ListByFilter(context.Background(), &d1, "")
	require.NoError(t, err)
	assert.Len(t, byDoctor, 2)

	byName, err := f.svc.ListByFilter(context.Background(), nil, "alice")
	require.NoError(t, err)
	assert.Len(t, byName, 2)

	both, err := f.svc.ListByFilter(context.Background(), &d1, "alice")
	require.NoError(t, err)
	require.Len(t, both, 1)
	assert.Equal(t, a1.ID, both[0].ID)
}

func TestGetEnforcesOwnership(t *testing.T) {
	f := newFixture()
	doctorID := uuid.New()
	a := f.seed(doctorID, model.AppointmentStatusScheduled)

	_, err := f.svc.Get(context.Background(), asDoctor(uuid.New()), a.ID)
	assert.True(t, apperrors.IsUnauthorized(err))

	got, err := f.svc.Get(context.Background(), model.Principal{UserID: uuid.New(), Role: model.RoleSecretary}, a.ID)
	require.NoError(t, err)
	assert.Equal(t, a.ID, got.ID)
}

// Full workflow: schedule, complete with notes, summarize, then a second
// doctor is rejected.
func TestWorkflowScenario(t *testing.T) {
	f := newFixture()
	d1, d2 := uuid.New(), uuid.New()
	a := f.seed(d1, model.AppointmentStatusScheduled)

	result, err := f.svc.AddDoctorNotes(context.Background(), asDoctor(d1), a.ID, &model.DoctorNotesRequest{Notes: "stable"})
	require.NoError(t, err)
	assert.Empty(t, result.Failed)

	stored, _ := f.repo.Get(context.Background(), a.ID)
	assert.Equal(t, model.AppointmentStatusCompleted, stored.Status)
	assert.Equal(t, "stable", stored.DoctorNotes)

	f.ai.summarizeFn = func(ai.PatientContext) (string, error) { return "Patient stable.", nil }
	_, err = f.svc.GenerateAISummary(context.Background(), asDoctor(d1), a.ID)
	require.NoError(t, err)

	stored, _ = f.repo.Get(context.Background(), a.ID)
	assert.Equal(t, "Patient stable.", stored.AISummary)

	_, err = f.svc.AddDoctorNotes(context.Background(), asDoctor(d2), a.ID, &model.DoctorNotesRequest{Notes: "override"})
	assert.True(t, apperrors.IsUnauthorized(err))
}
