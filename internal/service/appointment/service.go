package appointment

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/clinichq/clinic-api/pkg/errors"
	"github.com/clinichq/clinic-api/pkg/metrics"

	"github.com/clinichq/clinic-api/internal/ai"
	"github.com/clinichq/clinic-api/internal/model"
	"github.com/clinichq/clinic-api/internal/repository"
	"github.com/clinichq/clinic-api/internal/service/authz"
	"github.com/clinichq/clinic-api/internal/storage"
)

const chatFailureReply = "AI chat failed. Try again later."

// Service owns the appointment status workflow: status transitions,
// ownership checks and the side effects that ride along with them (file
// attachment, AI summaries).
type Service struct {
	repo     repository.AppointmentRepository
	fileRepo repository.MedicalFileRepository
	store    storage.Store
	aiClient ai.Adapter
	metrics  *metrics.Metrics
}

func NewService(repo repository.AppointmentRepository, fileRepo repository.MedicalFileRepository,
	store storage.Store, aiClient ai.Adapter, m *metrics.Metrics) *Service {
	return &Service{
		repo:     repo,
		fileRepo: fileRepo,
		store:    store,
		aiClient: aiClient,
		metrics:  m,
	}
}

func (s *Service) Create(ctx context.Context, req *model.CreateAppointmentRequest) (*model.Appointment, error) {
	if req.DoctorID == nil || req.PatientID == nil {
		return nil, apperrors.Validation("doctor and patient are required", nil)
	}

	appointment := &model.Appointment{
		ID:        uuid.New(),
		PatientID: req.PatientID,
		DoctorID:  req.DoctorID,
		Date:      req.Date,
		Notes:     req.Notes,
		Status:    model.AppointmentStatusScheduled,
	}

	if err := s.repo.Create(ctx, appointment); err != nil {
		return nil, fmt.Errorf("failed to create appointment: %w", err)
	}

	if s.metrics != nil {
		s.metrics.AppointmentsCreated.Inc()
	}
	return appointment, nil
}

func (s *Service) Get(ctx context.Context, principal model.Principal, id uuid.UUID) (*model.Appointment, error) {
	appointment, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !authz.CanAccess(principal, appointment.DoctorID) {
		return nil, apperrors.Unauthorized("appointment belongs to another doctor", nil)
	}
	return appointment, nil
}

func (s *Service) MarkArrived(ctx context.Context, id uuid.UUID) error {
	return s.setStatus(ctx, id, model.AppointmentStatusArrived)
}

func (s *Service) MarkNoShow(ctx context.Context, id uuid.UUID) error {
	return s.setStatus(ctx, id, model.AppointmentStatusNoShow)
}

func (s *Service) MarkCancelled(ctx context.Context, id uuid.UUID) error {
	return s.setStatus(ctx, id, model.AppointmentStatusCancelled)
}

// setStatus is the single entry point for status writes. Transitions are
// deliberately unguarded so staff can correct a mis-marked appointment; a
// guard would slot in here without touching call sites.
func (s *Service) setStatus(ctx context.Context, id uuid.UUID, status model.AppointmentStatus) error {
	appointment, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}

	appointment.Status = status
	if err := s.repo.Update(ctx, appointment); err != nil {
		return fmt.Errorf("failed to set appointment status: %w", err)
	}

	if s.metrics != nil {
		s.metrics.StatusTransitions.WithLabelValues(string(status)).Inc()
	}
	return nil
}

func (s *Service) Reschedule(ctx context.Context, id uuid.UUID, newDate time.Time) error {
	appointment, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}

	if newDate.Before(time.Now()) {
		return apperrors.Validation("cannot schedule in the past", nil)
	}

	appointment.Date = newDate
	appointment.Status = model.AppointmentStatusScheduled
	if err := s.repo.Update(ctx, appointment); err != nil {
		return fmt.Errorf("failed to reschedule appointment: %w", err)
	}
	return nil
}

// AddDoctorNotes saves the clinical notes, completes the appointment and
// attaches the uploaded files. Notes are committed before any file work, and
// files are best-effort per file: one bad file never rolls back the notes
// nor blocks the rest.
func (s *Service) AddDoctorNotes(ctx context.Context, principal model.Principal, id uuid.UUID, req *model.DoctorNotesRequest) (*model.AttachmentResult, error) {
	appointment, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !authz.CanAccess(principal, appointment.DoctorID) {
		return nil, apperrors.Unauthorized("appointment belongs to another doctor", nil)
	}

	appointment.DoctorNotes = req.Notes
	appointment.Status = model.AppointmentStatusCompleted
	if err := s.repo.Update(ctx, appointment); err != nil {
		return nil, fmt.Errorf("failed to save doctor notes: %w", err)
	}
	if s.metrics != nil {
		s.metrics.StatusTransitions.WithLabelValues(string(model.AppointmentStatusCompleted)).Inc()
	}

	result := &model.AttachmentResult{}
	for _, upload := range req.Files {
		if len(upload.Data) == 0 {
			continue
		}
		file, err := s.attachFile(ctx, appointment.ID, upload)
		if err != nil {
			result.Failed = append(result.Failed, model.FileError{Name: upload.Name, Err: err.Error()})
			if s.metrics != nil {
				s.metrics.FilesFailed.Inc()
			}
			continue
		}
		result.Saved = append(result.Saved, *file)
		if s.metrics != nil {
			s.metrics.FilesUploaded.Inc()
		}
	}

	return result, nil
}

func (s *Service) attachFile(ctx context.Context, appointmentID uuid.UUID, upload model.FileUpload) (*model.MedicalFile, error) {
	path, err := s.store.Save(upload.Name, upload.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to store file: %w", err)
	}

	file := &model.MedicalFile{
		ID:            uuid.New(),
		AppointmentID: appointmentID,
		FilePath:      path,
		FileName:      upload.Name,
		UploadedAt:    time.Now(),
	}
	if err := s.fileRepo.Create(ctx, file); err != nil {
		return nil, fmt.Errorf("failed to record file: %w", err)
	}
	return file, nil
}

// GenerateAISummary summarizes the doctor notes for an appointment's patient
// and persists the result. A store failure after the adapter succeeded is
// reported distinctly from an adapter failure, the expensive call already
// happened.
func (s *Service) GenerateAISummary(ctx context.Context, principal model.Principal, id uuid.UUID) (string, error) {
	appointment, err := s.repo.Get(ctx, id)
	if err != nil {
		return "", err
	}
	if !authz.CanAccess(principal, appointment.DoctorID) {
		return "", apperrors.Unauthorized("appointment belongs to another doctor", nil)
	}

	if strings.TrimSpace(appointment.DoctorNotes) == "" {
		return "", apperrors.EmptyInput("cannot generate AI summary, doctor notes are empty")
	}

	summary, err := s.aiClient.Summarize(ctx, s.patientContext(appointment))
	if err != nil {
		return "", apperrors.Upstream("AI summary failed to generate", err)
	}
	if strings.TrimSpace(summary) == "" {
		return "", apperrors.Upstream("AI summary failed to generate", nil)
	}

	appointment.AISummary = summary
	if err := s.repo.Update(ctx, appointment); err != nil {
		return "", apperrors.Internal(fmt.Errorf("failed to save AI summary: %w", err))
	}

	return summary, nil
}

// ChatWithAI forwards the patient context plus a free-text question to the
// adapter. Adapter failures come back as a user-facing reply, never as an
// error.
func (s *Service) ChatWithAI(ctx context.Context, principal model.Principal, id uuid.UUID, message string) (string, error) {
	appointment, err := s.repo.Get(ctx, id)
	if err != nil {
		return "", err
	}
	if !authz.CanAccess(principal, appointment.DoctorID) {
		return "", apperrors.Unauthorized("appointment belongs to another doctor", nil)
	}
	if strings.TrimSpace(message) == "" {
		return "", apperrors.Validation("message cannot be empty", nil)
	}

	reply, err := s.aiClient.Chat(ctx, s.patientContext(appointment), message)
	if err != nil {
		return chatFailureReply, nil
	}
	return reply, nil
}

func (s *Service) patientContext(appointment *model.Appointment) ai.PatientContext {
	pc := ai.PatientContext{DoctorNotes: appointment.DoctorNotes}
	if appointment.Patient != nil {
		pc.Name = appointment.Patient.Name
		pc.Age = appointment.Patient.Age
		pc.Diagnosis = appointment.Patient.Diagnosis
	}
	return pc
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) ListForDoctor(ctx context.Context, doctorID uuid.UUID) ([]*model.Appointment, error) {
	return s.repo.List(ctx, &model.AppointmentFilters{DoctorID: &doctorID})
}

func (s *Service) ListToday(ctx context.Context) ([]*model.Appointment, error) {
	return s.repo.ListForDay(ctx, time.Now())
}

// ListByFilter applies doctor equality and patient-name substring match as
// independent, combinable filters.
func (s *Service) ListByFilter(ctx context.Context, doctorID *uuid.UUID, patientName string) ([]*model.Appointment, error) {
	return s.repo.List(ctx, &model.AppointmentFilters{
		DoctorID:    doctorID,
		PatientName: patientName,
	})
}

func (s *Service) ListForPatient(ctx context.Context, patientID uuid.UUID) ([]*model.Appointment, error) {
	appointments, err := s.repo.List(ctx, &model.AppointmentFilters{PatientID: &patientID})
	if err != nil {
		return nil, err
	}
	// history reads newest first
	for i, j := 0, len(appointments)-1; i < j; i, j = i+1, j-1 {
		appointments[i], appointments[j] = appointments[j], appointments[i]
	}
	return appointments, nil
}

func (s *Service) PaymentStatusList(ctx context.Context) ([]*model.Appointment, error) {
	return s.repo.ListWithPaymentInfo(ctx)
}
