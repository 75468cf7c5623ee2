package payment

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/clinichq/clinic-api/pkg/errors"
	"github.com/clinichq/clinic-api/pkg/metrics"

	"github.com/clinichq/clinic-api/internal/config"
	"github.com/clinichq/clinic-api/internal/gateway"
	"github.com/clinichq/clinic-api/internal/model"
	"github.com/clinichq/clinic-api/internal/repository"
)

// Service drives the checkout flow: it creates hosted sessions at the
// gateway and records the outcome callbacks. An appointment can be paid at
// most once; the unique constraint on payments is the source of truth.
type Service struct {
	repo            repository.PaymentRepository
	appointmentRepo repository.AppointmentRepository
	gateway         gateway.CheckoutGateway
	cfg             config.PaymentConfig
	baseURL         string
	metrics         *metrics.Metrics
}

func NewService(repo repository.PaymentRepository, appointmentRepo repository.AppointmentRepository,
	gw gateway.CheckoutGateway, cfg config.PaymentConfig, baseURL string, m *metrics.Metrics) *Service {
	return &Service{
		repo:            repo,
		appointmentRepo: appointmentRepo,
		gateway:         gw,
		cfg:             cfg,
		baseURL:         baseURL,
		metrics:         m,
	}
}

// CreateCheckout builds a hosted checkout session for the appointment and
// returns the redirect URL. The price comes from configuration.
func (s *Service) CreateCheckout(ctx context.Context, appointmentID uuid.UUID) (*model.CheckoutResponse, error) {
	appointment, err := s.appointmentRepo.Get(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if existing, err := s.repo.GetByAppointment(ctx, appointmentID); err == nil && existing != nil {
		return nil, apperrors.Conflict("appointment is already paid", nil)
	}

	patientName := "patient"
	if appointment.Patient != nil {
		patientName = appointment.Patient.Name
	}

	successURL := fmt.Sprintf("%s/api/v1/payments/success?appointment_id=%s", s.baseURL, appointmentID)
	cancelURL := fmt.Sprintf("%s/api/v1/payments/cancel?appointment_id=%s", s.baseURL, appointmentID)

	url, err := s.gateway.CreateCheckoutSession(appointmentID, patientName, s.cfg.AppointmentPrice, successURL, cancelURL)
	if err != nil {
		return nil, apperrors.Upstream("failed to create checkout session", err)
	}

	if s.metrics != nil {
		s.metrics.CheckoutsCreated.Inc()
	}
	return &model.CheckoutResponse{RedirectURL: url}, nil
}

// RecordSuccess persists the payment for a completed checkout. A second
// success callback for the same appointment comes back as Conflict from the
// store's unique constraint.
func (s *Service) RecordSuccess(ctx context.Context, appointmentID uuid.UUID) (*model.Payment, error) {
	if _, err := s.appointmentRepo.Get(ctx, appointmentID); err != nil {
		return nil, err
	}

	payment := &model.Payment{
		ID:            uuid.New(),
		AppointmentID: appointmentID,
		Amount:        s.cfg.AppointmentPrice,
		Currency:      s.cfg.Currency,
		PaymentDate:   time.Now(),
		PaymentMethod: model.PaymentMethodStripe,
		Status:        model.PaymentStatusPaid,
	}

	if err := s.repo.Create(ctx, payment); err != nil {
		if s.metrics != nil {
			s.metrics.PaymentsRecorded.WithLabelValues("duplicate").Inc()
		}
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.PaymentsRecorded.WithLabelValues("paid").Inc()
	}
	return payment, nil
}

// RecordCancel acknowledges an abandoned checkout. Nothing is written; the
// appointment simply stays unpaid.
func (s *Service) RecordCancel(ctx context.Context, appointmentID uuid.UUID) error {
	if _, err := s.appointmentRepo.Get(ctx, appointmentID); err != nil {
		return err
	}
	if s.metrics != nil {
		s.metrics.PaymentsRecorded.WithLabelValues("cancelled").Inc()
	}
	return nil
}

func (s *Service) GetByAppointment(ctx context.Context, appointmentID uuid.UUID) (*model.Payment, error) {
	return s.repo.GetByAppointment(ctx, appointmentID)
}
