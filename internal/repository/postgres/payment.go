package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/clinichq/clinic-api/pkg/errors"

	"github.com/clinichq/clinic-api/internal/model"
)

func (r *paymentRepository) Create(ctx context.Context, payment *model.Payment) error {
	query := `
		INSERT INTO payments (id, appointment_id, amount, currency, payment_date, payment_method, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	if payment.PaymentDate.IsZero() {
		payment.PaymentDate = time.Now()
	}

	_, err := r.db.ExecContext(ctx, query,
		payment.ID,
		payment.AppointmentID,
		payment.Amount,
		payment.Currency,
		payment.PaymentDate,
		payment.PaymentMethod,
		payment.Status,
	)
	if err != nil {
		// payments.appointment_id is unique, one payment per appointment
		if isUniqueViolation(err) {
			return apperrors.Conflict("payment already recorded for appointment", err)
		}
		return fmt.Errorf("failed to create payment: %w", err)
	}
	return nil
}

func (r *paymentRepository) GetByAppointment(ctx context.Context, appointmentID uuid.UUID) (*model.Payment, error) {
	query := `
		SELECT id, appointment_id, amount, currency, payment_date, payment_method, status
		FROM payments
		WHERE appointment_id = $1
	`
	var payment model.Payment
	if err := r.db.GetContext(ctx, &payment, query, appointmentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("payment", err)
		}
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}
	return &payment, nil
}
