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

const appointmentColumns = `
	id, patient_id, doctor_id, date, notes, doctor_notes,
	status, ai_summary, created_at, updated_at
`

func (r *appointmentRepository) Create(ctx context.Context, appointment *model.Appointment) error {
	query := `
		INSERT INTO appointments (
			id, patient_id, doctor_id, date, notes, doctor_notes,
			status, ai_summary, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	appointment.CreatedAt = time.Now()
	appointment.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		appointment.ID,
		appointment.PatientID,
		appointment.DoctorID,
		appointment.Date,
		appointment.Notes,
		appointment.DoctorNotes,
		appointment.Status,
		appointment.AISummary,
		appointment.CreatedAt,
		appointment.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create appointment: %w", err)
	}
	return nil
}

func (r *appointmentRepository) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE id = $1`

	var appointment model.Appointment
	if err := r.db.GetContext(ctx, &appointment, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("appointment", err)
		}
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}

	if err := r.loadRelations(ctx, &appointment); err != nil {
		return nil, err
	}
	return &appointment, nil
}

func (r *appointmentRepository) Update(ctx context.Context, appointment *model.Appointment) error {
	query := `
		UPDATE appointments
		SET patient_id = $1, doctor_id = $2, date = $3, notes = $4,
			doctor_notes = $5, status = $6, ai_summary = $7, updated_at = $8
		WHERE id = $9
	`
	appointment.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		appointment.PatientID,
		appointment.DoctorID,
		appointment.Date,
		appointment.Notes,
		appointment.DoctorNotes,
		appointment.Status,
		appointment.AISummary,
		appointment.UpdatedAt,
		appointment.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update appointment: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("appointment", nil)
	}
	return nil
}

func (r *appointmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	// medical_files and payments cascade at the schema level
	result, err := r.db.ExecContext(ctx, `DELETE FROM appointments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete appointment: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("appointment", nil)
	}
	return nil
}

func (r *appointmentRepository) List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	query := `
		SELECT a.id, a.patient_id, a.doctor_id, a.date, a.notes, a.doctor_notes,
			   a.status, a.ai_summary, a.created_at, a.updated_at
		FROM appointments a
		LEFT JOIN patients p ON p.id = a.patient_id
		WHERE 1=1
	`
	args := []interface{}{}
	argCount := 1

	if filters != nil {
		if filters.DoctorID != nil {
			query += fmt.Sprintf(" AND a.doctor_id = $%d", argCount)
			args = append(args, *filters.DoctorID)
			argCount++
		}
		if filters.PatientID != nil {
			query += fmt.Sprintf(" AND a.patient_id = $%d", argCount)
			args = append(args, *filters.PatientID)
			argCount++
		}
		if filters.PatientName != "" {
			query += fmt.Sprintf(" AND p.name ILIKE $%d", argCount)
			args = append(args, "%"+filters.PatientName+"%")
			argCount++
		}
		if filters.Status != "" {
			query += fmt.Sprintf(" AND a.status = $%d", argCount)
			args = append(args, filters.Status)
			argCount++
		}
		if !filters.DateFrom.IsZero() {
			query += fmt.Sprintf(" AND a.date >= $%d", argCount)
			args = append(args, filters.DateFrom)
			argCount++
		}
		if !filters.DateTo.IsZero() {
			query += fmt.Sprintf(" AND a.date < $%d", argCount)
			args = append(args, filters.DateTo)
			argCount++
		}
	}

	query += " ORDER BY a.date ASC"

	var appointments []*model.Appointment
	if err := r.db.SelectContext(ctx, &appointments, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}

	for _, appointment := range appointments {
		if err := r.loadRelations(ctx, appointment); err != nil {
			return nil, err
		}
	}
	return appointments, nil
}

func (r *appointmentRepository) ListForDay(ctx context.Context, day time.Time) ([]*model.Appointment, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	return r.List(ctx, &model.AppointmentFilters{
		DateFrom: start,
		DateTo:   start.Add(24 * time.Hour),
	})
}

func (r *appointmentRepository) ListWithPaymentInfo(ctx context.Context) ([]*model.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments ORDER BY date DESC`

	var appointments []*model.Appointment
	if err := r.db.SelectContext(ctx, &appointments, query); err != nil {
		return nil, fmt.Errorf("failed to list appointments with payment info: %w", err)
	}

	for _, appointment := range appointments {
		if err := r.loadRelations(ctx, appointment); err != nil {
			return nil, err
		}
	}
	return appointments, nil
}

func (r *appointmentRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM appointments`); err != nil {
		return 0, fmt.Errorf("failed to count appointments: %w", err)
	}
	return count, nil
}

// loadRelations eagerly attaches patient, doctor, files and payment.
func (r *appointmentRepository) loadRelations(ctx context.Context, appointment *model.Appointment) error {
	if appointment.PatientID != nil {
		var patient model.Patient
		err := r.db.GetContext(ctx, &patient, `
			SELECT id, name, age, diagnosis, date_of_visit, date_of_revisit,
				   doctor_id, created_at, updated_at
			FROM patients WHERE id = $1
		`, *appointment.PatientID)
		if err == nil {
			appointment.Patient = &patient
		} else if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("failed to load appointment patient: %w", err)
		}
	}

	if appointment.DoctorID != nil {
		var doctor model.User
		err := r.db.GetContext(ctx, &doctor, `SELECT * FROM users WHERE id = $1`, *appointment.DoctorID)
		if err == nil {
			appointment.Doctor = &doctor
		} else if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("failed to load appointment doctor: %w", err)
		}
	}

	var files []model.MedicalFile
	err := r.db.SelectContext(ctx, &files, `
		SELECT id, appointment_id, file_path, file_name, uploaded_at
		FROM medical_files
		WHERE appointment_id = $1
		ORDER BY uploaded_at ASC
	`, appointment.ID)
	if err != nil {
		return fmt.Errorf("failed to load appointment files: %w", err)
	}
	appointment.Files = files

	var payment model.Payment
	err = r.db.GetContext(ctx, &payment, `
		SELECT id, appointment_id, amount, currency, payment_date, payment_method, status
		FROM payments
		WHERE appointment_id = $1
	`, appointment.ID)
	if err == nil {
		appointment.Payment = &payment
	} else if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("failed to load appointment payment: %w", err)
	}

	return nil
}
