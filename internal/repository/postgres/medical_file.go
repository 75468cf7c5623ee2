package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/clinichq/clinic-api/internal/model"
)

func (r *medicalFileRepository) Create(ctx context.Context, file *model.MedicalFile) error {
	query := `
		INSERT INTO medical_files (id, appointment_id, file_path, file_name, uploaded_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	if file.UploadedAt.IsZero() {
		file.UploadedAt = time.Now()
	}

	_, err := r.db.ExecContext(ctx, query,
		file.ID,
		file.AppointmentID,
		file.FilePath,
		file.FileName,
		file.UploadedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create medical file: %w", err)
	}
	return nil
}

func (r *medicalFileRepository) ListForAppointment(ctx context.Context, appointmentID uuid.UUID) ([]model.MedicalFile, error) {
	query := `
		SELECT id, appointment_id, file_path, file_name, uploaded_at
		FROM medical_files
		WHERE appointment_id = $1
		ORDER BY uploaded_at ASC
	`
	var files []model.MedicalFile
	if err := r.db.SelectContext(ctx, &files, query, appointmentID); err != nil {
		return nil, fmt.Errorf("failed to list medical files: %w", err)
	}
	return files, nil
}
