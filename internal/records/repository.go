// internal/records/repository.go

// Package records owns durable storage of normalized lead records.
package records

import (
	"context"

	"lead-capture-workers/internal/common/database"
	commonerrors "lead-capture-workers/internal/common/errors"
	"lead-capture-workers/internal/models"
)

// Repository is the persistence interface for normalized lead records.
type Repository interface {
	Insert(ctx context.Context, correlationID string, record models.NormalizedLeadRecord) error
}

// PostgresRepository writes records to the lead_records table. One row per
// submission; the correlation id is the dedupe key.
type PostgresRepository struct {
	client *database.PostgresClient
}

func NewPostgresRepository(client *database.PostgresClient) *PostgresRepository {
	return &PostgresRepository{client: client}
}

const insertRecordQuery = `
	INSERT INTO lead_records (
		correlation_id, name, email_address, phone_number, lead_details,
		status, ai_reasoning, submission_url, lead_source, trigger_type,
		utm_params, customer_name, created_at, formatted_time_local, updated_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	ON CONFLICT (correlation_id) DO UPDATE SET
		status = EXCLUDED.status,
		ai_reasoning = EXCLUDED.ai_reasoning,
		updated_at = EXCLUDED.updated_at`

func (r *PostgresRepository) Insert(ctx context.Context, correlationID string, record models.NormalizedLeadRecord) error {
	_, err := r.client.Exec(ctx, insertRecordQuery,
		correlationID,
		record.Name,
		record.EmailAddress,
		record.PhoneNumber,
		record.LeadDetails,
		record.Status,
		record.AIReasoning,
		record.SubmissionURL,
		record.LeadSource,
		record.TriggerType,
		record.UTMParams,
		record.CustomerName,
		record.CreatedAt,
		record.FormattedTimeLocal,
		record.UpdatedAt,
	)
	if err != nil {
		return commonerrors.NewRecordInsertFailedError(err)
	}
	return nil
}
