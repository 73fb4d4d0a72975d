package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/voicedesk/internal/domain"
)

// VoicemailRepository persists the trace of processed voicemails.
type VoicemailRepository interface {
	Create(ctx context.Context, record *domain.VoicemailRecord) error
	GetByEventID(ctx context.Context, companyID, eventID string) (*domain.VoicemailRecord, error)
	ListByCompany(ctx context.Context, companyID string, limit, offset int) ([]domain.VoicemailRecord, error)
}

type voicemailRepository struct {
	pool *pgxpool.Pool
}

// NewVoicemailRepository instantiates the repository.
func NewVoicemailRepository(pool *pgxpool.Pool) VoicemailRepository {
	return &voicemailRepository{pool: pool}
}

func (r *voicemailRepository) Create(ctx context.Context, record *domain.VoicemailRecord) error {
	const query = `
        INSERT INTO voicemail_records (company_id, event_id, issue_key, summary, priority, transcript)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		record.CompanyID,
		record.EventID,
		record.IssueKey,
		record.Summary,
		record.Priority,
		record.Transcript,
	).Scan(&record.ID, &record.CreatedAt)
}

func (r *voicemailRepository) GetByEventID(ctx context.Context, companyID, eventID string) (*domain.VoicemailRecord, error) {
	const query = `
        SELECT id, company_id, event_id, issue_key, summary, priority, transcript, created_at
        FROM voicemail_records WHERE company_id=$1 AND event_id=$2`
	var record domain.VoicemailRecord
	if err := r.pool.QueryRow(ctx, query, companyID, eventID).Scan(
		&record.ID,
		&record.CompanyID,
		&record.EventID,
		&record.IssueKey,
		&record.Summary,
		&record.Priority,
		&record.Transcript,
		&record.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *voicemailRepository) ListByCompany(ctx context.Context, companyID string, limit, offset int) ([]domain.VoicemailRecord, error) {
	const query = `
        SELECT id, company_id, event_id, issue_key, summary, priority, transcript, created_at
        FROM voicemail_records WHERE company_id=$1
        ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.pool.Query(ctx, query, companyID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := []domain.VoicemailRecord{}
	for rows.Next() {
		var record domain.VoicemailRecord
		if err := rows.Scan(
			&record.ID,
			&record.CompanyID,
			&record.EventID,
			&record.IssueKey,
			&record.Summary,
			&record.Priority,
			&record.Transcript,
			&record.CreatedAt,
		); err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}
