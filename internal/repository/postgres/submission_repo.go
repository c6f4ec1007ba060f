package postgres

import (
	"context"

	"obsidiana-backend/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

type submissionRepo struct {
	db *pgxpool.Pool
}

func NewSubmissionRepository(db *pgxpool.Pool) domain.SubmissionRepository {
	return &submissionRepo{db: db}
}

func (r *submissionRepo) Create(ctx context.Context, rec *domain.SubmissionRecord) error {
	query := `INSERT INTO contact_submissions (id, form_id, state, error_message, sender_email, subject, client_ip, created_at)
              VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, NULLIF($7, ''), $8)`
	_, err := r.db.Exec(ctx, query,
		rec.ID, rec.FormID, rec.State, rec.ErrorMessage, rec.SenderEmail, rec.Subject, rec.ClientIP, rec.CreatedAt,
	)
	return err
}

func (r *submissionRepo) List(ctx context.Context, limit, offset int) ([]domain.SubmissionRecord, int, error) {
	query := `SELECT id, form_id, state, COALESCE(error_message, ''), sender_email, subject, COALESCE(client_ip, ''), created_at
              FROM contact_submissions ORDER BY created_at DESC LIMIT $1 OFFSET $2`

	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var recs []domain.SubmissionRecord
	for rows.Next() {
		var rec domain.SubmissionRecord
		if err := rows.Scan(&rec.ID, &rec.FormID, &rec.State, &rec.ErrorMessage, &rec.SenderEmail, &rec.Subject, &rec.ClientIP, &rec.CreatedAt); err != nil {
			return nil, 0, err
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM contact_submissions`).Scan(&total); err != nil {
		return nil, 0, err
	}

	return recs, total, nil
}
