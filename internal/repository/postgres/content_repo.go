package postgres

import (
	"context"

	"obsidiana-backend/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

type contentRepo struct {
	db *pgxpool.Pool
}

func NewContentRepository(db *pgxpool.Pool) domain.ContentRepository {
	return &contentRepo{db: db}
}

// Upsert writes all entries in one transaction, keyed by (collection, path).
func (r *contentRepo) Upsert(ctx context.Context, entries []domain.ContentEntry) error {
	if len(entries) == 0 {
		return nil
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) // Rollback if not committed

	query := `
		INSERT INTO content_entries (
			collection, kind, path, slug, lang, title, description, publish_date, tags,
			author, reading_time, image, technologies, role, company, status, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9,
			NULLIF($10, ''), NULLIF($11, 0), NULLIF($12, ''), $13, NULLIF($14, ''), NULLIF($15, ''), NULLIF($16, ''), NOW()
		)
		ON CONFLICT (collection, path) DO UPDATE SET
			kind = EXCLUDED.kind,
			slug = EXCLUDED.slug,
			lang = EXCLUDED.lang,
			title = EXCLUDED.title,
			description = EXCLUDED.description,
			publish_date = EXCLUDED.publish_date,
			tags = EXCLUDED.tags,
			author = EXCLUDED.author,
			reading_time = EXCLUDED.reading_time,
			image = EXCLUDED.image,
			technologies = EXCLUDED.technologies,
			role = EXCLUDED.role,
			company = EXCLUDED.company,
			status = EXCLUDED.status,
			updated_at = NOW()`

	for _, e := range entries {
		_, err := tx.Exec(ctx, query,
			e.Collection, e.Kind, e.Path, e.Slug, e.Lang, e.Title, e.Description, e.PublishDate, pq.Array(nonNil(e.Tags)),
			e.Author, e.ReadingTime, e.Image, pq.Array(nonNil(e.Technologies)), e.Role, e.Company, e.Status,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// DeleteMissing removes rows of collection whose path is not in keep.
func (r *contentRepo) DeleteMissing(ctx context.Context, collection string, keep []string) (int64, error) {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM content_entries WHERE collection = $1 AND NOT (path = ANY($2))`,
		collection, pq.Array(nonNil(keep)),
	)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *contentRepo) ListByCollection(ctx context.Context, collection, lang string) ([]domain.ContentEntry, error) {
	query := `
		SELECT collection, kind, path, slug, lang, title, description, publish_date, tags,
			COALESCE(author, ''), COALESCE(reading_time, 0), COALESCE(image, ''), technologies,
			COALESCE(role, ''), COALESCE(company, ''), COALESCE(status, ''), updated_at
		FROM content_entries
		WHERE collection = $1 AND ($2 = '' OR lang = $2)
		ORDER BY publish_date DESC, slug`

	rows, err := r.db.Query(ctx, query, collection, lang)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.ContentEntry
	for rows.Next() {
		var e domain.ContentEntry
		var tags, technologies []string
		if err := rows.Scan(
			&e.Collection, &e.Kind, &e.Path, &e.Slug, &e.Lang, &e.Title, &e.Description, &e.PublishDate, pq.Array(&tags),
			&e.Author, &e.ReadingTime, &e.Image, pq.Array(&technologies),
			&e.Role, &e.Company, &e.Status, &e.UpdatedAt,
		); err != nil {
			return nil, err
		}
		e.Tags = tags
		e.Technologies = technologies
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// nonNil keeps NOT NULL array columns from receiving NULL.
func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
