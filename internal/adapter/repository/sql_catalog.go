package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/kamusiapp/kamusi/internal/entity"
	"github.com/kamusiapp/kamusi/internal/infrastructure/database/types"
	"github.com/kamusiapp/kamusi/internal/repository"
)

// SQLCatalog queries the remote word catalog over database/sql (Postgres
// via the pgx stdlib driver in production). It is the single point where
// loosely-typed remote rows are parsed into entity.CachedVocab.
type SQLCatalog struct {
	db *sql.DB
}

var _ repository.CatalogClient = (*SQLCatalog)(nil)

// NewSQLCatalog wraps an open catalog connection.
func NewSQLCatalog(db *sql.DB) *SQLCatalog {
	return &SQLCatalog{db: db}
}

// Count returns the number of live (non-tombstoned) catalog records for
// the mode, optionally narrowed to a category.
func (c *SQLCatalog) Count(ctx context.Context, mode entity.StudyMode, category string) (int64, error) {
	query := `SELECT COUNT(*) FROM catalog_words WHERE mode = $1 AND term NOT LIKE $2`
	args := []any{mode, entity.TombstonePrefix + "%"}
	if category != "" {
		query += ` AND category = $3`
		args = append(args, category)
	}
	var n int64
	if err := c.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("%w: count: %v", entity.ErrCatalogUnavailable, err)
	}
	return n, nil
}

// FetchPage returns one offset/limit window of the catalog in creation
// order ascending — the same sort the offline mirror uses, so day
// boundaries match between online and offline views. Tombstones are
// excluded in SQL so that offsets count live rows, the same unit Count
// reports; a page shorter than limit therefore really is the last page.
func (c *SQLCatalog) FetchPage(ctx context.Context, mode entity.StudyMode, category string, offset, limit int) ([]entity.CachedVocab, error) {
	query := `
		SELECT id, mode, term, pronunciation, audio_url, image_url,
		       meaning_ko, meaning_en, meaning_sw, example,
		       pos, category, difficulty, created_at
		FROM catalog_words
		WHERE mode = $1 AND term NOT LIKE $2`
	args := []any{mode, entity.TombstonePrefix + "%"}
	if category != "" {
		query += ` AND category = $3`
		args = append(args, category)
	}
	query += fmt.Sprintf(` ORDER BY created_at ASC, id ASC LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch page: %v", entity.ErrCatalogUnavailable, err)
	}
	defer rows.Close()

	out := []entity.CachedVocab{}
	for rows.Next() {
		rec, err := scanCatalogRow(rows)
		if err != nil {
			return nil, err
		}
		if rec.Tombstoned() {
			continue
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate page: %v", entity.ErrCatalogUnavailable, err)
	}
	return out, nil
}

// scanCatalogRow is the parse/validate boundary for remote rows.
func scanCatalogRow(rows *sql.Rows) (entity.CachedVocab, error) {
	var (
		rec                              entity.CachedVocab
		pronunciation, audio, image, pos sql.NullString
		category                         sql.NullString
		meaningKo, meaningEn, meaningSw  types.MeaningColumn
		example                          types.ExampleColumn
	)
	err := rows.Scan(
		&rec.ID, &rec.Mode, &rec.Term, &pronunciation, &audio, &image,
		&meaningKo, &meaningEn, &meaningSw, &example,
		&pos, &category, &rec.Difficulty, &rec.CreatedAt,
	)
	if err != nil {
		return rec, fmt.Errorf("scan catalog row: %w", err)
	}
	rec.Pronunciation = pronunciation.String
	rec.AudioURL = audio.String
	rec.ImageURL = image.String
	rec.Pos = pos.String
	rec.Category = category.String
	rec.MeaningKo = meaningKo.Meaning
	rec.MeaningEn = meaningEn.Meaning
	rec.MeaningSw = meaningSw.Meaning
	rec.Example = example.Example
	return rec, nil
}
