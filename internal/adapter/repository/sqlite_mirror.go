package repository

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/kamusiapp/kamusi/internal/entity"
	"github.com/kamusiapp/kamusi/internal/infrastructure/database/types"
	"github.com/kamusiapp/kamusi/internal/repository"
)

const mirrorSchema = `
CREATE TABLE IF NOT EXISTS cached_vocab (
	mode          TEXT    NOT NULL,
	id            TEXT    NOT NULL,
	term          TEXT    NOT NULL,
	pronunciation TEXT,
	audio_url     TEXT,
	image_url     TEXT,
	meaning_ko    TEXT,
	meaning_en    TEXT,
	meaning_sw    TEXT,
	example       TEXT,
	pos           TEXT,
	category      TEXT    NOT NULL DEFAULT '',
	difficulty    INTEGER NOT NULL,
	created_at    INTEGER NOT NULL,
	record_hash   TEXT    NOT NULL,
	PRIMARY KEY (mode, id)
);
CREATE INDEX IF NOT EXISTS idx_cached_vocab_mode
	ON cached_vocab (mode, created_at);
CREATE INDEX IF NOT EXISTS idx_cached_vocab_mode_category
	ON cached_vocab (mode, category, created_at);
CREATE TABLE IF NOT EXISTS mirror_meta (
	key          TEXT PRIMARY KEY,
	last_updated INTEGER NOT NULL,
	count        INTEGER NOT NULL,
	checksum     TEXT    NOT NULL
);`

// SQLiteMirror is the sqlite-backed offline mirror cache.
type SQLiteMirror struct {
	db     *sql.DB
	logger logrus.FieldLogger
	clock  func() int64
}

var _ repository.MirrorStore = (*SQLiteMirror)(nil)

// NewSQLiteMirror creates the schema if missing and returns the store.
func NewSQLiteMirror(db *sql.DB, logger logrus.FieldLogger, clock func() int64) (*SQLiteMirror, error) {
	if _, err := db.Exec(mirrorSchema); err != nil {
		return nil, fmt.Errorf("create mirror schema: %w", err)
	}
	return &SQLiteMirror{db: db, logger: logger, clock: clock}, nil
}

// metaKey is the metadata identifier for a replace scope, "{mode}_{category-or-all}".
func metaKey(mode entity.StudyMode, category string) string {
	if category == "" {
		return string(mode) + "_all"
	}
	return string(mode) + "_" + category
}

// recordHash is the advisory per-record integrity tag.
func recordHash(v *entity.CachedVocab) string {
	blob, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(blob)
	return hex.EncodeToString(sum[:])
}

// BulkReplace atomically swaps the cached set for the exact
// (mode, category) key. Every record is validated first; tombstones and
// malformed records are dropped and counted. The delete+insert runs in a
// single transaction so concurrent readers see old or new, never a mix.
func (m *SQLiteMirror) BulkReplace(ctx context.Context, mode entity.StudyMode, category string, records []entity.CachedVocab) (repository.ReplaceResult, error) {
	var result repository.ReplaceResult

	accepted := make([]entity.CachedVocab, 0, len(records))
	batch := sha256.New()
	for i := range records {
		rec := records[i]
		if rec.Tombstoned() {
			result.Dropped++
			continue
		}
		if err := rec.Validate(); err != nil {
			result.Dropped++
			m.logger.WithError(err).WithField("id", rec.ID).Warn("dropping invalid mirror record")
			continue
		}
		if rec.Mode != mode {
			result.Dropped++
			m.logger.WithField("id", rec.ID).Warn("dropping record outside replace scope")
			continue
		}
		accepted = append(accepted, rec)
		batch.Write([]byte(recordHash(&rec)))
	}
	result.Accepted = len(accepted)
	result.Checksum = hex.EncodeToString(batch.Sum(nil))

	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return result, fmt.Errorf("begin replace: %w", err)
	}
	defer tx.Rollback()

	if category == "" {
		_, err = tx.ExecContext(ctx, `DELETE FROM cached_vocab WHERE mode = ?`, mode)
	} else {
		_, err = tx.ExecContext(ctx, `DELETE FROM cached_vocab WHERE mode = ? AND category = ?`, mode, category)
	}
	if err != nil {
		return result, fmt.Errorf("clear replace scope: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO cached_vocab (
			mode, id, term, pronunciation, audio_url, image_url,
			meaning_ko, meaning_en, meaning_sw, example,
			pos, category, difficulty, created_at, record_hash
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return result, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i := range accepted {
		rec := &accepted[i]
		_, err := stmt.ExecContext(ctx,
			rec.Mode, rec.ID, rec.Term, nullable(rec.Pronunciation),
			nullable(rec.AudioURL), nullable(rec.ImageURL),
			types.MeaningColumn{Meaning: rec.MeaningKo},
			types.MeaningColumn{Meaning: rec.MeaningEn},
			types.MeaningColumn{Meaning: rec.MeaningSw},
			types.ExampleColumn{Example: rec.Example},
			nullable(rec.Pos), rec.Category, rec.Difficulty, rec.CreatedAt,
			recordHash(rec),
		)
		if err != nil {
			return result, fmt.Errorf("insert record %s: %w", rec.ID, err)
		}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO mirror_meta (key, last_updated, count, checksum)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (key) DO UPDATE SET
			last_updated = excluded.last_updated,
			count = excluded.count,
			checksum = excluded.checksum`,
		metaKey(mode, category), m.clock(), result.Accepted, result.Checksum)
	if err != nil {
		return result, fmt.Errorf("update mirror metadata: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return result, fmt.Errorf("commit replace: %w", err)
	}
	return result, nil
}

const selectColumns = `
	mode, id, term, pronunciation, audio_url, image_url,
	meaning_ko, meaning_en, meaning_sw, example,
	pos, category, difficulty, created_at`

// Query returns cached records in original creation order (ties broken by
// insertion order). With a page descriptor it returns exactly the day
// slice [(day-1)*pageSize, day*pageSize), clipped to available length.
func (m *SQLiteMirror) Query(ctx context.Context, q repository.MirrorQuery) ([]entity.CachedVocab, error) {
	query := `SELECT` + selectColumns + ` FROM cached_vocab WHERE mode = ?`
	args := []any{q.Mode}
	if q.Category != "" {
		query += ` AND category = ?`
		args = append(args, q.Category)
	}
	query += ` ORDER BY created_at ASC, rowid ASC`
	if q.Page != nil {
		if q.Page.Day < 1 || q.Page.PageSize < 1 {
			return []entity.CachedVocab{}, nil
		}
		query += ` LIMIT ? OFFSET ?`
		args = append(args, q.Page.PageSize, (q.Page.Day-1)*q.Page.PageSize)
	}

	rows, err := m.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query mirror: %w", err)
	}
	defer rows.Close()

	out := []entity.CachedVocab{}
	for rows.Next() {
		rec, err := scanCachedVocab(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate mirror rows: %w", err)
	}
	return out, nil
}

func scanCachedVocab(rows *sql.Rows) (entity.CachedVocab, error) {
	var (
		rec                              entity.CachedVocab
		pronunciation, audio, image, pos sql.NullString
		meaningKo, meaningEn, meaningSw  types.MeaningColumn
		example                          types.ExampleColumn
	)
	err := rows.Scan(
		&rec.Mode, &rec.ID, &rec.Term, &pronunciation, &audio, &image,
		&meaningKo, &meaningEn, &meaningSw, &example,
		&pos, &rec.Category, &rec.Difficulty, &rec.CreatedAt,
	)
	if err != nil {
		return rec, fmt.Errorf("scan mirror row: %w", err)
	}
	rec.Pronunciation = pronunciation.String
	rec.AudioURL = audio.String
	rec.ImageURL = image.String
	rec.Pos = pos.String
	rec.MeaningKo = meaningKo.Meaning
	rec.MeaningEn = meaningEn.Meaning
	rec.MeaningSw = meaningSw.Meaning
	rec.Example = example.Example
	return rec, nil
}

// Count returns the number of cached records for the key.
func (m *SQLiteMirror) Count(ctx context.Context, mode entity.StudyMode, category string) (int64, error) {
	query := `SELECT COUNT(*) FROM cached_vocab WHERE mode = ?`
	args := []any{mode}
	if category != "" {
		query += ` AND category = ?`
		args = append(args, category)
	}
	var n int64
	if err := m.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count mirror: %w", err)
	}
	return n, nil
}

// Status summarizes the cache for the staleness indicator.
func (m *SQLiteMirror) Status(ctx context.Context) (repository.MirrorStatus, error) {
	status := repository.MirrorStatus{PerModeCounts: map[entity.StudyMode]int64{}}

	rows, err := m.db.QueryContext(ctx, `SELECT mode, COUNT(*) FROM cached_vocab GROUP BY mode`)
	if err != nil {
		return status, fmt.Errorf("count modes: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var mode entity.StudyMode
		var n int64
		if err := rows.Scan(&mode, &n); err != nil {
			return status, fmt.Errorf("scan mode count: %w", err)
		}
		status.PerModeCounts[mode] = n
		status.TotalCount += n
	}
	if err := rows.Err(); err != nil {
		return status, fmt.Errorf("iterate mode counts: %w", err)
	}

	var last sql.NullInt64
	if err := m.db.QueryRowContext(ctx, `SELECT MAX(last_updated) FROM mirror_meta`).Scan(&last); err != nil {
		return status, fmt.Errorf("read mirror metadata: %w", err)
	}
	if last.Valid {
		status.LastUpdated = &last.Int64
	}
	return status, nil
}

// Clear wipes the whole mirror.
func (m *SQLiteMirror) Clear(ctx context.Context) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin clear: %w", err)
	}
	defer tx.Rollback()
	if _, err := tx.ExecContext(ctx, `DELETE FROM cached_vocab`); err != nil {
		return fmt.Errorf("clear records: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM mirror_meta`); err != nil {
		return fmt.Errorf("clear metadata: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit clear: %w", err)
	}
	return nil
}

// Close releases the underlying database handle.
func (m *SQLiteMirror) Close() error {
	return m.db.Close()
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
