package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/kirillkom/resume-screener/internal/core/domain"
	"github.com/kirillkom/resume-screener/internal/infrastructure/resilience"
)

const (
	defaultListLimit = 20
	maxListLimit     = 200
)

// PredictionRepository keeps one row per completed screening. Document text is never stored.
type PredictionRepository struct {
	db       *sql.DB
	executor *resilience.Executor
}

func NewPredictionRepository(db *sql.DB, executor *resilience.Executor) *PredictionRepository {
	if executor == nil {
		executor = resilience.NewExecutor(resilience.DefaultConfig(), nil)
	}
	return &PredictionRepository{db: db, executor: executor}
}

func OpenDB(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

func (r *PredictionRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across api/worker startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2024061501)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS predictions (
	id TEXT PRIMARY KEY,
	filename TEXT NOT NULL,
	format TEXT NOT NULL,
	category_id INTEGER NOT NULL,
	category TEXT NOT NULL,
	language TEXT NOT NULL DEFAULT '',
	duration_ms DOUBLE PRECISION NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_predictions_created_at ON predictions(created_at DESC);
CREATE INDEX IF NOT EXISTS idx_predictions_category ON predictions(category);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

func (r *PredictionRepository) Save(ctx context.Context, record domain.PredictionRecord) error {
	return r.executor.Execute(ctx, "postgres.save_prediction", func(ctx context.Context) error {
		_, err := r.db.ExecContext(ctx, `
INSERT INTO predictions (
	id, filename, format, category_id, category, language, duration_ms, created_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
`,
			record.ID, record.Filename, string(record.Format), record.CategoryID, record.Category,
			record.Language, record.DurationMS, record.CreatedAt,
		)
		if err != nil {
			return classifyDBError("insert prediction", err)
		}
		return nil
	}, resilience.ClassifyTemporary)
}

func (r *PredictionRepository) GetByID(ctx context.Context, id string) (*domain.PredictionRecord, error) {
	return resilience.Call(ctx, r.executor, "postgres.get_prediction", func(ctx context.Context) (*domain.PredictionRecord, error) {
		row := r.db.QueryRowContext(ctx, `
SELECT id, filename, format, category_id, category, language, duration_ms, created_at
FROM predictions
WHERE id = $1
`, id)

		record, err := scanPrediction(row)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, domain.WrapError(domain.ErrNotFound, "get prediction", fmt.Errorf("id=%s", id))
			}
			return nil, classifyDBError("get prediction", err)
		}
		return &record, nil
	}, resilience.ClassifyTemporary)
}

// ListRecent returns the newest predictions first. limit is clamped to [1,200]; zero or
// negative means the default of 20.
func (r *PredictionRepository) ListRecent(ctx context.Context, limit int) ([]domain.PredictionRecord, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	return resilience.Call(ctx, r.executor, "postgres.list_predictions", func(ctx context.Context) ([]domain.PredictionRecord, error) {
		rows, err := r.db.QueryContext(ctx, `
SELECT id, filename, format, category_id, category, language, duration_ms, created_at
FROM predictions
ORDER BY created_at DESC
LIMIT $1
`, limit)
		if err != nil {
			return nil, classifyDBError("list predictions", err)
		}
		defer rows.Close()

		out := make([]domain.PredictionRecord, 0, limit)
		for rows.Next() {
			record, err := scanPrediction(rows)
			if err != nil {
				return nil, classifyDBError("scan prediction", err)
			}
			out = append(out, record)
		}
		if err := rows.Err(); err != nil {
			return nil, classifyDBError("iterate predictions", err)
		}
		return out, nil
	}, resilience.ClassifyTemporary)
}

type predictionScanner interface {
	Scan(dest ...any) error
}

func scanPrediction(row predictionScanner) (domain.PredictionRecord, error) {
	var record domain.PredictionRecord
	var format string
	err := row.Scan(
		&record.ID,
		&record.Filename,
		&format,
		&record.CategoryID,
		&record.Category,
		&record.Language,
		&record.DurationMS,
		&record.CreatedAt,
	)
	if err != nil {
		return domain.PredictionRecord{}, err
	}
	record.Format = domain.Format(format)
	return record, nil
}

// classifyDBError marks connection-level and serialization failures as temporary.
func classifyDBError(op string, err error) error {
	if errors.Is(err, driver.ErrBadConn) {
		return domain.WrapError(domain.ErrTemporary, op, err)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case len(pgErr.Code) >= 2 && pgErr.Code[:2] == "08":
			return domain.WrapError(domain.ErrTemporary, op, err)
		case pgErr.Code == "40001", pgErr.Code == "40P01", pgErr.Code == "57P03":
			return domain.WrapError(domain.ErrTemporary, op, err)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}
