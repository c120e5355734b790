package recorder

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/okian/courtside/internal/domain/model"
	"github.com/okian/courtside/internal/domain/scoring"
	"github.com/okian/courtside/pkg/logger"
)

// SQLiteRecorder writes records to a SQLite database.
type SQLiteRecorder struct {
	db     *sql.DB
	mu     sync.Mutex
	closed bool
	logger logger.Logger
}

// NewSQLiteRecorder opens (or creates) the database and runs migrations.
func NewSQLiteRecorder(ctx context.Context, dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db, logger: logger.Get().Named("recorder")}
	if err := r.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	r.logger.Info(ctx, "sqlite recorder opened", logger.String("path", dbPath))
	return r, nil
}

func (r *SQLiteRecorder) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS timeline_records (
			id                INTEGER PRIMARY KEY AUTOINCREMENT,
			record_id         TEXT NOT NULL,
			session_id        TEXT NOT NULL,
			timeline_point    INTEGER NOT NULL,
			quarter           INTEGER NOT NULL,
			started_at        INTEGER NOT NULL,
			archived_at       INTEGER NOT NULL,
			actions           TEXT,
			arousal           INTEGER,
			momentum          INTEGER,
			flow              INTEGER,
			biometric_value   INTEGER,
			biometric_level   TEXT,
			biometric_source  TEXT,
			performance_score INTEGER,
			efficiency        REAL,
			UNIQUE(session_id, timeline_point)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_records_session ON timeline_records(session_id)`,
	}

	for _, s := range stmts {
		if _, err := r.db.ExecContext(ctx, s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// Archive inserts one complete record.
func (r *SQLiteRecorder) Archive(ctx context.Context, sessionID string, rec model.TimelineRecord) error {
	if !rec.Complete() {
		return fmt.Errorf("archive point %d: %w", rec.TimelinePoint, ErrIncomplete)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrClosed
	}

	tags := make([]string, len(rec.Actions))
	for i, a := range rec.Actions {
		tags[i] = string(a)
	}
	var eff sql.NullFloat64
	if v, ok := scoring.Efficiency(rec.Counts()); ok {
		eff = sql.NullFloat64{Float64: v, Valid: true}
	}

	_, err := r.db.ExecContext(ctx, `INSERT INTO timeline_records
		(record_id, session_id, timeline_point, quarter, started_at, archived_at,
		 actions, arousal, momentum, flow,
		 biometric_value, biometric_level, biometric_source,
		 performance_score, efficiency)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		rec.ID, sessionID, rec.TimelinePoint, rec.Quarter, rec.Timestamp.Unix(), time.Now().Unix(),
		strings.Join(tags, ","), rec.Survey.Arousal, rec.Survey.Momentum, rec.Survey.Flow,
		*rec.BiometricValue, string(*rec.BiometricLevel), string(rec.BiometricSource),
		scoring.PerformanceScore(rec.Actions), eff,
	)
	if err != nil {
		return fmt.Errorf("insert point %d: %w", rec.TimelinePoint, err)
	}
	return nil
}

// Records reads back a session's archive ordered by timeline point.
func (r *SQLiteRecorder) Records(ctx context.Context, sessionID string) ([]model.TimelineRecord, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT
		record_id, timeline_point, quarter, started_at, actions,
		arousal, momentum, flow, biometric_value, biometric_level, biometric_source
		FROM timeline_records WHERE session_id = ? ORDER BY timeline_point`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query session %s: %w", sessionID, err)
	}
	defer rows.Close()

	var out []model.TimelineRecord
	for rows.Next() {
		var (
			rec     model.TimelineRecord
			started int64
			actions string
			survey  model.SurveyResponses
			value   int
			level   string
			source  string
		)
		if err := rows.Scan(&rec.ID, &rec.TimelinePoint, &rec.Quarter, &started, &actions,
			&survey.Arousal, &survey.Momentum, &survey.Flow, &value, &level, &source); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		rec.Timestamp = time.Unix(started, 0)
		for _, a := range strings.Split(actions, ",") {
			if a != "" {
				rec.Actions = append(rec.Actions, model.ActionTag(a))
			}
		}
		lvl := model.BiometricLevel(level)
		rec.Survey = &survey
		rec.BiometricValue = &value
		rec.BiometricLevel = &lvl
		rec.BiometricSource = model.BiometricSource(source)
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Close closes the database. Further archives fail with ErrClosed.
func (r *SQLiteRecorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	r.closed = true
	r.logger.Info(context.Background(), "closing sqlite recorder")
	return r.db.Close()
}
