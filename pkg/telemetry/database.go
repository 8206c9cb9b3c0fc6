// Package telemetry keeps a local SQLite history of template runs.
package telemetry

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// TelemetryDB handles database operations
type TelemetryDB struct {
	db *sql.DB
}

// NewTelemetryDB creates/opens the run history database
func NewTelemetryDB(path string) (*TelemetryDB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	tdb := &TelemetryDB{db: db}
	if err := tdb.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to init schema: %w", err)
	}

	return tdb, nil
}

func (t *TelemetryDB) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		started_at DATETIME NOT NULL,
		template_id TEXT NOT NULL,
		template_name TEXT,
		target_dir TEXT,
		success BOOLEAN NOT NULL,
		stage TEXT,
		failed_step INTEGER DEFAULT 0,
		error TEXT,
		duration_ms INTEGER,
		steps_total INTEGER DEFAULT 0,
		steps_completed INTEGER DEFAULT 0,
		post_install_failures INTEGER DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);
	CREATE INDEX IF NOT EXISTS idx_runs_template ON runs(template_id);
	`

	_, err := t.db.Exec(schema)
	return err
}

const runColumns = `id, started_at, template_id, template_name, target_dir, success, stage,
	failed_step, error, duration_ms, steps_total, steps_completed, post_install_failures`

// SaveRun saves a run record
func (t *TelemetryDB) SaveRun(r Run) error {
	query := `INSERT OR REPLACE INTO runs (` + runColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := t.db.Exec(query,
		r.ID, r.StartedAt.UTC(), r.TemplateID, r.TemplateName, r.TargetDir, r.Success,
		r.Stage, r.FailedStep, r.Error, r.Duration.Milliseconds(), r.StepsTotal,
		r.StepsCompleted, r.PostInstallFailures,
	)
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}
	return nil
}

// RecentRuns returns up to limit runs, newest first
func (t *TelemetryDB) RecentRuns(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := t.db.Query(`SELECT `+runColumns+` FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanRuns(rows)
}

// QueryRuns returns runs started at or after since, oldest first
func (t *TelemetryDB) QueryRuns(since time.Time) ([]Run, error) {
	rows, err := t.db.Query(`SELECT `+runColumns+` FROM runs WHERE started_at >= ? ORDER BY started_at`, since.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanRuns(rows)
}

// GetStats returns run statistics for the last days days
func (t *TelemetryDB) GetStats(days int) (Stats, error) {
	since := time.Now().AddDate(0, 0, -days).UTC()
	stats := Stats{}

	var avgDuration sql.NullFloat64
	err := t.db.QueryRow(`
		SELECT COUNT(*), COALESCE(SUM(CASE WHEN success THEN 1 ELSE 0 END), 0), AVG(duration_ms)
		FROM runs WHERE started_at >= ?
	`, since).Scan(&stats.TotalRuns, &stats.SuccessfulRuns, &avgDuration)
	if err != nil {
		return stats, err
	}

	if stats.TotalRuns > 0 {
		stats.SuccessRate = float64(stats.SuccessfulRuns) / float64(stats.TotalRuns) * 100
	}
	if avgDuration.Valid {
		stats.AvgDuration = time.Duration(avgDuration.Float64) * time.Millisecond
	}

	stats.Templates, err = t.getTemplateStats(since)
	if err != nil {
		return stats, err
	}

	stats.CommonFailures, err = t.getCommonFailures(since)
	if err != nil {
		return stats, err
	}

	return stats, nil
}

func (t *TelemetryDB) getTemplateStats(since time.Time) ([]TemplateStat, error) {
	query := `
		SELECT template_id, COUNT(*) as count, SUM(CASE WHEN success THEN 0 ELSE 1 END)
		FROM runs WHERE started_at >= ?
		GROUP BY template_id ORDER BY count DESC, template_id LIMIT 10
	`

	rows, err := t.db.Query(query, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var templates []TemplateStat
	for rows.Next() {
		var ts TemplateStat
		if err := rows.Scan(&ts.TemplateID, &ts.Runs, &ts.Failures); err != nil {
			return nil, err
		}
		templates = append(templates, ts)
	}

	return templates, rows.Err()
}

func (t *TelemetryDB) getCommonFailures(since time.Time) ([]FailureStat, error) {
	query := `
		SELECT stage, COUNT(*) as count
		FROM runs WHERE success = 0 AND stage != '' AND started_at >= ?
		GROUP BY stage ORDER BY count DESC, stage
	`

	rows, err := t.db.Query(query, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var failures []FailureStat
	for rows.Next() {
		var fs FailureStat
		if err := rows.Scan(&fs.Stage, &fs.Count); err != nil {
			return nil, err
		}
		failures = append(failures, fs)
	}

	return failures, rows.Err()
}

// DeleteOldRuns removes runs older than the specified duration
func (t *TelemetryDB) DeleteOldRuns(olderThan time.Duration) error {
	cutoff := time.Now().Add(-olderThan).UTC()
	_, err := t.db.Exec(`DELETE FROM runs WHERE started_at < ?`, cutoff)
	return err
}

// Close closes the database connection
func (t *TelemetryDB) Close() error {
	return t.db.Close()
}

func scanRuns(rows *sql.Rows) ([]Run, error) {
	var runs []Run
	for rows.Next() {
		var r Run
		var templateName, targetDir, stage, errText sql.NullString
		var durationMs sql.NullInt64

		err := rows.Scan(
			&r.ID, &r.StartedAt, &r.TemplateID, &templateName, &targetDir,
			&r.Success, &stage, &r.FailedStep, &errText, &durationMs,
			&r.StepsTotal, &r.StepsCompleted, &r.PostInstallFailures,
		)
		if err != nil {
			return nil, err
		}

		r.TemplateName = templateName.String
		r.TargetDir = targetDir.String
		r.Stage = stage.String
		r.Error = errText.String
		if durationMs.Valid {
			r.Duration = time.Duration(durationMs.Int64) * time.Millisecond
		}

		runs = append(runs, r)
	}
	return runs, rows.Err()
}
