// Package datastore persists evaluation runs and their per-item results
// to Postgres. Persistence is optional: when no database is configured the
// rest of the platform runs unchanged and every store call fails with a
// clear error, so callers gate on Enabled.
package datastore

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
)

// DB is the process-wide connection pool, set by InitDB.
var DB *sql.DB

// InitDB opens the connection pool and verifies connectivity.
func InitDB(dataSourceName string) error {
	var err error
	DB, err = sql.Open("postgres", dataSourceName)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	if err = DB.Ping(); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}
	return nil
}

// Enabled reports whether InitDB has run.
func Enabled() bool {
	return DB != nil
}

// EnsureSchema creates the run tables when they do not exist yet.
func EnsureSchema() error {
	if DB == nil {
		return errors.New("database connection not initialized")
	}

	statements := []string{
		`CREATE TABLE IF NOT EXISTS evaluation_runs (
			id UUID PRIMARY KEY,
			mode TEXT NOT NULL,
			provider TEXT NOT NULL DEFAULT '',
			language_code TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL,
			total_items INTEGER NOT NULL DEFAULT 0,
			processed_items INTEGER NOT NULL DEFAULT 0,
			succeeded_items INTEGER NOT NULL DEFAULT 0,
			avg_score DOUBLE PRECISION NOT NULL DEFAULT 0,
			avg_latency_seconds DOUBLE PRECISION NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL,
			completed_at TIMESTAMPTZ
		)`,
		`CREATE TABLE IF NOT EXISTS item_results (
			id BIGSERIAL PRIMARY KEY,
			run_id UUID NOT NULL REFERENCES evaluation_runs(id) ON DELETE CASCADE,
			item_id INTEGER NOT NULL,
			question TEXT NOT NULL DEFAULT '',
			reference_answer TEXT NOT NULL DEFAULT '',
			audio_path TEXT NOT NULL DEFAULT '',
			stt_raw TEXT NOT NULL DEFAULT '',
			stt_text TEXT NOT NULL DEFAULT '',
			ai_answer TEXT NOT NULL DEFAULT '',
			score INTEGER NOT NULL DEFAULT 0,
			reason TEXT NOT NULL DEFAULT '',
			tts_latency_ms BIGINT NOT NULL DEFAULT 0,
			stt_latency_ms BIGINT NOT NULL DEFAULT 0,
			chat_latency_ms BIGINT NOT NULL DEFAULT 0,
			eval_latency_ms BIGINT NOT NULL DEFAULT 0,
			total_latency_ms BIGINT NOT NULL DEFAULT 0,
			status TEXT NOT NULL,
			error_msg TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS item_results_run_id_idx ON item_results (run_id)`,
	}
	for _, stmt := range statements {
		if _, err := DB.Exec(stmt); err != nil {
			return fmt.Errorf("failed to ensure schema: %w", err)
		}
	}
	return nil
}

// CreateRun inserts a new run. A missing ID is filled with a fresh UUID.
func CreateRun(run *EvaluationRun) error {
	if DB == nil {
		return errors.New("database connection not initialized")
	}

	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.Status == "" {
		run.Status = RunStatusRunning
	}
	run.CreatedAt = time.Now()

	query := `
		INSERT INTO evaluation_runs (id, mode, provider, language_code, status, total_items, processed_items, succeeded_items, avg_score, avg_latency_seconds, created_at, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := DB.Exec(
		query,
		run.ID,
		run.Mode,
		run.Provider,
		run.LanguageCode,
		run.Status,
		run.TotalItems,
		run.ProcessedItems,
		run.SucceededItems,
		run.AvgScore,
		run.AvgLatencySeconds,
		run.CreatedAt,
		run.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create evaluation run: %w", err)
	}
	return nil
}

// FinishRun records the final status and aggregate statistics of a run.
func FinishRun(id, status string, processed, succeeded int, avgScore, avgLatencySeconds float64) error {
	if DB == nil {
		return errors.New("database connection not initialized")
	}

	query := `
		UPDATE evaluation_runs
		SET status = $1, processed_items = $2, succeeded_items = $3, avg_score = $4, avg_latency_seconds = $5, completed_at = $6
		WHERE id = $7
	`
	result, err := DB.Exec(query, status, processed, succeeded, avgScore, avgLatencySeconds, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to finish run %s: %w", id, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected when finishing run %s: %w", id, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("run %s not found for finish update", id)
	}
	return nil
}

// InsertItemResult inserts one result row and returns its id.
func InsertItemResult(res *ItemResult) (int64, error) {
	if DB == nil {
		return 0, errors.New("database connection not initialized")
	}

	query := `
		INSERT INTO item_results (run_id, item_id, question, reference_answer, audio_path, stt_raw, stt_text, ai_answer, score, reason, tts_latency_ms, stt_latency_ms, chat_latency_ms, eval_latency_ms, total_latency_ms, status, error_msg, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		RETURNING id
	`
	res.CreatedAt = time.Now()

	var id int64
	err := DB.QueryRow(
		query,
		res.RunID,
		res.ItemID,
		res.Question,
		res.ReferenceAnswer,
		res.AudioPath,
		res.STTRaw,
		res.STTText,
		res.AIAnswer,
		res.Score,
		res.Reason,
		res.TTSLatencyMS,
		res.STTLatencyMS,
		res.ChatLatencyMS,
		res.EvalLatencyMS,
		res.TotalLatencyMS,
		res.Status,
		res.ErrorMsg,
		res.CreatedAt,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert item result: %w", err)
	}
	res.ID = id
	return id, nil
}

const runColumns = "id, mode, provider, language_code, status, total_items, processed_items, succeeded_items, avg_score, avg_latency_seconds, created_at, completed_at"

func scanRun(scanner interface{ Scan(...any) error }) (*EvaluationRun, error) {
	run := &EvaluationRun{}
	err := scanner.Scan(
		&run.ID,
		&run.Mode,
		&run.Provider,
		&run.LanguageCode,
		&run.Status,
		&run.TotalItems,
		&run.ProcessedItems,
		&run.SucceededItems,
		&run.AvgScore,
		&run.AvgLatencySeconds,
		&run.CreatedAt,
		&run.CompletedAt,
	)
	if err != nil {
		return nil, err
	}
	return run, nil
}

// GetRun retrieves one run by id.
func GetRun(id string) (*EvaluationRun, error) {
	if DB == nil {
		return nil, errors.New("database connection not initialized")
	}

	run, err := scanRun(DB.QueryRow("SELECT "+runColumns+" FROM evaluation_runs WHERE id = $1", id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("run %s not found: %w", id, err)
		}
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return run, nil
}

// ListRuns lists the most recent runs, newest first. limit <= 0 lists all.
func ListRuns(limit int) ([]*EvaluationRun, error) {
	if DB == nil {
		return nil, errors.New("database connection not initialized")
	}

	query := "SELECT " + runColumns + " FROM evaluation_runs ORDER BY created_at DESC"
	var rows *sql.Rows
	var err error
	if limit > 0 {
		rows, err = DB.Query(query+" LIMIT $1", limit)
	} else {
		rows, err = DB.Query(query)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	runs := []*EvaluationRun{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run row: %w", err)
		}
		runs = append(runs, run)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during rows iteration for runs: %w", err)
	}
	return runs, nil
}

// GetResultsForRun lists a run's item results in insertion order.
func GetResultsForRun(runID string) ([]*ItemResult, error) {
	if DB == nil {
		return nil, errors.New("database connection not initialized")
	}

	query := `
		SELECT id, run_id, item_id, question, reference_answer, audio_path, stt_raw, stt_text, ai_answer, score, reason, tts_latency_ms, stt_latency_ms, chat_latency_ms, eval_latency_ms, total_latency_ms, status, error_msg, created_at
		FROM item_results
		WHERE run_id = $1
		ORDER BY id
	`
	rows, err := DB.Query(query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get results for run %s: %w", runID, err)
	}
	defer rows.Close()

	results := []*ItemResult{}
	for rows.Next() {
		res := &ItemResult{}
		if err := rows.Scan(
			&res.ID,
			&res.RunID,
			&res.ItemID,
			&res.Question,
			&res.ReferenceAnswer,
			&res.AudioPath,
			&res.STTRaw,
			&res.STTText,
			&res.AIAnswer,
			&res.Score,
			&res.Reason,
			&res.TTSLatencyMS,
			&res.STTLatencyMS,
			&res.ChatLatencyMS,
			&res.EvalLatencyMS,
			&res.TotalLatencyMS,
			&res.Status,
			&res.ErrorMsg,
			&res.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan item result row: %w", err)
		}
		results = append(results, res)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during rows iteration for item results: %w", err)
	}
	return results, nil
}
