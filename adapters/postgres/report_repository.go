package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"nomen/domain/core"
	"nomen/domain/report"
	"nomen/domain/stats"
	"nomen/ports"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// reportRepository implements the ReportRepository interface
type reportRepository struct {
	db *sqlx.DB
}

// NewReportRepository creates a new report repository
func NewReportRepository(db *sqlx.DB) ports.ReportRepository {
	return &reportRepository{db: db}
}

// Connect opens and pings a postgres connection.
func Connect(ctx context.Context, databaseURL string) (*sqlx.DB, error) {
	db, err := sqlx.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

// Save inserts a run manifest and its ranked correlation results in one
// transaction. Result rank is the position in the report ordering.
func (r *reportRepository) Save(ctx context.Context, rep *report.Report, manifest *report.Manifest) error {
	diversityJSON, err := json.Marshal(rep.Diversity)
	if err != nil {
		return fmt.Errorf("failed to marshal diversity summary: %w", err)
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	runQuery := `INSERT INTO analysis_runs (
		run_id, report_id, source, corpus_hash, config_hash, alpha, min_sample_n,
		sample_size, feature_count, tests_run, tests_skipped, runtime_ms,
		interpretation, diversity, created_at
	) VALUES (
		$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15
	)`

	_, err = tx.ExecContext(ctx, runQuery,
		manifest.RunID, rep.ID, manifest.Source, manifest.CorpusHash, manifest.ConfigHash,
		manifest.Alpha, manifest.MinSampleN, manifest.SampleSize, manifest.FeatureCount,
		manifest.TestsRun, manifest.TestsSkipped, manifest.RuntimeMs,
		rep.Interpretation, diversityJSON, manifest.CreatedAt.Time(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert analysis run: %w", err)
	}

	resultQuery := `INSERT INTO correlation_results (
		run_id, rank, feature_key, test_type, r, p_value, q_value, n, alpha,
		significant, signal, warnings
	) VALUES (
		$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12
	)`

	for rank, res := range rep.Results {
		warningsJSON, err := json.Marshal(res.Warnings)
		if err != nil {
			return fmt.Errorf("failed to marshal warnings: %w", err)
		}
		_, err = tx.ExecContext(ctx, resultQuery,
			manifest.RunID, rank+1, res.FeatureKey, res.TestType, res.R, res.PValue,
			res.QValue, res.N, res.Alpha, res.Significant, res.Signal, warningsJSON,
		)
		if err != nil {
			return fmt.Errorf("failed to insert correlation result: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetByRun reconstructs a saved report from its run ID.
func (r *reportRepository) GetByRun(ctx context.Context, runID core.RunID) (*report.Report, error) {
	runQuery := `SELECT report_id, source, interpretation, diversity, created_at
		FROM analysis_runs WHERE run_id = $1`

	var rep report.Report
	var diversityJSON []byte
	var createdAt time.Time

	err := r.db.QueryRowContext(ctx, runQuery, runID).Scan(
		&rep.ID, &rep.Source, &rep.Interpretation, &diversityJSON, &createdAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, core.ErrRunNotFound
		}
		return nil, fmt.Errorf("failed to get analysis run: %w", err)
	}
	rep.RunID = runID
	rep.CreatedAt = core.NewTimestamp(createdAt)

	if len(diversityJSON) > 0 {
		if err := json.Unmarshal(diversityJSON, &rep.Diversity); err != nil {
			return nil, fmt.Errorf("failed to unmarshal diversity summary: %w", err)
		}
	}

	resultQuery := `SELECT feature_key, test_type, r, p_value, q_value, n, alpha,
		significant, signal, warnings
		FROM correlation_results WHERE run_id = $1 ORDER BY rank ASC`

	rows, err := r.db.QueryContext(ctx, resultQuery, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query correlation results: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var res stats.CorrelationResult
		var warningsJSON []byte

		err := rows.Scan(
			&res.FeatureKey, &res.TestType, &res.R, &res.PValue, &res.QValue,
			&res.N, &res.Alpha, &res.Significant, &res.Signal, &warningsJSON,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan correlation result: %w", err)
		}
		if len(warningsJSON) > 0 {
			if err := json.Unmarshal(warningsJSON, &res.Warnings); err != nil {
				return nil, fmt.Errorf("failed to unmarshal warnings: %w", err)
			}
		}
		rep.Results = append(rep.Results, res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate correlation results: %w", err)
	}

	return &rep, nil
}

// ListRecent returns the most recent run manifests, newest first.
func (r *reportRepository) ListRecent(ctx context.Context, limit int) ([]report.Manifest, error) {
	query := `SELECT run_id, source, corpus_hash, config_hash, alpha, min_sample_n,
		sample_size, feature_count, tests_run, tests_skipped, runtime_ms, created_at
		FROM analysis_runs ORDER BY created_at DESC LIMIT $1`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query analysis runs: %w", err)
	}
	defer rows.Close()

	var manifests []report.Manifest
	for rows.Next() {
		var m report.Manifest
		var createdAt time.Time

		err := rows.Scan(
			&m.RunID, &m.Source, &m.CorpusHash, &m.ConfigHash, &m.Alpha, &m.MinSampleN,
			&m.SampleSize, &m.FeatureCount, &m.TestsRun, &m.TestsSkipped, &m.RuntimeMs, &createdAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan analysis run: %w", err)
		}
		m.CreatedAt = core.NewTimestamp(createdAt)
		manifests = append(manifests, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate analysis runs: %w", err)
	}

	return manifests, nil
}
