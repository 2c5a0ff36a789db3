package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/apex/log"

	"vehicle-story-pipeline/models"
)

// ErrRunNotFound is returned when a run id has no row.
var ErrRunNotFound = fmt.Errorf("run not found")

// ErrStoryNotFound is returned when a story id has no row.
var ErrStoryNotFound = fmt.Errorf("story not found")

// CreateRun inserts a fresh run record in the Queued stage.
func (d *Database) CreateRun(ctx context.Context, run *models.StoryRun) error {
	query := `INSERT INTO story_runs (id, story_id, vehicle_id, status, stage, log_messages)
		VALUES (?, ?, ?, ?, ?, ?)`
	_, err := d.db.ExecContext(ctx, query,
		run.ID, run.StoryID, run.VehicleID, string(run.Status), run.Stage, "[]")
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}
	return nil
}

// GetRun loads one run record by id.
func (d *Database) GetRun(ctx context.Context, runID string) (*models.StoryRun, error) {
	query := `SELECT id, story_id, vehicle_id, status, stage, log_messages, error, created_at, updated_at
		FROM story_runs WHERE id = ?`

	var run models.StoryRun
	var logJSON sql.NullString
	var errText sql.NullString
	err := d.db.QueryRowContext(ctx, query, runID).Scan(
		&run.ID, &run.StoryID, &run.VehicleID, &run.Status, &run.Stage,
		&logJSON, &errText, &run.CreatedAt, &run.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load run: %w", err)
	}

	if logJSON.Valid && logJSON.String != "" {
		if err := json.Unmarshal([]byte(logJSON.String), &run.LogMessages); err != nil {
			log.WithError(err).WithField("run_id", runID).Warn("corrupt run log, ignoring")
		}
	}
	run.Error = errText.String
	return &run, nil
}

// SetRunStage advances a run's stage and appends one log line.
func (d *Database) SetRunStage(ctx context.Context, runID, stage, logMessage string) error {
	query := `UPDATE story_runs
		SET stage = ?, log_messages = JSON_ARRAY_APPEND(COALESCE(log_messages, '[]'), '$', ?)
		WHERE id = ?`
	result, err := d.db.ExecContext(ctx, query, stage, fmt.Sprintf("[%s] %s", stage, logMessage), runID)
	if err != nil {
		return fmt.Errorf("failed to update run stage: %w", err)
	}
	rows, err := result.RowsAffected()
	if err == nil && rows == 0 {
		return ErrRunNotFound
	}
	return nil
}

// MarkRunComplete finalizes a run as complete.
func (d *Database) MarkRunComplete(ctx context.Context, runID string) error {
	query := `UPDATE story_runs SET status = 'complete', stage = 'Complete' WHERE id = ?`
	if _, err := d.db.ExecContext(ctx, query, runID); err != nil {
		return fmt.Errorf("failed to mark run complete: %w", err)
	}
	return nil
}

// MarkRunFailed finalizes a run as failed with its reason.
func (d *Database) MarkRunFailed(ctx context.Context, runID, reason string) error {
	query := `UPDATE story_runs SET status = 'failed', stage = 'Failed', error = ? WHERE id = ?`
	if _, err := d.db.ExecContext(ctx, query, reason, runID); err != nil {
		return fmt.Errorf("failed to mark run failed: %w", err)
	}
	return nil
}

// SaveStory persists the finished artifact.
func (d *Database) SaveStory(ctx context.Context, storyID, vehicleID string, artifact *models.StoryArtifact) error {
	payload, err := json.Marshal(artifact)
	if err != nil {
		return fmt.Errorf("failed to marshal story: %w", err)
	}
	query := `INSERT INTO stories (id, vehicle_id, artifact) VALUES (?, ?, ?)
		ON DUPLICATE KEY UPDATE artifact = VALUES(artifact)`
	if _, err := d.db.ExecContext(ctx, query, storyID, vehicleID, string(payload)); err != nil {
		return fmt.Errorf("failed to insert story: %w", err)
	}
	return nil
}

// GetStory loads one finished story artifact by id.
func (d *Database) GetStory(ctx context.Context, storyID string) (*models.StoryArtifact, error) {
	var payload string
	err := d.db.QueryRowContext(ctx, "SELECT artifact FROM stories WHERE id = ?", storyID).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, ErrStoryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load story: %w", err)
	}

	var artifact models.StoryArtifact
	if err := json.Unmarshal([]byte(payload), &artifact); err != nil {
		return nil, fmt.Errorf("failed to parse story: %w", err)
	}
	return &artifact, nil
}

// RunStats summarizes run outcomes for the stats endpoint.
type RunStats struct {
	Total      int `json:"total"`
	Processing int `json:"processing"`
	Complete   int `json:"complete"`
	Failed     int `json:"failed"`
}

// GetRunStats aggregates run counts by status.
func (d *Database) GetRunStats(ctx context.Context) (*RunStats, error) {
	query := `SELECT status, COUNT(*) FROM story_runs GROUP BY status`
	rows, err := d.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query run stats: %w", err)
	}
	defer rows.Close()

	stats := &RunStats{}
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan run stats: %w", err)
		}
		stats.Total += count
		switch models.RunStatus(status) {
		case models.RunStatusProcessing:
			stats.Processing = count
		case models.RunStatusComplete:
			stats.Complete = count
		case models.RunStatusFailed:
			stats.Failed = count
		}
	}
	return stats, rows.Err()
}
