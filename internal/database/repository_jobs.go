package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/seanowww/LyricSync/internal/fault"
	"github.com/seanowww/LyricSync/pkg/models"
)

// Burn jobs

// CreateBurnJob creates a new burn job record
func (r *Repository) CreateBurnJob(ctx context.Context, job *models.BurnJob) error {
	if job.ID == "" {
		job.ID = uuid.New().String()
	}
	if job.Status == "" {
		job.Status = models.BurnJobStatusQueued
	}

	query := `
		INSERT INTO burn_jobs (id, video_id, status, style)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at
	`

	err := r.db.Pool.QueryRow(ctx, query,
		job.ID, job.VideoID, job.Status, job.Style,
	).Scan(&job.CreatedAt, &job.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create burn job: %w", err)
	}

	return nil
}

// GetBurnJob retrieves a burn job by ID
func (r *Repository) GetBurnJob(ctx context.Context, id string) (*models.BurnJob, error) {
	var job models.BurnJob

	query := `
		SELECT id, video_id, status, style, error_msg, artifact_key,
		       started_at, completed_at, created_at, updated_at
		FROM burn_jobs
		WHERE id = $1
	`

	err := r.db.Pool.QueryRow(ctx, query, id).Scan(
		&job.ID, &job.VideoID, &job.Status, &job.Style, &job.ErrorMsg,
		&job.ArtifactKey, &job.StartedAt, &job.CompletedAt,
		&job.CreatedAt, &job.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("burn job %s: %w", id, fault.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get burn job: %w", err)
	}

	return &job, nil
}

// MarkBurnJobStarted transitions a queued job to processing.
func (r *Repository) MarkBurnJobStarted(ctx context.Context, id string) error {
	now := time.Now().UTC()
	query := `
		UPDATE burn_jobs
		SET status = $2, started_at = $3, updated_at = $3
		WHERE id = $1 AND status = $4
	`
	tag, err := r.db.Pool.Exec(ctx, query, id, models.BurnJobStatusProcessing, now, models.BurnJobStatusQueued)
	if err != nil {
		return fmt.Errorf("failed to mark burn job started: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("burn job %s is not queued: %w", id, fault.ErrConflict)
	}
	return nil
}

// FinishBurnJob records the terminal state of a job.
func (r *Repository) FinishBurnJob(ctx context.Context, id, status, errorMsg, artifactKey string) error {
	now := time.Now().UTC()
	query := `
		UPDATE burn_jobs
		SET status = $2, error_msg = $3, artifact_key = $4,
		    completed_at = $5, updated_at = $5
		WHERE id = $1
	`
	_, err := r.db.Pool.Exec(ctx, query, id, status, errorMsg, artifactKey, now)
	if err != nil {
		return fmt.Errorf("failed to finish burn job: %w", err)
	}
	return nil
}

// GetBurnJobsByVideoID retrieves all burn jobs for a video
func (r *Repository) GetBurnJobsByVideoID(ctx context.Context, videoID string) ([]*models.BurnJob, error) {
	query := `
		SELECT id, video_id, status, style, error_msg, artifact_key,
		       started_at, completed_at, created_at, updated_at
		FROM burn_jobs
		WHERE video_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.Pool.Query(ctx, query, videoID)
	if err != nil {
		return nil, fmt.Errorf("failed to get burn jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*models.BurnJob
	for rows.Next() {
		var job models.BurnJob
		err := rows.Scan(
			&job.ID, &job.VideoID, &job.Status, &job.Style, &job.ErrorMsg,
			&job.ArtifactKey, &job.StartedAt, &job.CompletedAt,
			&job.CreatedAt, &job.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan burn job: %w", err)
		}
		jobs = append(jobs, &job)
	}

	return jobs, nil
}
