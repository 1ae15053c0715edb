package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/seanowww/LyricSync/internal/fault"
	"github.com/seanowww/LyricSync/internal/metrics"
	"github.com/seanowww/LyricSync/internal/segments"
	"github.com/seanowww/LyricSync/pkg/models"
)

// Repository provides database operations.
//
// Tables:
//
//	videos   (id uuid pk, path text, owner_key text, created_at timestamptz)
//	segments (video_id uuid fk, id int, start_s double precision,
//	          end_s double precision, text text, primary key (video_id, id))
//	burn_jobs(id uuid pk, video_id uuid fk, status text, style jsonb,
//	          error_msg text, artifact_key text, started_at, completed_at,
//	          created_at, updated_at timestamptz)
type Repository struct {
	db *DB
}

// NewRepository creates a new repository
func NewRepository(db *DB) *Repository {
	return &Repository{db: db}
}

// Health reports whether the underlying pool is reachable.
func (r *Repository) Health(ctx context.Context) error {
	return r.db.Health(ctx)
}

// Videos

// CreateVideo creates a new video record
func (r *Repository) CreateVideo(ctx context.Context, video *models.Video) error {
	if video.ID == "" {
		video.ID = uuid.New().String()
	}

	query := `
		INSERT INTO videos (id, path, owner_key)
		VALUES ($1, $2, $3)
		RETURNING created_at
	`

	err := r.db.Pool.QueryRow(ctx, query,
		video.ID, video.Path, video.OwnerKey,
	).Scan(&video.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create video: %w", err)
	}

	return nil
}

// GetVideo retrieves a video by ID.
func (r *Repository) GetVideo(ctx context.Context, id string) (*models.Video, error) {
	var video models.Video

	query := `
		SELECT id, path, owner_key, created_at
		FROM videos
		WHERE id = $1
	`

	err := r.db.Pool.QueryRow(ctx, query, id).Scan(
		&video.ID, &video.Path, &video.OwnerKey, &video.CreatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("video %s: %w", id, fault.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get video: %w", err)
	}

	return &video, nil
}

// GetVideoForOwner retrieves a video and enforces the capability check:
// a missing video is NotFound, a present video with a different owner
// key is Forbidden.
func (r *Repository) GetVideoForOwner(ctx context.Context, id, ownerKey string) (*models.Video, error) {
	video, err := r.GetVideo(ctx, id)
	if err != nil {
		return nil, err
	}
	if video.OwnerKey != ownerKey {
		return nil, fmt.Errorf("video %s: %w", id, fault.ErrForbidden)
	}
	return video, nil
}

// DeleteVideo removes a video and its segments. It checks no credential
// itself; the API's DELETE route calls it after the owner-key check, and
// no separate admin credential is required.
func (r *Repository) DeleteVideo(ctx context.Context, id string) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM videos WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete video: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("video %s: %w", id, fault.ErrNotFound)
	}
	return nil
}

// Segments

// ListSegments returns a video's segments sorted by start time.
func (r *Repository) ListSegments(ctx context.Context, videoID string) ([]models.Segment, error) {
	query := `
		SELECT id, start_s, end_s, text
		FROM segments
		WHERE video_id = $1
		ORDER BY start_s ASC
	`

	rows, err := r.db.Pool.Query(ctx, query, videoID)
	if err != nil {
		return nil, fmt.Errorf("failed to list segments: %w", err)
	}
	defer rows.Close()

	out := []models.Segment{}
	for rows.Next() {
		var seg models.Segment
		if err := rows.Scan(&seg.ID, &seg.Start, &seg.End, &seg.Text); err != nil {
			return nil, fmt.Errorf("failed to scan segment: %w", err)
		}
		out = append(out, seg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read segments: %w", err)
	}

	return out, nil
}

// ReplaceSegments atomically swaps a video's segment set. The submitted
// set is validated first (Invalid/Conflict reject the write with no
// mutation); the video row is locked FOR UPDATE for the duration of the
// transaction, so concurrent writers to the same video serialize.
func (r *Repository) ReplaceSegments(ctx context.Context, videoID string, segs []models.Segment) error {
	if err := segments.Validate(segs); err != nil {
		metrics.RecordSegmentWrite("rejected")
		return err
	}
	ordered := segments.Sorted(segs)

	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var locked string
	err = tx.QueryRow(ctx, `SELECT id FROM videos WHERE id = $1 FOR UPDATE`, videoID).Scan(&locked)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("video %s: %w", videoID, fault.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to lock video row: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM segments WHERE video_id = $1`, videoID); err != nil {
		return fmt.Errorf("failed to clear segments: %w", err)
	}

	_, err = tx.CopyFrom(ctx,
		pgx.Identifier{"segments"},
		[]string{"video_id", "id", "start_s", "end_s", "text"},
		pgx.CopyFromSlice(len(ordered), func(i int) ([]interface{}, error) {
			s := ordered[i]
			return []interface{}{videoID, s.ID, s.Start, s.End, s.Text}, nil
		}),
	)
	if err != nil {
		return fmt.Errorf("failed to insert segments: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		metrics.RecordSegmentWrite("error")
		return fmt.Errorf("failed to commit segments: %w", err)
	}
	metrics.RecordSegmentWrite("ok")
	return nil
}
