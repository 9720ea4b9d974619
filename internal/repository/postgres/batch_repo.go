package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"invosplit/internal/domain"
	"invosplit/internal/port"
)

type batchRepo struct {
	db *sqlx.DB
}

// NewBatchRepo creates a new PostgreSQL-backed BatchRepository.
func NewBatchRepo(db *sqlx.DB) port.BatchRepository {
	return &batchRepo{db: db}
}

func (r *batchRepo) Create(ctx context.Context, batch *domain.Batch) error {
	now := time.Now().UTC()
	batch.CreatedAt = now
	batch.UpdatedAt = now

	query := `INSERT INTO batches (
		id, file_name, original_name, content_type, file_size,
		s3_bucket, s3_key, page_count, state,
		candidate_spans, validated_spans, records,
		split_confidence, processing_error, processed_at,
		created_at, updated_at
	) VALUES (
		$1, $2, $3, $4, $5,
		$6, $7, $8, $9,
		$10, $11, $12,
		$13, $14, $15,
		$16, $17
	)`

	_, err := r.db.ExecContext(ctx, query,
		batch.ID, batch.FileName, batch.OriginalName, batch.ContentType, batch.FileSize,
		batch.S3Bucket, batch.S3Key, batch.PageCount, batch.State,
		batch.CandidateSpans, batch.ValidatedSpans, batch.Records,
		batch.SplitConfidence, batch.ProcessingError, batch.ProcessedAt,
		batch.CreatedAt, batch.UpdatedAt)
	if err != nil {
		return fmt.Errorf("batchRepo.Create: %w", err)
	}
	return nil
}

func (r *batchRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Batch, error) {
	var batch domain.Batch
	err := r.db.GetContext(ctx, &batch, "SELECT * FROM batches WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrBatchNotFound
		}
		return nil, fmt.Errorf("batchRepo.GetByID: %w", err)
	}
	return &batch, nil
}

func (r *batchRepo) List(ctx context.Context, offset, limit int) ([]domain.Batch, int, error) {
	var total int
	err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM batches")
	if err != nil {
		return nil, 0, fmt.Errorf("batchRepo.List count: %w", err)
	}

	var batches []domain.Batch
	err = r.db.SelectContext(ctx, &batches,
		"SELECT * FROM batches ORDER BY created_at DESC LIMIT $1 OFFSET $2", limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("batchRepo.List: %w", err)
	}
	return batches, total, nil
}

func (r *batchRepo) ListByState(ctx context.Context, state domain.BatchState, limit int) ([]domain.Batch, error) {
	var batches []domain.Batch
	err := r.db.SelectContext(ctx, &batches,
		"SELECT * FROM batches WHERE state = $1 ORDER BY created_at ASC LIMIT $2", state, limit)
	if err != nil {
		return nil, fmt.Errorf("batchRepo.ListByState: %w", err)
	}
	return batches, nil
}

func (r *batchRepo) UpdateState(ctx context.Context, id uuid.UUID, state domain.BatchState) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE batches SET state = $1, updated_at = $2 WHERE id = $3",
		state, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("batchRepo.UpdateState: %w", err)
	}
	return checkAffected(result, "batchRepo.UpdateState")
}

func (r *batchRepo) SaveCandidateSpans(ctx context.Context, id uuid.UUID, spans json.RawMessage) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE batches SET candidate_spans = $1, updated_at = $2 WHERE id = $3",
		spans, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("batchRepo.SaveCandidateSpans: %w", err)
	}
	return checkAffected(result, "batchRepo.SaveCandidateSpans")
}

func (r *batchRepo) SaveValidatedSpans(ctx context.Context, id uuid.UUID, spans json.RawMessage, confidence float64, pageCount int) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE batches SET
			validated_spans = $1, split_confidence = $2, page_count = $3, updated_at = $4
		 WHERE id = $5`,
		spans, confidence, pageCount, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("batchRepo.SaveValidatedSpans: %w", err)
	}
	return checkAffected(result, "batchRepo.SaveValidatedSpans")
}

func (r *batchRepo) SaveRecords(ctx context.Context, id uuid.UUID, records json.RawMessage) error {
	now := time.Now().UTC()
	result, err := r.db.ExecContext(ctx,
		"UPDATE batches SET records = $1, processed_at = $2, updated_at = $3 WHERE id = $4",
		records, now, now, id)
	if err != nil {
		return fmt.Errorf("batchRepo.SaveRecords: %w", err)
	}
	return checkAffected(result, "batchRepo.SaveRecords")
}

func (r *batchRepo) SetError(ctx context.Context, id uuid.UUID, state domain.BatchState, message string) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE batches SET state = $1, processing_error = $2, updated_at = $3 WHERE id = $4",
		state, message, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("batchRepo.SetError: %w", err)
	}
	return checkAffected(result, "batchRepo.SetError")
}

func (r *batchRepo) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM batches WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("batchRepo.Delete: %w", err)
	}
	return checkAffected(result, "batchRepo.Delete")
}

func checkAffected(result sql.Result, op string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows affected: %w", op, err)
	}
	if rows == 0 {
		return domain.ErrBatchNotFound
	}
	return nil
}
