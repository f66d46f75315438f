package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"loan-origination-api/config"
	"loan-origination-api/models"

	"gorm.io/gorm"
)

// BatchJobService owns the BatchUploadJob record: creation, per-row
// counters, terminal transitions, and source-file cleanup. Counters only
// ever increase.
type BatchJobService struct {
	db *gorm.DB
}

func NewBatchJobService(db *gorm.DB) *BatchJobService {
	if db == nil {
		db = config.DB
	}
	return &BatchJobService{db: db}
}

// Create registers a new job in the processing state.
func (s *BatchJobService) Create(ctx context.Context, userID int, filename, storedPath string) (*models.BatchUploadJob, error) {
	job := &models.BatchUploadJob{
		UserID:     userID,
		Filename:   filename,
		StoredPath: storedPath,
		Status:     models.BatchUploadStatusProcessing,
	}
	if err := s.db.WithContext(ctx).Create(job).Error; err != nil {
		return nil, err
	}
	return job, nil
}

// RecordRowSuccess increments the processed counter for one row outcome.
func (s *BatchJobService) RecordRowSuccess(ctx context.Context, jobID uint) error {
	return s.increment(ctx, jobID, "processed_records")
}

// RecordRowFailure increments the failed counter for one row outcome.
func (s *BatchJobService) RecordRowFailure(ctx context.Context, jobID uint) error {
	return s.increment(ctx, jobID, "failed_records")
}

func (s *BatchJobService) increment(ctx context.Context, jobID uint, column string) error {
	return s.db.WithContext(ctx).Model(&models.BatchUploadJob{}).
		Where("id = ?", jobID).
		Update(column, gorm.Expr(column+" + 1")).Error
}

// Complete marks the job completed regardless of how many rows failed:
// completed means the pipeline ran the row stream to exhaustion. The
// uploaded source file is removed only once the terminal status is durably
// recorded, so a job stuck in processing keeps its upload.
func (s *BatchJobService) Complete(ctx context.Context, job *models.BatchUploadJob, totalRecords int) error {
	err := s.finish(ctx, job.ID, map[string]interface{}{
		"status":        models.BatchUploadStatusCompleted,
		"total_records": totalRecords,
		"completed_at":  time.Now(),
	})
	if err != nil {
		return err
	}
	s.removeSourceFile(job)
	return nil
}

// Fail marks the job failed with the fatal error recorded. Row counters are
// left as they stand; on the precondition path nothing was counted yet.
func (s *BatchJobService) Fail(ctx context.Context, job *models.BatchUploadJob, cause error) error {
	msg := ""
	if cause != nil {
		msg = cause.Error()
	}
	if len(msg) > 2000 {
		msg = fmt.Sprintf("%s...", msg[:1997])
	}
	err := s.finish(ctx, job.ID, map[string]interface{}{
		"status":        models.BatchUploadStatusFailed,
		"error_message": msg,
		"completed_at":  time.Now(),
	})
	if err != nil {
		return err
	}
	s.removeSourceFile(job)
	return nil
}

func (s *BatchJobService) finish(ctx context.Context, jobID uint, updates map[string]interface{}) error {
	res := s.db.WithContext(ctx).Model(&models.BatchUploadJob{}).
		Where("id = ? AND status = ?", jobID, models.BatchUploadStatusProcessing).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrBatchJobNotFound
	}
	return nil
}

func (s *BatchJobService) removeSourceFile(job *models.BatchUploadJob) {
	if job == nil || job.StoredPath == "" {
		return
	}
	if err := os.Remove(job.StoredPath); err != nil && !os.IsNotExist(err) {
		log.Printf("failed to remove upload %s for job %d: %v", job.StoredPath, job.ID, err)
	}
}

// GetForUser returns one job scoped to its owner.
func (s *BatchJobService) GetForUser(ctx context.Context, jobID uint, userID int) (*models.BatchUploadJob, error) {
	var job models.BatchUploadJob
	err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", jobID, userID).
		First(&job).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBatchJobNotFound
		}
		return nil, err
	}
	return &job, nil
}

// ListForUser returns the owner's jobs, newest first.
func (s *BatchJobService) ListForUser(ctx context.Context, userID int, limit, offset int) ([]models.BatchUploadJob, int64, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	var total int64
	if err := s.db.WithContext(ctx).Model(&models.BatchUploadJob{}).
		Where("user_id = ?", userID).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var jobs []models.BatchUploadJob
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Offset(offset).
		Limit(limit).
		Find(&jobs).Error
	if err != nil {
		return nil, 0, err
	}
	return jobs, total, nil
}
