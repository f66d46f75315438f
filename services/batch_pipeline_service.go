package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"loan-origination-api/config"
	"loan-origination-api/models"

	"gorm.io/gorm"
)

// BatchPipelineService drives one batch upload: the production-model
// precondition, then the sequential per-row loop of normalize, materialize,
// score, persist. A RecordError never aborts the job; anything escaping the
// per-row boundary does.
type BatchPipelineService struct {
	db          *gorm.DB
	jobs        *BatchJobService
	intake      *ApplicantIntakeService
	registry    *ModelRegistryService
	scoring     *ScoringClient
	predictions *PredictionService
}

func NewBatchPipelineService(db *gorm.DB, scoring *ScoringClient) *BatchPipelineService {
	if db == nil {
		db = config.DB
	}
	if scoring == nil {
		scoring = NewScoringClient("", nil)
	}
	return &BatchPipelineService{
		db:          db,
		jobs:        NewBatchJobService(db),
		intake:      NewApplicantIntakeService(db),
		registry:    NewModelRegistryService(db),
		scoring:     scoring,
		predictions: NewPredictionService(db),
	}
}

// Run processes the job to a terminal state. The returned error reports the
// fatal cause when the job aborted; per-row failures are only counted.
func (s *BatchPipelineService) Run(ctx context.Context, job *models.BatchUploadJob) (runErr error) {
	if job == nil {
		return errors.New("job is nil")
	}
	ctx = persistentContext(ctx)

	defer func() {
		if r := recover(); r != nil {
			runErr = fmt.Errorf("batch job %d panicked: %v", job.ID, r)
			s.failJob(ctx, job, runErr)
		}
	}()

	modelVersion, err := s.registry.CurrentProductionVersion(ctx)
	if err != nil {
		err = fmt.Errorf("model registry lookup: %w", err)
		s.failJob(ctx, job, err)
		return err
	}
	if modelVersion == nil {
		s.failJob(ctx, job, ErrNoProductionModel)
		return ErrNoProductionModel
	}

	source, err := OpenBatchRowSource(job.StoredPath)
	if err != nil {
		err = fmt.Errorf("open upload: %w", err)
		s.failJob(ctx, job, err)
		return err
	}
	defer source.Close()

	seq := 0
	for {
		raw, err := source.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			err = fmt.Errorf("read row %d: %w", seq+1, err)
			s.failJob(ctx, job, err)
			return err
		}

		seq++
		if rowErr := s.processRow(ctx, job, modelVersion, raw, seq); rowErr != nil {
			log.Printf("batch job %d: %v", job.ID, rowErr)
			if err := s.jobs.RecordRowFailure(ctx, job.ID); err != nil {
				err = fmt.Errorf("record row failure: %w", err)
				s.failJob(ctx, job, err)
				return err
			}
			continue
		}
		if err := s.jobs.RecordRowSuccess(ctx, job.ID); err != nil {
			err = fmt.Errorf("record row success: %w", err)
			s.failJob(ctx, job, err)
			return err
		}
	}

	// The final status write is not retried: if it fails the job stays in
	// processing and the error is only logged.
	if err := s.jobs.Complete(ctx, job, seq); err != nil {
		log.Printf("failed to mark batch job %d completed: %v", job.ID, err)
		return nil
	}

	s.notifyOwner(ctx, job, models.BatchUploadStatusCompleted, nil)
	return nil
}

// processRow runs the per-row sequence. Every failure it returns is a
// *RecordError naming the step that failed.
func (s *BatchPipelineService) processRow(ctx context.Context, job *models.BatchUploadJob, modelVersion *models.MLModelVersion, raw RawRow, seq int) error {
	rec := NormalizeRow(raw, job.ID, seq)

	candidate, err := s.intake.Materialize(ctx, rec, job, seq)
	if err != nil {
		return &RecordError{Seq: seq, Step: "materialize", Err: err}
	}

	outcome, err := s.scoring.Score(ctx, rec)
	if err != nil {
		return &RecordError{Seq: seq, Step: "score", Err: err}
	}

	if _, err := s.predictions.Store(ctx, candidate, modelVersion.ID, raw, outcome); err != nil {
		return &RecordError{Seq: seq, Step: "persist", Err: err}
	}

	return nil
}

func (s *BatchPipelineService) failJob(ctx context.Context, job *models.BatchUploadJob, cause error) {
	if err := s.jobs.Fail(ctx, job, cause); err != nil {
		log.Printf("failed to mark batch job %d failed: %v", job.ID, err)
		return
	}
	s.notifyOwner(ctx, job, models.BatchUploadStatusFailed, cause)
}

// notifyOwner emails the job owner about the terminal state. Delivery is
// best effort; failures are logged and do not affect the job.
func (s *BatchPipelineService) notifyOwner(ctx context.Context, job *models.BatchUploadJob, status string, cause error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("user_id = ?", job.UserID).First(&user).Error; err != nil {
		log.Printf("batch job %d: owner lookup for notification failed: %v", job.ID, err)
		return
	}

	subject := fmt.Sprintf("Batch upload %q %s", job.Filename, status)
	body := fmt.Sprintf("<p>Your batch upload <b>%s</b> finished with status <b>%s</b>.</p>", job.Filename, status)
	if cause != nil {
		body += fmt.Sprintf("<p>Error: %s</p>", cause.Error())
	}

	if err := config.SendMail([]string{user.Email}, subject, body); err != nil {
		log.Printf("batch job %d: notification email failed: %v", job.ID, err)
	}
}
