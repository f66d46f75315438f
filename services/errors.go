package services

import (
	"errors"
	"fmt"
)

var (
	// ErrNoProductionModel aborts a batch job before any row is read.
	ErrNoProductionModel = errors.New("no active production model version registered")

	ErrBatchJobNotFound = errors.New("batch upload job not found")
)

// RecordError is a failure scoped to exactly one row of a batch upload.
// It is caught at the per-row boundary, counted, and never aborts the job.
type RecordError struct {
	Seq  int
	Step string
	Err  error
}

func (e *RecordError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("row %d: %s failed: %v", e.Seq, e.Step, e.Err)
}

func (e *RecordError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
