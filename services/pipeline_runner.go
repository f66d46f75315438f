package services

import (
	"context"
	"log"
	"sync"

	"loan-origination-api/models"
)

// PipelineRunner launches batch pipelines in the background and keeps a
// handle per running job, so callers can observe completion instead of
// firing and forgetting. Jobs never share state beyond the database and are
// not cancellable once started.
type PipelineRunner struct {
	mu      sync.Mutex
	running map[uint]chan struct{}
}

// DefaultPipelineRunner is the registry the HTTP layer launches jobs on.
var DefaultPipelineRunner = NewPipelineRunner()

func NewPipelineRunner() *PipelineRunner {
	return &PipelineRunner{running: make(map[uint]chan struct{})}
}

// Launch starts the pipeline for job in a background goroutine. The fatal
// error, if any, is recorded on the job by the pipeline itself; Launch only
// logs it.
func (r *PipelineRunner) Launch(pipeline *BatchPipelineService, job *models.BatchUploadJob) {
	done := make(chan struct{})

	r.mu.Lock()
	r.running[job.ID] = done
	r.mu.Unlock()

	go func() {
		defer func() {
			r.mu.Lock()
			delete(r.running, job.ID)
			r.mu.Unlock()
			close(done)
		}()

		if err := pipeline.Run(context.Background(), job); err != nil {
			log.Printf("batch job %d aborted: %v", job.ID, err)
		}
	}()
}

// Wait blocks until the given job's pipeline has finished. It returns
// immediately for jobs that are not running.
func (r *PipelineRunner) Wait(jobID uint) {
	r.mu.Lock()
	done, ok := r.running[jobID]
	r.mu.Unlock()
	if ok {
		<-done
	}
}
