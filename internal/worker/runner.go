package worker

import (
	"context"
	"fmt"
	"log"

	"vget/internal/models"
	"vget/internal/store"
)

// Fetcher performs the actual media retrieval. Implementations report
// progress through onProgress and must write the artifact into the
// directory they were configured with.
type Fetcher interface {
	Fetch(ctx context.Context, jobID string, req models.Request, onProgress func(models.Progress)) (*models.Result, error)
}

// Runner launches one goroutine per accepted job and drives it to a
// terminal state. Failures are contained per job: an error or panic in
// one execution only marks that job failed and is never propagated.
type Runner struct {
	store   *store.JobStore
	fetcher Fetcher
}

// NewRunner creates a runner writing results into jobStore.
func NewRunner(jobStore *store.JobStore, fetcher Fetcher) *Runner {
	return &Runner{store: jobStore, fetcher: fetcher}
}

// Launch starts the job's execution in the background and returns
// immediately. The job must already exist in the store.
func (r *Runner) Launch(jobID string, req models.Request) {
	go r.execute(jobID, req)
}

func (r *Runner) execute(jobID string, req models.Request) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("Job %s panicked: %v", jobID, rec)
			_ = r.store.Fail(jobID, fmt.Sprintf("internal error: %v", rec))
		}
	}()

	log.Printf("Processing job %s (type: %s, url: %s)", jobID, req.Type, req.URL)

	onProgress := func(p models.Progress) {
		if err := r.store.SetProgress(jobID, p); err != nil {
			log.Printf("Error updating progress for job %s: %v", jobID, err)
		}
	}

	result, err := r.fetcher.Fetch(context.Background(), jobID, req, onProgress)
	if err != nil {
		log.Printf("Job %s failed: %v", jobID, err)
		if ferr := r.store.Fail(jobID, err.Error()); ferr != nil {
			log.Printf("Error failing job %s: %v", jobID, ferr)
		}
		return
	}

	if err := r.store.Complete(jobID, *result); err != nil {
		log.Printf("Error completing job %s: %v", jobID, err)
		return
	}

	log.Printf("Job %s completed: %s", jobID, result.Filepath)
}
