package store

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"vget/internal/models"
)

// ErrNotFound is returned when a job ID is unknown.
var ErrNotFound = errors.New("job not found")

// JobStore is the in-memory source of truth for job state. All access
// goes through its methods; readers always get value copies, so a poll
// can never observe a half-written record.
type JobStore struct {
	mu   sync.RWMutex
	jobs map[string]*models.Job
}

// NewJobStore creates an empty store.
func NewJobStore() *JobStore {
	return &JobStore{
		jobs: make(map[string]*models.Job),
	}
}

// Create registers a new job in the starting state and returns a copy.
// The record is visible to Get before Create returns, so an immediate
// poll never sees NotFound.
func (s *JobStore) Create(req models.Request) models.Job {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	job := &models.Job{
		ID:        uuid.New().String(),
		Status:    models.StatusStarting,
		Request:   req,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.jobs[job.ID] = job
	return *job
}

// Get returns a snapshot of the job, or ErrNotFound.
func (s *JobStore) Get(id string) (models.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, ok := s.jobs[id]
	if !ok {
		return models.Job{}, ErrNotFound
	}
	return *job, nil
}

// Update applies fn to the job under the write lock and bumps UpdatedAt.
// Updates to a terminal job are ignored; Completed and Failed are final.
func (s *JobStore) Update(id string, fn func(*models.Job)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok {
		return ErrNotFound
	}
	if job.Status.IsTerminal() {
		return nil
	}
	fn(job)
	job.UpdatedAt = time.Now()
	return nil
}

// SetProgress overwrites the job's progress snapshot.
func (s *JobStore) SetProgress(id string, p models.Progress) error {
	return s.Update(id, func(job *models.Job) {
		job.Status = p.Status
		job.Percent = p.Percent
		job.Speed = p.Speed
		job.ETA = p.ETA
		job.Downloaded = p.Downloaded
		job.Total = p.Total
	})
}

// Complete marks the job completed and fixes its result fields.
func (s *JobStore) Complete(id string, res models.Result) error {
	return s.Update(id, func(job *models.Job) {
		now := time.Now()
		job.Status = models.StatusCompleted
		job.Percent = 100
		job.Speed = ""
		job.ETA = ""
		job.Title = res.Title
		job.Filename = res.Filename
		job.Filepath = res.Filepath
		job.Filesize = res.Filesize
		job.CompletedAt = &now
	})
}

// Fail marks the job failed with the captured error message.
func (s *JobStore) Fail(id string, errMsg string) error {
	return s.Update(id, func(job *models.Job) {
		job.Status = models.StatusFailed
		job.Error = errMsg
	})
}

// ListCompleted returns all completed jobs, newest first by completion
// time. Ordering is stable under ties.
func (s *JobStore) ListCompleted() []models.Job {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var completed []models.Job
	for _, job := range s.jobs {
		if job.Status == models.StatusCompleted {
			completed = append(completed, *job)
		}
	}
	sort.SliceStable(completed, func(i, j int) bool {
		return completed[i].CompletedAt.After(*completed[j].CompletedAt)
	})
	return completed
}

// CountByStatus returns the number of jobs currently in the given state.
func (s *JobStore) CountByStatus(status models.Status) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, job := range s.jobs {
		if job.Status == status {
			count++
		}
	}
	return count
}
