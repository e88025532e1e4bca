package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/labstack/echo/v4"

	"vget/internal/models"
	"vget/internal/store"
	"vget/internal/worker"
	"vget/internal/youtube"
)

// inspectTimeout bounds the synchronous metadata query on the info
// endpoint. Downloads themselves are not bounded.
const inspectTimeout = 30 * time.Second

// Inspector answers metadata-only queries for a media URL.
type Inspector interface {
	Inspect(ctx context.Context, url string) (*youtube.VideoInfo, error)
}

// JobHandler serves the job API: inspection, creation, polling and
// artifact delivery.
type JobHandler struct {
	store     *store.JobStore
	runner    *worker.Runner
	inspector Inspector
}

// NewJobHandler creates a new JobHandler.
func NewJobHandler(jobStore *store.JobStore, runner *worker.Runner, inspector Inspector) *JobHandler {
	return &JobHandler{store: jobStore, runner: runner, inspector: inspector}
}

type infoRequest struct {
	URL string `json:"url"`
}

// Info returns video metadata without starting a download.
// POST /jobs/info
func (h *JobHandler) Info(c echo.Context) error {
	var req infoRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if req.URL == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "URL is required"})
	}

	log.Printf("Fetching info for URL: %s", req.URL)

	ctx, cancel := context.WithTimeout(c.Request().Context(), inspectTimeout)
	defer cancel()

	info, err := h.inspector.Inspect(ctx, req.URL)
	if err != nil {
		log.Printf("Error fetching video info: %v", err)
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, info)
}

// Start validates the request, creates a job and launches its
// execution. It returns as soon as the job record exists; the fetch
// itself runs in the background.
// POST /jobs
func (h *JobHandler) Start(c echo.Context) error {
	var req models.Request
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if req.URL == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "URL is required"})
	}
	if req.Type == "" {
		req.Type = models.TypeVideo
	}
	if req.Type != models.TypeVideo && req.Type != models.TypeAudio {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "type must be video or audio"})
	}
	if req.Quality == "" {
		req.Quality = "best"
	}
	if req.Type == models.TypeAudio && req.AudioFormat == "" {
		req.AudioFormat = "mp3"
	}

	job := h.store.Create(req)
	h.runner.Launch(job.ID, req)

	log.Printf("Starting %s download - ID: %s, URL: %s", req.Type, job.ID, req.URL)

	return c.JSON(http.StatusOK, map[string]string{
		"jobId":   job.ID,
		"message": "Download started",
	})
}

// Get returns the current job snapshot.
// GET /jobs/:id
func (h *JobHandler) Get(c echo.Context) error {
	job, err := h.store.Get(c.Param("id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "job not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, job)
}

// Artifact streams the completed file as an attachment. The file is
// re-checked on disk every time: the retention sweep may have deleted
// it after the job completed.
// GET /jobs/:id/artifact
func (h *JobHandler) Artifact(c echo.Context) error {
	job, err := h.store.Get(c.Param("id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "job not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	if job.Status != models.StatusCompleted {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "download not completed"})
	}
	if _, err := os.Stat(job.Filepath); err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "file not found"})
	}

	log.Printf("Sending file for download: %s", job.Filename)
	return c.Attachment(job.Filepath, job.Filename)
}

type completedDownload struct {
	JobID       string    `json:"jobId"`
	Filename    string    `json:"filename"`
	Filesize    int64     `json:"filesize"`
	Title       string    `json:"title"`
	Type        string    `json:"type"`
	CompletedAt time.Time `json:"completedAt"`
}

// List returns completed jobs, newest first.
// GET /jobs?status=completed
func (h *JobHandler) List(c echo.Context) error {
	if status := c.QueryParam("status"); status != "" && status != string(models.StatusCompleted) {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "unsupported status filter"})
	}

	completed := h.store.ListCompleted()
	downloads := make([]completedDownload, 0, len(completed))
	for _, job := range completed {
		downloads = append(downloads, completedDownload{
			JobID:       job.ID,
			Filename:    job.Filename,
			Filesize:    job.Filesize,
			Title:       job.Title,
			Type:        job.Request.Type,
			CompletedAt: *job.CompletedAt,
		})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"downloads": downloads,
		"count":     len(downloads),
	})
}
