package models

import "time"

// Status is the lifecycle state of a download job.
type Status string

const (
	StatusStarting    Status = "starting"
	StatusDownloading Status = "downloading"
	StatusProcessing  Status = "processing"
	StatusCompleted   Status = "completed"
	StatusFailed      Status = "failed"
)

// IsTerminal returns true once the job can no longer change state.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Media types accepted by the start-job endpoint.
const (
	TypeVideo = "video"
	TypeAudio = "audio"
)

// Request holds the immutable parameters a job was created with.
type Request struct {
	URL         string `json:"url"`
	Type        string `json:"type"`
	Quality     string `json:"quality"`
	AudioFormat string `json:"audioFormat,omitempty"`
}

// Job is one tracked asynchronous fetch and its current snapshot.
// Instances handed out by the store are value copies; only the store
// mutates the canonical record.
type Job struct {
	ID      string  `json:"jobId"`
	Status  Status  `json:"status"`
	Request Request `json:"request"`

	// Progress fields, populated while downloading.
	Percent    float64 `json:"percent"`
	Speed      string  `json:"speed,omitempty"`
	ETA        string  `json:"eta,omitempty"`
	Downloaded string  `json:"downloaded,omitempty"`
	Total      string  `json:"total,omitempty"`

	// Result fields, populated on completion.
	Title    string `json:"title,omitempty"`
	Filename string `json:"filename,omitempty"`
	Filepath string `json:"filepath,omitempty"`
	Filesize int64  `json:"filesize,omitempty"`

	// Error is set iff Status == StatusFailed.
	Error string `json:"error,omitempty"`

	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

// Progress is one snapshot emitted by the fetcher while a job runs.
// Each snapshot overwrites the previous one; no history is kept.
type Progress struct {
	Status     Status // StatusDownloading or StatusProcessing
	Percent    float64
	Speed      string
	ETA        string
	Downloaded string
	Total      string
}

// Result is what a successful fetch produced.
type Result struct {
	Title    string
	Filename string
	Filepath string
	Filesize int64
}
