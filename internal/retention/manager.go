package retention

import (
	"log"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

// Report summarizes one retention sweep.
type Report struct {
	Deleted      int
	DeletedFiles []string
	Remaining    int
}

// Manager keeps at most N most-recently-modified files in the download
// directory, deleting the rest. A single background loop enforces the
// policy periodically; Sweep can also be called on demand.
type Manager struct {
	dir      string
	keep     int
	interval time.Duration

	stop chan struct{}
	wg   sync.WaitGroup
}

// NewManager creates a manager for dir that keeps the newest keep files.
func NewManager(dir string, keep int, interval time.Duration) *Manager {
	return &Manager{
		dir:      dir,
		keep:     keep,
		interval: interval,
		stop:     make(chan struct{}),
	}
}

// Keep returns the configured retention count.
func (m *Manager) Keep() int {
	return m.keep
}

// Dir returns the managed directory.
func (m *Manager) Dir() string {
	return m.dir
}

// Start begins the periodic cleanup loop.
func (m *Manager) Start() {
	m.wg.Add(1)
	go m.run()
	log.Printf("Retention loop started - keeping %d most recent files in %s", m.keep, m.dir)
}

// Stop terminates the loop and waits for it to exit.
func (m *Manager) Stop() {
	close(m.stop)
	m.wg.Wait()
	log.Println("Retention loop stopped")
}

func (m *Manager) run() {
	defer m.wg.Done()

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.stop:
			return
		case <-ticker.C:
			report, err := m.Sweep(m.keep)
			if err != nil {
				log.Printf("Cleanup error: %v", err)
				continue
			}
			if report.Deleted > 0 {
				log.Printf("Cleanup complete! Deleted %d files, kept %d", report.Deleted, report.Remaining)
			}
		}
	}
}

// Sweep deletes every regular file beyond the keep newest, ordered by
// modification time. Per-file deletion failures are logged and skipped;
// the sweep never aborts on them. keep <= 0 deletes everything.
func (m *Manager) Sweep(keep int) (*Report, error) {
	if keep < 0 {
		keep = 0
	}

	entries, err := os.ReadDir(m.dir)
	if err != nil {
		return nil, err
	}

	type fileInfo struct {
		name    string
		modTime time.Time
	}

	var files []fileInfo
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			// File vanished between ReadDir and Stat.
			continue
		}
		files = append(files, fileInfo{name: entry.Name(), modTime: info.ModTime()})
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].modTime.After(files[j].modTime)
	})

	report := &Report{DeletedFiles: []string{}}
	if keep >= len(files) {
		report.Remaining = len(files)
		return report, nil
	}

	for _, f := range files[keep:] {
		if err := os.Remove(filepath.Join(m.dir, f.name)); err != nil {
			log.Printf("Failed to delete %s: %v", f.name, err)
			continue
		}
		report.Deleted++
		report.DeletedFiles = append(report.DeletedFiles, f.name)
		log.Printf("Cleaned up old file: %s", f.name)
	}
	report.Remaining = len(files) - report.Deleted
	return report, nil
}

// Usage returns the number of regular files in the managed directory and
// their total size in bytes.
func (m *Manager) Usage() (int, int64, error) {
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		return 0, 0, err
	}

	count := 0
	var total int64
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		count++
		total += info.Size()
	}
	return count, total, nil
}
