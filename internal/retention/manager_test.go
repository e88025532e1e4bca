package retention

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// writeFiles creates n files with strictly increasing modification
// times; file0 is the oldest.
func writeFiles(t *testing.T, dir string, n int) []string {
	t.Helper()
	base := time.Now().Add(-time.Hour)
	names := make([]string, n)
	for i := 0; i < n; i++ {
		name := fmt.Sprintf("file%d.mp4", i)
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte("data"), 0644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
		mtime := base.Add(time.Duration(i) * time.Minute)
		if err := os.Chtimes(path, mtime, mtime); err != nil {
			t.Fatalf("chtimes %s: %v", name, err)
		}
		names[i] = name
	}
	return names
}

func remaining(t *testing.T, dir string) map[string]bool {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	out := make(map[string]bool)
	for _, e := range entries {
		out[e.Name()] = true
	}
	return out
}

func TestSweepDeletesOldestBeyondKeep(t *testing.T) {
	dir := t.TempDir()
	names := writeFiles(t, dir, 8)

	m := NewManager(dir, 5, time.Minute)
	report, err := m.Sweep(5)
	if err != nil {
		t.Fatalf("Sweep failed: %v", err)
	}

	if report.Deleted != 3 {
		t.Fatalf("expected 3 deleted, got %d", report.Deleted)
	}
	if report.Remaining != 5 {
		t.Fatalf("expected 5 remaining, got %d", report.Remaining)
	}

	left := remaining(t, dir)
	// The three oldest must be gone, the five newest kept.
	for _, name := range names[:3] {
		if left[name] {
			t.Errorf("oldest file %s survived the sweep", name)
		}
	}
	for _, name := range names[3:] {
		if !left[name] {
			t.Errorf("newest file %s was deleted", name)
		}
	}
}

func TestSweepFewerFilesThanKeep(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, 3)

	m := NewManager(dir, 5, time.Minute)
	report, err := m.Sweep(5)
	if err != nil {
		t.Fatalf("Sweep failed: %v", err)
	}
	if report.Deleted != 0 {
		t.Fatalf("expected 0 deleted, got %d", report.Deleted)
	}
	if report.Remaining != 3 {
		t.Fatalf("expected 3 remaining, got %d", report.Remaining)
	}
}

func TestSweepKeepZeroDeletesAll(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, 4)

	m := NewManager(dir, 5, time.Minute)
	report, err := m.Sweep(0)
	if err != nil {
		t.Fatalf("Sweep failed: %v", err)
	}
	if report.Deleted != 4 {
		t.Fatalf("expected 4 deleted, got %d", report.Deleted)
	}
	if len(remaining(t, dir)) != 0 {
		t.Fatal("expected empty directory")
	}
}

func TestSweepNegativeKeepClampsToZero(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, 2)

	m := NewManager(dir, 5, time.Minute)
	report, err := m.Sweep(-3)
	if err != nil {
		t.Fatalf("Sweep failed: %v", err)
	}
	if report.Deleted != 2 {
		t.Fatalf("expected 2 deleted, got %d", report.Deleted)
	}
}

func TestSweepEmptyDirectory(t *testing.T) {
	dir := t.TempDir()

	m := NewManager(dir, 5, time.Minute)
	report, err := m.Sweep(5)
	if err != nil {
		t.Fatalf("Sweep failed: %v", err)
	}
	if report.Deleted != 0 || report.Remaining != 0 {
		t.Fatalf("expected a no-op report, got %+v", report)
	}
}

func TestSweepIgnoresDirectories(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, 2)
	if err := os.Mkdir(filepath.Join(dir, "sub"), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	m := NewManager(dir, 5, time.Minute)
	report, err := m.Sweep(0)
	if err != nil {
		t.Fatalf("Sweep failed: %v", err)
	}
	if report.Deleted != 2 {
		t.Fatalf("expected 2 deleted, got %d", report.Deleted)
	}
	if !remaining(t, dir)["sub"] {
		t.Fatal("subdirectory was removed")
	}
}

func TestUsage(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.mp4"), make([]byte, 100), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "b.mp3"), make([]byte, 50), 0644); err != nil {
		t.Fatal(err)
	}

	m := NewManager(dir, 5, time.Minute)
	files, total, err := m.Usage()
	if err != nil {
		t.Fatalf("Usage failed: %v", err)
	}
	if files != 2 {
		t.Fatalf("expected 2 files, got %d", files)
	}
	if total != 150 {
		t.Fatalf("expected 150 bytes, got %d", total)
	}
}

func TestStartStop(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, 3)

	m := NewManager(dir, 1, 10*time.Millisecond)
	m.Start()
	time.Sleep(50 * time.Millisecond)
	m.Stop()

	if got := len(remaining(t, dir)); got != 1 {
		t.Fatalf("expected loop to prune to 1 file, got %d", got)
	}
}
