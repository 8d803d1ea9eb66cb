package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFileWatcher_DebouncesWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "jobs.csv")
	if err := os.WriteFile(path, []byte("job_title\n"), 0o644); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	w, err := New(path, 100*time.Millisecond)
	if err != nil {
		t.Fatalf("new watcher failed: %v", err)
	}
	defer w.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	changes := make(chan struct{}, 10)
	go w.Run(ctx, func() { changes <- struct{}{} })

	time.Sleep(50 * time.Millisecond)
	for i := 0; i < 3; i++ {
		os.WriteFile(path, []byte("job_title\nDeveloper\n"), 0o644)
	}
	os.WriteFile(filepath.Join(dir, "other.txt"), []byte("x"), 0o644)

	select {
	case <-changes:
	case <-ctx.Done():
		t.Fatal("timeout waiting for change")
	}
	select {
	case <-changes:
		t.Error("writes within the debounce window should trigger once")
	case <-time.After(400 * time.Millisecond):
	}
}

func TestFileWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	w, err := New(filepath.Join(dir, "jobs.csv"), 50*time.Millisecond)
	if err != nil {
		t.Fatalf("new watcher failed: %v", err)
	}
	defer w.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	changes := make(chan struct{}, 1)
	go w.Run(ctx, func() { changes <- struct{}{} })

	time.Sleep(50 * time.Millisecond)
	os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644)
	select {
	case <-changes:
		t.Error("unrelated file should not trigger")
	case <-time.After(300 * time.Millisecond):
	}
}
