package models

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

// startTableWatch runs a watcher over path in the background and returns
// a reload counter plus a channel that receives after every reload. The
// watcher is torn down when the test ends.
func startTableWatch(t *testing.T, path string, settle time.Duration) (*atomic.Int32, chan struct{}) {
	t.Helper()

	tw := NewTableWatcher(path, nil)
	tw.Settle = settle

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	var reloads atomic.Int32
	fired := make(chan struct{}, 16)
	go func() {
		_ = tw.Run(ctx, func() error {
			reloads.Add(1)
			fired <- struct{}{}
			return nil
		})
	}()

	// Let Run register its directory watch before the test writes.
	time.Sleep(150 * time.Millisecond)
	return &reloads, fired
}

func TestTableWatcherReloadsOnEdit(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "models.yaml")
	if err := os.WriteFile(path, []byte("models: [gemini-3.0-flash]\n"), 0644); err != nil {
		t.Fatal(err)
	}

	_, fired := startTableWatch(t, path, 30*time.Millisecond)

	if err := os.WriteFile(path, []byte("models: [gemini-3.0-pro]\n"), 0644); err != nil {
		t.Fatal(err)
	}

	select {
	case <-fired:
	case <-time.After(3 * time.Second):
		t.Fatal("no reload after an edit to the table file")
	}
}

func TestTableWatcherIgnoresSiblingFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "models.yaml")
	if err := os.WriteFile(path, []byte("models: [gemini-3.0-flash]\n"), 0644); err != nil {
		t.Fatal(err)
	}

	reloads, _ := startTableWatch(t, path, 20*time.Millisecond)

	other := filepath.Join(dir, "unrelated.yaml")
	if err := os.WriteFile(other, []byte("noise: true\n"), 0644); err != nil {
		t.Fatal(err)
	}

	time.Sleep(250 * time.Millisecond)
	if got := reloads.Load(); got != 0 {
		t.Errorf("reload fired %d times for a sibling file, want 0", got)
	}
}

func TestTableWatcherCollapsesEditBursts(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "models.yaml")
	if err := os.WriteFile(path, []byte("models: [gemini-3.0-flash]\n"), 0644); err != nil {
		t.Fatal(err)
	}

	reloads, fired := startTableWatch(t, path, 100*time.Millisecond)

	for i := 0; i < 5; i++ {
		if err := os.WriteFile(path, []byte("models: [gemini-3.0-pro]\n"), 0644); err != nil {
			t.Fatal(err)
		}
		time.Sleep(10 * time.Millisecond)
	}

	select {
	case <-fired:
	case <-time.After(3 * time.Second):
		t.Fatal("no reload after an edit burst")
	}

	// The burst fits well inside one settle window, so a second reload
	// would mean the quiet period is not collapsing events.
	time.Sleep(300 * time.Millisecond)
	if got := reloads.Load(); got != 1 {
		t.Errorf("burst of 5 writes produced %d reloads, want 1", got)
	}
}

func TestTableWatcherFollowsRenameReplace(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "models.yaml")
	if err := os.WriteFile(path, []byte("models: [gemini-3.0-flash]\n"), 0644); err != nil {
		t.Fatal(err)
	}

	_, fired := startTableWatch(t, path, 30*time.Millisecond)

	// Save the way editors do: write a temp file, then rename it over
	// the original.
	tmp := filepath.Join(dir, ".models.yaml.tmp")
	if err := os.WriteFile(tmp, []byte("models: [gemini-3.0-pro]\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.Rename(tmp, path); err != nil {
		t.Fatal(err)
	}

	select {
	case <-fired:
	case <-time.After(3 * time.Second):
		t.Fatal("no reload after a rename-replace save")
	}
}

func TestTableWatcherStopsOnCancel(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "models.yaml")
	if err := os.WriteFile(path, []byte("models: [gemini-3.0-flash]\n"), 0644); err != nil {
		t.Fatal(err)
	}

	tw := NewTableWatcher(path, nil)
	ctx, cancel := context.WithCancel(context.Background())

	errCh := make(chan error, 1)
	go func() {
		errCh <- tw.Run(ctx, func() error { return nil })
	}()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		if err != nil {
			t.Errorf("Run() after cancel = %v, want nil", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after context cancellation")
	}
}

func TestTableWatcherRunMissingDirectory(t *testing.T) {
	tw := NewTableWatcher(filepath.Join(t.TempDir(), "absent", "models.yaml"), nil)
	if err := tw.Run(context.Background(), func() error { return nil }); err == nil {
		t.Fatal("Run() over a missing directory returned nil, want error")
	}
}
