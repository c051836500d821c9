package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func writeFile(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("%PDF-1.4"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestScanDirectory(t *testing.T) {
	root := t.TempDir()
	for _, p := range []string{
		"b.pdf",
		"a.PDF",
		"notes.txt",
		".hidden.pdf",
		".cache/c.pdf",
		"2024/d.pdf",
	} {
		writeFile(t, filepath.Join(root, p))
	}

	files, stats, err := ScanDirectory(root, true, nil)
	if err != nil {
		t.Fatalf("ScanDirectory: %v", err)
	}
	want := []string{
		filepath.Join(root, "2024", "d.pdf"),
		filepath.Join(root, "a.PDF"),
		filepath.Join(root, "b.pdf"),
	}
	if diff := cmp.Diff(want, files); diff != "" {
		t.Errorf("files (-want +got):\n%s", diff)
	}
	if stats.Matched != 3 || stats.Hidden != 2 {
		t.Errorf("stats = %+v", stats)
	}

	all, _, err := ScanDirectory(root, false, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 5 {
		t.Errorf("without hidden skip got %d files, want 5", len(all))
	}
}

func TestScanDirectoryErrors(t *testing.T) {
	if _, _, err := ScanDirectory(" ", true, nil); err == nil {
		t.Error("empty root must fail")
	}
	if _, _, err := ScanDirectory(filepath.Join(t.TempDir(), "missing"), true, nil); err == nil {
		t.Error("missing root must fail")
	}
}

func TestWatcherInitialScanAndNewFiles(t *testing.T) {
	root := t.TempDir()
	existing := filepath.Join(root, "old.pdf")
	writeFile(t, existing)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events, _, err := StartWatcher(ctx, WatchConfig{Roots: []string{root}, InitialScan: true, Debounce: 50 * time.Millisecond}, nil)
	if err != nil {
		t.Fatalf("StartWatcher: %v", err)
	}

	next := func() string {
		t.Helper()
		select {
		case p := <-events:
			return p
		case <-time.After(5 * time.Second):
			t.Fatal("timed out waiting for watcher event")
			return ""
		}
	}
	if got := next(); got != existing {
		t.Errorf("initial = %s, want %s", got, existing)
	}

	writeFile(t, filepath.Join(root, "ignored.txt"))
	fresh := filepath.Join(root, "new.pdf")
	writeFile(t, fresh)
	if got := next(); got != fresh {
		t.Errorf("event = %s, want %s", got, fresh)
	}

	cancel()
	for range events {
	}
}

func TestWatcherRequiresRoots(t *testing.T) {
	if _, _, err := StartWatcher(context.Background(), WatchConfig{}, nil); err == nil {
		t.Error("expected error without roots")
	}
}
