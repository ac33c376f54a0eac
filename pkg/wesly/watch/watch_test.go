package watch

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestWatcherDebouncesChanges(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "main.wes")
	other := filepath.Join(dir, "other.wes")
	for _, f := range []string{target, other} {
		if err := os.WriteFile(f, []byte("var x = 1;"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	w, err := New([]string{target}, 50*time.Millisecond, quietLogger())
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changed := make(chan string, 10)
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, func(path string) { changed <- path })
	}()

	// unwatched files in the same directory are ignored
	if err := os.WriteFile(other, []byte("var y = 2;"), 0o644); err != nil {
		t.Fatal(err)
	}
	for i := range 3 {
		if err := os.WriteFile(target, []byte("var x = "+string(rune('2'+i))+";"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	select {
	case path := <-changed:
		abs, _ := filepath.Abs(target)
		if p, _ := filepath.Abs(path); p != abs {
			t.Errorf("expected change for %s, got %s", abs, path)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no change delivered")
	}

	// the burst of writes collapses into one callback
	select {
	case path := <-changed:
		t.Errorf("unexpected second change for %s", path)
	case <-time.After(300 * time.Millisecond):
	}
	if seq := w.ChangeSeq(); seq != 1 {
		t.Errorf("expected change sequence 1, got %d", seq)
	}

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestWatcherCloseEndsRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.wes")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	w, err := New([]string{path}, 0, nil)
	if err != nil {
		t.Fatal(err)
	}
	if w.debounce != DefaultDebounce {
		t.Errorf("expected default debounce, got %s", w.debounce)
	}

	done := make(chan error, 1)
	go func() { done <- w.Run(context.Background(), func(string) {}) }()
	w.Close()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("expected nil after close, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after Close")
	}
}

func TestNewMissingDirectory(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "gone", "a.wes")
	if _, err := New([]string{missing}, 0, quietLogger()); err == nil {
		t.Error("expected an error watching a missing directory")
	}
}
