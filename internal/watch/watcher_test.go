package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
)

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return cond()
}

func TestWatcher_TriggersOnExportWrite(t *testing.T) {
	dir := t.TempDir()

	var calls atomic.Int32
	w := New(dir, func() { calls.Add(1) }, zap.NewNop()).WithDebounce(30 * time.Millisecond)
	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer w.Stop()

	if err := os.WriteFile(filepath.Join(dir, "products.yaml"), []byte("domain: data-product\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	if !waitFor(t, 2*time.Second, func() bool { return calls.Load() >= 1 }) {
		t.Fatal("expected a change callback after writing an export file")
	}
}

func TestWatcher_IgnoresNonYAML(t *testing.T) {
	dir := t.TempDir()

	var calls atomic.Int32
	w := New(dir, func() { calls.Add(1) }, zap.NewNop()).WithDebounce(30 * time.Millisecond)
	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer w.Stop()

	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	time.Sleep(150 * time.Millisecond)
	if calls.Load() != 0 {
		t.Errorf("non-YAML writes should not trigger callbacks, got %d", calls.Load())
	}
}

func TestWatcher_DebouncesBursts(t *testing.T) {
	dir := t.TempDir()

	var calls atomic.Int32
	w := New(dir, func() { calls.Add(1) }, zap.NewNop()).WithDebounce(100 * time.Millisecond)
	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer w.Stop()

	for i := 0; i < 5; i++ {
		if err := os.WriteFile(filepath.Join(dir, "products.yaml"), []byte("domain: data-product\n"), 0o600); err != nil {
			t.Fatalf("write: %v", err)
		}
		time.Sleep(10 * time.Millisecond)
	}

	if !waitFor(t, 2*time.Second, func() bool { return calls.Load() >= 1 }) {
		t.Fatal("expected at least one callback")
	}
	time.Sleep(200 * time.Millisecond)
	if got := calls.Load(); got > 2 {
		t.Errorf("burst of writes should debounce into few callbacks, got %d", got)
	}
}

func TestWatcher_MissingDir(t *testing.T) {
	w := New(filepath.Join(t.TempDir(), "nope"), func() {}, zap.NewNop())
	if err := w.Start(context.Background()); err == nil {
		w.Stop()
		t.Fatal("expected error for missing directory")
	}
}

func TestWatcher_StopDuringEventDelivery(t *testing.T) {
	dir := t.TempDir()

	// Stop while events are streaming in must shut down cleanly, never
	// crash the watcher goroutine.
	for i := 0; i < 50; i++ {
		w := New(dir, func() {}, zap.NewNop()).WithDebounce(5 * time.Millisecond)
		if err := w.Start(context.Background()); err != nil {
			t.Fatalf("Start: %v", err)
		}

		done := make(chan struct{})
		go func() {
			defer close(done)
			for j := 0; j < 20; j++ {
				_ = os.WriteFile(filepath.Join(dir, "products.yaml"), []byte("domain: data-product\n"), 0o600)
			}
		}()

		w.Stop()
		<-done
	}
}

func TestWatcher_StopIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	w := New(dir, func() {}, zap.NewNop())
	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	w.Stop()
	w.Stop()
}
