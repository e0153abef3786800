package inbox

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

// eventually polls fn every tick until it returns true or timeout elapses.
func eventually(t *testing.T, timeout, tick time.Duration, fn func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(tick)
	}
	t.Error(msg)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestWatch_AnnouncesNewPDF(t *testing.T) {
	dir := t.TempDir()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	var arrived []string

	go Watch(ctx, dir, testLogger(), func(path string) {
		mu.Lock()
		arrived = append(arrived, path)
		mu.Unlock()
	})

	time.Sleep(100 * time.Millisecond)

	target := filepath.Join(dir, "taxcard.pdf")
	_ = os.WriteFile(target, []byte("%PDF-1.4"), 0o644)

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		mu.Lock()
		defer mu.Unlock()
		for _, p := range arrived {
			if p == target {
				return true
			}
		}
		return false
	}, "pdf arrival was not announced")
}

func TestWatch_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	var arrived []string

	go Watch(ctx, dir, testLogger(), func(path string) {
		mu.Lock()
		arrived = append(arrived, path)
		mu.Unlock()
	})

	time.Sleep(100 * time.Millisecond)

	_ = os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644)

	// Give the settle window plenty of time to fire if it was going to.
	time.Sleep(3 * settleDelay)

	mu.Lock()
	defer mu.Unlock()
	if len(arrived) != 0 {
		t.Errorf("unexpected arrivals: %v", arrived)
	}
}

func TestWatch_StopsOnCancel(t *testing.T) {
	dir := t.TempDir()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, dir, testLogger(), nil)
	}()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Watch returned error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Watch did not stop after cancellation")
	}
}
