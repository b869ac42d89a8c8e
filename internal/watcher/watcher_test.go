package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func TestWatchFiresOnceForBurst(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "family.yaml")
	if err := os.WriteFile(path, []byte("people: []\n"), 0644); err != nil {
		t.Fatal(err)
	}

	var calls atomic.Int32
	fired := make(chan struct{}, 10)
	w := New(path, func() {
		calls.Add(1)
		fired <- struct{}{}
	}).WithDebounce(100 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Watch(ctx) }()
	time.Sleep(100 * time.Millisecond)

	for i := 0; i < 5; i++ {
		if err := os.WriteFile(path, []byte("people: []\n"), 0644); err != nil {
			t.Fatal(err)
		}
	}
	// Unrelated files are ignored.
	os.WriteFile(filepath.Join(dir, "other.yaml"), []byte("x"), 0644)

	select {
	case <-fired:
	case <-time.After(3 * time.Second):
		t.Fatal("onChange not called")
	}
	time.Sleep(300 * time.Millisecond)
	if n := calls.Load(); n != 1 {
		t.Errorf("onChange called %d times, want 1", n)
	}

	cancel()
	select {
	case err := <-done:
		if err != context.Canceled {
			t.Errorf("Watch returned %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Watch did not stop")
	}
}

func TestWatchCancelDropsPendingChange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "family.yaml")
	if err := os.WriteFile(path, []byte("people: []\n"), 0644); err != nil {
		t.Fatal(err)
	}

	var calls atomic.Int32
	w := New(path, func() { calls.Add(1) }).WithDebounce(300 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Watch(ctx) }()
	time.Sleep(100 * time.Millisecond)

	if err := os.WriteFile(path, []byte("people: []\n"), 0644); err != nil {
		t.Fatal(err)
	}
	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Watch did not stop")
	}

	time.Sleep(500 * time.Millisecond)
	if n := calls.Load(); n != 0 {
		t.Errorf("onChange called %d times after cancel, want 0", n)
	}
}

func TestWatchMissingDir(t *testing.T) {
	w := New(filepath.Join(t.TempDir(), "nope", "family.yaml"), func() {})
	if err := w.Watch(context.Background()); err == nil {
		t.Error("expected error for missing directory")
	}
}
