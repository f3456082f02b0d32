package cli

import (
	"context"
	"testing"
	"time"
)

func TestSpinnerStartStop(t *testing.T) {
	s := newSpinner("Resolving dependencies...")
	s.Start()
	time.Sleep(100 * time.Millisecond)
	s.Stop()

	// Stop waits for the animation goroutine, so it must be gone by now.
	select {
	case <-s.stopped:
	default:
		t.Error("Stop() returned before the animation goroutine exited")
	}
}

func TestSpinnerStopIsIdempotent(t *testing.T) {
	s := newSpinner("Resolving dependencies...")
	s.Start()

	// Stop multiple times should not panic or block
	s.Stop()
	s.Stop()
	s.Stop()
}

func TestSpinnerContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := newSpinnerWithContext(ctx, "Resolving dependencies...")
	s.Start()

	cancel()

	select {
	case <-s.stopped:
	case <-time.After(time.Second):
		t.Fatal("animation goroutine did not exit on context cancellation")
	}

	// Stop after cancellation must return without blocking.
	s.Stop()
}

func TestSpinnerContextTimeout(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	s := newSpinnerWithContext(ctx, "Resolving dependencies...")
	s.Start()

	select {
	case <-s.stopped:
	case <-time.After(time.Second):
		t.Fatal("animation goroutine did not exit on context timeout")
	}
}

func TestSpinnerStopWithSuccess(t *testing.T) {
	s := newSpinner("Resolving dependencies...")
	s.Start()
	time.Sleep(50 * time.Millisecond)
	s.StopWithSuccess("Done")
}

func TestSpinnerStopWithError(t *testing.T) {
	s := newSpinner("Resolving dependencies...")
	s.Start()
	time.Sleep(50 * time.Millisecond)
	s.StopWithError("Failed")
}
