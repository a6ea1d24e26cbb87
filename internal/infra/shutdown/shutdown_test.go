package shutdown

import (
	"context"
	"errors"
	"sync"
	"syscall"
	"testing"
	"time"
)

func TestNewHandler(t *testing.T) {
	h := NewHandler(5 * time.Second)
	if h == nil {
		t.Fatal("NewHandler returned nil")
	}
	if h.timeout != 5*time.Second {
		t.Errorf("timeout = %v, want 5s", h.timeout)
	}
	if h.hooks == nil {
		t.Error("hooks should be initialized")
	}
	if h.done == nil {
		t.Error("done channel should be initialized")
	}
}

func TestHandler_Done(t *testing.T) {
	h := NewHandler(5 * time.Second)

	select {
	case <-h.Done():
		t.Error("Done channel should not be closed initially")
	default:
	}
}

func TestHandler_Wait_ReverseOrder(t *testing.T) {
	h := NewHandler(5 * time.Second)

	callOrder := make([]int, 0)
	var mu sync.Mutex
	for i := 1; i <= 3; i++ {
		h.OnShutdown("hook", func(ctx context.Context) error {
			mu.Lock()
			callOrder = append(callOrder, i)
			mu.Unlock()
			return nil
		})
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := h.Wait(ctx); err != nil {
		t.Errorf("Wait() returned error: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(callOrder) != 3 || callOrder[0] != 3 || callOrder[1] != 2 || callOrder[2] != 1 {
		t.Errorf("hooks called in wrong order: %v, want [3 2 1]", callOrder)
	}

	select {
	case <-h.Done():
	default:
		t.Error("Done channel should be closed after Wait completes")
	}
}

func TestHandler_Shutdown_HookError(t *testing.T) {
	h := NewHandler(5 * time.Second)

	expectedErr := errors.New("hook error")
	var ran bool

	h.OnShutdown("first", func(ctx context.Context) error {
		ran = true
		return nil
	})
	h.OnShutdown("failing", func(ctx context.Context) error {
		return expectedErr
	})

	err := h.Shutdown()
	if !errors.Is(err, expectedErr) {
		t.Errorf("Shutdown() = %v, want %v", err, expectedErr)
	}
	if !ran {
		t.Error("a failing hook stopped later hooks from running")
	}
}

func TestHandler_Shutdown_Once(t *testing.T) {
	h := NewHandler(5 * time.Second)

	var calls int
	h.OnShutdown("count", func(ctx context.Context) error {
		calls++
		return nil
	})

	h.Shutdown()
	h.Shutdown()

	if calls != 1 {
		t.Errorf("hook ran %d times, want 1", calls)
	}
}

func TestHandler_Shutdown_Timeout(t *testing.T) {
	h := NewHandler(20 * time.Millisecond)

	h.OnShutdown("slow", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})

	if err := h.Shutdown(); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Shutdown() = %v, want deadline exceeded", err)
	}
}

func TestHandler_Context_Signal(t *testing.T) {
	h := NewHandler(5 * time.Second)

	ctx, stop := h.Context(context.Background())
	defer stop()

	syscall.Kill(syscall.Getpid(), syscall.SIGTERM)

	select {
	case <-ctx.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("context was not cancelled by SIGTERM")
	}
}

func TestHandler_ConcurrentOnShutdown(t *testing.T) {
	h := NewHandler(5 * time.Second)

	var wg sync.WaitGroup
	numGoroutines := 10

	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			h.OnShutdown("noop", func(ctx context.Context) error {
				return nil
			})
		}()
	}

	wg.Wait()

	h.mu.Lock()
	if len(h.hooks) != numGoroutines {
		t.Errorf("expected %d hooks, got %d", numGoroutines, len(h.hooks))
	}
	h.mu.Unlock()
}
