package output

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestNewSpinner(t *testing.T) {
	var buf bytes.Buffer
	s := NewSpinner(&buf, "Connecting")

	if s == nil {
		t.Fatal("NewSpinner returned nil")
	}
	if s.message != "Connecting" {
		t.Errorf("Spinner message = %q, want 'Connecting'", s.message)
	}
	if len(s.frames) == 0 {
		t.Error("Spinner frames should not be empty")
	}
}

func TestSpinner_StartStop(t *testing.T) {
	var buf bytes.Buffer
	s := NewSpinner(&buf, "Processing")

	s.Start()
	time.Sleep(150 * time.Millisecond)
	s.Stop()

	output := buf.String()
	if !strings.Contains(output, "Processing") {
		t.Error("Spinner output should contain the message")
	}
	if !strings.HasSuffix(output, "\r\033[K") {
		t.Errorf("Stop() should clear the line, got %q", output)
	}
}

func TestSpinner_Success(t *testing.T) {
	var buf bytes.Buffer
	s := NewSpinner(&buf, "Pinging")

	s.Start()
	s.Success("database reachable")

	if !strings.HasSuffix(buf.String(), "✓ database reachable\n") {
		t.Errorf("Success() output = %q", buf.String())
	}
}

func TestSpinner_Fail(t *testing.T) {
	var buf bytes.Buffer
	s := NewSpinner(&buf, "Pinging")

	s.Start()
	s.Fail("connection refused")

	if !strings.HasSuffix(buf.String(), "✗ connection refused\n") {
		t.Errorf("Fail() output = %q", buf.String())
	}
}

func TestSpinner_StopIdempotent(t *testing.T) {
	var buf bytes.Buffer
	s := NewSpinner(&buf, "Loading")

	s.Start()
	s.Success("done")
	before := buf.String()
	s.Stop()
	s.Fail("ignored")

	if buf.String() != before {
		t.Errorf("output changed after the spinner stopped: %q", buf.String())
	}
}

func TestSpinner_StopWithoutStart(t *testing.T) {
	var buf bytes.Buffer
	s := NewSpinner(&buf, "Loading")

	done := make(chan struct{})
	go func() {
		s.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop() blocked on a spinner that never started")
	}
}
