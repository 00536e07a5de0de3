package progress

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"
)

func TestIndicatorStartStop(t *testing.T) {
	var buf bytes.Buffer
	p := New(context.Background(), &buf)
	p.Update("trial 1/11: Model3")

	p.Start()

	// allow a few animation frames
	time.Sleep(300 * time.Millisecond)

	p.Stop()

	output := buf.String()
	if output == "" {
		t.Fatal("expected output to be written to buffer")
	}
	if !strings.Contains(output, "trial 1/11: Model3") {
		t.Error("expected status message in output")
	}
	if !strings.HasSuffix(output, "\r") {
		t.Error("expected output to end with a carriage return on non-terminal writers")
	}
}

func TestIndicatorUpdateWhileRunning(t *testing.T) {
	var buf bytes.Buffer
	p := New(context.Background(), &buf)

	p.Start()
	p.Update("trial 2/11: SVM")
	time.Sleep(300 * time.Millisecond)
	p.Stop()

	if !strings.Contains(buf.String(), "trial 2/11: SVM") {
		t.Error("expected updated message in output")
	}
}

func TestIndicatorDoubleStart(t *testing.T) {
	var buf bytes.Buffer
	p := New(context.Background(), &buf)

	p.Start()
	p.Start() // no-op on a running indicator
	p.Stop()
}

func TestIndicatorStopWithoutStart(t *testing.T) {
	var buf bytes.Buffer
	p := New(context.Background(), &buf)

	// stop without start should not hang or panic
	p.Stop()
	p.Stop()
}
