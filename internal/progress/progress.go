// Package progress provides a terminal status line for long-running trial
// loops: a spinner frame plus the current trial/method message.
package progress

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"golang.org/x/term"
)

// Indicator animates a status line on a terminal. On non-terminal writers it
// stays silent except for a final carriage return, so redirected output is
// not polluted with control sequences.
type Indicator struct {
	frames  []string
	delay   time.Duration
	writer  io.Writer
	active  bool
	mu      sync.RWMutex
	ctx     context.Context
	cancel  context.CancelFunc
	message string
	wg      sync.WaitGroup
}

// New creates an indicator writing to w. ctx cancellation stops the
// animation goroutine.
func New(ctx context.Context, w io.Writer) *Indicator {
	ictx, cancel := context.WithCancel(ctx)
	return &Indicator{
		frames: []string{"|", "/", "-", "\\"},
		delay:  120 * time.Millisecond,
		writer: w,
		ctx:    ictx,
		cancel: cancel,
	}
}

// Start begins the animation. Calling Start on a running indicator is a
// no-op.
func (p *Indicator) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.active {
		return
	}
	p.active = true
	p.wg.Add(1)
	go p.run()
}

// Stop halts the animation and clears the status line.
func (p *Indicator) Stop() {
	p.mu.Lock()
	if !p.active {
		p.mu.Unlock()
		return
	}
	p.active = false
	p.cancel()
	p.mu.Unlock()

	p.wg.Wait()

	if f, ok := p.writer.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(p.writer, "\r\033[2K")
	} else {
		fmt.Fprint(p.writer, "\r")
	}
}

// Update replaces the status message; safe to call from the trial loop while
// the animation runs.
func (p *Indicator) Update(message string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.message = message
}

func (p *Indicator) run() {
	defer p.wg.Done()

	frame := 0
	ticker := time.NewTicker(p.delay)
	defer ticker.Stop()

	for {
		select {
		case <-p.ctx.Done():
			return
		case <-ticker.C:
			p.mu.RLock()
			f := p.frames[frame%len(p.frames)]
			msg := p.message
			p.mu.RUnlock()

			fmt.Fprintf(p.writer, "\r\033[2K%s %s", f, msg)
			frame++
		}
	}
}
