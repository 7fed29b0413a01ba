// Package progress draws a terminal spinner for long running commands.
package progress

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// Tracker renders "<spinner> message [current/total]" until Finish.
type Tracker struct {
	w         io.Writer
	total     int
	current   int
	message   string
	unit      string
	mu        sync.Mutex
	startTime time.Time
	done      chan struct{}
	finished  chan struct{}
}

// New starts a tracker writing to w. unit names the counted items.
func New(w io.Writer, total int, message, unit string) *Tracker {
	p := &Tracker{
		w:         w,
		total:     total,
		message:   message,
		unit:      unit,
		startTime: time.Now(),
		done:      make(chan struct{}),
		finished:  make(chan struct{}),
	}
	go p.render()
	return p
}

func (p *Tracker) render() {
	defer close(p.finished)
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	spinner := []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
	frame := 0

	for {
		select {
		case <-p.done:
			p.mu.Lock()
			elapsed := time.Since(p.startTime)
			fmt.Fprintf(p.w, "\r✓ %s (%d %s, %s)          \n",
				p.message, p.current, p.unit, elapsed.Round(time.Millisecond))
			p.mu.Unlock()
			return

		case <-ticker.C:
			p.mu.Lock()
			if p.total > 0 {
				percent := float64(p.current) / float64(p.total) * 100
				fmt.Fprintf(p.w, "\r%s %s [%d/%d] %.0f%%  ",
					spinner[frame%len(spinner)], p.message, p.current, p.total, percent)
			} else {
				fmt.Fprintf(p.w, "\r%s %s [%d %s]  ",
					spinner[frame%len(spinner)], p.message, p.current, p.unit)
			}
			p.mu.Unlock()
			frame++
		}
	}
}

// Increment counts one finished item. Safe for concurrent use.
func (p *Tracker) Increment() {
	p.mu.Lock()
	p.current++
	p.mu.Unlock()
}

// SetCurrent overrides the counter.
func (p *Tracker) SetCurrent(n int) {
	p.mu.Lock()
	p.current = n
	p.mu.Unlock()
}

// Current returns the counter.
func (p *Tracker) Current() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

// Finish prints the summary line and waits for the renderer to exit.
func (p *Tracker) Finish() {
	close(p.done)
	<-p.finished
}
