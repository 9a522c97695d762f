package ui

import (
	"fmt"
	"io"
	"time"
)

// Spinner animates a progress line for one-shot commands. The interactive
// app uses its own rendering.
type Spinner struct {
	out    io.Writer
	msg    chan string
	stop   chan struct{}
	done   chan struct{}
	frames []string
}

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// NewSpinner creates a spinner writing to out.
func NewSpinner(out io.Writer, msg string) *Spinner {
	s := &Spinner{
		out:    out,
		msg:    make(chan string, 1),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
		frames: spinnerFrames,
	}
	s.msg <- msg
	return s
}

// Start begins the animation in a goroutine.
func (s *Spinner) Start() {
	go func() {
		defer close(s.done)
		ticker := time.NewTicker(80 * time.Millisecond)
		defer ticker.Stop()

		var text string
		for i := 0; ; i++ {
			select {
			case m := <-s.msg:
				text = m
			default:
			}
			fmt.Fprintf(s.out, "\r%s  %-60s", StyleChain.Render(s.frames[i%len(s.frames)]), text)

			select {
			case <-s.stop:
				fmt.Fprintf(s.out, "\r%-66s\r", "")
				return
			case <-ticker.C:
			}
		}
	}()
}

// Update replaces the spinner text.
func (s *Spinner) Update(msg string) {
	select {
	case <-s.msg:
	default:
	}
	s.msg <- msg
}

// Stop halts the spinner and waits for it to clear the line.
func (s *Spinner) Stop() {
	close(s.stop)
	<-s.done
}

// StopWithMsg halts the spinner and prints a final line.
func (s *Spinner) StopWithMsg(msg string) {
	s.Stop()
	fmt.Fprintln(s.out, msg)
}
