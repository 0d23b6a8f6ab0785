package cli

import (
	"fmt"
	"os"
	"sync"
	"time"
)

// =============================================================================
// Spinner
// =============================================================================

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Spinner renders an animated progress indicator on stderr.
type Spinner struct {
	msg  string
	mu   sync.Mutex
	stop chan struct{}
	done chan struct{}
}

// newSpinner creates and starts a spinner with the given message.
func newSpinner(msg string) *Spinner {
	s := &Spinner{
		msg:  msg,
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
	go s.run()
	return s
}

func (s *Spinner) run() {
	defer close(s.done)
	ticker := time.NewTicker(80 * time.Millisecond)
	defer ticker.Stop()

	frame := 0
	for {
		select {
		case <-s.stop:
			fmt.Fprint(os.Stderr, "\r\033[K")
			return
		case <-ticker.C:
			s.mu.Lock()
			msg := s.msg
			s.mu.Unlock()
			fmt.Fprintf(os.Stderr, "\r%s %s",
				StyleInfo.Render(spinnerFrames[frame%len(spinnerFrames)]), msg)
			frame++
		}
	}
}

// SetMessage updates the spinner text.
func (s *Spinner) SetMessage(msg string) {
	s.mu.Lock()
	s.msg = msg
	s.mu.Unlock()
}

// Stop clears the spinner line.
func (s *Spinner) Stop() {
	close(s.stop)
	<-s.done
}

// StopWithSuccess clears the spinner and prints a success line.
func (s *Spinner) StopWithSuccess(msg string) {
	s.Stop()
	printSuccess(msg)
}

// StopWithError clears the spinner and prints an error line.
func (s *Spinner) StopWithError(msg string) {
	s.Stop()
	printError(msg)
}
