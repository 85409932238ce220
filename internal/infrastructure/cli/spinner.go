package cli

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// Spinner displays an animated label while the model is working.
type Spinner struct {
	frames   []string
	label    string
	interval time.Duration
	writer   io.Writer
	stopChan chan struct{}
	wg       sync.WaitGroup
	once     sync.Once
}

// StartSpinner starts animating label on w and returns a stop function that is
// safe to call more than once.
func StartSpinner(w io.Writer, label string) func() {
	s := &Spinner{
		frames:   []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"},
		label:    label,
		interval: 80 * time.Millisecond,
		writer:   w,
		stopChan: make(chan struct{}),
	}
	s.start()
	return s.stop
}

func (s *Spinner) start() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		idx := 0
		for {
			fmt.Fprintf(s.writer, "\r%s %s", s.frames[idx%len(s.frames)], s.label)
			idx++
			select {
			case <-s.stopChan:
				fmt.Fprint(s.writer, "\r\033[K")
				return
			case <-ticker.C:
			}
		}
	}()
}

func (s *Spinner) stop() {
	s.once.Do(func() {
		close(s.stopChan)
		s.wg.Wait()
	})
}
