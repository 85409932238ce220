package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/peterh/liner"
	"golang.org/x/term"

	"github.com/neeleshseerapu/termagent/internal/domain"
	"github.com/neeleshseerapu/termagent/internal/ports"
)

// NewLineReader returns a line-editing reader when both stdin and stdout are
// terminals, and a plain buffered reader otherwise.
func NewLineReader(in *os.File, out *os.File) ports.LineReader {
	if term.IsTerminal(int(in.Fd())) && term.IsTerminal(int(out.Fd())) {
		return NewLinerReader()
	}
	return NewPlainReader(in, out)
}

// LinerReader reads with history and editing; Ctrl+C aborts the prompt.
type LinerReader struct {
	state *liner.State
}

// NewLinerReader puts the terminal under liner's control until Close.
func NewLinerReader() *LinerReader {
	state := liner.NewLiner()
	state.SetCtrlCAborts(true)
	state.SetCompleter(nil)
	return &LinerReader{state: state}
}

func (r *LinerReader) ReadLine(ctx context.Context, prompt string) (string, error) {
	if ctx.Err() != nil {
		return "", domain.ErrAborted
	}
	line, err := r.state.Prompt(prompt)
	if err != nil {
		if errors.Is(err, liner.ErrPromptAborted) {
			return "", domain.ErrAborted
		}
		return "", err
	}
	if strings.TrimSpace(line) != "" {
		r.state.AppendHistory(line)
	}
	return line, nil
}

func (r *LinerReader) Close() error {
	return r.state.Close()
}

// PlainReader reads newline-terminated input from any reader. Reads happen on
// a background goroutine so a pending ReadLine returns once ctx is cancelled.
type PlainReader struct {
	in    *bufio.Reader
	out   io.Writer
	once  sync.Once
	lines chan readResult
}

type readResult struct {
	line string
	err  error
}

// NewPlainReader prompts on out and reads from in.
func NewPlainReader(in io.Reader, out io.Writer) *PlainReader {
	return &PlainReader{in: bufio.NewReader(in), out: out, lines: make(chan readResult)}
}

func (r *PlainReader) ReadLine(ctx context.Context, prompt string) (string, error) {
	if ctx.Err() != nil {
		return "", domain.ErrAborted
	}
	fmt.Fprint(r.out, prompt)
	r.once.Do(func() { go r.pump() })

	select {
	case <-ctx.Done():
		return "", domain.ErrAborted
	case res, ok := <-r.lines:
		if !ok {
			return "", io.EOF
		}
		return res.line, res.err
	}
}

// pump feeds lines to ReadLine until the input fails, then closes lines.
func (r *PlainReader) pump() {
	defer close(r.lines)
	for {
		line, err := r.in.ReadString('\n')
		if line != "" {
			r.lines <- readResult{line: strings.TrimRight(line, "\r\n")}
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				r.lines <- readResult{err: err}
			}
			return
		}
	}
}

func (r *PlainReader) Close() error {
	return nil
}

var (
	_ ports.LineReader = (*LinerReader)(nil)
	_ ports.LineReader = (*PlainReader)(nil)
)
