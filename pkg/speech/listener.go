// Package speech covers the visitor-facing audio edge of a tour: hearing what
// the visitor says and saying the robot's lines back.
package speech

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
)

var (
	// ErrNoSpeech means nothing was heard before the listen window closed.
	ErrNoSpeech = errors.New("speech: no speech detected")

	// ErrTranscription means audio was captured but could not be turned into text.
	ErrTranscription = errors.New("speech: transcription failed")
)

// Listener captures one visitor utterance per call.
type Listener interface {
	Listen(ctx context.Context) (string, error)
}

// ConsoleListener reads utterances as lines of text, one line per Listen.
// Lines are read by a single background goroutine so a cancelled Listen does
// not lose the next line.
type ConsoleListener struct {
	prompt  io.Writer
	timeout time.Duration

	once  sync.Once
	src   *bufio.Scanner
	lines chan string
	done  chan struct{}
	err   error
}

// NewConsoleListener reads from r. When prompt is non-nil a "You:" marker is
// written before each Listen. A zero timeout waits until ctx is done.
func NewConsoleListener(r io.Reader, prompt io.Writer, timeout time.Duration) *ConsoleListener {
	return &ConsoleListener{
		prompt:  prompt,
		timeout: timeout,
		src:     bufio.NewScanner(r),
		lines:   make(chan string),
		done:    make(chan struct{}),
	}
}

func (l *ConsoleListener) start() {
	go func() {
		defer close(l.done)
		for l.src.Scan() {
			l.lines <- l.src.Text()
		}
		if err := l.src.Err(); err != nil {
			l.err = err
		} else {
			l.err = io.EOF
		}
	}()
}

// Listen returns the next line. A closed input yields ErrNoSpeech wrapping
// io.EOF, a failing input ErrTranscription wrapping the read error, and an
// expired window ErrNoSpeech.
func (l *ConsoleListener) Listen(ctx context.Context) (string, error) {
	l.once.Do(l.start)

	if l.prompt != nil {
		color.New(color.FgGreen, color.Bold).Fprint(l.prompt, "You: ")
	}

	var timeout <-chan time.Time
	if l.timeout > 0 {
		t := time.NewTimer(l.timeout)
		defer t.Stop()
		timeout = t.C
	}

	select {
	case line := <-l.lines:
		return strings.TrimSpace(line), nil
	case <-l.done:
		if errors.Is(l.err, io.EOF) {
			return "", fmt.Errorf("%w: %w", ErrNoSpeech, l.err)
		}
		return "", fmt.Errorf("%w: %w", ErrTranscription, l.err)
	case <-timeout:
		return "", ErrNoSpeech
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// ScriptListener replays a fixed list of utterances. An empty entry stands for
// silence. Once the script runs out every call returns ErrNoSpeech.
type ScriptListener struct {
	mu    sync.Mutex
	lines []string
	pos   int
}

// NewScriptListener creates a listener that plays lines in order.
func NewScriptListener(lines ...string) *ScriptListener {
	return &ScriptListener{lines: lines}
}

// ParseScript splits text into one utterance per line. Lines starting with '#'
// are comments; a line reading "<silence>" becomes an empty utterance.
func ParseScript(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case line == "" || strings.HasPrefix(line, "#"):
			continue
		case strings.EqualFold(line, "<silence>"):
			out = append(out, "")
		default:
			out = append(out, line)
		}
	}
	return out
}

// Listen returns the next scripted utterance.
func (s *ScriptListener) Listen(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pos >= len(s.lines) {
		return "", ErrNoSpeech
	}
	line := s.lines[s.pos]
	s.pos++
	if line == "" {
		return "", ErrNoSpeech
	}
	return line, nil
}

// Remaining reports how many utterances have not been played.
func (s *ScriptListener) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.lines) - s.pos
}

var (
	_ Listener = (*ConsoleListener)(nil)
	_ Listener = (*ScriptListener)(nil)
)
