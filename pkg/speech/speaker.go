package speech

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/fatih/color"

	"github.com/teslashibe/go-docent/pkg/tts"
)

// Speaker says one line of robot dialogue.
type Speaker interface {
	Say(ctx context.Context, text string) error
}

// ConsoleSpeaker prints each line after a "Bot:" marker.
type ConsoleSpeaker struct {
	mu     sync.Mutex
	w      io.Writer
	prefix *color.Color
}

// NewConsoleSpeaker writes to w.
func NewConsoleSpeaker(w io.Writer) *ConsoleSpeaker {
	return &ConsoleSpeaker{w: w, prefix: color.New(color.FgCyan, color.Bold)}
}

// Say prints text. Blank lines are skipped.
func (s *ConsoleSpeaker) Say(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.prefix.Fprint(s.w, "Bot: ")
	_, err := fmt.Fprintln(s.w, text)
	return err
}

// VoiceSpeaker synthesizes each line and plays it. When Echo is set the line
// is also printed before synthesis starts.
type VoiceSpeaker struct {
	tts    tts.Provider
	player Player
	echo   Speaker
	logger *slog.Logger
}

// NewVoiceSpeaker creates a speaker; echo may be nil.
func NewVoiceSpeaker(p tts.Provider, player Player, echo Speaker, logger *slog.Logger) *VoiceSpeaker {
	if logger == nil {
		logger = slog.Default()
	}
	return &VoiceSpeaker{
		tts:    p,
		player: player,
		echo:   echo,
		logger: logger.With("component", "speech.voice"),
	}
}

// Say prints, synthesizes and plays text, in that order.
func (s *VoiceSpeaker) Say(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if s.echo != nil {
		if err := s.echo.Say(ctx, text); err != nil {
			s.logger.Warn("echo failed", "error", err)
		}
	}

	res, err := s.tts.Synthesize(ctx, text)
	if err != nil {
		return fmt.Errorf("speech: synthesize: %w", err)
	}
	s.logger.Debug("synthesized", "chars", res.CharCount, "bytes", len(res.Audio), "latency_ms", res.LatencyMs)

	if err := s.player.Play(ctx, res.Audio, res.Encoding); err != nil {
		return fmt.Errorf("speech: play: %w", err)
	}
	return nil
}

// Transcript records every line said through it and forwards to an inner
// speaker, if any.
type Transcript struct {
	inner Speaker

	mu    sync.Mutex
	lines []string
}

// NewTranscript wraps inner, which may be nil.
func NewTranscript(inner Speaker) *Transcript {
	return &Transcript{inner: inner}
}

// Say records text and forwards it.
func (t *Transcript) Say(ctx context.Context, text string) error {
	t.mu.Lock()
	t.lines = append(t.lines, text)
	t.mu.Unlock()
	if t.inner == nil {
		return nil
	}
	return t.inner.Say(ctx, text)
}

// Lines returns a copy of everything said so far.
func (t *Transcript) Lines() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]string, len(t.lines))
	copy(out, t.lines)
	return out
}

var (
	_ Speaker = (*ConsoleSpeaker)(nil)
	_ Speaker = (*VoiceSpeaker)(nil)
	_ Speaker = (*Transcript)(nil)
)
