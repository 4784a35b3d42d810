package speech

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"testing/iotest"
	"time"

	"github.com/teslashibe/go-docent/pkg/tts"
)

func TestConsoleListener(t *testing.T) {
	ctx := context.Background()
	var prompt bytes.Buffer
	l := NewConsoleListener(strings.NewReader("  tell me about space  \n\nyes\n"), &prompt, time.Second)

	want := []string{"tell me about space", "", "yes"}
	for i, w := range want {
		got, err := l.Listen(ctx)
		if err != nil {
			t.Fatalf("Listen %d: %v", i, err)
		}
		if got != w {
			t.Errorf("Listen %d = %q, want %q", i, got, w)
		}
	}

	_, err := l.Listen(ctx)
	if !errors.Is(err, ErrNoSpeech) || !errors.Is(err, io.EOF) {
		t.Errorf("Listen after EOF = %v", err)
	}
	if strings.Count(prompt.String(), "You: ") != 4 {
		t.Errorf("prompt = %q", prompt.String())
	}
}

func TestConsoleListenerReadError(t *testing.T) {
	unplugged := errors.New("input device unplugged")
	l := NewConsoleListener(iotest.ErrReader(unplugged), nil, time.Second)

	_, err := l.Listen(context.Background())
	if !errors.Is(err, ErrTranscription) || !errors.Is(err, unplugged) {
		t.Errorf("Listen = %v, want ErrTranscription wrapping the read error", err)
	}
	if errors.Is(err, ErrNoSpeech) {
		t.Errorf("read error reported as silence: %v", err)
	}
}

func TestConsoleListenerTimeout(t *testing.T) {
	r, w := io.Pipe()
	defer w.Close()
	l := NewConsoleListener(r, nil, 20*time.Millisecond)

	if _, err := l.Listen(context.Background()); !errors.Is(err, ErrNoSpeech) {
		t.Fatalf("Listen = %v, want ErrNoSpeech", err)
	}

	// A line typed after a timeout is delivered to the next Listen.
	go w.Write([]byte("late answer\n"))
	l.timeout = time.Second
	got, err := l.Listen(context.Background())
	if err != nil || got != "late answer" {
		t.Errorf("Listen = %q, %v", got, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := l.Listen(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Listen with cancelled ctx = %v", err)
	}
}

func TestScriptListener(t *testing.T) {
	lines := ParseScript("# visitor\nI like dinosaurs\n\n<silence>\nyes\n")
	if len(lines) != 3 || lines[1] != "" {
		t.Fatalf("ParseScript = %q", lines)
	}

	l := NewScriptListener(lines...)
	ctx := context.Background()

	if got, err := l.Listen(ctx); err != nil || got != "I like dinosaurs" {
		t.Errorf("first = %q, %v", got, err)
	}
	if _, err := l.Listen(ctx); !errors.Is(err, ErrNoSpeech) {
		t.Errorf("silence = %v", err)
	}
	if got, _ := l.Listen(ctx); got != "yes" {
		t.Errorf("third = %q", got)
	}
	if l.Remaining() != 0 {
		t.Errorf("Remaining = %d", l.Remaining())
	}
	if _, err := l.Listen(ctx); !errors.Is(err, ErrNoSpeech) {
		t.Errorf("exhausted = %v", err)
	}
}

func TestConsoleSpeaker(t *testing.T) {
	var out bytes.Buffer
	s := NewConsoleSpeaker(&out)

	if err := s.Say(context.Background(), "  Welcome to the museum.  "); err != nil {
		t.Fatalf("Say: %v", err)
	}
	s.Say(context.Background(), "   ")

	got := out.String()
	if !strings.Contains(got, "Bot: ") || !strings.HasSuffix(got, "Welcome to the museum.\n") {
		t.Errorf("output = %q", got)
	}
	if strings.Count(got, "Bot: ") != 1 {
		t.Errorf("blank line should be skipped: %q", got)
	}
}

type recordingPlayer struct {
	clips [][]byte
	err   error
}

func (p *recordingPlayer) Play(ctx context.Context, audio []byte, enc tts.Encoding) error {
	p.clips = append(p.clips, audio)
	return p.err
}

func TestVoiceSpeaker(t *testing.T) {
	ctx := context.Background()

	t.Run("synthesizes and plays", func(t *testing.T) {
		provider := tts.NewMock()
		player := &recordingPlayer{}
		echo := NewTranscript(nil)
		s := NewVoiceSpeaker(provider, player, echo, nil)

		if err := s.Say(ctx, "Here we are!"); err != nil {
			t.Fatalf("Say: %v", err)
		}
		if provider.LastText() != "Here we are!" || len(player.clips) != 1 {
			t.Errorf("tts calls %d, clips %d", provider.CallCount("Synthesize"), len(player.clips))
		}
		if lines := echo.Lines(); len(lines) != 1 || lines[0] != "Here we are!" {
			t.Errorf("echo = %q", lines)
		}

		s.Say(ctx, "")
		if provider.CallCount("Synthesize") != 1 {
			t.Error("blank text should not be synthesized")
		}
	})

	t.Run("synthesis error", func(t *testing.T) {
		boom := errors.New("quota")
		player := &recordingPlayer{}
		err := NewVoiceSpeaker(tts.WithError(boom), player, nil, nil).Say(ctx, "hi")
		if !errors.Is(err, boom) || len(player.clips) != 0 {
			t.Errorf("err = %v, clips = %d", err, len(player.clips))
		}
	})

	t.Run("playback error", func(t *testing.T) {
		boom := errors.New("no device")
		err := NewVoiceSpeaker(tts.NewMock(), &recordingPlayer{err: boom}, nil, nil).Say(ctx, "hi")
		if !errors.Is(err, boom) {
			t.Errorf("err = %v", err)
		}
	})
}

func TestTranscript(t *testing.T) {
	var out bytes.Buffer
	tr := NewTranscript(NewConsoleSpeaker(&out))
	tr.Say(context.Background(), "one")
	tr.Say(context.Background(), "two")

	if got := tr.Lines(); len(got) != 2 || got[1] != "two" {
		t.Errorf("Lines = %q", got)
	}
	if !strings.Contains(out.String(), "two") {
		t.Errorf("inner speaker not called: %q", out.String())
	}
}

func TestCommandPlayer(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	ctx := context.Background()
	dir := t.TempDir()
	copied := filepath.Join(dir, "copy")

	p := NewCommandPlayer([]string{"sh", "-c", `cp "$0" "` + copied + `"`})
	p.TempDir = dir

	if err := p.Play(ctx, []byte("clip"), tts.EncodingWAV); err != nil {
		t.Fatalf("Play: %v", err)
	}
	data, err := os.ReadFile(copied)
	if err != nil || string(data) != "clip" {
		t.Errorf("copied clip = %q, %v", data, err)
	}

	matches, _ := filepath.Glob(filepath.Join(dir, "docent-*"))
	if len(matches) != 0 {
		t.Errorf("temp clip not removed: %v", matches)
	}

	if err := NewCommandPlayer([]string{"sh", "-c", "exit 3"}).Play(ctx, []byte("x"), tts.EncodingMP3); err == nil {
		t.Error("failing command should error")
	}
	if err := NewCommandPlayer(nil).Play(ctx, []byte("x"), tts.EncodingMP3); err == nil {
		t.Error("empty command should error")
	}
	if err := NewCommandPlayer([]string{"sh", "-c", "exit 3"}).Play(ctx, nil, tts.EncodingMP3); err != nil {
		t.Errorf("empty clip should be a no-op: %v", err)
	}
}
