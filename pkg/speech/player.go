package speech

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"

	"github.com/teslashibe/go-docent/pkg/tts"
)

// Player plays a synthesized clip to completion.
type Player interface {
	Play(ctx context.Context, audio []byte, enc tts.Encoding) error
}

// CommandPlayer hands each clip to an external program such as afplay or
// ffplay. The clip is written to a temp file whose path is appended to Command.
type CommandPlayer struct {
	Command []string
	TempDir string
}

// NewCommandPlayer creates a player that runs command.
func NewCommandPlayer(command []string) *CommandPlayer {
	return &CommandPlayer{Command: command}
}

// Play blocks until the program exits or ctx is cancelled.
func (p *CommandPlayer) Play(ctx context.Context, audio []byte, enc tts.Encoding) error {
	if len(p.Command) == 0 {
		return errors.New("speech: no player command")
	}
	if len(audio) == 0 {
		return nil
	}

	f, err := os.CreateTemp(p.TempDir, "docent-*"+enc.Extension())
	if err != nil {
		return fmt.Errorf("speech: temp file: %w", err)
	}
	path := f.Name()
	defer os.Remove(path)

	if _, err := f.Write(audio); err != nil {
		f.Close()
		return fmt.Errorf("speech: write clip: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("speech: write clip: %w", err)
	}

	args := append(append([]string{}, p.Command[1:]...), path)
	cmd := exec.CommandContext(ctx, p.Command[0], args...)

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("speech: %s: %w", p.Command[0], err)
	}
	return nil
}

var _ Player = (*CommandPlayer)(nil)
