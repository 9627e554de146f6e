package narration

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"time"
)

// Voice carries the delivery settings of the narrator.
type Voice struct {
	Lang   string
	Rate   float64
	Pitch  float64
	Volume float64
}

// DefaultVoice is a slightly slowed Spanish voice at 80% volume.
var DefaultVoice = Voice{Lang: "es-ES", Rate: 0.9, Pitch: 1.0, Volume: 0.8}

// TextSpeaker prints each utterance and holds it for as long as reading it
// aloud would take.
type TextSpeaker struct {
	w     io.Writer
	wpm   int
	voice Voice
}

// NewTextSpeaker writes to w, pacing at wpm words per minute scaled by the
// voice rate.
func NewTextSpeaker(w io.Writer, wpm int, voice Voice) *TextSpeaker {
	if wpm <= 0 {
		wpm = 150
	}
	if voice.Rate <= 0 {
		voice.Rate = 1
	}
	return &TextSpeaker{w: w, wpm: wpm, voice: voice}
}

// Duration returns how long text is held.
func (s *TextSpeaker) Duration(text string) time.Duration {
	words := len(strings.Fields(text))
	perMinute := float64(s.wpm) * s.voice.Rate
	return time.Duration(float64(words) / perMinute * float64(time.Minute))
}

// Speak implements Speaker.
func (s *TextSpeaker) Speak(ctx context.Context, text string) error {
	if _, err := fmt.Fprintf(s.w, "🔊 %s\n", text); err != nil {
		return err
	}
	t := time.NewTimer(s.Duration(text))
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// CommandSpeaker runs an external text-to-speech program per utterance,
// passing the text as the final argument. Interruption kills the process.
type CommandSpeaker struct {
	name string
	args []string
}

var errEmptyCommand = errors.New("empty speech command")

// NewCommandSpeaker parses a command line such as "espeak-ng -v es".
func NewCommandSpeaker(command string) (*CommandSpeaker, error) {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return nil, errEmptyCommand
	}
	if _, err := exec.LookPath(fields[0]); err != nil {
		return nil, fmt.Errorf("speech command: %w", err)
	}
	return &CommandSpeaker{name: fields[0], args: fields[1:]}, nil
}

// Speak implements Speaker.
func (s *CommandSpeaker) Speak(ctx context.Context, text string) error {
	args := append(append([]string(nil), s.args...), text)
	if err := exec.CommandContext(ctx, s.name, args...).Run(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("speech command: %w", err)
	}
	return nil
}
