// Command quantumsounds plays the quantum audio game in a terminal.
//
// Keys:
//
//	Space        start / measure
//	Left, Right  move the probability (navigation level)
//	h            ask the assistant (type the question, Enter)
//	q, Ctrl-C    quit
//
// Configuration is read from QS_* environment variables; see
// internal/config.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/term"
	"golang.org/x/text/language"

	"github.com/cwbudde/quantum-sounds/engine"
	"github.com/cwbudde/quantum-sounds/internal/assistant"
	"github.com/cwbudde/quantum-sounds/internal/config"
	"github.com/cwbudde/quantum-sounds/internal/device"
	"github.com/cwbudde/quantum-sounds/internal/game"
	"github.com/cwbudde/quantum-sounds/internal/levels"
	"github.com/cwbudde/quantum-sounds/internal/measurement"
	"github.com/cwbudde/quantum-sounds/internal/narration"
	"github.com/cwbudde/quantum-sounds/internal/telemetry"
)

const statusPeriod = 250 * time.Millisecond

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "quantumsounds: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	fd := int(os.Stdin.Fd())
	var out io.Writer = os.Stdout
	var logOut io.Writer = os.Stderr
	if term.IsTerminal(fd) {
		old, err := term.MakeRaw(fd)
		if err != nil {
			return fmt.Errorf("raw terminal: %w", err)
		}
		defer func() { _ = term.Restore(fd, old) }()
		out = crlf{os.Stdout}
		logOut = crlf{os.Stderr}
	}

	logger := log.New(logOut, "quantumsounds: ", log.LstdFlags)
	detail := log.New(io.Discard, "", 0)
	if cfg.Verbose {
		detail = logger
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdown, err := telemetry.Setup(ctx, "quantumsounds", cfg.OTelEndpoint)
	if err != nil {
		logger.Printf("telemetry disabled: %v", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = shutdown(sctx)
	}()

	lv, err := loadLevels(cfg.LevelsFile)
	if err != nil {
		return err
	}

	tag, err := language.Parse(cfg.Locale)
	if err != nil {
		logger.Printf("locale %q: %v, using es", cfg.Locale, err)
		tag = language.Spanish
	}

	eng := engine.New(
		engine.WithLogger(logger),
		engine.WithSampleRate(float64(cfg.SampleRate)),
		engine.WithOutputs(outputs(cfg)...),
		engine.WithSeed(time.Now().UnixNano()),
	)
	defer func() { _ = eng.Close() }()

	queue := narration.New(speaker(cfg, out, logger), narration.WithLogger(detail))
	defer queue.Close()

	client := measurement.NewClient(cfg.MeasureURL, measurement.WithTimeout(cfg.MeasureTimeout))

	ctrl, err := game.New(eng, queue, client, lv,
		game.WithLogger(logger),
		game.WithLanguage(tag),
		game.WithAssistant(assistant.New(tag)),
	)
	if err != nil {
		return err
	}
	defer ctrl.Close()

	return loop(ctx, ctrl, out)
}

func loadLevels(path string) ([]levels.Level, error) {
	if path == "" {
		return levels.Default()
	}
	return levels.Load(path)
}

// outputs lists the audio backends in the order they are tried. The oto
// backend falls back to a headless clock so the game keeps running without
// a sound card.
func outputs(cfg config.Config) []engine.Output {
	headless := device.NewHeadless(cfg.SampleRate, 0)
	if cfg.AudioBackend == config.BackendHeadless {
		return []engine.Output{headless}
	}
	return []engine.Output{device.NewOto(cfg.SampleRate), headless}
}

func speaker(cfg config.Config, out io.Writer, logger *log.Logger) narration.Speaker {
	voice := narration.DefaultVoice
	if cfg.SpeechCommand != "" {
		s, err := narration.NewCommandSpeaker(cfg.SpeechCommand)
		if err == nil {
			return s
		}
		logger.Printf("speech command: %v, printing narration instead", err)
	}
	return narration.NewTextSpeaker(out, cfg.SpeechWPM, voice)
}

type keyEvent struct {
	key  key
	text string
	err  error
}

func loop(ctx context.Context, ctrl *game.Controller, out io.Writer) error {
	events := make(chan keyEvent)
	go readKeys(ctx, bufio.NewReader(os.Stdin), out, events)

	tick := time.NewTicker(statusPeriod)
	defer tick.Stop()

	last := ""
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-tick.C:
			line := ctrl.StatusLine() + " | " + ctrl.Prompt()
			if line != last {
				fmt.Fprintf(out, "\r\x1b[K%s", line)
				last = line
			}
		case ev := <-events:
			if ev.err != nil {
				if errors.Is(ev.err, io.EOF) {
					return nil
				}
				return fmt.Errorf("read keys: %w", ev.err)
			}
			switch ev.key {
			case keyQuit:
				fmt.Fprint(out, "\n")
				return nil
			case keyAction:
				ctrl.Action()
			case keyLeft:
				ctrl.Left()
			case keyRight:
				ctrl.Right()
			case keyAssist:
				if ev.text != "" && !ctrl.Assist(ev.text) {
					fmt.Fprint(out, "?\n")
				}
			}
			last = ""
		}
	}
}

// readKeys forwards keypresses until an error. After h it collects the
// typed question.
func readKeys(ctx context.Context, r *bufio.Reader, out io.Writer, events chan<- keyEvent) {
	for {
		k, err := readKey(r)
		ev := keyEvent{key: k, err: err}
		if err == nil && k == keyAssist {
			fmt.Fprint(out, "\r\x1b[K> ")
			ev.text, ev.err = readLine(r, out)
		}

		select {
		case events <- ev:
		case <-ctx.Done():
			return
		}
		if ev.err != nil {
			return
		}
	}
}
