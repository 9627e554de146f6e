// Package config loads the host configuration from QS_* environment
// variables.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/caarlos0/env/v11"
)

// Audio backends accepted by AudioBackend.
const (
	BackendOto      = "oto"
	BackendHeadless = "headless"
)

// Config is the runtime configuration of the interactive host.
type Config struct {
	MeasureURL     string        `env:"QS_MEASURE_URL"     envDefault:"http://127.0.0.1:5000/api/measure"`
	MeasureTimeout time.Duration `env:"QS_MEASURE_TIMEOUT" envDefault:"5s"`
	SampleRate     int           `env:"QS_SAMPLE_RATE"     envDefault:"44100"`
	AudioBackend   string        `env:"QS_AUDIO_BACKEND"   envDefault:"oto"`
	Locale         string        `env:"QS_LOCALE"          envDefault:"es"`
	// SpeechCommand is an optional text-to-speech program; the text is
	// appended as the last argument.
	SpeechCommand string `env:"QS_SPEECH_COMMAND"`
	SpeechWPM     int    `env:"QS_SPEECH_WPM"      envDefault:"150"`
	// LevelsFile overrides the embedded level script.
	LevelsFile   string `env:"QS_LEVELS_FILE"`
	OTelEndpoint string `env:"QS_OTEL_ENDPOINT"`
	Verbose      bool   `env:"QS_LOG_VERBOSE"`
}

var errInvalid = errors.New("invalid config")

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load parses and validates the environment.
func Load() (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks value ranges that the env tags cannot express.
func (c Config) Validate() error {
	u, err := url.Parse(c.MeasureURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: QS_MEASURE_URL must be an http(s) URL: %q", errInvalid, c.MeasureURL)
	}
	if c.MeasureTimeout <= 0 {
		return fmt.Errorf("%w: QS_MEASURE_TIMEOUT must be > 0: %s", errInvalid, c.MeasureTimeout)
	}
	if c.SampleRate < 8000 || c.SampleRate > 192000 {
		return fmt.Errorf("%w: QS_SAMPLE_RATE out of range: %d", errInvalid, c.SampleRate)
	}
	if c.AudioBackend != BackendOto && c.AudioBackend != BackendHeadless {
		return fmt.Errorf("%w: QS_AUDIO_BACKEND must be %q or %q: %q", errInvalid, BackendOto, BackendHeadless, c.AudioBackend)
	}
	if c.SpeechWPM <= 0 {
		return fmt.Errorf("%w: QS_SPEECH_WPM must be > 0: %d", errInvalid, c.SpeechWPM)
	}
	return nil
}
