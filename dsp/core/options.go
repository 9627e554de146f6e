package core

// ProcessorConfig defines common rendering settings shared by the graph,
// the signal generators and the offline tools.
type ProcessorConfig struct {
	SampleRate float64
	// BlockSize is the render quantum in frames.
	BlockSize int
	Channels  int
}

// ProcessorOption mutates a ProcessorConfig.
type ProcessorOption func(*ProcessorConfig)

// DefaultProcessorConfig returns the real-time defaults: 44.1 kHz stereo
// rendered in 128-frame quanta.
func DefaultProcessorConfig() ProcessorConfig {
	return ProcessorConfig{
		SampleRate: 44100,
		BlockSize:  128,
		Channels:   2,
	}
}

// WithSampleRate sets the processing sample rate.
func WithSampleRate(sampleRate float64) ProcessorOption {
	return func(cfg *ProcessorConfig) {
		if sampleRate > 0 {
			cfg.SampleRate = sampleRate
		}
	}
}

// WithBlockSize sets the render quantum.
func WithBlockSize(blockSize int) ProcessorOption {
	return func(cfg *ProcessorConfig) {
		if blockSize > 0 {
			cfg.BlockSize = blockSize
		}
	}
}

// ApplyProcessorOptions applies zero or more options to the default config.
func ApplyProcessorOptions(opts ...ProcessorOption) ProcessorConfig {
	cfg := DefaultProcessorConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// SecondsToFrames converts a duration to a whole number of frames,
// rounding to the nearest frame. Negative durations map to zero.
func (cfg ProcessorConfig) SecondsToFrames(seconds float64) int {
	if seconds <= 0 || cfg.SampleRate <= 0 {
		return 0
	}
	return int(seconds*cfg.SampleRate + 0.5)
}
