// Package measurement talks to the quantum measurement service, which
// collapses a single qubit prepared for a requested bias and reports the
// measured basis state.
package measurement

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/cwbudde/quantum-sounds/internal/measurement"

// Mode selects how the service prepares the qubit.
type Mode string

const (
	// ModeSuperposition applies a Hadamard gate; the probability is ignored.
	ModeSuperposition Mode = "superposition"
	// ModeNavigation rotates the qubit so that P(|1>) equals the probability.
	ModeNavigation Mode = "navigation"
	// ModeTunneling prepares the qubit like navigation.
	ModeTunneling Mode = "tunneling"
)

var (
	// ErrMeasurementFailed is returned when the service reports success=false
	// or answers with an error status.
	ErrMeasurementFailed = errors.New("measurement failed")
	// ErrInvalidProbability is returned for probabilities outside [0, 1].
	ErrInvalidProbability = errors.New("probability must be within [0, 1]")
	// ErrInvalidMode is returned for unknown modes.
	ErrInvalidMode = errors.New("unknown measurement mode")
)

// Request mirrors the service request JSON.
type Request struct {
	Mode        Mode    `json:"mode"`
	Probability float64 `json:"probability"`
}

// Validate checks the mode and probability range.
func (r Request) Validate() error {
	switch r.Mode {
	case ModeSuperposition, ModeNavigation, ModeTunneling:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidMode, r.Mode)
	}
	if !(r.Probability >= 0 && r.Probability <= 1) {
		return fmt.Errorf("%w: %v", ErrInvalidProbability, r.Probability)
	}
	return nil
}

// Outcome mirrors the service response JSON.
type Outcome struct {
	Success           bool    `json:"success"`
	Result            int     `json:"result"`
	Mode              Mode    `json:"mode,omitempty"`
	ProbabilityTarget float64 `json:"probability_target,omitempty"`
	Error             string  `json:"error,omitempty"`
}

// Measurer requests one measurement.
type Measurer interface {
	Measure(ctx context.Context, req Request) (Outcome, error)
}

// MeasurerFunc adapts a function to Measurer.
type MeasurerFunc func(ctx context.Context, req Request) (Outcome, error)

// Measure calls f.
func (f MeasurerFunc) Measure(ctx context.Context, req Request) (Outcome, error) {
	return f(ctx, req)
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		if c != nil {
			cl.client = c
		}
	}
}

// WithTimeout bounds every request.
func WithTimeout(d time.Duration) Option {
	return func(cl *Client) {
		cl.timeout = d
	}
}

// WithTracerProvider sets the tracer provider used for request spans.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(cl *Client) {
		if tp != nil {
			cl.tracer = tp.Tracer(instrumentationName)
		}
	}
}

// Client calls the measurement endpoint over HTTP.
type Client struct {
	url     string
	client  *http.Client
	timeout time.Duration
	tracer  trace.Tracer
}

// NewClient creates a client that POSTs to url.
func NewClient(url string, opts ...Option) *Client {
	c := &Client{
		url:    url,
		client: http.DefaultClient,
		tracer: otel.Tracer(instrumentationName),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Measure posts req and returns the collapsed state. A response with
// success=false, a non-2xx status or a result other than 0 or 1 yields
// ErrMeasurementFailed; no outcome is ever guessed.
func (c *Client) Measure(ctx context.Context, req Request) (out Outcome, err error) {
	ctx, span := c.tracer.Start(ctx, "measurement.Measure", trace.WithAttributes(
		attribute.String("measurement.mode", string(req.Mode)),
		attribute.Float64("measurement.probability", req.Probability),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetAttributes(attribute.Int("measurement.result", out.Result))
		}
		span.End()
	}()

	if err := req.Validate(); err != nil {
		return Outcome{}, err
	}
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	body, err := json.Marshal(req)
	if err != nil {
		return Outcome{}, fmt.Errorf("encode measure request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return Outcome{}, fmt.Errorf("build measure request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return Outcome{}, fmt.Errorf("measure request: %w", err)
	}
	defer resp.Body.Close()

	var result Outcome
	decodeErr := json.NewDecoder(resp.Body).Decode(&result)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if decodeErr == nil && result.Error != "" {
			return Outcome{}, fmt.Errorf("%w: %s: %s", ErrMeasurementFailed, resp.Status, result.Error)
		}
		return Outcome{}, fmt.Errorf("%w: %s", ErrMeasurementFailed, resp.Status)
	}
	if decodeErr != nil {
		return Outcome{}, fmt.Errorf("decode measure response: %w", decodeErr)
	}
	if !result.Success {
		if result.Error != "" {
			return Outcome{}, fmt.Errorf("%w: %s", ErrMeasurementFailed, result.Error)
		}
		return Outcome{}, ErrMeasurementFailed
	}
	if result.Result != 0 && result.Result != 1 {
		return Outcome{}, fmt.Errorf("%w: result %d is not a basis state", ErrMeasurementFailed, result.Result)
	}
	return result, nil
}
