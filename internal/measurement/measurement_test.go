package measurement

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func serve(t *testing.T, status int, body string, seen *Request) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content type = %q", ct)
		}
		if seen != nil {
			if err := json.NewDecoder(r.Body).Decode(seen); err != nil {
				t.Errorf("decode request: %v", err)
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestMeasureSuccess(t *testing.T) {
	var seen Request
	srv := serve(t, http.StatusOK, `{"success":true,"mode":"navigation","probability_target":0.8,"result":1}`, &seen)

	out, err := NewClient(srv.URL).Measure(context.Background(), Request{Mode: ModeNavigation, Probability: 0.8})
	if err != nil {
		t.Fatalf("Measure() error = %v", err)
	}
	if out.Result != 1 || out.Mode != ModeNavigation || out.ProbabilityTarget != 0.8 {
		t.Fatalf("outcome = %+v", out)
	}
	if seen.Mode != ModeNavigation || seen.Probability != 0.8 {
		t.Fatalf("request = %+v", seen)
	}
}

func TestMeasureFailureFlag(t *testing.T) {
	srv := serve(t, http.StatusOK, `{"success":false}`, nil)

	_, err := NewClient(srv.URL).Measure(context.Background(), Request{Mode: ModeSuperposition, Probability: 0.5})
	if !errors.Is(err, ErrMeasurementFailed) {
		t.Fatalf("error = %v, want ErrMeasurementFailed", err)
	}
}

func TestMeasureServerError(t *testing.T) {
	srv := serve(t, http.StatusInternalServerError, `{"success":false,"error":"simulator offline"}`, nil)

	_, err := NewClient(srv.URL).Measure(context.Background(), Request{Mode: ModeTunneling, Probability: 0.6})
	if !errors.Is(err, ErrMeasurementFailed) {
		t.Fatalf("error = %v, want ErrMeasurementFailed", err)
	}
	if got := err.Error(); !strings.Contains(got, "simulator offline") {
		t.Fatalf("error %q does not carry the server message", got)
	}
}

func TestMeasureRejectsNonBasisResult(t *testing.T) {
	srv := serve(t, http.StatusOK, `{"success":true,"result":7}`, nil)

	_, err := NewClient(srv.URL).Measure(context.Background(), Request{Mode: ModeSuperposition, Probability: 0.5})
	if !errors.Is(err, ErrMeasurementFailed) {
		t.Fatalf("error = %v, want ErrMeasurementFailed", err)
	}
}

func TestMeasureValidatesRequest(t *testing.T) {
	c := NewClient("http://127.0.0.1:1")
	if _, err := c.Measure(context.Background(), Request{Mode: ModeNavigation, Probability: 1.2}); !errors.Is(err, ErrInvalidProbability) {
		t.Fatalf("error = %v, want ErrInvalidProbability", err)
	}
	if _, err := c.Measure(context.Background(), Request{Mode: "entangle", Probability: 0.5}); !errors.Is(err, ErrInvalidMode) {
		t.Fatalf("error = %v, want ErrInvalidMode", err)
	}
}

func TestMeasureTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(srv.Close)
	t.Cleanup(func() { close(release) })

	_, err := NewClient(srv.URL, WithTimeout(20*time.Millisecond)).
		Measure(context.Background(), Request{Mode: ModeSuperposition, Probability: 0.5})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("error = %v, want deadline exceeded", err)
	}
}

func TestMeasureRecordsSpan(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	srv := serve(t, http.StatusOK, `{"success":false}`, nil)

	_, _ = NewClient(srv.URL, WithTracerProvider(tp)).
		Measure(context.Background(), Request{Mode: ModeSuperposition, Probability: 0.5})

	spans := rec.Ended()
	if len(spans) != 1 {
		t.Fatalf("spans = %d, want 1", len(spans))
	}
	if spans[0].Name() != "measurement.Measure" {
		t.Fatalf("span name = %q", spans[0].Name())
	}
	if spans[0].Status().Code != codes.Error {
		t.Fatalf("span status = %v, want error", spans[0].Status().Code)
	}
}

func TestMeasurerFunc(t *testing.T) {
	var m Measurer = MeasurerFunc(func(context.Context, Request) (Outcome, error) {
		return Outcome{Success: true, Result: 0}, nil
	})
	out, err := m.Measure(context.Background(), Request{})
	if err != nil || out.Result != 0 {
		t.Fatalf("Measure() = %+v, %v", out, err)
	}
}
