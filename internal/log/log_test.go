package log

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newBufferLogger(buf *bytes.Buffer, component string) *Logger {
	return New(Config{
		Component: component,
		Handler:   slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}),
	})
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" WARN ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"info":    slog.LevelInfo,
		"":        slog.LevelInfo,
		"loud":    slog.LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestLoggerComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := newBufferLogger(&buf, ComponentApp).WithComponent(ComponentQuery)

	logger.Info("hello", FieldMonth, "March")

	out := buf.String()
	if strings.Count(out, "component=") != 1 || !strings.Contains(out, "component=query") {
		t.Errorf("unexpected output %q", out)
	}
	if !strings.Contains(out, "month=March") {
		t.Errorf("missing month field: %q", out)
	}
}

func TestWithComponentKeepsAttributes(t *testing.T) {
	var buf bytes.Buffer
	logger := newBufferLogger(&buf, ComponentHTTP).
		With(FieldRequestID, "req-1").
		WithComponent(ComponentSeed).
		With(FieldRecords, 3)

	logger.WarnContext(context.Background(), "loaded")

	out := buf.String()
	for _, want := range []string{"request_id=req-1", "records=3", "component=seed", "level=WARN"} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q missing %s", out, want)
		}
	}
	if strings.Count(out, "component=") != 1 {
		t.Errorf("component repeated: %q", out)
	}
	if logger.Component() != ComponentSeed {
		t.Errorf("Component() = %q", logger.Component())
	}
}

func TestLogFields(t *testing.T) {
	f := NewFields().
		WithOperation(OpSummary).
		WithQuery("March", "").
		WithPage(2, 10).
		WithRecords(60).
		WithError(errors.New("boom")).
		WithError(nil).
		WithRequestID("")

	if f[FieldOperation] != OpSummary || f[FieldMonth] != "March" || f[FieldPage] != 2 || f[FieldRecords] != 60 {
		t.Errorf("unexpected fields %v", f)
	}
	if _, ok := f[FieldSearch]; ok {
		t.Error("empty search should be omitted")
	}
	if _, ok := f[FieldRequestID]; ok {
		t.Error("empty request id should be omitted")
	}
	if f[FieldError] != "boom" {
		t.Errorf("error = %v", f[FieldError])
	}
	if len(f.ToSlice()) != 2*len(f) {
		t.Error("ToSlice should yield key/value pairs")
	}
}

func TestContextLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := newBufferLogger(&buf, ComponentHTTP)

	if FromContext(context.Background()).Component() != "unknown" {
		t.Error("missing logger should fall back to default")
	}

	var seen *Logger
	h := Middleware(logger)(ComponentMiddleware(ComponentQuery)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = FromContext(r.Context())
		LogHTTPEnd(r.Context(), r, http.StatusServiceUnavailable, 12, "1.2.3.4")
	})))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/statistics?month=March", nil))

	if seen == nil || seen.Component() != ComponentQuery {
		t.Fatalf("request logger component = %v", seen)
	}
	out := buf.String()
	if !strings.Contains(out, "level=ERROR") || !strings.Contains(out, "status_code=503") {
		t.Errorf("unexpected output %q", out)
	}
}
