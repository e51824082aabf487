package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
)

func TestWithContextCarriesRequestScopedFields(t *testing.T) {
	var buf bytes.Buffer
	old := defaultLogger
	defaultLogger = slog.New(slog.NewJSONHandler(&buf, nil))
	defer func() { defaultLogger = old }()

	ctx := context.WithValue(context.Background(), RequestIDKey, "req-1")
	ctx = context.WithValue(ctx, UserIDKey, int64(7))
	ctx = context.WithValue(ctx, AppointmentIDKey, int64(42))

	InfoContext(ctx, "test message")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	if entry["request_id"] != "req-1" {
		t.Errorf("request_id = %v, want req-1", entry["request_id"])
	}
	if entry["user_id"] != float64(7) {
		t.Errorf("user_id = %v, want 7", entry["user_id"])
	}
	if entry["appointment_id"] != float64(42) {
		t.Errorf("appointment_id = %v, want 42", entry["appointment_id"])
	}
}

func TestWithContextEmptyContext(t *testing.T) {
	var buf bytes.Buffer
	old := defaultLogger
	defaultLogger = slog.New(slog.NewJSONHandler(&buf, nil))
	defer func() { defaultLogger = old }()

	InfoContext(context.Background(), "bare message")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	if _, ok := entry["request_id"]; ok {
		t.Error("unexpected request_id on a bare context")
	}
	if _, ok := entry["appointment_id"]; ok {
		t.Error("unexpected appointment_id on a bare context")
	}
}
