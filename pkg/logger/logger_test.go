package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func TestNewWithWriterJSON(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(Config{Level: "debug"}, &buf)

	log.Debug("hello", "user", "alice")

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("expected json output, got %q: %v", buf.String(), err)
	}
	if record["msg"] != "hello" || record["user"] != "alice" {
		t.Fatalf("unexpected record: %v", record)
	}
}

func TestNewWithWriterLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(Config{Level: "warn", Format: "text"}, &buf)

	log.Info("dropped")
	log.Warn("kept")

	out := buf.String()
	if strings.Contains(out, "dropped") {
		t.Fatalf("info record should be filtered: %q", out)
	}
	if !strings.Contains(out, "msg=kept") {
		t.Fatalf("expected text record, got %q", out)
	}
}

func TestFromContext(t *testing.T) {
	fallback := Discard()
	if got := FromContext(context.Background(), fallback); got != fallback {
		t.Fatalf("expected fallback logger")
	}

	scoped := Discard().With("exchange_id", "abc")
	ctx := WithContext(context.Background(), scoped)
	if got := FromContext(ctx, fallback); got != scoped {
		t.Fatalf("expected scoped logger")
	}
}
