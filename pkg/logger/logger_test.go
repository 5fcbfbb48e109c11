package logger

import (
	"strings"
	"testing"
)

func TestSanitizeRedactsSensitiveKeys(t *testing.T) {
	t.Setenv("LOG_REDACTION_ENABLED", "true")

	got := sanitize([]any{"password", "hunter2", "product_id", 42, "api_key", "abc"})
	if len(got) != 6 {
		t.Fatalf("expected 6 entries, got %d", len(got))
	}
	if got[1] != "[REDACTED]" {
		t.Fatalf("password: expected redaction, got %v", got[1])
	}
	if got[3] != 42 {
		t.Fatalf("product_id: expected passthrough, got %v", got[3])
	}
	if got[5] != "[REDACTED]" {
		t.Fatalf("api_key: expected redaction, got %v", got[5])
	}
}

func TestSanitizeHashesUserIdentifiers(t *testing.T) {
	got := sanitizeValue("user_id", 1234)
	s, ok := got.(string)
	if !ok || !strings.HasPrefix(s, "hash:") {
		t.Fatalf("expected hashed value, got %v", got)
	}
	if again := sanitizeValue("user_id", 1234); again != got {
		t.Fatalf("hash not stable: %v vs %v", got, again)
	}
}

func TestSanitizeNestedMaps(t *testing.T) {
	got := sanitizeValue("payload", map[string]any{"name": "Widget", "Token": "x"})
	m, ok := got.(map[string]any)
	if !ok {
		t.Fatalf("expected map, got %T", got)
	}
	if m["name"] != "Widget" {
		t.Fatalf("name: got %v", m["name"])
	}
	if m["Token"] != "[REDACTED]" {
		t.Fatalf("Token: got %v", m["Token"])
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "debug"},
		{"info", "info"},
		{"WARN", "warn"},
		{"error", "error"},
		{"bogus", "debug"},
	}
	for _, tt := range tests {
		if got := parseLevel(tt.in).String(); got != tt.want {
			t.Errorf("parseLevel(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestNilLoggerIsSafe(t *testing.T) {
	var l *Logger
	l.Info("ignored", "k", "v")
	l.With("k", "v").Debug("still ignored")
	l.Sync()
}
