package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestSanitizeKVs(t *testing.T) {
	jwtLike := "eyJhbGciOiJIUzI1NiJ9.eyJzdWIiOiIxMjM0NTYifQ.sig"
	tests := []struct {
		name string
		in   []interface{}
		want []interface{}
	}{
		{"plain", []interface{}{"id", "42"}, []interface{}{"id", "42"}},
		{"token key", []interface{}{"access_token", "abc"}, []interface{}{"access_token", "[REDACTED]"}},
		{"auth header", []interface{}{"Authorization", "Bearer x"}, []interface{}{"Authorization", "[REDACTED]"}},
		{"jwt value", []interface{}{"value", jwtLike}, []interface{}{"value", "[REDACTED]"}},
		{"odd length", []interface{}{"id", 1, "dangling"}, []interface{}{"id", 1, "dangling"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sanitizeKVs(tt.in)
			if len(got) != len(tt.want) {
				t.Fatalf("sanitizeKVs(%v) = %v, want %v", tt.in, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("sanitizeKVs(%v)[%d] = %v, want %v", tt.in, i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestLoggerRedactsThroughCore(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := &Logger{SugaredLogger: zap.New(core).Sugar()}

	l.With("token", "secret-value").Info("login", "user", "ann")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["token"] != "[REDACTED]" {
		t.Fatalf("token field = %v, want redacted", fields["token"])
	}
	if fields["user"] != "ann" {
		t.Fatalf("user field = %v, want ann", fields["user"])
	}
}

func TestNewWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "app.log")
	l, err := New(Options{Path: path, Level: "debug"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	l.Debug("refresh", "tab", "catalog")
	l.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	line := strings.TrimSpace(string(data))
	var entry map[string]any
	if err := json.Unmarshal([]byte(line), &entry); err != nil {
		t.Fatalf("log line is not JSON: %q", line)
	}
	if entry["msg"] != "refresh" || entry["tab"] != "catalog" {
		t.Fatalf("entry = %v", entry)
	}
}

func TestParseLevel(t *testing.T) {
	if lvl, err := ParseLevel(""); err != nil || lvl != zapcore.InfoLevel {
		t.Fatalf("ParseLevel(\"\") = %v, %v", lvl, err)
	}
	if lvl, err := ParseLevel(" WARN "); err != nil || lvl != zapcore.WarnLevel {
		t.Fatalf("ParseLevel(WARN) = %v, %v", lvl, err)
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Fatalf("ParseLevel(loud) should fail")
	}
}
