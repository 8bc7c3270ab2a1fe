package logger

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"":        slog.LevelInfo,
		"debug":   slog.LevelDebug,
		"WARN":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestRedactHeaderValue(t *testing.T) {
	if got := redactHeaderValue("Authorization", "Bearer abc"); got != "B*****c" {
		t.Fatalf("authorization not masked: %q", got)
	}
	if got := redactHeaderValue("Cookie", "a"); got != "<redacted>" {
		t.Fatalf("short cookie not redacted: %q", got)
	}
	if got := redactHeaderValue("Content-Type", "application/json"); got != "application/json" {
		t.Fatalf("plain header altered: %q", got)
	}
}

func TestSyncIsIdempotent(t *testing.T) {
	InitWithLevel("error")
	Info("dropped_below_level")
	Sync()
	Sync()
}

func TestInitWritesToFileSink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "itte.log")
	t.Setenv("ITTE_LOG_SINK", "file:"+path)
	t.Setenv("ITTE_LOG_LEVEL", "debug")

	Init()
	Debug("comment_posted", "id", "abcde")
	Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), "msg=comment_posted") || !strings.Contains(string(data), "id=abcde") {
		t.Fatalf("log line missing from file: %q", data)
	}
}
