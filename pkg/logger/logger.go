package logger

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"
)

var Log *slog.Logger

type asyncWriter struct {
	ch chan []byte
}

func (a *asyncWriter) Write(p []byte) (n int, err error) {
	cp := make([]byte, len(p))
	copy(cp, p)
	select {
	case a.ch <- cp:
		return len(p), nil
	default:
		// drop if queue full to avoid blocking request handlers
		return len(p), nil
	}
}

var (
	logCh     chan []byte
	logStopCh chan struct{}
	logWG     sync.WaitGroup
	stopOnce  sync.Once
)

// Init initializes the global slog logger at the level named by
// ITTE_LOG_LEVEL (info when unset).
func Init() {
	InitWithLevel("")
}

// InitWithLevel initializes the global logger with an async buffered text
// handler. An empty level falls back to ITTE_LOG_LEVEL. Output goes to
// stdout unless ITTE_LOG_SINK is set to "file:/path/to/log".
func InitWithLevel(level string) {
	sink := os.Getenv("ITTE_LOG_SINK")
	lvl := strings.ToLower(strings.TrimSpace(level))
	if lvl == "" {
		lvl = strings.ToLower(strings.TrimSpace(os.Getenv("ITTE_LOG_LEVEL")))
	}

	logCh = make(chan []byte, 10000)
	logStopCh = make(chan struct{})
	stopOnce = sync.Once{}
	aw := &asyncWriter{ch: logCh}
	Log = slog.New(slog.NewTextHandler(aw, &slog.HandlerOptions{Level: ParseLevel(lvl)}))

	logWG.Add(1)
	go drain(sink, logCh, logStopCh)
}

// ParseLevel maps a level name onto slog levels, defaulting to info.
func ParseLevel(lvl string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(lvl)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func drain(sink string, ch <-chan []byte, stop <-chan struct{}) {
	defer logWG.Done()
	var buf *bufio.Writer
	var f *os.File
	if strings.HasPrefix(sink, "file:") {
		path := strings.TrimPrefix(sink, "file:")
		var err error
		f, err = os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o640)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to open log file %s: %v\n", path, err)
			buf = bufio.NewWriterSize(os.Stdout, 8192)
		} else {
			buf = bufio.NewWriterSize(f, 8192)
		}
	} else {
		buf = bufio.NewWriterSize(os.Stdout, 8192)
	}
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case b := <-ch:
			buf.Write(b)
		case <-ticker.C:
			buf.Flush()
		case <-stop:
			// drain what is already queued before the final flush
			for {
				select {
				case b := <-ch:
					buf.Write(b)
					continue
				default:
				}
				break
			}
			buf.Flush()
			if f != nil {
				f.Close()
			}
			return
		}
	}
}

// Sync flushes any buffered logs and stops the writer goroutine.
func Sync() {
	if logStopCh == nil {
		return
	}
	stopOnce.Do(func() {
		close(logStopCh)
		logWG.Wait()
	})
}

// Debug logs with slog-style key/value pairs.
func Debug(msg string, args ...any) {
	if Log == nil {
		return
	}
	Log.Debug(msg, args...)
}

// Info logs with slog-style key/value pairs.
func Info(msg string, args ...any) {
	if Log == nil {
		return
	}
	Log.Info(msg, args...)
}

// Warn logs with slog-style key/value pairs.
func Warn(msg string, args ...any) {
	if Log == nil {
		return
	}
	Log.Warn(msg, args...)
}

// Error logs with slog-style key/value pairs.
func Error(msg string, args ...any) {
	if Log == nil {
		return
	}
	Log.Error(msg, args...)
}

// LogConfigSummary prints a human-friendly, hyphenated block to stdout so
// startup config dumps stay readable in a terminal.
func LogConfigSummary(title string, items []string) {
	if len(items) == 0 {
		return
	}
	human := strings.ReplaceAll(title, "_", " ")
	if human != "" {
		human = strings.ToUpper(human[:1]) + human[1:]
	}
	header := "== " + human + " "
	const width = 60
	if len(header) < width {
		header = header + strings.Repeat("=", width-len(header))
	}
	fmt.Fprintln(os.Stdout, header)
	for _, it := range items {
		fmt.Fprintln(os.Stdout, "- "+it)
	}
	fmt.Fprintln(os.Stdout)
}
