package log

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestSetOutputWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(nil)

	Info().Str("component", "test").Msg("hello")
	out := buf.String()
	if !strings.Contains(out, `"component":"test"`) || !strings.Contains(out, `"message":"hello"`) {
		t.Fatalf("unexpected log line: %q", out)
	}
}

func TestSetLevel(t *testing.T) {
	prev := zerolog.GlobalLevel()
	defer zerolog.SetGlobalLevel(prev)

	if err := SetLevel("warn"); err != nil {
		t.Fatalf("SetLevel failed: %v", err)
	}
	if zerolog.GlobalLevel() != zerolog.WarnLevel {
		t.Errorf("expected warn level, got %v", zerolog.GlobalLevel())
	}
	if err := SetLevel("nope"); err == nil {
		t.Error("expected error for unknown level")
	}
	if err := SetLevel(""); err != nil {
		t.Errorf("empty level should be ignored, got %v", err)
	}
}

func TestSQLiteSink(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "logs.db")
	if err := Init(dbPath); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer Close()

	if err := Init(dbPath); err == nil {
		t.Error("second Init should fail")
	}

	Info().Int("n", 1).Msg("first")
	Warn().Int("n", 2).Msg("second")

	entries, err := GetLastNLogs(2)
	if err != nil {
		t.Fatalf("GetLastNLogs failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if !strings.Contains(entries[0].LogData, "first") || !strings.Contains(entries[1].LogData, "second") {
		t.Errorf("entries out of order: %+v", entries)
	}

	since, err := GetLogsSince(time.Now().Add(-time.Minute), 0)
	if err != nil || len(since) != 2 {
		t.Errorf("GetLogsSince: %d entries, err %v", len(since), err)
	}
	between, err := GetLogsBetween(time.Now().Add(-time.Hour), time.Now().Add(-time.Minute), 10)
	if err != nil || len(between) != 0 {
		t.Errorf("GetLogsBetween: %d entries, err %v", len(between), err)
	}
}

func TestCloseRecordsShutdown(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "close.db")
	if err := Init(dbPath); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	Info().Msg("working")
	if err := Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := Close(); err != nil {
		t.Errorf("second Close should be a no-op, got %v", err)
	}

	if err := Init(dbPath); err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer Close()
	entries, err := GetLastNLogs(1)
	if err != nil || len(entries) != 1 {
		t.Fatalf("GetLastNLogs: %v %v", entries, err)
	}
	if !strings.Contains(entries[0].LogData, "closing sqlite logger") {
		t.Errorf("last record = %s, want the closing record", entries[0].LogData)
	}
}

func TestRetrievalBeforeInit(t *testing.T) {
	if _, err := GetLastNLogs(5); err != ErrNotInitialized {
		t.Errorf("expected ErrNotInitialized, got %v", err)
	}
}
