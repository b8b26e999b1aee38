package main

import (
	"testing"
	"time"

	"xlib-go/pkg/log"
)

func TestQueryPath(t *testing.T) {
	got := queryPath("servers.0.host")
	if len(got) != 3 || got[0] != "servers" || got[1] != 0 || got[2] != "host" {
		t.Errorf("queryPath = %#v", got)
	}
	if queryPath("") != nil {
		t.Error("empty path should be nil")
	}
}

func TestParseTimeSpec(t *testing.T) {
	ts, err := parseTimeSpec("1h")
	if err != nil {
		t.Fatal(err)
	}
	if d := time.Since(ts); d < time.Hour || d > time.Hour+time.Minute {
		t.Errorf("relative spec off by %v", d)
	}
	ts, err = parseTimeSpec("2023-10-27")
	if err != nil || ts.Year() != 2023 || ts.Day() != 27 {
		t.Errorf("absolute spec: %v %v", ts, err)
	}
	if _, err := parseTimeSpec("yesterday"); err == nil {
		t.Error("expected error for unknown spec")
	}
}

func TestPrettyEntry(t *testing.T) {
	e := log.LogEntry{LogData: `{"level":"info","time":"T","message":"hi","n":1}`}
	if got := prettyEntry(e); got != `T info  hi {"n":1}` {
		t.Errorf("prettyEntry = %q", got)
	}
	raw := log.LogEntry{LogData: "not json"}
	if prettyEntry(raw) != "not json" {
		t.Error("non-JSON entries print raw")
	}
}
