package logging

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	saved := baseLogger
	baseLogger = newBaseLogger(&buf)
	savedLevel := GetLogLevel()
	t.Cleanup(func() {
		baseLogger = saved
		SetLogLevel(levelName(savedLevel))
	})
	return &buf
}

func levelName(l LogLevel) string {
	for name, v := range levelNames {
		if v == l && name != "warning" {
			return name
		}
	}
	return "info"
}

func TestInfof_NoDoubleFormattingWithPercent(t *testing.T) {
	buf := captureLogs(t)
	SetLogLevel("info")

	msg := "[orders.jsonl] skipped 3 of 120 lines (2.5% of input) field=OrderType"
	Infof(msg)

	out := buf.String()
	if !strings.Contains(out, "(2.5% of input)") {
		t.Fatalf("log output missing expected percent segment: %s", out)
	}
	if strings.Contains(out, "%!o(MISSING)") || strings.Contains(out, "%!i(MISSING)") {
		t.Fatalf("log output still shows fmt artifact: %s", out)
	}
}

func TestLevelFiltering(t *testing.T) {
	buf := captureLogs(t)
	SetLogLevel("warn")

	Debugf("debug line %d", 1)
	Infof("info line %d", 2)
	Warnf("warn line %d", 3)
	Errorf("error line %d", 4)

	out := buf.String()
	if strings.Contains(out, "debug line") || strings.Contains(out, "info line") {
		t.Fatalf("lines below warn leaked: %s", out)
	}
	if !strings.Contains(out, "warn line 3") || !strings.Contains(out, "error line 4") {
		t.Fatalf("expected warn and error lines: %s", out)
	}
}

func TestSetLogLevel_IgnoresUnknown(t *testing.T) {
	captureLogs(t)
	SetLogLevel("debug")
	SetLogLevel("verbose")
	if GetLogLevel() != LevelDebug {
		t.Fatalf("unknown level changed the current level to %v", GetLogLevel())
	}
	if ValidLevel("verbose") || !ValidLevel(" Warning ") {
		t.Fatalf("ValidLevel mismatch")
	}
}

func TestTimeTrack_DebugOnly(t *testing.T) {
	buf := captureLogs(t)
	SetLogLevel("info")
	TimeTrack(time.Now(), "load")
	if buf.Len() != 0 {
		t.Fatalf("TimeTrack should be silent at info: %s", buf.String())
	}
	SetLogLevel("debug")
	TimeTrack(time.Now(), "load")
	if !strings.Contains(buf.String(), "load took") {
		t.Fatalf("TimeTrack missing at debug: %s", buf.String())
	}
}
