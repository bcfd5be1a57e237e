package log

import (
	"bytes"
	"strings"
	"testing"
)

func TestInfoRespectsLevels(t *testing.T) {
	var buf bytes.Buffer
	sl := registerNewSubLogger("TESTINFO")
	sl.SetOutput(&buf)

	Info(sl, "hello")
	if !strings.Contains(buf.String(), "[INFO]") || !strings.Contains(buf.String(), "hello") {
		t.Errorf("expected info line, received %q", buf.String())
	}

	buf.Reset()
	sl.levels = splitLevel("WARN")
	Info(sl, "hidden")
	if buf.Len() != 0 {
		t.Errorf("expected silence, received %q", buf.String())
	}
	Warnf(sl, "warned %v", 42)
	if !strings.Contains(buf.String(), "warned 42") {
		t.Errorf("expected warn line, received %q", buf.String())
	}
}

func TestSplitLevel(t *testing.T) {
	l := splitLevel("INFO|ERROR")
	if !l.Info || !l.Error || l.Debug || l.Warn {
		t.Errorf("unexpected levels %+v", l)
	}
}

func TestSetGlobalLogLevel(t *testing.T) {
	sl := registerNewSubLogger("TESTGLOBAL")
	SetGlobalLogLevel("ERROR")
	if sl.levels.Info {
		t.Error("expected info disabled")
	}
	SetGlobalLogLevel("INFO|WARN|DEBUG|ERROR")
}
