package logger

import (
	"bytes"
	"strings"
	"testing"
)

func TestInitWriter_Levels(t *testing.T) {
	var buf bytes.Buffer
	InitWriter(&buf, false)
	Debug("hidden")
	Info("shown", "run_id", "abc")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("debug record written at info level")
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "run_id=abc") {
		t.Errorf("unexpected output %q", out)
	}

	buf.Reset()
	InitWriter(&buf, true)
	Debug("visible", "feed", "x")
	if !strings.Contains(buf.String(), "visible") || !strings.Contains(buf.String(), "feed=x") {
		t.Errorf("debug record missing: %q", buf.String())
	}
}
