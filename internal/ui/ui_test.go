package ui

import (
	"bytes"
	"testing"
)

func TestWarnf(t *testing.T) {
	var buf bytes.Buffer
	SetWriter(&buf)
	defer SetWriter(nil)
	SetColorEnabled(false)

	Warnf("ignoring config file %q: %s", "/tmp/x.yaml", "unreadable")

	want := "Warning: ignoring config file \"/tmp/x.yaml\": unreadable\n"
	if got := buf.String(); got != want {
		t.Errorf("Warnf output = %q, want %q", got, want)
	}
}

func TestErrorf(t *testing.T) {
	var buf bytes.Buffer
	SetWriter(&buf)
	defer SetWriter(nil)
	SetColorEnabled(false)

	Errorf("starting child: %s", "not found")

	want := "Error: starting child: not found\n"
	if got := buf.String(); got != want {
		t.Errorf("Errorf output = %q, want %q", got, want)
	}
}

func TestColor(t *testing.T) {
	var buf bytes.Buffer
	SetWriter(&buf)
	defer SetWriter(nil)

	SetColorEnabled(true)
	defer SetColorEnabled(false)

	Errorf("boom")

	want := "\033[31mError:\033[0m boom\n"
	if got := buf.String(); got != want {
		t.Errorf("Errorf output = %q, want %q", got, want)
	}
}
