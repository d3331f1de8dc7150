package logger

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

// Lines look like "[INFO] [SCHWAB] 2025/04/17 09:30:00 message".
const stamp = `\d{4}/\d{2}/\d{2} \d{2}:\d{2}:\d{2} `

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := New("SCHWAB", &buf, INFO)

	l.Debug("hidden %d", 1)
	l.Info("shown %d", 2)
	l.Warning("careful")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Regexp(t, `\[INFO\] \[SCHWAB\] `+stamp+`shown 2`, out)
	assert.Regexp(t, `\[WARNING\] \[SCHWAB\] `+stamp+`careful`, out)
}

func TestMinLevelError(t *testing.T) {
	var buf bytes.Buffer
	l := New("X", &buf, ERROR)
	l.Info("quiet")
	l.Warning("quiet")
	assert.Empty(t, buf.String())

	l.Error("loud")
	assert.Regexp(t, `\[ERROR\] \[X\] `+stamp+`loud`, buf.String())
}

func TestPrintfLogsAtInfo(t *testing.T) {
	var buf bytes.Buffer
	New("CRON", &buf, DEBUG).Printf("skip %s", "tick")
	assert.Regexp(t, `\[INFO\] \[CRON\] `+stamp+`skip tick`, buf.String())
}

func TestParseLogLevel(t *testing.T) {
	cases := []struct {
		in   string
		want LogLevel
		ok   bool
	}{
		{"DEBUG", DEBUG, true},
		{"info", INFO, true},
		{"Warning", WARNING, true},
		{"warn", WARNING, true},
		{"ERROR", ERROR, true},
		{"verbose", INFO, false},
		{"", INFO, false},
	}
	for _, c := range cases {
		got, ok := ParseLogLevel(c.in)
		assert.Equal(t, c.want, got, c.in)
		assert.Equal(t, c.ok, ok, c.in)
	}
}

func TestDiscard(t *testing.T) {
	l := Discard()
	l.Error("nothing %s", "here")
	assert.Equal(t, ERROR+1, l.level)
}
