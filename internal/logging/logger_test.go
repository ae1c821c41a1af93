package logging

import (
	"bytes"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestNew_Levels(t *testing.T) {
	tests := []struct {
		level string
		want  logrus.Level
	}{
		{"debug", logrus.DebugLevel},
		{"info", logrus.InfoLevel},
		{"warning", logrus.WarnLevel},
		{"error", logrus.ErrorLevel},
		{"", logrus.WarnLevel},
		{"loud", logrus.WarnLevel},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			assert.Equal(t, tt.want, New(tt.level, io.Discard).GetLevel())
		})
	}
}

func TestNew_WritesFields(t *testing.T) {
	var buf bytes.Buffer
	log := New("debug", &buf)

	log.WithField("url", "https://example.com/master.m3u8").Debug("fetching manifest")

	out := buf.String()
	assert.Contains(t, out, "level=debug")
	assert.Contains(t, out, `msg="fetching manifest"`)
	assert.Contains(t, out, "url=\"https://example.com/master.m3u8\"")
}

func TestNew_FiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New("warning", &buf)

	log.Info("hidden")
	assert.Empty(t, buf.String())
}
