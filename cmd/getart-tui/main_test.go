package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenLogger_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "getart.log")

	log, closeLog, err := openLogger("debug", path)
	require.NoError(t, err)
	assert.Equal(t, logrus.DebugLevel, log.GetLevel())

	log.WithField("url", "https://example.com/master.m3u8").Debug("fetching manifest")
	require.NoError(t, closeLog())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `msg="fetching manifest"`)
}

func TestOpenLogger_NoFile(t *testing.T) {
	log, closeLog, err := openLogger("info", "")
	require.NoError(t, err)
	assert.Equal(t, logrus.InfoLevel, log.GetLevel())
	assert.NoError(t, closeLog())
}

func TestOpenLogger_BadPath(t *testing.T) {
	_, _, err := openLogger("info", filepath.Join(t.TempDir(), "missing", "getart.log"))
	assert.Error(t, err)
}
