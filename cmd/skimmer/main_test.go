package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_InvalidConfig(t *testing.T) {
	t.Setenv("UI", "bogus")

	err := run()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load config")
}

func TestRun_UnwritableLogFile(t *testing.T) {
	t.Setenv("UI", "tui")
	t.Setenv("LOG_FILE", filepath.Join(t.TempDir(), "missing", "skimmer.log"))

	err := run()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open log file")
}
