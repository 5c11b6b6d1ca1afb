package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDatagen_WritesFiles(t *testing.T) {
	dir := t.TempDir()
	var out bytes.Buffer

	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--orders", "4", "--users", "3", "--seed", "11", "--output-dir", dir, "--format", "yaml"})
	require.NoError(t, cmd.Execute())

	assert.FileExists(t, filepath.Join(dir, "orders.yaml"))
	assert.FileExists(t, filepath.Join(dir, "users.yaml"))
	assert.Contains(t, out.String(), "Generated 4 orders and 3 users")
}

func TestDatagen_RejectsUnknownFormat(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--format", "csv"})
	require.Error(t, cmd.Execute())
}

func TestClampProbability(t *testing.T) {
	assert.Equal(t, 0.0, clampProbability(-1))
	assert.Equal(t, 1.0, clampProbability(3))
	assert.Equal(t, 0.25, clampProbability(0.25))
}
