package dataset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type row struct {
	ID    string   `json:"id" yaml:"id"`
	Price *float64 `json:"price" yaml:"price"`
}

func TestRoundTripByExtension(t *testing.T) {
	price := 9.5
	rows := []row{{ID: "a", Price: &price}, {ID: "b"}}

	for _, name := range []string{"rows.json", "rows.yaml", "nested/rows.yml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			require.NoError(t, WriteFile(path, rows))

			var got []row
			require.NoError(t, ReadFile(path, &got))
			require.Len(t, got, 2)
			assert.Equal(t, 9.5, *got[0].Price)
			assert.Nil(t, got[1].Price)
		})
	}
}

func TestReadFile_YAMLMissingField(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rows.yaml")
	require.NoError(t, os.WriteFile(path, []byte("- id: x\n"), 0o600))

	var got []row
	require.NoError(t, ReadFile(path, &got))
	require.Len(t, got, 1)
	assert.Nil(t, got[0].Price)
}

func TestReadFile_Errors(t *testing.T) {
	var got []row
	require.ErrorContains(t, ReadFile(filepath.Join(t.TempDir(), "missing.json"), &got), "open")

	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0o600))
	require.ErrorContains(t, ReadFile(path, &got), "decode")
}

func TestIsYAML(t *testing.T) {
	assert.True(t, IsYAML("a.YAML"))
	assert.True(t, IsYAML("a.yml"))
	assert.False(t, IsYAML("a.json"))
	assert.False(t, IsYAML("a"))
}
