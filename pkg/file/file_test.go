package file

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name  string `json:"name" yaml:"name"`
	Count int    `json:"count" yaml:"count"`
}

func TestFileService_YamlRoundTrip(t *testing.T) {
	fs := NewFileService()
	path := filepath.Join(t.TempDir(), "nested", "doc.yaml")

	require.NoError(t, fs.WriteYamlFile(path, sample{Name: "home", Count: 2}))

	var got sample
	require.NoError(t, fs.ReadYamlFile(path, &got))
	assert.Equal(t, sample{Name: "home", Count: 2}, got)

	_, err := os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err), "temp file must not be left behind")
}

func TestFileService_IsFileExists(t *testing.T) {
	fs := NewFileService()
	dir := t.TempDir()

	exists, err := fs.IsFileExists(filepath.Join(dir, "missing.json"))
	assert.NoError(t, err)
	assert.False(t, exists)

	path := filepath.Join(dir, "device.json")
	require.NoError(t, fs.WriteJsonFile(path, sample{Name: "x"}))
	exists, err = fs.IsFileExists(path)
	assert.NoError(t, err)
	assert.True(t, exists)
}

func TestFileService_AppendJsonLine(t *testing.T) {
	fs := NewFileService()
	path := filepath.Join(t.TempDir(), "logs", "activity.jsonl")

	require.NoError(t, fs.AppendJsonLine(path, sample{Name: "a", Count: 1}))
	require.NoError(t, fs.AppendJsonLine(path, sample{Name: "b", Count: 2}))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var lines []sample
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var s sample
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &s))
		lines = append(lines, s)
	}
	assert.Equal(t, []sample{{"a", 1}, {"b", 2}}, lines)
}
