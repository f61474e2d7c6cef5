package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadTasks(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.yaml")
	content := `tasks:
  - title: "First Steps"
    description: "Connect a wallet"
  - title: "Getting Social"
    description: "Vote on a proposal"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	tasks, err := LoadTasks(path)
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, "First Steps", tasks[0].Title)
	assert.Equal(t, "Vote on a proposal", tasks[1].Description)
}

func TestLoadTasksMissingFile(t *testing.T) {
	_, err := LoadTasks(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadTasksEmptyList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.yaml")
	require.NoError(t, os.WriteFile(path, []byte("tasks: []\n"), 0644))

	_, err := LoadTasks(path)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "no tasks")
}

func TestLoadTasksMalformedYaml(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.yaml")
	require.NoError(t, os.WriteFile(path, []byte("tasks: [unclosed"), 0644))

	_, err := LoadTasks(path)
	assert.Error(t, err)
}
