package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNew_WritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	log, err := New("info", path)
	require.NoError(t, err)

	log.Infow("workflow created", "workflowId", "wf-1")
	_ = log.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), `"workflowId":"wf-1"`)
}

func TestNew_RejectsUnknownLevel(t *testing.T) {
	_, err := New("chatty", "")
	require.Error(t, err)
}
