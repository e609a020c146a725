package logger

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsolatedLogger_WritesJSONLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ws.log")
	l := NewIsolatedLogger(path)

	l.Info("WEBSOCKET", "client registered", map[string]interface{}{"session_id": "s-1"})
	l.Debug("WEBSOCKET", "below file level", nil)
	l.Named("SESSION").Warn("cue failed")
	_ = l.Sync()

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var lines []map[string]interface{}
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal(sc.Bytes(), &entry))
		lines = append(lines, entry)
	}

	require.Len(t, lines, 2)
	assert.Equal(t, "INFO", lines[0]["level"])
	assert.Equal(t, "client registered", lines[0]["message"])
	assert.Equal(t, "WEBSOCKET", lines[0]["module"])
	assert.Equal(t, "s-1", lines[0]["details"].(map[string]interface{})["session_id"])
	assert.Equal(t, "WARN", lines[1]["level"])
	assert.Equal(t, "SESSION", lines[1]["module"])
}

func TestNopLogger(t *testing.T) {
	var l ILogger = NewNopLogger()
	l.Error("X", "ignored", map[string]interface{}{"error": "boom"})
	assert.NotNil(t, l.Named("X"))
}
