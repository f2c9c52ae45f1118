package logger

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewParsesLevel(t *testing.T) {
	log, err := New(Config{Level: "debug"})
	require.NoError(t, err)
	assert.Equal(t, logrus.DebugLevel, log.GetLevel())

	log, err = New(Config{Level: "nonsense"})
	require.NoError(t, err)
	assert.Equal(t, logrus.InfoLevel, log.GetLevel())
}

func TestNewWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "warmup.log")
	log, err := New(Config{Level: "info", Format: "json", OutputFile: path})
	require.NoError(t, err)

	log.WithModule("test").Info("hello")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"module":"test"`)
	assert.Contains(t, string(data), `"message":"hello"`)
}

func TestWithFieldDoesNotMutateParent(t *testing.T) {
	log, err := New(Config{Level: "info"})
	require.NoError(t, err)
	log.SetOutput(io.Discard)
	hook := test.NewLocal(log.Logger)

	parent := log.WithModule("risk")
	child := parent.WithAction("like")

	parent.Info("parent")
	child.Info("child")

	entries := hook.AllEntries()
	require.Len(t, entries, 2)
	assert.Equal(t, logrus.Fields{"module": "risk"}, entries[0].Data)
	assert.Equal(t, logrus.Fields{"module": "risk", "action": "like"}, entries[1].Data)
}
