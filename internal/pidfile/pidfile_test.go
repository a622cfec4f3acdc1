package pidfile

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteReadRemove(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run", "tcpresponder.pid")
	p := New(path)
	assert.Equal(t, path, p.Path())

	require.NoError(t, p.Write())

	pid, err := p.Read()
	require.NoError(t, err)
	assert.Equal(t, os.Getpid(), pid)

	// rewriting our own file is fine
	require.NoError(t, p.Write())

	require.NoError(t, p.Remove())
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	// removing twice is not an error
	require.NoError(t, p.Remove())
}

func TestReadInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.pid")
	require.NoError(t, os.WriteFile(path, []byte("not-a-pid"), 0644))

	_, err := New(path).Read()
	assert.Error(t, err)

	// an unreadable PID does not block a new writer
	require.NoError(t, New(path).Write())
}

func TestRemoveKeepsForeignFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "other.pid")
	foreign := os.Getpid() + 1
	require.NoError(t, os.WriteFile(path, []byte(strconv.Itoa(foreign)), 0644))

	require.NoError(t, New(path).Remove())
	_, err := os.Stat(path)
	assert.NoError(t, err)
}
