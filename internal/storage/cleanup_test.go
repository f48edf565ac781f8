package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSweepAll(t *testing.T) {
	sb := newTestSandbox(t)
	for _, name := range []string{"a.mp3", "b.mp3", "c.mp3"} {
		_, err := sb.Save(name, strings.NewReader("x"), 0)
		require.NoError(t, err)
	}

	removed, err := NewCleaner(nil).SweepAll(sb)
	require.NoError(t, err)
	assert.Equal(t, 3, removed)

	names, err := sb.List()
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestSweepOlderThan(t *testing.T) {
	sb := newTestSandbox(t)

	_, err := sb.Save("old.mp3", strings.NewReader("x"), 0)
	require.NoError(t, err)
	_, err = sb.Save("fresh.mp3", strings.NewReader("x"), 0)
	require.NoError(t, err)

	stale := time.Now().Add(-2 * time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(sb.BaseDir(), "old.mp3"), stale, stale))

	removed, err := NewCleaner(nil).SweepOlderThan(sb, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	names, err := sb.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"fresh.mp3"}, names)
}

func TestSweepOlderThan_NothingExpired(t *testing.T) {
	sb := newTestSandbox(t)

	_, err := sb.Save("fresh.mp3", strings.NewReader("x"), 0)
	require.NoError(t, err)

	removed, err := NewCleaner(nil).SweepOlderThan(sb, time.Hour)
	require.NoError(t, err)
	assert.Zero(t, removed)
}
