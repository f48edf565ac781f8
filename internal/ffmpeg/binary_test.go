package ffmpeg

import (
	"context"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// skipIfNoFFmpeg skips the test if ffmpeg is not installed.
func skipIfNoFFmpeg(t *testing.T) string {
	t.Helper()
	path, err := exec.LookPath("ffmpeg")
	if err != nil {
		t.Skip("ffmpeg not installed")
	}
	return path
}

func TestDetector_Detect(t *testing.T) {
	skipIfNoFFmpeg(t)

	ctx := context.Background()
	detector := NewDetector("")

	info, err := detector.Detect(ctx)
	require.NoError(t, err)
	require.NotNil(t, info)

	assert.NotEmpty(t, info.Path)
	assert.NotEmpty(t, info.Version)
	assert.Greater(t, info.MajorVersion, 0)
}

func TestDetector_Caching(t *testing.T) {
	skipIfNoFFmpeg(t)

	ctx := context.Background()
	detector := NewDetector("").WithCacheTTL(1 * time.Hour)

	info1, err := detector.Detect(ctx)
	require.NoError(t, err)

	info2, err := detector.Detect(ctx)
	require.NoError(t, err)

	assert.Equal(t, info1, info2)
}

func TestDetector_Clear(t *testing.T) {
	skipIfNoFFmpeg(t)

	ctx := context.Background()
	detector := NewDetector("")

	_, err := detector.Detect(ctx)
	require.NoError(t, err)

	detector.Clear()
	assert.Nil(t, detector.info)
}

func TestFindBinary_ConfiguredPathMustBeExecutable(t *testing.T) {
	_, err := FindBinary("/nonexistent/ffmpeg")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not executable")
}

func TestFindBinary_EnvOverride(t *testing.T) {
	path := skipIfNoFFmpeg(t)

	t.Setenv("CONVERTD_FFMPEG_BINARY", path)

	found, err := FindBinary("")
	require.NoError(t, err)
	assert.Equal(t, path, found)
}

func TestProbeVersion(t *testing.T) {
	path := skipIfNoFFmpeg(t)

	version, major, _, err := probeVersion(context.Background(), path)
	require.NoError(t, err)
	assert.NotEmpty(t, version)
	assert.Greater(t, major, 0)
}
