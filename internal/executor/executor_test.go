package executor

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avpress/convertd/internal/planner"
)

// writeStub writes an executable shell script standing in for the encoder.
// Every stub receives the full argument list with the output path last.
func writeStub(t *testing.T, script string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("stub encoder scripts require a POSIX shell")
	}

	path := filepath.Join(t.TempDir(), "ffmpeg-stub")
	content := "#!/bin/sh\n" + script + "\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o755))
	return path
}

func testPlan() planner.Plan {
	return planner.Plan{
		Format: "mp3",
		Codec:  "libmp3lame",
		Args:   []string{"-c:a", "libmp3lame", "-b:a", "192k"},
	}
}

func TestExecute_Success(t *testing.T) {
	stub := writeStub(t, `for a in "$@"; do out=$a; done
printf "converted" > "$out"`)

	outputPath := filepath.Join(t.TempDir(), "out.mp3")
	exec := New(stub, nil)

	result, err := exec.Execute(context.Background(), testPlan(), "/tmp/in.wav", outputPath)
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.Equal(t, outputPath, result.OutputPath)
	assert.Equal(t, int64(len("converted")), result.OutputSize)
}

func TestExecute_NonZeroExit(t *testing.T) {
	stub := writeStub(t, `echo "Invalid data found when processing input" >&2
exit 1`)

	exec := New(stub, nil)
	_, err := exec.Execute(context.Background(), testPlan(), "/tmp/in.wav", filepath.Join(t.TempDir(), "out.mp3"))
	require.Error(t, err)

	var procErr *ProcessError
	require.ErrorAs(t, err, &procErr)
	assert.Equal(t, 1, procErr.ExitCode)
	assert.Contains(t, procErr.Stderr, "Invalid data found when processing input")
	// The error message is the captured stderr, not a wrapper around it.
	assert.Equal(t, procErr.Stderr, procErr.Error())
}

func TestExecute_NonZeroExitWithoutStderr(t *testing.T) {
	stub := writeStub(t, `exit 3`)

	exec := New(stub, nil)
	_, err := exec.Execute(context.Background(), testPlan(), "/tmp/in.wav", filepath.Join(t.TempDir(), "out.mp3"))

	var procErr *ProcessError
	require.ErrorAs(t, err, &procErr)
	assert.Equal(t, 3, procErr.ExitCode)
	assert.Equal(t, "encoder exited with code 3", procErr.Error())
}

func TestExecute_MissingOutput(t *testing.T) {
	stub := writeStub(t, `exit 0`)

	exec := New(stub, nil)
	_, err := exec.Execute(context.Background(), testPlan(), "/tmp/in.wav", filepath.Join(t.TempDir(), "out.mp3"))

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingOutput)
	assert.EqualError(t, err, "output file was not created")
}

func TestExecute_EmptyOutput(t *testing.T) {
	stub := writeStub(t, `for a in "$@"; do out=$a; done
: > "$out"`)

	exec := New(stub, nil)
	_, err := exec.Execute(context.Background(), testPlan(), "/tmp/in.wav", filepath.Join(t.TempDir(), "out.mp3"))

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEmptyOutput)
	assert.EqualError(t, err, "output file is empty")
}

func TestExecute_PassesPlanArgs(t *testing.T) {
	stub := writeStub(t, `for a in "$@"; do out=$a; done
echo "$@" > "$out"`)

	outputPath := filepath.Join(t.TempDir(), "out.mp3")
	exec := New(stub, nil)

	_, err := exec.Execute(context.Background(), testPlan(), "/tmp/in.wav", outputPath)
	require.NoError(t, err)

	recorded, readErr := os.ReadFile(outputPath)
	require.NoError(t, readErr)

	line := string(recorded)
	assert.Contains(t, line, "-hide_banner")
	assert.Contains(t, line, "-y")
	assert.Contains(t, line, "-i /tmp/in.wav")
	assert.Contains(t, line, "-c:a libmp3lame -b:a 192k")
	assert.Contains(t, line, outputPath)
}

func TestExecute_ContextCancellation(t *testing.T) {
	stub := writeStub(t, `sleep 10`)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	exec := New(stub, nil)
	_, err := exec.Execute(ctx, testPlan(), "/tmp/in.wav", filepath.Join(t.TempDir(), "out.mp3"))

	require.Error(t, err)
	var procErr *ProcessError
	assert.True(t, errors.As(err, &procErr))
}
