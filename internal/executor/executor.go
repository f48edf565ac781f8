// Package executor runs a resolved encoder plan against the external FFmpeg
// process and validates the produced artifact.
package executor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"time"

	"github.com/avpress/convertd/internal/ffmpeg"
	"github.com/avpress/convertd/internal/planner"
)

// Failure reasons for artifact validation. These are surfaced verbatim to
// the caller.
var (
	// ErrMissingOutput is returned when the encoder exits cleanly but the
	// output path does not exist. Seen with encoders killed mid-write or a
	// full disk.
	ErrMissingOutput = errors.New("output file was not created")

	// ErrEmptyOutput is returned when the output exists but is zero bytes;
	// distinguishes a truncated or placeholder write from a missing file.
	ErrEmptyOutput = errors.New("output file is empty")
)

// ProcessError is returned when the encoder process exits non-zero. Stderr
// is preserved verbatim as the diagnostic.
type ProcessError struct {
	ExitCode int
	Stderr   string
}

func (e *ProcessError) Error() string {
	if e.Stderr != "" {
		return e.Stderr
	}
	return fmt.Sprintf("encoder exited with code %d", e.ExitCode)
}

// Result carries the validated output of a successful conversion.
type Result struct {
	OutputPath string
	OutputSize int64
}

// Executor invokes the external encoder for one plan at a time. Executors
// hold no per-job state and are safe for concurrent use; each job owns its
// input and output paths exclusively.
type Executor struct {
	binaryPath string
	logger     *slog.Logger
}

// New creates an Executor that invokes the encoder at binaryPath.
func New(binaryPath string, logger *slog.Logger) *Executor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Executor{binaryPath: binaryPath, logger: logger}
}

// Execute runs the plan against inputPath, writing to outputPath. It blocks
// until the encoder exits; a single attempt is final, with no retry and no
// timeout at this layer. Partial artifacts are left in place for the caller
// to clean up.
//
// The returned error is a *ProcessError for non-zero exits, or one of
// ErrMissingOutput / ErrEmptyOutput when the process reports success but the
// artifact is absent or truncated.
func (e *Executor) Execute(ctx context.Context, plan planner.Plan, inputPath, outputPath string) (*Result, error) {
	cmd := ffmpeg.NewCommandBuilder(e.binaryPath).
		HideBanner().
		Overwrite().
		Input(inputPath).
		OutputArgs(plan.Args...).
		Output(outputPath).
		Build()

	e.logger.Debug("running encoder",
		slog.String("codec", plan.Codec),
		slog.String("format", plan.Format),
		slog.String("command", cmd.String()),
	)

	var stdout, stderr bytes.Buffer
	proc := exec.CommandContext(ctx, cmd.Binary, cmd.Args...)
	proc.Stdout = &stdout
	proc.Stderr = &stderr

	start := time.Now()
	err := proc.Run()
	elapsed := time.Since(start)

	if err != nil {
		exitCode := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		}
		e.logger.Warn("encoder failed",
			slog.Int("exit_code", exitCode),
			slog.Duration("duration", elapsed),
			slog.String("stderr", stderr.String()),
		)
		return nil, &ProcessError{ExitCode: exitCode, Stderr: stderr.String()}
	}

	info, statErr := os.Stat(outputPath)
	if statErr != nil {
		return nil, ErrMissingOutput
	}
	if info.Size() == 0 {
		return nil, ErrEmptyOutput
	}

	e.logger.Info("encoder finished",
		slog.String("output", outputPath),
		slog.Int64("size", info.Size()),
		slog.Duration("duration", elapsed),
	)

	return &Result{OutputPath: outputPath, OutputSize: info.Size()}, nil
}
