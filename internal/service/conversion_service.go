// Package service implements the conversion workflow: upload intake,
// parameter resolution, encoder execution, and result shaping.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/avpress/convertd/internal/executor"
	"github.com/avpress/convertd/internal/media"
	"github.com/avpress/convertd/internal/planner"
	"github.com/avpress/convertd/internal/storage"
)

// ErrInvalidInput marks client errors: unsupported media types, bad
// parameter values, or oversized uploads. Handlers translate it to a 4xx
// status; everything else is a server-side conversion failure.
var ErrInvalidInput = errors.New("invalid input")

// ConversionRequest is the service-level input: the uploaded file content
// plus the already-parsed encoding parameters.
type ConversionRequest struct {
	Filename string
	Content  io.Reader
	Params   media.ConversionRequest
}

// ConversionResult is the success payload returned to the HTTP layer.
type ConversionResult struct {
	OriginalFilename  string       `json:"original_filename"`
	ConvertedFilename string       `json:"converted_filename"`
	OriginalSize      int64        `json:"original_size"`
	ConvertedSize     int64        `json:"converted_size"`
	DownloadPath      string       `json:"download_path"`
	Params            EchoedParams `json:"params"`
}

// EchoedParams mirrors the encoding parameters the conversion actually used.
type EchoedParams struct {
	Format         string `json:"format"`
	BitrateKbps    int    `json:"bitrate_kbps,omitempty"`
	SampleRateHz   int    `json:"sample_rate_hz,omitempty"`
	Channels       string `json:"channels,omitempty"`
	QualityPercent int    `json:"quality_percent,omitempty"`
	Compression    string `json:"compression,omitempty"`
}

// ConversionService runs one conversion job per call. Jobs are fully
// independent: each derives a fresh unique token for its file names, so
// concurrent jobs sharing the upload directory cannot collide.
type ConversionService struct {
	uploads   *storage.Sandbox
	outputs   *storage.Sandbox
	executor  *executor.Executor
	maxUpload int64
	logger    *slog.Logger
}

// NewConversionService creates a ConversionService.
func NewConversionService(uploads, outputs *storage.Sandbox, exec *executor.Executor, maxUpload int64, logger *slog.Logger) *ConversionService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ConversionService{
		uploads:   uploads,
		outputs:   outputs,
		executor:  exec,
		maxUpload: maxUpload,
		logger:    logger,
	}
}

// Convert validates the request, persists the upload under a job-unique
// name, resolves the encoder plan, runs the encoder, and reports the result.
// The uploaded input file is deleted unconditionally after the attempt; on
// failure no output artifact reliably exists, so none is deleted.
func (s *ConversionService) Convert(ctx context.Context, req ConversionRequest) (*ConversionResult, error) {
	if err := req.Params.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidInput, err)
	}

	ext := filepath.Ext(req.Filename)
	if !media.SupportedInputExt(req.Params.Kind, ext) {
		return nil, fmt.Errorf("%w: unsupported %s input type %q", ErrInvalidInput, req.Params.Kind, ext)
	}

	// Per-job unique token keeps concurrent jobs from colliding in the
	// shared upload directory.
	token := uuid.New().String()
	inputName := token + "_" + sanitizeFilename(req.Filename)

	originalSize, err := s.uploads.Save(inputName, req.Content, s.maxUpload)
	if err != nil {
		if errors.Is(err, storage.ErrTooLarge) {
			return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
		}
		return nil, fmt.Errorf("saving upload: %w", err)
	}
	inputPath := filepath.Join(s.uploads.BaseDir(), inputName)

	// The input is consumed by this job alone; remove it no matter how the
	// conversion ends.
	defer func() {
		if err := s.uploads.Remove(inputName); err != nil {
			s.logger.Warn("failed to remove input file",
				slog.String("file", inputName),
				slog.String("error", err.Error()),
			)
		}
	}()

	plan := planner.Resolve(req.Params)

	stem := strings.TrimSuffix(sanitizeFilename(req.Filename), ext)
	outputName := token + "_" + stem + "." + plan.Format
	outputPath := filepath.Join(s.outputs.BaseDir(), outputName)

	logger := s.logger.With(slog.String("job", token))
	logger.Info("starting conversion",
		slog.String("input", req.Filename),
		slog.String("target_format", plan.Format),
		slog.String("codec", plan.Codec),
		slog.Int64("input_size", originalSize),
	)

	result, err := s.executor.Execute(ctx, plan, inputPath, outputPath)
	if err != nil {
		logger.Warn("conversion failed", slog.String("error", err.Error()))
		return nil, err
	}

	return &ConversionResult{
		OriginalFilename:  req.Filename,
		ConvertedFilename: outputName,
		OriginalSize:      originalSize,
		ConvertedSize:     result.OutputSize,
		DownloadPath:      "/downloads/" + outputName,
		Params:            echoParams(req.Params),
	}, nil
}

func echoParams(p media.ConversionRequest) EchoedParams {
	echoed := EchoedParams{
		Format:         p.TargetFormat,
		QualityPercent: p.QualityPercent,
	}
	if p.Kind == media.KindAudio {
		echoed.BitrateKbps = p.BitrateKbps
		echoed.SampleRateHz = p.SampleRateHz
		echoed.Channels = string(p.Channels)
	} else {
		echoed.Compression = string(p.Compression)
	}
	return echoed
}

// sanitizeFilename strips any path components and characters that would be
// awkward in derived file names.
func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, " ", "_")
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.', r == '-', r == '_':
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "upload"
	}
	return b.String()
}
