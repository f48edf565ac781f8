package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/avpress/convertd/internal/config"
	"github.com/avpress/convertd/internal/media"
	"github.com/avpress/convertd/internal/service"
)

// ConvertHandler handles multipart conversion uploads. Uploads are streamed
// straight into the upload sandbox, so these routes bypass Huma and register
// directly on the chi router.
type ConvertHandler struct {
	service   *service.ConversionService
	defaults  config.ConversionConfig
	maxMemory int64
	logger    *slog.Logger
}

// NewConvertHandler creates a new conversion handler.
func NewConvertHandler(svc *service.ConversionService, defaults config.ConversionConfig, logger *slog.Logger) *ConvertHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ConvertHandler{
		service:   svc,
		defaults:  defaults,
		maxMemory: 32 << 20, // multipart form buffer, larger parts spill to disk
		logger:    logger,
	}
}

// Register registers the conversion routes on the router.
func (h *ConvertHandler) Register(r chi.Router) {
	r.Post("/api/v1/convert/audio", h.ConvertAudio)
	r.Post("/api/v1/convert/video", h.ConvertVideo)
}

// ConvertAudio handles audio conversion uploads.
func (h *ConvertHandler) ConvertAudio(w http.ResponseWriter, r *http.Request) {
	h.convert(w, r, media.KindAudio)
}

// ConvertVideo handles video conversion uploads.
func (h *ConvertHandler) ConvertVideo(w http.ResponseWriter, r *http.Request) {
	h.convert(w, r, media.KindVideo)
}

func (h *ConvertHandler) convert(w http.ResponseWriter, r *http.Request, kind media.Kind) {
	if err := r.ParseMultipartForm(h.maxMemory); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid multipart form", err.Error())
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	file, header, err := r.FormFile("file")
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "missing file field", err.Error())
		return
	}
	defer file.Close()

	params, err := h.parseParams(r, kind)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid parameters", err.Error())
		return
	}

	result, err := h.service.Convert(r.Context(), service.ConversionRequest{
		Filename: header.Filename,
		Content:  file,
		Params:   params,
	})
	if err != nil {
		if errors.Is(err, service.ErrInvalidInput) {
			h.writeError(w, http.StatusBadRequest, "conversion rejected", err.Error())
			return
		}
		h.logger.Error("conversion failed",
			slog.String("filename", header.Filename),
			slog.String("kind", string(kind)),
			slog.String("error", err.Error()),
		)
		h.writeError(w, http.StatusInternalServerError, "conversion failed", err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, result)
}

// parseParams reads the encoding form fields, falling back to the configured
// defaults for anything the client omits.
func (h *ConvertHandler) parseParams(r *http.Request, kind media.Kind) (media.ConversionRequest, error) {
	params := media.ConversionRequest{
		Kind:         kind,
		TargetFormat: r.FormValue("outputFormat"),
	}

	bitrate, err := formInt(r, "bitrate", h.defaults.BitrateKbps)
	if err != nil {
		return params, err
	}
	params.BitrateKbps = bitrate

	quality, err := formInt(r, "quality", h.defaults.QualityPercent)
	if err != nil {
		return params, err
	}
	params.QualityPercent = quality

	switch kind {
	case media.KindAudio:
		sampleRate, err := formInt(r, "sampleRate", h.defaults.SampleRateHz)
		if err != nil {
			return params, err
		}
		params.SampleRateHz = sampleRate

		channels := r.FormValue("channels")
		if channels == "" {
			channels = h.defaults.Channels
		}
		layout, err := media.ParseChannelLayout(channels)
		if err != nil {
			return params, err
		}
		params.Channels = layout

	case media.KindVideo:
		compression := r.FormValue("compression")
		if compression == "" {
			compression = h.defaults.Compression
		}
		tier, err := media.ParseCompressionTier(compression)
		if err != nil {
			return params, err
		}
		params.Compression = tier
	}

	return params, nil
}

func formInt(r *http.Request, field string, fallback int) (int, error) {
	raw := r.FormValue(field)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.New(field + " must be an integer")
	}
	return n, nil
}

func (h *ConvertHandler) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error("writing response", slog.String("error", err.Error()))
	}
}

func (h *ConvertHandler) writeError(w http.ResponseWriter, status int, message, details string) {
	h.writeJSON(w, status, ErrorResponse{Error: message, Details: details})
}
