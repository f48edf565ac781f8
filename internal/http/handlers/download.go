package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/avpress/convertd/internal/storage"
)

// DownloadHandler serves converted files out of the output sandbox.
type DownloadHandler struct {
	outputs *storage.Sandbox
	logger  *slog.Logger
}

// NewDownloadHandler creates a new download handler.
func NewDownloadHandler(outputs *storage.Sandbox, logger *slog.Logger) *DownloadHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &DownloadHandler{outputs: outputs, logger: logger}
}

// Register registers the download routes on the router.
func (h *DownloadHandler) Register(r chi.Router) {
	r.Get("/downloads/{filename}", h.Download)
}

// Download streams a converted file to the client.
func (h *DownloadHandler) Download(w http.ResponseWriter, r *http.Request) {
	filename := chi.URLParam(r, "filename")

	path, err := h.outputs.ResolvePath(filename)
	if err != nil {
		http.Error(w, "invalid filename", http.StatusBadRequest)
		return
	}

	exists, err := h.outputs.Exists(filename)
	if err != nil || !exists {
		http.Error(w, "file not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	http.ServeFile(w, r, path)
}
