package handlers

import (
	"context"

	"github.com/danielgtaylor/huma/v2"

	"github.com/avpress/convertd/internal/media"
)

// FormatsHandler serves the supported output formats.
type FormatsHandler struct{}

// NewFormatsHandler creates a new formats handler.
func NewFormatsHandler() *FormatsHandler {
	return &FormatsHandler{}
}

// FormatsInput is the input for the formats endpoint.
type FormatsInput struct{}

// FormatsOutput is the output for the formats endpoint.
type FormatsOutput struct {
	Body FormatsResponse
}

// FormatsResponse lists the supported target formats per media kind.
type FormatsResponse struct {
	Audio []string `json:"audio"`
	Video []string `json:"video"`
}

// Register registers the formats routes with the API.
func (h *FormatsHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "listFormats",
		Method:      "GET",
		Path:        "/api/v1/formats",
		Summary:     "List supported formats",
		Description: "Returns the supported output formats for audio and video conversion",
		Tags:        []string{"Conversion"},
	}, h.ListFormats)
}

// ListFormats returns the supported output formats.
func (h *FormatsHandler) ListFormats(ctx context.Context, input *FormatsInput) (*FormatsOutput, error) {
	return &FormatsOutput{
		Body: FormatsResponse{
			Audio: media.Formats(media.KindAudio),
			Video: media.Formats(media.KindVideo),
		},
	}, nil
}
