// Package media defines the conversion domain model: media kinds, target
// formats, and the parameters of a single conversion request.
package media

import (
	"fmt"
	"strings"
)

// Kind identifies the broad class of media being converted.
type Kind string

const (
	// KindAudio is an audio-only conversion.
	KindAudio Kind = "audio"
	// KindVideo is a video conversion (or audio extraction from video).
	KindVideo Kind = "video"
)

// ChannelLayout selects the output channel configuration for audio.
type ChannelLayout string

const (
	// ChannelsMono downmixes to a single channel.
	ChannelsMono ChannelLayout = "mono"
	// ChannelsStereo produces two channels.
	ChannelsStereo ChannelLayout = "stereo"
	// ChannelsSurround51 produces a 5.1 layout (six channels).
	ChannelsSurround51 ChannelLayout = "5.1"
	// ChannelsOriginal keeps the source channel layout untouched.
	ChannelsOriginal ChannelLayout = "original"
)

// Channels returns the channel count for the layout, or 0 when the source
// layout should be preserved.
func (c ChannelLayout) Channels() int {
	switch c {
	case ChannelsMono:
		return 1
	case ChannelsStereo:
		return 2
	case ChannelsSurround51:
		return 6
	default:
		return 0
	}
}

// ParseChannelLayout parses a form value into a ChannelLayout.
func ParseChannelLayout(s string) (ChannelLayout, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "mono":
		return ChannelsMono, nil
	case "stereo":
		return ChannelsStereo, nil
	case "5.1", "surround", "surround51":
		return ChannelsSurround51, nil
	case "original":
		return ChannelsOriginal, nil
	default:
		return "", fmt.Errorf("unknown channel layout %q", s)
	}
}

// CompressionTier selects the video quality/size tradeoff.
type CompressionTier string

const (
	// CompressionLow compresses least (highest quality, largest output).
	CompressionLow CompressionTier = "low"
	// CompressionMedium is the balanced default.
	CompressionMedium CompressionTier = "medium"
	// CompressionHigh compresses most (smallest output).
	CompressionHigh CompressionTier = "high"
)

// ParseCompressionTier parses a form value into a CompressionTier.
func ParseCompressionTier(s string) (CompressionTier, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low":
		return CompressionLow, nil
	case "medium":
		return CompressionMedium, nil
	case "high":
		return CompressionHigh, nil
	default:
		return "", fmt.Errorf("unknown compression tier %q", s)
	}
}

// Target format allow-lists per media kind. Video includes "mp3" as the
// audio-extraction pseudo-format.
var (
	audioFormats = []string{"mp3", "wav", "flac", "aac", "ogg", "m4a", "wma", "aiff", "au", "opus"}
	videoFormats = []string{"mp4", "avi", "mov", "mkv", "webm", "flv", "wmv", "m4v", "3gp", "ogv", "mp3"}
)

// Formats returns the supported target formats for a media kind.
func Formats(kind Kind) []string {
	switch kind {
	case KindAudio:
		return append([]string(nil), audioFormats...)
	case KindVideo:
		return append([]string(nil), videoFormats...)
	default:
		return nil
	}
}

// SupportedFormat reports whether format is an allowed target for kind.
func SupportedFormat(kind Kind, format string) bool {
	for _, f := range Formats(kind) {
		if f == format {
			return true
		}
	}
	return false
}

// SupportedInputExt reports whether an uploaded file extension (without the
// leading dot) is accepted as input for the given kind. The input side uses
// the same allow-lists, except that mp3 is rejected as a video source.
func SupportedInputExt(kind Kind, ext string) bool {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	if kind == KindAudio {
		return SupportedFormat(KindAudio, ext)
	}
	if ext == "mp3" {
		// mp3 is the extraction pseudo-target, not a valid video source.
		return false
	}
	return SupportedFormat(KindVideo, ext)
}

// ConversionRequest carries the declared output format and quality knobs for
// one conversion job. It is immutable once constructed; Validate rejects
// invalid input before the resolver or executor ever see the request.
type ConversionRequest struct {
	Kind         Kind
	TargetFormat string
	// BitrateKbps constrains output bitrate for lossy formats. Zero means
	// "do not constrain bitrate".
	BitrateKbps int
	// SampleRateHz is the output sample rate. Audio only.
	SampleRateHz int
	// Channels is the output channel layout. Audio only.
	Channels ChannelLayout
	// QualityPercent is a 0-100 perceptual quality knob for lossy codecs.
	QualityPercent int
	// Compression selects the video CRF tier. Video only.
	Compression CompressionTier
}

// Validate checks the request against the per-kind allow-lists and knob
// ranges. A nil return guarantees the planner can produce a plan.
func (r ConversionRequest) Validate() error {
	if r.Kind != KindAudio && r.Kind != KindVideo {
		return fmt.Errorf("unknown media kind %q", r.Kind)
	}
	if !SupportedFormat(r.Kind, r.TargetFormat) {
		return fmt.Errorf("unsupported %s target format %q", r.Kind, r.TargetFormat)
	}
	if r.BitrateKbps < 0 {
		return fmt.Errorf("bitrate must not be negative, got %d", r.BitrateKbps)
	}
	if r.QualityPercent < 0 || r.QualityPercent > 100 {
		return fmt.Errorf("quality must be between 0 and 100, got %d", r.QualityPercent)
	}
	if r.Kind == KindAudio {
		if r.SampleRateHz <= 0 {
			return fmt.Errorf("sample rate must be positive, got %d", r.SampleRateHz)
		}
		switch r.Channels {
		case ChannelsMono, ChannelsStereo, ChannelsSurround51, ChannelsOriginal:
		default:
			return fmt.Errorf("unknown channel layout %q", r.Channels)
		}
	}
	if r.Kind == KindVideo && r.TargetFormat != "mp3" {
		switch r.Compression {
		case CompressionLow, CompressionMedium, CompressionHigh:
		default:
			return fmt.Errorf("unknown compression tier %q", r.Compression)
		}
	}
	return nil
}
