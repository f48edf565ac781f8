// Package planner resolves a conversion request into an ordered encoder
// argument plan. Resolution is a pure function: no I/O, no process state,
// and every valid request maps to exactly one plan.
package planner

import (
	"fmt"

	"github.com/avpress/convertd/internal/ffmpeg"
	"github.com/avpress/convertd/internal/media"
)

// Plan is the fully resolved encoder invocation for one job: the output
// container format, the selected codec, and the ordered output-side argument
// tokens. A plan is immutable and consumed once by the executor.
type Plan struct {
	// Format is the resolved output container format (file extension).
	Format string
	// Codec is the resolved encoder codec name.
	Codec string
	// Args are the ordered output-side FFmpeg arguments.
	Args []string
}

// codecSpec describes how one target format maps onto an encoder codec.
type codecSpec struct {
	codec           string
	supportsBitrate bool
	supportsQuality bool
}

// audioCodecs maps audio target formats to codec descriptors. Formats absent
// from the table (e.g. "au") fall back to defaultAudioCodec; this silent
// substitution mirrors long-standing behavior and is intentional rather than
// an error path.
var audioCodecs = map[string]codecSpec{
	"mp3":  {codec: "libmp3lame", supportsBitrate: true, supportsQuality: true},
	"aac":  {codec: "aac", supportsBitrate: true, supportsQuality: true},
	"m4a":  {codec: "aac", supportsBitrate: true, supportsQuality: true},
	"flac": {codec: "flac"},
	"ogg":  {codec: "libvorbis", supportsBitrate: true, supportsQuality: true},
	"opus": {codec: "libopus", supportsBitrate: true, supportsQuality: true},
	"wav":  {codec: "pcm_s16le"},
	"aiff": {codec: "pcm_s16be"},
	"wma":  {codec: "wmav2", supportsBitrate: true, supportsQuality: true},
}

// defaultAudioCodec handles unrecognized audio formats.
var defaultAudioCodec = codecSpec{codec: "libmp3lame", supportsBitrate: true, supportsQuality: true}

// Video re-encode constants.
const (
	videoCodec        = "libx264"
	videoPreset       = "medium"
	videoAudioCodec   = "aac"
	videoAudioBitrate = "128k"
)

// Audio-extraction constants (video input, mp3 target).
const (
	extractionCodec      = "libmp3lame"
	extractionBitrate    = "192k"
	extractionSampleRate = 44100
)

// crfByTier maps compression tiers onto x264 CRF values. Lower CRF means
// higher quality and larger output.
var crfByTier = map[media.CompressionTier]int{
	media.CompressionLow:    18,
	media.CompressionMedium: 23,
	media.CompressionHigh:   28,
}

// QualityTier converts a 0-100 perceptual quality value into the codec-level
// VBR quality parameter, where lower means higher fidelity. The mapping is a
// monotone step function with inclusive-lower bounds.
func QualityTier(percent int) int {
	switch {
	case percent >= 90:
		return 0
	case percent >= 70:
		return 2
	case percent >= 50:
		return 5
	default:
		return 7
	}
}

// Resolve maps a conversion request onto an encoder plan. It is total over
// validated requests: unknown audio formats resolve to the default lossy
// codec instead of failing.
func Resolve(req media.ConversionRequest) Plan {
	if req.Kind == media.KindVideo {
		return resolveVideo(req)
	}
	return resolveAudio(req)
}

func resolveAudio(req media.ConversionRequest) Plan {
	spec, ok := audioCodecs[req.TargetFormat]
	if !ok {
		spec = defaultAudioCodec
	}

	b := ffmpeg.NewCommandBuilder("")
	b.AudioCodec(spec.codec)
	if spec.supportsBitrate && req.BitrateKbps > 0 {
		b.AudioBitrate(fmt.Sprintf("%dk", req.BitrateKbps))
	}
	b.SampleRate(req.SampleRateHz)
	if ch := req.Channels.Channels(); ch > 0 {
		b.AudioChannels(ch)
	}
	if spec.supportsQuality {
		b.AudioQuality(QualityTier(req.QualityPercent))
	}

	return Plan{Format: req.TargetFormat, Codec: spec.codec, Args: b.BuildOutputArgs()}
}

func resolveVideo(req media.ConversionRequest) Plan {
	if req.TargetFormat == "mp3" {
		// Audio extraction from a video container, not a re-encode: video
		// stream disabled, fixed lossy parameters regardless of tier.
		b := ffmpeg.NewCommandBuilder("").
			DisableVideo().
			AudioCodec(extractionCodec).
			AudioBitrate(extractionBitrate).
			SampleRate(extractionSampleRate)
		return Plan{Format: "mp3", Codec: extractionCodec, Args: b.BuildOutputArgs()}
	}

	crf, ok := crfByTier[req.Compression]
	if !ok {
		crf = crfByTier[media.CompressionMedium]
	}

	b := ffmpeg.NewCommandBuilder("").
		VideoCodec(videoCodec).
		CRF(crf).
		Preset(videoPreset).
		AudioCodec(videoAudioCodec).
		AudioBitrate(videoAudioBitrate)
	return Plan{Format: req.TargetFormat, Codec: videoCodec, Args: b.BuildOutputArgs()}
}
