// Package ffmpeg provides FFmpeg binary discovery and command construction.
package ffmpeg

import (
	"strconv"
	"strings"
)

// Command is a fully built FFmpeg invocation: the binary plus an ordered
// argument list ready for exec.
type Command struct {
	Binary string
	Args   []string
	Input  string
	Output string
}

// String returns the command as a single shell-style string for logging.
func (c *Command) String() string {
	return c.Binary + " " + strings.Join(c.Args, " ")
}

// CommandBuilder builds FFmpeg commands with a fluent API. Argument groups
// keep their relative order: global flags, input flags, -i input, output
// flags, output path.
type CommandBuilder struct {
	binary     string
	globalArgs []string
	inputArgs  []string
	input      string
	outputArgs []string
	output     string
	logLevel   string
	overwrite  bool
}

// NewCommandBuilder creates a new FFmpeg command builder.
func NewCommandBuilder(ffmpegPath string) *CommandBuilder {
	return &CommandBuilder{
		binary:   ffmpegPath,
		logLevel: "error",
	}
}

// LogLevel sets the FFmpeg log level.
func (b *CommandBuilder) LogLevel(level string) *CommandBuilder {
	b.logLevel = level
	return b
}

// HideBanner hides the FFmpeg banner.
func (b *CommandBuilder) HideBanner() *CommandBuilder {
	b.globalArgs = append(b.globalArgs, "-hide_banner")
	return b
}

// Overwrite enables unconditional output file overwriting.
func (b *CommandBuilder) Overwrite() *CommandBuilder {
	b.overwrite = true
	return b
}

// Input sets the input file path.
func (b *CommandBuilder) Input(input string) *CommandBuilder {
	b.input = input
	return b
}

// InputArgs adds arbitrary input-side arguments.
func (b *CommandBuilder) InputArgs(args ...string) *CommandBuilder {
	b.inputArgs = append(b.inputArgs, args...)
	return b
}

// AudioCodec sets the audio codec.
func (b *CommandBuilder) AudioCodec(codec string) *CommandBuilder {
	b.outputArgs = append(b.outputArgs, "-c:a", codec)
	return b
}

// VideoCodec sets the video codec.
func (b *CommandBuilder) VideoCodec(codec string) *CommandBuilder {
	b.outputArgs = append(b.outputArgs, "-c:v", codec)
	return b
}

// DisableVideo drops all video streams (audio extraction).
func (b *CommandBuilder) DisableVideo() *CommandBuilder {
	b.outputArgs = append(b.outputArgs, "-vn")
	return b
}

// AudioBitrate sets the audio bitrate, e.g. "192k".
func (b *CommandBuilder) AudioBitrate(bitrate string) *CommandBuilder {
	b.outputArgs = append(b.outputArgs, "-b:a", bitrate)
	return b
}

// SampleRate sets the audio sample rate in Hz.
func (b *CommandBuilder) SampleRate(hz int) *CommandBuilder {
	b.outputArgs = append(b.outputArgs, "-ar", strconv.Itoa(hz))
	return b
}

// AudioChannels sets the number of audio channels.
func (b *CommandBuilder) AudioChannels(channels int) *CommandBuilder {
	b.outputArgs = append(b.outputArgs, "-ac", strconv.Itoa(channels))
	return b
}

// AudioQuality sets the codec-level VBR quality hint. Lower values mean
// higher fidelity for the codecs convertd targets.
func (b *CommandBuilder) AudioQuality(q int) *CommandBuilder {
	b.outputArgs = append(b.outputArgs, "-q:a", strconv.Itoa(q))
	return b
}

// CRF sets the constant rate factor for video encoding.
func (b *CommandBuilder) CRF(crf int) *CommandBuilder {
	b.outputArgs = append(b.outputArgs, "-crf", strconv.Itoa(crf))
	return b
}

// Preset sets the video encoding speed preset.
func (b *CommandBuilder) Preset(preset string) *CommandBuilder {
	b.outputArgs = append(b.outputArgs, "-preset", preset)
	return b
}

// OutputArgs adds arbitrary output-side arguments.
func (b *CommandBuilder) OutputArgs(args ...string) *CommandBuilder {
	b.outputArgs = append(b.outputArgs, args...)
	return b
}

// Output sets the output file path.
func (b *CommandBuilder) Output(output string) *CommandBuilder {
	b.output = output
	return b
}

// BuildOutputArgs returns only the accumulated output-side arguments, in
// order. Used when the argument set is resolved ahead of time and the full
// command line is assembled later against concrete file paths.
func (b *CommandBuilder) BuildOutputArgs() []string {
	return append([]string(nil), b.outputArgs...)
}

// Build assembles the final argument list.
func (b *CommandBuilder) Build() *Command {
	var args []string

	args = append(args, "-loglevel", b.logLevel)
	args = append(args, b.globalArgs...)

	if b.overwrite {
		args = append(args, "-y")
	}

	args = append(args, b.inputArgs...)
	args = append(args, "-i", b.input)
	args = append(args, b.outputArgs...)
	args = append(args, b.output)

	return &Command{
		Binary: b.binary,
		Args:   args,
		Input:  b.input,
		Output: b.output,
	}
}
