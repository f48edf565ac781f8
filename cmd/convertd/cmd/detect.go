package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/avpress/convertd/internal/ffmpeg"
)

// detectCmd represents the detect command
var detectCmd = &cobra.Command{
	Use:   "detect",
	Short: "Detect the ffmpeg installation",
	Long: `Locate the ffmpeg binary and probe its version.

The search order is the configured binary path, the CONVERTD_FFMPEG_BINARY
environment variable, ./ffmpeg next to the working directory, and finally
the PATH. The result is printed as JSON.

Examples:
  # Basic detection
  convertd detect

  # Pretty-printed JSON
  convertd detect --pretty`,
	RunE: runDetect,
}

func init() {
	rootCmd.AddCommand(detectCmd)

	detectCmd.Flags().Bool("pretty", false, "pretty-print JSON output")
	detectCmd.Flags().Duration("timeout", 10*time.Second, "detection timeout")
}

func runDetect(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	timeout, _ := cmd.Flags().GetDuration("timeout")
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	info, err := ffmpeg.NewDetector(cfg.FFmpeg.BinaryPath).Detect(ctx)
	if err != nil {
		return fmt.Errorf("detecting ffmpeg: %w", err)
	}

	pretty, _ := cmd.Flags().GetBool("pretty")
	var data []byte
	if pretty {
		data, err = json.MarshalIndent(info, "", "  ")
	} else {
		data, err = json.Marshal(info)
	}
	if err != nil {
		return fmt.Errorf("encoding detection result: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}
