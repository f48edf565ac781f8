package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/avpress/convertd/internal/executor"
	"github.com/avpress/convertd/internal/ffmpeg"
	httpserver "github.com/avpress/convertd/internal/http"
	"github.com/avpress/convertd/internal/http/handlers"
	"github.com/avpress/convertd/internal/observability"
	"github.com/avpress/convertd/internal/service"
	"github.com/avpress/convertd/internal/storage"
	"github.com/avpress/convertd/internal/version"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the conversion service",
	Long: `Start the convertd HTTP server.

The server will:
1. Locate the ffmpeg binary (config, CONVERTD_FFMPEG_BINARY, ./ffmpeg, PATH)
2. Prepare the upload and output directories and purge leftover uploads
3. Schedule periodic cleanup of expired converted files
4. Accept conversion requests on /api/v1/convert/audio and /api/v1/convert/video

Examples:
  # Listen on the default port
  convertd serve

  # Override the port and ffmpeg binary
  convertd serve --port 9000 --ffmpeg-binary /opt/ffmpeg/bin/ffmpeg`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().Int("port", 0, "HTTP listen port (overrides config)")
	serveCmd.Flags().String("host", "", "HTTP listen address (overrides config)")
	serveCmd.Flags().String("base-dir", "", "storage base directory (overrides config)")
	serveCmd.Flags().String("ffmpeg-binary", "", "path to the ffmpeg binary (overrides config and auto-detection)")
}

// overrideString applies a string flag to dst when the flag was explicitly set.
func overrideString(flags *pflag.FlagSet, name string, dst *string) {
	if flags.Changed(name) {
		*dst, _ = flags.GetString(name)
	}
}

// overrideInt applies an int flag to dst when the flag was explicitly set.
func overrideInt(flags *pflag.FlagSet, name string, dst *int) {
	if flags.Changed(name) {
		*dst, _ = flags.GetInt(name)
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	overrideInt(cmd.Flags(), "port", &cfg.Server.Port)
	overrideString(cmd.Flags(), "host", &cfg.Server.Host)
	overrideString(cmd.Flags(), "base-dir", &cfg.Storage.BaseDir)
	overrideString(cmd.Flags(), "ffmpeg-binary", &cfg.FFmpeg.BinaryPath)

	initLogging(cfg)
	logger := slog.Default()

	versionInfo := version.GetInfo()
	logger.Info("convertd starting",
		slog.String("version", versionInfo.Version),
		slog.String("commit", versionInfo.Commit),
		slog.String("built", versionInfo.Date),
		slog.String("go", versionInfo.GoVersion),
		slog.String("platform", versionInfo.Platform),
	)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	binaryPath, err := ffmpeg.FindBinary(cfg.FFmpeg.BinaryPath)
	if err != nil {
		return fmt.Errorf("locating ffmpeg: %w", err)
	}
	detector := ffmpeg.NewDetector(binaryPath)
	if info, err := detector.Detect(ctx); err != nil {
		logger.Warn("ffmpeg version probe failed",
			slog.String("binary", binaryPath),
			slog.String("error", err.Error()),
		)
	} else {
		logger.Info("ffmpeg detected",
			slog.String("binary", info.Path),
			slog.String("version", info.Version),
		)
	}

	uploads, err := storage.NewSandbox(cfg.Storage.UploadPath())
	if err != nil {
		return fmt.Errorf("preparing upload directory: %w", err)
	}
	outputs, err := storage.NewSandbox(cfg.Storage.OutputPath())
	if err != nil {
		return fmt.Errorf("preparing output directory: %w", err)
	}

	cleaner := storage.NewCleaner(observability.WithComponent(logger, "cleanup"))

	// Uploads are transient per-job scratch files; anything left over is an
	// orphan from an unclean shutdown.
	if removed, err := cleaner.SweepAll(uploads); err != nil {
		logger.Warn("purging stale uploads", slog.String("error", err.Error()))
	} else if removed > 0 {
		logger.Info("purged stale uploads", slog.Int("removed", removed))
	}

	var scheduler *cron.Cron
	if cfg.Cleanup.Enabled {
		scheduler = cron.New(cron.WithSeconds())
		_, err := scheduler.AddFunc(cfg.Cleanup.Cron, func() {
			removed, err := cleaner.SweepOlderThan(outputs, cfg.Storage.Retention)
			if err != nil {
				logger.Warn("scheduled cleanup failed", slog.String("error", err.Error()))
				return
			}
			if removed > 0 {
				logger.Info("cleaned up expired files", slog.Int("removed", removed))
			}
		})
		if err != nil {
			return fmt.Errorf("scheduling cleanup %q: %w", cfg.Cleanup.Cron, err)
		}
		scheduler.Start()
		defer scheduler.Stop()
	}

	exec := executor.New(binaryPath, observability.WithComponent(logger, "executor"))
	svc := service.NewConversionService(
		uploads,
		outputs,
		exec,
		cfg.Storage.MaxUploadSize.Bytes(),
		observability.WithComponent(logger, "service"),
	)

	server := httpserver.NewServer(httpserver.ServerConfig{
		Host:            cfg.Server.Host,
		Port:            cfg.Server.Port,
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		IdleTimeout:     httpserver.DefaultServerConfig().IdleTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	}, logger, versionInfo.Version)

	handlers.NewHealthHandler(versionInfo.Version, detector).Register(server.API())
	handlers.NewFormatsHandler().Register(server.API())
	handlers.NewVersionHandler().Register(server.API())
	handlers.NewConvertHandler(svc, cfg.Conversion, observability.WithComponent(logger, "http")).Register(server.Router())
	handlers.NewDownloadHandler(outputs, observability.WithComponent(logger, "http")).Register(server.Router())

	return server.ListenAndServe(ctx)
}
