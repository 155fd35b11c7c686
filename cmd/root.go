package cmd

import (
	"context"
	"fmt"
	"runtime"

	"github.com/AnyUserName/imgfit/internal/config"
	"github.com/AnyUserName/imgfit/internal/logger"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	version    = "0.1.0"
	configPath string
	verbose    bool
	logLevel   string
	logFile    string

	// Populated by loadRuntime before any subcommand runs.
	cfg *config.Config
	log *logrus.Logger
)

var rootCmd = &cobra.Command{
	Use:   "imgfit",
	Short: "Compress images to an exact byte budget",
	Long: `imgfit shrinks images until they fit a target file size while keeping
as much fidelity as it can.

Lossy formats (JPEG, WebP, AVIF) first trade encoder quality; when even the
lowest quality is too large, or the format is lossless (PNG), the image is
scaled down instead. Every input always yields an output file.`,
	Version:           version,
	SilenceUsage:      true,
	PersistentPreRunE: loadRuntime,
}

// Execute runs the root command with ctx as the base context.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default ./imgfit.yaml or ~/.config/imgfit/imgfit.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (debug logging)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "also write JSON logs to this file (rotated)")
	rootCmd.SetVersionTemplate(versionString() + "\n")
}

func versionString() string {
	return fmt.Sprintf("imgfit %s (%s/%s, %s)", version, runtime.GOOS, runtime.GOARCH, runtime.Version())
}

// loadRuntime reads the config file and builds the logger. Flags win over
// config values.
func loadRuntime(cmd *cobra.Command, _ []string) error {
	c, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if logLevel != "" {
		c.Logging.Level = logLevel
	}
	if verbose {
		c.Logging.Level = "debug"
	}
	if logFile != "" {
		c.Logging.FilePath = logFile
	}

	l, err := logger.NewLogger(logger.LoggerConfig{
		Level:      c.Logging.Level,
		FilePath:   c.Logging.FilePath,
		MaxSize:    c.Logging.MaxSize,
		MaxBackups: c.Logging.MaxBackups,
		MaxAge:     c.Logging.MaxAge,
		Compress:   c.Logging.Compress,
		Console:    cmd.ErrOrStderr(),
		JSON:       c.Logging.JSON,
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	cfg, log = c, l
	return nil
}
