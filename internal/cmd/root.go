// Package cmd implements the s3up command line.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/3leaps/s3up/internal/config"
	"github.com/3leaps/s3up/internal/observability"
	"github.com/3leaps/s3up/pkg/progress"
	"github.com/3leaps/s3up/pkg/provider"
	"github.com/3leaps/s3up/pkg/provider/s3"
)

var versionInfo = struct {
	Version   string
	Commit    string
	BuildDate string
}{
	Version:   "dev",
	Commit:    "unknown",
	BuildDate: "unknown",
}

// SetVersionInfo records build metadata for the version command.
func SetVersionInfo(version, commit, buildDate string) {
	versionInfo.Version = version
	versionInfo.Commit = commit
	versionInfo.BuildDate = buildDate
}

// Test seams.
var (
	logOutput   io.Writer = os.Stderr
	progressOut io.Writer = os.Stderr

	newProvider = func(ctx context.Context, cfg *config.Config) (provider.Provider, error) {
		return s3.New(ctx, cfg.S3())
	}
)

const defaultLogLevel = "info"

var errMissingAction = errors.New("an action is required: upload, download or list")

var rootCmd = &cobra.Command{
	Use:   "s3up",
	Short: "Upload, download and list files in an S3 bucket",
	Long: `s3up moves single files between the working directory and one S3 bucket.

The bucket comes from AWS_S3_BUCKET and the region from AWS_REGION
(default eu-north-1). Credentials resolve through the standard AWS chain.

Examples:
  s3up upload ./report.pdf
  s3up download report.pdf
  s3up list --output jsonl`,
	SilenceErrors:     true,
	PersistentPreRunE: initRuntime,
	RunE: func(cmd *cobra.Command, args []string) error {
		_ = cmd.Usage()
		return exitError(foundry.ExitInvalidArgument, "No action given", errMissingAction)
	},
}

func init() {
	setDefaults()

	pf := rootCmd.PersistentFlags()
	pf.StringP("region", "r", "", "AWS region (env AWS_REGION)")
	pf.String("endpoint", "", "Custom S3 endpoint, implies path-style addressing (env S3UP_ENDPOINT)")
	pf.StringP("profile", "p", "", "AWS profile (env S3UP_PROFILE)")
	pf.String("log-level", "", "Log level: debug, info, warn, error (env S3UP_LOG_LEVEL)")
	pf.Int("concurrency", 0, "Parts transferred in parallel (env S3UP_CONCURRENCY)")
	pf.Bool("no-progress", false, "Disable the progress bar")
	pf.StringVarP(&outputFormat, "output", "o", outputLog, "Result format: log or jsonl")

	bindFlag(config.KeyRegion, "region")
	bindFlag(config.KeyEndpoint, "endpoint")
	bindFlag(config.KeyProfile, "profile")
	bindFlag(config.KeyLogLevel, "log-level")
	bindFlag(config.KeyConcurrency, "concurrency")
	bindFlag(config.KeyNoProgress, "no-progress")
}

func setDefaults() {
	config.SetDefaults(viper.GetViper())
}

func bindFlag(key, flag string) {
	_ = viper.BindPFlag(key, rootCmd.PersistentFlags().Lookup(flag))
}

// runtimeConfig is populated by initRuntime before any action runs.
var runtimeConfig *config.Config

func initRuntime(cmd *cobra.Command, _ []string) error {
	// Arguments parsed; further failures are not usage errors.
	cmd.SilenceUsage = true

	// Info-level logger until the configured level is known, so
	// configuration failures are reported.
	if err := observability.InitCLILogger(defaultLogLevel, logOutput); err != nil {
		return exitError(foundry.ExitInvalidArgument, "Invalid log level", err)
	}

	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return exitError(foundry.ExitInvalidArgument, "Invalid configuration", err)
	}
	if err := observability.InitCLILogger(cfg.LogLevel, logOutput); err != nil {
		return exitError(foundry.ExitInvalidArgument, "Invalid --log-level value", err)
	}
	if outputFormat != outputLog && outputFormat != outputJSONL {
		return exitError(foundry.ExitInvalidArgument, "Invalid --output value",
			fmt.Errorf("output must be one of: %s, %s", outputLog, outputJSONL))
	}

	runtimeConfig = cfg
	observability.CLILogger.Debug("Configuration loaded",
		zap.String("bucket", cfg.Bucket),
		zap.String("region", cfg.Region),
		zap.String("endpoint", cfg.Endpoint),
		zap.Int("concurrency", cfg.Concurrency))
	return nil
}

// progressDisplay draws a bar only when stderr is a terminal.
func progressDisplay(cfg *config.Config) progress.DisplayFunc {
	if cfg.NoProgress {
		return progress.Discard
	}
	if f, ok := progressOut.(*os.File); ok {
		if !isatty.IsTerminal(f.Fd()) && !isatty.IsCygwinTerminal(f.Fd()) {
			return progress.Discard
		}
	}
	return progress.BarTo(progressOut)
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err == nil {
		return
	}
	code := reportError(rootCmd.ErrOrStderr(), err)
	_ = observability.CLILogger.Sync()
	os.Exit(code)
}

// reportError logs err unless it was already reported and returns its exit code.
func reportError(stderr io.Writer, err error) int {
	var ee *ExitError
	if errors.As(err, &ee) {
		if !ee.Logged {
			observability.CLILogger.Error(ee.Message, zap.Error(ee.Err))
		}
		return ee.Code
	}
	// Cobra parse failures arrive before the logger exists.
	_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
	return foundry.ExitInvalidArgument
}
