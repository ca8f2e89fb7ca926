package cmd

import (
	"context"
	"errors"

	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/3leaps/s3up/internal/observability"
	"github.com/3leaps/s3up/pkg/output"
	"github.com/3leaps/s3up/pkg/provider"
	"github.com/3leaps/s3up/pkg/transfer"
)

const (
	outputLog   = "log"
	outputJSONL = "jsonl"
)

var outputFormat = outputLog

var (
	errMissingFilename = errors.New("filename argument is required")
	errNegativeMaxKeys = errors.New("max-keys must not be negative")
)

// session is the per-invocation wiring shared by the action commands.
type session struct {
	svc    *transfer.Service
	prov   provider.Provider
	writer output.Writer
}

func (s *session) Close() {
	if s.writer != nil {
		_ = s.writer.Close()
	}
	_ = s.prov.Close()
}

// reportFailure emits a JSONL error record when --output jsonl is active.
func (s *session) reportFailure(key string, err error) {
	if s.writer == nil {
		return
	}
	_ = s.writer.WriteError(context.Background(), &output.ErrorRecord{
		Code:    errorCode(err),
		Message: err.Error(),
		Key:     key,
	})
}

func openSession(cmd *cobra.Command, listCfg transfer.Config) (*session, error) {
	cfg := runtimeConfig

	prov, err := newProvider(cmd.Context(), cfg)
	if err != nil {
		return nil, exitError(foundry.ExitExternalServiceUnavailable, "Failed to connect to storage provider", err)
	}

	s := &session{prov: prov}
	opts := []transfer.Option{transfer.WithDisplay(progressDisplay(cfg))}
	if outputFormat == outputJSONL {
		runID := uuid.New().String()
		s.writer = output.NewJSONLWriter(cmd.OutOrStdout(), runID, cfg.Bucket)
		opts = append(opts, transfer.WithWriter(s.writer))
		observability.CLILogger.Debug("JSONL output enabled", zap.String("run_id", runID))
	}

	listCfg.Bucket = cfg.Bucket
	s.svc = transfer.New(prov, observability.CLILogger, listCfg, opts...)
	return s, nil
}

func errorCode(err error) string {
	switch {
	case provider.IsNotFound(err), provider.IsBucketNotFound(err), errors.Is(err, transfer.ErrFileNotFound):
		return output.ErrCodeNotFound
	case provider.IsAccessDenied(err), provider.IsInvalidCredentials(err):
		return output.ErrCodeAccessDenied
	case provider.IsThrottled(err):
		return output.ErrCodeThrottled
	case provider.IsProviderUnavailable(err):
		return output.ErrCodeUnavailable
	default:
		return output.ErrCodeInternal
	}
}
