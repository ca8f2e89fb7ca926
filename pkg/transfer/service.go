// Package transfer implements the s3up operations: validated upload,
// download, and bucket listing.
//
// A Service wraps a provider.Provider with local validation, progress
// reporting and log output. It holds no state between calls.
package transfer

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/3leaps/s3up/pkg/output"
	"github.com/3leaps/s3up/pkg/progress"
	"github.com/3leaps/s3up/pkg/provider"
)

// Config configures a Service.
type Config struct {
	// Bucket is the target bucket. It is not validated; an empty name
	// surfaces as a storage error on the first call.
	Bucket string

	// AllowedExtensions restricts uploads by file extension (with leading dot,
	// compared case-insensitively). Empty uses DefaultAllowedExtensions.
	AllowedExtensions []string

	// Prefix restricts List to keys starting with this value.
	Prefix string

	// MaxKeys is the List page size. Zero uses the provider default.
	MaxKeys int
}

// Service runs upload, download and list against a single bucket.
type Service struct {
	prov    provider.Provider
	log     *zap.Logger
	cfg     Config
	display progress.DisplayFunc
	writer  output.Writer
}

// Option customizes a Service.
type Option func(*Service)

// WithDisplay sets how transfer progress is rendered. Default: progress.Discard.
func WithDisplay(fn progress.DisplayFunc) Option {
	return func(s *Service) { s.display = fn }
}

// WithWriter emits JSONL records for every transfer and listed object.
// When set, List writes object records instead of per-key log lines.
func WithWriter(w output.Writer) Option {
	return func(s *Service) { s.writer = w }
}

// New returns a Service using prov for storage calls.
func New(prov provider.Provider, log *zap.Logger, cfg Config, opts ...Option) *Service {
	if log == nil {
		log = zap.NewNop()
	}

	allowed := cfg.AllowedExtensions
	if len(allowed) == 0 {
		allowed = DefaultAllowedExtensions
	}
	cfg.AllowedExtensions = make([]string, len(allowed))
	for i, ext := range allowed {
		cfg.AllowedExtensions[i] = strings.ToLower(ext)
	}

	s := &Service{
		prov:    prov,
		log:     log,
		cfg:     cfg,
		display: progress.Discard,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Upload validates filePath and uploads it under its base name.
//
// Validation failures are logged and returned as *ValidationError without
// touching the provider. Storage failures are returned unlogged; the caller
// decides how to report them.
func (s *Service) Upload(ctx context.Context, filePath string) error {
	size, err := validateUpload(filePath, s.cfg.AllowedExtensions)
	if err != nil {
		s.logValidation(err)
		return err
	}

	key := filepath.Base(filePath)
	s.log.Debug("Uploading file",
		zap.String("path", filePath),
		zap.String("bucket", s.cfg.Bucket),
		zap.String("key", key),
		zap.Int64("size", size))

	reporter, err := progress.NewForFile(filePath, s.display)
	if err != nil {
		return err
	}
	defer func() { _ = reporter.Close() }()

	start := time.Now()
	if err := s.prov.Upload(ctx, filePath, s.cfg.Bucket, key, reporter); err != nil {
		return err
	}
	_ = reporter.Close()

	s.log.Info(fmt.Sprintf("Uploaded '%s' to bucket '%s'.", key, s.cfg.Bucket),
		zap.Int64("bytes", reporter.Seen()),
		zap.Duration("elapsed", time.Since(start)))

	return s.writeTransfer(ctx, &output.TransferRecord{
		Direction: output.DirectionUpload,
		Key:       key,
		LocalPath: filePath,
		Bytes:     reporter.Seen(),
		Duration:  time.Since(start),
	})
}

// Download fetches the object named name into a local file of the same name.
//
// The object is HEADed first so progress is sized from the remote length.
func (s *Service) Download(ctx context.Context, name string) error {
	meta, err := s.prov.Head(ctx, s.cfg.Bucket, name)
	if err != nil {
		return err
	}

	s.log.Debug("Downloading object",
		zap.String("bucket", s.cfg.Bucket),
		zap.String("key", name),
		zap.Int64("size", meta.Size))

	reporter := progress.New(name, meta.Size, s.display)
	defer func() { _ = reporter.Close() }()

	start := time.Now()
	n, err := s.prov.Download(ctx, s.cfg.Bucket, name, name, reporter)
	if err != nil {
		return err
	}
	_ = reporter.Close()

	s.log.Info(fmt.Sprintf("Downloaded '%s' from bucket '%s'.", name, s.cfg.Bucket),
		zap.Int64("bytes", n),
		zap.Duration("elapsed", time.Since(start)))

	return s.writeTransfer(ctx, &output.TransferRecord{
		Direction: output.DirectionDownload,
		Key:       name,
		LocalPath: name,
		Bytes:     n,
		Duration:  time.Since(start),
	})
}

// ListSummary reports what List saw.
type ListSummary struct {
	Objects int64
	Bytes   int64
	Pages   int
}

// List logs every key in the bucket, following continuation tokens.
// Keys appear in the order the service returns them.
func (s *Service) List(ctx context.Context) (*ListSummary, error) {
	start := time.Now()
	sum := &ListSummary{}
	token := ""

	for {
		res, err := s.prov.List(ctx, provider.ListOptions{
			Bucket:            s.cfg.Bucket,
			Prefix:            s.cfg.Prefix,
			ContinuationToken: token,
			MaxKeys:           s.cfg.MaxKeys,
		})
		if err != nil {
			return sum, err
		}
		sum.Pages++

		for _, obj := range res.Objects {
			if sum.Objects == 0 && s.writer == nil {
				s.log.Info("Files in bucket:")
			}
			sum.Objects++
			sum.Bytes += obj.Size

			if err := s.emitObject(ctx, obj); err != nil {
				return sum, err
			}
		}

		if !res.IsTruncated || res.ContinuationToken == "" {
			break
		}
		token = res.ContinuationToken
	}

	if sum.Objects == 0 {
		s.log.Info("Bucket is empty.")
	}

	if s.writer != nil {
		return sum, s.writer.WriteSummary(ctx, &output.SummaryRecord{
			Objects:  sum.Objects,
			Bytes:    sum.Bytes,
			Pages:    sum.Pages,
			Duration: time.Since(start),
		})
	}
	return sum, nil
}

func (s *Service) emitObject(ctx context.Context, obj provider.ObjectSummary) error {
	if s.writer == nil {
		s.log.Info("- " + obj.Key)
		return nil
	}
	return s.writer.WriteObject(ctx, &output.ObjectRecord{
		Key:          obj.Key,
		Size:         obj.Size,
		ETag:         obj.ETag,
		LastModified: obj.LastModified,
	})
}

func (s *Service) writeTransfer(ctx context.Context, rec *output.TransferRecord) error {
	if s.writer == nil {
		return nil
	}
	return s.writer.WriteTransfer(ctx, rec)
}

func (s *Service) logValidation(err error) {
	ve, ok := err.(*ValidationError)
	if !ok {
		return
	}
	switch ve.Err {
	case ErrFileNotFound:
		s.log.Error("File does not exist.", zap.String("path", ve.Path))
	case ErrEmptyFile:
		s.log.Warn("File is empty.", zap.String("path", ve.Path))
	case ErrExtensionNotAllowed:
		s.log.Error(fmt.Sprintf("File type '%s' not allowed. Allowed types: %s",
			ve.Ext, strings.Join(s.cfg.AllowedExtensions, ", ")),
			zap.String("path", ve.Path))
	}
}
