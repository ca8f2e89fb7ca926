package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/3leaps/s3up/internal/config"
	"github.com/3leaps/s3up/internal/observability"
	"github.com/3leaps/s3up/pkg/output"
	"github.com/3leaps/s3up/pkg/provider"
)

type uploadCall struct {
	Path, Bucket, Key string
}

type downloadCall struct {
	Bucket, Key, LocalPath string
}

// fakeProvider records calls in place of a real bucket.
type fakeProvider struct {
	mu        sync.Mutex
	uploads   []uploadCall
	downloads []downloadCall
	objects   []provider.ObjectSummary
	headErr   error
	content   string
	closed    bool
}

func (f *fakeProvider) Upload(_ context.Context, localPath, bucket, key string, sink provider.ProgressSink) error {
	info, err := os.Stat(localPath)
	if err != nil {
		return err
	}
	f.mu.Lock()
	f.uploads = append(f.uploads, uploadCall{localPath, bucket, key})
	f.mu.Unlock()
	sink.Add(info.Size())
	return nil
}

func (f *fakeProvider) Download(_ context.Context, bucket, key, localPath string, sink provider.ProgressSink) (int64, error) {
	f.mu.Lock()
	f.downloads = append(f.downloads, downloadCall{bucket, key, localPath})
	f.mu.Unlock()
	if err := os.WriteFile(localPath, []byte(f.content), 0o644); err != nil {
		return 0, err
	}
	sink.Add(int64(len(f.content)))
	return int64(len(f.content)), nil
}

func (f *fakeProvider) List(_ context.Context, _ provider.ListOptions) (*provider.ListResult, error) {
	return &provider.ListResult{Objects: f.objects}, nil
}

func (f *fakeProvider) Head(_ context.Context, bucket, key string) (*provider.ObjectMeta, error) {
	if f.headErr != nil {
		return nil, f.headErr
	}
	return &provider.ObjectMeta{ObjectSummary: provider.ObjectSummary{Key: key, Size: int64(len(f.content))}}, nil
}

func (f *fakeProvider) Close() error {
	f.closed = true
	return nil
}

type cliResult struct {
	logBuf      *bytes.Buffer
	logs        string
	stdout      string
	providerNew int
	err         error
}

// runCLI executes the root command against fake and restores global state afterwards.
func runCLI(t *testing.T, fake *fakeProvider, args ...string) cliResult {
	t.Helper()

	t.Setenv("AWS_S3_BUCKET", "test-bucket")
	t.Setenv("AWS_REGION", "")
	t.Setenv("S3UP_ENDPOINT", "")
	t.Setenv("S3UP_PROFILE", "")
	t.Setenv("S3UP_LOG_LEVEL", "")
	t.Setenv("S3UP_CONCURRENCY", "")
	t.Setenv("S3UP_NO_PROGRESS", "true")

	var res cliResult
	var logs, stdout bytes.Buffer

	origLogOutput, origNewProvider, origLogger := logOutput, newProvider, observability.CLILogger
	logOutput = &logs
	newProvider = func(context.Context, *config.Config) (provider.Provider, error) {
		res.providerNew++
		return fake, nil
	}
	t.Cleanup(func() {
		logOutput, newProvider, observability.CLILogger = origLogOutput, origNewProvider, origLogger
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		resetFlags(rootCmd)
	})

	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stdout)
	rootCmd.SetArgs(args)

	res.err = rootCmd.ExecuteContext(context.Background())
	res.logBuf = &logs
	res.logs = logs.String()
	res.stdout = stdout.String()
	return res
}

func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.PersistentFlags().VisitAll(reset)
	c.Flags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func exitCode(t *testing.T, err error) *ExitError {
	t.Helper()
	var ee *ExitError
	require.True(t, errors.As(err, &ee), "expected *ExitError, got %v", err)
	return ee
}

func TestUpload_Success(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("hello worl"), 0o644))
	t.Chdir(dir)

	fake := &fakeProvider{}
	res := runCLI(t, fake, "upload", "./notes.txt")
	require.NoError(t, res.err)

	require.Len(t, fake.uploads, 1)
	assert.Equal(t, uploadCall{Path: "./notes.txt", Bucket: "test-bucket", Key: "notes.txt"}, fake.uploads[0])
	assert.Contains(t, res.logs, "[INFO] Uploaded 'notes.txt' to bucket 'test-bucket'.")
	assert.True(t, fake.closed)
}

func TestUpload_Rejected(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "image.gif"), []byte("GIF89a"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "empty.txt"), nil, 0o644))
	t.Chdir(dir)

	tests := []struct {
		name     string
		path     string
		wantCode int
		wantLog  string
	}{
		{
			name:     "unsupported extension",
			path:     "./image.gif",
			wantCode: foundry.ExitInvalidArgument,
			wantLog:  "[ERROR] File type '.gif' not allowed. Allowed types: .txt, .pdf, .jpg, .png",
		},
		{
			name:     "empty file",
			path:     "./empty.txt",
			wantCode: foundry.ExitInvalidArgument,
			wantLog:  "[WARN] File is empty.",
		},
		{
			name:     "missing file",
			path:     "./missing.txt",
			wantCode: foundry.ExitFileNotFound,
			wantLog:  "[ERROR] File does not exist.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeProvider{}
			res := runCLI(t, fake, "upload", tt.path)

			ee := exitCode(t, res.err)
			assert.Equal(t, tt.wantCode, ee.Code)
			assert.True(t, ee.Logged)
			assert.Contains(t, res.logs, tt.wantLog)
			assert.Empty(t, fake.uploads)
		})
	}
}

func TestMissingFilename(t *testing.T) {
	tests := []struct {
		action  string
		wantLog string
	}{
		{"upload", "[ERROR] Please provide the file path to upload."},
		{"download", "[ERROR] Please provide the file name to download."},
	}

	for _, tt := range tests {
		t.Run(tt.action, func(t *testing.T) {
			res := runCLI(t, &fakeProvider{}, tt.action)

			ee := exitCode(t, res.err)
			assert.Equal(t, foundry.ExitInvalidArgument, ee.Code)
			assert.ErrorIs(t, res.err, errMissingFilename)
			assert.Contains(t, res.logs, tt.wantLog)
			assert.Zero(t, res.providerNew)
		})
	}
}

func TestDownload_Success(t *testing.T) {
	t.Chdir(t.TempDir())

	fake := &fakeProvider{content: "%PDF-1.4"}
	res := runCLI(t, fake, "download", "report.pdf")
	require.NoError(t, res.err)

	require.Len(t, fake.downloads, 1)
	assert.Equal(t, downloadCall{Bucket: "test-bucket", Key: "report.pdf", LocalPath: "report.pdf"}, fake.downloads[0])
	assert.Contains(t, res.logs, "[INFO] Downloaded 'report.pdf' from bucket 'test-bucket'.")

	data, err := os.ReadFile("report.pdf")
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4", string(data))
}

func TestDownload_ProviderError(t *testing.T) {
	t.Chdir(t.TempDir())

	fake := &fakeProvider{headErr: &provider.ProviderError{
		Op: "Head", Provider: provider.ProviderS3, Bucket: "test-bucket", Key: "gone.txt", Err: provider.ErrNotFound,
	}}
	res := runCLI(t, fake, "download", "gone.txt")

	ee := exitCode(t, res.err)
	assert.Equal(t, foundry.ExitExternalServiceUnavailable, ee.Code)
	assert.False(t, ee.Logged)
	assert.Equal(t, "Download failed: object not found.", ee.Message)
	assert.Empty(t, fake.downloads)
}

func TestDownload_ProviderErrorJSONL(t *testing.T) {
	t.Chdir(t.TempDir())

	fake := &fakeProvider{headErr: &provider.ProviderError{
		Op: "Head", Provider: provider.ProviderS3, Bucket: "test-bucket", Key: "gone.txt", Err: provider.ErrAccessDenied,
	}}
	res := runCLI(t, fake, "download", "gone.txt", "--output", "jsonl")
	require.Error(t, res.err)

	var rec output.Record
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(res.stdout)), &rec))
	assert.Equal(t, output.TypeError, rec.Type)

	var payload output.ErrorRecord
	require.NoError(t, json.Unmarshal(rec.Data, &payload))
	assert.Equal(t, output.ErrCodeAccessDenied, payload.Code)
	assert.Equal(t, "gone.txt", payload.Key)
}

func TestList_Log(t *testing.T) {
	fake := &fakeProvider{objects: []provider.ObjectSummary{{Key: "b.png", Size: 4}, {Key: "a.txt", Size: 3}}}

	// A trailing filename is ignored.
	res := runCLI(t, fake, "list", "ignored.txt")
	require.NoError(t, res.err)

	assert.Contains(t, res.logs, "[INFO] Files in bucket:")
	bIdx := strings.Index(res.logs, "- b.png")
	aIdx := strings.Index(res.logs, "- a.txt")
	require.GreaterOrEqual(t, bIdx, 0)
	require.GreaterOrEqual(t, aIdx, 0)
	assert.Less(t, bIdx, aIdx)
	assert.Empty(t, res.stdout)
}

func TestList_Empty(t *testing.T) {
	res := runCLI(t, &fakeProvider{}, "list")
	require.NoError(t, res.err)

	assert.Contains(t, res.logs, "[INFO] Bucket is empty.")
	assert.NotContains(t, res.logs, "Files in bucket:")
}

func TestList_JSONL(t *testing.T) {
	fake := &fakeProvider{objects: []provider.ObjectSummary{{Key: "a.txt", Size: 3}, {Key: "b.png", Size: 4}}}

	res := runCLI(t, fake, "list", "--output", "jsonl")
	require.NoError(t, res.err)

	lines := strings.Split(strings.TrimSpace(res.stdout), "\n")
	require.Len(t, lines, 3)

	types := make([]string, len(lines))
	for i, line := range lines {
		var rec output.Record
		require.NoError(t, json.Unmarshal([]byte(line), &rec))
		assert.Equal(t, "test-bucket", rec.Bucket)
		assert.NotEmpty(t, rec.RunID)
		types[i] = rec.Type
	}
	assert.Equal(t, []string{output.TypeObject, output.TypeObject, output.TypeSummary}, types)
	assert.NotContains(t, res.logs, "- a.txt")
}

func TestList_NegativeMaxKeys(t *testing.T) {
	res := runCLI(t, &fakeProvider{}, "list", "--max-keys", "-1")

	ee := exitCode(t, res.err)
	assert.Equal(t, foundry.ExitInvalidArgument, ee.Code)
	assert.Zero(t, res.providerNew)
}

func TestInvalidOutputFormat(t *testing.T) {
	res := runCLI(t, &fakeProvider{}, "list", "--output", "yaml")

	ee := exitCode(t, res.err)
	assert.Equal(t, foundry.ExitInvalidArgument, ee.Code)
	assert.Contains(t, ee.Err.Error(), "output must be one of: log, jsonl")
}

func TestUnknownAction(t *testing.T) {
	res := runCLI(t, &fakeProvider{}, "copy", "notes.txt")
	require.Error(t, res.err)

	var ee *ExitError
	assert.False(t, errors.As(res.err, &ee))
	assert.Contains(t, res.err.Error(), `unknown command "copy"`)
	assert.Zero(t, res.providerNew)
}

func TestNoAction(t *testing.T) {
	res := runCLI(t, &fakeProvider{}, []string{}...)

	ee := exitCode(t, res.err)
	assert.Equal(t, foundry.ExitInvalidArgument, ee.Code)
	assert.ErrorIs(t, res.err, errMissingAction)
	assert.Contains(t, res.stdout, "Usage:")
}

func TestConfigurationErrorsAreReported(t *testing.T) {
	tests := []struct {
		name        string
		args        []string
		wantMessage string
		wantDetail  string
	}{
		{
			name:        "unknown log level",
			args:        []string{"list", "--log-level", "bogus"},
			wantMessage: "[ERROR] Invalid --log-level value",
			wantDetail:  "bogus",
		},
		{
			name:        "concurrency below one",
			args:        []string{"list", "--concurrency", "-3"},
			wantMessage: "[ERROR] Invalid configuration",
			wantDetail:  "concurrency must be >= 1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := runCLI(t, &fakeProvider{}, tt.args...)
			require.Error(t, res.err)
			assert.Zero(t, res.providerNew)

			var stderr bytes.Buffer
			code := reportError(&stderr, res.err)

			assert.Equal(t, foundry.ExitInvalidArgument, code)
			logged := res.logBuf.String()
			assert.Contains(t, logged, tt.wantMessage)
			assert.Contains(t, logged, tt.wantDetail)
		})
	}
}
