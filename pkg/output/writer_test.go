package output

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLine(t *testing.T, line string, payload any) Record {
	t.Helper()
	var record Record
	require.NoError(t, json.Unmarshal([]byte(line), &record))
	if payload != nil {
		require.NoError(t, json.Unmarshal(record.Data, payload))
	}
	return record
}

func TestJSONLWriter_WriteObject(t *testing.T) {
	var buf bytes.Buffer
	w := NewJSONLWriter(&buf, "run-123", "my-bucket")

	obj := &ObjectRecord{
		Key:          "reports/q1.pdf",
		Size:         1048576,
		ETag:         "abc123",
		LastModified: time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC),
	}
	require.NoError(t, w.WriteObject(context.Background(), obj))

	var got ObjectRecord
	record := decodeLine(t, buf.String(), &got)

	assert.Equal(t, TypeObject, record.Type)
	assert.Equal(t, "run-123", record.RunID)
	assert.Equal(t, "my-bucket", record.Bucket)
	assert.False(t, record.TS.IsZero())
	assert.Equal(t, *obj, got)
}

func TestJSONLWriter_WriteTransfer(t *testing.T) {
	var buf bytes.Buffer
	w := NewJSONLWriter(&buf, "run-123", "my-bucket")

	require.NoError(t, w.WriteTransfer(context.Background(), &TransferRecord{
		Direction: DirectionUpload,
		Key:       "notes.txt",
		LocalPath: "./notes.txt",
		Bytes:     10,
		Duration:  2 * time.Second,
	}))

	var got TransferRecord
	record := decodeLine(t, buf.String(), &got)

	assert.Equal(t, TypeTransfer, record.Type)
	assert.Equal(t, DirectionUpload, got.Direction)
	assert.Equal(t, "notes.txt", got.Key)
	assert.Equal(t, int64(10), got.Bytes)
	assert.Equal(t, 2*time.Second, got.Duration)
}

func TestJSONLWriter_WriteErrorAndSummary(t *testing.T) {
	var buf bytes.Buffer
	w := NewJSONLWriter(&buf, "run-123", "my-bucket")

	require.NoError(t, w.WriteError(context.Background(), &ErrorRecord{Code: ErrCodeNotFound, Message: "object not found", Key: "x"}))
	require.NoError(t, w.WriteSummary(context.Background(), &SummaryRecord{Objects: 2, Bytes: 7, Pages: 1, Duration: time.Second}))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	var errRec ErrorRecord
	assert.Equal(t, TypeError, decodeLine(t, lines[0], &errRec).Type)
	assert.Equal(t, ErrCodeNotFound, errRec.Code)

	var sum SummaryRecord
	assert.Equal(t, TypeSummary, decodeLine(t, lines[1], &sum).Type)
	assert.Equal(t, int64(2), sum.Objects)
	assert.Equal(t, 1, sum.Pages)
}

func TestObjectRecord_OmitEmptyETag(t *testing.T) {
	data, err := json.Marshal(&ObjectRecord{Key: "a.txt"})
	require.NoError(t, err)
	assert.NotContains(t, string(data), "etag")
}

func TestJSONLWriter_Close(t *testing.T) {
	var buf bytes.Buffer
	w := NewJSONLWriter(&buf, "run-123", "b")

	require.NoError(t, w.Close())

	err := w.WriteObject(context.Background(), &ObjectRecord{Key: "file.txt"})
	assert.ErrorIs(t, err, ErrWriterClosed)
}

func TestJSONLWriter_ConcurrentWrites(t *testing.T) {
	var buf bytes.Buffer
	w := NewJSONLWriter(&buf, "run-123", "b")

	const numWriters = 10
	const writesPerWriter = 100

	var wg sync.WaitGroup
	wg.Add(numWriters)
	for i := 0; i < numWriters; i++ {
		go func(writerID int) {
			defer wg.Done()
			for j := 0; j < writesPerWriter; j++ {
				_ = w.WriteObject(context.Background(), &ObjectRecord{Key: "file.txt", Size: int64(writerID*writesPerWriter + j)})
			}
		}(i)
	}
	wg.Wait()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, numWriters*writesPerWriter)
	for i, line := range lines {
		var record Record
		assert.NoError(t, json.Unmarshal([]byte(line), &record), "line %d should be valid JSON: %s", i, line)
	}
}

func TestJSONLWriter_ContextCancellation(t *testing.T) {
	var buf bytes.Buffer
	w := NewJSONLWriter(&buf, "run-123", "b")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := w.WriteObject(ctx, &ObjectRecord{Key: "file.txt"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, buf.String())
}

func TestJSONLWriter_WriteFailure(t *testing.T) {
	w := NewJSONLWriter(&failingWriter{err: errors.New("disk full")}, "run-123", "b")

	err := w.WriteObject(context.Background(), &ObjectRecord{Key: "file.txt"})
	require.Error(t, err)

	var writeErr *WriteError
	require.True(t, errors.As(err, &writeErr))
	assert.Equal(t, "write", writeErr.Op)
	assert.Equal(t, "output: write: disk full", writeErr.Error())
}

func TestJSONLWriter_ShortWrite(t *testing.T) {
	sw := &shortWriteWriter{bytesPerWrite: 10}
	w := NewJSONLWriter(sw, "run-123", "b")

	require.NoError(t, w.WriteObject(context.Background(), &ObjectRecord{Key: "reports/q1.pdf", Size: 1048576}))

	lines := strings.Split(strings.TrimSpace(sw.buf.String()), "\n")
	require.Len(t, lines, 1)
	assert.Equal(t, TypeObject, decodeLine(t, lines[0], nil).Type)
}

func TestJSONLWriter_ZeroWrite(t *testing.T) {
	w := NewJSONLWriter(&zeroWriteWriter{}, "run-123", "b")

	err := w.WriteObject(context.Background(), &ObjectRecord{Key: "file.txt"})
	assert.ErrorIs(t, err, io.ErrShortWrite)
}

// failingWriter is an io.Writer that always returns an error.
type failingWriter struct {
	err error
}

func (f *failingWriter) Write(p []byte) (n int, err error) {
	return 0, f.err
}

// shortWriteWriter writes at most bytesPerWrite bytes per call, returning nil error.
type shortWriteWriter struct {
	buf           bytes.Buffer
	bytesPerWrite int
}

func (sw *shortWriteWriter) Write(p []byte) (n int, err error) {
	return sw.buf.Write(p[:min(len(p), sw.bytesPerWrite)])
}

// zeroWriteWriter always returns 0 bytes written with nil error.
type zeroWriteWriter struct{}

func (zw *zeroWriteWriter) Write(p []byte) (n int, err error) {
	return 0, nil
}
