package output

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"time"
)

// Writer outputs JSONL records.
//
// Implementations must be safe for concurrent use. Each Write* method emits
// a complete record as a single line of JSON followed by a newline.
type Writer interface {
	WriteObject(ctx context.Context, obj *ObjectRecord) error
	WriteTransfer(ctx context.Context, tr *TransferRecord) error
	WriteError(ctx context.Context, err *ErrorRecord) error
	WriteSummary(ctx context.Context, sum *SummaryRecord) error

	// Close flushes any buffered output and releases resources.
	Close() error
}

// JSONLWriter writes records as newline-delimited JSON to an io.Writer.
//
// Writes are serialized with a mutex so lines never interleave.
type JSONLWriter struct {
	w      io.Writer
	runID  string
	bucket string
	mu     sync.Mutex
	closed bool
}

// NewJSONLWriter creates a new JSONL writer.
//
// runID correlates all records of one invocation; bucket is stamped on every
// envelope.
func NewJSONLWriter(w io.Writer, runID, bucket string) *JSONLWriter {
	return &JSONLWriter{
		w:      w,
		runID:  runID,
		bucket: bucket,
	}
}

// WriteObject emits an object record.
func (jw *JSONLWriter) WriteObject(ctx context.Context, obj *ObjectRecord) error {
	return jw.writeRecord(ctx, TypeObject, obj)
}

// WriteTransfer emits a transfer record.
func (jw *JSONLWriter) WriteTransfer(ctx context.Context, tr *TransferRecord) error {
	return jw.writeRecord(ctx, TypeTransfer, tr)
}

// WriteError emits an error record.
func (jw *JSONLWriter) WriteError(ctx context.Context, err *ErrorRecord) error {
	return jw.writeRecord(ctx, TypeError, err)
}

// WriteSummary emits a summary record.
func (jw *JSONLWriter) WriteSummary(ctx context.Context, sum *SummaryRecord) error {
	return jw.writeRecord(ctx, TypeSummary, sum)
}

// Close marks the writer as closed.
// The underlying io.Writer is NOT closed; that stays with the caller.
func (jw *JSONLWriter) Close() error {
	jw.mu.Lock()
	defer jw.mu.Unlock()

	jw.closed = true
	return nil
}

func (jw *JSONLWriter) writeRecord(ctx context.Context, recordType string, data any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	dataBytes, err := json.Marshal(data)
	if err != nil {
		return &WriteError{Op: "marshal_data", Err: err}
	}

	jw.mu.Lock()
	defer jw.mu.Unlock()

	if jw.closed {
		return ErrWriterClosed
	}

	recordBytes, err := json.Marshal(Record{
		Type:   recordType,
		TS:     time.Now().UTC(),
		RunID:  jw.runID,
		Bucket: jw.bucket,
		Data:   dataBytes,
	})
	if err != nil {
		return &WriteError{Op: "marshal_record", Err: err}
	}

	// io.Writer may return n < len(p) with a nil error; a truncated line
	// would corrupt the stream.
	recordBytes = append(recordBytes, '\n')
	if err := writeAll(jw.w, recordBytes); err != nil {
		return &WriteError{Op: "write", Err: err}
	}

	return nil
}

// writeAll writes all bytes to w, handling short writes.
func writeAll(w io.Writer, p []byte) error {
	for len(p) > 0 {
		n, err := w.Write(p)
		if err != nil {
			return err
		}
		if n == 0 {
			return io.ErrShortWrite
		}
		p = p[n:]
	}
	return nil
}

var _ Writer = (*JSONLWriter)(nil)
