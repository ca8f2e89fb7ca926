// Package output provides JSONL output for s3up results.
//
// Output is structured as typed record envelopes. Each line is a
// self-contained JSON object that can be parsed independently, so
// `s3up list --output jsonl` can be piped into jq or another tool.
package output

import (
	"encoding/json"
	"errors"
	"time"
)

// Record type constants define the envelope types for JSONL output.
// These follow the pattern: s3up.<type>.v<version>
const (
	// TypeObject identifies object listing records.
	TypeObject = "s3up.object.v1"

	// TypeTransfer identifies completed upload/download records.
	TypeTransfer = "s3up.transfer.v1"

	// TypeError identifies error records.
	TypeError = "s3up.error.v1"

	// TypeSummary identifies final summary records.
	TypeSummary = "s3up.summary.v1"
)

// Record is the envelope for all JSONL output.
type Record struct {
	// Type identifies the record type (e.g., "s3up.object.v1").
	Type string `json:"type"`

	// TS is the timestamp when the record was created (RFC3339Nano).
	TS time.Time `json:"ts"`

	// RunID correlates every record emitted by one invocation.
	RunID string `json:"run_id"`

	// Bucket is the bucket the command operated on.
	Bucket string `json:"bucket"`

	// Data contains the type-specific payload as raw JSON.
	Data json.RawMessage `json:"data"`
}

// ObjectRecord is the data payload for object listings.
type ObjectRecord struct {
	// Key is the full object key (path) in the bucket.
	Key string `json:"key"`

	// Size is the object size in bytes.
	Size int64 `json:"size"`

	// ETag is the entity tag, typically an MD5 hash of the object.
	ETag string `json:"etag,omitempty"`

	// LastModified is when the object was last modified.
	LastModified time.Time `json:"last_modified"`
}

// Transfer directions for TransferRecord.
const (
	DirectionUpload   = "upload"
	DirectionDownload = "download"
)

// TransferRecord is the data payload for a completed upload or download.
type TransferRecord struct {
	Direction string `json:"direction"`
	Key       string `json:"key"`
	LocalPath string `json:"local_path"`
	Bytes     int64  `json:"bytes"`

	// Duration is the wall-clock transfer time.
	Duration time.Duration `json:"duration_ns"`
}

// ErrorRecord is the data payload for errors.
type ErrorRecord struct {
	// Code is a machine-readable error code.
	Code string `json:"code"`

	// Message is a human-readable error description.
	Message string `json:"message"`

	// Key is the object key related to this error, if applicable.
	Key string `json:"key,omitempty"`
}

// Error codes for ErrorRecord.
const (
	ErrCodeAccessDenied = "ACCESS_DENIED"
	ErrCodeNotFound     = "NOT_FOUND"
	ErrCodeThrottled    = "THROTTLED"
	ErrCodeUnavailable  = "PROVIDER_UNAVAILABLE"
	ErrCodeInternal     = "INTERNAL"
)

// SummaryRecord is the data payload emitted after a listing.
type SummaryRecord struct {
	// Objects is the number of objects listed.
	Objects int64 `json:"objects"`

	// Bytes is the cumulative size of the listed objects.
	Bytes int64 `json:"bytes"`

	// Pages is the number of list requests made.
	Pages int `json:"pages"`

	// Duration is the total listing duration.
	Duration time.Duration `json:"duration_ns"`
}

// Writer errors.
var (
	// ErrWriterClosed is returned when writing to a closed writer.
	ErrWriterClosed = errors.New("writer is closed")
)

// WriteError wraps errors that occur during write operations.
type WriteError struct {
	Op  string // Operation that failed (e.g., "marshal_data", "write")
	Err error  // Underlying error
}

func (e *WriteError) Error() string {
	return "output: " + e.Op + ": " + e.Err.Error()
}

func (e *WriteError) Unwrap() error {
	return e.Err
}
