// Package provider defines abstractions for cloud object storage operations.
//
// Providers implement the small surface s3up needs: single-file upload and
// download with progress reporting, listing, and metadata retrieval.
// Authentication uses SDK default credential chains - providers should not
// implement custom auth logic.
package provider

import (
	"context"
	"time"
)

// ProgressSink receives incremental byte counts while a transfer runs.
//
// Providers may call Add from several goroutines at once; implementations
// own their synchronization.
type ProgressSink interface {
	Add(delta int64)
}

// Provider abstracts the storage client used by s3up.
//
// A Provider is bound to a region at construction time. Bucket names are
// passed per call so a single client can serve every command.
//
// Implementations should:
//   - Use SDK default credential chains (AWS default config)
//   - Not retry beyond what the SDK does on its own
//   - Be safe for concurrent use
type Provider interface {
	// Upload transfers the local file at localPath to bucket/key.
	// sink may be nil.
	Upload(ctx context.Context, localPath, bucket, key string, sink ProgressSink) error

	// Download writes bucket/key to localPath, creating or truncating it.
	// sink may be nil.
	Download(ctx context.Context, bucket, key, localPath string, sink ProgressSink) (int64, error)

	// List returns a page of objects in opts.Bucket.
	// Use ContinuationToken from ListResult for subsequent pages.
	List(ctx context.Context, opts ListOptions) (*ListResult, error)

	// Head returns metadata for a single object.
	// Returns ErrNotFound if the object does not exist.
	Head(ctx context.Context, bucket, key string) (*ObjectMeta, error)

	// Close releases any resources held by the provider.
	Close() error
}

// ListOptions configures a List operation.
type ListOptions struct {
	// Bucket is the bucket to list.
	Bucket string

	// Prefix filters results to keys starting with this value.
	// Empty string lists all objects.
	Prefix string

	// ContinuationToken resumes listing from a previous ListResult.
	// Empty string starts from the beginning.
	ContinuationToken string

	// MaxKeys limits the number of objects returned per page.
	// Zero uses provider default (typically 1000).
	MaxKeys int
}

// ListResult contains a page of objects from a List operation.
type ListResult struct {
	// Objects contains the object summaries for this page, in service order.
	Objects []ObjectSummary

	// ContinuationToken is used to retrieve the next page.
	// Empty string indicates no more pages.
	ContinuationToken string

	// IsTruncated indicates whether more results are available.
	IsTruncated bool
}

// ObjectSummary contains basic metadata returned from List operations.
type ObjectSummary struct {
	// Key is the full object key (path) in the bucket.
	Key string

	// Size is the object size in bytes.
	Size int64

	// ETag is the entity tag, typically an MD5 hash of the object.
	ETag string

	// LastModified is when the object was last modified.
	LastModified time.Time
}

// ObjectMeta contains full metadata for a single object.
// Returned by Head operations.
type ObjectMeta struct {
	ObjectSummary

	// ContentType is the MIME type of the object.
	ContentType string
}

// ProviderType identifies a cloud storage provider.
type ProviderType string

// ProviderS3 represents AWS S3 or S3-compatible storage.
const ProviderS3 ProviderType = "s3"

// String returns the string representation of the provider type.
func (p ProviderType) String() string {
	return string(p)
}
