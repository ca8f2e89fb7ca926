package s3

import (
	"io"

	"github.com/3leaps/s3up/pkg/provider"
)

// countingReader reports bytes to a sink as the upload manager consumes them.
//
// Only Read is exposed, so the upload manager buffers each part and never
// seeks. Every byte of the file is reported once.
type countingReader struct {
	r    io.Reader
	sink provider.ProgressSink
}

func (cr *countingReader) Read(p []byte) (int, error) {
	n, err := cr.r.Read(p)
	if n > 0 && cr.sink != nil {
		cr.sink.Add(int64(n))
	}
	return n, err
}

// countingWriterAt reports bytes to a sink as download parts land on disk.
// The download manager calls WriteAt from several goroutines.
type countingWriterAt struct {
	w    io.WriterAt
	sink provider.ProgressSink
}

func (cw *countingWriterAt) WriteAt(p []byte, off int64) (int, error) {
	n, err := cw.w.WriteAt(p, off)
	if n > 0 && cw.sink != nil {
		cw.sink.Add(int64(n))
	}
	return n, err
}
