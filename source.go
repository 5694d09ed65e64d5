package opk

import "io"

// Source is the interface for getting raw data one record at a time.
// Record returns io.EOF when the source is exhausted. Implementations
// of Source should be thread safe.
type Source interface {
	Record() (interface{}, error)
}

// NamedReadCloser is a reader over one raw data object (a file, an S3
// object) which knows the name of the thing it is reading.
type NamedReadCloser interface {
	io.ReadCloser
	Name() string
	Meta() map[string]interface{}
}

// RawSource hands out readers over a series of raw data objects.
// Format decoders (csv, json) are layered on top of a RawSource, so
// that the same decoder works against local files, globs, and cloud
// blob stores. NextReader returns io.EOF once all objects have been
// handed out. Implementations should be safe for concurrent use.
type RawSource interface {
	NextReader() (NamedReadCloser, error)
}
