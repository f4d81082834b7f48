package storage

import "io"

// SourceStore holds spreadsheets that ingestion reads from.
type SourceStore interface {
	// Put writes r under key and returns the path ingestion should read.
	Put(key string, r io.Reader) (string, error)
	// SaveUpload stores a client-supplied file under a fresh key.
	SaveUpload(filename string, r io.Reader) (string, error)
	// Resolve maps a configured or requested path to an existing file.
	Resolve(path string) (string, error)
}
