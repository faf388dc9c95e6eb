// Package storage keeps uploaded attachment files on disk.
package storage

// Blobs stores attachment files by name.
type Blobs interface {
	// Put stores data under a content-derived name and returns the name and
	// its sniffed media type.
	Put(data []byte) (name, mediaType string, err error)
	// Get returns the file's bytes and media type.
	Get(name string) (data []byte, mediaType string, err error)
	// Delete removes a stored file.
	Delete(name string) error
}
