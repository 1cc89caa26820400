// Package storage defines the file-system access used for legacy inputs and
// converted outputs.
package storage

import "github.com/starford/postmigrate/internal/models"

// Provider is the interface for post file operations. Paths are relative to
// the provider root and use forward slashes.
type Provider interface {
	// Root returns the absolute directory the provider is bound to.
	Root() string
	// List returns metadata for every file whose relative path matches the
	// doublestar pattern, in lexical order.
	List(pattern string) ([]models.PostMetadata, error)
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Write atomically writes content to path, creating parent directories.
	Write(path string, content []byte) error
	// Delete removes the file at path.
	Delete(path string) error
}
