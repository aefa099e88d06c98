package storage

import (
	"io"
	"path"
)

// BlobStore holds uploaded material files. Keys are forward-slash paths
// relative to the store root.
type BlobStore interface {
	Put(key string, r io.Reader) (string, error) // returns canonical key
	Get(key string) (io.ReadCloser, error)
	Delete(key string) error
	SignedURL(key string) (string, error) // fs returns "file://..." for dev
}

// MaterialKey builds the canonical blob key for a material's source file.
func MaterialKey(materialID, filename string) string {
	return path.Join("materials", materialID, path.Base(filename))
}
