package ports

import (
	"context"
	"io"
)

// FileStore persists uploaded profile pictures and returns the reference
// under which the stored file is served back.
type FileStore interface {
	Save(ctx context.Context, originalName, contentType string, size int64, r io.Reader) (string, error)
}
