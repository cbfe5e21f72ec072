package storage

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/userhub/account-api/internal/core/domain"
)

// MaxFileSize is the upload ceiling for profile pictures.
const MaxFileSize = 5 << 20 // 5 MiB

var allowedTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/jpg":  {},
	"image/png":  {},
}

// DiskStore writes profile pictures to a local directory and returns the
// reference under which they are served back (urlPrefix + generated name).
type DiskStore struct {
	dir       string
	urlPrefix string
}

// NewDiskStore creates the target directory if needed.
func NewDiskStore(dir, urlPrefix string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &DiskStore{dir: dir, urlPrefix: urlPrefix}, nil
}

// Save validates the upload and writes it under a generated unique filename.
// Validation happens before any byte is written.
func (s *DiskStore) Save(ctx context.Context, originalName, contentType string, size int64, r io.Reader) (string, error) {
	if _, ok := allowedTypes[contentType]; !ok {
		return "", domain.ErrUnsupportedFile
	}
	if size > MaxFileSize {
		return "", domain.ErrFileTooLarge
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	name := generateFilename(originalName)
	dst, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	defer dst.Close()

	// Size from the multipart header is client-supplied; enforce the cap on
	// the actual bytes as well.
	written, err := io.Copy(dst, io.LimitReader(r, MaxFileSize+1))
	if err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}
	if written > MaxFileSize {
		_ = os.Remove(filepath.Join(s.dir, name))
		return "", domain.ErrFileTooLarge
	}

	return path.Join(s.urlPrefix, name), nil
}

// generateFilename produces a collision-resistant name preserving the
// original extension.
func generateFilename(originalName string) string {
	buf := make([]byte, 8)
	_, _ = rand.Read(buf)
	return fmt.Sprintf("%d-%s%s", time.Now().UnixMilli(), hex.EncodeToString(buf), filepath.Ext(originalName))
}
