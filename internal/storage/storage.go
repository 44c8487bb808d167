// Package storage persists uploaded product images on local disk.
package storage

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// ErrUnsupportedType is returned when an upload is not an image.
var ErrUnsupportedType = errors.New("unsupported image type")

// sniffLen is how many leading bytes are read for type detection.
const sniffLen = 3072

// StoredImage describes a saved upload.
type StoredImage struct {
	// Ref is the public path under which the image is served.
	Ref      string
	MimeType string
}

// ImageStore saves product images.
type ImageStore interface {
	Save(ctx context.Context, name string, r io.Reader) (StoredImage, error)
}

// DiskImageStore writes images below a base directory and references them
// by a URL prefix.
type DiskImageStore struct {
	dir       string
	urlPrefix string
}

// NewDiskImageStore creates the directory if needed.
func NewDiskImageStore(dir, urlPrefix string) (*DiskImageStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload directory %s: %w", dir, err)
	}
	return &DiskImageStore{
		dir:       dir,
		urlPrefix: strings.TrimRight(urlPrefix, "/"),
	}, nil
}

// Dir returns the directory served as static content.
func (s *DiskImageStore) Dir() string {
	return s.dir
}

// Save detects the content type of r, rejects anything but images and
// writes the content under a random file name.
func (s *DiskImageStore) Save(ctx context.Context, name string, r io.Reader) (StoredImage, error) {
	br := bufio.NewReaderSize(r, sniffLen)
	head, err := br.Peek(sniffLen)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return StoredImage{}, fmt.Errorf("read upload: %w", err)
	}

	mtype := mimetype.Detect(head)
	if !strings.HasPrefix(mtype.String(), "image/") {
		return StoredImage{}, fmt.Errorf("%w: %s", ErrUnsupportedType, mtype.String())
	}
	if err := ctx.Err(); err != nil {
		return StoredImage{}, err
	}

	ext := mtype.Extension()
	if ext == "" {
		ext = filepath.Ext(name)
	}
	fileName := uuid.NewString() + ext

	tmp, err := os.CreateTemp(s.dir, ".incoming-*")
	if err != nil {
		return StoredImage{}, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if tmpPath != "" {
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := io.Copy(tmp, br); err != nil {
		_ = tmp.Close()
		return StoredImage{}, fmt.Errorf("write upload: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return StoredImage{}, fmt.Errorf("close upload: %w", err)
	}
	if err := os.Rename(tmpPath, filepath.Join(s.dir, fileName)); err != nil {
		return StoredImage{}, fmt.Errorf("store upload: %w", err)
	}
	tmpPath = ""

	return StoredImage{
		Ref:      s.urlPrefix + "/" + fileName,
		MimeType: mtype.String(),
	}, nil
}
