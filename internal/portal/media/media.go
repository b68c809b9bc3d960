// Package media stores user profile images on local disk.
package media

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// ErrUnsupportedType is returned when an upload is not a recognised image format.
var ErrUnsupportedType = errors.New("media: unsupported image type")

// ErrNotFound is returned when no image exists for the requested user.
var ErrNotFound = errors.New("media: image not found")

var allowedTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/png":  {},
	"image/gif":  {},
}

// ImageStore keeps one profile image per user under root/<username>/<username>.jpg.
type ImageStore struct {
	root string
}

func NewImageStore(root string) *ImageStore {
	return &ImageStore{root: root}
}

// SaveProfileImage writes the uploaded image for username, replacing any
// previous one. The content type must be jpeg, png or gif.
func (s *ImageStore) SaveProfileImage(username, contentType string, r io.Reader) error {
	if _, ok := allowedTypes[contentType]; !ok {
		return fmt.Errorf("%w: %s", ErrUnsupportedType, contentType)
	}

	dir := filepath.Join(s.root, username)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	f, err := os.Create(s.imagePath(username))
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		return err
	}
	return f.Close()
}

// Open returns a reader for the stored image. Callers must close it.
func (s *ImageStore) Open(username string) (io.ReadCloser, error) {
	f, err := os.Open(s.imagePath(username))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	return f, err
}

// RemoveUserImages deletes every stored image for username. Removing images
// for a user who never uploaded one is not an error.
func (s *ImageStore) RemoveUserImages(username string) error {
	err := os.RemoveAll(filepath.Join(s.root, username))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

func (s *ImageStore) imagePath(username string) string {
	return filepath.Join(s.root, username, username+".jpg")
}
