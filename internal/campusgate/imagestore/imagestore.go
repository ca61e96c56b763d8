package imagestore

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Store keeps captured stills between the moment an unauthorized attempt
// is recorded and the moment its alert has been dispatched.  References
// are opaque handles; callers never touch paths directly except through
// Path (needed by the mail transport to embed the file).
type Store interface {
	Save(data []byte) (ref string, err error)
	Path(ref string) string
	Delete(ref string) error
}

// Dir stores stills as files in a single directory, one uuid-named jpeg
// per captured frame.
type Dir struct {
	root string
}

func NewDir(root string) (*Dir, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("mkdir image dir: %w", err)
	}
	return &Dir{root: root}, nil
}

func (d *Dir) Save(data []byte) (string, error) {
	ref := "unauthorized_" + uuid.NewString() + ".jpg"
	if err := os.WriteFile(filepath.Join(d.root, ref), data, 0o644); err != nil {
		return "", fmt.Errorf("write captured image: %w", err)
	}
	return ref, nil
}

// Path resolves a reference to its on-disk location.  The reference is
// reduced to its base name so a crafted ref cannot escape the directory.
func (d *Dir) Path(ref string) string {
	return filepath.Join(d.root, filepath.Base(ref))
}

// Delete removes a stored still.  Deleting a reference that is already
// gone is not an error.
func (d *Dir) Delete(ref string) error {
	err := os.Remove(d.Path(ref))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}
