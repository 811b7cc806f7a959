package artifact

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/JorjanDorjan/ML-for-agile-methodology/ml"
	"github.com/JorjanDorjan/ML-for-agile-methodology/models"
)

// FileStore keeps the artifact as one JSON file, replaced by rename.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Store writes a to a temporary file next to the live one and renames it into
// place, so readers observe either the old or the new artifact.
func (s *FileStore) Store(ctx context.Context, a *ml.Artifact) error {
	data, err := encode(a)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(err, "creating artifact directory")
	}
	prev, prevErr := os.Stat(s.path)

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return errors.Wrap(err, "creating temporary artifact")
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op once renamed

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrap(err, "writing temporary artifact")
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return errors.Wrap(err, "syncing temporary artifact")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "closing temporary artifact")
	}

	// LastModified must advance on every store, even on coarse mtime clocks.
	if prevErr == nil {
		if info, err := os.Stat(tmpName); err == nil && !info.ModTime().After(prev.ModTime()) {
			bumped := prev.ModTime().Add(time.Millisecond)
			if err := os.Chtimes(tmpName, bumped, bumped); err != nil {
				return errors.Wrap(err, "bumping artifact mtime")
			}
		}
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		return errors.Wrap(err, "replacing artifact")
	}
	return syncDir(dir)
}

func (s *FileStore) Load(ctx context.Context) (*ml.Artifact, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, errors.Wrapf(models.ErrNotTrained, "no artifact at %s", s.path)
	}
	if err != nil {
		return nil, errors.Wrap(err, "reading artifact")
	}
	return decode(data)
}

func (s *FileStore) LastModified(ctx context.Context) (time.Time, error) {
	if err := ctx.Err(); err != nil {
		return time.Time{}, err
	}
	info, err := os.Stat(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return time.Time{}, errors.Wrapf(models.ErrNotTrained, "no artifact at %s", s.path)
	}
	if err != nil {
		return time.Time{}, errors.Wrap(err, "stat artifact")
	}
	return info.ModTime(), nil
}

func syncDir(dir string) error {
	d, err := os.Open(dir)
	if err != nil {
		return errors.Wrap(err, "opening artifact directory")
	}
	defer d.Close()
	if err := d.Sync(); err != nil && !errors.Is(err, os.ErrInvalid) {
		return errors.Wrap(err, "syncing artifact directory")
	}
	return nil
}
