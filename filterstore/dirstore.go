package filterstore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/datatrails/go-datatrails-common/logger"
)

const FileExtension = ".bloom"

// DirStore keeps one file per filter in a single directory.
type DirStore struct {
	log logger.Logger
	dir string
}

// NewDirStore creates dir if needed.
func NewDirStore(log logger.Logger, dir string) (*DirStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DirStore{log: log, dir: dir}, nil
}

func (s *DirStore) Dir() string { return s.dir }

func (s *DirStore) path(name string) string {
	return filepath.Join(s.dir, name+FileExtension)
}

// Put writes data to a temporary file and renames it over the previous
// version, so readers never observe a partial filter.
func (s *DirStore) Put(ctx context.Context, name string, data []byte) error {
	if err := CheckName(name); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(s.dir, name+".tmp*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err = tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err = tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err = os.Rename(tmpName, s.path(name)); err != nil {
		os.Remove(tmpName)
		return err
	}
	s.log.Debugf("dirstore put: name=%s, bytes=%d", name, len(data))
	return nil
}

func (s *DirStore) Get(ctx context.Context, name string) ([]byte, error) {
	if err := CheckName(name); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path(name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return nil, err
	}
	s.log.Debugf("dirstore get: name=%s, bytes=%d", name, len(data))
	return data, nil
}
