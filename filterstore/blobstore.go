package filterstore

import (
	"context"
	"fmt"
	"io"
	"path"

	"github.com/datatrails/go-datatrails-common/azblob"
	"github.com/datatrails/go-datatrails-common/logger"
)

// blobStorer is the subset of the datatrails azblob storer used here.
type blobStorer interface {
	Put(ctx context.Context, identity string, source io.ReadSeekCloser, opts ...azblob.Option) (*azblob.WriteResponse, error)
	Reader(ctx context.Context, identity string, opts ...azblob.Option) (*azblob.ReaderResponse, error)
}

// BlobStore keeps filters as blobs named <prefix>/<name>.bloom.
type BlobStore struct {
	log    logger.Logger
	store  blobStorer
	prefix string
}

func NewBlobStore(log logger.Logger, store blobStorer, prefix string) *BlobStore {
	return &BlobStore{log: log, store: store, prefix: prefix}
}

func (s *BlobStore) BlobPath(name string) string {
	return path.Join(s.prefix, name+FileExtension)
}

func (s *BlobStore) Put(ctx context.Context, name string, data []byte) error {
	if err := CheckName(name); err != nil {
		return err
	}
	blobPath := s.BlobPath(name)
	_, err := s.store.Put(ctx, blobPath, azblob.NewBytesReaderCloser(data),
		azblob.WithTags(map[string]string{"filtername": name}))
	if err != nil {
		return fmt.Errorf("filterstore: put %s: %w", blobPath, err)
	}
	s.log.Debugf("blobstore put: path=%s, bytes=%d", blobPath, len(data))
	return nil
}

func (s *BlobStore) Get(ctx context.Context, name string) ([]byte, error) {
	if err := CheckName(name); err != nil {
		return nil, err
	}
	blobPath := s.BlobPath(name)
	rr, err := s.store.Reader(ctx, blobPath)
	if IsBlobNotFound(err) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, blobPath)
	}
	if err != nil {
		return nil, fmt.Errorf("filterstore: read %s: %w", blobPath, err)
	}
	defer rr.Reader.Close()
	data, err := io.ReadAll(rr.Reader)
	if err != nil {
		return nil, fmt.Errorf("filterstore: read %s: %w", blobPath, err)
	}
	s.log.Debugf("blobstore get: path=%s, bytes=%d", blobPath, len(data))
	return data, nil
}
