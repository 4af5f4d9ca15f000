package service

import (
	"fmt"

	"github.com/forestrie/go-bloomfilter/bloom"
	"github.com/forestrie/go-bloomfilter/filterstore"
	"github.com/forestrie/go-bloomfilter/hashers"
)

type Config struct {
	// ListenAddr is the host:port the http server binds.
	ListenAddr string

	// StoreBackend is dir for a local directory or azurite for the azure
	// blob storage emulator configured from the AZURITE_ environment.
	StoreBackend string

	// StoreDir is the directory filters are saved to and loaded from. It is
	// created on start up if it does not exist. For the azurite backend it
	// is the blob path prefix instead.
	StoreDir string

	// StoreContainer is the blob container used by the azurite backend.
	StoreContainer string

	// StoreFormat selects the encoding used by save, one of json, cbor,
	// binary or proto. Load accepts any of them.
	StoreFormat string

	// DefaultAlgorithm is the digest used by create requests that do not
	// name one.
	DefaultAlgorithm string

	// MaxBits bounds the size of filters created over http. It must be in
	// [1, bloom.MaxBits].
	MaxBits int

	// SigningKeyFile, when set, names a PEM EC private key. Saved filters are
	// then COSE signed and loads verify the signature.
	SigningKeyFile string
	SigningKeyID   string

	LogLevel string
}

const (
	BackendDir     = "dir"
	BackendAzurite = "azurite"
)

func DefaultConfig() Config {
	return Config{
		ListenAddr:       ":8080",
		StoreBackend:     BackendDir,
		StoreDir:         "filters",
		StoreContainer:   "bloomfilters",
		StoreFormat:      string(filterstore.FormatJSON),
		DefaultAlgorithm: hashers.DefaultAlgorithm,
		MaxBits:          1 << 30,
		SigningKeyID:     "bloomd",
		LogLevel:         "INFO",
	}
}

func (c Config) Validate() error {
	if c.ListenAddr == "" {
		return fmt.Errorf("%w: listen address is required", ErrConfig)
	}
	switch c.StoreBackend {
	case BackendDir:
		if c.StoreDir == "" {
			return fmt.Errorf("%w: store directory is required", ErrConfig)
		}
	case BackendAzurite:
		if c.StoreContainer == "" {
			return fmt.Errorf("%w: store container is required", ErrConfig)
		}
	default:
		return fmt.Errorf("%w: unknown store backend %q", ErrConfig, c.StoreBackend)
	}
	if _, err := filterstore.ParseFormat(c.StoreFormat); err != nil {
		return fmt.Errorf("%w: %v", ErrConfig, err)
	}
	if _, err := hashers.Default().Size(c.DefaultAlgorithm); err != nil {
		return fmt.Errorf("%w: %v", ErrConfig, err)
	}
	if c.MaxBits < 1 || c.MaxBits > bloom.MaxBits {
		return fmt.Errorf("%w: max bits %d not in [1, %d]", ErrConfig, c.MaxBits, bloom.MaxBits)
	}
	return nil
}
