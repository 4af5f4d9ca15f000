package main

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"encoding/pem"
	"os"
	"path/filepath"
	"testing"

	"github.com/datatrails/go-datatrails-common/logger"
	"github.com/forestrie/go-bloomfilter/filterstore"
	"github.com/forestrie/go-bloomfilter/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConfigDefaults(t *testing.T) {
	cfg, err := parseConfig(nil)
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, "sha1", cfg.DefaultAlgorithm)
}

func TestParseConfigEnvAndFlags(t *testing.T) {
	t.Setenv("BLOOMD_STORE_FORMAT", "cbor")
	t.Setenv("BLOOMD_LISTEN", ":9000")

	cfg, err := parseConfig([]string{"-listen", ":9100", "-algo", "sha256"})
	require.NoError(t, err)
	assert.Equal(t, "cbor", cfg.StoreFormat)
	assert.Equal(t, ":9100", cfg.ListenAddr)
	assert.Equal(t, "sha256", cfg.DefaultAlgorithm)
}

func TestParseConfigRejects(t *testing.T) {
	_, err := parseConfig([]string{"-store-format", "yaml"})
	assert.Error(t, err)
	_, err = parseConfig([]string{"-nope"})
	assert.Error(t, err)
	_, err = parseConfig([]string{"-max-bits", "0"})
	assert.ErrorIs(t, err, service.ErrConfig)
}

func TestParseConfigMaxBits(t *testing.T) {
	t.Setenv("BLOOMD_MAX_BITS", "4096")
	cfg, err := parseConfig(nil)
	require.NoError(t, err)
	assert.Equal(t, 4096, cfg.MaxBits)

	cfg, err = parseConfig([]string{"-max-bits", "8192"})
	require.NoError(t, err)
	assert.Equal(t, 8192, cfg.MaxBits)

	t.Setenv("BLOOMD_MAX_BITS", "lots")
	_, err = parseConfig(nil)
	assert.Error(t, err)
}

func TestOpenStoreDir(t *testing.T) {
	logger.New("NOOP")
	defer logger.OnExit()

	cfg, err := parseConfig([]string{"-store-dir", t.TempDir()})
	require.NoError(t, err)
	store, err := openStore(logger.Sugar.WithServiceName("bloomd"), cfg)
	require.NoError(t, err)
	assert.IsType(t, &filterstore.DirStore{}, store)
}

func TestOpenStoreSigned(t *testing.T) {
	logger.New("NOOP")
	defer logger.OnExit()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	der, err := x509.MarshalECPrivateKey(key)
	require.NoError(t, err)
	keyPath := filepath.Join(t.TempDir(), "key.pem")
	require.NoError(t, os.WriteFile(keyPath,
		pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: der}), 0o600))

	cfg, err := parseConfig([]string{"-store-dir", t.TempDir(), "-signing-key", keyPath})
	require.NoError(t, err)
	store, err := openStore(logger.Sugar.WithServiceName("bloomd"), cfg)
	require.NoError(t, err)
	assert.IsType(t, &filterstore.SignedStore{}, store)

	cfg.SigningKeyFile = keyPath + ".missing"
	_, err = openStore(logger.Sugar.WithServiceName("bloomd"), cfg)
	assert.Error(t, err)
}
