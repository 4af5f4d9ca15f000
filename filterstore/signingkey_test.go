package filterstore

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"encoding/pem"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/veraison/go-cose"
)

func pemKey(t *testing.T, curve elliptic.Curve, pkcs8 bool) []byte {
	key, err := ecdsa.GenerateKey(curve, rand.Reader)
	require.NoError(t, err)
	if pkcs8 {
		der, err := x509.MarshalPKCS8PrivateKey(key)
		require.NoError(t, err)
		return pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der})
	}
	der, err := x509.MarshalECPrivateKey(key)
	require.NoError(t, err)
	return pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: der})
}

func TestParseSigningKey(t *testing.T) {
	tests := []struct {
		curve elliptic.Curve
		pkcs8 bool
		alg   cose.Algorithm
	}{
		{elliptic.P256(), false, cose.AlgorithmES256},
		{elliptic.P384(), true, cose.AlgorithmES384},
		{elliptic.P521(), false, cose.AlgorithmES512},
	}
	for _, tt := range tests {
		t.Run(tt.alg.String(), func(t *testing.T) {
			signer, verifier, err := ParseSigningKey(pemKey(t, tt.curve, tt.pkcs8))
			require.NoError(t, err)
			assert.Equal(t, tt.alg, signer.Algorithm())
			assert.Equal(t, tt.alg, verifier.Algorithm())
		})
	}
}

func TestParseSigningKeyRejects(t *testing.T) {
	_, _, err := ParseSigningKey([]byte("not pem"))
	assert.ErrorIs(t, err, ErrSigningKey)
	_, _, err = ParseSigningKey(pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: []byte{1}}))
	assert.ErrorIs(t, err, ErrSigningKey)
	_, _, err = ParseSigningKey(pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: []byte{1, 2}}))
	assert.ErrorIs(t, err, ErrSigningKey)
}

func TestLoadSigningKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "key.pem")
	require.NoError(t, os.WriteFile(path, pemKey(t, elliptic.P256(), false), 0o600))
	_, _, err := LoadSigningKey(path)
	assert.NoError(t, err)
	_, _, err = LoadSigningKey(path + ".missing")
	assert.Error(t, err)
}
