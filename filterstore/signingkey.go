package filterstore

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"os"

	"github.com/veraison/go-cose"
)

var ErrSigningKey = errors.New("filterstore: unusable signing key")

// ParseSigningKey reads a PEM encoded EC private key, either SEC 1 ("EC
// PRIVATE KEY") or PKCS #8, and returns the matching cose signer and
// verifier. The curve selects the algorithm: P-256 ES256, P-384 ES384,
// P-521 ES512.
func ParseSigningKey(data []byte) (cose.Signer, cose.Verifier, error) {
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, nil, fmt.Errorf("%w: no pem block", ErrSigningKey)
	}
	var key *ecdsa.PrivateKey
	switch block.Type {
	case "EC PRIVATE KEY":
		k, err := x509.ParseECPrivateKey(block.Bytes)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", ErrSigningKey, err)
		}
		key = k
	case "PRIVATE KEY":
		k, err := x509.ParsePKCS8PrivateKey(block.Bytes)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", ErrSigningKey, err)
		}
		ek, ok := k.(*ecdsa.PrivateKey)
		if !ok {
			return nil, nil, fmt.Errorf("%w: not an ec key", ErrSigningKey)
		}
		key = ek
	default:
		return nil, nil, fmt.Errorf("%w: pem type %q", ErrSigningKey, block.Type)
	}

	var alg cose.Algorithm
	switch key.Curve {
	case elliptic.P256():
		alg = cose.AlgorithmES256
	case elliptic.P384():
		alg = cose.AlgorithmES384
	case elliptic.P521():
		alg = cose.AlgorithmES512
	default:
		return nil, nil, fmt.Errorf("%w: unsupported curve", ErrSigningKey)
	}
	signer, err := cose.NewSigner(alg, key)
	if err != nil {
		return nil, nil, err
	}
	verifier, err := cose.NewVerifier(alg, key.Public())
	if err != nil {
		return nil, nil, err
	}
	return signer, verifier, nil
}

func LoadSigningKey(path string) (cose.Signer, cose.Verifier, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	return ParseSigningKey(data)
}
