package filterstore

import (
	"context"
	"crypto/rand"
	"fmt"

	"github.com/veraison/go-cose"
)

// SignedStore seals every filter in a COSE_Sign1 envelope before handing it
// to the wrapped Store, and verifies the envelope on read. The filter name is
// the external aad, so a signed filter does not verify under another name.
type SignedStore struct {
	inner    Store
	signer   cose.Signer
	verifier cose.Verifier
	keyID    []byte
}

func NewSignedStore(inner Store, signer cose.Signer, verifier cose.Verifier, keyID string) *SignedStore {
	return &SignedStore{inner: inner, signer: signer, verifier: verifier, keyID: []byte(keyID)}
}

func (s *SignedStore) Put(ctx context.Context, name string, data []byte) error {
	if err := CheckName(name); err != nil {
		return err
	}
	msg := cose.Sign1Message{
		Headers: cose.Headers{
			Protected: cose.ProtectedHeader{
				cose.HeaderLabelAlgorithm: s.signer.Algorithm(),
				cose.HeaderLabelKeyID:     s.keyID,
			},
		},
		Payload: data,
	}
	if err := msg.Sign(rand.Reader, []byte(name), s.signer); err != nil {
		return err
	}
	sealed, err := msg.MarshalCBOR()
	if err != nil {
		return err
	}
	return s.inner.Put(ctx, name, sealed)
}

func (s *SignedStore) Get(ctx context.Context, name string) ([]byte, error) {
	sealed, err := s.inner.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	var msg cose.Sign1Message
	if err = msg.UnmarshalCBOR(sealed); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorrupt, name, err)
	}
	if err = msg.Verify([]byte(name), s.verifier); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrBadSignature, name, err)
	}
	return msg.Payload, nil
}
