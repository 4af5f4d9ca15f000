// Package filterstore persists encoded bloom filters.
//
// The filter packages never perform I/O; this package is the caller side
// storage for their serialized forms. A Store moves opaque bytes by name, and
// Save / Load add the encoding on top.
package filterstore

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/forestrie/go-bloomfilter/bloom"
	"github.com/google/uuid"
)

type Store interface {
	Put(ctx context.Context, name string, data []byte) error
	// Get returns an error wrapping ErrNotFound if nothing is stored at name.
	Get(ctx context.Context, name string) ([]byte, error)
}

type Format string

const (
	FormatJSON   Format = "json"
	FormatCBOR   Format = "cbor"
	FormatBinary Format = "binary"
	FormatProto  Format = "proto"
)

// protoLead is the first byte of every protobuf encoded filter: the tag of
// field 1 with the length delimited wire type.
const protoLead = 0x0a

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatJSON, FormatCBOR, FormatBinary, FormatProto:
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// NewName returns a fresh random filter name.
func NewName() string {
	return uuid.NewString()
}

// CheckName rejects names that could escape a directory or blob prefix.
func CheckName(name string) error {
	if name == "" || name == "." || name == ".." ||
		strings.ContainsAny(name, "/\\\x00") {
		return fmt.Errorf("%w: %q", ErrBadName, name)
	}
	return nil
}

func Encode(f *bloom.Filter, format Format) ([]byte, error) {
	switch format {
	case FormatJSON:
		return f.MarshalJSON()
	case FormatCBOR:
		return f.MarshalCBOR()
	case FormatBinary:
		return f.MarshalBinary()
	case FormatProto:
		return f.MarshalProto()
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}

// Decode detects the encoding from the leading bytes: the protobuf field 1
// tag is proto, '{' is json, the V1 magic is binary, anything else is tried
// as cbor. Json with a leading newline also starts with the protobuf tag, so
// it is retried as json when the proto decode fails.
func Decode(data []byte, opts ...bloom.Option) (*bloom.Filter, error) {
	looksJSON := bytes.HasPrefix(bytes.TrimLeft(data, " \t\r\n"), []byte("{"))
	switch {
	case len(data) > 0 && data[0] == protoLead:
		f, err := bloom.FromProto(data, opts...)
		if err != nil && looksJSON {
			return bloom.FromJSON(data, opts...)
		}
		return f, err
	case looksJSON:
		return bloom.FromJSON(data, opts...)
	case bytes.HasPrefix(data, []byte(bloom.MagicV1)):
		return bloom.FromBinary(data, opts...)
	}
	return bloom.FromCBOR(data, opts...)
}

func Save(ctx context.Context, s Store, name string, f *bloom.Filter, format Format) error {
	if err := CheckName(name); err != nil {
		return err
	}
	data, err := Encode(f, format)
	if err != nil {
		return err
	}
	return s.Put(ctx, name, data)
}

func Load(ctx context.Context, s Store, name string, opts ...bloom.Option) (*bloom.Filter, error) {
	if err := CheckName(name); err != nil {
		return nil, err
	}
	data, err := s.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	f, err := Decode(data, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorrupt, name, err)
	}
	return f, nil
}
