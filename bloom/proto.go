package bloom

import (
	"errors"
	"fmt"
	"math"

	"github.com/forestrie/go-bloomfilter/bitarray"
	"github.com/forestrie/go-bloomfilter/hashers"
	"google.golang.org/protobuf/encoding/protowire"
)

// The protobuf form is the wire encoding of
//
//	message BitArray { uint64 len = 1; bytes arr = 2; }
//	message Hashers { string algo = 1; uint64 count = 2; uint64 max = 3; }
//	message Filter { BitArray bit_array = 1; Hashers hashers = 2; }
//
// It is produced with protowire directly, there is no generated code.
const (
	protoFilterBitArray protowire.Number = 1
	protoFilterHashers  protowire.Number = 2

	protoBitArrayLen protowire.Number = 1
	protoBitArrayArr protowire.Number = 2

	protoHashersAlgo  protowire.Number = 1
	protoHashersCount protowire.Number = 2
	protoHashersMax   protowire.Number = 3
)

var errProtoWireType = errors.New("unexpected wire type")

type protoField struct {
	num protowire.Number
	typ protowire.Type
	v   uint64
	b   []byte
}

// readProto calls fn for every field of the message in b, in wire order.
// Groups and fixed width fields are skipped.
func readProto(b []byte, fn func(protoField) error) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]
		fld := protoField{num: num, typ: typ}
		switch typ {
		case protowire.VarintType:
			fld.v, n = protowire.ConsumeVarint(b)
		case protowire.BytesType:
			fld.b, n = protowire.ConsumeBytes(b)
		default:
			n = protowire.ConsumeFieldValue(num, typ, b)
		}
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]
		if err := fn(fld); err != nil {
			return err
		}
	}
	return nil
}

func (fld protoField) varint(dst *uint64) error {
	if fld.typ != protowire.VarintType {
		return fmt.Errorf("field %d: %w", fld.num, errProtoWireType)
	}
	*dst = fld.v
	return nil
}

func (fld protoField) bytes(dst *[]byte) error {
	if fld.typ != protowire.BytesType {
		return fmt.Errorf("field %d: %w", fld.num, errProtoWireType)
	}
	*dst = fld.b
	return nil
}

// MarshalProto encodes f in the protobuf wire form.
func (f *Filter) MarshalProto() ([]byte, error) {
	var ba []byte
	ba = protowire.AppendTag(ba, protoBitArrayLen, protowire.VarintType)
	ba = protowire.AppendVarint(ba, uint64(f.ba.Len()))
	ba = protowire.AppendTag(ba, protoBitArrayArr, protowire.BytesType)
	ba = protowire.AppendBytes(ba, f.ba.Bytes())

	var hs []byte
	hs = protowire.AppendTag(hs, protoHashersAlgo, protowire.BytesType)
	hs = protowire.AppendString(hs, f.hashers.Algorithm())
	hs = protowire.AppendTag(hs, protoHashersCount, protowire.VarintType)
	hs = protowire.AppendVarint(hs, uint64(f.hashers.Count()))
	hs = protowire.AppendTag(hs, protoHashersMax, protowire.VarintType)
	hs = protowire.AppendVarint(hs, uint64(f.hashers.Max()))

	out := make([]byte, 0, len(ba)+len(hs)+8)
	out = protowire.AppendTag(out, protoFilterBitArray, protowire.BytesType)
	out = protowire.AppendBytes(out, ba)
	out = protowire.AppendTag(out, protoFilterHashers, protowire.BytesType)
	out = protowire.AppendBytes(out, hs)
	return out, nil
}

// UnmarshalProto replaces f with the decoded filter using the default digest
// provider. On error f is unchanged.
func (f *Filter) UnmarshalProto(data []byte) error {
	decoded, err := FromProto(data)
	if err != nil {
		return err
	}
	*f = *decoded
	return nil
}

// FromProto decodes the form produced by MarshalProto. Unknown fields are
// ignored and a repeated field keeps its last value, as protobuf parsers do.
// Both submessages are required.
func FromProto(data []byte, opts ...Option) (*Filter, error) {
	o := newOptions(opts)

	var baMsg, hsMsg []byte
	err := readProto(data, func(fld protoField) error {
		switch fld.num {
		case protoFilterBitArray:
			return fld.bytes(&baMsg)
		case protoFilterHashers:
			return fld.bytes(&hsMsg)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadProto, err)
	}
	if baMsg == nil || hsMsg == nil {
		return nil, fmt.Errorf("%w: bit_array and hashers are required", ErrBadProto)
	}

	var length uint64
	var arr []byte
	err = readProto(baMsg, func(fld protoField) error {
		switch fld.num {
		case protoBitArrayLen:
			return fld.varint(&length)
		case protoBitArrayArr:
			return fld.bytes(&arr)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: bit_array: %v", ErrBadProto, err)
	}

	var algo []byte
	var count, bound uint64
	err = readProto(hsMsg, func(fld protoField) error {
		switch fld.num {
		case protoHashersAlgo:
			return fld.bytes(&algo)
		case protoHashersCount:
			return fld.varint(&count)
		case protoHashersMax:
			return fld.varint(&bound)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: hashers: %v", ErrBadProto, err)
	}
	if length > math.MaxInt || count > math.MaxInt || bound > math.MaxInt {
		return nil, fmt.Errorf("%w: value exceeds int", ErrBadProto)
	}

	hl, err := hashers.New(string(algo), int(count), int(bound), o.hasherOpts()...)
	if err != nil {
		return nil, err
	}
	ba, err := bitarray.FromBytes(arr, int(length))
	if err != nil {
		return nil, err
	}
	if ba.Len() != hl.Max() {
		return nil, fmt.Errorf("%w: %d bits, max %d", ErrSizeMismatch, ba.Len(), hl.Max())
	}
	return &Filter{ba: ba, hashers: hl}, nil
}
