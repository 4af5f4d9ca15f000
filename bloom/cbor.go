package bloom

import (
	"fmt"

	"github.com/forestrie/go-bloomfilter/bitarray"
	"github.com/forestrie/go-bloomfilter/hashers"
	"github.com/fxamacker/cbor/v2"
)

// The cbor form mirrors the json form, except that arr is a byte string.
type cborBitArray struct {
	Len int    `cbor:"len"`
	Arr []byte `cbor:"arr"`
}

type cborHashers struct {
	Algo  string `cbor:"algo"`
	Count int    `cbor:"count"`
	Max   int    `cbor:"max"`
}

type cborForm struct {
	BitArray cborBitArray `cbor:"bit_array"`
	Hashers  cborHashers  `cbor:"hashers"`
}

var (
	cborEncMode cbor.EncMode
	cborDecMode cbor.DecMode
)

func init() {
	var err error
	if cborEncMode, err = cbor.CoreDetEncOptions().EncMode(); err != nil {
		panic(err)
	}
	if cborDecMode, err = (cbor.DecOptions{DupMapKey: cbor.DupMapKeyEnforcedAPF}).DecMode(); err != nil {
		panic(err)
	}
}

// MarshalCBOR encodes f with core deterministic encoding, so equal filters
// always encode to identical bytes.
func (f *Filter) MarshalCBOR() ([]byte, error) {
	return cborEncMode.Marshal(cborForm{
		BitArray: cborBitArray{Len: f.ba.Len(), Arr: f.ba.Bytes()},
		Hashers: cborHashers{
			Algo:  f.hashers.Algorithm(),
			Count: f.hashers.Count(),
			Max:   f.hashers.Max(),
		},
	})
}

// UnmarshalCBOR replaces f with the decoded filter using the default digest
// provider. On error f is unchanged.
func (f *Filter) UnmarshalCBOR(data []byte) error {
	decoded, err := FromCBOR(data)
	if err != nil {
		return err
	}
	*f = *decoded
	return nil
}

func FromCBOR(data []byte, opts ...Option) (*Filter, error) {
	o := newOptions(opts)
	var form cborForm
	if err := cborDecMode.Unmarshal(data, &form); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadCBOR, err)
	}
	hl, err := hashers.New(form.Hashers.Algo, form.Hashers.Count, form.Hashers.Max, o.hasherOpts()...)
	if err != nil {
		return nil, err
	}
	ba, err := bitarray.FromBytes(form.BitArray.Arr, form.BitArray.Len)
	if err != nil {
		return nil, err
	}
	if ba.Len() != hl.Max() {
		return nil, fmt.Errorf("%w: %d bits, max %d", ErrSizeMismatch, ba.Len(), hl.Max())
	}
	return &Filter{ba: ba, hashers: hl}, nil
}
