package bloom

import (
	"fmt"
	"math"

	"github.com/forestrie/go-bloomfilter/bitarray"
	"github.com/forestrie/go-bloomfilter/hashers"
)

// MarshalBinary returns the V1 binary form: a HeaderV1 followed by the
// ceil(M()/8) bitset bytes.
func (f *Filter) MarshalBinary() ([]byte, error) {
	if uint64(f.K()) > math.MaxUint32 {
		return nil, fmt.Errorf("%w: k %d does not fit the V1 header", ErrSizeOverflow, f.K())
	}
	mBits := uint64(f.M())
	region := make([]byte, RegionBytesV1(mBits))
	err := EncodeHeaderV1(region, HeaderV1{
		BitOrder: BitOrderLSB0,
		K:        uint32(f.K()),
		MBits:    mBits,
		Algo:     f.Algorithm(),
	})
	if err != nil {
		return nil, err
	}
	copy(region[HeaderBytesV1:], f.ba.Bytes())
	return region, nil
}

// UnmarshalBinary replaces f with the decoded filter using the default
// digest provider. On error f is unchanged.
func (f *Filter) UnmarshalBinary(data []byte) error {
	decoded, err := FromBinary(data)
	if err != nil {
		return err
	}
	*f = *decoded
	return nil
}

// FromBinary decodes the V1 binary form. The region must be exactly
// RegionBytesV1(MBits) long.
func FromBinary(region []byte, opts ...Option) (*Filter, error) {
	o := newOptions(opts)
	h, ok, err := DecodeHeaderV1(region)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: region is not initialized", ErrBadMagic)
	}
	if h.MBits > math.MaxInt || uint64(h.K) > math.MaxInt {
		return nil, fmt.Errorf("%w: mBits %d", ErrSizeOverflow, h.MBits)
	}
	if uint64(len(region)) != RegionBytesV1(h.MBits) {
		return nil, fmt.Errorf("%w: %d bytes for %d bits", ErrBadRegionSize, len(region), h.MBits)
	}
	hl, err := hashers.New(h.Algo, int(h.K), int(h.MBits), o.hasherOpts()...)
	if err != nil {
		return nil, err
	}
	ba, err := bitarray.FromBytes(region[HeaderBytesV1:], int(h.MBits))
	if err != nil {
		return nil, err
	}
	return &Filter{ba: ba, hashers: hl}, nil
}
