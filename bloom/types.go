package bloom

import (
	"fmt"
	"math"

	"github.com/forestrie/go-bloomfilter/errkind"
)

const (
	// HeaderBytesV1 is the fixed header size of the binary V1 form.
	HeaderBytesV1 = 48

	// MaxAlgoBytesV1 is the longest digest name the V1 header can carry.
	MaxAlgoBytesV1 = 23

	MagicV1         = "BLF1"
	VersionV1 uint8 = 1

	// BitOrderLSB0 means bit 0 is the least-significant bit of byte 0.
	BitOrderLSB0 uint8 = 0
)

// MaxBits is the largest bit count a filter may have, 4 GiB of bits.
const MaxBits = min(1<<35, math.MaxInt)

var (
	ErrBadExpected   = fmt.Errorf("bloom: expected count must be positive: %w", errkind.ErrInvalidArgument)
	ErrBadFPRate     = fmt.Errorf("bloom: false positive rate must be in (0, 1): %w", errkind.ErrInvalidArgument)
	ErrBadBits       = fmt.Errorf("bloom: bit count must be positive: %w", errkind.ErrInvalidArgument)
	ErrSizeMismatch  = fmt.Errorf("bloom: bit array length differs from hasher max: %w", errkind.ErrInvalidArgument)
	ErrIncompatible  = fmt.Errorf("bloom: filters differ in algo, count or max: %w", errkind.ErrInvalidArgument)
	ErrBadJSON       = fmt.Errorf("bloom: malformed json form: %w", errkind.ErrInvalidArgument)
	ErrBadCBOR       = fmt.Errorf("bloom: malformed cbor form: %w", errkind.ErrInvalidArgument)
	ErrBadProto      = fmt.Errorf("bloom: malformed protobuf form: %w", errkind.ErrInvalidArgument)
	ErrSizeOverflow  = fmt.Errorf("bloom: filter size out of range: %w", errkind.ErrRangeExceeded)
	ErrBadRegionSize = fmt.Errorf("bloom: region buffer size invalid: %w", errkind.ErrInvalidArgument)

	ErrBadMagic    = fmt.Errorf("bloom: header magic invalid: %w", errkind.ErrInvalidArgument)
	ErrBadVersion  = fmt.Errorf("bloom: header version invalid: %w", errkind.ErrInvalidArgument)
	ErrBadBitOrder = fmt.Errorf("bloom: header bitOrder unsupported: %w", errkind.ErrInvalidArgument)
	ErrBadK        = fmt.Errorf("bloom: header k invalid: %w", errkind.ErrInvalidArgument)
	ErrBadMBits    = fmt.Errorf("bloom: header mBits invalid: %w", errkind.ErrInvalidArgument)
	ErrBadAlgo     = fmt.Errorf("bloom: header algo name invalid: %w", errkind.ErrInvalidArgument)
)

// HeaderV1 is the decoded fixed header of the binary form.
type HeaderV1 struct {
	BitOrder uint8
	K        uint32
	MBits    uint64
	Algo     string
}
