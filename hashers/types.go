package hashers

import (
	"fmt"

	"github.com/forestrie/go-bloomfilter/errkind"
)

// DefaultAlgorithm is the digest used when none is configured.
const DefaultAlgorithm = "sha1"

// MaxCount is the largest count New accepts. Optimal sizing yields about
// log2(1/p) indices per item, so real filters stay far below it.
const MaxCount = 1 << 16

var (
	ErrBadCount      = fmt.Errorf("hashers: count must be positive: %w", errkind.ErrInvalidArgument)
	ErrCountTooLarge = fmt.Errorf("hashers: count exceeds MaxCount: %w", errkind.ErrRangeExceeded)
	ErrBadMax        = fmt.Errorf("hashers: max must be positive: %w", errkind.ErrInvalidArgument)
	ErrBadJSON       = fmt.Errorf("hashers: malformed json form: %w", errkind.ErrInvalidArgument)
	ErrUnknownAlgo   = fmt.Errorf("hashers: %w", errkind.ErrUnsupportedAlgorithm)
	ErrMaxTooLarge   = fmt.Errorf("hashers: max is not addressable by the digest: %w", errkind.ErrRangeExceeded)
	ErrDuplicateAlg  = fmt.Errorf("hashers: algorithm already registered: %w", errkind.ErrInvalidArgument)
)
