// Package errkind enumerates the validation failure kinds shared by the
// bitarray, hashers and bloom packages.
//
// Each package defines its own sentinel errors, and every one of those wraps
// exactly one of the kind sentinels below. Callers branch on the kind with
// errors.Is, or with Of when a switch reads better.
package errkind

import "errors"

type Kind uint8

const (
	KindNone Kind = iota
	KindInvalidArgument
	KindOutOfRange
	KindUnsupportedAlgorithm
	KindRangeExceeded
)

var (
	// ErrInvalidArgument marks a numeric parameter outside its domain.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrOutOfRange marks a bit index outside [0, length).
	ErrOutOfRange = errors.New("index out of range")
	// ErrUnsupportedAlgorithm marks a digest name the provider does not know.
	ErrUnsupportedAlgorithm = errors.New("unsupported algorithm")
	// ErrRangeExceeded marks a bound the digest or int width can not address.
	ErrRangeExceeded = errors.New("range exceeded")
)

var kindErrs = [...]error{
	KindInvalidArgument:      ErrInvalidArgument,
	KindOutOfRange:           ErrOutOfRange,
	KindUnsupportedAlgorithm: ErrUnsupportedAlgorithm,
	KindRangeExceeded:        ErrRangeExceeded,
}

// Of returns the kind wrapped by err, or KindNone.
func Of(err error) Kind {
	if err == nil {
		return KindNone
	}
	for k := KindInvalidArgument; k <= KindRangeExceeded; k++ {
		if errors.Is(err, kindErrs[k]) {
			return k
		}
	}
	return KindNone
}

// Err returns the sentinel for k, nil for KindNone or unknown kinds.
func (k Kind) Err() error {
	if k == KindNone || int(k) >= len(kindErrs) {
		return nil
	}
	return kindErrs[k]
}

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "None"
	case KindInvalidArgument:
		return "InvalidArgument"
	case KindOutOfRange:
		return "OutOfRange"
	case KindUnsupportedAlgorithm:
		return "UnsupportedAlgorithm"
	case KindRangeExceeded:
		return "RangeExceeded"
	}
	return "Unknown"
}
