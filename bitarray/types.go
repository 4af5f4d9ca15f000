package bitarray

import (
	"fmt"

	"github.com/forestrie/go-bloomfilter/errkind"
)

const BitsInByte = 8

var (
	ErrNegativeLength = fmt.Errorf("bitarray: length must not be negative: %w", errkind.ErrInvalidArgument)
	ErrDataLength     = fmt.Errorf("bitarray: data length does not match bit length: %w", errkind.ErrInvalidArgument)
	ErrLengthMismatch = fmt.Errorf("bitarray: bit arrays differ in length: %w", errkind.ErrInvalidArgument)
	ErrBadJSON        = fmt.Errorf("bitarray: malformed json form: %w", errkind.ErrInvalidArgument)
	ErrIndexRange     = fmt.Errorf("bitarray: %w", errkind.ErrOutOfRange)
)

// BytesFor returns ceil(length/8).
func BytesFor(length int) int {
	return (length + BitsInByte - 1) / BitsInByte
}
