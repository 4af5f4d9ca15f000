// Package bitarray provides a fixed length array of bits packed LSB0 into a
// byte buffer: bit i is (data[i/8] >> (i%8)) & 1.
//
// The buffer is always exactly BytesFor(Len()) bytes. Bits of the final byte
// beyond Len() are never addressed, but they are carried through every copy
// and encoding unchanged.
package bitarray

import (
	"fmt"
	"math/bits"

	"github.com/bits-and-blooms/bitset"
)

type BitArray struct {
	length int
	data   []byte
}

// New returns a zero filled bit array of length bits.
func New(length int) (*BitArray, error) {
	if length < 0 {
		return nil, fmt.Errorf("%w: %d", ErrNegativeLength, length)
	}
	return &BitArray{length: length, data: make([]byte, BytesFor(length))}, nil
}

// FromBytes builds a bit array over a copy of data. data must be exactly
// BytesFor(length) bytes.
func FromBytes(data []byte, length int) (*BitArray, error) {
	if length < 0 {
		return nil, fmt.Errorf("%w: %d", ErrNegativeLength, length)
	}
	if len(data) != BytesFor(length) {
		return nil, fmt.Errorf("%w: %d bytes for %d bits", ErrDataLength, len(data), length)
	}
	b := &BitArray{length: length, data: make([]byte, len(data))}
	copy(b.data, data)
	return b, nil
}

// Len returns the number of addressable bits.
func (b *BitArray) Len() int { return b.length }

// ByteLen returns the size of the backing buffer.
func (b *BitArray) ByteLen() int { return len(b.data) }

// Contains reports whether i addresses a bit. It never fails.
func (b *BitArray) Contains(i int) bool {
	return i >= 0 && i < b.length
}

func (b *BitArray) check(i int) error {
	if !b.Contains(i) {
		return fmt.Errorf("%w: index %d, length %d", ErrIndexRange, i, b.length)
	}
	return nil
}

func (b *BitArray) Get(i int) (bool, error) {
	if err := b.check(i); err != nil {
		return false, err
	}
	return b.data[i>>3]&(1<<uint(i&7)) != 0, nil
}

// Set sets bit i to v without touching any other bit.
func (b *BitArray) Set(i int, v bool) error {
	if err := b.check(i); err != nil {
		return err
	}
	mask := byte(1) << uint(i&7)
	if v {
		b.data[i>>3] |= mask
	} else {
		b.data[i>>3] &^= mask
	}
	return nil
}

func (b *BitArray) Unset(i int) error {
	return b.Set(i, false)
}

// Bytes returns a copy of the backing buffer.
func (b *BitArray) Bytes() []byte {
	out := make([]byte, len(b.data))
	copy(out, b.data)
	return out
}

func (b *BitArray) Clone() *BitArray {
	return &BitArray{length: b.length, data: b.Bytes()}
}

// OnesCount returns the number of set bits in [0, Len()).
func (b *BitArray) OnesCount() int {
	n := 0
	full := b.length / BitsInByte
	for _, v := range b.data[:full] {
		n += bits.OnesCount8(v)
	}
	if rem := b.length % BitsInByte; rem != 0 {
		n += bits.OnesCount8(b.data[full] & (1<<uint(rem) - 1))
	}
	return n
}

// Or sets every bit that is set in other. Both arrays must have the same
// length. Residual bits are OR'd along with the rest of the final byte.
func (b *BitArray) Or(other *BitArray) error {
	if other.length != b.length {
		return fmt.Errorf("%w: %d vs %d", ErrLengthMismatch, b.length, other.length)
	}
	for i, v := range other.data {
		b.data[i] |= v
	}
	return nil
}

// BitSet returns an independent bitset holding the addressable bits.
func (b *BitArray) BitSet() *bitset.BitSet {
	bs := bitset.New(uint(b.length))
	for i := 0; i < b.length; i++ {
		if b.data[i>>3]&(1<<uint(i&7)) != 0 {
			bs.Set(uint(i))
		}
	}
	return bs
}
