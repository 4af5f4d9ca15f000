// Package hashers derives k bit indices for an item from a single named
// digest.
//
// Index s (for s in 0..count) is
//
//	be_uint(Digest(algo, decimal(s) || item)) mod max
//
// where be_uint reads the whole digest as a big endian unsigned integer. The
// seed is mixed into the preimage, so one digest family yields count
// independent index streams. A HasherList is fully described by
// {algo, count, max}; that triple is its serialized form.
package hashers

import (
	"fmt"
	"math"
	"math/bits"
	"strconv"
)

type HasherList struct {
	algo     string
	count    int
	max      int
	provider Provider
}

type Options struct {
	Provider Provider
}

type Option func(any)

// WithProvider selects the digest provider. The default registry is used
// otherwise.
func WithProvider(p Provider) Option {
	return func(opts any) {
		if o, ok := opts.(*Options); ok {
			o.Provider = p
		}
	}
}

// MaxAddressable returns the largest max usable with a digest of size bytes
// on this platform: min(2^(8*size), math.MaxInt).
func MaxAddressable(size int) int {
	if size <= 0 {
		return 0
	}
	if 8*size >= bits.UintSize-1 {
		return math.MaxInt
	}
	return 1 << uint(8*size)
}

// New returns a HasherList producing count indices in [0, max). count must
// be in [1, MaxCount].
func New(algo string, count, max int, opts ...Option) (HasherList, error) {
	o := Options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.Provider == nil {
		o.Provider = Default()
	}

	if count < 1 {
		return HasherList{}, fmt.Errorf("%w: %d", ErrBadCount, count)
	}
	if count > MaxCount {
		return HasherList{}, fmt.Errorf("%w: %d", ErrCountTooLarge, count)
	}
	if max < 1 {
		return HasherList{}, fmt.Errorf("%w: %d", ErrBadMax, max)
	}
	size, err := o.Provider.Size(algo)
	if err != nil {
		return HasherList{}, err
	}
	if limit := MaxAddressable(size); max > limit {
		return HasherList{}, fmt.Errorf(
			"%w: max %d, %s addresses at most %d", ErrMaxTooLarge, max, algo, limit)
	}
	return HasherList{algo: algo, count: count, max: max, provider: o.Provider}, nil
}

func (h HasherList) Algorithm() string { return h.algo }
func (h HasherList) Count() int        { return h.count }
func (h HasherList) Max() int          { return h.max }

// Equal reports whether both lists produce identical indices, ignoring the
// provider instance.
func (h HasherList) Equal(other HasherList) bool {
	return h.algo == other.algo && h.count == other.count && h.max == other.max
}

// Hash returns Count() indices for item, each in [0, Max()).
func (h HasherList) Hash(item []byte) []int {
	out := make([]int, h.count)
	buf := make([]byte, 0, 20+len(item))
	for s := 0; s < h.count; s++ {
		buf = strconv.AppendInt(buf[:0], int64(s), 10)
		buf = append(buf, item...)
		sum, err := h.provider.Digest(h.algo, buf)
		if err != nil {
			// New verified the provider knows algo
			panic(fmt.Sprintf("hashers: digest %s failed after validation: %v", h.algo, err))
		}
		out[s] = int(reduceBE(sum, uint64(h.max)))
	}
	return out
}

// reduceBE returns the big endian integer in sum modulo m, one byte at a
// time. r < m holds throughout, so the high word handed to Div64 is always
// below m.
func reduceBE(sum []byte, m uint64) uint64 {
	var r uint64
	for _, b := range sum {
		hi, lo := bits.Mul64(r, 256)
		var carry uint64
		lo, carry = bits.Add64(lo, uint64(b), 0)
		hi += carry
		_, r = bits.Div64(hi, lo, m)
	}
	return r
}
