package bloom

import (
	"fmt"
	"math"

	"github.com/forestrie/go-bloomfilter/bitarray"
	"github.com/forestrie/go-bloomfilter/hashers"
)

// Filter is a Bloom filter over one bit array and one hasher list with
// BitArray.Len() == HasherList.Max().
//
// A Filter is not safe for concurrent use. Callers sharing one must hold a
// read lock around Exists and a write lock around Add and Union.
type Filter struct {
	ba      *bitarray.BitArray
	hashers hashers.HasherList
}

type Options struct {
	Algorithm string
	Provider  hashers.Provider
}

type Option func(any)

// WithAlgorithm selects the digest for new filters. Defaults to
// hashers.DefaultAlgorithm.
func WithAlgorithm(algo string) Option {
	return func(opts any) {
		if o, ok := opts.(*Options); ok {
			o.Algorithm = algo
		}
	}
}

// WithProvider selects the digest provider used to build and decode filters.
func WithProvider(p hashers.Provider) Option {
	return func(opts any) {
		if o, ok := opts.(*Options); ok {
			o.Provider = p
		}
	}
}

func newOptions(opts []Option) Options {
	o := Options{Algorithm: hashers.DefaultAlgorithm}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func (o Options) hasherOpts() []hashers.Option {
	if o.Provider == nil {
		return nil
	}
	return []hashers.Option{hashers.WithProvider(o.Provider)}
}

// New returns an empty filter sized for expected items at false positive
// rate fpRate. See Parameters for the sizing.
func New(expected int, fpRate float64, opts ...Option) (*Filter, error) {
	o := newOptions(opts)
	m, k, err := Parameters(expected, fpRate)
	if err != nil {
		return nil, err
	}
	hl, err := hashers.New(o.Algorithm, k, m, o.hasherOpts()...)
	if err != nil {
		return nil, err
	}
	ba, err := bitarray.New(m)
	if err != nil {
		return nil, err
	}
	return &Filter{ba: ba, hashers: hl}, nil
}

// NewFromParts assembles a filter from an existing bit array and hasher
// list. The filter keeps its own copy of ba.
func NewFromParts(ba *bitarray.BitArray, hl hashers.HasherList) (*Filter, error) {
	if ba.Len() != hl.Max() {
		return nil, fmt.Errorf("%w: %d bits, max %d", ErrSizeMismatch, ba.Len(), hl.Max())
	}
	return &Filter{ba: ba.Clone(), hashers: hl}, nil
}

// M returns the number of bits.
func (f *Filter) M() int { return f.ba.Len() }

// K returns the number of bit indices per item.
func (f *Filter) K() int { return f.hashers.Count() }

func (f *Filter) Algorithm() string { return f.hashers.Algorithm() }

// BitArray returns a copy of the filter bits.
func (f *Filter) BitArray() *bitarray.BitArray { return f.ba.Clone() }

func (f *Filter) Hashers() hashers.HasherList { return f.hashers }

// Add sets the K() bits selected for item. Adding an item twice is a no-op.
func (f *Filter) Add(item []byte) {
	for _, i := range f.hashers.Hash(item) {
		if err := f.ba.Set(i, true); err != nil {
			// every index is below Max() and Max() == Len()
			panic(err)
		}
	}
}

// Exists reports false if item was definitely never added, and true if it
// may have been.
func (f *Filter) Exists(item []byte) bool {
	for _, i := range f.hashers.Hash(item) {
		v, err := f.ba.Get(i)
		if err != nil || !v {
			return false
		}
	}
	return true
}

func (f *Filter) AddString(item string)         { f.Add([]byte(item)) }
func (f *Filter) ExistsString(item string) bool { return f.Exists([]byte(item)) }

// Union ORs other into f. Both filters must share algo, count and max.
func (f *Filter) Union(other *Filter) error {
	if !f.hashers.Equal(other.hashers) {
		return fmt.Errorf("%w: %s/%d/%d vs %s/%d/%d", ErrIncompatible,
			f.hashers.Algorithm(), f.hashers.Count(), f.hashers.Max(),
			other.hashers.Algorithm(), other.hashers.Count(), other.hashers.Max())
	}
	return f.ba.Or(other.ba)
}

func (f *Filter) Clone() *Filter {
	return &Filter{ba: f.ba.Clone(), hashers: f.hashers}
}

// FillRatio returns the fraction of bits set.
func (f *Filter) FillRatio() float64 {
	return float64(f.ba.OnesCount()) / float64(f.ba.Len())
}

// EstimatedCount estimates the number of distinct items added:
//
//	-(m/k) * ln(1 - X/m)
//
// for X set bits. A saturated filter returns +Inf.
func (f *Filter) EstimatedCount() float64 {
	m, k := float64(f.M()), float64(f.K())
	x := float64(f.ba.OnesCount())
	if x >= m {
		return math.Inf(1)
	}
	return -(m / k) * math.Log(1-x/m)
}
