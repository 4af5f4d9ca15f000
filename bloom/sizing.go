package bloom

import (
	"fmt"
	"math"
)

func checkNP(n int, p float64) error {
	if n <= 0 {
		return fmt.Errorf("%w: %d", ErrBadExpected, n)
	}
	// written so NaN fails too
	if !(p > 0 && p < 1) {
		return fmt.Errorf("%w: %v", ErrBadFPRate, p)
	}
	return nil
}

// OptimalM returns round(-n * ln(p) / ln(2)^2), the bit count minimising the
// false positive rate for n items at target rate p. The result is at least 1
// and fails with ErrSizeOverflow above MaxBits.
func OptimalM(n int, p float64) (int, error) {
	if err := checkNP(n, p); err != nil {
		return 0, err
	}
	m := math.Round(-float64(n) * math.Log(p) / (math.Ln2 * math.Ln2))
	if m > MaxBits {
		return 0, fmt.Errorf("%w: %d items at rate %v", ErrSizeOverflow, n, p)
	}
	return max(1, int(m)), nil
}

// OptimalK returns round((m / n) * ln(2)), at least 1.
func OptimalK(n int, m int) (int, error) {
	if n <= 0 {
		return 0, fmt.Errorf("%w: %d", ErrBadExpected, n)
	}
	if m <= 0 {
		return 0, fmt.Errorf("%w: %d", ErrBadBits, m)
	}
	k := math.Round(float64(m) / float64(n) * math.Ln2)
	return max(1, int(k)), nil
}

// Parameters returns (m, k) for n expected items at false positive rate p.
func Parameters(n int, p float64) (m int, k int, err error) {
	if m, err = OptimalM(n, p); err != nil {
		return 0, 0, err
	}
	if k, err = OptimalK(n, m); err != nil {
		return 0, 0, err
	}
	return m, k, nil
}

// FalsePositiveRate returns (1 - e^(-kn/m))^k, the expected false positive
// rate of an m bit filter with k indices per item holding n items.
func FalsePositiveRate(m, k, n int) float64 {
	if m <= 0 || k <= 0 {
		return 1
	}
	if n <= 0 {
		return 0
	}
	return math.Pow(1-math.Exp(-float64(k)*float64(n)/float64(m)), float64(k))
}

// BitsetBytesV1 returns ceil(mBits/8).
func BitsetBytesV1(mBits uint64) uint64 {
	return mBits/8 + (mBits%8+7)/8
}

// RegionBytesV1 returns the byte length of the binary form for mBits:
//
//	HeaderBytesV1 + ceil(mBits/8)
func RegionBytesV1(mBits uint64) uint64 {
	return uint64(HeaderBytesV1) + BitsetBytesV1(mBits)
}
