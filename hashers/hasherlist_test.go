package hashers

import (
	"crypto/sha1"
	"encoding/json"
	"hash"
	"math"
	"testing"

	"github.com/forestrie/go-bloomfilter/errkind"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashProducesExpectedNumbers(t *testing.T) {
	tests := []struct {
		name  string
		algo  string
		count int
		max   int
		item  string
		want  []int
	}{
		{"sha1 foo", "sha1", 3, 100, "foo", []int{65, 56, 72}},
		{"sha256 foo", "sha256", 5, 1000, "foo", []int{473, 94, 682, 224, 542}},
		{
			"md5 wide max", "md5", 4, 1<<61 - 1, "Paul Atreides",
			[]int{1752979627133252898, 658269031987430421, 734738930410121436, 1951653986195151064},
		},
		{"adler32", "adler32", 3, 97, "foo", []int{92, 46, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, err := New(tt.algo, tt.count, tt.max)
			require.NoError(t, err)
			assert.Equal(t, tt.want, h.Hash([]byte(tt.item)))
		})
	}
}

func TestHashIsDeterministicAndBounded(t *testing.T) {
	for _, algo := range Algorithms() {
		t.Run(algo, func(t *testing.T) {
			h, err := New(algo, 9, 1021)
			require.NoError(t, err)
			for _, item := range []string{"", "a", "meh", "Paul Atreides"} {
				first := h.Hash([]byte(item))
				require.Len(t, first, 9)
				for _, v := range first {
					require.GreaterOrEqual(t, v, 0)
					require.Less(t, v, 1021)
				}
				require.Equal(t, first, h.Hash([]byte(item)))
			}
		})
	}
}

func TestNewRejectsBadArguments(t *testing.T) {
	tests := []struct {
		name  string
		algo  string
		count int
		max   int
		kind  errkind.Kind
	}{
		{"negative max", "sha1", 3, -2, errkind.KindInvalidArgument},
		{"zero max", "sha1", 3, 0, errkind.KindInvalidArgument},
		{"negative count", "sha1", -3, 200, errkind.KindInvalidArgument},
		{"zero count", "sha1", 0, 200, errkind.KindInvalidArgument},
		{"unknown algo", "this-is-not-valid", 3, 200, errkind.KindUnsupportedAlgorithm},
		{"adler32 too small", "adler32", 3, 1 << 40, errkind.KindRangeExceeded},
		{"count above ceiling", "sha1", MaxCount + 1, 200, errkind.KindRangeExceeded},
		{"huge count", "sha1", 1 << 50, 8, errkind.KindRangeExceeded},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.algo, tt.count, tt.max)
			require.Error(t, err)
			assert.Equal(t, tt.kind, errkind.Of(err))
		})
	}
}

func TestMaxAddressable(t *testing.T) {
	assert.Equal(t, 0, MaxAddressable(0))
	assert.Equal(t, 256, MaxAddressable(1))
	assert.Equal(t, math.MaxInt, MaxAddressable(20))
	assert.Equal(t, 1<<32, MaxAddressable(4))

	_, err := New("adler32", 1, 1<<16)
	require.NoError(t, err)
	_, err = New("sha1", 1, math.MaxInt)
	require.NoError(t, err)
}

func TestJSONSerialize(t *testing.T) {
	h, err := New("sha256", 7, 100000)
	require.NoError(t, err)
	data, err := json.Marshal(h)
	require.NoError(t, err)
	assert.JSONEq(t, `{"algo":"sha256","count":7,"max":100000}`, string(data))
}

func TestJSONDeserialize(t *testing.T) {
	h, err := New("sha256", 7, 100000)
	require.NoError(t, err)
	want := h.Hash([]byte("meh"))

	data, err := json.Marshal(h)
	require.NoError(t, err)
	got, err := FromJSON(data)
	require.NoError(t, err)
	assert.True(t, h.Equal(got))
	assert.Equal(t, want, got.Hash([]byte("meh")))
}

func TestJSONDeserializeValidates(t *testing.T) {
	tests := []struct {
		in   string
		kind errkind.Kind
	}{
		{`[]`, errkind.KindInvalidArgument},
		{`{"algo":"sha1","count":3}`, errkind.KindInvalidArgument},
		{`{"algo":"sha1","count":1.5,"max":10}`, errkind.KindInvalidArgument},
		{`{"algo":"sha1","count":-1,"max":10}`, errkind.KindInvalidArgument},
		{`{"algo":"nope","count":1,"max":10}`, errkind.KindUnsupportedAlgorithm},
		{`{"algo":"crc32b","count":1,"max":1000000000000}`, errkind.KindRangeExceeded},
		{`{"algo":"sha1","count":1125899906842624,"max":8}`, errkind.KindRangeExceeded},
	}
	for _, tt := range tests {
		_, err := FromJSON([]byte(tt.in))
		require.Error(t, err, tt.in)
		assert.Equal(t, tt.kind, errkind.Of(err), tt.in)
	}
}

func TestCountCeiling(t *testing.T) {
	h, err := New("sha1", MaxCount, 8)
	require.NoError(t, err)
	assert.Len(t, h.Hash([]byte("meh")), MaxCount)

	_, err = New("sha1", MaxCount+1, 8)
	require.ErrorIs(t, err, ErrCountTooLarge)
	require.ErrorIs(t, err, errkind.ErrRangeExceeded)
}

func TestWithProvider(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register("sha1", sha1.New))
	p := &countingProvider{Registry: reg}

	h, err := New("sha1", 3, 100, WithProvider(p))
	require.NoError(t, err)
	assert.Equal(t, []int{65, 56, 72}, h.Hash([]byte("foo")))
	assert.Equal(t, 3, p.calls)

	_, err = New("sha256", 3, 100, WithProvider(p))
	require.ErrorIs(t, err, errkind.ErrUnsupportedAlgorithm)
}

func TestRegistry(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register("sha1", sha1.New))
	require.ErrorIs(t, reg.Register("sha1", func() hash.Hash { return sha1.New() }), ErrDuplicateAlg)

	n, err := reg.Size("sha1")
	require.NoError(t, err)
	assert.Equal(t, sha1.Size, n)

	_, err = reg.Size("md5")
	require.ErrorIs(t, err, errkind.ErrUnsupportedAlgorithm)
	_, err = reg.Digest("md5", nil)
	require.ErrorIs(t, err, errkind.ErrUnsupportedAlgorithm)

	assert.Equal(t, []string{"sha1"}, reg.Algorithms())
	assert.Contains(t, Algorithms(), "sha256")
	assert.Contains(t, Algorithms(), "xxh64")
	assert.Contains(t, Algorithms(), "murmur3-128")
}
