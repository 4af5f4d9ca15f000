package bloom

import (
	"fmt"
	"testing"

	"github.com/forestrie/go-bloomfilter/errkind"
	"github.com/forestrie/go-bloomfilter/hashers"
	"github.com/fxamacker/cbor/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func populated(t *testing.T, opts ...Option) *Filter {
	t.Helper()
	bf, err := New(200, 0.01, opts...)
	require.NoError(t, err)
	for i := 0; i < 50; i++ {
		bf.AddString(fmt.Sprintf("member-%d", i))
	}
	return bf
}

func requireSameFilter(t *testing.T, want, got *Filter) {
	t.Helper()
	require.True(t, want.Hashers().Equal(got.Hashers()))
	require.Equal(t, want.BitArray().Bytes(), got.BitArray().Bytes())
	for i := 0; i < 50; i++ {
		require.True(t, got.ExistsString(fmt.Sprintf("member-%d", i)))
	}
	for i := 0; i < 50; i++ {
		q := fmt.Sprintf("query-%d", i)
		require.Equal(t, want.ExistsString(q), got.ExistsString(q), q)
	}
}

func TestBinaryRoundTrip(t *testing.T) {
	for _, algo := range []string{"sha1", "sha512/256", "xxh64"} {
		bf := populated(t, WithAlgorithm(algo))
		data, err := bf.MarshalBinary()
		require.NoError(t, err)
		require.Len(t, data, int(RegionBytesV1(uint64(bf.M()))))

		var got Filter
		require.NoError(t, got.UnmarshalBinary(data))
		requireSameFilter(t, bf, &got)

		again, err := got.MarshalBinary()
		require.NoError(t, err)
		require.Equal(t, data, again)
	}
}

func TestBinaryRejects(t *testing.T) {
	bf := populated(t)
	data, err := bf.MarshalBinary()
	require.NoError(t, err)

	_, err = FromBinary(data[:len(data)-1])
	require.ErrorIs(t, err, ErrBadRegionSize)
	_, err = FromBinary(append(append([]byte(nil), data...), 0))
	require.ErrorIs(t, err, ErrBadRegionSize)
	_, err = FromBinary(make([]byte, len(data)))
	require.ErrorIs(t, err, ErrBadMagic)

	unknown := append([]byte(nil), data...)
	copy(unknown[24:], "zzzz")
	_, err = FromBinary(unknown)
	require.ErrorIs(t, err, errkind.ErrUnsupportedAlgorithm)

	var f Filter
	require.Error(t, f.UnmarshalBinary(data[:10]))
}

func TestCBORRoundTrip(t *testing.T) {
	bf := populated(t)
	data, err := cbor.Marshal(bf)
	require.NoError(t, err)

	var got Filter
	require.NoError(t, cbor.Unmarshal(data, &got))
	requireSameFilter(t, bf, &got)

	again, err := got.MarshalCBOR()
	require.NoError(t, err)
	assert.Equal(t, data, again)
}

func TestCBORRejects(t *testing.T) {
	_, err := FromCBOR([]byte{0xff})
	require.ErrorIs(t, err, ErrBadCBOR)

	bad, err := cbor.Marshal(cborForm{
		BitArray: cborBitArray{Len: 8, Arr: []byte{0}},
		Hashers:  cborHashers{Algo: "sha1", Count: 1, Max: 9},
	})
	require.NoError(t, err)
	_, err = FromCBOR(bad)
	require.ErrorIs(t, err, ErrSizeMismatch)

	bad, err = cbor.Marshal(cborForm{
		BitArray: cborBitArray{Len: 8, Arr: []byte{0, 0}},
		Hashers:  cborHashers{Algo: "sha1", Count: 1, Max: 8},
	})
	require.NoError(t, err)
	_, err = FromCBOR(bad)
	require.ErrorIs(t, err, errkind.ErrInvalidArgument)

	bad, err = cbor.Marshal(cborForm{
		BitArray: cborBitArray{Len: 8, Arr: []byte{0}},
		Hashers:  cborHashers{Algo: "sha1", Count: 1 << 50, Max: 8},
	})
	require.NoError(t, err)
	_, err = FromCBOR(bad)
	require.ErrorIs(t, err, hashers.ErrCountTooLarge)
}

func TestProtoShape(t *testing.T) {
	sut, err := New(1, 0.5)
	require.NoError(t, err)
	data, err := sut.MarshalProto()
	require.NoError(t, err)
	want := []byte{
		0x0a, 0x05, // bit_array
		0x08, 0x01, 0x12, 0x01, 0x00,
		0x12, 0x0a, // hashers
		0x0a, 0x04, 's', 'h', 'a', '1', 0x10, 0x01, 0x18, 0x01,
	}
	assert.Equal(t, want, data)
}

func TestProtoRoundTrip(t *testing.T) {
	for _, algo := range []string{"sha1", "murmur3-128", "sha3-256"} {
		bf := populated(t, WithAlgorithm(algo))
		data, err := bf.MarshalProto()
		require.NoError(t, err)

		var got Filter
		require.NoError(t, got.UnmarshalProto(data))
		requireSameFilter(t, bf, &got)

		again, err := got.MarshalProto()
		require.NoError(t, err)
		assert.Equal(t, data, again)
	}
}

func TestProtoIgnoresUnknownFields(t *testing.T) {
	sut, err := New(1, 0.5)
	require.NoError(t, err)
	data, err := sut.MarshalProto()
	require.NoError(t, err)

	// field 9 varint and field 10 fixed32 are skipped
	data = append(data, 0x48, 0x2a, 0x55, 1, 2, 3, 4)
	got, err := FromProto(data)
	require.NoError(t, err)
	assert.Equal(t, 1, got.M())
}

func TestProtoRejects(t *testing.T) {
	sut, err := New(1, 0.5)
	require.NoError(t, err)
	good, err := sut.MarshalProto()
	require.NoError(t, err)

	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"empty", nil, ErrBadProto},
		{"truncated", good[:len(good)-1], ErrBadProto},
		{"no hashers", good[:7], ErrBadProto},
		{"bit_array as varint", []byte{0x08, 0x01}, ErrBadProto},
		{"len as bytes", []byte{
			0x0a, 0x03, 0x0a, 0x01, 0x00,
			0x12, 0x0a, 0x0a, 0x04, 's', 'h', 'a', '1', 0x10, 0x01, 0x18, 0x01,
		}, ErrBadProto},
		{"size mismatch", []byte{
			0x0a, 0x05, 0x08, 0x01, 0x12, 0x01, 0x00,
			0x12, 0x0a, 0x0a, 0x04, 's', 'h', 'a', '1', 0x10, 0x01, 0x18, 0x02,
		}, ErrSizeMismatch},
		{"unknown algo", []byte{
			0x0a, 0x05, 0x08, 0x01, 0x12, 0x01, 0x00,
			0x12, 0x0a, 0x0a, 0x04, 'z', 'z', 'z', 'z', 0x10, 0x01, 0x18, 0x01,
		}, errkind.ErrUnsupportedAlgorithm},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromProto(tt.data)
			require.ErrorIs(t, err, tt.want)
		})
	}

	var f Filter
	require.Error(t, f.UnmarshalProto([]byte{0xff}))
}
