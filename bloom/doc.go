package bloom

/*

# Bloom filters over a single digest family

This package composes a bitarray.BitArray of m bits with a
hashers.HasherList of k indices over [0, m) into a Bloom filter.

It keeps the merklelog primitive style:

- small, composable functions
- explicit byte layouts
- index arithmetic on byte slices

## What Bloom filters are (and are not)

Bloom filters provide a *probabilistic prefilter*:

- If the filter says "definitely not present", then the element is not present.
- If the filter says "maybe present", then the element may or may not be present
  (false positives are possible).

They are only an I/O optimization: a cheap check in front of an expensive
lookup. There is no remove, and capacity is fixed when the filter is created.

## Sizing

For n expected items and a target false positive rate p:

	m = round(-n * ln(p) / ln(2)^2)
	k = round((m / n) * ln(2))

both clamped to at least 1. See Parameters and FalsePositiveRate.

## Indexing and bit numbering

Index s of item x is the big endian integer value of
Digest(algo, decimal(s) || x), reduced modulo m. Bit j lives in byte j/8 at
mask 1 << (j%8) (LSB0).

## Encodings

The JSON form is canonical and interoperable:

	{"bit_array":{"len":<m>,"arr":"<base64>"},"hashers":{"algo":"sha1","count":<k>,"max":<m>}}

CBOR (core deterministic), a protobuf wire form and a fixed header binary
layout are also provided:

	+----------------------+  48B header (magic, version, k, m, algo)
	| HeaderV1             |
	+----------------------+  ceil(m/8) bytes
	| bitset               |
	+----------------------+

## API versioning: why the `V1` suffix exists

Binary layout functions are suffixed with a format version (for example
`EncodeHeaderV1`, `RegionBytesV1`).

The suffix means: **this function implements binary format version 1**, i.e.
it assumes a specific header layout (magic/version/fields) and bit numbering
convention. A future incompatible layout arrives as `V2` side-by-side without
silently breaking previously persisted data.

*/
