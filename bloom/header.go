package bloom

import "encoding/binary"

// Byte offsets of the V1 header fields. Bytes 7, 12..15 and 47 are reserved
// and written as zero.
const (
	offMagic    = 0
	offVersion  = 4
	offBitOrder = 5
	offAlgoLen  = 6
	offK        = 8
	offMBits    = 16
	offAlgo     = 24
)

func (h HeaderV1) check() error {
	switch {
	case h.BitOrder != BitOrderLSB0:
		return ErrBadBitOrder
	case h.K == 0:
		return ErrBadK
	case h.MBits == 0:
		return ErrBadMBits
	case h.Algo == "" || len(h.Algo) > MaxAlgoBytesV1:
		return ErrBadAlgo
	}
	return nil
}

// DecodeHeaderV1 reads the header at the start of region. A region whose
// magic bytes are all zero has never been written: ok is false and err nil.
func DecodeHeaderV1(region []byte) (h HeaderV1, ok bool, err error) {
	if len(region) < HeaderBytesV1 {
		return HeaderV1{}, false, ErrBadRegionSize
	}
	magic := region[offMagic : offMagic+len(MagicV1)]
	if string(magic) == "\x00\x00\x00\x00" {
		return HeaderV1{}, false, nil
	}
	if string(magic) != MagicV1 {
		return HeaderV1{}, false, ErrBadMagic
	}
	if region[offVersion] != VersionV1 {
		return HeaderV1{}, false, ErrBadVersion
	}

	n := int(region[offAlgoLen])
	if n > MaxAlgoBytesV1 {
		return HeaderV1{}, false, ErrBadAlgo
	}
	h = HeaderV1{
		BitOrder: region[offBitOrder],
		K:        binary.BigEndian.Uint32(region[offK:]),
		MBits:    binary.BigEndian.Uint64(region[offMBits:]),
		Algo:     string(region[offAlgo : offAlgo+n]),
	}
	if err = h.check(); err != nil {
		return HeaderV1{}, false, err
	}
	return h, true, nil
}

// EncodeHeaderV1 overwrites the first HeaderBytesV1 bytes of region.
func EncodeHeaderV1(region []byte, h HeaderV1) error {
	if len(region) < HeaderBytesV1 {
		return ErrBadRegionSize
	}
	if err := h.check(); err != nil {
		return err
	}
	hdr := region[:HeaderBytesV1]
	clear(hdr)
	copy(hdr[offMagic:], MagicV1)
	hdr[offVersion] = VersionV1
	hdr[offBitOrder] = h.BitOrder
	hdr[offAlgoLen] = byte(len(h.Algo))
	binary.BigEndian.PutUint32(hdr[offK:], h.K)
	binary.BigEndian.PutUint64(hdr[offMBits:], h.MBits)
	copy(hdr[offAlgo:], h.Algo)
	return nil
}
