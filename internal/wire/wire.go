package wire

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"sort"
)

const (
	version    byte = 1
	kindSingle byte = 1
	kindBulk   byte = 2
)

// LengthSize is the width of the big-endian length field in front of every frame.
const LengthSize = 8

// SingleOverhead is the number of envelope bytes EncodeSingle adds to a payload.
const SingleOverhead = 4 + 1 + 1 + 4

var (
	ErrCorrupt = errors.New("lsbsteg: corrupt envelope")
	magic4     = [...]byte{'S', 'T', 'E', 'G'}
)

func hasMagic(b []byte) bool {
	return len(b) >= 4 && bytes.Equal(b[:4], magic4[:])
}

// PutLength returns n as a big-endian length field.
func PutLength(n uint64) [LengthSize]byte {
	var b [LengthSize]byte
	binary.BigEndian.PutUint64(b[:], n)
	return b
}

// Length reads a big-endian length field. b must hold at least LengthSize bytes.
func Length(b []byte) uint64 {
	return binary.BigEndian.Uint64(b[:LengthSize])
}

// Single: magic(4) | ver(1) | kind(1=single) | vlen(u32 be) | payload(vlen)
func EncodeSingle(payload []byte) []byte {
	var buf bytes.Buffer
	buf.Grow(SingleOverhead + len(payload))

	buf.Write(magic4[:])
	buf.WriteByte(version)
	buf.WriteByte(kindSingle)

	var u4 [4]byte
	binary.BigEndian.PutUint32(u4[:], uint32(len(payload)))
	buf.Write(u4[:])

	buf.Write(payload)
	return buf.Bytes()
}

func DecodeSingle(b []byte) ([]byte, error) {
	if len(b) < SingleOverhead || !hasMagic(b) || b[4] != version || b[5] != kindSingle {
		return nil, ErrCorrupt
	}

	off := 6
	vlen := int(binary.BigEndian.Uint32(b[off : off+4]))
	off += 4
	// frames carry the envelope exactly; anything else is not ours
	if vlen < 0 || vlen != len(b)-off {
		return nil, ErrCorrupt
	}
	return b[off : off+vlen], nil
}

// Bulk:
//
//	magic(4) | ver(1) | kind(1=bulk) | n(u32 be)
//	nameLen(u16 be) | name(nameLen) | vlen(u32 be) | payload(vlen) * n
type BulkItem struct {
	Name    string
	Payload []byte
}

// EncodeBulk writes items sorted by name, so equal sets encode to equal bytes.
func EncodeBulk(items []BulkItem) ([]byte, error) {
	total := 4 + 1 + 1 + 4
	for _, it := range items {
		if l := len(it.Name); l == 0 || l > 0xFFFF {
			return nil, fmt.Errorf("lsbsteg: invalid item name length %d", l)
		}
		total += 2 + len(it.Name) + 4 + len(it.Payload)
	}

	sorted := make([]BulkItem, len(items))
	copy(sorted, items)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	var buf bytes.Buffer
	buf.Grow(total)

	buf.Write(magic4[:])
	buf.WriteByte(version)
	buf.WriteByte(kindBulk)

	var u4 [4]byte
	var u2 [2]byte

	binary.BigEndian.PutUint32(u4[:], uint32(len(sorted)))
	buf.Write(u4[:])

	for _, it := range sorted {
		binary.BigEndian.PutUint16(u2[:], uint16(len(it.Name)))
		buf.Write(u2[:])
		buf.WriteString(it.Name)

		binary.BigEndian.PutUint32(u4[:], uint32(len(it.Payload)))
		buf.Write(u4[:])
		buf.Write(it.Payload)
	}

	return buf.Bytes(), nil
}

func DecodeBulk(b []byte) ([]BulkItem, error) {
	const hdr = 4 + 1 + 1 + 4
	if len(b) < hdr || !hasMagic(b) || b[4] != version || b[5] != kindBulk {
		return nil, ErrCorrupt
	}

	off := 6

	// n
	n := int(binary.BigEndian.Uint32(b[off : off+4]))
	off += 4
	// every item takes at least 2+1+4 bytes; reject counts the input cannot hold
	if n < 0 || n > (len(b)-off)/7 {
		return nil, ErrCorrupt
	}

	items := make([]BulkItem, 0, n)
	for i := 0; i < n; i++ {
		// nameLen
		if off+2 > len(b) {
			return nil, ErrCorrupt
		}
		nlen := int(binary.BigEndian.Uint16(b[off : off+2]))
		off += 2
		if nlen <= 0 || nlen > len(b)-off {
			return nil, ErrCorrupt
		}

		name := b[off : off+nlen]
		off += nlen

		// vlen
		if off+4 > len(b) {
			return nil, ErrCorrupt
		}
		vlen := int(binary.BigEndian.Uint32(b[off : off+4]))
		off += 4
		if vlen < 0 || vlen > len(b)-off {
			return nil, ErrCorrupt
		}

		payload := b[off : off+vlen]
		off += vlen

		items = append(items, BulkItem{
			Name:    string(name),
			Payload: payload,
		})
	}

	if off != len(b) {
		return nil, ErrCorrupt
	}
	return items, nil
}
