package wire

import (
	"bytes"
	"encoding/binary"
	"errors"
)

const (
	version      byte = 2
	kindGeometry byte = 1

	envelopeHeader = 4 + 1 + 1 + 4 + 4 + 4 + 8 + 4
)

var (
	ErrCorrupt = errors.New("hairstrand: corrupt cache entry")
	magic4     = [...]byte{'H', 'S', 'T', 'R'}
)

func hasMagic(b []byte) bool {
	return len(b) >= 4 && bytes.Equal(b[:4], magic4[:])
}

// Entry is a cached, codec-encoded geometry together with the counts it was
// encoded from. Counts are re-checked after the payload is decoded.
// Strands and Trailing describe the source file so that a cache hit can
// report what the original decode reported.
type Entry struct {
	Vertices uint32
	Edges    uint32
	Strands  uint32 // declared strand_count of the source
	Trailing uint64 // offset of trailing bytes in the source; 0 => none
	Payload  []byte
}

// magic(4) | ver(1) | kind(1=geometry) | vcount(u32 be) | ecount(u32 be) |
// strands(u32 be) | trailing(u64 be) | plen(u32 be) | payload(plen)
func EncodeEntry(e Entry) []byte {
	var buf bytes.Buffer
	buf.Grow(envelopeHeader + len(e.Payload))

	buf.Write(magic4[:])
	buf.WriteByte(version)
	buf.WriteByte(kindGeometry)

	var u4 [4]byte

	binary.BigEndian.PutUint32(u4[:], e.Vertices)
	buf.Write(u4[:])

	binary.BigEndian.PutUint32(u4[:], e.Edges)
	buf.Write(u4[:])

	binary.BigEndian.PutUint32(u4[:], e.Strands)
	buf.Write(u4[:])

	var u8 [8]byte
	binary.BigEndian.PutUint64(u8[:], e.Trailing)
	buf.Write(u8[:])

	binary.BigEndian.PutUint32(u4[:], uint32(len(e.Payload)))
	buf.Write(u4[:])

	buf.Write(e.Payload)
	return buf.Bytes()
}

// DecodeEntry validates the envelope and returns the payload as a subslice of b.
func DecodeEntry(b []byte) (Entry, error) {
	if len(b) < envelopeHeader || !hasMagic(b) || b[4] != version || b[5] != kindGeometry {
		return Entry{}, ErrCorrupt
	}

	off := 6

	vcount := binary.BigEndian.Uint32(b[off : off+4])
	off += 4

	ecount := binary.BigEndian.Uint32(b[off : off+4])
	off += 4

	strands := binary.BigEndian.Uint32(b[off : off+4])
	off += 4

	trailing := binary.BigEndian.Uint64(b[off : off+8])
	off += 8

	plen := int(binary.BigEndian.Uint32(b[off : off+4]))
	off += 4
	if plen < 0 || plen != len(b)-off { // exact framing, no trailing bytes
		return Entry{}, ErrCorrupt
	}

	return Entry{
		Vertices: vcount,
		Edges:    ecount,
		Strands:  strands,
		Trailing: trailing,
		Payload:  b[off : off+plen],
	}, nil
}
