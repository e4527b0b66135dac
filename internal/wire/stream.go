package wire

import (
	"encoding/binary"
	"io"
	"math"
)

// MaxChunk bounds a single Reader.Next call so that a corrupt length field
// cannot force a large allocation before the stream proves it has the bytes.
const MaxChunk = 64 << 10

// Reader reads little-endian fields from a stream and tracks the byte offset.
type Reader struct {
	r   io.Reader
	off int64
	buf []byte
}

func NewReader(r io.Reader) *Reader {
	return &Reader{r: r, buf: make([]byte, 0, 4)}
}

// Offset is the number of bytes consumed so far.
func (r *Reader) Offset() int64 { return r.off }

// Int32 reads one little-endian int32. A short read returns io.EOF (nothing
// read) or io.ErrUnexpectedEOF (partial read).
func (r *Reader) Int32() (int32, error) {
	b, err := r.Next(4)
	if err != nil {
		return 0, err
	}
	return int32(binary.LittleEndian.Uint32(b)), nil
}

// Next reads exactly n bytes (n <= MaxChunk). The returned slice is only valid
// until the next call.
func (r *Reader) Next(n int) ([]byte, error) {
	if n < 0 || n > MaxChunk {
		panic("hairstrand: invalid chunk length")
	}
	if cap(r.buf) < n {
		r.buf = make([]byte, n)
	}
	b := r.buf[:n]
	m, err := io.ReadFull(r.r, b)
	r.off += int64(m)
	if err != nil {
		return nil, err
	}
	return b, nil
}

// More reports whether at least one more byte is available. The byte read is
// consumed.
func (r *Reader) More() (bool, error) {
	var one [1]byte
	m, err := io.ReadFull(r.r, one[:])
	r.off += int64(m)
	if err == io.EOF {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Float32At decodes the i-th little-endian float32 of b.
func Float32At(b []byte, i int) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(b[4*i : 4*i+4]))
}

// Writer writes little-endian fields, remembering the first error.
type Writer struct {
	w   io.Writer
	u4  [4]byte
	err error
}

func NewWriter(w io.Writer) *Writer { return &Writer{w: w} }

func (w *Writer) Int32(v int32) {
	binary.LittleEndian.PutUint32(w.u4[:], uint32(v))
	w.write(w.u4[:])
}

func (w *Writer) Float32(v float32) {
	binary.LittleEndian.PutUint32(w.u4[:], math.Float32bits(v))
	w.write(w.u4[:])
}

func (w *Writer) write(b []byte) {
	if w.err != nil {
		return
	}
	_, w.err = w.w.Write(b)
}

// Err returns the first write error, if any.
func (w *Writer) Err() error { return w.err }
