package dbuswire

import "encoding/binary"

// newEncoder creates a D-Bus wire encoder starting at offset zero.
// Every append tracks its own position so alignment padding can be
// computed relative to the buffer the encoder owns, exactly as the
// reference implementation's encoder does.
func newEncoder() *encoder {
	return &encoder{}
}

type encoder struct {
	buf []byte
}

func (e *encoder) len() int { return len(e.buf) }

func (e *encoder) bytes() []byte { return e.buf }

// align inserts zero padding so the next write starts on an n-byte
// boundary relative to the start of e's buffer.
func (e *encoder) align(n int) {
	e.buf = padTo(e.buf, n)
}

func (e *encoder) byte(b byte) {
	e.buf = append(e.buf, b)
}

func (e *encoder) uint16(v uint16) {
	e.align(2)
	e.buf = binary.LittleEndian.AppendUint16(e.buf, v)
}

func (e *encoder) uint32(v uint32) {
	e.align(4)
	e.buf = binary.LittleEndian.AppendUint32(e.buf, v)
}

func (e *encoder) uint64(v uint64) {
	e.align(8)
	e.buf = binary.LittleEndian.AppendUint64(e.buf, v)
}

// rawString encodes D-Bus STRING/OBJECT_PATH: a u32 length (excluding
// the trailing NUL), the UTF-8 bytes, then one NUL terminator.
func (e *encoder) rawString(s string) {
	e.uint32(uint32(len(s)))
	e.buf = append(e.buf, s...)
	e.buf = append(e.buf, 0)
}

// signature encodes D-Bus SIGNATURE: a single length byte, the bytes,
// then one NUL terminator. Unlike rawString this carries no alignment
// of its own — a signature may start on any byte.
func (e *encoder) signature(s string) {
	e.byte(byte(len(s)))
	e.buf = append(e.buf, s...)
	e.buf = append(e.buf, 0)
}

// uint32At overwrites the 4 bytes at off with v, used to patch a
// length field after the fact once the real length is known.
func (e *encoder) uint32At(v uint32, off int) {
	binary.LittleEndian.PutUint32(e.buf[off:off+4], v)
}
