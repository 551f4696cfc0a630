package dbuswire

import "encoding/binary"

// newDecoder creates a decoder over an in-memory buffer, starting at
// offset zero. Connection.call gathers a full reply stream before any
// decoding begins (see connection.go), so — unlike the teacher's
// io.Reader-backed decoder — this one always has the whole message
// available and decodes by advancing a cursor over buf, matching the
// reference implementation's buf+cursor contract directly.
func newDecoder(buf []byte) *decoder {
	return &decoder{buf: buf}
}

type decoder struct {
	buf    []byte
	offset int
}

// offsetFrom returns a new decoder sharing buf but starting its own
// offset count at zero, for decoding a region (e.g. the header field
// array) whose internal alignment is relative to its own start rather
// than the whole message.
func (d *decoder) offsetFrom(start, length int) *decoder {
	return &decoder{buf: d.buf[start : start+length]}
}

func (d *decoder) done() bool { return d.offset >= len(d.buf) }

func (d *decoder) align(n int) error {
	next, padding := nextOffset(d.offset, n)
	if padding == 0 {
		return nil
	}
	if next > len(d.buf) {
		return &IncorrectMessage{Msg: "truncated message: ran out of bytes while aligning"}
	}
	d.offset = next
	return nil
}

func (d *decoder) readN(n int) ([]byte, error) {
	if d.offset+n > len(d.buf) {
		return nil, &IncorrectMessage{Msg: "truncated message: ran out of bytes"}
	}
	b := d.buf[d.offset : d.offset+n]
	d.offset += n
	return b, nil
}

func (d *decoder) byte() (byte, error) {
	b, err := d.readN(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (d *decoder) uint16() (uint16, error) {
	if err := d.align(2); err != nil {
		return 0, err
	}
	b, err := d.readN(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (d *decoder) uint32() (uint32, error) {
	if err := d.align(4); err != nil {
		return 0, err
	}
	b, err := d.readN(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (d *decoder) uint64() (uint64, error) {
	if err := d.align(8); err != nil {
		return 0, err
	}
	b, err := d.readN(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

// str decodes D-Bus STRING/OBJECT_PATH: a u32 length, the bytes, then
// one NUL terminator which is consumed but not returned.
func (d *decoder) str() (string, error) {
	n, err := d.uint32()
	if err != nil {
		return "", err
	}
	b, err := d.readN(int(n) + 1)
	if err != nil {
		return "", err
	}
	return string(b[:n]), nil
}

// signature decodes D-Bus SIGNATURE: a single length byte, the bytes,
// then one NUL terminator.
func (d *decoder) signature() (string, error) {
	n, err := d.byte()
	if err != nil {
		return "", err
	}
	b, err := d.readN(int(n) + 1)
	if err != nil {
		return "", err
	}
	return string(b[:n]), nil
}
