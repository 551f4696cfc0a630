package dbuswire

import "fmt"

// WireValue is the capability every D-Bus-encodable type in this
// package implements: a static signature, an append-serializer, and a
// cursor-advancing deserializer. It is the Go analogue of the
// reference implementation's `DbusSerialize` trait.
//
// The capability is closed: only the types in this file implement it,
// and the SignatureOf/DecodeValue/EncodeValue free functions below are the
// only way to invoke it generically, via the ValuePtr constraint that
// requires a pointer to the value type. Methods are unexported so
// callers outside this package cannot add new wire types — every
// call/reply body is built from what's here, same as the reference.
type WireValue interface {
	Signature() string
	encode(enc *encoder)
	decode(dec *decoder) error
}

// ValuePtr constrains a type parameter PT to be a pointer to T that
// implements WireValue. Go methods can't introduce their own type
// parameters, so generic decode has no way to construct "the" T for
// an arbitrary type parameter except by requiring its pointer type to
// carry the capability — this is that requirement.
type ValuePtr[T any] interface {
	*T
	WireValue
}

// SignatureOf returns T's static D-Bus signature without requiring a
// value of it, mirroring the reference's `T::get_signature()`
// associated function.
func SignatureOf[T any, PT ValuePtr[T]]() string {
	var zero T
	return PT(&zero).Signature()
}

// DecodeValue decodes a T from dec, advancing its cursor past the
// value (and any alignment padding the value's encoding requires).
func DecodeValue[T any, PT ValuePtr[T]](dec *decoder) (T, error) {
	var v T
	if err := PT(&v).decode(dec); err != nil {
		var zero T
		return zero, err
	}
	return v, nil
}

// EncodeValue serializes v from a fresh buffer and returns the bytes.
func EncodeValue[T any, PT ValuePtr[T]](v T) []byte {
	enc := newEncoder()
	PT(&v).encode(enc)
	return enc.bytes()
}

// Empty is the D-Bus unit type: signature "", encodes nothing, and
// its decoder consumes the entire remaining buffer. It is the
// sentinel the proxy uses to recognize "no body expected".
type Empty struct{}

func (*Empty) Signature() string    { return "" }
func (*Empty) encode(enc *encoder)  {}
func (e *Empty) decode(dec *decoder) error {
	dec.offset = len(dec.buf)
	return nil
}

// Bool is D-Bus BOOLEAN: 4-byte aligned, stored as a little-endian
// u32 where 0 is false and any nonzero value is true.
type Bool bool

func (*Bool) Signature() string { return "b" }

func (b *Bool) encode(enc *encoder) {
	var v uint32
	if *b {
		v = 1
	}
	enc.uint32(v)
}

func (b *Bool) decode(dec *decoder) error {
	v, err := dec.uint32()
	if err != nil {
		return err
	}
	*b = v != 0
	return nil
}

// Uint16 is D-Bus UINT16: 2-byte aligned, little-endian.
type Uint16 uint16

func (*Uint16) Signature() string { return "q" }

func (u *Uint16) encode(enc *encoder) { enc.uint16(uint16(*u)) }

func (u *Uint16) decode(dec *decoder) error {
	v, err := dec.uint16()
	if err != nil {
		return err
	}
	*u = Uint16(v)
	return nil
}

// Uint32 is D-Bus UINT32: 4-byte aligned, little-endian.
type Uint32 uint32

func (*Uint32) Signature() string { return "u" }

func (u *Uint32) encode(enc *encoder) { enc.uint32(uint32(*u)) }

func (u *Uint32) decode(dec *decoder) error {
	v, err := dec.uint32()
	if err != nil {
		return err
	}
	*u = Uint32(v)
	return nil
}

// Uint64 is D-Bus UINT64: 8-byte aligned, little-endian.
type Uint64 uint64

func (*Uint64) Signature() string { return "t" }

func (u *Uint64) encode(enc *encoder) { enc.uint64(uint64(*u)) }

func (u *Uint64) decode(dec *decoder) error {
	v, err := dec.uint64()
	if err != nil {
		return err
	}
	*u = Uint64(v)
	return nil
}

// String is D-Bus STRING: 4-byte aligned, a u32 byte length (not
// counting the trailing NUL), the UTF-8 bytes, then one NUL.
type String string

func (*String) Signature() string { return "s" }

func (s *String) encode(enc *encoder) { enc.rawString(string(*s)) }

func (s *String) decode(dec *decoder) error {
	v, err := dec.str()
	if err != nil {
		return err
	}
	*s = String(v)
	return nil
}

// Array is D-Bus ARRAY of T. As a deliberate simplification carried
// from the reference implementation, the length prefix here is the
// element count, not the byte length the D-Bus specification actually
// requires — see the Array length encoding note in this module's
// design notes. This breaks wire compatibility with a conformant
// D-Bus peer for anything beyond fixed-size elements, but round-trips
// against itself and against the reference implementation's own wire
// form.
type Array[T any, PT ValuePtr[T]] struct {
	Elems []T
}

// NewArray builds an Array from its elements.
func NewArray[T any, PT ValuePtr[T]](elems ...T) Array[T, PT] {
	return Array[T, PT]{Elems: elems}
}

func (a *Array[T, PT]) Signature() string {
	return "a" + SignatureOf[T, PT]()
}

func (a *Array[T, PT]) encode(enc *encoder) {
	enc.align(4)
	enc.uint32(uint32(len(a.Elems)))
	for i := range a.Elems {
		PT(&a.Elems[i]).encode(enc)
	}
}

func (a *Array[T, PT]) decode(dec *decoder) error {
	n, err := dec.uint32()
	if err != nil {
		return err
	}
	elems := make([]T, 0, n)
	for i := uint32(0); i < n; i++ {
		var v T
		if err := PT(&v).decode(dec); err != nil {
			return err
		}
		elems = append(elems, v)
	}
	a.Elems = elems
	return nil
}

// Variant is D-Bus VARIANT: byte-aligned, a signature-prefixed value
// of dynamic type T.
type Variant[T any, PT ValuePtr[T]] struct {
	Val T
}

// NewVariant wraps v as a Variant.
func NewVariant[T any, PT ValuePtr[T]](v T) Variant[T, PT] {
	return Variant[T, PT]{Val: v}
}

func (*Variant[T, PT]) Signature() string { return "v" }

func (v *Variant[T, PT]) encode(enc *encoder) {
	enc.signature(SignatureOf[T, PT]())
	PT(&v.Val).encode(enc)
}

func (v *Variant[T, PT]) decode(dec *decoder) error {
	sig, err := dec.signature()
	if err != nil {
		return err
	}
	want := SignatureOf[T, PT]()
	if sig != want {
		return &IncorrectMessage{Msg: fmt.Sprintf("variant signature mismatch: expected %s, found %s", want, sig)}
	}
	var val T
	if err := PT(&val).decode(dec); err != nil {
		return err
	}
	v.Val = val
	return nil
}

// Tuple2 is a fixed 2-tuple (A, B), the only structure form this
// closed capability set can fully round-trip — see the design notes
// on general structures.
type Tuple2[A any, PA ValuePtr[A], B any, PB ValuePtr[B]] struct {
	First  A
	Second B
}

// NewTuple2 builds a Tuple2 from its two members.
func NewTuple2[A any, PA ValuePtr[A], B any, PB ValuePtr[B]](a A, b B) Tuple2[A, PA, B, PB] {
	return Tuple2[A, PA, B, PB]{First: a, Second: b}
}

func (*Tuple2[A, PA, B, PB]) Signature() string {
	return SignatureOf[A, PA]() + SignatureOf[B, PB]()
}

func (t *Tuple2[A, PA, B, PB]) encode(enc *encoder) {
	PA(&t.First).encode(enc)
	PB(&t.Second).encode(enc)
}

func (t *Tuple2[A, PA, B, PB]) decode(dec *decoder) error {
	var a A
	if err := PA(&a).decode(dec); err != nil {
		return err
	}
	var b B
	if err := PB(&b).decode(dec); err != nil {
		return err
	}
	t.First, t.Second = a, b
	return nil
}
