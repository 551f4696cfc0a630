package dbuswire

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSignatures(t *testing.T) {
	require.Equal(t, "", SignatureOf[Empty, *Empty]())
	require.Equal(t, "b", SignatureOf[Bool, *Bool]())
	require.Equal(t, "q", SignatureOf[Uint16, *Uint16]())
	require.Equal(t, "u", SignatureOf[Uint32, *Uint32]())
	require.Equal(t, "t", SignatureOf[Uint64, *Uint64]())
	require.Equal(t, "s", SignatureOf[String, *String]())
	require.Equal(t, "as", SignatureOf[Array[String, *String], *Array[String, *String]]())
	require.Equal(t, "v", SignatureOf[Variant[String, *String], *Variant[String, *String]]())
	require.Equal(t, "ss", SignatureOf[
		Tuple2[String, *String, String, *String],
		*Tuple2[String, *String, String, *String],
	]())
}

// roundTrip encodes v into a buffer prefixed with `prefix` arbitrary
// bytes, then decodes it back starting from that offset — exercising
// that alignment is relative to the current position, not absolute
// zero.
func roundTrip[T any, PT ValuePtr[T]](t *testing.T, v T, prefix int) T {
	t.Helper()
	enc := newEncoder()
	for i := 0; i < prefix; i++ {
		enc.byte(0xAA)
	}
	PT(&v).encode(enc)

	dec := newDecoder(enc.bytes())
	dec.offset = prefix

	got, err := DecodeValue[T, PT](dec)
	require.NoError(t, err)
	return got
}

func TestPrimitiveRoundTrip(t *testing.T) {
	require.Equal(t, Bool(true), roundTrip[Bool, *Bool](t, true, 3))
	require.Equal(t, Bool(false), roundTrip[Bool, *Bool](t, false, 0))
	require.Equal(t, Uint16(0xBEEF), roundTrip[Uint16, *Uint16](t, 0xBEEF, 1))
	require.Equal(t, Uint32(0xDEADBEEF), roundTrip[Uint32, *Uint32](t, 0xDEADBEEF, 5))
	require.Equal(t, Uint64(0x0102030405060708), roundTrip[Uint64, *Uint64](t, 0x0102030405060708, 2))
	require.Equal(t, String("hello, dbus"), roundTrip[String, *String](t, "hello, dbus", 6))
}

func TestArrayRoundTrip(t *testing.T) {
	want := NewArray[String, *String]("a", "bb", "ccc")
	got := roundTrip[Array[String, *String], *Array[String, *String]](t, want, 4)
	require.Equal(t, want.Elems, got.Elems)
}

func TestEmptyArrayRoundTrip(t *testing.T) {
	want := NewArray[Uint32, *Uint32]()
	got := roundTrip[Array[Uint32, *Uint32], *Array[Uint32, *Uint32]](t, want, 0)
	require.Empty(t, got.Elems)
}

func TestVariantRoundTrip(t *testing.T) {
	want := NewVariant[String, *String]("systemd")
	got := roundTrip[Variant[String, *String], *Variant[String, *String]](t, want, 7)
	require.Equal(t, want.Val, got.Val)
}

func TestVariantSignatureMismatch(t *testing.T) {
	enc := newEncoder()
	enc.signature("u") // a variant claiming to carry a u32
	enc.uint32(7)

	var v Variant[String, *String]
	err := v.decode(newDecoder(enc.bytes()))
	require.Error(t, err)
	var im *IncorrectMessage
	require.ErrorAs(t, err, &im)
}

func TestTuple2RoundTrip(t *testing.T) {
	want := NewTuple2[String, *String, Uint32, *Uint32]("org.freedesktop.systemd1.Manager", 42)
	got := roundTrip[
		Tuple2[String, *String, Uint32, *Uint32],
		*Tuple2[String, *String, Uint32, *Uint32],
	](t, want, 3)
	require.Equal(t, want.First, got.First)
	require.Equal(t, want.Second, got.Second)
}

func TestEmptyConsumesRemainder(t *testing.T) {
	dec := newDecoder([]byte{1, 2, 3})
	_, err := DecodeValue[Empty, *Empty](dec)
	require.NoError(t, err)
	require.True(t, dec.done())
}
