package dbuswire

import "fmt"

// HeaderKind identifies a message header field. The kind determines
// the mandatory D-Bus signature of its value: Path is 'o', ReplySerial
// and UnixFD are 'u', BodySignature is 'g', and everything else is
// 's'. This mirrors the reference implementation's
// `HeaderFieldKind::signature`.
type HeaderKind byte

// Header field codes, per the D-Bus specification.
const (
	HeaderPath HeaderKind = 1 + iota
	HeaderInterface
	HeaderMember
	HeaderErrorName
	HeaderReplySerial
	HeaderDestination
	HeaderSender
	HeaderBodySignature
	HeaderUnixFD
)

func (k HeaderKind) wireSignature() byte {
	switch k {
	case HeaderPath:
		return 'o'
	case HeaderReplySerial, HeaderUnixFD:
		return 'u'
	case HeaderBodySignature:
		return 'g'
	default:
		return 's'
	}
}

// String names the header kind, e.g. for log messages.
func (k HeaderKind) String() string {
	switch k {
	case HeaderPath:
		return "PATH"
	case HeaderInterface:
		return "INTERFACE"
	case HeaderMember:
		return "MEMBER"
	case HeaderErrorName:
		return "ERROR_NAME"
	case HeaderReplySerial:
		return "REPLY_SERIAL"
	case HeaderDestination:
		return "DESTINATION"
	case HeaderSender:
		return "SENDER"
	case HeaderBodySignature:
		return "SIGNATURE"
	case HeaderUnixFD:
		return "UNIX_FDS"
	default:
		return "INVALID"
	}
}

// HeaderValue is a tagged union over the two value shapes a header
// field can carry: a string (used for 's', 'o', and 'g' — the latter
// only differing in its length-prefix width on the wire) or a u32.
type HeaderValue struct {
	str string
	u32 uint32
}

// StringValue builds a string-shaped header value, used for kinds
// whose wire signature is 's', 'o', or 'g'.
func StringValue(s string) HeaderValue { return HeaderValue{str: s} }

// Uint32Value builds a u32-shaped header value, used for kinds whose
// wire signature is 'u'.
func Uint32Value(v uint32) HeaderValue { return HeaderValue{u32: v} }

// String returns the value's string form; valid when the value was
// built with StringValue.
func (v HeaderValue) String() string { return v.str }

// Uint32 returns the value's u32 form; valid when the value was built
// with Uint32Value.
func (v HeaderValue) Uint32() uint32 { return v.u32 }

// Header is one entry in a message's header field array.
type Header struct {
	Kind  HeaderKind
	Value HeaderValue
}

// pathHeader, destinationHeader, etc. are small constructors used by
// the proxy to build the four mandatory headers of a method call.
func pathHeader(path string) Header        { return Header{Kind: HeaderPath, Value: StringValue(path)} }
func destinationHeader(dest string) Header { return Header{Kind: HeaderDestination, Value: StringValue(dest)} }
func interfaceHeader(iface string) Header  { return Header{Kind: HeaderInterface, Value: StringValue(iface)} }
func memberHeader(member string) Header    { return Header{Kind: HeaderMember, Value: StringValue(member)} }
func bodySignatureHeader(sig string) Header {
	return Header{Kind: HeaderBodySignature, Value: StringValue(sig)}
}
func replySerialHeader(serial uint32) Header {
	return Header{Kind: HeaderReplySerial, Value: Uint32Value(serial)}
}

// findHeader returns the first header of the given kind, if any.
func findHeader(headers []Header, kind HeaderKind) (Header, bool) {
	for _, h := range headers {
		if h.Kind == kind {
			return h, true
		}
	}
	return Header{}, false
}

// encodeHeaders serializes headers into a fresh, self-contained
// buffer: each entry starts on an 8-byte boundary relative to the
// array's own start (the first entry needs no pre-padding since it's
// already at offset 0), and no padding follows the last entry — the
// caller (message.go) is responsible for padding the header array out
// to the message's 8-byte body boundary.
func encodeHeaders(headers []Header) []byte {
	enc := newEncoder()
	for _, h := range headers {
		enc.align(8)
		encodeHeaderField(enc, h)
	}
	return enc.bytes()
}

// encodeHeaderField encodes one "(yv)" struct: a field code byte
// followed by a variant carrying the kind's mandatory signature.
func encodeHeaderField(enc *encoder, h Header) {
	enc.byte(byte(h.Kind))
	sig := h.Kind.wireSignature()
	enc.signature(string(sig))
	switch sig {
	case 'u':
		enc.uint32(h.Value.u32)
	case 's', 'o':
		enc.rawString(h.Value.str)
	case 'g':
		enc.signature(h.Value.str)
	}
}

// decodeHeaders decodes the header field array occupying exactly
// length bytes starting at offset start in the message buffer. Each
// entry's alignment is relative to the array's own start, so this
// uses a decoder scoped to just those bytes.
func decodeHeaders(dec *decoder, start, length int) ([]Header, error) {
	arr := dec.offsetFrom(start, length)
	var headers []Header
	for !arr.done() {
		if err := arr.align(8); err != nil {
			return nil, err
		}
		if arr.done() {
			break
		}
		h, err := decodeHeaderField(arr)
		if err != nil {
			return nil, err
		}
		headers = append(headers, h)
	}
	return headers, nil
}

func decodeHeaderField(dec *decoder) (Header, error) {
	code, err := dec.byte()
	if err != nil {
		return Header{}, err
	}
	kind := HeaderKind(code)

	sig, err := dec.signature()
	if err != nil {
		return Header{}, err
	}
	if len(sig) != 1 {
		return Header{}, &IncompleteImplementation{Feature: fmt.Sprintf("multi-byte header signature %q", sig)}
	}
	want := kind.wireSignature()
	if sig[0] != want {
		return Header{}, &IncorrectMessage{Msg: fmt.Sprintf("header %s signature mismatch: expected %c, found %c", kind, want, sig[0])}
	}

	switch sig[0] {
	case 'u':
		v, err := dec.uint32()
		if err != nil {
			return Header{}, err
		}
		return Header{Kind: kind, Value: Uint32Value(v)}, nil
	case 's', 'o':
		v, err := dec.str()
		if err != nil {
			return Header{}, err
		}
		return Header{Kind: kind, Value: StringValue(v)}, nil
	case 'g':
		v, err := dec.signature()
		if err != nil {
			return Header{}, err
		}
		return Header{Kind: kind, Value: StringValue(v)}, nil
	default:
		return Header{}, &IncorrectMessage{Msg: fmt.Sprintf("unsupported header signature %q", sig)}
	}
}
