package dbuswire

import (
	"encoding/binary"
	"fmt"
)

// MessageType is the D-Bus message type tag, the second byte of the
// preamble.
type MessageType byte

const (
	// MethodCall may prompt a reply. It's the only type this package
	// produces.
	MethodCall MessageType = 1 + iota
	// MethodReturn carries a method call's successful return data.
	MethodReturn
	// MessageError is an error reply; its body, if present, is a
	// human-readable string.
	MessageError
	// Signal is a signal emission. This package parses it but never
	// acts on it — signal dispatch is out of scope.
	Signal
)

const (
	byteOrderLittle byte = 'l'
	protocolVersion byte = 1
	// messagePrologueSize is the length of the fixed part of a
	// message: endian, type, flags, version, body length, serial,
	// header array length.
	messagePrologueSize = 16
)

// Message is a decoded or to-be-encoded D-Bus message: little-endian
// only, flags always 0, protocol version always 1, as this package
// never needs anything else.
type Message struct {
	Type    MessageType
	Serial  uint32
	Headers []Header
	Body    []byte
}

// Serialize encodes m to its wire form: preamble, body length,
// serial, header array length, the header array itself, padding to
// an 8-byte boundary (relative to the message start), then the body
// with no trailing padding.
func (m *Message) Serialize() []byte {
	headerBytes := encodeHeaders(m.Headers)

	enc := newEncoder()
	enc.byte(byteOrderLittle)
	enc.byte(byte(m.Type))
	enc.byte(0) // flags
	enc.byte(protocolVersion)
	enc.uint32(uint32(len(m.Body)))
	enc.uint32(m.Serial)
	enc.uint32(uint32(len(headerBytes)))
	enc.buf = append(enc.buf, headerBytes...)
	enc.align(8)
	enc.buf = append(enc.buf, m.Body...)
	return enc.bytes()
}

// DeserializeMessage decodes one message starting at dec's current
// offset and leaves the offset pointing just past it, so a caller can
// call it again on the same decoder to split a buffer holding several
// concatenated messages.
func DeserializeMessage(dec *decoder) (*Message, error) {
	messageStart := dec.offset
	prologue, err := dec.readN(messagePrologueSize)
	if err != nil {
		return nil, err
	}
	if prologue[0] != byteOrderLittle {
		return nil, &IncompleteImplementation{Feature: "big endian unsupported"}
	}

	var mtype MessageType
	switch prologue[1] {
	case 1:
		mtype = MethodCall
	case 2:
		mtype = MethodReturn
	case 3:
		mtype = MessageError
	case 4:
		mtype = Signal
	default:
		return nil, &IncorrectMessage{Msg: fmt.Sprintf("invalid message type %d", prologue[1])}
	}

	version := prologue[3]
	if version != protocolVersion {
		return nil, &IncompleteImplementation{Feature: fmt.Sprintf("protocol version %d unsupported", version)}
	}

	bodyLen := binary.LittleEndian.Uint32(prologue[4:8])
	serial := binary.LittleEndian.Uint32(prologue[8:12])
	hdrLen := binary.LittleEndian.Uint32(prologue[12:16])

	hdrStart := dec.offset
	if hdrStart+int(hdrLen) > len(dec.buf) {
		return nil, &IncorrectMessage{Msg: "truncated message: header array length exceeds buffer"}
	}
	headers, err := decodeHeaders(dec, hdrStart, int(hdrLen))
	if err != nil {
		return nil, err
	}
	dec.offset = hdrStart + int(hdrLen)

	// Padding to the body boundary is 8-byte aligned relative to this
	// message's own start, not to the absolute position within a
	// buffer that may hold several concatenated messages — so the
	// outer decoder's own (absolute) align can't be used here.
	next, _ := nextOffset(dec.offset-messageStart, 8)
	dec.offset = messageStart + next
	if dec.offset > len(dec.buf) {
		return nil, &IncorrectMessage{Msg: "truncated message: ran out of bytes while aligning body"}
	}

	body, err := dec.readN(int(bodyLen))
	if err != nil {
		return nil, err
	}

	return &Message{
		Type:    mtype,
		Serial:  serial,
		Headers: headers,
		Body:    body,
	}, nil
}

// splitMessages decodes every message concatenated in buf, in order.
func splitMessages(buf []byte) ([]*Message, error) {
	dec := newDecoder(buf)
	var messages []*Message
	for !dec.done() {
		msg, err := DeserializeMessage(dec)
		if err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	return messages, nil
}

