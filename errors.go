package dbuswire

import "fmt"

// ConnectionError reports a socket-level failure or an authentication
// refusal. A Connection that produced one must not be reused.
type ConnectionError struct {
	Msg string
	Err error
}

func (e *ConnectionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("dbuswire: connection error: %s: %v", e.Msg, e.Err)
	}
	return fmt.Sprintf("dbuswire: connection error: %s", e.Msg)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// IncorrectMessage reports that the peer sent something the decoder
// cannot trust: a bad message-type tag, a header whose signature
// disagrees with its declared kind, a reply body signature that
// doesn't match the caller's expected output type, or a Method call
// that came back as a D-Bus Error reply. The call fails; the
// connection may still be usable, but callers typically discard it.
type IncorrectMessage struct {
	Msg string
}

func (e *IncorrectMessage) Error() string {
	return fmt.Sprintf("dbuswire: incorrect message: %s", e.Msg)
}

// IncompleteImplementation reports that the peer sent a feature this
// package does not support (big-endian framing, a multi-byte header
// signature, a body without a BodySignature header when one was
// required). It is permanent for that message; the connection's state
// is otherwise intact.
type IncompleteImplementation struct {
	Feature string
}

func (e *IncompleteImplementation) Error() string {
	return fmt.Sprintf("dbuswire: not implemented: %s", e.Feature)
}
