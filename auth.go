package dbuswire

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"io"
	"strconv"
)

/*
authExternal performs EXTERNAL authentication,
see https://dbus.freedesktop.org/doc/dbus-specification.html#auth-protocol.
The protocol is line-based, where each line ends with \r\n.

	client: AUTH EXTERNAL 31303030
	server: OK bde8d2222a9e966420ee8c1a63e972b4
	client: BEGIN

The client is authenticating as Unix uid 1000 in this example, where
31303030 is the ASCII decimal digits of 1000 ("1000"), each encoded as
its two-hex-digit ASCII byte value.
*/
func authExternal(rw io.ReadWriter, uid int) error {
	if _, err := rw.Write([]byte{0}); err != nil {
		return &ConnectionError{Msg: "send null byte", Err: err}
	}

	var buf bytes.Buffer
	buf.WriteString("AUTH EXTERNAL ")
	buf.WriteString(hex.EncodeToString([]byte(strconv.Itoa(uid))))
	buf.WriteString("\r\n")
	if _, err := rw.Write(buf.Bytes()); err != nil {
		return &ConnectionError{Msg: "send AUTH EXTERNAL", Err: err}
	}

	reply := make([]byte, 64)
	n, err := rw.Read(reply)
	if err != nil {
		return &ConnectionError{Msg: "read AUTH reply", Err: err}
	}
	reply = bytes.ReplaceAll(reply[:n], []byte{0}, nil)

	if !bytes.HasPrefix(reply, []byte("OK")) {
		return &ConnectionError{Msg: fmt.Sprintf("Authentication failed: %s", reply)}
	}

	if _, err := rw.Write([]byte("BEGIN\r\n")); err != nil {
		return &ConnectionError{Msg: "send BEGIN", Err: err}
	}
	return nil
}
