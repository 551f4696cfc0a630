package dbuswire

import (
	"fmt"
	"net"
	"os"
	"sync"
)

// Connect dials the bus socket, performs SASL EXTERNAL authentication,
// and issues the mandatory Hello call that must be the first traffic
// on any D-Bus connection. The socket path is, in order of
// precedence: WithSocketPath, the DBUS_SYSTEM_BUS_ADDRESS environment
// variable, then DefaultBusAddress.
func Connect(opts ...Option) (*Connection, error) {
	conf := Config{
		recvBufSize: DefaultReceiveBufferSize,
	}
	for _, opt := range opts {
		opt(&conf)
	}

	path := conf.socketPath
	if path == "" {
		path = os.Getenv(BusAddressEnv)
	}
	if path == "" {
		path = DefaultBusAddress
	}

	conn, err := net.DialUnix("unix", nil, &net.UnixAddr{Name: path, Net: "unix"})
	if err != nil {
		return nil, &ConnectionError{Msg: fmt.Sprintf("dial %s", path), Err: err}
	}

	uid := conf.uid
	if !conf.hasUID {
		uid = os.Geteuid()
	}
	if err := authExternal(conn, uid); err != nil {
		conn.Close()
		return nil, err
	}

	c := &Connection{
		conn:        conn,
		recvBufSize: conf.recvBufSize,
		serialCheck: conf.serialCheck,
	}

	// Any method call before Hello invalidates the connection, so it
	// must be the very next message after BEGIN. The reply carries
	// the connection's unique bus name, which no caller of this
	// package needs, so it's decoded as Empty to skip the body
	// signature check entirely.
	bus := c.Proxy("org.freedesktop.DBus", "/org/freedesktop/DBus")
	if _, err := Call[Empty, *Empty, Empty, *Empty](bus, "org.freedesktop.DBus", "Hello", nil); err != nil {
		conn.Close()
		return nil, &ConnectionError{Msg: "Hello handshake failed", Err: err}
	}

	return c, nil
}

// Connection owns a D-Bus socket and drives the request/response
// cycle. A Connection must not be used concurrently: the protocol is
// a strict ping-pong and there is no demultiplexing of replies by
// serial.
type Connection struct {
	conn        net.Conn
	recvBufSize int
	serialCheck bool

	// mu guards serial and the read/write cycle below, and its
	// TryLock is used purely as a misuse detector — a caller driving
	// this Connection from two goroutines at once gets an error
	// instead of interleaved reads, rather than any real concurrency
	// support.
	mu     sync.Mutex
	serial uint32
}

// Close closes the underlying socket. The Connection must not be used
// afterward.
func (c *Connection) Close() error {
	return c.conn.Close()
}

// Proxy binds a destination bus name and object path for subsequent
// typed method calls.
func (c *Connection) Proxy(destination, path string) *Proxy {
	return &Proxy{conn: c, destination: destination, path: path}
}

func (c *Connection) nextSerial() uint32 {
	c.serial++
	return c.serial
}

// call sends one message and returns every message the server sent
// back in response, in the order received. The caller must not
// interleave calls; a concurrent call observes ConnectionError instead
// of a corrupted read.
func (c *Connection) call(mtype MessageType, headers []Header, body []byte) ([]*Message, error) {
	if !c.mu.TryLock() {
		return nil, &ConnectionError{Msg: "connection must be used serially"}
	}
	defer c.mu.Unlock()

	serial := c.nextSerial()
	msg := &Message{Type: mtype, Serial: serial, Headers: headers, Body: body}
	if _, err := c.conn.Write(msg.Serialize()); err != nil {
		return nil, &ConnectionError{Msg: "write message", Err: err}
	}

	raw, err := c.receive()
	if err != nil {
		return nil, err
	}
	replies, err := splitMessages(raw)
	if err != nil {
		return nil, err
	}

	if c.serialCheck {
		if err := verifySerial(replies, serial); err != nil {
			return nil, err
		}
	}

	return replies, nil
}

// receive drains the socket into a growing buffer, reading in chunks
// of recvBufSize, until a read reports fewer bytes than the buffer
// size. This relies on each reply frame being written atomically at
// the kernel level by the peer, which holds for a Unix stream socket.
func (c *Connection) receive() ([]byte, error) {
	var out []byte
	buf := make([]byte, c.recvBufSize)
	for {
		n, err := c.conn.Read(buf)
		if err != nil {
			return nil, &ConnectionError{Msg: "read reply", Err: err}
		}
		out = append(out, buf[:n]...)
		if n < len(buf) {
			break
		}
	}
	return out, nil
}

// verifySerial checks that any MethodReturn among replies carries a
// ReplySerial header matching want.
func verifySerial(replies []*Message, want uint32) error {
	for _, r := range replies {
		if r.Type != MethodReturn {
			continue
		}
		rs, ok := findHeader(r.Headers, HeaderReplySerial)
		if !ok {
			continue
		}
		if rs.Value.Uint32() != want {
			return &IncorrectMessage{Msg: fmt.Sprintf("message reply serial mismatch: want %d got %d", want, rs.Value.Uint32())}
		}
	}
	return nil
}
