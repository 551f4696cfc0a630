package dbuswire

import (
	"bufio"
	"net"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAuthExternalHandshake(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	done := make(chan error, 1)
	go func() {
		done <- authExternal(client, 1000)
	}()

	r := bufio.NewReader(server)

	null := make([]byte, 1)
	_, err := server.Read(null)
	require.NoError(t, err)
	require.Equal(t, byte(0), null[0])

	line, err := r.ReadString('\n')
	require.NoError(t, err)
	require.Equal(t, "AUTH EXTERNAL 31303030\r\n", line)

	_, err = server.Write([]byte("OK bde8d2222a9e966420ee8c1a63e972b4\r\n"))
	require.NoError(t, err)

	line, err = r.ReadString('\n')
	require.NoError(t, err)
	require.Equal(t, "BEGIN\r\n", line)

	require.NoError(t, <-done)
}

func TestAuthExternalRejectsNonOKReply(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	done := make(chan error, 1)
	go func() {
		done <- authExternal(client, 1000)
	}()

	io := bufio.NewReader(server)
	_, _ = server.Read(make([]byte, 1))
	_, err := io.ReadString('\n')
	require.NoError(t, err)
	_, err = server.Write([]byte("REJECTED\r\n"))
	require.NoError(t, err)

	err = <-done
	require.Error(t, err)
	var ce *ConnectionError
	require.ErrorAs(t, err, &ce)
}

// serveOneExchange reads exactly one client message off conn and
// writes back raw, simulating a bus daemon's single reply stream to
// one call.
func serveOneExchange(t *testing.T, conn net.Conn, raw []byte) {
	t.Helper()
	buf := make([]byte, 4096)
	if _, err := conn.Read(buf); err != nil {
		t.Errorf("server read: %v", err)
		return
	}
	if _, err := conn.Write(raw); err != nil {
		t.Errorf("server write: %v", err)
	}
}

func TestConnectionCallReturnsMethodReturn(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	reply := &Message{
		Type:   MethodReturn,
		Serial: 5,
		Headers: []Header{
			bodySignatureHeader("s"),
			replySerialHeader(1),
		},
		Body: EncodeValue[String, *String]("some-id"),
	}

	go serveOneExchange(t, server, reply.Serialize())

	conn := &Connection{conn: client, recvBufSize: 4096}
	bus := conn.Proxy("org.freedesktop.DBus", "/org/freedesktop/DBus")

	got, err := Call[Empty, *Empty, String, *String](bus, "org.freedesktop.DBus", "GetId", nil)
	require.NoError(t, err)
	require.Equal(t, String("some-id"), got)
}

func TestConnectionCallTranslatesErrorReply(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	errMsg := &Message{
		Type:   MessageError,
		Serial: 6,
		Headers: []Header{
			bodySignatureHeader("s"),
		},
		Body: EncodeValue[String, *String]("oops"),
	}
	go serveOneExchange(t, server, errMsg.Serialize())

	conn := &Connection{conn: client, recvBufSize: 4096}
	bus := conn.Proxy("org.freedesktop.DBus", "/org/freedesktop/DBus")

	_, err := Call[Empty, *Empty, String, *String](bus, "org.freedesktop.DBus", "GetId", nil)
	require.Error(t, err)
	require.EqualError(t, err, "dbuswire: incorrect message: oops")
}

func TestConnectionCallSignatureMismatch(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	reply := &Message{
		Type:   MethodReturn,
		Serial: 7,
		Headers: []Header{
			bodySignatureHeader("u"),
		},
		Body: EncodeValue[Uint32, *Uint32](42),
	}
	go serveOneExchange(t, server, reply.Serialize())

	conn := &Connection{conn: client, recvBufSize: 4096}
	bus := conn.Proxy("org.freedesktop.DBus", "/org/freedesktop/DBus")

	_, err := Call[Empty, *Empty, String, *String](bus, "org.freedesktop.DBus", "GetId", nil)
	require.Error(t, err)
	require.True(t, strings.Contains(err.Error(), "reply signature mismatch: expected s, found u"))
}

func TestConnectionCallSplitsConcatenatedReplies(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	signal := &Message{Type: Signal, Serial: 1}
	ret := &Message{
		Type:    MethodReturn,
		Serial:  2,
		Headers: []Header{bodySignatureHeader("s")},
		Body:    EncodeValue[String, *String]("ok"),
	}
	stream := append(signal.Serialize(), ret.Serialize()...)
	go serveOneExchange(t, server, stream)

	conn := &Connection{conn: client, recvBufSize: 4096}
	bus := conn.Proxy("org.freedesktop.DBus", "/org/freedesktop/DBus")

	got, err := Call[Empty, *Empty, String, *String](bus, "org.freedesktop.DBus", "GetId", nil)
	require.NoError(t, err)
	require.Equal(t, String("ok"), got)
}

func TestConnectionCallRejectsConcurrentUse(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	conn := &Connection{conn: client, recvBufSize: 4096}
	conn.mu.Lock()
	defer conn.mu.Unlock()

	_, err := conn.call(MethodCall, nil, nil)
	require.Error(t, err)
	var ce *ConnectionError
	require.ErrorAs(t, err, &ce)
}
