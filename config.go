package dbuswire

const (
	// DefaultReceiveBufferSize is the default size (in bytes) of the
	// scratch buffer used to drain a reply stream. A short read
	// (fewer bytes than the buffer size) ends the receive loop, so
	// smaller values mean more recv syscalls per reply but less
	// over-read past the end of a small reply.
	DefaultReceiveBufferSize = 128

	// DefaultBusAddress is used when no socket path is configured and
	// the environment variable below is unset.
	DefaultBusAddress = "/var/run/dbus/system_bus_socket"

	// BusAddressEnv names the environment variable consulted for the
	// system bus socket path when WithSocketPath isn't used.
	BusAddressEnv = "DBUS_SYSTEM_BUS_ADDRESS"
)

// Config holds the knobs of a Connection.
type Config struct {
	socketPath    string
	recvBufSize   int
	serialCheck   bool
	uid           int
	hasUID        bool
}

// Option sets up a Config.
type Option func(*Config)

// WithSocketPath overrides the Unix domain socket path to dial,
// bypassing DBUS_SYSTEM_BUS_ADDRESS and the default well-known path.
func WithSocketPath(path string) Option {
	return func(c *Config) {
		c.socketPath = path
	}
}

// WithReadBufferSize sets the size of the scratch buffer used to
// drain a reply. Bigger buffers mean fewer recv syscalls for large
// replies at the cost of a bigger per-connection allocation.
func WithReadBufferSize(size int) Option {
	return func(c *Config) {
		c.recvBufSize = size
	}
}

// WithSerialCheck when true makes Connection.call verify that the
// ReplySerial header of a method return matches the serial the call
// sent. There shouldn't be any request/reply mismatch given the
// connection is always driven serially, so this is off by default to
// skip the extra header lookup and comparison.
func WithSerialCheck(enable bool) Option {
	return func(c *Config) {
		c.serialCheck = enable
	}
}

// WithUID overrides the Unix UID presented during SASL EXTERNAL
// authentication. Defaults to the process's effective UID.
func WithUID(uid int) Option {
	return func(c *Config) {
		c.uid = uid
		c.hasUID = true
	}
}
