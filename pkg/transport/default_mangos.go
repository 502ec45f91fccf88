//go:build !zmq
// +build !zmq

package transport

// DefaultFactory returns the socket factory selected at build time.
func DefaultFactory() SocketFactory {
	return NewMangosSocketFactory()
}
