// Package transport carries tag values between PLC processes. Each PLC runs
// a request/reply server publishing its owned tags, a one-round-trip client
// for reading peer tags, and a periodic snapshot publisher peers or a SCADA
// collector can subscribe to.
//
// Socket creation goes through SocketFactory so the messaging layer is
// swappable: the default factory uses NNG/mangos, and a ZeroMQ factory is
// available behind the "zmq" build tag.
package transport

import "time"

// Socket is the minimal send/receive surface the tag protocol needs.
type Socket interface {
	Send(data []byte) error
	Recv() ([]byte, error)
	Close() error
	SetRecvDeadline(d time.Duration) error
	SetSendDeadline(d time.Duration) error
}

// ListenSocket is a socket that binds to a local address.
type ListenSocket interface {
	Socket
	Listen(addr string) error
}

// DialSocket is a socket that connects to a remote address.
type DialSocket interface {
	Socket
	Dial(addr string) error
}

// SubscribeSocket is a dialing socket that filters by topic.
type SubscribeSocket interface {
	DialSocket
	Subscribe(topic []byte) error
}

// SocketFactory creates the sockets each protocol role needs.
type SocketFactory interface {
	// NewRepSocket creates the reply side of the tag read protocol
	NewRepSocket() (ListenSocket, error)
	// NewReqSocket creates the request side of the tag read protocol
	NewReqSocket() (DialSocket, error)
	// NewPubSocket creates the snapshot broadcast side
	NewPubSocket() (ListenSocket, error)
	// NewSubSocket creates the snapshot listener side
	NewSubSocket() (SubscribeSocket, error)
}
