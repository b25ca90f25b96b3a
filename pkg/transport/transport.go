// Package transport carries newline-terminated messages between the
// controller and the operator application. Each line is one complete
// JSON object; framing is the transport's only concern, content belongs
// to pkg/protocol.
package transport

import "errors"

// ErrBufferFull is returned when the outbound queue is saturated.
// Callers degrade by dropping the message, never by blocking.
var ErrBufferFull = errors.New("transport buffer full")

// LineWriter sends one framed message. Implementations must not block
// the caller on a slow link.
type LineWriter interface {
	WriteLine(line []byte) error
}

// Transport is a bidirectional line-framed link.
type Transport interface {
	LineWriter

	// Lines returns the channel of received frames. The channel is
	// closed when the link shuts down.
	Lines() <-chan []byte

	// Close shuts the link down.
	Close() error
}
