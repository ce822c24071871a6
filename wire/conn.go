// SPDX-License-Identifier: MIT

package wire

import (
	"bufio"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"
)

// maxFrame bounds a single frame. An Init for a few hundred cities is well
// below this.
const maxFrame = 64 << 20

// Conn is a message stream over a net.Conn.
//
// Send may be called from several goroutines; Receive must be called from a
// single reader goroutine.
type Conn struct {
	raw net.Conn
	r   *bufio.Reader

	mu sync.Mutex // serialises writes
}

// NewConn wraps c.
func NewConn(c net.Conn) *Conn {
	return &Conn{raw: c, r: bufio.NewReaderSize(c, 64<<10)}
}

// Dial connects to addr over TCP.
func Dial(addr string) (*Conn, error) {
	c, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, err
	}

	return NewConn(c), nil
}

// Send writes m as one newline-terminated frame.
func (c *Conn) Send(m Message) error {
	frame, err := Marshal(m)
	if err != nil {
		return err
	}
	frame = append(frame, '\n')

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, err = c.raw.Write(frame); err != nil {
		return classify(err)
	}

	return nil
}

// Receive blocks for the next message.
func (c *Conn) Receive() (Message, error) {
	var (
		line []byte
		part []byte
		err  error
	)
	for {
		part, err = c.r.ReadSlice('\n')
		line = append(line, part...)
		if len(line) > maxFrame {
			return nil, fmt.Errorf("%w: frame exceeds %d bytes", ErrProtocolViolation, maxFrame)
		}
		if !errors.Is(err, bufio.ErrBufferFull) {
			break
		}
	}
	if err != nil {
		return nil, classify(err)
	}

	return Unmarshal(line[:len(line)-1])
}

// Close closes the underlying connection.
func (c *Conn) Close() error { return c.raw.Close() }

// CloseWrite shuts down the sending side so the peer reads EOF after the
// last frame, while frames from the peer can still be received. Connections
// without half-close support are closed outright.
func (c *Conn) CloseWrite() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if hc, ok := c.raw.(interface{ CloseWrite() error }); ok {
		return hc.CloseWrite()
	}

	return c.raw.Close()
}

// SetReadDeadline bounds the next Receive; the zero time removes the bound.
func (c *Conn) SetReadDeadline(t time.Time) error { return c.raw.SetReadDeadline(t) }

// RemoteAddr returns the peer address.
func (c *Conn) RemoteAddr() net.Addr { return c.raw.RemoteAddr() }

// classify wraps a transport error. Any read or write failure means the
// stream is unusable, so all of them become ErrChannelClosed; EOF and resets
// are the common cases.
func classify(err error) error {
	return fmt.Errorf("%w: %w", ErrChannelClosed, err)
}
