/*
Package ircws carries IRC lines over WebSocket text frames.

Some networks (and most web-embedded clients) speak IRC over WebSocket
instead of a raw TCP stream. The framing rules differ from the socket
protocol: each text frame holds exactly one IRC line with no trailing
CRLF. Conn translates between the two so the rest of a client never
has to know which carrier it is on.

	wsconn, err := ircws.Dial(ctx, "wss://irc.example.com/webirc", nil)
	// wsconn satisfies io.ReadWriteCloser and net.Conn,
	// so it plugs straight into a client DialFn.
*/
package ircws

import (
	"bytes"
	"context"
	"crypto/tls"
	"net"
	"net/http"
	"time"

	"github.com/go-log/log"
	"github.com/gorilla/websocket"
)

// Subprotocol is the WebSocket subprotocol name registered for IRC.
const Subprotocol = "text.ircv3.net"

// Options describes the options for the WebSocket handshake.
type Options struct {
	ReadBufferSize    int
	WriteBufferSize   int
	HandshakeTimeout  time.Duration
	EnableCompression bool

	// Header is sent with the handshake request,
	// e.g. Origin or Authorization.
	Header http.Header
}

// Dial connects to a WebSocket IRC endpoint such as
// "wss://irc.example.com/webirc". The returned Conn reads and writes
// CRLF-delimited IRC lines while speaking one-line-per-frame on the wire.
func Dial(ctx context.Context, url string, tlsConfig *tls.Config, options ...*Options) (*Conn, error) {
	opts := &Options{}
	if len(options) > 0 && options[0] != nil {
		opts = options[0]
	}
	dialer := websocket.Dialer{
		ReadBufferSize:    opts.ReadBufferSize,
		WriteBufferSize:   opts.WriteBufferSize,
		TLSClientConfig:   tlsConfig,
		HandshakeTimeout:  opts.HandshakeTimeout,
		EnableCompression: opts.EnableCompression,
		Subprotocols:      []string{Subprotocol},
	}
	c, resp, err := dialer.DialContext(ctx, url, opts.Header)
	if err != nil {
		return nil, err
	}
	resp.Body.Close()
	return NewConn(c), nil
}

// NewConn wraps an established WebSocket connection. It is useful on
// the server side after an Upgrade, or when the handshake needs options
// Dial doesn't expose.
func NewConn(conn *websocket.Conn) *Conn {
	return &Conn{conn: conn}
}

// Conn adapts a WebSocket connection to the byte-stream contract that
// line-framed IRC readers and writers expect.
//
// Reads return each incoming text frame with "\r\n" appended, so a
// line-delimited reader sees a normal IRC stream. Writes are collected
// until a full CRLF-terminated line is present, then sent as one text
// frame with the line ending stripped. Bytes after the last CRLF of a
// Write are held for the next call, which keeps the adapter correct
// even when a buffered writer flushes mid-line.
type Conn struct {
	conn *websocket.Conn
	rb   []byte
	wb   []byte
}

func (c *Conn) Read(b []byte) (n int, err error) {
	if len(c.rb) == 0 {
		var data []byte
		for {
			var mt int
			mt, data, err = c.conn.ReadMessage()
			if err != nil {
				return 0, err
			}
			if mt == websocket.TextMessage || mt == websocket.BinaryMessage {
				break
			}
		}
		c.rb = append(data, '\r', '\n')
	}
	n = copy(b, c.rb)
	c.rb = c.rb[n:]
	return n, nil
}

func (c *Conn) Write(b []byte) (n int, err error) {
	c.wb = append(c.wb, b...)
	for {
		i := bytes.IndexByte(c.wb, '\n')
		if i < 0 {
			return len(b), nil
		}
		line := c.wb[:i]
		if len(line) > 0 && line[len(line)-1] == '\r' {
			line = line[:len(line)-1]
		}
		if err := c.conn.WriteMessage(websocket.TextMessage, line); err != nil {
			return len(b), err
		}
		c.wb = c.wb[i+1:]
	}
}

// Close sends a close frame before tearing down the underlying
// connection, as the WebSocket protocol expects.
func (c *Conn) Close() error {
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	deadline := time.Now().Add(5 * time.Second)
	if err := c.conn.WriteControl(websocket.CloseMessage, msg, deadline); err != nil {
		log.Logf("[ircws] close frame: %v", err)
	}
	return c.conn.Close()
}

func (c *Conn) LocalAddr() net.Addr {
	return c.conn.LocalAddr()
}

func (c *Conn) RemoteAddr() net.Addr {
	return c.conn.RemoteAddr()
}

func (c *Conn) SetDeadline(t time.Time) error {
	if err := c.SetReadDeadline(t); err != nil {
		return err
	}
	return c.SetWriteDeadline(t)
}

func (c *Conn) SetReadDeadline(t time.Time) error {
	return c.conn.SetReadDeadline(t)
}

func (c *Conn) SetWriteDeadline(t time.Time) error {
	return c.conn.SetWriteDeadline(t)
}
