package ircws_test

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Travis-Britz/ircwire/ircws"
)

// frameRecord is one frame captured by the test server.
type frameRecord struct {
	messageType int
	data        string
}

// newEchoServer upgrades incoming connections, records every frame it
// receives on frames, and echoes each text frame back unchanged.
func newEchoServer(t *testing.T, frames chan<- frameRecord) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{
		Subprotocols: []string{ircws.Subprotocol},
	}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer conn.Close()
		for {
			mt, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			select {
			case frames <- frameRecord{mt, string(data)}:
			default:
			}
			if mt == websocket.TextMessage {
				if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
					return
				}
			}
		}
	}))
}

func wsURL(s *httptest.Server) string {
	return "ws" + strings.TrimPrefix(s.URL, "http")
}

func TestDial(t *testing.T) {
	frames := make(chan frameRecord, 16)
	server := newEchoServer(t, frames)
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, err := ircws.Dial(ctx, wsURL(server), nil)
	require.NoError(t, err)
	defer conn.Close()

	_, err = conn.Write([]byte("PING :12345\r\n"))
	require.NoError(t, err)

	frame := <-frames
	assert.Equal(t, websocket.TextMessage, frame.messageType)
	assert.Equal(t, "PING :12345", frame.data, "the frame carries the line without its CRLF")

	line, err := bufio.NewReader(conn).ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "PING :12345\r\n", line, "reads gain an implicit CRLF per frame")
}

func TestConnWriteOneFramePerLine(t *testing.T) {
	frames := make(chan frameRecord, 16)
	server := newEchoServer(t, frames)
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, err := ircws.Dial(ctx, wsURL(server), nil)
	require.NoError(t, err)
	defer conn.Close()

	// two lines in one Write become two frames
	_, err = conn.Write([]byte("NICK HelloBot\r\nUSER HelloBot 0 * :Hello Bot\r\n"))
	require.NoError(t, err)

	assert.Equal(t, "NICK HelloBot", (<-frames).data)
	assert.Equal(t, "USER HelloBot 0 * :Hello Bot", (<-frames).data)
}

func TestConnWriteBuffersPartialLines(t *testing.T) {
	frames := make(chan frameRecord, 16)
	server := newEchoServer(t, frames)
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, err := ircws.Dial(ctx, wsURL(server), nil)
	require.NoError(t, err)
	defer conn.Close()

	// a line split across writes is held until its terminator arrives
	_, err = conn.Write([]byte("PRIVMSG #chat :split "))
	require.NoError(t, err)
	select {
	case frame := <-frames:
		t.Fatalf("a partial line was framed early: %q", frame.data)
	case <-time.After(50 * time.Millisecond):
	}

	_, err = conn.Write([]byte("across writes\r\n"))
	require.NoError(t, err)
	assert.Equal(t, "PRIVMSG #chat :split across writes", (<-frames).data)
}

func TestConnReadSpansSmallBuffers(t *testing.T) {
	frames := make(chan frameRecord, 16)
	server := newEchoServer(t, frames)
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, err := ircws.Dial(ctx, wsURL(server), nil)
	require.NoError(t, err)
	defer conn.Close()

	_, err = conn.Write([]byte("PING :abcdefgh\r\n"))
	require.NoError(t, err)
	<-frames

	// draining the echoed frame byte by byte still yields the whole line
	var got []byte
	buf := make([]byte, 1)
	for {
		n, err := conn.Read(buf)
		require.NoError(t, err)
		got = append(got, buf[:n]...)
		if len(got) >= 2 && string(got[len(got)-2:]) == "\r\n" {
			break
		}
	}
	assert.Equal(t, "PING :abcdefgh\r\n", string(got))
}

func TestDialOptions(t *testing.T) {
	headers := make(chan string, 1)
	upgrader := websocket.Upgrader{
		Subprotocols: []string{ircws.Subprotocol},
		// the Origin sent below is foreign to the test server
		CheckOrigin: func(r *http.Request) bool { return true },
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case headers <- r.Header.Get("Origin"):
		default:
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	header := http.Header{}
	header.Set("Origin", "https://webchat.example.com")
	conn, err := ircws.Dial(ctx, wsURL(server), nil, &ircws.Options{
		HandshakeTimeout: 2 * time.Second,
		Header:           header,
	})
	require.NoError(t, err)
	defer conn.Close()

	assert.Equal(t, "https://webchat.example.com", <-headers)
}
