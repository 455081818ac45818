package irctest

import (
	"encoding"
	"errors"
	"io"
	"log"
	"strings"
	"sync"

	"github.com/Travis-Britz/ircwire"
)

// NewServer creates a new mock irc server that implements io.ReadWriteCloser.
// Don't forget to close.
func NewServer() *Server {
	s := &Server{}
	s.sendReader, s.sendWriter = io.Pipe()
	s.recvReader, s.recvWriter = io.Pipe()

	s.recv = make(chan []byte, 1)

	// should exit when Close() is called
	go s.read()
	go s.write()
	return s
}

type Server struct {
	Handler ircwire.Handler

	rs   sync.Once
	recv chan []byte

	recvReader *io.PipeReader
	recvWriter *io.PipeWriter

	sendReader *io.PipeReader
	sendWriter *io.PipeWriter
}

// Read is how the client reads lines from the server
func (s *Server) Read(p []byte) (int, error) {
	return s.sendReader.Read(p)
}

// Write is how a client sends messages to the server
func (s *Server) Write(p []byte) (int, error) {
	// the client's framing layer reuses its write buffer, so keep a copy
	b := make([]byte, len(p))
	copy(b, p)
	s.recv <- b
	return len(p), nil
}

func (s *Server) Close() error {
	_ = s.recvWriter.Close()
	_ = s.sendWriter.Close()
	s.rs.Do(func() {
		close(s.recv)
	})
	return nil
}

// WriteString sends messages to the client.
func (s *Server) WriteString(str string) {
	if !strings.HasSuffix(str, "\r\n") {
		str = str + "\r\n"
	}
	if _, err := s.sendWriter.Write([]byte(str)); err != nil {
		log.Println("mock server write error:", err)
	}
}

// WriteMessage sends messages from the server to the client
func (s *Server) WriteMessage(m encoding.TextMarshaler) {
	b, err := m.MarshalText()
	if err != nil {
		log.Println("marshaler:", err)
		return
	}
	if _, err := s.sendWriter.Write(b); err != nil {
		log.Println("mock server write error:", err)
	}
}

func (s *Server) read() {
	r := ircwire.NewZeroCopyReader(s.recvReader)
	for {
		v, err := r.Next()
		if err != nil {
			var parseErr *ircwire.ParseError
			if errors.As(err, &parseErr) || errors.Is(err, ircwire.ErrOversizeLine) {
				log.Println("mock server parse error:", err)
				continue
			}
			return
		}
		if s.Handler == nil {
			continue
		}
		s.Handler.SpeakIRC(s, v.Promote())
	}
}

func (s *Server) write() {
	for b := range s.recv {
		if _, err := s.recvWriter.Write(b); err != nil {
			log.Println("server mock write error:", err)
		}
	}
}
