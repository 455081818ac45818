package ircwire

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
)

// A Handler responds to an IRC message.
//
// An IRC message may be any type, including PRIVMSG, NOTICE, JOIN, Numerics,
// etc. It is up to the calling function to map incoming messages/commands
// to the appropriate handler.
//
// Handlers should avoid modifying the provided Message.
type Handler interface {
	SpeakIRC(MessageWriter, *Message)
}

// The HandlerFunc type is an adapter to allow the usage of ordinary functions
// as handlers, following the same pattern as http.HandlerFunc.
type HandlerFunc func(MessageWriter, *Message)

// SpeakIRC calls f(w, m).
func (f HandlerFunc) SpeakIRC(w MessageWriter, m *Message) {
	f(w, m)
}

type middleware func(Handler) Handler

func wrap(h Handler, mw ...middleware) Handler {
	if len(mw) < 1 {
		return h
	}

	wrapped := h
	// loop in reverse to preserve middleware order
	for i := len(mw) - 1; i >= 0; i-- {
		wrapped = mw[i](wrapped)
	}

	return wrapped
}

// ctcpHandler looks for incoming PRIVMSG or NOTICE messages that match the CTCP protocol,
// and if found, modifies the Message's Command field and strips CTCP formatting from
// the message parameters before passing the message to the next Handler.
//
// ctcpHandler MUST be called before any handlers or middleware which need to
// differentiate between regular PRIVMSG/NOTICE and CTCP messages.
func ctcpHandler(next Handler) Handler {
	return HandlerFunc(func(mw MessageWriter, m *Message) {
		if !m.Command.is(CmdPrivmsg) && !m.Command.is(CmdNotice) {
			next.SpeakIRC(mw, m)
			return
		}
		ctcp, ok := DecodeCTCP(m.Params.Get(2))
		if !ok {
			next.SpeakIRC(mw, m)
			return
		}
		switch m.Command {
		case CmdPrivmsg:
			m.Command = NewCTCPCmd(ctcp.Command)
		case CmdNotice:
			m.Command = NewCTCPReplyCmd(ctcp.Command)
		}
		m.Params[1] = ctcp.Params
		next.SpeakIRC(mw, m)
	})
}

// pingMiddleware intercepts server PING messages and replies with the appropriate PONG.
func pingMiddleware(next Handler) Handler {
	return HandlerFunc(func(mw MessageWriter, m *Message) {
		if !m.Command.is(CmdPing) {
			next.SpeakIRC(mw, m)
			return
		}
		mw.WriteMessage(Pong(m.Params.Get(1)))
	})
}

type pingHandler struct {
	sync.Mutex
	expecting map[string]chan bool
	timeout   func()
}

func (ph *pingHandler) ping(ctx context.Context, mw MessageWriter, m string) {
	ph.Lock()
	defer ph.Unlock()

	if ph.expecting == nil {
		ph.expecting = make(map[string]chan bool)
	}

	// if we're already expecting a reply for the given ping then we skip sending another
	// in order to simplify the logic. having duplicate in-flight pings would not
	// be of any benefit.
	if _, exists := ph.expecting[m]; exists {
		return
	}

	ret := make(chan bool, 1)
	ph.expecting[m] = ret
	go func() {
		// we know this is the only goroutine waiting for a reply to m, so when it exits
		// for any reason we must remove the reference.
		defer func() {
			ph.Lock()
			defer ph.Unlock()
			delete(ph.expecting, m)
		}()

		select {
		case <-ret:
		case <-ctx.Done():
		case <-time.After(10 * time.Second):
			ph.timeout()
		}
	}()
	mw.WriteMessage(Ping(m))
}

func (ph *pingHandler) pongHandler(next Handler) Handler {
	return HandlerFunc(func(mw MessageWriter, m *Message) {
		if !m.Command.is(CmdPong) {
			next.SpeakIRC(mw, m)
			return
		}

		ph.Lock()
		defer ph.Unlock()

		reply := m.Params.Get(2)

		// if we were not expecting the reply, pass it on
		if _, expected := ph.expecting[reply]; !expected {
			next.SpeakIRC(mw, m)
			return
		}

		// if we were expecting the reply, intercept it and don't pass it on
		select {
		case ph.expecting[reply] <- true:
		default:
		}
	})
}

// saslAuthenticator drives one SASL exchange during capability
// negotiation. The capNegotiator consults it before ending negotiation.
type saslAuthenticator struct {
	mechanism SASLMechanism
	payload   string
	log       func(error)

	requested bool
	done      bool
}

// capNegotiator listens for replies to CAP LS and completes capability negotiation.
//
// "CAP * LS * :extended-join chghost cap-notify userhost-in-names multi-prefix"
// "CAP * LS :extended-join chghost cap-notify userhost-in-names multi-prefix sasl=PLAIN,EXTERNAL"
// "CAP <nick> ACK :sasl"
// "CAP <nick> LIST :extended-join chghost cap-notify userhost-in-names multi-prefix"
// https://ircv3.net/specs/core/capability-negotiation.html
// https://ircv3.net/specs/extensions/sasl-3.2
type capNegotiator struct {
	sasl *saslAuthenticator
}

func (cn *capNegotiator) middleware(next Handler) Handler {
	return HandlerFunc(func(mw MessageWriter, m *Message) {
		// the next handler is always called first so that other middleware which request capabilities
		// will write their message before we complete negotiation.
		next.SpeakIRC(mw, m)

		switch {
		case m.Command.is(CmdCap):
			cn.handleCap(mw, m)
		case m.Command.is(CmdAuthenticate):
			cn.handleChallenge(mw, m)
		case m.Command == RplSaslSuccess:
			if cn.negotiating() {
				cn.sasl.done = true
				mw.WriteMessage(CapEnd())
			}
		case m.Command == RplErrNickLocked, m.Command == RplErrSaslFail,
			m.Command == RplErrSaslTooLong, m.Command == RplErrSaslAborted,
			m.Command == RplErrSaslAlready:
			if cn.negotiating() {
				cn.sasl.done = true
				cn.sasl.log(fmt.Errorf("sasl authentication failed: %s %s", m.Command, strings.Join(m.Params, " ")))
				mw.WriteMessage(CapEnd())
			}
		case m.Command == RplSaslMechs:
			if cn.negotiating() {
				cn.sasl.log(fmt.Errorf("sasl mechanism %s not accepted; server offers: %s", cn.sasl.mechanism, m.Params.Get(2)))
			}
		}
	})
}

// negotiating reports whether a SASL exchange has been requested and is
// still in flight.
func (cn *capNegotiator) negotiating() bool {
	return cn.sasl != nil && cn.sasl.requested && !cn.sasl.done
}

func (cn *capNegotiator) handleCap(mw MessageWriter, m *Message) {
	// if this is ever true then something is either wrong with the server or with our message parser
	if len(m.Params) < 3 {
		return
	}

	// the 2nd param is the CAP subcommand (LS, ACK, etc.)
	switch strings.ToUpper(m.Params.Get(2)) {

	// LS lists the capabilities supported by the server
	case "LS", "NEW":
		// An asterisk in the 3rd param (before the CAP list) indicates there will be more lines coming
		// for the CAP LS response. If this is the last line we request a list of the caps enabled and send CAP END.
		// However, if the server does not support CAP Version 302 then multiple lines will be sent without the asterisk,
		// which will cause *each* line to trigger us to send CAP LIST and CAP END. This should be fine, since additional
		// capabilities can be requested at any time (the additional requests would be sent after cap negotiation has ended).
		// Note that we send CAP END before handling the response of CAP LIST. This is intentional, since we have
		// no reason to wait for the response.
		if m.Params.Get(3) == "*" {
			return
		}
		if cn.sasl != nil && !cn.sasl.done && capAdvertised(m.Params.Get(len(m.Params)), "sasl") {
			// negotiation stays open until the SASL result arrives
			cn.sasl.requested = true
			mw.WriteMessage(CapReq("sasl"))
			return
		}
		mw.WriteMessage(CapList())
		mw.WriteMessage(CapEnd())

	case "ACK":
		if cn.negotiating() && capAdvertised(m.Params.Get(len(m.Params)), "sasl") {
			mw.WriteMessage(Authenticate(string(cn.sasl.mechanism)))
		}

	case "NAK":
		if cn.negotiating() && capAdvertised(m.Params.Get(len(m.Params)), "sasl") {
			cn.sasl.done = true
			mw.WriteMessage(CapEnd())
		}
	}
}

// handleChallenge answers the server's AUTHENTICATE challenge with the
// prepared credentials, split into protocol-sized chunks.
func (cn *capNegotiator) handleChallenge(mw MessageWriter, m *Message) {
	if !cn.negotiating() {
		return
	}
	for _, chunk := range ChunkSASL(cn.sasl.payload) {
		mw.WriteMessage(Authenticate(chunk))
	}
}

// capAdvertised reports whether name appears in a space-separated
// capability list. Values ("sasl=PLAIN,EXTERNAL") and the cap-notify
// removal prefix ("-sasl") are ignored for matching.
func capAdvertised(list, name string) bool {
	for _, cap := range strings.Fields(list) {
		cap = strings.TrimPrefix(cap, "-")
		if eq := strings.IndexByte(cap, '='); eq >= 0 {
			cap = cap[:eq]
		}
		if strings.EqualFold(cap, name) {
			return true
		}
	}
	return false
}
