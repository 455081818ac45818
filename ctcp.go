package ircwire

import "strings"

// ctcpDelim frames a CTCP query or reply inside a PRIVMSG or NOTICE
// body.
const ctcpDelim = 0x01

// CTCPMessage is a decoded Client-to-Client Protocol query or reply.
//
// CTCP rides inside the text of a PRIVMSG (query) or NOTICE (reply):
// the body is wrapped in 0x01 bytes and starts with a subcommand such
// as ACTION, VERSION, or PING. Many clients omit the closing delimiter,
// so decoding tolerates its absence.
type CTCPMessage struct {

	// Command is the CTCP subcommand, uppercased.
	Command string

	// Params is everything after the subcommand, unmodified.
	Params string
}

// DecodeCTCP extracts a CTCP message from a PRIVMSG or NOTICE body.
// ok is false when the body is not CTCP-framed.
func DecodeCTCP(body string) (c CTCPMessage, ok bool) {
	if len(body) < 2 || body[0] != ctcpDelim {
		return CTCPMessage{}, false
	}
	body = body[1:]
	if body[len(body)-1] == ctcpDelim {
		body = body[:len(body)-1]
	}
	cmd, params, _ := strings.Cut(body, " ")
	if cmd == "" {
		return CTCPMessage{}, false
	}
	return CTCPMessage{
		Command: strings.ToUpper(cmd),
		Params:  params,
	}, true
}

// EncodeCTCP frames a subcommand and its parameters for embedding in a
// PRIVMSG or NOTICE body.
func EncodeCTCP(command, params string) string {
	var b strings.Builder
	b.Grow(2 + len(command) + 1 + len(params))
	b.WriteByte(ctcpDelim)
	b.WriteString(command)
	if params != "" {
		b.WriteByte(' ')
		b.WriteString(params)
	}
	b.WriteByte(ctcpDelim)
	return b.String()
}

// IsAction reports whether the message is a CTCP ACTION ("/me").
func (c CTCPMessage) IsAction() bool {
	return c.Command == "ACTION"
}
