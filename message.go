package ircwire

import (
	"bytes"
	"encoding"
	"strings"
)

// parameterLimit is the maximum number of parameters a message may contain as defined by the protocol.
// Generally, clients should never send more than this limit but should accept any number.
const parameterLimit = 15

// NewMessage constructs a new Message to be sent on the connection
// with cmd as the verb and args as the message parameters.
//
// Only the last argument may contain SPACE (ascii 32, %x20), be empty, or
// begin with ':'. This is a limitation defined in the IRC protocol;
// serialization refuses messages that break it.
//
// It is common to use '*' in place of an unused parameter. This
// has the benefit of matching all cases in situations where
// a wildcard match is allowed.
func NewMessage(cmd Command, args ...string) *Message {
	p := make(Params, len(args), parameterLimit)
	copy(p, args)
	cmd.normalize()
	return &Message{
		Command: cmd,
		Params:  p,
	}
}

// Message represents any incoming or outgoing IRC line.
//
// Background
//
// IRC is a line-delimited, text-based protocol consisting of incoming and outgoing messages.
// The terms "message", "line", or "event" might be used within this package to refer to a Message
// (although "event" usually only refers to an incoming message).
//
// A message consists of four parts: tags, prefix, verb, and params.
// Message owns all of its fields; for the borrowed equivalent see MessageView.
type Message struct {

	// Tags contains IRCv3 message tags in their order of appearance.
	// Tags are included by the server if the message-tags capability has been negotiated.
	Tags Tags

	// Source is where the message originated from.
	// It's set by the prefix portion of an IRC message.
	//
	// Source should be left empty for messages that will be written to an
	// IRC connection. [RFC 1459] states that for messages originating from
	// a client, it is invalid to include any prefix other than the client's
	// nickname, and instructs servers to silently discard messages which do
	// not follow this rule.
	//
	// [RFC 1459]: https://datatracker.ietf.org/doc/html/rfc1459#section-2.3
	Source Prefix

	// Command is the IRC verb or numeric such as PRIVMSG, NOTICE, 001, etc.
	// It may also sometimes be referred to as the event type.
	Command Command

	// Params contains all the message parameters.
	// If a message included a trailing component,
	// it will be included without special treatment.
	// For outgoing messages,
	// only the last parameter may contain a SPACE (ascii 32).
	Params Params
}

// WithPrefix sets the message source and returns m for chaining.
func (m *Message) WithPrefix(p Prefix) *Message {
	m.Source = p
	return m
}

// WithTag sets a message tag and returns m for chaining.
// Tag insertion order is preserved; setting an existing key updates it
// in place without reordering.
func (m *Message) WithTag(key, value string) *Message {
	m.Tags.Set(key, value)
	return m
}

// WithCommand sets the verb and returns m for chaining.
func (m *Message) WithCommand(cmd Command) *Message {
	cmd.normalize()
	m.Command = cmd
	return m
}

// WithParam appends a parameter and returns m for chaining.
func (m *Message) WithParam(p string) *Message {
	m.Params = append(m.Params, p)
	return m
}

// MarshalText implements encoding.TextMarshaler, mainly for use with ircwire.MessageWriter.
// The returned line is terminated with CRLF.
//
// MarshalText does not enforce the protocol's line length budgets; those are
// enforced by Conn when the message is written to a connection.
func (m *Message) MarshalText() ([]byte, error) {
	buf := bytes.NewBuffer(make([]byte, 0, 512))
	if err := m.appendWire(buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// appendWire writes the canonical wire form of m, terminated with CRLF.
func (m *Message) appendWire(buf *bytes.Buffer) error {
	if len(m.Tags) > 0 {
		buf.WriteByte(startTags)
		seen := 0
		for i, t := range m.Tags {
			if tagAppearsBefore(m.Tags, i) {
				continue
			}
			if seen > 0 {
				buf.WriteByte(delimTag)
			}
			seen++
			buf.WriteString(t.Key)
			// a tag is emitted at most once: the last value wins,
			// at the position of the first occurrence
			v := m.Tags.Get(t.Key)
			if v != "" {
				buf.WriteByte(delimTagValue)
				buf.WriteString(escapeTagValue(v))
			}
		}
		buf.WriteByte(delimParam)
	}

	if m.Source != (Prefix{}) {
		buf.WriteByte(startPrefix)
		buf.WriteString(m.Source.String())
		buf.WriteByte(delimParam)
	}

	writeUpperCommand(buf, []byte(m.Command))

	for i, p := range m.Params {
		last := i == len(m.Params)-1
		marker := needsTrailingMarker(p)
		if marker && !last {
			return ErrBadParam
		}
		buf.WriteByte(delimParam)
		if marker {
			buf.WriteByte(startTrailing)
		}
		buf.WriteString(p)
	}
	buf.WriteString("\r\n")
	return nil
}

func tagAppearsBefore(tags Tags, i int) bool {
	for j := 0; j < i; j++ {
		if tags[j].Key == tags[i].Key {
			return true
		}
	}
	return false
}

// UnmarshalText implements encoding.TextUnmarshaler,
// accepting a line read from an IRC stream.
// text may include the trailing line ending.
//
// This will unmarshal an arbitrarily long sequence of bytes.
// Length limitations should be implemented at the scanner.
func (m *Message) UnmarshalText(text []byte) error {
	var v MessageView
	if err := ParseView(text, &v); err != nil {
		return err
	}
	*m = *v.Promote()
	return nil
}

// WireTo writes the canonical wire form of m, terminated with CRLF.
// A promoted MessageView and its source view produce identical bytes.
func (m *Message) WireTo(w interface{ Write([]byte) (int, error) }) error {
	b, err := m.MarshalText()
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}

// Command is an IRC command such as PRIVMSG, NOTICE, 001, etc.
//
// A command may also be known as the "verb", "event type", or "numeric".
type Command string

// String implements fmt.Stringer
func (c Command) String() string {
	return string(c)
}

// normalize will modify the command to use consistent casing.
func (c *Command) normalize() {
	*c = Command(strings.ToUpper(c.String()))
}

// is does a case-insensitive compare between two commands, which is
// useful if a command was given as a string constant.
func (c Command) is(oc Command) bool {
	return strings.EqualFold(string(c), string(oc))
}

// IsNumeric reports whether the command is a three-digit reply code.
func (c Command) IsNumeric() bool {
	if len(c) != 3 {
		return false
	}
	for _, b := range []byte(c) {
		if b < '0' || b > '9' {
			return false
		}
	}
	return true
}

// Prefix is the optional message (line) prefix,
// which indicates the source (user or server) of the message,
// depending on the prefix format.
//
// Example line with no prefix:
// 	PING :86F3E357
//
// Example nickname-only prefix:
// 	:Travis MODE Travis :+ixz
//
// Example "fulladdress" prefix:
// 	:NickServ!services@services.host NOTICE Travis :This nickname is registered...
//
// Example server prefix:
// 	:fiery.ca.us.SwiftIRC.net MODE #foo +nt
//
// A token containing '.' but neither '!' nor '@' is a server name;
// anything else is a user prefix in one of the four forms
// nick, nick!user, nick@host, nick!user@host.
type Prefix struct {
	Nick Nickname
	User string
	Host string
}

// IsServer returns true when the message originated from a server (as opposed to a user/client).
// When true, the server name will be contained in the Host field.
func (p Prefix) IsServer() bool {
	return p.Host != "" && p.Nick == ""
}

// String implements fmt.Stringer
func (p Prefix) String() string {
	switch {
	case p.Nick == "" && p.User == "" && p.Host == "":
		return ""
	case p.Nick == "" && p.User == "":
		return p.Host
	case p.User == "" && p.Host == "":
		return p.Nick.String()
	case p.User == "":
		return p.Nick.String() + "@" + p.Host
	case p.Host == "":
		return p.Nick.String() + "!" + p.User
	default:
		return p.Nick.String() + "!" + p.User + "@" + p.Host
	}
}

// Params contains the slice of arguments for a message.
//
// Prefer the Get method for reading params rather than accessing the slice directly.
//
// For outgoing messages,
// only the last parameter may contain SPACE (ascii 32).
//
// If a message included a trailing component as defined in [RFC 1459],
// it will be included as a normal parameter.
//
// [RFC 1459]: https://datatracker.ietf.org/doc/html/rfc1459#section-2.3.1
type Params []string

// Get returns the nth parameter (starting at 1) from the parameters list,
// or "" (empty string) if it did not exist.
//
// Because parameters have meaning based on their position in the argument list,
// and because the meaning and position depends on which command/verb was used,
// Get does not differentiate between missing and empty parameters.
// Callers may simply check whether ordinal parameter n is empty.
func (p Params) Get(n int) string {
	if n > len(p) || n < 1 {
		return ""
	}
	return p[n-1]
}

type Nickname string

func (n Nickname) String() string {
	return string(n)
}

// Is determines whether a nickname matches a string by using Unicode case folding.
// For network-specific folding rules, see CaseMapping.
func (n Nickname) Is(other string) bool {
	return strings.EqualFold(n.String(), other)
}

// MessageWriter contains methods for sending IRC messages to a server.
type MessageWriter interface {

	// WriteMessage writes the message to the client's outgoing message queue.
	// The given encoding.TextMarshaler MUST return a byte slice which conforms to the IRC protocol.
	// If the slice does not end in "\r\n", then the sequence will be appended.
	//
	// The returned slice from the MarshalText method will be written to the connection with a single call to Write.
	// If a type implements message splitting for long messages,
	// then the entire slice must consist of multiple valid "\r\n"-delimited IRC messages.
	//
	// For example:
	//  "PRIVMSG #foo :supercalifragilisticexpi-\r\nPRIVMSG #foo :alidocious\r\n"
	//
	// It is the responsibility of the MarshalText method implementer to ensure that messages are formatted correctly,
	// and in the case of custom message splitting and continuation,
	// that flood limits are not reached.
	WriteMessage(encoding.TextMarshaler)
}
