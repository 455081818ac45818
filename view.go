package ircwire

import (
	"bytes"
	"errors"
	"io"
	"strings"
)

// ErrBadParam is returned when serializing a message whose parameter list
// breaks the wire invariant: a parameter which is empty, contains SPACE, or
// starts with ':' can only be written as the trailing parameter, so at most
// one such parameter may exist and it must be last.
var ErrBadParam = errors.New("only the last parameter may be empty, contain spaces, or start with ':'")

// rawTag is a borrowed tag: both slices point into the parsed line and the
// value is still in its escaped wire form.
type rawTag struct {
	key []byte
	val []byte
}

// MessageView is a borrowed projection of a single parsed IRC line.
// Every field is a subslice of the buffer the line was parsed from, so a
// view must not outlive that buffer. Promote copies the view into an owned
// Message that can.
//
// The zero value is ready to be filled by ParseView.
type MessageView struct {
	src     []byte
	tags    []rawTag
	prefix  []byte
	command []byte
	params  [][]byte

	items []item // lexer scratch, reused across parses
}

// setRawTag records a tag during parsing. Duplicate keys keep the position
// of the first occurrence and the value of the last.
func (v *MessageView) setRawTag(key, val []byte) {
	for i := range v.tags {
		if bytes.Equal(v.tags[i].key, key) {
			v.tags[i].val = val
			return
		}
	}
	v.tags = append(v.tags, rawTag{key: key, val: val})
}

// TagCount returns the number of distinct tag keys on the message.
func (v *MessageView) TagCount() int {
	return len(v.tags)
}

// TagAt returns the key and still-escaped value of the i'th tag.
func (v *MessageView) TagAt(i int) (key, rawValue []byte) {
	return v.tags[i].key, v.tags[i].val
}

// RawTag returns the still-escaped value for key.
func (v *MessageView) RawTag(key string) ([]byte, bool) {
	for i := range v.tags {
		if string(v.tags[i].key) == key {
			return v.tags[i].val, true
		}
	}
	return nil, false
}

// Tag returns the unescaped value for key.
// Unescaping allocates only when the raw value actually contains escapes.
func (v *MessageView) Tag(key string) (string, bool) {
	raw, ok := v.RawTag(key)
	if !ok {
		return "", false
	}
	return unescapeTagValue(raw), true
}

// Prefix returns the raw prefix token, e.g. "nick!user@host" or
// "irc.example.net", or nil when the line had no prefix.
func (v *MessageView) Prefix() []byte {
	return v.prefix
}

// Command returns the command token with its original casing.
func (v *MessageView) Command() []byte {
	return v.command
}

// ParamCount returns the number of parameters.
func (v *MessageView) ParamCount() int {
	return len(v.params)
}

// Param returns the i'th parameter (starting at 0), or nil if out of range.
func (v *MessageView) Param(i int) []byte {
	if i < 0 || i >= len(v.params) {
		return nil
	}
	return v.params[i]
}

// WireTo writes the canonical wire form of the view, terminated with CRLF.
// A view and its promoted Message produce identical bytes.
func (v *MessageView) WireTo(w io.Writer) error {
	buf := bytes.NewBuffer(make([]byte, 0, 512))
	if err := v.appendWire(buf); err != nil {
		return err
	}
	_, err := w.Write(buf.Bytes())
	return err
}

func (v *MessageView) appendWire(buf *bytes.Buffer) error {
	if len(v.tags) > 0 {
		buf.WriteByte(startTags)
		for i, t := range v.tags {
			if i > 0 {
				buf.WriteByte(delimTag)
			}
			buf.Write(t.key)
			if len(t.val) > 0 {
				buf.WriteByte(delimTagValue)
				writeCanonicalRawValue(buf, t.val)
			}
		}
		buf.WriteByte(delimParam)
	}
	if len(v.prefix) > 0 {
		buf.WriteByte(startPrefix)
		buf.Write(v.prefix)
		buf.WriteByte(delimParam)
	}
	writeUpperCommand(buf, v.command)
	for i, p := range v.params {
		last := i == len(v.params)-1
		marker := len(p) == 0 || p[0] == startTrailing || bytes.IndexByte(p, delimParam) >= 0
		if marker && !last {
			return ErrBadParam
		}
		buf.WriteByte(delimParam)
		if marker {
			buf.WriteByte(startTrailing)
		}
		buf.Write(p)
	}
	buf.WriteString("\r\n")
	return nil
}

// writeCanonicalRawValue writes an escaped tag value in canonical form.
// Raw values that only use the defined escape table are already canonical
// and are written verbatim; anything else (unknown escapes, a lone trailing
// backslash) is unescaped and re-escaped so that a view and its promotion
// serialize to the same bytes.
func writeCanonicalRawValue(buf *bytes.Buffer, raw []byte) {
	if checkTagEscapes(raw) == nil {
		buf.Write(raw)
		return
	}
	buf.WriteString(escapeTagValue(unescapeTagValue(raw)))
}

// writeUpperCommand writes an alphabetic verb in uppercase.
// Numerics pass through unchanged.
func writeUpperCommand(buf *bytes.Buffer, cmd []byte) {
	for _, b := range cmd {
		if b >= 'a' && b <= 'z' {
			b -= 'a' - 'A'
		}
		buf.WriteByte(b)
	}
}

// needsTrailingMarker reports whether a parameter can only be represented
// as the trailing parameter on the wire.
func needsTrailingMarker(p string) bool {
	return len(p) == 0 || p[0] == startTrailing || strings.IndexByte(p, delimParam) >= 0
}

// Promote deep-copies the view into an owned Message: tag values are
// unescaped, frequent tag keys are interned, and the prefix is split into
// its nick, user, and host parts.
func (v *MessageView) Promote() *Message {
	m := &Message{
		Command: Command(v.command),
	}
	if len(v.tags) > 0 {
		m.Tags = make(Tags, 0, len(v.tags))
		for _, t := range v.tags {
			m.Tags = append(m.Tags, Tag{
				Key:   internTagKey(t.key),
				Value: unescapeTagValue(t.val),
			})
		}
	}
	if len(v.prefix) > 0 {
		// the prefix was validated during the parse, so the error is
		// not reachable here
		nick, user, host, _ := splitPrefix(v.prefix)
		m.Source = Prefix{Nick: Nickname(nick), User: string(user), Host: string(host)}
	}
	if len(v.params) > 0 {
		m.Params = make(Params, 0, len(v.params))
		for _, p := range v.params {
			m.Params = append(m.Params, string(p))
		}
	}
	return m
}
