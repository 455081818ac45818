package ircwire

import (
	"strconv"
	"sync/atomic"
	"time"
)

// ServerTimeLayout is the timestamp format of the IRCv3 server-time
// capability: UTC with millisecond precision and a literal Z suffix.
const ServerTimeLayout = "2006-01-02T15:04:05.000Z"

// FormatServerTime renders t for a server-time tag.
func FormatServerTime(t time.Time) string {
	return t.UTC().Format(ServerTimeLayout)
}

// ParseServerTime reads a server-time tag value.
func ParseServerTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, s)
}

// Time returns the message's server-time tag as a time.Time.
// ok is false when the tag is absent or malformed.
func (m *Message) Time() (t time.Time, ok bool) {
	v := m.Tags.Get("time")
	if v == "" {
		return time.Time{}, false
	}
	t, err := ParseServerTime(v)
	return t, err == nil
}

// MsgID returns the message's msgid tag, or "".
func (m *Message) MsgID() string {
	return m.Tags.Get("msgid")
}

// Batch returns the batch reference the message belongs to, or "".
func (m *Message) Batch() string {
	return m.Tags.Get("batch")
}

// Account returns the account tag identifying the sender's services
// account, or "".
func (m *Message) Account() string {
	return m.Tags.Get("account")
}

// Label returns the label tag correlating a server response with the
// client message that caused it, or "".
func (m *Message) Label() string {
	return m.Tags.Get("label")
}

var idCounter atomic.Uint64

// nextID produces identifiers unique within the process, combining the
// wall clock with a counter so restarts rarely collide.
func nextID() string {
	ms := time.Now().UnixMilli()
	n := idCounter.Add(1) - 1
	return strconv.FormatInt(ms, 10) + "-" + strconv.FormatUint(n, 10)
}

// NewMsgID generates a message identifier for a msgid tag.
func NewMsgID() string {
	return nextID()
}

// NewBatchRef generates a reference name for a batch.
func NewBatchRef() string {
	return nextID()
}
