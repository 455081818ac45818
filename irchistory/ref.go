package irchistory

import (
	"fmt"
	"strings"
	"time"

	"github.com/Travis-Britz/ircwire"
)

// Ref is one CHATHISTORY message reference: a timestamp, a msgid, or
// the "*" wildcard. The zero value is a timestamp of the zero time.
type Ref struct {
	Time  time.Time
	MsgID string
	Any   bool
}

// ParseRef parses a CHATHISTORY reference parameter:
// "timestamp=2019-01-04T14:33:26.123Z", "msgid=abc", or "*".
func ParseRef(s string) (Ref, error) {
	if s == "*" {
		return Ref{Any: true}, nil
	}
	kind, value, ok := strings.Cut(s, "=")
	if !ok {
		return Ref{}, fmt.Errorf("irchistory: reference %q missing '='", s)
	}
	switch kind {
	case "timestamp":
		t, err := ircwire.ParseServerTime(value)
		if err != nil {
			return Ref{}, fmt.Errorf("irchistory: reference %q: %w", s, err)
		}
		return Ref{Time: t}, nil
	case "msgid":
		if value == "" {
			return Ref{}, fmt.Errorf("irchistory: reference %q has empty msgid", s)
		}
		return Ref{MsgID: value}, nil
	default:
		return Ref{}, fmt.Errorf("irchistory: unknown reference type %q", kind)
	}
}

// TimestampRef builds a timestamp reference for t.
func TimestampRef(t time.Time) Ref {
	return Ref{Time: t}
}

// MsgIDRef builds a msgid reference.
func MsgIDRef(id string) Ref {
	return Ref{MsgID: id}
}

// String renders the reference in CHATHISTORY parameter form.
func (r Ref) String() string {
	switch {
	case r.Any:
		return "*"
	case r.MsgID != "":
		return "msgid=" + r.MsgID
	default:
		return "timestamp=" + ircwire.FormatServerTime(r.Time)
	}
}
