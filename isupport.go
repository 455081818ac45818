package ircwire

import (
	"strconv"
	"strings"
)

// ISupportToken is one key[=value] token from an RPL_ISUPPORT reply.
type ISupportToken struct {
	Key   string
	Value string

	// HasValue distinguishes "EXCEPTS" from "EXCEPTS=" on the wire.
	HasValue bool
}

// ISupport accumulates the feature tokens a server advertises through
// RPL_ISUPPORT (005) replies.
//
// Servers send several 005 lines during registration; feed each one to
// Add. Later tokens override earlier ones, and a "-KEY" token removes a
// previously advertised key.
//
// The zero value is ready to use.
type ISupport struct {
	tokens []ISupportToken
}

// Add ingests the tokens of one RPL_ISUPPORT reply. params should be
// the full reply parameters; the leading client name and the trailing
// "are supported by this server" text are skipped.
func (s *ISupport) Add(params Params) {
	tokens := params
	if len(tokens) > 0 {
		tokens = tokens[1:]
	}
	if n := len(tokens); n > 0 && strings.ContainsRune(tokens[n-1], ' ') {
		tokens = tokens[:n-1]
	}
	for _, t := range tokens {
		if t == "" {
			continue
		}
		if t[0] == '-' {
			s.remove(t[1:])
			continue
		}
		key, value, hasValue := t, "", false
		if eq := strings.IndexByte(t, '='); eq >= 0 {
			key, value, hasValue = t[:eq], t[eq+1:], true
		}
		s.set(ISupportToken{Key: key, Value: value, HasValue: hasValue})
	}
}

func (s *ISupport) set(t ISupportToken) {
	for i := range s.tokens {
		if strings.EqualFold(s.tokens[i].Key, t.Key) {
			s.tokens[i] = t
			return
		}
	}
	s.tokens = append(s.tokens, t)
}

func (s *ISupport) remove(key string) {
	for i := range s.tokens {
		if strings.EqualFold(s.tokens[i].Key, key) {
			s.tokens = append(s.tokens[:i], s.tokens[i+1:]...)
			return
		}
	}
}

// Has reports whether the server advertised key, with or without a value.
func (s *ISupport) Has(key string) bool {
	_, ok := s.lookup(key)
	return ok
}

// Get returns the advertised value for key.
// Keys advertised without a value return "".
func (s *ISupport) Get(key string) string {
	t, _ := s.lookup(key)
	return t.Value
}

func (s *ISupport) lookup(key string) (ISupportToken, bool) {
	for _, t := range s.tokens {
		if strings.EqualFold(t.Key, key) {
			return t, true
		}
	}
	return ISupportToken{}, false
}

// Tokens returns the advertised tokens in arrival order.
func (s *ISupport) Tokens() []ISupportToken {
	return s.tokens
}

// Network returns the advertised network name.
func (s *ISupport) Network() string {
	return s.Get("NETWORK")
}

// ChanTypes returns the channel name prefix characters, defaulting to "#".
func (s *ISupport) ChanTypes() string {
	if t, ok := s.lookup("CHANTYPES"); ok {
		return t.Value
	}
	return "#"
}

// StatusMsg returns the prefixes usable for messages addressed to only
// the members of a channel holding a status, e.g. "@+".
func (s *ISupport) StatusMsg() string {
	return s.Get("STATUSMSG")
}

// CaseMapping returns the network's advertised casemapping.
// Unadvertised or unrecognized values fall back to rfc1459,
// the historical default.
func (s *ISupport) CaseMapping() CaseMapping {
	if m, ok := ParseCaseMapping(s.Get("CASEMAPPING")); ok {
		return m
	}
	return CaseMapRFC1459
}

// Prefix returns the channel membership modes and their status
// prefixes from the PREFIX=(modes)prefixes token, e.g. "ov" and "@+".
// The RFC 2811 defaults apply when the token is absent.
func (s *ISupport) Prefix() (modes, prefixes string) {
	t, ok := s.lookup("PREFIX")
	if !ok {
		return "ov", "@+"
	}
	v := t.Value
	if !strings.HasPrefix(v, "(") {
		return "", v
	}
	close := strings.IndexByte(v, ')')
	if close < 0 {
		return "", ""
	}
	return v[1:close], v[close+1:]
}

// ChanModes returns the four CHANMODES groups: list modes, modes with a
// parameter on set and unset, modes with a parameter on set only, and
// modes that never take a parameter. The RFC 2811 defaults apply when
// the token is absent or malformed.
func (s *ISupport) ChanModes() (a, b, c, d string) {
	t, ok := s.lookup("CHANMODES")
	if ok {
		parts := strings.SplitN(t.Value, ",", 5)
		if len(parts) >= 4 {
			return parts[0], parts[1], parts[2], parts[3]
		}
	}
	return ChannelModes.List, ChannelModes.WithArg, ChannelModes.OnSet, ChannelModes.Never
}

// Excepts returns the ban exception list mode, usually 'e'.
// ok is false when the server doesn't support exception lists.
func (s *ISupport) Excepts() (mode byte, ok bool) {
	t, ok := s.lookup("EXCEPTS")
	if !ok {
		return 0, false
	}
	if t.Value == "" {
		return 'e', true
	}
	return t.Value[0], true
}

// Invex returns the invite exception list mode, usually 'I'.
// ok is false when the server doesn't support invite exceptions.
func (s *ISupport) Invex() (mode byte, ok bool) {
	t, ok := s.lookup("INVEX")
	if !ok {
		return 0, false
	}
	if t.Value == "" {
		return 'I', true
	}
	return t.Value[0], true
}

// TargMax returns the maximum number of targets the named command
// accepts in one message. ok is false when the command has no advertised
// limit; a limit of 0 with ok true means no limit.
func (s *ISupport) TargMax(command string) (limit int, ok bool) {
	for _, part := range strings.Split(s.Get("TARGMAX"), ",") {
		cmd, num, found := strings.Cut(part, ":")
		if !strings.EqualFold(cmd, command) {
			continue
		}
		if !found || num == "" {
			return 0, true
		}
		n, err := strconv.Atoi(num)
		if err != nil {
			return 0, false
		}
		return n, true
	}
	return 0, false
}

// MaxList returns the entry limit for a list mode from the MAXLIST
// token, e.g. MAXLIST=beI:60 limits bans, ban exceptions, and invite
// exceptions to 60 entries each.
func (s *ISupport) MaxList(mode byte) (limit int, ok bool) {
	for _, part := range strings.Split(s.Get("MAXLIST"), ",") {
		modes, num, found := strings.Cut(part, ":")
		if !found || strings.IndexByte(modes, mode) < 0 {
			continue
		}
		n, err := strconv.Atoi(num)
		if err != nil {
			continue
		}
		return n, true
	}
	return 0, false
}

// Classifier derives the network's channel mode classifier from the
// CHANMODES and PREFIX tokens. Letters the server never mentioned stay
// permissively classified; wrap the result or set Strict to change that.
func (s *ISupport) Classifier() ModeSet {
	a, b, c, d := s.ChanModes()
	modes, _ := s.Prefix()
	return ModeSet{
		List:    a,
		WithArg: b,
		OnSet:   c,
		Never:   d,
		Prefix:  modes,
	}
}
