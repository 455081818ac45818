package ircwire

import (
	"strings"
)

// ModeKind describes how a mode letter consumes arguments.
type ModeKind int

const (

	// ModeList is a banlist-style mode such as +b. It takes an argument when
	// setting or unsetting an entry, and is also legal with no argument at
	// all, which queries the current list.
	ModeList ModeKind = iota

	// ModeSettingWithArg takes an argument on both set and unset, like +k.
	ModeSettingWithArg

	// ModeSettingOnSet takes an argument only when setting, like +l.
	ModeSettingOnSet

	// ModeSettingNever takes no argument in either direction, like +i or +m.
	ModeSettingNever

	// ModePrefix grants or removes channel membership status and always
	// takes a nickname argument, like +o and +v.
	ModePrefix
)

func (k ModeKind) String() string {
	switch k {
	case ModeList:
		return "list"
	case ModeSettingWithArg:
		return "setting (with argument)"
	case ModeSettingOnSet:
		return "setting (argument on set)"
	case ModeSettingNever:
		return "setting"
	case ModePrefix:
		return "prefix"
	default:
		return "unknown"
	}
}

// ModeOp is a single parsed mode change.
type ModeOp struct {

	// Sign is '+' or '-'.
	Sign byte

	// Letter is the mode letter, e.g. 'o' or 'b'.
	Letter byte

	// Arg is the argument consumed for this mode,
	// or "" when the mode took none.
	// A list mode with no argument is a query for the current list contents.
	Arg string
}

// ModeClassifier tells the mode parser how a letter consumes arguments.
//
// Mode semantics vary by network and are advertised at runtime through
// RPL_ISUPPORT (CHANMODES, PREFIX), so classification is pluggable rather
// than baked in. See ISupport.Classifier for a server-derived classifier.
type ModeClassifier interface {

	// Classify returns the kind for a mode letter.
	// ok reports whether the letter is known.
	Classify(letter byte) (kind ModeKind, ok bool)
}

// ModeSet is a ModeClassifier backed by letter sets, one string per kind.
//
// The zero value classifies nothing; start from ChannelModes or UserModes
// and adjust, or build one from ISUPPORT.
type ModeSet struct {
	List    string // banlist-style modes
	WithArg string // argument on set and unset
	OnSet   string // argument on set only
	Never   string // no argument
	Prefix  string // membership modes, argument is a nickname

	// Strict rejects letters not listed in any set.
	// When false, unknown letters classify as ModeSettingNever,
	// which is the safe reading for the
	// common case of a network extension mode that takes no argument.
	Strict bool
}

// ChannelModes classifies the channel modes defined by RFC 2811.
var ChannelModes = ModeSet{
	List:    "beI",
	WithArg: "k",
	OnSet:   "l",
	Never:   "aimnqpsrt",
	Prefix:  "Oov",
}

// UserModes classifies the user modes defined by RFC 2812,
// none of which take arguments.
var UserModes = ModeSet{
	Never: "aiwroOs",
}

// Classify implements ModeClassifier.
func (s ModeSet) Classify(letter byte) (ModeKind, bool) {
	switch {
	case strings.IndexByte(s.List, letter) >= 0:
		return ModeList, true
	case strings.IndexByte(s.WithArg, letter) >= 0:
		return ModeSettingWithArg, true
	case strings.IndexByte(s.OnSet, letter) >= 0:
		return ModeSettingOnSet, true
	case strings.IndexByte(s.Prefix, letter) >= 0:
		return ModePrefix, true
	case strings.IndexByte(s.Never, letter) >= 0:
		return ModeSettingNever, true
	case s.Strict:
		return 0, false
	default:
		return ModeSettingNever, true
	}
}

// ParseModes interprets the arguments of a MODE message (everything after
// the target) as an ordered list of mode changes.
//
// The first argument is the modestring. Later arguments beginning with '+'
// or '-' continue it; some servers split long changes this way. The first
// argument that does not begin with a sign ends the modestring section and
// starts the argument list, consumed left to right as the classifier
// demands.
//
// A missing required argument, an unknown letter under a strict classifier,
// and leftover arguments all return a ParseError of kind
// ParseModeArityMismatch.
func ParseModes(c ModeClassifier, args []string) ([]ModeOp, error) {
	if len(args) == 0 {
		return nil, nil
	}

	modestrings := args[:1]
	rest := args[1:]
	for len(rest) > 0 && (rest[0] != "" && (rest[0][0] == '+' || rest[0][0] == '-')) {
		modestrings = args[:len(modestrings)+1]
		rest = rest[1:]
	}

	var ops []ModeOp
	sign := byte('+')
	for _, ms := range modestrings {
		for i := 0; i < len(ms); i++ {
			letter := ms[i]
			if letter == '+' || letter == '-' {
				sign = letter
				continue
			}
			kind, ok := c.Classify(letter)
			if !ok {
				return nil, parseErrorf(ParseModeArityMismatch, "unknown mode letter: "+string(letter))
			}
			op := ModeOp{Sign: sign, Letter: letter}
			if takesArg(kind, sign) {
				switch {
				case len(rest) > 0:
					op.Arg = rest[0]
					rest = rest[1:]
				case kind == ModeList:
					// no argument queries the list
				default:
					return nil, parseErrorf(ParseModeArityMismatch, "mode "+string(sign)+string(letter)+" requires an argument")
				}
			}
			ops = append(ops, op)
		}
	}
	if len(rest) > 0 {
		return nil, parseErrorf(ParseModeArityMismatch, "unused arguments after mode changes: "+strings.Join(rest, " "))
	}
	return ops, nil
}

func takesArg(kind ModeKind, sign byte) bool {
	switch kind {
	case ModeList, ModeSettingWithArg, ModePrefix:
		return true
	case ModeSettingOnSet:
		return sign == '+'
	default:
		return false
	}
}

// SerializeModes renders ops back into MODE arguments: a single modestring
// with runs of the same sign collapsed, followed by the arguments in
// encounter order.
//
// ParseModes and SerializeModes are inverses up to sign collapsing:
// serializing a parse yields the canonical form of the same changes.
func SerializeModes(ops []ModeOp) []string {
	if len(ops) == 0 {
		return nil
	}
	var ms strings.Builder
	args := make([]string, 0, len(ops))
	var sign byte
	for _, op := range ops {
		if op.Sign != sign {
			sign = op.Sign
			ms.WriteByte(sign)
		}
		ms.WriteByte(op.Letter)
		if op.Arg != "" {
			args = append(args, op.Arg)
		}
	}
	return append([]string{ms.String()}, args...)
}
