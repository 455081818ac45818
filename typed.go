package ircwire

import (
	"strconv"
	"strings"
)

// TypedCommand is the typed form of a known IRC command.
//
// The set of implementations is closed: every variant lives in this
// package, and anything a server can send that doesn't fit a variant
// decodes as Raw. Decode and Encode translate between a Message and its
// typed form; for known variants Encode(Decode(m)) reproduces the verb
// and parameters of m exactly.
type TypedCommand interface {

	// Verb returns the wire verb for the command.
	Verb() Command

	// encodeParams returns the parameters in wire order.
	encodeParams() Params
}

// Decode maps the verb and parameters of a parsed message onto a typed
// command. It never fails: numerics become Numeric, and unknown verbs or
// known verbs with the wrong number of parameters become Raw, which
// round-trips unchanged.
//
// Tags and the source prefix are carried by the Message, not the typed
// command; Decode looks only at the verb and parameters.
func Decode(m *Message) TypedCommand {
	if code, ok := m.Command.Code(); ok {
		return Numeric{Code: code, Params: m.Params}
	}
	verb := Command(strings.ToUpper(string(m.Command)))
	c, ok := codecs[verb]
	if ok && len(m.Params) >= c.min && (c.max < 0 || len(m.Params) <= c.max) {
		if tc, ok := c.decode(m.Params); ok {
			return tc
		}
	}
	return Raw{Command: m.Command, Params: m.Params}
}

// Encode builds a Message from a typed command.
// The result has no tags or source; set those on the message afterwards.
func Encode(tc TypedCommand) *Message {
	return &Message{
		Command: tc.Verb(),
		Params:  tc.encodeParams(),
	}
}

// codec describes how one verb maps to its typed variant.
type codec struct {
	min, max int // parameter arity; max < 0 means unbounded
	decode   func(Params) (TypedCommand, bool)
}

var codecs = map[Command]codec{
	CmdPass:         {1, 1, decodePass},
	CmdNick:         {1, 1, decodeNick},
	CmdUser:         {4, 4, decodeUser},
	CmdOper:         {2, 2, decodeOper},
	CmdQuit:         {0, 1, decodeQuit},
	CmdSQuit:        {2, 2, decodeSQuit},
	CmdJoin:         {1, 3, decodeJoin},
	CmdPart:         {1, 2, decodePart},
	CmdMode:         {1, -1, decodeMode},
	CmdTopic:        {1, 2, decodeTopic},
	CmdNames:        {0, 2, decodeNames},
	CmdList:         {0, 2, decodeList},
	CmdInvite:       {2, 2, decodeInvite},
	CmdKick:         {2, 3, decodeKick},
	CmdPrivmsg:      {2, 2, decodePrivmsg},
	CmdNotice:       {2, 2, decodeNotice},
	CmdTagMsg:       {1, 1, decodeTagMsg},
	CmdMOTD:         {0, 1, decodeMOTD},
	CmdLUsers:       {0, 2, decodeLUsers},
	CmdVersion:      {0, 1, decodeVersion},
	CmdStats:        {0, 2, decodeStats},
	CmdLinks:        {0, 2, decodeLinks},
	CmdTime:         {0, 1, decodeTime},
	CmdConnect:      {2, 3, decodeConnect},
	CmdTrace:        {0, 1, decodeTrace},
	CmdAdmin:        {0, 1, decodeAdmin},
	CmdInfo:         {0, 1, decodeInfo},
	CmdWho:          {0, 2, decodeWho},
	CmdWhoIs:        {1, 2, decodeWhois},
	CmdWhoWas:       {1, 3, decodeWhowas},
	CmdKill:         {2, 2, decodeKill},
	CmdPing:         {1, 2, decodePing},
	CmdPong:         {1, 2, decodePong},
	CmdError:        {1, 1, decodeError},
	CmdAway:         {0, 1, decodeAway},
	CmdRehash:       {0, 0, decodeRehash},
	CmdDie:          {0, 0, decodeDie},
	CmdRestart:      {0, 0, decodeRestart},
	CmdWAllOps:      {1, 1, decodeWallops},
	CmdUserHost:     {1, 5, decodeUserhost},
	CmdIsOn:         {1, -1, decodeIsOn},
	CmdCap:          {1, -1, decodeCap},
	CmdAuthenticate: {1, 1, decodeAuthenticate},
	CmdAccount:      {1, 1, decodeAccount},
	CmdMonitor:      {1, 2, decodeMonitor},
	CmdBatch:        {1, -1, decodeBatch},
	CmdChgHost:      {2, 2, decodeChgHost},
	CmdSetName:      {1, 1, decodeSetName},
	CmdChatHistory:  {4, 5, decodeChatHistory},
	CmdFail:         {3, -1, decodeStandardReply(CmdFail)},
	CmdWarn:         {3, -1, decodeStandardReply(CmdWarn)},
	CmdNote:         {3, -1, decodeStandardReply(CmdNote)},
}

// optPresent reports whether an optional final parameter can be
// represented by a plain string field. The wire can carry an explicitly
// empty trailing parameter ("QUIT :"), which a string field would encode
// back as no parameter at all; those decode as Raw instead.
func optPresent(p string) bool {
	return p != ""
}

// opts joins fields back into a parameter list,
// stopping at the first absent optional.
func opts(required []string, optional ...string) Params {
	p := Params(required)
	for _, o := range optional {
		if o == "" {
			break
		}
		p = append(p, o)
	}
	return p
}

// Raw is the escape hatch for verbs with no typed variant, and for known
// verbs whose parameters don't match the expected shape. It preserves the
// verb and parameters untouched.
type Raw struct {
	Command Command
	Params  Params
}

func (c Raw) Verb() Command        { return c.Command }
func (c Raw) encodeParams() Params { return c.Params }

// Numeric is a server reply identified by a three-digit code.
// The first parameter is conventionally the target of the reply.
type Numeric struct {
	Code   ResponseCode
	Params Params
}

func (c Numeric) Verb() Command        { return c.Code.Command() }
func (c Numeric) encodeParams() Params { return c.Params }

// PassCmd sets the connection password during registration.
type PassCmd struct{ Password string }

func (c PassCmd) Verb() Command        { return CmdPass }
func (c PassCmd) encodeParams() Params { return Params{c.Password} }

func decodePass(p Params) (TypedCommand, bool) {
	return PassCmd{Password: p.Get(1)}, true
}

// NickCmd sets or changes a nickname.
type NickCmd struct{ Nick Nickname }

func (c NickCmd) Verb() Command        { return CmdNick }
func (c NickCmd) encodeParams() Params { return Params{c.Nick.String()} }

func decodeNick(p Params) (TypedCommand, bool) {
	return NickCmd{Nick: Nickname(p.Get(1))}, true
}

// UserCmd registers the username and realname of a new connection.
// Unused carries the historical third parameter, conventionally "*".
type UserCmd struct {
	Username string
	Mode     string
	Unused   string
	Realname string
}

func (c UserCmd) Verb() Command { return CmdUser }
func (c UserCmd) encodeParams() Params {
	return Params{c.Username, c.Mode, c.Unused, c.Realname}
}

func decodeUser(p Params) (TypedCommand, bool) {
	return UserCmd{Username: p.Get(1), Mode: p.Get(2), Unused: p.Get(3), Realname: p.Get(4)}, true
}

// OperCmd requests operator privileges.
type OperCmd struct{ Name, Password string }

func (c OperCmd) Verb() Command        { return CmdOper }
func (c OperCmd) encodeParams() Params { return Params{c.Name, c.Password} }

func decodeOper(p Params) (TypedCommand, bool) {
	return OperCmd{Name: p.Get(1), Password: p.Get(2)}, true
}

// QuitCmd terminates the session. Reason is optional.
type QuitCmd struct{ Reason string }

func (c QuitCmd) Verb() Command        { return CmdQuit }
func (c QuitCmd) encodeParams() Params { return opts(nil, c.Reason) }

func decodeQuit(p Params) (TypedCommand, bool) {
	if len(p) == 1 && !optPresent(p.Get(1)) {
		return nil, false
	}
	return QuitCmd{Reason: p.Get(1)}, true
}

// SQuitCmd disconnects a server link.
type SQuitCmd struct{ Server, Comment string }

func (c SQuitCmd) Verb() Command        { return CmdSQuit }
func (c SQuitCmd) encodeParams() Params { return Params{c.Server, c.Comment} }

func decodeSQuit(p Params) (TypedCommand, bool) {
	return SQuitCmd{Server: p.Get(1), Comment: p.Get(2)}, true
}

// JoinCmd joins one or more channels. Channels and Keys are the
// comma-separated lists from the wire, kept as single strings.
// "JOIN 0" is the leave-all-channels convention. Some deployments
// accept a third parameter carrying a real name; it is kept when sent.
type JoinCmd struct {
	Channels string
	Keys     string
	RealName string
}

func (c JoinCmd) Verb() Command        { return CmdJoin }
func (c JoinCmd) encodeParams() Params { return opts([]string{c.Channels}, c.Keys, c.RealName) }

func decodeJoin(p Params) (TypedCommand, bool) {
	if !denseOptionals(p) {
		return nil, false
	}
	return JoinCmd{Channels: p.Get(1), Keys: p.Get(2), RealName: p.Get(3)}, true
}

// PartCmd leaves one or more channels.
type PartCmd struct {
	Channels string
	Reason   string
}

func (c PartCmd) Verb() Command        { return CmdPart }
func (c PartCmd) encodeParams() Params { return opts([]string{c.Channels}, c.Reason) }

func decodePart(p Params) (TypedCommand, bool) {
	if len(p) == 2 && !optPresent(p.Get(2)) {
		return nil, false
	}
	return PartCmd{Channels: p.Get(1), Reason: p.Get(2)}, true
}

// ModeCmd views or changes the modes of a channel or user.
//
// Modestring is empty for a plain mode query ("MODE #chan"). Args holds
// everything after the first modestring, including any continuation
// modestrings; interpreting them requires a classifier, so that is
// deferred to the Ops method rather than done at decode time.
type ModeCmd struct {
	Target     string
	Modestring string
	Args       []string
}

func (c ModeCmd) Verb() Command { return CmdMode }
func (c ModeCmd) encodeParams() Params {
	p := Params{c.Target}
	if c.Modestring != "" {
		p = append(p, c.Modestring)
		p = append(p, c.Args...)
	}
	return p
}

// Ops interprets the mode change against a classifier.
// A query with no modestring yields no ops.
func (c ModeCmd) Ops(cl ModeClassifier) ([]ModeOp, error) {
	if c.Modestring == "" {
		return nil, nil
	}
	args := make([]string, 0, 1+len(c.Args))
	args = append(args, c.Modestring)
	args = append(args, c.Args...)
	return ParseModes(cl, args)
}

func decodeMode(p Params) (TypedCommand, bool) {
	if len(p) >= 2 && !optPresent(p.Get(2)) {
		return nil, false
	}
	c := ModeCmd{Target: p.Get(1), Modestring: p.Get(2)}
	if len(p) > 2 {
		c.Args = p[2:]
	}
	return c, true
}

// TopicCmd views or changes a channel topic.
// With Topic empty the command is a query.
type TopicCmd struct {
	Channel string
	Topic   string
}

func (c TopicCmd) Verb() Command        { return CmdTopic }
func (c TopicCmd) encodeParams() Params { return opts([]string{c.Channel}, c.Topic) }

func decodeTopic(p Params) (TypedCommand, bool) {
	// "TOPIC #chan :" clears the topic; that's distinct from a query and
	// has no typed representation
	if len(p) == 2 && !optPresent(p.Get(2)) {
		return nil, false
	}
	return TopicCmd{Channel: p.Get(1), Topic: p.Get(2)}, true
}

// NamesCmd lists the visible users of channels.
type NamesCmd struct {
	Channels string
	Target   string
}

func (c NamesCmd) Verb() Command        { return CmdNames }
func (c NamesCmd) encodeParams() Params { return opts(nil, c.Channels, c.Target) }

func decodeNames(p Params) (TypedCommand, bool) {
	if !denseOptionals(p) {
		return nil, false
	}
	return NamesCmd{Channels: p.Get(1), Target: p.Get(2)}, true
}

// ListCmd lists channels and their topics.
type ListCmd struct {
	Channels string
	Target   string
}

func (c ListCmd) Verb() Command        { return CmdList }
func (c ListCmd) encodeParams() Params { return opts(nil, c.Channels, c.Target) }

func decodeList(p Params) (TypedCommand, bool) {
	if !denseOptionals(p) {
		return nil, false
	}
	return ListCmd{Channels: p.Get(1), Target: p.Get(2)}, true
}

// denseOptionals reports whether every present parameter is non-empty,
// so a chain of optional string fields can represent the list.
func denseOptionals(p Params) bool {
	for _, s := range p {
		if s == "" {
			return false
		}
	}
	return true
}

// InviteCmd invites a user to a channel.
type InviteCmd struct{ Nick, Channel string }

func (c InviteCmd) Verb() Command        { return CmdInvite }
func (c InviteCmd) encodeParams() Params { return Params{c.Nick, c.Channel} }

func decodeInvite(p Params) (TypedCommand, bool) {
	return InviteCmd{Nick: p.Get(1), Channel: p.Get(2)}, true
}

// KickCmd removes a user from a channel.
type KickCmd struct {
	Channel string
	User    string
	Reason  string
}

func (c KickCmd) Verb() Command        { return CmdKick }
func (c KickCmd) encodeParams() Params { return opts([]string{c.Channel, c.User}, c.Reason) }

func decodeKick(p Params) (TypedCommand, bool) {
	if len(p) == 3 && !optPresent(p.Get(3)) {
		return nil, false
	}
	return KickCmd{Channel: p.Get(1), User: p.Get(2), Reason: p.Get(3)}, true
}

// PrivmsgCmd sends a message to a channel or user.
// Target may be a comma-separated list.
type PrivmsgCmd struct{ Target, Text string }

func (c PrivmsgCmd) Verb() Command        { return CmdPrivmsg }
func (c PrivmsgCmd) encodeParams() Params { return Params{c.Target, c.Text} }

func decodePrivmsg(p Params) (TypedCommand, bool) {
	return PrivmsgCmd{Target: p.Get(1), Text: p.Get(2)}, true
}

// NoticeCmd sends a notice to a channel or user.
type NoticeCmd struct{ Target, Text string }

func (c NoticeCmd) Verb() Command        { return CmdNotice }
func (c NoticeCmd) encodeParams() Params { return Params{c.Target, c.Text} }

func decodeNotice(p Params) (TypedCommand, bool) {
	return NoticeCmd{Target: p.Get(1), Text: p.Get(2)}, true
}

// TagMsgCmd sends a message that consists only of tags.
type TagMsgCmd struct{ Target string }

func (c TagMsgCmd) Verb() Command        { return CmdTagMsg }
func (c TagMsgCmd) encodeParams() Params { return Params{c.Target} }

func decodeTagMsg(p Params) (TypedCommand, bool) {
	return TagMsgCmd{Target: p.Get(1)}, true
}

// Server query commands with a single optional target share one shape.

// MOTDCmd requests the message of the day.
type MOTDCmd struct{ Target string }

func (c MOTDCmd) Verb() Command        { return CmdMOTD }
func (c MOTDCmd) encodeParams() Params { return opts(nil, c.Target) }

func decodeMOTD(p Params) (TypedCommand, bool) {
	if len(p) == 1 && !optPresent(p.Get(1)) {
		return nil, false
	}
	return MOTDCmd{Target: p.Get(1)}, true
}

// VersionCmd requests the server version.
type VersionCmd struct{ Target string }

func (c VersionCmd) Verb() Command        { return CmdVersion }
func (c VersionCmd) encodeParams() Params { return opts(nil, c.Target) }

func decodeVersion(p Params) (TypedCommand, bool) {
	if len(p) == 1 && !optPresent(p.Get(1)) {
		return nil, false
	}
	return VersionCmd{Target: p.Get(1)}, true
}

// TimeCmd requests the server's local time.
type TimeCmd struct{ Target string }

func (c TimeCmd) Verb() Command        { return CmdTime }
func (c TimeCmd) encodeParams() Params { return opts(nil, c.Target) }

func decodeTime(p Params) (TypedCommand, bool) {
	if len(p) == 1 && !optPresent(p.Get(1)) {
		return nil, false
	}
	return TimeCmd{Target: p.Get(1)}, true
}

// TraceCmd requests the route to a server.
type TraceCmd struct{ Target string }

func (c TraceCmd) Verb() Command        { return CmdTrace }
func (c TraceCmd) encodeParams() Params { return opts(nil, c.Target) }

func decodeTrace(p Params) (TypedCommand, bool) {
	if len(p) == 1 && !optPresent(p.Get(1)) {
		return nil, false
	}
	return TraceCmd{Target: p.Get(1)}, true
}

// AdminCmd requests administrator information.
type AdminCmd struct{ Target string }

func (c AdminCmd) Verb() Command        { return CmdAdmin }
func (c AdminCmd) encodeParams() Params { return opts(nil, c.Target) }

func decodeAdmin(p Params) (TypedCommand, bool) {
	if len(p) == 1 && !optPresent(p.Get(1)) {
		return nil, false
	}
	return AdminCmd{Target: p.Get(1)}, true
}

// InfoCmd requests server information.
type InfoCmd struct{ Target string }

func (c InfoCmd) Verb() Command        { return CmdInfo }
func (c InfoCmd) encodeParams() Params { return opts(nil, c.Target) }

func decodeInfo(p Params) (TypedCommand, bool) {
	if len(p) == 1 && !optPresent(p.Get(1)) {
		return nil, false
	}
	return InfoCmd{Target: p.Get(1)}, true
}

// LUsersCmd requests network size statistics.
type LUsersCmd struct {
	Mask   string
	Target string
}

func (c LUsersCmd) Verb() Command        { return CmdLUsers }
func (c LUsersCmd) encodeParams() Params { return opts(nil, c.Mask, c.Target) }

func decodeLUsers(p Params) (TypedCommand, bool) {
	if !denseOptionals(p) {
		return nil, false
	}
	return LUsersCmd{Mask: p.Get(1), Target: p.Get(2)}, true
}

// StatsCmd requests server statistics.
type StatsCmd struct {
	Query  string
	Target string
}

func (c StatsCmd) Verb() Command        { return CmdStats }
func (c StatsCmd) encodeParams() Params { return opts(nil, c.Query, c.Target) }

func decodeStats(p Params) (TypedCommand, bool) {
	if !denseOptionals(p) {
		return nil, false
	}
	return StatsCmd{Query: p.Get(1), Target: p.Get(2)}, true
}

// LinksCmd lists servers known to the queried server.
type LinksCmd struct {
	Remote string
	Mask   string
}

func (c LinksCmd) Verb() Command        { return CmdLinks }
func (c LinksCmd) encodeParams() Params { return opts(nil, c.Remote, c.Mask) }

func decodeLinks(p Params) (TypedCommand, bool) {
	if !denseOptionals(p) {
		return nil, false
	}
	return LinksCmd{Remote: p.Get(1), Mask: p.Get(2)}, true
}

// ConnectCmd asks a server to open a link to another server.
type ConnectCmd struct {
	Target string
	Port   string
	Remote string
}

func (c ConnectCmd) Verb() Command        { return CmdConnect }
func (c ConnectCmd) encodeParams() Params { return opts([]string{c.Target, c.Port}, c.Remote) }

func decodeConnect(p Params) (TypedCommand, bool) {
	if len(p) == 3 && !optPresent(p.Get(3)) {
		return nil, false
	}
	return ConnectCmd{Target: p.Get(1), Port: p.Get(2), Remote: p.Get(3)}, true
}

// WhoCmd lists users matching a mask.
// OpersOnly corresponds to the trailing "o" flag.
type WhoCmd struct {
	Mask      string
	OpersOnly bool
}

func (c WhoCmd) Verb() Command { return CmdWho }
func (c WhoCmd) encodeParams() Params {
	p := opts(nil, c.Mask)
	if c.OpersOnly {
		p = append(p, "o")
	}
	return p
}

func decodeWho(p Params) (TypedCommand, bool) {
	if len(p) == 2 && p.Get(2) != "o" {
		return nil, false
	}
	if len(p) >= 1 && !optPresent(p.Get(1)) {
		return nil, false
	}
	return WhoCmd{Mask: p.Get(1), OpersOnly: len(p) == 2}, true
}

// WhoisCmd requests information about users.
// With two parameters the first selects the server to query.
type WhoisCmd struct {
	Target string
	Masks  string
}

func (c WhoisCmd) Verb() Command { return CmdWhoIs }
func (c WhoisCmd) encodeParams() Params {
	if c.Target != "" {
		return Params{c.Target, c.Masks}
	}
	return Params{c.Masks}
}

func decodeWhois(p Params) (TypedCommand, bool) {
	if len(p) == 2 {
		if p.Get(1) == "" || p.Get(2) == "" {
			return nil, false
		}
		return WhoisCmd{Target: p.Get(1), Masks: p.Get(2)}, true
	}
	return WhoisCmd{Masks: p.Get(1)}, true
}

// WhowasCmd requests information about a nickname that no longer exists.
type WhowasCmd struct {
	Nick   string
	Count  string
	Target string
}

func (c WhowasCmd) Verb() Command        { return CmdWhoWas }
func (c WhowasCmd) encodeParams() Params { return opts([]string{c.Nick}, c.Count, c.Target) }

func decodeWhowas(p Params) (TypedCommand, bool) {
	if !denseOptionals(p[1:]) {
		return nil, false
	}
	return WhowasCmd{Nick: p.Get(1), Count: p.Get(2), Target: p.Get(3)}, true
}

// KillCmd forcibly closes a client's connection.
type KillCmd struct{ Nick, Comment string }

func (c KillCmd) Verb() Command        { return CmdKill }
func (c KillCmd) encodeParams() Params { return Params{c.Nick, c.Comment} }

func decodeKill(p Params) (TypedCommand, bool) {
	return KillCmd{Nick: p.Get(1), Comment: p.Get(2)}, true
}

// PingCmd tests liveness. Token is echoed back in the PONG.
type PingCmd struct {
	Token  string
	Target string
}

func (c PingCmd) Verb() Command        { return CmdPing }
func (c PingCmd) encodeParams() Params { return opts([]string{c.Token}, c.Target) }

func decodePing(p Params) (TypedCommand, bool) {
	if len(p) == 2 && !optPresent(p.Get(2)) {
		return nil, false
	}
	return PingCmd{Token: p.Get(1), Target: p.Get(2)}, true
}

// PongCmd answers a PING.
type PongCmd struct {
	Token  string
	Target string
}

func (c PongCmd) Verb() Command        { return CmdPong }
func (c PongCmd) encodeParams() Params { return opts([]string{c.Token}, c.Target) }

func decodePong(p Params) (TypedCommand, bool) {
	if len(p) == 2 && !optPresent(p.Get(2)) {
		return nil, false
	}
	return PongCmd{Token: p.Get(1), Target: p.Get(2)}, true
}

// ErrorCmd reports a fatal connection error; servers send it before
// closing the link.
type ErrorCmd struct{ Message string }

func (c ErrorCmd) Verb() Command        { return CmdError }
func (c ErrorCmd) encodeParams() Params { return Params{c.Message} }

func decodeError(p Params) (TypedCommand, bool) {
	return ErrorCmd{Message: p.Get(1)}, true
}

// AwayCmd sets or clears an away message.
// An empty Message clears away status.
type AwayCmd struct{ Message string }

func (c AwayCmd) Verb() Command        { return CmdAway }
func (c AwayCmd) encodeParams() Params { return opts(nil, c.Message) }

func decodeAway(p Params) (TypedCommand, bool) {
	if len(p) == 1 && !optPresent(p.Get(1)) {
		return nil, false
	}
	return AwayCmd{Message: p.Get(1)}, true
}

// RehashCmd asks the server to reload its configuration.
type RehashCmd struct{}

func (RehashCmd) Verb() Command        { return CmdRehash }
func (RehashCmd) encodeParams() Params { return nil }

func decodeRehash(Params) (TypedCommand, bool) { return RehashCmd{}, true }

// DieCmd asks the server to shut down.
type DieCmd struct{}

func (DieCmd) Verb() Command        { return CmdDie }
func (DieCmd) encodeParams() Params { return nil }

func decodeDie(Params) (TypedCommand, bool) { return DieCmd{}, true }

// RestartCmd asks the server to restart.
type RestartCmd struct{}

func (RestartCmd) Verb() Command        { return CmdRestart }
func (RestartCmd) encodeParams() Params { return nil }

func decodeRestart(Params) (TypedCommand, bool) { return RestartCmd{}, true }

// WallopsCmd broadcasts to users with mode +w.
type WallopsCmd struct{ Text string }

func (c WallopsCmd) Verb() Command        { return CmdWAllOps }
func (c WallopsCmd) encodeParams() Params { return Params{c.Text} }

func decodeWallops(p Params) (TypedCommand, bool) {
	return WallopsCmd{Text: p.Get(1)}, true
}

// UserhostCmd requests connection details for up to five nicknames.
type UserhostCmd struct{ Nicks []string }

func (c UserhostCmd) Verb() Command        { return CmdUserHost }
func (c UserhostCmd) encodeParams() Params { return Params(c.Nicks) }

func decodeUserhost(p Params) (TypedCommand, bool) {
	return UserhostCmd{Nicks: p}, true
}

// IsOnCmd asks which of the given nicknames are currently connected.
type IsOnCmd struct{ Nicks []string }

func (c IsOnCmd) Verb() Command        { return CmdIsOn }
func (c IsOnCmd) encodeParams() Params { return Params(c.Nicks) }

func decodeIsOn(p Params) (TypedCommand, bool) {
	return IsOnCmd{Nicks: p}, true
}

// capSubcommands are the defined CAP subcommands.
// https://ircv3.net/specs/extensions/capability-negotiation.html
var capSubcommands = map[string]bool{
	"LS":   true,
	"LIST": true,
	"REQ":  true,
	"ACK":  true,
	"NAK":  true,
	"END":  true,
	"NEW":  true,
	"DEL":  true,
}

// CapCmd is one step of capability negotiation.
//
// Client-sent CAP has no target; server-sent CAP addresses the client's
// nick (or "*" before registration) ahead of the subcommand.
type CapCmd struct {
	Target     string
	Subcommand string
	Args       []string
}

func (c CapCmd) Verb() Command { return CmdCap }
func (c CapCmd) encodeParams() Params {
	p := opts(nil, c.Target)
	p = append(p, c.Subcommand)
	return append(p, c.Args...)
}

func decodeCap(p Params) (TypedCommand, bool) {
	if capSubcommands[p.Get(1)] {
		c := CapCmd{Subcommand: p.Get(1)}
		if len(p) > 1 {
			c.Args = p[1:]
		}
		return c, true
	}
	if len(p) >= 2 && optPresent(p.Get(1)) && capSubcommands[p.Get(2)] {
		c := CapCmd{Target: p.Get(1), Subcommand: p.Get(2)}
		if len(p) > 2 {
			c.Args = p[2:]
		}
		return c, true
	}
	return nil, false
}

// AuthenticateCmd is one step of a SASL exchange. Payload is either a
// mechanism name, a chunk of base64 data, "+" for an empty chunk, or "*"
// to abort.
type AuthenticateCmd struct{ Payload string }

func (c AuthenticateCmd) Verb() Command        { return CmdAuthenticate }
func (c AuthenticateCmd) encodeParams() Params { return Params{c.Payload} }

func decodeAuthenticate(p Params) (TypedCommand, bool) {
	return AuthenticateCmd{Payload: p.Get(1)}, true
}

// AccountCmd notifies that the sender logged in or out.
// Account is "*" for a logout.
type AccountCmd struct{ Account string }

func (c AccountCmd) Verb() Command        { return CmdAccount }
func (c AccountCmd) encodeParams() Params { return Params{c.Account} }

func decodeAccount(p Params) (TypedCommand, bool) {
	return AccountCmd{Account: p.Get(1)}, true
}

// MonitorCmd manipulates the server-side notify list. Subcommand is one
// of "+", "-", "C", "L", or "S"; Targets is the comma-separated nickname
// list for "+" and "-".
type MonitorCmd struct {
	Subcommand string
	Targets    string
}

func (c MonitorCmd) Verb() Command        { return CmdMonitor }
func (c MonitorCmd) encodeParams() Params { return opts([]string{c.Subcommand}, c.Targets) }

func decodeMonitor(p Params) (TypedCommand, bool) {
	switch p.Get(1) {
	case "+", "-":
		if !optPresent(p.Get(2)) {
			return nil, false
		}
	case "C", "L", "S":
		if len(p) != 1 {
			return nil, false
		}
	default:
		return nil, false
	}
	return MonitorCmd{Subcommand: p.Get(1), Targets: p.Get(2)}, true
}

// BatchCmd opens or closes a message batch. Ref keeps its '+' or '-'
// sentinel; Type and Params are only present on the opening command.
type BatchCmd struct {
	Ref    string
	Type   string
	Params []string
}

func (c BatchCmd) Verb() Command { return CmdBatch }
func (c BatchCmd) encodeParams() Params {
	p := opts([]string{c.Ref}, c.Type)
	return append(p, c.Params...)
}

// Start reports whether the command opens a batch.
func (c BatchCmd) Start() bool {
	return strings.HasPrefix(c.Ref, "+")
}

// Reference returns the batch reference without its sentinel.
func (c BatchCmd) Reference() string {
	return strings.TrimLeft(c.Ref, "+-")
}

func decodeBatch(p Params) (TypedCommand, bool) {
	ref := p.Get(1)
	if len(ref) < 2 || (ref[0] != '+' && ref[0] != '-') {
		return nil, false
	}
	if ref[0] == '-' && len(p) > 1 {
		return nil, false
	}
	if len(p) >= 2 && !optPresent(p.Get(2)) {
		return nil, false
	}
	c := BatchCmd{Ref: ref, Type: p.Get(2)}
	if len(p) > 2 {
		c.Params = p[2:]
	}
	return c, true
}

// ChgHostCmd notifies that a user's username or hostname changed.
type ChgHostCmd struct{ User, Host string }

func (c ChgHostCmd) Verb() Command        { return CmdChgHost }
func (c ChgHostCmd) encodeParams() Params { return Params{c.User, c.Host} }

func decodeChgHost(p Params) (TypedCommand, bool) {
	return ChgHostCmd{User: p.Get(1), Host: p.Get(2)}, true
}

// SetNameCmd changes the sender's realname.
type SetNameCmd struct{ Realname string }

func (c SetNameCmd) Verb() Command        { return CmdSetName }
func (c SetNameCmd) encodeParams() Params { return Params{c.Realname} }

func decodeSetName(p Params) (TypedCommand, bool) {
	return SetNameCmd{Realname: p.Get(1)}, true
}

// chatHistorySubcommands maps each CHATHISTORY subcommand to the number
// of message references it takes. TARGETS takes two references and no
// target, which decodeChatHistory handles separately.
var chatHistorySubcommands = map[string]int{
	"LATEST":  1,
	"BEFORE":  1,
	"AFTER":   1,
	"AROUND":  1,
	"BETWEEN": 2,
	"TARGETS": 2,
}

// ChatHistoryCmd requests playback of past messages.
//
// References are kept in their wire form: "timestamp=...", "msgid=...",
// or "*" where the subcommand allows it. Ref2 is only used by BETWEEN
// and TARGETS; Target is empty for TARGETS.
type ChatHistoryCmd struct {
	Subcommand string
	Target     string
	Ref1       string
	Ref2       string
	Limit      int
}

func (c ChatHistoryCmd) Verb() Command { return CmdChatHistory }
func (c ChatHistoryCmd) encodeParams() Params {
	p := Params{c.Subcommand}
	if c.Subcommand != "TARGETS" {
		p = append(p, c.Target)
	}
	p = append(p, c.Ref1)
	if c.Ref2 != "" {
		p = append(p, c.Ref2)
	}
	return append(p, strconv.Itoa(c.Limit))
}

func decodeChatHistory(p Params) (TypedCommand, bool) {
	sub := p.Get(1)
	refs, ok := chatHistorySubcommands[sub]
	if !ok {
		return nil, false
	}
	want := 2 + refs // subcommand, target, refs, limit
	if sub != "TARGETS" {
		want++
	}
	if len(p) != want {
		return nil, false
	}
	limitParam := p.Get(len(p))
	limit, err := strconv.Atoi(limitParam)
	// a canonical limit keeps Encode an exact inverse
	if err != nil || limit < 0 || strconv.Itoa(limit) != limitParam {
		return nil, false
	}
	c := ChatHistoryCmd{Subcommand: sub, Limit: limit}
	rest := p[1 : len(p)-1]
	if sub != "TARGETS" {
		c.Target = rest[0]
		rest = rest[1:]
	}
	c.Ref1 = rest[0]
	if refs == 2 {
		c.Ref2 = rest[1]
		if c.Ref2 == "" {
			return nil, false
		}
	}
	if !historyRef(c.Ref1) || (c.Ref2 != "" && !historyRef(c.Ref2)) {
		return nil, false
	}
	return c, true
}

// historyRef reports whether s is a valid message reference.
func historyRef(s string) bool {
	return s == "*" ||
		strings.HasPrefix(s, "timestamp=") ||
		strings.HasPrefix(s, "msgid=")
}

// StandardReplyCmd is a FAIL, WARN, or NOTE standard reply.
// https://ircv3.net/specs/extensions/standard-replies
type StandardReplyCmd struct {

	// Severity is CmdFail, CmdWarn, or CmdNote.
	Severity Command

	// Command names the command the reply concerns, or "*".
	Command string

	// Code is the machine-readable code, e.g. "ACCOUNT_REQUIRED".
	Code string

	// Context holds any middle parameters between the code and
	// the description.
	Context []string

	// Description is the human-readable text.
	Description string
}

func (c StandardReplyCmd) Verb() Command { return c.Severity }
func (c StandardReplyCmd) encodeParams() Params {
	p := Params{c.Command, c.Code}
	p = append(p, c.Context...)
	return append(p, c.Description)
}

func decodeStandardReply(severity Command) func(Params) (TypedCommand, bool) {
	return func(p Params) (TypedCommand, bool) {
		c := StandardReplyCmd{
			Severity:    severity,
			Command:     p.Get(1),
			Code:        p.Get(2),
			Description: p.Get(len(p)),
		}
		if len(p) > 3 {
			c.Context = p[2 : len(p)-1]
		}
		return c, true
	}
}
