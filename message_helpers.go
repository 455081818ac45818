package ircwire

import (
	"fmt"
	"strings"
)

// Text returns the free-form text portion of a message for the well-known (named) IRC commands.
// An error is returned if the method is called for unsupported message types.
// If err is not nil, then Text will contain the entire parameter list joined together as one string.
// However, for commands that return an error, it may be better to call Params.Get directly.
//
// Supported commands include PRIVMSG, NOTICE, PART, QUIT, ERROR, and more.
//
// In the case of PART and KICK, Text contains the <reason> message parameter.
//
// The error may be discarded without checking
// If it's known that the message will always be a supported command,
// for example when used inside a handler that is only ever called for PRIVMSG events,
// then it is safe to discard err.
// Errors are only returned to prevent the method from returning unexpected results to callers that assume it will work for all message types.
func (m *Message) Text() (string, error) {
	switch m.Command {
	case CmdQuit, CmdError:
		return m.Params.Get(1), nil
	case CmdPrivmsg, CmdNotice, CTCPAction, CmdTopic, CmdPart, CmdMode:
		return m.Params.Get(2), nil
	case CmdKick:
		return m.Params.Get(3), nil

	default:
		return strings.Join(m.Params, " "), fmt.Errorf("text: command %s is not supported", m.Command)
	}
}

// Target returns the intended target of a message.
// In the case of query messages, Target will equal our client's nickname.
// For channel messages, Target will usually be the name of the channel a message was sent to.
// If target is a channel,
// it may be prefixed with one or more channel membership prefixes (e.g. '@', '+' for Op, Voice)
// on servers that support the STATUSMSG token of RPL_ISUPPORT.
func (m *Message) Target() (string, error) {

	switch m.Command {
	case CmdPrivmsg, CmdNotice, CmdTagMsg, CTCPAction, CmdInvite, CmdTopic, CmdKick, CmdPart, CmdMode:
		return m.Params.Get(1), nil
	default:
		return "", fmt.Errorf("%s: target method not supported", m.Command)
	}
}

// Chan returns the channel a message applies to.
// In the case of query messages, Chan will return an empty string.
// If the message target was a channel name prefixed with membership prefixes ('@', '+', etc.) the prefixes will be stripped.
func (m *Message) Chan() (string, error) {
	var target string
	switch m.Command {
	case CmdPrivmsg, CmdNotice, CmdTagMsg, CTCPAction, CmdJoin, CmdTopic, CmdKick, CmdPart:
		target = m.Params.Get(1)
	case CmdInvite:
		target = m.Params.Get(2)
	default:
		return "", fmt.Errorf("%s: chan method not supported", m.Command)
	}
	return channelName(target), nil
}

// channelName strips leading status prefixes from a message target and
// returns the channel name, or "" when the target isn't a channel.
//
// The prefix sets are the common defaults. Networks can advertise
// others through STATUSMSG and CHANTYPES; targets using nonstandard
// prefixes should be resolved against the live ISupport instead.
func channelName(target string) string {
	trimmed := strings.TrimLeft(target, "@%+")
	if trimmed == "" || strings.IndexByte("#&", trimmed[0]) < 0 {
		return ""
	}
	return trimmed
}
