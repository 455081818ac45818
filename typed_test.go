package ircwire

import (
	"reflect"
	"testing"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name string
		msg  *Message
		want TypedCommand
	}{{
		"privmsg",
		NewMessage("PRIVMSG", "#chat", "hello"),
		PrivmsgCmd{Target: "#chat", Text: "hello"},
	}, {
		"lowercase verb",
		NewMessage("privmsg", "#chat", "hello"),
		PrivmsgCmd{Target: "#chat", Text: "hello"},
	}, {
		"join without keys",
		NewMessage("JOIN", "#a,#b"),
		JoinCmd{Channels: "#a,#b"},
	}, {
		"join with keys",
		NewMessage("JOIN", "#a,#b", "key1,key2"),
		JoinCmd{Channels: "#a,#b", Keys: "key1,key2"},
	}, {
		"join with a real name",
		NewMessage("JOIN", "#a", "key", "Wiz Ard"),
		JoinCmd{Channels: "#a", Keys: "key", RealName: "Wiz Ard"},
	}, {
		"quit without reason",
		NewMessage("QUIT"),
		QuitCmd{},
	}, {
		"quit with reason",
		NewMessage("QUIT", "bye"),
		QuitCmd{Reason: "bye"},
	}, {
		"kick with reason",
		NewMessage("KICK", "#chat", "troll", "begone"),
		KickCmd{Channel: "#chat", User: "troll", Reason: "begone"},
	}, {
		"mode query",
		NewMessage("MODE", "#chat"),
		ModeCmd{Target: "#chat"},
	}, {
		"mode change",
		NewMessage("MODE", "#chat", "+ov", "alice", "bob"),
		ModeCmd{Target: "#chat", Modestring: "+ov", Args: []string{"alice", "bob"}},
	}, {
		"whois with server target",
		NewMessage("WHOIS", "irc.example.com", "WiZ"),
		WhoisCmd{Target: "irc.example.com", Masks: "WiZ"},
	}, {
		"who with opers flag",
		NewMessage("WHO", "*.example.com", "o"),
		WhoCmd{Mask: "*.example.com", OpersOnly: true},
	}, {
		"client cap has no target",
		NewMessage("CAP", "LS", "302"),
		CapCmd{Subcommand: "LS", Args: []string{"302"}},
	}, {
		"server cap addresses the client",
		NewMessage("CAP", "*", "ACK", "sasl"),
		CapCmd{Target: "*", Subcommand: "ACK", Args: []string{"sasl"}},
	}, {
		"batch open",
		NewMessage("BATCH", "+ref", "chathistory", "#chat"),
		BatchCmd{Ref: "+ref", Type: "chathistory", Params: []string{"#chat"}},
	}, {
		"batch close",
		NewMessage("BATCH", "-ref"),
		BatchCmd{Ref: "-ref"},
	}, {
		"monitor add",
		NewMessage("MONITOR", "+", "alice,bob"),
		MonitorCmd{Subcommand: "+", Targets: "alice,bob"},
	}, {
		"chathistory latest",
		NewMessage("CHATHISTORY", "LATEST", "#chat", "*", "50"),
		ChatHistoryCmd{Subcommand: "LATEST", Target: "#chat", Ref1: "*", Limit: 50},
	}, {
		"chathistory between",
		NewMessage("CHATHISTORY", "BETWEEN", "#chat", "timestamp=2023-04-05T10:00:00.000Z", "msgid=abc", "100"),
		ChatHistoryCmd{
			Subcommand: "BETWEEN",
			Target:     "#chat",
			Ref1:       "timestamp=2023-04-05T10:00:00.000Z",
			Ref2:       "msgid=abc",
			Limit:      100,
		},
	}, {
		"fail standard reply with context",
		NewMessage("FAIL", "REHASH", "CONFIG_BAD", "section", "Could not reload"),
		StandardReplyCmd{
			Severity:    CmdFail,
			Command:     "REHASH",
			Code:        "CONFIG_BAD",
			Context:     []string{"section"},
			Description: "Could not reload",
		},
	}}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Decode(tt.msg)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Decode(%v %v) = %#v, wanted %#v", tt.msg.Command, tt.msg.Params, got, tt.want)
			}
		})
	}
}

func TestDecodeNumeric(t *testing.T) {
	m := NewMessage("001", "nick", "Welcome to the network")
	got := Decode(m)
	n, ok := got.(Numeric)
	if !ok {
		t.Fatalf("Decode(001) = %#v, wanted a Numeric", got)
	}
	if n.Code != NumWelcome || n.Params.Get(1) != "nick" {
		t.Errorf("numeric = %#v", n)
	}
	if n.Verb() != "001" {
		t.Errorf("Verb() = %q", n.Verb())
	}
}

func TestDecodeRawFallback(t *testing.T) {
	tests := []struct {
		name string
		msg  *Message
	}{
		{"unknown verb", NewMessage("FROBNICATE", "x")},
		{"privmsg with too few parameters", NewMessage("PRIVMSG", "#chat")},
		{"user with too many parameters", NewMessage("USER", "a", "b", "c", "d", "e")},
		{"explicitly empty trailing", NewMessage("QUIT", "")},
		{"chathistory with a bad limit", NewMessage("CHATHISTORY", "LATEST", "#chat", "*", "050")},
		{"chathistory with a bad reference", NewMessage("CHATHISTORY", "LATEST", "#chat", "yesterday", "50")},
		{"monitor clear with extra arg", NewMessage("MONITOR", "C", "alice")},
		{"batch close with extra args", NewMessage("BATCH", "-ref", "chathistory")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Decode(tt.msg)
			raw, ok := got.(Raw)
			if !ok {
				t.Fatalf("Decode = %#v, wanted Raw", got)
			}
			if raw.Command != tt.msg.Command || !reflect.DeepEqual(raw.Params, tt.msg.Params) {
				t.Errorf("Raw altered the message: %#v", raw)
			}
		})
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	msgs := []*Message{
		NewMessage("PRIVMSG", "#chat", "hello world"),
		NewMessage("JOIN", "#a,#b", "k1,k2"),
		NewMessage("QUIT", "bye"),
		NewMessage("QUIT"),
		NewMessage("MODE", "#chat", "+ov", "alice", "bob"),
		NewMessage("MODE", "#chat"),
		NewMessage("WHOIS", "irc.example.com", "WiZ"),
		NewMessage("WHO", "*.fi", "o"),
		NewMessage("CAP", "*", "ACK", "sasl"),
		NewMessage("BATCH", "+ref", "netsplit", "irc.hub", "irc.leaf"),
		NewMessage("CHATHISTORY", "BETWEEN", "#chat", "msgid=a", "msgid=b", "25"),
		NewMessage("FAIL", "ACC", "REG_INVALID_CALLBACK", "text@example.com", "Use a valid address"),
		NewMessage("USERHOST", "a", "b", "c"),
		NewMessage("FROBNICATE", "kept", "as is"),
	}
	for _, m := range msgs {
		out := Encode(Decode(m))
		// a nil and an empty parameter list are the same (absent) parameters
		if out.Command != m.Command || len(out.Params) != len(m.Params) ||
			(len(m.Params) > 0 && !reflect.DeepEqual(out.Params, m.Params)) {
			t.Errorf("round trip of %v %v produced %v %v", m.Command, m.Params, out.Command, out.Params)
		}
	}
}

func TestModeCmdOps(t *testing.T) {
	tc := Decode(NewMessage("MODE", "#chat", "+o-v", "alice", "bob"))
	mode, ok := tc.(ModeCmd)
	if !ok {
		t.Fatalf("Decode = %#v", tc)
	}
	ops, err := mode.Ops(ChannelModes)
	if err != nil {
		t.Fatal(err)
	}
	want := []ModeOp{{'+', 'o', "alice"}, {'-', 'v', "bob"}}
	if !reflect.DeepEqual(ops, want) {
		t.Errorf("Ops = %+v, wanted %+v", ops, want)
	}

	query := ModeCmd{Target: "#chat"}
	if ops, err := query.Ops(ChannelModes); err != nil || ops != nil {
		t.Errorf("a query should yield no ops, got %v, %v", ops, err)
	}
}

func TestBatchCmdHelpers(t *testing.T) {
	open := BatchCmd{Ref: "+yXNAbvnRHTRBv", Type: "netsplit"}
	if !open.Start() || open.Reference() != "yXNAbvnRHTRBv" {
		t.Errorf("open batch: Start=%v Reference=%q", open.Start(), open.Reference())
	}
	closing := BatchCmd{Ref: "-yXNAbvnRHTRBv"}
	if closing.Start() || closing.Reference() != "yXNAbvnRHTRBv" {
		t.Errorf("closing batch: Start=%v Reference=%q", closing.Start(), closing.Reference())
	}
}
