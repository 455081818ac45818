package ircwire

import (
	"bytes"
	"errors"
	"testing"
)

func parseView(t *testing.T, line string) *MessageView {
	t.Helper()
	v := &MessageView{}
	if err := ParseView([]byte(line), v); err != nil {
		t.Fatalf("ParseView(%q): %v", line, err)
	}
	return v
}

func TestViewAccessors(t *testing.T) {
	v := parseView(t, "@time=2023-04-05T10:30:45.123Z;+draft/reply=abc :WiZ!jto@tolsun.example.com PRIVMSG #chat :Hello, world!\r\n")

	if v.TagCount() != 2 {
		t.Fatalf("TagCount() = %d", v.TagCount())
	}
	key, raw := v.TagAt(0)
	if string(key) != "time" || string(raw) != "2023-04-05T10:30:45.123Z" {
		t.Errorf("TagAt(0) = %q, %q", key, raw)
	}
	if raw, ok := v.RawTag("+draft/reply"); !ok || string(raw) != "abc" {
		t.Errorf("RawTag(+draft/reply) = %q, %v", raw, ok)
	}
	if _, ok := v.RawTag("missing"); ok {
		t.Error("RawTag reported a key that was never present")
	}
	if string(v.Prefix()) != "WiZ!jto@tolsun.example.com" {
		t.Errorf("Prefix() = %q", v.Prefix())
	}
	if string(v.Command()) != "PRIVMSG" {
		t.Errorf("Command() = %q", v.Command())
	}
	if v.ParamCount() != 2 {
		t.Fatalf("ParamCount() = %d", v.ParamCount())
	}
	if string(v.Param(0)) != "#chat" || string(v.Param(1)) != "Hello, world!" {
		t.Errorf("params = %q, %q", v.Param(0), v.Param(1))
	}
	if v.Param(2) != nil || v.Param(-1) != nil {
		t.Error("out-of-range Param should be nil")
	}
}

func TestViewDanglingSpace(t *testing.T) {
	v := parseView(t, "PING \r\n")
	if v.ParamCount() != 0 {
		t.Errorf("ParamCount() = %d; a dangling space is not a parameter", v.ParamCount())
	}

	// only the ":" marker makes an empty parameter explicit
	v = parseView(t, "PING :\r\n")
	if v.ParamCount() != 1 || string(v.Param(0)) != "" {
		t.Errorf("explicit empty trailing: %d params, %q", v.ParamCount(), v.Param(0))
	}
}

func TestViewTagUnescapes(t *testing.T) {
	v := parseView(t, `@msg=hello\sthere PING`)
	if raw, _ := v.RawTag("msg"); string(raw) != `hello\sthere` {
		t.Errorf("RawTag left the wire form alone, got %q", raw)
	}
	if got, _ := v.Tag("msg"); got != "hello there" {
		t.Errorf("Tag(msg) = %q", got)
	}
}

func TestViewWireTo(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{{
		"already canonical",
		"@time=now :nick!user@host PRIVMSG #chat :hi there\r\n",
		"@time=now :nick!user@host PRIVMSG #chat :hi there\r\n",
	}, {
		"lowercase verb is uppercased",
		"privmsg #chat :hi\r\n",
		"PRIVMSG #chat hi\r\n",
	}, {
		"numerics pass through",
		":irc.example.com 001 nick :Welcome\r\n",
		":irc.example.com 001 nick Welcome\r\n",
	}, {
		"redundant trailing marker dropped",
		"PING :chat.example.com\r\n",
		"PING chat.example.com\r\n",
	}, {
		"extra spaces collapse",
		"PRIVMSG   #chat   ::)\r\n",
		"PRIVMSG #chat ::)\r\n",
	}, {
		"duplicate tags collapse to one",
		"@k=1;a=x;k=2 PING\r\n",
		"@k=2;a=x PING\r\n",
	}, {
		"bad escapes are re-canonicalized",
		`@v=what\x PING` + "\r\n",
		"@v=whatx PING\r\n",
	}, {
		"empty trailing survives",
		"PRIVMSG #chat :\r\n",
		"PRIVMSG #chat :\r\n",
	}, {
		"dangling space is not an empty parameter",
		"PING \r\n",
		"PING\r\n",
	}, {
		"dangling space after parameters",
		"PRIVMSG #chat \r\n",
		"PRIVMSG #chat\r\n",
	}}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := parseView(t, tt.in)
			var buf bytes.Buffer
			if err := v.WireTo(&buf); err != nil {
				t.Fatalf("WireTo: %v", err)
			}
			if got := buf.String(); got != tt.want {
				t.Errorf("WireTo(%q) = %q, wanted %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestViewPromoteSerializesIdentically(t *testing.T) {
	lines := []string{
		"@time=2023-04-05T10:30:45.123Z;msgid=abc :WiZ!jto@tolsun.example.com PRIVMSG #chat :Hello, world!\r\n",
		`@note=semi\:colon\sand\sspace PING` + "\r\n",
		":irc.example.com 005 nick NETWORK=Example :are supported by this server\r\n",
		"@k=1;a=x;k=2 PING\r\n",
		`@v=trailing\ PING` + "\r\n",
		"MODE #chat +ov alice bob\r\n",
		"PING \r\n",
	}
	for _, line := range lines {
		v := parseView(t, line)
		var viewWire bytes.Buffer
		if err := v.WireTo(&viewWire); err != nil {
			t.Fatalf("view WireTo(%q): %v", line, err)
		}
		promoted, err := v.Promote().MarshalText()
		if err != nil {
			t.Fatalf("promoted MarshalText(%q): %v", line, err)
		}
		if !bytes.Equal(viewWire.Bytes(), promoted) {
			t.Errorf("view and promotion disagree for %q:\n view: %q\nowned: %q", line, viewWire.Bytes(), promoted)
		}
	}
}

func TestViewPromote(t *testing.T) {
	v := parseView(t, `@account=jilles;note=a\sb :WiZ!jto@tolsun.example.com PRIVMSG #chat :hi`)
	m := v.Promote()

	if m.Command != CmdPrivmsg {
		t.Errorf("Command = %q", m.Command)
	}
	if m.Source.Nick != "WiZ" || m.Source.User != "jto" || m.Source.Host != "tolsun.example.com" {
		t.Errorf("Source = %+v", m.Source)
	}
	if got := m.Tags.Get("note"); got != "a b" {
		t.Errorf("promoted tag value = %q, wanted it unescaped", got)
	}
	if m.Tags.Get("account") != "jilles" {
		t.Errorf("Tags = %#v", m.Tags)
	}
	if m.Params.Get(1) != "#chat" || m.Params.Get(2) != "hi" {
		t.Errorf("Params = %#v", m.Params)
	}
}

func TestViewPromoteOutlivesBuffer(t *testing.T) {
	line := []byte(":nick!user@host PRIVMSG #chat :borrowed")
	v := &MessageView{}
	if err := ParseView(line, v); err != nil {
		t.Fatal(err)
	}
	m := v.Promote()
	for i := range line {
		line[i] = 'x'
	}
	if m.Source.Nick != "nick" || m.Params.Get(2) != "borrowed" {
		t.Errorf("promotion aliased the parse buffer: %+v", m)
	}
}

func TestViewReuse(t *testing.T) {
	v := &MessageView{}
	if err := ParseView([]byte("@a=1;b=2 :nick PRIVMSG #chat :one"), v); err != nil {
		t.Fatal(err)
	}
	if err := ParseView([]byte("PING :two"), v); err != nil {
		t.Fatal(err)
	}
	if v.TagCount() != 0 {
		t.Errorf("stale tags survived reuse: %d", v.TagCount())
	}
	if v.Prefix() != nil {
		t.Errorf("stale prefix survived reuse: %q", v.Prefix())
	}
	if string(v.Command()) != "PING" || v.ParamCount() != 1 {
		t.Errorf("reused view parsed wrong: %q %d", v.Command(), v.ParamCount())
	}
}

func TestMarshalBadParam(t *testing.T) {
	tests := []*Message{
		NewMessage("PRIVMSG", "has space", "#chat"),
		NewMessage("PRIVMSG", "", "#chat"),
		NewMessage("PRIVMSG", ":colon", "#chat"),
	}
	for _, m := range tests {
		if _, err := m.MarshalText(); !errors.Is(err, ErrBadParam) {
			t.Errorf("MarshalText(%v) = %v, wanted ErrBadParam", m.Params, err)
		}
	}

	ok := NewMessage("PRIVMSG", "#chat", "trailing is fine : with colons")
	if _, err := ok.MarshalText(); err != nil {
		t.Errorf("a marker-needing final parameter should serialize: %v", err)
	}
}

func TestMessageMarshalText(t *testing.T) {
	m := NewMessage("privmsg", "#chat", "hello world")
	m.WithTag("time", "now").WithPrefix(Prefix{Nick: "nick", User: "user", Host: "host"})

	b, err := m.MarshalText()
	if err != nil {
		t.Fatal(err)
	}
	want := "@time=now :nick!user@host PRIVMSG #chat :hello world\r\n"
	if string(b) != want {
		t.Errorf("MarshalText = %q, wanted %q", b, want)
	}
}

func TestMessageUnmarshalText(t *testing.T) {
	var m Message
	if err := m.UnmarshalText([]byte(":nick PRIVMSG #chat :hi\r\n")); err != nil {
		t.Fatal(err)
	}
	if m.Source.Nick != "nick" || m.Command != CmdPrivmsg || m.Params.Get(2) != "hi" {
		t.Errorf("UnmarshalText produced %+v", m)
	}

	if err := m.UnmarshalText([]byte("\r\n")); err == nil {
		t.Error("UnmarshalText should reject an empty line")
	}
}
