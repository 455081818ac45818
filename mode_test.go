package ircwire

import (
	"errors"
	"testing"
)

func TestParseModes(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want []ModeOp
	}{{
		"no arguments",
		nil,
		nil,
	}, {
		"single flag",
		[]string{"+m"},
		[]ModeOp{{'+', 'm', ""}},
	}, {
		"implicit leading plus",
		[]string{"m"},
		[]ModeOp{{'+', 'm', ""}},
	}, {
		"sign carries across letters",
		[]string{"+mnt"},
		[]ModeOp{{'+', 'm', ""}, {'+', 'n', ""}, {'+', 't', ""}},
	}, {
		"mixed signs",
		[]string{"+o-v", "alice", "bob"},
		[]ModeOp{{'+', 'o', "alice"}, {'-', 'v', "bob"}},
	}, {
		"key takes argument both directions",
		[]string{"-k", "hunter2"},
		[]ModeOp{{'-', 'k', "hunter2"}},
	}, {
		"limit argument only on set",
		[]string{"+l", "50"},
		[]ModeOp{{'+', 'l', "50"}},
	}, {
		"limit removal takes no argument",
		[]string{"-l"},
		[]ModeOp{{'-', 'l', ""}},
	}, {
		"ban with mask",
		[]string{"+b", "*!*@spam.example.com"},
		[]ModeOp{{'+', 'b', "*!*@spam.example.com"}},
	}, {
		"ban without mask queries the list",
		[]string{"+b"},
		[]ModeOp{{'+', 'b', ""}},
	}, {
		"modestring continuation",
		[]string{"+o", "-v", "alice", "bob"},
		[]ModeOp{{'+', 'o', "alice"}, {'-', 'v', "bob"}},
	}, {
		"everything at once",
		[]string{"+beI-k+l", "a!b@c", "d!e@f", "g!h@i", "oldkey", "25"},
		[]ModeOp{
			{'+', 'b', "a!b@c"},
			{'+', 'e', "d!e@f"},
			{'+', 'I', "g!h@i"},
			{'-', 'k', "oldkey"},
			{'+', 'l', "25"},
		},
	}}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ops, err := ParseModes(ChannelModes, tt.args)
			if err != nil {
				t.Fatalf("ParseModes(%v): %v", tt.args, err)
			}
			if len(ops) != len(tt.want) {
				t.Fatalf("ParseModes(%v) = %v, wanted %v", tt.args, ops, tt.want)
			}
			for i := range tt.want {
				if ops[i] != tt.want[i] {
					t.Errorf("op %d: got %+v, wanted %+v", i, ops[i], tt.want[i])
				}
			}
		})
	}
}

func TestParseModesErrors(t *testing.T) {
	strict := ChannelModes
	strict.Strict = true

	tests := []struct {
		name       string
		classifier ModeClassifier
		args       []string
	}{
		{"missing prefix argument", ChannelModes, []string{"+o"}},
		{"missing key argument", ChannelModes, []string{"-k"}},
		{"leftover arguments", ChannelModes, []string{"+m", "unexpected"}},
		{"unknown letter under strict", strict, []string{"+x"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseModes(tt.classifier, tt.args)
			if err == nil {
				t.Fatalf("ParseModes(%v): expected error", tt.args)
			}
			var perr *ParseError
			if !errors.As(err, &perr) || perr.Kind != ParseModeArityMismatch {
				t.Errorf("ParseModes(%v): got %v, wanted a mode arity error", tt.args, err)
			}
		})
	}
}

func TestParseModesUnknownLetterLenient(t *testing.T) {
	// unknown letters default to taking no argument when not strict
	ops, err := ParseModes(ChannelModes, []string{"+x"})
	if err != nil {
		t.Fatalf("ParseModes: %v", err)
	}
	if len(ops) != 1 || ops[0] != (ModeOp{'+', 'x', ""}) {
		t.Errorf("got %+v", ops)
	}
}

func TestSerializeModes(t *testing.T) {
	tests := []struct {
		name string
		ops  []ModeOp
		want []string
	}{{
		"empty",
		nil,
		nil,
	}, {
		"collapses same-sign runs",
		[]ModeOp{{'+', 'o', "alice"}, {'+', 'v', "bob"}, {'-', 'm', ""}},
		[]string{"+ov-m", "alice", "bob"},
	}, {
		"alternating signs",
		[]ModeOp{{'+', 'o', "a"}, {'-', 'v', "b"}, {'+', 'b', "c!d@e"}},
		[]string{"+o-v+b", "a", "b", "c!d@e"},
	}}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SerializeModes(tt.ops)
			if len(got) != len(tt.want) {
				t.Fatalf("SerializeModes(%v) = %v, wanted %v", tt.ops, got, tt.want)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("arg %d: got %q, wanted %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestModeRoundTrip(t *testing.T) {
	args := []string{"+ov-m+b", "alice", "bob", "*!*@spam"}
	ops, err := ParseModes(ChannelModes, args)
	if err != nil {
		t.Fatal(err)
	}
	got := SerializeModes(ops)
	if len(got) != len(args) {
		t.Fatalf("round trip changed arity: %v -> %v", args, got)
	}
	for i := range args {
		if got[i] != args[i] {
			t.Errorf("round trip changed arg %d: %q -> %q", i, args[i], got[i])
		}
	}
}
