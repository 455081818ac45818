package ircwire

import "testing"

func TestMatchMask(t *testing.T) {
	tests := []struct {
		mask, text string
		want       bool
	}{
		{"*", "", true},
		{"*", "anything", true},
		{"", "", true},
		{"", "x", false},
		{"*!*@*.example.com", "WiZ!jto@tolsun.example.com", true},
		{"*!*@*.example.com", "WiZ!jto@example.com", false},
		{"WiZ", "wiz", true},
		{"W?Z", "WaZ", true},
		{"W?Z", "WZ", false},
		{"a*c", "abc", true},
		{"a*c", "ac", true},
		{"a*c", "abd", false},
		{"a**c", "abbbc", true},
		// backtracking: the first '*' must not swallow the whole text
		{"*bc*bc", "abcbc", true},
		{"*bc", "abcbd", false},
		// escaped wildcards match literally
		{`literal\*`, "literal*", true},
		{`literal\*`, "literalx", false},
		{`who\?`, "who?", true},
		{`who\?`, "whoa", false},
		// rfc1459 folding applies to both sides
		{"nick[1]!*@*", "NICK{1}!user@host", true},
	}
	for _, tt := range tests {
		if got := MatchMask(tt.mask, tt.text); got != tt.want {
			t.Errorf("MatchMask(%q, %q) = %v, wanted %v", tt.mask, tt.text, got, tt.want)
		}
	}
}

func TestMatchMaskCaseMapping(t *testing.T) {
	if CaseMapASCII.MatchMask("nick[1]*", "NICK{1}") {
		t.Error("ascii mapping should not fold brackets")
	}
	if !CaseMapASCII.MatchMask("NICK*", "nickname") {
		t.Error("ascii mapping should fold letters")
	}
}

func TestStripFormat(t *testing.T) {
	tests := []struct {
		in, out string
	}{
		{"plain text", "plain text"},
		{"\x02bold\x02", "bold"},
		{"\x1ditalic\x0f done", "italic done"},
		{"\x1funder\x1e\x11\x16", "under"},
		// color codes consume their numeric arguments
		{"\x034red", "red"},
		{"\x0304red", "red"},
		{"\x0304,07red", "red"},
		{"\x03,nocolor", ",nocolor"}, // bare ^C with no digits keeps the comma
		{"\x034,5x", "x"},
		{"\x03044", "4"}, // at most two digits per color
		// hex colors consume six hex digits
		{"\x04ff0000red", "red"},
		{"\x04ff0000,00ff00red", "red"},
		{"\x04ff00", ""}, // short runs still consumed as far as they go
		{"say \x02\x034,7hi\x0f!", "say hi!"},
	}
	for _, tt := range tests {
		if got := StripFormat(tt.in); got != tt.out {
			t.Errorf("StripFormat(%q) = %q, wanted %q", tt.in, got, tt.out)
		}
	}
}
