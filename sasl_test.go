package ircwire

import (
	"strings"
	"testing"
)

func TestEncodePlain(t *testing.T) {
	// base64("\x00jilles\x00sesame")
	if got := EncodePlain("jilles", "sesame"); got != "AGppbGxlcwBzZXNhbWU=" {
		t.Errorf("EncodePlain = %q", got)
	}
}

func TestEncodePlainAuthzid(t *testing.T) {
	got := EncodePlainAuthzid("admin", "jilles", "sesame")
	decoded, err := DecodeSASL(got)
	if err != nil {
		t.Fatalf("DecodeSASL: %v", err)
	}
	if string(decoded) != "admin\x00jilles\x00sesame" {
		t.Errorf("payload decodes to %q", decoded)
	}
}

func TestEncodeExternal(t *testing.T) {
	if got := EncodeExternal(""); got != "+" {
		t.Errorf("EncodeExternal(\"\") = %q, wanted the empty chunk", got)
	}
	got := EncodeExternal("admin")
	decoded, err := DecodeSASL(got)
	if err != nil {
		t.Fatalf("DecodeSASL: %v", err)
	}
	if string(decoded) != "admin" {
		t.Errorf("payload decodes to %q", decoded)
	}
}

func TestDecodeSASL(t *testing.T) {
	if b, err := DecodeSASL("+"); err != nil || len(b) != 0 {
		t.Errorf("DecodeSASL(+) = %q, %v; wanted no bytes", b, err)
	}
	if _, err := DecodeSASL("not!base64"); err == nil {
		t.Error("DecodeSASL should reject invalid base64")
	}
}

func TestChunkSASL(t *testing.T) {
	tests := []struct {
		name    string
		encoded string
		want    []string
	}{{
		"empty response is a lone empty chunk",
		"",
		[]string{"+"},
	}, {
		"short response fits one chunk",
		"abcd",
		[]string{"abcd"},
	}, {
		"exact boundary gains a terminator",
		strings.Repeat("a", 400),
		[]string{strings.Repeat("a", 400), "+"},
	}, {
		"long response splits",
		strings.Repeat("a", 401),
		[]string{strings.Repeat("a", 400), "a"},
	}, {
		"two full chunks still terminate",
		strings.Repeat("a", 800),
		[]string{strings.Repeat("a", 400), strings.Repeat("a", 400), "+"},
	}}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ChunkSASL(tt.encoded)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d chunks, wanted %d", len(got), len(tt.want))
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("chunk %d: got %d bytes, wanted %d bytes", i, len(got[i]), len(tt.want[i]))
				}
			}
		})
	}
}

func TestParseSASLMechanisms(t *testing.T) {
	got := ParseSASLMechanisms("PLAIN, external ,,SCRAM-SHA-256")
	want := []SASLMechanism{SASLPlain, SASLExternal, "SCRAM-SHA-256"}
	if len(got) != len(want) {
		t.Fatalf("got %v, wanted %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("mechanism %d: got %q, wanted %q", i, got[i], want[i])
		}
	}
	if ParseSASLMechanisms("") != nil {
		t.Error("an empty list should produce no mechanisms")
	}
}

func TestChooseSASLMechanism(t *testing.T) {
	tests := []struct {
		available []SASLMechanism
		want      SASLMechanism
		ok        bool
	}{
		{[]SASLMechanism{SASLPlain}, SASLPlain, true},
		{[]SASLMechanism{SASLPlain, SASLExternal}, SASLExternal, true},
		{[]SASLMechanism{"SCRAM-SHA-256"}, "", false},
		{nil, "", false},
	}
	for _, tt := range tests {
		got, ok := ChooseSASLMechanism(tt.available)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ChooseSASLMechanism(%v) = %q, %v; wanted %q, %v", tt.available, got, ok, tt.want, tt.ok)
		}
	}
}
