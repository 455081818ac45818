package ircwire

import (
	"encoding/base64"
	"strings"
)

// saslChunkSize is the longest AUTHENTICATE payload a single message
// may carry. Longer responses are split across several messages; a
// response that lands exactly on the boundary is followed by an empty
// "+" chunk so the server knows it ended.
const saslChunkSize = 400

// SASLMechanism names a SASL authentication mechanism negotiated over
// AUTHENTICATE during capability negotiation.
type SASLMechanism string

const (

	// SASLPlain authenticates with a username and password (RFC 4616).
	SASLPlain SASLMechanism = "PLAIN"

	// SASLExternal authenticates with the TLS client certificate.
	SASLExternal SASLMechanism = "EXTERNAL"
)

// supported reports whether this package can produce credentials for
// the mechanism.
func (m SASLMechanism) supported() bool {
	return m == SASLPlain || m == SASLExternal
}

// ParseSASLMechanisms splits the comma-separated mechanism list a
// server advertises in the sasl capability value or an RPL_SASLMECHS
// reply.
func ParseSASLMechanisms(list string) []SASLMechanism {
	var mechs []SASLMechanism
	for _, name := range strings.Split(list, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		mechs = append(mechs, SASLMechanism(strings.ToUpper(name)))
	}
	return mechs
}

// ChooseSASLMechanism picks the strongest supported mechanism from a
// server's advertised list, preferring certificate authentication over
// passwords. ok is false when nothing usable was offered.
func ChooseSASLMechanism(available []SASLMechanism) (SASLMechanism, bool) {
	for _, want := range [...]SASLMechanism{SASLExternal, SASLPlain} {
		for _, m := range available {
			if m == want {
				return want, true
			}
		}
	}
	return "", false
}

// EncodePlain produces the base64 credential payload for the PLAIN
// mechanism: authzid NUL authcid NUL password, with an empty authzid
// as IRC servers expect.
func EncodePlain(username, password string) string {
	return EncodePlainAuthzid("", username, password)
}

// EncodePlainAuthzid is EncodePlain with an explicit authorization
// identity, for authenticating as one account while acting as another.
func EncodePlainAuthzid(authzid, authcid, password string) string {
	payload := authzid + "\x00" + authcid + "\x00" + password
	return base64.StdEncoding.EncodeToString([]byte(payload))
}

// EncodeExternal produces the payload for the EXTERNAL mechanism.
// The identity usually comes from the client certificate, so authzid
// is normally empty and the payload is the empty chunk "+".
func EncodeExternal(authzid string) string {
	if authzid == "" {
		return "+"
	}
	return base64.StdEncoding.EncodeToString([]byte(authzid))
}

// DecodeSASL decodes a base64 AUTHENTICATE payload.
// The empty chunk "+" decodes to no bytes.
func DecodeSASL(payload string) ([]byte, error) {
	if payload == "+" {
		return nil, nil
	}
	return base64.StdEncoding.DecodeString(payload)
}

// ChunkSASL splits an encoded response into AUTHENTICATE-sized payload
// chunks. A response that fills its final chunk exactly gains a
// trailing "+" so the server can tell it is complete; an empty response
// is the single chunk "+".
func ChunkSASL(encoded string) []string {
	if encoded == "" {
		return []string{"+"}
	}
	var chunks []string
	for len(encoded) > saslChunkSize {
		chunks = append(chunks, encoded[:saslChunkSize])
		encoded = encoded[saslChunkSize:]
	}
	chunks = append(chunks, encoded)
	if len(chunks[len(chunks)-1]) == saslChunkSize {
		chunks = append(chunks, "+")
	}
	return chunks
}
