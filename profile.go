package ircwire

import (
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v2"
)

// NetworkProfile is a static description of a network's mode tables and
// identifier rules, for working with recorded traffic or building mode
// changes before the server's feature advertisement arrives.
//
// The field formats mirror the RPL_ISUPPORT tokens of the same names:
//
//	name: libera
//	casemapping: rfc1459
//	prefix: (ov)@+
//	chanmodes: beIq,k,flj,CFLMPQScgimnprstuz
//	chantypes: "#"
//
// Prefer deriving state from a live ISupport when one is available; a
// profile is a snapshot and networks do change their tables.
type NetworkProfile struct {
	Name        string `yaml:"name"`
	CaseMapping string `yaml:"casemapping"`
	Prefix      string `yaml:"prefix"`
	ChanModes   string `yaml:"chanmodes"`
	ChanTypes   string `yaml:"chantypes"`

	// Strict makes the derived classifier reject unlisted mode letters
	// instead of treating them as flags.
	Strict bool `yaml:"strict"`
}

// LoadProfiles reads a YAML list of network profiles.
func LoadProfiles(r io.Reader) ([]NetworkProfile, error) {
	var profiles []NetworkProfile
	dec := yaml.NewDecoder(r)
	dec.SetStrict(true)
	if err := dec.Decode(&profiles); err != nil {
		return nil, fmt.Errorf("decoding network profiles: %w", err)
	}
	for i := range profiles {
		if err := profiles[i].validate(); err != nil {
			return nil, err
		}
	}
	return profiles, nil
}

// LoadProfileFile reads a YAML profile list from a file.
func LoadProfileFile(path string) ([]NetworkProfile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return LoadProfiles(f)
}

func (p *NetworkProfile) validate() error {
	if p.Name == "" {
		return fmt.Errorf("network profile missing name")
	}
	if p.CaseMapping != "" {
		if _, ok := ParseCaseMapping(p.CaseMapping); !ok {
			return fmt.Errorf("network profile %q: unknown casemapping %q", p.Name, p.CaseMapping)
		}
	}
	if p.Prefix != "" {
		if _, _, err := splitPrefixSpec(p.Prefix); err != nil {
			return fmt.Errorf("network profile %q: %w", p.Name, err)
		}
	}
	if p.ChanModes != "" {
		if strings.Count(p.ChanModes, ",") < 3 {
			return fmt.Errorf("network profile %q: chanmodes needs four comma-separated groups", p.Name)
		}
	}
	return nil
}

// splitPrefixSpec parses a "(modes)prefixes" pair.
func splitPrefixSpec(spec string) (modes, prefixes string, err error) {
	if !strings.HasPrefix(spec, "(") {
		return "", "", fmt.Errorf("prefix spec %q: missing '('", spec)
	}
	close := strings.IndexByte(spec, ')')
	if close < 0 {
		return "", "", fmt.Errorf("prefix spec %q: missing ')'", spec)
	}
	modes, prefixes = spec[1:close], spec[close+1:]
	if len(modes) != len(prefixes) {
		return "", "", fmt.Errorf("prefix spec %q: %d modes but %d prefixes", spec, len(modes), len(prefixes))
	}
	return modes, prefixes, nil
}

// Classifier derives the profile's channel mode classifier.
// Unset fields fall back to the RFC 2811 tables.
func (p *NetworkProfile) Classifier() ModeSet {
	set := ModeSet{
		List:    ChannelModes.List,
		WithArg: ChannelModes.WithArg,
		OnSet:   ChannelModes.OnSet,
		Never:   ChannelModes.Never,
		Prefix:  ChannelModes.Prefix,
		Strict:  p.Strict,
	}
	if p.ChanModes != "" {
		parts := strings.SplitN(p.ChanModes, ",", 5)
		if len(parts) >= 4 {
			set.List, set.WithArg, set.OnSet, set.Never = parts[0], parts[1], parts[2], parts[3]
		}
	}
	if p.Prefix != "" {
		if modes, _, err := splitPrefixSpec(p.Prefix); err == nil {
			set.Prefix = modes
		}
	}
	return set
}

// CaseMap returns the profile's casemapping, defaulting to rfc1459 like
// a server that never advertised one.
func (p *NetworkProfile) CaseMap() CaseMapping {
	if m, ok := ParseCaseMapping(p.CaseMapping); ok {
		return m
	}
	return CaseMapRFC1459
}

// ChannelTypes returns the channel name prefix characters, defaulting
// to "#".
func (p *NetworkProfile) ChannelTypes() string {
	if p.ChanTypes != "" {
		return p.ChanTypes
	}
	return "#"
}
