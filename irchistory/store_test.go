package irchistory_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Travis-Britz/ircwire"
	"github.com/Travis-Britz/ircwire/irchistory"
)

func newStore(t *testing.T) *irchistory.Store {
	t.Helper()
	store, err := irchistory.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

// seed stores n messages one second apart starting at base, with
// predictable msgids "m0".."m(n-1)" and bodies "line 0".."line (n-1)".
func seed(t *testing.T, store *irchistory.Store, target string, base time.Time, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		m := ircwire.NewMessage("PRIVMSG", target, fmt.Sprintf("line %d", i)).
			WithPrefix(ircwire.Prefix{Nick: "alice", User: "a", Host: "example.com"}).
			WithTag("msgid", fmt.Sprintf("m%d", i)).
			WithTag("time", ircwire.FormatServerTime(base.Add(time.Duration(i)*time.Second)))
		require.NoError(t, store.Record(m))
	}
}

func bodies(msgs []*ircwire.Message) []string {
	out := make([]string, len(msgs))
	for i, m := range msgs {
		out[i] = m.Params.Get(2)
	}
	return out
}

var base = time.Date(2023, 4, 5, 10, 0, 0, 0, time.UTC)

func TestRecordFiltersCommands(t *testing.T) {
	store := newStore(t)

	require.NoError(t, store.Record(ircwire.NewMessage("PING", "12345")))
	require.NoError(t, store.Record(ircwire.NewMessage("JOIN", "#chat")))
	require.NoError(t, store.Record(ircwire.NewMessage("MODE", "#chat", "+m")))

	msgs, err := store.Latest("#chat", 10)
	require.NoError(t, err)
	assert.Empty(t, msgs, "non-chat commands must not be stored")
}

func TestRecordAssignsMissingTags(t *testing.T) {
	store := newStore(t)

	m := ircwire.NewMessage("PRIVMSG", "#chat", "untagged").
		WithPrefix(ircwire.Prefix{Nick: "alice"})
	require.NoError(t, store.Record(m))

	msgs, err := store.Latest("#chat", 10)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.NotEmpty(t, msgs[0].MsgID(), "playback must carry a msgid")
	_, ok := msgs[0].Time()
	assert.True(t, ok, "playback must carry a server-time tag")
}

func TestRecordKeepsExistingTags(t *testing.T) {
	store := newStore(t)
	seed(t, store, "#chat", base, 1)

	msgs, err := store.Latest("#chat", 10)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "m0", msgs[0].MsgID())
	ts, ok := msgs[0].Time()
	require.True(t, ok)
	assert.True(t, ts.Equal(base))
}

func TestRecordStoresActionsInWireForm(t *testing.T) {
	store := newStore(t)

	m := ircwire.NewMessage(ircwire.CTCPAction, "#chat", "waves hello").
		WithPrefix(ircwire.Prefix{Nick: "alice"})
	require.NoError(t, store.Record(m))

	msgs, err := store.Latest("#chat", 10)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, ircwire.Command(ircwire.CmdPrivmsg), msgs[0].Command)
	ctcp, ok := ircwire.DecodeCTCP(msgs[0].Params.Get(2))
	require.True(t, ok, "the stored body must be CTCP-framed")
	assert.True(t, ctcp.IsAction())
	assert.Equal(t, "waves hello", ctcp.Params)
}

func TestTargetFolding(t *testing.T) {
	store := newStore(t)
	seed(t, store, "#Chat", base, 2)

	msgs, err := store.Latest("#chat", 10)
	require.NoError(t, err)
	assert.Len(t, msgs, 2, "targets fold with rfc1459 rules")

	msgs, err = store.Latest("#other", 10)
	require.NoError(t, err)
	assert.Empty(t, msgs)
}

func TestLatest(t *testing.T) {
	store := newStore(t)
	seed(t, store, "#chat", base, 5)

	msgs, err := store.Latest("#chat", 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"line 2", "line 3", "line 4"}, bodies(msgs), "latest three, oldest first")
}

func TestBefore(t *testing.T) {
	store := newStore(t)
	seed(t, store, "#chat", base, 5)

	msgs, err := store.Before("#chat", irchistory.MsgIDRef("m3"), 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"line 1", "line 2"}, bodies(msgs), "the reference itself is excluded")

	msgs, err = store.Before("#chat", irchistory.Ref{Any: true}, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"line 3", "line 4"}, bodies(msgs), "a wildcard behaves like LATEST")
}

func TestAfter(t *testing.T) {
	store := newStore(t)
	seed(t, store, "#chat", base, 5)

	msgs, err := store.After("#chat", irchistory.TimestampRef(base.Add(1*time.Second)), 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"line 2", "line 3"}, bodies(msgs), "the reference itself is excluded")

	msgs, err = store.After("#chat", irchistory.Ref{Any: true}, 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"line 0", "line 1", "line 2"}, bodies(msgs), "a wildcard selects from the beginning")
}

func TestAround(t *testing.T) {
	store := newStore(t)
	seed(t, store, "#chat", base, 5)

	msgs, err := store.Around("#chat", irchistory.MsgIDRef("m2"), 4)
	require.NoError(t, err)
	assert.Equal(t, []string{"line 0", "line 1", "line 2", "line 3"}, bodies(msgs))
}

func TestBetween(t *testing.T) {
	store := newStore(t)
	seed(t, store, "#chat", base, 5)

	msgs, err := store.Between("#chat", irchistory.MsgIDRef("m0"), irchistory.MsgIDRef("m4"), 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"line 1", "line 2", "line 3"}, bodies(msgs), "both bounds are excluded")

	// bounds given in either order select the same range
	msgs, err = store.Between("#chat", irchistory.MsgIDRef("m4"), irchistory.MsgIDRef("m0"), 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"line 1", "line 2", "line 3"}, bodies(msgs))
}

func TestResolveErrors(t *testing.T) {
	store := newStore(t)
	seed(t, store, "#chat", base, 1)

	_, err := store.Around("#chat", irchistory.Ref{Any: true}, 10)
	assert.Error(t, err, "AROUND has no wildcard form")

	_, err = store.Before("#chat", irchistory.MsgIDRef("never-stored"), 10)
	assert.Error(t, err, "unknown msgids fail rather than guessing a time")
}

func TestRecordMiddleware(t *testing.T) {
	store := newStore(t)

	var handled int
	r := &ircwire.Router{}
	r.Use(irchistory.Record(store))
	r.HandleFunc(ircwire.CmdPrivmsg, func(w ircwire.MessageWriter, m *ircwire.Message) {
		handled++
	})

	m := ircwire.NewMessage("PRIVMSG", "#chat", "through the chain").
		WithPrefix(ircwire.Prefix{Nick: "alice"})
	r.SpeakIRC(nil, m)

	assert.Equal(t, 1, handled, "messages still reach the handler")
	msgs, err := store.Latest("#chat", 10)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "through the chain", msgs[0].Params.Get(2))
}

func TestParseRef(t *testing.T) {
	ref, err := irchistory.ParseRef("*")
	require.NoError(t, err)
	assert.True(t, ref.Any)

	ref, err = irchistory.ParseRef("msgid=abc")
	require.NoError(t, err)
	assert.Equal(t, "abc", ref.MsgID)

	ref, err = irchistory.ParseRef("timestamp=2023-04-05T10:00:00.000Z")
	require.NoError(t, err)
	assert.True(t, ref.Time.Equal(base))

	for _, bad := range []string{"", "yesterday", "msgid=", "timestamp=then", "count=5"} {
		_, err := irchistory.ParseRef(bad)
		assert.Error(t, err, "ParseRef(%q)", bad)
	}
}

func TestRefString(t *testing.T) {
	assert.Equal(t, "*", irchistory.Ref{Any: true}.String())
	assert.Equal(t, "msgid=abc", irchistory.MsgIDRef("abc").String())
	assert.Equal(t, "timestamp=2023-04-05T10:00:00.000Z", irchistory.TimestampRef(base).String())
}
