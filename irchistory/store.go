/*
Package irchistory stores messages for CHATHISTORY playback.

The store keeps PRIVMSG, NOTICE, and TAGMSG lines keyed by target,
message ID, and server time, and answers the standard CHATHISTORY
selectors: LATEST, BEFORE, AFTER, AROUND, and BETWEEN. It is backed by
SQLite so a bot can keep history across restarts without running a
database server.

	store, err := irchistory.Open("history.db")
	// record everything the client sees:
	r.Use(irchistory.Record(store))
	// later:
	msgs, err := store.Latest("#chat", 50)
*/
package irchistory

import (
	"fmt"
	"strings"
	"time"

	"github.com/Travis-Britz/ircwire"
	"github.com/go-log/log"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

const schema = `
create table if not exists messages (
	id integer primary key autoincrement,
	target text not null,
	msgid text not null,
	ts integer not null,
	raw text not null
);
create index if not exists messages_target_ts on messages (target, ts, id);
create index if not exists messages_msgid on messages (msgid);
`

// Open opens (creating if necessary) a SQLite history database at path.
func Open(path string) (*Store, error) {
	db, err := sqlx.Connect("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("irchistory: open %s: %w", path, err)
	}
	return NewStore(db)
}

// NewStore wraps an existing database handle and ensures the schema
// exists. Use it when the application already manages its own sqlx.DB.
func NewStore(db *sqlx.DB) (*Store, error) {
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("irchistory: schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Store is a message log queryable by the CHATHISTORY selectors.
//
// Targets are folded with rfc1459 casemapping before storage and
// lookup, so "#Chat" and "#chat" share one history.
type Store struct {
	db *sqlx.DB
}

func (s *Store) Close() error {
	return s.db.Close()
}

type row struct {
	Target string `db:"target"`
	MsgID  string `db:"msgid"`
	TS     int64  `db:"ts"`
	Raw    string `db:"raw"`
}

// Record stores one message. Only PRIVMSG, NOTICE, and TAGMSG are
// stored; everything else returns nil without touching the database,
// so Record can be fed the full message stream.
//
// A message without a msgid tag is assigned one, and a message without
// a server-time tag is stamped with the current time. Both tags are
// stored back onto the line so playback carries them.
func (s *Store) Record(m *ircwire.Message) error {
	switch m.Command {
	case ircwire.CmdPrivmsg, ircwire.CmdNotice, ircwire.CmdTagMsg, ircwire.CTCPAction:
	default:
		return nil
	}
	target, err := m.Target()
	if err != nil || target == "" {
		return nil
	}

	stored := *m
	stored.Tags = append(ircwire.Tags{}, m.Tags...)
	if stored.Command == ircwire.CTCPAction {
		// CTCP routing rewrote the command and body; store the wire form
		stored.Command = ircwire.CmdPrivmsg
		stored.Params = append(ircwire.Params{}, m.Params...)
		if len(stored.Params) >= 2 {
			stored.Params[1] = ircwire.EncodeCTCP("ACTION", m.Params.Get(2))
		}
	}

	id := stored.MsgID()
	if id == "" {
		id = ircwire.NewMsgID()
		stored.Tags.Set("msgid", id)
	}
	when, ok := stored.Time()
	if !ok {
		when = time.Now()
		stored.Tags.Set("time", ircwire.FormatServerTime(when))
	}

	raw, err := stored.MarshalText()
	if err != nil {
		return fmt.Errorf("irchistory: marshal: %w", err)
	}
	_, err = s.db.Exec(
		"insert into messages (target, msgid, ts, raw) values (?, ?, ?, ?)",
		foldTarget(target), id, when.UnixMilli(), strings.TrimRight(string(raw), "\r\n"),
	)
	if err != nil {
		return fmt.Errorf("irchistory: insert: %w", err)
	}
	return nil
}

// Latest returns the most recent messages for target, oldest first.
func (s *Store) Latest(target string, limit int) ([]*ircwire.Message, error) {
	rows := []row{}
	err := s.db.Select(&rows,
		"select target, msgid, ts, raw from messages where target = ? order by ts desc, id desc limit ?",
		foldTarget(target), clampLimit(limit),
	)
	if err != nil {
		return nil, fmt.Errorf("irchistory: latest: %w", err)
	}
	reverse(rows)
	return parseRows(rows), nil
}

// Before returns messages sent before ref, oldest first.
// A wildcard ref behaves like Latest.
func (s *Store) Before(target string, ref Ref, limit int) ([]*ircwire.Message, error) {
	if ref.Any {
		return s.Latest(target, limit)
	}
	ts, err := s.resolve(ref)
	if err != nil {
		return nil, err
	}
	rows := []row{}
	err = s.db.Select(&rows,
		"select target, msgid, ts, raw from messages where target = ? and ts < ? order by ts desc, id desc limit ?",
		foldTarget(target), ts, clampLimit(limit),
	)
	if err != nil {
		return nil, fmt.Errorf("irchistory: before: %w", err)
	}
	reverse(rows)
	return parseRows(rows), nil
}

// After returns messages sent after ref, oldest first.
// A wildcard ref selects from the beginning of the log.
func (s *Store) After(target string, ref Ref, limit int) ([]*ircwire.Message, error) {
	var ts int64
	if !ref.Any {
		var err error
		ts, err = s.resolve(ref)
		if err != nil {
			return nil, err
		}
	} else {
		ts = -1
	}
	rows := []row{}
	err := s.db.Select(&rows,
		"select target, msgid, ts, raw from messages where target = ? and ts > ? order by ts asc, id asc limit ?",
		foldTarget(target), ts, clampLimit(limit),
	)
	if err != nil {
		return nil, fmt.Errorf("irchistory: after: %w", err)
	}
	return parseRows(rows), nil
}

// Around returns messages surrounding ref, oldest first. Half the
// limit is spent on either side of the reference point.
func (s *Store) Around(target string, ref Ref, limit int) ([]*ircwire.Message, error) {
	ts, err := s.resolve(ref)
	if err != nil {
		return nil, err
	}
	limit = clampLimit(limit)
	half := limit / 2
	if half == 0 {
		half = 1
	}

	before := []row{}
	err = s.db.Select(&before,
		"select target, msgid, ts, raw from messages where target = ? and ts < ? order by ts desc, id desc limit ?",
		foldTarget(target), ts, half,
	)
	if err != nil {
		return nil, fmt.Errorf("irchistory: around: %w", err)
	}
	after := []row{}
	err = s.db.Select(&after,
		"select target, msgid, ts, raw from messages where target = ? and ts >= ? order by ts asc, id asc limit ?",
		foldTarget(target), ts, limit-len(before),
	)
	if err != nil {
		return nil, fmt.Errorf("irchistory: around: %w", err)
	}
	reverse(before)
	return parseRows(append(before, after...)), nil
}

// Between returns messages sent between start and end, oldest first
// regardless of the order the bounds were given in. The bounds
// themselves are excluded, matching BEFORE/AFTER.
func (s *Store) Between(target string, start, end Ref, limit int) ([]*ircwire.Message, error) {
	lo, err := s.resolve(start)
	if err != nil {
		return nil, err
	}
	hi, err := s.resolve(end)
	if err != nil {
		return nil, err
	}
	if lo > hi {
		lo, hi = hi, lo
	}
	rows := []row{}
	err = s.db.Select(&rows,
		"select target, msgid, ts, raw from messages where target = ? and ts > ? and ts < ? order by ts asc, id asc limit ?",
		foldTarget(target), lo, hi, clampLimit(limit),
	)
	if err != nil {
		return nil, fmt.Errorf("irchistory: between: %w", err)
	}
	return parseRows(rows), nil
}

// resolve turns a reference into a millisecond timestamp, looking up
// msgid references in the log.
func (s *Store) resolve(ref Ref) (int64, error) {
	switch {
	case ref.Any:
		return 0, fmt.Errorf("irchistory: wildcard reference not valid here")
	case ref.MsgID != "":
		var ts int64
		err := s.db.Get(&ts, "select ts from messages where msgid = ? limit 1", ref.MsgID)
		if err != nil {
			return 0, fmt.Errorf("irchistory: msgid %s: %w", ref.MsgID, err)
		}
		return ts, nil
	default:
		return ref.Time.UnixMilli(), nil
	}
}

func parseRows(rows []row) []*ircwire.Message {
	msgs := make([]*ircwire.Message, 0, len(rows))
	for _, r := range rows {
		m, err := ircwire.Parse([]byte(r.Raw))
		if err != nil {
			log.Logf("[irchistory] bad stored line (msgid %s): %v", r.MsgID, err)
			continue
		}
		msgs = append(msgs, m)
	}
	return msgs
}

func reverse(rows []row) {
	for i, j := 0, len(rows)-1; i < j; i, j = i+1, j-1 {
		rows[i], rows[j] = rows[j], rows[i]
	}
}

func foldTarget(target string) string {
	return ircwire.CaseMapRFC1459.Lower(target)
}

const maxLimit = 1000

func clampLimit(limit int) int {
	if limit <= 0 || limit > maxLimit {
		return maxLimit
	}
	return limit
}

// Record returns middleware that logs every channel and query message
// passing through a handler chain. Storage errors are logged rather
// than interrupting message delivery.
func Record(s *Store) func(ircwire.Handler) ircwire.Handler {
	return func(next ircwire.Handler) ircwire.Handler {
		return ircwire.HandlerFunc(func(w ircwire.MessageWriter, m *ircwire.Message) {
			if err := s.Record(m); err != nil {
				log.Logf("[irchistory] %v", err)
			}
			next.SpeakIRC(w, m)
		})
	}
}
