package ircwire_test

import (
	"context"
	"log"

	"github.com/Travis-Britz/ircwire"
)

// Hello, #World:
// The following code connects to an IRC server,
// waits for RPL_WELCOME,
// then requests to join a channel called #world,
// waits for the server to tell us that we've joined,
// then sends the message "Hello!" to #world,
// then disconnects with the message "Goodbye.".
func Example() {
	bot := &ircwire.Client{
		Addr:     "irc.example.com:6697",
		Nickname: "HelloBot",
	}
	r := &ircwire.Router{}
	r.OnConnect(func(w ircwire.MessageWriter, m *ircwire.Message) {
		w.WriteMessage(ircwire.Join("#world"))
	})
	r.OnJoin(func(w ircwire.MessageWriter, m *ircwire.Message) {
		w.WriteMessage(ircwire.Msg("#world", "Hello!"))
		w.WriteMessage(ircwire.Quit("Goodbye."))
	}).MatchChan("#world").MatchClient(bot)

	// run the bot (blocking until exit)
	err := bot.ConnectAndRun(context.Background(), r)
	if err != nil {
		log.Println(err)
	}
}
