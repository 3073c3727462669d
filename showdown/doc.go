// Package showdown implements a client for the Pokémon Showdown chat
// protocol: a line-oriented, pipe-delimited format delivered over a
// persistent websocket.
//
// The package keeps a live session against one server. It authenticates
// through the challstr/assertion handshake, tracks the rooms the client
// has joined along with each room's authority list, decodes inbound
// frames into typed Events, and exposes an outbound API (room messages,
// private messages, join/part) behind a shared per-session rate limit.
//
// A minimal bot looks like:
//
//	conn, err := ws.Dial(ctx, showdown.DefaultServerURL)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	session := showdown.NewSession(showdown.SessionConfig{
//	    Username:  "mybot",
//	    Password:  "hunter2",
//	    Transport: conn,
//	    Login:     showdown.NewHTTPLogin(nil),
//	})
//	if err := session.WaitForLogin(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	go session.Run(ctx)
//	for ev := range session.Events() {
//	    if ev.Kind == showdown.EventChat {
//	        fmt.Printf("%s: %s\n", ev.SenderName, ev.Body)
//	    }
//	}
//
// All identity comparison in the protocol is done on normalized IDs
// (see Normalize); display names are only carried for presentation.
package showdown
