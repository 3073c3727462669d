package showdown

import (
	"context"
	"strings"
)

// EventKind classifies a decoded protocol message.
type EventKind int

const (
	// EventUnrecognized is produced for any tag the decoder does not
	// know. It is diagnostic only and never fatal.
	EventUnrecognized EventKind = iota
	// EventChallstr carries the login challenge issued by the server.
	EventChallstr
	// EventChat is a message in a room.
	EventChat
	// EventJoin records a user entering a room.
	EventJoin
	// EventLeave records a user leaving a room.
	EventLeave
	// EventPM is a private message; it has a sender but no room.
	EventPM
	// EventQueryResponse is an out-of-band reply to a client query,
	// for example a roominfo snapshot.
	EventQueryResponse
	// EventInit marks the start of a room's message stream.
	EventInit
)

// String returns the wire-friendly name of the kind, used in logs and
// chatlog records.
func (k EventKind) String() string {
	switch k {
	case EventChallstr:
		return "challstr"
	case EventChat:
		return "chat"
	case EventJoin:
		return "join"
	case EventLeave:
		return "leave"
	case EventPM:
		return "pm"
	case EventQueryResponse:
		return "queryresponse"
	case EventInit:
		return "init"
	default:
		return "unrecognized"
	}
}

// Event is one decoded protocol message. Only the fields meaningful to
// the kind are set; the rest stay zero. Decoding an event may have
// already mutated session state (authority merges, membership updates)
// by the time the caller sees it.
type Event struct {
	Kind       EventKind
	Room       *Room
	Sender     *User
	SenderName string
	Body       string
	Timestamp  string
	Challstr   string
	Query      string
	Tag        string
	Raw        string

	// Err records a per-message parse anomaly (short frame, missing
	// field, unknown room). The event is still best-effort usable.
	Err error

	session *Session
}

// Respond replies to the event where it came from: in the room for room
// messages, or by PM for private messages. Events with neither a room
// nor a sender are silently ignored.
func (e *Event) Respond(ctx context.Context, body string) error {
	if e.Room != nil {
		return e.Room.Say(ctx, body)
	}
	if e.Sender != nil {
		return e.Sender.SendPrivateMessage(ctx, body)
	}
	return nil
}

// RespondHTML replies with an HTML box. In a room this requires the
// session's own user to hold the bot rank there. For a PM it looks for
// a room shared with the sender where the bot rank is held and answers
// with a pminfobox. If no eligible room exists, nothing is sent.
func (e *Event) RespondHTML(ctx context.Context, html string) error {
	s := e.session
	if s == nil {
		return nil
	}
	if e.Room != nil {
		if !s.This.MayUseRichResponses(e.Room) {
			return nil
		}
		return e.Room.Say(ctx, "/adduhtml "+s.This.ID+","+html)
	}
	if e.Sender == nil {
		return nil
	}
	own := s.GetUserRooms(s.This)
	for roomID := range s.GetUserRooms(e.Sender) {
		if _, shared := own[roomID]; !shared {
			continue
		}
		room := s.GetRoom(roomID)
		if room == nil || !s.This.MayUseRichResponses(room) {
			continue
		}
		return room.Say(ctx, "/pminfobox "+e.Sender.ID+","+strings.ReplaceAll(html, "\n", ""))
	}
	return nil
}
