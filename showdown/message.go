package showdown

import (
	"encoding/json"
	"fmt"
	"strings"
)

// decodeLine turns one raw protocol line into an Event. Decoding is
// where session state gets updated: chat rank prefixes and roominfo
// snapshots merge into room authority, and join/leave lines move users
// in the membership index. scope is the room ID a multi-line frame was
// addressed to; it applies when the line's own room field is empty.
//
// Malformed input never aborts decoding: a missing required field or an
// unknown room is recorded on Event.Err and the rest of the line is
// still decoded best-effort.
func decodeLine(s *Session, scope, raw string) *Event {
	ev := &Event{Kind: EventUnrecognized, Raw: raw, session: s}

	fields := strings.Split(raw, "|")
	if len(fields) < 2 {
		ev.Err = errShortFrame
		return ev
	}
	ev.Tag = fields[1]

	// Tags are case-sensitive; several types have synonym spellings.
	switch ev.Tag {
	case "challstr":
		ev.Kind = EventChallstr
		ev.Challstr = strings.Join(fields[2:], "|")
	case "c:", "c", "chat":
		s.decodeChat(ev, scope, fields)
	case "J", "j", "join":
		s.decodeJoinLeave(ev, scope, fields, true)
	case "L", "l", "leave":
		s.decodeJoinLeave(ev, scope, fields, false)
	case "pm":
		s.decodePM(ev, fields)
	case "queryresponse":
		s.decodeQueryResponse(ev, fields)
	case "init":
		ev.Kind = EventInit
	default:
		s.log.Debug().Str("tag", ev.Tag).Str("raw", raw).Msg("unrecognized message type")
	}
	return ev
}

func (s *Session) decodeChat(ev *Event, scope string, fields []string) {
	ev.Kind = EventChat
	ev.Room = s.resolveRoom(fields[0], scope)
	if ev.Room == nil {
		ev.Err = errUnknownRoom
	}

	i := 2
	if ev.Tag == "c:" {
		if i >= len(fields) {
			ev.Err = errMissingField
			return
		}
		ev.Timestamp = fields[i]
		i++
	}
	if i >= len(fields) {
		ev.Err = errMissingField
		return
	}
	name := fields[i]
	i++

	ev.SenderName = name
	if rank, rest := leadingRank(strings.TrimSpace(name)); rank != "" && ev.Room != nil {
		ev.Room.MergeAuthority(map[string][]string{rank: {Normalize(rest)}})
	}
	ev.Sender = s.resolveUser(name)
	ev.Body = strings.TrimSuffix(strings.Join(fields[i:], "|"), "\n")
}

func (s *Session) decodeJoinLeave(ev *Event, scope string, fields []string, join bool) {
	if join {
		ev.Kind = EventJoin
	} else {
		ev.Kind = EventLeave
	}
	ev.Room = s.resolveRoom(fields[0], scope)
	if len(fields) < 3 {
		ev.Err = errMissingField
		return
	}
	ev.SenderName = fields[2]
	ev.Sender = s.resolveUser(fields[2])
	if ev.Room == nil {
		ev.Err = errUnknownRoom
		return
	}
	if join {
		s.UserJoined(ev.Sender, ev.Room)
	} else {
		s.UserLeft(ev.Sender, ev.Room)
	}
}

func (s *Session) decodePM(ev *Event, fields []string) {
	ev.Kind = EventPM
	if len(fields) < 3 {
		ev.Err = errMissingField
		return
	}
	ev.SenderName = fields[2]
	ev.Sender = s.resolveUser(fields[2])
	if len(fields) > 4 {
		ev.Body = strings.TrimSuffix(strings.Join(fields[4:], "|"), "\n")
	}
}

// roomInfo is the JSON payload of a roominfo query response. All keys
// are optional.
type roomInfo struct {
	ID    string              `json:"id"`
	Title string              `json:"title"`
	Auth  map[string][]string `json:"auth"`
	Users []string            `json:"users"`
}

func (s *Session) decodeQueryResponse(ev *Event, fields []string) {
	ev.Kind = EventQueryResponse
	if len(fields) < 3 {
		ev.Err = errMissingField
		return
	}
	ev.Query = fields[2]
	if ev.Query != "roominfo" {
		return
	}
	if len(fields) < 4 {
		ev.Err = errMissingField
		return
	}

	var info roomInfo
	if err := json.Unmarshal([]byte(fields[3]), &info); err != nil {
		ev.Err = fmt.Errorf("roominfo payload: %w", err)
		return
	}
	if info.ID == "" {
		return
	}

	// The snapshot is the one place a room may be created implicitly:
	// it can only arrive for a room the client asked about.
	room := s.GetRoom(info.ID)
	if room == nil {
		room = s.adoptRoom(newRoom(info.ID, s))
	}
	if room.Name == room.ID && info.Title != "" {
		room.Name = info.Title
	}
	ev.Room = room

	if info.Auth != nil {
		update := make(map[string][]string, len(info.Auth))
		for rank, names := range info.Auth {
			ids := make([]string, 0, len(names))
			for _, n := range names {
				ids = append(ids, Normalize(n))
			}
			update[rank] = ids
		}
		room.MergeAuthority(update)
	}
	for _, name := range info.Users {
		s.UserJoined(s.resolveUser(name), room)
	}
}

// resolveRoom maps a frame's room field to a tracked room. The field
// carries a leading '>' on scoped frames; an empty field falls back to
// the frame scope and then to the lobby. Resolution never creates a
// room.
func (s *Session) resolveRoom(field, scope string) *Room {
	name := strings.TrimSuffix(strings.TrimPrefix(field, ">"), "\n")
	if name == "" {
		name = scope
	}
	if name == "" {
		name = "lobby"
	}
	return s.GetRoom(name)
}

// resolveUser returns the tracked user for a display name, creating one
// if the name has not been seen before. The stored display name is
// refreshed on every sighting, with any rank prefix stripped.
func (s *Session) resolveUser(name string) *User {
	id := Normalize(name)
	if u := s.GetUser(id); u != nil {
		if _, rest := leadingRank(name); rest != "" {
			u.Name = rest
		}
		return u
	}
	u := newUser(name, s)
	s.users[u.ID] = u
	return u
}
