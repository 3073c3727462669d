package showdown

import "context"

// Room is a chat room tracked by a session. Its identity is the
// normalized form of the display name; Name keeps the raw form the room
// was first referenced by.
type Room struct {
	ID   string
	Name string

	auth    Authority
	session *Session
}

func newRoom(name string, s *Session) *Room {
	return &Room{
		ID:      Normalize(name),
		Name:    name,
		auth:    make(Authority),
		session: s,
	}
}

// Say sends a message to the room through the session's rate-limited
// send path.
func (r *Room) Say(ctx context.Context, body string) error {
	return r.session.Send(ctx, r.ID+"|"+body)
}

// Join sends the join command, registers the room with the session, and
// requests a roominfo snapshot. The room is tracked immediately; the
// snapshot that fills in authority and roster arrives asynchronously as
// a queryresponse.
func (r *Room) Join(ctx context.Context) error {
	if err := r.session.Send(ctx, "|/join "+r.ID); err != nil {
		return err
	}
	r.session.adoptRoom(r)
	return r.session.Send(ctx, "|/cmd roominfo "+r.ID)
}

// Leave sends the part command. It does not remove the room from the
// session's room set; callers that want the room forgotten use
// Session.RemoveRoom once the server confirms the part.
func (r *Room) Leave(ctx context.Context) error {
	return r.Say(ctx, "/part")
}

// MergeAuthority applies an incremental authority update to the room.
func (r *Room) MergeAuthority(update map[string][]string) {
	r.auth.Merge(update)
}

// UsersAtLeast returns the normalized IDs of every user holding the
// given rank or higher in this room.
func (r *Room) UsersAtLeast(rank string) (map[string]struct{}, error) {
	return r.auth.UsersAtLeast(rank)
}
