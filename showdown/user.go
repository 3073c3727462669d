package showdown

import "context"

// User is a chat participant known to a session. Users are created
// lazily the first time a message references them and are never
// evicted, so lookups stay valid even after a user leaves every room.
type User struct {
	ID   string
	Name string

	session *Session
}

func newUser(name string, s *Session) *User {
	// A rank prefix on a display name is room state, not identity.
	if rank, rest := leadingRank(name); rank != "" {
		name = rest
	}
	return &User{
		ID:      Normalize(name),
		Name:    name,
		session: s,
	}
}

// MayUseRichResponses reports whether the user can broadcast HTML and
// other rich content in the given room, which requires the bot rank or
// higher. A nil room always answers false.
func (u *User) MayUseRichResponses(room *Room) bool {
	if room == nil {
		return false
	}
	users, err := room.UsersAtLeast(RankBot)
	if err != nil {
		return false
	}
	_, ok := users[u.ID]
	return ok
}

// SendPrivateMessage sends a PM to the user through the session's
// rate-limited send path.
func (u *User) SendPrivateMessage(ctx context.Context, body string) error {
	return u.session.Send(ctx, "|/pm "+u.ID+", "+body)
}
