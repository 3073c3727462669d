package showdown

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// DefaultServerURL is the public simulator endpoint.
const DefaultServerURL = "wss://sim3.psim.us/showdown/websocket"

// DefaultThrottle is the minimum interval between outbound sends the
// server tolerates.
const DefaultThrottle = 600 * time.Millisecond

// Transport is the session's connection to the server. Implementations
// deliver one frame per ReadFrame call, decoded to UTF-8 text.
type Transport interface {
	Send(ctx context.Context, text string) error
	ReadFrame(ctx context.Context) (string, error)
	Close() error
}

// LoginClient exchanges a server challenge for a session assertion.
type LoginClient interface {
	Assertion(ctx context.Context, username, password, challstr string) (string, error)
}

// Chatlogger receives every decoded event, including kinds that carry
// no room or sender.
type Chatlogger interface {
	HandleEvent(*Event)
}

// SessionConfig carries the collaborators and settings for NewSession.
// Transport and Login may be nil for offline use; outbound operations
// then fail with ErrNoTransport / ErrNoLoginClient.
type SessionConfig struct {
	Username   string
	Password   string
	Transport  Transport
	Login      LoginClient
	Chatlogger Chatlogger
	Logger     *zerolog.Logger

	// Throttle is the minimum interval between sends. Zero means
	// DefaultThrottle.
	Throttle time.Duration

	// EventBuffer sizes the channel behind Events. Zero means 64.
	EventBuffer int
}

// Session owns the live state of one connection: the room set, the
// user registry, the user-to-rooms membership index, and the shared
// outbound rate limiter.
//
// Registry state is confined to the goroutine driving HandleFrame (or
// Run): inbound frames are decoded one at a time in arrival order, and
// the mutations from one frame are visible before the next is decoded.
// The outbound path (Send and the entity methods built on it) is safe
// to call from other goroutines; throttling blocks only the sender.
type Session struct {
	// This is the session's own user.
	This *User

	password   string
	transport  Transport
	login      LoginClient
	chatlogger Chatlogger
	log        zerolog.Logger
	limiter    *rate.Limiter

	rooms      map[string]*Room
	users      map[string]*User
	membership map[string]map[string]struct{}

	loggedIn bool
	events   chan *Event
}

// NewSession builds a session from the given configuration.
func NewSession(cfg SessionConfig) *Session {
	if cfg.Throttle <= 0 {
		cfg.Throttle = DefaultThrottle
	}
	if cfg.EventBuffer <= 0 {
		cfg.EventBuffer = 64
	}
	logger := zerolog.Nop()
	if cfg.Logger != nil {
		logger = *cfg.Logger
	}

	s := &Session{
		password:   cfg.Password,
		transport:  cfg.Transport,
		login:      cfg.Login,
		chatlogger: cfg.Chatlogger,
		log:        logger,
		limiter:    rate.NewLimiter(rate.Every(cfg.Throttle), 1),
		rooms:      make(map[string]*Room),
		users:      make(map[string]*User),
		membership: make(map[string]map[string]struct{}),
		events:     make(chan *Event, cfg.EventBuffer),
	}
	s.This = newUser(cfg.Username, s)
	s.users[s.This.ID] = s.This
	return s
}

// Send transmits one raw frame, waiting out the throttle window first.
// The window is measured from the previous send on this session, shared
// across room messages, PMs, and commands alike.
func (s *Session) Send(ctx context.Context, raw string) error {
	if s.transport == nil {
		return ErrNoTransport
	}
	if err := s.limiter.Wait(ctx); err != nil {
		return err
	}
	s.log.Debug().Str("raw", raw).Msg("send")
	return s.transport.Send(ctx, raw)
}

// Login exchanges the challstr for an assertion through the login
// collaborator and sends the trn command. Failures are returned hard;
// nothing is retried.
func (s *Session) Login(ctx context.Context, challstr string) error {
	if s.login == nil {
		return ErrNoLoginClient
	}
	s.log.Info().Str("user", s.This.Name).Msg("logging in")
	assertion, err := s.login.Assertion(ctx, s.This.Name, s.password, challstr)
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}
	if err := s.Send(ctx, "|/trn "+s.This.Name+",0,"+assertion); err != nil {
		return fmt.Errorf("login: %w", err)
	}
	s.loggedIn = true
	s.log.Info().Msg("logged in")
	return nil
}

// LoggedIn reports whether the login handshake has completed.
func (s *Session) LoggedIn() bool {
	return s.loggedIn
}

// HandleFrame decodes one inbound frame. A frame may hold several
// newline-separated lines, optionally preceded by a ">roomid" line that
// scopes the rest. Every decoded event is forwarded to the chatlogger
// and returned in order; a challstr event triggers the login flow, and
// only a failure of that flow is returned as an error.
func (s *Session) HandleFrame(ctx context.Context, raw string) ([]*Event, error) {
	lines := strings.Split(raw, "\n")
	scope := ""
	if strings.HasPrefix(lines[0], ">") {
		scope = strings.TrimPrefix(lines[0], ">")
		lines = lines[1:]
	}

	var events []*Event
	var loginErr error
	for _, line := range lines {
		if line == "" {
			continue
		}
		ev := decodeLine(s, scope, line)
		if ev.Err != nil {
			s.log.Debug().Err(ev.Err).Str("raw", line).Msg("parse anomaly")
		}
		if s.chatlogger != nil {
			s.chatlogger.HandleEvent(ev)
		}
		if ev.Kind == EventChallstr && loginErr == nil {
			loginErr = s.Login(ctx, ev.Challstr)
		}
		events = append(events, ev)
	}
	return events, loginErr
}

// Run reads frames from the transport until the context is cancelled or
// the transport fails, delivering decoded events on the Events channel
// in arrival order. It returns the first transport or login error.
func (s *Session) Run(ctx context.Context) error {
	defer close(s.events)
	for {
		raw, err := s.transport.ReadFrame(ctx)
		if err != nil {
			return err
		}
		events, handleErr := s.HandleFrame(ctx, raw)
		for _, ev := range events {
			select {
			case s.events <- ev:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		if handleErr != nil {
			return handleErr
		}
	}
}

// Events is the delivery channel fed by Run. It is closed when Run
// returns.
func (s *Session) Events() <-chan *Event {
	return s.events
}

// WaitForLogin pumps inbound frames until the login handshake has
// completed. It blocks until then; callers bound the wait with their
// own context deadline.
func (s *Session) WaitForLogin(ctx context.Context) error {
	if s.transport == nil {
		return ErrNoTransport
	}
	for !s.loggedIn {
		raw, err := s.transport.ReadFrame(ctx)
		if err != nil {
			return err
		}
		if _, err := s.HandleFrame(ctx, raw); err != nil {
			return err
		}
	}
	return nil
}

// NewRoom returns the tracked room for a display name, or an untracked
// Room value for a name the session does not know. The room only
// enters the session's room set through Join or a roominfo snapshot.
func (s *Session) NewRoom(name string) *Room {
	if r := s.GetRoom(name); r != nil {
		return r
	}
	return newRoom(name, s)
}

// GetRoom looks up a room by display name or ID. It returns nil when
// the session does not track the room.
func (s *Session) GetRoom(name string) *Room {
	return s.rooms[Normalize(name)]
}

// adoptRoom registers a room in the session's room set. If a different
// instance already holds the same normalized ID the first one wins and
// a warning is logged; that situation indicates a caller constructing
// rooms outside the session.
func (s *Session) adoptRoom(r *Room) *Room {
	if existing, ok := s.rooms[r.ID]; ok {
		if existing != r {
			s.log.Warn().Str("room", r.ID).Msg("duplicate room instance, keeping first")
		}
		return existing
	}
	s.rooms[r.ID] = r
	return r
}

// RemoveRoom drops a room from the session's room set, typically after
// the server has confirmed a part.
func (s *Session) RemoveRoom(name string) {
	delete(s.rooms, Normalize(name))
}

// Rooms returns the rooms currently in the session's room set.
func (s *Session) Rooms() []*Room {
	rooms := make([]*Room, 0, len(s.rooms))
	for _, r := range s.rooms {
		rooms = append(rooms, r)
	}
	return rooms
}

// GetUser looks up a user by display name or ID, returning nil for a
// user the session has never seen. Users are never evicted once seen,
// even after leaving every room.
func (s *Session) GetUser(name string) *User {
	return s.users[Normalize(name)]
}

// GetUserRooms returns the IDs of the rooms the user is known to
// occupy. The returned set is a copy.
func (s *Session) GetUserRooms(u *User) map[string]struct{} {
	rooms := make(map[string]struct{}, len(s.membership[u.ID]))
	for id := range s.membership[u.ID] {
		rooms[id] = struct{}{}
	}
	return rooms
}

// UserJoined records the user as present in the room.
func (s *Session) UserJoined(u *User, r *Room) {
	if _, ok := s.users[u.ID]; !ok {
		s.users[u.ID] = u
	}
	set, ok := s.membership[u.ID]
	if !ok {
		set = make(map[string]struct{}, 1)
		s.membership[u.ID] = set
	}
	set[r.ID] = struct{}{}
}

// UserLeft records the user as absent from the room. Leaving a room the
// index never recorded is a no-op.
func (s *Session) UserLeft(u *User, r *Room) {
	set, ok := s.membership[u.ID]
	if !ok {
		return
	}
	delete(set, r.ID)
}
