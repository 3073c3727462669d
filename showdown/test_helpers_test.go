package showdown

import (
	"context"
	"sync"
	"testing"
	"time"
)

// fakeTransport records outbound frames and serves inbound frames from
// a channel.
type fakeTransport struct {
	mu     sync.Mutex
	sent   []string
	sentAt []time.Time
	frames chan string
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{frames: make(chan string, 16)}
}

func (f *fakeTransport) Send(ctx context.Context, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, text)
	f.sentAt = append(f.sentAt, time.Now())
	return nil
}

func (f *fakeTransport) ReadFrame(ctx context.Context) (string, error) {
	select {
	case frame := <-f.frames:
		return frame, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (f *fakeTransport) Close() error {
	return nil
}

func (f *fakeTransport) sentLines() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.sent...)
}

// stubLogin hands back a fixed assertion (or error) and records the
// challstr it was asked about.
type stubLogin struct {
	assertion string
	err       error
	challstr  string
}

func (l *stubLogin) Assertion(ctx context.Context, username, password, challstr string) (string, error) {
	l.challstr = challstr
	return l.assertion, l.err
}

// newTestSession builds an offline session with a fake transport and
// the given rooms pre-tracked, the way a live session would track them
// after joining.
func newTestSession(t *testing.T, rooms ...string) (*Session, *fakeTransport) {
	t.Helper()

	tr := newFakeTransport()
	s := NewSession(SessionConfig{
		Username:  "testbot",
		Transport: tr,
		Login:     &stubLogin{assertion: "assertion"},
		Throttle:  time.Millisecond,
	})
	for _, name := range rooms {
		s.adoptRoom(newRoom(name, s))
	}
	return s, tr
}

// handle decodes one frame, failing the test on a login error.
func handle(t *testing.T, s *Session, raw string) []*Event {
	t.Helper()

	events, err := s.HandleFrame(context.Background(), raw)
	if err != nil {
		t.Fatalf("HandleFrame(%q) returned error: %v", raw, err)
	}
	return events
}

// handleOne decodes a frame expected to hold exactly one message.
func handleOne(t *testing.T, s *Session, raw string) *Event {
	t.Helper()

	events := handle(t, s, raw)
	if len(events) != 1 {
		t.Fatalf("HandleFrame(%q) produced %d events, want 1", raw, len(events))
	}
	return events[0]
}

func hasMember(set map[string]struct{}, id string) bool {
	_, ok := set[id]
	return ok
}
