package showdown

import (
	"errors"
	"testing"
)

func TestDecodeChallstr(t *testing.T) {
	s, tr := newTestSession(t)
	ev := handleOne(t, s, "|challstr|4|3141592653589793238462643383279502884197")

	if ev.Kind != EventChallstr {
		t.Fatalf("kind = %v, want challstr", ev.Kind)
	}
	// The payload itself contains a pipe and must be rejoined.
	if ev.Challstr != "4|3141592653589793238462643383279502884197" {
		t.Errorf("challstr = %q", ev.Challstr)
	}

	// A challstr triggers the login flow automatically.
	if !s.LoggedIn() {
		t.Fatalf("expected session to be logged in after challstr")
	}
	found := false
	for _, line := range tr.sentLines() {
		if line == "|/trn testbot,0,assertion" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a trn command, sent: %v", tr.sentLines())
	}
}

func TestDecodeChatDefaultsToLobby(t *testing.T) {
	s, _ := newTestSession(t, "lobby")
	ev := handleOne(t, s, "|c|#Ann/ika ^_^|Hi, I wrote a test|Isn't it cool?")

	if ev.Kind != EventChat {
		t.Fatalf("kind = %v, want chat", ev.Kind)
	}
	if ev.Room == nil || ev.Room.ID != "lobby" {
		t.Fatalf("room = %+v, want lobby", ev.Room)
	}
	if ev.SenderName != "#Ann/ika ^_^" {
		t.Errorf("senderName = %q", ev.SenderName)
	}
	if ev.Sender == nil || ev.Sender.ID != "annika" {
		t.Fatalf("sender = %+v, want annika", ev.Sender)
	}
	if ev.Body != "Hi, I wrote a test|Isn't it cool?" {
		t.Errorf("body = %q", ev.Body)
	}
	if ev.Timestamp != "" {
		t.Errorf("timestamp = %q, want empty", ev.Timestamp)
	}
}

func TestDecodeChatWithTimestampAndScope(t *testing.T) {
	s, _ := newTestSession(t, "testroom")
	ev := handleOne(t, s, ">testroom\n|c:|1593475694|#Ann/ika ^_^|~somecommand argument1,argumENT2||withpipes, argumént3")

	if ev.Kind != EventChat {
		t.Fatalf("kind = %v, want chat", ev.Kind)
	}
	if ev.Room == nil || ev.Room.ID != "testroom" {
		t.Fatalf("room = %+v, want testroom", ev.Room)
	}
	if ev.Timestamp != "1593475694" {
		t.Errorf("timestamp = %q", ev.Timestamp)
	}
	if ev.Body != "~somecommand argument1,argumENT2||withpipes, argumént3" {
		t.Errorf("body = %q", ev.Body)
	}
}

func TestDecodeChatMergesRankPrefix(t *testing.T) {
	s, _ := newTestSession(t, "testroom")
	handleOne(t, s, ">testroom\n|c|#Ann/ika ^_^|hello")

	room := s.GetRoom("testroom")
	users, err := room.UsersAtLeast("#")
	if err != nil {
		t.Fatalf("UsersAtLeast returned error: %v", err)
	}
	if !hasMember(users, "annika") {
		t.Fatalf("chat rank prefix did not merge into room authority")
	}

	// The stored display name loses the rank prefix.
	if u := s.GetUser("annika"); u == nil || u.Name != "Ann/ika ^_^" {
		t.Errorf("user = %+v, want display name without rank", s.GetUser("annika"))
	}
}

func TestDecodeJoinSynonyms(t *testing.T) {
	s, _ := newTestSession(t, "testroom", "testroom2", "testroom3")

	for _, test := range []struct{ frame, room string }{
		{">testroom\n|J|#Ann(ik)a ^_^", "testroom"},
		{">testroom2\n|j|#Ann(ik)a ^_^", "testroom2"},
		{">testroom3\n|join|#Ann(ik)a ^_^", "testroom3"},
	} {
		ev := handleOne(t, s, test.frame)
		if ev.Kind != EventJoin {
			t.Fatalf("kind = %v, want join", ev.Kind)
		}
		rooms := s.GetUserRooms(s.GetUser("annika"))
		if !hasMember(rooms, test.room) {
			t.Errorf("membership after %q missing %s", test.frame, test.room)
		}
	}
}

func TestDecodeLeaveSynonyms(t *testing.T) {
	s, _ := newTestSession(t, "testroom")

	for _, tag := range []string{"L", "l", "leave"} {
		handleOne(t, s, ">testroom\n|J|#Ann(ik)a ^_^")
		if !hasMember(s.GetUserRooms(s.GetUser("annika")), "testroom") {
			t.Fatalf("join was not recorded")
		}

		ev := handleOne(t, s, ">testroom\n|"+tag+"|#Ann(ik)a ^_^")
		if ev.Kind != EventLeave {
			t.Fatalf("kind = %v, want leave", ev.Kind)
		}
		if hasMember(s.GetUserRooms(s.GetUser("annika")), "testroom") {
			t.Errorf("|%s| did not clear membership", tag)
		}
	}
}

func TestDecodeLeaveNeverJoinedIsNoop(t *testing.T) {
	s, _ := newTestSession(t, "testroom")
	ev := handleOne(t, s, ">testroom\n|L|someone")

	if ev.Err != nil {
		t.Fatalf("unexpected parse error: %v", ev.Err)
	}
	if len(s.GetUserRooms(s.GetUser("someone"))) != 0 {
		t.Fatalf("membership changed by a leave that was never a join")
	}
}

func TestDecodePM(t *testing.T) {
	s, _ := newTestSession(t)
	ev := handleOne(t, s, "|pm|+aNNika ^_^|Expecto Botronum|~somecommand argument1,argumENT2||withpipes, argumént3")

	if ev.Kind != EventPM {
		t.Fatalf("kind = %v, want pm", ev.Kind)
	}
	if ev.Room != nil {
		t.Errorf("room = %+v, want nil for a PM", ev.Room)
	}
	if ev.SenderName != "+aNNika ^_^" {
		t.Errorf("senderName = %q", ev.SenderName)
	}
	if ev.Sender == nil || ev.Sender.ID != "annika" {
		t.Fatalf("sender = %+v, want annika", ev.Sender)
	}
	if ev.Body != "~somecommand argument1,argumENT2||withpipes, argumént3" {
		t.Errorf("body = %q", ev.Body)
	}
}

const roominfoFrame = `|queryresponse|roominfo|{"id":"testroom","roomid":"testroom","title":"Magic & Mayhem","type":"chat","visibility":"hidden","modchat":null,"auth":{"#":["annika","awa","cleo","meicoo"],"%":["dawnofares","instruct","ratisweep","pirateprincess","watfor","oaklynnthylacine"],"@":["gwynt","darth","profsapling","ravioliqueen","miapi"],"+":["madmonty","birdy","captanpasta","iwouldprefernotto","xprienzo","nui","toxtricityamped"],"*":["expectobotronum","kida"]}, "users":["user1","user2"]}`

func TestDecodeRoominfo(t *testing.T) {
	s, _ := newTestSession(t, "testroom")
	ev := handleOne(t, s, roominfoFrame)

	if ev.Kind != EventQueryResponse || ev.Query != "roominfo" {
		t.Fatalf("kind = %v query = %q", ev.Kind, ev.Query)
	}

	for _, id := range []string{"user1", "user2"} {
		u := s.GetUser(id)
		if u == nil {
			t.Fatalf("user %s not created from roster", id)
		}
		if !hasMember(s.GetUserRooms(u), "testroom") {
			t.Errorf("user %s not recorded in testroom", id)
		}
	}

	room := s.GetRoom("testroom")
	for rank, want := range map[string][]string{
		"#": {"annika", "awa", "cleo", "meicoo"},
		"*": {"expectobotronum", "kida"},
		"%": {"dawnofares", "instruct", "ratisweep", "pirateprincess", "watfor", "oaklynnthylacine"},
	} {
		users, err := room.UsersAtLeast(rank)
		if err != nil {
			t.Fatalf("UsersAtLeast(%q) returned error: %v", rank, err)
		}
		for _, id := range want {
			if !hasMember(users, id) {
				t.Errorf("rank %s missing %s", rank, id)
			}
		}
	}

	if room.Name != "Magic & Mayhem" {
		t.Errorf("room name = %q, want snapshot title", room.Name)
	}
}

func TestDecodeRoominfoCreatesUnknownRoom(t *testing.T) {
	s, _ := newTestSession(t)
	if s.GetRoom("testroom") != nil {
		t.Fatalf("room should not exist yet")
	}

	handleOne(t, s, roominfoFrame)

	room := s.GetRoom("testroom")
	if room == nil {
		t.Fatalf("roominfo did not create the room")
	}
}

func TestDecodeChatUnknownRoomIsAnomalyNotFatal(t *testing.T) {
	s, _ := newTestSession(t)
	ev := handleOne(t, s, ">ghostroom\n|c|+someone|hi there")

	if ev.Kind != EventChat {
		t.Fatalf("kind = %v, want chat", ev.Kind)
	}
	if !errors.Is(ev.Err, errUnknownRoom) {
		t.Fatalf("err = %v, want unknown-room anomaly", ev.Err)
	}
	// The rest of the line still decoded.
	if ev.Sender == nil || ev.Sender.ID != "someone" || ev.Body != "hi there" {
		t.Errorf("best-effort fields missing: %+v", ev)
	}
}

func TestDecodeUnrecognizedTag(t *testing.T) {
	s, _ := newTestSession(t)
	ev := handleOne(t, s, "|battleupdate|something|else")

	if ev.Kind != EventUnrecognized {
		t.Fatalf("kind = %v, want unrecognized", ev.Kind)
	}
	if ev.Tag != "battleupdate" {
		t.Errorf("tag = %q", ev.Tag)
	}
	if ev.Err != nil {
		t.Errorf("unrecognized tags are diagnostic, not errors: %v", ev.Err)
	}
}

func TestDecodeMalformedFrames(t *testing.T) {
	s, _ := newTestSession(t, "testroom")

	// No type field at all.
	ev := handleOne(t, s, "plain text with no pipes")
	if ev.Kind != EventUnrecognized || ev.Err == nil {
		t.Fatalf("short frame: kind=%v err=%v", ev.Kind, ev.Err)
	}

	// A c: frame cut off before its required fields.
	ev = handleOne(t, s, ">testroom\n|c:")
	if ev.Kind != EventChat || ev.Err == nil {
		t.Fatalf("truncated chat: kind=%v err=%v", ev.Kind, ev.Err)
	}

	// Join with no sender field.
	ev = handleOne(t, s, ">testroom\n|J")
	if ev.Kind != EventJoin || ev.Err == nil {
		t.Fatalf("truncated join: kind=%v err=%v", ev.Kind, ev.Err)
	}

	// Roominfo with a broken payload.
	ev = handleOne(t, s, "|queryresponse|roominfo|{not json")
	if ev.Kind != EventQueryResponse || ev.Err == nil {
		t.Fatalf("broken roominfo: kind=%v err=%v", ev.Kind, ev.Err)
	}
}

func TestDecodeInit(t *testing.T) {
	s, _ := newTestSession(t)
	ev := handleOne(t, s, ">testroom\n|init|chat")
	if ev.Kind != EventInit || ev.Err != nil {
		t.Fatalf("init: kind=%v err=%v", ev.Kind, ev.Err)
	}
}

func TestHandleFrameMultipleLines(t *testing.T) {
	s, _ := newTestSession(t, "testroom")
	events := handle(t, s, ">testroom\n|init|chat\n|J|+userone\n|c:|1593475694|+userone|hello")

	if len(events) != 3 {
		t.Fatalf("got %d events, want 3", len(events))
	}
	wantKinds := []EventKind{EventInit, EventJoin, EventChat}
	for i, kind := range wantKinds {
		if events[i].Kind != kind {
			t.Errorf("event %d kind = %v, want %v", i, events[i].Kind, kind)
		}
	}
	// The scope line applies to every message in the frame.
	if events[2].Room == nil || events[2].Room.ID != "testroom" {
		t.Errorf("scope not applied to later lines")
	}
	if !hasMember(s.GetUserRooms(s.GetUser("userone")), "testroom") {
		t.Errorf("membership from mid-frame join missing")
	}
}
