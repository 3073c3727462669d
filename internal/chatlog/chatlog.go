// Package chatlog provides chatloggers for a showdown session: a plain
// file tree (one file per room per day) and a sqlite-backed index with
// SQL search. Both record every decoded event in the line format
//
//	userid|time|type|senderName|body
//
// where time is a unix timestamp and type is the event kind name.
package chatlog

import (
	"html"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/showdownlabs/psclient/showdown"
)

const dateLayout = "2006-01-02"

// formatEvent renders one event as a log line. Events carrying their
// own timestamp keep it; everything else is stamped with now.
func formatEvent(ev *showdown.Event, now time.Time) string {
	ts := now.UTC().Unix()
	if ev.Timestamp != "" {
		if n, err := strconv.ParseInt(ev.Timestamp, 10, 64); err == nil {
			ts = n
		}
	}
	senderID := ""
	if ev.Sender != nil {
		senderID = ev.Sender.ID
	}
	return strings.Join([]string{
		senderID,
		strconv.FormatInt(ts, 10),
		ev.Kind.String(),
		ev.SenderName,
		ev.Body,
	}, "|") + "\n"
}

// eventRoom names the log bucket for an event. Events with no room
// (challstr, pm, global notices) land in "global".
func eventRoom(ev *showdown.Event) string {
	if ev.Room != nil {
		return ev.Room.ID
	}
	return "global"
}

// FormatLine renders a stored log line for human reading, optionally as
// HTML. Lines with five fields are full records; three fields are the
// short form with no timestamp. Anything else is reported unparseable.
func FormatLine(data string, asHTML bool) string {
	parts := strings.SplitN(data, "|", 5)
	var ts, kind, senderName, body string
	switch len(parts) {
	case 5:
		ts, kind, senderName, body = parts[1], parts[2], parts[3], parts[4]
	case 3:
		kind, body = parts[1], parts[2]
		senderName = parts[0]
	default:
		return "Unparseable message (bad format)"
	}

	timePrefix := ""
	if n, err := strconv.ParseInt(ts, 10, 64); err == nil {
		timePrefix = "[" + time.Unix(n, 0).UTC().Format("15:04:05") + "] "
		if asHTML {
			timePrefix = "<small>" + html.EscapeString(timePrefix) + "</small>"
		}
	}

	body = strings.TrimSpace(strings.Trim(body, "\n"))
	sender := strings.TrimSpace(senderName)
	if asHTML {
		body = html.EscapeString(body)
		sender = html.EscapeString(sender)
	}

	// The escaped form of the admin rank needs its own prefix check.
	rank, rest := "", ""
	if asHTML && strings.HasPrefix(sender, "&amp;") {
		rank, rest = "&amp;", sender[len("&amp;"):]
	} else if r, size := utf8.DecodeRuneInString(sender); size > 0 && showdown.IsRank(string(r)) {
		rank, rest = string(r), sender[size:]
	}
	switch {
	case rank != "" && asHTML:
		sender = "<small>" + rank + "</small><b>" + rest + "</b>"
	case rank != "":
		sender = rank + rest
	case asHTML:
		sender = "<b>" + sender + "</b>"
	}

	switch kind {
	case "chat", "pm":
		return timePrefix + sender + ": " + body
	case "join":
		return timePrefix + sender + " joined"
	case "leave":
		return timePrefix + sender + " left"
	}
	return "Unparseable message"
}

// matches reports whether a stored line satisfies the search filters.
func matches(line, userID, keyword string, includeJoins bool) bool {
	if userID != "" && !strings.HasPrefix(line, userID+"|") {
		return false
	}
	parts := strings.SplitN(strings.ToLower(line), "|", 5)
	if len(parts) < 5 {
		return false
	}
	if !includeJoins && (parts[2] == "join" || parts[2] == "leave") {
		return false
	}
	return strings.Contains(parts[4], strings.ToLower(keyword))
}
