package chatlog

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
	"github.com/showdownlabs/psclient/showdown"
)

// SQLiteLogger records events in a sqlite database so searches run as
// SQL instead of file scans. Pass ":memory:" as the path in tests.
type SQLiteLogger struct {
	db  *sql.DB
	log zerolog.Logger
	now func() time.Time
}

var _ showdown.Chatlogger = (*SQLiteLogger)(nil)

const schema = `
CREATE TABLE IF NOT EXISTS messages (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	room        TEXT NOT NULL,
	sender_id   TEXT NOT NULL,
	sender_name TEXT NOT NULL,
	kind        TEXT NOT NULL,
	body        TEXT NOT NULL,
	ts          INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_messages_room_ts ON messages(room, ts);
`

// NewSQLiteLogger opens (or creates) the database at dbPath and applies
// the schema.
func NewSQLiteLogger(dbPath string, logger *zerolog.Logger) (*SQLiteLogger, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// SQLite works best with a single connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	l := &SQLiteLogger{db: db, log: zerolog.Nop(), now: time.Now}
	if logger != nil {
		l.log = *logger
	}
	return l, nil
}

// Close closes the database.
func (l *SQLiteLogger) Close() error {
	return l.db.Close()
}

// HandleEvent inserts the event. Insert failures are logged, not
// surfaced.
func (l *SQLiteLogger) HandleEvent(ev *showdown.Event) {
	ts := l.now().UTC().Unix()
	if ev.Timestamp != "" {
		if n, err := strconv.ParseInt(ev.Timestamp, 10, 64); err == nil {
			ts = n
		}
	}
	senderID := ""
	if ev.Sender != nil {
		senderID = ev.Sender.ID
	}

	_, err := l.db.Exec(
		`INSERT INTO messages (room, sender_id, sender_name, kind, body, ts) VALUES (?, ?, ?, ?, ?, ?)`,
		eventRoom(ev), senderID, ev.SenderName, ev.Kind.String(), ev.Body, ts,
	)
	if err != nil {
		l.log.Error().Err(err).Msg("insert log record")
	}
}

// Search queries a room's records with the same filters as
// FileLogger.Search and returns lines in the shared log format, keyed
// by date.
func (l *SQLiteLogger) Search(roomID, userID, keyword string, includeJoins bool) (map[string][]string, error) {
	results := make(map[string][]string)
	if roomID == "" {
		return results, nil
	}

	query := `SELECT sender_id, sender_name, kind, body, ts FROM messages WHERE room = ?`
	args := []any{roomID}
	if userID != "" {
		query += ` AND sender_id = ?`
		args = append(args, userID)
	}
	if keyword != "" {
		query += ` AND body LIKE ? ESCAPE '\'`
		args = append(args, "%"+escapeLike(keyword)+"%")
	}
	if !includeJoins {
		query += ` AND kind NOT IN ('join', 'leave')`
	}
	query += ` ORDER BY ts`

	rows, err := l.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("search messages: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var senderID, senderName, kind, body string
		var ts int64
		if err := rows.Scan(&senderID, &senderName, &kind, &body, &ts); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		date := time.Unix(ts, 0).UTC().Format(dateLayout)
		line := strings.Join([]string{senderID, strconv.FormatInt(ts, 10), kind, senderName, body}, "|")
		results[date] = append(results[date], line)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}
	return results, nil
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
