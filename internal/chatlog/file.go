package chatlog

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/showdownlabs/psclient/showdown"
)

// FileLogger writes chat logs to <dir>/<roomid>/<date>.txt.
type FileLogger struct {
	dir string
	log zerolog.Logger
	now func() time.Time
}

var _ showdown.Chatlogger = (*FileLogger)(nil)

// NewFileLogger builds a file logger rooted at dir, creating it if
// needed.
func NewFileLogger(dir string, logger *zerolog.Logger) (*FileLogger, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	l := &FileLogger{dir: dir, log: zerolog.Nop(), now: time.Now}
	if logger != nil {
		l.log = *logger
	}
	return l, nil
}

// HandleEvent appends the event to the current day's file for its
// room. Write failures are logged, not surfaced; losing a log line
// must never disturb the session.
func (l *FileLogger) HandleEvent(ev *showdown.Event) {
	roomDir := filepath.Join(l.dir, eventRoom(ev))
	if err := os.MkdirAll(roomDir, 0o755); err != nil {
		l.log.Error().Err(err).Str("dir", roomDir).Msg("create room log dir")
		return
	}

	path := filepath.Join(roomDir, l.now().UTC().Format(dateLayout)+".txt")
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		l.log.Error().Err(err).Str("path", path).Msg("open log file")
		return
	}
	defer f.Close()

	if _, err := f.WriteString(formatEvent(ev, l.now())); err != nil {
		l.log.Error().Err(err).Str("path", path).Msg("write log line")
	}
}

// Search scans a room's log files for lines from userID (empty for
// any) containing keyword (case-insensitive). Join and leave records
// are skipped unless includeJoins is set. Results are keyed by date.
func (l *FileLogger) Search(roomID, userID, keyword string, includeJoins bool) (map[string][]string, error) {
	results := make(map[string][]string)
	if roomID == "" {
		return results, nil
	}
	roomDir := filepath.Join(l.dir, roomID)
	entries, err := os.ReadDir(roomDir)
	if err != nil {
		if os.IsNotExist(err) {
			return results, nil
		}
		return nil, fmt.Errorf("read room log dir: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".txt") {
			continue
		}
		date := strings.TrimSuffix(entry.Name(), ".txt")
		data, err := os.ReadFile(filepath.Join(roomDir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("read log file: %w", err)
		}
		for _, line := range strings.Split(string(data), "\n") {
			if line == "" {
				continue
			}
			if matches(line, userID, keyword, includeJoins) {
				results[date] = append(results[date], line)
			}
		}
	}
	return results, nil
}
