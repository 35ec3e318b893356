package audit

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/PolarWolf314/kaitiaki/internal/configs"
	"github.com/PolarWolf314/kaitiaki/internal/gnupg"
)

// TimestampFormat is the layout of Entry.Timestamp.
const TimestampFormat = "2006-01-02T15:04:05.000000Z"

// Entry represents a single audit log entry.
type Entry struct {
	Timestamp    string `json:"ts"`
	InvocationID string `json:"id"`
	User         string `json:"user"`
	Operation    string `json:"op"`
	Success      bool   `json:"success"`
	ExitCode     int    `json:"exit_code"`
	Status       string `json:"status,omitempty"`
	Problems     int    `json:"problems,omitempty"`

	// Optional fields depending on operation.
	Files      []string `json:"files,omitempty"`
	KeyIDs     []string `json:"key_ids,omitempty"`
	OutputPath string   `json:"output_path,omitempty"`
	Error      string   `json:"error,omitempty"`
}

// FromResult fills an entry from an invocation result.
func FromResult(res gnupg.Result) Entry {
	return Entry{
		InvocationID: res.InvocationID,
		User:         configs.UserKaitiakiSettings.Username,
		Operation:    res.Operation.String(),
		Success:      res.Success,
		ExitCode:     res.ExitCode,
		Status:       res.Status,
		Problems:     len(res.Problems),
	}
}

// Log appends an entry to the audit log.
// Failures are ignored; operations never fail because of audit logging.
func Log(entry Entry) {
	if entry.Timestamp == "" {
		entry.Timestamp = time.Now().UTC().Format(TimestampFormat)
	}

	logPath := LogPath()
	if logPath == "" {
		return
	}
	if err := os.MkdirAll(filepath.Dir(logPath), 0700); err != nil {
		return
	}

	f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return
	}
	defer f.Close()

	data, err := json.Marshal(entry)
	if err != nil {
		return
	}
	_, _ = f.Write(append(data, '\n'))
}

// LogPath returns the path to the audit log file.
func LogPath() string {
	if configs.UserKaitiakiSettings == nil {
		return ""
	}
	return configs.UserKaitiakiSettings.AuditLogPath
}

// ReadEntries reads all entries from the audit log.
// Returns an empty slice if the log doesn't exist.
func ReadEntries() ([]Entry, error) {
	logPath := LogPath()
	if logPath == "" {
		return nil, nil
	}

	data, err := os.ReadFile(logPath)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return ParseEntries(data)
}

// ParseEntries parses JSON Lines data into audit entries.
// Malformed lines are silently skipped.
func ParseEntries(data []byte) ([]Entry, error) {
	if len(data) == 0 {
		return nil, nil
	}

	var entries []Entry
	start := 0

	for i := 0; i <= len(data); i++ {
		if i == len(data) || data[i] == '\n' {
			line := data[start:i]
			start = i + 1

			if len(line) == 0 {
				continue
			}

			var entry Entry
			if err := json.Unmarshal(line, &entry); err != nil {
				continue
			}
			entries = append(entries, entry)
		}
	}

	return entries, nil
}
