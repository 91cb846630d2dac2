package match

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// Messages shown to the player after a generation attempt.
const (
	MsgGenerated = "New map generated !"
	MsgFailed    = "Cannot generate a valid map ... :("
)

// Outcome describes the result of one StartMatch.
type Outcome struct {
	Timestamp  time.Time `json:"timestamp"`
	OK         bool      `json:"ok"`
	Message    string    `json:"message"`
	Seed       int64     `json:"seed"`
	Width      int       `json:"width"`
	Height     int       `json:"height"`
	Players    int       `json:"players"`
	Difficulty string    `json:"difficulty"`
	Attempts   int       `json:"attempts"`
	Reason     string    `json:"reason,omitempty"`
}

// SaveOutcome appends o as a single JSON line to matches.jsonl.
// Errors are logged but never surface to the caller.
func SaveOutcome(o Outcome, logger *slog.Logger) {
	dir, err := outcomeLogDir()
	if err != nil {
		logger.Warn("match log: cannot determine data dir", "error", err)
		return
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		logger.Warn("match log: cannot create data dir", "error", err)
		return
	}
	f, err := os.OpenFile(filepath.Join(dir, "matches.jsonl"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		logger.Warn("match log: cannot open file", "error", err)
		return
	}
	defer f.Close()
	data, err := json.Marshal(o)
	if err != nil {
		logger.Warn("match log: cannot marshal JSON", "error", err)
		return
	}
	f.Write(data)         //nolint:errcheck
	f.Write([]byte("\n")) //nolint:errcheck
}

func outcomeLogDir() (string, error) {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "skirmish"), nil
}
