// /internal/storage/storage_commands.go
package storage

import "time"

const commandHistoryLimit int = 50

type CommandHistoryRecord struct {
	ChannelID string    `json:"channel_id"`
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	Command   string    `json:"command"`
	Datetime  time.Time `json:"datetime"`
}

// AppendCommandToHistory records a command execution, keeping only the most
// recent commandHistoryLimit entries.
func (s *Storage) AppendCommandToHistory(record CommandHistoryRecord) error {
	history, err := s.FetchCommandHistory()
	if err != nil {
		return err
	}

	history = append(history, record)
	if len(history) > commandHistoryLimit {
		history = history[len(history)-commandHistoryLimit:]
	}

	s.ds.Add(commandHistoryKey, history)
	return nil
}

func (s *Storage) FetchCommandHistory() ([]CommandHistoryRecord, error) {
	data, exists := s.ds.Get(commandHistoryKey)
	if !exists {
		return []CommandHistoryRecord{}, nil
	}

	var history []CommandHistoryRecord
	if err := decode(data, &history); err != nil {
		return nil, err
	}
	return history, nil
}
