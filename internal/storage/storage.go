// /internal/storage/storage.go
package storage

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/keshon/datastore"
)

const (
	userKeyPrefix     = "user:"
	userIndexKey      = "users/index"
	commandHistoryKey = "log:commands"
)

type Storage struct {
	ds *datastore.DataStore
}

// UserProgress is the durable per-learner record. TotalScore is always the
// sum of BestScores values; it is stored denormalized only so the
// leaderboard can sort without recomputing.
type UserProgress struct {
	UserID            string             `json:"user_id"`
	CompletedRoles    []string           `json:"completed_roles"`
	CurrentLevelIndex int                `json:"current_level_index"`
	TotalScore        float64            `json:"total_score"`
	BestScores        map[string]float64 `json:"best_scores"`
	CreatedAt         time.Time          `json:"created_at"`
	UpdatedAt         time.Time          `json:"updated_at"`
}

// NewUserProgress returns an empty record for userID with timestamps set.
func NewUserProgress(userID string) *UserProgress {
	now := time.Now().UTC()
	return &UserProgress{
		UserID:         userID,
		CompletedRoles: []string{},
		BestScores:     map[string]float64{},
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

func New(filePath string) (*Storage, error) {
	ds, err := datastore.New(filePath)
	if err != nil {
		return nil, err
	}
	return &Storage{ds: ds}, nil
}

func (s *Storage) Close() error {
	return s.ds.Close()
}

// decode round-trips a datastore value into a typed record. Values read back
// from the JSON file come out as map[string]any, so marshal-then-unmarshal is
// the cheapest safe conversion.
func decode(data any, out any) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("error marshalling data: %w", err)
	}
	if err := json.Unmarshal(jsonData, out); err != nil {
		return fmt.Errorf("error unmarshalling record: %w", err)
	}
	return nil
}

// GetUser returns the stored record for userID. The second result is false
// if the user has never been seen.
func (s *Storage) GetUser(userID string) (*UserProgress, bool, error) {
	data, exists := s.ds.Get(userKeyPrefix + userID)
	if !exists {
		return nil, false, nil
	}

	var record UserProgress
	if err := decode(data, &record); err != nil {
		return nil, false, err
	}

	if record.CompletedRoles == nil {
		record.CompletedRoles = []string{}
	}
	if record.BestScores == nil {
		record.BestScores = map[string]float64{}
	}
	record.UserID = userID

	return &record, true, nil
}

// PutUser persists the whole record in a single write, so a reader never
// observes a half-updated record, and keeps the user index current.
func (s *Storage) PutUser(record *UserProgress) error {
	if record.UserID == "" {
		return fmt.Errorf("storage: record without user_id")
	}
	record.UpdatedAt = time.Now().UTC()

	if err := s.addToUserIndex(record.UserID); err != nil {
		return err
	}
	s.ds.Add(userKeyPrefix+record.UserID, record)
	return nil
}

func (s *Storage) addToUserIndex(userID string) error {
	ids, err := s.userIndex()
	if err != nil {
		return err
	}
	for _, id := range ids {
		if id == userID {
			return nil
		}
	}
	s.ds.Add(userIndexKey, append(ids, userID))
	return nil
}

func (s *Storage) userIndex() ([]string, error) {
	data, exists := s.ds.Get(userIndexKey)
	if !exists {
		return []string{}, nil
	}
	var ids []string
	if err := decode(data, &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

// AllUsers loads every known record, ordered by descending total score.
func (s *Storage) AllUsers() ([]*UserProgress, error) {
	ids, err := s.userIndex()
	if err != nil {
		return nil, err
	}

	records := make([]*UserProgress, 0, len(ids))
	for _, id := range ids {
		record, ok, err := s.GetUser(id)
		if err != nil {
			return nil, err
		}
		if ok {
			records = append(records, record)
		}
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].TotalScore > records[j].TotalScore
	})
	return records, nil
}
