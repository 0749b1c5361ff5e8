package scheduler

import (
	"context"
	"encoding/json"
	"sync"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ShownStateKey is the single key/value entry holding already-shown
// composite keys as a JSON array of strings.
const ShownStateKey = "shown_notification_ids_v1"

// StateStore persists the shown set. Save is best-effort: callers log and
// swallow errors, worst case is a duplicate alert after a restart.
type StateStore interface {
	LoadShown(ctx context.Context) ([]string, error)
	SaveShown(ctx context.Context, keys []string) error
}

// State is a key/value row; the shown set lives under ShownStateKey.
type State struct {
	Key   string `gorm:"primaryKey;type:text"`
	Value string `gorm:"type:jsonb;not null;default:'[]'"`
}

func (State) TableName() string { return "scheduler_state" }

type GormStateStore struct {
	DB *gorm.DB
}

func (s *GormStateStore) LoadShown(ctx context.Context) ([]string, error) {
	var row State
	err := s.DB.WithContext(ctx).First(&row, "key = ?", ShownStateKey).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var keys []string
	if err := json.Unmarshal([]byte(row.Value), &keys); err != nil {
		// corrupt state is discarded, not fatal
		return nil, nil
	}
	return keys, nil
}

func (s *GormStateStore) SaveShown(ctx context.Context, keys []string) error {
	b, err := json.Marshal(keys)
	if err != nil {
		return err
	}
	row := State{Key: ShownStateKey, Value: string(b)}
	return s.DB.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value"}),
		}).
		Create(&row).Error
}

// MemoryStateStore keeps the shown set in memory. Used in tests and as a
// fallback when no database-backed store is wired.
type MemoryStateStore struct {
	mu   sync.Mutex
	keys []string
}

func (m *MemoryStateStore) LoadShown(context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out, nil
}

func (m *MemoryStateStore) SaveShown(_ context.Context, keys []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.keys = make([]string, len(keys))
	copy(m.keys, keys)
	return nil
}
