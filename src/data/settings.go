package data

import (
	"sync"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/janawaaz/janawaaz/src/types"
)

// Settings is the runtime configuration stored in the settings table,
// cached in-process. Reads hit the cache; Put writes through and
// refreshes, so a change is visible on this instance immediately and on
// others at their next Load.
type Settings struct {
	db     *gorm.DB
	mu     sync.RWMutex
	values map[string]string
}

func NewSettings(db *gorm.DB) *Settings {
	return &Settings{db: db, values: map[string]string{}}
}

// Load replaces the cache with the table's current contents.
func (s *Settings) Load() error {
	var rows []types.Setting
	if err := s.db.Find(&rows).Error; err != nil {
		return err
	}

	values := make(map[string]string, len(rows))
	for _, r := range rows {
		values[r.Name] = r.Value
	}

	s.mu.Lock()
	s.values = values
	s.mu.Unlock()
	return nil
}

// Get returns the cached value, or "" when the setting is unset.
func (s *Settings) Get(name string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values[name]
}

// Put upserts a setting and updates the cache.
func (s *Settings) Put(name, value string) error {
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"value"}),
	}).Create(&types.Setting{Name: name, Value: value}).Error
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.values[name] = value
	s.mu.Unlock()
	return nil
}
