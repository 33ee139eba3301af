package data

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/janawaaz/janawaaz/src/types"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&types.Setting{}))
	return db
}

func TestSettingsLoadAndGet(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, db.Create(&types.Setting{Name: "maintenance", Value: "1"}).Error)

	s := NewSettings(db)
	assert.Equal(t, "", s.Get("maintenance"), "unset before Load")

	require.NoError(t, s.Load())
	assert.Equal(t, "1", s.Get("maintenance"))
	assert.Equal(t, "", s.Get("missing"))
}

func TestSettingsPutUpserts(t *testing.T) {
	db := newTestDB(t)
	s := NewSettings(db)
	require.NoError(t, s.Load())

	require.NoError(t, s.Put("maintenance", "1"))
	assert.Equal(t, "1", s.Get("maintenance"))

	// same name again updates in place, no duplicate row
	require.NoError(t, s.Put("maintenance", "0"))
	assert.Equal(t, "0", s.Get("maintenance"))

	var count int64
	require.NoError(t, db.Model(&types.Setting{}).Where("name = ?", "maintenance").Count(&count).Error)
	assert.Equal(t, int64(1), count)

	// a fresh instance sees the stored value after its own Load
	other := NewSettings(db)
	require.NoError(t, other.Load())
	assert.Equal(t, "0", other.Get("maintenance"))
}
