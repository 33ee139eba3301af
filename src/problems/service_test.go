package problems

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/janawaaz/janawaaz/src/apperr"
	"github.com/janawaaz/janawaaz/src/data"
	"github.com/janawaaz/janawaaz/src/quota"
	"github.com/janawaaz/janawaaz/src/types"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, data.Migrate(db))
	return db
}

func seedUser(t *testing.T, db *gorm.DB, id string) {
	t.Helper()
	u := types.User{ID: id, Email: id + "@example.com", Name: id, Role: types.RoleCitizen}
	require.NoError(t, db.Create(&u).Error)
}

func TestCreateWeeklyQuota(t *testing.T) {
	db := newTestDB(t)
	seedUser(t, db, "u1")
	// Wednesday of ISO week 9
	now := time.Date(2024, 2, 28, 10, 0, 0, 0, time.UTC)
	ledger := quota.NewLedger(db, time.UTC).WithClock(func() time.Time { return now })
	svc := NewService(db, ledger, 1)
	ctx := context.Background()

	_, err := svc.Create(ctx, "u1", CreateInput{Title: "pothole on main street"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, "u1", CreateInput{Title: "second this week"})
	assert.True(t, apperr.Is(err, apperr.CodeQuotaExceeded))

	// next Monday opens a new window
	now = time.Date(2024, 3, 4, 0, 0, 1, 0, time.UTC)
	_, err = svc.Create(ctx, "u1", CreateInput{Title: "new week, new problem"})
	assert.NoError(t, err)
}

func TestCreateRejectedInputConsumesNoQuota(t *testing.T) {
	db := newTestDB(t)
	seedUser(t, db, "u1")
	now := time.Date(2024, 2, 28, 10, 0, 0, 0, time.UTC)
	ledger := quota.NewLedger(db, time.UTC).WithClock(func() time.Time { return now })
	svc := NewService(db, ledger, 1)
	ctx := context.Background()

	_, err := svc.Create(ctx, "u1", CreateInput{Title: "<script>alert(1)</script>"})
	assert.True(t, apperr.Is(err, apperr.CodeInvalidArgument))

	remaining, err := svc.WeeklyRemaining(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, remaining)
}

func TestCreateStripsMarkup(t *testing.T) {
	db := newTestDB(t)
	seedUser(t, db, "u1")
	ledger := quota.NewLedger(db, time.UTC)
	svc := NewService(db, ledger, 1)

	p, err := svc.Create(context.Background(), "u1", CreateInput{
		Title:       "<b>broken</b> streetlight",
		Description: "dark <i>corner</i> near the park",
	})
	require.NoError(t, err)
	assert.Equal(t, "broken streetlight", p.Title)
	assert.Equal(t, "dark corner near the park", p.Description)
}

func TestUpvoteToggles(t *testing.T) {
	db := newTestDB(t)
	seedUser(t, db, "author")
	seedUser(t, db, "voter")
	ledger := quota.NewLedger(db, time.UTC)
	svc := NewService(db, ledger, 1)
	ctx := context.Background()

	p, err := svc.Create(ctx, "author", CreateInput{Title: "garbage pileup"})
	require.NoError(t, err)

	added, err := svc.Upvote(ctx, "voter", p.ID)
	require.NoError(t, err)
	assert.True(t, added)

	var stored types.Problem
	require.NoError(t, db.First(&stored, "id = ?", p.ID).Error)
	assert.Equal(t, 1, stored.UpvoteCount)

	added, err = svc.Upvote(ctx, "voter", p.ID)
	require.NoError(t, err)
	assert.False(t, added)
	require.NoError(t, db.First(&stored, "id = ?", p.ID).Error)
	assert.Equal(t, 0, stored.UpvoteCount)
}

func TestUpvoteRemovedProblem(t *testing.T) {
	db := newTestDB(t)
	seedUser(t, db, "author")
	seedUser(t, db, "voter")
	ledger := quota.NewLedger(db, time.UTC)
	svc := NewService(db, ledger, 1)
	ctx := context.Background()

	p, err := svc.Create(ctx, "author", CreateInput{Title: "soon removed"})
	require.NoError(t, err)
	require.NoError(t, db.Model(&types.Problem{}).Where("id = ?", p.ID).
		UpdateColumn("is_removed", true).Error)

	_, err = svc.Upvote(ctx, "voter", p.ID)
	assert.True(t, apperr.Is(err, apperr.CodeNotFound))
}

func TestListExcludesRemoved(t *testing.T) {
	db := newTestDB(t)
	seedUser(t, db, "a")
	seedUser(t, db, "b")
	ledger := quota.NewLedger(db, time.UTC)
	svc := NewService(db, ledger, 1)
	ctx := context.Background()

	kept, err := svc.Create(ctx, "a", CreateInput{Title: "kept", State: "KA"})
	require.NoError(t, err)
	removed, err := svc.Create(ctx, "b", CreateInput{Title: "removed", State: "KA"})
	require.NoError(t, err)
	require.NoError(t, db.Model(&types.Problem{}).Where("id = ?", removed.ID).
		UpdateColumn("is_removed", true).Error)

	out, err := svc.List(ctx, Filter{State: "KA"})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, kept.ID, out[0].ID)
}
