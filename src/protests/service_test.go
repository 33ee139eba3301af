package protests

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/janawaaz/janawaaz/src/apperr"
	"github.com/janawaaz/janawaaz/src/data"
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

func TestCreateSeedsOwnerMembership(t *testing.T) {
	db := newTestDB(t)
	seedUser(t, db, "owner")
	svc := NewService(db)

	g, err := svc.Create(context.Background(), "owner", CreateInput{Title: "fix the roads", IsPublicJoin: true})
	require.NoError(t, err)
	assert.Equal(t, 1, g.MemberCount)

	var m types.ProtestMember
	require.NoError(t, db.First(&m, "protest_id = ? AND user_id = ?", g.ID, "owner").Error)
	assert.Equal(t, types.MemberRoleOwner, m.Role)
	assert.True(t, m.IsApproved)
}

func TestCreateRequiresTitle(t *testing.T) {
	db := newTestDB(t)
	seedUser(t, db, "owner")
	svc := NewService(db)

	_, err := svc.Create(context.Background(), "owner", CreateInput{Title: "   "})
	assert.True(t, apperr.Is(err, apperr.CodeInvalidArgument))
}

func TestJoinOpenGroupApprovesImmediately(t *testing.T) {
	db := newTestDB(t)
	seedUser(t, db, "owner")
	seedUser(t, db, "joiner")
	svc := NewService(db)
	ctx := context.Background()

	g, err := svc.Create(ctx, "owner", CreateInput{Title: "open group", IsPublicJoin: true})
	require.NoError(t, err)

	m, err := svc.Join(ctx, g.ID, "joiner")
	require.NoError(t, err)
	assert.True(t, m.IsApproved)

	var stored types.ProtestGroup
	require.NoError(t, db.First(&stored, "id = ?", g.ID).Error)
	assert.Equal(t, 2, stored.MemberCount)
}

func TestJoinClosedGroupStaysPending(t *testing.T) {
	db := newTestDB(t)
	seedUser(t, db, "owner")
	seedUser(t, db, "joiner")
	svc := NewService(db)
	ctx := context.Background()

	g, err := svc.Create(ctx, "owner", CreateInput{Title: "closed group", IsPublicJoin: false})
	require.NoError(t, err)

	m, err := svc.Join(ctx, g.ID, "joiner")
	require.NoError(t, err)
	assert.False(t, m.IsApproved)

	// pending members do not count
	var stored types.ProtestGroup
	require.NoError(t, db.First(&stored, "id = ?", g.ID).Error)
	assert.Equal(t, 1, stored.MemberCount)
}

func TestJoinTwiceFails(t *testing.T) {
	db := newTestDB(t)
	seedUser(t, db, "owner")
	seedUser(t, db, "joiner")
	svc := NewService(db)
	ctx := context.Background()

	g, err := svc.Create(ctx, "owner", CreateInput{Title: "group", IsPublicJoin: true})
	require.NoError(t, err)

	_, err = svc.Join(ctx, g.ID, "joiner")
	require.NoError(t, err)
	_, err = svc.Join(ctx, g.ID, "joiner")
	assert.True(t, apperr.Is(err, apperr.CodeFailedPrecondition))
}

func TestApprovePendingMember(t *testing.T) {
	db := newTestDB(t)
	seedUser(t, db, "owner")
	seedUser(t, db, "joiner")
	svc := NewService(db)
	ctx := context.Background()

	g, err := svc.Create(ctx, "owner", CreateInput{Title: "closed group", IsPublicJoin: false})
	require.NoError(t, err)
	_, err = svc.Join(ctx, g.ID, "joiner")
	require.NoError(t, err)

	require.NoError(t, svc.Approve(ctx, g.ID, "owner", "joiner"))

	var m types.ProtestMember
	require.NoError(t, db.First(&m, "protest_id = ? AND user_id = ?", g.ID, "joiner").Error)
	assert.True(t, m.IsApproved)

	var stored types.ProtestGroup
	require.NoError(t, db.First(&stored, "id = ?", g.ID).Error)
	assert.Equal(t, 2, stored.MemberCount)

	// approving again must not double count
	require.NoError(t, svc.Approve(ctx, g.ID, "owner", "joiner"))
	require.NoError(t, db.First(&stored, "id = ?", g.ID).Error)
	assert.Equal(t, 2, stored.MemberCount)
}

func TestApproveRequiresOwnerOrAdmin(t *testing.T) {
	db := newTestDB(t)
	seedUser(t, db, "owner")
	seedUser(t, db, "member")
	seedUser(t, db, "joiner")
	svc := NewService(db)
	ctx := context.Background()

	g, err := svc.Create(ctx, "owner", CreateInput{Title: "closed group", IsPublicJoin: false})
	require.NoError(t, err)
	_, err = svc.Join(ctx, g.ID, "member")
	require.NoError(t, err)
	require.NoError(t, svc.Approve(ctx, g.ID, "owner", "member"))
	_, err = svc.Join(ctx, g.ID, "joiner")
	require.NoError(t, err)

	// plain members cannot approve
	err = svc.Approve(ctx, g.ID, "member", "joiner")
	assert.True(t, apperr.Is(err, apperr.CodeNotApproved))

	// neither can outsiders
	err = svc.Approve(ctx, g.ID, "joiner", "joiner")
	assert.True(t, apperr.Is(err, apperr.CodeNotApproved))
}

func TestApproveMissingMembership(t *testing.T) {
	db := newTestDB(t)
	seedUser(t, db, "owner")
	svc := NewService(db)
	ctx := context.Background()

	g, err := svc.Create(ctx, "owner", CreateInput{Title: "group", IsPublicJoin: false})
	require.NoError(t, err)

	err = svc.Approve(ctx, g.ID, "owner", "nobody")
	assert.True(t, apperr.Is(err, apperr.CodeNotFound))
}

func TestListFilters(t *testing.T) {
	db := newTestDB(t)
	seedUser(t, db, "owner")
	svc := NewService(db)
	ctx := context.Background()

	_, err := svc.Create(ctx, "owner", CreateInput{Title: "a", State: "KA", District: "Bengaluru"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, "owner", CreateInput{Title: "b", State: "MH", District: "Pune"})
	require.NoError(t, err)

	all, err := svc.List(ctx, Filter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	ka, err := svc.List(ctx, Filter{State: "KA"})
	require.NoError(t, err)
	require.Len(t, ka, 1)
	assert.Equal(t, "a", ka[0].Title)
}
