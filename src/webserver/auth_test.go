package webserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

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

type fakeVerifier struct {
	ident GoogleIdentity
	err   error
}

func (f fakeVerifier) Verify(ctx context.Context, idToken string) (GoogleIdentity, error) {
	return f.ident, f.err
}

func authRouter(db *gorm.DB, v GoogleVerifier) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	a := Auth{db: db, jwtSecret: []byte("test-secret"), adminEmail: "admin@example.com", verifier: v}
	r.POST("/auth/google", a.Google)
	return r
}

func postGoogle(t *testing.T, r *gin.Engine, idToken string) *httptest.ResponseRecorder {
	t.Helper()
	body, _ := json.Marshal(gin.H{"idToken": idToken})
	req := httptest.NewRequest("POST", "/auth/google", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestGoogleFirstSignInCreatesUser(t *testing.T) {
	db := newTestDB(t)
	r := authRouter(db, fakeVerifier{ident: GoogleIdentity{
		Subject: "g-1", Email: "alice@example.com", Name: "Alice",
	}})

	w := postGoogle(t, r, "valid")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Token string     `json:"token"`
		User  types.User `json:"user"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, types.RoleCitizen, resp.User.Role)

	var stored types.User
	require.NoError(t, db.First(&stored, "email = ?", "alice@example.com").Error)
	assert.Equal(t, resp.User.ID, stored.ID)

	// signing in again reuses the row
	w = postGoogle(t, r, "valid")
	require.Equal(t, http.StatusOK, w.Code)
	var count int64
	db.Model(&types.User{}).Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestGoogleAdminEmailGetsAdminRole(t *testing.T) {
	db := newTestDB(t)
	r := authRouter(db, fakeVerifier{ident: GoogleIdentity{
		Subject: "g-2", Email: "admin@example.com", Name: "Root",
	}})

	w := postGoogle(t, r, "valid")
	require.Equal(t, http.StatusOK, w.Code)

	var stored types.User
	require.NoError(t, db.First(&stored, "email = ?", "admin@example.com").Error)
	assert.Equal(t, types.RoleAdmin, stored.Role)
}

func TestGoogleInvalidToken(t *testing.T) {
	db := newTestDB(t)
	r := authRouter(db, fakeVerifier{err: errors.New("expired")})

	w := postGoogle(t, r, "bad")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGoogleBlockedUser(t *testing.T) {
	db := newTestDB(t)
	blocked := types.User{ID: "u1", Email: "banned@example.com", Name: "B", Role: types.RoleCitizen, IsBlocked: true}
	require.NoError(t, db.Create(&blocked).Error)
	r := authRouter(db, fakeVerifier{ident: GoogleIdentity{
		Subject: "g-3", Email: "banned@example.com", Name: "B",
	}})

	w := postGoogle(t, r, "valid")
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestJWTMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	secret := []byte("test-secret")
	r := gin.New()
	r.GET("/whoami", JWTMiddleware(secret), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"uid": c.GetString("uid")})
	})

	t.Run("missing header", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest("GET", "/whoami", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("garbage token", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/whoami", nil)
		req.Header.Set("Authorization", "Bearer not.a.jwt")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("wrong secret", func(t *testing.T) {
		tok, err := issueJWT(types.User{ID: "u1", Role: types.RoleCitizen}, []byte("other-secret"))
		require.NoError(t, err)
		req := httptest.NewRequest("GET", "/whoami", nil)
		req.Header.Set("Authorization", "Bearer "+tok)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("valid token", func(t *testing.T) {
		tok, err := issueJWT(types.User{ID: "u1", Role: types.RoleCitizen, Email: "a@b.c"}, secret)
		require.NoError(t, err)
		req := httptest.NewRequest("GET", "/whoami", nil)
		req.Header.Set("Authorization", "Bearer "+tok)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "u1")
	})
}

func TestRequireAdmin(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := newTestDB(t)
	require.NoError(t, db.Create(&types.User{ID: "root", Email: "r@x.c", Name: "r", Role: types.RoleAdmin}).Error)
	require.NoError(t, db.Create(&types.User{ID: "pleb", Email: "p@x.c", Name: "p", Role: types.RoleCitizen}).Error)

	secret := []byte("test-secret")
	r := gin.New()
	r.GET("/admin", JWTMiddleware(secret), RequireAdmin(db), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	get := func(uid, role string) int {
		tok, err := issueJWT(types.User{ID: uid, Role: role}, secret)
		require.NoError(t, err)
		req := httptest.NewRequest("GET", "/admin", nil)
		req.Header.Set("Authorization", "Bearer "+tok)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, get("root", types.RoleAdmin))
	assert.Equal(t, http.StatusForbidden, get("pleb", types.RoleCitizen))
	// role claim in the token does not matter, only the row does
	assert.Equal(t, http.StatusForbidden, get("pleb", types.RoleAdmin))
}
