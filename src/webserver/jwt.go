package webserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"

	"github.com/janawaaz/janawaaz/src/types"
)

func JWTMiddleware(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.GetHeader("Authorization")
		if !strings.HasPrefix(h, "Bearer ") {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		tok, err := jwt.Parse(h[7:], func(t *jwt.Token) (interface{}, error) { return secret, nil })
		if err != nil || !tok.Valid {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		claims, ok := tok.Claims.(jwt.MapClaims)
		if !ok {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		uid, _ := claims["sub"].(string)
		if uid == "" {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		c.Set("uid", uid)
		if role, ok := claims["role"].(string); ok {
			c.Set("role", role)
		}
		if email, ok := claims["email"].(string); ok {
			c.Set("email", email)
		}
		c.Next()
	}
}

// RequireAdmin checks the role in the database, not the token, so a
// demoted admin loses access as soon as the row changes.
func RequireAdmin(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var u types.User
		if err := db.Select("role").First(&u, "id = ?", c.GetString("uid")).Error; err != nil {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"err": "admin only"})
			return
		}
		if u.Role != types.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"err": "admin only"})
			return
		}
		c.Next()
	}
}

func issueJWT(u types.User, secret []byte) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   u.ID,
		"role":  u.Role,
		"email": u.Email,
		"exp":   time.Now().Add(24 * time.Hour).Unix(),
	})
	return token.SignedString(secret)
}
