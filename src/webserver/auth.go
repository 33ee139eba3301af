package webserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/janawaaz/janawaaz/src/types"
	"github.com/janawaaz/janawaaz/src/webclient"
)

// GoogleIdentity is what a verified Google ID token yields.
type GoogleIdentity struct {
	Subject string
	Email   string
	Name    string
	Picture string
}

type GoogleVerifier interface {
	Verify(ctx context.Context, idToken string) (GoogleIdentity, error)
}

const tokeninfoURL = "https://oauth2.googleapis.com/tokeninfo"

// tokeninfoVerifier validates ID tokens against Google's tokeninfo
// endpoint.
type tokeninfoVerifier struct {
	baseURL    string
	httpClient *http.Client
}

func NewTokeninfoVerifier() GoogleVerifier {
	return &tokeninfoVerifier{
		baseURL:    tokeninfoURL,
		httpClient: webclient.New(10 * time.Second),
	}
}

func (v *tokeninfoVerifier) Verify(ctx context.Context, idToken string) (GoogleIdentity, error) {
	status, body, err := webclient.DoWithRetry(ctx, 2, 300*time.Millisecond, func() (int, []byte, error) {
		req, err := http.NewRequestWithContext(ctx, "GET",
			v.baseURL+"?id_token="+url.QueryEscape(idToken), nil)
		if err != nil {
			return 0, nil, err
		}
		resp, err := v.httpClient.Do(req)
		if err != nil {
			return 0, nil, err
		}
		defer resp.Body.Close()
		body, err := io.ReadAll(resp.Body)
		return resp.StatusCode, body, err
	})
	if err != nil {
		return GoogleIdentity{}, err
	}
	if status != http.StatusOK {
		return GoogleIdentity{}, fmt.Errorf("tokeninfo: %s", string(body))
	}

	var info struct {
		Sub     string `json:"sub"`
		Email   string `json:"email"`
		Name    string `json:"name"`
		Picture string `json:"picture"`
	}
	if err := json.Unmarshal(body, &info); err != nil {
		return GoogleIdentity{}, err
	}
	if info.Sub == "" || info.Email == "" {
		return GoogleIdentity{}, fmt.Errorf("tokeninfo: incomplete identity")
	}
	return GoogleIdentity{Subject: info.Sub, Email: info.Email, Name: info.Name, Picture: info.Picture}, nil
}

type Auth struct {
	db         *gorm.DB
	jwtSecret  []byte
	adminEmail string
	verifier   GoogleVerifier
}

func NewAuth(db *gorm.DB, secret []byte, adminEmail string) Auth {
	return Auth{db: db, jwtSecret: secret, adminEmail: adminEmail, verifier: NewTokeninfoVerifier()}
}

// Google exchanges a Google ID token for a local JWT, creating the user
// row on first sign-in.
func (a Auth) Google(c *gin.Context) {
	var req struct {
		IDToken string `json:"idToken" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}

	ident, err := a.verifier.Verify(c.Request.Context(), req.IDToken)
	if err != nil {
		log.Printf("auth: token verification failed from IP %s: %v", c.ClientIP(), err)
		c.JSON(http.StatusUnauthorized, gin.H{"err": "invalid token"})
		return
	}

	var user types.User
	err = a.db.First(&user, "email = ?", ident.Email).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		role := types.RoleCitizen
		if a.adminEmail != "" && ident.Email == a.adminEmail {
			role = types.RoleAdmin
		}
		user = types.User{
			ID:        uuid.NewString(),
			Email:     ident.Email,
			Name:      ident.Name,
			AvatarURL: ident.Picture,
			Role:      role,
		}
		if err := a.db.Create(&user).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"err": "sign-in failed"})
			return
		}
		log.Printf("auth: created user %s (%s)", user.ID, user.Email)
	} else if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": "sign-in failed"})
		return
	}

	if user.IsBlocked {
		c.JSON(http.StatusForbidden, gin.H{"err": "account blocked"})
		return
	}

	token, err := issueJWT(user, a.jwtSecret)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": "sign-in failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "user": user})
}
