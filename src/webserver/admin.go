package webserver

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/janawaaz/janawaaz/src/types"
)

// Admin holds the management endpoints behind the admin gate: blocking
// accounts and curating trending problems.
type Admin struct{ db *gorm.DB }

func NewAdmin(db *gorm.DB) Admin { return Admin{db: db} }

// BlockUser sets or clears is_blocked. Blocked users are rejected at
// sign-in; this is the remediation for reports against a user.
func (h Admin) BlockUser(c *gin.Context) {
	var req struct {
		Blocked *bool `json:"blocked" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}

	userID := c.Param("id")
	if userID == c.GetString("uid") {
		c.JSON(http.StatusBadRequest, gin.H{"err": "cannot block yourself"})
		return
	}

	var u types.User
	if err := h.db.First(&u, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"err": "user not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}

	err := h.db.Model(&types.User{}).Where("id = ?", userID).
		UpdateColumn("is_blocked", *req.Blocked).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": userID, "blocked": *req.Blocked})
}

// SetTrending toggles a problem's trending badge for the curated feeds.
func (h Admin) SetTrending(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"err": "invalid problem id"})
		return
	}
	var req struct {
		Trending *bool `json:"trending" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}

	var p types.Problem
	if err := h.db.First(&p, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"err": "problem not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}

	err = h.db.Model(&types.Problem{}).Where("id = ?", id).
		UpdateColumn("is_trending", *req.Trending).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "trending": *req.Trending})
}
