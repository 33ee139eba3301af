package webserver

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/janawaaz/janawaaz/src/cache"
	"github.com/janawaaz/janawaaz/src/types"
)

type Users struct {
	db    *gorm.DB
	cache *cache.Cache
}

func NewUsers(db *gorm.DB, c *cache.Cache) Users { return Users{db: db, cache: c} }

func (h Users) Me(c *gin.Context) {
	var u types.User
	if err := h.db.First(&u, "id = ?", c.GetString("uid")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"err": "user not found"})
		return
	}
	c.JSON(http.StatusOK, u)
}

func (h Users) UpdateMe(c *gin.Context) {
	var req struct {
		Name      string `json:"name" binding:"max=128"`
		Username  string `json:"username" binding:"max=64"`
		AvatarURL string `json:"avatarUrl" binding:"max=512"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}

	updates := map[string]any{}
	if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.Username != "" {
		updates["username"] = req.Username
	}
	if req.AvatarURL != "" {
		updates["avatar_url"] = req.AvatarURL
	}
	if len(updates) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"err": "nothing to update"})
		return
	}

	if err := h.db.Model(&types.User{}).Where("id = ?", c.GetString("uid")).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}

	var u types.User
	if err := h.db.First(&u, "id = ?", c.GetString("uid")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"err": "user not found"})
		return
	}
	c.JSON(http.StatusOK, u)
}

func (h Users) Leaders(c *gin.Context) {
	state := c.Query("state")
	district := c.Query("district")

	// The directory changes slowly; a short TTL keeps follower counts
	// close enough without hitting mysql on every scroll.
	cacheKey := "leaders." + state + "." + district
	var leaders []types.User
	if h.cache.GetJSON(c.Request.Context(), cacheKey, &leaders) {
		c.JSON(http.StatusOK, gin.H{"leaders": leaders})
		return
	}

	q := h.db.Where("role = ? AND leader_verified = ? AND is_blocked = ?",
		types.RoleLeader, true, false).
		Order("follower_count desc")
	if state != "" {
		q = q.Where("leader_state = ?", state)
	}
	if district != "" {
		q = q.Where("leader_district = ?", district)
	}

	if err := q.Find(&leaders).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}
	h.cache.SetJSON(c.Request.Context(), cacheKey, leaders)
	c.JSON(http.StatusOK, gin.H{"leaders": leaders})
}

// Follow toggles following a user, mirroring the upvote toggle shape.
func (h Users) Follow(c *gin.Context) {
	followerID := c.GetString("uid")
	followingID := c.Param("id")
	if followerID == followingID {
		c.JSON(http.StatusBadRequest, gin.H{"err": "cannot follow yourself"})
		return
	}

	var target types.User
	if err := h.db.First(&target, "id = ?", followingID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"err": "user not found"})
		return
	}

	action := "followed"
	err := h.db.Transaction(func(tx *gorm.DB) error {
		var existing types.Follow
		err := tx.First(&existing, "follower_id = ? AND following_id = ?", followerID, followingID).Error
		switch {
		case err == nil:
			action = "unfollowed"
			if err := tx.Delete(&existing).Error; err != nil {
				return err
			}
			return tx.Model(&types.User{}).Where("id = ?", followingID).
				UpdateColumn("follower_count", gorm.Expr("follower_count - 1")).Error
		case errors.Is(err, gorm.ErrRecordNotFound):
			if err := tx.Create(&types.Follow{FollowerID: followerID, FollowingID: followingID}).Error; err != nil {
				return err
			}
			return tx.Model(&types.User{}).Where("id = ?", followingID).
				UpdateColumn("follower_count", gorm.Expr("follower_count + 1")).Error
		default:
			return err
		}
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"action": action})
}

func (h Users) Notifications(c *gin.Context) {
	var out []types.Notification
	err := h.db.Where("user_id = ?", c.GetString("uid")).
		Order("created_at desc").Limit(50).
		Find(&out).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"notifications": out})
}

func (h Users) MarkNotificationRead(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"err": "invalid notification id"})
		return
	}

	err = h.db.Model(&types.Notification{}).
		Where("id = ? AND user_id = ?", id, c.GetString("uid")).
		UpdateColumn("is_read", true).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}
