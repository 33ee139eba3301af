package webserver

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/janawaaz/janawaaz/src/types"
)

type Votes struct{ db *gorm.DB }

func NewVotes(db *gorm.DB) Votes { return Votes{db: db} }

// Cast records the annual vote for a leader: one per (voter, leader,
// year), recasting replaces the previous choice.
func (v Votes) Cast(c *gin.Context) {
	var req struct {
		LeaderID string `json:"leaderId" binding:"required"`
		VoteType string `json:"voteType" binding:"required,oneof=positive negative"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}

	var leader types.User
	if err := v.db.First(&leader, "id = ? AND role = ?", req.LeaderID, types.RoleLeader).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"err": "leader not found"})
		return
	}

	voterID := c.GetString("uid")
	year := time.Now().Year()

	// recasting replaces the previous choice; delete and create move
	// together so a failed delete cannot turn into a duplicate-key error
	err := v.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("voter_id = ? AND leader_id = ? AND year = ?", voterID, req.LeaderID, year).
			Delete(&types.AnnualVote{}).Error
		if err != nil {
			return err
		}
		return tx.Create(&types.AnnualVote{
			VoterID:  voterID,
			LeaderID: req.LeaderID,
			Year:     year,
			VoteType: req.VoteType,
		}).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}

	c.Status(http.StatusCreated)
}

func (v Votes) Summary(c *gin.Context) {
	leaderID := c.Param("leaderId")
	year := time.Now().Year()

	var leader types.User
	if err := v.db.First(&leader, "id = ? AND role = ?", leaderID, types.RoleLeader).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"err": "leader not found"})
		return
	}

	type agg struct {
		VoteType string
		Count    int
	}
	var rows []agg
	err := v.db.Model(&types.AnnualVote{}).
		Select("vote_type, count(*) as count").
		Where("leader_id = ? AND year = ?", leaderID, year).
		Group("vote_type").
		Scan(&rows).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}

	out := gin.H{"positive": 0, "negative": 0, "total": 0}
	total := 0
	for _, r := range rows {
		out[r.VoteType] = r.Count
		total += r.Count
	}
	out["total"] = total

	c.JSON(http.StatusOK, out)
}
