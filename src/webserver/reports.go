package webserver

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/janawaaz/janawaaz/src/moderation"
	"github.com/janawaaz/janawaaz/src/types"
)

type Reports struct {
	pipeline *moderation.Pipeline
	db       *gorm.DB
}

func NewReports(pipeline *moderation.Pipeline, db *gorm.DB) Reports {
	return Reports{pipeline: pipeline, db: db}
}

func (h Reports) Create(c *gin.Context) {
	var req struct {
		ContentType string `json:"contentType" binding:"required,oneof=problem world_chat protest_chat user protest_group"`
		ContentID   uint64 `json:"contentId" binding:"required"`
		Reason      string `json:"reason" binding:"required,max=512"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}

	r, err := h.pipeline.Report(c.Request.Context(), c.GetString("uid"), req.ContentType, req.ContentID, req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, r)
}

func (h Reports) AdminList(c *gin.Context) {
	q := h.db.Order("created_at desc").Limit(100)
	if status := c.Query("status"); status != "" {
		q = q.Where("status = ?", status)
	}

	var reports []types.Report
	if err := q.Find(&reports).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"reports": reports})
}

func (h Reports) Resolve(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"err": "invalid report id"})
		return
	}
	var req struct {
		Action string `json:"action" binding:"required,oneof=remove dismiss"`
		Note   string `json:"note" binding:"max=512"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}

	if err := h.pipeline.Resolve(c.Request.Context(), id, moderation.Action(req.Action), req.Note); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
