package webserver

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/janawaaz/janawaaz/src/problems"
)

type Problems struct {
	svc *problems.Service
}

func NewProblems(svc *problems.Service) Problems { return Problems{svc: svc} }

func (h Problems) Create(c *gin.Context) {
	var req struct {
		Title       string  `json:"title" binding:"required,max=255"`
		Description string  `json:"description" binding:"max=5000"`
		Category    string  `json:"category" binding:"max=64"`
		State       string  `json:"state" binding:"max=64"`
		District    string  `json:"district" binding:"max=64"`
		Latitude    float64 `json:"latitude"`
		Longitude   float64 `json:"longitude"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}

	p, err := h.svc.Create(c.Request.Context(), c.GetString("uid"), problems.CreateInput{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		State:       req.State,
		District:    req.District,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h Problems) List(c *gin.Context) {
	out, err := h.svc.List(c.Request.Context(), problems.Filter{
		State:    c.Query("state"),
		District: c.Query("district"),
		Category: c.Query("category"),
		Trending: c.Query("trending") == "true",
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"problems": out})
}

func (h Problems) Upvote(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"err": "invalid problem id"})
		return
	}

	added, err := h.svc.Upvote(c.Request.Context(), c.GetString("uid"), id)
	if err != nil {
		respondError(c, err)
		return
	}
	action := "removed"
	if added {
		action = "added"
	}
	c.JSON(http.StatusOK, gin.H{"action": action})
}

func (h Problems) Quota(c *gin.Context) {
	remaining, err := h.svc.WeeklyRemaining(c.Request.Context(), c.GetString("uid"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"remaining": remaining})
}
