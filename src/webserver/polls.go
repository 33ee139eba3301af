package webserver

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/janawaaz/janawaaz/src/chat"
)

type Polls struct {
	chat *chat.Service
}

func NewPolls(chatSvc *chat.Service) Polls { return Polls{chat: chatSvc} }

func pollID(c *gin.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("pollId"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"err": "invalid poll id"})
		return 0, false
	}
	return id, true
}

func (h Polls) Create(c *gin.Context) {
	id, ok := protestID(c)
	if !ok {
		return
	}
	var req struct {
		Question string   `json:"question" binding:"required,max=512"`
		Options  []string `json:"options" binding:"required,min=2,max=10"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}

	p, err := h.chat.CreatePoll(c.Request.Context(), id, c.GetString("uid"), req.Question, req.Options)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h Polls) List(c *gin.Context) {
	id, ok := protestID(c)
	if !ok {
		return
	}
	polls, err := h.chat.ListPolls(c.Request.Context(), id, c.GetString("uid"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"polls": polls})
}

func (h Polls) Vote(c *gin.Context) {
	id, ok := pollID(c)
	if !ok {
		return
	}
	var req struct {
		OptionIndex *int `json:"optionIndex" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}

	p, err := h.chat.VotePoll(c.Request.Context(), id, c.GetString("uid"), *req.OptionIndex)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h Polls) Close(c *gin.Context) {
	id, ok := pollID(c)
	if !ok {
		return
	}
	if err := h.chat.ClosePoll(c.Request.Context(), id, c.GetString("uid")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
