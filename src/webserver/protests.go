package webserver

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/janawaaz/janawaaz/src/chat"
	"github.com/janawaaz/janawaaz/src/protests"
)

type Protests struct {
	svc  *protests.Service
	chat *chat.Service
}

func NewProtests(svc *protests.Service, chatSvc *chat.Service) Protests {
	return Protests{svc: svc, chat: chatSvc}
}

func protestID(c *gin.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"err": "invalid protest id"})
		return 0, false
	}
	return id, true
}

func (h Protests) Create(c *gin.Context) {
	var req struct {
		Title        string `json:"title" binding:"required,max=255"`
		Description  string `json:"description" binding:"max=5000"`
		State        string `json:"state" binding:"max=64"`
		District     string `json:"district" binding:"max=64"`
		IsPublicJoin bool   `json:"isPublicJoin"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}

	g, err := h.svc.Create(c.Request.Context(), c.GetString("uid"), protests.CreateInput{
		Title:        req.Title,
		Description:  req.Description,
		State:        req.State,
		District:     req.District,
		IsPublicJoin: req.IsPublicJoin,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, g)
}

func (h Protests) List(c *gin.Context) {
	groups, err := h.svc.List(c.Request.Context(), protests.Filter{
		State:    c.Query("state"),
		District: c.Query("district"),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"protests": groups})
}

func (h Protests) Join(c *gin.Context) {
	id, ok := protestID(c)
	if !ok {
		return
	}
	m, err := h.svc.Join(c.Request.Context(), id, c.GetString("uid"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, m)
}

func (h Protests) Approve(c *gin.Context) {
	id, ok := protestID(c)
	if !ok {
		return
	}
	err := h.svc.Approve(c.Request.Context(), id, c.GetString("uid"), c.Param("userId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h Protests) Chat(c *gin.Context) {
	id, ok := protestID(c)
	if !ok {
		return
	}
	msgs, err := h.chat.ListProtest(c.Request.Context(), id, c.GetString("uid"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": msgs})
}

func (h Protests) SendChat(c *gin.Context) {
	id, ok := protestID(c)
	if !ok {
		return
	}
	var req struct {
		Body string `json:"body" binding:"required,min=1,max=2000"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}

	msg, err := h.chat.SendProtest(c.Request.Context(), id, c.GetString("uid"), req.Body)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, msg)
}

func (h Protests) msgID(c *gin.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("msgId"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"err": "invalid message id"})
		return 0, false
	}
	return id, true
}

func (h Protests) Pin(c *gin.Context) {
	id, ok := protestID(c)
	if !ok {
		return
	}
	msgID, ok := h.msgID(c)
	if !ok {
		return
	}
	if err := h.chat.PinProtestMessage(c.Request.Context(), id, msgID, c.GetString("uid")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h Protests) Publish(c *gin.Context) {
	id, ok := protestID(c)
	if !ok {
		return
	}
	msgID, ok := h.msgID(c)
	if !ok {
		return
	}
	if err := h.chat.PublishProtestMessage(c.Request.Context(), id, msgID, c.GetString("uid")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h Protests) RemoveChat(c *gin.Context) {
	id, ok := protestID(c)
	if !ok {
		return
	}
	msgID, ok := h.msgID(c)
	if !ok {
		return
	}
	if err := h.chat.RemoveProtestMessage(c.Request.Context(), id, msgID, c.GetString("uid")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
