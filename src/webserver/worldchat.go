package webserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/janawaaz/janawaaz/src/chat"
)

type WorldChat struct {
	svc *chat.Service
}

func NewWorldChat(svc *chat.Service) WorldChat { return WorldChat{svc: svc} }

func (h WorldChat) List(c *gin.Context) {
	msgs, err := h.svc.ListWorld(c.Request.Context(), c.GetString("uid"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": msgs})
}

func (h WorldChat) Send(c *gin.Context) {
	var req struct {
		Body string `json:"body" binding:"required,min=1,max=2000"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}

	msg, err := h.svc.SendWorld(c.Request.Context(), c.GetString("uid"), req.Body)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, msg)
}

func (h WorldChat) Quota(c *gin.Context) {
	remaining, err := h.svc.WorldRemaining(c.Request.Context(), c.GetString("uid"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"remaining": remaining})
}
