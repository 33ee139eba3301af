package webserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/janawaaz/janawaaz/src/chat"
)

type PersonalChat struct {
	svc *chat.Service
}

func NewPersonalChat(svc *chat.Service) PersonalChat { return PersonalChat{svc: svc} }

func (h PersonalChat) List(c *gin.Context) {
	msgs, err := h.svc.ListPersonal(c.Request.Context(), c.GetString("uid"), c.Param("userId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": msgs})
}

func (h PersonalChat) Send(c *gin.Context) {
	var req struct {
		Body string `json:"body" binding:"required,min=1,max=2000"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}

	msg, err := h.svc.SendPersonal(c.Request.Context(), c.GetString("uid"), c.Param("userId"), req.Body)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, msg)
}
