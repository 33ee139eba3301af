package webserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/janawaaz/janawaaz/src/data"
)

type Settings struct{ store *data.Settings }

func NewSettings(store *data.Settings) Settings { return Settings{store: store} }

// Update upserts a runtime setting; the store keeps its cache current.
func (h Settings) Update(c *gin.Context) {
	var req struct {
		Name  string `json:"name" binding:"required,max=32"`
		Value string `json:"value" binding:"max=256"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}

	if err := h.store.Put(req.Name, req.Value); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"name": req.Name, "value": req.Value})
}
