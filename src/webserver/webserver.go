package webserver

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/janawaaz/janawaaz/src/config"
	"github.com/janawaaz/janawaaz/src/data"
)

func New(cfg config.Config, db *gorm.DB, rdb *redis.Client, settings *data.Settings) *gin.Engine {
	g := gin.New()
	g.Use(gin.Logger(), gin.Recovery())
	attachRoutes(g, cfg, db, rdb, settings)
	return g
}
