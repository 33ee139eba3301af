package webserver

import (
	"log"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/janawaaz/janawaaz/src/ai"
	"github.com/janawaaz/janawaaz/src/cache"
	"github.com/janawaaz/janawaaz/src/chat"
	"github.com/janawaaz/janawaaz/src/config"
	"github.com/janawaaz/janawaaz/src/data"
	"github.com/janawaaz/janawaaz/src/moderation"
	"github.com/janawaaz/janawaaz/src/problems"
	"github.com/janawaaz/janawaaz/src/protests"
	"github.com/janawaaz/janawaaz/src/quota"
	"github.com/janawaaz/janawaaz/src/realtime"
)

// maintenanceGate rejects writes and reads alike while the operator has
// the maintenance flag set. Admin routes stay open so the flag can be
// cleared through the API.
func maintenanceGate(settings *data.Settings) gin.HandlerFunc {
	return func(c *gin.Context) {
		if settings.Get("maintenance") == "1" {
			c.AbortWithStatusJSON(503, gin.H{"err": "down for maintenance, try again shortly"})
			return
		}
		c.Next()
	}
}

func attachRoutes(r *gin.Engine, cfg config.Config, db *gorm.DB, rdb *redis.Client, settings *data.Settings) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:8081", "https://app.janawaaz.org"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	loc, err := time.LoadLocation(cfg.QuotaTimezone)
	if err != nil {
		log.Printf("invalid QUOTA_TIMEZONE %q, using UTC: %v", cfg.QuotaTimezone, err)
		loc = time.UTC
	}

	var classifier ai.Classifier
	if cfg.GeminiKey != "" {
		classifier = ai.NewGeminiClassifier(cfg.GeminiKey)
	}

	ledger := quota.NewLedger(db, loc)
	chatSvc := chat.NewService(db, ledger, chat.Config{
		WorldDailyLimit: cfg.WorldChatDailyLimit,
		Classifier:      classifier,
		Publisher:       realtime.NewRedis(rdb),
	})
	protestSvc := protests.NewService(db)
	problemSvc := problems.NewService(db, ledger, cfg.ProblemWeeklyLimit)
	pipeline := moderation.NewPipeline(db)

	secret := []byte(cfg.JWTSecret)
	authH := NewAuth(db, secret, cfg.AdminEmail)
	worldH := NewWorldChat(chatSvc)
	personalH := NewPersonalChat(chatSvc)
	protestH := NewProtests(protestSvc, chatSvc)
	pollH := NewPolls(chatSvc)
	problemH := NewProblems(problemSvc)
	voteH := NewVotes(db)
	reportH := NewReports(pipeline, db)
	userH := NewUsers(db, cache.New(rdb, time.Minute))

	v1 := r.Group("/v1")
	{
		v1.POST("/auth/google", authH.Google)

		secured := v1.Group("")
		secured.Use(JWTMiddleware(secret), maintenanceGate(settings))
		{
			secured.GET("/world-chat", worldH.List)
			secured.POST("/world-chat", worldH.Send)
			secured.GET("/world-chat/quota", worldH.Quota)

			secured.GET("/chats/:userId", personalH.List)
			secured.POST("/chats/:userId", personalH.Send)

			secured.GET("/protests", protestH.List)
			secured.POST("/protests", protestH.Create)
			secured.POST("/protests/:id/join", protestH.Join)
			secured.POST("/protests/:id/members/:userId/approve", protestH.Approve)
			secured.GET("/protests/:id/chat", protestH.Chat)
			secured.POST("/protests/:id/chat", protestH.SendChat)
			secured.POST("/protests/:id/chat/:msgId/pin", protestH.Pin)
			secured.POST("/protests/:id/chat/:msgId/publish", protestH.Publish)
			secured.DELETE("/protests/:id/chat/:msgId", protestH.RemoveChat)

			secured.GET("/protests/:id/polls", pollH.List)
			secured.POST("/protests/:id/polls", pollH.Create)
			secured.POST("/polls/:pollId/vote", pollH.Vote)
			secured.POST("/polls/:pollId/close", pollH.Close)

			secured.GET("/problems", problemH.List)
			secured.POST("/problems", problemH.Create)
			secured.POST("/problems/:id/upvote", problemH.Upvote)
			secured.GET("/problems/quota", problemH.Quota)

			secured.POST("/votes", voteH.Cast)
			secured.GET("/votes/:leaderId", voteH.Summary)

			secured.POST("/reports", reportH.Create)

			secured.GET("/users/me", userH.Me)
			secured.PUT("/users/me", userH.UpdateMe)
			secured.GET("/leaders", userH.Leaders)
			secured.POST("/users/:id/follow", userH.Follow)
			secured.GET("/notifications", userH.Notifications)
			secured.POST("/notifications/:id/read", userH.MarkNotificationRead)
		}

		admin := v1.Group("/admin")
		admin.Use(JWTMiddleware(secret), RequireAdmin(db))
		{
			admin.GET("/reports", reportH.AdminList)
			admin.POST("/reports/:id/resolve", reportH.Resolve)
			admin.PUT("/settings", NewSettings(settings).Update)

			adminH := NewAdmin(db)
			admin.PUT("/users/:id/block", adminH.BlockUser)
			admin.PUT("/problems/:id/trending", adminH.SetTrending)
		}
	}
}
