package config

import (
	"log"
	"os"
	"strconv"
)

type Config struct {
	MySQLDSN   string
	RedisURL   string
	JWTSecret  string
	Port       string
	AdminEmail string

	// Optional Gemini key for the pre-persist content check. Empty
	// disables the classifier; writes then skip the check entirely.
	GeminiKey string

	// IANA zone name that quota windows are computed in.
	QuotaTimezone string

	WorldChatDailyLimit int
	ProblemWeeklyLimit  int
}

func getenv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		if def == "" {
			log.Fatalf("missing env %s", key)
		}
		return def
	}
	return v
}

func getint(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Fatalf("invalid %s: %v", key, err)
	}
	return n
}

func Load() Config {
	return Config{
		MySQLDSN:            getenv("MYSQL_DSN", "dev:test@tcp(localhost:3306)/janawaaz"),
		RedisURL:            getenv("REDIS_URL", "redis://localhost:6379/0"),
		JWTSecret:           getenv("JWT_SECRET", ""),
		Port:                getenv("PORT", "8080"),
		AdminEmail:          os.Getenv("ADMIN_EMAIL"),
		GeminiKey:           os.Getenv("GEMINI_KEY"),
		QuotaTimezone:       getenv("QUOTA_TIMEZONE", "UTC"),
		WorldChatDailyLimit: getint("WORLD_CHAT_DAILY_LIMIT", 5),
		ProblemWeeklyLimit:  getint("PROBLEM_WEEKLY_LIMIT", 1),
	}
}
