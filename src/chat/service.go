// Package chat owns the three message channels: the single world channel,
// one channel per protest group, and one per user pair. Writers pass
// their identity explicitly; nothing reads ambient session state.
package chat

import (
	"context"
	"errors"
	"html"
	"log"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
	"gorm.io/gorm"

	"github.com/janawaaz/janawaaz/src/ai"
	"github.com/janawaaz/janawaaz/src/apperr"
	"github.com/janawaaz/janawaaz/src/quota"
	"github.com/janawaaz/janawaaz/src/realtime"
	"github.com/janawaaz/janawaaz/src/types"
)

const maxBodyLen = 2000

type Config struct {
	// WorldDailyLimit caps world chat sends per user per day.
	WorldDailyLimit int
	// Classifier, when set, vets world chat bodies before persisting.
	// Classifier failures never block the write.
	Classifier ai.Classifier
	// Publisher, when set, fans out insert notifications.
	Publisher realtime.Publisher
}

type Service struct {
	db        *gorm.DB
	ledger    *quota.Ledger
	sanitizer *bluemonday.Policy
	cfg       Config
}

func NewService(db *gorm.DB, ledger *quota.Ledger, cfg Config) *Service {
	if cfg.WorldDailyLimit <= 0 {
		cfg.WorldDailyLimit = 5
	}
	return &Service{
		db:        db,
		ledger:    ledger,
		sanitizer: bluemonday.StrictPolicy(),
		cfg:       cfg,
	}
}

// cleanBody sanitizes and validates a message body.
func (s *Service) cleanBody(body string) (string, error) {
	body = strings.TrimSpace(s.sanitizer.Sanitize(body))
	body = html.UnescapeString(body)
	if !utf8.ValidString(body) {
		return "", apperr.InvalidArgument("invalid characters in message")
	}
	if body == "" {
		return "", apperr.InvalidArgument("message is empty")
	}
	if len(body) > maxBodyLen {
		return "", apperr.InvalidArgument("message too long")
	}
	return body, nil
}

func (s *Service) isAdmin(ctx context.Context, userID string) (bool, error) {
	var u types.User
	err := s.db.WithContext(ctx).Select("role").First(&u, "id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, apperr.Unavailable("user lookup failed", err)
	}
	return u.Role == types.RoleAdmin, nil
}

// publish fans out an insert notification. Fan-out is best effort; a
// failed publish never fails the stored write.
func (s *Service) publish(ctx context.Context, channel string, messageID uint64) {
	if s.cfg.Publisher == nil {
		return
	}
	if err := s.cfg.Publisher.PublishInsert(ctx, channel, messageID); err != nil {
		log.Printf("chat: publish to %s failed: %v", channel, err)
	}
}
