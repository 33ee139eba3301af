package chat

import (
	"context"
	"log"

	"github.com/janawaaz/janawaaz/src/ai"
	"github.com/janawaaz/janawaaz/src/apperr"
	"github.com/janawaaz/janawaaz/src/quota"
	"github.com/janawaaz/janawaaz/src/realtime"
	"github.com/janawaaz/janawaaz/src/types"
	"github.com/janawaaz/janawaaz/src/visibility"
)

// worldListLimit bounds a single world chat page.
const worldListLimit = 100

// SendWorld appends a world chat message, consuming one unit of the
// sender's daily allowance. The quota check and increment are atomic in
// the ledger, so concurrent sends from two devices cannot overshoot.
func (s *Service) SendWorld(ctx context.Context, senderID, body string) (*types.WorldChatMessage, error) {
	if senderID == "" {
		return nil, apperr.Unauthenticated("sign in to use world chat")
	}
	body, err := s.cleanBody(body)
	if err != nil {
		return nil, err
	}

	if s.cfg.Classifier != nil {
		verdict, cerr := s.cfg.Classifier.Classify(ctx, body)
		switch {
		case cerr != nil:
			// Fail open: the classifier is an auxiliary net, not the gate.
			log.Printf("chat: classifier unavailable, allowing message: %v", cerr)
		case verdict == ai.VerdictRemove:
			return nil, apperr.ContentRejected("message did not pass the content check, edit it and try again")
		}
	}

	res, err := s.ledger.TryConsume(ctx, senderID, quota.WindowDaily, s.cfg.WorldDailyLimit)
	if err != nil {
		return nil, err
	}
	if !res.Allowed {
		return nil, apperr.Newf(apperr.CodeQuotaExceeded,
			"%d/%d world chat messages used today, resets at %s",
			s.cfg.WorldDailyLimit, s.cfg.WorldDailyLimit, res.ResetAt.Format("Jan 2 15:04 MST"))
	}

	msg := types.WorldChatMessage{UserID: senderID, Body: body}
	if err := s.db.WithContext(ctx).Create(&msg).Error; err != nil {
		return nil, apperr.Unavailable("message store failed", err)
	}
	s.publish(ctx, realtime.WorldChannel(), msg.ID)
	return &msg, nil
}

// ListWorld returns the latest world chat page in insertion order,
// filtered through the visibility gate.
func (s *Service) ListWorld(ctx context.Context, readerID string) ([]types.WorldChatMessage, error) {
	if readerID == "" {
		return nil, apperr.Unauthenticated("sign in to read world chat")
	}

	var msgs []types.WorldChatMessage
	err := s.db.WithContext(ctx).Preload("User").
		Order("created_at desc, id desc").Limit(worldListLimit).
		Find(&msgs).Error
	if err != nil {
		return nil, apperr.Unavailable("message list failed", err)
	}

	reader := visibility.Reader{UserID: readerID}
	out := make([]types.WorldChatMessage, 0, len(msgs))
	// walk backwards: query is newest-first, callers get insertion order
	for i := len(msgs) - 1; i >= 0; i-- {
		m := msgs[i]
		if visibility.CanSee(reader, visibility.Message{Kind: visibility.World, Removed: m.IsRemoved}) {
			out = append(out, m)
		}
	}
	return out, nil
}

// WorldRemaining reports how many world chat sends the user has left
// today, for the composer UI.
func (s *Service) WorldRemaining(ctx context.Context, userID string) (int, error) {
	if userID == "" {
		return 0, apperr.Unauthenticated("sign in to use world chat")
	}
	return s.ledger.Remaining(ctx, userID, quota.WindowDaily, s.cfg.WorldDailyLimit)
}
