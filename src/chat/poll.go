package chat

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/janawaaz/janawaaz/src/apperr"
	"github.com/janawaaz/janawaaz/src/realtime"
	"github.com/janawaaz/janawaaz/src/types"
)

// PollOption is one choice with its running tally, stored as JSON on
// the poll row.
type PollOption struct {
	Text  string `json:"text"`
	Votes int    `json:"votes"`
}

func encodeOptions(opts []PollOption) (string, error) {
	b, err := json.Marshal(opts)
	return string(b), err
}

// DecodeOptions unpacks a poll's stored options for rendering.
func DecodeOptions(p *types.Poll) ([]PollOption, error) {
	var opts []PollOption
	if err := json.Unmarshal([]byte(p.Options), &opts); err != nil {
		return nil, apperr.Unavailable("poll options unreadable", err)
	}
	return opts, nil
}

// CreatePoll opens a poll in a protest channel. The poll is announced
// with a public chat message so prospective joiners see it too, and the
// is_poll flag on that message points back at the poll row.
func (s *Service) CreatePoll(ctx context.Context, protestID uint64, creatorID, question string, options []string) (*types.Poll, error) {
	if creatorID == "" {
		return nil, apperr.Unauthenticated("sign in to create a poll")
	}
	question, err := s.cleanBody(question)
	if err != nil {
		return nil, err
	}

	opts := make([]PollOption, 0, len(options))
	for _, o := range options {
		o = strings.TrimSpace(o)
		if o == "" {
			continue
		}
		opts = append(opts, PollOption{Text: o})
	}
	if len(opts) < 2 {
		return nil, apperr.InvalidArgument("a poll needs at least 2 options")
	}

	if _, err := s.protestGroup(ctx, protestID); err != nil {
		return nil, err
	}
	m, err := s.membership(ctx, protestID, creatorID)
	if err != nil {
		return nil, err
	}
	if m == nil || !m.IsApproved {
		return nil, apperr.NotApproved("join this protest and wait for approval before creating polls")
	}

	encoded, err := encodeOptions(opts)
	if err != nil {
		return nil, apperr.Unavailable("poll store failed", err)
	}

	msg := types.ProtestChatMessage{
		ProtestID: protestID,
		UserID:    creatorID,
		Body:      "Poll: " + question,
		IsPublic:  true,
		IsPoll:    true,
	}
	poll := types.Poll{
		ProtestID: protestID,
		CreatedBy: creatorID,
		Question:  question,
		Options:   encoded,
		IsActive:  true,
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&msg).Error; err != nil {
			return err
		}
		poll.MessageID = msg.ID
		return tx.Create(&poll).Error
	})
	if err != nil {
		return nil, apperr.Unavailable("poll store failed", err)
	}

	s.publish(ctx, realtime.ProtestChannel(protestID), msg.ID)
	return &poll, nil
}

// ListPolls returns a protest's polls, newest first. Poll announcements
// are public messages, so any signed-in user may read them.
func (s *Service) ListPolls(ctx context.Context, protestID uint64, readerID string) ([]types.Poll, error) {
	if readerID == "" {
		return nil, apperr.Unauthenticated("sign in to view polls")
	}
	if _, err := s.protestGroup(ctx, protestID); err != nil {
		return nil, err
	}

	var polls []types.Poll
	err := s.db.WithContext(ctx).Preload("Creator").
		Where("protest_id = ?", protestID).
		Order("created_at desc, id desc").
		Find(&polls).Error
	if err != nil {
		return nil, apperr.Unavailable("poll list failed", err)
	}
	return polls, nil
}

func (s *Service) poll(ctx context.Context, pollID uint64) (*types.Poll, error) {
	var p types.Poll
	err := s.db.WithContext(ctx).First(&p, "id = ?", pollID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("poll not found")
	}
	if err != nil {
		return nil, apperr.Unavailable("poll lookup failed", err)
	}
	return &p, nil
}

// VotePoll records the voter's single choice and bumps the tallies.
// Closed polls reject votes; a second vote from the same user fails.
func (s *Service) VotePoll(ctx context.Context, pollID uint64, voterID string, optionIndex int) (*types.Poll, error) {
	if voterID == "" {
		return nil, apperr.Unauthenticated("sign in to vote")
	}

	p, err := s.poll(ctx, pollID)
	if err != nil {
		return nil, err
	}
	if !p.IsActive {
		return nil, apperr.FailedPrecondition("this poll is closed")
	}
	opts, err := DecodeOptions(p)
	if err != nil {
		return nil, err
	}
	if optionIndex < 0 || optionIndex >= len(opts) {
		return nil, apperr.InvalidArgument("no such option")
	}

	opts[optionIndex].Votes++
	encoded, err := encodeOptions(opts)
	if err != nil {
		return nil, apperr.Unavailable("poll store failed", err)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing types.PollVote
		err := tx.First(&existing, "poll_id = ? AND user_id = ?", pollID, voterID).Error
		if err == nil {
			return apperr.FailedPrecondition("you already voted in this poll")
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.Unavailable("vote lookup failed", err)
		}
		if err := tx.Create(&types.PollVote{PollID: pollID, UserID: voterID, OptionIndex: optionIndex}).Error; err != nil {
			return apperr.Unavailable("vote store failed", err)
		}
		return tx.Model(&types.Poll{}).Where("id = ?", pollID).
			UpdateColumns(map[string]any{
				"options":     encoded,
				"total_votes": gorm.Expr("total_votes + 1"),
			}).Error
	})
	if err != nil {
		var ae *apperr.Error
		if errors.As(err, &ae) {
			return nil, err
		}
		return nil, apperr.Unavailable("vote store failed", err)
	}
	return s.poll(ctx, pollID)
}

// ClosePoll stops further voting. Protest moderators only; idempotent.
func (s *Service) ClosePoll(ctx context.Context, pollID uint64, actorID string) error {
	p, err := s.poll(ctx, pollID)
	if err != nil {
		return err
	}
	if err := s.requireModerator(ctx, p.ProtestID, actorID); err != nil {
		return err
	}
	err = s.db.WithContext(ctx).Model(&types.Poll{}).
		Where("id = ?", pollID).
		UpdateColumn("is_active", false).Error
	if err != nil {
		return apperr.Unavailable("poll close failed", err)
	}
	return nil
}
