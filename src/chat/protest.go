package chat

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/janawaaz/janawaaz/src/apperr"
	"github.com/janawaaz/janawaaz/src/moderation"
	"github.com/janawaaz/janawaaz/src/realtime"
	"github.com/janawaaz/janawaaz/src/types"
	"github.com/janawaaz/janawaaz/src/visibility"
)

// membership returns the reader's membership row, or nil when none exists.
func (s *Service) membership(ctx context.Context, protestID uint64, userID string) (*types.ProtestMember, error) {
	var m types.ProtestMember
	err := s.db.WithContext(ctx).First(&m, "protest_id = ? AND user_id = ?", protestID, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Unavailable("membership lookup failed", err)
	}
	return &m, nil
}

func membershipState(m *types.ProtestMember) visibility.MembershipState {
	switch {
	case m == nil:
		return visibility.MembershipNone
	case m.IsApproved:
		return visibility.MembershipApproved
	default:
		return visibility.MembershipPending
	}
}

func (s *Service) protestGroup(ctx context.Context, protestID uint64) (*types.ProtestGroup, error) {
	var g types.ProtestGroup
	err := s.db.WithContext(ctx).First(&g, "id = ? AND is_active = ?", protestID, true).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("protest not found")
	}
	if err != nil {
		return nil, apperr.Unavailable("protest lookup failed", err)
	}
	return &g, nil
}

// SendProtest appends a message to a protest channel. Only approved
// members write; owner and admin messages default to public so
// prospective joiners can preview them, member messages stay private.
// Poll announcements go through CreatePoll, not here.
func (s *Service) SendProtest(ctx context.Context, protestID uint64, senderID, body string) (*types.ProtestChatMessage, error) {
	if senderID == "" {
		return nil, apperr.Unauthenticated("sign in to use protest chat")
	}
	body, err := s.cleanBody(body)
	if err != nil {
		return nil, err
	}
	if _, err := s.protestGroup(ctx, protestID); err != nil {
		return nil, err
	}

	m, err := s.membership(ctx, protestID, senderID)
	if err != nil {
		return nil, err
	}
	if m == nil || !m.IsApproved {
		return nil, apperr.NotApproved("join this protest and wait for approval before chatting")
	}

	isPublic := m.Role == types.MemberRoleOwner || m.Role == types.MemberRoleAdmin
	msg := types.ProtestChatMessage{
		ProtestID: protestID,
		UserID:    senderID,
		Body:      body,
		IsPublic:  isPublic,
	}
	if err := s.db.WithContext(ctx).Create(&msg).Error; err != nil {
		return nil, apperr.Unavailable("message store failed", err)
	}
	s.publish(ctx, realtime.ProtestChannel(protestID), msg.ID)
	return &msg, nil
}

// ListProtest returns the protest channel in insertion order, filtered
// through the gate: approved members see everything, pending joiners and
// outsiders see public messages only.
func (s *Service) ListProtest(ctx context.Context, protestID uint64, readerID string) ([]types.ProtestChatMessage, error) {
	if readerID == "" {
		return nil, apperr.Unauthenticated("sign in to read protest chat")
	}
	if _, err := s.protestGroup(ctx, protestID); err != nil {
		return nil, err
	}

	m, err := s.membership(ctx, protestID, readerID)
	if err != nil {
		return nil, err
	}
	admin, err := s.isAdmin(ctx, readerID)
	if err != nil {
		return nil, err
	}
	reader := visibility.Reader{UserID: readerID, Admin: admin, Membership: membershipState(m)}

	var msgs []types.ProtestChatMessage
	err = s.db.WithContext(ctx).Preload("User").
		Where("protest_id = ?", protestID).
		Order("created_at asc, id asc").
		Find(&msgs).Error
	if err != nil {
		return nil, apperr.Unavailable("message list failed", err)
	}

	out := make([]types.ProtestChatMessage, 0, len(msgs))
	for _, msg := range msgs {
		v := visibility.Message{Kind: visibility.Protest, Removed: msg.IsRemoved, Public: msg.IsPublic}
		if visibility.CanSee(reader, v) {
			out = append(out, msg)
		}
	}
	return out, nil
}

// requireModerator checks that the actor can moderate the protest
// channel: an approved owner/admin member, or a global admin.
func (s *Service) requireModerator(ctx context.Context, protestID uint64, actorID string) error {
	if actorID == "" {
		return apperr.Unauthenticated("sign in first")
	}
	m, err := s.membership(ctx, protestID, actorID)
	if err != nil {
		return err
	}
	if m != nil && m.IsApproved && (m.Role == types.MemberRoleOwner || m.Role == types.MemberRoleAdmin) {
		return nil
	}
	admin, err := s.isAdmin(ctx, actorID)
	if err != nil {
		return err
	}
	if admin {
		return nil
	}
	return apperr.NotApproved("only protest owners and admins can do that")
}

func (s *Service) protestMessage(ctx context.Context, protestID, messageID uint64) (*types.ProtestChatMessage, error) {
	var msg types.ProtestChatMessage
	err := s.db.WithContext(ctx).First(&msg, "id = ? AND protest_id = ?", messageID, protestID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("message not found")
	}
	if err != nil {
		return nil, apperr.Unavailable("message lookup failed", err)
	}
	return &msg, nil
}

// PinProtestMessage pins a message and records it on the group.
func (s *Service) PinProtestMessage(ctx context.Context, protestID, messageID uint64, actorID string) error {
	if err := s.requireModerator(ctx, protestID, actorID); err != nil {
		return err
	}
	msg, err := s.protestMessage(ctx, protestID, messageID)
	if err != nil {
		return err
	}
	if msg.IsRemoved {
		return apperr.NotFound("message not found")
	}
	if err := s.db.WithContext(ctx).Model(msg).UpdateColumn("is_pinned", true).Error; err != nil {
		return apperr.Unavailable("pin failed", err)
	}
	err = s.db.WithContext(ctx).Model(&types.ProtestGroup{}).
		Where("id = ?", protestID).
		UpdateColumn("pinned_message_id", messageID).Error
	if err != nil {
		return apperr.Unavailable("pin failed", err)
	}
	return nil
}

// PublishProtestMessage makes a private message publicly previewable.
// Setting an absolute value, so concurrent identical calls are safe.
func (s *Service) PublishProtestMessage(ctx context.Context, protestID, messageID uint64, actorID string) error {
	if err := s.requireModerator(ctx, protestID, actorID); err != nil {
		return err
	}
	msg, err := s.protestMessage(ctx, protestID, messageID)
	if err != nil {
		return err
	}
	if msg.IsRemoved {
		return apperr.NotFound("message not found")
	}
	if err := s.db.WithContext(ctx).Model(msg).UpdateColumn("is_public", true).Error; err != nil {
		return apperr.Unavailable("publish failed", err)
	}
	return nil
}

// RemoveProtestMessage soft-deletes a channel message. Idempotent.
func (s *Service) RemoveProtestMessage(ctx context.Context, protestID, messageID uint64, actorID string) error {
	if err := s.requireModerator(ctx, protestID, actorID); err != nil {
		return err
	}
	if _, err := s.protestMessage(ctx, protestID, messageID); err != nil {
		return err
	}
	return moderation.SoftRemove(s.db.WithContext(ctx), moderation.ContentProtestChat, messageID)
}
