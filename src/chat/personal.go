package chat

import (
	"context"
	"errors"
	"log"

	"gorm.io/gorm"

	"github.com/janawaaz/janawaaz/src/apperr"
	"github.com/janawaaz/janawaaz/src/realtime"
	"github.com/janawaaz/janawaaz/src/types"
	"github.com/janawaaz/janawaaz/src/visibility"
)

// SendPersonal appends a direct message. Leaders cannot be messaged
// directly regardless of who the sender is; the policy has no admin
// bypass.
func (s *Service) SendPersonal(ctx context.Context, senderID, receiverID, body string) (*types.PersonalChatMessage, error) {
	if senderID == "" {
		return nil, apperr.Unauthenticated("sign in to send messages")
	}
	body, err := s.cleanBody(body)
	if err != nil {
		return nil, err
	}

	var receiver types.User
	err = s.db.WithContext(ctx).First(&receiver, "id = ?", receiverID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("user not found")
	}
	if err != nil {
		return nil, apperr.Unavailable("user lookup failed", err)
	}
	if receiver.Role == types.RoleLeader {
		return nil, apperr.RecipientBlocked("leaders cannot be messaged directly, use world chat instead")
	}

	msg := types.PersonalChatMessage{SenderID: senderID, ReceiverID: receiverID, Body: body}
	if err := s.db.WithContext(ctx).Create(&msg).Error; err != nil {
		return nil, apperr.Unavailable("message store failed", err)
	}

	note := types.Notification{UserID: receiverID, Kind: "personal_chat", Body: "New message"}
	if err := s.db.WithContext(ctx).Create(&note).Error; err != nil {
		log.Printf("chat: notification write failed: %v", err)
	}

	s.publish(ctx, realtime.PersonalChannel(receiverID), msg.ID)
	return &msg, nil
}

// ListPersonal returns the conversation between reader and other in
// insertion order. The gate keeps removed rows and anything outside the
// pair invisible.
func (s *Service) ListPersonal(ctx context.Context, readerID, otherID string) ([]types.PersonalChatMessage, error) {
	if readerID == "" {
		return nil, apperr.Unauthenticated("sign in to read messages")
	}

	var msgs []types.PersonalChatMessage
	err := s.db.WithContext(ctx).Preload("Sender").Preload("Receiver").
		Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)",
			readerID, otherID, otherID, readerID).
		Order("created_at asc, id asc").
		Find(&msgs).Error
	if err != nil {
		return nil, apperr.Unavailable("message list failed", err)
	}

	reader := visibility.Reader{UserID: readerID}
	out := make([]types.PersonalChatMessage, 0, len(msgs))
	for _, m := range msgs {
		v := visibility.Message{
			Kind:       visibility.Personal,
			Removed:    m.IsRemoved,
			SenderID:   m.SenderID,
			ReceiverID: m.ReceiverID,
		}
		if visibility.CanSee(reader, v) {
			out = append(out, m)
		}
	}
	return out, nil
}
