// Package realtime is the thin insert fan-out layer. Notifications carry
// only the row id; subscribers re-fetch the full message before rendering.
// Delivery is best effort, at most once per subscriber.
package realtime

import (
	"context"
	"encoding/json"
	"fmt"
)

// Channel keys. Personal fan-out is addressed to the recipient so a
// subscriber only ever receives inserts meant for it.
func WorldChannel() string                 { return "chat.world" }
func ProtestChannel(id uint64) string      { return fmt.Sprintf("chat.protest.%d", id) }
func PersonalChannel(userID string) string { return "chat.personal." + userID }

type InsertEvent struct {
	Channel   string `json:"channel"`
	MessageID uint64 `json:"id"`
}

type Handler func(InsertEvent)

type Publisher interface {
	PublishInsert(ctx context.Context, channel string, messageID uint64) error
}

type Subscription interface {
	// Unsubscribe stops delivery. Required on consumer teardown so stale
	// callbacks do not outlive the consumer.
	Unsubscribe() error
}

type Subscriber interface {
	Subscribe(ctx context.Context, channel string, fn Handler) (Subscription, error)
}

func encodeEvent(ev InsertEvent) ([]byte, error) { return json.Marshal(ev) }

func decodeEvent(payload string) (InsertEvent, error) {
	var ev InsertEvent
	err := json.Unmarshal([]byte(payload), &ev)
	return ev, err
}
