package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/hetulpatel/userseed/internal/models"
)

// MessageWriter is satisfied by *kafka.Writer.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// Publisher puts committed users on the seeded-users topic.
type Publisher struct {
	writer MessageWriter
	now    func() time.Time
}

func NewPublisher(writer MessageWriter) *Publisher {
	return &Publisher{writer: writer, now: time.Now}
}

// PublishUsers writes one message per user, keyed by login. A nil publisher is a no-op.
func (p *Publisher) PublishUsers(ctx context.Context, batch int, users []models.User) error {
	if p == nil || p.writer == nil || len(users) == 0 {
		return nil
	}

	committed := p.now().UTC()
	msgs := make([]kafka.Message, 0, len(users))
	for _, u := range users {
		payload, err := json.Marshal(models.NewSeededUser(u, batch, committed))
		if err != nil {
			return fmt.Errorf("marshal seeded user %s: %w", u.Login, err)
		}
		msgs = append(msgs, kafka.Message{Key: []byte(u.Login), Value: payload})
	}
	return p.writer.WriteMessages(ctx, msgs...)
}
