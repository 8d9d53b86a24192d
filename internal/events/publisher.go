// Package events announces domain changes on Redis pub/sub.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const InterviewCreatedChannel = "interview_created"

type InterviewCreatedEvent struct {
	InterviewID   string    `json:"interviewId"`
	UserID        string    `json:"userId"`
	Role          string    `json:"role"`
	Level         string    `json:"level"`
	QuestionCount int       `json:"questionCount"`
	CreatedAt     time.Time `json:"createdAt"`
}

type Publisher interface {
	PublishInterviewCreated(ctx context.Context, event InterviewCreatedEvent) error
}

type RedisPublisher struct {
	rdb *redis.Client
}

func NewRedisPublisher(rdb *redis.Client) *RedisPublisher {
	return &RedisPublisher{rdb: rdb}
}

func (p *RedisPublisher) PublishInterviewCreated(ctx context.Context, event InterviewCreatedEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshalling interview event: %w", err)
	}
	if err := p.rdb.Publish(ctx, InterviewCreatedChannel, payload).Err(); err != nil {
		return fmt.Errorf("publishing interview event: %w", err)
	}
	return nil
}

// NopPublisher is used when no Redis address is configured
type NopPublisher struct{}

func (NopPublisher) PublishInterviewCreated(context.Context, InterviewCreatedEvent) error { return nil }
