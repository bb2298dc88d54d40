// Package event streams vote activity to an external topic for downstream
// analysis. Publishing is best-effort: a failed publish is logged and never
// fails the request that produced it.
package event

import (
	"context"
	"time"
)

const (
	TypeVoteCast      = "vote.cast"
	TypeOptionCreated = "option.created"
	TypeOptionDeleted = "option.deleted"
	TypeUserDeleted   = "user.deleted"
)

type Event struct {
	Type      string    `json:"type"`
	UserID    uint      `json:"user_id,omitempty"`
	OptionID  uint      `json:"option_id,omitempty"`
	VoteCount int       `json:"vote_count,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type Publisher interface {
	Publish(ctx context.Context, ev Event) error
	Close() error
}

// NoopPublisher is used when no brokers are configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(ctx context.Context, ev Event) error { return nil }

func (NoopPublisher) Close() error { return nil }
