package repository

import (
	"context"

	"tradepost/internal/domain/entity"
)

type MessageRepository interface {
	// Append durably stores the message and assigns its per-room sequence
	// number atomically, so acceptance order and stored order always agree.
	Append(ctx context.Context, message *entity.Message) error

	// ListByRoom returns all of a room's messages in sequence order, oldest
	// first.
	ListByRoom(ctx context.Context, roomID string) ([]*entity.Message, error)
}
