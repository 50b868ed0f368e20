package repository

import (
	"context"

	"tradepost/internal/domain/entity"
)

type RoomRepository interface {
	// GetOrCreate returns the room for the triple, creating it if absent. The
	// create path is atomic on the room key: of two racing creators exactly
	// one inserts, the other receives the winner's room. The bool reports
	// whether this call created the room.
	GetOrCreate(ctx context.Context, room *entity.NegotiationRoom) (*entity.NegotiationRoom, bool, error)

	GetByID(ctx context.Context, id string) (*entity.NegotiationRoom, error)
	ListByUser(ctx context.Context, userID string) ([]*entity.NegotiationRoom, error)
}
