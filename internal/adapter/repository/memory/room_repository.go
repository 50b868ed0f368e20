package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"tradepost/internal/domain/entity"
	"tradepost/internal/domain/repository"
	"tradepost/pkg/errors"
)

type roomRepository struct {
	store *Store
}

func NewRoomRepository(store *Store) repository.RoomRepository {
	return &roomRepository{store: store}
}

func (r *roomRepository) GetOrCreate(ctx context.Context, room *entity.NegotiationRoom) (*entity.NegotiationRoom, bool, error) {
	if room.Key == "" {
		room.Key = entity.RoomKey(room.ItemID, room.SellerID, room.CounterpartID)
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if existing, ok := r.store.roomsByKey[room.Key]; ok {
		return cloneRoom(existing), false, nil
	}

	if room.ID == "" {
		room.ID = uuid.New().String()
	}
	room.Participants = []string{room.SellerID, room.CounterpartID}
	if room.CreatedAt.IsZero() {
		room.CreatedAt = time.Now()
	}

	stored := cloneRoom(room)
	r.store.roomsByKey[room.Key] = stored
	r.store.roomsByID[room.ID] = stored
	return cloneRoom(stored), true, nil
}

func (r *roomRepository) GetByID(ctx context.Context, id string) (*entity.NegotiationRoom, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	room, ok := r.store.roomsByID[id]
	if !ok {
		return nil, errors.NotFound("Room", nil)
	}
	return cloneRoom(room), nil
}

func (r *roomRepository) ListByUser(ctx context.Context, userID string) ([]*entity.NegotiationRoom, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var rooms []*entity.NegotiationRoom
	for _, room := range r.store.roomsByID {
		if room.IsParticipant(userID) {
			rooms = append(rooms, cloneRoom(room))
		}
	}

	sort.Slice(rooms, func(i, j int) bool {
		return rooms[i].CreatedAt.After(rooms[j].CreatedAt)
	})
	return rooms, nil
}
