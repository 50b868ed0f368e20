package memory

import (
	"context"

	"tradepost/internal/domain/entity"
	"tradepost/internal/domain/repository"
	"tradepost/pkg/errors"
)

type messageRepository struct {
	store *Store
}

func NewMessageRepository(store *Store) repository.MessageRepository {
	return &messageRepository{store: store}
}

func (r *messageRepository) Append(ctx context.Context, message *entity.Message) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.roomsByID[message.RoomID]; !ok {
		return errors.NotFound("Room", nil)
	}

	message.Seq = int64(len(r.store.messages[message.RoomID])) + 1
	r.store.messages[message.RoomID] = append(r.store.messages[message.RoomID], cloneMessage(message))
	return nil
}

func (r *messageRepository) ListByRoom(ctx context.Context, roomID string) ([]*entity.Message, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	stored := r.store.messages[roomID]
	messages := make([]*entity.Message, 0, len(stored))
	for _, message := range stored {
		messages = append(messages, cloneMessage(message))
	}
	return messages, nil
}
