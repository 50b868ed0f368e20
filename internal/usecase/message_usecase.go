package usecase

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"tradepost/internal/domain/entity"
	"tradepost/internal/domain/repository"
	"tradepost/internal/infrastructure/ratelimit"
	ws "tradepost/internal/infrastructure/websocket"
	"tradepost/pkg/errors"
	"tradepost/pkg/logger"
)

// Broadcaster delivers payloads to the live members of a room.
type Broadcaster interface {
	BroadcastToRoom(roomID string, payload []byte, excludeUserID string)
	JoinRoom(roomID, userID string) bool
	LeaveRoom(roomID, userID string)
}

type MessageUseCase struct {
	messageRepo repository.MessageRepository
	roomRepo    repository.RoomRepository
	broadcaster Broadcaster
	rateLimiter *ratelimit.RateLimiter
	now         func() time.Time

	// roomLocks serializes append and fan-out per room so delivery order
	// matches stored sequence order.
	roomLocks sync.Map
}

func NewMessageUseCase(
	messageRepo repository.MessageRepository,
	roomRepo repository.RoomRepository,
	broadcaster Broadcaster,
	rateLimiter *ratelimit.RateLimiter,
	now func() time.Time,
) *MessageUseCase {
	if now == nil {
		now = time.Now
	}
	return &MessageUseCase{
		messageRepo: messageRepo,
		roomRepo:    roomRepo,
		broadcaster: broadcaster,
		rateLimiter: rateLimiter,
		now:         now,
	}
}

type SendMessageInput struct {
	Body string `json:"body" validate:"required,min=1,max=2000"`
}

// SendMessage appends a message to a room's durable history and fans it out
// to the room's connected members. The sender does not receive an echo.
func (uc *MessageUseCase) SendMessage(ctx context.Context, senderID, roomID string, input SendMessageInput) (*entity.Message, error) {
	if uc.rateLimiter != nil {
		allowed, waitTime := uc.rateLimiter.Allow(senderID, "send_message")
		if !allowed {
			return nil, errors.TooManyRequests("Rate limit exceeded. Please slow down", waitTime)
		}
	}
	if strings.TrimSpace(input.Body) == "" {
		return nil, errors.BadRequest("Message body cannot be empty", nil)
	}

	room, err := uc.roomRepo.GetByID(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if !room.IsParticipant(senderID) {
		return nil, errors.Unauthorized("You are not a participant in this room", nil)
	}

	message := &entity.Message{
		ID:       ulid.Make().String(),
		RoomID:   roomID,
		SenderID: senderID,
		Body:     input.Body,
		SentAt:   uc.now(),
	}

	lock := uc.roomLock(roomID)
	lock.Lock()
	defer lock.Unlock()

	if err := uc.messageRepo.Append(ctx, message); err != nil {
		return nil, err
	}
	if uc.broadcaster != nil {
		uc.broadcaster.BroadcastToRoom(roomID, ws.NewEvent(ws.EventMessage, roomID, message), senderID)
	}

	logger.Debug("Message %d appended to room %s", message.Seq, roomID)
	return message, nil
}

// JoinRoom subscribes a connected participant to a room's live fan-out.
func (uc *MessageUseCase) JoinRoom(ctx context.Context, userID, roomID string) error {
	room, err := uc.roomRepo.GetByID(ctx, roomID)
	if err != nil {
		return err
	}
	if !room.IsParticipant(userID) {
		return errors.Unauthorized("You are not a participant in this room", nil)
	}
	if uc.broadcaster != nil && !uc.broadcaster.JoinRoom(roomID, userID) {
		return errors.BadRequest("No active connection to join with", nil)
	}
	return nil
}

// LeaveRoom unsubscribes a participant from a room's live fan-out. History
// is untouched.
func (uc *MessageUseCase) LeaveRoom(ctx context.Context, userID, roomID string) error {
	if _, err := uc.roomRepo.GetByID(ctx, roomID); err != nil {
		return err
	}
	if uc.broadcaster != nil {
		uc.broadcaster.LeaveRoom(roomID, userID)
	}
	return nil
}

// History returns a room's full message history in send order.
func (uc *MessageUseCase) History(ctx context.Context, userID, roomID string) ([]*entity.Message, error) {
	room, err := uc.roomRepo.GetByID(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if !room.IsParticipant(userID) {
		return nil, errors.Unauthorized("You are not a participant in this room", nil)
	}
	return uc.messageRepo.ListByRoom(ctx, roomID)
}

func (uc *MessageUseCase) roomLock(roomID string) *sync.Mutex {
	lock, _ := uc.roomLocks.LoadOrStore(roomID, &sync.Mutex{})
	return lock.(*sync.Mutex)
}
