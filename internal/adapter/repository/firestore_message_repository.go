package repository

import (
	"context"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"tradepost/internal/domain/entity"
	"tradepost/internal/domain/repository"
	"tradepost/pkg/errors"
)

type firestoreMessageRepository struct {
	client *firestore.Client
}

func NewFirestoreMessageRepository(client *firestore.Client) repository.MessageRepository {
	return &firestoreMessageRepository{
		client: client,
	}
}

// Append assigns the per-room sequence number inside a transaction on the
// room document, so stored order always matches acceptance order.
func (r *firestoreMessageRepository) Append(ctx context.Context, message *entity.Message) error {
	roomRef := r.client.Collection("rooms").Doc(message.RoomID)
	messageRef := roomRef.Collection("messages").Doc(message.ID)

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(roomRef)
		if err != nil {
			return err
		}

		var room entity.NegotiationRoom
		if err := doc.DataTo(&room); err != nil {
			return err
		}

		room.MessageCount++
		message.Seq = room.MessageCount

		if err := tx.Set(messageRef, message); err != nil {
			return err
		}
		return tx.Set(roomRef, &room)
	})

	if err != nil {
		if status.Code(err) == codes.NotFound {
			return errors.NotFound("Room", err)
		}
		return errors.Internal("Failed to store message", err)
	}

	return nil
}

func (r *firestoreMessageRepository) ListByRoom(ctx context.Context, roomID string) ([]*entity.Message, error) {
	query := r.client.Collection("rooms").Doc(roomID).Collection("messages").OrderBy("seq", firestore.Asc)

	iter := query.Documents(ctx)
	var messages []*entity.Message

	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, errors.Internal("Failed to iterate messages", err)
		}

		var message entity.Message
		if err := doc.DataTo(&message); err != nil {
			return nil, errors.Internal("Failed to parse message data", err)
		}

		messages = append(messages, &message)
	}

	return messages, nil
}
