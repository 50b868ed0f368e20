package repository

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"tradepost/internal/domain/entity"
	"tradepost/internal/domain/repository"
	"tradepost/pkg/errors"
)

type firestoreRoomRepository struct {
	client *firestore.Client
}

func NewFirestoreRoomRepository(client *firestore.Client) repository.RoomRepository {
	return &firestoreRoomRepository{
		client: client,
	}
}

// roomDocID derives the document ID from the triple key. Identical triples
// map to the same document, which is what makes concurrent creation collide
// instead of producing two rooms.
func roomDocID(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}

func (r *firestoreRoomRepository) GetOrCreate(ctx context.Context, room *entity.NegotiationRoom) (*entity.NegotiationRoom, bool, error) {
	if room.Key == "" {
		room.Key = entity.RoomKey(room.ItemID, room.SellerID, room.CounterpartID)
	}

	docRef := r.client.Collection("rooms").Doc(roomDocID(room.Key))

	var result entity.NegotiationRoom
	var created bool

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		created = false

		doc, err := tx.Get(docRef)
		if err == nil {
			return doc.DataTo(&result)
		}
		if status.Code(err) != codes.NotFound {
			return err
		}

		room.ID = docRef.ID
		room.Participants = []string{room.SellerID, room.CounterpartID}
		if room.CreatedAt.IsZero() {
			room.CreatedAt = time.Now()
		}

		if err := tx.Create(docRef, room); err != nil {
			return err
		}

		result = *room
		created = true
		return nil
	})

	if err != nil {
		return nil, false, errors.Internal("Failed to get or create room", err)
	}

	return &result, created, nil
}

func (r *firestoreRoomRepository) GetByID(ctx context.Context, id string) (*entity.NegotiationRoom, error) {
	doc, err := r.client.Collection("rooms").Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Room", err)
		}
		return nil, errors.Internal("Failed to get room", err)
	}

	var room entity.NegotiationRoom
	if err := doc.DataTo(&room); err != nil {
		return nil, errors.Internal("Failed to parse room data", err)
	}

	return &room, nil
}

func (r *firestoreRoomRepository) ListByUser(ctx context.Context, userID string) ([]*entity.NegotiationRoom, error) {
	query := r.client.Collection("rooms").
		Where("participants", "array-contains", userID).
		OrderBy("createdAt", firestore.Desc)

	iter := query.Documents(ctx)
	var rooms []*entity.NegotiationRoom

	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, errors.Internal("Failed to query rooms", err)
		}

		var room entity.NegotiationRoom
		if err := doc.DataTo(&room); err != nil {
			continue
		}
		rooms = append(rooms, &room)
	}

	return rooms, nil
}
