package repository

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"tradepost/internal/domain/entity"
	"tradepost/internal/domain/repository"
	"tradepost/pkg/errors"
)

type firestoreBidRepository struct {
	client *firestore.Client
}

func NewFirestoreBidRepository(client *firestore.Client) repository.BidRepository {
	return &firestoreBidRepository{
		client: client,
	}
}

// Append runs acceptance check, bid write and ledger-head advance in one
// transaction on the listing document, so two racing bids can never both be
// accepted at the same price.
func (r *firestoreBidRepository) Append(ctx context.Context, bid *entity.Bid, now time.Time) error {
	listingRef := r.client.Collection("listings").Doc(bid.ItemID)
	bidRef := listingRef.Collection("bids").Doc(bid.ID)

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(listingRef)
		if err != nil {
			return err
		}

		var listing entity.Listing
		if err := doc.DataTo(&listing); err != nil {
			return err
		}

		if err := listing.CanAcceptBid(bid.Amount, now); err != nil {
			return err
		}

		bid.Ordinal = listing.ApplyBid(bid.ID, bid.Amount)
		bid.CreatedAt = now
		listing.UpdatedAt = now

		if err := tx.Set(bidRef, bid); err != nil {
			return err
		}
		return tx.Set(listingRef, &listing)
	})

	if err != nil {
		if appErr, ok := err.(*errors.AppError); ok {
			return appErr
		}
		if status.Code(err) == codes.NotFound {
			return errors.NotFound("Listing", err)
		}
		return errors.Internal("Failed to record bid", err)
	}

	return nil
}

func (r *firestoreBidRepository) GetByID(ctx context.Context, itemID, bidID string) (*entity.Bid, error) {
	doc, err := r.client.Collection("listings").Doc(itemID).Collection("bids").Doc(bidID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Bid", err)
		}
		return nil, errors.Internal("Failed to get bid", err)
	}

	var bid entity.Bid
	if err := doc.DataTo(&bid); err != nil {
		return nil, errors.Internal("Failed to parse bid data", err)
	}

	return &bid, nil
}

func (r *firestoreBidRepository) ListByItem(ctx context.Context, itemID string, limit, offset int) ([]*entity.Bid, int64, error) {
	query := r.client.Collection("listings").Doc(itemID).Collection("bids").OrderBy("ordinal", firestore.Desc)

	allDocs, err := query.Documents(ctx).GetAll()
	if err != nil {
		return nil, 0, errors.Internal("Failed to count bids", err)
	}
	total := int64(len(allDocs))

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	iter := query.Documents(ctx)
	var bids []*entity.Bid

	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, 0, errors.Internal("Failed to iterate bids", err)
		}

		var bid entity.Bid
		if err := doc.DataTo(&bid); err != nil {
			return nil, 0, errors.Internal("Failed to parse bid data", err)
		}

		bids = append(bids, &bid)
	}

	return bids, total, nil
}
