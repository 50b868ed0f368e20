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

type firestoreListingRepository struct {
	client *firestore.Client
}

func NewFirestoreListingRepository(client *firestore.Client) repository.ListingRepository {
	return &firestoreListingRepository{
		client: client,
	}
}

func (r *firestoreListingRepository) Create(ctx context.Context, listing *entity.Listing) error {
	if listing.ID == "" {
		doc := r.client.Collection("listings").NewDoc()
		listing.ID = doc.ID
	}

	now := time.Now()
	if listing.CreatedAt.IsZero() {
		listing.CreatedAt = now
	}
	listing.UpdatedAt = now

	_, err := r.client.Collection("listings").Doc(listing.ID).Set(ctx, listing)
	if err != nil {
		return errors.Internal("Failed to create listing", err)
	}

	return nil
}

func (r *firestoreListingRepository) GetByID(ctx context.Context, id string) (*entity.Listing, error) {
	doc, err := r.client.Collection("listings").Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Listing", err)
		}
		return nil, errors.Internal("Failed to get listing", err)
	}

	var listing entity.Listing
	if err := doc.DataTo(&listing); err != nil {
		return nil, errors.Internal("Failed to parse listing data", err)
	}

	return &listing, nil
}

func (r *firestoreListingRepository) List(ctx context.Context, filter map[string]interface{}, limit, offset int) ([]*entity.Listing, int64, error) {
	query := r.client.Collection("listings").Query

	for key, value := range filter {
		query = query.Where(key, "==", value)
	}

	query = query.OrderBy("listedAt", firestore.Desc)

	allDocs, err := query.Documents(ctx).GetAll()
	if err != nil {
		return nil, 0, errors.Internal("Failed to count listings", err)
	}
	total := int64(len(allDocs))

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	iter := query.Documents(ctx)
	var listings []*entity.Listing

	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, 0, errors.Internal("Failed to iterate listings", err)
		}

		var listing entity.Listing
		if err := doc.DataTo(&listing); err != nil {
			return nil, 0, errors.Internal("Failed to parse listing data", err)
		}

		listings = append(listings, &listing)
	}

	return listings, total, nil
}

func (r *firestoreListingRepository) Update(ctx context.Context, listing *entity.Listing) error {
	docRef := r.client.Collection("listings").Doc(listing.ID)

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(docRef)
		if err != nil {
			return err
		}

		var current entity.Listing
		if err := doc.DataTo(&current); err != nil {
			return err
		}

		// Catalog fields only. The ledger head and the close outcome are
		// written exclusively by the bid-append and close transactions.
		listing.HighestBidID = current.HighestBidID
		listing.HighestAmount = current.HighestAmount
		listing.BidCount = current.BidCount
		listing.LastClosedPrice = current.LastClosedPrice
		listing.Status = current.Status
		listing.UpdatedAt = time.Now()

		return tx.Set(docRef, listing)
	})

	if err != nil {
		if status.Code(err) == codes.NotFound {
			return errors.NotFound("Listing", err)
		}
		return errors.Internal("Failed to update listing", err)
	}

	return nil
}

func (r *firestoreListingRepository) Delete(ctx context.Context, id string) error {
	_, err := r.client.Collection("listings").Doc(id).Delete(ctx)
	if err != nil {
		return errors.Internal("Failed to delete listing", err)
	}

	return nil
}

func (r *firestoreListingRepository) CloseAuction(ctx context.Context, itemID string, now time.Time) (*entity.Listing, bool, error) {
	docRef := r.client.Collection("listings").Doc(itemID)

	var closed entity.Listing
	var won bool

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		won = false

		doc, err := tx.Get(docRef)
		if err != nil {
			return err
		}

		var listing entity.Listing
		if err := doc.DataTo(&listing); err != nil {
			return err
		}

		if !listing.IsAuction() {
			return errors.BadRequest("Listing is not an auction", nil)
		}
		if listing.Status != entity.ListingStatusOpen {
			// A concurrent caller already won the transition; surface its
			// result without re-reading the ledger.
			closed = listing
			return nil
		}
		if now.Before(listing.ClosesAt) {
			return errors.TooEarly("Auction deadline has not passed")
		}

		listing.ApplyClose()
		listing.UpdatedAt = now

		if err := tx.Set(docRef, &listing); err != nil {
			return err
		}

		closed = listing
		won = true
		return nil
	})

	if err != nil {
		if appErr, ok := err.(*errors.AppError); ok {
			return nil, false, appErr
		}
		if status.Code(err) == codes.NotFound {
			return nil, false, errors.NotFound("Listing", err)
		}
		return nil, false, errors.Internal("Failed to close auction", err)
	}

	return &closed, won, nil
}

func (r *firestoreListingRepository) ListExpiredOpenAuctions(ctx context.Context, now time.Time, limit int) ([]*entity.Listing, error) {
	query := r.client.Collection("listings").
		Where("transactionMethod", "==", entity.TransactionMethodAuction).
		Where("status", "==", entity.ListingStatusOpen).
		Where("closesAt", "<=", now)
	if limit > 0 {
		query = query.Limit(limit)
	}

	iter := query.Documents(ctx)
	var expired []*entity.Listing

	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, errors.Internal("Failed to query expired auctions", err)
		}

		var listing entity.Listing
		if err := doc.DataTo(&listing); err != nil {
			continue
		}
		expired = append(expired, &listing)
	}

	return expired, nil
}
