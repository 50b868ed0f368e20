package memory

import (
	"context"
	"time"

	"tradepost/internal/domain/entity"
	"tradepost/internal/domain/repository"
	"tradepost/pkg/errors"
)

type bidRepository struct {
	store *Store
}

func NewBidRepository(store *Store) repository.BidRepository {
	return &bidRepository{store: store}
}

func (r *bidRepository) Append(ctx context.Context, bid *entity.Bid, now time.Time) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	listing, ok := r.store.listings[bid.ItemID]
	if !ok {
		return errors.NotFound("Listing", nil)
	}
	if err := listing.CanAcceptBid(bid.Amount, now); err != nil {
		return err
	}

	bid.Ordinal = listing.ApplyBid(bid.ID, bid.Amount)
	bid.CreatedAt = now
	listing.UpdatedAt = now

	r.store.bids[bid.ItemID] = append(r.store.bids[bid.ItemID], cloneBid(bid))
	return nil
}

func (r *bidRepository) GetByID(ctx context.Context, itemID, bidID string) (*entity.Bid, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	for _, bid := range r.store.bids[itemID] {
		if bid.ID == bidID {
			return cloneBid(bid), nil
		}
	}
	return nil, errors.NotFound("Bid", nil)
}

func (r *bidRepository) ListByItem(ctx context.Context, itemID string, limit, offset int) ([]*entity.Bid, int64, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	bids := r.store.bids[itemID]
	total := int64(len(bids))

	// Newest first.
	reversed := make([]*entity.Bid, 0, len(bids))
	for i := len(bids) - 1; i >= 0; i-- {
		reversed = append(reversed, cloneBid(bids[i]))
	}

	start := offset
	if start > len(reversed) {
		start = len(reversed)
	}
	end := len(reversed)
	if limit > 0 && start+limit < end {
		end = start + limit
	}

	return reversed[start:end], total, nil
}
