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

type listingRepository struct {
	store *Store
}

func NewListingRepository(store *Store) repository.ListingRepository {
	return &listingRepository{store: store}
}

func (r *listingRepository) Create(ctx context.Context, listing *entity.Listing) error {
	if listing.ID == "" {
		listing.ID = uuid.New().String()
	}

	now := time.Now()
	if listing.CreatedAt.IsZero() {
		listing.CreatedAt = now
	}
	listing.UpdatedAt = now

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	r.store.listings[listing.ID] = cloneListing(listing)
	return nil
}

func (r *listingRepository) GetByID(ctx context.Context, id string) (*entity.Listing, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	listing, ok := r.store.listings[id]
	if !ok {
		return nil, errors.NotFound("Listing", nil)
	}
	return cloneListing(listing), nil
}

func (r *listingRepository) List(ctx context.Context, filter map[string]interface{}, limit, offset int) ([]*entity.Listing, int64, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var matched []*entity.Listing
	for _, listing := range r.store.listings {
		if matchesFilter(listing, filter) {
			matched = append(matched, cloneListing(listing))
		}
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].ListedAt.After(matched[j].ListedAt)
	})

	total := int64(len(matched))
	start := offset
	if start > len(matched) {
		start = len(matched)
	}
	end := len(matched)
	if limit > 0 && start+limit < end {
		end = start + limit
	}

	return matched[start:end], total, nil
}

func matchesFilter(listing *entity.Listing, filter map[string]interface{}) bool {
	for key, value := range filter {
		switch key {
		case "status":
			if listing.Status != value {
				return false
			}
		case "categoryId":
			if listing.CategoryID != value {
				return false
			}
		case "sellerId":
			if listing.SellerID != value {
				return false
			}
		case "transactionMethod":
			if listing.TransactionMethod != value {
				return false
			}
		}
	}
	return true
}

func (r *listingRepository) Update(ctx context.Context, listing *entity.Listing) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	current, ok := r.store.listings[listing.ID]
	if !ok {
		return errors.NotFound("Listing", nil)
	}

	// Catalog fields only; ledger head and the close outcome stay whatever
	// the atomic paths wrote.
	listing.HighestBidID = current.HighestBidID
	listing.HighestAmount = current.HighestAmount
	listing.BidCount = current.BidCount
	listing.LastClosedPrice = current.LastClosedPrice
	listing.Status = current.Status
	listing.UpdatedAt = time.Now()

	r.store.listings[listing.ID] = cloneListing(listing)
	return nil
}

func (r *listingRepository) Delete(ctx context.Context, id string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.listings[id]; !ok {
		return errors.NotFound("Listing", nil)
	}
	delete(r.store.listings, id)
	return nil
}

func (r *listingRepository) CloseAuction(ctx context.Context, itemID string, now time.Time) (*entity.Listing, bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	listing, ok := r.store.listings[itemID]
	if !ok {
		return nil, false, errors.NotFound("Listing", nil)
	}
	if !listing.IsAuction() {
		return nil, false, errors.BadRequest("Listing is not an auction", nil)
	}
	if listing.Status != entity.ListingStatusOpen {
		// Already closed; report the recorded outcome.
		return cloneListing(listing), false, nil
	}
	if now.Before(listing.ClosesAt) {
		return nil, false, errors.TooEarly("Auction deadline has not passed")
	}

	listing.ApplyClose()
	listing.UpdatedAt = now
	return cloneListing(listing), true, nil
}

func (r *listingRepository) ListExpiredOpenAuctions(ctx context.Context, now time.Time, limit int) ([]*entity.Listing, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var expired []*entity.Listing
	for _, listing := range r.store.listings {
		if listing.IsAuction() && listing.Status == entity.ListingStatusOpen && !now.Before(listing.ClosesAt) {
			expired = append(expired, cloneListing(listing))
			if limit > 0 && len(expired) >= limit {
				break
			}
		}
	}
	return expired, nil
}

type categoryRepository struct {
	store *Store
}

func NewCategoryRepository(store *Store) repository.CategoryRepository {
	return &categoryRepository{store: store}
}

func (r *categoryRepository) List(ctx context.Context) ([]*entity.Category, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	categories := make([]*entity.Category, len(r.store.categories))
	copy(categories, r.store.categories)
	return categories, nil
}
