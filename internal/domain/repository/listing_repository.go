package repository

import (
	"context"
	"time"

	"tradepost/internal/domain/entity"
)

type ListingRepository interface {
	Create(ctx context.Context, listing *entity.Listing) error
	GetByID(ctx context.Context, id string) (*entity.Listing, error)
	List(ctx context.Context, filter map[string]interface{}, limit, offset int) ([]*entity.Listing, int64, error)
	// Update writes catalog fields. It never touches the ledger head or the
	// close outcome; those move only through BidRepository.Append and CloseAuction.
	Update(ctx context.Context, listing *entity.Listing) error
	Delete(ctx context.Context, id string) error

	// CloseAuction performs the single authoritative open -> terminal
	// transition. The returned bool reports whether this call won the
	// transition; on false the listing reflects the state the winner wrote.
	// Callers before the deadline get a TOO_EARLY error.
	CloseAuction(ctx context.Context, itemID string, now time.Time) (*entity.Listing, bool, error)

	// ListExpiredOpenAuctions returns open auction listings whose deadline is
	// at or before now, for the server-side close sweeper.
	ListExpiredOpenAuctions(ctx context.Context, now time.Time, limit int) ([]*entity.Listing, error)
}

type CategoryRepository interface {
	List(ctx context.Context) ([]*entity.Category, error)
}
