package repository

import (
	"context"
	"time"

	"tradepost/internal/domain/entity"
)

type BidRepository interface {
	// Append validates the bid against the listing at acceptance time and, if
	// accepted, appends it and advances the ledger head in one atomic write.
	// The bid's Ordinal is filled in on success. Rejections surface as
	// NOT_FOUND, INVALID_BID or AUCTION_CLOSED application errors.
	Append(ctx context.Context, bid *entity.Bid, now time.Time) error

	GetByID(ctx context.Context, itemID, bidID string) (*entity.Bid, error)

	// ListByItem returns an item's bids newest first.
	ListByItem(ctx context.Context, itemID string, limit, offset int) ([]*entity.Bid, int64, error)
}
