package usecase

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"

	"tradepost/internal/domain/entity"
	"tradepost/internal/domain/repository"
	"tradepost/internal/infrastructure/ratelimit"
	"tradepost/pkg/errors"
	"tradepost/pkg/logger"
)

type BidUseCase struct {
	bidRepo     repository.BidRepository
	listingRepo repository.ListingRepository
	rateLimiter *ratelimit.RateLimiter
	now         func() time.Time
}

func NewBidUseCase(
	bidRepo repository.BidRepository,
	listingRepo repository.ListingRepository,
	rateLimiter *ratelimit.RateLimiter,
	now func() time.Time,
) *BidUseCase {
	if now == nil {
		now = time.Now
	}
	return &BidUseCase{
		bidRepo:     bidRepo,
		listingRepo: listingRepo,
		rateLimiter: rateLimiter,
		now:         now,
	}
}

type SubmitBidInput struct {
	Amount int64 `json:"amount" validate:"required,gt=0"`
}

// SubmitBid validates and records a bid. Acceptance is decided atomically
// against the listing's current head, so a bid that loses a race to a higher
// concurrent bid is rejected rather than silently reordered.
func (uc *BidUseCase) SubmitBid(ctx context.Context, bidderID, itemID string, input SubmitBidInput) (*entity.Bid, error) {
	if uc.rateLimiter != nil {
		allowed, waitTime := uc.rateLimiter.Allow(bidderID, "submit_bid")
		if !allowed {
			return nil, errors.TooManyRequests("Rate limit exceeded. Please wait before bidding again", waitTime)
		}
	}

	listing, err := uc.listingRepo.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if listing.SellerID == bidderID {
		return nil, errors.InvalidBid("Sellers cannot bid on their own listing", nil)
	}

	bid := &entity.Bid{
		ID:       ulid.Make().String(),
		ItemID:   itemID,
		BidderID: bidderID,
		Amount:   input.Amount,
	}
	if err := uc.bidRepo.Append(ctx, bid, uc.now()); err != nil {
		return nil, err
	}

	logger.Debug("Bid %s accepted on listing %s at %d", bid.ID, itemID, bid.Amount)
	return bid, nil
}

// HighestBid reads the current winning bid from the listing head, so the
// answer always reflects every bid accepted before the call.
func (uc *BidUseCase) HighestBid(ctx context.Context, itemID string) (*entity.Bid, error) {
	listing, err := uc.listingRepo.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if !listing.IsAuction() {
		return nil, errors.BadRequest("Listing is not an auction", nil)
	}
	if listing.BidCount == 0 {
		return nil, nil
	}
	return uc.bidRepo.GetByID(ctx, itemID, listing.HighestBidID)
}

func (uc *BidUseCase) ListBids(ctx context.Context, itemID string, limit, offset int) ([]*entity.Bid, int64, error) {
	if _, err := uc.listingRepo.GetByID(ctx, itemID); err != nil {
		return nil, 0, err
	}
	return uc.bidRepo.ListByItem(ctx, itemID, limit, offset)
}
