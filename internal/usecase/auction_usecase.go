package usecase

import (
	"context"
	"time"

	"tradepost/internal/domain/entity"
	"tradepost/internal/domain/repository"
	"tradepost/pkg/errors"
	"tradepost/pkg/logger"
)

type AuctionUseCase struct {
	listingRepo repository.ListingRepository
	bidRepo     repository.BidRepository
	now         func() time.Time
}

func NewAuctionUseCase(
	listingRepo repository.ListingRepository,
	bidRepo repository.BidRepository,
	now func() time.Time,
) *AuctionUseCase {
	if now == nil {
		now = time.Now
	}
	return &AuctionUseCase{
		listingRepo: listingRepo,
		bidRepo:     bidRepo,
		now:         now,
	}
}

type AuctionCloseResult struct {
	Listing    *entity.Listing `json:"listing"`
	WinningBid *entity.Bid     `json:"winningBid,omitempty"`
	Sold       bool            `json:"sold"`
}

// CloseAuction settles an auction once its deadline has passed. The status
// transition happens exactly once no matter how many callers race; every
// caller observes the same final listing.
func (uc *AuctionUseCase) CloseAuction(ctx context.Context, itemID string) (*AuctionCloseResult, error) {
	listing, won, err := uc.listingRepo.CloseAuction(ctx, itemID, uc.now())
	if err != nil {
		return nil, err
	}
	if won {
		logger.Info("Auction %s closed with status %s", itemID, listing.Status)
	}

	result := &AuctionCloseResult{
		Listing: listing,
		Sold:    listing.Status == entity.ListingStatusInNegotiation,
	}
	if result.Sold && listing.HighestBidID != "" {
		bid, err := uc.bidRepo.GetByID(ctx, itemID, listing.HighestBidID)
		if err != nil {
			return nil, err
		}
		result.WinningBid = bid
	}
	return result, nil
}

type AuctionStatus struct {
	ItemID          string        `json:"itemId"`
	Status          string        `json:"status"`
	ClosesAt        time.Time     `json:"closesAt"`
	Remaining       time.Duration `json:"-"`
	RemainingMillis int64         `json:"remainingMillis"`
	BidCount        int64         `json:"bidCount"`
	HighestAmount   int64         `json:"highestAmount"`
	LastClosedPrice *int64        `json:"lastClosedPrice,omitempty"`
}

func (uc *AuctionUseCase) Status(ctx context.Context, itemID string) (*AuctionStatus, error) {
	listing, err := uc.listingRepo.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if !listing.IsAuction() {
		return nil, errors.BadRequest("Listing is not an auction", nil)
	}

	remaining := listing.ClosesAt.Sub(uc.now())
	if remaining < 0 || listing.Status != entity.ListingStatusOpen {
		remaining = 0
	}
	return &AuctionStatus{
		ItemID:          listing.ID,
		Status:          listing.Status,
		ClosesAt:        listing.ClosesAt,
		Remaining:       remaining,
		RemainingMillis: remaining.Milliseconds(),
		BidCount:        listing.BidCount,
		HighestAmount:   listing.HighestAmount,
		LastClosedPrice: listing.LastClosedPrice,
	}, nil
}

// SweepExpired closes every open auction whose deadline has passed. Safe to
// run concurrently with manual close calls.
func (uc *AuctionUseCase) SweepExpired(ctx context.Context) (int, error) {
	listings, err := uc.listingRepo.ListExpiredOpenAuctions(ctx, uc.now(), 100)
	if err != nil {
		return 0, err
	}

	closed := 0
	for _, listing := range listings {
		if _, won, err := uc.listingRepo.CloseAuction(ctx, listing.ID, uc.now()); err != nil {
			logger.Error("Failed to close expired auction %s: %v", listing.ID, err)
		} else if won {
			closed++
		}
	}
	return closed, nil
}

// StartCloseSweeper runs SweepExpired on a fixed interval until ctx is done.
func (uc *AuctionUseCase) StartCloseSweeper(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if closed, err := uc.SweepExpired(ctx); err != nil {
					logger.Error("Auction sweep failed: %v", err)
				} else if closed > 0 {
					logger.Info("Auction sweep closed %d listings", closed)
				}
			case <-ctx.Done():
				return
			}
		}
	}()
}
