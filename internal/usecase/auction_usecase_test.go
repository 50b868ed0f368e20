package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"tradepost/internal/domain/entity"
	"tradepost/pkg/errors"
)

func TestCloseAuctionBeforeDeadline(t *testing.T) {
	f := newFixture()
	listing := f.createAuction(t, "seller1", 1000)

	_, err := f.auctions.CloseAuction(context.Background(), listing.ID)
	require.True(t, errors.Is(err, errors.CodeTooEarly))
}

func TestCloseAuctionSettlesWinner(t *testing.T) {
	f := newFixture()
	listing := f.createAuction(t, "seller1", 1000)
	ctx := context.Background()

	bid, err := f.bids.SubmitBid(ctx, "alice", listing.ID, SubmitBidInput{Amount: 1500})
	require.NoError(t, err)

	f.clock.Advance(25 * time.Hour)

	result, err := f.auctions.CloseAuction(ctx, listing.ID)
	require.NoError(t, err)
	require.True(t, result.Sold)
	require.Equal(t, entity.ListingStatusInNegotiation, result.Listing.Status)
	require.NotNil(t, result.Listing.LastClosedPrice)
	require.Equal(t, int64(1500), *result.Listing.LastClosedPrice)
	require.Equal(t, bid.ID, result.WinningBid.ID)
	require.Equal(t, "alice", result.WinningBid.BidderID)
}

func TestCloseAuctionNoBids(t *testing.T) {
	f := newFixture()
	listing := f.createAuction(t, "seller1", 1000)

	f.clock.Advance(25 * time.Hour)

	result, err := f.auctions.CloseAuction(context.Background(), listing.ID)
	require.NoError(t, err)
	require.False(t, result.Sold)
	require.Equal(t, entity.ListingStatusNoSale, result.Listing.Status)
	require.Nil(t, result.Listing.LastClosedPrice)
	require.Nil(t, result.WinningBid)
}

// Racing closers all receive the same settled listing.
func TestCloseAuctionIdempotentUnderRace(t *testing.T) {
	f := newFixture()
	listing := f.createAuction(t, "seller1", 1000)
	ctx := context.Background()

	_, err := f.bids.SubmitBid(ctx, "alice", listing.ID, SubmitBidInput{Amount: 2000})
	require.NoError(t, err)

	f.clock.Advance(25 * time.Hour)

	const closers = 10
	results := make([]*AuctionCloseResult, closers)

	var wg sync.WaitGroup
	for i := 0; i < closers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			result, err := f.auctions.CloseAuction(ctx, listing.ID)
			require.NoError(t, err)
			results[i] = result
		}(i)
	}
	wg.Wait()

	for _, result := range results {
		require.Equal(t, entity.ListingStatusInNegotiation, result.Listing.Status)
		require.Equal(t, int64(2000), *result.Listing.LastClosedPrice)
		require.Equal(t, "alice", result.WinningBid.BidderID)
	}
}

func TestAuctionStatusCountdown(t *testing.T) {
	f := newFixture()
	listing := f.createAuction(t, "seller1", 1000)
	ctx := context.Background()

	status, err := f.auctions.Status(ctx, listing.ID)
	require.NoError(t, err)
	require.Equal(t, entity.ListingStatusOpen, status.Status)
	require.Equal(t, 24*time.Hour, status.Remaining)

	f.clock.Advance(10 * time.Hour)
	status, err = f.auctions.Status(ctx, listing.ID)
	require.NoError(t, err)
	require.Equal(t, 14*time.Hour, status.Remaining)

	f.clock.Advance(20 * time.Hour)
	status, err = f.auctions.Status(ctx, listing.ID)
	require.NoError(t, err)
	require.Zero(t, status.Remaining)
}

func TestAuctionStatusFixedPriceListing(t *testing.T) {
	f := newFixture()
	listing := f.createFixedPrice(t, "seller1", 500)

	_, err := f.auctions.Status(context.Background(), listing.ID)
	require.True(t, errors.Is(err, errors.CodeBadRequest))
}

func TestSweepExpiredClosesOnlyDueAuctions(t *testing.T) {
	f := newFixture()
	due := f.createAuction(t, "seller1", 1000)

	f.clock.Advance(20 * time.Hour)
	fresh := f.createAuction(t, "seller1", 1000)

	f.clock.Advance(5 * time.Hour)

	closed, err := f.auctions.SweepExpired(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, closed)

	ctx := context.Background()
	dueListing, err := f.listingRepo.GetByID(ctx, due.ID)
	require.NoError(t, err)
	require.Equal(t, entity.ListingStatusNoSale, dueListing.Status)

	freshListing, err := f.listingRepo.GetByID(ctx, fresh.ID)
	require.NoError(t, err)
	require.Equal(t, entity.ListingStatusOpen, freshListing.Status)
}
