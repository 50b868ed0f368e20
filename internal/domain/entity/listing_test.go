package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"tradepost/pkg/errors"
)

func openAuction(price int64) *Listing {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return &Listing{
		ID:                "item1",
		Price:             price,
		SellerID:          "seller1",
		TransactionMethod: TransactionMethodAuction,
		Status:            ListingStatusOpen,
		ListedAt:          now,
		ClosesAt:          now.Add(24 * time.Hour),
	}
}

func TestCanAcceptBid(t *testing.T) {
	inWindow := time.Date(2026, 3, 1, 13, 0, 0, 0, time.UTC)
	afterClose := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		setup    func() *Listing
		amount   int64
		now      time.Time
		wantCode string
	}{
		{
			name:   "first_bid_above_price",
			setup:  func() *Listing { return openAuction(1000) },
			amount: 1200,
			now:    inWindow,
		},
		{
			name:     "bid_equal_to_price",
			setup:    func() *Listing { return openAuction(1000) },
			amount:   1000,
			now:      inWindow,
			wantCode: errors.CodeInvalidBid,
		},
		{
			name:     "bid_below_price",
			setup:    func() *Listing { return openAuction(1000) },
			amount:   900,
			now:      inWindow,
			wantCode: errors.CodeInvalidBid,
		},
		{
			name: "bid_below_current_highest",
			setup: func() *Listing {
				l := openAuction(1000)
				l.ApplyBid("bid1", 1200)
				return l
			},
			amount:   1100,
			now:      inWindow,
			wantCode: errors.CodeInvalidBid,
		},
		{
			name: "bid_equal_to_current_highest",
			setup: func() *Listing {
				l := openAuction(1000)
				l.ApplyBid("bid1", 1200)
				return l
			},
			amount:   1200,
			now:      inWindow,
			wantCode: errors.CodeInvalidBid,
		},
		{
			name: "bid_above_current_highest",
			setup: func() *Listing {
				l := openAuction(1000)
				l.ApplyBid("bid1", 1200)
				return l
			},
			amount: 1300,
			now:    inWindow,
		},
		{
			name:     "zero_amount",
			setup:    func() *Listing { return openAuction(1000) },
			amount:   0,
			now:      inWindow,
			wantCode: errors.CodeInvalidBid,
		},
		{
			name:     "bid_after_deadline",
			setup:    func() *Listing { return openAuction(1000) },
			amount:   5000,
			now:      afterClose,
			wantCode: errors.CodeAuctionClosed,
		},
		{
			name:     "bid_exactly_at_deadline",
			setup:    func() *Listing { return openAuction(1000) },
			amount:   5000,
			now:      inWindow.Add(23 * time.Hour),
			wantCode: errors.CodeAuctionClosed,
		},
		{
			name: "bid_on_settled_listing",
			setup: func() *Listing {
				l := openAuction(1000)
				l.Status = ListingStatusInNegotiation
				return l
			},
			amount:   5000,
			now:      inWindow,
			wantCode: errors.CodeAuctionClosed,
		},
		{
			name: "bid_on_fixed_price_listing",
			setup: func() *Listing {
				l := openAuction(1000)
				l.TransactionMethod = TransactionMethodFixedPrice
				return l
			},
			amount:   1200,
			now:      inWindow,
			wantCode: errors.CodeBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.setup().CanAcceptBid(tt.amount, tt.now)
			if tt.wantCode == "" {
				require.NoError(t, err)
				return
			}
			require.True(t, errors.Is(err, tt.wantCode), "expected code %s, got %v", tt.wantCode, err)
		})
	}
}

func TestApplyBidAdvancesHead(t *testing.T) {
	l := openAuction(1000)

	ordinal := l.ApplyBid("bid1", 1200)
	require.Equal(t, int64(1), ordinal)
	require.Equal(t, "bid1", l.HighestBidID)
	require.Equal(t, int64(1200), l.HighestAmount)

	ordinal = l.ApplyBid("bid2", 1300)
	require.Equal(t, int64(2), ordinal)
	require.Equal(t, "bid2", l.HighestBidID)
	require.Equal(t, int64(1300), l.HighestAmount)
}

func TestApplyCloseWithBids(t *testing.T) {
	l := openAuction(1000)
	l.ApplyBid("bid1", 1500)

	l.ApplyClose()

	require.Equal(t, ListingStatusInNegotiation, l.Status)
	require.NotNil(t, l.LastClosedPrice)
	require.Equal(t, int64(1500), *l.LastClosedPrice)
}

func TestApplyCloseWithoutBids(t *testing.T) {
	l := openAuction(1000)

	l.ApplyClose()

	require.Equal(t, ListingStatusNoSale, l.Status)
	require.Nil(t, l.LastClosedPrice)
}

func TestRoomKeyIsDeterministic(t *testing.T) {
	require.Equal(t, RoomKey("item1", "seller1", "buyer1"), RoomKey("item1", "seller1", "buyer1"))
	require.NotEqual(t, RoomKey("item1", "seller1", "buyer1"), RoomKey("item1", "seller1", "buyer2"))
	require.NotEqual(t, RoomKey("item1", "seller1", "buyer1"), RoomKey("item1", "buyer1", "seller1"))
}
