package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"tradepost/internal/domain/entity"
	"tradepost/internal/domain/repository"
	"tradepost/pkg/errors"
)

func TestOpenRoomFixedPriceBuyer(t *testing.T) {
	f := newFixture()
	listing := f.createFixedPrice(t, "seller1", 500)

	room, created, err := f.rooms.OpenRoom(context.Background(), "buyer1", OpenRoomInput{ItemID: listing.ID})
	require.NoError(t, err)
	require.True(t, created)
	require.Equal(t, listing.ID, room.ItemID)
	require.Equal(t, "seller1", room.SellerID)
	require.Equal(t, "buyer1", room.CounterpartID)
}

func TestOpenRoomIdempotentForTriple(t *testing.T) {
	f := newFixture()
	listing := f.createFixedPrice(t, "seller1", 500)
	ctx := context.Background()

	first, created, err := f.rooms.OpenRoom(ctx, "buyer1", OpenRoomInput{ItemID: listing.ID})
	require.NoError(t, err)
	require.True(t, created)

	// The seller reopening with the same counterpart lands in the same room.
	second, created, err := f.rooms.OpenRoom(ctx, "seller1", OpenRoomInput{ItemID: listing.ID, CounterpartID: "buyer1"})
	require.NoError(t, err)
	require.False(t, created)
	require.Equal(t, first.ID, second.ID)
}

func TestOpenRoomSelfNegotiationRejected(t *testing.T) {
	f := newFixture()
	listing := f.createFixedPrice(t, "seller1", 500)
	ctx := context.Background()

	_, _, err := f.rooms.OpenRoom(ctx, "seller1", OpenRoomInput{ItemID: listing.ID, CounterpartID: "seller1"})
	require.True(t, errors.Is(err, errors.CodeInvalidParticipants))

	_, _, err = f.rooms.OpenRoom(ctx, "seller1", OpenRoomInput{ItemID: listing.ID})
	require.True(t, errors.Is(err, errors.CodeInvalidParticipants))
}

func TestOpenRoomUnknownItem(t *testing.T) {
	f := newFixture()

	_, _, err := f.rooms.OpenRoom(context.Background(), "buyer1", OpenRoomInput{ItemID: "nope"})
	require.True(t, errors.Is(err, errors.CodeInvalidParticipants))
}

type failingListingRepo struct {
	repository.ListingRepository
}

func (failingListingRepo) GetByID(ctx context.Context, id string) (*entity.Listing, error) {
	return nil, errors.Internal("store unavailable", nil)
}

func TestOpenRoomStoreErrorIsNotMasked(t *testing.T) {
	f := newFixture()
	rooms := NewRoomUseCase(f.roomRepo, failingListingRepo{}, f.bidRepo, nil, f.clock.Now)

	_, _, err := rooms.OpenRoom(context.Background(), "buyer1", OpenRoomInput{ItemID: "item1"})
	require.True(t, errors.Is(err, errors.CodeInternal))
}

func TestOpenRoomAuctionGating(t *testing.T) {
	f := newFixture()
	listing := f.createAuction(t, "seller1", 1000)
	ctx := context.Background()

	// While the auction runs nobody can open a room.
	_, _, err := f.rooms.OpenRoom(ctx, "alice", OpenRoomInput{ItemID: listing.ID})
	require.True(t, errors.Is(err, errors.CodeBadRequest))

	_, err = f.bids.SubmitBid(ctx, "alice", listing.ID, SubmitBidInput{Amount: 1500})
	require.NoError(t, err)
	_, err = f.bids.SubmitBid(ctx, "bob", listing.ID, SubmitBidInput{Amount: 1600})
	require.NoError(t, err)

	f.clock.Advance(25 * time.Hour)
	_, err = f.auctions.CloseAuction(ctx, listing.ID)
	require.NoError(t, err)

	// Only the winning bidder can negotiate.
	_, _, err = f.rooms.OpenRoom(ctx, "alice", OpenRoomInput{ItemID: listing.ID})
	require.True(t, errors.Is(err, errors.CodeInvalidParticipants))

	room, created, err := f.rooms.OpenRoom(ctx, "bob", OpenRoomInput{ItemID: listing.ID})
	require.NoError(t, err)
	require.True(t, created)
	require.Equal(t, "bob", room.CounterpartID)
}

func TestOpenRoomAuctionNoSale(t *testing.T) {
	f := newFixture()
	listing := f.createAuction(t, "seller1", 1000)
	ctx := context.Background()

	f.clock.Advance(25 * time.Hour)
	_, err := f.auctions.CloseAuction(ctx, listing.ID)
	require.NoError(t, err)

	_, _, err = f.rooms.OpenRoom(ctx, "alice", OpenRoomInput{ItemID: listing.ID})
	require.True(t, errors.Is(err, errors.CodeBadRequest))
}

// Buyer and seller racing to open the same room converge on one room ID.
func TestOpenRoomConcurrent(t *testing.T) {
	f := newFixture()
	listing := f.createFixedPrice(t, "seller1", 500)
	ctx := context.Background()

	const callers = 20
	ids := make([]string, callers)
	createds := make([]bool, callers)

	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			caller := "buyer1"
			input := OpenRoomInput{ItemID: listing.ID}
			if i%2 == 0 {
				caller = "seller1"
				input.CounterpartID = "buyer1"
			}
			room, created, err := f.rooms.OpenRoom(ctx, caller, input)
			require.NoError(t, err)
			ids[i] = room.ID
			createds[i] = created
		}(i)
	}
	wg.Wait()

	creates := 0
	for i := 0; i < callers; i++ {
		require.Equal(t, ids[0], ids[i])
		if createds[i] {
			creates++
		}
	}
	require.Equal(t, 1, creates)
}

func TestGetRoomParticipantsOnly(t *testing.T) {
	f := newFixture()
	listing := f.createFixedPrice(t, "seller1", 500)
	ctx := context.Background()

	room, _, err := f.rooms.OpenRoom(ctx, "buyer1", OpenRoomInput{ItemID: listing.ID})
	require.NoError(t, err)

	_, err = f.rooms.GetRoom(ctx, "buyer1", room.ID)
	require.NoError(t, err)
	_, err = f.rooms.GetRoom(ctx, "seller1", room.ID)
	require.NoError(t, err)

	_, err = f.rooms.GetRoom(ctx, "stranger", room.ID)
	require.True(t, errors.Is(err, errors.CodeUnauthorized))
}

func TestListRoomsForUser(t *testing.T) {
	f := newFixture()
	a := f.createFixedPrice(t, "seller1", 500)
	b := f.createFixedPrice(t, "seller2", 700)
	ctx := context.Background()

	_, _, err := f.rooms.OpenRoom(ctx, "buyer1", OpenRoomInput{ItemID: a.ID})
	require.NoError(t, err)
	_, _, err = f.rooms.OpenRoom(ctx, "buyer1", OpenRoomInput{ItemID: b.ID})
	require.NoError(t, err)

	rooms, err := f.rooms.ListRoomsForUser(ctx, "buyer1")
	require.NoError(t, err)
	require.Len(t, rooms, 2)

	rooms, err = f.rooms.ListRoomsForUser(ctx, "seller2")
	require.NoError(t, err)
	require.Len(t, rooms, 1)
}
