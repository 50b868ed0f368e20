package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"tradepost/internal/adapter/repository/memory"
	"tradepost/internal/domain/entity"
	"tradepost/internal/domain/repository"
)

var testStart = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// testClock is a settable clock shared by the usecases under test.
type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func newTestClock() *testClock {
	return &testClock{t: testStart}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type fixture struct {
	clock       *testClock
	listingRepo repository.ListingRepository
	bidRepo     repository.BidRepository
	roomRepo    repository.RoomRepository
	messageRepo repository.MessageRepository

	listings *ListingUseCase
	bids     *BidUseCase
	auctions *AuctionUseCase
	rooms    *RoomUseCase
	messages *MessageUseCase

	broadcaster *fakeBroadcaster
}

func newFixture() *fixture {
	store := memory.NewStore()
	store.SeedCategories([]*entity.Category{
		{ID: "digital", Name: "Digital Devices"},
		{ID: "books", Name: "Books"},
	})

	clock := newTestClock()
	listingRepo := memory.NewListingRepository(store)
	bidRepo := memory.NewBidRepository(store)
	roomRepo := memory.NewRoomRepository(store)
	messageRepo := memory.NewMessageRepository(store)
	categoryRepo := memory.NewCategoryRepository(store)
	broadcaster := newFakeBroadcaster()

	return &fixture{
		clock:       clock,
		listingRepo: listingRepo,
		bidRepo:     bidRepo,
		roomRepo:    roomRepo,
		messageRepo: messageRepo,
		listings:    NewListingUseCase(listingRepo, categoryRepo, 24*time.Hour, clock.Now),
		bids:        NewBidUseCase(bidRepo, listingRepo, nil, clock.Now),
		auctions:    NewAuctionUseCase(listingRepo, bidRepo, clock.Now),
		rooms:       NewRoomUseCase(roomRepo, listingRepo, bidRepo, nil, clock.Now),
		messages:    NewMessageUseCase(messageRepo, roomRepo, broadcaster, nil, clock.Now),
		broadcaster: broadcaster,
	}
}

func (f *fixture) createAuction(t *testing.T, sellerID string, price int64) *entity.Listing {
	t.Helper()
	listing, err := f.listings.CreateListing(context.Background(), sellerID, CreateListingInput{
		Title:             "Road bike",
		CategoryID:        "digital",
		Price:             price,
		TransactionMethod: entity.TransactionMethodAuction,
	})
	require.NoError(t, err)
	return listing
}

func (f *fixture) createFixedPrice(t *testing.T, sellerID string, price int64) *entity.Listing {
	t.Helper()
	listing, err := f.listings.CreateListing(context.Background(), sellerID, CreateListingInput{
		Title:             "Desk lamp",
		CategoryID:        "books",
		Price:             price,
		TransactionMethod: entity.TransactionMethodFixedPrice,
	})
	require.NoError(t, err)
	return listing
}

type broadcastCall struct {
	RoomID        string
	Payload       []byte
	ExcludeUserID string
}

type fakeBroadcaster struct {
	mu      sync.Mutex
	calls   []broadcastCall
	members map[string]map[string]bool
}

func newFakeBroadcaster() *fakeBroadcaster {
	return &fakeBroadcaster{members: make(map[string]map[string]bool)}
}

func (f *fakeBroadcaster) BroadcastToRoom(roomID string, payload []byte, excludeUserID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, broadcastCall{RoomID: roomID, Payload: payload, ExcludeUserID: excludeUserID})
}

func (f *fakeBroadcaster) JoinRoom(roomID, userID string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.members[roomID] == nil {
		f.members[roomID] = make(map[string]bool)
	}
	f.members[roomID][userID] = true
	return true
}

func (f *fakeBroadcaster) LeaveRoom(roomID, userID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.members[roomID], userID)
}

func (f *fakeBroadcaster) broadcasts() []broadcastCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	calls := make([]broadcastCall, len(f.calls))
	copy(calls, f.calls)
	return calls
}
