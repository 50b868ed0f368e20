package usecase

import (
	"context"
	"time"

	"tradepost/internal/domain/entity"
	"tradepost/internal/domain/repository"
	"tradepost/internal/infrastructure/ratelimit"
	"tradepost/pkg/errors"
	"tradepost/pkg/logger"
)

type RoomUseCase struct {
	roomRepo    repository.RoomRepository
	listingRepo repository.ListingRepository
	bidRepo     repository.BidRepository
	rateLimiter *ratelimit.RateLimiter
	now         func() time.Time
}

func NewRoomUseCase(
	roomRepo repository.RoomRepository,
	listingRepo repository.ListingRepository,
	bidRepo repository.BidRepository,
	rateLimiter *ratelimit.RateLimiter,
	now func() time.Time,
) *RoomUseCase {
	if now == nil {
		now = time.Now
	}
	return &RoomUseCase{
		roomRepo:    roomRepo,
		listingRepo: listingRepo,
		bidRepo:     bidRepo,
		rateLimiter: rateLimiter,
		now:         now,
	}
}

type OpenRoomInput struct {
	ItemID string `json:"itemId" validate:"required"`
	// CounterpartID is required only when the seller opens the room.
	CounterpartID string `json:"counterpartId"`
}

// OpenRoom returns the negotiation room for (item, seller, counterpart),
// creating it if it does not exist yet. Concurrent calls for the same triple
// always converge on one room.
func (uc *RoomUseCase) OpenRoom(ctx context.Context, callerID string, input OpenRoomInput) (*entity.NegotiationRoom, bool, error) {
	if uc.rateLimiter != nil {
		allowed, waitTime := uc.rateLimiter.Allow(callerID, "create_room")
		if !allowed {
			return nil, false, errors.TooManyRequests("Rate limit exceeded. Please wait before opening another room", waitTime)
		}
	}

	listing, err := uc.listingRepo.GetByID(ctx, input.ItemID)
	if err != nil {
		if errors.Is(err, errors.CodeNotFound) {
			return nil, false, errors.InvalidParticipants("Item not found")
		}
		return nil, false, err
	}

	counterpartID := input.CounterpartID
	if callerID == listing.SellerID {
		if counterpartID == "" {
			return nil, false, errors.InvalidParticipants("Counterpart is required")
		}
	} else {
		counterpartID = callerID
	}
	if counterpartID == listing.SellerID {
		return nil, false, errors.InvalidParticipants("Seller and counterpart must be different users")
	}

	if err := uc.counterpartAllowed(ctx, listing, counterpartID); err != nil {
		return nil, false, err
	}

	room := &entity.NegotiationRoom{
		ItemID:        listing.ID,
		SellerID:      listing.SellerID,
		CounterpartID: counterpartID,
		CreatedAt:     uc.now(),
	}
	room, created, err := uc.roomRepo.GetOrCreate(ctx, room)
	if err != nil {
		return nil, false, err
	}
	if created {
		logger.Info("Negotiation room %s opened for item %s", room.ID, listing.ID)
	}
	return room, created, nil
}

// counterpartAllowed enforces who may negotiate: fixed price listings are
// open to anyone while on sale, auctions only to the winning bidder after
// settlement.
func (uc *RoomUseCase) counterpartAllowed(ctx context.Context, listing *entity.Listing, counterpartID string) error {
	if !listing.IsAuction() {
		if listing.Status != entity.ListingStatusOpen && listing.Status != entity.ListingStatusInNegotiation {
			return errors.BadRequest("Listing is no longer available", nil)
		}
		return nil
	}

	switch listing.Status {
	case entity.ListingStatusOpen:
		return errors.BadRequest("Auction rooms open after the auction closes", nil)
	case entity.ListingStatusNoSale:
		return errors.BadRequest("Auction ended without a sale", nil)
	}

	bid, err := uc.bidRepo.GetByID(ctx, listing.ID, listing.HighestBidID)
	if err != nil {
		return err
	}
	if bid.BidderID != counterpartID {
		return errors.InvalidParticipants("Only the winning bidder can negotiate this item")
	}
	return nil
}

func (uc *RoomUseCase) GetRoom(ctx context.Context, userID, roomID string) (*entity.NegotiationRoom, error) {
	room, err := uc.roomRepo.GetByID(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if !room.IsParticipant(userID) {
		return nil, errors.Unauthorized("You are not a participant in this room", nil)
	}
	return room, nil
}

func (uc *RoomUseCase) ListRoomsForUser(ctx context.Context, userID string) ([]*entity.NegotiationRoom, error) {
	return uc.roomRepo.ListByUser(ctx, userID)
}
