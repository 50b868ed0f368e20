package entity

import (
	"time"

	"tradepost/pkg/errors"
)

const (
	TransactionMethodFixedPrice = "fixed_price"
	TransactionMethodAuction    = "auction"
)

const (
	ListingStatusOpen          = "open"
	ListingStatusInNegotiation = "in_negotiation"
	ListingStatusNoSale        = "no_sale"
	ListingStatusClosed        = "closed"
)

type Listing struct {
	ID                string    `json:"id" firestore:"id"`
	Title             string    `json:"title" firestore:"title"`
	Description       string    `json:"description" firestore:"description"`
	Price             int64     `json:"price" firestore:"price"`
	LastClosedPrice   *int64    `json:"last_closed_price,omitempty" firestore:"lastClosedPrice,omitempty"`
	SellerID          string    `json:"seller_id" firestore:"sellerId"`
	CategoryID        string    `json:"category_id,omitempty" firestore:"categoryId,omitempty"`
	ImageURL          string    `json:"image_url,omitempty" firestore:"imageUrl,omitempty"`
	TransactionMethod string    `json:"transaction_method" firestore:"transactionMethod"`
	Status            string    `json:"status" firestore:"status"`
	ListedAt          time.Time `json:"listed_at" firestore:"listedAt"`
	ClosesAt          time.Time `json:"closes_at,omitempty" firestore:"closesAt,omitempty"`

	// Ledger head, written only together with a bid append.
	HighestBidID  string `json:"highest_bid_id,omitempty" firestore:"highestBidId,omitempty"`
	HighestAmount int64  `json:"highest_amount,omitempty" firestore:"highestAmount,omitempty"`
	BidCount      int64  `json:"bid_count" firestore:"bidCount"`

	CreatedAt time.Time `json:"created_at" firestore:"createdAt"`
	UpdatedAt time.Time `json:"updated_at" firestore:"updatedAt"`
}

func (l *Listing) IsAuction() bool {
	return l.TransactionMethod == TransactionMethodAuction
}

// CanAcceptBid is the single acceptance rule for the bid ledger. Both store
// implementations evaluate it inside their serialization point so the check
// and the append are atomic.
func (l *Listing) CanAcceptBid(amount int64, now time.Time) error {
	if !l.IsAuction() {
		return errors.BadRequest("Listing is not an auction", nil)
	}
	if l.Status != ListingStatusOpen || !now.Before(l.ClosesAt) {
		return errors.AuctionClosed("Auction is no longer accepting bids")
	}
	if amount <= 0 {
		return errors.InvalidBid("Bid amount must be a positive integer", nil)
	}
	if amount <= l.Price {
		return errors.InvalidBid("Bid must exceed the listing price", nil)
	}
	if l.BidCount > 0 && amount <= l.HighestAmount {
		return errors.InvalidBid("Bid must exceed the current highest bid", nil)
	}
	return nil
}

// ApplyBid records an accepted bid on the ledger head. Must only be called
// after CanAcceptBid, inside the same atomic write.
func (l *Listing) ApplyBid(bidID string, amount int64) int64 {
	l.BidCount++
	l.HighestBidID = bidID
	l.HighestAmount = amount
	return l.BidCount
}

// ApplyClose performs the open -> terminal transition. Must only be called
// inside the store's atomic compare-and-set; the caller has already verified
// Status == open and the deadline has passed.
func (l *Listing) ApplyClose() {
	if l.BidCount == 0 {
		l.Status = ListingStatusNoSale
		return
	}
	price := l.HighestAmount
	l.LastClosedPrice = &price
	l.Status = ListingStatusInNegotiation
}
