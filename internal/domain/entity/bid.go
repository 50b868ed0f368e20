package entity

import "time"

type Bid struct {
	ID        string    `json:"id" firestore:"id"`
	ItemID    string    `json:"item_id" firestore:"itemId"`
	BidderID  string    `json:"bidder_id" firestore:"bidderId"`
	Amount    int64     `json:"amount" firestore:"amount"`
	Ordinal   int64     `json:"ordinal" firestore:"ordinal"`
	CreatedAt time.Time `json:"created_at" firestore:"createdAt"`
}
