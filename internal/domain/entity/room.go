package entity

import "time"

// NegotiationRoom is a conversation scoped to one (item, seller, counterpart)
// triple. Key is the uniqueness anchor: stores create rooms keyed by it so two
// racing creators can never both succeed.
type NegotiationRoom struct {
	ID            string    `json:"id" firestore:"id"`
	Key           string    `json:"-" firestore:"key"`
	ItemID        string    `json:"item_id" firestore:"itemId"`
	SellerID      string    `json:"seller_id" firestore:"sellerId"`
	CounterpartID string    `json:"counterpart_id" firestore:"counterpartId"`
	Participants  []string  `json:"-" firestore:"participants"`
	MessageCount  int64     `json:"-" firestore:"messageCount"`
	CreatedAt     time.Time `json:"created_at" firestore:"createdAt"`
}

// RoomKey derives the unique identity of a room from its triple.
func RoomKey(itemID, sellerID, counterpartID string) string {
	return itemID + "/" + sellerID + "/" + counterpartID
}

func (r *NegotiationRoom) IsParticipant(userID string) bool {
	return userID == r.SellerID || userID == r.CounterpartID
}
