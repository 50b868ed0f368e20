package entity

import "time"

// Message is immutable once stored. Seq is the per-room total order assigned
// at acceptance time.
type Message struct {
	ID       string    `json:"id" firestore:"id"`
	RoomID   string    `json:"room_id" firestore:"roomId"`
	SenderID string    `json:"sender_id" firestore:"senderId"`
	Body     string    `json:"body" firestore:"body"`
	Seq      int64     `json:"seq" firestore:"seq"`
	SentAt   time.Time `json:"sent_at" firestore:"sentAt"`
}
