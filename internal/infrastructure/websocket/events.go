package websocket

import "encoding/json"

// Inbound event types sent by clients.
const (
	EventJoinRoom    = "join_room"
	EventLeaveRoom   = "leave_room"
	EventSendMessage = "send_message"
	EventPing        = "ping"
)

// Outbound event types sent to clients.
const (
	EventMessage    = "message"
	EventRoomJoined = "room_joined"
	EventRoomLeft   = "room_left"
	EventError      = "error"
	EventPong       = "pong"
)

// Event is the envelope for every frame exchanged over the socket.
type Event struct {
	Type   string          `json:"type"`
	RoomID string          `json:"roomId,omitempty"`
	Data   json.RawMessage `json:"data,omitempty"`
}

// ErrorData is the payload of an error event.
type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewEvent marshals data into an event envelope. Marshal errors are treated
// as programmer mistakes and yield an error event instead.
func NewEvent(eventType, roomID string, data interface{}) []byte {
	raw, err := json.Marshal(data)
	if err != nil {
		raw, _ = json.Marshal(ErrorData{Code: "INTERNAL_ERROR", Message: "failed to encode event"})
		eventType = EventError
	}
	payload, _ := json.Marshal(Event{Type: eventType, RoomID: roomID, Data: raw})
	return payload
}
