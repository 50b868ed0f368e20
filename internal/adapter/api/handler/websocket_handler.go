package handler

import (
	"context"
	"encoding/json"
	"net/http"

	gorillaws "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"tradepost/internal/infrastructure/firebase"
	ws "tradepost/internal/infrastructure/websocket"
	"tradepost/internal/usecase"
	"tradepost/pkg/errors"
	"tradepost/pkg/logger"
)

type WebSocketHandler struct {
	wsManager      *ws.Manager
	messageUseCase *usecase.MessageUseCase
	firebaseAuth   *firebase.FirebaseAuthClient
}

var upgrader = gorillaws.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // You should restrict this in production
	},
}

func NewWebSocketHandler(wsManager *ws.Manager, messageUseCase *usecase.MessageUseCase, firebaseAuth *firebase.FirebaseAuthClient) *WebSocketHandler {
	h := &WebSocketHandler{
		wsManager:      wsManager,
		messageUseCase: messageUseCase,
		firebaseAuth:   firebaseAuth,
	}
	wsManager.SetInboundHandler(h.handleInbound)
	return h
}

// HandleWebSocket upgrades the connection. The ID token travels as a query
// parameter because browsers cannot set headers on WebSocket handshakes.
func (h *WebSocketHandler) HandleWebSocket(c echo.Context) error {
	token := c.QueryParam("token")
	if token == "" {
		return errors.Unauthorized("Authentication token is required", nil)
	}

	userID, err := h.firebaseAuth.VerifyToken(c.Request().Context(), token)
	if err != nil {
		return errors.Unauthorized("Invalid or expired token", nil)
	}

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return errors.Internal("Failed to upgrade connection", err)
	}

	client := &ws.Client{
		UserID: userID,
		Conn:   conn,
		Send:   make(chan []byte, 256),
	}

	h.wsManager.Register <- client

	go client.ReadPump(h.wsManager)
	go client.WritePump()

	return nil
}

type sendMessageData struct {
	Body string `json:"body"`
}

func (h *WebSocketHandler) handleInbound(client *ws.Client, payload []byte) {
	var event ws.Event
	if err := json.Unmarshal(payload, &event); err != nil {
		h.sendError(client, errors.BadRequest("Malformed event", err))
		return
	}

	ctx := context.Background()

	switch event.Type {
	case ws.EventPing:
		client.Send <- ws.NewEvent(ws.EventPong, "", nil)

	case ws.EventJoinRoom:
		if err := h.messageUseCase.JoinRoom(ctx, client.UserID, event.RoomID); err != nil {
			h.sendError(client, err)
			return
		}
		client.Send <- ws.NewEvent(ws.EventRoomJoined, event.RoomID, nil)

	case ws.EventLeaveRoom:
		if err := h.messageUseCase.LeaveRoom(ctx, client.UserID, event.RoomID); err != nil {
			h.sendError(client, err)
			return
		}
		client.Send <- ws.NewEvent(ws.EventRoomLeft, event.RoomID, nil)

	case ws.EventSendMessage:
		var data sendMessageData
		if err := json.Unmarshal(event.Data, &data); err != nil {
			h.sendError(client, errors.BadRequest("Malformed message data", err))
			return
		}
		message, err := h.messageUseCase.SendMessage(ctx, client.UserID, event.RoomID, usecase.SendMessageInput{
			Body: data.Body,
		})
		if err != nil {
			h.sendError(client, err)
			return
		}
		// Echo back to the sender so it sees its assigned sequence number.
		client.Send <- ws.NewEvent(ws.EventMessage, event.RoomID, message)

	default:
		h.sendError(client, errors.BadRequest("Unknown event type", nil))
	}
}

func (h *WebSocketHandler) sendError(client *ws.Client, err error) {
	code := errors.CodeInternal
	message := "Something went wrong"
	if appErr, ok := err.(*errors.AppError); ok {
		code = appErr.Code
		message = appErr.Message
	} else {
		logger.Error("WebSocket inbound error for %s: %v", client.UserID, err)
	}

	select {
	case client.Send <- ws.NewEvent(ws.EventError, "", ws.ErrorData{Code: code, Message: message}):
	default:
	}
}
