package handler

import (
	"tradepost/internal/usecase"
	"tradepost/pkg/response"

	"github.com/labstack/echo/v4"
)

type RoomHandler struct {
	roomUseCase    *usecase.RoomUseCase
	messageUseCase *usecase.MessageUseCase
}

func NewRoomHandler(roomUseCase *usecase.RoomUseCase, messageUseCase *usecase.MessageUseCase) *RoomHandler {
	return &RoomHandler{
		roomUseCase:    roomUseCase,
		messageUseCase: messageUseCase,
	}
}

type openRoomRequest struct {
	ItemID        string `json:"itemId" validate:"required"`
	CounterpartID string `json:"counterpartId"`
}

func (h *RoomHandler) OpenRoom(c echo.Context) error {
	var req openRoomRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	callerID := c.Get("uid").(string)

	room, created, err := h.roomUseCase.OpenRoom(c.Request().Context(), callerID, usecase.OpenRoomInput{
		ItemID:        req.ItemID,
		CounterpartID: req.CounterpartID,
	})
	if err != nil {
		return response.Error(c, err)
	}

	if created {
		return response.Created(c, room)
	}
	return response.Success(c, room)
}

func (h *RoomHandler) ListRooms(c echo.Context) error {
	userID := c.Get("uid").(string)

	rooms, err := h.roomUseCase.ListRoomsForUser(c.Request().Context(), userID)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, rooms)
}

func (h *RoomHandler) GetRoom(c echo.Context) error {
	userID := c.Get("uid").(string)

	room, err := h.roomUseCase.GetRoom(c.Request().Context(), userID, c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, room)
}

type sendMessageRequest struct {
	Body string `json:"body" validate:"required,min=1,max=2000"`
}

func (h *RoomHandler) SendMessage(c echo.Context) error {
	var req sendMessageRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	senderID := c.Get("uid").(string)

	message, err := h.messageUseCase.SendMessage(c.Request().Context(), senderID, c.Param("id"), usecase.SendMessageInput{
		Body: req.Body,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, message)
}

func (h *RoomHandler) GetHistory(c echo.Context) error {
	userID := c.Get("uid").(string)

	messages, err := h.messageUseCase.History(c.Request().Context(), userID, c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, messages)
}
