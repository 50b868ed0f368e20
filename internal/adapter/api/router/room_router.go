package router

import (
	"tradepost/internal/adapter/api/handler"
	"tradepost/internal/adapter/api/middleware"

	"github.com/labstack/echo/v4"
)

func SetupRoomRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware) {
	roomHandler := handler.GetRoomHandler()

	rooms := e.Group("/v1/rooms")
	rooms.Use(authMiddleware.Authenticate)
	rooms.POST("", roomHandler.OpenRoom)
	rooms.GET("", roomHandler.ListRooms)
	rooms.GET("/:id", roomHandler.GetRoom)
	rooms.GET("/:id/messages", roomHandler.GetHistory)
	rooms.POST("/:id/messages", roomHandler.SendMessage)
}
