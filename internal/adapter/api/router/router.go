package router

import (
	"tradepost/internal/adapter/api/handler"
	"tradepost/internal/adapter/api/middleware"

	"github.com/labstack/echo/v4"
)

func Setup(e *echo.Echo, authMiddleware *middleware.AuthMiddleware, wsHandler *handler.WebSocketHandler) {
	SetupListingRouter(e, authMiddleware)
	SetupRoomRouter(e, authMiddleware)
	SetupWebSocketRouter(e, wsHandler)
	SetupHealthRouter(e)
}
