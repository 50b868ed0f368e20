package handler

import (
	"tradepost/internal/usecase"
	"tradepost/pkg/response"

	"github.com/labstack/echo/v4"
)

type AuctionHandler struct {
	auctionUseCase *usecase.AuctionUseCase
}

func NewAuctionHandler(auctionUseCase *usecase.AuctionUseCase) *AuctionHandler {
	return &AuctionHandler{
		auctionUseCase: auctionUseCase,
	}
}

func (h *AuctionHandler) CloseAuction(c echo.Context) error {
	result, err := h.auctionUseCase.CloseAuction(c.Request().Context(), c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, result)
}

func (h *AuctionHandler) GetStatus(c echo.Context) error {
	status, err := h.auctionUseCase.Status(c.Request().Context(), c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, status)
}
