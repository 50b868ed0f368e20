package handler

import (
	"tradepost/internal/usecase"
	"tradepost/pkg/response"
	"tradepost/pkg/utils"

	"github.com/labstack/echo/v4"
)

type BidHandler struct {
	bidUseCase *usecase.BidUseCase
}

func NewBidHandler(bidUseCase *usecase.BidUseCase) *BidHandler {
	return &BidHandler{
		bidUseCase: bidUseCase,
	}
}

type submitBidRequest struct {
	Amount int64 `json:"amount" validate:"required,gt=0"`
}

func (h *BidHandler) SubmitBid(c echo.Context) error {
	var req submitBidRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	bidderID := c.Get("uid").(string)

	bid, err := h.bidUseCase.SubmitBid(c.Request().Context(), bidderID, c.Param("id"), usecase.SubmitBidInput{
		Amount: req.Amount,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, bid)
}

func (h *BidHandler) GetHighestBid(c echo.Context) error {
	bid, err := h.bidUseCase.HighestBid(c.Request().Context(), c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}
	if bid == nil {
		return response.Success(c, map[string]interface{}{"bid": nil})
	}
	return response.Success(c, map[string]interface{}{"bid": bid})
}

func (h *BidHandler) ListBids(c echo.Context) error {
	pagination := utils.GetPaginationParams(c)

	bids, total, err := h.bidUseCase.ListBids(c.Request().Context(), c.Param("id"), pagination.PageSize, pagination.Offset)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Paginated(c, bids, total, pagination.Page, pagination.PageSize)
}
