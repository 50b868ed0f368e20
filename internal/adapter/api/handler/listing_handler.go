package handler

import (
	"tradepost/internal/usecase"
	"tradepost/pkg/response"
	"tradepost/pkg/utils"

	"github.com/labstack/echo/v4"
)

type ListingHandler struct {
	listingUseCase *usecase.ListingUseCase
}

func NewListingHandler(listingUseCase *usecase.ListingUseCase) *ListingHandler {
	return &ListingHandler{
		listingUseCase: listingUseCase,
	}
}

type createListingRequest struct {
	Title             string `json:"title" validate:"required,min=1,max=120"`
	Description       string `json:"description" validate:"max=4000"`
	CategoryID        string `json:"categoryId" validate:"required"`
	Price             int64  `json:"price" validate:"required,gt=0"`
	TransactionMethod string `json:"transactionMethod" validate:"required,oneof=fixed_price auction"`
	ImageURL          string `json:"imageUrl" validate:"omitempty,url"`
}

func (h *ListingHandler) CreateListing(c echo.Context) error {
	var req createListingRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	sellerID := c.Get("uid").(string)

	listing, err := h.listingUseCase.CreateListing(c.Request().Context(), sellerID, usecase.CreateListingInput{
		Title:             req.Title,
		Description:       req.Description,
		CategoryID:        req.CategoryID,
		Price:             req.Price,
		TransactionMethod: req.TransactionMethod,
		ImageURL:          req.ImageURL,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, listing)
}

func (h *ListingHandler) GetListing(c echo.Context) error {
	listing, err := h.listingUseCase.GetListing(c.Request().Context(), c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, listing)
}

func (h *ListingHandler) ListListings(c echo.Context) error {
	pagination := utils.GetPaginationParams(c)

	filter := map[string]interface{}{}
	if status := c.QueryParam("status"); status != "" {
		filter["status"] = status
	}
	if categoryID := c.QueryParam("categoryId"); categoryID != "" {
		filter["categoryId"] = categoryID
	}
	if sellerID := c.QueryParam("sellerId"); sellerID != "" {
		filter["sellerId"] = sellerID
	}
	if method := c.QueryParam("transactionMethod"); method != "" {
		filter["transactionMethod"] = method
	}

	listings, total, err := h.listingUseCase.ListListings(c.Request().Context(), filter, pagination.PageSize, pagination.Offset)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Paginated(c, listings, total, pagination.Page, pagination.PageSize)
}

type updateListingRequest struct {
	Title       string `json:"title" validate:"required,min=1,max=120"`
	Description string `json:"description" validate:"max=4000"`
	CategoryID  string `json:"categoryId" validate:"required"`
	Price       int64  `json:"price" validate:"required,gt=0"`
	ImageURL    string `json:"imageUrl" validate:"omitempty,url"`
}

func (h *ListingHandler) UpdateListing(c echo.Context) error {
	var req updateListingRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	userID := c.Get("uid").(string)

	listing, err := h.listingUseCase.UpdateListing(c.Request().Context(), userID, c.Param("id"), usecase.UpdateListingInput{
		Title:       req.Title,
		Description: req.Description,
		CategoryID:  req.CategoryID,
		Price:       req.Price,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, listing)
}

func (h *ListingHandler) DeleteListing(c echo.Context) error {
	userID := c.Get("uid").(string)

	if err := h.listingUseCase.DeleteListing(c.Request().Context(), userID, c.Param("id")); err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]string{"message": "Listing deleted"})
}

func (h *ListingHandler) ListCategories(c echo.Context) error {
	categories, err := h.listingUseCase.ListCategories(c.Request().Context())
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, categories)
}
