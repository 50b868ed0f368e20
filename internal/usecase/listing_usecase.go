package usecase

import (
	"context"
	"time"

	"tradepost/internal/domain/entity"
	"tradepost/internal/domain/repository"
	"tradepost/pkg/errors"
)

type ListingUseCase struct {
	listingRepo     repository.ListingRepository
	categoryRepo    repository.CategoryRepository
	auctionDuration time.Duration
	now             func() time.Time
}

func NewListingUseCase(
	listingRepo repository.ListingRepository,
	categoryRepo repository.CategoryRepository,
	auctionDuration time.Duration,
	now func() time.Time,
) *ListingUseCase {
	if now == nil {
		now = time.Now
	}
	return &ListingUseCase{
		listingRepo:     listingRepo,
		categoryRepo:    categoryRepo,
		auctionDuration: auctionDuration,
		now:             now,
	}
}

type CreateListingInput struct {
	Title             string `json:"title" validate:"required,min=1,max=120"`
	Description       string `json:"description" validate:"max=4000"`
	CategoryID        string `json:"categoryId" validate:"required"`
	Price             int64  `json:"price" validate:"required,gt=0"`
	TransactionMethod string `json:"transactionMethod" validate:"required,oneof=fixed_price auction"`
	ImageURL          string `json:"imageUrl" validate:"omitempty,url"`
}

func (uc *ListingUseCase) CreateListing(ctx context.Context, sellerID string, input CreateListingInput) (*entity.Listing, error) {
	if err := uc.validCategory(ctx, input.CategoryID); err != nil {
		return nil, err
	}

	now := uc.now()
	listing := &entity.Listing{
		Title:             input.Title,
		Description:       input.Description,
		CategoryID:        input.CategoryID,
		SellerID:          sellerID,
		Price:             input.Price,
		TransactionMethod: input.TransactionMethod,
		ImageURL:          input.ImageURL,
		Status:            entity.ListingStatusOpen,
		ListedAt:          now,
	}
	if listing.IsAuction() {
		listing.ClosesAt = now.Add(uc.auctionDuration)
	}

	if err := uc.listingRepo.Create(ctx, listing); err != nil {
		return nil, err
	}
	return listing, nil
}

func (uc *ListingUseCase) GetListing(ctx context.Context, id string) (*entity.Listing, error) {
	return uc.listingRepo.GetByID(ctx, id)
}

func (uc *ListingUseCase) ListListings(ctx context.Context, filter map[string]interface{}, limit, offset int) ([]*entity.Listing, int64, error) {
	return uc.listingRepo.List(ctx, filter, limit, offset)
}

type UpdateListingInput struct {
	Title       string `json:"title" validate:"required,min=1,max=120"`
	Description string `json:"description" validate:"max=4000"`
	CategoryID  string `json:"categoryId" validate:"required"`
	Price       int64  `json:"price" validate:"required,gt=0"`
	ImageURL    string `json:"imageUrl" validate:"omitempty,url"`
}

func (uc *ListingUseCase) UpdateListing(ctx context.Context, userID, id string, input UpdateListingInput) (*entity.Listing, error) {
	listing, err := uc.listingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if listing.SellerID != userID {
		return nil, errors.Forbidden("Only the seller can update this listing", nil)
	}
	if listing.Status != entity.ListingStatusOpen {
		return nil, errors.BadRequest("Only open listings can be updated", nil)
	}
	if listing.IsAuction() && listing.BidCount > 0 {
		return nil, errors.BadRequest("Auction listings with bids cannot be updated", nil)
	}
	if err := uc.validCategory(ctx, input.CategoryID); err != nil {
		return nil, err
	}

	listing.Title = input.Title
	listing.Description = input.Description
	listing.CategoryID = input.CategoryID
	listing.Price = input.Price
	listing.ImageURL = input.ImageURL

	if err := uc.listingRepo.Update(ctx, listing); err != nil {
		return nil, err
	}
	return listing, nil
}

func (uc *ListingUseCase) DeleteListing(ctx context.Context, userID, id string) error {
	listing, err := uc.listingRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if listing.SellerID != userID {
		return errors.Forbidden("Only the seller can delete this listing", nil)
	}
	if listing.IsAuction() && listing.Status == entity.ListingStatusOpen && listing.BidCount > 0 {
		return errors.BadRequest("Auction listings with bids cannot be deleted", nil)
	}
	return uc.listingRepo.Delete(ctx, id)
}

func (uc *ListingUseCase) ListCategories(ctx context.Context) ([]*entity.Category, error) {
	return uc.categoryRepo.List(ctx)
}

func (uc *ListingUseCase) validCategory(ctx context.Context, categoryID string) error {
	categories, err := uc.categoryRepo.List(ctx)
	if err != nil {
		return err
	}
	for _, c := range categories {
		if c.ID == categoryID {
			return nil
		}
	}
	return errors.BadRequest("Unknown category", nil)
}
