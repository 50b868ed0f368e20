package router

import (
	"tradepost/internal/adapter/api/handler"
	"tradepost/internal/adapter/api/middleware"

	"github.com/labstack/echo/v4"
)

func SetupListingRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware) {
	listingHandler := handler.GetListingHandler()
	bidHandler := handler.GetBidHandler()
	auctionHandler := handler.GetAuctionHandler()

	e.GET("/v1/categories", listingHandler.ListCategories)

	listings := e.Group("/v1/listings")
	listings.GET("", listingHandler.ListListings)
	listings.GET("/:id", listingHandler.GetListing)
	listings.GET("/:id/bids", bidHandler.ListBids)
	listings.GET("/:id/bids/highest", bidHandler.GetHighestBid)
	listings.GET("/:id/auction", auctionHandler.GetStatus)

	authed := e.Group("/v1/listings")
	authed.Use(authMiddleware.Authenticate)
	authed.POST("", listingHandler.CreateListing)
	authed.PUT("/:id", listingHandler.UpdateListing)
	authed.DELETE("/:id", listingHandler.DeleteListing)
	authed.POST("/:id/bids", bidHandler.SubmitBid)
	authed.POST("/:id/close", auctionHandler.CloseAuction)
}
