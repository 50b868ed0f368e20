package handler

import (
	"tradepost/internal/usecase"
)

var (
	listingHandler *ListingHandler
	bidHandler     *BidHandler
	auctionHandler *AuctionHandler
	roomHandler    *RoomHandler
)

func Setup(
	listingUseCase *usecase.ListingUseCase,
	bidUseCase *usecase.BidUseCase,
	auctionUseCase *usecase.AuctionUseCase,
	roomUseCase *usecase.RoomUseCase,
	messageUseCase *usecase.MessageUseCase,
) {
	listingHandler = NewListingHandler(listingUseCase)
	bidHandler = NewBidHandler(bidUseCase)
	auctionHandler = NewAuctionHandler(auctionUseCase)
	roomHandler = NewRoomHandler(roomUseCase, messageUseCase)
}

func GetListingHandler() *ListingHandler {
	return listingHandler
}

func GetBidHandler() *BidHandler {
	return bidHandler
}

func GetAuctionHandler() *AuctionHandler {
	return auctionHandler
}

func GetRoomHandler() *RoomHandler {
	return roomHandler
}
