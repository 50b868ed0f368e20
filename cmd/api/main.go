package main

import (
	"context"
	"log"
	"os"

	"cloud.google.com/go/firestore"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"google.golang.org/api/option"

	fbapp "firebase.google.com/go/v4"

	"tradepost/internal/adapter/api"
	"tradepost/internal/adapter/api/handler"
	apimiddleware "tradepost/internal/adapter/api/middleware"
	"tradepost/internal/adapter/api/router"
	fsrepo "tradepost/internal/adapter/repository"
	"tradepost/internal/adapter/repository/memory"
	"tradepost/internal/domain/entity"
	"tradepost/internal/domain/repository"
	"tradepost/internal/infrastructure/firebase"
	"tradepost/internal/infrastructure/ratelimit"
	"tradepost/internal/infrastructure/websocket"
	"tradepost/internal/usecase"
	"tradepost/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()

	var opt option.ClientOption
	serviceAccountJSON := os.Getenv("FIREBASE_SERVICE_ACCOUNT_JSON")
	if serviceAccountJSON != "" {
		opt = option.WithCredentialsJSON([]byte(serviceAccountJSON))
	} else {
		serviceAccountPath := os.Getenv("FIREBASE_SERVICE_ACCOUNT_PATH")
		if serviceAccountPath == "" {
			serviceAccountPath = "./service-account.json"
		}
		if _, err := os.Stat(serviceAccountPath); os.IsNotExist(err) {
			log.Fatalf("Service account file does not exist: %s", serviceAccountPath)
		}
		opt = option.WithCredentialsFile(serviceAccountPath)
	}

	firebaseApp, err := fbapp.NewApp(ctx, &fbapp.Config{ProjectID: cfg.FirebaseProject}, opt)
	if err != nil {
		log.Fatalf("Failed to initialize Firebase: %v", err)
	}

	authClient, err := firebaseApp.Auth(ctx)
	if err != nil {
		log.Fatalf("Failed to initialize Firebase Auth: %v", err)
	}

	var (
		listingRepo  repository.ListingRepository
		bidRepo      repository.BidRepository
		roomRepo     repository.RoomRepository
		messageRepo  repository.MessageRepository
		categoryRepo repository.CategoryRepository
	)

	switch cfg.Store {
	case "memory":
		store := memory.NewStore()
		store.SeedCategories([]*entity.Category{
			{ID: "digital", Name: "Digital Devices"},
			{ID: "furniture", Name: "Furniture & Interior"},
			{ID: "clothing", Name: "Clothing"},
			{ID: "books", Name: "Books"},
			{ID: "sports", Name: "Sports & Leisure"},
			{ID: "etc", Name: "Other"},
		})
		listingRepo = memory.NewListingRepository(store)
		bidRepo = memory.NewBidRepository(store)
		roomRepo = memory.NewRoomRepository(store)
		messageRepo = memory.NewMessageRepository(store)
		categoryRepo = memory.NewCategoryRepository(store)
		log.Printf("Using in-memory store")

	default:
		firestoreClient, err := firestore.NewClient(ctx, cfg.FirebaseProject, opt)
		if err != nil {
			log.Fatalf("Failed to create Firestore client: %v", err)
		}
		defer firestoreClient.Close()

		listingRepo = fsrepo.NewFirestoreListingRepository(firestoreClient)
		bidRepo = fsrepo.NewFirestoreBidRepository(firestoreClient)
		roomRepo = fsrepo.NewFirestoreRoomRepository(firestoreClient)
		messageRepo = fsrepo.NewFirestoreMessageRepository(firestoreClient)
		categoryRepo = fsrepo.NewFirestoreCategoryRepository(firestoreClient)
	}

	wsManager := websocket.NewManager()
	wsManager.Start(ctx)

	rateLimiter := ratelimit.NewRateLimiter()
	rateLimiter.StartCleanupRoutine()

	listingUseCase := usecase.NewListingUseCase(listingRepo, categoryRepo, cfg.AuctionDuration, nil)
	bidUseCase := usecase.NewBidUseCase(bidRepo, listingRepo, rateLimiter, nil)
	auctionUseCase := usecase.NewAuctionUseCase(listingRepo, bidRepo, nil)
	roomUseCase := usecase.NewRoomUseCase(roomRepo, listingRepo, bidRepo, rateLimiter, nil)
	messageUseCase := usecase.NewMessageUseCase(messageRepo, roomRepo, wsManager, rateLimiter, nil)

	handler.Setup(listingUseCase, bidUseCase, auctionUseCase, roomUseCase, messageUseCase)
	handler.SetupHealthHandler()

	auctionUseCase.StartCloseSweeper(ctx, cfg.CloseSweepInterval)

	e := echo.New()

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	e.Validator = api.NewValidator()

	authMiddleware := apimiddleware.NewAuthMiddleware(authClient)
	firebaseAuthClient := firebase.NewFirebaseAuthClient(authClient)
	wsHandler := handler.NewWebSocketHandler(wsManager, messageUseCase, firebaseAuthClient)

	router.Setup(e, authMiddleware, wsHandler)

	log.Printf("Starting server on port %s...", cfg.ServerPort)
	if err := e.Start(":" + cfg.ServerPort); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
