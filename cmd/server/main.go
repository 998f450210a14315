package main

import (
	"context"
	"log"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/campusfound/backend/internal/config"
	"github.com/campusfound/backend/internal/handlers"
	appMiddleware "github.com/campusfound/backend/internal/middleware"
	"github.com/campusfound/backend/internal/services"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()

	// Firebase Auth (server-side verification of ID tokens). When it cannot
	// be initialized the server falls back to local JWT auth.
	authClient, err := appMiddleware.NewFirebaseAuthClient(ctx, appMiddleware.FirebaseAuthConfig{
		ProjectID:       cfg.FirebaseProject,
		CredentialsJSON: cfg.FirebaseCreds,
	})
	if err != nil {
		log.Printf("Warning: failed to initialize Firebase Auth client: %v", err)
	}

	authMiddleware := appMiddleware.JWTAuth(cfg.JWTSecret)
	if authClient != nil {
		authMiddleware = appMiddleware.FirebaseAuth(authClient)
	}

	// Email notifications on approved contact requests, best effort.
	var notifier services.ApprovalNotifier
	if cfg.SendGridAPIKey != "" {
		notifier = services.NewSendGridMailer(cfg.SendGridAPIKey, cfg.NotifyFromEmail)
	}

	// Item and workflow storage: MongoDB when configured, in-memory otherwise.
	var itemService services.ItemService
	var workflowService services.WorkflowService
	if cfg.MongoURI != "" {
		mongoItems, err := services.NewMongoItemService(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			log.Fatalf("Failed to connect to MongoDB: %v", err)
		}
		mongoWorkflow, err := services.NewMongoWorkflowService(ctx, cfg.MongoURI, cfg.MongoDatabase, mongoItems, notifier)
		if err != nil {
			log.Fatalf("Failed to connect to MongoDB: %v", err)
		}
		itemService = mongoItems
		workflowService = mongoWorkflow
		log.Printf("Using MongoDB storage (db=%s)", cfg.MongoDatabase)
	} else {
		memItems := services.NewMemoryItemService()
		itemService = memItems
		workflowService = services.NewMemoryWorkflowService(memItems, notifier)
		log.Printf("Using in-memory storage")
	}

	// Image blob store: GCS when a bucket is configured, local disk otherwise.
	var imageStore services.ImageStore
	if cfg.GCSBucket != "" {
		gcs, err := services.NewGCSImageService(ctx, cfg.GCSBucket)
		if err != nil {
			log.Fatalf("Failed to initialize GCS image store: %v", err)
		}
		imageStore = gcs
	} else {
		imageStore = services.NewImageService(cfg.UploadDir)
	}

	userService := services.NewUserService()

	itemHandler := handlers.NewItemHandler(itemService)
	matchHandler := handlers.NewMatchHandler(itemService)
	claimHandler := handlers.NewClaimHandler(workflowService)
	contactHandler := handlers.NewContactHandler(workflowService)
	imageHandler := handlers.NewImageHandler(imageStore, cfg.MaxUploadSizeMB)
	authHandler := handlers.NewAuthHandler(userService, cfg.JWTSecret, cfg.JWTExpiration)

	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	r.Route("/api", func(r chi.Router) {
		// Local auth, used when Firebase is not the identity provider
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)

			r.Group(func(r chi.Router) {
				r.Use(authMiddleware)
				r.Get("/profile", authHandler.GetProfile)
			})
		})

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)

			r.Route("/items/{type}", func(r chi.Router) {
				r.Get("/", itemHandler.ListItems)
				r.Post("/", itemHandler.CreateItem)
				r.Get("/mine", itemHandler.ListMyItems)

				r.Route("/{itemId}", func(r chi.Router) {
					r.Get("/", itemHandler.GetItem)
					r.Delete("/", itemHandler.DeleteItem)
					r.Post("/done", itemHandler.MarkDone)
					r.Get("/matches", matchHandler.FindMatches)

					// Contact requests
					r.Post("/contact", contactHandler.FileContactRequest)
					r.Get("/contact", contactHandler.ContactStatus)

					// Claims, found items only
					r.Post("/claims", claimHandler.FileClaim)
				})
			})

			r.Route("/claims", func(r chi.Router) {
				r.Get("/", claimHandler.ListClaims)
				r.Post("/{claimId}/approve", claimHandler.ApproveClaim)
				r.Post("/{claimId}/reject", claimHandler.RejectClaim)
			})

			r.Route("/contact-requests", func(r chi.Router) {
				r.Get("/", contactHandler.ListRequests)
				r.Post("/{requestId}/approve", contactHandler.ApproveRequest)
				r.Post("/{requestId}/reject", contactHandler.RejectRequest)
				r.Delete("/{requestId}", contactHandler.DeleteRequest)
			})

			// Image upload
			r.Post("/upload", imageHandler.Upload)
			r.Delete("/upload/{imageId}", imageHandler.Delete)
		})
	})

	// Serve uploaded files when using local disk storage
	if cfg.GCSBucket == "" {
		workDir, _ := os.Getwd()
		filesDir := http.Dir(workDir + "/" + cfg.UploadDir)
		r.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(filesDir)))
	}

	log.Printf("CampusFound API server starting on %s", cfg.ServerAddress)
	if err := http.ListenAndServe(cfg.ServerAddress, r); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}
