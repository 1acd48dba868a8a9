package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"gorm.io/gorm"

	"github.com/inflowhq/inflow-backend/internal/config"
	"github.com/inflowhq/inflow-backend/internal/handlers"
	"github.com/inflowhq/inflow-backend/internal/middleware"
)

type Handlers struct {
	Auth         *handlers.AuthHandler
	Profile      *handlers.ProfileHandler
	Message      *handlers.MessageHandler
	Deal         *handlers.DealHandler
	Wallet       *handlers.WalletHandler
	Notification *handlers.NotificationHandler
	Upload       *handlers.UploadHandler
	Health       *handlers.HealthHandler
}

func Setup(app *fiber.App, cfg *config.Config, db *gorm.DB, h Handlers) {
	api := app.Group("/api")

	// General API rate limiter: 60 req/min per IP
	api.Use(limiter.New(limiter.Config{
		Max:               60,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	api.Get("/health", h.Health.Health)

	// Auth is public, with a stricter limit: 10 req/min per IP
	auth := api.Group("/auth")
	auth.Use(limiter.New(limiter.Config{
		Max:               10,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))
	auth.Post("/register", h.Auth.Register)
	auth.Post("/login", h.Auth.Login)
	auth.Post("/refresh", h.Auth.Refresh)

	api.Post("/auth/logout", middleware.JWTProtected(cfg), h.Auth.Logout)

	// Everything below requires a valid access token.
	protected := api.Group("", middleware.JWTProtected(cfg))

	// Identity and profiles
	protected.Get("/users/me", h.Profile.Me)
	protected.Get("/users/me/profile", h.Profile.Details)
	protected.Post("/onboarding/brand", h.Profile.OnboardBrand)
	protected.Post("/onboarding/influencer", h.Profile.OnboardInfluencer)
	protected.Put("/profiles/brand", h.Profile.UpdateBrand)
	protected.Put("/profiles/influencer", h.Profile.UpdateInfluencer)

	// Messaging
	protected.Post("/messages", h.Message.Send)
	protected.Get("/messages/contacts", h.Message.Contacts)
	protected.Get("/messages/stream", h.Message.Stream)
	protected.Get("/messages/:contactId", h.Message.History)
	protected.Post("/messages/:contactId/read", h.Message.MarkRead)

	// Deals pipeline
	protected.Post("/deals", h.Deal.Create)
	protected.Get("/deals", h.Deal.List)
	protected.Patch("/deals/:id/status", h.Deal.UpdateStatus)
	protected.Get("/collaborations", h.Deal.ListCollaborations)
	protected.Patch("/collaborations/:id/status", h.Deal.CompleteCollaboration)
	protected.Post("/collaborations/:id/deliverables", h.Deal.AddDeliverable)
	protected.Patch("/deliverables/:id", h.Deal.UpdateDeliverable)
	protected.Post("/reviews", h.Deal.CreateReview)
	protected.Get("/influencers/:influencerId/reviews", h.Deal.ListReviews)

	// Wallet
	protected.Get("/wallet", h.Wallet.Get)
	protected.Post("/wallet/deposit", h.Wallet.Deposit)
	protected.Post("/wallet/withdraw", h.Wallet.Withdraw)
	protected.Get("/wallet/transactions", h.Wallet.Transactions)

	// Notifications
	protected.Get("/notifications", h.Notification.List)
	protected.Post("/notifications/read-all", h.Notification.MarkAllRead)
	protected.Post("/notifications/:id/read", h.Notification.MarkRead)

	// Attachment uploads
	protected.Post("/uploads/presign", h.Upload.Presign)

	// Admin panel
	admin := api.Group("/admin", middleware.JWTProtected(cfg), middleware.AdminRequired(db, cfg))
	admin.Patch("/brands/:id/verify", h.Profile.VerifyBrand)
}
