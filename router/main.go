package router

import (
	"log"
	"time"

	"github.com/adiyogi/wellness-api/config"
	"github.com/adiyogi/wellness-api/handlers"
	auth_handlers "github.com/adiyogi/wellness-api/handlers/auth"
	chat_handlers "github.com/adiyogi/wellness-api/handlers/chat"
	worksheet_handlers "github.com/adiyogi/wellness-api/handlers/worksheet"
	"github.com/adiyogi/wellness-api/services/storage"
	"github.com/adiyogi/wellness-api/services/therapy"
	"github.com/adiyogi/wellness-api/utils/auth"
	"github.com/adiyogi/wellness-api/utils/cache"
	"github.com/adiyogi/wellness-api/utils/middleware"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// SetupRoutes wires handlers, middleware and external clients onto the app
func SetupRoutes(app *fiber.App, db *gorm.DB, getEnv *config.EnviornmentVariable) {
	if getEnv.JWT_SECRET == "" {
		log.Fatal("JWT_SECRET environment variable is not set")
	}

	jwtIssuer := getEnv.JWT_ISSUER
	if jwtIssuer == "" {
		jwtIssuer = "adiyogi-wellness-api"
	}

	jwtManager := auth.NewJWTManager(auth.JWTConfig{
		Secret:        getEnv.JWT_SECRET,
		Expiry:        24 * time.Hour,
		RefreshExpiry: 7 * 24 * time.Hour,
		Issuer:        jwtIssuer,
	})

	// Redis is optional; without it only brute force protection is disabled
	var bruteForceProtection *middleware.BruteForceProtection
	redisURL := getEnv.REDIS_URL
	if redisURL == "" {
		redisURL = "redis://localhost:6379/0"
	}
	redisCache, err := cache.NewRedisCache(redisURL)
	if err != nil {
		log.Printf("Warning: Failed to connect to Redis: %v. Brute force protection will be disabled.", err)
	} else {
		bruteForceProtection = middleware.NewBruteForceProtection(redisCache)
	}

	// Spaces is optional; without it downloads fall back to the stored file URL
	var spacesClient *storage.SpacesClient
	if getEnv.SPACES_ACCESS_KEY != "" && getEnv.SPACES_BUCKET != "" {
		spacesClient, err = storage.NewSpacesClient(storage.SpacesConfig{
			AccessKey: getEnv.SPACES_ACCESS_KEY,
			SecretKey: getEnv.SPACES_SECRET_KEY,
			Bucket:    getEnv.SPACES_BUCKET,
			Region:    getEnv.SPACES_REGION,
			Endpoint:  getEnv.SPACES_ENDPOINT,
			CDNURL:    getEnv.SPACES_CDN_URL,
		})
		if err != nil {
			log.Printf("Warning: Failed to initialize Spaces client: %v. Download links will use stored file URLs.", err)
		}
	}

	therapyClient := therapy.NewClient(therapy.Config{
		BaseURL: getEnv.THERAPY_API_URL,
		APIKey:  getEnv.THERAPY_API_KEY,
	})

	authMiddleware := middleware.NewAuthMiddleware(jwtManager, db)
	authHandler := auth_handlers.NewAuthHandler(db, jwtManager, bruteForceProtection)
	chatHandler := chat_handlers.NewChatHandler(db, therapyClient)
	worksheetHandler := worksheet_handlers.NewWorksheetHandler(db, spacesClient)

	allowedOrigins := getEnv.ALLOWED_ORIGINS
	if allowedOrigins == "" {
		allowedOrigins = "http://localhost:3000,http://localhost:5173"
	}

	middleware.SetupSecurity(app, middleware.SecurityConfig{
		AllowedOrigins:    allowedOrigins,
		RateLimitRequests: 100,
		RateLimitWindow:   1 * time.Minute,
	})

	api := app.Group("/api")

	// Public routes
	api.Get("/health", handlers.HandleCheckHealth)
	api.Get("/worksheets/ebooks", worksheetHandler.ListEbooks)
	api.Get("/worksheets/categories", worksheetHandler.ListCategories)

	api.Post("/signup", authHandler.Signup)
	if bruteForceProtection != nil {
		api.Post("/login", bruteForceProtection.CheckAndRecordAttempt(), authHandler.Login)
	} else {
		api.Post("/login", authHandler.Login)
	}

	// Protected routes
	api.Post("/logout", authMiddleware.Required(), authHandler.Logout)
	api.Get("/profile", authMiddleware.Required(), authHandler.GetProfile)
	api.Put("/profile", authMiddleware.Required(), authHandler.UpdateProfile)

	api.Post("/message", authMiddleware.Required(), chatHandler.CreateMessage)
	api.Get("/session/:session_id/messages", authMiddleware.Required(), chatHandler.GetSessionMessages)

	api.Post("/worksheets/ebooks/:slug/download", authMiddleware.Required(), worksheetHandler.DownloadEbook)
}
