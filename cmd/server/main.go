package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"

	"github.com/wallfetch/api/internal/client"
	"github.com/wallfetch/api/internal/config"
	"github.com/wallfetch/api/internal/handler"
	"github.com/wallfetch/api/internal/middleware"
	"github.com/wallfetch/api/internal/model"
	"github.com/wallfetch/api/internal/service"
	"github.com/wallfetch/api/internal/storage"
	ws "github.com/wallfetch/api/internal/websocket"
	"github.com/wallfetch/api/internal/worker"
	"github.com/wallfetch/api/pkg/response"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if cfg.JWT.Secret == "" {
		log.Fatal("JWT_SECRET is required")
	}
	if cfg.Auth.AdminPassword == "" {
		log.Println("Warning: ADMIN_PASSWORD is not set, login is disabled")
	}

	// Redis is optional: it mirrors the job status and backs the login rate limit
	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Printf("Warning: Redis not available: %v", err)
		}
		cancel()
	}

	// Download storage
	store := storage.NewOSStore(cfg.Download.Dir)
	if err := store.Init(); err != nil {
		log.Fatalf("Failed to prepare download directory: %v", err)
	}

	// Initialize validator
	validate := validator.New()
	if err := model.RegisterValidators(validate); err != nil {
		log.Fatalf("Failed to register validators: %v", err)
	}

	// Initialize WebSocket hub
	hub := ws.NewHub()
	go hub.Run()

	// Initialize services
	wallhaven := client.NewWallhavenClient(&cfg.Wallhaven)
	downloadWorker := worker.NewDownloadWorker(worker.WallhavenCatalog(wallhaven), store)

	statusMirror := service.NewRedisStatusMirror(redisClient)
	downloadService := service.NewDownloadService(downloadWorker.Process, hub, statusMirror)
	restoreStatus(downloadService, statusMirror)

	galleryService := service.NewGalleryService(store, downloadService)
	uploadService := service.NewUploadService(store)

	// Initialize handlers
	routes := &handler.Routes{
		Auth:        handler.NewAuthHandler(cfg.Auth.AdminPassword, cfg.JWT.Secret, time.Duration(cfg.JWT.Expiration)*time.Hour, validate),
		Download:    handler.NewDownloadHandler(downloadService, validate, cfg.Download.DefaultProxy),
		Gallery:     handler.NewGalleryHandler(galleryService),
		Upload:      handler.NewUploadHandler(uploadService, cfg.Download.UploadLimitMB),
		AuthMW:      middleware.NewAuthMiddleware(cfg.JWT.Secret),
		RateLimiter: middleware.NewRateLimiter(redisClient),
		Hub:         hub,
		Store:       store,
		LoginPerMin: cfg.RateLimit.LoginPerMin,
		FrontendDir: cfg.Server.FrontendDir,
		Services: fiber.Map{
			"redis":     redisClient != nil,
			"wallhaven": cfg.Wallhaven.BaseURL,
		},
	}

	// Initialize Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: customErrorHandler,
		BodyLimit:    (cfg.Download.UploadLimitMB + 1) * 1024 * 1024,
	})

	// Global middleware
	app.Use(recover.New())
	logFormat := "[${time}] ${status} - ${latency} ${method} ${path}\n"
	if cfg.Server.LogLevel == "debug" {
		logFormat = "[${time}] ${status} - ${latency} ${method} ${path} ${queryParams} ${reqHeader:Content-Type} ${bytesReceived}B in ${bytesSent}B out\n"
	}
	app.Use(logger.New(logger.Config{
		Format: logFormat,
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))

	routes.Register(app)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Println("Shutting down server...")

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := downloadService.Shutdown(ctx); err != nil {
			log.Printf("Download job did not stop in time: %v", err)
		}

		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
	}()

	// Start server
	addr := ":" + cfg.Server.Port
	log.Printf("Server starting on %s (downloads in %s)", addr, store.BaseDir())
	if err := app.Listen(addr); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

// restoreStatus brings back the last status mirrored to Redis, if any
func restoreStatus(svc *service.DownloadService, mirror *service.RedisStatusMirror) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	last, err := mirror.Load(ctx)
	if err != nil {
		log.Printf("Warning: failed to restore job status: %v", err)
		return
	}
	if last != nil {
		svc.RestoreStatus(*last)
	}
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
		message = e.Message
	}

	return response.Error(c, code, response.CodeServiceError, message, nil)
}
