package handler

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/filesystem"
	"github.com/spf13/afero"

	"github.com/wallfetch/api/internal/middleware"
	"github.com/wallfetch/api/internal/storage"
	ws "github.com/wallfetch/api/internal/websocket"
)

// Routes bundles everything the HTTP surface is built from
type Routes struct {
	Auth        *AuthHandler
	Download    *DownloadHandler
	Gallery     *GalleryHandler
	Upload      *UploadHandler
	AuthMW      *middleware.AuthMiddleware
	RateLimiter *middleware.RateLimiter
	Hub         *ws.Hub
	Store       *storage.Store

	LoginPerMin int
	FrontendDir string
	Services    fiber.Map
}

// Register mounts every route on app
func (r *Routes) Register(app *fiber.App) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":   "ok",
			"time":     time.Now().Unix(),
			"services": r.Services,
		})
	})

	// Downloaded files, served from the same filesystem the jobs write to
	app.Use("/downloads", filesystem.New(filesystem.Config{
		Root:   afero.NewHttpFs(r.Store.Fs()).Dir(r.Store.BaseDir()),
		Browse: false,
		MaxAge: 3600,
	}))

	app.Post("/api/login", r.RateLimiter.LoginLimit(r.LoginPerMin), r.Auth.Login)
	app.Get("/api/random-wallpaper", r.Gallery.Random)

	api := app.Group("/api", r.AuthMW.Authenticate())

	api.Post("/download", r.Download.Start)
	api.Post("/download/cancel", r.Download.Cancel)
	api.Get("/status", r.Download.Status)

	api.Get("/images", r.Gallery.Folders)
	api.Get("/images/:folder", r.Gallery.Images)
	api.Delete("/images/:folder", r.Gallery.Delete)
	api.Get("/zip", r.Gallery.Zip)

	api.Post("/upload", r.Upload.Image)

	// WebSocket routes
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/status", r.AuthMW.Authenticate(), websocket.New(func(c *websocket.Conn) {
		r.Hub.HandleConnection(c)
	}))

	r.registerFrontend(app)
}

// registerFrontend serves the built web UI with an index.html fallback for
// client-side routes
func (r *Routes) registerFrontend(app *fiber.App) {
	if r.FrontendDir == "" {
		return
	}
	if info, err := os.Stat(r.FrontendDir); err != nil || !info.IsDir() {
		return
	}

	index := filepath.Join(r.FrontendDir, "index.html")
	app.Static("/", r.FrontendDir)
	app.Get("/*", func(c *fiber.Ctx) error {
		p := c.Path()
		if strings.HasPrefix(p, "/api") || strings.HasPrefix(p, "/downloads") || strings.HasPrefix(p, "/ws") {
			return c.Next()
		}
		return c.SendFile(index)
	})
}
