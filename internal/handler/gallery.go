package handler

import (
	"bytes"
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/wallfetch/api/internal/service"
	"github.com/wallfetch/api/internal/storage"
	"github.com/wallfetch/api/pkg/response"
)

type GalleryHandler struct {
	service *service.GalleryService
}

func NewGalleryHandler(svc *service.GalleryService) *GalleryHandler {
	return &GalleryHandler{service: svc}
}

// Folders handles GET /api/images
func (h *GalleryHandler) Folders(c *fiber.Ctx) error {
	folders, err := h.service.ListFolders()
	if err != nil {
		log.Printf("Failed to list folders: %v", err)
		return response.ServiceError(c, "Failed to list folders")
	}
	return response.OK(c, folders)
}

// Images handles GET /api/images/:folder
func (h *GalleryHandler) Images(c *fiber.Ctx) error {
	images, err := h.service.ListImages(c.Params("folder"))
	if err != nil {
		return folderError(c, err, "Failed to list images")
	}
	return response.OK(c, images)
}

// Delete handles DELETE /api/images/:folder
func (h *GalleryHandler) Delete(c *fiber.Ctx) error {
	if err := h.service.DeleteFolder(c.Params("folder")); err != nil {
		return folderError(c, err, "Failed to delete folder")
	}
	return response.Message(c, "Deleted")
}

// Zip handles GET /api/zip?folder=
func (h *GalleryHandler) Zip(c *fiber.Ctx) error {
	dir, fileName, err := h.service.ZipTarget(c.Query("folder"))
	if err != nil {
		if errors.Is(err, service.ErrNothingToPack) {
			return response.NotFound(c, "No folder to pack")
		}
		return folderError(c, err, "Failed to pack folder")
	}

	var buf bytes.Buffer
	if err := h.service.WriteZip(dir, &buf); err != nil {
		log.Printf("Failed to pack %s: %v", dir, err)
		return response.ServiceError(c, "Failed to pack folder")
	}

	c.Set(fiber.HeaderContentType, "application/zip")
	c.Attachment(fileName)
	return c.Send(buf.Bytes())
}

// Random handles GET /api/random-wallpaper
func (h *GalleryHandler) Random(c *fiber.Ctx) error {
	wallpaper, err := h.service.RandomWallpaper()
	if err != nil {
		if errors.Is(err, service.ErrNoWallpapers) {
			return response.NotFound(c, "No downloaded wallpapers yet")
		}
		log.Printf("Failed to pick random wallpaper: %v", err)
		return response.ServiceError(c, "Failed to pick random wallpaper")
	}
	return response.OK(c, wallpaper)
}

func folderError(c *fiber.Ctx, err error, fallback string) error {
	switch {
	case errors.Is(err, storage.ErrInvalidName):
		return response.ValidationError(c, "Invalid folder name", nil)
	case errors.Is(err, service.ErrFolderNotFound):
		return response.NotFound(c, "Folder not found")
	default:
		log.Printf("%s: %v", fallback, err)
		return response.ServiceError(c, fallback)
	}
}
