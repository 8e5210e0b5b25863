package service

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"log"
	"math/rand"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"time"

	"github.com/spf13/afero"
	"github.com/wallfetch/api/internal/model"
	"github.com/wallfetch/api/internal/storage"
)

var imagePattern = regexp.MustCompile(`(?i)\.(jpg|jpeg|png|gif)$`)

// GalleryService browses, packs and removes downloaded folders
type GalleryService struct {
	store     *storage.Store
	downloads *DownloadService
}

func NewGalleryService(store *storage.Store, downloads *DownloadService) *GalleryService {
	return &GalleryService{
		store:     store,
		downloads: downloads,
	}
}

// ListFolders returns every folder under the download base, newest first
func (s *GalleryService) ListFolders() ([]model.Folder, error) {
	if err := s.store.Init(); err != nil {
		return nil, err
	}

	entries, err := s.store.ReadDir(s.store.BaseDir())
	if err != nil {
		return nil, fmt.Errorf("failed to list folders: %w", err)
	}

	folders := make([]model.Folder, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		images, err := s.imagesIn(entry.Name())
		if err != nil {
			log.Printf("Skipping folder %s: %v", entry.Name(), err)
			continue
		}
		folders = append(folders, model.Folder{
			Name:  entry.Name(),
			Path:  entry.Name(),
			Count: len(images),
			Time:  entry.ModTime(),
		})
	}

	sort.SliceStable(folders, func(i, j int) bool {
		return folders[i].Time.After(folders[j].Time)
	})
	return folders, nil
}

// ListImages returns the images of one folder with their public URLs
func (s *GalleryService) ListImages(folder string) ([]model.Image, error) {
	if _, err := s.existingFolder(folder); err != nil {
		return nil, err
	}

	names, err := s.imagesIn(folder)
	if err != nil {
		return nil, fmt.Errorf("failed to list images: %w", err)
	}

	images := make([]model.Image, 0, len(names))
	for _, name := range names {
		images = append(images, model.Image{Name: name, URL: PublicURL(folder, name)})
	}
	return images, nil
}

// DeleteFolder removes a folder and everything in it
func (s *GalleryService) DeleteFolder(folder string) error {
	return s.store.RemoveAll(folder)
}

// ZipTarget resolves the folder to pack. An empty folder selects the output
// directory of the last job.
func (s *GalleryService) ZipTarget(folder string) (dir, fileName string, err error) {
	if folder == "" {
		var last *string
		if s.downloads != nil {
			last = s.downloads.Status().OutputDirectory
		}
		if last == nil {
			return "", "", ErrNothingToPack
		}
		exists, _ := s.store.Exists(*last)
		if !exists {
			return "", "", ErrNothingToPack
		}
		return *last, "wallpapers_" + strconv.FormatInt(time.Now().UnixMilli(), 10) + ".zip", nil
	}

	dir, err = s.existingFolder(folder)
	if err != nil {
		if errors.Is(err, ErrFolderNotFound) {
			return "", "", ErrNothingToPack
		}
		return "", "", err
	}
	return dir, "wallpapers_" + folder + ".zip", nil
}

// WriteZip packs every file under dir into w. Entry names are relative to dir.
func (s *GalleryService) WriteZip(dir string, w io.Writer) error {
	zw := zip.NewWriter(w)

	err := afero.Walk(s.store.Fs(), dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}

		header, err := zip.FileInfoHeader(info)
		if err != nil {
			return err
		}
		header.Name = filepath.ToSlash(rel)
		header.Method = zip.Deflate

		entry, err := zw.CreateHeader(header)
		if err != nil {
			return err
		}

		f, err := s.store.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()

		_, err = io.Copy(entry, f)
		return err
	})
	if err != nil {
		_ = zw.Close()
		return fmt.Errorf("failed to pack %s: %w", dir, err)
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to finish zip: %w", err)
	}
	return nil
}

// RandomWallpaper picks one downloaded image across all folders
func (s *GalleryService) RandomWallpaper() (*model.RandomWallpaperResponse, error) {
	exists, err := s.store.Exists(s.store.BaseDir())
	if err != nil || !exists {
		return nil, ErrNoWallpapers
	}

	entries, err := s.store.ReadDir(s.store.BaseDir())
	if err != nil {
		return nil, fmt.Errorf("failed to list folders: %w", err)
	}

	var all []model.RandomWallpaperResponse
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		names, err := s.imagesIn(entry.Name())
		if err != nil {
			log.Printf("Skipping folder %s: %v", entry.Name(), err)
			continue
		}
		for _, name := range names {
			all = append(all, model.RandomWallpaperResponse{
				URL:    PublicURL(entry.Name(), name),
				Folder: entry.Name(),
				Name:   name,
			})
		}
	}

	if len(all) == 0 {
		return nil, ErrNoWallpapers
	}

	picked := all[rand.Intn(len(all))]
	picked.Total = len(all)
	return &picked, nil
}

// PublicURL is where a stored file is served from
func PublicURL(folder, name string) string {
	return "/downloads/" + url.PathEscape(folder) + "/" + url.PathEscape(name)
}

func (s *GalleryService) existingFolder(folder string) (string, error) {
	dir, err := s.store.Path(folder)
	if err != nil {
		return "", err
	}
	info, err := s.store.Stat(dir)
	if err != nil || !info.IsDir() {
		return "", fmt.Errorf("%w: %s", ErrFolderNotFound, folder)
	}
	return dir, nil
}

// imagesIn lists the image files of a folder directly under the base
func (s *GalleryService) imagesIn(folder string) ([]string, error) {
	dir, err := s.store.Path(folder)
	if err != nil {
		return nil, err
	}
	entries, err := s.store.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !imagePattern.MatchString(entry.Name()) {
			continue
		}
		names = append(names, entry.Name())
	}
	return names, nil
}
