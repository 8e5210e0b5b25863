package model

import "time"

// Folder is one job output directory under the download base
type Folder struct {
	Name  string    `json:"name"`
	Path  string    `json:"path"`
	Count int       `json:"count"`
	Time  time.Time `json:"time"`
}

// Image is one downloaded file exposed through /downloads
type Image struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// RandomWallpaperResponse is returned by GET /api/random-wallpaper
type RandomWallpaperResponse struct {
	URL    string `json:"url"`
	Total  int    `json:"total"`
	Folder string `json:"folder"`
	Name   string `json:"name"`
}

// UploadResponse represents the response for an image upload
type UploadResponse struct {
	Message string `json:"message"`
	File    string `json:"file"`
	URL     string `json:"url"`
}

// LoginRequest is the body of POST /api/login
type LoginRequest struct {
	Password string `json:"password" validate:"required"`
}

// LoginResponse carries the issued bearer token
type LoginResponse struct {
	Token string `json:"token"`
}
