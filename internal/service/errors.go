package service

import "errors"

var (
	ErrAlreadyRunning         = errors.New("a download job is already running")
	ErrCollectionNotFound     = errors.New("collection not found")
	ErrCollectionLookupFailed = errors.New("collection lookup failed")
	ErrUpstreamFetch          = errors.New("failed to fetch wallpaper list")
	ErrNoMoreResults          = errors.New("no more results")
	ErrFolderNotFound         = errors.New("folder not found")
	ErrNothingToPack          = errors.New("no folder to pack")
	ErrNoWallpapers           = errors.New("no downloaded wallpapers")
	ErrUnsupportedFile        = errors.New("only image files are allowed")
)
