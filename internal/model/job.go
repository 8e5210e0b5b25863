package model

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Defaults applied when a field is absent from the download request
const (
	DefaultTargetCount = 30
	DefaultStartPage   = 1
	DefaultMaxPage     = 99
	DefaultCategories  = "111"
	DefaultPurity      = "100"
	DefaultAtLeast     = "1920x1080"
	DefaultCollection  = "Default"
	DefaultPerPage     = "24"
	DefaultAIArtFilter = "1"
	DefaultMaxFileKB   = 10 * 1024

	// MaxFileSizeKB caps both size bounds (1 TiB) so the byte value fits in int64
	MaxFileSizeKB = 1 << 30
)

var bitstringPattern = regexp.MustCompile(`^[01]{3}$`)

// RegisterValidators adds the custom tags used by DownloadRequest.
func RegisterValidators(v *validator.Validate) error {
	return v.RegisterValidation("bitstring", func(fl validator.FieldLevel) bool {
		return bitstringPattern.MatchString(fl.Field().String())
	})
}

// DownloadRequest is the body of POST /api/download.
// Pointer fields distinguish "absent" (use default) from an explicit zero value.
type DownloadRequest struct {
	APIKey         string          `json:"apiKey"`
	WPNumber       *int            `json:"wpNumber" validate:"omitempty,min=1,max=1000"`
	StartPage      *int            `json:"startPage" validate:"omitempty,min=1"`
	MaxPage        *int            `json:"maxPage" validate:"omitempty,min=1"`
	Type           *SourceMode     `json:"type" validate:"omitempty,oneof=standard hits search tag collections useruploads"`
	Categories     *string         `json:"categories" validate:"omitempty,bitstring"`
	Filter         *string         `json:"filter" validate:"omitempty,bitstring"`
	Resolution     string          `json:"resolution" validate:"omitempty,max=256"`
	AtLeast        *string         `json:"atleast" validate:"omitempty,max=32"`
	AspectRatio    string          `json:"aspectRatio" validate:"omitempty,max=128"`
	Mode           *Sorting        `json:"mode" validate:"omitempty,oneof=date_added relevance random views favorites toplist toplist-beta hot"`
	Order          *Order          `json:"order" validate:"omitempty,oneof=desc asc"`
	Query          string          `json:"query" validate:"max=256"`
	Color          string          `json:"color" validate:"omitempty,max=16"`
	User           string          `json:"user" validate:"max=64"`
	Collection     *string         `json:"collection" validate:"omitempty,max=128"`
	CollectionMode *CollectionMode `json:"collectionMode" validate:"omitempty,oneof=id label"`
	TopRange       string          `json:"topRange" validate:"omitempty,oneof=1d 3d 1w 1M 3M 6M 1y"`
	MinFavorites   int             `json:"minFavorites" validate:"min=0"`
	MinFileSize    int64           `json:"minFileSize" validate:"min=0,max=1073741824"`
	MaxFileSize    *int64          `json:"maxFileSize" validate:"omitempty,min=0,max=1073741824"`
	Thumbs         *string         `json:"thumbs" validate:"omitempty,oneof=24 32 64"`
	Subfolder      bool            `json:"subfolder"`
	AIArtFilter    *string         `json:"aiArtFilter" validate:"omitempty,oneof=0 1"`
	Proxy          *string         `json:"proxy" validate:"omitempty,max=512"`
}

// JobConfig is the immutable parameter snapshot for one download job.
// Sizes are in bytes; zero disables that bound.
type JobConfig struct {
	Source         SourceMode
	TargetCount    int
	StartPage      int
	MaxPage        int
	Categories     string
	Purity         string
	Resolution     string
	AtLeast        string
	Ratios         string
	Sorting        Sorting
	Order          Order
	TopRange       string
	Query          string
	Color          string
	User           string
	Collection     string
	CollectionMode CollectionMode
	MinFavorites   int
	MinFileSize    int64
	MaxFileSize    int64
	PerPage        string
	Subfolder      bool
	AIArtFilter    string
	Proxy          string
	APIKey         string
}

// ToConfig applies defaults and normalizes the request into a JobConfig.
// defaultProxy is used when the request carries no proxy field at all.
func (r *DownloadRequest) ToConfig(defaultProxy string) (*JobConfig, error) {
	if r.MinFileSize < 0 || r.MinFileSize > MaxFileSizeKB {
		return nil, fmt.Errorf("minFileSize must be between 0 and %d KB", MaxFileSizeKB)
	}
	if r.MaxFileSize != nil && (*r.MaxFileSize < 0 || *r.MaxFileSize > MaxFileSizeKB) {
		return nil, fmt.Errorf("maxFileSize must be between 0 and %d KB", MaxFileSizeKB)
	}

	cfg := &JobConfig{
		Source:       SourceStandard,
		TargetCount:  intOr(r.WPNumber, DefaultTargetCount),
		StartPage:    intOr(r.StartPage, DefaultStartPage),
		MaxPage:      intOr(r.MaxPage, DefaultMaxPage),
		Categories:   stringOr(r.Categories, DefaultCategories),
		Purity:       stringOr(r.Filter, DefaultPurity),
		Resolution:   strings.TrimSpace(r.Resolution),
		AtLeast:      stringOr(r.AtLeast, DefaultAtLeast),
		Ratios:       strings.TrimSpace(r.AspectRatio),
		Sorting:      SortingFavorites,
		Order:        OrderDesc,
		TopRange:     r.TopRange,
		Query:        strings.TrimSpace(r.Query),
		Color:        strings.TrimPrefix(r.Color, "#"),
		User:         strings.TrimSpace(r.User),
		Collection:   strings.TrimSpace(stringOr(r.Collection, DefaultCollection)),
		MinFavorites: r.MinFavorites,
		MinFileSize:  r.MinFileSize * 1024,
		MaxFileSize:  int64Or(r.MaxFileSize, DefaultMaxFileKB) * 1024,
		PerPage:      stringOr(r.Thumbs, DefaultPerPage),
		Subfolder:    r.Subfolder,
		AIArtFilter:  stringOr(r.AIArtFilter, DefaultAIArtFilter),
		Proxy:        strings.TrimSpace(stringOr(r.Proxy, defaultProxy)),
		APIKey:       strings.TrimSpace(r.APIKey),
	}

	if r.Type != nil && *r.Type != sourceHits {
		cfg.Source = *r.Type
	}
	if r.Mode != nil {
		cfg.Sorting = *r.Mode
	}
	if r.Order != nil {
		cfg.Order = *r.Order
	}
	// "x" is the placeholder the UI uses for "no key"
	if cfg.APIKey == "x" {
		cfg.APIKey = ""
	}

	if cfg.MaxPage < cfg.StartPage {
		return nil, fmt.Errorf("maxPage (%d) must not be less than startPage (%d)", cfg.MaxPage, cfg.StartPage)
	}
	if cfg.MaxFileSize > 0 && cfg.MinFileSize > cfg.MaxFileSize {
		return nil, fmt.Errorf("minFileSize must not exceed maxFileSize")
	}

	if cfg.Source == SourceCollections {
		if cfg.User == "" {
			return nil, fmt.Errorf("user is required for collections")
		}
		if cfg.Collection == "" {
			return nil, fmt.Errorf("collection is required for collections")
		}
		if r.CollectionMode != nil {
			cfg.CollectionMode = *r.CollectionMode
		} else {
			cfg.CollectionMode = inferCollectionMode(cfg.Collection)
		}
		if cfg.CollectionMode == CollectionByID {
			if _, err := strconv.ParseInt(cfg.Collection, 10, 64); err != nil {
				return nil, fmt.Errorf("collection id must be numeric")
			}
		}
	}
	if cfg.Source == SourceUserUploads && cfg.User == "" {
		return nil, fmt.Errorf("user is required for useruploads")
	}

	return cfg, nil
}

// inferCollectionMode keeps old clients working: they send either an id or a label
// in the same field.
func inferCollectionMode(collection string) CollectionMode {
	if _, err := strconv.ParseInt(collection, 10, 64); err == nil {
		return CollectionByID
	}
	return CollectionByLabel
}

// JobStatus is the progress record polled by clients.
type JobStatus struct {
	JobID           string     `json:"jobId,omitempty"`
	IsRunning       bool       `json:"isRunning"`
	Target          int        `json:"target"`
	Completed       int        `json:"completed"`
	Message         string     `json:"message"`
	OutputDirectory *string    `json:"outputDirectory"`
	StartedAt       *time.Time `json:"startedAt,omitempty"`
	FinishedAt      *time.Time `json:"finishedAt,omitempty"`
}

// DownloadStartResponse is returned when a job was accepted
type DownloadStartResponse struct {
	Message string `json:"message"`
	JobID   string `json:"jobId"`
}

func intOr(v *int, def int) int {
	if v == nil {
		return def
	}
	return *v
}

func int64Or(v *int64, def int64) int64 {
	if v == nil {
		return def
	}
	return *v
}

func stringOr(v *string, def string) string {
	if v == nil {
		return def
	}
	return *v
}
