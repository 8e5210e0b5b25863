package model

// CatalogItem is one wallpaper entry returned by the catalog API
type CatalogItem struct {
	ID         string `json:"id"`
	URL        string `json:"url"`
	ShortURL   string `json:"short_url,omitempty"`
	Path       string `json:"path"`
	Favorites  int    `json:"favorites"`
	Views      int    `json:"views,omitempty"`
	FileSize   int64  `json:"file_size,omitempty"`
	FileType   string `json:"file_type,omitempty"`
	Resolution string `json:"resolution,omitempty"`
	Purity     string `json:"purity,omitempty"`
	Category   string `json:"category,omitempty"`
}

// PageMeta is the pagination block of a listing response
type PageMeta struct {
	CurrentPage int `json:"current_page"`
	LastPage    int `json:"last_page"`
	PerPage     int `json:"per_page"`
	Total       int `json:"total"`
}

// SearchResponse is a page of catalog items
type SearchResponse struct {
	Data []CatalogItem `json:"data"`
	Meta PageMeta      `json:"meta"`
}

// Collection is a user-owned named group of wallpapers
type Collection struct {
	ID     int64  `json:"id"`
	Label  string `json:"label"`
	Views  int    `json:"views"`
	Public int    `json:"public"`
	Count  int    `json:"count"`
}

// CollectionsResponse is the body of the collection-list endpoint
type CollectionsResponse struct {
	Data []Collection `json:"data"`
}
