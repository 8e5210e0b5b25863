package model

// Source modes
type SourceMode string

const (
	SourceStandard    SourceMode = "standard"
	SourceSearch      SourceMode = "search"
	SourceTag         SourceMode = "tag"
	SourceCollections SourceMode = "collections"
	SourceUserUploads SourceMode = "useruploads"

	// sourceHits is what older clients send for the standard listing
	sourceHits SourceMode = "hits"
)

// Sorting modes
type Sorting string

const (
	SortingDateAdded   Sorting = "date_added"
	SortingRelevance   Sorting = "relevance"
	SortingRandom      Sorting = "random"
	SortingViews       Sorting = "views"
	SortingFavorites   Sorting = "favorites"
	SortingToplist     Sorting = "toplist"
	SortingToplistBeta Sorting = "toplist-beta"
	SortingHot         Sorting = "hot"
)

// Sort order
type Order string

const (
	OrderDesc Order = "desc"
	OrderAsc  Order = "asc"
)

// Collection lookup modes
type CollectionMode string

const (
	CollectionByID    CollectionMode = "id"
	CollectionByLabel CollectionMode = "label"
)

// WebSocket message types
const (
	WSMessageTypeStatus = "status"
	WSMessageTypePing   = "ping"
	WSMessageTypePong   = "pong"
)
