package worker

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/url"
	"path"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/wallfetch/api/internal/client"
	"github.com/wallfetch/api/internal/model"
	"github.com/wallfetch/api/internal/service"
	"github.com/wallfetch/api/internal/storage"
)

// Catalog is the part of the Wallhaven client a job needs
type Catalog interface {
	Search(ctx context.Context, job *model.JobConfig, page int) (*model.SearchResponse, error)
	CollectionItems(ctx context.Context, user, collectionID string, page int) (*model.SearchResponse, error)
	Collections(ctx context.Context, user string) ([]model.Collection, error)
	ProbeSize(ctx context.Context, imageURL string) (int64, error)
	Download(ctx context.Context, imageURL string, w io.Writer) (int64, error)
}

// CatalogFactory builds the catalog client for one job (API key, proxy)
type CatalogFactory func(cfg *model.JobConfig) (Catalog, error)

// DownloadWorker runs the fetch-filter-download loop of a job
type DownloadWorker struct {
	catalogFor CatalogFactory
	store      *storage.Store
	now        func() time.Time
}

// NewDownloadWorker creates a new download worker
func NewDownloadWorker(catalogFor CatalogFactory, store *storage.Store) *DownloadWorker {
	return &DownloadWorker{
		catalogFor: catalogFor,
		store:      store,
		now:        time.Now,
	}
}

// Process implements service.JobRunner
func (w *DownloadWorker) Process(ctx context.Context, jobID string, cfg *model.JobConfig, progress service.Progress) (int, error) {
	catalog, err := w.catalogFor(cfg)
	if err != nil {
		return 0, fmt.Errorf("failed to configure client: %w", err)
	}

	dir, err := w.store.EnsureDir(OutputDirName(cfg, w.now()))
	if err != nil {
		return 0, err
	}
	progress.SetOutputDirectory(dir)
	log.Printf("[JOB %s] saving to %s", jobID, dir)
	if cfg.Proxy != "" {
		kind := "http"
		if client.IsSocksProxy(cfg.Proxy) {
			kind = "socks5"
		}
		log.Printf("[JOB %s] routing requests through %s proxy", jobID, kind)
	}

	collectionID := cfg.Collection
	if cfg.Source == model.SourceCollections && cfg.User != "" && cfg.CollectionMode == model.CollectionByLabel {
		progress.SetMessage(fmt.Sprintf("Looking up collection %q...", cfg.Collection))
		collectionID, err = ResolveCollection(ctx, catalog, cfg.User, cfg.Collection)
		if err != nil {
			return 0, err
		}
		log.Printf("[JOB %s] collection %q resolved to id %s", jobID, cfg.Collection, collectionID)
	}

	downloaded := 0
	for page := cfg.StartPage; downloaded < cfg.TargetCount && page <= cfg.MaxPage; page++ {
		if err := ctx.Err(); err != nil {
			return downloaded, err
		}

		progress.SetMessage(fmt.Sprintf("Fetching page %d...", page))
		resp, err := fetchPage(ctx, catalog, cfg, collectionID, page)
		if err != nil {
			if ctx.Err() != nil {
				return downloaded, ctx.Err()
			}
			return downloaded, fmt.Errorf("%w: page %d: %w", service.ErrUpstreamFetch, page, err)
		}
		if len(resp.Data) == 0 {
			return downloaded, service.ErrNoMoreResults
		}

		for i := range resp.Data {
			if downloaded >= cfg.TargetCount {
				break
			}
			if err := ctx.Err(); err != nil {
				return downloaded, err
			}

			name, ok := w.downloadItem(ctx, jobID, catalog, cfg, dir, &resp.Data[i])
			if !ok {
				continue
			}
			downloaded++
			progress.Advance(downloaded, fmt.Sprintf("Downloading %s (%d/%d)", name, downloaded, cfg.TargetCount))
		}

		if resp.Meta.LastPage <= page {
			break
		}
	}

	return downloaded, nil
}

// downloadItem applies the favorites and size filters and saves the image.
// Failures are logged and reported as a skip.
func (w *DownloadWorker) downloadItem(ctx context.Context, jobID string, catalog Catalog, cfg *model.JobConfig, dir string, item *model.CatalogItem) (string, bool) {
	if item.Favorites < cfg.MinFavorites {
		return "", false
	}

	name := FileName(item.Path)
	if name == "" {
		log.Printf("[JOB %s] skipping %s: no image url", jobID, item.ID)
		return "", false
	}

	size, err := catalog.ProbeSize(ctx, item.Path)
	if err != nil {
		log.Printf("[JOB %s] failed to probe %s: %v", jobID, name, err)
		return "", false
	}
	if cfg.MinFileSize > 0 && size < cfg.MinFileSize {
		return "", false
	}
	if cfg.MaxFileSize > 0 && size > cfg.MaxFileSize {
		return "", false
	}

	_, err = w.store.WriteStream(dir, name, func(out io.Writer) (int64, error) {
		return catalog.Download(ctx, item.Path, out)
	})
	if err != nil {
		log.Printf("[JOB %s] failed to download %s: %v", jobID, name, err)
		return "", false
	}
	return name, true
}

func fetchPage(ctx context.Context, catalog Catalog, cfg *model.JobConfig, collectionID string, page int) (*model.SearchResponse, error) {
	if cfg.Source == model.SourceCollections {
		return catalog.CollectionItems(ctx, cfg.User, collectionID, page)
	}
	return catalog.Search(ctx, cfg, page)
}

// ResolveCollection maps a collection label to its id. Labels match case-insensitively
// and the first match wins.
func ResolveCollection(ctx context.Context, catalog Catalog, user, label string) (string, error) {
	collections, err := catalog.Collections(ctx, user)
	if err != nil {
		return "", fmt.Errorf("%w: %w", service.ErrCollectionLookupFailed, err)
	}
	for _, c := range collections {
		if strings.EqualFold(c.Label, label) {
			return strconv.FormatInt(c.ID, 10), nil
		}
	}
	return "", fmt.Errorf("%w: %q", service.ErrCollectionNotFound, label)
}

var slugPattern = regexp.MustCompile(`[^a-zA-Z0-9]`)

// OutputDirName names a job folder: the start time in Unix millis, prefixed by the
// slugified query when subfolder is requested.
func OutputDirName(cfg *model.JobConfig, now time.Time) string {
	ts := strconv.FormatInt(now.UnixMilli(), 10)
	if cfg.Subfolder && cfg.Query != "" {
		return slugPattern.ReplaceAllString(cfg.Query, "_") + "_" + ts
	}
	return ts
}

// FileName is the last path segment of an image URL
func FileName(imageURL string) string {
	u, err := url.Parse(imageURL)
	if err != nil || u.Path == "" {
		return ""
	}
	name := path.Base(u.Path)
	if name == "/" || name == "." {
		return ""
	}
	return name
}

// WallhavenCatalog adapts the shared Wallhaven client to a per-job CatalogFactory
func WallhavenCatalog(wh *client.WallhavenClient) CatalogFactory {
	return func(cfg *model.JobConfig) (Catalog, error) {
		c, err := wh.ForJob(cfg)
		if err != nil {
			return nil, err
		}
		return c, nil
	}
}
