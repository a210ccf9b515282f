package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	types "github.com/studyforge/studyforge-backend/internal/domain"
	"github.com/studyforge/studyforge-backend/internal/pkg/logger"
	"github.com/studyforge/studyforge-backend/internal/platform/envutil"
)

const (
	defaultTimeout = 10 * time.Second

	// Catalog requests are chunked and fanned out; the catalog caps its own
	// ids-per-request, so stay under it.
	chunkSize      = 100
	maxConcurrency = 4
)

// Client is the read-only item catalog lookup. The catalog owns item content
// and metadata; this backend only ever reads it.
type Client interface {
	GetByIDs(ctx context.Context, ids []int64) ([]types.ItemMetadata, error)
}

type httpClient struct {
	log     *logger.Logger
	baseURL string
	hc      *http.Client
}

func NewHTTPClient(logg *logger.Logger) (Client, error) {
	base := strings.TrimRight(envutil.String("CATALOG_BASE_URL", ""), "/")
	if base == "" {
		return nil, fmt.Errorf("missing CATALOG_BASE_URL")
	}
	timeout := envutil.Duration("CATALOG_TIMEOUT", defaultTimeout)
	return &httpClient{
		log:     logg.With("client", "CatalogClient"),
		baseURL: base,
		hc:      &http.Client{Timeout: timeout},
	}, nil
}

func (c *httpClient) GetByIDs(ctx context.Context, ids []int64) ([]types.ItemMetadata, error) {
	if len(ids) == 0 {
		return []types.ItemMetadata{}, nil
	}

	chunks := chunkIDs(ids, chunkSize)
	results := make([][]types.ItemMetadata, len(chunks))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrency)
	var mu sync.Mutex
	for i, chunk := range chunks {
		g.Go(func() error {
			items, err := c.fetch(gctx, chunk)
			if err != nil {
				return err
			}
			mu.Lock()
			results[i] = items
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]types.ItemMetadata, 0, len(ids))
	for _, items := range results {
		out = append(out, items...)
	}
	return out, nil
}

func (c *httpClient) fetch(ctx context.Context, ids []int64) ([]types.ItemMetadata, error) {
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, strconv.FormatInt(id, 10))
	}
	u := fmt.Sprintf("%s/items?ids=%s", c.baseURL, url.QueryEscape(strings.Join(parts, ",")))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("catalog request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("catalog request: unexpected status %d", resp.StatusCode)
	}

	var body struct {
		Items []types.ItemMetadata `json:"items"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode catalog response: %w", err)
	}
	return body.Items, nil
}

func chunkIDs(ids []int64, size int) [][]int64 {
	var chunks [][]int64
	for len(ids) > size {
		chunks = append(chunks, ids[:size])
		ids = ids[size:]
	}
	if len(ids) > 0 {
		chunks = append(chunks, ids)
	}
	return chunks
}
