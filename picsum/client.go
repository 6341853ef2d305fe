package picsum

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"golang.org/x/time/rate"
	"memory-match-server/config"
	"memory-match-server/game"
)

// maxBodyBytes caps how much of a list response is read.
const maxBodyBytes = 1 << 20

// Photo is one entry of the /v2/list response.
type Photo struct {
	ID          string `json:"id"`
	Author      string `json:"author"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	URL         string `json:"url"`
	DownloadURL string `json:"download_url"`
}

// Client fetches photo lists from a Lorem Picsum compatible service.
// It satisfies game.ImageProvider.
type Client struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

var _ game.ImageProvider = (*Client)(nil)

// NewClient creates a Client for cfg.ImageBaseURL.
func NewClient(cfg *config.Config) *Client {
	limit := rate.Inf
	if cfg.ProviderRatePerSec > 0 {
		limit = rate.Limit(cfg.ProviderRatePerSec)
	}
	burst := cfg.ProviderBurst
	if burst < 1 {
		burst = 1
	}
	return &Client{
		baseURL: cfg.ImageBaseURL,
		http:    &http.Client{Timeout: cfg.ProviderTimeout()},
		limiter: rate.NewLimiter(limit, burst),
	}
}

// FetchImages requests count photos. Every failure is returned as a *game.ProviderError.
func (c *Client) FetchImages(ctx context.Context, count int) ([]game.Image, error) {
	if count < 1 {
		return nil, &game.ProviderError{Op: "list", Err: fmt.Errorf("invalid count %d", count)}
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &game.ProviderError{Op: "rate limit", Err: err}
	}

	photos, err := c.list(ctx, count)
	if err != nil {
		slog.Warn("photo list failed", "tag", "picsum", "count", count, "err", err)
		return nil, &game.ProviderError{Op: "list", Err: err}
	}
	if len(photos) == 0 {
		return nil, &game.ProviderError{Op: "list", Err: errors.New("empty photo list")}
	}

	images := make([]game.Image, 0, len(photos))
	for _, p := range photos {
		if p.ID == "" {
			return nil, &game.ProviderError{Op: "decode", Err: errors.New("photo without id")}
		}
		images = append(images, toImage(p))
	}
	slog.Debug("photo list fetched", "tag", "picsum", "requested", count, "received", len(images))
	return images, nil
}

func (c *Client) list(ctx context.Context, count int) ([]Photo, error) {
	u := c.baseURL + "/v2/list?" + url.Values{"limit": {strconv.Itoa(count)}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}

	var photos []Photo
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&photos); err != nil {
		return nil, fmt.Errorf("decode photo list: %w", err)
	}
	return photos, nil
}

func toImage(p Photo) game.Image {
	return game.Image{
		ID: p.ID,
		Metadata: map[string]string{
			"author":       p.Author,
			"url":          p.URL,
			"download_url": p.DownloadURL,
			"width":        strconv.Itoa(p.Width),
			"height":       strconv.Itoa(p.Height),
		},
	}
}
