package picsum

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"memory-match-server/config"
	"memory-match-server/game"
)

const listBody = `[
  {"id":"1","author":"Greg Rakozy","width":5616,"height":3744,"url":"https://unsplash.com/photos/SSxIGsySh8o","download_url":"https://picsum.photos/id/1004/5616/3744"},
  {"id":"2","author":"Matthew Wiebe","width":5760,"height":3840,"url":"https://unsplash.com/photos/tBtuxtLvAZs","download_url":"https://picsum.photos/id/1005/5760/3840"}
]`

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := config.Defaults()
	cfg.ImageBaseURL = server.URL
	cfg.ProviderRatePerSec = 0
	return NewClient(cfg)
}

func TestFetchImages(t *testing.T) {
	var gotPath, gotLimit string
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotLimit = r.URL.Query().Get("limit")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(listBody))
	})

	images, err := c.FetchImages(context.Background(), 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotPath != "/v2/list" || gotLimit != "2" {
		t.Errorf("expected GET /v2/list?limit=2, got %s limit=%s", gotPath, gotLimit)
	}
	if len(images) != 2 {
		t.Fatalf("expected 2 images, got %d", len(images))
	}
	if images[0].ID != "1" || images[1].ID != "2" {
		t.Errorf("unexpected ids %q, %q", images[0].ID, images[1].ID)
	}
	if images[0].Metadata["author"] != "Greg Rakozy" || images[0].Metadata["width"] != "5616" {
		t.Errorf("metadata not passed through: %v", images[0].Metadata)
	}
}

func TestFetchImages_Failures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "down", http.StatusInternalServerError)
		}},
		{"malformed json", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"not":"a list"`))
		}},
		{"empty list", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`[]`))
		}},
		{"missing id", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`[{"author":"nobody"}]`))
		}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			c := testClient(t, test.handler)

			images, err := c.FetchImages(context.Background(), 3)
			if err == nil {
				t.Fatalf("expected an error, got %d images", len(images))
			}
			var perr *game.ProviderError
			if !errors.As(err, &perr) {
				t.Errorf("expected *game.ProviderError, got %T", err)
			}
		})
	}
}

func TestFetchImages_TransportError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	cfg := config.Defaults()
	cfg.ImageBaseURL = server.URL
	server.Close()

	_, err := NewClient(cfg).FetchImages(context.Background(), 1)
	var perr *game.ProviderError
	if !errors.As(err, &perr) {
		t.Fatalf("expected *game.ProviderError, got %v", err)
	}
}

func TestFetchImages_CancelledContext(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(listBody))
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.FetchImages(ctx, 2)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled in chain, got %v", err)
	}
}

func TestFetchImages_InvalidCount(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})
	if _, err := c.FetchImages(context.Background(), 0); err == nil {
		t.Error("expected an error for count 0")
	}
}
