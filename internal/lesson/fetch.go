package lesson

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ErrNotFound is returned when no lesson exists for an id.
var ErrNotFound = errors.New("lesson not found")

// Fetcher retrieves a lesson by id.
type Fetcher interface {
	FetchLesson(ctx context.Context, id string) (*Lesson, error)
}

// HTTPFetcher reads lessons from a server exposing GET {BaseURL}/api/lessons/{id}.
type HTTPFetcher struct {
	BaseURL string
	Client  *http.Client
}

var _ Fetcher = (*HTTPFetcher)(nil)

// NewHTTPFetcher creates an HTTPFetcher with a bounded client timeout.
func NewHTTPFetcher(baseURL string) *HTTPFetcher {
	return &HTTPFetcher{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  &http.Client{Timeout: 15 * time.Second},
	}
}

func (f *HTTPFetcher) FetchLesson(ctx context.Context, id string) (*Lesson, error) {
	endpoint := f.BaseURL + "/api/lessons/" + url.PathEscape(id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch lesson %q: %w", id, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("lesson %q: %w", id, ErrNotFound)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("fetch lesson %q: unexpected status %s", id, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("read lesson %q: %w", id, err)
	}
	return Decode(body)
}
