package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// maxPageBytes caps how much of a pricing page is read; enough for a menu,
// not enough to let one bloated page eat the run's memory.
const maxPageBytes = 256 * 1024

// ReaderClient fetches web pages as clean text through a Jina-Reader-style
// proxy, used by the cost stage to read venue pricing pages.
type ReaderClient struct {
	baseURL string
	http    *http.Client
}

// NewReaderClient creates a reader client. An empty baseURL selects the
// public Jina Reader endpoint.
func NewReaderClient(baseURL string) *ReaderClient {
	if baseURL == "" {
		baseURL = "https://r.jina.ai/"
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return &ReaderClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: defaultTimeout},
	}
}

// Read fetches a URL through the reader proxy and returns its text content.
func (c *ReaderClient) Read(ctx context.Context, pageURL string) (string, error) {
	if pageURL == "" {
		return "", fmt.Errorf("reader: empty URL")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("reader: build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("reader: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("reader: HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return "", fmt.Errorf("reader: read body: %w", err)
	}
	return string(body), nil
}
