// Package remote fetches a published snippet library over HTTP.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	apperrors "github.com/snipline/snipline/internal/errors"
	"github.com/snipline/snipline/internal/models"
)

const (
	fetchTimeout = 15 * time.Second
	maxBodySize  = 5 << 20
)

// Client fetches snippet libraries from one URL.
type Client struct {
	url        string
	httpClient *http.Client
}

// New returns a client for url.
func New(url string) *Client {
	return &Client{
		url:        url,
		httpClient: &http.Client{Timeout: fetchTimeout},
	}
}

// Fetch downloads and parses the library. The endpoint is expected to serve
// a JSON object with "snippets" and optional "titles" keys.
func (c *Client) Fetch(ctx context.Context) (models.Library, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return models.Library{}, apperrors.NetworkError("build request", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return models.Library{}, apperrors.NetworkError("fetch library", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.Library{}, apperrors.NetworkError("fetch library",
			fmt.Errorf("unexpected status %s", resp.Status))
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return models.Library{}, apperrors.NetworkError("read response", err)
	}
	return ParseLibrary(data)
}

// ParseLibrary decodes a library payload. Some publishing pipelines prefix
// the JSON with junk (BOMs, anti-hijack markers), so a failed parse retries
// from the first brace.
func ParseLibrary(data []byte) (models.Library, error) {
	lib, err := decode(data)
	if err != nil {
		if idx := bytes.IndexByte(data, '{'); idx > 0 {
			lib, err = decode(data[idx:])
		}
	}
	if err != nil {
		return models.Library{}, apperrors.Wrap(err, apperrors.ErrCodeInvalidFormat,
			"Library payload does not parse")
	}
	if lib.Snippets == nil {
		lib.Snippets = map[string]models.Body{}
	}
	return lib, nil
}

func decode(data []byte) (models.Library, error) {
	var lib models.Library
	if err := json.Unmarshal(data, &lib); err != nil {
		return models.Library{}, err
	}
	return lib, nil
}
