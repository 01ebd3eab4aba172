package form

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/visaflow/mcp-i765-filler/internal/form/schema"
)

const defaultFetchTimeout = 30 * time.Second

// HTTPFetch returns a fetch func that downloads URL-backed resources
// (templates, schema documents). Bodies larger than maxBytes are refused;
// a maxBytes of zero means no limit. A nil client gets a default with a
// request timeout.
func HTTPFetch(client *http.Client, maxBytes int64) schema.FetchFunc {
	if client == nil {
		client = &http.Client{Timeout: defaultFetchTimeout}
	}
	return func(ctx context.Context, url string) ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to build request for %s: %w", url, err)
		}
		resp, err := client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("failed to fetch %s: unexpected status %s", url, resp.Status)
		}

		body := io.Reader(resp.Body)
		if maxBytes > 0 {
			body = io.LimitReader(resp.Body, maxBytes+1)
		}
		data, err := io.ReadAll(body)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", url, err)
		}
		if maxBytes > 0 && int64(len(data)) > maxBytes {
			return nil, fmt.Errorf("resource %s exceeds %d bytes", url, maxBytes)
		}
		return data, nil
	}
}
