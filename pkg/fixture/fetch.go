package fixture

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/dustin/go-humanize"
)

// HTTPFetcher downloads archives with plain GET requests. No retry and no
// client timeout: a hung transfer blocks until the context is canceled.
type HTTPFetcher struct {
	Client *http.Client // nil uses http.DefaultClient
	log    logger
}

// NewHTTPFetcher creates a fetcher logging through the given logger.
func NewHTTPFetcher(log logger) *HTTPFetcher {
	return &HTTPFetcher{log: log}
}

// Fetch downloads url into dest, streaming the body to disk. A non-2xx
// status is an error. A partially written file is left behind on failure,
// the next run's cleanup pass removes it.
func (f *HTTPFetcher) Fetch(ctx context.Context, url, dest string) error {
	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("get %s: %w", url, err)
	}
	defer resp.Body.Close() //nolint:errcheck // response body close

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("get %s: unexpected status %s", url, resp.Status)
	}

	out, err := os.Create(dest) //nolint:gosec // dest is manifest-defined archive path
	if err != nil {
		return fmt.Errorf("create %s: %w", dest, err)
	}

	n, err := io.Copy(out, resp.Body)
	if err != nil {
		out.Close()
		return fmt.Errorf("write %s: %w", dest, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("close %s: %w", dest, err)
	}

	if f.log != nil {
		f.log.Print("fetched %s (%s)", dest, humanize.Bytes(uint64(n))) //nolint:gosec // io.Copy count is non-negative
	}
	return nil
}
