package imageio

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

// fetchTimeout bounds the whole remote download.
const fetchTimeout = 60 * time.Second

// IsRemote reports whether an input argument names a remote image.
func IsRemote(input string) bool {
	return strings.HasPrefix(input, "http://") || strings.HasPrefix(input, "https://")
}

// Read returns the raw bytes of an input, fetching it over HTTP when
// the argument is a URL and reading the local file otherwise.
func Read(ctx context.Context, input string) ([]byte, error) {
	if IsRemote(input) {
		return Fetch(ctx, input)
	}
	data, err := os.ReadFile(input)
	if err != nil {
		return nil, fmt.Errorf("imageio: reading %s: %w", input, err)
	}
	return data, nil
}

// Fetch downloads a remote image.
func Fetch(ctx context.Context, url string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("imageio: building request for %s: %w", url, err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("imageio: fetching %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("imageio: fetching %s: unexpected status %s", url, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("imageio: reading body of %s: %w", url, err)
	}
	return data, nil
}
