package metadata

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"avular-packages/internal/shared"
	"avular-packages/internal/types"
)

// HTTPFetcher retrieves index and archive files over HTTP, retrying
// transport failures with exponential backoff within a single fetch
// before giving up.
type HTTPFetcher struct {
	Client     *http.Client
	MaxRetries uint64
}

// NewHTTPFetcher returns a fetcher with a sane default per-request
// timeout; callers needing a different timeout configure Client
// directly.
func NewHTTPFetcher(timeout time.Duration) HTTPFetcher {
	return HTTPFetcher{
		Client:     &http.Client{Timeout: timeout},
		MaxRetries: 5,
	}
}

// Get fetches url, retrying transient failures (network errors and 5xx
// responses) with exponential backoff; every attempt polls ctx so a
// cancelled run unwinds immediately.
func (f HTTPFetcher) Get(ctx context.Context, url string) ([]byte, error) {
	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), f.MaxRetries), ctx)

	var body []byte
	operation := func() error {
		if err := ctx.Err(); err != nil {
			return backoff.Permanent(err)
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		resp, err := f.Client.Do(req)
		if err != nil {
			log.Ctx(ctx).Warn().Err(err).Str("url", url).Msg("fetch attempt failed, retrying")
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusNotFound {
			return backoff.Permanent(errbuilder.New().
				WithCode(errbuilder.CodeNotFound).
				WithMsg("not found: " + url))
		}
		if resp.StatusCode >= 500 {
			return shared.HTTPStatusError(resp.StatusCode, url)
		}
		if resp.StatusCode >= 400 {
			return backoff.Permanent(shared.HTTPStatusError(resp.StatusCode, url))
		}

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		body = data
		return nil
	}

	if err := backoff.Retry(operation, policy); err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeUnavailable).
			WithMsg("failed to fetch " + url).
			WithCause(types.ErrNetwork)
	}
	return body, nil
}
