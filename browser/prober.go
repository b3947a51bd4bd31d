package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"catalog-aggregator/scraper"
)

// HTTPProber fetches page URLs out of band to read their status code.
type HTTPProber struct {
	client *resty.Client
}

var _ scraper.StatusProber = (*HTTPProber)(nil)

// NewHTTPProber returns a prober whose requests give up after timeout.
func NewHTTPProber(timeout time.Duration, userAgent string) *HTTPProber {
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	client := resty.New()
	client.SetHeader("user-agent", userAgent)
	client.SetTimeout(timeout)
	return &HTTPProber{client: client}
}

func (p *HTTPProber) Status(ctx context.Context, url string) (int, error) {
	res, err := p.client.R().
		SetContext(ctx).
		Get(url)
	if err != nil {
		return 0, fmt.Errorf("probe %s: %w", url, err)
	}
	return res.StatusCode(), nil
}
