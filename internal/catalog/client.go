package catalog

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"tickerize/internal"
	"tickerize/internal/config"
)

// Client downloads a published reference CSV over HTTP. Requests are rate
// limited client-side so scheduled syncs stay polite to the publisher.
type Client struct {
	cfg        config.Config
	httpClient *http.Client
	limiter    *rate.Limiter
}

func NewClient(cfg config.Config) *Client {
	rps := cfg.ReferenceRateLimitRPS
	if rps <= 0 {
		rps = 1
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: time.Duration(cfg.ReferenceTimeoutMs) * time.Millisecond},
		limiter:    rate.NewLimiter(rate.Limit(rps), 1),
	}
}

// FetchReference downloads and parses the reference list from the configured
// URL using the configured column names.
func (c *Client) FetchReference(ctx context.Context) ([]internal.ReferenceEntry, error) {
	if err := c.cfg.Require("REFERENCE_URL", c.cfg.ReferenceURL); err != nil {
		return nil, err
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.ReferenceURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("reference fetch failed: %s", resp.Status)
	}

	return ReadReferenceCSV(resp.Body, c.cfg.ReferenceNameColumn, c.cfg.ReferenceTickerColumn)
}
