package gasfeed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"energywatch/internal/observability/metrics"
)

// PointValue is the newest sample of one metering point.
type PointValue struct {
	Name  string
	At    time.Time
	Value float64
}

// Client reads metering point values from the pipeline operator's SCADA
// historian. Every call authenticates with basic auth.
type Client struct {
	baseURL  string
	user     string
	password string
	client   *http.Client
}

// NewClient constructs a pipeline feed client.
func NewClient(baseURL, user, password string, opts ...ClientOption) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("gasfeed: empty base url")
	}
	c := &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		user:     user,
		password: password,
		client:   &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// ClientOption configures the client.
type ClientOption func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		if client != nil {
			c.client = client
		}
	}
}

// Latest returns the newest sample of each named point. Points the historian
// has never seen are simply absent from the result.
func (c *Client) Latest(ctx context.Context, names []string) ([]PointValue, error) {
	return c.fetch(ctx, names, time.Time{})
}

// LatestBefore returns the newest sample of each named point at or before
// the given instant, for end-of-day reads of past days.
func (c *Client) LatestBefore(ctx context.Context, names []string, before time.Time) ([]PointValue, error) {
	if before.IsZero() {
		return nil, errors.New("gasfeed: zero before instant")
	}
	return c.fetch(ctx, names, before)
}

func (c *Client) fetch(ctx context.Context, names []string, before time.Time) (values []PointValue, err error) {
	if len(names) == 0 {
		return nil, errors.New("gasfeed: no point names")
	}
	start := time.Now()
	defer func() {
		result := metrics.ResultSuccess
		if err != nil {
			result = metrics.ResultError
		}
		metrics.ObserveFeed("gas_historian", result, time.Since(start))
	}()

	query := url.Values{}
	query.Set("limit", "1")
	if !before.IsZero() {
		query.Set("before", before.Format(time.RFC3339))
	}
	rawURL := fmt.Sprintf("%s/rest/v2/point-values/multiple-arrays/latest/%s?%s",
		c.baseURL, strings.Join(names, ","), query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(c.user, c.password)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("gasfeed: http %d", resp.StatusCode)
	}

	// One array per point, newest first; limit=1 leaves a single sample.
	var body map[string][]struct {
		Timestamp int64   `json:"timestamp"`
		Value     float64 `json:"value"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, err
	}

	values = make([]PointValue, 0, len(body))
	for _, name := range names {
		samples, ok := body[name]
		if !ok || len(samples) == 0 {
			continue
		}
		values = append(values, PointValue{
			Name:  name,
			At:    time.UnixMilli(samples[0].Timestamp).UTC(),
			Value: samples[0].Value,
		})
	}
	return values, nil
}
