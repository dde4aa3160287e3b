package lngfeed

import (
	"bytes"
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"net/http"
	"time"

	"energywatch/internal/observability/metrics"
)

// SendoutSnapshot is the first terminal's reported daily sendout, summed
// across its four tanks.
type SendoutSnapshot struct {
	At       time.Time
	VolumeM3 float64
}

// TankLevels carries the second terminal's latest fill levels in millimeters.
// A zero level means the terminal reported nothing for that tank.
type TankLevels struct {
	At      time.Time
	Tank1MM float64
	Tank2MM float64
}

const levelStampLayout = "2006-01-02 15:04:05.000"

// Client reads sendout and tank level reports from the two LNG terminal
// operators. The first terminal publishes XML, the second a keyed JSON POST.
type Client struct {
	sendoutURL string
	levelsURL  string
	levelsKey  string
	client     *http.Client
}

// NewClient constructs an LNG terminal feed client.
func NewClient(sendoutURL, levelsURL, levelsKey string, opts ...ClientOption) (*Client, error) {
	if sendoutURL == "" || levelsURL == "" {
		return nil, errors.New("lngfeed: empty terminal url")
	}
	c := &Client{
		sendoutURL: sendoutURL,
		levelsURL:  levelsURL,
		levelsKey:  levelsKey,
		client:     &http.Client{Timeout: 15 * time.Second},
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

// Sendout returns the first terminal's current daily sendout report.
func (c *Client) Sendout(ctx context.Context) (snapshot SendoutSnapshot, err error) {
	start := time.Now()
	defer func() {
		result := metrics.ResultSuccess
		if err != nil {
			result = metrics.ResultError
		}
		metrics.ObserveFeed("lng_sendout", result, time.Since(start))
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.sendoutURL, nil)
	if err != nil {
		return SendoutSnapshot{}, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return SendoutSnapshot{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return SendoutSnapshot{}, fmt.Errorf("lngfeed: sendout http %d", resp.StatusCode)
	}

	var body struct {
		Daily struct {
			Date  float64 `xml:"date"`
			Tank1 float64 `xml:"volume_tank1"`
			Tank2 float64 `xml:"volume_tank2"`
			Tank3 float64 `xml:"volume_tank3"`
			Tank4 float64 `xml:"volume_tank4"`
		} `xml:"daily_no"`
	}
	if err := xml.NewDecoder(resp.Body).Decode(&body); err != nil {
		return SendoutSnapshot{}, err
	}

	daily := body.Daily
	return SendoutSnapshot{
		At:       time.Unix(int64(daily.Date), 0).UTC(),
		VolumeM3: daily.Tank1 + daily.Tank2 + daily.Tank3 + daily.Tank4,
	}, nil
}

// Levels returns the second terminal's newest tank levels for a gas day.
// Each tank reports its own timeline; the newest sample per tank wins and
// the later of the two stamps the result.
func (c *Client) Levels(ctx context.Context, gasDay time.Time) (levels TankLevels, err error) {
	start := time.Now()
	defer func() {
		result := metrics.ResultSuccess
		if err != nil {
			result = metrics.ResultError
		}
		metrics.ObserveFeed("lng_levels", result, time.Since(start))
	}()

	payload, err := json.Marshal(map[string]string{
		"keyid":  c.levelsKey,
		"gasday": gasDay.Format("02/01/2006"),
	})
	if err != nil {
		return TankLevels{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.levelsURL, bytes.NewReader(payload))
	if err != nil {
		return TankLevels{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return TankLevels{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return TankLevels{}, fmt.Errorf("lngfeed: levels http %d", resp.StatusCode)
	}

	var records []struct {
		Description string  `json:"DESCRIPTION"`
		Date        string  `json:"DATE"`
		Value       float64 `json:"VALUE"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return TankLevels{}, err
	}

	var tank1At, tank2At time.Time
	for _, record := range records {
		at, err := time.Parse(levelStampLayout, record.Date)
		if err != nil {
			continue
		}
		switch record.Description {
		case "Level-Tank 1-mm.":
			if at.After(tank1At) {
				tank1At, levels.Tank1MM = at, record.Value
			}
		case "Level-Tank 2-mm.":
			if at.After(tank2At) {
				tank2At, levels.Tank2MM = at, record.Value
			}
		}
	}
	levels.At = tank1At
	if tank2At.After(levels.At) {
		levels.At = tank2At
	}
	if levels.At.IsZero() {
		return TankLevels{}, errors.New("lngfeed: no tank level records")
	}
	return levels, nil
}
