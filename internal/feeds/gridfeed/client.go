package gridfeed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"energywatch/internal/observability/metrics"
)

// halfHourColumns are the upstream profile column names in timeline order.
// Column i carries the value for midnight + (i+1) half-hours; F0 is the
// closing midnight of the requested day.
var halfHourColumns = []string{
	"F0H", "F1", "F1H", "F2", "F2H", "F3", "F3H", "F4", "F4H", "F5",
	"F5H", "F6", "F6H", "F7", "F7H", "F8", "F8H", "F9", "F9H", "F10",
	"F10H", "F11", "F11H", "F12", "F12H", "F13", "F13H", "F14", "F14H",
	"F15", "F15H", "F16", "F16H", "F17", "F17H", "F18", "F18H", "F19",
	"F19H", "F20", "F20H", "F21", "F21H", "F22", "F22H", "F23", "F23H",
	"F0",
}

// ProfileSlots is the number of half-hour slots in a full day profile.
var ProfileSlots = len(halfHourColumns)

// Generation snapshot sources. Sources 1 and 2 read the half-hourly plant
// tables; source 3 reads the by-time table and reports company types instead
// of plant types.
const (
	SourcePlant   = 1
	SourceTieLine = 2
	SourceByTime  = 3
)

const tokenTTL = 5 * time.Minute

// Client reads generation and request-channel data from the grid operator's
// statistics API. The stat endpoints authenticate with a short-lived token
// obtained via basic auth; the load endpoint is unauthenticated.
type Client struct {
	statURL  string
	loadURL  string
	user     string
	password string
	channels *ChannelMap
	client   *http.Client
	now      func() time.Time

	mu         sync.Mutex
	token      string
	tokenUntil time.Time
}

// NewClient constructs a grid feed client.
func NewClient(statURL, loadURL, user, password string, channels *ChannelMap, opts ...ClientOption) (*Client, error) {
	if statURL == "" || loadURL == "" {
		return nil, errors.New("gridfeed: empty base url")
	}
	if channels == nil {
		channels = DefaultChannelMap()
	}
	c := &Client{
		statURL:  strings.TrimRight(statURL, "/"),
		loadURL:  strings.TrimRight(loadURL, "/"),
		user:     user,
		password: password,
		channels: channels,
		client:   &http.Client{Timeout: 15 * time.Second},
		now:      time.Now,
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

// WithNow overrides the wall clock, for tests.
func WithNow(now func() time.Time) ClientOption {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}

// GenSnapshot returns every plant's generation value at the latest closed
// half-hour mark, decoded and ready for classification. Placeholder rows
// with no type are dropped at this boundary.
func (c *Client) GenSnapshot(ctx context.Context, source int) ([]GenRecord, error) {
	switch source {
	case SourcePlant, SourceTieLine:
		return c.genSnapshotHalfHour(ctx, source)
	case SourceByTime:
		return c.genSnapshotByTime(ctx)
	default:
		return nil, fmt.Errorf("gridfeed: unknown snapshot source %d", source)
	}
}

func (c *Client) genSnapshotHalfHour(ctx context.Context, source int) ([]GenRecord, error) {
	mark := lastClosedHalfHour(c.now())
	// The closing midnight value lives in the previous day's F0 column.
	column := mark
	if mark.Hour() == 0 && mark.Minute() == 0 {
		column = mark.AddDate(0, 0, -1)
	}

	rows, err := c.fetchGenRows(ctx, source, column)
	if err != nil {
		return nil, err
	}

	columnName := fmt.Sprintf("F%d", column.Hour())
	if column.Minute() == 30 {
		columnName += "H"
	}

	records := make([]GenRecord, 0, len(rows))
	for _, row := range rows {
		label, _ := row["MEANAME"].(string)
		plantType := rowType(row, source)
		if plantType == "" {
			continue
		}
		records = append(records, GenRecord{
			Label:     label,
			PlantType: plantType,
			Value:     asFloat(row[columnName]),
			At:        mark,
		})
	}
	return records, nil
}

// genSnapshotByTime walks back half-hour marks until the by-time table has
// rows; the latest mark may not be published yet.
func (c *Client) genSnapshotByTime(ctx context.Context) ([]GenRecord, error) {
	mark := lastClosedHalfHour(c.now())
	for attempt := 0; attempt < 5; attempt++ {
		header, err := c.tokenHeader(ctx)
		if err != nil {
			return nil, err
		}
		header.Set("dt", mark.Format("02/01/2006 15:04"))

		var resp struct {
			Data struct {
				Rows []map[string]any `json:"MwPlantByTime"`
			} `json:"data"`
		}
		if err := c.getJSON(ctx, c.statURL+"/api/StatDataApi/GetMwPlantByTime", header, &resp); err != nil {
			return nil, err
		}
		if len(resp.Data.Rows) == 0 {
			mark = mark.Add(-30 * time.Minute)
			continue
		}

		records := make([]GenRecord, 0, len(resp.Data.Rows))
		for _, row := range resp.Data.Rows {
			companyType, _ := row["COMPANYTYPE"].(string)
			if companyType == "" {
				continue
			}
			at := mark
			if stamp, ok := row["TIMESTAMP"].(string); ok {
				if parsed, err := time.Parse("2006-01-02T15:04:05", stamp); err == nil {
					at = parsed
				}
			}
			label, _ := row["MEANAME"].(string)
			records = append(records, GenRecord{
				Label:     label,
				PlantType: companyType,
				Value:     asFloat(row["VALUE"]),
				At:        at,
			})
		}
		return records, nil
	}
	return nil, errors.New("gridfeed: no by-time rows in the last five half-hours")
}

// GenProfile returns every plant's full-day half-hour profile for the given
// day, with fuel labels preserved for fuel-bucket folds.
func (c *Client) GenProfile(ctx context.Context, day time.Time, source int) ([]GenSeries, error) {
	if source != SourcePlant && source != SourceTieLine {
		return nil, fmt.Errorf("gridfeed: unknown profile source %d", source)
	}
	rows, err := c.fetchGenRows(ctx, source, day)
	if err != nil {
		return nil, err
	}

	profiles := make([]GenSeries, 0, len(rows))
	for _, row := range rows {
		label, _ := row["MEANAME"].(string)
		plantType := rowType(row, source)
		if plantType == "" {
			continue
		}
		fuel, _ := row["FUEL"].(string)
		samples := make([]float64, len(halfHourColumns))
		for i, column := range halfHourColumns {
			samples[i] = asFloat(row[column])
		}
		profiles = append(profiles, GenSeries{
			Label:     label,
			PlantType: plantType,
			Fuel:      fuel,
			Samples:   samples,
		})
	}
	return profiles, nil
}

func (c *Client) fetchGenRows(ctx context.Context, source int, day time.Time) ([]map[string]any, error) {
	header, err := c.tokenHeader(ctx)
	if err != nil {
		return nil, err
	}
	header.Set("dd", day.Format("02/01/2006"))

	path := "/api/StatDataApi/GetGenMWData"
	if source == SourceTieLine {
		path = "/api/StatDataApi/GetGenMWDataPlantAndTieLine"
	}
	var resp struct {
		Data []map[string]any `json:"data"`
	}
	if err := c.getJSON(ctx, c.statURL+path, header, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// rowType extracts the plant type column for the given source; rows without
// one are placeholders.
func rowType(row map[string]any, source int) string {
	key := "PLANTTYPE"
	if source == SourceTieLine {
		key = "TYPE"
	}
	plantType, _ := row[key].(string)
	return plantType
}

// RegionLoad returns one named request channel's per-minute timeline for a
// day.
func (c *Client) RegionLoad(ctx context.Context, channel string, day time.Time) (RegionLoad, error) {
	index, err := c.channels.Index(channel)
	if err != nil {
		return RegionLoad{}, err
	}

	query := url.Values{}
	query.Set("index", fmt.Sprintf("%d", index))
	query.Set("day", day.Format("02-01-2006"))

	var resp struct {
		Day  string      `json:"day"`
		List [][]float64 `json:"list"`
	}
	if err := c.getJSON(ctx, c.loadURL+"/ws/sysgen/actual?"+query.Encode(), nil, &resp); err != nil {
		return RegionLoad{}, fmt.Errorf("gridfeed: channel %s: %w", channel, err)
	}

	timelineDay := day
	if parsed, err := time.Parse("02-01-2006", resp.Day); err == nil {
		timelineDay = parsed
	}
	load := RegionLoad{Day: timelineDay, Samples: make([]Sample, 0, len(resp.List))}
	for _, pair := range resp.List {
		if len(pair) < 2 {
			continue
		}
		load.Samples = append(load.Samples, Sample{
			Offset: time.Duration(pair[0]) * time.Second,
			Value:  pair[len(pair)-1],
		})
	}
	return load, nil
}

// DirectCustomerLatest returns today's direct-customer draw summed over the
// rows sharing the latest reported timestamp. No rows yet is not an error;
// the draw is zero before the first report of the day.
func (c *Client) DirectCustomerLatest(ctx context.Context) (DirectTotal, error) {
	today := c.now()
	totals, err := c.DirectCustomerRange(ctx, today, today)
	if err != nil {
		return DirectTotal{}, err
	}
	if len(totals) == 0 {
		return DirectTotal{}, nil
	}
	return totals[len(totals)-1], nil
}

// DirectCustomerRange returns direct-customer draws between two days
// inclusive, summed per timestamp and ordered chronologically.
func (c *Client) DirectCustomerRange(ctx context.Context, from, to time.Time) ([]DirectTotal, error) {
	header, err := c.tokenHeader(ctx)
	if err != nil {
		return nil, err
	}
	header.Set("st", from.Format("02-01-2006"))
	header.Set("en", to.Format("02-01-2006"))

	var resp struct {
		Data struct {
			Rows []struct {
				Timestamp string  `json:"TIMESTAMP"`
				Value     float64 `json:"VALUE"`
			} `json:"directcus"`
		} `json:"data"`
	}
	if err := c.getJSON(ctx, c.statURL+"/api/StatDataApi/GetDirectCustomerVal", header, &resp); err != nil {
		return nil, err
	}

	totals := make([]DirectTotal, 0, len(resp.Data.Rows))
	index := make(map[string]int, len(resp.Data.Rows))
	for _, row := range resp.Data.Rows {
		at, err := time.Parse("2006-01-02T15:04:05", row.Timestamp)
		if err != nil {
			continue
		}
		if i, seen := index[row.Timestamp]; seen {
			totals[i].Value += row.Value
			continue
		}
		index[row.Timestamp] = len(totals)
		totals = append(totals, DirectTotal{At: at, Value: row.Value})
	}
	return totals, nil
}

// lastClosedHalfHour floors to the previous completed half-hour mark.
func lastClosedHalfHour(now time.Time) time.Time {
	mark := now.Truncate(time.Minute)
	if mark.Minute() > 30 {
		mark = time.Date(mark.Year(), mark.Month(), mark.Day(), mark.Hour(), 30, 0, 0, mark.Location())
	} else {
		mark = time.Date(mark.Year(), mark.Month(), mark.Day(), mark.Hour(), 0, 0, 0, mark.Location())
	}
	return mark.Add(-30 * time.Minute)
}

func (c *Client) tokenHeader(ctx context.Context) (http.Header, error) {
	token, err := c.accessToken(ctx)
	if err != nil {
		return nil, err
	}
	header := http.Header{}
	header.Set("Accept", "*/*")
	header.Set("token", token)
	return header, nil
}

func (c *Client) accessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token != "" && c.now().Before(c.tokenUntil) {
		return c.token, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.statURL+"/api/LoginApi/GetToken", nil)
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(c.user, c.password)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("gridfeed: token http %d", resp.StatusCode)
	}

	var body struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", err
	}
	if body.AccessToken == "" {
		return "", errors.New("gridfeed: empty access token")
	}
	c.token = body.AccessToken
	c.tokenUntil = c.now().Add(tokenTTL)
	return c.token, nil
}

func (c *Client) getJSON(ctx context.Context, rawURL string, header http.Header, out any) (err error) {
	start := time.Now()
	defer func() {
		result := metrics.ResultSuccess
		if err != nil {
			result = metrics.ResultError
		}
		metrics.ObserveFeed("grid", result, time.Since(start))
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	for key, values := range header {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("gridfeed: http %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// asFloat coerces an upstream cell to a number; nulls and non-numeric cells
// count as zero.
func asFloat(value any) float64 {
	switch v := value.(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case json.Number:
		f, _ := v.Float64()
		return f
	default:
		return 0
	}
}
