package application

import (
	"context"
	"errors"
	"log"
	"time"

	"energywatch/internal/breakdown"
	electric "energywatch/internal/electric/domain"
	"energywatch/internal/feeds/gridfeed"
	readings "energywatch/internal/readings/domain"
	"energywatch/internal/timeseries"
)

// profileInterval is the half-hour stride of the upstream day profiles.
const profileInterval = 30 * time.Minute

// GenerationFeed reads plant generation data from the grid operator.
type GenerationFeed interface {
	GenSnapshot(ctx context.Context, source int) ([]gridfeed.GenRecord, error)
	GenProfile(ctx context.Context, day time.Time, source int) ([]gridfeed.GenSeries, error)
}

// LoadFeed reads request-channel timelines from the grid operator.
type LoadFeed interface {
	RegionLoad(ctx context.Context, channel string, day time.Time) (gridfeed.RegionLoad, error)
}

// DirectCustomerFeed reads direct-customer draw totals.
type DirectCustomerFeed interface {
	DirectCustomerLatest(ctx context.Context) (gridfeed.DirectTotal, error)
	DirectCustomerRange(ctx context.Context, from, to time.Time) ([]gridfeed.DirectTotal, error)
}

// vsppChannels are the small-producer request channels folded into the vspp
// bucket, one per control region.
var vsppChannels = []string{
	gridfeed.ChannelVSPPCentral,
	gridfeed.ChannelVSPPNortheast,
	gridfeed.ChannelVSPPSouth,
	gridfeed.ChannelVSPPNorth,
	gridfeed.ChannelVSPPMetro,
}

// SupplySnapshot is the current generation broken down by plant bucket.
type SupplySnapshot struct {
	At    time.Time
	Items []breakdown.Item
}

// SupplyProfile is a set of aligned day series keyed by bucket.
type SupplyProfile struct {
	At     time.Time
	Series []timeseries.Series
}

// SupplyService aggregates generation across the scheduled feeds, the
// small-producer request channels and override submissions.
//
// Feed failures below the primary source degrade to a zero contribution and
// are logged; only the primary generation feed and series misalignment fail
// the whole request.
type SupplyService struct {
	generation GenerationFeed
	load       LoadFeed
	store      readings.Store
	logger     *log.Logger
	now        func() time.Time
}

// NewSupplyService constructs a supply service.
func NewSupplyService(generation GenerationFeed, load LoadFeed, store readings.Store, logger *log.Logger, opts ...SupplyOption) (*SupplyService, error) {
	if generation == nil || load == nil || store == nil {
		return nil, errors.New("supply service: nil collaborator")
	}
	s := &SupplyService{
		generation: generation,
		load:       load,
		store:      store,
		logger:     logger,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// SupplyOption configures the service.
type SupplyOption func(*SupplyService)

// WithSupplyClock overrides the wall clock, for tests.
func WithSupplyClock(now func() time.Time) SupplyOption {
	return func(s *SupplyService) {
		if now != nil {
			s.now = now
		}
	}
}

// CurrentSupply returns the latest half-hour generation per plant bucket.
func (s *SupplyService) CurrentSupply(ctx context.Context, source int, includeIPS bool) (SupplySnapshot, error) {
	records, err := s.generation.GenSnapshot(ctx, source)
	if err != nil {
		return SupplySnapshot{}, err
	}

	at := s.now()
	sums := map[string]float64{}
	for _, record := range records {
		bucket, ok := electric.ClassifyPlant(record.Label, record.PlantType)
		if !ok {
			s.logf("supply: %s (%s) skipped", record.Label, record.PlantType)
			continue
		}
		sums[bucket] += record.Value
		at = record.At
	}

	// Small producers are sampled off the request channels at the snapshot's
	// own minute of day.
	minute := at.Hour()*60 + at.Minute()
	vspp := 0.0
	for _, channel := range vsppChannels {
		load, err := s.load.RegionLoad(ctx, channel, at)
		if err != nil {
			s.logf("supply: channel %s unavailable: %v", channel, err)
			continue
		}
		if load.Empty() {
			continue
		}
		vspp += load.At(minute).Value
	}
	sums[electric.PlantVSPP] = vspp

	if includeIPS {
		value, err := s.store.LatestValue(ctx, "ips", at)
		switch {
		case errors.Is(err, readings.ErrNoData):
			// No submission covering this month yet.
		case err != nil:
			s.logf("supply: ips lookup failed: %v", err)
		default:
			sums[electric.PlantIPS] = value
		}
	}

	order := []string{electric.PlantEGAT, electric.PlantIPP, electric.PlantSPP,
		electric.PlantVSPP, electric.PlantIPS, electric.PlantImport}
	total := 0.0
	for _, bucket := range order {
		total += sums[bucket]
	}
	items := make([]breakdown.Item, 0, len(order)+1)
	items = append(items, breakdown.Item{Tag: breakdown.TotalTag, Value: breakdown.Round(total, 4)})
	for _, bucket := range order {
		items = append(items, breakdown.Item{Tag: bucket, Value: breakdown.Round(sums[bucket], 4)})
	}
	return SupplySnapshot{At: at, Items: items}, nil
}

// PlantProfile returns the day's half-hour generation series per plant
// bucket, with the small-producer channels and override submissions folded
// into the same grid.
func (s *SupplyService) PlantProfile(ctx context.Context, day time.Time, source int, includeIPS bool) (SupplyProfile, error) {
	profiles, err := s.generation.GenProfile(ctx, day, source)
	if err != nil {
		return SupplyProfile{}, err
	}

	grid := timeseries.NewDayGrid(day, profileInterval)
	buckets := map[string][]float64{}
	for _, profile := range profiles {
		bucket, ok := electric.ClassifyPlant(profile.Label, profile.PlantType)
		if !ok {
			s.logf("supply profile: %s (%s) skipped", profile.Label, profile.PlantType)
			continue
		}
		buckets[bucket] = accumulateSamples(buckets[bucket], profile.Samples)
	}

	aligned, total, err := timeseries.Align(grid, buckets)
	if err != nil {
		return SupplyProfile{}, err
	}

	vspp, err := s.vsppSeries(ctx, grid, day)
	if err != nil {
		return SupplyProfile{}, err
	}
	if vspp.Len() > 0 {
		if err := timeseries.AddInto(&total, vspp); err != nil {
			return SupplyProfile{}, err
		}
	}

	ips := timeseries.Series{Tag: electric.PlantIPS}
	if includeIPS {
		ips, err = s.overrideSeries(ctx, grid, "ips", &total)
		if err != nil {
			return SupplyProfile{}, err
		}
	}

	series := []timeseries.Series{total}
	for _, bucket := range []string{electric.PlantEGAT, electric.PlantIPP, electric.PlantSPP} {
		series = append(series, bucketSeries(aligned, bucket))
	}
	series = append(series, vspp, ips, bucketSeries(aligned, electric.PlantImport))
	return SupplyProfile{At: s.now(), Series: series}, nil
}

// FuelProfile returns the day's half-hour generation series per fuel bucket,
// with override submissions classified by their value tags.
func (s *SupplyService) FuelProfile(ctx context.Context, day time.Time, source int, includeIPS bool) (SupplyProfile, error) {
	profiles, err := s.generation.GenProfile(ctx, day, source)
	if err != nil {
		return SupplyProfile{}, err
	}

	grid := timeseries.NewDayGrid(day, profileInterval)
	fuels := map[string][]float64{}
	for _, profile := range profiles {
		fuel, ok := electric.ClassifyFuel(profile.Fuel)
		if !ok {
			s.logf("fuel profile: fuel %q skipped", profile.Fuel)
			continue
		}
		fuels[fuel] = accumulateSamples(fuels[fuel], profile.Samples)
	}

	aligned, _, err := timeseries.Align(grid, fuels)
	if err != nil {
		return SupplyProfile{}, err
	}

	order := []string{electric.FuelGas, electric.FuelCoal, electric.FuelOil,
		electric.FuelHydro, electric.FuelRenewable}
	out := make(map[string]*timeseries.Series, len(order))
	for _, fuel := range order {
		series := bucketSeries(aligned, fuel)
		if series.Len() == 0 {
			series = emptyGridSeries(grid, fuel)
		}
		copied := series
		out[fuel] = &copied
	}

	categories := []string{"vspp"}
	if includeIPS {
		categories = append(categories, "ips")
	}
	for _, category := range categories {
		tagged, err := s.store.ProfileByValueTag(ctx, category, grid.TimeAt(0), grid.TimeAt(grid.Size-1), profileInterval)
		if err != nil && !errors.Is(err, readings.ErrNoData) {
			s.logf("fuel profile: %s overrides unavailable: %v", category, err)
			continue
		}
		for _, point := range tagged {
			fuel, ok := electric.ClassifyOverrideTag(point.Tag)
			if !ok {
				continue
			}
			slot, err := gridSlot(grid, point.At)
			if err != nil {
				s.logf("fuel profile: %s sample at %s off grid", category, point.At)
				continue
			}
			if err := timeseries.AddAt(out[fuel], slot, point.Value); err != nil {
				return SupplyProfile{}, err
			}
		}
	}

	series := make([]timeseries.Series, 0, len(order))
	for _, fuel := range order {
		series = append(series, *out[fuel])
	}
	return SupplyProfile{At: s.now(), Series: series}, nil
}

// vsppSeries folds the five small-producer channels onto the profile grid.
// Unavailable channels contribute zero.
func (s *SupplyService) vsppSeries(ctx context.Context, grid timeseries.Grid, day time.Time) (timeseries.Series, error) {
	channels := map[string][]float64{}
	for _, channel := range vsppChannels {
		load, err := s.load.RegionLoad(ctx, channel, day)
		if err != nil {
			s.logf("supply profile: channel %s unavailable: %v", channel, err)
			channels[channel] = nil
			continue
		}
		channels[channel] = load.GridValues(30, grid.Size*30, 30)
	}
	_, total, err := timeseries.Align(grid, channels)
	if err != nil {
		return timeseries.Series{}, err
	}
	total.Tag = electric.PlantVSPP
	return total, nil
}

// overrideSeries builds an override category's grid series and accumulates it
// into the running total.
func (s *SupplyService) overrideSeries(ctx context.Context, grid timeseries.Grid, category string, total *timeseries.Series) (timeseries.Series, error) {
	series := emptyGridSeries(grid, category)
	points, err := s.store.Profile(ctx, category, grid.TimeAt(0), grid.TimeAt(grid.Size-1), grid.Interval)
	if err != nil {
		if errors.Is(err, readings.ErrNoData) {
			return series, nil
		}
		s.logf("supply profile: %s overrides unavailable: %v", category, err)
		return series, nil
	}
	for _, point := range points {
		slot, err := gridSlot(grid, point.At)
		if err != nil {
			s.logf("supply profile: %s sample at %s off grid", category, point.At)
			continue
		}
		if err := timeseries.AddAt(&series, slot, point.Value); err != nil {
			return timeseries.Series{}, err
		}
		if err := timeseries.AddAt(total, slot, point.Value); err != nil {
			return timeseries.Series{}, err
		}
	}
	return series, nil
}

// accumulateSamples adds src into dst elementwise, growing dst as needed.
func accumulateSamples(dst, src []float64) []float64 {
	if len(src) > len(dst) {
		grown := make([]float64, len(src))
		copy(grown, dst)
		dst = grown
	}
	for i, value := range src {
		dst[i] += value
	}
	return dst
}

// gridSlot maps a timestamp to its grid position.
func gridSlot(grid timeseries.Grid, at time.Time) (int, error) {
	offset := at.Sub(grid.Start)
	if offset < 0 || offset%grid.Interval != 0 {
		return 0, timeseries.ErrMisaligned
	}
	slot := int(offset / grid.Interval)
	if slot >= grid.Size {
		return 0, timeseries.ErrMisaligned
	}
	return slot, nil
}

func bucketSeries(aligned map[string]timeseries.Series, tag string) timeseries.Series {
	if series, ok := aligned[tag]; ok {
		return series
	}
	return timeseries.Series{Tag: tag}
}

func emptyGridSeries(grid timeseries.Grid, tag string) timeseries.Series {
	series := timeseries.Series{Tag: tag, Points: make([]timeseries.Point, grid.Size)}
	for i := range series.Points {
		series.Points[i] = timeseries.Point{At: grid.TimeAt(i)}
	}
	return series
}

func (s *SupplyService) logf(format string, args ...any) {
	if s.logger != nil {
		s.logger.Printf(format, args...)
	}
}
