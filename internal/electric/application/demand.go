package application

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"energywatch/internal/breakdown"
	"energywatch/internal/feeds/gridfeed"
	readings "energywatch/internal/readings/domain"
	"energywatch/internal/timeseries"
)

// demandPeakType tags demand records in the peak store.
const demandPeakType = "demand"

// PeakTracker records demand maxima. Observe applies an incremental sample;
// Commit stores a recomputed whole-day maximum.
type PeakTracker interface {
	Observe(ctx context.Context, peakType string, at time.Time, value float64) error
	Commit(ctx context.Context, peakType string, at time.Time, value float64) error
}

// regionChannels are the distribution-side request channels summed into the
// mea/pea split.
var (
	peaChannels     = []string{gridfeed.ChannelCentral, gridfeed.ChannelNortheast, gridfeed.ChannelSouth, gridfeed.ChannelNorth}
	peaVSPPChannels = []string{gridfeed.ChannelVSPPCentral, gridfeed.ChannelVSPPNortheast, gridfeed.ChannelVSPPSouth, gridfeed.ChannelVSPPNorth}
	exportChannels  = []string{gridfeed.ChannelExportEDL, gridfeed.ChannelExportTNP}
)

// demandProfileChannels are every channel folded into the demand timeline.
var demandProfileChannels = []string{
	gridfeed.ChannelCentral, gridfeed.ChannelNortheast, gridfeed.ChannelSouth,
	gridfeed.ChannelNorth, gridfeed.ChannelMetro,
	gridfeed.ChannelExportEDL, gridfeed.ChannelExportTNP,
	gridfeed.ChannelVSPPMetro,
	gridfeed.ChannelVSPPCentral, gridfeed.ChannelVSPPNortheast,
	gridfeed.ChannelVSPPSouth, gridfeed.ChannelVSPPNorth,
}

// DemandSnapshot is the current draw broken down by offtaker with percent
// shares.
type DemandSnapshot struct {
	At    time.Time
	Items []breakdown.PercentItem
}

// DemandService aggregates system draw across the request channels, the
// direct customers and override submissions, and keeps the demand peak
// record current.
type DemandService struct {
	load   LoadFeed
	direct DirectCustomerFeed
	store  readings.Store
	peaks  PeakTracker
	logger *log.Logger
	now    func() time.Time
}

// NewDemandService constructs a demand service.
func NewDemandService(load LoadFeed, direct DirectCustomerFeed, store readings.Store, peaks PeakTracker, logger *log.Logger, opts ...DemandOption) (*DemandService, error) {
	if load == nil || direct == nil || store == nil || peaks == nil {
		return nil, errors.New("demand service: nil collaborator")
	}
	s := &DemandService{
		load:   load,
		direct: direct,
		store:  store,
		peaks:  peaks,
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// DemandOption configures the service.
type DemandOption func(*DemandService)

// WithDemandClock overrides the wall clock, for tests.
func WithDemandClock(now func() time.Time) DemandOption {
	return func(s *DemandService) {
		if now != nil {
			s.now = now
		}
	}
}

// CurrentDemand returns the latest draw split across direct customers, the
// two distribution utilities and exports. Unless override submissions are
// mixed in, the total is also pushed through the peak tracker.
func (s *DemandService) CurrentDemand(ctx context.Context, includeIPS bool) (DemandSnapshot, error) {
	today := s.now()
	loads, dataAt, err := s.fetchChannels(ctx, today, demandProfileChannels)
	if err != nil {
		return DemandSnapshot{}, err
	}

	lastOf := func(channel string) float64 {
		sample, ok := loads[channel].Last()
		if !ok {
			return 0
		}
		return sample.Value
	}

	mea := lastOf(gridfeed.ChannelMetro) + lastOf(gridfeed.ChannelVSPPMetro)
	pea := 0.0
	for _, channel := range peaChannels {
		pea += lastOf(channel)
	}
	for _, channel := range peaVSPPChannels {
		pea += lastOf(channel)
	}
	export := 0.0
	for _, channel := range exportChannels {
		export += lastOf(channel)
	}

	if includeIPS {
		byZone, err := s.store.LatestValueByZone(ctx, "ips", dataAt)
		if err != nil && !errors.Is(err, readings.ErrNoData) {
			s.logf("demand: ips lookup failed: %v", err)
		}
		for zone, value := range byZone {
			// Blank zone means inside the metropolitan service area.
			if zone == "" {
				mea += value
			} else {
				pea += value
			}
		}
	}

	egat := 0.0
	if direct, err := s.direct.DirectCustomerLatest(ctx); err != nil {
		s.logf("demand: direct customer unavailable: %v", err)
	} else {
		egat = direct.Value
	}

	items := breakdown.New([]breakdown.Item{
		{Tag: "egat", Value: egat},
		{Tag: "mea", Value: mea},
		{Tag: "pea", Value: pea},
		{Tag: "export", Value: export},
	})

	if !includeIPS {
		if err := s.peaks.Observe(ctx, demandPeakType, dataAt, items[0].Value); err != nil {
			s.logf("demand: peak observe failed: %v", err)
		}
	}
	return DemandSnapshot{At: dataAt, Items: items}, nil
}

// DemandProfile folds every request channel plus the direct-customer draw
// into one per-minute timeline for the day. With updatePeak set, the day's
// maximum replaces the stored peak record; ties resolve to the latest
// occurrence.
func (s *DemandService) DemandProfile(ctx context.Context, day time.Time, updatePeak bool) (timeseries.Series, error) {
	loads, _, err := s.fetchChannels(ctx, day, demandProfileChannels)
	if err != nil {
		return timeseries.Series{}, err
	}

	// The longest timeline drives the fold; shorter channels clamp to their
	// last reported sample.
	var base gridfeed.RegionLoad
	for _, channel := range demandProfileChannels {
		if loads[channel].Len() > base.Len() {
			base = loads[channel]
		}
	}
	if base.Empty() {
		return timeseries.Series{}, fmt.Errorf("demand profile: no channel data for %s", day.Format("2006-01-02"))
	}

	directTotals, err := s.direct.DirectCustomerRange(ctx, day, day)
	if err != nil {
		s.logf("demand profile: direct customer unavailable: %v", err)
	}

	series := timeseries.Series{Tag: "actual", Points: make([]timeseries.Point, 0, base.Len())}
	directValue := 0.0
	directIdx := 0
	peakValue := 0.0
	peakAt := base.TimeOf(gridfeed.Sample{})

	for i, sample := range base.Samples {
		at := base.TimeOf(sample)

		// Direct-customer reports land on the half-hour; carry the latest
		// one forward across the minutes in between.
		for directIdx < len(directTotals) && !directTotals[directIdx].At.After(at) {
			directValue = directTotals[directIdx].Value
			directIdx++
		}

		value := directValue
		for _, channel := range demandProfileChannels {
			load := loads[channel]
			if load.Empty() {
				continue
			}
			value += load.At(i).Value
		}
		value = breakdown.Round(value, 4)

		if value >= peakValue {
			peakValue = value
			peakAt = at
		}
		series.Points = append(series.Points, timeseries.Point{At: at, Value: value})
	}

	if updatePeak {
		if err := s.peaks.Commit(ctx, demandPeakType, peakAt, peakValue); err != nil {
			return timeseries.Series{}, err
		}
	}
	return series, nil
}

// RecomputeDay rebuilds the day's peak from the full demand profile. It
// backs the peak tracker's missing-day fallback.
func (s *DemandService) RecomputeDay(ctx context.Context, peakType string, day time.Time) error {
	if peakType != demandPeakType {
		return fmt.Errorf("demand service: cannot recompute peak type %q", peakType)
	}
	_, err := s.DemandProfile(ctx, day, true)
	return err
}

// fetchChannels loads every named channel timeline for the day. Individual
// channel failures degrade to an empty timeline; the call fails only when no
// channel responds. The returned timestamp is the latest instant any channel
// reported.
func (s *DemandService) fetchChannels(ctx context.Context, day time.Time, channels []string) (map[string]gridfeed.RegionLoad, time.Time, error) {
	loads := make(map[string]gridfeed.RegionLoad, len(channels))
	var dataAt time.Time
	ok := false
	for _, channel := range channels {
		load, err := s.load.RegionLoad(ctx, channel, day)
		if err != nil {
			s.logf("demand: channel %s unavailable: %v", channel, err)
			loads[channel] = gridfeed.RegionLoad{}
			continue
		}
		loads[channel] = load
		if last, exists := load.Last(); exists {
			ok = true
			if at := load.TimeOf(last); at.After(dataAt) {
				dataAt = at
			}
		}
	}
	if !ok {
		return nil, time.Time{}, fmt.Errorf("demand: no channel data for %s", day.Format("2006-01-02"))
	}
	return loads, dataAt, nil
}

func (s *DemandService) logf(format string, args ...any) {
	if s.logger != nil {
		s.logger.Printf(format, args...)
	}
}
