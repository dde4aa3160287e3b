package application

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"energywatch/internal/breakdown"
	"energywatch/internal/feeds/gasfeed"
	"energywatch/internal/feeds/lngfeed"
	gas "energywatch/internal/gas/domain"
	"energywatch/internal/timeseries"
)

// eodReadHour is the local hour at which a gas day's closing values are read.
const eodReadHour = 17

// PointFeed reads metering point values from the pipeline historian.
type PointFeed interface {
	Latest(ctx context.Context, names []string) ([]gasfeed.PointValue, error)
	LatestBefore(ctx context.Context, names []string, before time.Time) ([]gasfeed.PointValue, error)
}

// TerminalFeed reads sendout and tank level reports from the LNG terminals.
type TerminalFeed interface {
	Sendout(ctx context.Context) (lngfeed.SendoutSnapshot, error)
	Levels(ctx context.Context, gasDay time.Time) (lngfeed.TankLevels, error)
}

// FlowSnapshot is a current flow total broken down by bucket with shares.
type FlowSnapshot struct {
	At    time.Time
	Items []breakdown.PercentItem
}

// InventorySnapshot is the terminals' current stored LNG against capacity.
type InventorySnapshot struct {
	At    time.Time
	Items []breakdown.MaxItem
}

// Service aggregates pipeline flows, terminal inventories and end-of-day
// values.
//
// Terminal feeds degrade to a zero contribution and a log line; the pipeline
// historian is the primary feed and fails the whole request.
type Service struct {
	points    PointFeed
	terminals TerminalFeed
	tanks     gas.TankStore
	eod       gas.EODStore
	logger    *log.Logger
	now       func() time.Time
}

// NewService constructs a gas service.
func NewService(points PointFeed, terminals TerminalFeed, tanks gas.TankStore, eod gas.EODStore, logger *log.Logger, opts ...Option) (*Service, error) {
	if points == nil || terminals == nil || tanks == nil || eod == nil {
		return nil, errors.New("gas service: nil collaborator")
	}
	s := &Service{
		points:    points,
		terminals: terminals,
		tanks:     tanks,
		eod:       eod,
		logger:    logger,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Option configures the service.
type Option func(*Service)

// WithClock overrides the wall clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// CurrentSupply returns the pipeline inflow per origin bucket in MMSCFD.
func (s *Service) CurrentSupply(ctx context.Context) (FlowSnapshot, error) {
	return s.flowSnapshot(ctx, gas.SupplyPointNames(), gas.SupplyOrder, gas.ClassifySupplyPoint)
}

// CurrentDemand returns the pipeline offtake per customer bucket in MMSCFD.
func (s *Service) CurrentDemand(ctx context.Context) (FlowSnapshot, error) {
	return s.flowSnapshot(ctx, gas.DemandPointNames(), gas.DemandOrder, gas.ClassifyDemandPoint)
}

func (s *Service) flowSnapshot(ctx context.Context, names, order []string, classify func(string) (string, bool)) (FlowSnapshot, error) {
	values, err := s.points.Latest(ctx, names)
	if err != nil {
		return FlowSnapshot{}, err
	}

	var at time.Time
	sums := map[string]float64{}
	for _, value := range values {
		bucket, ok := classify(value.Name)
		if !ok {
			s.logf("gas: point %s skipped", value.Name)
			continue
		}
		sums[bucket] += value.Value
		if value.At.After(at) {
			at = value.At
		}
	}
	if at.IsZero() {
		at = s.now()
	}

	items := make([]breakdown.Item, 0, len(order))
	for _, bucket := range order {
		items = append(items, breakdown.Item{Tag: bucket, Value: sums[bucket]})
	}
	return FlowSnapshot{At: at, Items: breakdown.New(items)}, nil
}

// CurrentLNGInventory returns stored LNG per terminal against capacity, and
// writes today's inventory figures through to the end-of-day store.
func (s *Service) CurrentLNGInventory(ctx context.Context) (InventorySnapshot, error) {
	now := s.now()
	at := now

	lmpt1 := 0.0
	sendout, err := s.terminals.Sendout(ctx)
	if err != nil {
		s.logf("gas inventory: first terminal unavailable: %v", err)
	} else {
		lmpt1 = sendout.VolumeM3
		at = sendout.At
	}

	lmpt2 := 0.0
	levels, levelsErr := s.terminals.Levels(ctx, now)
	if levelsErr != nil {
		s.logf("gas inventory: second terminal unavailable: %v", levelsErr)
	} else {
		lmpt2 = s.tankVolume(ctx, levels.Tank1MM, gas.Tank1) + s.tankVolume(ctx, levels.Tank2MM, gas.Tank2)
		if levels.At.After(at) {
			at = levels.At
		}
	}
	if err != nil && levelsErr != nil {
		return InventorySnapshot{}, errors.New("gas inventory: both terminals unavailable")
	}

	if err == nil {
		s.writeEOD(ctx, gas.TagLMPT1Invent, now, lmpt1)
	}
	if levelsErr == nil {
		s.writeEOD(ctx, gas.TagLMPT2Invent, now, lmpt2)
	}

	items := []breakdown.MaxItem{
		breakdown.NewMaxItem("lmpt1", lmpt1, gas.MaxInventLMPT1),
		breakdown.NewMaxItem("lmpt2", lmpt2, gas.MaxInventLMPT2),
		breakdown.NewMaxItem("gmpt", 0, gas.MaxInventGMPT),
	}
	return InventorySnapshot{At: at, Items: items}, nil
}

// EODSeries returns one measure's per-day series between two dates
// inclusive: the total first, then one series per terminal. Days without a
// stored value read as zero.
func (s *Service) EODSeries(ctx context.Context, measure string, from, to time.Time) ([]timeseries.Series, error) {
	tags, err := gas.MeasureTags(measure)
	if err != nil {
		return nil, err
	}
	from, to = day(from), day(to)
	if to.Before(from) {
		return nil, errors.New("gas: eod range ends before it starts")
	}
	days := int(to.Sub(from).Hours()/24) + 1

	total := timeseries.Series{Tag: breakdown.TotalTag, Points: make([]timeseries.Point, days)}
	for i := range total.Points {
		total.Points[i] = timeseries.Point{At: from.AddDate(0, 0, i)}
	}

	series := []timeseries.Series{total}
	for _, tag := range tags {
		values, err := s.eod.Range(ctx, tag, from, to)
		if err != nil {
			return nil, err
		}
		byDay := make(map[time.Time]float64, len(values))
		for _, value := range values {
			byDay[day(value.Date)] = value.Value
		}

		terminal := timeseries.Series{Tag: terminalTag(tag), Points: make([]timeseries.Point, days)}
		for i := range terminal.Points {
			at := from.AddDate(0, 0, i)
			terminal.Points[i] = timeseries.Point{At: at, Value: byDay[at]}
			series[0].Points[i].Value += byDay[at]
		}
		series = append(series, terminal)
	}
	return series, nil
}

// RefreshEOD re-reads closing values for the given number of past days,
// newest first, starting with yesterday. The sweep stops at the first day
// that fails and reports how many days it completed.
func (s *Service) RefreshEOD(ctx context.Context, daysBack int) (int, error) {
	if daysBack <= 0 {
		return 0, errors.New("gas: days back must be positive")
	}

	now := s.now()
	yesterday := day(now).AddDate(0, 0, -1)
	for i := 0; i < daysBack; i++ {
		gasDay := yesterday.AddDate(0, 0, -i)
		if err := s.refreshDay(ctx, gasDay, now); err != nil {
			return i, fmt.Errorf("gas: refresh %s: %w", gasDay.Format("2006-01-02"), err)
		}
	}
	return daysBack, nil
}

func (s *Service) refreshDay(ctx context.Context, gasDay, updatedAt time.Time) error {
	closing := gasDay.Add(eodReadHour * time.Hour)
	values, err := s.points.LatestBefore(ctx, gas.SendoutPointNames(), closing)
	if err != nil {
		return err
	}

	sums := map[string]float64{}
	for _, value := range values {
		tag, ok := gas.ClassifySendoutPoint(value.Name)
		if !ok {
			s.logf("gas eod: point %s skipped", value.Name)
			continue
		}
		sums[tag] += value.Value
	}
	for _, tag := range []string{gas.TagLMPT1Sendout, gas.TagLMPT2Sendout, gas.TagLMPT1Invent} {
		if err := s.eod.Upsert(ctx, gas.EODValue{Tag: tag, Date: gasDay, Value: sums[tag], UpdatedAt: updatedAt}); err != nil {
			return err
		}
	}

	levels, err := s.terminals.Levels(ctx, gasDay)
	if err != nil {
		return err
	}
	volume := s.tankVolume(ctx, levels.Tank1MM, gas.Tank1) + s.tankVolume(ctx, levels.Tank2MM, gas.Tank2)
	return s.eod.Upsert(ctx, gas.EODValue{Tag: gas.TagLMPT2Invent, Date: gasDay, Value: volume, UpdatedAt: updatedAt})
}

// tankVolume interpolates one tank's level against the strapping table.
// Levels outside the calibrated range count as zero.
func (s *Service) tankVolume(ctx context.Context, levelMM float64, tank int) float64 {
	if levelMM <= 0 {
		return 0
	}
	levelCM := gas.LevelMMToCM(levelMM)
	floor, ceil, err := s.tanks.Bracket(ctx, levelCM)
	if err != nil {
		s.logf("gas inventory: tank %d level %.1f cm: %v", tank, levelCM, err)
		return 0
	}
	volume, ok := gas.InterpolateVolume(levelCM, floor, ceil, tank)
	if !ok {
		s.logf("gas inventory: tank %d has no volume at %.1f cm", tank, levelCM)
		return 0
	}
	return volume
}

func (s *Service) writeEOD(ctx context.Context, tag string, date time.Time, value float64) {
	err := s.eod.Upsert(ctx, gas.EODValue{Tag: tag, Date: date, Value: value, UpdatedAt: s.now()})
	if err != nil {
		s.logf("gas inventory: eod write-through %s failed: %v", tag, err)
	}
}

func terminalTag(tag string) string {
	switch tag {
	case gas.TagLMPT1Sendout, gas.TagLMPT1Invent:
		return "lmpt1"
	case gas.TagLMPT2Sendout, gas.TagLMPT2Invent:
		return "lmpt2"
	default:
		return tag
	}
}

func day(at time.Time) time.Time {
	return time.Date(at.Year(), at.Month(), at.Day(), 0, 0, 0, 0, at.Location())
}

func (s *Service) logf(format string, args ...any) {
	if s.logger != nil {
		s.logger.Printf(format, args...)
	}
}
