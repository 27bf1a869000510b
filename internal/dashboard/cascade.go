// Package dashboard holds the client-side view state: the bus selector
// cascade, the train arrivals poller and the fixed station table.
//
// Every asynchronous fetch is tagged with the generation of the level it
// fills. A result is applied only while that generation is current, so the
// most recent selection always wins regardless of completion order.
package dashboard

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/randytsao24/transitdash/internal/models"
)

// ErrNoParentSelection is returned when a level is chosen before its parent
var ErrNoParentSelection = errors.New("parent selection is empty")

// BusSource fetches the data behind each cascade level
type BusSource interface {
	Routes(ctx context.Context) ([]models.Route, error)
	Directions(ctx context.Context, route string) ([]models.Direction, error)
	Stops(ctx context.Context, route, direction string) ([]models.Stop, error)
	Predictions(ctx context.Context, route, stopID string) ([]models.Prediction, error)
}

// LevelKind identifies a cascade level
type LevelKind int

const (
	LevelRoutes LevelKind = iota
	LevelDirections
	LevelStops
	LevelPredictions
	levelCount
)

func (k LevelKind) String() string {
	switch k {
	case LevelRoutes:
		return "routes"
	case LevelDirections:
		return "directions"
	case LevelStops:
		return "stops"
	case LevelPredictions:
		return "predictions"
	default:
		return "unknown"
	}
}

// Level is the state of one cascade level. Value is the selection made
// from Options; for predictions it is the stop the list belongs to.
type Level[T any] struct {
	Value   string
	Options []T
	Loading bool

	generation uint64
}

func (l Level[T]) clone() Level[T] {
	l.Options = slices.Clone(l.Options)
	return l
}

// BusSnapshot is a copy of the cascade state safe to read without locks
type BusSnapshot struct {
	Routes      Level[models.Route]
	Directions  Level[models.Direction]
	Stops       Level[models.Stop]
	Predictions Level[models.Prediction]

	// Err is shared by all levels; the last failure wins
	Err string
}

// Visible reports whether a level's selector should be shown
func (s BusSnapshot) Visible(level LevelKind) bool {
	switch level {
	case LevelRoutes:
		return true
	case LevelDirections:
		return s.Routes.Value != ""
	case LevelStops:
		return s.Directions.Value != ""
	case LevelPredictions:
		return s.Stops.Value != ""
	default:
		return false
	}
}

// Placeholder returns the prompt shown for a level's selector, telling
// loading, empty and ready apart
func (s BusSnapshot) Placeholder(level LevelKind) string {
	var loading bool
	var count int
	switch level {
	case LevelRoutes:
		loading, count = s.Routes.Loading, len(s.Routes.Options)
	case LevelDirections:
		loading, count = s.Directions.Loading, len(s.Directions.Options)
	case LevelStops:
		loading, count = s.Stops.Loading, len(s.Stops.Options)
	case LevelPredictions:
		switch {
		case s.Predictions.Loading:
			return "Loading predictions..."
		case s.Stops.Value != "" && len(s.Predictions.Options) == 0:
			return "No bus predictions available for this stop at the moment."
		default:
			return ""
		}
	default:
		return ""
	}

	noun := level.String()
	switch {
	case loading:
		return "Loading " + noun + "..."
	case count == 0:
		return "No " + noun + " available"
	default:
		return "Select a " + noun[:len(noun)-1]
	}
}

// BusCascade is the route → direction → stop → predictions selector.
// Choosing a value at one level synchronously clears every deeper level
// before the next fetch is issued. It is safe for concurrent use.
type BusCascade struct {
	source BusSource

	mu      sync.Mutex
	base    context.Context
	state   BusSnapshot
	cancels [levelCount]context.CancelFunc

	notifyMu  sync.Mutex
	observers []func(BusSnapshot)

	inflight sync.WaitGroup
}

// NewBusCascade creates an idle cascade
func NewBusCascade(source BusSource) *BusCascade {
	return &BusCascade{source: source, base: context.Background()}
}

// Subscribe registers fn to receive a snapshot after every state change.
// Snapshots are delivered in order; fn must not call back into the cascade.
func (c *BusCascade) Subscribe(fn func(BusSnapshot)) {
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()
	c.observers = append(c.observers, fn)
}

// Snapshot returns a copy of the current state
func (c *BusCascade) Snapshot() BusSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Wait blocks until every fetch launched so far has finished
func (c *BusCascade) Wait() {
	c.inflight.Wait()
}

// Start binds the cascade to ctx and loads the route list
func (c *BusCascade) Start(ctx context.Context) {
	c.mu.Lock()
	c.base = ctx
	c.state.Err = ""
	fetchCtx, gen := begin(c, &c.state.Routes, LevelRoutes)
	c.commit()

	run(c, &c.state.Routes, gen, func() ([]models.Route, error) {
		return c.source.Routes(fetchCtx)
	})
}

// SelectRoute chooses a route and loads its directions. An empty route
// clears the selection.
func (c *BusCascade) SelectRoute(route string) {
	c.mu.Lock()
	c.state.Err = ""
	c.state.Routes.Value = route
	clearLevel(c, &c.state.Directions, LevelDirections)
	clearLevel(c, &c.state.Stops, LevelStops)
	clearLevel(c, &c.state.Predictions, LevelPredictions)

	if route == "" {
		c.commit()
		return
	}

	fetchCtx, gen := begin(c, &c.state.Directions, LevelDirections)
	c.commit()

	run(c, &c.state.Directions, gen, func() ([]models.Direction, error) {
		return c.source.Directions(fetchCtx, route)
	})
}

// SelectDirection chooses a direction and loads the stops for the current
// route in that direction
func (c *BusCascade) SelectDirection(direction string) error {
	c.mu.Lock()
	route := c.state.Routes.Value
	if route == "" {
		c.mu.Unlock()
		return ErrNoParentSelection
	}

	c.state.Err = ""
	c.state.Directions.Value = direction
	clearLevel(c, &c.state.Stops, LevelStops)
	clearLevel(c, &c.state.Predictions, LevelPredictions)

	if direction == "" {
		c.commit()
		return nil
	}

	fetchCtx, gen := begin(c, &c.state.Stops, LevelStops)
	c.commit()

	run(c, &c.state.Stops, gen, func() ([]models.Stop, error) {
		return c.source.Stops(fetchCtx, route, direction)
	})
	return nil
}

// SelectStop chooses a stop and loads its predictions
func (c *BusCascade) SelectStop(stopID string) error {
	c.mu.Lock()
	if c.state.Directions.Value == "" {
		c.mu.Unlock()
		return ErrNoParentSelection
	}

	c.state.Err = ""
	c.state.Stops.Value = stopID
	clearLevel(c, &c.state.Predictions, LevelPredictions)

	if stopID == "" {
		c.commit()
		return nil
	}

	c.fetchPredictionsLocked()
	return nil
}

// Refresh re-fetches predictions for the current stop, keeping the
// current list on screen until the new one arrives
func (c *BusCascade) Refresh() error {
	c.mu.Lock()
	if c.state.Stops.Value == "" {
		c.mu.Unlock()
		return ErrNoParentSelection
	}
	c.state.Err = ""
	c.fetchPredictionsLocked()
	return nil
}

// Reset clears every selection back to idle. The loaded route list is kept.
func (c *BusCascade) Reset() {
	c.mu.Lock()
	c.state.Err = ""
	c.state.Routes.Value = ""
	clearLevel(c, &c.state.Directions, LevelDirections)
	clearLevel(c, &c.state.Stops, LevelStops)
	clearLevel(c, &c.state.Predictions, LevelPredictions)
	c.commit()
}

// Close cancels in-flight fetches and waits for them to return
func (c *BusCascade) Close() {
	c.mu.Lock()
	for i, cancel := range c.cancels {
		if cancel != nil {
			cancel()
			c.cancels[i] = nil
		}
	}
	c.mu.Unlock()
	c.inflight.Wait()
}

// fetchPredictionsLocked must be called with c.mu held; it releases it
func (c *BusCascade) fetchPredictionsLocked() {
	route := c.state.Routes.Value
	stopID := c.state.Stops.Value
	keep := c.state.Predictions.Options
	if c.state.Predictions.Value != stopID {
		keep = nil
	}

	fetchCtx, gen := begin(c, &c.state.Predictions, LevelPredictions)
	c.state.Predictions.Value = stopID
	c.state.Predictions.Options = keep
	c.commit()

	run(c, &c.state.Predictions, gen, func() ([]models.Prediction, error) {
		return c.source.Predictions(fetchCtx, route, stopID)
	})
}

// commit releases c.mu and delivers the new state to observers in order
func (c *BusCascade) commit() {
	snap := c.snapshotLocked()
	c.notifyMu.Lock()
	c.mu.Unlock()
	defer c.notifyMu.Unlock()

	for _, fn := range c.observers {
		fn(snap)
	}
}

func (c *BusCascade) snapshotLocked() BusSnapshot {
	return BusSnapshot{
		Routes:      c.state.Routes.clone(),
		Directions:  c.state.Directions.clone(),
		Stops:       c.state.Stops.clone(),
		Predictions: c.state.Predictions.clone(),
		Err:         c.state.Err,
	}
}

// clearLevel supersedes any fetch for the level and empties it.
// c.mu must be held.
func clearLevel[T any](c *BusCascade, lvl *Level[T], kind LevelKind) {
	if cancel := c.cancels[kind]; cancel != nil {
		cancel()
		c.cancels[kind] = nil
	}
	lvl.generation++
	lvl.Value = ""
	lvl.Options = nil
	lvl.Loading = false
}

// begin supersedes any fetch for the level and marks it loading. It
// returns the context and generation for the new fetch. c.mu must be held.
func begin[T any](c *BusCascade, lvl *Level[T], kind LevelKind) (context.Context, uint64) {
	if cancel := c.cancels[kind]; cancel != nil {
		cancel()
	}
	ctx, cancel := context.WithCancel(c.base)
	c.cancels[kind] = cancel

	lvl.generation++
	lvl.Options = nil
	lvl.Loading = true
	return ctx, lvl.generation
}

// run performs fetch in the background and applies its result only if the
// level is still on generation gen
func run[T any](c *BusCascade, lvl *Level[T], gen uint64, fetch func() ([]T, error)) {
	c.inflight.Add(1)
	go func() {
		defer c.inflight.Done()

		options, err := fetch()

		c.mu.Lock()
		if lvl.generation != gen {
			c.mu.Unlock()
			return
		}
		lvl.Loading = false
		if err != nil {
			lvl.Options = nil
			c.state.Err = err.Error()
		} else {
			lvl.Options = options
		}
		c.commit()
	}()
}
