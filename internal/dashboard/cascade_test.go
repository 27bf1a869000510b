package dashboard

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randytsao24/transitdash/internal/models"
)

// fakeBus answers every level from the selection that asked for it. Calls
// whose key has a gate block until the gate is closed, ignoring ctx, so
// the generation guard is what keeps stale results out.
type fakeBus struct {
	mu    sync.Mutex
	gates map[string]chan struct{}
	errs  map[string]error
	calls []string
}

func newFakeBus() *fakeBus {
	return &fakeBus{gates: map[string]chan struct{}{}, errs: map[string]error{}}
}

func (f *fakeBus) hold(key string) chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch := make(chan struct{})
	f.gates[key] = ch
	return ch
}

func (f *fakeBus) fail(key string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errs[key] = err
}

func (f *fakeBus) enter(key string) error {
	f.mu.Lock()
	f.calls = append(f.calls, key)
	gate := f.gates[key]
	err := f.errs[key]
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}
	return err
}

func (f *fakeBus) Routes(ctx context.Context) ([]models.Route, error) {
	if err := f.enter("routes"); err != nil {
		return nil, err
	}
	return []models.Route{{Code: "22", Name: "Clark"}, {Code: "36", Name: "Broadway"}}, nil
}

func (f *fakeBus) Directions(ctx context.Context, route string) ([]models.Direction, error) {
	if err := f.enter("directions:" + route); err != nil {
		return nil, err
	}
	return []models.Direction{{Label: route + " Northbound"}, {Label: route + " Southbound"}}, nil
}

func (f *fakeBus) Stops(ctx context.Context, route, direction string) ([]models.Stop, error) {
	if err := f.enter("stops:" + route + ":" + direction); err != nil {
		return nil, err
	}
	return []models.Stop{{ID: route + "/" + direction, Name: "Stop on " + route}}, nil
}

func (f *fakeBus) Predictions(ctx context.Context, route, stopID string) ([]models.Prediction, error) {
	if err := f.enter("predictions:" + stopID); err != nil {
		return nil, err
	}
	return []models.Prediction{{StopID: stopID, Route: route, Countdown: "5"}}, nil
}

func selectPath(t *testing.T, c *BusCascade, route, direction, stop string) {
	t.Helper()
	c.SelectRoute(route)
	c.Wait()
	require.NoError(t, c.SelectDirection(direction))
	c.Wait()
	require.NoError(t, c.SelectStop(stop))
	c.Wait()
}

func TestCascadeLoadsRoutesOnStart(t *testing.T) {
	c := NewBusCascade(newFakeBus())
	defer c.Close()

	c.Start(context.Background())
	c.Wait()

	snap := c.Snapshot()
	assert.False(t, snap.Routes.Loading)
	assert.Len(t, snap.Routes.Options, 2)
	assert.Equal(t, "Select a route", snap.Placeholder(LevelRoutes))
	assert.False(t, snap.Visible(LevelDirections))
}

func TestCascadeFullPath(t *testing.T) {
	c := NewBusCascade(newFakeBus())
	defer c.Close()
	c.Start(context.Background())
	c.Wait()

	selectPath(t, c, "22", "22 Northbound", "22/22 Northbound")

	snap := c.Snapshot()
	assert.Empty(t, snap.Err)
	assert.True(t, snap.Visible(LevelPredictions))
	require.Len(t, snap.Predictions.Options, 1)
	assert.Equal(t, "22/22 Northbound", snap.Predictions.Options[0].StopID)
	assert.Equal(t, "22", snap.Predictions.Options[0].Route)
}

func TestCascadeParentChangeClearsDescendantsSynchronously(t *testing.T) {
	bus := newFakeBus()
	c := NewBusCascade(bus)
	defer c.Close()
	c.Start(context.Background())
	c.Wait()
	selectPath(t, c, "22", "22 Northbound", "22/22 Northbound")

	gate := bus.hold("directions:36")
	c.SelectRoute("36")

	snap := c.Snapshot()
	assert.Equal(t, "36", snap.Routes.Value)
	assert.True(t, snap.Directions.Loading)
	assert.Empty(t, snap.Directions.Value)
	assert.Empty(t, snap.Directions.Options)
	assert.Empty(t, snap.Stops.Value)
	assert.Empty(t, snap.Stops.Options)
	assert.Empty(t, snap.Predictions.Options)
	assert.False(t, snap.Visible(LevelStops))
	assert.Equal(t, "Loading directions...", snap.Placeholder(LevelDirections))

	close(gate)
	c.Wait()
	assert.Len(t, c.Snapshot().Directions.Options, 2)
}

func TestCascadeLastRouteWins(t *testing.T) {
	bus := newFakeBus()
	c := NewBusCascade(bus)
	defer c.Close()

	slow := bus.hold("directions:22")
	c.SelectRoute("22")
	c.SelectRoute("36")

	// let the superseded fetch finish after the newer one
	close(slow)
	c.Wait()

	snap := c.Snapshot()
	require.Len(t, snap.Directions.Options, 2)
	assert.Equal(t, "36 Northbound", snap.Directions.Options[0].Label)
}

func TestCascadeStalePredictionsDiscarded(t *testing.T) {
	bus := newFakeBus()
	c := NewBusCascade(bus)
	defer c.Close()
	c.SelectRoute("22")
	c.Wait()
	require.NoError(t, c.SelectDirection("22 Northbound"))
	c.Wait()

	slow := bus.hold("predictions:A")
	require.NoError(t, c.SelectStop("A"))
	require.NoError(t, c.SelectStop("B"))
	close(slow)
	c.Wait()

	snap := c.Snapshot()
	assert.Equal(t, "B", snap.Stops.Value)
	require.Len(t, snap.Predictions.Options, 1)
	assert.Equal(t, "B", snap.Predictions.Options[0].StopID)
}

func TestCascadeFailureSetsSharedErrorAndEmptiesLevel(t *testing.T) {
	bus := newFakeBus()
	bus.fail("predictions:1836", errors.New("Error from CTA API. No data found"))
	c := NewBusCascade(bus)
	defer c.Close()
	c.SelectRoute("22")
	c.Wait()
	require.NoError(t, c.SelectDirection("22 Northbound"))
	c.Wait()

	require.NoError(t, c.SelectStop("1836"))
	c.Wait()

	snap := c.Snapshot()
	assert.Equal(t, "Error from CTA API. No data found", snap.Err)
	assert.Empty(t, snap.Predictions.Options)
	assert.False(t, snap.Predictions.Loading)
	assert.Equal(t, "No bus predictions available for this stop at the moment.", snap.Placeholder(LevelPredictions))

	// a new selection clears the banner
	require.NoError(t, c.SelectStop("1837"))
	c.Wait()
	assert.Empty(t, c.Snapshot().Err)
}

func TestCascadeEmptyResultPlaceholder(t *testing.T) {
	c := NewBusCascade(emptyBus{})
	defer c.Close()

	c.Start(context.Background())
	c.Wait()
	assert.Equal(t, "No routes available", c.Snapshot().Placeholder(LevelRoutes))
}

func TestCascadeSelectBeforeParent(t *testing.T) {
	c := NewBusCascade(newFakeBus())
	defer c.Close()

	assert.ErrorIs(t, c.SelectDirection("Northbound"), ErrNoParentSelection)
	assert.ErrorIs(t, c.SelectStop("1836"), ErrNoParentSelection)
	assert.ErrorIs(t, c.Refresh(), ErrNoParentSelection)
}

func TestCascadeRefreshKeepsListUntilNewData(t *testing.T) {
	bus := newFakeBus()
	c := NewBusCascade(bus)
	defer c.Close()
	selectPath(t, c, "22", "22 Northbound", "1836")

	gate := bus.hold("predictions:1836")
	require.NoError(t, c.Refresh())

	snap := c.Snapshot()
	assert.True(t, snap.Predictions.Loading)
	assert.Len(t, snap.Predictions.Options, 1)

	close(gate)
	c.Wait()
	assert.False(t, c.Snapshot().Predictions.Loading)
}

func TestCascadeResetDiscardsInFlight(t *testing.T) {
	bus := newFakeBus()
	c := NewBusCascade(bus)
	defer c.Close()
	c.Start(context.Background())
	c.Wait()

	gate := bus.hold("directions:22")
	c.SelectRoute("22")
	c.Reset()
	close(gate)
	c.Wait()

	snap := c.Snapshot()
	assert.Empty(t, snap.Routes.Value)
	assert.Len(t, snap.Routes.Options, 2)
	assert.Empty(t, snap.Directions.Options)
	assert.False(t, snap.Directions.Loading)
}

func TestCascadeObserversSeeEveryChange(t *testing.T) {
	c := NewBusCascade(newFakeBus())
	defer c.Close()

	var mu sync.Mutex
	var seen []BusSnapshot
	c.Subscribe(func(s BusSnapshot) {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, s)
	})

	c.Start(context.Background())
	c.Wait()

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, seen, 2)
	assert.True(t, seen[0].Routes.Loading)
	assert.False(t, seen[1].Routes.Loading)
	assert.Len(t, seen[1].Routes.Options, 2)
}

type emptyBus struct{}

func (emptyBus) Routes(ctx context.Context) ([]models.Route, error) { return nil, nil }
func (emptyBus) Directions(ctx context.Context, route string) ([]models.Direction, error) {
	return nil, nil
}
func (emptyBus) Stops(ctx context.Context, route, direction string) ([]models.Stop, error) {
	return nil, nil
}
func (emptyBus) Predictions(ctx context.Context, route, stopID string) ([]models.Prediction, error) {
	return nil, nil
}
