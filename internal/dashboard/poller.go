package dashboard

import (
	"context"
	"sync"
	"time"

	"github.com/randytsao24/transitdash/internal/models"
)

// DefaultPollInterval is how often a selected station is refreshed
const DefaultPollInterval = 30 * time.Second

// ArrivalSource fetches train arrivals for a station. An empty list may
// come with an explanatory message.
type ArrivalSource interface {
	TrainArrivals(ctx context.Context, stationID, route string) ([]models.Arrival, string, error)
}

// TrainSnapshot is a copy of the poller state
type TrainSnapshot struct {
	StationID   string
	Arrivals    []models.Arrival
	Message     string
	Err         string
	Loading     bool
	LastUpdated time.Time
}

// TrainPoller fetches arrivals for the selected station immediately and
// then on a fixed interval until the station changes or Stop is called
type TrainPoller struct {
	source   ArrivalSource
	interval time.Duration
	line     string

	mu         sync.Mutex
	base       context.Context
	state      TrainSnapshot
	generation uint64
	cancel     context.CancelFunc
	loop       sync.WaitGroup

	notifyMu  sync.Mutex
	observers []func(TrainSnapshot)

	newTicker func(time.Duration) (<-chan time.Time, func())
	now       func() time.Time
}

// NewTrainPoller creates an idle poller. A non-positive interval uses
// DefaultPollInterval; line optionally narrows arrivals to one route code.
func NewTrainPoller(source ArrivalSource, interval time.Duration, line string) *TrainPoller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &TrainPoller{
		source:   source,
		interval: interval,
		line:     line,
		base:     context.Background(),
		newTicker: func(d time.Duration) (<-chan time.Time, func()) {
			t := time.NewTicker(d)
			return t.C, t.Stop
		},
		now: time.Now,
	}
}

// Bind makes future polling loops children of ctx
func (p *TrainPoller) Bind(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.base = ctx
}

// Subscribe registers fn to receive a snapshot after every state change.
// fn must not call back into the poller.
func (p *TrainPoller) Subscribe(fn func(TrainSnapshot)) {
	p.notifyMu.Lock()
	defer p.notifyMu.Unlock()
	p.observers = append(p.observers, fn)
}

// Snapshot returns a copy of the current state
func (p *TrainPoller) Snapshot() TrainSnapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snapshotLocked()
}

// Select switches polling to stationID. The previous loop is cancelled and
// its state cleared before the first fetch for the new station. An empty
// id stops polling.
func (p *TrainPoller) Select(stationID string) {
	p.mu.Lock()
	p.stopLocked()
	p.generation++
	p.state = TrainSnapshot{StationID: stationID}

	if stationID == "" {
		p.commit()
		return
	}

	ctx, cancel := context.WithCancel(p.base)
	p.cancel = cancel
	gen := p.generation
	ticks, stopTicker := p.newTicker(p.interval)
	p.state.Loading = true

	p.loop.Add(1)
	go p.run(ctx, gen, stationID, ticks, stopTicker)

	p.commit()
}

// Stop ends polling and waits for the loop to exit
func (p *TrainPoller) Stop() {
	p.Select("")
	p.loop.Wait()
}

func (p *TrainPoller) run(ctx context.Context, gen uint64, stationID string, ticks <-chan time.Time, stopTicker func()) {
	defer p.loop.Done()
	defer stopTicker()

	p.fetch(ctx, gen, stationID)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticks:
			p.fetch(ctx, gen, stationID)
		}
	}
}

func (p *TrainPoller) fetch(ctx context.Context, gen uint64, stationID string) {
	p.mu.Lock()
	if p.generation != gen {
		p.mu.Unlock()
		return
	}
	if !p.state.Loading {
		p.state.Loading = true
		p.commit()
	} else {
		p.mu.Unlock()
	}

	arrivals, message, err := p.source.TrainArrivals(ctx, stationID, p.line)

	p.mu.Lock()
	if p.generation != gen {
		p.mu.Unlock()
		return
	}

	p.state.Loading = false
	p.state.LastUpdated = p.now()
	switch {
	case err != nil:
		p.state.Arrivals = []models.Arrival{}
		p.state.Message = ""
		p.state.Err = err.Error()
	default:
		if arrivals == nil {
			arrivals = []models.Arrival{}
		}
		p.state.Arrivals = arrivals
		p.state.Err = ""
		p.state.Message = ""
		if len(arrivals) == 0 {
			p.state.Message = message
		}
	}
	p.commit()
}

// stopLocked cancels the running loop, if any. p.mu must be held.
func (p *TrainPoller) stopLocked() {
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
}

// commit releases p.mu and delivers the new state to observers in order
func (p *TrainPoller) commit() {
	snap := p.snapshotLocked()
	p.notifyMu.Lock()
	p.mu.Unlock()
	defer p.notifyMu.Unlock()

	for _, fn := range p.observers {
		fn(snap)
	}
}

func (p *TrainPoller) snapshotLocked() TrainSnapshot {
	snap := p.state
	if snap.Arrivals != nil {
		snap.Arrivals = append([]models.Arrival(nil), snap.Arrivals...)
	}
	return snap
}
