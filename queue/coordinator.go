// Package queue holds the client-resident playback queue: an in-memory,
// deduplicated, forward-only queue of suggestions driving the player. One
// Coordinator exists per active session; the server side stays stateless.
package queue

import (
	"context"
	"sync"

	"github.com/engineq/engineq/models"
)

// LowWatermark is the local queue length at or below which the coordinator
// asks the server for another batch.
const LowWatermark = 10

type State int

const (
	StateEmpty State = iota
	StateLoaded
	StatePlaying
	StatePaused
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateLoaded:
		return "loaded"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	default:
		return "unknown"
	}
}

// BatchFetcher retrieves the next batch of unplayed suggestions from the
// server. Batches may overlap with what the client already holds.
type BatchFetcher interface {
	NextBatch(ctx context.Context, currentSuggestionID string) ([]models.QueueItem, error)
}

// PlaybackRecorder advances the server-side playback ledger.
type PlaybackRecorder interface {
	RecordPlayed(ctx context.Context, suggestionID string) error
}

// Snapshot is an immutable view of the coordinator handed to subscribers.
// Current is always the queue head while the queue is non-empty.
type Snapshot struct {
	State   State
	Queue   []models.QueueItem
	Current *models.QueueItem
	Muted   bool
}

type Coordinator struct {
	fetcher  BatchFetcher
	recorder PlaybackRecorder

	mu       sync.Mutex
	state    State
	queue    []models.QueueItem
	muted    bool
	fetching bool

	onChange func(Snapshot)
}

func NewCoordinator(fetcher BatchFetcher, recorder PlaybackRecorder) *Coordinator {
	return &Coordinator{
		fetcher:  fetcher,
		recorder: recorder,
		state:    StateEmpty,
	}
}

// Subscribe registers the callback invoked after every state change. The
// callback runs with the coordinator locked and must not call back into it.
func (c *Coordinator) Subscribe(fn func(Snapshot)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onChange = fn
}

func (c *Coordinator) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// FetchBatch pulls the next batch and merges it into the local queue,
// deduplicating by suggestion id. A fetch already in flight makes it a no-op;
// a fetch failure leaves the queue untouched and clears the in-flight flag so
// the next state change can retry. When the merge populates an empty queue,
// the new head becomes current and its ledger advance is recorded.
func (c *Coordinator) FetchBatch(ctx context.Context) error {
	c.mu.Lock()
	if c.fetching {
		c.mu.Unlock()
		return nil
	}
	c.fetching = true

	currentID := ""
	if len(c.queue) > 0 {
		currentID = c.queue[0].SuggestionID
	}
	c.mu.Unlock()

	batch, err := c.fetcher.NextBatch(ctx, currentID)

	c.mu.Lock()
	c.fetching = false
	if err != nil {
		c.mu.Unlock()
		return err
	}

	wasEmpty := len(c.queue) == 0
	c.queue = merge(c.queue, batch)

	var head string
	if wasEmpty && len(c.queue) > 0 {
		c.state = StateLoaded
		head = c.queue[0].SuggestionID
	}
	c.notifyLocked()
	c.mu.Unlock()

	if head != "" {
		return c.recorder.RecordPlayed(ctx, head)
	}

	return nil
}

// Advance pops the current head, recording the ledger for the new head
// first. A failed ledger write leaves the queue as it was; the track stays
// current until the write is confirmed.
func (c *Coordinator) Advance(ctx context.Context) error {
	c.mu.Lock()
	if len(c.queue) == 0 {
		c.mu.Unlock()
		return nil
	}

	next := ""
	if len(c.queue) > 1 {
		next = c.queue[1].SuggestionID
	}
	c.mu.Unlock()

	if next != "" {
		if err := c.recorder.RecordPlayed(ctx, next); err != nil {
			return err
		}
	}

	c.mu.Lock()
	c.queue = c.queue[1:]
	if len(c.queue) == 0 {
		c.state = StateEmpty
	} else {
		c.state = StatePlaying
	}
	c.notifyLocked()
	c.maybeReplenishLocked(ctx)
	c.mu.Unlock()

	return nil
}

// Select jumps ahead to a visible entry, discarding everything strictly
// before it. The cursor never regresses: selecting the current entry, an
// unknown id, or anything already passed is a no-op.
func (c *Coordinator) Select(ctx context.Context, suggestionID string) error {
	c.mu.Lock()
	idx := indexOf(c.queue, suggestionID)
	if idx <= 0 {
		c.mu.Unlock()
		return nil
	}
	c.mu.Unlock()

	if err := c.recorder.RecordPlayed(ctx, suggestionID); err != nil {
		return err
	}

	c.mu.Lock()
	if idx := indexOf(c.queue, suggestionID); idx > 0 {
		c.queue = c.queue[idx:]
	}
	c.state = StatePlaying
	c.notifyLocked()
	c.maybeReplenishLocked(ctx)
	c.mu.Unlock()

	return nil
}

func (c *Coordinator) Play() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.queue) == 0 {
		return
	}

	c.state = StatePlaying
	c.notifyLocked()
}

func (c *Coordinator) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StatePlaying {
		return
	}

	c.state = StatePaused
	c.notifyLocked()
}

func (c *Coordinator) ToggleMuted() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.muted = !c.muted
	c.notifyLocked()
}

// maybeReplenishLocked starts a background fetch once the queue drops to the
// watermark while something is still current. The fetching flag keeps
// re-evaluations on every state change from stacking requests.
func (c *Coordinator) maybeReplenishLocked(ctx context.Context) {
	if c.fetching || len(c.queue) == 0 || len(c.queue) > LowWatermark {
		return
	}

	go func() {
		_ = c.FetchBatch(ctx)
	}()
}

func (c *Coordinator) snapshotLocked() Snapshot {
	snap := Snapshot{
		State: c.state,
		Queue: append([]models.QueueItem(nil), c.queue...),
		Muted: c.muted,
	}

	if len(snap.Queue) > 0 {
		snap.Current = &snap.Queue[0]
	}

	return snap
}

func (c *Coordinator) notifyLocked() {
	if c.onChange != nil {
		c.onChange(c.snapshotLocked())
	}
}

func merge(existing, batch []models.QueueItem) []models.QueueItem {
	seen := make(map[string]struct{}, len(existing))
	for _, item := range existing {
		seen[item.SuggestionID] = struct{}{}
	}

	merged := existing
	for _, item := range batch {
		if _, ok := seen[item.SuggestionID]; ok {
			continue
		}

		seen[item.SuggestionID] = struct{}{}
		merged = append(merged, item)
	}

	return merged
}

func indexOf(queue []models.QueueItem, suggestionID string) int {
	for i, item := range queue {
		if item.SuggestionID == suggestionID {
			return i
		}
	}

	return -1
}
