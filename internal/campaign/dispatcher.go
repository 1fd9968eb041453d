// Package campaign drives simulated message dispatch for launched
// campaigns.
//
// One lightweight recurring task per active campaign, keyed by campaign id
// in a mutex-guarded registry; a campaign's task is the sole writer of its
// counters while registered. Each tick performs one read (reload campaign
// state) then, only if still in progress, one write (apply batch deltas).
// Ticks for a single campaign are strictly sequential; ticks across
// campaigns interleave freely.
//
// Cancellation is cooperative at tick boundaries: setting the campaign's
// status to anything other than in_progress through any external path is
// observed by the very next tick, at which point the task deregisters
// itself without writing again.
//
// Tick errors are absorbed into the campaign's persisted error field
// (status failed); they are never thrown back into the scheduler. Task
// isolation means a failed campaign cannot stop ticks for unrelated ones.
package campaign

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/reachwell/reachwell/internal/audience"
	"github.com/reachwell/reachwell/internal/rules"
	"github.com/reachwell/reachwell/internal/types"
)

// Failure reasons persisted on the campaign row.
const (
	reasonRulesNotFound = "segment or rules not found"
	reasonInvalidRules  = "invalid segment rules"
)

// Store is the campaign/segment persistence the dispatcher depends on.
// *store.Store satisfies it; tests substitute fakes.
type Store interface {
	GetCampaign(ctx context.Context, id types.CampaignID) (types.Campaign, error)
	GetSegment(ctx context.Context, id types.SegmentID) (types.Segment, error)
	GetRules(ctx context.Context, id types.RuleSetID) (*types.RuleNode, error)
	BeginDispatch(ctx context.Context, id types.CampaignID, totalUsers int) (bool, error)
	SetStatus(ctx context.Context, id types.CampaignID, status types.CampaignStatus, errMsg string) error
	ApplyBatch(ctx context.Context, id types.CampaignID, sent, success, failure int) error
}

// Counter resolves a rule tree to an audience size.
// *audience.Calculator satisfies it.
type Counter interface {
	Calculate(ctx context.Context, node *types.RuleNode, opts audience.Options) (audience.Result, error)
}

// Config tunes batch dispatch.
type Config struct {
	// BatchSize is the number of simulated sends per tick.
	BatchSize int
	// TickInterval is the delay between batches.
	TickInterval time.Duration
	// SuccessRate is the per-message delivery success probability.
	SuccessRate float64
	// Seed feeds each task's RNG. Zero means time-based.
	Seed int64
}

// Dispatcher owns the registry of active campaign tasks.
type Dispatcher struct {
	store Store
	calc  Counter
	cfg   Config
	clock Clock
	log   *zap.Logger

	mu     sync.Mutex
	active map[types.CampaignID]context.CancelFunc
	wg     sync.WaitGroup
}

// NewDispatcher creates a Dispatcher. A nil clock gets the wall clock; a
// nil logger gets a no-op one.
func NewDispatcher(st Store, calc Counter, cfg Config, clock Clock, log *zap.Logger) *Dispatcher {
	if clock == nil {
		clock = NewClock()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Dispatcher{
		store:  st,
		calc:   calc,
		cfg:    cfg,
		clock:  clock,
		log:    log,
		active: make(map[types.CampaignID]context.CancelFunc),
	}
}

// Start launches processing for a campaign. Launching an already-active
// campaign is a no-op, not a second concurrent task for the same id.
func (d *Dispatcher) Start(ctx context.Context, id types.CampaignID) {
	d.mu.Lock()
	if _, ok := d.active[id]; ok {
		d.mu.Unlock()
		d.log.Debug("campaign already active, ignoring duplicate launch",
			zap.String("campaign_id", string(id)))
		return
	}
	taskCtx, cancel := context.WithCancel(ctx)
	d.active[id] = cancel
	d.wg.Add(1)
	d.mu.Unlock()

	go d.run(taskCtx, id)
}

// Stop cancels a campaign's task if one is active. The task's final write,
// if any, has already happened or is guarded by the row's status; Stop
// itself never touches the row.
func (d *Dispatcher) Stop(id types.CampaignID) {
	d.mu.Lock()
	cancel, ok := d.active[id]
	d.mu.Unlock()
	if ok {
		cancel()
	}
}

// IsActive reports whether a task is registered for the campaign.
func (d *Dispatcher) IsActive(id types.CampaignID) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.active[id]
	return ok
}

// Wait blocks until every active task has deregistered.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Shutdown cancels all active tasks and waits for them to deregister.
func (d *Dispatcher) Shutdown() {
	d.mu.Lock()
	for _, cancel := range d.active {
		cancel()
	}
	d.mu.Unlock()
	d.wg.Wait()
}

func (d *Dispatcher) deregister(id types.CampaignID) {
	d.mu.Lock()
	if cancel, ok := d.active[id]; ok {
		cancel()
		delete(d.active, id)
	}
	d.mu.Unlock()
	d.wg.Done()
}

// run performs the launch transition and then the tick loop.
func (d *Dispatcher) run(ctx context.Context, id types.CampaignID) {
	defer d.deregister(id)

	if !d.launch(ctx, id) {
		return
	}

	seed := d.cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	ticker := d.clock.NewTicker(d.cfg.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			if d.tick(ctx, id, rng) {
				return
			}
		}
	}
}

// launch moves a queued campaign to in_progress: resolve the segment, load
// and validate its rules, count the audience, persist total_users. Returns
// false when the loop should not start.
func (d *Dispatcher) launch(ctx context.Context, id types.CampaignID) bool {
	c, err := d.store.GetCampaign(ctx, id)
	if err != nil {
		d.log.Warn("campaign launch failed to load row",
			zap.String("campaign_id", string(id)), zap.Error(err))
		return false
	}
	if c.Status != types.CampaignQueued {
		// Relaunch of a finished or already-running campaign is inert.
		return false
	}

	seg, err := d.store.GetSegment(ctx, c.SegmentID)
	if err != nil {
		d.fail(ctx, id, reasonRulesNotFound)
		return false
	}

	node, err := d.store.GetRules(ctx, seg.RulesID)
	if err != nil || node == nil {
		d.fail(ctx, id, reasonRulesNotFound)
		return false
	}

	if v := rules.Validate(node); !v.Valid {
		d.log.Warn("campaign launch rejected invalid rules",
			zap.String("campaign_id", string(id)),
			zap.Strings("errors", v.Errors))
		d.fail(ctx, id, reasonInvalidRules)
		return false
	}

	res, err := d.calc.Calculate(ctx, node, audience.Options{})
	if err != nil {
		d.fail(ctx, id, err.Error())
		return false
	}

	ok, err := d.store.BeginDispatch(ctx, id, res.AudienceSize)
	if err != nil {
		d.fail(ctx, id, err.Error())
		return false
	}
	if !ok {
		// Row left the queued state between load and update.
		return false
	}

	d.log.Info("campaign dispatch started",
		zap.String("campaign_id", string(id)),
		zap.Int("total_users", res.AudienceSize))
	return true
}

// tick processes one batch. Returns true when the task should stop.
func (d *Dispatcher) tick(ctx context.Context, id types.CampaignID, rng *rand.Rand) bool {
	c, err := d.store.GetCampaign(ctx, id)
	if err != nil {
		d.fail(ctx, id, fmt.Sprintf("failed to reload campaign: %v", err))
		return true
	}

	if c.Status != types.CampaignInProgress {
		// External transition (cancellation, manual edit): the row already
		// reflects the desired terminal state, so stop without writing.
		d.log.Info("campaign left in_progress out-of-band, stopping",
			zap.String("campaign_id", string(id)),
			zap.String("status", string(c.Status)))
		return true
	}

	remaining := c.TotalUsers - c.SentCount
	if remaining <= 0 {
		return d.complete(ctx, id)
	}

	batch := d.cfg.BatchSize
	if batch > remaining {
		batch = remaining
	}

	success := 0
	for i := 0; i < batch; i++ {
		if rng.Float64() < d.cfg.SuccessRate {
			success++
		}
	}
	failure := batch - success

	if err := d.store.ApplyBatch(ctx, id, batch, success, failure); err != nil {
		d.fail(ctx, id, fmt.Sprintf("failed to apply batch: %v", err))
		return true
	}

	d.log.Debug("campaign batch dispatched",
		zap.String("campaign_id", string(id)),
		zap.Int("sent", batch),
		zap.Int("success", success),
		zap.Int("failure", failure))

	if c.SentCount+batch >= c.TotalUsers {
		return d.complete(ctx, id)
	}
	return false
}

func (d *Dispatcher) complete(ctx context.Context, id types.CampaignID) bool {
	if err := d.store.SetStatus(ctx, id, types.CampaignCompleted, ""); err != nil {
		d.log.Error("failed to mark campaign completed",
			zap.String("campaign_id", string(id)), zap.Error(err))
		return true
	}
	d.log.Info("campaign completed", zap.String("campaign_id", string(id)))
	return true
}

func (d *Dispatcher) fail(ctx context.Context, id types.CampaignID, reason string) {
	// The status guard makes this a no-op if the row is already terminal.
	if err := d.store.SetStatus(ctx, id, types.CampaignFailed, reason); err != nil {
		d.log.Error("failed to mark campaign failed",
			zap.String("campaign_id", string(id)), zap.Error(err))
		return
	}
	d.log.Warn("campaign failed",
		zap.String("campaign_id", string(id)), zap.String("reason", reason))
}
