package autosave

import (
	"context"
	"sync"
	"time"

	"liftlog/workout-app/internal/domain"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Gateway persists a full replacement of a workout's editable fields.
type Gateway interface {
	UpdateWorkout(ctx context.Context, id primitive.ObjectID, draft domain.WorkoutDraft) error
}

// State is the sync status of an editing session.
type State string

const (
	StateSyncing State = "syncing"
	StateSynced  State = "synced"
	StateError   State = "error"
)

// Status is a point-in-time view of the controller.
type Status struct {
	State      State
	LastSynced time.Time
	Err        error // last persist failure, cleared by the next success
}

type Options struct {
	Delay   time.Duration // debounce window, DefaultDelay when zero
	Timeout time.Duration // per persist call, 30s when zero
	Now     func() time.Time
	Logger  log.FieldLogger
}

// Controller owns the save pipeline of one workout: Edit -> Debouncer ->
// SingleFlight -> Gateway. Local state is never rolled back on failure and
// nothing is retried unless Retry is called.
type Controller struct {
	workoutID primitive.ObjectID
	gateway   Gateway
	timeout   time.Duration
	now       func() time.Time
	log       log.FieldLogger

	debouncer *Debouncer[Snapshot]
	gate      *SingleFlight[Snapshot]

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	current  Snapshot
	status   Status
	onChange func(Status)
}

// NewController starts a session for a workout whose persisted state is
// initial. The session starts synced, with lastSynced as the last save.
func NewController(workoutID primitive.ObjectID, initial Snapshot, lastSynced time.Time, gateway Gateway, opts Options) *Controller {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = log.StandardLogger()
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := &Controller{
		workoutID: workoutID,
		gateway:   gateway,
		timeout:   opts.Timeout,
		now:       opts.Now,
		log:       opts.Logger.WithField("workout_id", workoutID.Hex()),
		ctx:       ctx,
		cancel:    cancel,
		current:   initial,
		status:    Status{State: StateSynced, LastSynced: lastSynced},
	}
	c.gate = NewSingleFlight(c.persist)
	c.debouncer = NewDebouncer(opts.Delay, c.gate.Trigger)
	return c
}

// OnChange registers fn to be called after every status transition.
func (c *Controller) OnChange(fn func(Status)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onChange = fn
}

// Edit records s as the current local state and schedules a save.
func (c *Controller) Edit(s Snapshot) {
	c.mu.Lock()
	c.current = s
	c.mu.Unlock()
	c.debouncer.Call(s)
}

// Current returns the latest local state.
func (c *Controller) Current() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Retry saves the current local state now, bypassing the debounce window.
func (c *Controller) Retry() {
	c.gate.Trigger(c.Current())
}

func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Wait blocks until no save is running or queued. Edits still inside the
// debounce window are not waited for.
func (c *Controller) Wait() {
	c.gate.Wait()
}

// Close sends an edit still inside the debounce window, waits for the
// in-flight save and stops the pipeline.
func (c *Controller) Close() {
	c.debouncer.Flush()
	c.debouncer.Stop()
	c.gate.Wait()
	c.cancel()
}

// persist runs inside the single-flight gate. It sends the state that is
// current when it starts, which is never older than the triggering value.
func (c *Controller) persist(Snapshot) {
	draft := c.Current().Draft()
	c.setStatus(func(s *Status) { s.State = StateSyncing })

	ctx, cancel := context.WithTimeout(c.ctx, c.timeout)
	defer cancel()
	err := c.gateway.UpdateWorkout(ctx, c.workoutID, draft)
	if err != nil {
		c.log.Warnf("autosave failed: %s", err)
		c.setStatus(func(s *Status) {
			s.State = StateError
			s.Err = err
		})
		return
	}

	now := c.now()
	c.setStatus(func(s *Status) {
		s.State = StateSynced
		s.LastSynced = now
		s.Err = nil
	})
}

func (c *Controller) setStatus(update func(*Status)) {
	c.mu.Lock()
	update(&c.status)
	status, fn := c.status, c.onChange
	c.mu.Unlock()
	if fn != nil {
		fn(status)
	}
}
