// Package timer operates the per-page countdown and applies the warning and
// visual degradation rules as the limit approaches and passes.
package timer

import (
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/gen2brain/beeep"

	"github.com/focusflow/focusflow/bus"
	"github.com/focusflow/focusflow/internal/config"
)

// State is the lifecycle phase of a session countdown.
type State int

const (
	// Idle means no countdown is active.
	Idle State = iota
	// Running means the countdown is ticking and the warning has not fired.
	Running
	// Warned means the countdown is ticking and the one-shot warning fired.
	Warned
	// Exceeded means the limit has passed and degradation is active.
	Exceeded
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case Warned:
		return "warned"
	case Exceeded:
		return "exceeded"
	default:
		return "idle"
	}
}

// Quotes is the default pool of warning messages.
var Quotes = []string{
	"Is this worth your time?",
	"Don't give up on your goals for this.",
	"Deep work pays better than scrolling.",
	"Your future self is watching you.",
	"One more minute usually turns into twenty.",
}

// Warning describes the one-shot notification shown near the limit.
type Warning struct {
	Quote       string        `json:"quote"`
	CanSnooze   bool          `json:"canSnooze"`
	AutoDismiss time.Duration `json:"autoDismiss"`
}

// Surface receives visual updates destined for the page.
type Surface interface {
	// ShowWarning displays the one-shot warning UI.
	ShowWarning(w Warning)
	// ApplyDegradation sets the page degradation intensity in [0, 1).
	ApplyDegradation(intensity float64)
	// ClearVisuals reverts all degradation and removes any warning UI.
	ClearVisuals()
}

// Store is the slice of the persistent store the timer writes per tick.
type Store interface {
	IncrementToday(site string, secs int) error
	DeepWork() (bool, error)
}

// Session owns the countdown state for a single page context. All state
// lives on the instance and is guarded by its mutex; the tick loop runs on
// the session's own goroutine, so ticks never overlap and a Stop delivered
// between ticks cannot race an in-flight increment.
type Session struct {
	mu           sync.Mutex
	state        State
	elapsed      int
	limit        int
	site         string
	warningShown bool
	dead         bool
	stopc        chan struct{}

	timerCfg  config.TimerConfig
	notifyCfg config.NotifyConfig
	store     Store
	surface   Surface
	rng       *rand.Rand
	quotes    []string
	log       *slog.Logger
}

// Option configures a Session.
type Option func(*Session)

// WithRand injects the random source used for quote selection.
func WithRand(rng *rand.Rand) Option {
	return func(s *Session) {
		s.rng = rng
	}
}

// WithQuotes overrides the warning message pool.
func WithQuotes(quotes []string) Option {
	return func(s *Session) {
		if len(quotes) > 0 {
			s.quotes = quotes
		}
	}
}

// NewSession creates an idle session bound to a store and a display surface.
func NewSession(
	cfg *config.Config,
	st Store,
	surface Surface,
	opts ...Option,
) *Session {
	s := &Session{
		state:     Idle,
		timerCfg:  cfg.Timer,
		notifyCfg: cfg.Notify,
		store:     st,
		surface:   surface,
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
		quotes:    Quotes,
		log:       slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// PickMessage selects a warning message from the pool using the provided
// random source.
func PickMessage(pool []string, rng *rand.Rand) string {
	if len(pool) == 0 {
		return ""
	}

	return pool[rng.Intn(len(pool))]
}

// Degradation maps time past the limit to a visual intensity. It is zero
// before the limit, grows linearly with the overshoot, and saturates at max
// once the overshoot reaches the window.
func Degradation(overshoot, window int, max float64) float64 {
	if overshoot < 0 || window <= 0 {
		return 0
	}

	intensity := float64(overshoot) / float64(window)
	if intensity > max {
		return max
	}

	return intensity
}

// Start moves an idle session to Running with the given limit and begins
// the tick loop. If the session is already ticking, only the limit and site
// are refreshed so repeated navigations within the same site do not reset
// the countdown.
func (s *Session) Start(limit int, site string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// A command routed before the page context tore down can land after
	// Destroy; it must not resurrect the session.
	if s.dead {
		return
	}

	s.limit = limit
	s.site = site

	if s.state != Idle {
		return
	}

	s.elapsed = 0
	s.warningShown = false
	s.state = Running
	s.stopc = make(chan struct{})

	go s.loop(s.stopc)

	s.log.Debug("timer started", "site", site, "limit", limit)
}

// Stop cancels the countdown, zeroes elapsed time, and reverts all visuals.
// Stopping an idle session is a no-op.
func (s *Session) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.reset(true)
}

// Destroy tears the session down without touching the page surface; the
// page context is already gone when this runs. A destroyed session stays
// stopped for good.
func (s *Session) Destroy() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.dead = true

	s.reset(false)
}

// reset must be called with the mutex held.
func (s *Session) reset(clearVisuals bool) {
	if s.stopc != nil {
		close(s.stopc)
		s.stopc = nil
	}

	wasActive := s.state != Idle

	s.state = Idle
	s.elapsed = 0
	s.warningShown = false

	if clearVisuals && wasActive {
		s.surface.ClearVisuals()
	}
}

// Snooze extends the limit and re-arms the warning. The page's snooze
// button calls this; it has no effect while idle or when deep work disabled
// the button in the first place.
func (s *Session) Snooze() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == Idle {
		return
	}

	s.limit += s.timerCfg.SnoozeSeconds
	s.warningShown = false
	s.state = Running

	s.surface.ClearVisuals()

	s.log.Debug("timer snoozed", "site", s.site, "limit", s.limit)
}

// Snapshot answers a getTime query without transitioning.
func (s *Session) Snapshot() bus.TimeReply {
	s.mu.Lock()
	defer s.mu.Unlock()

	return bus.TimeReply{Elapsed: s.elapsed, Limit: s.limit}
}

// State returns the current lifecycle phase.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.state
}

// Deliver implements bus.PageHandler.
func (s *Session) Deliver(msg bus.Message) {
	switch msg.Action {
	case bus.ActionStartTimer:
		s.Start(msg.Limit, msg.Site)
	case bus.ActionStopTimer:
		s.Stop()
	case bus.ActionSnooze:
		s.Snooze()
	case bus.ActionGetTime:
		// Queries go through Time; a bare getTime command carries no reply
		// channel and is ignored.
	}
}

// Time implements bus.PageHandler.
func (s *Session) Time() bus.TimeReply {
	return s.Snapshot()
}

func (s *Session) loop(stopc chan struct{}) {
	ticker := time.NewTicker(s.timerCfg.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stopc:
			return
		case <-ticker.C:
			s.Tick()
		}
	}
}

// Tick advances the countdown by one second. It is driven by the session
// loop but exported so tests can step the state machine deterministically.
func (s *Session) Tick() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == Idle {
		return
	}

	s.elapsed++

	// The shared daily total is incremented durably every tick. A failed
	// write is dropped, not retried: the next tick's increment is
	// independent, so transient store failures undercount at worst.
	if err := s.store.IncrementToday(s.site, 1); err != nil {
		s.log.Debug("dropped tick increment", "site", s.site, "error", err)
	}

	timeLeft := s.limit - s.elapsed

	if timeLeft == s.timerCfg.WarningLead && !s.warningShown {
		s.warningShown = true
		s.state = Warned
		s.warn()
	}

	if s.elapsed >= s.limit {
		s.state = Exceeded

		overshoot := s.elapsed - s.limit
		intensity := Degradation(
			overshoot,
			s.timerCfg.DegradationWindow,
			s.timerCfg.MaxDegradation,
		)

		s.surface.ApplyDegradation(intensity)
	}
}

// warn must be called with the mutex held.
func (s *Session) warn() {
	deepWork, err := s.store.DeepWork()
	if err != nil {
		// Missing or unreadable preferences behave as disabled.
		s.log.Debug("deep work lookup failed", "error", err)

		deepWork = false
	}

	w := Warning{
		Quote:       PickMessage(s.quotes, s.rng),
		CanSnooze:   !deepWork,
		AutoDismiss: s.notifyCfg.AutoDismiss,
	}

	s.surface.ShowWarning(w)

	if s.notifyCfg.Enabled && s.notifyCfg.DesktopMirror {
		go func() {
			err := beeep.Notify(w.Quote, "Focus Flow nudge", s.notifyCfg.IconPath)
			if err != nil {
				s.log.Debug("desktop notification failed", "error", err)
			}
		}()
	}

	s.log.Debug("warning shown", "site", s.site, "deepWork", deepWork)
}
