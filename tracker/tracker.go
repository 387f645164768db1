// Package tracker coordinates tab lifecycle events: it runs the daily
// rollover, matches the tab URL against the focus rules, and commands the
// tab's page context to start or stop its countdown.
package tracker

import (
	"context"
	"log/slog"
	"time"

	"github.com/focusflow/focusflow/bus"
	"github.com/focusflow/focusflow/internal/models"
	"github.com/focusflow/focusflow/rules"
)

// EventKind distinguishes the two qualifying tab events.
type EventKind string

const (
	TabActivated EventKind = "activated"
	TabNavigated EventKind = "navigated"
)

// TabEvent is a tab activation or navigation-complete notification from the
// page lifecycle observer.
type TabEvent struct {
	TabID int       `json:"tabId"`
	URL   string    `json:"url"`
	Kind  EventKind `json:"kind"`
}

// Store is the slice of the persistent store the tracker reads.
type Store interface {
	Rules() ([]models.Rule, error)
}

// Rollover runs the daily archival check.
type Rollover interface {
	CheckAndRollover(now time.Time) error
}

// Sender delivers commands to page contexts.
type Sender interface {
	Send(tabID int, msg bus.Message) bus.Delivery
}

// Tracker is the long-lived coordinator.
type Tracker struct {
	store    Store
	rollover Rollover
	sender   Sender
	now      func() time.Time
	log      *slog.Logger
}

// New returns a tracker wired to its collaborators.
func New(store Store, ro Rollover, sender Sender) *Tracker {
	return &Tracker{
		store:    store,
		rollover: ro,
		sender:   sender,
		now:      time.Now,
		log:      slog.Default(),
	}
}

// HandleTabEvent processes one tab activation or navigation. Exactly one
// command goes out per invocation unless the URL is untrackable. All
// failures degrade silently: a missed rollover retries on the next event,
// an unreachable tab simply has no countdown to command.
func (t *Tracker) HandleTabEvent(ctx context.Context, ev TabEvent) {
	if err := ctx.Err(); err != nil {
		return
	}

	if err := t.rollover.CheckAndRollover(t.now()); err != nil {
		t.log.Error("rollover check failed", "error", err)
	}

	if !rules.IsTrackable(ev.URL) {
		return
	}

	ruleList, err := t.store.Rules()
	if err != nil {
		// Unreadable configuration behaves as an empty rule list.
		t.log.Error("loading rules failed", "error", err)

		ruleList = nil
	}

	rule := rules.Match(ev.URL, ruleList)

	var (
		msg      bus.Message
		delivery bus.Delivery
	)

	if rule != nil {
		msg = bus.Message{
			Action: bus.ActionStartTimer,
			Limit:  rule.TotalSeconds,
			Site:   rules.SiteKey(rule),
		}
	} else {
		msg = bus.Message{Action: bus.ActionStopTimer}
	}

	delivery = t.sender.Send(ev.TabID, msg)

	t.log.Debug("tab event handled",
		"tab", ev.TabID,
		"kind", ev.Kind,
		"action", msg.Action,
		"delivery", delivery.String(),
	)
}
