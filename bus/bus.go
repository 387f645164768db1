// Package bus carries commands between the coordinator and page contexts.
//
// Delivery is fire-and-forget: a command sent to a tab that has no handler
// registered (page navigated away, client disconnected) reports Unreachable
// and nothing else happens. Callers are free to ignore the result.
package bus

import "sync"

// Action identifies a command. The values match the extension wire format.
type Action string

const (
	ActionStartTimer Action = "startTimer"
	ActionStopTimer  Action = "stopTimer"
	ActionGetTime    Action = "getTime"
	ActionSnooze     Action = "snooze"
)

// Message is a command addressed to a single page context.
type Message struct {
	Action Action `json:"action"`
	Limit  int    `json:"limit,omitempty"`
	Site   string `json:"site,omitempty"`
}

// TimeReply answers a getTime query.
type TimeReply struct {
	Elapsed int `json:"elapsed"`
	Limit   int `json:"limit"`
}

// Delivery is the explicit outcome of a send. Failures are modeled as a
// value rather than an error since an unreachable target is an expected,
// non-fatal condition.
type Delivery int

const (
	Delivered Delivery = iota
	Unreachable
)

func (d Delivery) String() string {
	if d == Delivered {
		return "delivered"
	}

	return "unreachable"
}

// PageHandler is the receiving side of a page context.
type PageHandler interface {
	// Deliver hands a command to the page context. It must not block.
	Deliver(msg Message)
	// Time reports the current elapsed/limit pair without side effects.
	Time() TimeReply
}

// Router fans commands out to registered page handlers, keyed by tab ID.
type Router struct {
	mu       sync.RWMutex
	handlers map[int]PageHandler
}

// NewRouter returns an empty router.
func NewRouter() *Router {
	return &Router{
		handlers: make(map[int]PageHandler),
	}
}

// Register attaches a handler for a tab, replacing any previous one.
func (r *Router) Register(tabID int, h PageHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.handlers[tabID] = h
}

// Unregister detaches the handler for a tab if it is still the one given.
// A stale client disconnecting must not tear down its replacement.
func (r *Router) Unregister(tabID int, h PageHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.handlers[tabID] == h {
		delete(r.handlers, tabID)
	}
}

// Send delivers a command to the tab's handler.
func (r *Router) Send(tabID int, msg Message) Delivery {
	r.mu.RLock()
	h, ok := r.handlers[tabID]
	r.mu.RUnlock()

	if !ok {
		return Unreachable
	}

	h.Deliver(msg)

	return Delivered
}

// Query asks the tab's handler for its current time state.
func (r *Router) Query(tabID int) (TimeReply, Delivery) {
	r.mu.RLock()
	h, ok := r.handlers[tabID]
	r.mu.RUnlock()

	if !ok {
		return TimeReply{}, Unreachable
	}

	return h.Time(), Delivered
}

// Tabs returns the IDs of all registered handlers.
func (r *Router) Tabs() []int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tabs := make([]int, 0, len(r.handlers))
	for id := range r.handlers {
		tabs = append(tabs, id)
	}

	return tabs
}
