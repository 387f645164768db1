// Package rollover archives the previous day's counters into history when a
// date change is detected.
package rollover

import (
	"log/slog"
	"sync"
	"time"

	"github.com/focusflow/focusflow/internal/timeutil"
)

// Store is the slice of the persistent store the manager needs.
type Store interface {
	ApplyRollover(today string) (bool, error)
}

// Manager performs the daily check-and-archive transition. The store applies
// the rollover in a single transaction; the manager's mutex additionally
// collapses concurrent navigation events so only one of them pays for the
// write.
type Manager struct {
	mu    sync.Mutex
	store Store
	log   *slog.Logger
}

// NewManager returns a rollover manager bound to a store.
func NewManager(store Store) *Manager {
	return &Manager{
		store: store,
		log:   slog.Default(),
	}
}

// CheckAndRollover archives and resets the counters if the stored reset date
// differs from now's date. Invoking it again on the same day has no effect.
func (m *Manager) CheckAndRollover(now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	today := timeutil.DayKey(now)

	rolled, err := m.store.ApplyRollover(today)
	if err != nil {
		return err
	}

	if rolled {
		m.log.Info("new day detected, daily stats archived", "date", today)
	}

	return nil
}
