// Package store connects to the data store and manages the persisted rules,
// counters, and history.
package store

import (
	"encoding/json"
	"errors"
	"io/fs"
	"strings"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/focusflow/focusflow/internal/models"
	"github.com/focusflow/focusflow/internal/timeutil"
)

// Bucket names. The sync bucket holds small user-editable configuration and
// the local bucket holds the frequently-updated counters and history,
// mirroring the two partitions the extension storage exposes.
var (
	syncBucket  = []byte("sync")
	localBucket = []byte("local")
)

// Keys within the buckets.
var (
	keyRules         = []byte("focusRules")
	keyDeepWork      = []byte("deepWork")
	keyTotalToday    = []byte("totalWastedToday")
	keyBreakdown     = []byte("siteBreakdownToday")
	keyLastResetDate = []byte("lastResetDate")
	keyHistory       = []byte("history")
	keyTheme         = []byte("theme")
)

var errFocusflowRunning = errors.New(
	"is focusflow already running? Only one instance can be active at a time",
)

// Client is a BoltDB database client.
type Client struct {
	*bolt.DB
}

// open creates or opens a database and locks it.
func openDB(dbPath string) (*bolt.DB, error) {
	var fileMode fs.FileMode = 0o600

	db, err := bolt.Open(
		dbPath,
		fileMode,
		&bolt.Options{Timeout: 1 * time.Second},
	)
	if err != nil {
		if errors.Is(err, bolt.ErrTimeout) {
			return nil, errFocusflowRunning
		}

		return nil, err
	}

	return db, nil
}

// NewClient returns a wrapper to a BoltDB connection. The buckets and the
// initial reset date are created if the database is new.
func NewClient(dbPath string, now time.Time) (*Client, error) {
	db, err := openDB(dbPath)
	if err != nil {
		return nil, err
	}

	err = db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(syncBucket); err != nil {
			return err
		}

		b, err := tx.CreateBucketIfNotExists(localBucket)
		if err != nil {
			return err
		}

		// First run: stamp the reset date so the first navigation does not
		// archive an empty phantom day.
		if b.Get(keyLastResetDate) == nil {
			return putJSON(b, keyLastResetDate, timeutil.DayKey(now))
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &Client{db}, nil
}

func putJSON(b *bolt.Bucket, key []byte, v any) error {
	value, err := json.Marshal(v)
	if err != nil {
		return err
	}

	return b.Put(key, value)
}

func getJSON(b *bolt.Bucket, key []byte, v any) error {
	data := b.Get(key)
	if len(data) == 0 {
		// Missing keys decode to the zero value; absence is never an error.
		return nil
	}

	return json.Unmarshal(data, v)
}

// Rules returns the configured focus rules in insertion order.
func (c *Client) Rules() ([]models.Rule, error) {
	var rules []models.Rule

	err := c.View(func(tx *bolt.Tx) error {
		return getJSON(tx.Bucket(syncBucket), keyRules, &rules)
	})

	return rules, err
}

// SaveRules overwrites the rule list.
func (c *Client) SaveRules(rules []models.Rule) error {
	return c.Update(func(tx *bolt.Tx) error {
		return putJSON(tx.Bucket(syncBucket), keyRules, rules)
	})
}

// UpsertRule replaces any rule with the same pattern and appends the new one
// at the end of the list.
func (c *Client) UpsertRule(rule models.Rule) error {
	return c.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(syncBucket)

		var rules []models.Rule

		if err := getJSON(b, keyRules, &rules); err != nil {
			return err
		}

		updated := make([]models.Rule, 0, len(rules)+1)

		for _, r := range rules {
			if !strings.EqualFold(r.URL, rule.URL) {
				updated = append(updated, r)
			}
		}

		updated = append(updated, rule)

		return putJSON(b, keyRules, updated)
	})
}

// DeleteRule removes the rule matching the pattern. It reports whether a
// rule was removed.
func (c *Client) DeleteRule(pattern string) (bool, error) {
	var removed bool

	err := c.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(syncBucket)

		var rules []models.Rule

		if err := getJSON(b, keyRules, &rules); err != nil {
			return err
		}

		updated := rules[:0]

		for _, r := range rules {
			if strings.EqualFold(r.URL, pattern) {
				removed = true
				continue
			}

			updated = append(updated, r)
		}

		if !removed {
			return nil
		}

		return putJSON(b, keyRules, updated)
	})

	return removed, err
}

// DeepWork reports whether the deep work preference is enabled.
func (c *Client) DeepWork() (bool, error) {
	var enabled bool

	err := c.View(func(tx *bolt.Tx) error {
		return getJSON(tx.Bucket(syncBucket), keyDeepWork, &enabled)
	})

	return enabled, err
}

// SetDeepWork updates the deep work preference.
func (c *Client) SetDeepWork(enabled bool) error {
	return c.Update(func(tx *bolt.Tx) error {
		return putJSON(tx.Bucket(syncBucket), keyDeepWork, enabled)
	})
}

// Theme returns the stored display theme, defaulting to light.
func (c *Client) Theme() (string, error) {
	theme := models.ThemeLight

	err := c.View(func(tx *bolt.Tx) error {
		return getJSON(tx.Bucket(localBucket), keyTheme, &theme)
	})

	if theme != models.ThemeDark {
		theme = models.ThemeLight
	}

	return theme, err
}

// SetTheme updates the stored display theme.
func (c *Client) SetTheme(theme string) error {
	return c.Update(func(tx *bolt.Tx) error {
		return putJSON(tx.Bucket(localBucket), keyTheme, theme)
	})
}

// Counters returns the daily counters.
func (c *Client) Counters() (models.DailyCounters, error) {
	counters := models.DailyCounters{
		SiteBreakdownToday: map[string]int{},
	}

	err := c.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(localBucket)

		if err := getJSON(b, keyTotalToday, &counters.TotalWastedToday); err != nil {
			return err
		}

		if err := getJSON(b, keyBreakdown, &counters.SiteBreakdownToday); err != nil {
			return err
		}

		return getJSON(b, keyLastResetDate, &counters.LastResetDate)
	})

	if counters.SiteBreakdownToday == nil {
		counters.SiteBreakdownToday = map[string]int{}
	}

	return counters, err
}

// IncrementToday adds secs to the daily total and to the active site's
// bucket in a single transaction so the two never diverge.
func (c *Client) IncrementToday(site string, secs int) error {
	return c.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(localBucket)

		var total int

		if err := getJSON(b, keyTotalToday, &total); err != nil {
			return err
		}

		if err := putJSON(b, keyTotalToday, total+secs); err != nil {
			return err
		}

		breakdown := map[string]int{}

		if err := getJSON(b, keyBreakdown, &breakdown); err != nil {
			return err
		}

		breakdown[site] += secs

		return putJSON(b, keyBreakdown, breakdown)
	})
}

// History returns the archived daily entries, oldest first.
func (c *Client) History() ([]models.HistoryEntry, error) {
	var history []models.HistoryEntry

	err := c.View(func(tx *bolt.Tx) error {
		return getJSON(tx.Bucket(localBucket), keyHistory, &history)
	})

	return history, err
}

// ApplyRollover archives the current counters under the stored reset date
// and zeroes them for the new day. The check and the write happen in one
// transaction, so concurrent invocations cannot double-archive. It reports
// whether a rollover occurred.
func (c *Client) ApplyRollover(today string) (bool, error) {
	var rolled bool

	err := c.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(localBucket)

		var lastReset string

		if err := getJSON(b, keyLastResetDate, &lastReset); err != nil {
			return err
		}

		if lastReset == today {
			return nil
		}

		// An uninitialized store only needs its date stamped.
		if lastReset != "" {
			var total int

			if err := getJSON(b, keyTotalToday, &total); err != nil {
				return err
			}

			breakdown := map[string]int{}

			if err := getJSON(b, keyBreakdown, &breakdown); err != nil {
				return err
			}

			var history []models.HistoryEntry

			if err := getJSON(b, keyHistory, &history); err != nil {
				return err
			}

			history = append(history, models.HistoryEntry{
				Date:      lastReset,
				Seconds:   total,
				Breakdown: breakdown,
			})

			if len(history) > models.MaxHistoryEntries {
				history = history[len(history)-models.MaxHistoryEntries:]
			}

			if err := putJSON(b, keyHistory, history); err != nil {
				return err
			}

			rolled = true
		}

		if err := putJSON(b, keyTotalToday, 0); err != nil {
			return err
		}

		if err := putJSON(b, keyBreakdown, map[string]int{}); err != nil {
			return err
		}

		return putJSON(b, keyLastResetDate, today)
	})

	return rolled, err
}
