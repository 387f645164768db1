package rollover_test

import (
	"sync"
	"testing"
	"time"

	"github.com/focusflow/focusflow/rollover"
)

type recordingStore struct {
	mu    sync.Mutex
	calls []string
	rolls int
}

func (r *recordingStore) ApplyRollover(today string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.calls = append(r.calls, today)

	if len(r.calls) > 1 && r.calls[len(r.calls)-2] == today {
		return false, nil
	}

	r.rolls++

	return true, nil
}

func TestCheckAndRolloverPassesDayKey(t *testing.T) {
	st := &recordingStore{}
	m := rollover.NewManager(st)

	now := time.Date(2024, 1, 2, 8, 30, 0, 0, time.UTC)

	if err := m.CheckAndRollover(now); err != nil {
		t.Fatal(err)
	}

	if len(st.calls) != 1 || st.calls[0] != "1/2/2024" {
		t.Errorf("store called with %v, want [1/2/2024]", st.calls)
	}
}

func TestConcurrentInvocationsSerialize(t *testing.T) {
	st := &recordingStore{}
	m := rollover.NewManager(st)

	now := time.Date(2024, 1, 2, 8, 30, 0, 0, time.UTC)

	var wg sync.WaitGroup

	for range 16 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			_ = m.CheckAndRollover(now)
		}()
	}

	wg.Wait()

	// The store's transactional check makes repeats no-ops; with the
	// manager serializing callers, exactly one archive happens.
	if st.rolls != 1 {
		t.Errorf("rollover archived %d times, want 1", st.rolls)
	}
}
