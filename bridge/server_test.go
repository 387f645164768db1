package bridge

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/focusflow/focusflow/bus"
	"github.com/focusflow/focusflow/internal/config"
	"github.com/focusflow/focusflow/internal/models"
	"github.com/focusflow/focusflow/rollover"
	"github.com/focusflow/focusflow/store"
	"github.com/focusflow/focusflow/timer"
	"github.com/focusflow/focusflow/tracker"
)

func testServer(t *testing.T) (*Server, *store.Client) {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "focusflow.db")

	db, err := store.NewClient(dbPath, time.Now())
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}

	t.Cleanup(func() {
		_ = db.Close()
	})

	cfg := config.Default()
	cfg.Timer.TickInterval = time.Hour
	cfg.Notify.Enabled = false

	router := bus.NewRouter()
	tr := tracker.New(db, rollover.NewManager(db), router)

	return New(cfg, db, router, tr), db
}

func postJSON(t *testing.T, ts *httptest.Server, path string, v any) *http.Response {
	t.Helper()

	body, err := json.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}

	resp, err := http.Post(
		ts.URL+path,
		"application/json",
		bytes.NewReader(body),
	)
	if err != nil {
		t.Fatal(err)
	}

	return resp
}

func waitForPage(t *testing.T, ts *httptest.Server, tab int) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)

	for time.Now().Before(deadline) {
		resp, err := http.Get(
			ts.URL + "/api/time?tab=" + strconv.Itoa(tab),
		)
		if err == nil {
			resp.Body.Close()

			if resp.StatusCode == http.StatusOK {
				return
			}
		}

		time.Sleep(10 * time.Millisecond)
	}

	t.Fatalf("page context for tab %d never attached", tab)
}

func TestEventEndpointCommandsAttachedPage(t *testing.T) {
	srv, db := testServer(t)

	err := db.SaveRules([]models.Rule{
		{URL: "youtube.com", TotalSeconds: 600},
	})
	if err != nil {
		t.Fatal(err)
	}

	ts := httptest.NewServer(srv.routes())
	defer ts.Close()

	// Attach a page context for tab 5.
	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws?tab=5"

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dialing websocket: %v", err)
	}
	defer conn.Close()

	// Registration happens just after the handshake; wait for the page
	// context to be queryable before sending the event.
	waitForPage(t, ts, 5)

	resp := postJSON(t, ts, "/api/events", tracker.TabEvent{
		TabID: 5,
		URL:   "https://youtube.com/watch?v=abc",
		Kind:  tracker.TabNavigated,
	})
	resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("event status = %d, want 202", resp.StatusCode)
	}

	// The countdown for tab 5 must now answer getTime.
	timeResp, err := http.Get(ts.URL + "/api/time?tab=5")
	if err != nil {
		t.Fatal(err)
	}
	defer timeResp.Body.Close()

	if timeResp.StatusCode != http.StatusOK {
		t.Fatalf("time status = %d, want 200", timeResp.StatusCode)
	}

	var reply bus.TimeReply

	if err := json.NewDecoder(timeResp.Body).Decode(&reply); err != nil {
		t.Fatal(err)
	}

	if reply.Limit != 600 {
		t.Errorf("limit = %d, want 600", reply.Limit)
	}

	// The attached page shows up in the summary's tab count.
	sumResp, err := http.Get(ts.URL + "/api/summary")
	if err != nil {
		t.Fatal(err)
	}
	defer sumResp.Body.Close()

	var summary struct {
		TrackedTabs int `json:"trackedTabs"`
	}

	if err := json.NewDecoder(sumResp.Body).Decode(&summary); err != nil {
		t.Fatal(err)
	}

	if summary.TrackedTabs != 1 {
		t.Errorf("trackedTabs = %d, want 1", summary.TrackedTabs)
	}
}

func TestCommandRacingTeardownIsIgnored(t *testing.T) {
	srv, _ := testServer(t)

	client := newPageClient(7, nil)
	client.session = srv.newSession(client)
	srv.router.Register(7, client.session)

	// The teardown sequence handleWS runs when the socket drops.
	srv.router.Unregister(7, client.session)
	client.close()
	client.session.Destroy()

	// A startTimer that captured the handler before Unregister lands late.
	// It must neither restart the countdown nor panic on a frame push.
	client.session.Deliver(bus.Message{
		Action: bus.ActionStartTimer,
		Limit:  60,
		Site:   "x.com",
	})

	if st := client.session.State(); st != timer.Idle {
		t.Fatalf("state = %s, want idle after teardown", st)
	}

	client.session.Tick()

	if got := client.session.Time(); got.Elapsed != 0 {
		t.Errorf("torn-down session ticked to %d", got.Elapsed)
	}
}

func TestConfiguredQuotePoolReachesWarnings(t *testing.T) {
	srv, _ := testServer(t)
	srv.cfg.Notify.QuoteOverrides = []string{"stay focused"}

	client := newPageClient(3, nil)
	client.session = srv.newSession(client)

	defer client.session.Destroy()

	client.session.Start(6, "x.com")
	client.session.Tick() // time left hits the warning lead

	select {
	case f := <-client.send:
		if f.Type != "warning" || f.Quote != "stay focused" {
			t.Errorf("frame = %+v, want the configured quote", f)
		}
	default:
		t.Fatal("no warning frame was pushed")
	}
}

func TestTimeEndpointWithoutPageIsNotFound(t *testing.T) {
	srv, _ := testServer(t)

	ts := httptest.NewServer(srv.routes())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/time?tab=99")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestSummaryAndPreferences(t *testing.T) {
	srv, db := testServer(t)

	if err := db.IncrementToday("x.com", 16*60); err != nil {
		t.Fatal(err)
	}

	ts := httptest.NewServer(srv.routes())
	defer ts.Close()

	resp := postJSON(t, ts, "/api/preferences", map[string]bool{
		"deepWork": true,
	})
	resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("preferences status = %d, want 204", resp.StatusCode)
	}

	sumResp, err := http.Get(ts.URL + "/api/summary")
	if err != nil {
		t.Fatal(err)
	}
	defer sumResp.Body.Close()

	var summary struct {
		TotalWastedToday int    `json:"totalWastedToday"`
		Grade            string `json:"grade"`
		DeepWork         bool   `json:"deepWork"`
	}

	if err := json.NewDecoder(sumResp.Body).Decode(&summary); err != nil {
		t.Fatal(err)
	}

	if summary.TotalWastedToday != 16*60 {
		t.Errorf("total = %d, want %d", summary.TotalWastedToday, 16*60)
	}

	if summary.Grade != "B" {
		t.Errorf("grade = %q, want B", summary.Grade)
	}

	if !summary.DeepWork {
		t.Error("deep work toggle did not persist")
	}
}

func TestMalformedEventIsRejected(t *testing.T) {
	srv, _ := testServer(t)

	ts := httptest.NewServer(srv.routes())
	defer ts.Close()

	resp, err := http.Post(
		ts.URL+"/api/events",
		"application/json",
		strings.NewReader("{not json"),
	)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}
