// Package bridge exposes the coordinator to real browser contexts over HTTP
// and websockets. The extension shim posts tab lifecycle events to the
// events endpoint; each page opens a websocket that hosts its countdown
// session and receives warning and degradation frames.
package bridge

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/focusflow/focusflow/bus"
	"github.com/focusflow/focusflow/history"
	"github.com/focusflow/focusflow/internal/config"
	"github.com/focusflow/focusflow/store"
	"github.com/focusflow/focusflow/timer"
	"github.com/focusflow/focusflow/tracker"
)

// Server hosts the event ingress, the page websockets, and the summary API.
type Server struct {
	cfg     *config.Config
	store   *store.Client
	router  *bus.Router
	tracker *tracker.Tracker
	log     *slog.Logger

	mu        sync.Mutex
	activeTab int

	upgrader websocket.Upgrader
	httpSrv  *http.Server
}

// New assembles the bridge around a store and the coordinator collaborators.
func New(
	cfg *config.Config,
	st *store.Client,
	router *bus.Router,
	tr *tracker.Tracker,
) *Server {
	return &Server{
		cfg:     cfg,
		store:   st,
		router:  router,
		tracker: tr,
		log:     slog.Default(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The daemon only listens on loopback; the extension's origin
			// is not a meaningful trust boundary there.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// routes builds the HTTP surface.
func (s *Server) routes() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	engine := gin.New()
	engine.Use(gin.Recovery())

	engine.POST("/api/events", s.handleEvent)
	engine.GET("/api/summary", s.handleSummary)
	engine.GET("/api/time", s.handleTime)
	engine.POST("/api/preferences", s.handlePreferences)
	engine.GET("/ws", s.handleWS)

	return engine
}

// Run serves until the context is canceled.
func (s *Server) Run(ctx context.Context) error {
	s.httpSrv = &http.Server{
		Addr:              s.cfg.Server.Addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 1)

	go func() {
		errc <- s.httpSrv.ListenAndServe()
	}()

	s.log.Info("bridge listening", "addr", s.cfg.Server.Addr)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(
			context.Background(),
			5*time.Second,
		)
		defer cancel()

		_ = s.httpSrv.Shutdown(shutdownCtx)

		return nil
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}

		return err
	}
}

// handleEvent receives a tab activation or navigation-complete event.
func (s *Server) handleEvent(c *gin.Context) {
	var ev tracker.TabEvent

	if err := c.ShouldBindJSON(&ev); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed event"})
		return
	}

	s.mu.Lock()
	s.activeTab = ev.TabID
	s.mu.Unlock()

	s.tracker.HandleTabEvent(c.Request.Context(), ev)

	c.Status(http.StatusAccepted)
}

// handleSummary reports today's total and the productivity grade for the
// popup surface.
func (s *Server) handleSummary(c *gin.Context) {
	counters, err := s.store.Counters()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "store unavailable"})
		return
	}

	deepWork, err := s.store.DeepWork()
	if err != nil {
		deepWork = false
	}

	c.JSON(http.StatusOK, gin.H{
		"totalWastedToday": counters.TotalWastedToday,
		"grade":            history.Grade(counters.TotalWastedToday),
		"lastResetDate":    counters.LastResetDate,
		"deepWork":         deepWork,
		"trackedTabs":      len(s.router.Tabs()),
	})
}

// handlePreferences updates the user preferences the popup can toggle.
func (s *Server) handlePreferences(c *gin.Context) {
	var prefs struct {
		DeepWork *bool `json:"deepWork"`
	}

	if err := c.ShouldBindJSON(&prefs); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed preferences"})
		return
	}

	if prefs.DeepWork != nil {
		if err := s.store.SetDeepWork(*prefs.DeepWork); err != nil {
			c.JSON(
				http.StatusInternalServerError,
				gin.H{"error": "store unavailable"},
			)

			return
		}
	}

	c.Status(http.StatusNoContent)
}

// handleTime answers a getTime query for a tab, defaulting to the most
// recently active one.
func (s *Server) handleTime(c *gin.Context) {
	tabID := s.currentTab()

	if q := c.Query("tab"); q != "" {
		id, err := strconv.Atoi(q)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid tab id"})
			return
		}

		tabID = id
	}

	reply, delivery := s.router.Query(tabID)
	if delivery == bus.Unreachable {
		c.JSON(http.StatusNotFound, gin.H{"error": "no active timer"})
		return
	}

	c.JSON(http.StatusOK, reply)
}

func (s *Server) currentTab() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.activeTab
}

// handleWS attaches a page context. The countdown session lives here for as
// long as the socket does; teardown discards it without requiring an
// explicit stop command.
func (s *Server) handleWS(c *gin.Context) {
	tabID, err := strconv.Atoi(c.Query("tab"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid tab id"})
		return
	}

	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.log.Debug("websocket upgrade failed", "error", err)
		return
	}

	client := newPageClient(tabID, conn)
	client.session = s.newSession(client)

	s.router.Register(tabID, client.session)

	s.log.Info("page context attached", "tab", tabID)

	go client.writePump()

	client.readPump(func() {
		s.router.Unregister(tabID, client.session)
		client.close()
		client.session.Destroy()

		s.log.Info("page context detached", "tab", tabID)
	})
}

// newSession builds the countdown session for a page client, applying any
// configured quote pool.
func (s *Server) newSession(client *pageClient) *timer.Session {
	return timer.NewSession(
		s.cfg,
		s.store,
		client,
		timer.WithQuotes(s.cfg.Notify.QuoteOverrides),
	)
}
