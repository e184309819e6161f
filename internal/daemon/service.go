// Package daemon provides the long-running background quota monitor service.
package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/GiGiDKR/tokenwatch/internal/engine"
	"github.com/GiGiDKR/tokenwatch/internal/fetch"
	"github.com/GiGiDKR/tokenwatch/internal/model"
	"github.com/GiGiDKR/tokenwatch/internal/store"
)

// Config controls the daemon runtime behavior.
type Config struct {
	Plan          model.Plan
	DataDir       string
	CustomBuffer  float64
	Interval      time.Duration
	Addr          string
	EventsBuffer  int
	HistoryKeep   int
	DesktopAlerts bool
	WatchDataDir  bool
}

// Delta captures report deltas between polls.
type Delta struct {
	TokensUsed     int64   `json:"tokens_used"`
	TokensLeft     int64   `json:"tokens_left"`
	UsagePercent   float64 `json:"usage_percent"`
	BurnRatePerMin float64 `json:"burn_rate_per_min"`
}

func (d Delta) isZero() bool {
	return d.TokensUsed == 0 &&
		d.TokensLeft == 0 &&
		d.UsagePercent == 0 &&
		d.BurnRatePerMin == 0
}

// Event is emitted whenever the evaluated report changes.
type Event struct {
	ID        int64        `json:"id"`
	Type      string       `json:"type"`
	Timestamp time.Time    `json:"timestamp"`
	Report    model.Report `json:"report"`
	Delta     Delta        `json:"delta"`
}

// Status is served at /v1/status.
type Status struct {
	StartedAt       time.Time    `json:"started_at"`
	LastPollAt      time.Time    `json:"last_poll_at"`
	PollIntervalSec int          `json:"poll_interval_sec"`
	PollCount       int64        `json:"poll_count"`
	Plan            model.Plan   `json:"plan"`
	DataDir         string       `json:"data_dir"`
	Report          model.Report `json:"report"`
	LastError       string       `json:"last_error,omitempty"`
	EventCount      int          `json:"event_count"`
	SubscriberCount int          `json:"subscriber_count"`
}

// Service provides the daemon runtime and HTTP API.
type Service struct {
	cfg  Config
	src  fetch.Source
	eval *engine.Evaluator

	history *store.Cache // nil disables /v1/history persistence
	alerter *Alerter
	logger  zerolog.Logger

	mu          sync.RWMutex
	startedAt   time.Time
	lastPollAt  time.Time
	pollCount   int64
	lastError   string
	hasReport   bool
	report      model.Report
	nextEventID int64
	events      []Event

	nextSubID int
	subs      map[int]chan Event
}

// New returns a new daemon service polling the given source.
func New(cfg Config, src fetch.Source, history *store.Cache, logger zerolog.Logger) *Service {
	if cfg.Interval < time.Second {
		cfg.Interval = 3 * time.Second
	}
	if cfg.EventsBuffer < 1 {
		cfg.EventsBuffer = 200
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8707"
	}
	if cfg.Plan == "" {
		cfg.Plan = model.PlanPro
	}

	eval := engine.NewEvaluator()
	if cfg.CustomBuffer > 0 {
		eval.Limits.CustomBuffer = cfg.CustomBuffer
	}

	return &Service{
		cfg:       cfg,
		src:       src,
		eval:      eval,
		history:   history,
		alerter:   NewAlerter(cfg.DesktopAlerts, logger),
		logger:    logger,
		startedAt: time.Now().UTC(),
		subs:      make(map[int]chan Event),
	}
}

// Run starts HTTP endpoints and polling until ctx is canceled.
func (s *Service) Run(ctx context.Context) error {
	registerMetrics()

	server := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	var wake <-chan struct{}
	if s.cfg.WatchDataDir {
		watcher, err := NewWatcher(s.cfg.DataDir, s.logger)
		if err != nil {
			s.logger.Warn().Err(err).Msg("data dir watch unavailable, polling only")
		} else {
			defer watcher.Close()
			go watcher.Run(ctx)
			wake = watcher.C
		}
	}

	// Seed an initial report so status is useful immediately.
	s.pollOnce()

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		case <-ticker.C:
			s.pollOnce()
		case <-wake:
			s.invalidateSource()
			s.pollOnce()
		case err := <-errCh:
			return fmt.Errorf("daemon http server: %w", err)
		}
	}
}

func (s *Service) router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Get("/metrics", promhttp.Handler().ServeHTTP)
	r.Route("/v1", func(r chi.Router) {
		r.Get("/report", s.handleReport)
		r.Get("/status", s.handleStatus)
		r.Get("/events", s.handleEvents)
		r.Get("/stream", s.handleStream)
		r.Get("/history", s.handleHistory)
	})
	return r
}

func (s *Service) invalidateSource() {
	if c, ok := s.src.(*fetch.Cached); ok {
		c.Invalidate()
	}
}

func (s *Service) pollOnce() {
	now := time.Now().UTC()
	pollsTotal.Inc()

	data := s.src.Fetch(now)
	report, err := s.eval.Evaluate(data, s.cfg.Plan, now)
	if err != nil {
		pollErrorsTotal.Inc()
		s.mu.Lock()
		s.lastError = err.Error()
		s.lastPollAt = now
		s.pollCount++
		s.mu.Unlock()
		s.logger.Error().Err(err).Msg("evaluation failed")
		return
	}

	observeReport(report)

	var (
		ev      Event
		publish bool
	)

	s.mu.Lock()
	prev := s.report
	prevExists := s.hasReport

	s.hasReport = true
	s.report = report
	s.lastPollAt = now
	s.pollCount++
	s.lastError = ""

	if !prevExists {
		s.nextEventID++
		ev = Event{
			ID:        s.nextEventID,
			Type:      "report",
			Timestamp: now,
			Report:    report,
			Delta:     Delta{},
		}
		publish = true
	} else {
		delta := diffReports(prev, report)
		if !delta.isZero() || prev.Status != report.Status {
			s.nextEventID++
			ev = Event{
				ID:        s.nextEventID,
				Type:      "usage_delta",
				Timestamp: now,
				Report:    report,
				Delta:     delta,
			}
			publish = true
		}
	}
	s.mu.Unlock()

	if publish {
		s.publishEvent(ev)
	}

	s.alerter.Notify(report)
	s.persistReport(report)
}

func (s *Service) persistReport(r model.Report) {
	if s.history == nil {
		return
	}
	if err := s.history.AppendReport(r); err != nil {
		s.logger.Warn().Err(err).Msg("report history append failed")
		return
	}
	if s.cfg.HistoryKeep > 0 {
		if err := s.history.PruneReports(s.cfg.HistoryKeep); err != nil {
			s.logger.Warn().Err(err).Msg("report history prune failed")
		}
	}
}

func diffReports(prev, curr model.Report) Delta {
	return Delta{
		TokensUsed:     curr.TokensUsed - prev.TokensUsed,
		TokensLeft:     curr.TokensLeft - prev.TokensLeft,
		UsagePercent:   curr.UsagePercent - prev.UsagePercent,
		BurnRatePerMin: curr.BurnRatePerMin - prev.BurnRatePerMin,
	}
}

func (s *Service) publishEvent(ev Event) {
	eventsPublishedTotal.Inc()

	s.mu.Lock()
	s.events = append(s.events, ev)
	if len(s.events) > s.cfg.EventsBuffer {
		s.events = s.events[len(s.events)-s.cfg.EventsBuffer:]
	}

	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
	s.mu.Unlock()
}

func (s *Service) snapshotStatus() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Status{
		StartedAt:       s.startedAt,
		LastPollAt:      s.lastPollAt,
		PollIntervalSec: int(s.cfg.Interval.Seconds()),
		PollCount:       s.pollCount,
		Plan:            s.cfg.Plan,
		DataDir:         s.cfg.DataDir,
		Report:          s.report,
		LastError:       s.lastError,
		EventCount:      len(s.events),
		SubscriberCount: len(s.subs),
	}
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Service) handleReport(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	report := s.report
	s.mu.RUnlock()

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(report)
}

func (s *Service) handleStatus(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(s.snapshotStatus())
}

func (s *Service) handleEvents(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	events := make([]Event, len(s.events))
	copy(events, s.events)
	s.mu.RUnlock()

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(events)
}

func (s *Service) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		http.Error(w, "history not enabled", http.StatusNotFound)
		return
	}

	page := queryInt(r, "page", 1)
	pageSize := queryInt(r, "page_size", 50)

	hp, err := s.history.History(page, pageSize)
	if err != nil {
		s.logger.Error().Err(err).Msg("history query failed")
		http.Error(w, "history query failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(hp)
}

func queryInt(r *http.Request, key string, def int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return def
	}
	return n
}

func (s *Service) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := make(chan Event, 16)
	id := s.addSubscriber(ch)
	defer s.removeSubscriber(id)

	// Send the current report immediately.
	s.mu.RLock()
	current := Event{
		Type:      "report",
		Timestamp: time.Now().UTC(),
		Report:    s.report,
	}
	s.mu.RUnlock()
	writeSSE(w, current)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev := <-ch:
			writeSSE(w, ev)
			flusher.Flush()
		}
	}
}

func writeSSE(w http.ResponseWriter, ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	_, _ = fmt.Fprintf(w, "event: %s\n", ev.Type)
	_, _ = fmt.Fprintf(w, "data: %s\n\n", data)
}

func (s *Service) addSubscriber(ch chan Event) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSubID++
	id := s.nextSubID
	s.subs[id] = ch
	return id
}

func (s *Service) removeSubscriber(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, id)
}
