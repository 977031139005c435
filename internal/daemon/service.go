// Package daemon provides the long-running background forecast service.
package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/theirongolddev/ledgercast/internal/engine"
	"github.com/theirongolddev/ledgercast/internal/model"
	"github.com/theirongolddev/ledgercast/internal/pipeline"
	"github.com/theirongolddev/ledgercast/internal/reportcache"
	"github.com/theirongolddev/ledgercast/internal/store"
)

const (
	defaultSchedule     = "@every 5m"
	defaultAddr         = "127.0.0.1:8787"
	defaultEventsBuffer = 200
	defaultReportTTL    = time.Hour
)

// Event types.
const (
	EventSnapshot        = "snapshot"
	EventInsightAdded    = "insight_added"
	EventInsightCleared  = "insight_cleared"
	EventForecastChanged = "forecast_changed"
)

// Config controls the daemon runtime behavior.
type Config struct {
	DataDir       string
	Load          pipeline.LoadOptions
	UseCache      bool
	HistoryMonths int
	MonthsAhead   int
	Schedule      string // cron spec, e.g. "@every 5m" or "0 6 * * *"
	Addr          string
	EventsBuffer  int
	Reports       reportcache.Cache // nil means an in-memory cache
	Logger        *logrus.Logger
	Now           func() time.Time
}

// Event is emitted when a recompute changes what the user would see.
type Event struct {
	ID        int64                `json:"id"`
	Type      string               `json:"type"`
	Timestamp time.Time            `json:"timestamp"`
	Insight   *model.Insight       `json:"insight,omitempty"`
	Forecast  *model.ForecastPoint `json:"forecast,omitempty"`
}

// Status is served at /v1/status.
type Status struct {
	StartedAt       time.Time `json:"started_at"`
	LastPollAt      time.Time `json:"last_poll_at"`
	Schedule        string    `json:"schedule"`
	PollCount       int64     `json:"poll_count"`
	CacheHits       int64     `json:"cache_hits"`
	DataDir         string    `json:"data_dir"`
	Fingerprint     string    `json:"fingerprint,omitempty"`
	Transactions    int       `json:"transactions"`
	Insights        int       `json:"insights"`
	LastError       string    `json:"last_error,omitempty"`
	EventCount      int       `json:"event_count"`
	SubscriberCount int       `json:"subscriber_count"`
}

// Service provides the daemon runtime and HTTP API.
type Service struct {
	cfg  Config
	log  *logrus.Logger
	load func() (*pipeline.LoadResult, error)

	mu           sync.RWMutex
	startedAt    time.Time
	lastPollAt   time.Time
	pollCount    int64
	cacheHits    int64
	lastError    string
	report       *model.Report
	fingerprint  string
	transactions int
	nextEventID  int64
	events       []Event

	nextSubID int
	subs      map[int]chan Event
}

// New returns a daemon service with defaults applied. It fails when the
// schedule is not a valid cron expression.
func New(cfg Config) (*Service, error) {
	if cfg.Schedule == "" {
		cfg.Schedule = defaultSchedule
	}
	if _, err := cron.ParseStandard(cfg.Schedule); err != nil {
		return nil, fmt.Errorf("invalid schedule %q: %w", cfg.Schedule, err)
	}
	if cfg.EventsBuffer < 1 {
		cfg.EventsBuffer = defaultEventsBuffer
	}
	if cfg.Addr == "" {
		cfg.Addr = defaultAddr
	}
	if cfg.HistoryMonths < 1 {
		cfg.HistoryMonths = 12
	}
	if cfg.Reports == nil {
		cfg.Reports = reportcache.NewMemory(defaultReportTTL, 64)
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	log := cfg.Logger
	if log == nil {
		log = logrus.New()
		log.SetFormatter(&logrus.JSONFormatter{})
	}
	if cfg.Load.Logger == nil {
		cfg.Load.Logger = log
	}

	s := &Service{
		cfg:       cfg,
		log:       log,
		startedAt: cfg.Now(),
		subs:      make(map[int]chan Event),
	}
	s.load = s.loadLedgers
	return s, nil
}

// Run starts HTTP endpoints and the recompute schedule until ctx is canceled.
func (s *Service) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Seed the first report so the API is useful immediately.
	s.pollOnce(ctx)

	sched, err := s.scheduler(ctx)
	if err != nil {
		return err
	}
	sched.Start()
	defer func() { <-sched.Stop().Done() }()

	s.log.WithFields(logrus.Fields{"addr": s.cfg.Addr, "schedule": s.cfg.Schedule}).Info("daemon started")

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-errCh:
		return fmt.Errorf("daemon http server: %w", err)
	}
}

// scheduler registers pollOnce on the configured schedule. A tick that fires
// while the previous recompute is still running is skipped, so events are
// published in load order.
func (s *Service) scheduler(ctx context.Context) (*cron.Cron, error) {
	logger := cronLogger{s.log}
	sched := cron.New(
		cron.WithLogger(logger),
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	)
	if _, err := sched.AddFunc(s.cfg.Schedule, func() { s.pollOnce(ctx) }); err != nil {
		return nil, fmt.Errorf("scheduling recompute: %w", err)
	}
	return sched, nil
}

// cronLogger routes scheduler messages to logrus. Routine messages go to
// debug.
type cronLogger struct {
	log logrus.FieldLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.WithFields(cronFields(keysAndValues)).Debug("cron " + msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.WithFields(cronFields(keysAndValues)).WithError(err).Error("cron " + msg)
}

func cronFields(kv []interface{}) logrus.Fields {
	fields := make(logrus.Fields, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		fields[fmt.Sprint(kv[i])] = kv[i+1]
	}
	return fields
}

// Handler returns the HTTP API router.
func (s *Service) Handler() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	for path, h := range map[string]http.HandlerFunc{
		"/v1/status":   s.handleStatus,
		"/v1/report":   s.handleReport,
		"/v1/forecast": s.handleForecast,
		"/v1/insights": s.handleInsights,
		"/v1/goals":    s.handleGoals,
		"/v1/events":   s.handleEvents,
		"/v1/stream":   s.handleStream,
	} {
		r.HandleFunc(path, h).Methods(http.MethodGet)
	}
	return r
}

func (s *Service) pollOnce(ctx context.Context) {
	start := s.cfg.Now()

	result, err := s.load()
	if err != nil {
		s.recordError(err)
		s.log.WithError(err).Error("loading ledgers")
		return
	}

	asOf := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	in := engine.Input{
		Transactions: pipeline.Window(result.Transactions, asOf, s.cfg.HistoryMonths),
		Budgets:      result.Budgets,
		Goals:        result.Goals,
		AsOf:         asOf,
		MonthsAhead:  s.cfg.MonthsAhead,
	}

	report, fp, hit, err := s.compute(ctx, in)
	if err != nil {
		s.recordError(err)
		s.log.WithError(err).Error("computing report")
		return
	}

	s.mu.Lock()
	prev := s.report
	s.report = report
	s.fingerprint = fp
	s.transactions = len(in.Transactions)
	s.lastPollAt = start
	s.pollCount++
	if hit {
		s.cacheHits++
	}
	s.lastError = ""
	s.mu.Unlock()

	events := diffReports(prev, report)
	for _, ev := range events {
		ev.Timestamp = start
		s.publishEvent(ev)
	}

	s.log.WithFields(logrus.Fields{
		"fingerprint":  fp,
		"cache_hit":    hit,
		"transactions": len(in.Transactions),
		"insights":     len(report.Insights),
		"events":       len(events),
	}).Info("report recomputed")
}

// compute returns the cached report for the input's fingerprint, or runs the
// engine and stores the result. Cache failures degrade to a fresh run.
func (s *Service) compute(ctx context.Context, in engine.Input) (*model.Report, string, bool, error) {
	fp, err := reportcache.Fingerprint(in)
	if err != nil {
		return nil, "", false, err
	}

	cached, ok, err := reportcache.GetReport(ctx, s.cfg.Reports, fp)
	if err != nil {
		s.log.WithError(err).Warn("report cache read failed")
	}
	if ok {
		return cached, fp, true, nil
	}

	report, err := engine.Run(in)
	if err != nil {
		return nil, fp, false, err
	}
	if err := reportcache.PutReport(ctx, s.cfg.Reports, fp, report); err != nil {
		s.log.WithError(err).Warn("report cache write failed")
	}
	return report, fp, false, nil
}

func (s *Service) recordError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastError = err.Error()
	s.lastPollAt = s.cfg.Now()
	s.pollCount++
}

func (s *Service) loadLedgers() (*pipeline.LoadResult, error) {
	if !s.cfg.UseCache {
		return pipeline.Load(s.cfg.DataDir, s.cfg.Load, nil)
	}

	cache, err := store.Open(pipeline.CachePath())
	if err != nil {
		s.log.WithError(err).Debug("cache unavailable")
		return pipeline.Load(s.cfg.DataDir, s.cfg.Load, nil)
	}
	defer func() { _ = cache.Close() }()

	cr, err := pipeline.LoadWithCache(s.cfg.DataDir, cache, s.cfg.Load, nil)
	if err == nil {
		return &cr.LoadResult, nil
	}
	// A malformed ledger fails both paths.
	var verr *model.ValidationError
	if errors.As(err, &verr) {
		return nil, err
	}
	s.log.WithError(err).Warn("cached load failed, reparsing")
	return pipeline.Load(s.cfg.DataDir, s.cfg.Load, nil)
}

// diffReports lists what changed between two consecutive reports. The first
// report yields a single snapshot event.
func diffReports(prev, curr *model.Report) []Event {
	if curr == nil {
		return nil
	}
	if prev == nil {
		return []Event{{Type: EventSnapshot, Forecast: firstPoint(curr)}}
	}

	var events []Event
	prevTags := tagSet(prev.Insights)
	currTags := tagSet(curr.Insights)

	for i := range curr.Insights {
		if _, ok := prevTags[curr.Insights[i].Tag]; !ok {
			in := curr.Insights[i]
			events = append(events, Event{Type: EventInsightAdded, Insight: &in})
		}
	}
	for i := range prev.Insights {
		if _, ok := currTags[prev.Insights[i].Tag]; !ok {
			in := prev.Insights[i]
			events = append(events, Event{Type: EventInsightCleared, Insight: &in})
		}
	}

	a, b := firstPoint(prev), firstPoint(curr)
	switch {
	case a == nil && b == nil:
	case a == nil || b == nil,
		a.MonthLabel != b.MonthLabel,
		math.Abs(a.PredictedAmount-b.PredictedAmount) >= 0.01:
		events = append(events, Event{Type: EventForecastChanged, Forecast: b})
	}
	return events
}

func tagSet(insights []model.Insight) map[string]struct{} {
	set := make(map[string]struct{}, len(insights))
	for _, in := range insights {
		set[in.Tag] = struct{}{}
	}
	return set
}

func firstPoint(r *model.Report) *model.ForecastPoint {
	if len(r.MonthlyPredictions) == 0 {
		return nil
	}
	p := r.MonthlyPredictions[0]
	return &p
}

func (s *Service) publishEvent(ev Event) {
	s.mu.Lock()
	s.nextEventID++
	ev.ID = s.nextEventID
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

	st := Status{
		StartedAt:       s.startedAt,
		LastPollAt:      s.lastPollAt,
		Schedule:        s.cfg.Schedule,
		PollCount:       s.pollCount,
		CacheHits:       s.cacheHits,
		DataDir:         s.cfg.DataDir,
		Fingerprint:     s.fingerprint,
		Transactions:    s.transactions,
		LastError:       s.lastError,
		EventCount:      len(s.events),
		SubscriberCount: len(s.subs),
	}
	if s.report != nil {
		st.Insights = len(s.report.Insights)
	}
	return st
}

func (s *Service) currentReport() *model.Report {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.report
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Service) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.snapshotStatus())
}

// withReport serves a projection of the current report, or 503 before the
// first successful recompute.
func (s *Service) withReport(w http.ResponseWriter, project func(*model.Report) any) {
	r := s.currentReport()
	if r == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "report not ready"})
		return
	}
	writeJSON(w, http.StatusOK, project(r))
}

func (s *Service) handleReport(w http.ResponseWriter, _ *http.Request) {
	s.withReport(w, func(r *model.Report) any { return r })
}

func (s *Service) handleForecast(w http.ResponseWriter, _ *http.Request) {
	s.withReport(w, func(r *model.Report) any {
		return struct {
			AsOf       time.Time                `json:"as_of"`
			Spending   []model.ForecastPoint    `json:"spending"`
			Income     []model.ForecastPoint    `json:"income"`
			Categories []model.CategoryForecast `json:"categories"`
		}{r.AsOf, r.MonthlyPredictions, r.IncomePredictions, r.CategoryPredictions}
	})
}

func (s *Service) handleInsights(w http.ResponseWriter, _ *http.Request) {
	s.withReport(w, func(r *model.Report) any { return r.Insights })
}

func (s *Service) handleGoals(w http.ResponseWriter, _ *http.Request) {
	s.withReport(w, func(r *model.Report) any {
		if r.Goals == nil {
			return []model.GoalProjection{}
		}
		return r.Goals
	})
}

func (s *Service) handleEvents(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "limit must be a positive integer"})
			return
		}
		limit = n
	}

	s.mu.RLock()
	src := s.events
	if limit > 0 && limit < len(src) {
		src = src[len(src)-limit:]
	}
	events := make([]Event, len(src))
	copy(events, src)
	s.mu.RUnlock()

	writeJSON(w, http.StatusOK, events)
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

	if rep := s.currentReport(); rep != nil {
		writeSSE(w, Event{Type: EventSnapshot, Timestamp: s.cfg.Now(), Forecast: firstPoint(rep)})
	}
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

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
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
