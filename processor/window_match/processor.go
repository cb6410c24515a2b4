// Package windowmatch runs a string matcher over a NATS subject and
// publishes completed matches as JSON events.
package windowmatch

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"github.com/c360/seqmatch/errors"
	"github.com/c360/seqmatch/health"
	"github.com/c360/seqmatch/match"
	"github.com/c360/seqmatch/metric"
	"github.com/c360/seqmatch/pkg/timestamp"
	"github.com/c360/seqmatch/pkg/worker"
	"github.com/c360/seqmatch/store"
)

// Config holds configuration for the window match processor.
type Config struct {
	// Name identifies the processor in logs, metrics and health reports.
	Name string `json:"name" yaml:"name"`

	// InputSubject is the NATS subject whose message payloads feed the
	// matcher, one item per message.
	InputSubject string `json:"input_subject" yaml:"input_subject"`

	// OutputSubject receives one MatchEvent per completed match.
	OutputSubject string `json:"output_subject" yaml:"output_subject"`

	// Source tags emitted events and journal rows.
	Source string `json:"source" yaml:"source"`

	// JournalWorkers and JournalQueue size the async journal writer.
	// Only used when a journal store is attached.
	JournalWorkers int `json:"journal_workers" yaml:"journal_workers"`
	JournalQueue   int `json:"journal_queue" yaml:"journal_queue"`
}

// DefaultConfig returns the default processor configuration.
func DefaultConfig() Config {
	return Config{
		Name:           "window-match-processor",
		InputSubject:   "items.raw",
		OutputSubject:  "matches.found",
		Source:         "nats",
		JournalWorkers: 4,
		JournalQueue:   256,
	}
}

// Validate checks the configuration for required fields.
func (c Config) Validate() error {
	if c.InputSubject == "" {
		return errors.WrapInvalid(errors.ErrMissingConfig,
			"WindowMatchProcessor", "Validate", "input subject required")
	}
	if c.OutputSubject == "" {
		return errors.WrapInvalid(errors.ErrMissingConfig,
			"WindowMatchProcessor", "Validate", "output subject required")
	}
	return nil
}

// MatchEvent is the JSON payload published for each completed match.
type MatchEvent struct {
	ID        string              `json:"id"`
	Source    string              `json:"source,omitempty"`
	Pattern   string              `json:"pattern"`
	Start     int64               `json:"start"`
	End       int64               `json:"end"`
	Items     []string            `json:"items"`
	Captures  map[string][]string `json:"captures,omitempty"`
	Value     string              `json:"value,omitempty"`
	Extracted bool                `json:"extracted"`
	Timestamp int64               `json:"timestamp"`
}

// Processor feeds NATS messages through a string matcher.
type Processor struct {
	cfg     Config
	matcher *match.Matcher[string]
	conn    *nats.Conn
	sub     *nats.Subscription
	journal *store.Store
	pool    *worker.Pool[store.Record]
	logger  *slog.Logger

	// matcherMu serializes window pushes; the matcher itself is not
	// safe for concurrent mutation.
	matcherMu sync.Mutex

	// Lifecycle management
	lifecycleMu sync.Mutex
	running     bool
	startTime   time.Time
	mu          sync.RWMutex

	// Counters (atomic)
	itemsProcessed int64
	matchesEmitted int64
	errorCount     int64
	lastActivity   time.Time

	// Prometheus metrics
	metrics         *processorMetrics
	metricsRegistry *metric.MetricsRegistry
}

// Option configures a Processor.
type Option func(*Processor)

// WithLogger sets the logger. Defaults to slog.Default.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Processor) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithJournal attaches a match journal. Writes are asynchronous and
// dropped under backpressure rather than stalling the scan path.
func WithJournal(s *store.Store) Option {
	return func(p *Processor) {
		p.journal = s
	}
}

// WithMetricsRegistry enables Prometheus metrics.
func WithMetricsRegistry(registry *metric.MetricsRegistry) Option {
	return func(p *Processor) {
		p.metricsRegistry = registry
	}
}

// NewProcessor creates a window match processor over an existing matcher
// and NATS connection.
func NewProcessor(cfg Config, matcher *match.Matcher[string], conn *nats.Conn, opts ...Option) (*Processor, error) {
	if cfg.Name == "" {
		cfg.Name = DefaultConfig().Name
	}
	if cfg.JournalWorkers <= 0 {
		cfg.JournalWorkers = DefaultConfig().JournalWorkers
	}
	if cfg.JournalQueue <= 0 {
		cfg.JournalQueue = DefaultConfig().JournalQueue
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if matcher == nil {
		return nil, errors.WrapInvalid(errors.ErrMissingConfig,
			"WindowMatchProcessor", "NewProcessor", "matcher required")
	}

	p := &Processor{
		cfg:     cfg,
		matcher: matcher,
		conn:    conn,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}

	metrics, err := newProcessorMetrics(p.metricsRegistry, cfg.Name)
	if err != nil {
		p.logger.Error("Failed to initialize window match metrics",
			"component", cfg.Name,
			"error", err)
		metrics = nil // Continue without metrics
	}
	p.metrics = metrics

	return p, nil
}

// Start subscribes to the input subject and begins scanning.
func (p *Processor) Start(ctx context.Context) error {
	p.lifecycleMu.Lock()
	defer p.lifecycleMu.Unlock()

	if p.running {
		return errors.WrapFatal(errors.ErrAlreadyStarted,
			"WindowMatchProcessor", "Start", "check running state")
	}
	if p.conn == nil {
		return errors.WrapFatal(errors.ErrNoConnection,
			"WindowMatchProcessor", "Start", "NATS connection required")
	}

	if p.journal != nil {
		p.pool = worker.NewPool(p.cfg.JournalWorkers, p.cfg.JournalQueue,
			func(ctx context.Context, rec store.Record) error {
				return p.journal.Save(ctx, &rec)
			})
		if err := p.pool.Start(ctx); err != nil {
			return errors.WrapFatal(err, "WindowMatchProcessor", "Start", "start journal workers")
		}
	}

	sub, err := p.conn.Subscribe(p.cfg.InputSubject, p.handleItem)
	if err != nil {
		return errors.WrapTransient(err, "WindowMatchProcessor", "Start",
			fmt.Sprintf("subscribe to %s", p.cfg.InputSubject))
	}
	p.sub = sub

	p.mu.Lock()
	p.running = true
	p.startTime = time.Now()
	p.mu.Unlock()

	p.logger.Info("Window match processor started",
		"component", p.cfg.Name,
		"input_subject", p.cfg.InputSubject,
		"output_subject", p.cfg.OutputSubject,
		"patterns", p.matcher.PatternCount(),
		"window_capacity", p.matcher.WindowCapacity(),
		"journal", p.journal != nil)

	return nil
}

// Stop unsubscribes and drains the journal queue within the timeout.
func (p *Processor) Stop(timeout time.Duration) error {
	p.lifecycleMu.Lock()
	defer p.lifecycleMu.Unlock()

	if !p.running {
		return nil
	}

	if p.sub != nil {
		if err := p.sub.Unsubscribe(); err != nil {
			p.logger.Warn("Failed to unsubscribe",
				"component", p.cfg.Name,
				"subject", p.cfg.InputSubject,
				"error", err)
		}
		p.sub = nil
	}

	if p.pool != nil {
		if err := p.pool.Stop(timeout); err != nil {
			return errors.WrapTransient(err,
				"WindowMatchProcessor", "Stop", "drain journal queue")
		}
	}

	p.mu.Lock()
	p.running = false
	p.mu.Unlock()

	p.logger.Info("Window match processor stopped",
		"component", p.cfg.Name,
		"items_processed", atomic.LoadInt64(&p.itemsProcessed),
		"matches_emitted", atomic.LoadInt64(&p.matchesEmitted))

	return nil
}

// handleItem scans one incoming item through the matcher.
func (p *Processor) handleItem(msg *nats.Msg) {
	atomic.AddInt64(&p.itemsProcessed, 1)
	p.mu.Lock()
	p.lastActivity = time.Now()
	p.mu.Unlock()

	item := string(msg.Data)

	start := time.Now()
	p.matcherMu.Lock()
	result, err := p.matcher.ProcessItem(item)
	p.matcherMu.Unlock()
	duration := time.Since(start)

	if err != nil {
		atomic.AddInt64(&p.errorCount, 1)
		p.metrics.recordError(p.cfg.Name, "scan")
		p.logger.Error("Item scan failed",
			"component", p.cfg.Name,
			"error", err)
		return
	}

	if result == nil {
		p.metrics.recordScan(p.cfg.Name, "", duration)
		return
	}

	p.metrics.recordScan(p.cfg.Name, result.Pattern, duration)
	atomic.AddInt64(&p.matchesEmitted, 1)

	event := MatchEvent{
		ID:        uuid.NewString(),
		Source:    p.cfg.Source,
		Pattern:   result.Pattern,
		Start:     result.Start,
		End:       result.End,
		Items:     result.Items,
		Captures:  result.Captures,
		Value:     result.Value,
		Extracted: result.Extracted,
		Timestamp: timestamp.Now(),
	}

	p.publish(event)
	p.submitJournal(event)
}

func (p *Processor) publish(event MatchEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		atomic.AddInt64(&p.errorCount, 1)
		p.metrics.recordError(p.cfg.Name, "publish")
		p.logger.Error("Failed to encode match event",
			"component", p.cfg.Name,
			"pattern", event.Pattern,
			"error", err)
		return
	}

	if err := p.conn.Publish(p.cfg.OutputSubject, payload); err != nil {
		atomic.AddInt64(&p.errorCount, 1)
		p.metrics.recordError(p.cfg.Name, "publish")
		p.logger.Error("Failed to publish match event",
			"component", p.cfg.Name,
			"output_subject", p.cfg.OutputSubject,
			"error", err)
		return
	}

	p.logger.Debug("Published match event",
		"component", p.cfg.Name,
		"pattern", event.Pattern,
		"start", event.Start,
		"end", event.End)
}

func (p *Processor) submitJournal(event MatchEvent) {
	if p.pool == nil {
		return
	}

	rec := store.Record{
		ID:        event.ID,
		Source:    event.Source,
		Pattern:   event.Pattern,
		Start:     event.Start,
		End:       event.End,
		Items:     event.Items,
		Captures:  event.Captures,
		Value:     event.Value,
		Extracted: event.Extracted,
		CreatedAt: event.Timestamp,
	}

	if err := p.pool.Submit(rec); err != nil {
		atomic.AddInt64(&p.errorCount, 1)
		p.metrics.recordError(p.cfg.Name, "journal")
		p.metrics.recordJournalDrop(p.cfg.Name)
		p.logger.Warn("Journal write dropped",
			"component", p.cfg.Name,
			"pattern", event.Pattern,
			"error", err)
	}
}

// Health reports the processor's current health.
func (p *Processor) Health() health.Status {
	p.mu.RLock()
	running := p.running
	startTime := p.startTime
	lastActivity := p.lastActivity
	p.mu.RUnlock()

	if !running {
		return health.NewUnhealthy(p.cfg.Name, "processor not running")
	}

	status := health.NewHealthy(p.cfg.Name, "processing items")
	if p.conn != nil && !p.conn.IsConnected() {
		status = health.NewDegraded(p.cfg.Name, "NATS connection lost, awaiting reconnect")
	}

	return status.WithMetrics(&health.Metrics{
		Uptime:          time.Since(startTime),
		ErrorCount:      int(atomic.LoadInt64(&p.errorCount)),
		ItemsProcessed:  atomic.LoadInt64(&p.itemsProcessed),
		MatchesAccepted: atomic.LoadInt64(&p.matchesEmitted),
		LastActivity:    lastActivity,
	})
}

// ItemsProcessed returns the number of items received so far.
func (p *Processor) ItemsProcessed() int64 {
	return atomic.LoadInt64(&p.itemsProcessed)
}

// MatchesEmitted returns the number of match events published so far.
func (p *Processor) MatchesEmitted() int64 {
	return atomic.LoadInt64(&p.matchesEmitted)
}
