package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"

	"parley/internal/analysis"
	"parley/internal/config"
	"parley/internal/conversation"
	"parley/internal/logging"
	"parley/internal/scenario"
	"parley/internal/services/llm"
	"parley/internal/services/speech"
	"parley/internal/services/transcriber"
	"parley/internal/store"
)

// Daemon owns the session API server and its collaborators, and enforces
// single-instance execution via a lock file.
type Daemon struct {
	cfg         *config.Config
	logger      *slog.Logger
	store       *store.Store
	catalog     *scenario.Catalog
	engine      *conversation.Engine
	runner      *analysis.Runner
	transcriber *transcriber.Service
	speech      *speech.Client
	llm         *llm.Client

	api *apiServer

	lockPath string
	lock     *flock.Flock

	running atomic.Bool
	ctx     context.Context
	cancel  context.CancelFunc
	bg      sync.WaitGroup
}

// New constructs a daemon with its collaborators wired from the config.
func New(cfg *config.Config, st *store.Store, catalog *scenario.Catalog, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || st == nil || catalog == nil || logger == nil {
		return nil, errors.New("daemon requires config, store, catalog, and logger")
	}

	llmClient := llm.NewClient(llm.Config{
		APIKey:         cfg.LLM.APIKey,
		BaseURL:        cfg.LLM.BaseURL,
		Model:          cfg.LLM.Model,
		TimeoutSeconds: cfg.LLM.TimeoutSeconds,
	})

	lockPath := filepath.Join(cfg.Paths.LogDir, "parleyd.lock")
	d := &Daemon{
		cfg:     cfg,
		logger:  logger,
		store:   st,
		catalog: catalog,
		engine:  conversation.NewEngine(llmClient),
		runner:  analysis.NewRunner(st, llmClient, logger),
		transcriber: transcriber.NewService(transcriber.Config{
			Binary:         cfg.Transcriber.Binary,
			FFmpegBinary:   cfg.Transcriber.FFmpegBinary,
			Model:          cfg.Transcriber.Model,
			TimeoutSeconds: cfg.Transcriber.TimeoutSeconds,
		}),
		speech: speech.NewClient(speech.Config{
			BaseURL:        cfg.Speech.BaseURL,
			APIKey:         cfg.Speech.APIKey,
			Voice:          cfg.Speech.Voice,
			MaxTextLen:     cfg.Speech.MaxTextLen,
			TimeoutSeconds: cfg.Speech.TimeoutSecs,
		}),
		llm:      llmClient,
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}

	api, err := newAPIServer(cfg, d, logger)
	if err != nil {
		return nil, err
	}
	d.api = api
	return d, nil
}

// Start acquires the daemon lock and brings up the API listener.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another parley daemon instance is already running")
	}

	d.ctx, d.cancel = context.WithCancel(ctx)
	if err := d.api.start(d.ctx); err != nil {
		_ = d.lock.Unlock()
		d.cancel()
		d.ctx = nil
		d.cancel = nil
		return err
	}

	if d.llm.Configured() {
		d.bg.Add(1)
		go d.checkModelAPI(d.ctx)
	}

	d.running.Store(true)
	d.logger.Info("parley daemon started", logging.String("lock", d.lockPath))
	return nil
}

// checkModelAPI pings the model API once at startup so a bad key or an
// unreachable endpoint shows up in the log immediately rather than on the
// first conversation turn.
func (d *Daemon) checkModelAPI(ctx context.Context) {
	defer d.bg.Done()
	checkCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	if err := d.llm.HealthCheck(checkCtx); err != nil {
		d.logger.Warn("model API health check failed", logging.Error(err))
		return
	}
	d.logger.Info("model API reachable")
}

// Stop shuts down the API listener, waits for in-flight analysis runs, and
// releases the daemon lock. The store stays open until Close so detached
// analysis goroutines can still persist their results.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.api.stop()
	d.runner.Wait()
	d.bg.Wait()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.ctx = nil
	d.running.Store(false)
	d.logger.Info("parley daemon stopped")
}

// Close stops the daemon and releases the store.
func (d *Daemon) Close() error {
	d.Stop()
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}

// Status reports daemon runtime information for diagnostics.
type Status struct {
	Running       bool
	DatabasePath  string
	LockFilePath  string
	Scenarios     int
	LLMConfigured bool
	Stats         store.Stats
}

// Status returns the current daemon status. Store errors leave the counts at
// zero rather than failing the whole report.
func (d *Daemon) Status(ctx context.Context) Status {
	status := Status{
		Running:       d.running.Load(),
		DatabasePath:  d.cfg.DatabasePath(),
		LockFilePath:  d.lockPath,
		Scenarios:     d.catalog.Len(),
		LLMConfigured: d.llm.Configured(),
	}
	if stats, err := d.store.CollectStats(ctx); err == nil {
		status.Stats = stats
	}
	return status
}

// Addr returns the bound API address, or "" before Start.
func (d *Daemon) Addr() string {
	if d.api == nil {
		return ""
	}
	return d.api.addr()
}
