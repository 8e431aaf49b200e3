// Package coherence is the engine façade (spec.md §6): the single entry
// point a host (ingestion pipeline or UI) uses to trigger detection runs
// and query/dismiss the resulting alerts. It wires the eight detectors
// (internal/detect), the alert store (internal/store), reference data
// (pkg/refdata), and configuration (pkg/config) together, following the
// teacher's NewXService nil-checking constructor idiom.
package coherence

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/localhealth/coherence-engine/internal/detect"
	"github.com/localhealth/coherence-engine/internal/store"
	"github.com/localhealth/coherence-engine/pkg/alert"
	"github.com/localhealth/coherence-engine/pkg/config"
	"github.com/localhealth/coherence-engine/pkg/refdata"
	"github.com/localhealth/coherence-engine/pkg/repository"
	"github.com/localhealth/coherence-engine/pkg/version"
)

// Result is the output of a single detection run (spec.md §6
// analyze_new_document/analyze_full): the alerts newly stored (i.e. not
// suppressed by dedup or the dismissal log), per-kind counts over that
// set, and how long the run took.
type Result struct {
	NewAlerts        []*alert.Alert
	Counts           alert.Counts
	ProcessingTimeMS int64
}

// Engine is the coherence engine façade. It is safe for concurrent use:
// analysis runs serialize through the store's lock and, for the async
// path, through a single background worker.
type Engine struct {
	cfg     *config.EngineConfig
	repos   repository.Set
	refData *refdata.Data
	store   *store.Store

	log *slog.Logger

	queue  chan asyncJob
	done   chan struct{}
	closed bool
}

type asyncJob struct {
	docID uuid.UUID
	resCh chan<- Result
}

// NewEngine constructs an Engine. cfg, and refData must not be nil; every
// field of repos must be set, mirroring the teacher's NewAlertService /
// NewMaskingService nil-checking constructors.
func NewEngine(cfg *config.EngineConfig, repos repository.Set, refData *refdata.Data) *Engine {
	if cfg == nil {
		panic("NewEngine: cfg must not be nil")
	}
	if refData == nil {
		panic("NewEngine: refData must not be nil")
	}
	if repos.Alerts == nil {
		panic("NewEngine: repos.Alerts must not be nil")
	}
	if repos.Medications == nil || repos.Labs == nil || repos.Diagnoses == nil ||
		repos.Allergies == nil || repos.Procedures == nil || repos.Symptoms == nil ||
		repos.Professionals == nil {
		panic("NewEngine: repos must be fully populated")
	}

	e := &Engine{
		cfg:     cfg,
		repos:   repos,
		refData: refData,
		store:   store.New(repos.Alerts),
		log:     slog.With("component", "coherence"),
		queue:   make(chan asyncJob, 4096),
		done:    make(chan struct{}),
	}
	e.log.Info("coherence engine starting", "version", version.Full())
	go e.worker()
	return e
}

// AnalyzeNewDocument runs every enabled detector scoped to docID and
// stores their candidates (spec.md §6 analyze_new_document).
func (e *Engine) AnalyzeNewDocument(ctx context.Context, docID uuid.UUID) (Result, error) {
	return e.analyze(ctx, &docID)
}

// AnalyzeFull re-runs every enabled detector over the entire record
// (spec.md §6 analyze_full).
func (e *Engine) AnalyzeFull(ctx context.Context) (Result, error) {
	return e.analyze(ctx, nil)
}

func (e *Engine) analyze(ctx context.Context, docID *uuid.UUID) (Result, error) {
	start := time.Now()

	in := detect.Input{
		DocumentID:            docID,
		Repos:                 e.repos,
		RefData:               e.refData,
		CorrelationWindowDays: e.cfg.CorrelationWindowDays,
		Now:                   start,
	}

	detectors := detect.All()
	var stored []*alert.Alert
	var counts alert.Counts

	for _, kind := range detect.Order {
		if !e.cfg.Detectors.Enabled(string(kind)) {
			continue
		}
		candidates, err := detectors[kind](ctx, in)
		if err != nil {
			return Result{}, fmt.Errorf("coherence: %s detector: %w", kind, err)
		}
		for _, a := range candidates {
			ok, err := e.store.StoreAlert(ctx, a)
			if err != nil {
				return Result{}, fmt.Errorf("coherence: store alert: %w", err)
			}
			if !ok {
				continue
			}
			stored = append(stored, a)
			counts.Add(a.Kind)
		}
	}

	elapsed := time.Since(start)
	e.log.Info("analysis run complete", "document_id", docID, "new_alerts", len(stored),
		"processing_time_ms", elapsed.Milliseconds())

	return Result{NewAlerts: stored, Counts: counts, ProcessingTimeMS: elapsed.Milliseconds()}, nil
}

// AnalyzeNewDocumentAsync dispatches the same detection run as
// AnalyzeNewDocument to the engine's single background worker (spec.md §5
// "single background worker task") and returns a channel the caller may
// receive the Result from once the run completes. The queue holds up to
// 4096 pending jobs and is drained strictly in submission order, so
// overlapping calls never interleave detector runs; while 4096 jobs are
// waiting, a further call blocks until the worker takes one.
func (e *Engine) AnalyzeNewDocumentAsync(docID uuid.UUID) <-chan Result {
	resCh := make(chan Result, 1)
	select {
	case <-e.done:
		close(resCh)
		return resCh
	default:
	}
	select {
	case e.queue <- asyncJob{docID: docID, resCh: resCh}:
	case <-e.done:
		close(resCh)
	}
	return resCh
}

func (e *Engine) worker() {
	for {
		select {
		case job := <-e.queue:
			res, err := e.AnalyzeNewDocument(context.Background(), job.docID)
			if err != nil {
				e.log.Error("background analysis run failed", "document_id", job.docID, "error", err)
			}
			job.resCh <- res
			close(job.resCh)
		case <-e.done:
			return
		}
	}
}

// Close stops the background worker. Jobs already queued are dropped;
// AnalyzeNewDocumentAsync called after Close returns a closed channel.
func (e *Engine) Close() {
	if e.closed {
		return
	}
	e.closed = true
	close(e.done)
}

// GetActiveAlerts implements spec.md §6 get_active_alerts.
func (e *Engine) GetActiveAlerts(kind *alert.Kind) []*alert.Alert {
	return e.store.GetActive(kind)
}

// GetRelevantAlerts implements spec.md §6 get_relevant_alerts.
func (e *Engine) GetRelevantAlerts(entityIDs []uuid.UUID, keywords []string) []*alert.Alert {
	return e.store.GetRelevant(entityIDs, keywords)
}

// GetCriticalAlerts implements spec.md §6 get_critical_alerts.
func (e *Engine) GetCriticalAlerts() []*alert.Alert {
	return e.store.GetCritical()
}

// DismissAlert implements spec.md §6 dismiss_alert.
func (e *Engine) DismissAlert(ctx context.Context, id uuid.UUID, reason string, actor alert.Actor) error {
	return e.store.Dismiss(ctx, id, reason, actor, time.Now())
}

// DismissCriticalAlert implements spec.md §6 dismiss_critical_alert.
func (e *Engine) DismissCriticalAlert(ctx context.Context, id uuid.UUID, reason string, twoStepConfirmed bool) error {
	return e.store.DismissCritical(ctx, id, reason, twoStepConfirmed, time.Now())
}

// Stats reports per-kind counts of active alerts (dismissed alerts are not
// counted) and the configuration summary for host-side monitoring
// dashboards, mirroring Config.Stats() in the teacher. Read-only: it opens
// no new mutation surface.
func (e *Engine) Stats() EngineStats {
	all := e.store.GetActive(nil)

	var active alert.Counts
	for _, a := range all {
		active.Add(a.Kind)
	}

	return EngineStats{Active: active, ConfigStats: e.cfg.Stats()}
}

// EngineStats is the façade's read-only monitoring snapshot.
type EngineStats struct {
	Active      alert.Counts
	ConfigStats config.Stats
}
