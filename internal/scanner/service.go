// Package scanner orchestrates one batch analytics run: recompute the
// indicator rows for every spot instrument, then aggregate and publish
// the latest snapshot set.
package scanner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"nfo-analytics/internal/indicator"
	"nfo-analytics/internal/markethours"
	"nfo-analytics/internal/metrics"
	"nfo-analytics/internal/model"
	"nfo-analytics/internal/snapshot"
)

// ErrRecomputeInFlight means a recomputation for the same instrument is
// already running; concurrent triggers are rejected, not queued.
var ErrRecomputeInFlight = errors.New("recompute already in flight for instrument")

// Mirror is the optional best-effort snapshot mirror (Redis). Mirror
// failures are logged, never fatal to a run.
type Mirror interface {
	PublishSnapshots(ctx context.Context, snaps []model.Snapshot) error
	PublishRunSummary(ctx context.Context, summary any) error
}

// Config tunes a Service.
type Config struct {
	// Workers bounds the instrument worker pool. The bound exists for
	// storage connection capacity, not CPU: the per-bar arithmetic is cheap.
	Workers int

	// Now is the clock used for the session cutoff and run timestamps.
	// Defaults to time.Now.
	Now func() time.Time
}

// Summary reports the outcome of one batch run. Per-instrument failures
// are isolated and counted here rather than aborting the run.
type Summary struct {
	Succeeded   int       `json:"succeeded"`
	Skipped     int       `json:"skipped"` // insufficient history
	Failed      int       `json:"failed"`
	RowsWritten int       `json:"rows_written"`
	Snapshots   int       `json:"snapshots"`
	NoLatestRow int       `json:"no_latest_row"` // omitted from snapshot
	StartedAt   time.Time `json:"started_at"`
	FinishedAt  time.Time `json:"finished_at"`
}

// Service runs batch scans. Computation is per-instrument and shares no
// mutable state across instruments; only the in-flight guard is shared.
type Service struct {
	cfg Config

	bars        model.BarReader
	instruments model.InstrumentReader
	rowWriter   model.IndicatorWriter
	snapWriter  model.SnapshotWriter
	agg         *snapshot.Aggregator
	mirror      Mirror           // may be nil
	prom        *metrics.Metrics // may be nil

	calc indicator.Calculator

	mu       sync.Mutex
	inFlight map[string]struct{}
}

// New wires a Service over the storage ports. mirror and prom may be nil.
func New(cfg Config,
	bars model.BarReader,
	instruments model.InstrumentReader,
	rowWriter model.IndicatorWriter,
	rowReader model.IndicatorReader,
	snapWriter model.SnapshotWriter,
	mirror Mirror,
	prom *metrics.Metrics,
) *Service {
	if cfg.Workers <= 0 {
		cfg.Workers = 8
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Service{
		cfg:         cfg,
		bars:        bars,
		instruments: instruments,
		rowWriter:   rowWriter,
		snapWriter:  snapWriter,
		agg:         snapshot.New(bars, rowReader),
		mirror:      mirror,
		prom:        prom,
		inFlight:    make(map[string]struct{}),
	}
}

// Run executes one full batch: recompute every spot instrument, then
// replace the snapshot set. Cancellation is honored between instruments;
// an instrument's compute-and-write always runs to completion once
// started, so committed instruments stay consistent on abort.
func (s *Service) Run(ctx context.Context) (Summary, error) {
	start := s.cfg.Now()
	summary := Summary{StartedAt: start}
	cutoff := markethours.SessionCutoff(start)

	spots, err := s.instruments.ListByType(ctx, model.TokenTypeSpot)
	if err != nil {
		return summary, fmt.Errorf("list spot instruments: %w", err)
	}
	slog.Info("batch run starting", "instruments", len(spots), "cutoff", cutoff.Format(model.DateLayout), "workers", s.cfg.Workers)

	var succeeded, skipped, failed, rowsWritten atomic.Int64

	var g errgroup.Group
	g.SetLimit(s.cfg.Workers)
	for _, inst := range spots {
		if ctx.Err() != nil {
			break // abort between instruments, never mid-instrument
		}
		token := inst.Token
		g.Go(func() error {
			n, err := s.Recompute(ctx, token, cutoff)
			switch {
			case err == nil:
				succeeded.Add(1)
				rowsWritten.Add(int64(n))
			case errors.Is(err, indicator.ErrInsufficientHistory):
				skipped.Add(1)
				slog.Debug("instrument skipped", "token", token, "reason", "insufficient history")
			default:
				failed.Add(1)
				slog.Error("instrument failed", "token", token, "err", err)
			}
			return nil
		})
	}
	g.Wait()

	summary.Succeeded = int(succeeded.Load())
	summary.Skipped = int(skipped.Load())
	summary.Failed = int(failed.Load())
	summary.RowsWritten = int(rowsWritten.Load())

	if s.prom != nil {
		s.prom.InstrumentsProcessed.Add(float64(summary.Succeeded))
		s.prom.InstrumentsSkipped.Add(float64(summary.Skipped))
		s.prom.InstrumentsFailed.Add(float64(summary.Failed))
		s.prom.RowsWritten.Add(float64(summary.RowsWritten))
	}

	if err := ctx.Err(); err != nil {
		// Aborted run: committed instruments are intact, but the snapshot
		// would mix generations — leave the previous one in place.
		summary.FinishedAt = s.cfg.Now()
		return summary, err
	}

	if err := s.publishSnapshot(ctx, spots, &summary); err != nil {
		summary.FinishedAt = s.cfg.Now()
		return summary, err
	}

	summary.FinishedAt = s.cfg.Now()
	if s.prom != nil {
		s.prom.RunDur.Observe(summary.FinishedAt.Sub(start).Seconds())
		s.prom.LastRunUnix.Set(float64(summary.FinishedAt.Unix()))
	}
	slog.Info("batch run complete",
		"succeeded", summary.Succeeded,
		"skipped", summary.Skipped,
		"failed", summary.Failed,
		"rows", summary.RowsWritten,
		"snapshots", summary.Snapshots,
		"took", summary.FinishedAt.Sub(start).String(),
	)
	return summary, nil
}

// Recompute recalculates and atomically replaces one instrument's
// indicator rows from its bar history before cutoff. Returns the number
// of rows written. A second concurrent call for the same token is
// rejected with ErrRecomputeInFlight.
func (s *Service) Recompute(ctx context.Context, token string, cutoff time.Time) (int, error) {
	s.mu.Lock()
	if _, busy := s.inFlight[token]; busy {
		s.mu.Unlock()
		return 0, fmt.Errorf("%s: %w", token, ErrRecomputeInFlight)
	}
	s.inFlight[token] = struct{}{}
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		delete(s.inFlight, token)
		s.mu.Unlock()
	}()

	bars, err := s.bars.ReadBars(ctx, token, cutoff)
	if err != nil {
		return 0, fmt.Errorf("read bars %s: %w", token, err)
	}

	computeStart := time.Now()
	rows, err := s.calc.Compute(bars)
	if err != nil {
		return 0, err
	}
	if s.prom != nil {
		s.prom.ComputeDur.Observe(time.Since(computeStart).Seconds())
	}

	// The write is cheap — run it to completion even if the run was
	// cancelled after compute started.
	commitStart := time.Now()
	if err := s.rowWriter.ReplaceRows(context.WithoutCancel(ctx), token, rows); err != nil {
		return 0, fmt.Errorf("replace rows %s: %w", token, err)
	}
	if s.prom != nil {
		s.prom.CommitDur.Observe(time.Since(commitStart).Seconds())
	}

	return len(rows), nil
}

// publishSnapshot aggregates the latest rows and replaces the snapshot
// set in SQLite, then mirrors it to Redis best-effort.
func (s *Service) publishSnapshot(ctx context.Context, spots []model.Instrument, summary *Summary) error {
	now := s.cfg.Now()
	snaps, noRow, err := s.agg.Build(ctx, spots, func(in model.Instrument) bool {
		return in.TokenType == model.TokenTypeSpot
	}, now)
	if err != nil {
		return fmt.Errorf("aggregate snapshot: %w", err)
	}
	summary.Snapshots = len(snaps)
	summary.NoLatestRow = noRow

	if err := s.snapWriter.ReplaceSnapshot(ctx, snaps); err != nil {
		return fmt.Errorf("replace snapshot: %w", err)
	}

	if s.prom != nil {
		s.prom.SnapshotSize.Set(float64(len(snaps)))
		s.prom.SnapshotSkipped.Set(float64(noRow))
		for i := range snaps {
			s.prom.SignalsTotal.WithLabelValues(string(snaps[i].Signal)).Inc()
		}
	}

	if s.mirror != nil {
		if err := s.mirror.PublishSnapshots(ctx, snaps); err != nil {
			slog.Warn("snapshot mirror failed", "err", err)
		}
		if err := s.mirror.PublishRunSummary(ctx, summary); err != nil {
			slog.Warn("run summary mirror failed", "err", err)
		}
	}
	return nil
}
