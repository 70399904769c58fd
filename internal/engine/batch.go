package engine

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pankaj-dahiya-devops/netaudit/internal/models"
	"github.com/pankaj-dahiya-devops/netaudit/internal/source"
	"github.com/pankaj-dahiya-devops/netaudit/internal/store"
)

// defaultWorkers bounds the number of configurations analysed at once when
// BatchOptions.Workers is not set.
const defaultWorkers = 4

// Progress is reported after every configuration finishes, successfully or
// not. Processed is monotonic across callbacks of one run.
type Progress struct {
	Processed   int
	Total       int
	CurrentFile string
}

// BatchOptions controls a BatchAnalyzer run.
type BatchOptions struct {
	// Workers is the maximum number of concurrent analyses. <= 0 means
	// defaultWorkers.
	Workers int
	// FailFast aborts the run on the first device failure. Otherwise
	// failures are collected and the remaining devices still run.
	FailFast bool
	// Store, when non-nil, receives every successful report.
	Store store.ReportStore
	// Progress, when non-nil, is called once per configuration. Calls are
	// serialised.
	Progress func(Progress)
}

// DeviceFailure records one configuration that produced no report.
type DeviceFailure struct {
	FileName string `json:"file_name"`
	Error    string `json:"error"`
}

// BatchResult is the outcome of a batch run.
type BatchResult struct {
	// Reports holds successful reports in input order.
	Reports  []*models.DeviceReport `json:"reports"`
	Failures []DeviceFailure        `json:"failures"`
	Fleet    *models.FleetReport    `json:"fleet"`
}

// BatchAnalyzer runs an Engine over many configurations concurrently and
// aggregates the results into a fleet report.
type BatchAnalyzer struct {
	engine Engine
	logger *zap.Logger
}

// NewBatchAnalyzer wraps engine. A nil logger disables logging.
func NewBatchAnalyzer(engine Engine, logger *zap.Logger) *BatchAnalyzer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BatchAnalyzer{engine: engine, logger: logger}
}

// Run analyses docs with at most opts.Workers in flight. Each device is
// all-or-nothing: an analysis or store error marks the device failed. With
// FailFast the first failure cancels the run and is returned as the error.
func (b *BatchAnalyzer) Run(ctx context.Context, docs []source.Document, opts BatchOptions) (*BatchResult, error) {
	workers := opts.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}

	var (
		reports   = make([]*models.DeviceReport, len(docs))
		failures  = make([]*DeviceFailure, len(docs))
		mu        sync.Mutex
		processed int
	)

	report := func(name string) {
		if opts.Progress == nil {
			return
		}
		mu.Lock()
		defer mu.Unlock()
		processed++
		opts.Progress(Progress{Processed: processed, Total: len(docs), CurrentFile: name})
	}

	g, gctx := errgroup.WithContext(ctx)
	sem := make(chan struct{}, workers)

DOCS:
	for i, doc := range docs {
		select {
		case sem <- struct{}{}:
		case <-gctx.Done():
			break DOCS
		}

		g.Go(func() error {
			defer func() { <-sem }()
			defer report(doc.Name)

			r, err := b.analyze(gctx, doc, opts.Store)
			if err != nil {
				b.logger.Warn("device analysis failed",
					zap.String("file", doc.Name),
					zap.Error(err),
				)
				if opts.FailFast {
					return err
				}
				failures[i] = &DeviceFailure{FileName: doc.Name, Error: err.Error()}
				return nil
			}
			reports[i] = r
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := &BatchResult{
		Reports:  make([]*models.DeviceReport, 0, len(docs)),
		Failures: []DeviceFailure{},
	}
	for i := range docs {
		if reports[i] != nil {
			out.Reports = append(out.Reports, reports[i])
		}
		if failures[i] != nil {
			out.Failures = append(out.Failures, *failures[i])
		}
	}
	out.Fleet = Aggregate(out.Reports)

	b.logger.Info("batch analysis complete",
		zap.Int("devices", len(docs)),
		zap.Int("reports", len(out.Reports)),
		zap.Int("failures", len(out.Failures)),
	)
	return out, nil
}

func (b *BatchAnalyzer) analyze(ctx context.Context, doc source.Document, st store.ReportStore) (*models.DeviceReport, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r, err := b.engine.Analyze(doc.Name, doc.Content)
	if err != nil {
		return nil, err
	}
	if st != nil {
		if err := st.Put(ctx, r); err != nil {
			return nil, fmt.Errorf("store report %q: %w", doc.Name, err)
		}
	}
	return r, nil
}
