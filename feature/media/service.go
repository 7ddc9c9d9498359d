package media

import (
	"context"
	"time"

	"media-cleaner/core/catalog"
	"media-cleaner/core/metrics"
	"media-cleaner/core/reconcile"

	"github.com/spf13/afero"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Service plans and applies media reconciliation runs.
type Service struct {
	engine  *reconcile.Engine
	source  catalog.Source
	cfg     reconcile.Config
	areas   *reconcile.AreaTable
	ttl     time.Duration
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewService creates a service over fs. A zero ttl reloads references on
// every plan. m may be nil.
func NewService(fs afero.Fs, source catalog.Source, cfg reconcile.Config, ttl time.Duration, m *metrics.Metrics, logger *zap.Logger) (*Service, error) {
	areas, err := cfg.AreaTable()
	if err != nil {
		return nil, err
	}
	return &Service{
		engine:  reconcile.NewEngine(fs, logger),
		source:  source,
		cfg:     cfg,
		areas:   areas,
		ttl:     ttl,
		metrics: m,
		logger:  logger,
	}, nil
}

// Engine returns the underlying engine.
func (s *Service) Engine() *reconcile.Engine {
	return s.engine
}

// Areas returns the area table.
func (s *Service) Areas() *reconcile.AreaTable {
	return s.areas
}

// Options returns dry-run options seeded from the configuration.
func (s *Service) Options() reconcile.Options {
	return reconcile.Options{
		Root:            s.cfg.Root,
		Include:         s.cfg.Include,
		Limit:           s.cfg.Limit,
		CaseInsensitive: s.cfg.CaseInsensitive,
		DryRun:          true,
		Areas:           s.areas,
	}
}

// References returns the reference set folded for caseInsensitive.
func (s *Service) References(ctx context.Context, caseInsensitive bool) (*reconcile.ReferenceSet, error) {
	return reconcile.GetOrBuildReferences(ctx, s.source.Name(), s.ttl, caseInsensitive, s.source.Load)
}

// RefreshReferences drops the cached set and loads it again.
func (s *Service) RefreshReferences(ctx context.Context, caseInsensitive bool) (*reconcile.ReferenceSet, error) {
	reconcile.InvalidateReferences(s.source.Name())
	return s.References(ctx, caseInsensitive)
}

// Plan loads references and enumerates the tree concurrently, then checks
// every candidate. The returned plan never removes anything by itself.
// Cancelling ctx yields an Interrupted plan rather than an error.
func (s *Service) Plan(ctx context.Context, opts reconcile.Options, obs reconcile.Observer) (*reconcile.Plan, error) {
	if opts.Areas == nil {
		opts.Areas = s.areas
	}
	start := time.Now()

	var (
		refs *reconcile.ReferenceSet
		en   *reconcile.Enumeration
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		refs, err = s.References(gctx, opts.CaseInsensitive)
		return err
	})
	g.Go(func() error {
		var err error
		en, err = s.engine.Enumerate(gctx, opts)
		return err
	})
	if err := g.Wait(); err != nil {
		if ctx.Err() == nil {
			return nil, err
		}
		// Stopped before references were loaded: nothing can be checked.
		plan := &reconcile.Plan{Root: opts.Root, Interrupted: true}
		if en != nil {
			plan.Root = en.Root
			plan.Warnings = en.Warnings
		}
		s.logger.Warn("Media plan interrupted before references were loaded", zap.Error(err))
		return plan, nil
	}

	plan, err := s.engine.Check(en, refs, opts, obs)
	if err != nil {
		return nil, err
	}

	s.metrics.RecordPlan(plan, time.Since(start))
	s.logger.Info("Media plan ready",
		zap.String("root", plan.Root),
		zap.Int("total_files", plan.Stats.TotalFiles),
		zap.Int("removed_files", plan.Stats.RemovedFiles),
		zap.Int("references", plan.References),
		zap.Bool("interrupted", plan.Interrupted),
		zap.Duration("elapsed", time.Since(start)),
	)
	return plan, nil
}

// Apply removes the files of plan when opts allow it. Interrupted plans are
// never applied because their statistics are partial.
func (s *Service) Apply(ctx context.Context, plan *reconcile.Plan, opts reconcile.Options, obs reconcile.Observer) *reconcile.RemovalResult {
	if plan == nil || plan.Interrupted {
		return &reconcile.RemovalResult{}
	}
	result := s.engine.Apply(ctx, plan, opts, obs)
	s.metrics.RecordRemoval(result)
	return result
}
