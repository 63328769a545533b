// Package perception provides the application-level service over the
// notation adapter, pattern builder, partitioner and projection recognizer.
// It is the layer the CLI talks to and the one place where logging,
// metrics and configuration meet the domain transforms.
package perception

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/JibranRasheed/NCDK-sub001/internal/config"
	"github.com/JibranRasheed/NCDK-sub001/internal/domain/notation"
	"github.com/JibranRasheed/NCDK-sub001/internal/domain/partition"
	"github.com/JibranRasheed/NCDK-sub001/internal/domain/pattern"
	"github.com/JibranRasheed/NCDK-sub001/internal/domain/projection"
	"github.com/JibranRasheed/NCDK-sub001/internal/infrastructure/monitoring/logging"
	"github.com/JibranRasheed/NCDK-sub001/internal/infrastructure/monitoring/prometheus"
	"github.com/JibranRasheed/NCDK-sub001/pkg/errors"
	"github.com/JibranRasheed/NCDK-sub001/pkg/types/molecule"
	"github.com/JibranRasheed/NCDK-sub001/pkg/types/query"
)

// Service defines the perception operations.
type Service interface {
	// Adapt converts one notation graph.
	Adapt(ctx context.Context, g *notation.Graph) (*molecule.MolecularGraph, error)

	// AdaptBatch converts independent graphs concurrently.  Results are in
	// input order; the first failure cancels the remaining work.
	AdaptBatch(ctx context.Context, inputs []*notation.Graph) ([]*molecule.MolecularGraph, error)

	// CompilePattern compiles a single pattern tree.
	CompilePattern(ctx context.Context, p *pattern.Pattern) (*query.QueryGraph, error)

	// CompileReaction compiles a reaction pattern into one predicate graph
	// with reaction roles.
	CompileReaction(ctx context.Context, r *pattern.Reaction) (*query.QueryGraph, error)

	// Partition splits a graph into its connected fragments.
	Partition(ctx context.Context, g *molecule.MolecularGraph) (*partition.Result, error)

	// Perceive2D adds centres inferred from ring drawings.  A nil
	// classification falls back to projection.PotentialStereocenters.
	Perceive2D(ctx context.Context, g *molecule.MolecularGraph, centers projection.Stereocenters) (*Perceived, error)

	// Reconfigure applies new perception and batch settings to later calls.
	Reconfigure(cfg *config.Config)
}

// Perceived is the outcome of Perceive2D.
type Perceived struct {
	Graph   *molecule.MolecularGraph
	Centers []*molecule.Tetrahedral
}

// serviceImpl implements the Service interface.
type serviceImpl struct {
	logger      logging.Logger
	metrics     *prometheus.PerceptionMetrics
	adapter     *notation.Adapter
	builder     *pattern.Builder
	partitioner *partition.Partitioner
	recognizer  atomic.Pointer[projection.Recognizer]
	concurrency atomic.Int64
}

// NewService creates a perception service.  A nil cfg means defaults; nil
// logger and metrics are replaced by no-op implementations.
func NewService(cfg *config.Config, logger logging.Logger, metrics *prometheus.PerceptionMetrics) Service {
	logger = logging.OrNop(logger).Named("perception")
	if metrics == nil {
		metrics = prometheus.NewNoopPerceptionMetrics()
	}
	s := &serviceImpl{
		logger:      logger,
		metrics:     metrics,
		adapter:     notation.NewAdapter(logger, metrics),
		builder:     pattern.NewBuilder(logger, metrics),
		partitioner: partition.NewPartitioner(logger, metrics),
	}
	s.Reconfigure(cfg)
	return s
}

// ProjectionOptions maps the perception section of cfg to recognizer options.
func ProjectionOptions(cfg config.PerceptionConfig) projection.Options {
	opts := projection.Options{
		ThresholdDeg: cfg.CardinalityThresholdDeg,
		MinRingSize:  cfg.MinRingSize,
		MaxRingSize:  cfg.MaxRingSize,
	}
	if cfg.Projections != nil {
		opts.Projections = make([]projection.Projection, len(cfg.Projections))
		for i, p := range cfg.Projections {
			opts.Projections[i] = projection.Projection(p)
		}
	}
	return opts
}

func (s *serviceImpl) Reconfigure(cfg *config.Config) {
	if cfg == nil {
		cfg = &config.Config{}
	} else {
		c := *cfg
		cfg = &c
	}
	config.ApplyDefaults(cfg)

	s.recognizer.Store(projection.NewRecognizer(s.logger, s.metrics, ProjectionOptions(cfg.Perception)))
	s.concurrency.Store(int64(cfg.Batch.Concurrency))
	s.logger.Info("perception configured",
		logging.Any("projections", cfg.Perception.Projections),
		logging.Float64("threshold_deg", cfg.Perception.CardinalityThresholdDeg),
		logging.Int("batch_concurrency", cfg.Batch.Concurrency))
}

// run logs the start and end of one operation under a fresh run id.
func (s *serviceImpl) run(op string) (logging.Logger, func(err error)) {
	l := s.logger.With(logging.String("run_id", uuid.New().String()), logging.String("operation", op))
	start := time.Now()
	l.Debug("operation started")
	return l, func(err error) {
		if err != nil {
			l.Warn("operation failed", logging.Err(err), logging.Duration("elapsed", time.Since(start)))
			return
		}
		l.Debug("operation finished", logging.Duration("elapsed", time.Since(start)))
	}
}

func canceled(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return errors.Wrap(err, errors.ErrCodeCanceled, "operation canceled")
	}
	return nil
}

func (s *serviceImpl) Adapt(ctx context.Context, g *notation.Graph) (*molecule.MolecularGraph, error) {
	if err := canceled(ctx); err != nil {
		return nil, err
	}
	_, done := s.run("adapt")
	timer := s.metrics.Time("adapt")
	out, err := s.adapter.Adapt(g)
	timer.ObserveDuration()
	prometheus.RecordAdapt(s.metrics, err)
	done(err)
	return out, err
}

func (s *serviceImpl) AdaptBatch(ctx context.Context, inputs []*notation.Graph) ([]*molecule.MolecularGraph, error) {
	l, done := s.run("adapt_batch")
	l.Debug("batch received", logging.Int("size", len(inputs)))

	out := make([]*molecule.MolecularGraph, len(inputs))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(int(s.concurrency.Load()))
	inflight := s.metrics.BatchInflight.WithLabelValues()

	for i := range inputs {
		i := i
		g.Go(func() error {
			if err := canceled(gCtx); err != nil {
				return err
			}
			inflight.Inc()
			defer inflight.Dec()

			timer := s.metrics.Time("adapt")
			mol, err := s.adapter.Adapt(inputs[i])
			timer.ObserveDuration()
			prometheus.RecordAdapt(s.metrics, err)
			if err != nil {
				return errors.Wrap(err, errors.CodeUnknown, fmt.Sprintf("batch item %d", i))
			}
			out[i] = mol
			return nil
		})
	}
	err := g.Wait()
	done(err)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *serviceImpl) CompilePattern(ctx context.Context, p *pattern.Pattern) (*query.QueryGraph, error) {
	if err := canceled(ctx); err != nil {
		return nil, err
	}
	_, done := s.run("compile_pattern")
	timer := s.metrics.Time("compile")
	q, err := s.builder.Compile(p)
	timer.ObserveDuration()
	prometheus.RecordCompile(s.metrics, err)
	done(err)
	return q, err
}

func (s *serviceImpl) CompileReaction(ctx context.Context, r *pattern.Reaction) (*query.QueryGraph, error) {
	if err := canceled(ctx); err != nil {
		return nil, err
	}
	_, done := s.run("compile_reaction")
	timer := s.metrics.Time("compile")
	q, err := s.builder.CompileReaction(r)
	timer.ObserveDuration()
	prometheus.RecordCompile(s.metrics, err)
	done(err)
	return q, err
}

func (s *serviceImpl) Partition(ctx context.Context, g *molecule.MolecularGraph) (*partition.Result, error) {
	if err := canceled(ctx); err != nil {
		return nil, err
	}
	l, done := s.run("partition")
	timer := s.metrics.Time("partition")
	res, err := s.partitioner.Partition(g)
	timer.ObserveDuration()
	if err != nil {
		done(err)
		return nil, err
	}
	prometheus.RecordPartition(s.metrics, len(res.Fragments))
	l.Debug("graph partitioned", logging.Int("fragments", len(res.Fragments)))
	done(nil)
	return res, nil
}

func (s *serviceImpl) Perceive2D(ctx context.Context, g *molecule.MolecularGraph, centers projection.Stereocenters) (*Perceived, error) {
	if err := canceled(ctx); err != nil {
		return nil, err
	}
	l, done := s.run("perceive2d")
	if g == nil {
		err := errors.InvalidGraph("graph is nil")
		done(err)
		return nil, err
	}
	if centers == nil {
		centers = projection.PotentialStereocenters(g)
	}

	timer := s.metrics.Time("perceive2d")
	out, found, err := s.recognizer.Load().Perceive(g, centers)
	timer.ObserveDuration()
	if err != nil {
		done(err)
		return nil, err
	}
	l.Debug("projection centres recognised", logging.Int("centres", len(found)))
	done(nil)
	return &Perceived{Graph: out, Centers: found}, nil
}
