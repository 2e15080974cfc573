package pipeline

import (
	"time"

	"go.uber.org/zap"

	"github.com/ppiankov/casefile/internal/cache"
	"github.com/ppiankov/casefile/internal/extract"
	"github.com/ppiankov/casefile/internal/extract/adapters"
	"github.com/ppiankov/casefile/internal/logging"
	"github.com/ppiankov/casefile/internal/model"
	"github.com/ppiankov/casefile/internal/score"
	"github.com/ppiankov/casefile/internal/store"
	"github.com/ppiankov/casefile/internal/worker"
)

// Pipeline orchestrates document scans, cross-document resolution and
// persistence of one case
type Pipeline struct {
	adapters  *adapters.Registry
	scorer    *score.Scorer
	actors    *extract.ActorExtractor
	deadlines *extract.DeadlineExtractor
	renderer  *Renderer

	store   store.Store
	cache   *cache.ScanCache
	limiter *worker.Limiter
	logger  *zap.Logger
	now     func() time.Time
	config  *model.Config
}

// Option customises a Pipeline
type Option func(*Pipeline)

// WithStore sets the persistence backend. Without one, results are only returned.
func WithStore(s store.Store) Option {
	return func(p *Pipeline) { p.store = s }
}

// WithCache enables the scan cache
func WithCache(c cache.Cache) Option {
	return func(p *Pipeline) {
		if c != nil {
			p.cache = cache.NewScanCache(c, p.config.Cache.DiskTTL)
		}
	}
}

// WithLogger sets the structured logger
func WithLogger(l *zap.Logger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithClock overrides time.Now, for reproducible timestamps
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

// NewPipeline creates a new pipeline with the given configuration
func NewPipeline(cfg *model.Config, opts ...Option) *Pipeline {
	if cfg == nil {
		cfg = model.DefaultConfig()
	}
	patterns := extract.NewPatterns()

	p := &Pipeline{
		adapters:  adapters.NewRegistry(),
		scorer:    score.NewScorer(patterns),
		actors:    extract.NewActorExtractor(patterns),
		deadlines: extract.NewDeadlineExtractor(patterns),
		renderer:  NewRenderer(cfg.Output.IncludeFooter),
		limiter:   worker.NewLimiter(cfg.RateLimiting.RequestsPerSecond, cfg.RateLimiting.BurstSize),
		logger:    logging.Nop(),
		now:       time.Now,
		config:    cfg,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Renderer returns the report renderer
func (p *Pipeline) Renderer() *Renderer {
	return p.renderer
}
