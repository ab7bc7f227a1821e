// Package analysis discovers images in a directory and resolves the tags
// attached to each one through an ordered chain of metadata strategies.
package analysis

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/gobwas/glob"
	"golang.org/x/sync/errgroup"

	"autotag/internal/config"
	serr "autotag/internal/errors"
	log "autotag/internal/log"
	"autotag/pkg/types"
)

// Engine runs discovery and tag resolution for a directory.
type Engine struct {
	config      *config.Config
	matcher     glob.Glob
	strategies  []Strategy
	runner      CommandRunner
	attrs       AttributeReader
	concurrency int
	custom      bool
}

// Option customises an Engine.
type Option func(*Engine)

// WithCommandRunner replaces the runner used by command based strategies.
func WithCommandRunner(r CommandRunner) Option {
	return func(e *Engine) { e.runner = r }
}

// WithAttributeReader replaces the extended attribute backend.
func WithAttributeReader(r AttributeReader) Option {
	return func(e *Engine) { e.attrs = r }
}

// WithStrategies fixes the strategy chain instead of building it from config.
func WithStrategies(strategies ...Strategy) Option {
	return func(e *Engine) {
		e.strategies = strategies
		e.custom = true
	}
}

// New creates an Engine with the default configuration.
func New(opts ...Option) *Engine {
	return NewWithConfig(config.New(), opts...)
}

// NewWithConfig creates an Engine from cfg.
func NewWithConfig(cfg *config.Config, opts ...Option) *Engine {
	e := &Engine{attrs: xattrReader{}}
	for _, opt := range opts {
		opt(e)
	}
	e.SetConfig(cfg)
	return e
}

// SetConfig applies cfg, rebuilding the matcher and strategy chain.
func (e *Engine) SetConfig(cfg *config.Config) {
	if cfg == nil {
		cfg = config.New()
	}
	e.config = cfg
	e.concurrency = cfg.Concurrency()
	e.matcher = compileMatcher(cfg.Discovery.Extensions)
	if e.runner == nil || isDefaultRunner(e.runner) {
		e.runner = execRunner{timeout: cfg.Resolution.CommandTimeout}
	}
	if !e.custom {
		e.strategies = buildStrategies(cfg, e.attrs, e.runner)
	}
}

// Strategies returns the kinds of the active strategies in order.
func (e *Engine) Strategies() []types.StrategyKind {
	kinds := make([]types.StrategyKind, len(e.strategies))
	for i, s := range e.strategies {
		kinds[i] = s.Kind()
	}
	return kinds
}

// Snapshot discovers the images in dir, resolves their tags and returns the
// result as a new snapshot.
func (e *Engine) Snapshot(ctx context.Context, dir string) (*types.DirectorySnapshot, error) {
	start := time.Now()
	records, err := e.ScanDirectory(dir)
	if err != nil {
		return nil, err
	}
	resolved := e.ResolveAll(ctx, records)

	abs, _ := filepath.Abs(dir)
	log.LogWithFields(
		log.F("directory", abs),
		log.F("images", len(resolved)),
		log.F("elapsed", time.Since(start).Round(time.Millisecond).String()),
	).Debug("Directory resolved")
	return types.NewDirectorySnapshot(abs, resolved), nil
}

// ResolveAll resolves tags for every record on a bounded pool. Results keep
// the input order and one file's failure never affects another.
func (e *Engine) ResolveAll(ctx context.Context, records []types.ImageRecord) []types.ImageRecord {
	out := make([]types.ImageRecord, len(records))

	var g errgroup.Group
	g.SetLimit(e.concurrency)
	for i, rec := range records {
		g.Go(func() error {
			res := e.Resolve(ctx, rec.Path)
			rec.Tags = res.Tags
			rec.TagSource = res.Source
			out[i] = rec
			return nil
		})
	}
	_ = g.Wait()
	return out
}

// Resolve runs the strategy chain for one file.
func (e *Engine) Resolve(ctx context.Context, path string) Resolution {
	res := resolveChain(ctx, e.strategies, path)
	if res.Err != nil {
		log.LogWithError(res.Err).Warn("Tag resolution failed, continuing with no tags")
	}
	return res
}

func compileMatcher(extensions []string) glob.Glob {
	exts := make([]string, 0, len(extensions))
	for _, ext := range extensions {
		ext = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(ext)), ".")
		if ext != "" {
			exts = append(exts, glob.QuoteMeta(ext))
		}
	}
	if len(exts) == 0 {
		return compileMatcher(config.DefaultExtensions)
	}
	g, err := glob.Compile(fmt.Sprintf("*.{%s}", strings.Join(exts, ",")))
	if err != nil {
		log.LogWithError(err).Warn("Invalid extension list, using defaults")
		return compileMatcher(config.DefaultExtensions)
	}
	return g
}

func buildStrategies(cfg *config.Config, attrs AttributeReader, runner CommandRunner) []Strategy {
	var strategies []Strategy
	for _, name := range cfg.ActiveStrategies() {
		switch types.StrategyKind(name) {
		case types.StrategyAttribute:
			strategies = append(strategies, NewAttributeStrategy(attrs, cfg.Resolution.Attribute))
		case types.StrategyMetadataQuery:
			strategies = append(strategies, NewMetadataQueryStrategy(runner, cfg.Resolution.QueryAttribute))
		case types.StrategyAttributeList:
			strategies = append(strategies, NewAttributeListStrategy(runner, cfg.Resolution.Attribute))
		case types.StrategyEmbedded:
			strategies = append(strategies, NewEmbeddedStrategy())
		default:
			log.LogWithError(serr.NewConfigError("unknown strategy", name, serr.InvalidConfig, nil)).Warn("Skipping strategy")
		}
	}
	return strategies
}
