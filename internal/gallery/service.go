// Package gallery exposes the operations the user interfaces call: choosing
// a directory, listing its tagged images and running classification on it.
package gallery

import (
	"context"
	"os"
	"sync/atomic"

	"autotag/internal/analysis"
	"autotag/internal/config"
	serr "autotag/internal/errors"
	"autotag/internal/index"
	log "autotag/internal/log"
	"autotag/internal/worker"
	"autotag/pkg/types"
)

// Chooser asks the user for a directory. ok is false when the user cancelled.
type Chooser interface {
	ChooseDirectory(ctx context.Context, start string) (dir string, ok bool, err error)
}

// ChooserFunc adapts a function to Chooser.
type ChooserFunc func(ctx context.Context, start string) (string, bool, error)

// ChooseDirectory calls f.
func (f ChooserFunc) ChooseDirectory(ctx context.Context, start string) (string, bool, error) {
	return f(ctx, start)
}

// State is a snapshot together with the index built from it. Both are
// immutable, so a *State can be shared freely.
type State struct {
	Snapshot *types.DirectorySnapshot
	Index    *index.Index
}

// Directory returns the directory the state was taken from.
func (s *State) Directory() string {
	if s == nil {
		return ""
	}
	return s.Snapshot.Directory()
}

// Filter applies q to the snapshot.
func (s *State) Filter(q index.Query) []types.ImageRecord {
	if s == nil {
		return nil
	}
	return index.Filter(s.Snapshot.Images(), q)
}

// Service composes discovery, tag resolution, the index and the worker.
type Service struct {
	config  *config.Config
	engine  *analysis.Engine
	worker  *worker.Orchestrator
	chooser Chooser

	current atomic.Pointer[State]
}

// Option configures a Service.
type Option func(*Service)

// WithEngine sets the analysis engine.
func WithEngine(e *analysis.Engine) Option {
	return func(s *Service) { s.engine = e }
}

// WithOrchestrator sets the classification worker orchestrator.
func WithOrchestrator(o *worker.Orchestrator) Option {
	return func(s *Service) { s.worker = o }
}

// WithChooser sets the directory chooser.
func WithChooser(c Chooser) Option {
	return func(s *Service) { s.chooser = c }
}

// New creates a Service. Missing collaborators are built from cfg.
func New(cfg *config.Config, opts ...Option) *Service {
	if cfg == nil {
		cfg = config.New()
	}
	s := &Service{config: cfg}
	for _, opt := range opts {
		opt(s)
	}
	if s.engine == nil {
		s.engine = analysis.NewWithConfig(cfg)
	}
	if s.worker == nil {
		s.worker = worker.New(cfg)
	}
	return s
}

// Engine returns the analysis engine.
func (s *Service) Engine() *analysis.Engine { return s.engine }

// Orchestrator returns the worker orchestrator.
func (s *Service) Orchestrator() *worker.Orchestrator { return s.worker }

// Config returns the configuration the service was built with.
func (s *Service) Config() *config.Config { return s.config }

// SelectDirectory asks the chooser for a directory, starting from the
// current one or the home directory.
func (s *Service) SelectDirectory(ctx context.Context) (string, bool, error) {
	if s.chooser == nil {
		return "", false, serr.NewConfigError("no directory chooser available", "chooser", serr.InvalidConfig, nil)
	}
	start := s.Current().Directory()
	if start == "" {
		if home, err := os.UserHomeDir(); err == nil {
			start = home
		}
	}
	dir, ok, err := s.chooser.ChooseDirectory(ctx, start)
	if err != nil || !ok {
		return "", false, err
	}
	return dir, true, nil
}

// GetImages discovers and resolves the images of path.
func (s *Service) GetImages(ctx context.Context, path string) types.ImagesResult {
	return s.FindImages(ctx, path, index.Query{})
}

// FindImages is GetImages restricted to the images matching q.
func (s *Service) FindImages(ctx context.Context, path string, q index.Query) types.ImagesResult {
	snap, err := s.engine.Snapshot(ctx, path)
	if err != nil {
		log.LogWithError(err).Warn("Failed to load images")
		return imagesFailure(err)
	}
	return imagesResult(snap.Directory(), index.Filter(snap.Images(), q))
}

// SetSelectedDirectory loads path and publishes it as the current state.
// Readers of Current see either the previous state or the new one.
func (s *Service) SetSelectedDirectory(ctx context.Context, path string) (*State, error) {
	snap, err := s.engine.Snapshot(ctx, path)
	if err != nil {
		return nil, err
	}
	st := &State{Snapshot: snap, Index: index.Build(snap)}
	s.current.Store(st)

	log.LogWithFields(log.F("directory", snap.Directory())).
		Infof("Selected directory: %d images, %d tags", snap.Len(), st.Index.Len())
	return st, nil
}

// Current returns the published state, nil before the first selection.
func (s *Service) Current() *State {
	return s.current.Load()
}

// Refresh reloads the current directory, typically after the worker ran.
func (s *Service) Refresh(ctx context.Context) (*State, error) {
	cur := s.Current()
	if cur == nil {
		return nil, serr.NewFileError("no directory selected", "", serr.InvalidPath, nil)
	}
	return s.SetSelectedDirectory(ctx, cur.Directory())
}

// ProcessDirectory runs the classification worker on path and waits for it.
func (s *Service) ProcessDirectory(ctx context.Context, path string) types.ProcessResult {
	return s.worker.Process(ctx, path)
}

// StartProcessing launches the worker without waiting.
func (s *Service) StartProcessing(ctx context.Context, path string) (*worker.Job, error) {
	return s.worker.Start(ctx, path)
}

// Summary returns the configured top tags of path with example files.
func (s *Service) Summary(ctx context.Context, path string) ([]types.TagCount, error) {
	snap, err := s.engine.Snapshot(ctx, path)
	if err != nil {
		return nil, err
	}
	return index.Build(snap).Summary(s.config.Index.TopLimit, s.config.Index.FilesPerTag), nil
}

// RemoveTags clears the tag attribute of every image in path.
func (s *Service) RemoveTags(ctx context.Context, path string) ([]types.RemoveResult, error) {
	return s.engine.RemoveTags(ctx, path)
}

func imagesResult(dir string, records []types.ImageRecord) types.ImagesResult {
	res := types.ImagesResult{
		Success:   true,
		Directory: dir,
		Images:    make([]types.ImageView, 0, len(records)),
	}
	for _, rec := range records {
		res.Images = append(res.Images, rec.View())
	}
	return res
}

func imagesFailure(err error) types.ImagesResult {
	res := types.ImagesResult{
		Images: []types.ImageView{},
		Error:  serr.KindOf(err).String(),
	}
	var appErr interface{ Message() string }
	if serr.As(err, &appErr) {
		res.Details = appErr.Message()
	} else {
		res.Details = err.Error()
	}
	return res
}
