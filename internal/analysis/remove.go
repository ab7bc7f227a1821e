package analysis

import (
	"context"

	"golang.org/x/sync/errgroup"

	log "autotag/internal/log"
	"autotag/pkg/types"
)

// RemoveTags deletes the tag attribute from every image in dir that has
// OS-level tags. Images without tags are reported as untouched.
func (e *Engine) RemoveTags(ctx context.Context, dir string) ([]types.RemoveResult, error) {
	snap, err := e.Snapshot(ctx, dir)
	if err != nil {
		return nil, err
	}
	records := snap.Images()
	results := make([]types.RemoveResult, len(records))

	var g errgroup.Group
	g.SetLimit(e.concurrency)
	for i, rec := range records {
		g.Go(func() error {
			results[i] = e.removeOne(rec)
			return nil
		})
	}
	_ = g.Wait()
	return results, nil
}

func (e *Engine) removeOne(rec types.ImageRecord) types.RemoveResult {
	res := types.RemoveResult{Path: rec.Path, Outcome: types.RemoveNone}
	if rec.TagSource != types.TagSourceOSMetadata {
		return res
	}

	logger := log.LogWithFields(log.F("path", rec.Path))
	if err := e.attrs.Remove(rec.Path, e.config.Resolution.Attribute); err != nil {
		logger.WithError(err).Warn("Failed to remove tags")
		res.Outcome = types.RemoveError
		res.Error = err.Error()
		return res
	}
	logger.Debug("Removed tags")
	res.Outcome = types.RemoveRemoved
	res.Tags = rec.Tags
	return res
}
