package analysis

import (
	"context"
	"fmt"
	"strings"

	serr "autotag/internal/errors"
	"autotag/pkg/types"
)

// Strategy extracts tags from one metadata channel. Implementations never
// fail hard: an absent or malformed source is reported as an unsuccessful
// result so the chain can fall through.
type Strategy interface {
	// Kind names the strategy
	Kind() types.StrategyKind
	// Extract reads the tags attached to path
	Extract(ctx context.Context, path string) types.TagExtractionResult
}

// Resolution is the outcome of the strategy chain for one file.
type Resolution struct {
	Tags     []string
	Source   types.TagSource
	Attempts []types.TagExtractionResult
	Err      error
}

// resolveChain returns the first non-empty result in strategy order.
func resolveChain(ctx context.Context, strategies []Strategy, path string) (res Resolution) {
	defer func() {
		if r := recover(); r != nil {
			res = failed(path, res.Attempts, fmt.Errorf("strategy panicked: %v", r))
		}
	}()

	for _, s := range strategies {
		if err := ctx.Err(); err != nil {
			return failed(path, res.Attempts, err)
		}
		attempt := s.Extract(ctx, path)
		attempt.Strategy = s.Kind()
		res.Attempts = append(res.Attempts, attempt)
		if !attempt.Usable() {
			continue
		}
		if tags := normalizeTags(attempt.Tags); len(tags) > 0 {
			res.Tags = tags
			res.Source = sourceFor(s.Kind())
			return res
		}
	}

	res.Tags = []string{}
	res.Source = types.TagSourceNone
	return res
}

func failed(path string, attempts []types.TagExtractionResult, cause error) Resolution {
	return Resolution{
		Tags:     []string{},
		Source:   types.TagSourceError,
		Attempts: attempts,
		Err:      serr.NewFileError("tag extraction failed", path, serr.ExtractionFailure, cause),
	}
}

func sourceFor(kind types.StrategyKind) types.TagSource {
	if kind == types.StrategyEmbedded {
		return types.TagSourceEmbedded
	}
	return types.TagSourceOSMetadata
}

// normalizeTags trims tags, drops empties and removes duplicates keeping
// the first occurrence.
func normalizeTags(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}
