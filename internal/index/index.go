// Package index aggregates tags over a directory snapshot and filters
// images by search text and selected tags.
package index

import (
	"sort"
	"strings"

	"autotag/pkg/types"
)

// DefaultTopLimit is the number of entries in the top tags view.
const DefaultTopLimit = 10

// Index is the tag frequency table of one snapshot. It is built once and
// never updated; a new snapshot gets a new Index.
type Index struct {
	counts map[string]int
	order  []string
	files  map[string][]string
	total  int
}

// Build computes the index for snap.
func Build(snap *types.DirectorySnapshot) *Index {
	ix := &Index{
		counts: make(map[string]int),
		files:  make(map[string][]string),
	}
	snap.Each(func(rec types.ImageRecord) {
		ix.total++
		for _, tag := range rec.Tags {
			if _, seen := ix.counts[tag]; !seen {
				ix.order = append(ix.order, tag)
			}
			ix.counts[tag]++
			ix.files[tag] = append(ix.files[tag], rec.Name)
		}
	})
	return ix
}

// Len returns the number of distinct tags.
func (ix *Index) Len() int {
	return len(ix.order)
}

// Images returns the number of records the index was built from.
func (ix *Index) Images() int {
	return ix.total
}

// Count returns how many images carry tag.
func (ix *Index) Count(tag string) int {
	return ix.counts[tag]
}

// Tags returns the distinct tags in first-seen order.
func (ix *Index) Tags() []string {
	return append([]string{}, ix.order...)
}

// Counts returns a copy of the tag to count mapping.
func (ix *Index) Counts() map[string]int {
	out := make(map[string]int, len(ix.counts))
	for k, v := range ix.counts {
		out[k] = v
	}
	return out
}

// Top returns up to limit tags by descending count. Ties keep first-seen
// order. A limit < 1 returns every tag.
func (ix *Index) Top(limit int) []types.TagCount {
	return ix.ranked(limit, 0)
}

// Summary is Top with up to filesPerTag file names attached to each entry.
func (ix *Index) Summary(limit, filesPerTag int) []types.TagCount {
	return ix.ranked(limit, filesPerTag)
}

func (ix *Index) ranked(limit, filesPerTag int) []types.TagCount {
	ranked := make([]types.TagCount, 0, len(ix.order))
	for _, tag := range ix.order {
		tc := types.TagCount{Name: tag, Count: ix.counts[tag]}
		if filesPerTag > 0 {
			files := ix.files[tag]
			if len(files) > filesPerTag {
				files = files[:filesPerTag]
			}
			tc.Files = append([]string{}, files...)
		}
		ranked = append(ranked, tc)
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Count > ranked[j].Count
	})
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

// Query is a search over a snapshot.
type Query struct {
	Search string
	Tags   []string
}

// Empty reports whether the query selects everything.
func (q Query) Empty() bool {
	return strings.TrimSpace(q.Search) == "" && len(q.Tags) == 0
}

// Matches reports whether rec passes the search text and carries every
// selected tag. The search is a case-insensitive substring match against
// each tag.
func Matches(rec types.ImageRecord, search string, selected []string) bool {
	if search != "" {
		needle := strings.ToLower(search)
		found := false
		for _, tag := range rec.Tags {
			if strings.Contains(strings.ToLower(tag), needle) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	for _, want := range selected {
		if !rec.HasTag(want) {
			return false
		}
	}
	return true
}

// Filter returns the records matching q, in order.
func Filter(records []types.ImageRecord, q Query) []types.ImageRecord {
	out := make([]types.ImageRecord, 0, len(records))
	for _, rec := range records {
		if Matches(rec, q.Search, q.Tags) {
			out = append(out, rec)
		}
	}
	return out
}
