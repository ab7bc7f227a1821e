package types

// StrategyKind names one tag extraction strategy.
type StrategyKind string

const (
	StrategyAttribute     StrategyKind = "xattr"
	StrategyMetadataQuery StrategyKind = "mdls"
	StrategyAttributeList StrategyKind = "xattr-list"
	StrategyEmbedded      StrategyKind = "embedded"
)

// TagExtractionResult is the outcome of one strategy against one file.
type TagExtractionResult struct {
	Strategy      StrategyKind `json:"strategy"`
	Success       bool         `json:"success"`
	Tags          []string     `json:"tags,omitempty"`
	FailureReason string       `json:"failure_reason,omitempty"`
}

// Usable reports whether the result should end the chain.
func (r TagExtractionResult) Usable() bool {
	return r.Success && len(r.Tags) > 0
}

// NoResult builds a failed result with a reason.
func NoResult(kind StrategyKind, reason string) TagExtractionResult {
	return TagExtractionResult{Strategy: kind, FailureReason: reason}
}

// Found builds a successful result.
func Found(kind StrategyKind, tags []string) TagExtractionResult {
	return TagExtractionResult{Strategy: kind, Success: true, Tags: tags}
}

// TagCount is one entry of a tag frequency listing.
type TagCount struct {
	Name  string   `json:"name"`
	Count int      `json:"count"`
	Files []string `json:"files,omitempty"`
}
