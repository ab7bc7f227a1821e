package analysis

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/bep/imagemeta"

	"autotag/pkg/types"
)

// keywordTags maps metadata source to the tag names holding keywords.
var keywordTags = map[imagemeta.Source]map[string]bool{
	imagemeta.XMP:  {"Subject": true},
	imagemeta.IPTC: {"Keywords": true},
}

// EmbeddedStrategy reads keywords stored inside the image file itself
// (XMP dc:subject and IPTC Keywords).
type EmbeddedStrategy struct{}

// NewEmbeddedStrategy creates the embedded keyword strategy.
func NewEmbeddedStrategy() *EmbeddedStrategy {
	return &EmbeddedStrategy{}
}

func (s *EmbeddedStrategy) Kind() types.StrategyKind { return types.StrategyEmbedded }

func (s *EmbeddedStrategy) Extract(_ context.Context, path string) (result types.TagExtractionResult) {
	f, err := os.Open(path)
	if err != nil {
		return types.NoResult(s.Kind(), err.Error())
	}
	defer f.Close()

	// The decoder panics on some truncated files.
	defer func() {
		if r := recover(); r != nil {
			result = types.NoResult(s.Kind(), fmt.Sprintf("decode panic: %v", r))
		}
	}()

	var keywords []string
	_, err = imagemeta.Decode(imagemeta.Options{
		R:       f,
		Sources: imagemeta.XMP | imagemeta.IPTC,
		ShouldHandleTag: func(ti imagemeta.TagInfo) bool {
			if names, ok := keywordTags[ti.Source]; ok {
				return names[ti.Tag]
			}
			return false
		},
		HandleTag: func(ti imagemeta.TagInfo) error {
			keywords = append(keywords, tagValues(ti.Value)...)
			return nil
		},
	})
	if err != nil {
		return types.NoResult(s.Kind(), err.Error())
	}
	if len(keywords) == 0 {
		return types.NoResult(s.Kind(), "no embedded keywords")
	}
	return types.Found(s.Kind(), keywords)
}

// tagValues flattens a decoded metadata value into strings.
func tagValues(v any) []string {
	switch val := v.(type) {
	case string:
		return splitKeywords(val)
	case []string:
		var out []string
		for _, s := range val {
			out = append(out, splitKeywords(s)...)
		}
		return out
	case []any:
		var out []string
		for _, item := range val {
			out = append(out, tagValues(item)...)
		}
		return out
	case nil:
		return nil
	default:
		return []string{fmt.Sprint(val)}
	}
}

// splitKeywords handles writers that store several keywords in one
// comma or semicolon separated value.
func splitKeywords(s string) []string {
	parts := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ';' })
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
