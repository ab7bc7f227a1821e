package analysis

import (
	"context"
	"regexp"
	"strings"

	"autotag/pkg/types"
)

// AttributeStrategy reads the tag property list straight from the file's
// extended attribute.
type AttributeStrategy struct {
	reader    AttributeReader
	attribute string
}

// NewAttributeStrategy creates the extended attribute strategy.
func NewAttributeStrategy(reader AttributeReader, attribute string) *AttributeStrategy {
	return &AttributeStrategy{reader: reader, attribute: attribute}
}

func (s *AttributeStrategy) Kind() types.StrategyKind { return types.StrategyAttribute }

func (s *AttributeStrategy) Extract(_ context.Context, path string) types.TagExtractionResult {
	data, err := s.reader.Get(path, s.attribute)
	if err != nil {
		return types.NoResult(s.Kind(), err.Error())
	}
	if len(data) == 0 {
		return types.NoResult(s.Kind(), "empty attribute")
	}
	tags, err := decodeTagPlist(data)
	if err != nil {
		return types.NoResult(s.Kind(), err.Error())
	}
	return types.Found(s.Kind(), tags)
}

// MetadataQueryStrategy asks the metadata index service (mdls) for the tags.
type MetadataQueryStrategy struct {
	runner    CommandRunner
	attribute string
}

// NewMetadataQueryStrategy creates the metadata service strategy.
func NewMetadataQueryStrategy(runner CommandRunner, attribute string) *MetadataQueryStrategy {
	return &MetadataQueryStrategy{runner: runner, attribute: attribute}
}

func (s *MetadataQueryStrategy) Kind() types.StrategyKind { return types.StrategyMetadataQuery }

func (s *MetadataQueryStrategy) Extract(ctx context.Context, path string) types.TagExtractionResult {
	out, err := s.runner.Run(ctx, "mdls", "-raw", "-name", s.attribute, path)
	if err != nil {
		return types.NoResult(s.Kind(), err.Error())
	}
	tags := parseMetadataList(string(out))
	if len(tags) == 0 {
		return types.NoResult(s.Kind(), "no tags")
	}
	return types.Found(s.Kind(), tags)
}

// parseMetadataList splits mdls raw list output such as
// `(\n    cat,\n    "outdoor scene"\n)`. "(null)" means the attribute is unset.
func parseMetadataList(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "(null)" {
		return nil
	}
	raw = strings.TrimSuffix(strings.TrimPrefix(raw, "("), ")")

	var tags []string
	for _, part := range strings.Split(raw, ",") {
		tag := strings.TrimSpace(part)
		tag = strings.TrimSpace(strings.Trim(tag, `"`))
		if tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

// AttributeListStrategy scans the full `xattr -l` listing for the tag
// attribute's XML block.
type AttributeListStrategy struct {
	runner  CommandRunner
	pattern *regexp.Regexp
}

// NewAttributeListStrategy creates the attribute listing strategy.
func NewAttributeListStrategy(runner CommandRunner, attribute string) *AttributeListStrategy {
	return &AttributeListStrategy{
		runner:  runner,
		pattern: regexp.MustCompile(regexp.QuoteMeta(attribute) + `:[\s\S]*?<array>([\s\S]*?)</array>`),
	}
}

func (s *AttributeListStrategy) Kind() types.StrategyKind { return types.StrategyAttributeList }

func (s *AttributeListStrategy) Extract(ctx context.Context, path string) types.TagExtractionResult {
	out, err := s.runner.Run(ctx, "xattr", "-l", path)
	if err != nil {
		return types.NoResult(s.Kind(), err.Error())
	}
	m := s.pattern.FindSubmatch(out)
	if m == nil {
		return types.NoResult(s.Kind(), "tag attribute not listed")
	}
	tags := scanStrings(string(m[1]))
	if len(tags) == 0 {
		return types.NoResult(s.Kind(), "no tags")
	}
	return types.Found(s.Kind(), tags)
}
