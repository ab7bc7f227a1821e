package analysis

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"autotag/internal/config"
	"autotag/pkg/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStrategiesFromConfig(t *testing.T) {
	e := New()
	assert.Equal(t, []types.StrategyKind{
		types.StrategyAttribute,
		types.StrategyMetadataQuery,
		types.StrategyAttributeList,
	}, e.Strategies())

	cfg := config.New()
	cfg.Resolution.Strategies = []string{"mdls"}
	cfg.Resolution.EmbeddedKeywords = true
	e.SetConfig(cfg)
	assert.Equal(t, []types.StrategyKind{types.StrategyMetadataQuery, types.StrategyEmbedded}, e.Strategies())
}

func TestSnapshotScenario(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "a.jpg", "b.png", "notes.txt")

	attrs := newFakeAttrs()
	attrs.values["a.jpg"] = binaryPlist(t, "cat", "outdoor")
	runner := newFakeRunner()

	e := New(WithAttributeReader(attrs), WithCommandRunner(runner))
	snap, err := e.Snapshot(context.Background(), dir)
	require.NoError(t, err)

	assert.Equal(t, dir, snap.Directory())
	images := snap.Images()
	require.Len(t, images, 2)

	assert.Equal(t, "a.jpg", images[0].Name)
	assert.Equal(t, []string{"cat", "outdoor"}, images[0].Tags)
	assert.Equal(t, types.TagSourceOSMetadata, images[0].TagSource)

	assert.Equal(t, "b.png", images[1].Name)
	assert.Equal(t, []string{}, images[1].Tags)
	assert.Equal(t, types.TagSourceNone, images[1].TagSource)

	// a.jpg stopped at the first strategy, b.png went through the whole chain
	assert.False(t, runner.called("mdls a.jpg"))
	assert.True(t, runner.called("mdls b.png"))
	assert.True(t, runner.called("xattr b.png"))
	assert.False(t, runner.called("mdls notes.txt"))
}

func TestSnapshotFallbackOrder(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "q.jpg", "l.jpg", "broken.jpg")

	attrs := newFakeAttrs()
	attrs.values["broken.jpg"] = []byte{0x00, 0xff}
	runner := newFakeRunner()
	runner.outputs["mdls q.jpg"] = "(\n    query\n)"
	runner.outputs["mdls l.jpg"] = "(null)"
	runner.outputs["xattr l.jpg"] = xattrListing
	runner.outputs["mdls broken.jpg"] = "(\n    recovered\n)"

	snap, err := New(WithAttributeReader(attrs), WithCommandRunner(runner)).Snapshot(context.Background(), dir)
	require.NoError(t, err)

	byName := map[string][]string{}
	for _, img := range snap.Images() {
		byName[img.Name] = img.Tags
	}
	assert.Equal(t, []string{"query"}, byName["q.jpg"])
	assert.Equal(t, []string{"sunset", "beach"}, byName["l.jpg"])
	assert.Equal(t, []string{"recovered"}, byName["broken.jpg"])
}

func TestSnapshotIdempotent(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "a.jpg", "b.png", "c.gif")
	attrs := newFakeAttrs()
	attrs.values["a.jpg"] = []byte(xmlTagPlist)
	attrs.values["c.gif"] = binaryPlist(t, "Blue\n4")

	e := New(WithAttributeReader(attrs), WithCommandRunner(newFakeRunner()))
	first, err := e.Snapshot(context.Background(), dir)
	require.NoError(t, err)
	second, err := e.Snapshot(context.Background(), dir)
	require.NoError(t, err)

	assert.Equal(t, first.Images(), second.Images())
}

func TestSnapshotMissingDirectory(t *testing.T) {
	_, err := New().Snapshot(context.Background(), filepath.Join(t.TempDir(), "gone"))
	assert.Error(t, err)
}

func TestResolveAllBoundedAndOrdered(t *testing.T) {
	gauge := &gaugeStrategy{}
	cfg := config.New()
	cfg.Resolution.Concurrency = 3
	e := NewWithConfig(cfg, WithStrategies(gauge))

	records := make([]types.ImageRecord, 40)
	for i := range records {
		name := fmt.Sprintf("img-%02d.jpg", i)
		records[i] = types.ImageRecord{Name: name, Path: "/p/" + name}
	}

	out := e.ResolveAll(context.Background(), records)
	require.Len(t, out, 40)
	for i, rec := range out {
		assert.Equal(t, records[i].Name, rec.Name)
		assert.Equal(t, []string{rec.Name}, rec.Tags)
	}
	assert.LessOrEqual(t, gauge.peak.Load(), int32(3))
	assert.Greater(t, gauge.peak.Load(), int32(0))
	// inputs are untouched
	assert.Nil(t, records[0].Tags)
}

func TestResolveAllIsolatesFailures(t *testing.T) {
	bad := &stubStrategy{kind: types.StrategyAttribute, panics: true}
	e := New(WithStrategies(bad))

	out := e.ResolveAll(context.Background(), []types.ImageRecord{
		{Name: "a.jpg", Path: "/p/a.jpg"},
		{Name: "b.jpg", Path: "/p/b.jpg"},
	})
	require.Len(t, out, 2)
	for _, rec := range out {
		assert.Equal(t, types.TagSourceError, rec.TagSource)
		assert.Equal(t, []string{}, rec.Tags)
	}
}

func TestRemoveTags(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "a.jpg", "b.png")

	attrs := newFakeAttrs()
	attrs.values["a.jpg"] = binaryPlist(t, "cat")
	e := New(WithAttributeReader(attrs), WithCommandRunner(newFakeRunner()))

	results, err := e.RemoveTags(context.Background(), dir)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, types.RemoveRemoved, results[0].Outcome)
	assert.Equal(t, []string{"cat"}, results[0].Tags)
	assert.Equal(t, types.RemoveNone, results[1].Outcome)
	assert.Equal(t, []string{"a.jpg"}, attrs.removed)

	// second pass finds nothing left to remove
	results, err = e.RemoveTags(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, types.RemoveNone, results[0].Outcome)
}

func TestRemoveTagsMissingDirectory(t *testing.T) {
	_, err := New().RemoveTags(context.Background(), filepath.Join(t.TempDir(), "gone"))
	assert.Error(t, err)
}
