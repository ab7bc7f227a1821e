package gallery

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"autotag/internal/analysis"
	"autotag/internal/config"
	"autotag/internal/index"
	"autotag/internal/worker"
	"autotag/pkg/testutils"
	"autotag/pkg/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// tagTable plays the OS metadata store: tags keyed by file name.
type tagTable struct {
	mu   sync.Mutex
	tags map[string][]string
}

func (t *tagTable) set(name string, tags ...string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.tags[name] = tags
}

func (t *tagTable) Kind() types.StrategyKind { return types.StrategyAttribute }

func (t *tagTable) Extract(_ context.Context, path string) types.TagExtractionResult {
	t.mu.Lock()
	defer t.mu.Unlock()
	tags, ok := t.tags[filepath.Base(path)]
	if !ok {
		return types.NoResult(types.StrategyAttribute, "no tag attribute")
	}
	return types.Found(types.StrategyAttribute, append([]string{}, tags...))
}

type scriptedLauncher struct {
	stdout string
	stderr string
	code   int
	after  func()
}

func (l *scriptedLauncher) Check() error { return nil }

func (l *scriptedLauncher) Launch(_ context.Context, _ worker.Invocation, stdout, stderr io.Writer) (int, error) {
	io.WriteString(stdout, l.stdout)
	io.WriteString(stderr, l.stderr)
	if l.after != nil {
		l.after()
	}
	return l.code, nil
}

type key string

func (k key) Credential() (string, error) { return string(k), nil }

func photosDir(t *testing.T) string {
	return testutils.CreateImageDir(t, "a.jpg", "b.png", "notes.txt")
}

func newService(table *tagTable, opts ...Option) *Service {
	cfg := config.New()
	cfg.Discovery.SkipContentType = true
	base := []Option{WithEngine(analysis.NewWithConfig(cfg, analysis.WithStrategies(table)))}
	return New(cfg, append(base, opts...)...)
}

func TestGetImagesScenario(t *testing.T) {
	dir := photosDir(t)
	table := &tagTable{tags: map[string][]string{"a.jpg": {"cat", "outdoor"}}}

	res := newService(table).GetImages(context.Background(), dir)
	require.True(t, res.Success)
	assert.Empty(t, res.Error)
	assert.Equal(t, dir, res.Directory)
	require.Len(t, res.Images, 2)

	a, b := res.Images[0], res.Images[1]
	assert.Equal(t, "a.jpg", a.Name)
	assert.Equal(t, []string{"cat", "outdoor"}, a.Tags)
	assert.Equal(t, filepath.Join(dir, "a.jpg"), a.Path)
	assert.Equal(t, types.ImageURL(a.Path), a.URL)
	assert.True(t, strings.HasPrefix(a.URL, types.ImageURLScheme))

	assert.Equal(t, "b.png", b.Name)
	assert.Equal(t, []string{}, b.Tags)

	back, err := types.ImagePathFromURL(b.URL)
	require.NoError(t, err)
	assert.Equal(t, b.Path, back)
}

func TestGetImagesIdempotent(t *testing.T) {
	dir := photosDir(t)
	svc := newService(&tagTable{tags: map[string][]string{"b.png": {"x", "y"}}})
	assert.Equal(t, svc.GetImages(context.Background(), dir), svc.GetImages(context.Background(), dir))
}

func TestGetImagesErrors(t *testing.T) {
	svc := newService(&tagTable{tags: map[string][]string{}})

	res := svc.GetImages(context.Background(), filepath.Join(t.TempDir(), "missing"))
	assert.False(t, res.Success)
	assert.Equal(t, "DirectoryNotFound", res.Error)
	assert.NotEmpty(t, res.Details)
	assert.NotNil(t, res.Images)
	assert.Empty(t, res.Images)

	file := filepath.Join(t.TempDir(), "a.jpg")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))
	res = svc.GetImages(context.Background(), file)
	assert.Equal(t, "DirectoryNotFound", res.Error)
}

func TestSetSelectedDirectory(t *testing.T) {
	dir := photosDir(t)
	table := &tagTable{tags: map[string][]string{"a.jpg": {"cat", "outdoor"}, "b.png": {"cat"}}}
	svc := newService(table)

	assert.Nil(t, svc.Current())
	assert.Equal(t, "", svc.Current().Directory())

	st, err := svc.SetSelectedDirectory(context.Background(), dir)
	require.NoError(t, err)
	assert.Same(t, st, svc.Current())
	assert.Equal(t, dir, st.Directory())
	assert.Equal(t, 2, st.Index.Count("cat"))

	matches := st.Filter(index.Query{Tags: []string{"outdoor"}})
	require.Len(t, matches, 1)
	assert.Equal(t, "a.jpg", matches[0].Name)

	// a failed selection keeps the previous state
	_, err = svc.SetSelectedDirectory(context.Background(), filepath.Join(dir, "missing"))
	require.Error(t, err)
	assert.Same(t, st, svc.Current())
}

func TestStateSwapIsAtomic(t *testing.T) {
	dirs := make([]string, 2)
	table := &tagTable{tags: map[string][]string{}}
	for i := range dirs {
		dirs[i] = t.TempDir()
		for j := 0; j <= i*3; j++ {
			name := fmt.Sprintf("%d-%d.jpg", i, j)
			require.NoError(t, os.WriteFile(filepath.Join(dirs[i], name), []byte("x"), 0644))
			table.set(name, fmt.Sprintf("dir-%d", i))
		}
	}
	svc := newService(table)
	_, err := svc.SetSelectedDirectory(context.Background(), dirs[0])
	require.NoError(t, err)

	var wg sync.WaitGroup
	stop := make(chan struct{})
	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				st := svc.Current()
				// snapshot and index always belong together
				assert.Equal(t, st.Snapshot.Len(), st.Index.Images())
				assert.Equal(t, st.Snapshot.Len(), st.Index.Count(st.Index.Tags()[0]))
			}
		}()
	}

	for i := 0; i < 20; i++ {
		_, err := svc.SetSelectedDirectory(context.Background(), dirs[i%2])
		require.NoError(t, err)
	}
	close(stop)
	wg.Wait()
}

func TestSelectDirectory(t *testing.T) {
	t.Run("no chooser", func(t *testing.T) {
		_, ok, err := newService(&tagTable{}).SelectDirectory(context.Background())
		assert.False(t, ok)
		assert.Error(t, err)
	})

	t.Run("cancelled", func(t *testing.T) {
		svc := newService(&tagTable{}, WithChooser(ChooserFunc(func(context.Context, string) (string, bool, error) {
			return "", false, nil
		})))
		dir, ok, err := svc.SelectDirectory(context.Background())
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Empty(t, dir)
	})

	t.Run("starts from current directory", func(t *testing.T) {
		dir := photosDir(t)
		var start string
		svc := newService(&tagTable{tags: map[string][]string{}}, WithChooser(ChooserFunc(func(_ context.Context, s string) (string, bool, error) {
			start = s
			return "/picked", true, nil
		})))
		_, err := svc.SetSelectedDirectory(context.Background(), dir)
		require.NoError(t, err)

		picked, ok, err := svc.SelectDirectory(context.Background())
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "/picked", picked)
		assert.Equal(t, dir, start)
	})

	t.Run("chooser error", func(t *testing.T) {
		svc := newService(&tagTable{}, WithChooser(ChooserFunc(func(context.Context, string) (string, bool, error) {
			return "/ignored", true, errors.New("terminal closed")
		})))
		_, ok, err := svc.SelectDirectory(context.Background())
		assert.False(t, ok)
		assert.Error(t, err)
	})
}

func TestProcessDirectoryThenRefresh(t *testing.T) {
	dir := photosDir(t)
	table := &tagTable{tags: map[string][]string{}}
	launcher := &scriptedLauncher{
		stdout: "Processing a.jpg\n",
		after:  func() { table.set("a.jpg", "beach", "sunset") },
	}
	cfg := config.New()
	svc := newService(table, WithOrchestrator(worker.New(cfg, worker.WithLauncher(launcher), worker.WithCredentialSource(key("sk-test")))))

	st, err := svc.SetSelectedDirectory(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, 0, st.Index.Len())

	res := svc.ProcessDirectory(context.Background(), dir)
	require.True(t, res.Success)
	assert.Equal(t, "Processing a.jpg\n", res.Output)

	// the worker's effect shows up only after discovery runs again
	assert.Equal(t, 0, svc.Current().Index.Len())
	st, err = svc.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"beach", "sunset"}, st.Index.Tags())
}

func TestProcessDirectoryFailure(t *testing.T) {
	launcher := &scriptedLauncher{code: 1, stderr: "rate limit exceeded"}
	svc := newService(&tagTable{}, WithOrchestrator(worker.New(config.New(), worker.WithLauncher(launcher), worker.WithCredentialSource(key("sk-test")))))

	res := svc.ProcessDirectory(context.Background(), t.TempDir())
	assert.False(t, res.Success)
	assert.Equal(t, "Process exited with code 1", res.Error)
	assert.Equal(t, "rate limit exceeded", res.Details)

	job, err := svc.StartProcessing(context.Background(), t.TempDir())
	require.NoError(t, err)
	<-job.Done()
	assert.Equal(t, types.JobFailed, job.Snapshot().Status)
}

func TestRefreshWithoutSelection(t *testing.T) {
	_, err := newService(&tagTable{}).Refresh(context.Background())
	assert.Error(t, err)
}

func TestSummary(t *testing.T) {
	dir := photosDir(t)
	table := &tagTable{tags: map[string][]string{"a.jpg": {"cat", "outdoor"}, "b.png": {"cat"}}}

	summary, err := newService(table).Summary(context.Background(), dir)
	require.NoError(t, err)
	require.Len(t, summary, 2)
	assert.Equal(t, types.TagCount{Name: "cat", Count: 2, Files: []string{"a.jpg", "b.png"}}, summary[0])
	assert.Equal(t, "outdoor", summary[1].Name)

	_, err = newService(table).Summary(context.Background(), filepath.Join(dir, "nope"))
	assert.Error(t, err)
}

func TestFindImages(t *testing.T) {
	dir := photosDir(t)
	table := &tagTable{tags: map[string][]string{"a.jpg": {"cat", "outdoor"}, "b.png": {"cat"}}}
	svc := newService(table)

	res := svc.FindImages(context.Background(), dir, index.Query{Search: "OUT"})
	require.True(t, res.Success)
	require.Len(t, res.Images, 1)
	assert.Equal(t, "a.jpg", res.Images[0].Name)

	res = svc.FindImages(context.Background(), dir, index.Query{Tags: []string{"cat", "dog"}})
	require.True(t, res.Success)
	assert.Empty(t, res.Images)
}
