package analysis

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"autotag/pkg/types"
)

var errNoAttr = errors.New("attribute not found")

// fakeAttrs serves attribute payloads keyed by file name.
type fakeAttrs struct {
	mu      sync.Mutex
	values  map[string][]byte
	errs    map[string]error
	removed []string
}

func newFakeAttrs() *fakeAttrs {
	return &fakeAttrs{values: map[string][]byte{}, errs: map[string]error{}}
}

func (f *fakeAttrs) Get(path, _ string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	name := filepath.Base(path)
	if err, ok := f.errs[name]; ok {
		return nil, err
	}
	v, ok := f.values[name]
	if !ok {
		return nil, errNoAttr
	}
	return v, nil
}

func (f *fakeAttrs) Remove(path, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	name := filepath.Base(path)
	if _, ok := f.values[name]; !ok {
		return errNoAttr
	}
	delete(f.values, name)
	f.removed = append(f.removed, name)
	return nil
}

// fakeRunner answers commands keyed by "<command> <file name>".
type fakeRunner struct {
	mu      sync.Mutex
	outputs map[string]string
	calls   []string
}

func newFakeRunner() *fakeRunner {
	return &fakeRunner{outputs: map[string]string{}}
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) ([]byte, error) {
	key := name + " " + filepath.Base(args[len(args)-1])
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, key)
	out, ok := f.outputs[key]
	if !ok {
		return nil, errors.New(name + ": command not found")
	}
	return []byte(out), nil
}

func (f *fakeRunner) called(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.calls {
		if c == key {
			return true
		}
	}
	return false
}

// stubStrategy returns a fixed result and counts calls.
type stubStrategy struct {
	kind   types.StrategyKind
	result types.TagExtractionResult
	panics bool
	calls  atomic.Int32
}

func (s *stubStrategy) Kind() types.StrategyKind { return s.kind }

func (s *stubStrategy) Extract(_ context.Context, _ string) types.TagExtractionResult {
	s.calls.Add(1)
	if s.panics {
		panic("corrupt payload")
	}
	return s.result
}

// gaugeStrategy records the peak number of concurrent Extract calls.
type gaugeStrategy struct {
	current atomic.Int32
	peak    atomic.Int32
}

func (g *gaugeStrategy) Kind() types.StrategyKind { return types.StrategyAttribute }

func (g *gaugeStrategy) Extract(_ context.Context, path string) types.TagExtractionResult {
	n := g.current.Add(1)
	for {
		p := g.peak.Load()
		if n <= p || g.peak.CompareAndSwap(p, n) {
			break
		}
	}
	time.Sleep(5 * time.Millisecond)
	g.current.Add(-1)
	return types.Found(g.Kind(), []string{filepath.Base(path)})
}
