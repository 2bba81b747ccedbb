package embedding

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toxscope/toxscope/internal/domain/safety"
	"github.com/toxscope/toxscope/internal/infrastructure/fetch"
	"github.com/toxscope/toxscope/pkg/errors"
	ctypes "github.com/toxscope/toxscope/pkg/types/compound"
	etypes "github.com/toxscope/toxscope/pkg/types/explore"
)

// stubFetcher serves canned resources, counts calls, and can hold a named
// resource until released.
type stubFetcher struct {
	mu        sync.Mutex
	resources map[string][]byte
	errs      map[string]error
	calls     map[string]int
	gate      map[string]chan struct{}
	started   chan string
}

func newStubFetcher() *stubFetcher {
	return &stubFetcher{
		resources: make(map[string][]byte),
		errs:      make(map[string]error),
		calls:     make(map[string]int),
		gate:      make(map[string]chan struct{}),
	}
}

func (s *stubFetcher) Fetch(ctx context.Context, name string) ([]byte, error) {
	s.mu.Lock()
	s.calls[name]++
	gate := s.gate[name]
	started := s.started
	s.mu.Unlock()

	if started != nil {
		started <- name
	}
	if gate != nil {
		<-gate
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err, ok := s.errs[name]; ok {
		return nil, err
	}
	data, ok := s.resources[name]
	if !ok {
		return nil, errors.NotFound("resource " + name)
	}
	return data, nil
}

func (s *stubFetcher) callCount(name string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[name]
}

var _ fetch.Fetcher = (*stubFetcher)(nil)

func newTestLoader(f fetch.Fetcher) *Loader {
	return NewLoader(f, nil, nil)
}

func TestOptions(t *testing.T) {
	opts := Options()
	require.Len(t, opts, 11)
	assert.Equal(t, "0.0", opts[0].Label)
	assert.Equal(t, "embeddings/blend_0.0.csv", opts[0].Resource)
	assert.Equal(t, "0.5", opts[5].Label)
	assert.InDelta(t, 1.0, opts[10].Weight, 1e-12)
	assert.Equal(t, "embeddings/blend_1.0.csv", opts[10].Resource)
}

func TestOptionAtOutOfRange(t *testing.T) {
	_, err := OptionAt(11)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeEmbeddingWeightOOB))

	_, err = OptionAt(-1)
	require.Error(t, err)
}

func TestLoadPositionalJoin(t *testing.T) {
	f := newStubFetcher()
	f.resources[IDsResource] = []byte("aspirin\nibuprofen\nparacetamol\n\n")
	f.resources["embeddings/blend_0.0.csv"] = []byte(
		"x,y\n" +
			"1.5,2.5\n" +
			"3.0,4.0\n" +
			"5.0,6.0\n")

	l := newTestLoader(f)
	pts, err := l.Load(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, pts, 3)
	assert.Equal(t, etypes.EmbeddingPointBase{ID: "aspirin", X: 1.5, Y: 2.5}, pts[0])
	assert.Equal(t, "paracetamol", pts[2].ID)
}

func TestLoadExplicitIDOverride(t *testing.T) {
	f := newStubFetcher()
	f.resources[IDsResource] = []byte("aspirin\nibuprofen\n")
	f.resources["embeddings/blend_0.0.csv"] = []byte(
		"id,x,y\n" +
			"custom,1.0,2.0\n" +
			",3.0,4.0\n")

	l := newTestLoader(f)
	pts, err := l.Load(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, pts, 2)
	assert.Equal(t, "custom", pts[0].ID)
	// Blank id field falls back to the positional slot.
	assert.Equal(t, "ibuprofen", pts[1].ID)
}

func TestLoadDroppedRowConsumesSlot(t *testing.T) {
	f := newStubFetcher()
	f.resources[IDsResource] = []byte("a\nb\nc\n")
	f.resources["embeddings/blend_0.0.csv"] = []byte(
		"x,y\n" +
			"1.0,2.0\n" +
			"NaN,2.0\n" +
			"5.0,6.0\n")

	l := newTestLoader(f)
	pts, err := l.Load(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, pts, 2)
	assert.Equal(t, "a", pts[0].ID)
	// The dropped middle row still occupied b's slot.
	assert.Equal(t, "c", pts[1].ID)
}

func TestLoadShorterListWins(t *testing.T) {
	f := newStubFetcher()
	f.resources[IDsResource] = []byte("a\nb\n")
	f.resources["embeddings/blend_0.0.csv"] = []byte(
		"x,y\n" +
			"1.0,2.0\n" +
			"3.0,4.0\n" +
			"5.0,6.0\n")

	l := newTestLoader(f)
	pts, err := l.Load(context.Background(), 0)
	require.NoError(t, err)
	// The third row has no positional id and no explicit one.
	require.Len(t, pts, 2)
}

func TestLoadMemoizesSuccess(t *testing.T) {
	f := newStubFetcher()
	f.resources[IDsResource] = []byte("a\n")
	f.resources["embeddings/blend_0.1.csv"] = []byte("x,y\n1.0,2.0\n")

	l := newTestLoader(f)
	_, err := l.Load(context.Background(), 1)
	require.NoError(t, err)
	_, err = l.Load(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, 1, f.callCount("embeddings/blend_0.1.csv"))
	assert.Equal(t, 1, f.callCount(IDsResource))
}

func TestLoadFailureIsRetried(t *testing.T) {
	f := newStubFetcher()
	f.resources[IDsResource] = []byte("a\n")
	f.errs["embeddings/blend_0.0.csv"] = errors.Internal("backend down")

	l := newTestLoader(f)
	_, err := l.Load(context.Background(), 0)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeEmbeddingLoad))

	f.mu.Lock()
	delete(f.errs, "embeddings/blend_0.0.csv")
	f.resources["embeddings/blend_0.0.csv"] = []byte("x,y\n1.0,2.0\n")
	f.mu.Unlock()

	pts, err := l.Load(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, pts, 1)
	assert.Equal(t, 2, f.callCount("embeddings/blend_0.0.csv"))
}

func TestLoadSupersededIsDropped(t *testing.T) {
	f := newStubFetcher()
	f.resources[IDsResource] = []byte("a\n")
	f.resources["embeddings/blend_0.0.csv"] = []byte("x,y\n1.0,2.0\n")
	f.resources["embeddings/blend_0.3.csv"] = []byte("x,y\n9.0,9.0\n")

	l := newTestLoader(f)

	// Warm weight 0 so the superseding request is an instant cache hit.
	_, err := l.Load(context.Background(), 0)
	require.NoError(t, err)

	gate := make(chan struct{})
	started := make(chan string, 4)
	f.mu.Lock()
	f.gate["embeddings/blend_0.3.csv"] = gate
	f.started = started
	f.mu.Unlock()

	errc := make(chan error, 1)
	go func() {
		_, lerr := l.Load(context.Background(), 3)
		errc <- lerr
	}()

	require.Equal(t, "embeddings/blend_0.3.csv", <-started)

	// A newer request lands while weight 3 is still in flight.
	_, err = l.Load(context.Background(), 0)
	require.NoError(t, err)

	close(gate)
	err = <-errc
	require.Error(t, err)
	assert.True(t, errors.IsCancelled(err))

	// The parsed result was still memoized, so re-requesting hits the cache.
	f.mu.Lock()
	f.started = nil
	f.mu.Unlock()
	pts, err := l.Load(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, pts, 1)
	assert.Equal(t, 1, f.callCount("embeddings/blend_0.3.csv"))
}

func TestLoadAfterClose(t *testing.T) {
	f := newStubFetcher()
	l := newTestLoader(f)
	l.Close()

	_, err := l.Load(context.Background(), 0)
	require.Error(t, err)
	assert.True(t, errors.IsCancelled(err))
}

func TestLoadMalformedCSV(t *testing.T) {
	f := newStubFetcher()
	f.resources[IDsResource] = []byte("a\n")
	f.resources["embeddings/blend_0.0.csv"] = []byte("")

	l := newTestLoader(f)
	_, err := l.Load(context.Background(), 0)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeEmbeddingLoad))
}

func TestIDsFetchError(t *testing.T) {
	f := newStubFetcher()
	f.errs[IDsResource] = errors.Internal("backend down")

	l := newTestLoader(f)
	_, err := l.IDs(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeEmbeddingIDs))
}

func TestDecorate(t *testing.T) {
	aspirin := &ctypes.Compound{ID: "c1", Name: "aspirin"}
	index := map[string]*ctypes.Compound{"aspirin": aspirin}
	margins := map[string]safety.Margins{
		"aspirin": {Aggregate: 12.5, Defined: true, Class: etypes.MarginBroad},
	}
	base := []etypes.EmbeddingPointBase{
		{ID: "aspirin", X: 1, Y: 2},
		{ID: "ghost", X: 3, Y: 4},
	}

	pts := Decorate(base, index, margins)
	require.Len(t, pts, 2)

	assert.Same(t, aspirin, pts[0].Record)
	require.NotNil(t, pts[0].Margin)
	assert.InDelta(t, 12.5, *pts[0].Margin, 1e-12)

	// Unmatched points survive undecorated.
	assert.Nil(t, pts[1].Record)
	assert.Nil(t, pts[1].Margin)
}

func TestDecorateUndefinedMargin(t *testing.T) {
	c := &ctypes.Compound{Name: "nodata"}
	index := map[string]*ctypes.Compound{"nodata": c}
	margins := map[string]safety.Margins{
		"nodata": {Defined: false, Class: etypes.MarginAlert},
	}

	pts := Decorate([]etypes.EmbeddingPointBase{{ID: "nodata"}}, index, margins)
	require.Len(t, pts, 1)
	assert.Same(t, c, pts[0].Record)
	assert.Nil(t, pts[0].Margin)
}
