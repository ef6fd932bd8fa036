package vectorstore

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/docqa/docqa/internal/model"
)

func testChunks() []model.Chunk {
	return []model.Chunk{
		{Text: "grace period is thirty days", Vector: []float32{1, 0, 0}},
		{Text: "waiting period is two years", Vector: []float32{0, 1, 0}},
		{Text: "maternity benefits after delivery", Vector: []float32{0, 0, 1}},
		{Text: "grace period extension clause", Vector: []float32{0.9, 0.1, 0}},
	}
}

func TestNewIndex_Validation(t *testing.T) {
	t.Parallel()

	if _, err := NewIndex(nil); !errors.Is(err, ErrNoChunks) {
		t.Errorf("expected ErrNoChunks, got %v", err)
	}

	if _, err := NewIndex([]model.Chunk{{Text: "a", Vector: nil}}); !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch for empty vector, got %v", err)
	}

	mixed := []model.Chunk{
		{Text: "a", Vector: []float32{1, 2}},
		{Text: "b", Vector: []float32{1, 2, 3}},
	}
	if _, err := NewIndex(mixed); !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch for mixed dims, got %v", err)
	}
}

func TestIndex_Search_RanksBySimilarity(t *testing.T) {
	t.Parallel()

	ix, err := NewIndex(testChunks())
	if err != nil {
		t.Fatalf("NewIndex failed: %v", err)
	}

	results, err := ix.Search([]float32{1, 0, 0}, 2)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}

	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}

	if results[0].Chunk.Text != "grace period is thirty days" {
		t.Errorf("top result = %q", results[0].Chunk.Text)
	}
	if results[1].Chunk.Text != "grace period extension clause" {
		t.Errorf("second result = %q", results[1].Chunk.Text)
	}
	if results[0].Score < results[1].Score {
		t.Error("results not sorted by descending score")
	}
}

func TestIndex_Search_KLargerThanIndex(t *testing.T) {
	t.Parallel()

	ix, err := NewIndex(testChunks())
	if err != nil {
		t.Fatalf("NewIndex failed: %v", err)
	}

	results, err := ix.Search([]float32{1, 1, 1}, 100)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != 4 {
		t.Errorf("expected all 4 chunks, got %d", len(results))
	}
}

func TestIndex_Search_DimensionMismatch(t *testing.T) {
	t.Parallel()

	ix, err := NewIndex(testChunks())
	if err != nil {
		t.Fatalf("NewIndex failed: %v", err)
	}

	if _, err := ix.Search([]float32{1, 0}, 2); !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch, got %v", err)
	}
}

func TestCache_LRUEviction(t *testing.T) {
	t.Parallel()

	ix, err := NewIndex(testChunks())
	if err != nil {
		t.Fatalf("NewIndex failed: %v", err)
	}

	c := NewCache(2)
	c.Put("a", ix)
	c.Put("b", ix)

	// Touch "a" so "b" becomes the eviction candidate.
	if _, ok := c.Get("a"); !ok {
		t.Fatal("expected a to be cached")
	}

	c.Put("c", ix)

	if _, ok := c.Get("b"); ok {
		t.Error("expected b to be evicted")
	}
	if _, ok := c.Get("a"); !ok {
		t.Error("expected a to survive")
	}
	if _, ok := c.Get("c"); !ok {
		t.Error("expected c to be cached")
	}
	if c.Len() != 2 {
		t.Errorf("Len() = %d, want 2", c.Len())
	}
}

func TestCache_Delete(t *testing.T) {
	t.Parallel()

	ix, err := NewIndex(testChunks())
	if err != nil {
		t.Fatalf("NewIndex failed: %v", err)
	}

	c := NewCache(4)
	c.Put("a", ix)
	c.Delete("a")

	if _, ok := c.Get("a"); ok {
		t.Error("expected a to be deleted")
	}

	// Deleting a missing key is a no-op.
	c.Delete("missing")
}

func TestCache_GetOrBuild_SingleBuild(t *testing.T) {
	t.Parallel()

	ix, err := NewIndex(testChunks())
	if err != nil {
		t.Fatalf("NewIndex failed: %v", err)
	}

	c := NewCache(4)
	var builds atomic.Int32
	gate := make(chan struct{})

	build := func(ctx context.Context) (*Index, error) {
		builds.Add(1)
		<-gate
		return ix, nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, _, err := c.GetOrBuild(context.Background(), "doc", build)
			if err != nil {
				t.Errorf("GetOrBuild failed: %v", err)
			}
			if got != ix {
				t.Error("GetOrBuild returned wrong index")
			}
		}()
	}

	close(gate)
	wg.Wait()

	if n := builds.Load(); n != 1 {
		t.Errorf("build ran %d times, want 1", n)
	}

	// Subsequent call is a cache hit.
	_, hit, err := c.GetOrBuild(context.Background(), "doc", build)
	if err != nil {
		t.Fatalf("GetOrBuild failed: %v", err)
	}
	if !hit {
		t.Error("expected cache hit")
	}
}

func TestCache_GetOrBuild_BuildError(t *testing.T) {
	t.Parallel()

	c := NewCache(4)
	wantErr := errors.New("fetch failed")

	_, _, err := c.GetOrBuild(context.Background(), "doc", func(ctx context.Context) (*Index, error) {
		return nil, wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Errorf("expected build error, got %v", err)
	}

	// A failed build must not poison the cache.
	if _, ok := c.Get("doc"); ok {
		t.Error("failed build should not be cached")
	}
}
