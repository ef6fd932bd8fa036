// Package vectorstore provides an in-memory vector index over document
// chunks, with a bounded per-URL cache in front of it.
package vectorstore

import (
	"errors"
	"math"
	"sort"

	"github.com/docqa/docqa/internal/model"
)

var (
	// ErrNoChunks indicates an index cannot be built from zero chunks.
	ErrNoChunks = errors.New("no chunks to index")
	// ErrDimensionMismatch indicates inconsistent embedding dimensions.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
)

// SearchResult is one retrieved chunk with its similarity score.
type SearchResult struct {
	Chunk model.Chunk
	Score float64
}

// Index holds embedded chunks for one document and answers nearest-neighbor
// queries by cosine similarity. An Index is immutable after construction and
// safe for concurrent reads.
type Index struct {
	chunks []model.Chunk
	norms  []float64
	dim    int
}

// NewIndex builds an index over the given chunks.
// Every chunk must carry a vector of the same dimension.
func NewIndex(chunks []model.Chunk) (*Index, error) {
	if len(chunks) == 0 {
		return nil, ErrNoChunks
	}

	dim := len(chunks[0].Vector)
	if dim == 0 {
		return nil, ErrDimensionMismatch
	}

	norms := make([]float64, len(chunks))
	for i, chunk := range chunks {
		if len(chunk.Vector) != dim {
			return nil, ErrDimensionMismatch
		}
		norms[i] = vectorNorm(chunk.Vector)
	}

	return &Index{
		chunks: chunks,
		norms:  norms,
		dim:    dim,
	}, nil
}

// Len returns the number of indexed chunks.
func (ix *Index) Len() int {
	return len(ix.chunks)
}

// Chunks returns the indexed chunks.
func (ix *Index) Chunks() []model.Chunk {
	return ix.chunks
}

// Search returns the k chunks most similar to the query vector, best first.
// Returns fewer than k results when the index is smaller than k.
func (ix *Index) Search(query []float32, k int) ([]SearchResult, error) {
	if len(query) != ix.dim {
		return nil, ErrDimensionMismatch
	}
	if k <= 0 {
		return nil, nil
	}

	queryNorm := vectorNorm(query)
	if queryNorm == 0 {
		return nil, nil
	}

	results := make([]SearchResult, 0, len(ix.chunks))
	for i, chunk := range ix.chunks {
		if ix.norms[i] == 0 {
			continue
		}
		score := dotProduct(query, chunk.Vector) / (queryNorm * ix.norms[i])
		results = append(results, SearchResult{Chunk: chunk, Score: score})
	}

	sort.Slice(results, func(a, b int) bool {
		return results[a].Score > results[b].Score
	})

	if len(results) > k {
		results = results[:k]
	}

	return results, nil
}

func dotProduct(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}

func vectorNorm(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}
