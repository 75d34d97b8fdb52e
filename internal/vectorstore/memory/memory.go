// Package memory is a brute-force cosine-similarity store. The event corpus
// is a few thousand rows at most, so a linear scan with an optional metadata
// filter is plenty.
package memory

import (
	"errors"
	"sort"
	"sync"

	"avevents/internal/domain"
)

// Storage keeps records and their vectors in process memory.
type Storage struct {
	mu        sync.RWMutex
	dimension int
	vectors   [][]float64
	records   []domain.EventRecord
}

func NewStorage() *Storage { return &Storage{} }

func (s *Storage) Init(dimension int) error {
	if dimension <= 0 {
		return errors.New("invalid dimension")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dimension = dimension
	s.vectors = nil
	s.records = nil
	return nil
}

func (s *Storage) Upsert(records []domain.EventRecord, vectors [][]float64) error {
	if len(records) != len(vectors) {
		return errors.New("records and vectors length mismatch")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, v := range vectors {
		if len(v) != s.dimension {
			return errors.New("vector dimension mismatch")
		}
	}
	s.records = append(s.records, records...)
	s.vectors = append(s.vectors, vectors...)
	return nil
}

// Search scores every stored record that passes the filter and returns the
// topK best. Vectors are assumed L2-normalized so the dot product is the
// cosine similarity.
func (s *Storage) Search(vector []float64, topK int, filter *domain.Filter) ([]domain.SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if topK <= 0 {
		topK = 5
	}
	type scored struct {
		idx   int
		score float64
	}
	candidates := make([]scored, 0, len(s.vectors))
	for i := range s.vectors {
		if filter != nil && !filter.Matches(s.records[i]) {
			continue
		}
		candidates = append(candidates, scored{idx: i, score: dot(s.vectors[i], vector)})
	}
	sort.SliceStable(candidates, func(i, j int) bool { return candidates[i].score > candidates[j].score })
	if topK > len(candidates) {
		topK = len(candidates)
	}
	results := make([]domain.SearchResult, 0, topK)
	for _, c := range candidates[:topK] {
		results = append(results, domain.SearchResult{Record: s.records[c.idx], Score: c.score})
	}
	return results, nil
}

func (s *Storage) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vectors = nil
	s.records = nil
	return nil
}

func dot(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	sum := 0.0
	for i := 0; i < n; i++ {
		sum += a[i] * b[i]
	}
	return sum
}
