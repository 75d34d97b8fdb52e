// Package retrieval ties an embedder and a vector store into the
// nearest-neighbor search boundary the assistant talks to.
package retrieval

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"

	"avevents/internal/domain"
)

// Index embeds event records into a vector store and answers filtered
// similarity queries over them.
type Index struct {
	embedder domain.Embedder
	store    domain.VectorStore
	records  []domain.EventRecord
	ready    bool
}

func NewIndex(embedder domain.Embedder, store domain.VectorStore) *Index {
	return &Index{embedder: embedder, store: store}
}

// Build prepares the embedder over the record corpus, embeds every record
// and replaces the store contents. It must complete before Search is usable.
func (ix *Index) Build(records []domain.EventRecord) error {
	if len(records) == 0 {
		return fmt.Errorf("no event records to index")
	}
	corpus := make([]string, len(records))
	for i, r := range records {
		corpus[i] = r.SearchText()
	}
	if err := ix.embedder.Prepare(corpus); err != nil {
		return fmt.Errorf("prepare embedder: %w", err)
	}

	vectors := make([][]float64, len(records))
	for i := range records {
		vec, err := ix.embedder.Embed(corpus[i])
		if err != nil {
			return fmt.Errorf("embed record %q: %w", records[i].Title, err)
		}
		vectors[i] = vec
	}
	if ix.embedder.Dimension() <= 0 {
		return fmt.Errorf("embedder reported no dimension")
	}
	if err := ix.store.Clear(); err != nil {
		return fmt.Errorf("clear vector store: %w", err)
	}
	if err := ix.store.Init(ix.embedder.Dimension()); err != nil {
		return fmt.Errorf("init vector store: %w", err)
	}
	if err := ix.store.Upsert(records, vectors); err != nil {
		return fmt.Errorf("upsert vectors: %w", err)
	}
	ix.records = records
	ix.ready = true
	return nil
}

// Size reports how many records are indexed.
func (ix *Index) Size() int { return len(ix.records) }

// Search embeds the query and returns up to topK records passing the filter.
// A query that embeds to the zero vector (all terms out of vocabulary) falls
// back to lexical token-overlap ranking so it still gets an answer.
func (ix *Index) Search(ctx context.Context, query string, topK int, filter *domain.Filter) ([]domain.EventRecord, error) {
	if !ix.ready {
		return nil, domain.ErrIndexNotReady
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	vec, err := ix.embedder.Embed(query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if isZero(vec) {
		return ix.lexicalSearch(query, topK, filter), nil
	}
	results, err := ix.store.Search(vec, topK, filter)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}
	allZero := true
	for _, r := range results {
		if r.Score > 1e-9 {
			allZero = false
			break
		}
	}
	if allZero {
		return ix.lexicalSearch(query, topK, filter), nil
	}
	records := make([]domain.EventRecord, len(results))
	for i, r := range results {
		records[i] = r.Record
	}
	return records, nil
}

var wordRe = regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*`)

// lexicalSearch ranks records by Ochiai token overlap with the query.
func (ix *Index) lexicalSearch(query string, topK int, filter *domain.Filter) []domain.EventRecord {
	qset := tokenSet(query)
	type scored struct {
		idx   int
		score float64
	}
	var candidates []scored
	for i, r := range ix.records {
		if filter != nil && !filter.Matches(r) {
			continue
		}
		candidates = append(candidates, scored{idx: i, score: ochiai(qset, tokenSet(r.SearchText()))})
	}
	sort.SliceStable(candidates, func(i, j int) bool { return candidates[i].score > candidates[j].score })
	if topK <= 0 {
		topK = 5
	}
	if topK > len(candidates) {
		topK = len(candidates)
	}
	out := make([]domain.EventRecord, 0, topK)
	for _, c := range candidates[:topK] {
		out = append(out, ix.records[c.idx])
	}
	return out
}

func tokenSet(s string) map[string]struct{} {
	tokens := wordRe.FindAllString(strings.ToLower(s), -1)
	m := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		m[t] = struct{}{}
	}
	return m
}

// ochiai is |A∩B| / sqrt(|A||B|).
func ochiai(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	inter := 0
	for t := range a {
		if _, ok := b[t]; ok {
			inter++
		}
	}
	return float64(inter) / math.Sqrt(float64(len(a))*float64(len(b)))
}

func isZero(vec []float64) bool {
	for _, v := range vec {
		if v != 0 {
			return false
		}
	}
	return true
}
