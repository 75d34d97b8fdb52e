// Package qdrant is a minimal REST client to a Qdrant collection holding
// event records as payloads. It assumes cosine distance and creates the
// collection if missing.
package qdrant

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"hash/fnv"
	"net/http"
	"time"

	"avevents/internal/domain"
)

type Storage struct {
	url        string
	apiKey     string
	collection string
	dimension  int
	client     *http.Client
}

type Config struct {
	URL        string
	APIKey     string
	Collection string
	Timeout    time.Duration
}

func NewStorage(cfg Config) *Storage {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &Storage{
		url:        cfg.URL,
		apiKey:     cfg.APIKey,
		collection: cfg.Collection,
		client:     &http.Client{Timeout: timeout},
	}
}

func (s *Storage) Init(dimension int) error {
	if dimension <= 0 {
		return errors.New("invalid dimension")
	}
	s.dimension = dimension
	body := map[string]any{
		"vectors": map[string]any{
			"size":     dimension,
			"distance": "Cosine",
		},
	}
	// Qdrant returns 200 if the collection already exists with the same schema.
	return s.putJSON(fmt.Sprintf("%s/collections/%s", s.url, s.collection), body)
}

func (s *Storage) Upsert(records []domain.EventRecord, vectors [][]float64) error {
	if len(records) != len(vectors) {
		return errors.New("records and vectors length mismatch")
	}
	points := make([]map[string]any, len(records))
	for i, r := range records {
		points[i] = map[string]any{
			"id":      pointID(r, i),
			"vector":  vectors[i],
			"payload": payloadFromRecord(r),
		}
	}
	body := map[string]any{"points": points}
	return s.putJSON(fmt.Sprintf("%s/collections/%s/points?wait=true", s.url, s.collection), body)
}

func (s *Storage) Search(vector []float64, topK int, filter *domain.Filter) ([]domain.SearchResult, error) {
	if topK <= 0 {
		topK = 5
	}
	req := map[string]any{
		"vector":       vector,
		"limit":        topK,
		"with_payload": true,
	}
	if qf := qdrantFilter(filter); qf != nil {
		req["filter"] = qf
	}
	var resp struct {
		Result []struct {
			Score   float64           `json:"score"`
			Payload map[string]string `json:"payload"`
		} `json:"result"`
	}
	if err := s.postJSON(fmt.Sprintf("%s/collections/%s/points/search", s.url, s.collection), req, &resp); err != nil {
		return nil, err
	}
	results := make([]domain.SearchResult, 0, len(resp.Result))
	for _, r := range resp.Result {
		results = append(results, domain.SearchResult{Record: recordFromPayload(r.Payload), Score: r.Score})
	}
	return results, nil
}

func (s *Storage) Clear() error {
	// Best-effort: drop collection
	req, _ := http.NewRequest(http.MethodDelete, fmt.Sprintf("%s/collections/%s", s.url, s.collection), nil)
	if s.apiKey != "" {
		req.Header.Set("api-key", s.apiKey)
	}
	_, _ = s.client.Do(req)
	return nil
}

// qdrantFilter maps the metadata filter to a "should" clause, matching the
// filter's OR semantics across fields.
func qdrantFilter(f *domain.Filter) map[string]any {
	if f == nil || f.IsZero() {
		return nil
	}
	var should []map[string]any
	for key, value := range map[string]string{
		"day":      f.Day,
		"date":     f.Date,
		"location": f.Location,
	} {
		if value == "" {
			continue
		}
		should = append(should, map[string]any{
			"key":   key,
			"match": map[string]any{"value": value},
		})
	}
	return map[string]any{"should": should}
}

func payloadFromRecord(r domain.EventRecord) map[string]string {
	return map[string]string{
		"title":        r.Title,
		"category":     r.CategoryHint,
		"day":          r.Day,
		"date":         r.Date,
		"time":         r.Time,
		"location":     r.Location,
		"contribution": r.Contribution,
		"contact":      r.ContactName,
		"phone":        r.Phone,
		"email":        r.Email,
		"description":  r.Description,
		"poster_url":   r.PosterURL,
		"audience":     r.Audience,
	}
}

func recordFromPayload(p map[string]string) domain.EventRecord {
	return domain.EventRecord{
		Title:        p["title"],
		CategoryHint: p["category"],
		Day:          p["day"],
		Date:         p["date"],
		Time:         p["time"],
		Location:     p["location"],
		Contribution: p["contribution"],
		ContactName:  p["contact"],
		Phone:        p["phone"],
		Email:        p["email"],
		Description:  p["description"],
		PosterURL:    p["poster_url"],
		Audience:     p["audience"],
	}
}

// pointID derives a stable numeric id from the dedupe identity of a record.
func pointID(r domain.EventRecord, i int) uint64 {
	h := fnv.New64a()
	fmt.Fprintf(h, "%s|%s|%s|%d", r.Title, r.Date, r.Day, i)
	return h.Sum64()
}

func (s *Storage) putJSON(url string, body any) error {
	data, _ := json.Marshal(body)
	req, _ := http.NewRequest(http.MethodPut, url, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("api-key", s.apiKey)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("qdrant PUT %s failed: %s", url, resp.Status)
	}
	return nil
}

func (s *Storage) postJSON(url string, body any, out any) error {
	data, _ := json.Marshal(body)
	req, _ := http.NewRequest(http.MethodPost, url, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("api-key", s.apiKey)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("qdrant POST %s failed: %s", url, resp.Status)
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}
