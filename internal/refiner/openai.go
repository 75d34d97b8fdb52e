// Package refiner turns raw user utterances into retrieval queries with a
// Broad/Specific hint. The remote implementation asks an OpenAI-compatible
// chat endpoint; the heuristic one works offline with keyword rules.
package refiner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"avevents/internal/domain"
)

const systemPrompt = `You are an analyst who understands the events and activities of the Auroville community.
Generate a search query and specificity for a vector database based on the user question.

Today's date is %s.

Rules:
1) Convert relative dates like "today" or "tomorrow" into exact dates.
2) Always include appointment events if relevant.
3) Specificity is "Broad" for general date/day queries and "Specific" for particular event or activity queries.
4) Keep the query concise and directly usable for semantic search. Include venue names when given.

Respond with a JSON object: {"search_query": "...", "specificity": "Broad"|"Specific"}.`

// OpenAIRefiner calls a chat-completions endpoint and parses a JSON reply.
type OpenAIRefiner struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
}

// OpenAIConfig configures the remote refiner. The key comes from the
// environment variable named by APIKeyEnv.
type OpenAIConfig struct {
	BaseURL   string
	APIKeyEnv string
	Model     string
	Timeout   time.Duration
}

func NewOpenAIRefiner(cfg OpenAIConfig) (*OpenAIRefiner, error) {
	key := os.Getenv(cfg.APIKeyEnv)
	if key == "" {
		return nil, fmt.Errorf("missing API key in env %s", cfg.APIKeyEnv)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4.1-mini"
	}
	t := cfg.Timeout
	if t == 0 {
		t = 30 * time.Second
	}
	return &OpenAIRefiner{
		baseURL: cfg.BaseURL,
		apiKey:  key,
		model:   cfg.Model,
		client:  &http.Client{Timeout: t},
	}, nil
}

func (r *OpenAIRefiner) Refine(ctx context.Context, utterance string, today time.Time) (string, domain.Specificity, error) {
	reqBody := map[string]any{
		"model": r.model,
		"messages": []map[string]string{
			{"role": "system", "content": fmt.Sprintf(systemPrompt, today.Format("Monday, January 2, 2006"))},
			{"role": "user", "content": utterance},
		},
		"temperature":     0.1,
		"response_format": map[string]string{"type": "json_object"},
	}
	data, _ := json.Marshal(reqBody)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/chat/completions", bytes.NewReader(data))
	if err != nil {
		return "", domain.Broad, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+r.apiKey)

	resp, err := r.client.Do(req)
	if err != nil {
		return "", domain.Broad, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return "", domain.Broad, fmt.Errorf("refiner request failed: %s", resp.Status)
	}

	var out struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", domain.Broad, fmt.Errorf("decode refiner response: %w", err)
	}
	if len(out.Choices) == 0 {
		return "", domain.Broad, fmt.Errorf("refiner returned no choices")
	}

	var parsed struct {
		SearchQuery string `json:"search_query"`
		Specificity string `json:"specificity"`
	}
	if err := json.Unmarshal([]byte(out.Choices[0].Message.Content), &parsed); err != nil {
		return "", domain.Broad, fmt.Errorf("parse refiner output: %w", err)
	}
	if strings.TrimSpace(parsed.SearchQuery) == "" {
		return "", domain.Broad, fmt.Errorf("refiner returned empty query")
	}
	spec := domain.Broad
	if strings.EqualFold(strings.TrimSpace(parsed.Specificity), "specific") {
		spec = domain.Specific
	}
	return strings.TrimSpace(parsed.SearchQuery), spec, nil
}
