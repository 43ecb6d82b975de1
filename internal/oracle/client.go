package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/wenyunvip/ai-daily-digest/internal/config"
	"github.com/wenyunvip/ai-daily-digest/internal/domain"
	"github.com/wenyunvip/ai-daily-digest/internal/ports"
)

// Client talks to a Moonshot/OpenAI-compatible chat-completions API and
// implements the scoring, summarization and trend-synthesis calls. The
// service is opaque and rate-limited; every failure is classified so the
// dispatcher can decide about retries.
type Client struct {
	endpoint   string
	model      string
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger
}

var _ ports.Oracle = (*Client)(nil)

// NewClient builds a client from configuration.
func NewClient(cfg config.OracleConfig, logger *slog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &Client{
		endpoint:   cfg.Endpoint,
		model:      cfg.Model,
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// chat posts one prompt and returns the raw completion text.
func (c *Client) chat(ctx context.Context, prompt string) (string, error) {
	if c.apiKey == "" || c.endpoint == "" || c.model == "" {
		return "", &domain.OracleError{Kind: domain.OracleServiceError, Err: errors.New("oracle client misconfigured")}
	}

	body, err := json.Marshal(chatRequest{
		Model:       c.model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Temperature: 0.3,
		MaxTokens:   4000,
	})
	if err != nil {
		return "", &domain.OracleError{Kind: domain.OracleServiceError, Err: fmt.Errorf("marshal request: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", &domain.OracleError{Kind: domain.OracleServiceError, Err: fmt.Errorf("new request: %w", err)}
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &domain.OracleError{Kind: classifyTransport(err), Err: err}
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", &domain.OracleError{Kind: classifyTransport(err), Err: fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode != http.StatusOK {
		return "", &domain.OracleError{
			Kind: classifyStatus(resp.StatusCode),
			Err:  fmt.Errorf("status %s: %s", resp.Status, strings.TrimSpace(string(payload))),
		}
	}

	var parsed chatResponse
	if err := json.Unmarshal(payload, &parsed); err != nil {
		return "", &domain.OracleError{Kind: domain.OracleServiceError, Err: fmt.Errorf("decode response: %w", err)}
	}
	if len(parsed.Choices) == 0 {
		return "", &domain.OracleError{Kind: domain.OracleServiceError, Err: errors.New("empty completion")}
	}

	return parsed.Choices[0].Message.Content, nil
}

func classifyTransport(err error) domain.OracleFaultKind {
	if errors.Is(err, context.DeadlineExceeded) {
		return domain.OracleTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return domain.OracleTimeout
	}
	return domain.OracleServiceError
}

func classifyStatus(code int) domain.OracleFaultKind {
	switch {
	case code == http.StatusTooManyRequests:
		return domain.OracleRateLimited
	case code == http.StatusRequestTimeout,
		code == http.StatusBadGateway,
		code == http.StatusServiceUnavailable,
		code == http.StatusGatewayTimeout:
		return domain.OracleTimeout
	case code >= 500:
		return domain.OracleServiceError
	default:
		return domain.OracleInvalidInput
	}
}

// Score asks the oracle for per-dimension scores, a category and keywords
// for each article in the batch. Results are keyed by fingerprint;
// articles the oracle skipped are simply absent from the result.
func (c *Client) Score(ctx context.Context, articles []domain.Article) ([]domain.Scorecard, error) {
	if len(articles) == 0 {
		return nil, nil
	}

	text, err := c.chat(ctx, scoringPrompt(articles))
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Results []struct {
			ID         string   `json:"id"`
			Relevance  int      `json:"relevance"`
			Quality    int      `json:"quality"`
			Timeliness int      `json:"timeliness"`
			Category   string   `json:"category"`
			Keywords   []string `json:"keywords"`
		} `json:"results"`
	}
	if err := decodeJSONPayload(text, &parsed); err != nil {
		return nil, &domain.OracleError{Kind: domain.OracleServiceError, Err: fmt.Errorf("scoring response: %w", err)}
	}

	known := make(map[string]bool, len(articles))
	for _, a := range articles {
		known[a.ID] = true
	}

	cards := make([]domain.Scorecard, 0, len(parsed.Results))
	for _, r := range parsed.Results {
		if !known[r.ID] {
			c.debug("scoring result for unknown article dropped", "id", r.ID)
			continue
		}
		cards = append(cards, domain.Scorecard{
			ArticleID:  r.ID,
			Relevance:  clampScore(r.Relevance),
			Quality:    clampScore(r.Quality),
			Timeliness: clampScore(r.Timeliness),
			Category:   domain.ParseCategory(r.Category),
			Keywords:   r.Keywords,
		})
	}
	return cards, nil
}

// Summarize asks the oracle for a summary, translated title and
// recommendation for each top-ranked article.
func (c *Client) Summarize(ctx context.Context, articles []domain.ScoredArticle) ([]domain.Summary, error) {
	if len(articles) == 0 {
		return nil, nil
	}

	text, err := c.chat(ctx, summaryPrompt(articles))
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Summaries []struct {
			ID              string `json:"id"`
			Summary         string `json:"summary"`
			TranslatedTitle string `json:"translated_title"`
			Recommendation  string `json:"recommendation"`
		} `json:"summaries"`
	}
	if err := decodeJSONPayload(text, &parsed); err != nil {
		return nil, &domain.OracleError{Kind: domain.OracleServiceError, Err: fmt.Errorf("summary response: %w", err)}
	}

	known := make(map[string]bool, len(articles))
	for _, a := range articles {
		known[a.ID] = true
	}

	summaries := make([]domain.Summary, 0, len(parsed.Summaries))
	for _, s := range parsed.Summaries {
		if !known[s.ID] {
			continue
		}
		summaries = append(summaries, domain.Summary{
			ArticleID:       s.ID,
			Summary:         s.Summary,
			TranslatedTitle: s.TranslatedTitle,
			Recommendation:  s.Recommendation,
		})
	}
	return summaries, nil
}

// SynthesizeTrend asks the oracle for a short cross-article trend
// narrative over the summarized set.
func (c *Client) SynthesizeTrend(ctx context.Context, articles []domain.SummarizedArticle) (string, error) {
	if len(articles) == 0 {
		return "", nil
	}

	text, err := c.chat(ctx, trendPrompt(articles))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

// decodeJSONPayload unmarshals a completion that may be wrapped in a
// markdown code fence.
func decodeJSONPayload(text string, v any) error {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	}
	return json.Unmarshal([]byte(strings.TrimSpace(text)), v)
}

func clampScore(v int) int {
	if v < 1 {
		return 1
	}
	if v > 10 {
		return 10
	}
	return v
}

func (c *Client) debug(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Debug(msg, args...)
	}
}
