// Package summarize generates short natural-language summaries of
// article bodies through a chat-completions API and caches them in the
// local store keyed by article ID.
package summarize

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pressline/pressline/internal/apperr"
	"github.com/pressline/pressline/internal/logging"
)

// DefaultEndpoint is the GLM chat-completions endpoint.
const DefaultEndpoint = "https://open.bigmodel.cn/api/paas/v4/chat/completions"

const defaultModel = "glm-4"

// maxContentRunes caps how much article body is sent to the model.
const maxContentRunes = 2000

const summaryPrompt = "请为以下新闻内容生成一个简洁明了的摘要，要求：\n" +
	"1. 控制在80-120字以内\n" +
	"2. 突出关键信息和要点\n" +
	"3. 语言简洁流畅\n\n" +
	"新闻内容：\n%s"

// Config holds the summary provider settings.
type Config struct {
	Endpoint string
	APIKey   string
	Model    string
	Timeout  time.Duration
}

// Client calls the chat-completions API. Safe for concurrent use.
type Client struct {
	endpoint string
	apiKey   string
	model    string
	http     *http.Client
}

// NewClient creates a Client from config, filling in defaults.
func NewClient(cfg Config) *Client {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}
	return &Client{
		endpoint: cfg.Endpoint,
		apiKey:   cfg.APIKey,
		model:    cfg.Model,
		http:     &http.Client{Timeout: cfg.Timeout},
	}
}

// Available reports whether the client is configured with an API key.
func (c *Client) Available() bool { return c.apiKey != "" }

// Summarize produces a cleaned summary of the given article body.
func (c *Client) Summarize(ctx context.Context, content string) (string, error) {
	if !c.Available() {
		return "", apperr.NewValidation("summary provider not configured")
	}
	if strings.TrimSpace(content) == "" {
		return "", apperr.NewValidation("article content is empty")
	}

	prompt := fmt.Sprintf(summaryPrompt, limitContent(content, maxContentRunes))

	body := map[string]any{
		"model":  c.model,
		"stream": false,
		"messages": []map[string]string{
			{"role": "user", "content": prompt},
		},
	}
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return "", apperr.NewDecode("encode summary request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(jsonBody))
	if err != nil {
		return "", apperr.NewNetwork("create summary request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", apperr.NewNetwork("summary request", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", apperr.NewNetwork("read summary response", err)
	}
	if resp.StatusCode != http.StatusOK {
		logging.Error("summary API error", "status", resp.StatusCode)
		return "", apperr.NewNetwork("summary request", fmt.Errorf("HTTP %d", resp.StatusCode))
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", apperr.NewDecode("decode summary response", err)
	}
	if len(result.Choices) == 0 || strings.TrimSpace(result.Choices[0].Message.Content) == "" {
		return "", apperr.NewDecode("decode summary response", fmt.Errorf("no choices in response"))
	}

	return cleanSummary(result.Choices[0].Message.Content), nil
}

// limitContent truncates to at most max runes, preferring to cut at the
// last sentence boundary past 70% of the window.
func limitContent(content string, max int) string {
	runes := []rune(content)
	if len(runes) <= max {
		return content
	}
	truncated := runes[:max]
	if idx := lastIndexRune(truncated, '。'); idx > max*7/10 {
		truncated = truncated[:idx+1]
	}
	return string(truncated) + "..."
}

func lastIndexRune(runes []rune, r rune) int {
	for i := len(runes) - 1; i >= 0; i-- {
		if runes[i] == r {
			return i
		}
	}
	return -1
}

// cleanSummary strips boilerplate lead-ins the model tends to add and
// collapses whitespace.
func cleanSummary(s string) string {
	s = strings.TrimSpace(s)
	for _, prefix := range []string{"摘要：", "总结：", "概述："} {
		if strings.HasPrefix(s, prefix) {
			s = strings.TrimPrefix(s, prefix)
			break
		}
	}
	return strings.Join(strings.Fields(s), " ")
}
