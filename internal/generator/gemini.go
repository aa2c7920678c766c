// Package generator turns a user prompt into a single validated SQL SELECT
// via the hosted Gemini generateContent API, falling back across an ordered
// model list when quota runs out.
package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/shipquery/shipquery/internal/sqltext"
)

// quotaCode is the generation service's numeric error code for rate/usage
// exhaustion. It triggers fallback to the next model instead of failing.
const quotaCode = 429

var (
	ErrQuotaExhausted = errors.New("All models are over quota - please retry later")
	ErrNoSQL          = errors.New("no SQL produced")
)

// Client calls the Gemini generateContent endpoint with deterministic
// sampling. The model list is immutable and iterated top-down; there is no
// shared mutable state, so one Client serves concurrent requests.
type Client struct {
	httpc         *http.Client
	apiKey        string
	baseURL       string
	models        []string
	referenceDate string
	rowLimit      int
	cache         *resultCache // nil when caching is disabled
}

type Options struct {
	APIKey        string
	BaseURL       string
	Models        []string
	ReferenceDate string
	RowLimit      int
	CacheTTL      time.Duration // zero disables the cache
}

func NewClient(opts Options) *Client {
	c := &Client{
		httpc:         &http.Client{Timeout: 60 * time.Second},
		apiKey:        opts.APIKey,
		baseURL:       strings.TrimSuffix(opts.BaseURL, "/"),
		models:        opts.Models,
		referenceDate: opts.ReferenceDate,
		rowLimit:      opts.RowLimit,
	}
	if opts.CacheTTL > 0 {
		c.cache = newResultCache(opts.CacheTTL)
	}
	return c
}

// Generate returns a single SELECT statement for prompt, or an error with a
// message suitable for the caller: ErrQuotaExhausted when every model is
// quota-limited, ErrNoSQL when the model produced no usable statement, or the
// generation service's own message for hard errors.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	key := strings.TrimSpace(prompt)
	if c.cache == nil {
		return c.generate(ctx, key)
	}

	if sql, ok := c.cache.get(key); ok {
		log.Debug().Msg("generation cache hit")
		return sql, nil
	}

	// Concurrent identical prompts share one upstream call via singleflight.
	v, err, _ := c.cache.sf.Do(key, func() (interface{}, error) {
		if sql, ok := c.cache.get(key); ok {
			return sql, nil
		}
		sql, err := c.generate(ctx, key)
		if err != nil {
			return nil, err
		}
		c.cache.set(key, sql)
		return sql, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (c *Client) generate(ctx context.Context, prompt string) (string, error) {
	templated := buildPrompt(c.referenceDate, prompt)

	for _, model := range c.models {
		text, err := c.call(ctx, model, templated)
		if err != nil {
			var apiErr *apiError
			if errors.As(err, &apiErr) && apiErr.Code == quotaCode {
				log.Warn().Str("model", model).Msg("model over quota, trying next")
				continue
			}
			return "", err
		}

		stmt, ok := sqltext.ExtractSelect(sqltext.StripFences(text))
		if !ok {
			return "", ErrNoSQL
		}
		return sqltext.EnsureLimit(stmt, prompt, c.rowLimit), nil
	}

	return "", ErrQuotaExhausted
}

// ─── Wire types ───────────────────────────────────────────────────────────────

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	Temperature float64 `json:"temperature"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []part `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *apiError `json:"error"`
}

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *apiError) Error() string {
	return e.Message
}

func (c *Client) call(ctx context.Context, model, templatedPrompt string) (string, error) {
	endpoint := fmt.Sprintf("%s/v1/models/%s:generateContent?key=%s",
		c.baseURL, model, url.QueryEscape(c.apiKey))

	body, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: templatedPrompt}}}},
		// Temperature zero: reproducible output for identical prompts.
		GenerationConfig: generationConfig{Temperature: 0},
	})
	if err != nil {
		return "", fmt.Errorf("marshal generation request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build generation request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", fmt.Errorf("generation service unreachable: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read generation response: %w", err)
	}

	var gr generateResponse
	if err := json.Unmarshal(raw, &gr); err != nil {
		return "", fmt.Errorf("decode generation response: %w", err)
	}
	if gr.Error != nil {
		return "", gr.Error
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("generation service returned status %d", resp.StatusCode)
	}

	var sb strings.Builder
	for _, cand := range gr.Candidates {
		for _, p := range cand.Content.Parts {
			sb.WriteString(p.Text)
		}
	}
	return sb.String(), nil
}
