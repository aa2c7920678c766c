package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// RestExecutor forwards SQL to a hosted query-execution endpoint. The endpoint
// is a black box: it accepts {"query": string} and returns an array of row
// objects on 2xx or an error payload otherwise.
type RestExecutor struct {
	httpc    *http.Client
	endpoint string
	apiKey   string
}

func NewRestExecutor(endpoint, apiKey string, timeout time.Duration) *RestExecutor {
	return &RestExecutor{
		httpc:    &http.Client{Timeout: timeout},
		endpoint: endpoint,
		apiKey:   apiKey,
	}
}

func (e *RestExecutor) Name() string { return "rest" }

type executeRequest struct {
	Query string `json:"query"`
}

func (e *RestExecutor) Execute(ctx context.Context, sql string) ([]map[string]any, error) {
	body, err := json.Marshal(executeRequest{Query: sql})
	if err != nil {
		return nil, fmt.Errorf("marshal execution request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build execution request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", e.apiKey)
	req.Header.Set("Authorization", "Bearer "+e.apiKey)

	resp, err := e.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execution service unreachable: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read execution response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &RemoteError{Status: resp.StatusCode, Body: raw}
	}

	var rows []map[string]any
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, fmt.Errorf("decode execution response: %w", err)
	}
	return rows, nil
}

// TestConnection probes the endpoint with a trivial statement.
func (e *RestExecutor) TestConnection(ctx context.Context) error {
	_, err := e.Execute(ctx, "SELECT 1")
	return err
}
