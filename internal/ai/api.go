package ai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"stocky-api/pkg/metrics"

	"github.com/tidwall/gjson"
)

const systemPrompt = `You identify perishable grocery products from photos for a surplus food marketplace.
Answer with a single JSON object and nothing else:
{"name": string, "category": one of ["Fruits","Vegetables","Dairy","Bakery","Meat & Seafood","Prepared Meals","Beverages","Other"],
 "description": string, "shelf_life_days": integer, "confidence": number between 0 and 1}`

type APIConfig struct {
	APIKey  string
	URL     string
	Model   string
	Timeout time.Duration
}

// APIAnalyzer calls an OpenAI-compatible chat-completions endpoint with the image inlined as a data URI
type APIAnalyzer struct {
	cfg        APIConfig
	httpClient *http.Client
}

func NewAPIAnalyzer(cfg APIConfig) *APIAnalyzer {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &APIAnalyzer{cfg: cfg, httpClient: &http.Client{Timeout: timeout}}
}

func (a *APIAnalyzer) requestBody(data []byte) ([]byte, error) {
	dataURI := "data:" + http.DetectContentType(data) + ";base64," + base64.StdEncoding.EncodeToString(data)
	return json.Marshal(map[string]interface{}{
		"model": a.cfg.Model,
		"messages": []interface{}{
			map[string]interface{}{"role": "system", "content": systemPrompt},
			map[string]interface{}{
				"role": "user",
				"content": []interface{}{
					map[string]interface{}{"type": "text", "text": "What product is this?"},
					map[string]interface{}{"type": "image_url", "image_url": map[string]string{"url": dataURI}},
				},
			},
		},
		"response_format": map[string]string{"type": "json_object"},
		"temperature":     0,
	})
}

func (a *APIAnalyzer) AnalyzeImage(ctx context.Context, _ string, data []byte) (*Analysis, error) {
	body, err := a.requestBody(data)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.cfg.URL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+a.cfg.APIKey)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		msg := gjson.GetBytes(respBody, "error.message").String()
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return nil, fmt.Errorf("vision api status %d: %s", resp.StatusCode, msg)
	}

	content := gjson.GetBytes(respBody, "choices.0.message.content")
	if !content.Exists() {
		return nil, fmt.Errorf("vision api response has no message content")
	}

	analysis, err := parseContent(content.String())
	if err != nil {
		return nil, err
	}
	metrics.AIAnalyses.WithLabelValues(SourceAPI).Inc()
	return analysis, nil
}

// parseContent reads the model's JSON answer, tolerating a markdown code fence around it
func parseContent(content string) (*Analysis, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")

	var a Analysis
	if err := json.Unmarshal([]byte(strings.TrimSpace(content)), &a); err != nil {
		return nil, fmt.Errorf("parse vision answer: %w", err)
	}
	if a.Name == "" {
		return nil, fmt.Errorf("vision answer has no product name")
	}
	a.Category = NormalizeCategory(a.Category)
	if a.Confidence < 0 || a.Confidence > 1 {
		a.Confidence = 0.5
	}
	if a.ShelfLifeDays < 0 {
		a.ShelfLifeDays = 0
	}
	a.Source = SourceAPI
	a.Cached = false
	return &a, nil
}
