// Package ai is the optional pre-persist content check. It is a safety
// net, not the core gate: callers must fail open when the classifier
// errors or times out.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/janawaaz/janawaaz/src/webclient"
)

type Verdict string

const (
	VerdictOK     Verdict = "OK"
	VerdictRemove Verdict = "REMOVE"
)

type Classifier interface {
	Classify(ctx context.Context, text string) (Verdict, error)
}

const defaultGeminiURL = "https://generativelanguage.googleapis.com/v1beta/models/gemini-1.5-flash:generateContent"

type GeminiClassifier struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

func NewGeminiClassifier(apiKey string) *GeminiClassifier {
	return &GeminiClassifier{
		apiKey:     apiKey,
		baseURL:    defaultGeminiURL,
		httpClient: webclient.New(10 * time.Second),
	}
}

// NewGeminiClassifierWithURL points the client at a different endpoint.
func NewGeminiClassifierWithURL(apiKey, baseURL string) *GeminiClassifier {
	c := NewGeminiClassifier(apiKey)
	c.baseURL = baseURL
	return c
}

func (c *GeminiClassifier) Classify(ctx context.Context, text string) (Verdict, error) {
	prompt := fmt.Sprintf("Check this message. If it contains abuse, hate, spam or harmful content return \"REMOVE\". If it is fine return \"OK\". Return only REMOVE or OK, nothing else.\nMessage: %q", text)

	reqBody := map[string]any{
		"contents": []map[string]any{
			{"parts": []map[string]string{{"text": prompt}}},
		},
		"generationConfig": map[string]any{"maxOutputTokens": 10, "temperature": 0.0},
	}
	b, _ := json.Marshal(reqBody)

	// One retry on a transient failure; the send path is waiting on us.
	status, body, err := webclient.DoWithRetry(ctx, 2, 300*time.Millisecond, func() (int, []byte, error) {
		req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"?key="+c.apiKey, bytes.NewBuffer(b))
		if err != nil {
			return 0, nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return 0, nil, err
		}
		defer resp.Body.Close()
		body, err := io.ReadAll(resp.Body)
		return resp.StatusCode, body, err
	})
	if err != nil {
		return VerdictOK, err
	}
	if status != http.StatusOK {
		return VerdictOK, fmt.Errorf("gemini API error: %s", string(body))
	}

	var result struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return VerdictOK, err
	}
	if len(result.Candidates) == 0 || len(result.Candidates[0].Content.Parts) == 0 {
		return VerdictOK, fmt.Errorf("empty gemini response")
	}

	answer := strings.ToUpper(strings.TrimSpace(result.Candidates[0].Content.Parts[0].Text))
	if answer == string(VerdictRemove) {
		return VerdictRemove, nil
	}
	return VerdictOK, nil
}
