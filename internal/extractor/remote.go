// internal/extractor/remote.go
package extractor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"prd-builder/internal/common/config"
	"prd-builder/internal/common/errors"
	"prd-builder/internal/common/logger"
	"prd-builder/internal/common/metrics"
	"prd-builder/internal/prd"
)

// RemoteExtractor delegates extraction to an OpenAI-compatible
// chat-completions endpoint. One outbound call per invocation, no internal
// retry: on timeout, transport failure, or a malformed response the call
// fails outright and the caller keeps its last-known-good state.
type RemoteExtractor struct {
	cfg    config.LLMConfig
	client *http.Client
	logger logger.Logger
}

func NewRemoteExtractor(cfg config.LLMConfig, log logger.Logger) *RemoteExtractor {
	return &RemoteExtractor{
		cfg: cfg,
		client: &http.Client{
			// No client-level timeout: the per-call context bounds the call.
		},
		logger: log.With(map[string]interface{}{
			"extractor": config.ModeRemote,
		}),
	}
}

func (e *RemoteExtractor) Mode() string { return config.ModeRemote }

type completionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionEnvelope struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (e *RemoteExtractor) Extract(ctx context.Context, history []prd.Message, prior prd.PRD) (*prd.CandidateUpdate, error) {
	if e.cfg.BaseURL == "" || e.cfg.APIKey == "" || e.cfg.Model == "" {
		return nil, errors.NewConfigMissingError("llm.base_url, llm.api_key and llm.model are all required in remote mode")
	}

	ctx, cancel := context.WithTimeout(ctx, config.GetDuration(e.cfg.Timeout))
	defer cancel()

	payload := completionRequest{
		Model: e.cfg.Model,
		Messages: []chatMessage{
			{Role: prd.RoleSystem, Content: systemPrompt},
			{Role: prd.RoleUser, Content: buildUserContext(history, prior)},
		},
		Temperature: e.cfg.Temperature,
	}

	body, _ := json.Marshal(payload)
	url := strings.TrimRight(e.cfg.BaseURL, "/") + "/v1/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(body))
	if err != nil {
		return nil, errors.NewLLMTransportError(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+e.cfg.APIKey)

	start := time.Now()
	resp, err := e.client.Do(req)
	if err != nil {
		metrics.LLMCallDuration.WithLabelValues("error").Observe(time.Since(start).Seconds())
		return nil, errors.NewLLMTransportError(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.LLMCallDuration.WithLabelValues("error").Observe(time.Since(start).Seconds())
		return nil, errors.NewLLMTransportError(err)
	}
	metrics.LLMCallDuration.WithLabelValues(statusLabel(resp.StatusCode)).Observe(time.Since(start).Seconds())

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errors.NewLLMTransportError(fmt.Errorf("status %d: %s", resp.StatusCode, truncate(string(raw), 512)))
	}

	var envelope completionEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, errors.NewLLMFormatError(truncate(string(raw), 2048))
	}
	if len(envelope.Choices) == 0 || envelope.Choices[0].Message.Content == "" {
		return nil, errors.NewLLMFormatError(truncate(string(raw), 2048))
	}
	content := envelope.Choices[0].Message.Content

	if e.cfg.DebugRaw {
		e.logger.Info("raw LLM output", map[string]interface{}{
			"content": content,
		})
	}

	obj, err := extractJSONObject(content)
	if err != nil {
		return nil, errors.NewLLMParseError(err)
	}

	assistantText := ""
	if s, ok := obj["assistant_text"].(string); ok {
		assistantText = strings.TrimSpace(s)
	}

	questions := prd.SanitizeQuestions(coerceQuestions(obj["questions"]))

	candidate, _ := obj["prd"].(map[string]interface{})

	return &prd.CandidateUpdate{
		AssistantText: assistantText,
		Questions:     questions,
		PRD:           prd.Normalize(candidate),
	}, nil
}

// extractJSONObject parses the model content as one JSON object. When the
// content carries incidental leading or trailing prose, the span between the
// first '{' and the last '}' is parsed instead. Nested braces inside string
// values could in principle confuse this recovery; kept as-is because a
// stricter parser would reject responses tolerated today.
func extractJSONObject(text string) (map[string]interface{}, error) {
	s := strings.TrimSpace(text)

	var obj map[string]interface{}
	if strings.HasPrefix(s, "{") && strings.HasSuffix(s, "}") {
		if err := json.Unmarshal([]byte(s), &obj); err != nil {
			return nil, err
		}
		return obj, nil
	}

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end == -1 || end <= start {
		return nil, fmt.Errorf("no JSON object found in model output")
	}
	if err := json.Unmarshal([]byte(s[start:end+1]), &obj); err != nil {
		return nil, err
	}
	return obj, nil
}

func coerceQuestions(v interface{}) []string {
	items, ok := v.([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, fmt.Sprint(item))
	}
	return out
}

func statusLabel(code int) string {
	if code >= 200 && code <= 299 {
		return "ok"
	}
	return "error"
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
