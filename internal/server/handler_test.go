// internal/server/handler_test.go
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prd-builder/internal/common/config"
	"prd-builder/internal/common/errors"
	"prd-builder/internal/common/logger"
	"prd-builder/internal/common/observability"
	"prd-builder/internal/extractor"
	"prd-builder/internal/prd"
)

// stubExtractor returns a fixed update or error, whatever the input.
type stubExtractor struct {
	update *prd.CandidateUpdate
	err    error
}

func (s *stubExtractor) Extract(context.Context, []prd.Message, prd.PRD) (*prd.CandidateUpdate, error) {
	return s.update, s.err
}

func (s *stubExtractor) Mode() string { return "stub" }

func newTestServer(t *testing.T, ext extractor.Extractor) *Server {
	t.Helper()
	cfg := config.ServerConfig{
		Port:           3001,
		AllowedOrigins: []string{"http://localhost:5173"},
		ReadTimeout:    5000,
		WriteTimeout:   5000,
	}
	return New(cfg, ext, &observability.Observability{}, logger.NewTestLogger(t))
}

func postChat(t *testing.T, s *Server, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/chat", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeChat(t *testing.T, rec *httptest.ResponseRecorder) ChatResponse {
	t.Helper()
	var resp ChatResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestChat_RuleModeEndToEnd(t *testing.T) {
	s := newTestServer(t, extractor.NewRuleExtractor(logger.NewTestLogger(t)))

	body := `{"messages":[{"role":"user","content":"I want an app for freelancers. Goal: save time. Success metrics: hours saved, retention"}]}`
	rec := postChat(t, s, body)

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeChat(t, rec)

	assert.Equal(t, []string{"save time"}, resp.PRD.Goals)
	assert.Equal(t, []string{"hours saved", "retention"}, resp.PRD.Metrics)
	assert.Empty(t, resp.PRD.Users)
	// Still incomplete: requirements missing, so questions come back and
	// open_questions mirrors them exactly.
	assert.NotEmpty(t, resp.Questions)
	assert.LessOrEqual(t, len(resp.Questions), 3)
	assert.Equal(t, resp.Questions, resp.PRD.OpenQuestions)
}

func TestChat_CompletePRDSilencesQuestions(t *testing.T) {
	ext := &stubExtractor{update: &prd.CandidateUpdate{
		AssistantText: "chit chat reply",
		Questions:     []string{"ignored once complete?"},
		PRD:           prd.PRD{},
	}}
	s := newTestServer(t, ext)

	body := `{
		"messages":[{"role":"user","content":"by the way, how are you?"}],
		"prd":{"problem":"p","goals":["g"],"metrics":["m"],"requirements":["r"]}
	}`
	rec := postChat(t, s, body)

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeChat(t, rec)

	assert.Equal(t, "", resp.AssistantText)
	assert.Empty(t, resp.Questions)
	assert.Empty(t, resp.PRD.OpenQuestions)
	assert.Equal(t, []string{"g"}, resp.PRD.Goals)
	assert.Equal(t, []string{"m"}, resp.PRD.Metrics)
	assert.Equal(t, []string{"r"}, resp.PRD.Requirements)
}

func TestChat_PriorProblemSurvivesEmptyCandidate(t *testing.T) {
	ext := &stubExtractor{update: &prd.CandidateUpdate{
		AssistantText: "noted",
		PRD:           prd.PRD{Problem: ""},
	}}
	s := newTestServer(t, ext)

	body := `{"messages":[{"role":"user","content":"more detail"}],"prd":{"problem":"Freelancers waste time invoicing"}}`
	rec := postChat(t, s, body)

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeChat(t, rec)
	assert.Equal(t, "Freelancers waste time invoicing", resp.PRD.Problem)
}

func TestChat_ResponseAlwaysFullShape(t *testing.T) {
	ext := &stubExtractor{update: &prd.CandidateUpdate{PRD: prd.PRD{}}}
	s := newTestServer(t, ext)

	rec := postChat(t, s, `{"messages":[{"role":"user","content":"hi"}]}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	prdObj, ok := out["prd"].(map[string]interface{})
	require.True(t, ok)
	for _, key := range []string{"problem", "users", "goals", "metrics", "requirements", "open_questions"} {
		assert.Contains(t, prdObj, key)
		assert.NotNil(t, prdObj[key], key)
	}
	assert.NotNil(t, out["questions"])
}

func TestChat_ValidationRejectsBeforeCore(t *testing.T) {
	// The extractor must never run for an invalid request.
	ext := &stubExtractor{err: errors.NewLLMTransportError(assert.AnError)}
	s := newTestServer(t, ext)

	tests := []struct {
		name string
		body string
	}{
		{"empty body", ``},
		{"empty messages", `{"messages":[]}`},
		{"blank content", `{"messages":[{"role":"user","content":""}]}`},
		{"bad role", `{"messages":[{"role":"robot","content":"hi"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postChat(t, s, tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)

			var errResp ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errResp))
			assert.Equal(t, string(errors.ErrCodeRequestInvalid), errResp.Code)
		})
	}
}

func TestChat_ExtractorErrorsSurfaceAsServerFault(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   errors.ErrorCode
	}{
		{"transport", errors.NewLLMTransportError(assert.AnError), http.StatusBadGateway, errors.ErrCodeLLMTransportFailed},
		{"format", errors.NewLLMFormatError("raw"), http.StatusBadGateway, errors.ErrCodeLLMFormatInvalid},
		{"parse", errors.NewLLMParseError(assert.AnError), http.StatusBadGateway, errors.ErrCodeLLMParseFailed},
		{"config", errors.NewConfigMissingError("nope"), http.StatusInternalServerError, errors.ErrCodeConfigMissing},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t, &stubExtractor{err: tt.err})
			rec := postChat(t, s, `{"messages":[{"role":"user","content":"hi"}]}`)

			assert.Equal(t, tt.wantStatus, rec.Code)
			var errResp ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errResp))
			assert.Equal(t, string(tt.wantCode), errResp.Code)
		})
	}
}

func TestChat_MethodNotAllowed(t *testing.T) {
	s := newTestServer(t, &stubExtractor{})

	req := httptest.NewRequest(http.MethodGet, "/api/chat", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, http.MethodPost, rec.Header().Get("Allow"))
}

func TestHealthAndReady(t *testing.T) {
	s := newTestServer(t, &stubExtractor{})

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true}`, rec.Body.String())

	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCORS(t *testing.T) {
	s := newTestServer(t, &stubExtractor{})

	t.Run("allowed origin gets headers", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/api/chat", nil)
		req.Header.Set("Origin", "http://localhost:5173")
		rec := httptest.NewRecorder()
		s.Handler().ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
	})

	t.Run("unknown origin gets none", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/api/chat", nil)
		req.Header.Set("Origin", "http://evil.example")
		rec := httptest.NewRecorder()
		s.Handler().ServeHTTP(rec, req)

		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})
}
