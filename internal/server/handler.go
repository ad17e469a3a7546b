// internal/server/handler.go
package server

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"prd-builder/internal/common/errors"
	"prd-builder/internal/common/logger"
	"prd-builder/internal/common/metrics"
	"prd-builder/internal/common/validation"
	"prd-builder/internal/prd"
)

const maxRequestBody = 1 << 20 // 1 MiB

// handleChat runs one turn: validate, extract, merge, respond. All PRD state
// is request-scoped; the caller keeps its last-known-good document when this
// call fails.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		s.writeError(w, r, errors.NewRequestInvalidError("method not allowed"), http.StatusMethodNotAllowed)
		return
	}

	start := time.Now()
	requestID := uuid.NewString()
	log := s.logger.With(map[string]interface{}{
		"requestId": requestID,
		"path":      r.URL.Path,
	})

	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBody))
	if err != nil {
		s.finishChat(w, r, log, start, errors.NewRequestInvalidError("unreadable request body"), nil)
		return
	}

	if result := validation.ValidateChatRequest(body); !result.Valid {
		s.finishChat(w, r, log, start, errors.NewRequestInvalidError(result.Summary()), nil)
		return
	}

	var req ChatRequest
	if err := json.Unmarshal(body, &req); err != nil {
		s.finishChat(w, r, log, start, errors.NewRequestInvalidError("malformed JSON body"), nil)
		return
	}

	prior := prd.Normalize(req.PRD)

	ctx, span := s.obs.StartSpan(r.Context(), "chat.extract")
	update, err := s.extractor.Extract(ctx, req.Messages, prior)
	span.End()

	metrics.ExtractorCallsTotal.WithLabelValues(s.extractor.Mode(), outcome(err)).Inc()
	if err != nil {
		s.finishChat(w, r, log, start, err, nil)
		return
	}

	merged, questions, assistantText := prd.Merge(prior, update.PRD, update.AssistantText, update.Questions)
	if prd.Complete(merged) {
		metrics.PRDCompletedTotal.Inc()
	}

	s.finishChat(w, r, log, start, nil, &ChatResponse{
		AssistantText: assistantText,
		Questions:     questions,
		PRD:           merged,
	})
}

func (s *Server) finishChat(w http.ResponseWriter, r *http.Request, log logger.Logger, start time.Time, err error, resp *ChatResponse) {
	status := "ok"
	if err != nil {
		status = "error"
		stdErr := errors.Normalize(err)
		log.Error("chat request failed", map[string]interface{}{
			"errorCode": string(stdErr.Code),
			"error":     stdErr.Details,
		})
		s.writeError(w, r, stdErr, errors.HTTPStatus(stdErr))
	} else {
		log.Info("chat request completed", map[string]interface{}{
			"questions": len(resp.Questions),
			"complete":  prd.Complete(resp.PRD),
		})
		s.writeJSON(w, http.StatusOK, resp)
	}

	elapsed := time.Since(start)
	metrics.ChatRequestsTotal.WithLabelValues(status).Inc()
	metrics.ChatRequestDuration.WithLabelValues(status).Observe(elapsed.Seconds())
	s.obs.RecordChatProcessed(r.Context(), status)
	s.obs.RecordChatDuration(r.Context(), elapsed, status)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]interface{}{"ok": true})
}

func (s *Server) handleReady(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"status": "ready",
		"time":   time.Now().Format(time.RFC3339),
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.WithError(err).Error("response encoding failed", nil)
	}
}

func (s *Server) writeError(w http.ResponseWriter, _ *http.Request, err error, status int) {
	stdErr := errors.Normalize(err)
	s.writeJSON(w, status, ErrorResponse{
		Code:    string(stdErr.Code),
		Message: stdErr.Message,
		Details: stdErr.Details,
	})
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
