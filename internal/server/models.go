// internal/server/models.go
package server

import "prd-builder/internal/prd"

// ChatRequest is the inbound body of POST /api/chat. The caller supplies the
// whole transcript and its last-known PRD state each call; nothing is stored
// server-side.
type ChatRequest struct {
	Messages []prd.Message          `json:"messages"`
	PRD      map[string]interface{} `json:"prd,omitempty"`
}

// ChatResponse is the outbound body: the reply, at most a handful of
// follow-up questions, and the authoritative next PRD state.
type ChatResponse struct {
	AssistantText string   `json:"assistant_text"`
	Questions     []string `json:"questions"`
	PRD           prd.PRD  `json:"prd"`
}

// ErrorResponse mirrors the StandardError fields callers need.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}
