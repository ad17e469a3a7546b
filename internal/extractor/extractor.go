// Package extractor produces one turn's CandidateUpdate from the conversation
// and the prior PRD. Two interchangeable variants exist: a deterministic
// rule-based one for offline operation and tests, and a remote one delegating
// to an OpenAI-compatible chat-completions endpoint. The merge engine only
// ever sees the Extractor interface.
package extractor

import (
	"context"

	"prd-builder/internal/common/config"
	"prd-builder/internal/common/logger"
	"prd-builder/internal/prd"
)

// Extractor turns conversation history plus the prior document into a
// candidate update for this turn.
type Extractor interface {
	Extract(ctx context.Context, history []prd.Message, prior prd.PRD) (*prd.CandidateUpdate, error)
	Mode() string
}

// New selects the variant from the configured operating mode. The mode is
// read once here at construction, never from the environment inside core
// logic. Remote-mode credential checks happen at call time so a rule-mode
// deployment needs no LLM settings at all.
func New(cfg config.LLMConfig, log logger.Logger) Extractor {
	if cfg.Mode == config.ModeRemote {
		return NewRemoteExtractor(cfg, log)
	}
	return NewRuleExtractor(log)
}
