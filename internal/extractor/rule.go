// internal/extractor/rule.go
package extractor

import (
	"context"
	"strings"

	"prd-builder/internal/common/config"
	"prd-builder/internal/common/logger"
	"prd-builder/internal/prd"
)

// Canned clarification questions, asked in fixed priority order for whichever
// of users/goals/metrics is still empty in the prior document.
const (
	questionUsers   = "Who is the target user for this product?"
	questionGoals   = "What is the primary goal or outcome you want?"
	questionMetrics = "How will you measure success (1-3 metrics)?"

	ackText      = "Thanks. I updated the PRD based on your latest input."
	questionLead = "Got it. I can start drafting a PRD. Answer these questions so I can refine it:"
)

// Labels recognized by the segment scan. "metrics:" is only consulted when
// "success metrics:" is absent.
var segmentLabels = []string{"goal:", "success metrics:", "metrics:", "target users:"}

// RuleExtractor is the deterministic offline variant. No network, no state.
type RuleExtractor struct {
	logger logger.Logger
}

func NewRuleExtractor(log logger.Logger) *RuleExtractor {
	return &RuleExtractor{
		logger: log.With(map[string]interface{}{
			"extractor": config.ModeRule,
		}),
	}
}

func (e *RuleExtractor) Mode() string { return config.ModeRule }

func (e *RuleExtractor) Extract(_ context.Context, history []prd.Message, prior prd.PRD) (*prd.CandidateUpdate, error) {
	lastUser := lastUserText(history)
	candidate := prior.Canonical()

	if strings.TrimSpace(candidate.Problem) == "" && lastUser != "" {
		candidate.Problem = strings.TrimSpace(lastUser)
	}

	usersSeg := grabSegment(lastUser, "target users:")
	goalSeg := grabSegment(lastUser, "goal:")
	metricsSeg := grabSegment(lastUser, "success metrics:")
	if metricsSeg == "" {
		metricsSeg = grabSegment(lastUser, "metrics:")
	}

	if usersSeg != "" && len(candidate.Users) == 0 {
		candidate.Users = []string{usersSeg}
	}
	if goalSeg != "" && len(candidate.Goals) == 0 {
		candidate.Goals = []string{goalSeg}
	}
	if metricsSeg != "" && len(candidate.Metrics) == 0 {
		parts := splitMetrics(metricsSeg)
		if len(parts) > 0 {
			candidate.Metrics = parts
		} else {
			candidate.Metrics = []string{metricsSeg}
		}
	}

	// Questions are chosen against the original prior document, not the
	// just-updated candidate, so a turn that answers a question still gets
	// the next one surfaced.
	questions := pendingQuestions(prior)

	assistantText := ackText
	if len(questions) > 0 {
		lines := make([]string, 0, len(questions)+1)
		lines = append(lines, questionLead)
		for _, q := range questions {
			lines = append(lines, "- "+q)
		}
		assistantText = strings.Join(lines, "\n")
	}

	e.logger.Debug("rule extraction done", map[string]interface{}{
		"questions": len(questions),
	})

	return &prd.CandidateUpdate{
		AssistantText: assistantText,
		Questions:     questions,
		PRD:           candidate,
	}, nil
}

func pendingQuestions(prior prd.PRD) []string {
	questions := []string{}
	if len(prior.Users) == 0 {
		questions = append(questions, questionUsers)
	}
	if len(prior.Goals) == 0 {
		questions = append(questions, questionGoals)
	}
	if len(prior.Metrics) == 0 {
		questions = append(questions, questionMetrics)
	}
	if len(questions) > prd.MaxQuestions {
		questions = questions[:prd.MaxQuestions]
	}
	return questions
}

func lastUserText(history []prd.Message) string {
	for i := len(history) - 1; i >= 0; i-- {
		if strings.ToLower(history[i].Role) == prd.RoleUser {
			return history[i].Content
		}
	}
	return ""
}

// grabSegment extracts the text following a label up to the next recognized
// label or end of string. Matching is case-insensitive; surrounding
// whitespace and trailing punctuation are stripped.
func grabSegment(text, label string) string {
	lower := strings.ToLower(text)
	idx := strings.Index(lower, strings.ToLower(label))
	if idx == -1 {
		return ""
	}
	start := idx + len(label)

	end := len(text)
	for _, other := range segmentLabels {
		if j := strings.Index(lower[start:], other); j != -1 && start+j < end {
			end = start + j
		}
	}
	return strings.Trim(text[start:end], " .;\n\t")
}

func splitMetrics(segment string) []string {
	parts := []string{}
	for _, p := range strings.Split(segment, ",") {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}
