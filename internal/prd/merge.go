// internal/prd/merge.go
package prd

import "strings"

// MaxQuestions caps the question list per turn. The remote contract asks for
// at most one; the rule extractor can legitimately produce up to three.
const MaxQuestions = 3

// Complete reports whether the document has reached the terminal state of the
// question protocol: goals, metrics and requirements all carry at least one
// non-blank entry.
func Complete(p PRD) bool {
	return hasItems(p.Goals) && hasItems(p.Metrics) && hasItems(p.Requirements)
}

// Merge combines the prior document with a candidate update and enforces the
// completion protocol. Field rule: a candidate value replaces the prior one
// only when it is non-empty, so nothing is ever silently cleared. Once the
// merged document is complete, the pending question is discarded and the
// assistant text suppressed. While incomplete, open_questions mirrors exactly
// the sanitized question list of this turn.
//
// Merge is total: it never fails, whatever shape the candidate arrived in.
func Merge(prior, candidate PRD, assistantText string, questions []string) (PRD, []string, string) {
	merged := prior.Canonical()
	candidate = candidate.Canonical()

	if strings.TrimSpace(candidate.Problem) != "" {
		merged.Problem = candidate.Problem
	}
	if len(candidate.Users) > 0 {
		merged.Users = candidate.Users
	}
	if len(candidate.Goals) > 0 {
		merged.Goals = candidate.Goals
	}
	if len(candidate.Metrics) > 0 {
		merged.Metrics = candidate.Metrics
	}
	if len(candidate.Requirements) > 0 {
		merged.Requirements = candidate.Requirements
	}
	if len(candidate.OpenQuestions) > 0 {
		merged.OpenQuestions = candidate.OpenQuestions
	}

	finalQuestions := SanitizeQuestions(questions)

	if Complete(merged) {
		merged.OpenQuestions = []string{}
		return merged, []string{}, ""
	}

	merged.OpenQuestions = append([]string{}, finalQuestions...)
	return merged, finalQuestions, assistantText
}

// SanitizeQuestions trims entries, drops blanks and truncates to MaxQuestions.
func SanitizeQuestions(questions []string) []string {
	out := make([]string, 0, len(questions))
	for _, q := range questions {
		q = strings.TrimSpace(q)
		if q == "" {
			continue
		}
		out = append(out, q)
		if len(out) == MaxQuestions {
			break
		}
	}
	return out
}
