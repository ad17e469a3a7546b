// internal/prd/models.go
package prd

import (
	"fmt"
	"strings"
)

// Roles accepted in a conversation transcript.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// Message is one turn of the conversation, supplied wholesale by the caller.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// PRD is the authoritative six-field document. All fields are always present
// on the wire; empty values are "" or [].
type PRD struct {
	Problem       string   `json:"problem"`
	Users         []string `json:"users"`
	Goals         []string `json:"goals"`
	Metrics       []string `json:"metrics"`
	Requirements  []string `json:"requirements"`
	OpenQuestions []string `json:"open_questions"`
}

// CandidateUpdate is one turn's proposed update, produced by an Extractor and
// consumed immediately by Merge.
type CandidateUpdate struct {
	AssistantText string   `json:"assistant_text"`
	Questions     []string `json:"questions"`
	PRD           PRD      `json:"prd"`
}

// Normalize coerces an arbitrary JSON-decoded object into a full-shape PRD.
// Missing or mistyped fields become empty values; list entries that are not
// strings are stringified. It never fails.
func Normalize(raw map[string]interface{}) PRD {
	p := PRD{
		Users:         []string{},
		Goals:         []string{},
		Metrics:       []string{},
		Requirements:  []string{},
		OpenQuestions: []string{},
	}
	if raw == nil {
		return p
	}

	if v, ok := raw["problem"].(string); ok {
		p.Problem = v
	}
	p.Users = coerceList(raw["users"])
	p.Goals = coerceList(raw["goals"])
	p.Metrics = coerceList(raw["metrics"])
	p.Requirements = coerceList(raw["requirements"])
	p.OpenQuestions = coerceList(raw["open_questions"])
	return p
}

// Canonical returns a copy with nil slices replaced by empty ones so the
// document always serializes with all six keys as arrays, never null.
func (p PRD) Canonical() PRD {
	if p.Users == nil {
		p.Users = []string{}
	}
	if p.Goals == nil {
		p.Goals = []string{}
	}
	if p.Metrics == nil {
		p.Metrics = []string{}
	}
	if p.Requirements == nil {
		p.Requirements = []string{}
	}
	if p.OpenQuestions == nil {
		p.OpenQuestions = []string{}
	}
	return p
}

func coerceList(v interface{}) []string {
	items, ok := v.([]interface{})
	if !ok {
		return []string{}
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		switch s := item.(type) {
		case string:
			out = append(out, s)
		case nil:
			// dropped
		default:
			out = append(out, fmt.Sprint(s))
		}
	}
	return out
}

func hasItems(xs []string) bool {
	for _, x := range xs {
		if strings.TrimSpace(x) != "" {
			return true
		}
	}
	return false
}
