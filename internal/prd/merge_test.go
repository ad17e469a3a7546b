// internal/prd/merge_test.go
package prd

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func completePRD() PRD {
	return PRD{
		Problem:      "Freelancers waste time invoicing",
		Users:        []string{"freelancers"},
		Goals:        []string{"save time"},
		Metrics:      []string{"hours saved"},
		Requirements: []string{"invoice templates"},
	}
}

func TestMerge_NoSilentDeletion(t *testing.T) {
	prior := completePRD()
	prior.OpenQuestions = []string{"pending?"}

	// Candidate is entirely empty: every prior field must survive.
	merged, _, _ := Merge(prior, PRD{}, "", nil)

	assert.Equal(t, prior.Problem, merged.Problem)
	assert.Equal(t, prior.Users, merged.Users)
	assert.Equal(t, prior.Goals, merged.Goals)
	assert.Equal(t, prior.Metrics, merged.Metrics)
	assert.Equal(t, prior.Requirements, merged.Requirements)
}

func TestMerge_ProblemReplacedOnlyWhenNonBlank(t *testing.T) {
	tests := []struct {
		name      string
		candidate string
		expected  string
	}{
		{"empty candidate keeps prior", "", "Freelancers waste time invoicing"},
		{"whitespace candidate keeps prior", "   \n", "Freelancers waste time invoicing"},
		{"non-empty candidate replaces prior", "Invoicing is slow", "Invoicing is slow"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prior := PRD{Problem: "Freelancers waste time invoicing"}
			merged, _, _ := Merge(prior, PRD{Problem: tt.candidate}, "", nil)
			assert.Equal(t, tt.expected, merged.Problem)
		})
	}
}

func TestMerge_ListReplacedOnlyWhenNonEmpty(t *testing.T) {
	prior := PRD{Goals: []string{"save time"}}

	merged, _, _ := Merge(prior, PRD{Goals: []string{}}, "", nil)
	assert.Equal(t, []string{"save time"}, merged.Goals)

	merged, _, _ = Merge(prior, PRD{Goals: []string{"reduce churn"}}, "", nil)
	assert.Equal(t, []string{"reduce churn"}, merged.Goals)
}

func TestMerge_IdempotentCompleteness(t *testing.T) {
	// Once complete, any candidate content still yields an empty question
	// protocol: no text, no questions, no open_questions.
	prior := completePRD()

	candidates := []PRD{
		{},
		{Problem: "new problem"},
		{OpenQuestions: []string{"should not surface"}},
	}

	for _, candidate := range candidates {
		merged, questions, text := Merge(prior, candidate, "let me ask...", []string{"one more thing?"})
		assert.True(t, Complete(merged))
		assert.Empty(t, questions)
		assert.Empty(t, text)
		assert.Empty(t, merged.OpenQuestions)
	}
}

func TestMerge_UnrelatedChitChatAfterComplete(t *testing.T) {
	prior := completePRD()

	merged, questions, text := Merge(prior, prior, "Nice weather today!", nil)

	assert.Equal(t, "", text)
	assert.Empty(t, questions)
	assert.Empty(t, merged.OpenQuestions)
	assert.Equal(t, prior.Goals, merged.Goals)
	assert.Equal(t, prior.Metrics, merged.Metrics)
	assert.Equal(t, prior.Requirements, merged.Requirements)
}

func TestMerge_OpenQuestionsMirrorsPendingQuestions(t *testing.T) {
	prior := PRD{Problem: "something"}
	questions := []string{"  What is the primary goal?  ", "", "How measure success?"}

	merged, finalQuestions, _ := Merge(prior, PRD{}, "asking", questions)

	require.False(t, Complete(merged))
	assert.Equal(t, []string{"What is the primary goal?", "How measure success?"}, finalQuestions)
	assert.Equal(t, finalQuestions, merged.OpenQuestions)
}

func TestMerge_OpenQuestionsFullyTurnLocal(t *testing.T) {
	// A stale open_questions list from a prior turn is overwritten, not merged.
	prior := PRD{OpenQuestions: []string{"old question?"}}

	merged, finalQuestions, _ := Merge(prior, PRD{}, "", []string{"new question?"})

	assert.Equal(t, []string{"new question?"}, merged.OpenQuestions)
	assert.Equal(t, finalQuestions, merged.OpenQuestions)
}

func TestSanitizeQuestions_Cap(t *testing.T) {
	questions := []string{"a?", "b?", "c?", "d?", "e?"}
	assert.Len(t, SanitizeQuestions(questions), MaxQuestions)

	assert.Empty(t, SanitizeQuestions(nil))
	assert.Empty(t, SanitizeQuestions([]string{"", "   "}))
}

func TestNormalize_ShapeTotality(t *testing.T) {
	tests := []struct {
		name string
		raw  map[string]interface{}
	}{
		{"nil map", nil},
		{"empty object", map[string]interface{}{}},
		{"missing subset of keys", map[string]interface{}{"problem": "p", "goals": []interface{}{"g"}}},
		{"mistyped fields", map[string]interface{}{
			"problem": 42,
			"users":   "not a list",
			"goals":   map[string]interface{}{"x": "y"},
			"metrics": []interface{}{"m1", 7, nil},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Normalize(tt.raw)

			data, err := json.Marshal(p)
			require.NoError(t, err)

			var out map[string]interface{}
			require.NoError(t, json.Unmarshal(data, &out))

			for _, key := range []string{"problem", "users", "goals", "metrics", "requirements", "open_questions"} {
				assert.Contains(t, out, key)
				assert.NotNil(t, out[key], key)
			}
		})
	}
}

func TestNormalize_CoercesListEntries(t *testing.T) {
	p := Normalize(map[string]interface{}{
		"metrics": []interface{}{"hours saved", float64(3), nil},
	})
	assert.Equal(t, []string{"hours saved", "3"}, p.Metrics)
}

func TestCanonical_NeverMarshalsNull(t *testing.T) {
	data, err := json.Marshal(PRD{}.Canonical())
	require.NoError(t, err)
	assert.NotContains(t, string(data), "null")
}
