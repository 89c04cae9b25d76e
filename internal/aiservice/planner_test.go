package aiservice_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/hirecoach/interviewcore/internal/aiservice"
	"github.com/hirecoach/interviewcore/internal/aiservice/promptbank"
	"github.com/hirecoach/interviewcore/internal/resilience"
	"github.com/hirecoach/interviewcore/pkg/provider/llm"
	"github.com/hirecoach/interviewcore/pkg/provider/llm/mock"
	"github.com/hirecoach/interviewcore/pkg/types"
)

const testBankYAML = `
questions:
  mid:
    technical:
      - competency: "fundamentals"
        text: "As a {job_title}, explain your approach to testing."
    behavioral:
      - competency: "collaboration"
        text: "Tell me about teamwork as a {job_title}."
    situational:
      - competency: "prioritization"
        text: "How would you prioritize work as a {job_title}?"
    general:
      - competency: "motivation"
        text: "Why do you want to be a {job_title}?"
coaching:
  generic: "Add a concrete example."
`

func testFallbackConfig() resilience.FallbackConfig {
	return resilience.FallbackConfig{
		CircuitBreaker: resilience.CircuitBreakerConfig{
			MaxFailures: 1,
		},
	}
}

func TestPlanner_LLMPrimarySuccess(t *testing.T) {
	bank, err := promptbank.LoadFromReader(strings.NewReader(testBankYAML))
	if err != nil {
		t.Fatalf("LoadFromReader: %v", err)
	}
	provider := &mock.Provider{CompleteResponse: &llm.CompletionResponse{Content: `[
		{"kind":"technical","competency":"fundamentals","text":"Q1"},
		{"kind":"behavioral","competency":"collaboration","text":"Q2"}
	]`}}

	planner := aiservice.NewPlanner(provider, bank, testFallbackConfig())
	questions, err := planner.Plan(context.Background(), aiservice.PlanRequest{
		JobTitle: "Backend Engineer", Seniority: types.SeniorityMid, Language: "en", NumQuestions: 2,
	})
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if len(questions) != 2 {
		t.Fatalf("len(questions) = %d, want 2", len(questions))
	}
	if questions[0].Text != "Q1" || questions[1].Text != "Q2" {
		t.Errorf("unexpected question texts: %+v", questions)
	}
}

func TestPlanner_FallsBackToPromptbank(t *testing.T) {
	bank, err := promptbank.LoadFromReader(strings.NewReader(testBankYAML))
	if err != nil {
		t.Fatalf("LoadFromReader: %v", err)
	}
	provider := &mock.Provider{CompleteErr: errors.New("provider unreachable")}

	planner := aiservice.NewPlanner(provider, bank, testFallbackConfig())
	questions, err := planner.Plan(context.Background(), aiservice.PlanRequest{
		JobTitle: "Backend Engineer", Seniority: types.SeniorityMid, Language: "en", NumQuestions: 4,
	})
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if len(questions) != 4 {
		t.Fatalf("len(questions) = %d, want 4", len(questions))
	}
	for _, q := range questions {
		if !strings.Contains(q.Text, "Backend Engineer") {
			t.Errorf("question text %q missing job title substitution", q.Text)
		}
	}
}

func TestPlanner_FallsBackOnMalformedJSON(t *testing.T) {
	bank, err := promptbank.LoadFromReader(strings.NewReader(testBankYAML))
	if err != nil {
		t.Fatalf("LoadFromReader: %v", err)
	}
	provider := &mock.Provider{CompleteResponse: &llm.CompletionResponse{Content: "not json"}}

	planner := aiservice.NewPlanner(provider, bank, testFallbackConfig())
	questions, err := planner.Plan(context.Background(), aiservice.PlanRequest{
		JobTitle: "QA Engineer", Seniority: types.SeniorityMid, Language: "en", NumQuestions: 3,
	})
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if len(questions) != 3 {
		t.Fatalf("len(questions) = %d, want 3", len(questions))
	}
}
