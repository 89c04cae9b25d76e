package aiservice

import (
	"context"
	"fmt"

	"github.com/hirecoach/interviewcore/internal/aiservice/promptbank"
	"github.com/hirecoach/interviewcore/internal/resilience"
	"github.com/hirecoach/interviewcore/pkg/provider/llm"
	"github.com/hirecoach/interviewcore/pkg/types"
)

// PlanRequest describes the interview plan to generate.
type PlanRequest struct {
	JobTitle     string
	Seniority    types.Seniority
	Language     string
	NumQuestions int
}

// planFunc produces a full interview question plan. The LLM-backed primary
// and the promptbank-backed fallback both satisfy this type, letting both
// live in the same [resilience.FallbackGroup].
type planFunc func(ctx context.Context, req PlanRequest) ([]types.Question, error)

// Planner generates the fixed set of scripted questions for a Session at
// creation time.
type Planner struct {
	group *resilience.FallbackGroup[planFunc]
}

// NewPlanner builds a Planner whose primary entry prompts provider for a
// question plan and whose fallback draws templated questions from bank.
func NewPlanner(provider llm.Provider, bank *promptbank.Bank, cfg resilience.FallbackConfig) *Planner {
	group := resilience.NewFallbackGroup[planFunc](llmPlan(provider), "llm", cfg)
	group.AddFallback("promptbank", bankPlan(bank))
	return &Planner{group: group}
}

// Plan generates req.NumQuestions questions, trying the LLM first and
// falling back to static templates if the LLM is unavailable or its output
// cannot be parsed.
func (p *Planner) Plan(ctx context.Context, req PlanRequest) ([]types.Question, error) {
	return resilience.ExecuteWithResult[planFunc, []types.Question](p.group, func(pf planFunc) ([]types.Question, error) {
		return pf(ctx, req)
	})
}

type plannerQuestionDTO struct {
	Kind       types.QuestionKind `json:"kind"`
	Competency string             `json:"competency"`
	Text       string             `json:"text"`
}

// llmPlan returns the LLM-backed planFunc primary.
func llmPlan(provider llm.Provider) planFunc {
	return func(ctx context.Context, req PlanRequest) ([]types.Question, error) {
		system := "You are an interview planner. Respond with a JSON array only, no prose, " +
			"of objects shaped like {\"kind\":\"technical|behavioral|situational|general\"," +
			"\"competency\":\"...\",\"text\":\"...\"}. Mix kinds roughly 40% technical, " +
			"30% behavioral, 20% situational, 10% general."
		user := fmt.Sprintf(
			"Generate exactly %d interview questions in %s for a %s %s candidate.",
			req.NumQuestions, req.Language, req.Seniority, req.JobTitle,
		)

		raw, err := completeJSON(ctx, provider, system, user)
		if err != nil {
			return nil, err
		}

		var dtos []plannerQuestionDTO
		if err := unmarshalJSON(raw, &dtos); err != nil {
			return nil, err
		}
		if len(dtos) != req.NumQuestions {
			return nil, fmt.Errorf("aiservice: llm plan returned %d questions, want %d", len(dtos), req.NumQuestions)
		}

		questions := make([]types.Question, len(dtos))
		for i, d := range dtos {
			questions[i] = types.Question{
				Index:      i,
				Kind:       d.Kind,
				Competency: d.Competency,
				Text:       d.Text,
			}
		}
		return questions, nil
	}
}

// bankPlan returns the promptbank-backed planFunc fallback.
func bankPlan(bank *promptbank.Bank) planFunc {
	return func(_ context.Context, req PlanRequest) ([]types.Question, error) {
		templates := bank.Plan(req.Seniority, req.NumQuestions)
		questions := make([]types.Question, len(templates))
		for i, tmpl := range templates {
			questions[i] = types.Question{
				Index:      i,
				Kind:       tmpl.Kind,
				Competency: tmpl.Competency,
				Text:       tmpl.Render(req.JobTitle),
			}
		}
		return questions, nil
	}
}
