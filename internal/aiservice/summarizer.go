package aiservice

import (
	"context"
	"fmt"

	"github.com/hirecoach/interviewcore/internal/resilience"
	"github.com/hirecoach/interviewcore/pkg/provider/llm"
	"github.com/hirecoach/interviewcore/pkg/types"
)

// dimensionThreshold separates a strength from a weakness in the fallback
// summarizer: dimensions scoring at or above this value are reported as
// strengths, those below as weaknesses.
const dimensionThreshold = 70

// neutralScore is the overall score the fallback summarizer reports when no
// scored answers are available to average.
const neutralScore = 70

// SessionSummaryRequest carries a scripted session's answered questions for
// summarization.
type SessionSummaryRequest struct {
	JobTitle  string
	Seniority types.Seniority
	Questions []types.Question
	Answers   []types.Answer
	Partial   bool
}

// TranscriptSummaryRequest carries a conversational session's raw transcript
// for summarization.
type TranscriptSummaryRequest struct {
	JobTitle        string
	Seniority       types.Seniority
	Transcript      []types.TranscriptEntry
	QuestionsAsked  int
	TargetQuestions int
	Partial         bool
}

// summarizeSessionFunc and summarizeTranscriptFunc are the two Summarizer
// entry points; each gets its own FallbackGroup since their request shapes
// differ.
type summarizeSessionFunc func(ctx context.Context, req SessionSummaryRequest) (*types.Report, error)
type summarizeTranscriptFunc func(ctx context.Context, req TranscriptSummaryRequest) (*types.Report, error)

// Summarizer produces the final Report for both scripted (answer-based) and
// conversational (transcript-based) sessions.
type Summarizer struct {
	sessionGroup    *resilience.FallbackGroup[summarizeSessionFunc]
	transcriptGroup *resilience.FallbackGroup[summarizeTranscriptFunc]
}

// NewSummarizer builds a Summarizer backed by provider, falling back to a
// dependency-free heuristic on failure.
func NewSummarizer(provider llm.Provider, cfg resilience.FallbackConfig) *Summarizer {
	sessionGroup := resilience.NewFallbackGroup[summarizeSessionFunc](llmSummarizeSession(provider), "llm", cfg)
	sessionGroup.AddFallback("heuristic", heuristicSummarizeSession)

	transcriptGroup := resilience.NewFallbackGroup[summarizeTranscriptFunc](llmSummarizeTranscript(provider), "llm", cfg)
	transcriptGroup.AddFallback("heuristic", heuristicSummarizeTranscript)

	return &Summarizer{sessionGroup: sessionGroup, transcriptGroup: transcriptGroup}
}

// SummarizeSession produces a Report for a scripted session from its
// Questions and Answers.
func (s *Summarizer) SummarizeSession(ctx context.Context, req SessionSummaryRequest) (*types.Report, error) {
	return resilience.ExecuteWithResult[summarizeSessionFunc, *types.Report](s.sessionGroup, func(f summarizeSessionFunc) (*types.Report, error) {
		return f(ctx, req)
	})
}

// SummarizeTranscript produces a Report for a conversational session from
// its raw transcript.
func (s *Summarizer) SummarizeTranscript(ctx context.Context, req TranscriptSummaryRequest) (*types.Report, error) {
	return resilience.ExecuteWithResult[summarizeTranscriptFunc, *types.Report](s.transcriptGroup, func(f summarizeTranscriptFunc) (*types.Report, error) {
		return f(ctx, req)
	})
}

type reportDTO struct {
	OverallScore   int      `json:"overall_score"`
	Strengths      []string `json:"strengths"`
	Weaknesses     []string `json:"weaknesses"`
	ActionPlan     []string `json:"action_plan"`
	SuggestedRoles []string `json:"suggested_roles"`
}

func (d reportDTO) toReport(partial bool) *types.Report {
	note := ""
	if partial {
		note = "Report generated from a partially completed interview."
	}
	return &types.Report{
		OverallScore:   clampScore(d.OverallScore),
		Strengths:      d.Strengths,
		Weaknesses:     d.Weaknesses,
		ActionPlan:     d.ActionPlan,
		SuggestedRoles: d.SuggestedRoles,
		CompletionNote: note,
		GeneratedBy:    types.ReportSourceLLM,
	}
}

// answerFor returns the Answer for questionID, or nil if none exists.
func answerFor(answers []types.Answer, questionID string) *types.Answer {
	for i := range answers {
		if answers[i].QuestionID == questionID {
			return &answers[i]
		}
	}
	return nil
}

// llmSummarizeSession returns the LLM-backed summarizeSessionFunc primary.
func llmSummarizeSession(provider llm.Provider) summarizeSessionFunc {
	return func(ctx context.Context, req SessionSummaryRequest) (*types.Report, error) {
		system := "You are an interview coach producing a final candidate report. Respond " +
			"with JSON only, shaped like {\"overall_score\":0-100,\"strengths\":[...]," +
			"\"weaknesses\":[...],\"action_plan\":[...],\"suggested_roles\":[...]}."

		user := fmt.Sprintf("Candidate interviewed for %s (%s level).\n\n", req.JobTitle, req.Seniority)
		for _, q := range req.Questions {
			user += fmt.Sprintf("Question (%s): %s\n", q.Kind, q.Text)
			if a := answerFor(req.Answers, q.ID); a != nil {
				user += fmt.Sprintf("Answer (overall %d): %s\n\n", a.Overall, a.Text)
			} else {
				user += "Answer: (not answered)\n\n"
			}
		}
		if req.Partial {
			user += "Note: this interview ended before all questions were answered."
		}

		raw, err := completeJSON(ctx, provider, system, user)
		if err != nil {
			return nil, err
		}
		var dto reportDTO
		if err := unmarshalJSON(raw, &dto); err != nil {
			return nil, err
		}
		return dto.toReport(req.Partial), nil
	}
}

// llmSummarizeTranscript returns the LLM-backed summarizeTranscriptFunc
// primary.
func llmSummarizeTranscript(provider llm.Provider) summarizeTranscriptFunc {
	return func(ctx context.Context, req TranscriptSummaryRequest) (*types.Report, error) {
		system := "You are an interview coach producing a final candidate report from a " +
			"raw interview transcript. Respond with JSON only, shaped like " +
			"{\"overall_score\":0-100,\"strengths\":[...],\"weaknesses\":[...]," +
			"\"action_plan\":[...],\"suggested_roles\":[...]}."

		user := fmt.Sprintf("Candidate interviewed for %s (%s level). Asked %d of %d questions.\n\n",
			req.JobTitle, req.Seniority, req.QuestionsAsked, req.TargetQuestions)
		for _, e := range req.Transcript {
			user += fmt.Sprintf("[%s] %s\n", e.Role, e.Text)
		}
		if req.Partial {
			user += "\nNote: this interview ended before completion."
		}

		raw, err := completeJSON(ctx, provider, system, user)
		if err != nil {
			return nil, err
		}
		var dto reportDTO
		if err := unmarshalJSON(raw, &dto); err != nil {
			return nil, err
		}
		return dto.toReport(req.Partial), nil
	}
}

// heuristicSummarizeSession computes the mean of available per-answer
// overall scores (or neutralScore if none), derives strengths/weaknesses
// from a per-dimension threshold, and attaches a fixed action-plan template.
func heuristicSummarizeSession(_ context.Context, req SessionSummaryRequest) (*types.Report, error) {
	dims := map[string][]int{}
	sum, count := 0, 0
	for _, a := range req.Answers {
		sum += a.Overall
		count++
		dims["Relevance"] = append(dims["Relevance"], a.Relevance)
		dims["Clarity"] = append(dims["Clarity"], a.Clarity)
		dims["Structure"] = append(dims["Structure"], a.Structure)
		dims["Impact"] = append(dims["Impact"], a.Impact)
	}

	overall := neutralScore
	if count > 0 {
		overall = sum / count
	}

	strengths, weaknesses := bucketDimensions(dims)
	return &types.Report{
		OverallScore:   clampScore(overall),
		Strengths:      strengths,
		Weaknesses:     weaknesses,
		ActionPlan:     fixedActionPlan(),
		CompletionNote: partialNote(req.Partial, count == 0),
		GeneratedBy:    types.ReportSourceFallback,
	}, nil
}

// heuristicSummarizeTranscript builds a Report when no per-answer scores
// exist at all (the conversational-mode path never has Answer scores to
// average). The overall score is always neutralScore; the only signals used
// are whether QuestionsAsked fell short of a positive TargetQuestions and
// whether the transcript is empty.
func heuristicSummarizeTranscript(_ context.Context, req TranscriptSummaryRequest) (*types.Report, error) {
	overall := neutralScore
	empty := len(req.Transcript) == 0

	strengths := []string{}
	weaknesses := []string{}
	if req.TargetQuestions > 0 && req.QuestionsAsked < req.TargetQuestions {
		weaknesses = append(weaknesses, "interview ended before reaching the target number of questions")
	} else if !empty {
		strengths = append(strengths, "completed the full planned interview")
	}

	return &types.Report{
		OverallScore:   clampScore(overall),
		Strengths:      strengths,
		Weaknesses:     weaknesses,
		ActionPlan:     fixedActionPlan(),
		CompletionNote: partialNote(req.Partial, empty),
		GeneratedBy:    types.ReportSourceFallback,
	}, nil
}

// bucketDimensions splits per-dimension score series into strengths
// (mean >= dimensionThreshold) and weaknesses (mean < dimensionThreshold).
func bucketDimensions(dims map[string][]int) (strengths, weaknesses []string) {
	// Fixed iteration order keeps the report's dimension listing stable
	// across runs for the same input.
	order := []string{"Relevance", "Clarity", "Structure", "Impact"}
	for _, name := range order {
		scores := dims[name]
		if len(scores) == 0 {
			continue
		}
		sum := 0
		for _, s := range scores {
			sum += s
		}
		mean := sum / len(scores)
		if mean >= dimensionThreshold {
			strengths = append(strengths, name)
		} else {
			weaknesses = append(weaknesses, name)
		}
	}
	return strengths, weaknesses
}

// fixedActionPlan is the small fixed action-plan template the fallback
// summarizer always attaches.
func fixedActionPlan() []string {
	return []string{
		"Practice structuring answers with a clear example, the action taken, and the outcome achieved.",
		"Review the weaker dimensions above and prepare one concrete story for each.",
	}
}

// partialNote returns the fallback's completion_note for the given
// partiality and no-data conditions.
func partialNote(partial, noData bool) string {
	switch {
	case noData:
		return "No interview data was available; this is a placeholder report."
	case partial:
		return "Report generated from a partially completed interview using the fallback summarizer."
	default:
		return ""
	}
}
