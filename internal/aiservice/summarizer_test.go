package aiservice_test

import (
	"context"
	"errors"
	"testing"

	"github.com/hirecoach/interviewcore/internal/aiservice"
	"github.com/hirecoach/interviewcore/pkg/provider/llm"
	"github.com/hirecoach/interviewcore/pkg/provider/llm/mock"
	"github.com/hirecoach/interviewcore/pkg/types"
)

func TestSummarizer_SummarizeSession_LLMPrimary(t *testing.T) {
	provider := &mock.Provider{CompleteResponse: &llm.CompletionResponse{
		Content: `{"overall_score":77,"strengths":["clarity"],"weaknesses":["impact"],
			"action_plan":["practice STAR format"],"suggested_roles":["Backend Engineer"]}`,
	}}
	summarizer := aiservice.NewSummarizer(provider, testFallbackConfig())

	report, err := summarizer.SummarizeSession(context.Background(), aiservice.SessionSummaryRequest{
		JobTitle:  "Backend Engineer",
		Seniority: types.SeniorityMid,
		Questions: []types.Question{{ID: "q1", Text: "Q1", Kind: types.KindTechnical}},
		Answers:   []types.Answer{{QuestionID: "q1", Overall: 80, Text: "answer"}},
	})
	if err != nil {
		t.Fatalf("SummarizeSession: %v", err)
	}
	if report.OverallScore != 77 || report.GeneratedBy != types.ReportSourceLLM {
		t.Errorf("unexpected report: %+v", report)
	}
}

func TestSummarizer_SummarizeSession_FallbackMeanOfScores(t *testing.T) {
	provider := &mock.Provider{CompleteErr: errors.New("unavailable")}
	summarizer := aiservice.NewSummarizer(provider, testFallbackConfig())

	report, err := summarizer.SummarizeSession(context.Background(), aiservice.SessionSummaryRequest{
		JobTitle:  "Backend Engineer",
		Seniority: types.SeniorityMid,
		Questions: []types.Question{{ID: "q1"}, {ID: "q2"}},
		Answers: []types.Answer{
			{QuestionID: "q1", Overall: 80, Relevance: 90, Clarity: 85, Structure: 80, Impact: 75},
			{QuestionID: "q2", Overall: 60, Relevance: 50, Clarity: 55, Structure: 60, Impact: 65},
		},
	})
	if err != nil {
		t.Fatalf("SummarizeSession: %v", err)
	}
	if report.OverallScore != 70 {
		t.Errorf("OverallScore = %d, want mean 70", report.OverallScore)
	}
	if report.GeneratedBy != types.ReportSourceFallback {
		t.Errorf("GeneratedBy = %q, want fallback", report.GeneratedBy)
	}
}

func TestSummarizer_SummarizeSession_FallbackNeutralWhenNoAnswers(t *testing.T) {
	provider := &mock.Provider{CompleteErr: errors.New("unavailable")}
	summarizer := aiservice.NewSummarizer(provider, testFallbackConfig())

	report, err := summarizer.SummarizeSession(context.Background(), aiservice.SessionSummaryRequest{
		JobTitle: "Backend Engineer", Seniority: types.SeniorityMid,
	})
	if err != nil {
		t.Fatalf("SummarizeSession: %v", err)
	}
	if report.OverallScore != 70 {
		t.Errorf("OverallScore = %d, want neutral 70", report.OverallScore)
	}
	if report.CompletionNote == "" {
		t.Error("expected non-empty completion note for no-data report")
	}
}

func TestSummarizer_SummarizeTranscript_FallbackPartial(t *testing.T) {
	provider := &mock.Provider{CompleteErr: errors.New("unavailable")}
	summarizer := aiservice.NewSummarizer(provider, testFallbackConfig())

	report, err := summarizer.SummarizeTranscript(context.Background(), aiservice.TranscriptSummaryRequest{
		JobTitle:        "Backend Engineer",
		Seniority:       types.SeniorityMid,
		Transcript:      []types.TranscriptEntry{{Role: types.RoleUser, Text: "hello"}},
		QuestionsAsked:  2,
		TargetQuestions: 5,
		Partial:         true,
	})
	if err != nil {
		t.Fatalf("SummarizeTranscript: %v", err)
	}
	if report.GeneratedBy != types.ReportSourceFallback {
		t.Errorf("GeneratedBy = %q, want fallback", report.GeneratedBy)
	}
	if len(report.Weaknesses) == 0 {
		t.Error("expected a weakness noting incomplete interview")
	}
}
