package finalizer_test

import (
	"context"
	"errors"
	"testing"

	"github.com/hirecoach/interviewcore/internal/aiservice"
	"github.com/hirecoach/interviewcore/internal/finalizer"
	"github.com/hirecoach/interviewcore/internal/resilience"
	"github.com/hirecoach/interviewcore/pkg/provider/llm"
	"github.com/hirecoach/interviewcore/pkg/provider/llm/mock"
	"github.com/hirecoach/interviewcore/pkg/store/memstore"
	"github.com/hirecoach/interviewcore/pkg/types"
)

func testFallbackConfig() resilience.FallbackConfig {
	return resilience.FallbackConfig{CircuitBreaker: resilience.CircuitBreakerConfig{MaxFailures: 1}}
}

func TestFinalize_ScriptedSession_LLMSuccess(t *testing.T) {
	ctx := context.Background()
	st := memstore.New()
	provider := &mock.Provider{CompleteResponse: &llm.CompletionResponse{
		Content: `{"overall_score":90,"strengths":["clarity"],"weaknesses":[],"action_plan":["keep practicing"]}`,
	}}
	summarizer := aiservice.NewSummarizer(provider, testFallbackConfig())
	f := finalizer.New(st, summarizer)

	session := types.Session{ID: "s1", JobTitle: "Backend Engineer", Seniority: types.SeniorityMid, Mode: types.ModeScripted, NumQuestions: 1}
	if err := st.CreateSession(ctx, session); err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	if err := st.CreateQuestions(ctx, "s1", []types.Question{{ID: "q1", SessionID: "s1", Index: 0, Text: "Q1"}}); err != nil {
		t.Fatalf("CreateQuestions: %v", err)
	}
	if err := st.CreateAnswer(ctx, types.Answer{ID: "a1", QuestionID: "q1", Text: "answer", Overall: 80}); err != nil {
		t.Fatalf("CreateAnswer: %v", err)
	}

	report, err := f.Finalize(ctx, "s1")
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if report.OverallScore != 90 {
		t.Errorf("OverallScore = %d, want 90", report.OverallScore)
	}

	got, err := st.GetSession(ctx, "s1")
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if got.Status != types.StatusCompleted {
		t.Errorf("Status = %q, want completed", got.Status)
	}
}

func TestFinalize_EmptyTranscriptProducesDegenerateReport(t *testing.T) {
	ctx := context.Background()
	st := memstore.New()
	provider := &mock.Provider{CompleteErr: errors.New("unavailable")}
	summarizer := aiservice.NewSummarizer(provider, testFallbackConfig())
	f := finalizer.New(st, summarizer)

	session := types.Session{ID: "s2", JobTitle: "QA Engineer", Mode: types.ModeConversational, NumQuestions: 3}
	if err := st.CreateSession(ctx, session); err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	report, err := f.Finalize(ctx, "s2")
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if report.OverallScore != 0 {
		t.Errorf("OverallScore = %d, want 0", report.OverallScore)
	}
	if len(report.Weaknesses) != 1 || report.Weaknesses[0] != "no interview data" {
		t.Errorf("Weaknesses = %v, want [no interview data]", report.Weaknesses)
	}
}

func TestFinalize_AlreadyCompletedReturnsStoredReport(t *testing.T) {
	ctx := context.Background()
	st := memstore.New()
	provider := &mock.Provider{CompleteResponse: &llm.CompletionResponse{Content: `{"overall_score":50}`}}
	summarizer := aiservice.NewSummarizer(provider, testFallbackConfig())
	f := finalizer.New(st, summarizer)

	session := types.Session{ID: "s3", Mode: types.ModeConversational, NumQuestions: 1,
		Transcript: []types.TranscriptEntry{{Role: types.RoleUser, Text: "hi"}}, QuestionsAsked: 1}
	if err := st.CreateSession(ctx, session); err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	first, err := f.Finalize(ctx, "s3")
	if err != nil {
		t.Fatalf("first Finalize: %v", err)
	}

	second, err := f.Finalize(ctx, "s3")
	if err != nil {
		t.Fatalf("second Finalize: %v", err)
	}
	if second.OverallScore != first.OverallScore {
		t.Errorf("second Finalize returned a different report: %+v vs %+v", second, first)
	}
}

func TestFinalize_ConversationalPartial(t *testing.T) {
	ctx := context.Background()
	st := memstore.New()
	provider := &mock.Provider{CompleteErr: errors.New("unavailable")}
	summarizer := aiservice.NewSummarizer(provider, testFallbackConfig())
	f := finalizer.New(st, summarizer)

	session := types.Session{ID: "s4", Mode: types.ModeConversational, NumQuestions: 5, QuestionsAsked: 2,
		Transcript: []types.TranscriptEntry{{Role: types.RoleUser, Text: "hi"}}}
	if err := st.CreateSession(ctx, session); err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	report, err := f.Finalize(ctx, "s4")
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if report.CompletionNote == "" {
		t.Error("expected a completion note for a partial report")
	}
}

func TestPersistPartialTranscript(t *testing.T) {
	ctx := context.Background()
	st := memstore.New()
	summarizer := aiservice.NewSummarizer(&mock.Provider{}, testFallbackConfig())
	f := finalizer.New(st, summarizer)

	if err := st.CreateSession(ctx, types.Session{ID: "s5", Mode: types.ModeConversational}); err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	entries := []types.TranscriptEntry{{Role: types.RoleUser, Text: "hello"}}
	if err := f.PersistPartialTranscript(ctx, "s5", entries, 1); err != nil {
		t.Fatalf("PersistPartialTranscript: %v", err)
	}

	got, err := st.GetSession(ctx, "s5")
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if len(got.Transcript) != 1 || got.QuestionsAsked != 1 {
		t.Errorf("transcript not persisted: %+v", got)
	}
}
