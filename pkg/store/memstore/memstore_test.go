package memstore

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/hirecoach/interviewcore/pkg/store"
	"github.com/hirecoach/interviewcore/pkg/types"
)

func newSession(id string) types.Session {
	return types.Session{
		ID:           id,
		JobTitle:     "Software Engineer",
		Seniority:    types.SeniorityMid,
		Language:     "en",
		NumQuestions: 3,
		Mode:         types.ModeScripted,
		Status:       types.StatusActive,
	}
}

func TestCreateAndGetSession(t *testing.T) {
	s := New()
	ctx := context.Background()

	if err := s.CreateSession(ctx, newSession("s1")); err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	got, err := s.GetSession(ctx, "s1")
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if got.JobTitle != "Software Engineer" {
		t.Errorf("JobTitle = %q, want %q", got.JobTitle, "Software Engineer")
	}

	if _, err := s.GetSession(ctx, "missing"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("GetSession(missing) error = %v, want ErrNotFound", err)
	}
}

func TestCreateQuestions_DuplicateIndex(t *testing.T) {
	s := New()
	ctx := context.Background()
	_ = s.CreateSession(ctx, newSession("s1"))

	qs := []types.Question{
		{ID: "q1", SessionID: "s1", Index: 1, Kind: types.KindTechnical, Text: "t1"},
		{ID: "q2", SessionID: "s1", Index: 1, Kind: types.KindBehavioral, Text: "t2"},
	}
	if err := s.CreateQuestions(ctx, "s1", qs); !errors.Is(err, store.ErrValidation) {
		t.Errorf("CreateQuestions duplicate index error = %v, want ErrValidation", err)
	}
}

func TestCreateAnswer_WriteOnce(t *testing.T) {
	s := New()
	ctx := context.Background()
	_ = s.CreateSession(ctx, newSession("s1"))
	_ = s.CreateQuestions(ctx, "s1", []types.Question{
		{ID: "q1", SessionID: "s1", Index: 1, Kind: types.KindTechnical, Text: "t1"},
	})

	a := types.Answer{ID: "a1", QuestionID: "q1", Text: "answer", Overall: 70}
	if err := s.CreateAnswer(ctx, a); err != nil {
		t.Fatalf("CreateAnswer: %v", err)
	}
	if err := s.CreateAnswer(ctx, a); !errors.Is(err, store.ErrConflict) {
		t.Errorf("second CreateAnswer error = %v, want ErrConflict", err)
	}
}

func TestAppendOrReplaceTranscript(t *testing.T) {
	s := New()
	ctx := context.Background()
	_ = s.CreateSession(ctx, newSession("s1"))

	entries := []types.TranscriptEntry{
		{Role: types.RoleAssistant, Text: "Welcome", Timestamp: time.Now()},
		{Role: types.RoleUser, Text: "Hi", Timestamp: time.Now()},
	}
	if err := s.AppendOrReplaceTranscript(ctx, "s1", entries, 1); err != nil {
		t.Fatalf("AppendOrReplaceTranscript: %v", err)
	}

	got, err := s.GetSession(ctx, "s1")
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if len(got.Transcript) != 2 {
		t.Fatalf("Transcript length = %d, want 2", len(got.Transcript))
	}
	if got.QuestionsAsked != 1 {
		t.Errorf("QuestionsAsked = %d, want 1", got.QuestionsAsked)
	}
}

func TestFinalizeSession_ConcurrentConvergence(t *testing.T) {
	s := New()
	ctx := context.Background()
	_ = s.CreateSession(ctx, newSession("s1"))

	const callers = 8
	reports := make([]*types.Report, callers)
	var wg sync.WaitGroup
	wg.Add(callers)
	for i := 0; i < callers; i++ {
		go func(i int) {
			defer wg.Done()
			r, err := s.FinalizeSession(ctx, "s1", types.Report{
				OverallScore: 75,
				Strengths:    []string{"clarity", "structure"},
				Weaknesses:   []string{"depth"},
				ActionPlan:   []string{"practice system design"},
				GeneratedBy:  types.ReportSourceLLM,
			})
			if err != nil {
				t.Errorf("FinalizeSession: %v", err)
				return
			}
			reports[i] = r
		}(i)
	}
	wg.Wait()

	for i, r := range reports {
		if r == nil {
			t.Fatalf("caller %d got nil report", i)
		}
		if r.OverallScore != reports[0].OverallScore {
			t.Errorf("caller %d report.OverallScore = %d, want %d", i, r.OverallScore, reports[0].OverallScore)
		}
	}

	got, err := s.GetSession(ctx, "s1")
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if got.Status != types.StatusCompleted {
		t.Errorf("Status = %q, want completed", got.Status)
	}
	if got.CompletedAt == nil {
		t.Error("CompletedAt is nil")
	}
}

func TestFinalizeSession_Idempotent(t *testing.T) {
	s := New()
	ctx := context.Background()
	_ = s.CreateSession(ctx, newSession("s1"))

	r1, err := s.FinalizeSession(ctx, "s1", types.Report{OverallScore: 80, GeneratedBy: types.ReportSourceLLM})
	if err != nil {
		t.Fatalf("first FinalizeSession: %v", err)
	}
	r2, err := s.FinalizeSession(ctx, "s1", types.Report{OverallScore: 10, GeneratedBy: types.ReportSourceFallback})
	if err != nil {
		t.Fatalf("second FinalizeSession: %v", err)
	}
	if r1.OverallScore != r2.OverallScore {
		t.Errorf("second finalize returned a different report: %d vs %d", r1.OverallScore, r2.OverallScore)
	}
}

func TestSearchTranscripts(t *testing.T) {
	s := New()
	ctx := context.Background()
	_ = s.CreateSession(ctx, newSession("s1"))
	_ = s.AppendOrReplaceTranscript(ctx, "s1", []types.TranscriptEntry{
		{Role: types.RoleUser, Text: "I built a distributed cache", Timestamp: time.Now()},
		{Role: types.RoleAssistant, Text: "Tell me about testing", Timestamp: time.Now()},
	}, 1)

	got, err := s.SearchTranscripts(ctx, "cache", store.SearchOpts{SessionID: "s1"})
	if err != nil {
		t.Fatalf("SearchTranscripts: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("len(got) = %d, want 1", len(got))
	}
}
