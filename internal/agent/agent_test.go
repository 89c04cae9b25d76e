package agent_test

import (
	"context"
	"testing"
	"time"

	"github.com/hirecoach/interviewcore/internal/agent"
	"github.com/hirecoach/interviewcore/internal/aiservice"
	"github.com/hirecoach/interviewcore/internal/finalizer"
	"github.com/hirecoach/interviewcore/internal/resilience"
	"github.com/hirecoach/interviewcore/pkg/provider/llm/mock"
	realtimemock "github.com/hirecoach/interviewcore/pkg/provider/realtime/mock"
	"github.com/hirecoach/interviewcore/pkg/store/memstore"
	"github.com/hirecoach/interviewcore/pkg/types"
)

func TestAgent_RunHappyPath(t *testing.T) {
	session := &realtimemock.Session{
		AudioCh:       make(chan []byte, 4),
		TranscriptsCh: make(chan types.TranscriptEntry, 4),
	}
	provider := &realtimemock.Provider{Session: session}

	realStore := memstore.New()
	fin := finalizer.New(realStore, aiservice.NewSummarizer(&mock.Provider{}, resilience.FallbackConfig{
		CircuitBreaker: resilience.CircuitBreakerConfig{MaxFailures: 1},
	}))
	if err := realStore.CreateSession(context.Background(), types.Session{
		ID: "sess-1", JobTitle: "Backend Engineer", Seniority: types.SeniorityMid,
		Mode: types.ModeConversational, NumQuestions: 2,
	}); err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	a := agent.New(agent.Config{
		SessionID:        "sess-1",
		JobTitle:         "Backend Engineer",
		Seniority:        types.SeniorityMid,
		NumQuestions:     2,
		SnapshotInterval: time.Hour,
	}, provider, fin)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	disconnect := make(chan struct{})
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx, disconnect) }()

	waitForCallback(t, session)
	fn := session.CommittedFn()

	// Greeting commits.
	fn(types.RoleAssistant, "Hi, thanks for joining.", 1)
	// First question.
	fn(types.RoleAssistant, "Tell me about a challenging bug you fixed.", 2)
	// Candidate answers.
	fn(types.RoleUser, "I once tracked down a race condition in a worker pool.", 3)
	// The model wraps up in its own closing remark instead of asking a
	// second question; the candidate never speaks again.
	fn(types.RoleAssistant, "Great, that concludes our interview today.", 4)

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned error: %v", err)
		}
	case <-time.After(4 * time.Second):
		t.Fatal("Run did not complete in time")
	}

	got, err := realStore.GetSession(context.Background(), "sess-1")
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if got.Status != types.StatusCompleted {
		t.Errorf("Status = %q, want completed", got.Status)
	}
	if len(got.Transcript) != 4 {
		t.Errorf("len(Transcript) = %d, want 4", len(got.Transcript))
	}
}

func TestAgent_RunWaitsForClosingUtteranceAfterFinalQuestionCount(t *testing.T) {
	session := &realtimemock.Session{
		AudioCh:       make(chan []byte, 4),
		TranscriptsCh: make(chan types.TranscriptEntry, 4),
	}
	provider := &realtimemock.Provider{Session: session}

	st := memstore.New()
	fin := finalizer.New(st, aiservice.NewSummarizer(&mock.Provider{}, resilience.FallbackConfig{
		CircuitBreaker: resilience.CircuitBreakerConfig{MaxFailures: 1},
	}))
	if err := st.CreateSession(context.Background(), types.Session{
		ID: "sess-3", Mode: types.ModeConversational, NumQuestions: 1,
	}); err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	a := agent.New(agent.Config{
		SessionID:        "sess-3",
		NumQuestions:     1,
		SnapshotInterval: time.Hour,
	}, provider, fin)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	disconnect := make(chan struct{})
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx, disconnect) }()

	waitForCallback(t, session)
	fn := session.CommittedFn()

	fn(types.RoleAssistant, "Hi there.", 1)
	// Only question; reaches the count threshold but contains no closing
	// phrase of its own.
	fn(types.RoleAssistant, "What's your biggest strength?", 2)
	fn(types.RoleUser, "I stay calm under pressure.", 3)

	// The agent must not finalize yet — it still owes the candidate a
	// spoken closing line and hasn't received it.
	select {
	case err := <-done:
		t.Fatalf("Run completed before the closing utterance was committed (err=%v)", err)
	case <-time.After(200 * time.Millisecond):
	}

	// Now the model actually speaks its closing remark.
	fn(types.RoleAssistant, "Thank you for completing the interview. I'm compiling your report now.", 4)

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned error: %v", err)
		}
	case <-time.After(4 * time.Second):
		t.Fatal("Run did not complete after the closing utterance committed")
	}

	got, err := st.GetSession(context.Background(), "sess-3")
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if got.Status != types.StatusCompleted {
		t.Errorf("Status = %q, want completed", got.Status)
	}
	if len(got.Transcript) != 4 {
		t.Errorf("len(Transcript) = %d, want 4", len(got.Transcript))
	}
}

func TestAgent_RunDisconnectPersistsTranscript(t *testing.T) {
	session := &realtimemock.Session{
		AudioCh:       make(chan []byte, 4),
		TranscriptsCh: make(chan types.TranscriptEntry, 4),
	}
	provider := &realtimemock.Provider{Session: session}

	st := memstore.New()
	fin := finalizer.New(st, aiservice.NewSummarizer(&mock.Provider{}, resilience.FallbackConfig{
		CircuitBreaker: resilience.CircuitBreakerConfig{MaxFailures: 1},
	}))
	if err := st.CreateSession(context.Background(), types.Session{
		ID: "sess-2", Mode: types.ModeConversational, NumQuestions: 3,
	}); err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	a := agent.New(agent.Config{
		SessionID:        "sess-2",
		NumQuestions:     3,
		SnapshotInterval: time.Hour,
	}, provider, fin)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	disconnect := make(chan struct{})
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx, disconnect) }()

	waitForCallback(t, session)
	fn := session.CommittedFn()
	fn(types.RoleAssistant, "Hi there.", 1)
	fn(types.RoleAssistant, "First question.", 2)

	close(disconnect)

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned error: %v", err)
		}
	case <-time.After(4 * time.Second):
		t.Fatal("Run did not return after disconnect")
	}

	got, err := st.GetSession(context.Background(), "sess-2")
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if len(got.Transcript) != 2 {
		t.Errorf("len(Transcript) = %d, want 2", len(got.Transcript))
	}
	if got.Status != types.StatusCompleted {
		t.Errorf("Status = %q, want completed (disconnect with non-empty transcript finalizes)", got.Status)
	}
}

// waitForCallback polls until the agent has registered its
// OnCommittedUtterance callback on session, avoiding a race between Run's
// goroutine and the test driving events.
func waitForCallback(t *testing.T, session *realtimemock.Session) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if session.CommittedFn() != nil {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("agent never registered OnCommittedUtterance callback")
}
