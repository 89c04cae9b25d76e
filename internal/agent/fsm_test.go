package agent

import "testing"

func TestNext_HappyPath(t *testing.T) {
	s := StateConnecting
	s = next(s, transitionInput{evt: eventRoomConnected})
	if s != StateGreeting {
		t.Fatalf("after room connected: %v, want greeting", s)
	}
	s = next(s, transitionInput{evt: eventGreetingCommitted})
	if s != StateAsking {
		t.Fatalf("after greeting committed: %v, want asking", s)
	}
	s = next(s, transitionInput{evt: eventModelYielded})
	if s != StateListening {
		t.Fatalf("after model yielded: %v, want listening", s)
	}
	s = next(s, transitionInput{evt: eventUserUtteranceCommitted})
	if s != StateEvaluating {
		t.Fatalf("after user utterance committed: %v, want evaluating", s)
	}
	s = next(s, transitionInput{evt: eventEvaluationComplete, questionsAsked: 1, numQuestions: 3})
	if s != StateAsking {
		t.Fatalf("after evaluation (more questions remain): %v, want asking", s)
	}
}

func TestNext_ClosesOnQuestionCount(t *testing.T) {
	s := next(StateEvaluating, transitionInput{evt: eventEvaluationComplete, questionsAsked: 3, numQuestions: 3})
	if s != StateClosing {
		t.Fatalf("state = %v, want closing", s)
	}
}

func TestNext_ClosesOnPhraseEvenIfUnderCount(t *testing.T) {
	s := next(StateEvaluating, transitionInput{evt: eventEvaluationComplete, questionsAsked: 1, numQuestions: 5, closingPhraseFound: true})
	if s != StateClosing {
		t.Fatalf("state = %v, want closing", s)
	}
}

func TestNext_ModelYieldedRoutesDirectlyToClosingOnPhrase(t *testing.T) {
	s := next(StateAsking, transitionInput{evt: eventModelYielded, closingPhraseFound: true})
	if s != StateClosing {
		t.Fatalf("state = %v, want closing (no Listening stop for a self-contained closing remark)", s)
	}
}

func TestNext_ConnectTimeoutFails(t *testing.T) {
	s := next(StateConnecting, transitionInput{evt: eventConnectTimeout})
	if s != StateFailed {
		t.Fatalf("state = %v, want failed", s)
	}
}

func TestNext_ClosingToFinalizingToDone(t *testing.T) {
	s := next(StateClosing, transitionInput{evt: eventClosingCommitted})
	if s != StateFinalizing {
		t.Fatalf("state = %v, want finalizing", s)
	}
	s = next(s, transitionInput{evt: eventFinalizeDone})
	if s != StateDone {
		t.Fatalf("state = %v, want done", s)
	}
}

func TestNext_DisconnectRoutesToFinalizing(t *testing.T) {
	for _, s := range []State{StateConnecting, StateGreeting, StateAsking, StateListening, StateEvaluating, StateClosing} {
		got := next(s, transitionInput{evt: eventDisconnected})
		if got != StateFinalizing {
			t.Errorf("disconnect from %v = %v, want finalizing", s, got)
		}
	}
}

func TestNext_TerminalStatesIgnoreFurtherEvents(t *testing.T) {
	for _, s := range []State{StateDone, StateFailed} {
		got := next(s, transitionInput{evt: eventRoomConnected})
		if got != s {
			t.Errorf("terminal state %v changed to %v", s, got)
		}
	}
}

func TestStateString(t *testing.T) {
	cases := map[State]string{
		StateConnecting: "connecting",
		StateGreeting:   "greeting",
		StateAsking:     "asking",
		StateListening:  "listening",
		StateEvaluating: "evaluating",
		StateClosing:    "closing",
		StateFinalizing: "finalizing",
		StateDone:       "done",
		StateFailed:     "failed",
	}
	for state, want := range cases {
		if got := state.String(); got != want {
			t.Errorf("State(%d).String() = %q, want %q", state, got, want)
		}
	}
}
