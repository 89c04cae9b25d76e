package agent

// State is one of the nine states an Agent moves through over the lifetime
// of a single interview session.
type State int

const (
	// StateConnecting is the initial state: the agent is acquiring its room
	// handle and registering event callbacks.
	StateConnecting State = iota

	// StateGreeting speaks the fixed welcome line and establishes the voice.
	StateGreeting

	// StateAsking speaks the current question.
	StateAsking

	// StateListening waits for the candidate to finish speaking.
	StateListening

	// StateEvaluating processes a just-committed candidate utterance.
	StateEvaluating

	// StateClosing speaks the thank-you line before finalization.
	StateClosing

	// StateFinalizing hands the transcript to the Finalizer.
	StateFinalizing

	// StateDone is terminal: the session finished normally.
	StateDone

	// StateFailed is terminal: the session ended in error or timeout.
	StateFailed
)

// String returns the human-readable name of the state, used in logging.
func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateGreeting:
		return "greeting"
	case StateAsking:
		return "asking"
	case StateListening:
		return "listening"
	case StateEvaluating:
		return "evaluating"
	case StateClosing:
		return "closing"
	case StateFinalizing:
		return "finalizing"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// terminal reports whether s is a terminal state (Done or Failed): no
// further events should drive a transition once reached.
func (s State) terminal() bool {
	return s == StateDone || s == StateFailed
}

// event is one input the driver feeds into the pure transition function.
// It carries no data of its own; the facts a transition depends on are
// passed alongside it in transitionInput.
type event int

const (
	eventRoomConnected event = iota
	eventConnectTimeout
	eventGreetingCommitted
	eventModelYielded
	eventUserUtteranceCommitted
	eventEvaluationComplete
	eventClosingCommitted
	eventFinalizeDone
	eventDisconnected
)

// transitionInput bundles the event with the small amount of extra
// information next needed to decide whether an Evaluating step should loop
// back to Asking or proceed to Closing.
type transitionInput struct {
	evt                event
	questionsAsked     int
	numQuestions       int
	closingPhraseFound bool
}

// next is the pure state-transition function: given the current state and
// an event, it returns the next state. It has no side effects and is
// unit-testable without a live realtime connection; all I/O (speaking,
// writing transcript entries, calling the Finalizer) is the driver's
// responsibility, triggered by the state change it observes.
func next(current State, in transitionInput) State {
	if current.terminal() {
		return current
	}

	// A disconnect at any non-terminal point routes to Finalizing so the
	// agent still attempts to persist what it has captured before exiting.
	if in.evt == eventDisconnected {
		if current == StateFinalizing {
			return current
		}
		return StateFinalizing
	}

	switch current {
	case StateConnecting:
		switch in.evt {
		case eventRoomConnected:
			return StateGreeting
		case eventConnectTimeout:
			return StateFailed
		}

	case StateGreeting:
		if in.evt == eventGreetingCommitted {
			return StateAsking
		}

	case StateAsking:
		if in.evt == eventModelYielded {
			if in.closingPhraseFound {
				return StateClosing
			}
			return StateListening
		}

	case StateListening:
		if in.evt == eventUserUtteranceCommitted {
			return StateEvaluating
		}

	case StateEvaluating:
		if in.evt == eventEvaluationComplete {
			if in.questionsAsked >= in.numQuestions || in.closingPhraseFound {
				return StateClosing
			}
			return StateAsking
		}

	case StateClosing:
		if in.evt == eventClosingCommitted {
			return StateFinalizing
		}

	case StateFinalizing:
		if in.evt == eventFinalizeDone {
			return StateDone
		}
	}

	return current
}
