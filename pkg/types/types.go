// Package types defines the shared primitive types used across interviewcore
// packages. These types form the lingua franca between providers, services,
// and storage; cross-cutting data structures live here to avoid circular
// imports. Each package still defines its own domain types where it makes
// sense to keep that package independently importable.
package types

import "time"

// Role identifies the speaker of a transcript entry or LLM message.
type Role string

const (
	// RoleUser marks an utterance spoken by the candidate.
	RoleUser Role = "user"

	// RoleAssistant marks an utterance spoken or generated by the interview agent.
	RoleAssistant Role = "assistant"

	// RoleSystem marks a system-level instruction, not part of the spoken exchange.
	RoleSystem Role = "system"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAssistant, RoleSystem:
		return true
	default:
		return false
	}
}

// TranscriptEntry is one exchange in a session's transcript. Entries are
// append-only and, within one session, strictly non-decreasing by Timestamp.
type TranscriptEntry struct {
	// Role identifies who produced this entry.
	Role Role

	// Text is the spoken or synthesised content.
	Text string

	// Timestamp is the wall-clock time this entry was committed.
	Timestamp time.Time
}

// Message is a single turn in an LLM conversation history.
type Message struct {
	// Role is one of "system", "user", or "assistant".
	Role string

	// Content is the text content of the message.
	Content string

	// Name is an optional participant label (e.g. "candidate", "coach").
	Name string
}

// VoiceProfile identifies the synthesised voice used by the realtime model or
// a standalone TTS backend.
type VoiceProfile struct {
	// ID is the provider-specific voice identifier.
	ID string

	// Name is the human-readable voice name.
	Name string

	// Provider identifies which backend this voice belongs to.
	Provider string

	// Metadata holds provider-specific voice attributes (gender, age, accent, etc.).
	Metadata map[string]string
}

// KeywordBoost is a vocabulary hint that increases STT recognition probability
// for uncommon words, such as a candidate's target job title or employer name.
type KeywordBoost struct {
	Keyword string
	Boost   float64
}

// Seniority is the ordinal seniority level requested for an interview.
type Seniority string

const (
	SeniorityJunior Seniority = "junior"
	SeniorityMid    Seniority = "mid"
	SenioritySenior Seniority = "senior"
	SeniorityLead   Seniority = "lead"
)

// Valid reports whether s is one of the known seniority levels.
func (s Seniority) Valid() bool {
	switch s {
	case SeniorityJunior, SeniorityMid, SenioritySenior, SeniorityLead:
		return true
	default:
		return false
	}
}

// SessionStatus is the lifecycle state of a Session.
type SessionStatus string

const (
	// StatusActive is the initial state; the interview is in progress.
	StatusActive SessionStatus = "active"

	// StatusCompleted is terminal: summary and completed_at are both set.
	StatusCompleted SessionStatus = "completed"

	// StatusFailed is terminal: finalize encountered an unrecoverable error.
	StatusFailed SessionStatus = "failed"
)

// InterviewMode selects how a session's Questions and Report are produced.
//
// Scripted mode pre-generates Questions at creation time and collects
// Answers via the HTTP API. Conversational mode skips Question
// pre-generation; its Report is derived from the transcript alone. The
// Interview Agent is always conversational internally regardless of the
// session's mode — it never consumes pre-generated Questions directly.
type InterviewMode string

const (
	ModeScripted       InterviewMode = "scripted"
	ModeConversational InterviewMode = "conversational"
)

// QuestionKind classifies the intent of a Question.
type QuestionKind string

const (
	KindTechnical   QuestionKind = "technical"
	KindBehavioral  QuestionKind = "behavioral"
	KindSituational QuestionKind = "situational"
	KindGeneral     QuestionKind = "general"
)

// ReportSource records whether a Report was produced by the LLM-backed
// Summarizer or by its dependency-free fallback.
type ReportSource string

const (
	ReportSourceLLM      ReportSource = "llm"
	ReportSourceFallback ReportSource = "fallback"
)

// MinScore and MaxScore bound every numeric score field in the data model.
const (
	MinScore = 0
	MaxScore = 100
)

// ScoreInRange reports whether v is a valid score value.
func ScoreInRange(v int) bool { return v >= MinScore && v <= MaxScore }

// Session is one mock interview instance, durable from creation to
// finalization.
type Session struct {
	ID             string
	JobTitle       string
	Seniority      Seniority
	Language       string
	NumQuestions   int
	Mode           InterviewMode
	Status         SessionStatus
	OverallScore   *int
	Summary        *Report
	Transcript     []TranscriptEntry
	QuestionsAsked int
	CreatedAt      time.Time
	CompletedAt    *time.Time
}

// Question belongs to one Session. Populated in bulk at session creation in
// scripted mode; absent in conversational mode.
type Question struct {
	ID         string
	SessionID  string
	Index      int
	Kind       QuestionKind
	Competency string
	Text       string
}

// Answer belongs to one Question. Immutable once written; at most one Answer
// may exist per Question.
type Answer struct {
	ID         string
	QuestionID string
	Text       string
	Relevance  int
	Clarity    int
	Structure  int
	Impact     int
	Overall    int
	CoachNotes string
	CreatedAt  time.Time
}

// Report is the structured evaluation attached to Session.Summary.
type Report struct {
	OverallScore   int
	Strengths      []string
	Weaknesses     []string
	ActionPlan     []string
	SuggestedRoles []string
	CompletionNote string
	GeneratedBy    ReportSource
}
