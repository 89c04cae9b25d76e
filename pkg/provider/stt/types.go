package stt

import (
	"time"

	"github.com/hirecoach/interviewcore/pkg/types"
)

// KeywordBoost is an alias for the canonical vocabulary-hint type, kept local
// so callers within this package don't need to import pkg/types directly.
type KeywordBoost = types.KeywordBoost

// Transcript represents a speech-to-text result from an STT provider.
// Both partial (interim) and final transcripts use this type.
type Transcript struct {
	// Text is the transcribed speech content.
	Text string

	// IsFinal indicates whether this is a final (authoritative) or partial (interim) transcript.
	IsFinal bool

	// Confidence is the overall confidence score (0.0–1.0). May be zero if the provider
	// does not report confidence.
	Confidence float64

	// Words contains per-word detail when available (Deepgram).
	// May be nil for providers that don't support word-level output.
	Words []WordDetail

	// Timestamp marks when the utterance started, relative to session start.
	Timestamp time.Duration

	// Duration is the length of the utterance.
	Duration time.Duration
}

// WordDetail holds per-word metadata from STT providers that support it.
type WordDetail struct {
	Word       string
	Start      time.Duration
	End        time.Duration
	Confidence float64
}
