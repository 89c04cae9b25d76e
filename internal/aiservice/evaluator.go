package aiservice

import (
	"context"
	"fmt"
	"hash/fnv"
	"math/rand/v2"

	"github.com/hirecoach/interviewcore/internal/aiservice/promptbank"
	"github.com/hirecoach/interviewcore/internal/resilience"
	"github.com/hirecoach/interviewcore/pkg/provider/llm"
	"github.com/hirecoach/interviewcore/pkg/types"
)

// EvalRequest carries the context needed to score one candidate answer.
type EvalRequest struct {
	QuestionText string
	AnswerText   string
	Context      string
}

// EvalResult is the per-answer scoring outcome.
type EvalResult struct {
	Overall    int
	Relevance  int
	Clarity    int
	Structure  int
	Impact     int
	CoachNotes string
}

// evalFunc scores one answer. The LLM-backed primary and the heuristic
// fallback both satisfy this type.
type evalFunc func(ctx context.Context, req EvalRequest) (*EvalResult, error)

// Evaluator scores candidate answers against the question asked.
type Evaluator struct {
	group *resilience.FallbackGroup[evalFunc]
}

// NewEvaluator builds an Evaluator whose primary entry scores via provider
// and whose fallback applies a deterministic length-bucket heuristic drawing
// coaching strings from bank.
func NewEvaluator(provider llm.Provider, bank *promptbank.Bank, cfg resilience.FallbackConfig) *Evaluator {
	group := resilience.NewFallbackGroup[evalFunc](llmEvaluate(provider), "llm", cfg)
	group.AddFallback("heuristic", heuristicEvaluate(bank))
	return &Evaluator{group: group}
}

// Evaluate scores req, trying the LLM first and falling back to the
// heuristic scorer if the LLM is unavailable or its output is malformed.
func (e *Evaluator) Evaluate(ctx context.Context, req EvalRequest) (*EvalResult, error) {
	return resilience.ExecuteWithResult[evalFunc, *EvalResult](e.group, func(ef evalFunc) (*EvalResult, error) {
		return ef(ctx, req)
	})
}

type evalResultDTO struct {
	Overall    int    `json:"overall"`
	Relevance  int    `json:"relevance"`
	Clarity    int    `json:"clarity"`
	Structure  int    `json:"structure"`
	Impact     int    `json:"impact"`
	CoachNotes string `json:"coach_notes"`
}

// llmEvaluate returns the LLM-backed evalFunc primary.
func llmEvaluate(provider llm.Provider) evalFunc {
	return func(ctx context.Context, req EvalRequest) (*EvalResult, error) {
		system := "You are an interview coach scoring a candidate's answer. Respond with " +
			"JSON only, no prose, shaped like {\"overall\":0-100,\"relevance\":0-100," +
			"\"clarity\":0-100,\"structure\":0-100,\"impact\":0-100,\"coach_notes\":\"...\"}."
		user := fmt.Sprintf("Question: %s\n\nCandidate answer: %s\n\nAdditional context: %s",
			req.QuestionText, req.AnswerText, req.Context)

		raw, err := completeJSON(ctx, provider, system, user)
		if err != nil {
			return nil, err
		}

		var dto evalResultDTO
		if err := unmarshalJSON(raw, &dto); err != nil {
			return nil, err
		}

		return &EvalResult{
			Overall:    clampScore(dto.Overall),
			Relevance:  clampScore(dto.Relevance),
			Clarity:    clampScore(dto.Clarity),
			Structure:  clampScore(dto.Structure),
			Impact:     clampScore(dto.Impact),
			CoachNotes: dto.CoachNotes,
		}, nil
	}
}

// lengthBucket scores are the base scores awarded per answer-length bucket,
// before noise is applied. Very short answers tend to lack substance; very
// long ones tend to ramble, so the top bucket sits in the middle range.
const (
	bucketVeryShort = 40
	bucketShort     = 55
	bucketModerate  = 75
	bucketLong      = 68
)

// heuristicEvaluate returns the dependency-free evalFunc fallback: a
// deterministic length-bucket base score plus small bounded noise seeded
// from the answer text's FNV hash, so repeated calls with the same answer
// are reproducible without relying on global rand state.
func heuristicEvaluate(bank *promptbank.Bank) evalFunc {
	return func(_ context.Context, req EvalRequest) (*EvalResult, error) {
		words := countWords(req.AnswerText)
		base := lengthBucketScore(words)

		noise := seededNoise(req.AnswerText)
		overall := clampScore(base + noise)

		coachKey := "generic"
		switch {
		case words < 15:
			coachKey = "short"
		case words > 150:
			coachKey = "long"
		}

		return &EvalResult{
			Overall:    overall,
			Relevance:  overall,
			Clarity:    overall,
			Structure:  overall,
			Impact:     overall,
			CoachNotes: bank.Coaching(coachKey),
		}, nil
	}
}

// lengthBucketScore maps a word count to a base heuristic score.
func lengthBucketScore(words int) int {
	switch {
	case words < 10:
		return bucketVeryShort
	case words < 30:
		return bucketShort
	case words <= 120:
		return bucketModerate
	default:
		return bucketLong
	}
}

// countWords returns the number of whitespace-delimited tokens in s.
func countWords(s string) int {
	count := 0
	inWord := false
	for _, r := range s {
		isSpace := r == ' ' || r == '\t' || r == '\n' || r == '\r'
		if isSpace {
			inWord = false
			continue
		}
		if !inWord {
			count++
			inWord = true
		}
	}
	return count
}

// seededNoise returns a value in [-5, 5], deterministically derived from
// text's FNV-1a hash so the same answer always yields the same fallback
// score.
func seededNoise(text string) int {
	h := fnv.New64a()
	_, _ = h.Write([]byte(text))
	sum := h.Sum64()
	src := rand.New(rand.NewPCG(sum, sum>>32))
	return src.IntN(11) - 5
}
