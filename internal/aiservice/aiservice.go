// Package aiservice hosts the three logical AI services the interview core
// depends on — Planner, Evaluator, Summarizer — each wrapping an
// [llm.Provider] primary with a deterministic, dependency-free fallback
// behind a [resilience.FallbackGroup], matching the "Unavailable → fallback"
// propagation policy used throughout this codebase's other provider
// adapters.
package aiservice

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hirecoach/interviewcore/pkg/provider/llm"
	"github.com/hirecoach/interviewcore/pkg/types"
)

// completeJSON sends req to provider and returns the raw JSON payload
// embedded in the model's response. Models are asked to emit JSON only, but
// this helper defensively extracts the outermost JSON value in case the
// model wraps it in prose or a code fence.
func completeJSON(ctx context.Context, provider llm.Provider, systemPrompt, userPrompt string) (string, error) {
	resp, err := provider.Complete(ctx, llm.CompletionRequest{
		SystemPrompt: systemPrompt,
		Temperature:  0.3,
		Messages: []types.Message{
			{Role: "user", Content: userPrompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("aiservice: llm completion: %w", err)
	}
	return extractJSON(resp.Content), nil
}

// extractJSON trims surrounding prose/code-fence markers from s and returns
// the first balanced top-level JSON value ('{...}' or '[...]') it contains.
func extractJSON(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	s = strings.TrimSpace(s)

	start := strings.IndexAny(s, "{[")
	if start < 0 {
		return s
	}
	open, close := s[start], byte('}')
	if open == '[' {
		close = ']'
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return s[start:]
}

// unmarshalJSON is a thin wrapper giving every aiservice parse call the same
// error-wrapping convention.
func unmarshalJSON(raw string, dst any) error {
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return fmt.Errorf("aiservice: parse model response: %w", err)
	}
	return nil
}

// clampScore bounds v into [types.MinScore, types.MaxScore].
func clampScore(v int) int {
	if v < types.MinScore {
		return types.MinScore
	}
	if v > types.MaxScore {
		return types.MaxScore
	}
	return v
}
