// Package promptbank loads the static question templates and heuristic
// coaching strings the aiservice fallbacks draw from when the primary LLM
// is unavailable.
//
// Content is seeded from a YAML file (configs/question_bank.yaml by default)
// at startup.
package promptbank

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/hirecoach/interviewcore/pkg/types"
)

// Template is one static question entry, parameterized by job title at
// render time via Render.
type Template struct {
	Kind       types.QuestionKind `yaml:"kind"`
	Competency string             `yaml:"competency"`
	Text       string             `yaml:"text"`
}

// Render substitutes the {job_title} placeholder, if present, with jobTitle.
func (t Template) Render(jobTitle string) string {
	const placeholder = "{job_title}"
	out := t.Text
	for i := 0; i+len(placeholder) <= len(out); i++ {
		if out[i:i+len(placeholder)] == placeholder {
			out = out[:i] + jobTitle + out[i+len(placeholder):]
			i += len(jobTitle) - 1
		}
	}
	return out
}

// File is the top-level structure of the question bank YAML file.
//
// Example:
//
//	questions:
//	  junior:
//	    technical:
//	      - competency: "data structures"
//	        text: "Walk me through how you'd choose a data structure for {job_title} work."
//	coaching:
//	  generic: "Structure your answer with a clear example and outcome."
type File struct {
	Questions map[types.Seniority]map[types.QuestionKind][]Template `yaml:"questions"`
	Coaching  map[string]string                                     `yaml:"coaching"`
}

// Bank serves templated fallback questions and coaching strings.
type Bank struct {
	questions map[types.Seniority]map[types.QuestionKind][]Template
	coaching  map[string]string
}

// Load reads and parses a question bank YAML file from disk.
func Load(path string) (*Bank, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("promptbank: open %q: %w", path, err)
	}
	defer f.Close()
	return LoadFromReader(f)
}

// LoadFromReader parses a question bank from an [io.Reader].
func LoadFromReader(r io.Reader) (*Bank, error) {
	var file File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("promptbank: decode yaml: %w", err)
	}
	return &Bank{questions: file.Questions, coaching: file.Coaching}, nil
}

// kindMix is the target proportion of each QuestionKind in a generated plan,
// per spec: ~40% technical, 30% behavioral, 20% situational, 10% general.
var kindMix = []struct {
	kind    types.QuestionKind
	portion float64
}{
	{types.KindTechnical, 0.40},
	{types.KindBehavioral, 0.30},
	{types.KindSituational, 0.20},
	{types.KindGeneral, 0.10},
}

// Plan returns exactly numQuestions templated questions for seniority,
// following the kindMix proportions, cycling templates within a kind if
// numQuestions exceeds the bank's stock for that (kind, seniority) pair.
func (b *Bank) Plan(seniority types.Seniority, numQuestions int) []Template {
	counts := kindCounts(numQuestions)

	out := make([]Template, 0, numQuestions)
	for _, kc := range counts {
		pool := b.templatesFor(seniority, kc.kind)
		if len(pool) == 0 {
			pool = []Template{{
				Kind:       kc.kind,
				Competency: "general",
				Text:       "Tell me about a time your work as a {job_title} required you to demonstrate " + string(kc.kind) + " skills.",
			}}
		}
		for i := 0; i < kc.count; i++ {
			out = append(out, pool[i%len(pool)])
		}
	}
	return out
}

// templatesFor returns the stored templates for (seniority, kind), falling
// back to types.SeniorityMid if seniority has no dedicated entries.
func (b *Bank) templatesFor(seniority types.Seniority, kind types.QuestionKind) []Template {
	if bySeniority, ok := b.questions[seniority]; ok {
		if pool, ok := bySeniority[kind]; ok && len(pool) > 0 {
			return pool
		}
	}
	if bySeniority, ok := b.questions[types.SeniorityMid]; ok {
		return bySeniority[kind]
	}
	return nil
}

// Coaching returns the heuristic coaching string for key, or the "generic"
// entry if key is absent.
func (b *Bank) Coaching(key string) string {
	if s, ok := b.coaching[key]; ok {
		return s
	}
	if s, ok := b.coaching["generic"]; ok {
		return s
	}
	return "Structure your answer with a clear example, the action you took, and the outcome."
}

type kindCount struct {
	kind  types.QuestionKind
	count int
}

// kindCounts distributes numQuestions across kindMix proportions, rounding
// down and assigning any remainder to the first (highest-proportion) kinds
// so the total always equals numQuestions exactly.
func kindCounts(numQuestions int) []kindCount {
	counts := make([]kindCount, len(kindMix))
	assigned := 0
	for i, km := range kindMix {
		n := int(float64(numQuestions) * km.portion)
		counts[i] = kindCount{kind: km.kind, count: n}
		assigned += n
	}
	for i := 0; assigned < numQuestions; i++ {
		counts[i%len(counts)].count++
		assigned++
	}
	return counts
}
