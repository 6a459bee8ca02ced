package rebuttal

import (
	"context"
	"log/slog"

	"github.com/callsift/callsift/internal/phrase"
)

// llmEscalationFloor decides when the classifier tier runs: when the
// cheaper tiers produced nothing, or nothing they produced is trustworthy.
const llmEscalationFloor = 0.70

// needsLLM reports whether the classifier tier should run for the given
// candidate set.
func needsLLM(candidates []Match) bool {
	if len(candidates) == 0 {
		return true
	}
	best := 0.0
	for _, c := range candidates {
		if c.Confidence > best {
			best = c.Confidence
		}
	}
	return best < llmEscalationFloor
}

// matchLLM asks the classifier for a verdict on the whole transcript. A
// positive verdict becomes a single complex-case match. Classifier errors
// are logged and swallowed; the tier is advisory.
func (m *Matcher) matchLLM(ctx context.Context, transcript string) []Match {
	if m.classifier == nil {
		return nil
	}
	verdict, err := m.classifier.ClassifyRebuttal(ctx, transcript)
	if err != nil {
		m.log.Warn("classifier tier skipped", slog.String("error", err.Error()))
		return nil
	}
	if verdict == nil || !verdict.Rebuttal {
		return nil
	}
	return []Match{{
		Category:    phrase.CategoryLLMComplexCase,
		Phrase:      verdict.Reasoning,
		MatchedText: transcript,
		Confidence:  verdict.Confidence,
		Tier:        TierLLM,
	}}
}
