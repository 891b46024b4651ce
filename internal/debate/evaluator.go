package debate

import (
	"strings"

	"github.com/ashureev/debate-trainer/internal/domain"
)

// Evaluator classifies a single statement.
type Evaluator interface {
	Evaluate(statement string) domain.Evaluation
}

var (
	emotionalPhrases   = []string{"because i feel", "i believe", "it's unfair"}
	evidencePhrases    = []string{"for example", "statistics", "study"}
	logicalTrapPhrases = []string{"all", "never", "always"}
)

// apostrophes folds typographic apostrophes into ASCII so "it’s unfair"
// and "it's unfair" classify the same way.
var apostrophes = strings.NewReplacer("’", "'", "‘", "'", "ʼ", "'", "′", "'")

// KeywordEvaluator flags statements by case-insensitive substring search.
//
// Matching is on raw substrings, not words: "ballet" contains "all" and is
// flagged as a logical trap. Callers depend on this, so keep it.
type KeywordEvaluator struct{}

// Evaluate implements Evaluator.
func (KeywordEvaluator) Evaluate(statement string) domain.Evaluation {
	s := apostrophes.Replace(strings.ToLower(statement))
	return domain.Evaluation{
		Emotional:   containsAny(s, emotionalPhrases),
		Evidence:    containsAny(s, evidencePhrases),
		LogicalTrap: containsAny(s, logicalTrapPhrases),
	}
}

// EvaluateArgument runs the default keyword heuristic.
func EvaluateArgument(statement string) domain.Evaluation {
	return KeywordEvaluator{}.Evaluate(statement)
}

func containsAny(s string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}
