package debate

import (
	"github.com/ashureev/debate-trainer/internal/domain"
)

const (
	evidencePoints      = 3
	calmPoints          = 2
	noLogicalTrapPoints = 2
	gradeAThreshold     = 15
	gradeBThreshold     = 10
	gradeCThreshold     = 5
)

type gradeProfile struct {
	grade       domain.Grade
	minScore    int
	description string
	tips        [2]string
}

// profiles is ordered from the highest threshold down.
var profiles = []gradeProfile{
	{
		grade:       domain.GradeA,
		minScore:    gradeAThreshold,
		description: "Outstanding! Your arguments were logical and evidence-based.",
		tips:        [2]string{"Continue using strong evidence.", "Address counterarguments for depth."},
	},
	{
		grade:       domain.GradeB,
		minScore:    gradeBThreshold,
		description: "Solid effort! More evidence could elevate your arguments.",
		tips:        [2]string{"Add specific examples or data.", "Reduce emotional appeals."},
	},
	{
		grade:       domain.GradeC,
		minScore:    gradeCThreshold,
		description: "Fair attempt, but arguments need substance.",
		tips:        [2]string{"Incorporate statistics or examples.", `Avoid words like "always" or "never."`},
	},
	{
		grade:       domain.GradeD,
		minScore:    0,
		description: "Needs work. Arguments lacked evidence or were too emotional.",
		tips:        [2]string{"Focus on factual arguments.", "Learn about logical fallacies."},
	},
}

// Grader scores a transcript's user turns.
type Grader struct {
	evaluator Evaluator
}

// NewGrader returns a Grader using ev. A nil ev selects KeywordEvaluator.
func NewGrader(ev Evaluator) *Grader {
	if ev == nil {
		ev = KeywordEvaluator{}
	}
	return &Grader{evaluator: ev}
}

// Score sums the points earned by every user turn in history.
func (g *Grader) Score(history []domain.Turn) int {
	score := 0
	for _, turn := range history {
		if turn.Speaker != domain.SpeakerUser {
			continue
		}
		e := g.evaluator.Evaluate(turn.Argument)
		if e.Evidence {
			score += evidencePoints
		}
		if !e.Emotional {
			score += calmPoints
		}
		if !e.LogicalTrap {
			score += noLogicalTrapPoints
		}
	}
	return score
}

// Grade scores history and maps the total to a grade profile. A transcript
// with no user turns scores 0 and gets a D.
func (g *Grader) Grade(history []domain.Turn) domain.GradeReport {
	score := g.Score(history)
	p := profileFor(score)
	return domain.GradeReport{
		Grade:           p.grade,
		Description:     p.description,
		ImprovementTips: []string{p.tips[0], p.tips[1]},
		Score:           score,
	}
}

// GradeDebate grades history with the default keyword heuristic.
func GradeDebate(history []domain.Turn) domain.GradeReport {
	return NewGrader(nil).Grade(history)
}

func profileFor(score int) gradeProfile {
	for _, p := range profiles {
		if score >= p.minScore {
			return p
		}
	}
	return profiles[len(profiles)-1]
}
