// Package debate implements the scripted opponent and the argument scoring
// heuristic. Everything here is a pure function of its inputs.
package debate

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ashureev/debate-trainer/internal/domain"
)

// slotCount is the number of scripted replies per persona. The last slot is
// the concluding "out of arguments" reply.
const slotCount = 4

// ErrInvalidPersona is matched by every InvalidPersonaError.
var ErrInvalidPersona = errors.New("invalid persona")

// InvalidPersonaError reports a personality outside the supported set.
type InvalidPersonaError struct {
	Persona string
}

func (e *InvalidPersonaError) Error() string {
	return fmt.Sprintf("invalid persona %q", e.Persona)
}

// Is makes errors.Is(err, ErrInvalidPersona) work.
func (e *InvalidPersonaError) Is(target error) bool {
	return target == ErrInvalidPersona
}

// ParsePersona validates a raw personality value.
func ParsePersona(raw string) (domain.Persona, error) {
	p := domain.Persona(raw)
	if !p.Valid() {
		return "", &InvalidPersonaError{Persona: raw}
	}
	return p, nil
}

// replies holds the scripted replies. {topic} and {message} are substituted
// in a single pass by SelectResponse.
var replies = map[domain.Persona][slotCount]string{
	domain.PersonaCentrist: {
		"Let’s discuss \"{topic}\" with balance. Both sides have valid points—proponents might say it fosters stability, while critics argue it lacks ambition. What’s your perspective?",
		"Your point, \"{message}\", is interesting. A balanced view suggests {topic} could benefit from compromise. Studies show moderate policies often yield sustainable results. How do you respond?",
		"You said \"{message}\". Extremes on {topic} often lead to conflict. Historical compromises, like the U.S. Constitution’s checks, show middle-ground success. Why prefer your stance?",
		"With \"{message}\", we’ve covered {topic} well. As a centrist, I’m out of arguments—let’s evaluate your performance!",
	},
	domain.PersonaLeftist: {
		"On \"{topic}\", I prioritize equity. If {topic} harms marginalized groups, we must act. Data shows 30% of affected populations face disparities. What’s your stance?",
		"Your argument, \"{message}\", raises points, but equity demands more. Policies on {topic} often widen gaps—recent studies confirm this. How do you counter?",
		"Regarding \"{message}\", systemic reform for {topic} is critical. The Civil Rights Movement shows collective action drives change. What evidence supports your view?",
		"Your case, \"{message}\", doesn’t shift my focus on {topic}. I’m out of arguments—let’s see your score!",
	},
	domain.PersonaFarLeftist: {
		"I reject aspects of \"{topic}\" that prop up oppressive systems. It exploits the working class—Marxist critiques highlight this. Prove it doesn’t!",
		"Your point, \"{message}\", sidesteps systemic issues in {topic}. Labor movements of the 1900s show radical change is needed. Justify your position!",
		"With \"{message}\", you miss the need to dismantle {topic}’s structures. The 1917 Russian Revolution proves bold action works. Where’s your counter-evidence?",
		"Your argument, \"{message}\", doesn’t sway my stance on {topic}. I’m out—let’s evaluate!",
	},
	domain.PersonaRightWinger: {
		"For \"{topic}\", I value tradition. If {topic} disrupts norms, it risks stability. Post-WWI shifts caused chaos. What’s your justification?",
		"You said \"{message}\". Individual responsibility trumps collective shifts for {topic}. Free-market data supports this. How do you rebut?",
		"Your point, \"{message}\", overlooks tradition’s role in {topic}. The 1980s Reagan era showed conservative values drive prosperity. Where’s your evidence?",
		"With \"{message}\", my stance on {topic} holds. I’m out of arguments—let’s see your grade!",
	},
	domain.PersonaFarRightWinger: {
		"I oppose progressive views on \"{topic}\"—they threaten identity. If {topic} dilutes culture, Rome’s fall warns us. Prove it’s safe!",
		"Your argument, \"{message}\", ignores heritage in {topic}. Strong nations preserve identity—1920s policies show this. Defend your stance!",
		"With \"{message}\", you miss {topic}’s threat to values. Nationalism’s rise in the 2010s proves borders matter. Where’s your proof?",
		"Your point, \"{message}\", doesn’t change my stance on {topic}. I’m out—let’s grade your debate!",
	},
}

// ClampRound maps a 1-based round number to a reply slot. Every round past
// the last slot selects the concluding reply.
func ClampRound(round int) int {
	slot := round - 1
	if slot < 0 {
		return 0
	}
	if slot > slotCount-1 {
		return slotCount - 1
	}
	return slot
}

// SelectResponse returns the opponent's reply for the given round with topic
// and userMessage interpolated.
func SelectResponse(topic string, personality domain.Persona, round int, userMessage string) (string, error) {
	slots, ok := replies[personality]
	if !ok {
		return "", &InvalidPersonaError{Persona: string(personality)}
	}
	r := strings.NewReplacer("{topic}", topic, "{message}", userMessage)
	return r.Replace(slots[ClampRound(round)]), nil
}
