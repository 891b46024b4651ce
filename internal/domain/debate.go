package domain

import (
	"time"
)

// Persona is the debate style the scripted opponent adopts.
type Persona string

const (
	PersonaCentrist       Persona = "centrist"
	PersonaLeftist        Persona = "leftist"
	PersonaFarLeftist     Persona = "far-leftist"
	PersonaRightWinger    Persona = "right-winger"
	PersonaFarRightWinger Persona = "far-right-winger"
)

// Personas returns every supported persona in display order.
func Personas() []Persona {
	return []Persona{
		PersonaCentrist,
		PersonaLeftist,
		PersonaFarLeftist,
		PersonaRightWinger,
		PersonaFarRightWinger,
	}
}

// Valid reports whether p is one of the supported personas.
func (p Persona) Valid() bool {
	for _, known := range Personas() {
		if p == known {
			return true
		}
	}
	return false
}

// Speaker identifies who produced a turn.
type Speaker string

const (
	SpeakerAI   Speaker = "AI"
	SpeakerUser Speaker = "User"
)

// MaxRounds is the last round in which the opponent still argues back.
// A response that would move the debate past it concludes the debate.
const MaxRounds = 3

// Turn is one message in a debate transcript. Turns are append-only.
type Turn struct {
	Speaker   Speaker   `json:"speaker"`
	Argument  string    `json:"argument"`
	Timestamp time.Time `json:"timestamp"`
}

// Grade is the letter grade awarded when a debate is sealed.
type Grade string

const (
	GradeA Grade = "A"
	GradeB Grade = "B"
	GradeC Grade = "C"
	GradeD Grade = "D"
)

// Debate is the persisted transcript of one debate.
type Debate struct {
	ID               string    `json:"debateId"`
	UserID           string    `json:"userId"`
	Topic            string    `json:"topic"`
	Personality      Persona   `json:"personality"`
	History          []Turn    `json:"history"`
	Round            int       `json:"round"`
	Ended            bool      `json:"ended"`
	Grade            Grade     `json:"grade,omitempty"`
	GradeDescription string    `json:"gradeDescription,omitempty"`
	ImprovementTips  []string  `json:"improvementTips,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// AddTurn appends a turn stamped with at.
func (d *Debate) AddTurn(speaker Speaker, argument string, at time.Time) {
	d.History = append(d.History, Turn{
		Speaker:   speaker,
		Argument:  argument,
		Timestamp: at,
	})
}

// Seal marks the debate as ended and records the grade.
func (d *Debate) Seal(report GradeReport) {
	d.Ended = true
	d.Grade = report.Grade
	d.GradeDescription = report.Description
	d.ImprovementTips = append([]string(nil), report.ImprovementTips...)
}

// Evaluation classifies a single user statement.
type Evaluation struct {
	LogicalTrap bool `json:"logicalTrap"`
	Emotional   bool `json:"emotional"`
	Evidence    bool `json:"evidence"`
}

// GradeReport is the outcome of grading a transcript.
type GradeReport struct {
	Grade           Grade    `json:"grade"`
	Description     string   `json:"gradeDescription"`
	ImprovementTips []string `json:"improvementTips"`
	Score           int      `json:"score"`
}
