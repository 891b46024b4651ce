// Package trainer runs debates: it validates requests, calls the scripted
// opponent and the grader, and persists transcripts through a store.Repository.
package trainer

import (
	"errors"
	"strings"
)

var (
	// ErrUnauthorized covers both a missing debate and a debate owned by
	// someone else, so callers cannot probe for other users' debate IDs.
	ErrUnauthorized = errors.New("invalid debate or unauthorized")

	// ErrDebateEnded is returned when a sealed debate is asked to change.
	ErrDebateEnded = errors.New("debate already ended")

	// ErrBusy is returned when another request is already updating the debate.
	ErrBusy = errors.New("debate update in progress")
)

// ValidationError reports missing required request fields.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "missing required fields: " + strings.Join(e.Fields, ", ")
}

// required returns a ValidationError naming every blank field, or nil.
// Pairs are name, value.
func required(pairs ...string) error {
	var missing []string
	for i := 0; i+1 < len(pairs); i += 2 {
		if strings.TrimSpace(pairs[i+1]) == "" {
			missing = append(missing, pairs[i])
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return &ValidationError{Fields: missing}
}
