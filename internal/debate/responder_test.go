package debate

import (
	"errors"
	"strings"
	"testing"

	"github.com/ashureev/debate-trainer/internal/domain"
)

func TestSelectResponseClampsLateRounds(t *testing.T) {
	t.Parallel()

	for _, p := range domain.Personas() {
		final, err := SelectResponse("taxes", p, 4, "msg")
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", p, err)
		}
		for _, round := range []int{5, 6, 10, 1000} {
			got, err := SelectResponse("taxes", p, round, "msg")
			if err != nil {
				t.Fatalf("%s round %d: unexpected error: %v", p, round, err)
			}
			if got != final {
				t.Errorf("%s round %d: expected final reply %q, got %q", p, round, final, got)
			}
		}
	}
}

func TestSelectResponseCentristOpening(t *testing.T) {
	t.Parallel()

	got, err := SelectResponse("X", domain.PersonaCentrist, 1, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "Let’s discuss \"X\" with balance. Both sides have valid points—proponents might say it fosters stability, while critics argue it lacks ambition. What’s your perspective?"
	if got != want {
		t.Fatalf("unexpected opening:\n got: %q\nwant: %q", got, want)
	}
}

func TestSelectResponseInterpolatesPlaceholders(t *testing.T) {
	t.Parallel()

	const topic = "universal basic income"
	const msg = "it reduces poverty"
	for p, slots := range replies {
		for i, tpl := range slots {
			got, err := SelectResponse(topic, p, i+1, msg)
			if err != nil {
				t.Fatalf("%s slot %d: unexpected error: %v", p, i, err)
			}
			if strings.Contains(tpl, "{topic}") && !strings.Contains(got, topic) {
				t.Errorf("%s slot %d: topic missing from %q", p, i, got)
			}
			if strings.Contains(tpl, "{message}") && !strings.Contains(got, msg) {
				t.Errorf("%s slot %d: message missing from %q", p, i, got)
			}
			if strings.Contains(got, "{topic}") || strings.Contains(got, "{message}") {
				t.Errorf("%s slot %d: placeholder left in %q", p, i, got)
			}
		}
	}
}

func TestSelectResponseDoesNotReexpandInput(t *testing.T) {
	t.Parallel()

	got, err := SelectResponse("{message}", domain.PersonaLeftist, 2, "hello")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(got, "Policies on {message} often widen gaps") {
		t.Fatalf("topic was re-expanded: %q", got)
	}
}

func TestSelectResponseInvalidPersona(t *testing.T) {
	t.Parallel()

	_, err := SelectResponse("X", domain.Persona("libertarian"), 1, "")
	if !errors.Is(err, ErrInvalidPersona) {
		t.Fatalf("expected ErrInvalidPersona, got %v", err)
	}
	var ipe *InvalidPersonaError
	if !errors.As(err, &ipe) || ipe.Persona != "libertarian" {
		t.Fatalf("expected InvalidPersonaError for libertarian, got %#v", err)
	}
}

func TestEveryPersonaHasFourReplies(t *testing.T) {
	t.Parallel()

	if len(replies) != len(domain.Personas()) {
		t.Fatalf("expected %d personas, got %d", len(domain.Personas()), len(replies))
	}
	for _, p := range domain.Personas() {
		slots, ok := replies[p]
		if !ok {
			t.Fatalf("missing replies for %s", p)
		}
		for i, s := range slots {
			if s == "" {
				t.Errorf("%s slot %d is empty", p, i)
			}
		}
	}
}

func TestClampRound(t *testing.T) {
	t.Parallel()

	tests := []struct {
		round int
		want  int
	}{
		{round: -3, want: 0},
		{round: 0, want: 0},
		{round: 1, want: 0},
		{round: 2, want: 1},
		{round: 3, want: 2},
		{round: 4, want: 3},
		{round: 9, want: 3},
	}
	for _, tt := range tests {
		if got := ClampRound(tt.round); got != tt.want {
			t.Errorf("ClampRound(%d) = %d, want %d", tt.round, got, tt.want)
		}
	}
}

func TestParsePersona(t *testing.T) {
	t.Parallel()

	p, err := ParsePersona("far-right-winger")
	if err != nil || p != domain.PersonaFarRightWinger {
		t.Fatalf("expected far-right-winger, got %q, %v", p, err)
	}
	if _, err := ParsePersona("Centrist"); !errors.Is(err, ErrInvalidPersona) {
		t.Fatalf("expected persona match to be case sensitive, got %v", err)
	}
}
