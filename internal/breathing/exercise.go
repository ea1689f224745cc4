// Package breathing drives guided breathing exercises as a phase state machine.
package breathing

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrZeroCycle        = errors.New("breathing pattern has no non-zero phase")
	ErrNegativeDuration = errors.New("breathing phase duration cannot be negative")
	ErrUnknownExercise  = errors.New("unknown breathing exercise")
)

type Phase int

const (
	Inhale Phase = iota
	Hold1
	Exhale
	Hold2
)

var phaseNames = [...]string{"inhale", "hold1", "exhale", "hold2"}

func (p Phase) String() string {
	if p < Inhale || p > Hold2 {
		return fmt.Sprintf("phase(%d)", int(p))
	}
	return phaseNames[p]
}

func (p Phase) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

// Next returns the phase that follows p in the fixed cycle order.
func (p Phase) Next() Phase { return (p + 1) % 4 }

// Pattern holds per-phase durations in whole seconds. Zero skips the phase.
type Pattern struct {
	Inhale int `json:"inhale"`
	Hold1  int `json:"hold1"`
	Exhale int `json:"exhale"`
	Hold2  int `json:"hold2"`
}

func (p Pattern) seconds(ph Phase) int {
	switch ph {
	case Inhale:
		return p.Inhale
	case Hold1:
		return p.Hold1
	case Exhale:
		return p.Exhale
	default:
		return p.Hold2
	}
}

// For returns how long ph lasts.
func (p Pattern) For(ph Phase) time.Duration {
	return time.Duration(p.seconds(ph)) * time.Second
}

// CycleLength is the time one full inhale-to-inhale cycle takes.
func (p Pattern) CycleLength() time.Duration {
	return time.Duration(p.Inhale+p.Hold1+p.Exhale+p.Hold2) * time.Second
}

// Validate rejects patterns that would spin without ever waiting.
func (p Pattern) Validate() error {
	if p.Inhale < 0 || p.Hold1 < 0 || p.Exhale < 0 || p.Hold2 < 0 {
		return ErrNegativeDuration
	}
	if p.CycleLength() == 0 {
		return ErrZeroCycle
	}
	return nil
}

type Exercise struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Pattern     Pattern  `json:"pattern"`
	Benefits    []string `json:"benefits"`
}

var catalog = []Exercise{
	{
		ID:          "box",
		Name:        "Box Breathing",
		Description: "Equal counts in, hold, out and hold. Steadies attention under stress.",
		Pattern:     Pattern{Inhale: 4, Hold1: 4, Exhale: 4, Hold2: 4},
		Benefits:    []string{"Reduces stress", "Improves focus"},
	},
	{
		ID:          "relaxing-478",
		Name:        "4-7-8 Relaxing Breath",
		Description: "A long hold and slow exhale that helps the body wind down.",
		Pattern:     Pattern{Inhale: 4, Hold1: 7, Exhale: 8},
		Benefits:    []string{"Helps with sleep", "Eases anxiety"},
	},
	{
		ID:          "calming",
		Name:        "Calming Breath",
		Description: "Even breathing in and out with no holds.",
		Pattern:     Pattern{Inhale: 4, Exhale: 4},
		Benefits:    []string{"Quick reset", "Lowers heart rate"},
	},
	{
		ID:          "energizing",
		Name:        "Energizing Breath",
		Description: "Short inhale, brief hold and quick exhale to lift energy.",
		Pattern:     Pattern{Inhale: 2, Hold1: 1, Exhale: 2},
		Benefits:    []string{"Boosts alertness"},
	},
}

// Catalog returns a copy of the built-in exercises.
func Catalog() []Exercise {
	out := make([]Exercise, len(catalog))
	copy(out, catalog)
	return out
}

func Lookup(id string) (Exercise, error) {
	for _, ex := range catalog {
		if ex.ID == id {
			return ex, nil
		}
	}
	return Exercise{}, fmt.Errorf("%w: %q", ErrUnknownExercise, id)
}
