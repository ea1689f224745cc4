package breathing

import (
	"sync"
	"time"
)

// State is a read-only snapshot of a Session.
type State struct {
	ExerciseID      string    `json:"exercise_id,omitempty"`
	Phase           Phase     `json:"phase"`
	CyclesCompleted int       `json:"cycles_completed"`
	Active          bool      `json:"active"`
	PhaseStartedAt  time.Time `json:"phase_started_at,omitempty"`
	PhaseEndsAt     time.Time `json:"phase_ends_at,omitempty"`
}

// Session is a breathing exercise in progress. Exactly one transition is
// pending while it is active; Start, Advance and Stop cancel it before
// scheduling another, and a callback from a replaced timer does nothing.
type Session struct {
	mu       sync.Mutex
	sched    Scheduler
	onChange func(State)

	exercise Exercise
	state    State
	gen      uint64
	timer    Timer
}

// NewSession creates an idle session. onChange, if set, receives every state
// the session enters and is called without the session lock held.
func NewSession(sched Scheduler, onChange func(State)) *Session {
	if sched == nil {
		sched = SystemScheduler{}
	}
	return &Session{sched: sched, onChange: onChange}
}

// Start begins ex from inhale with zero cycles. A running exercise is stopped
// first so two timer chains never overlap.
func (s *Session) Start(ex Exercise) error {
	if err := ex.Pattern.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	s.cancelLocked()
	s.exercise = ex
	s.state = State{
		ExerciseID: ex.ID,
		Phase:      Inhale,
		Active:     true,
	}
	if ex.Pattern.For(Inhale) == 0 {
		s.stepLocked()
	}
	s.scheduleLocked()
	st := s.state
	s.mu.Unlock()

	s.notify(st)
	return nil
}

// Advance moves to the next non-zero phase immediately, as if the pending
// timer had fired. It does nothing when the session is idle.
func (s *Session) Advance() State {
	s.mu.Lock()
	if !s.state.Active {
		st := s.state
		s.mu.Unlock()
		return st
	}
	s.cancelLocked()
	s.stepLocked()
	s.scheduleLocked()
	st := s.state
	s.mu.Unlock()

	s.notify(st)
	return st
}

// Stop cancels the pending transition and resets the phase. The completed
// cycle count stays readable until the next Start.
func (s *Session) Stop() State {
	s.mu.Lock()
	wasActive := s.state.Active
	s.cancelLocked()
	s.state.Active = false
	s.state.Phase = Inhale
	s.state.PhaseStartedAt = time.Time{}
	s.state.PhaseEndsAt = time.Time{}
	st := s.state
	s.mu.Unlock()

	if wasActive {
		s.notify(st)
	}
	return st
}

func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Exercise returns the exercise most recently started.
func (s *Session) Exercise() Exercise {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.exercise
}

// stepLocked enters the next phase with a non-zero duration, counting a cycle
// each time inhale is re-entered. Validate guarantees termination.
func (s *Session) stepLocked() {
	for {
		s.state.Phase = s.state.Phase.Next()
		if s.state.Phase == Inhale {
			s.state.CyclesCompleted++
		}
		if s.exercise.Pattern.For(s.state.Phase) > 0 {
			return
		}
	}
}

func (s *Session) scheduleLocked() {
	s.gen++
	gen := s.gen
	d := s.exercise.Pattern.For(s.state.Phase)
	now := s.sched.Now()
	s.state.PhaseStartedAt = now
	s.state.PhaseEndsAt = now.Add(d)
	s.timer = s.sched.AfterFunc(d, func() { s.fire(gen) })
}

func (s *Session) cancelLocked() {
	s.gen++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

func (s *Session) fire(gen uint64) {
	s.mu.Lock()
	if !s.state.Active || gen != s.gen {
		s.mu.Unlock()
		return
	}
	s.stepLocked()
	s.scheduleLocked()
	st := s.state
	s.mu.Unlock()

	s.notify(st)
}

func (s *Session) notify(st State) {
	if s.onChange != nil {
		s.onChange(st)
	}
}

// Step is one phase of a precomputed timeline.
type Step struct {
	Phase    Phase         `json:"phase"`
	Cycle    int           `json:"cycle"`
	Offset   time.Duration `json:"offset"`
	Duration time.Duration `json:"duration"`
}

// Timeline lists the phases of ex for the given number of cycles by running a
// Session on a virtual clock.
func Timeline(ex Exercise, cycles int) ([]Step, error) {
	if err := ex.Pattern.Validate(); err != nil {
		return nil, err
	}
	if cycles <= 0 {
		return nil, nil
	}

	start := time.Unix(0, 0).UTC()
	clock := NewManualScheduler(start)
	var steps []Step
	sess := NewSession(clock, func(st State) {
		if !st.Active || st.CyclesCompleted >= cycles {
			return
		}
		steps = append(steps, Step{
			Phase:    st.Phase,
			Cycle:    st.CyclesCompleted + 1,
			Offset:   st.PhaseStartedAt.Sub(start),
			Duration: st.PhaseEndsAt.Sub(st.PhaseStartedAt),
		})
	})
	if err := sess.Start(ex); err != nil {
		return nil, err
	}
	for sess.Snapshot().CyclesCompleted < cycles {
		if !clock.FireNext() {
			break
		}
	}
	sess.Stop()
	return steps, nil
}
