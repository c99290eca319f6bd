package machine

import (
	"errors"
	"fmt"
)

type State interface {
	~string
}

// Allowable maps where a from state is allowed to transition to
type Allowable[S State] struct {
	from S
	to   []S
}

// StateMachine tracks a current state and the transitions allowed out of it
type StateMachine[S State] struct {
	current     S
	transitions []Allowable[S]
}

var (
	ErrInvalidTransition = errors.New("invalid state transition")
)

// TransitionBuilder helps in creating a from-to relationship for state transitions
type TransitionBuilder[S State] struct {
	transition Allowable[S]
}

func New[S State](currentState S, transitions ...Allowable[S]) *StateMachine[S] {
	return &StateMachine[S]{current: currentState, transitions: transitions}
}

// From initializes a transition from a specific state
func From[S State](from S) *TransitionBuilder[S] {
	return &TransitionBuilder[S]{transition: Allowable[S]{from: from}}
}

// To sets the possible destination states and returns the configured transition
func (tb *TransitionBuilder[S]) To(to ...S) Allowable[S] {
	tb.transition.to = to
	return tb.transition
}

// State returns the current state
func (m *StateMachine[S]) State() S {
	return m.current
}

// CanTransition determines if the current state can transition to s
func (m *StateMachine[S]) CanTransition(s S) error {
	for _, transition := range m.transitions {
		if transition.from != m.current {
			continue
		}

		for _, to := range transition.to {
			if to == s {
				return nil
			}
		}
	}

	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, m.current, s)
}

// ToState moves the machine to s if the transition is allowed
func (m *StateMachine[S]) ToState(s S) error {
	if err := m.CanTransition(s); err != nil {
		return err
	}
	m.current = s
	return nil
}
