package machine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testState string

const (
	statePending   testState = "Pending"
	stateSubmitted testState = "Submitted"
	stateCanceled  testState = "Canceled"
	stateDone      testState = "Done"
)

func newTestMachine(start testState) *StateMachine[testState] {
	return New(start,
		From(statePending).To(stateSubmitted),
		From(stateSubmitted).To(stateDone, stateCanceled),
	)
}

func TestNewStateMachine(t *testing.T) {
	t.Run("valid transition", func(t *testing.T) {
		machine := newTestMachine(statePending)
		assert.Len(t, machine.transitions, 2)

		err := machine.ToState(stateSubmitted)
		require.NoError(t, err)
		assert.Equal(t, stateSubmitted, machine.State())
	})

	t.Run("invalid transition", func(t *testing.T) {
		machine := newTestMachine(stateSubmitted)

		err := machine.ToState(statePending)
		assert.ErrorIs(t, err, ErrInvalidTransition)
		assert.Equal(t, stateSubmitted, machine.State())
	})

	t.Run("chained transitions", func(t *testing.T) {
		machine := newTestMachine(statePending)

		require.NoError(t, machine.ToState(stateSubmitted))
		require.NoError(t, machine.ToState(stateDone))
		assert.ErrorIs(t, machine.ToState(stateCanceled), ErrInvalidTransition)
		assert.Equal(t, stateDone, machine.State())
	})

	t.Run("can transition does not move state", func(t *testing.T) {
		machine := newTestMachine(statePending)

		assert.NoError(t, machine.CanTransition(stateSubmitted))
		assert.Equal(t, statePending, machine.State())
	})
}
