package optimistic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNext_ConfirmPath(t *testing.T) {
	s := Idle
	for _, e := range []Event{EventStart, EventPredicted, EventSucceeded} {
		var err error
		s, err = Next(s, e)
		require.NoError(t, err)
	}
	assert.Equal(t, Confirmed, s)

	s, err := Next(s, EventSettled)
	require.NoError(t, err)
	assert.Equal(t, Idle, s)
}

func TestNext_RollbackPath(t *testing.T) {
	s := Idle
	for _, e := range []Event{EventStart, EventPredicted, EventFailed} {
		var err error
		s, err = Next(s, e)
		require.NoError(t, err)
	}
	assert.Equal(t, RolledBack, s)

	s, err := Next(s, EventSettled)
	require.NoError(t, err)
	assert.Equal(t, Idle, s)
}

func TestNext_InvalidTransitions(t *testing.T) {
	tests := []struct {
		state State
		event Event
	}{
		{Idle, EventSucceeded},
		{Idle, EventSettled},
		{Predicting, EventFailed},
		{RemotePending, EventStart},
		{Confirmed, EventFailed},
		{RolledBack, EventSucceeded},
	}

	for _, tt := range tests {
		t.Run(tt.state.String()+"/"+tt.event.String(), func(t *testing.T) {
			next, err := Next(tt.state, tt.event)
			assert.Error(t, err)
			assert.Equal(t, tt.state, next)
		})
	}
}
