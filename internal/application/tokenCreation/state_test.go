package tokenCreation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_ForwardOnly(t *testing.T) {
	r := newRun("test", nil)
	require.NoError(t, r.advance(StateValidating))
	require.NoError(t, r.advance(StateAssemblingTransaction))

	assert.Error(t, r.advance(StateUploadingMetadata))
	assert.Error(t, r.advance(StateAssemblingTransaction))
	assert.Equal(t, StateAssemblingTransaction, r.state)
}

func TestRun_TerminalStatesAreFinal(t *testing.T) {
	r := newRun("test", nil)
	r.must(StateValidating)
	r.fail()
	assert.Equal(t, StateFailed, r.state)

	assert.Error(t, r.advance(StateSucceeded))
	assert.Error(t, r.advance(StateFailed))
	assert.NotPanics(t, r.fail)

	assert.Equal(t, []State{StateIdle, StateValidating, StateFailed}, r.history)
}

func TestRun_ObserverSeesEveryTransition(t *testing.T) {
	var got [][2]State
	r := newRun("test", func(from, to State) { got = append(got, [2]State{from, to}) })
	r.must(StateValidating)
	r.must(StateSucceeded)

	assert.Equal(t, [][2]State{
		{StateIdle, StateValidating},
		{StateValidating, StateSucceeded},
	}, got)
	assert.Panics(t, func() { r.must(StateConfirming) })
}
