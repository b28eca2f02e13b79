package dials

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateConfirmRequiresValue(t *testing.T) {
	s := NewState()
	assert.Error(t, s.Confirm(DialPartySize))

	require.NoError(t, s.Set(DialPartySize, 4))
	assert.False(t, s.IsConfirmed(DialPartySize))
	require.NoError(t, s.Confirm(DialPartySize))
	assert.True(t, s.IsConfirmed(DialPartySize))
}

func TestStateRejectsUnknownDial(t *testing.T) {
	s := NewState()
	assert.Error(t, s.Set("difficulty", "hard"))
	assert.Error(t, s.Confirm("difficulty"))
}

func TestStateReset(t *testing.T) {
	s := NewState()
	require.NoError(t, s.Set(DialTone, "grim"))
	require.NoError(t, s.Confirm(DialTone))

	s.Reset()
	_, ok := s.Get(DialTone)
	assert.False(t, ok)
	assert.False(t, s.IsConfirmed(DialTone))
}

func TestStateRoundTrip(t *testing.T) {
	s := NewState()
	require.NoError(t, s.Set(DialPartySize, 4))
	require.NoError(t, s.Set(DialThemes, []string{"betrayal", "mystery"}))
	require.NoError(t, s.Confirm(DialPartySize))

	data, err := s.MarshalBinary()
	require.NoError(t, err)

	restored := NewState()
	require.NoError(t, restored.UnmarshalBinary(data))
	assert.True(t, restored.IsConfirmed(DialPartySize))
	assert.False(t, restored.IsConfirmed(DialThemes))

	v, ok := restored.Get(DialPartySize)
	require.True(t, ok)
	// JSON numbers decode as float64; callers normalize on read.
	assert.EqualValues(t, 4, v)
}

func TestComposePerDial(t *testing.T) {
	s := NewState()
	assert.Contains(t, Compose(DialPartySize, s), "players")
	assert.Contains(t, Compose(DialPartyTier, s), "tier")
	assert.Contains(t, Compose(DialSceneCount, s), "scenes")
	assert.Contains(t, Compose(DialSessionLength, s), "one-shot")
	assert.Contains(t, Compose(DialTone, s), "tone")
	assert.Contains(t, Compose(DialThemes, s), "themes")
}

func TestComposeCompletion(t *testing.T) {
	s := NewState()
	require.NoError(t, s.Set(DialTone, "grim and gray"))
	msg := Compose("", s)
	assert.Contains(t, msg, "complete")
	assert.Contains(t, msg, "grim and gray")
}
