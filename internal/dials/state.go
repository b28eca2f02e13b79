package dials

import (
	"encoding/json"
	"fmt"
)

// State holds the per-session dial values and confirmation set. A value
// may be set without being confirmed (tentative); confirming requires a
// prior value. State is owned by exactly one session and is not safe for
// concurrent use by itself.
type State struct {
	Values    map[string]interface{} `json:"values"`
	Confirmed map[string]bool        `json:"confirmed"`
}

// NewState returns an empty dial state.
func NewState() *State {
	return &State{
		Values:    make(map[string]interface{}),
		Confirmed: make(map[string]bool),
	}
}

// Set records a tentative value for a dial. Unknown dials are rejected.
func (s *State) Set(dialID string, value interface{}) error {
	if Lookup(dialID) == nil {
		return fmt.Errorf("unknown dial: %s", dialID)
	}
	s.Values[dialID] = value
	return nil
}

// Get returns the current value for a dial, if any.
func (s *State) Get(dialID string) (interface{}, bool) {
	v, ok := s.Values[dialID]
	return v, ok
}

// Confirm marks a dial's current value as accepted by the user.
// Confirming a dial that has no value is an error.
func (s *State) Confirm(dialID string) error {
	if Lookup(dialID) == nil {
		return fmt.Errorf("unknown dial: %s", dialID)
	}
	if _, ok := s.Values[dialID]; !ok {
		return fmt.Errorf("cannot confirm dial %s without a value", dialID)
	}
	s.Confirmed[dialID] = true
	return nil
}

// IsConfirmed reports whether a dial has been confirmed.
func (s *State) IsConfirmed(dialID string) bool {
	return s.Confirmed[dialID]
}

// AllConfirmed reports whether every dial in the schema is confirmed.
func (s *State) AllConfirmed() bool {
	for _, id := range PriorityOrder {
		if !s.Confirmed[id] {
			return false
		}
	}
	return true
}

// Reset clears all values and confirmations.
func (s *State) Reset() {
	s.Values = make(map[string]interface{})
	s.Confirmed = make(map[string]bool)
}

// MarshalBinary implements encoding.BinaryMarshaler so the state can be
// stored directly in Redis.
func (s *State) MarshalBinary() ([]byte, error) {
	return json.Marshal(s)
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (s *State) UnmarshalBinary(data []byte) error {
	if err := json.Unmarshal(data, s); err != nil {
		return err
	}
	if s.Values == nil {
		s.Values = make(map[string]interface{})
	}
	if s.Confirmed == nil {
		s.Confirmed = make(map[string]bool)
	}
	return nil
}
