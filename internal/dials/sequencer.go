package dials

// NextFocus determines which dial should be solicited next. A caller
// suggestion wins as long as that dial is still unconfirmed; otherwise
// the first unconfirmed dial in priority order is chosen. The second
// return value is false once every dial has been confirmed.
func NextFocus(state *State, suggested string) (string, bool) {
	if suggested != "" && Lookup(suggested) != nil && !state.IsConfirmed(suggested) {
		return suggested, true
	}
	for _, id := range PriorityOrder {
		if !state.IsConfirmed(id) {
			return id, true
		}
	}
	return "", false
}
