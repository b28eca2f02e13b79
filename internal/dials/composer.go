package dials

import (
	"fmt"
	"strings"
)

// Compose builds the assistant's reply for the dial currently in focus.
// An empty focus means configuration is complete. The text is
// deterministic; callers that want variety layer an LLM on top.
func Compose(focus string, state *State) string {
	switch focus {
	case DialPartySize:
		return "How many players will be at the table? Most adventures play best with 2 to 6."
	case DialPartyTier:
		return "What tier is the party? Tier 1 covers fresh adventurers, tier 4 the world-shakers."
	case DialSceneCount:
		return "How many scenes should the adventure run? Somewhere between 3 and 6 works well."
	case DialSessionLength:
		return "Is this a one-shot, a two-session arc, or the opening of a campaign?"
	case DialTone:
		return "What tone are you going for? You can name a touchstone, like The Witcher or Studio Ghibli."
	case DialThemes:
		return "Which themes should run through the adventure? Pick up to three, like betrayal, redemption, or found family."
	case "":
		return summarize(state)
	default:
		return fmt.Sprintf("Tell me more about %s.", focus)
	}
}

func summarize(state *State) string {
	var b strings.Builder
	b.WriteString("All set! The adventure configuration is complete")
	if tone, ok := state.Get(DialTone); ok {
		fmt.Fprintf(&b, ", %v through and through", tone)
	}
	b.WriteString(". Ready to draft the outline whenever you are.")
	return b.String()
}
