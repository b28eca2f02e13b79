package dials

import (
	"sort"
	"strconv"
	"strings"
)

// Confidence grades how certain the interpreter is about an extraction.
type Confidence string

const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// Update is the transient result of interpreting one utterance against
// one dial. It is merged into the session state by the caller and not
// retained.
type Update struct {
	DialID     string      `json:"dialId"`
	Value      interface{} `json:"value"`
	Confidence Confidence  `json:"confidence"`
}

// Interpret extracts a candidate value for the given dial from a
// free-text utterance. It returns nil when nothing usable was found:
// out-of-range numbers, ambiguous enum matches and empty inputs are all
// rejected rather than coerced. Pure function of its inputs.
func Interpret(dialID, utterance string) *Update {
	spec := Lookup(dialID)
	if spec == nil {
		return nil
	}

	switch spec.Kind {
	case KindNumeric:
		return interpretNumeric(spec, utterance)
	case KindEnum:
		return interpretEnum(spec, utterance)
	case KindFreeText:
		return interpretFreeText(spec, utterance)
	case KindMultiSelect:
		return interpretMultiSelect(spec, utterance)
	}
	return nil
}

func interpretNumeric(spec *Spec, utterance string) *Update {
	for _, token := range strings.Fields(strings.ToLower(utterance)) {
		token = strings.Trim(token, ".,!?:;()\"'")

		if n, err := strconv.Atoi(token); err == nil {
			if n < spec.Min || n > spec.Max {
				return nil
			}
			return &Update{DialID: spec.ID, Value: n, Confidence: ConfidenceHigh}
		}

		if n, ok := numberWords[token]; ok {
			if n < spec.Min || n > spec.Max {
				return nil
			}
			return &Update{DialID: spec.ID, Value: n, Confidence: ConfidenceMedium}
		}
	}
	return nil
}

func interpretEnum(spec *Spec, utterance string) *Update {
	lower := strings.ToLower(utterance)

	var matched string
	for _, value := range spec.Values {
		if !enumValueMentioned(lower, value) {
			continue
		}
		if matched != "" && matched != value {
			// Two distinct values mentioned: ambiguous, let the
			// user restate instead of guessing.
			return nil
		}
		matched = value
	}
	if matched == "" {
		return nil
	}
	return &Update{DialID: spec.ID, Value: matched, Confidence: ConfidenceHigh}
}

// enumValueMentioned reports whether an allowed enum value appears in the
// utterance, either literally ("campaign", "one-shot", "one shot") or as
// a prefixed keyword ("tier 2", "level 3").
func enumValueMentioned(lower, value string) bool {
	if wordIndex(lower, value) >= 0 {
		return true
	}
	if spaced := strings.ReplaceAll(value, "-", " "); spaced != value && wordIndex(lower, spaced) >= 0 {
		return true
	}
	for _, prefix := range []string{"tier ", "level "} {
		if wordIndex(lower, prefix+value) >= 0 {
			return true
		}
	}
	return false
}

// wordIndex locates phrase in s on word boundaries, so "war" does not
// fire inside "dwarf" and "2" does not fire inside "2024". Returns -1
// when phrase never appears as whole words. Both arguments must already
// be lowercase.
func wordIndex(s, phrase string) int {
	for start := 0; ; {
		i := strings.Index(s[start:], phrase)
		if i < 0 {
			return -1
		}
		i += start
		end := i + len(phrase)
		if (i == 0 || isWordBreak(s[i-1])) && (end == len(s) || isWordBreak(s[end])) {
			return i
		}
		start = i + 1
	}
}

func isWordBreak(b byte) bool {
	return !('a' <= b && b <= 'z' || '0' <= b && b <= '9')
}

func interpretFreeText(spec *Spec, utterance string) *Update {
	lower := strings.ToLower(utterance)

	for _, ref := range toneReferences {
		if wordIndex(lower, ref.Alias) >= 0 {
			normalized := ref.Feel + ", in the spirit of " + ref.Name
			return &Update{DialID: spec.ID, Value: normalized, Confidence: ConfidenceHigh}
		}
	}

	trimmed := strings.TrimSpace(utterance)
	if trimmed == "" {
		return nil
	}
	return &Update{DialID: spec.ID, Value: trimmed, Confidence: ConfidenceLow}
}

func interpretMultiSelect(spec *Spec, utterance string) *Update {
	lower := strings.ToLower(utterance)

	type hit struct {
		pos   int
		theme string
	}
	var hits []hit
	seen := make(map[string]bool)

	for _, entry := range themeVocabulary {
		pos := wordIndex(lower, entry.Alias)
		if pos < 0 || seen[entry.Theme] {
			continue
		}
		seen[entry.Theme] = true
		hits = append(hits, hit{pos: pos, theme: entry.Theme})
	}
	if len(hits) == 0 {
		return nil
	}

	// First-seen order in the utterance, capped at the dial's maximum.
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].pos < hits[j].pos })
	max := spec.MaxSelections
	if max > 0 && len(hits) > max {
		hits = hits[:max]
	}

	themes := make([]string, len(hits))
	for i, h := range hits {
		themes[i] = h.theme
	}
	return &Update{DialID: spec.ID, Value: themes, Confidence: ConfidenceMedium}
}
