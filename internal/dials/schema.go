package dials

// Kind describes how a dial's value is shaped and interpreted.
type Kind string

const (
	KindNumeric     Kind = "numeric"
	KindEnum        Kind = "enum"
	KindFreeText    Kind = "free_text"
	KindMultiSelect Kind = "multi_select"
)

// Well-known dial identifiers.
const (
	DialPartySize     = "partySize"
	DialPartyTier     = "partyTier"
	DialSceneCount    = "sceneCount"
	DialSessionLength = "sessionLength"
	DialTone          = "tone"
	DialThemes        = "themes"
)

// Spec describes one configurable adventure parameter.
type Spec struct {
	ID            string
	Kind          Kind
	Min           int      // numeric dials only
	Max           int      // numeric dials only
	Values        []string // enum dials only
	MaxSelections int      // multi-select dials only
}

// Schema is the fixed dial schema in presentation priority order.
// Loaded once at startup, never mutated.
var Schema = []Spec{
	{ID: DialPartySize, Kind: KindNumeric, Min: 2, Max: 6},
	{ID: DialPartyTier, Kind: KindEnum, Values: []string{"1", "2", "3", "4"}},
	{ID: DialSceneCount, Kind: KindNumeric, Min: 3, Max: 6},
	{ID: DialSessionLength, Kind: KindEnum, Values: []string{"one-shot", "two-session", "campaign"}},
	{ID: DialTone, Kind: KindFreeText},
	{ID: DialThemes, Kind: KindMultiSelect, MaxSelections: 3},
}

// PriorityOrder lists dial identifiers in the order they are solicited.
var PriorityOrder = func() []string {
	ids := make([]string, len(Schema))
	for i, s := range Schema {
		ids[i] = s.ID
	}
	return ids
}()

// Lookup returns the spec for a dial identifier, or nil when unknown.
func Lookup(dialID string) *Spec {
	for i := range Schema {
		if Schema[i].ID == dialID {
			return &Schema[i]
		}
	}
	return nil
}

// themeVocabulary maps utterance keywords (including multi-word aliases)
// to canonical theme identifiers. Scanned in declaration order so the
// first-seen rule is deterministic for overlapping aliases.
var themeVocabulary = []struct {
	Alias string
	Theme string
}{
	{"found family", "found-family"},
	{"political intrigue", "political-intrigue"},
	{"ancient evil", "ancient-evil"},
	{"coming of age", "coming-of-age"},
	{"betrayal", "betrayal"},
	{"redemption", "redemption"},
	{"revenge", "revenge"},
	{"mystery", "mystery"},
	{"sacrifice", "sacrifice"},
	{"corruption", "corruption"},
	{"survival", "survival"},
	{"exploration", "exploration"},
	{"war", "war"},
	{"intrigue", "political-intrigue"},
	{"romance", "romance"},
	{"horror", "horror"},
}

// toneReferences maps lowercase aliases of named works/authors to the
// display name surfaced back to the user.
var toneReferences = []struct {
	Alias string
	Name  string
	Feel  string
}{
	{"the witcher", "The Witcher", "grim and morally gray"},
	{"witcher", "The Witcher", "grim and morally gray"},
	{"studio ghibli", "Studio Ghibli", "whimsical and gentle"},
	{"ghibli", "Studio Ghibli", "whimsical and gentle"},
	{"princess bride", "The Princess Bride", "swashbuckling and witty"},
	{"game of thrones", "Game of Thrones", "political and brutal"},
	{"lord of the rings", "The Lord of the Rings", "epic and hopeful"},
	{"tolkien", "The Lord of the Rings", "epic and hopeful"},
	{"lovecraft", "Lovecraft", "creeping cosmic dread"},
	{"indiana jones", "Indiana Jones", "pulpy and adventurous"},
	{"dark souls", "Dark Souls", "bleak and unforgiving"},
	{"terry pratchett", "Terry Pratchett", "absurd and warm-hearted"},
	{"pratchett", "Terry Pratchett", "absurd and warm-hearted"},
}

// numberWords covers the written numerals the interpreter accepts.
var numberWords = map[string]int{
	"one":   1,
	"two":   2,
	"three": 3,
	"four":  4,
	"five":  5,
	"six":   6,
}
