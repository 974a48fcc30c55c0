package extract

import "strings"

// Entry is one recognized food of the extraction lexicon: the display name
// used downstream for knowledge-base resolution, plus every surface form
// (singular, plural, umlaut plural) that should trigger a match.
type Entry struct {
	Display string
	Terms   []string
}

// Lexicon is the ordered set of recognized foods. Order matters only for
// deterministic output; matching itself is per-entry.
type Lexicon []Entry

func entry(display string, extraTerms ...string) Entry {
	terms := append([]string{strings.ToLower(display)}, extraTerms...)
	return Entry{Display: display, Terms: terms}
}

// DefaultLexicon returns the built-in German food lexicon. Display names line
// up with the curated knowledge-base records so extracted mentions resolve
// without an extra mapping step.
func DefaultLexicon() Lexicon {
	return Lexicon{
		entry("Apfel", "äpfel"),
		entry("Banane", "bananen"),
		entry("Birne", "birnen"),
		entry("Orange", "orangen"),
		entry("Butterbrot"),
		entry("Müsli"),
		entry("Joghurt"),
		entry("Ei"),
		entry("Eier"),
		entry("Brot", "brote"),
		entry("Käse"),
		entry("Salat"),
		entry("Pasta"),
		entry("Reis"),
		entry("Hähnchen", "hähnchenbrust"),
		entry("Huhn"),
		entry("Pizza", "pizzen"),
		entry("Schokolade"),
		entry("Schnitzel"),
		entry("Pommes"),
		entry("Tortellini"),
		entry("Käsesoße"),
		entry("Nudeln"),
		entry("Spaghetti"),
		entry("Fleisch"),
		entry("Gemüse"),
		entry("Kartoffel", "kartoffeln"),
		entry("Fisch"),
		entry("Lachs"),
		entry("Thunfisch"),
		entry("Quinoa"),
		entry("Avocado", "avocados"),
		entry("Nüsse"),
		entry("Mandeln"),
		entry("Haferflocken"),
		entry("Milch"),
		entry("Butter"),
		entry("Olivenöl"),
		entry("Tomate", "tomaten"),
		entry("Gurke", "gurken"),
		entry("Paprika"),
		entry("Zwiebel", "zwiebeln"),
		entry("Knoblauch"),
		entry("Spinat"),
		entry("Brokkoli"),
		entry("Karotte", "karotten"),
		entry("Süßkartoffel", "süßkartoffeln"),
		entry("Kaffee"),
		entry("Tee"),
		entry("Erdbeeren", "erdbeere"),
		entry("Weintrauben"),
		entry("Kiwi", "kiwis"),
		entry("Mango"),
		entry("Ananas"),
		entry("Wassermelone"),
		entry("Melone"),
		entry("Pfirsich", "pfirsiche"),
		entry("Pflaume", "pflaumen"),
		entry("Kirschen", "kirsche"),
		entry("Beeren"),
		entry("Himbeeren"),
		entry("Blaubeeren", "heidelbeeren"),
	}
}
