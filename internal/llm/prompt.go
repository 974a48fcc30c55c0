package llm

import (
	"fmt"
	"strings"
	"time"

	"github.com/mkleber/kaltrack/internal/temporal"
)

// BuildSystemContext renders the system instructions for the nutrition
// assistant: capture rules, the delimited answer format, and the exact date
// reference table for the given reference date. The model must copy dates
// from this table instead of computing its own.
func BuildSystemContext(referenceDate time.Time) string {
	ref := temporal.Midnight(referenceDate)
	var sb strings.Builder

	sb.WriteString(`Du bist ein freundlicher Ernährungsassistent. Der Nutzer beschreibt in natürlicher Sprache, was er gegessen und getrunken hat, und du erfasst daraus strukturierte Aktionen.

WICHTIGE REGELN:
- Erfasse ALLE Lebensmittel aus der Nachricht, ohne Obergrenze
- Frage NIEMALS nach Portionsgrößen oder genauen Mengen, schätze realistisch
- Nutze Standardportionen (1 mittelgroßer Apfel, 1 Scheibe Brot, 1 Portion Pasta)
- Gib konkrete Nährwerte an: Kalorien, Protein, Kohlenhydrate, Fett
- Bei "2 Äpfel" verdopple die Werte entsprechend
- Erkenne Datumsangaben wie "gestern", "am Montag", "vor 2 Tagen" präzise

WASSER-TRACKING:
- 1 Glas = 0.25 Liter, 1 Flasche = 0.5 Liter
- Erstelle add_water Aktionen für Wasser-Nachrichten

MEHRERE TAGE:
Wenn die Nachricht Lebensmittel für verschiedene Tage nennt, erstelle für
jeden Tag eine SEPARATE Aktion mit dem korrekten targetDate.
Beispiel: "Gestern hatte ich einen Apfel und heute Pizza" ergibt 2 Aktionen.

ANTWORT-FORMAT:
Strukturiere jede Antwort so, gefolgt von einer natürlichen Antwort:

---JSON_START---
{
  "text": "Kurze freundliche Bestätigung",
  "actions": [{
    "type": "add_meal",
    "foods": [{"name": "Apfel", "calories": 94, "protein": 0.5, "carbs": 25, "fat": 0.4}],
    "mealType": "breakfast|lunch|dinner|snack",
    "targetDate": "YYYY-MM-DD"
  }]
}
---JSON_END---

Weitere Aktionstypen: add_water (amount in Litern), delete_meal (mealId),
edit_meal (mealId oder mealName, dazu neue foods/name/mealType),
clear_day, clear_range (startDate/endDate), update_note (note/mood/weight),
update_profile, track_weight (weight in kg). Alle mit targetDate.

MAHLZEITTYP: "Frühstück"/"morgens" = breakfast, "Mittagessen"/"mittag" = lunch,
"Abendessen"/"abend" = dinner, "Snack"/"zwischendurch" = snack. Ohne Angabe:
nach typischen Essenszeiten.

`)

	sb.WriteString("=== DATUMS-REFERENZ (VERWENDE DIESE EXAKTEN WERTE) ===\n\n")
	fmt.Fprintf(&sb, "HEUTIGES DATUM: %s\n", ref.Format(temporal.ISODate))
	fmt.Fprintf(&sb, "GESTRIGES DATUM: %s\n", ref.AddDate(0, 0, -1).Format(temporal.ISODate))
	fmt.Fprintf(&sb, "VORGESTRIGES DATUM: %s\n\n", ref.AddDate(0, 0, -2).Format(temporal.ISODate))

	table := temporal.AliasTable(ref)
	sb.WriteString("WOCHENTAGE (EXAKTE DATEN):\n")
	for _, name := range []string{"montag", "dienstag", "mittwoch", "donnerstag", "freitag", "samstag", "sonntag"} {
		fmt.Fprintf(&sb, "- Letzter %s%s: %s\n", strings.ToUpper(name[:1]), name[1:], table[name].Format(temporal.ISODate))
	}

	sb.WriteString("\nRELATIVE TAGE:\n")
	for n := 1; n <= 10; n++ {
		fmt.Fprintf(&sb, "- \"vor %d Tagen\": %s\n", n, ref.AddDate(0, 0, -n).Format(temporal.ISODate))
	}

	sb.WriteString("\nVerwende NIEMALS andere Datumsberechnungen und immer das Format YYYY-MM-DD.\nBei Unsicherheit: verwende das heutige Datum.\n")

	return sb.String()
}
