// internal/ingredient/parser.go

// Package ingredient parses free-text ingredient lists such as
// "1 1/2 cups flour (sifted)" into structured ingredients, and normalizes
// the unit spellings people actually type into registered units.
package ingredient

import (
	"regexp"
	"strconv"
	"strings"

	"mcp-recipe-box/internal/scale"
)

// Parsed is one ingredient line after parsing.
type Parsed struct {
	Quantity float64    `json:"quantity"`
	Unit     scale.Unit `json:"unit"`
	Name     string     `json:"name"`
	Notes    string     `json:"notes,omitempty"`
}

// Ingredient converts p into an engine ingredient with the given id.
func (p Parsed) Ingredient(id string) scale.Ingredient {
	return scale.Ingredient{
		ID:       id,
		Name:     p.Name,
		Quantity: p.Quantity,
		Unit:     p.Unit,
		Notes:    p.Notes,
	}
}

var unitAliases = map[string]scale.Unit{
	"cup": scale.Cup, "cups": scale.Cup, "c": scale.Cup,
	"tablespoon": scale.Tablespoon, "tablespoons": scale.Tablespoon, "tbsp": scale.Tablespoon, "tbs": scale.Tablespoon,
	"teaspoon": scale.Teaspoon, "teaspoons": scale.Teaspoon, "tsp": scale.Teaspoon,
	"milliliter": scale.Milliliter, "milliliters": scale.Milliliter, "millilitre": scale.Milliliter, "ml": scale.Milliliter,
	"liter": scale.Liter, "liters": scale.Liter, "litre": scale.Liter, "l": scale.Liter,
	"fluid ounce": scale.FluidOunce, "fluid ounces": scale.FluidOunce, "fl oz": scale.FluidOunce, "fl-oz": scale.FluidOunce, "floz": scale.FluidOunce,
	"milligram": scale.Milligram, "milligrams": scale.Milligram, "mg": scale.Milligram,
	"gram": scale.Gram, "grams": scale.Gram, "g": scale.Gram,
	"kilogram": scale.Kilogram, "kilograms": scale.Kilogram, "kg": scale.Kilogram,
	"ounce": scale.Ounce, "ounces": scale.Ounce, "oz": scale.Ounce,
	"pound": scale.Pound, "pounds": scale.Pound, "lb": scale.Pound, "lbs": scale.Pound,
	"piece": scale.Piece, "pieces": scale.Piece, "pc": scale.Piece, "pcs": scale.Piece,
	"slice": scale.Slice, "slices": scale.Slice,
	"clove": scale.Clove, "cloves": scale.Clove,
	"bunch": scale.Bunch, "bunches": scale.Bunch,
}

var glyphValues = map[string]float64{
	"½": 1.0 / 2, "⅓": 1.0 / 3, "⅔": 2.0 / 3, "¼": 1.0 / 4, "¾": 3.0 / 4,
	"⅛": 1.0 / 8, "⅜": 3.0 / 8, "⅝": 5.0 / 8, "⅞": 7.0 / 8,
}

// ParseUnit maps a typed unit spelling to a registered unit. A capital "T"
// is a tablespoon and a lowercase "t" a teaspoon; everything else is
// matched case-insensitively with dots and commas dropped.
func ParseUnit(s string) (scale.Unit, error) {
	trimmed := strings.TrimSpace(s)
	switch trimmed {
	case "T":
		return scale.Tablespoon, nil
	case "t":
		return scale.Teaspoon, nil
	}

	key := strings.ToLower(trimmed)
	key = strings.NewReplacer(".", "", ",", "").Replace(key)
	key = strings.Join(strings.Fields(key), " ")
	if u, ok := unitAliases[key]; ok {
		return u, nil
	}
	return "", &scale.UnknownUnitError{Unit: s}
}

var (
	bulletRe   = regexp.MustCompile(`^(?:[-•*]\s*|\d+[.)]\s+)`)
	parensRe   = regexp.MustCompile(`\(([^)]*)\)`)
	prepRe     = regexp.MustCompile(`(?i),\s*(finely chopped|chopped|diced|sliced|minced|grated|fresh|dried|room temperature|softened|melted)\b`)
	extraRe    = regexp.MustCompile(`(?i),\s*(plus extra for .*)$`)
	quantityRe = regexp.MustCompile(`^(\d+\s+\d+/\d+|\d+/\d+|\d*\s*[½⅓⅔¼¾⅛⅜⅝⅞]|\d+(?:\.\d+)?)\s*(.*)$`)
	spacesRe   = regexp.MustCompile(`\s+`)
)

// Parse parses one ingredient per non-blank line of text.
func Parse(text string) []Parsed {
	var out []Parsed
	for _, line := range strings.Split(text, "\n") {
		if p, ok := ParseLine(line); ok {
			out = append(out, p)
		}
	}
	return out
}

// ParseLine parses a single ingredient line. It reports false for blank
// lines. A line without a leading quantity becomes one piece of the whole
// text, and an unrecognized unit word stays part of the name.
func ParseLine(line string) (Parsed, bool) {
	clean := strings.TrimSpace(bulletRe.ReplaceAllString(strings.TrimSpace(line), ""))
	if clean == "" {
		return Parsed{}, false
	}

	text, notes := extractNotes(clean)

	m := quantityRe.FindStringSubmatch(text)
	if m == nil {
		return Parsed{Quantity: 1, Unit: scale.Piece, Name: text, Notes: notes}, true
	}
	qty, ok := parseQuantity(m[1])
	if !ok || strings.TrimSpace(m[2]) == "" {
		return Parsed{Quantity: 1, Unit: scale.Piece, Name: text, Notes: notes}, true
	}

	unit, name := splitUnit(strings.TrimSpace(m[2]))
	return Parsed{Quantity: qty, Unit: unit, Name: name, Notes: notes}, true
}

func extractNotes(text string) (string, string) {
	var notes []string
	for _, re := range []*regexp.Regexp{parensRe, prepRe, extraRe} {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			if n := strings.TrimSpace(m[1]); n != "" {
				notes = append(notes, n)
			}
		}
		text = re.ReplaceAllString(text, "")
	}

	text = spacesRe.ReplaceAllString(text, " ")
	text = strings.ReplaceAll(text, " ,", ",")
	for strings.Contains(text, ",,") {
		text = strings.ReplaceAll(text, ",,", ",")
	}
	text = strings.TrimSpace(strings.TrimRight(strings.TrimSpace(text), ","))
	return text, strings.Join(notes, ", ")
}

func parseQuantity(s string) (float64, bool) {
	s = strings.TrimSpace(s)

	for glyph, value := range glyphValues {
		if whole, ok := strings.CutSuffix(s, glyph); ok {
			whole = strings.TrimSpace(whole)
			if whole == "" {
				return value, true
			}
			n, err := strconv.Atoi(whole)
			if err != nil {
				return 0, false
			}
			return float64(n) + value, true
		}
	}

	if whole, frac, ok := strings.Cut(s, " "); ok {
		n, err := strconv.Atoi(whole)
		if err != nil {
			return 0, false
		}
		f, ok := parseFraction(strings.TrimSpace(frac))
		if !ok {
			return 0, false
		}
		return float64(n) + f, true
	}

	if strings.Contains(s, "/") {
		return parseFraction(s)
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}

func parseFraction(s string) (float64, bool) {
	num, den, ok := strings.Cut(s, "/")
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(num)
	if err != nil {
		return 0, false
	}
	d, err := strconv.Atoi(den)
	if err != nil || d == 0 || n == 0 {
		return 0, false
	}
	return float64(n) / float64(d), true
}

// splitUnit takes the leading unit word (or the two-word "fl oz" /
// "fluid ounce(s)") off rest when it names a registered unit and something is
// left for the name.
func splitUnit(rest string) (scale.Unit, string) {
	fields := strings.Fields(rest)
	for _, n := range []int{2, 1} {
		if len(fields) <= n {
			continue
		}
		if u, err := ParseUnit(strings.Join(fields[:n], " ")); err == nil {
			name := strings.Join(fields[n:], " ")
			name = strings.TrimPrefix(name, "of ")
			return u, name
		}
	}
	return scale.Piece, strings.Join(fields, " ")
}
