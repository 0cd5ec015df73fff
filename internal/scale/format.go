// internal/scale/format.go
package scale

import (
	"math"
	"strconv"
	"strings"
)

// fractionTolerance is how far a quantity may sit from an eighth and still be
// shown as that eighth. It absorbs the 2-decimal rounding the scaler applies
// (0.125 becomes 0.13).
const fractionTolerance = 0.01

var eighths = map[float64]string{
	0.125: "⅛",
	0.25:  "¼",
	0.375: "⅜",
	0.5:   "½",
	0.625: "⅝",
	0.75:  "¾",
	0.875: "⅞",
}

var thirds = map[float64]string{
	0.33: "⅓",
	0.67: "⅔",
}

// Format renders quantity for display with culinary fractions enabled.
func Format(quantity float64, unit Unit) string {
	return FormatQuantity(quantity, unit, true)
}

// FormatQuantity renders quantity as display text. Quantities strictly
// between 0 and 1 are shown as a common fraction glyph when showFractions is
// set and one matches; otherwise they fall back to two decimals. Whole
// numbers print without a decimal point, the rest with one decimal below 10
// and none above. The unit does not affect the result today.
func FormatQuantity(quantity float64, unit Unit, showFractions bool) string {
	if showFractions && quantity > 0 && quantity < 1 {
		if glyph, ok := fractionGlyph(quantity); ok {
			return glyph
		}
		return strconv.FormatFloat(quantity, 'f', 2, 64)
	}

	if math.Mod(quantity, 1) == 0 {
		return strconv.FormatFloat(quantity, 'f', -1, 64)
	}

	if math.Abs(quantity) < 10 {
		return strconv.FormatFloat(roundHalfUp(quantity, 1), 'f', 1, 64)
	}
	return strconv.FormatFloat(roundHalfUp(quantity, 0), 'f', 0, 64)
}

func fractionGlyph(q float64) (string, bool) {
	snapped := math.Round(q*8) / 8
	if glyph, ok := eighths[snapped]; ok && math.Abs(q-snapped) <= fractionTolerance {
		return glyph, true
	}
	glyph, ok := thirds[math.Round(q*100)/100]
	return glyph, ok
}

// FormatIngredient renders "<quantity> <unit> <name> (<notes>)". The unit is
// omitted for pieces, and the notes when empty.
func FormatIngredient(ing Ingredient, showFractions bool) string {
	var b strings.Builder
	b.WriteString(FormatQuantity(ing.Quantity, ing.Unit, showFractions))
	if ing.Unit != Piece && ing.Unit != "" {
		b.WriteByte(' ')
		b.WriteString(string(ing.Unit))
	}
	if ing.Name != "" {
		b.WriteByte(' ')
		b.WriteString(ing.Name)
	}
	if ing.Notes != "" {
		b.WriteString(" (")
		b.WriteString(ing.Notes)
		b.WriteByte(')')
	}
	return b.String()
}
