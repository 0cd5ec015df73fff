// internal/scale/scale.go
package scale

import "math"

// Ingredient is a single recipe ingredient as supplied by the caller.
type Ingredient struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
	Unit     Unit    `json:"unit"`
	Notes    string  `json:"notes,omitempty"`
}

// ScaledIngredient is an Ingredient whose Quantity has been scaled and
// rounded. OriginalQuantity is the input quantity, untouched.
type ScaledIngredient struct {
	Ingredient
	OriginalQuantity float64 `json:"original_quantity"`
	ScaleFactor      float64 `json:"scale_factor"`
}

// Factor returns targetServings / baseServings.
func Factor(baseServings, targetServings float64) (float64, error) {
	if !(baseServings > 0) || !(targetServings > 0) {
		return 0, &InvalidServingsError{Base: baseServings, Target: targetServings}
	}
	return targetServings / baseServings, nil
}

// Ingredients scales every ingredient from baseServings to targetServings.
// The factor is computed once and shared by every result; output order
// matches input order. Units are left as they are.
func Ingredients(ingredients []Ingredient, baseServings, targetServings float64) ([]ScaledIngredient, error) {
	factor, err := Factor(baseServings, targetServings)
	if err != nil {
		return nil, err
	}

	out := make([]ScaledIngredient, len(ingredients))
	for i, ing := range ingredients {
		scaled := ing
		scaled.Quantity = Round(ing.Quantity*factor, ing.Unit)
		out[i] = ScaledIngredient{
			Ingredient:       scaled,
			OriginalQuantity: ing.Quantity,
			ScaleFactor:      factor,
		}
	}
	return out, nil
}

// Round applies the precision tier for a scaled quantity: count units round
// to whole items; everything else keeps 2 decimals below 1, 1 decimal below
// 10 and none from 10 up. Unregistered units use the magnitude tiers.
func Round(quantity float64, unit Unit) float64 {
	if TypeOf(unit) == Count {
		return roundHalfUp(quantity, 0)
	}

	switch {
	case quantity < 1:
		return roundHalfUp(quantity, 2)
	case quantity < 10:
		return roundHalfUp(quantity, 1)
	default:
		return roundHalfUp(quantity, 0)
	}
}

func roundHalfUp(x float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Floor(x*p+0.5) / p
}
