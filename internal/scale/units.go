// internal/scale/units.go

// Package scale implements ingredient quantity scaling, unit conversion and
// display formatting. Everything here is pure and safe for concurrent use:
// the unit registry is a read-only table built at init.
package scale

import "strings"

// Unit is a recognized measurement unit.
type Unit string

const (
	Milligram  Unit = "mg"
	Gram       Unit = "g"
	Kilogram   Unit = "kg"
	Ounce      Unit = "oz"
	Pound      Unit = "lb"
	Milliliter Unit = "ml"
	Liter      Unit = "l"
	Teaspoon   Unit = "tsp"
	Tablespoon Unit = "tbsp"
	FluidOunce Unit = "fl-oz"
	Cup        Unit = "cup"
	Piece      Unit = "piece"
	Slice      Unit = "slice"
	Clove      Unit = "clove"
	Bunch      Unit = "bunch"
)

// UnitType is the category a unit belongs to. Conversion is only defined
// within a category.
type UnitType string

const (
	Weight UnitType = "weight"
	Volume UnitType = "volume"
	Count  UnitType = "count"
)

type unitDef struct {
	unit   Unit
	kind   UnitType
	toBase float64 // grams for weight, milliliters for volume
}

var unitDefs = []unitDef{
	{Milligram, Weight, 0.001},
	{Gram, Weight, 1},
	{Kilogram, Weight, 1000},
	{Ounce, Weight, 28.3495},
	{Pound, Weight, 453.592},

	{Milliliter, Volume, 1},
	{Liter, Volume, 1000},
	{Teaspoon, Volume, 4.92892},
	{Tablespoon, Volume, 14.7868},
	{FluidOunce, Volume, 29.5735},
	{Cup, Volume, 236.588},

	// Count units are never converted; the factor only keeps the table uniform.
	{Piece, Count, 1},
	{Slice, Count, 1},
	{Clove, Count, 1},
	{Bunch, Count, 1},
}

var unitTable = func() map[Unit]unitDef {
	m := make(map[Unit]unitDef, len(unitDefs))
	for _, d := range unitDefs {
		m[d.unit] = d
	}
	return m
}()

// Units returns every registered unit in registry order.
func Units() []Unit {
	out := make([]Unit, len(unitDefs))
	for i, d := range unitDefs {
		out[i] = d.unit
	}
	return out
}

// TypeOf returns the category of u, or "" when u is not registered.
func TypeOf(u Unit) UnitType {
	return unitTable[u].kind
}

// Valid reports whether u is in the registry.
func (u Unit) Valid() bool {
	_, ok := unitTable[u]
	return ok
}

// Type is shorthand for TypeOf(u).
func (u Unit) Type() UnitType {
	return TypeOf(u)
}

// UnmarshalText accepts only registered unit names, so records decoded from
// untrusted JSON cannot carry an unknown unit into the engine.
func (u *Unit) UnmarshalText(text []byte) error {
	candidate := Unit(strings.ToLower(strings.TrimSpace(string(text))))
	if !candidate.Valid() {
		return &UnknownUnitError{Unit: string(text)}
	}
	*u = candidate
	return nil
}

func lookup(u Unit) (unitDef, error) {
	d, ok := unitTable[u]
	if !ok {
		return unitDef{}, &UnknownUnitError{Unit: string(u)}
	}
	return d, nil
}

// Convert re-expresses quantity from one unit in another unit of the same
// category. Count units convert to each other one-to-one. The sign of
// quantity is not checked.
func Convert(quantity float64, from, to Unit) (float64, error) {
	fromDef, err := lookup(from)
	if err != nil {
		return 0, err
	}
	toDef, err := lookup(to)
	if err != nil {
		return 0, err
	}

	if fromDef.kind != toDef.kind {
		return 0, &IncompatibleUnitsError{
			From:     from,
			To:       to,
			FromType: fromDef.kind,
			ToType:   toDef.kind,
		}
	}

	if fromDef.kind == Count {
		return quantity, nil
	}

	base := quantity * fromDef.toBase
	return base / toDef.toBase, nil
}
