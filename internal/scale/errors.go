// internal/scale/errors.go
package scale

import "fmt"

// InvalidServingsError is returned by Ingredients when either serving count
// is not positive. No ingredient is processed when it is returned.
type InvalidServingsError struct {
	Base   float64
	Target float64
}

func (e *InvalidServingsError) Error() string {
	return fmt.Sprintf("servings must be positive numbers (base=%g, target=%g)", e.Base, e.Target)
}

// IncompatibleUnitsError is returned by Convert when the two units belong to
// different categories.
type IncompatibleUnitsError struct {
	From     Unit
	To       Unit
	FromType UnitType
	ToType   UnitType
}

func (e *IncompatibleUnitsError) Error() string {
	return fmt.Sprintf("cannot convert between %s (%s) and %s (%s)", e.FromType, e.From, e.ToType, e.To)
}

// UnknownUnitError reports a unit name that is not in the registry.
type UnknownUnitError struct {
	Unit string
}

func (e *UnknownUnitError) Error() string {
	return fmt.Sprintf("unknown unit %q", e.Unit)
}
