package scale

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTypeOf(t *testing.T) {
	tests := []struct {
		unit Unit
		want UnitType
	}{
		{Gram, Weight},
		{Pound, Weight},
		{Milliliter, Volume},
		{FluidOunce, Volume},
		{Cup, Volume},
		{Piece, Count},
		{Bunch, Count},
		{Unit("handful"), ""},
	}

	for _, tt := range tests {
		t.Run(string(tt.unit), func(t *testing.T) {
			assert.Equal(t, tt.want, TypeOf(tt.unit))
		})
	}
}

func TestRegistryIsClosed(t *testing.T) {
	units := Units()
	require.Len(t, units, 15)

	counts := map[UnitType]int{}
	for _, u := range units {
		require.True(t, u.Valid(), "unit %s", u)
		counts[u.Type()]++
	}
	assert.Equal(t, map[UnitType]int{Weight: 5, Volume: 6, Count: 4}, counts)
}

func TestConvert(t *testing.T) {
	tests := []struct {
		name     string
		quantity float64
		from, to Unit
		want     float64
		delta    float64
	}{
		{"grams to kilograms", 1000, Gram, Kilogram, 1, 1e-9},
		{"ounce to grams", 1, Ounce, Gram, 28.35, 0.01},
		{"pound to ounces", 1, Pound, Ounce, 16, 0.01},
		{"milliliters to liters", 1000, Milliliter, Liter, 1, 1e-9},
		{"cup to milliliters", 1, Cup, Milliliter, 236.6, 0.05},
		{"teaspoons to tablespoon", 3, Teaspoon, Tablespoon, 1, 0.01},
		{"milligrams to grams", 2500, Milligram, Gram, 2.5, 1e-9},
		{"negative passes through", -2, Kilogram, Gram, -2000, 1e-9},
		{"zero", 0, Cup, Teaspoon, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Convert(tt.quantity, tt.from, tt.to)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, tt.delta)
		})
	}
}

func TestConvertCountIsIdentity(t *testing.T) {
	got, err := Convert(5, Piece, Piece)
	require.NoError(t, err)
	assert.Equal(t, 5.0, got)

	// Any two count units are treated as interchangeable.
	got, err = Convert(3, Clove, Piece)
	require.NoError(t, err)
	assert.Equal(t, 3.0, got)
}

func TestConvertIncompatible(t *testing.T) {
	pairs := [][2]Unit{
		{Gram, Milliliter},
		{Cup, Piece},
		{Clove, Kilogram},
		{Liter, Ounce},
	}

	for _, p := range pairs {
		_, err := Convert(1, p[0], p[1])
		var incompatible *IncompatibleUnitsError
		require.True(t, errors.As(err, &incompatible), "%s -> %s: %v", p[0], p[1], err)
		assert.Equal(t, p[0], incompatible.From)
		assert.Equal(t, p[1], incompatible.To)
		assert.NotEqual(t, incompatible.FromType, incompatible.ToType)
	}
}

func TestConvertUnknownUnit(t *testing.T) {
	_, err := Convert(1, Unit("pinch"), Gram)
	var unknown *UnknownUnitError
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, "pinch", unknown.Unit)
}

func TestConvertCategoryClosure(t *testing.T) {
	for _, from := range Units() {
		for _, to := range Units() {
			got, err := Convert(2.5, from, to)
			if from.Type() != to.Type() {
				var incompatible *IncompatibleUnitsError
				assert.True(t, errors.As(err, &incompatible), "%s -> %s", from, to)
				continue
			}
			require.NoError(t, err, "%s -> %s", from, to)
			assert.False(t, math.IsInf(got, 0) || math.IsNaN(got))
			assert.Greater(t, got, 0.0)

			back, err := Convert(got, to, from)
			require.NoError(t, err)
			assert.InEpsilon(t, 2.5, back, 1e-6, "%s -> %s -> %s", from, to, from)
		}
	}
}

func TestUnitUnmarshalText(t *testing.T) {
	var ing Ingredient
	require.NoError(t, json.Unmarshal([]byte(`{"id":"1","name":"Milk","quantity":1,"unit":" CUP "}`), &ing))
	assert.Equal(t, Cup, ing.Unit)

	err := json.Unmarshal([]byte(`{"id":"1","name":"Milk","quantity":1,"unit":"gallon"}`), &ing)
	var unknown *UnknownUnitError
	assert.True(t, errors.As(err, &unknown))
}
