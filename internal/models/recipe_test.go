package models

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mcp-recipe-box/internal/scale"
)

func validRecipe() *Recipe {
	return &Recipe{
		Title:        "Pancakes",
		Instructions: "Mix and fry.",
		BaseServings: 4,
		Ingredients: []scale.Ingredient{
			{Name: "Flour", Quantity: 500, Unit: scale.Gram},
			{Name: "Eggs", Quantity: 2, Unit: scale.Piece},
		},
	}
}

func TestValidate(t *testing.T) {
	require.NoError(t, validRecipe().Validate())

	tests := []struct {
		name   string
		mutate func(r *Recipe)
		want   string
	}{
		{"missing title", func(r *Recipe) { r.Title = "  " }, "title is required"},
		{"long title", func(r *Recipe) { r.Title = strings.Repeat("x", 256) }, "title exceeds"},
		{"missing instructions", func(r *Recipe) { r.Instructions = "" }, "instructions are required"},
		{"zero servings", func(r *Recipe) { r.BaseServings = 0 }, "base servings"},
		{"negative prep", func(r *Recipe) { r.PrepTimeMinutes = -1 }, "times"},
		{"bad difficulty", func(r *Recipe) { r.Difficulty = "extreme" }, "difficulty"},
		{"no ingredients", func(r *Recipe) { r.Ingredients = nil }, "at least one ingredient"},
		{"unnamed ingredient", func(r *Recipe) { r.Ingredients[0].Name = "" }, "name is required"},
		{"zero quantity", func(r *Recipe) { r.Ingredients[1].Quantity = 0 }, "quantity must be positive"},
		{"unknown unit", func(r *Recipe) { r.Ingredients[0].Unit = "handful" }, `unknown unit "handful"`},
		{"duplicate ids", func(r *Recipe) { r.Ingredients[0].ID = "x"; r.Ingredients[1].ID = "x" }, `duplicate id "x"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := validRecipe()
			tt.mutate(r)
			err := r.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidRecipe))
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestValidateUnknownUnitIsTyped(t *testing.T) {
	r := validRecipe()
	r.Ingredients[0].Unit = "handful"
	var unknown *scale.UnknownUnitError
	assert.True(t, errors.As(r.Validate(), &unknown))
}

func TestSlugify(t *testing.T) {
	tests := map[string]string{
		"Mom's Apple Pie":       "moms-apple-pie",
		"  Spicy   Thai Curry ": "spicy-thai-curry",
		"Fish -- and Chips":     "fish-and-chips",
		"Crème brûlée":          "crme-brle",
		"100% Rye":              "100-rye",
	}
	for in, want := range tests {
		assert.Equal(t, want, Slugify(in), in)
	}
}

func TestSummary(t *testing.T) {
	r := validRecipe()
	r.ID = "id-1"
	r.Slug = "pancakes"
	s := r.Summary()
	assert.Equal(t, "id-1", s.ID)
	assert.Equal(t, "pancakes", s.Slug)
	assert.Equal(t, 4, s.BaseServings)
}
