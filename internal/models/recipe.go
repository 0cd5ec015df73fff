// internal/models/recipe.go
package models

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"mcp-recipe-box/internal/scale"
)

type Recipe struct {
	ID              string             `json:"id"`
	Slug            string             `json:"slug"`
	Title           string             `json:"title"`
	Description     string             `json:"description,omitempty"`
	Instructions    string             `json:"instructions"`
	BaseServings    int                `json:"base_servings"`
	PrepTimeMinutes int                `json:"prep_time_minutes,omitempty"`
	CookTimeMinutes int                `json:"cook_time_minutes,omitempty"`
	Difficulty      Difficulty         `json:"difficulty,omitempty"`
	Cuisine         string             `json:"cuisine,omitempty"`
	Tags            []string           `json:"tags,omitempty"`
	Ingredients     []scale.Ingredient `json:"ingredients"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`
}

type RecipeSummary struct {
	ID           string    `json:"id"`
	Slug         string    `json:"slug"`
	Title        string    `json:"title"`
	BaseServings int       `json:"base_servings"`
	Cuisine      string    `json:"cuisine,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// ScaledRecipe is a recipe with its ingredients recomputed for
// TargetServings. Display holds one rendered line per scaled ingredient.
type ScaledRecipe struct {
	*Recipe
	TargetServings    int                      `json:"target_servings"`
	ScaledIngredients []scale.ScaledIngredient `json:"scaled_ingredients"`
	Display           []string                 `json:"display"`
}

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// ErrInvalidRecipe wraps every validation failure.
var ErrInvalidRecipe = errors.New("invalid recipe")

const maxTitleLength = 255

// Validate checks the fields a recipe must carry before it is stored.
func (r *Recipe) Validate() error {
	title := strings.TrimSpace(r.Title)
	if title == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidRecipe)
	}
	if len(title) > maxTitleLength {
		return fmt.Errorf("%w: title exceeds %d characters", ErrInvalidRecipe, maxTitleLength)
	}
	if strings.TrimSpace(r.Instructions) == "" {
		return fmt.Errorf("%w: instructions are required", ErrInvalidRecipe)
	}
	if r.BaseServings <= 0 {
		return fmt.Errorf("%w: base servings must be positive", ErrInvalidRecipe)
	}
	if r.PrepTimeMinutes < 0 || r.CookTimeMinutes < 0 {
		return fmt.Errorf("%w: times must not be negative", ErrInvalidRecipe)
	}
	switch r.Difficulty {
	case "", DifficultyEasy, DifficultyMedium, DifficultyHard:
	default:
		return fmt.Errorf("%w: unknown difficulty %q", ErrInvalidRecipe, r.Difficulty)
	}
	if len(r.Ingredients) == 0 {
		return fmt.Errorf("%w: at least one ingredient is required", ErrInvalidRecipe)
	}
	seen := make(map[string]bool, len(r.Ingredients))
	for i, ing := range r.Ingredients {
		if ing.ID != "" {
			if seen[ing.ID] {
				return fmt.Errorf("%w: ingredient %d: duplicate id %q", ErrInvalidRecipe, i+1, ing.ID)
			}
			seen[ing.ID] = true
		}
		if strings.TrimSpace(ing.Name) == "" {
			return fmt.Errorf("%w: ingredient %d: name is required", ErrInvalidRecipe, i+1)
		}
		if !(ing.Quantity > 0) {
			return fmt.Errorf("%w: ingredient %d (%s): quantity must be positive", ErrInvalidRecipe, i+1, ing.Name)
		}
		if !ing.Unit.Valid() {
			return fmt.Errorf("%w: ingredient %d (%s): %w", ErrInvalidRecipe, i+1, ing.Name,
				&scale.UnknownUnitError{Unit: string(ing.Unit)})
		}
	}
	return nil
}

// Summary returns the listing view of r.
func (r *Recipe) Summary() RecipeSummary {
	return RecipeSummary{
		ID:           r.ID,
		Slug:         r.Slug,
		Title:        r.Title,
		BaseServings: r.BaseServings,
		Cuisine:      r.Cuisine,
		CreatedAt:    r.CreatedAt,
	}
}

var (
	slugStripRe = regexp.MustCompile(`[^a-z0-9\s-]`)
	slugSpaceRe = regexp.MustCompile(`\s+`)
	slugDashRe  = regexp.MustCompile(`-+`)
)

// Slugify turns a title into a URL slug: "Mom's Apple Pie" -> "moms-apple-pie".
func Slugify(title string) string {
	s := strings.ToLower(strings.TrimSpace(title))
	s = slugStripRe.ReplaceAllString(s, "")
	s = slugSpaceRe.ReplaceAllString(s, "-")
	s = slugDashRe.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
