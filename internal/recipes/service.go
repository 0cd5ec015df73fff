// internal/recipes/service.go

// Package recipes connects recipe storage to the scaling engine: it loads
// stored recipes, scales their ingredients to a requested serving count and
// renders display lines, and validates recipes on the way in.
package recipes

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"mcp-recipe-box/internal/ingredient"
	"mcp-recipe-box/internal/models"
	"mcp-recipe-box/internal/scale"
	"mcp-recipe-box/internal/storage"
)

// Store is the persistence the service needs.
type Store interface {
	SaveRecipe(ctx context.Context, recipe *models.Recipe) error
	GetRecipe(ctx context.Context, idOrSlug string) (*models.Recipe, error)
	ListRecipes(ctx context.Context, limit int) ([]models.RecipeSummary, error)
	DeleteRecipe(ctx context.Context, id string) error
}

// Compile-time interface check.
var _ Store = (*storage.SQLiteStorage)(nil)

// ErrServingsOutOfRange is returned when a requested serving count is above
// the configured maximum.
var ErrServingsOutOfRange = errors.New("servings out of range")

type Service struct {
	store       Store
	maxServings int
	log         *zap.Logger
}

func NewService(store Store, maxServings int, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{store: store, maxServings: maxServings, log: log}
}

// Scaled loads a recipe and scales its ingredients to servings. Serving
// counts are checked before the recipe is read.
func (s *Service) Scaled(ctx context.Context, idOrSlug string, servings int, showFractions bool) (*models.ScaledRecipe, error) {
	if servings <= 0 {
		return nil, &scale.InvalidServingsError{Target: float64(servings)}
	}
	if s.maxServings > 0 && servings > s.maxServings {
		return nil, fmt.Errorf("%w: %d exceeds the maximum of %d", ErrServingsOutOfRange, servings, s.maxServings)
	}

	recipe, err := s.store.GetRecipe(ctx, idOrSlug)
	if err != nil {
		return nil, err
	}

	scaled, err := scale.Ingredients(recipe.Ingredients, float64(recipe.BaseServings), float64(servings))
	if err != nil {
		return nil, err
	}

	s.log.Debug("scaled recipe",
		zap.String("recipe", recipe.Slug),
		zap.Int("base_servings", recipe.BaseServings),
		zap.Int("target_servings", servings))

	return &models.ScaledRecipe{
		Recipe:            recipe,
		TargetServings:    servings,
		ScaledIngredients: scaled,
		Display:           DisplayLines(scaled, showFractions),
	}, nil
}

// DisplayLines renders one line per scaled ingredient.
func DisplayLines(scaled []scale.ScaledIngredient, showFractions bool) []string {
	lines := make([]string, len(scaled))
	for i, ing := range scaled {
		lines[i] = scale.FormatIngredient(ing.Ingredient, showFractions)
	}
	return lines
}

// Create validates and stores a recipe.
func (s *Service) Create(ctx context.Context, recipe *models.Recipe) error {
	recipe.Title = strings.TrimSpace(recipe.Title)
	if err := recipe.Validate(); err != nil {
		return err
	}
	if err := s.store.SaveRecipe(ctx, recipe); err != nil {
		return fmt.Errorf("failed to save recipe: %w", err)
	}
	s.log.Info("created recipe", zap.String("id", recipe.ID), zap.String("slug", recipe.Slug))
	return nil
}

// ImportInput describes a recipe whose ingredients arrive as free text, one
// per line.
type ImportInput struct {
	Title           string
	Description     string
	Instructions    string
	BaseServings    int
	Ingredients     string
	Tags            []string
	Cuisine         string
	Difficulty      models.Difficulty
	PrepTimeMinutes int
	CookTimeMinutes int
}

// Import parses the ingredient text and creates the recipe.
func (s *Service) Import(ctx context.Context, in ImportInput) (*models.Recipe, error) {
	parsed := ingredient.Parse(in.Ingredients)
	ingredients := make([]scale.Ingredient, len(parsed))
	for i, p := range parsed {
		ingredients[i] = p.Ingredient("")
	}

	recipe := &models.Recipe{
		Title:           in.Title,
		Description:     in.Description,
		Instructions:    in.Instructions,
		BaseServings:    in.BaseServings,
		PrepTimeMinutes: in.PrepTimeMinutes,
		CookTimeMinutes: in.CookTimeMinutes,
		Difficulty:      in.Difficulty,
		Cuisine:         in.Cuisine,
		Tags:            in.Tags,
		Ingredients:     ingredients,
	}
	if err := s.Create(ctx, recipe); err != nil {
		return nil, err
	}
	return recipe, nil
}

func (s *Service) Get(ctx context.Context, idOrSlug string) (*models.Recipe, error) {
	return s.store.GetRecipe(ctx, idOrSlug)
}

func (s *Service) List(ctx context.Context, limit int) ([]models.RecipeSummary, error) {
	return s.store.ListRecipes(ctx, limit)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.store.DeleteRecipe(ctx, id); err != nil {
		return err
	}
	s.log.Info("deleted recipe", zap.String("id", id))
	return nil
}
