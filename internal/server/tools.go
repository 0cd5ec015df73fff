// internal/server/tools.go
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/ThinkInAIXYZ/go-mcp/protocol"
	"go.uber.org/zap"

	"mcp-recipe-box/internal/ingredient"
	"mcp-recipe-box/internal/models"
	"mcp-recipe-box/internal/recipes"
	"mcp-recipe-box/internal/scale"
)

type GetRecipeParams struct {
	Recipe string `json:"recipe" description:"Recipe id or slug"`
}

type ListRecipesParams struct {
	Limit int `json:"limit,omitempty" description:"Maximum number of recipes to return (default 12, max 50)"`
}

type CreateRecipeParams struct {
	Title           string             `json:"title" description:"Recipe title"`
	Description     string             `json:"description,omitempty" description:"Short description"`
	Instructions    string             `json:"instructions" description:"Preparation steps"`
	BaseServings    int                `json:"base_servings" description:"Servings the quantities are written for"`
	PrepTimeMinutes int                `json:"prep_time_minutes,omitempty"`
	CookTimeMinutes int                `json:"cook_time_minutes,omitempty"`
	Difficulty      models.Difficulty  `json:"difficulty,omitempty" description:"easy, medium or hard"`
	Cuisine         string             `json:"cuisine,omitempty"`
	Tags            []string           `json:"tags,omitempty" description:"Dietary tags such as vegetarian"`
	Ingredients     []scale.Ingredient `json:"ingredients" description:"Ingredients with registered units"`
}

type ImportRecipeParams struct {
	Title           string            `json:"title" description:"Recipe title"`
	Description     string            `json:"description,omitempty"`
	Instructions    string            `json:"instructions" description:"Preparation steps"`
	BaseServings    int               `json:"base_servings" description:"Servings the quantities are written for"`
	Ingredients     string            `json:"ingredients" description:"Ingredient list as free text, one per line"`
	PrepTimeMinutes int               `json:"prep_time_minutes,omitempty"`
	CookTimeMinutes int               `json:"cook_time_minutes,omitempty"`
	Difficulty      models.Difficulty `json:"difficulty,omitempty"`
	Cuisine         string            `json:"cuisine,omitempty"`
	Tags            []string          `json:"tags,omitempty"`
}

type DeleteRecipeParams struct {
	ID string `json:"id" description:"Recipe id"`
}

type ScaleRecipeParams struct {
	Recipe        string `json:"recipe" description:"Recipe id or slug"`
	Servings      int    `json:"servings" description:"Target number of servings"`
	ShowFractions *bool  `json:"show_fractions,omitempty" description:"Render small quantities as fractions (default true)"`
}

type ScaleIngredientsParams struct {
	Ingredients    []scale.Ingredient `json:"ingredients" description:"Ingredients to scale"`
	BaseServings   float64            `json:"base_servings" description:"Servings the quantities are written for"`
	TargetServings float64            `json:"target_servings" description:"Servings to scale to"`
	ShowFractions  *bool              `json:"show_fractions,omitempty"`
}

type ConvertUnitParams struct {
	Quantity float64 `json:"quantity" description:"Quantity to convert"`
	From     string  `json:"from" description:"Source unit"`
	To       string  `json:"to" description:"Target unit"`
}

type FormatQuantityParams struct {
	Quantity      float64 `json:"quantity"`
	Unit          string  `json:"unit"`
	ShowFractions *bool   `json:"show_fractions,omitempty"`
}

type ParseIngredientsParams struct {
	Text string `json:"text" description:"Ingredient list as free text, one per line"`
}

// extractParams safely extracts parameters from the request arguments
func extractParams(req *protocol.CallToolRequest, target interface{}) error {
	// Convert the Arguments map to JSON bytes, then unmarshal to target
	jsonBytes, err := json.Marshal(req.Arguments)
	if err != nil {
		return fmt.Errorf("%w: failed to marshal arguments: %w", ErrInvalidParams, err)
	}

	if err := json.Unmarshal(jsonBytes, target); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidParams, err)
	}

	return nil
}

func fractionsEnabled(flag *bool) bool {
	return flag == nil || *flag
}

func (s *RecipeBoxServer) handleGetRecipe(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params GetRecipeParams
	if err := extractParams(req, &params); err != nil {
		return nil, err
	}
	if strings.TrimSpace(params.Recipe) == "" {
		return nil, fmt.Errorf("%w: recipe is required", ErrInvalidParams)
	}

	recipe, err := s.recipes.Get(ctx, params.Recipe)
	if err != nil {
		return nil, err
	}
	return s.createJSONResponse(recipe)
}

func (s *RecipeBoxServer) handleListRecipes(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params ListRecipesParams
	if err := extractParams(req, &params); err != nil {
		return nil, err
	}

	list, err := s.recipes.List(ctx, params.Limit)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve recipes: %w", err)
	}
	return s.createJSONResponse(list)
}

func (s *RecipeBoxServer) handleCreateRecipe(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params CreateRecipeParams
	if err := extractParams(req, &params); err != nil {
		return nil, err
	}

	recipe := &models.Recipe{
		Title:           params.Title,
		Description:     params.Description,
		Instructions:    params.Instructions,
		BaseServings:    params.BaseServings,
		PrepTimeMinutes: params.PrepTimeMinutes,
		CookTimeMinutes: params.CookTimeMinutes,
		Difficulty:      params.Difficulty,
		Cuisine:         params.Cuisine,
		Tags:            params.Tags,
		Ingredients:     params.Ingredients,
	}
	if err := s.recipes.Create(ctx, recipe); err != nil {
		return nil, err
	}
	return s.createJSONResponse(recipe)
}

func (s *RecipeBoxServer) handleImportRecipe(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params ImportRecipeParams
	if err := extractParams(req, &params); err != nil {
		return nil, err
	}

	recipe, err := s.recipes.Import(ctx, recipes.ImportInput{
		Title:           params.Title,
		Description:     params.Description,
		Instructions:    params.Instructions,
		BaseServings:    params.BaseServings,
		Ingredients:     params.Ingredients,
		Tags:            params.Tags,
		Cuisine:         params.Cuisine,
		Difficulty:      params.Difficulty,
		PrepTimeMinutes: params.PrepTimeMinutes,
		CookTimeMinutes: params.CookTimeMinutes,
	})
	if err != nil {
		return nil, err
	}
	return s.createJSONResponse(recipe)
}

func (s *RecipeBoxServer) handleDeleteRecipe(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params DeleteRecipeParams
	if err := extractParams(req, &params); err != nil {
		return nil, err
	}
	if params.ID == "" {
		return nil, fmt.Errorf("%w: id is required", ErrInvalidParams)
	}

	if err := s.recipes.Delete(ctx, params.ID); err != nil {
		return nil, err
	}
	return s.createJSONResponse(map[string]interface{}{"deleted": params.ID})
}

// handleScaleRecipe returns a stored recipe scaled to the requested servings.
func (s *RecipeBoxServer) handleScaleRecipe(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params ScaleRecipeParams
	if err := extractParams(req, &params); err != nil {
		return nil, err
	}
	if strings.TrimSpace(params.Recipe) == "" {
		return nil, fmt.Errorf("%w: recipe is required", ErrInvalidParams)
	}

	scaled, err := s.recipes.Scaled(ctx, params.Recipe, params.Servings, fractionsEnabled(params.ShowFractions))
	if err != nil {
		return nil, err
	}
	return s.createJSONResponse(scaled)
}

// handleScaleIngredients scales an ad-hoc ingredient list without touching
// storage.
func (s *RecipeBoxServer) handleScaleIngredients(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params ScaleIngredientsParams
	if err := extractParams(req, &params); err != nil {
		return nil, err
	}

	for i, ing := range params.Ingredients {
		if !ing.Unit.Valid() {
			return nil, fmt.Errorf("%w: ingredient %d (%s): %w", ErrInvalidParams, i+1, ing.Name,
				&scale.UnknownUnitError{Unit: string(ing.Unit)})
		}
	}

	scaled, err := scale.Ingredients(params.Ingredients, params.BaseServings, params.TargetServings)
	if err != nil {
		return nil, err
	}

	result := map[string]interface{}{
		"scaled_ingredients": scaled,
		"display":            recipes.DisplayLines(scaled, fractionsEnabled(params.ShowFractions)),
	}
	return s.createJSONResponse(result)
}

func (s *RecipeBoxServer) handleConvertUnit(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params ConvertUnitParams
	if err := extractParams(req, &params); err != nil {
		return nil, err
	}

	from, err := ingredient.ParseUnit(params.From)
	if err != nil {
		return nil, err
	}
	to, err := ingredient.ParseUnit(params.To)
	if err != nil {
		return nil, err
	}

	converted, err := scale.Convert(params.Quantity, from, to)
	if err != nil {
		return nil, err
	}

	result := map[string]interface{}{
		"quantity": params.Quantity,
		"from":     from,
		"to":       to,
		"result":   converted,
		"display":  scale.Format(scale.Round(converted, to), to),
	}
	return s.createJSONResponse(result)
}

func (s *RecipeBoxServer) handleFormatQuantity(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params FormatQuantityParams
	if err := extractParams(req, &params); err != nil {
		return nil, err
	}

	unit, err := ingredient.ParseUnit(params.Unit)
	if err != nil {
		return nil, err
	}

	text := scale.FormatQuantity(params.Quantity, unit, fractionsEnabled(params.ShowFractions))
	return s.createJSONResponse(map[string]interface{}{"text": text, "unit": unit})
}

func (s *RecipeBoxServer) handleParseIngredients(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params ParseIngredientsParams
	if err := extractParams(req, &params); err != nil {
		return nil, err
	}

	parsed := ingredient.Parse(params.Text)
	if parsed == nil {
		parsed = []ingredient.Parsed{}
	}
	return s.createJSONResponse(parsed)
}

func (s *RecipeBoxServer) handleListUnits(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	type unitInfo struct {
		Unit scale.Unit     `json:"unit"`
		Type scale.UnitType `json:"type"`
	}

	units := scale.Units()
	out := make([]unitInfo, len(units))
	for i, u := range units {
		out[i] = unitInfo{Unit: u, Type: u.Type()}
	}
	return s.createJSONResponse(out)
}

func (s *RecipeBoxServer) registerTools() {
	s.tools = map[string]toolHandler{
		"get_recipe":        s.handleGetRecipe,
		"list_recipes":      s.handleListRecipes,
		"create_recipe":     s.handleCreateRecipe,
		"import_recipe":     s.handleImportRecipe,
		"delete_recipe":     s.handleDeleteRecipe,
		"scale_recipe":      s.handleScaleRecipe,
		"scale_ingredients": s.handleScaleIngredients,
		"convert_unit":      s.handleConvertUnit,
		"format_quantity":   s.handleFormatQuantity,
		"parse_ingredients": s.handleParseIngredients,
		"list_units":        s.handleListUnits,
	}

	s.log.Debug("registered tools", zap.Strings("tools", s.ToolNames()))
}

// ToolNames returns the registered tool names, sorted.
func (s *RecipeBoxServer) ToolNames() []string {
	names := make([]string, 0, len(s.tools))
	for name := range s.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
