package recipes

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"mcp-recipe-box/internal/models"
	"mcp-recipe-box/internal/scale"
	"mcp-recipe-box/internal/storage"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	log := zaptest.NewLogger(t)
	store, err := storage.NewSQLiteStorage(filepath.Join(t.TempDir(), "recipes.db"), log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return NewService(store, 20, log)
}

func createPancakes(t *testing.T, svc *Service) *models.Recipe {
	t.Helper()
	r := &models.Recipe{
		Title:        "  Pancakes ",
		Instructions: "Mix and fry.",
		BaseServings: 4,
		Ingredients: []scale.Ingredient{
			{Name: "Flour", Quantity: 500, Unit: scale.Gram},
			{Name: "Milk", Quantity: 1, Unit: scale.Cup},
			{Name: "Eggs", Quantity: 3, Unit: scale.Piece},
			{Name: "Salt", Quantity: 0.5, Unit: scale.Teaspoon},
		},
	}
	require.NoError(t, svc.Create(context.Background(), r))
	return r
}

func TestScaled(t *testing.T) {
	svc := newTestService(t)
	r := createPancakes(t, svc)
	assert.Equal(t, "Pancakes", r.Title)
	assert.Equal(t, "pancakes", r.Slug)

	got, err := svc.Scaled(context.Background(), "pancakes", 2, true)
	require.NoError(t, err)
	assert.Equal(t, 2, got.TargetServings)
	assert.Equal(t, r.ID, got.ID)
	require.Len(t, got.ScaledIngredients, 4)

	want := []float64{250, 0.5, 2, 0.25}
	for i, ing := range got.ScaledIngredients {
		assert.Equal(t, want[i], ing.Quantity, ing.Name)
		assert.Equal(t, 0.5, ing.ScaleFactor)
		assert.Equal(t, r.Ingredients[i].Quantity, ing.OriginalQuantity)
	}
	assert.Equal(t, []string{"250 g Flour", "½ cup Milk", "2 Eggs", "¼ tsp Salt"}, got.Display)
}

func TestScaledWithoutFractions(t *testing.T) {
	svc := newTestService(t)
	createPancakes(t, svc)

	got, err := svc.Scaled(context.Background(), "pancakes", 2, false)
	require.NoError(t, err)
	assert.Equal(t, "0.5 cup Milk", got.Display[1])
}

func TestScaledErrors(t *testing.T) {
	svc := newTestService(t)
	createPancakes(t, svc)
	ctx := context.Background()

	_, err := svc.Scaled(ctx, "pancakes", 0, true)
	var invalid *scale.InvalidServingsError
	assert.True(t, errors.As(err, &invalid))

	_, err = svc.Scaled(ctx, "pancakes", 21, true)
	assert.True(t, errors.Is(err, ErrServingsOutOfRange))

	_, err = svc.Scaled(ctx, "waffles", 2, true)
	assert.True(t, errors.Is(err, storage.ErrNotFound))
}

func TestCreateRejectsInvalid(t *testing.T) {
	svc := newTestService(t)
	err := svc.Create(context.Background(), &models.Recipe{Title: "Empty"})
	assert.True(t, errors.Is(err, models.ErrInvalidRecipe))

	list, err := svc.List(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestImport(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	r, err := svc.Import(ctx, ImportInput{
		Title:        "Garlic Bread",
		Instructions: "Spread and bake.",
		BaseServings: 2,
		Ingredients:  "1 baguette\n4 cloves garlic, minced\n3 tbsp butter (softened)\n",
		Tags:         []string{"side"},
	})
	require.NoError(t, err)

	got, err := svc.Get(ctx, r.Slug)
	require.NoError(t, err)
	require.Len(t, got.Ingredients, 3)
	assert.Equal(t, scale.Piece, got.Ingredients[0].Unit)
	assert.Equal(t, "baguette", got.Ingredients[0].Name)
	assert.Equal(t, scale.Clove, got.Ingredients[1].Unit)
	assert.Equal(t, "minced", got.Ingredients[1].Notes)
	assert.Equal(t, 3.0, got.Ingredients[2].Quantity)
	assert.Equal(t, []string{"side"}, got.Tags)
}

func TestImportWithoutIngredients(t *testing.T) {
	svc := newTestService(t)
	_, err := svc.Import(context.Background(), ImportInput{
		Title:        "Air",
		Instructions: "Breathe.",
		BaseServings: 1,
		Ingredients:  "\n\n",
	})
	assert.True(t, errors.Is(err, models.ErrInvalidRecipe))
}

func TestDelete(t *testing.T) {
	svc := newTestService(t)
	r := createPancakes(t, svc)
	ctx := context.Background()

	require.NoError(t, svc.Delete(ctx, r.ID))
	_, err := svc.Get(ctx, r.ID)
	assert.True(t, errors.Is(err, storage.ErrNotFound))
	assert.True(t, errors.Is(svc.Delete(ctx, r.ID), storage.ErrNotFound))
}

func TestDisplayLines(t *testing.T) {
	scaled, err := scale.Ingredients([]scale.Ingredient{
		{Name: "Vanilla", Quantity: 0.125, Unit: scale.Teaspoon, Notes: "pure"},
	}, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"⅛ tsp Vanilla (pure)"}, DisplayLines(scaled, true))
}

type countingStore struct {
	Store
	reads int
}

func (c *countingStore) GetRecipe(ctx context.Context, idOrSlug string) (*models.Recipe, error) {
	c.reads++
	return nil, storage.ErrNotFound
}

func TestScaledChecksServingsBeforeReading(t *testing.T) {
	store := &countingStore{}
	svc := NewService(store, 20, zaptest.NewLogger(t))
	ctx := context.Background()

	for _, servings := range []int{0, -3} {
		_, err := svc.Scaled(ctx, "missing", servings, true)
		var invalid *scale.InvalidServingsError
		require.True(t, errors.As(err, &invalid), "servings %d", servings)
		assert.Equal(t, float64(servings), invalid.Target)
	}

	_, err := svc.Scaled(ctx, "missing", 21, true)
	assert.True(t, errors.Is(err, ErrServingsOutOfRange))

	assert.Equal(t, 0, store.reads)

	_, err = svc.Scaled(ctx, "missing", 2, true)
	assert.True(t, errors.Is(err, storage.ErrNotFound))
	assert.Equal(t, 1, store.reads)
}
