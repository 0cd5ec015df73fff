// internal/storage/sqlite.go
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"mcp-recipe-box/internal/models"
	"mcp-recipe-box/internal/scale"
)

var (
	ErrNotFound      = errors.New("recipe not found")
	ErrAlreadyExists = errors.New("recipe already exists")
)

const (
	DefaultListLimit = 12
	MaxListLimit     = 50
)

// Fixed-width so that stored timestamps sort lexicographically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

type SQLiteStorage struct {
	db  *sql.DB
	log *zap.Logger
}

func NewSQLiteStorage(dbPath string, log *zap.Logger) (*SQLiteStorage, error) {
	if log == nil {
		log = zap.NewNop()
	}

	if dir := filepath.Dir(dbPath); dir != "." && dbPath != ":memory:" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dsn(dbPath))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A :memory: database exists per connection.
	db.SetMaxOpenConns(1)

	storage := &SQLiteStorage{db: db, log: log}
	if err := storage.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	log.Debug("opened recipe database", zap.String("path", dbPath))
	return storage, nil
}

func dsn(dbPath string) string {
	sep := "?"
	if strings.Contains(dbPath, "?") {
		sep = "&"
	}
	return dbPath + sep + "_pragma=foreign_keys(1)"
}

func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

func (s *SQLiteStorage) initSchema() error {
	schema := `
    CREATE TABLE IF NOT EXISTS recipes (
        id TEXT PRIMARY KEY,
        slug TEXT NOT NULL UNIQUE,
        title TEXT NOT NULL,
        description TEXT NOT NULL DEFAULT '',
        instructions TEXT NOT NULL,
        base_servings INTEGER NOT NULL,
        prep_time_minutes INTEGER NOT NULL DEFAULT 0,
        cook_time_minutes INTEGER NOT NULL DEFAULT 0,
        difficulty TEXT NOT NULL DEFAULT '',
        cuisine TEXT NOT NULL DEFAULT '',
        created_at TEXT NOT NULL,
        updated_at TEXT NOT NULL
    );

    CREATE TABLE IF NOT EXISTS recipe_ingredients (
        id TEXT NOT NULL,
        recipe_id TEXT NOT NULL,
        order_index INTEGER NOT NULL,
        name TEXT NOT NULL,
        quantity REAL NOT NULL,
        unit TEXT NOT NULL,
        notes TEXT NOT NULL DEFAULT '',
        PRIMARY KEY (recipe_id, id),
        FOREIGN KEY (recipe_id) REFERENCES recipes(id) ON DELETE CASCADE
    );

    CREATE TABLE IF NOT EXISTS recipe_tags (
        recipe_id TEXT NOT NULL,
        tag TEXT NOT NULL,
        PRIMARY KEY (recipe_id, tag),
        FOREIGN KEY (recipe_id) REFERENCES recipes(id) ON DELETE CASCADE
    );

    CREATE INDEX IF NOT EXISTS idx_recipes_created_at ON recipes(created_at);
    CREATE INDEX IF NOT EXISTS idx_recipe_ingredients_recipe_id ON recipe_ingredients(recipe_id, order_index);
    `

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// SaveRecipe inserts recipe with its ingredients and tags in one
// transaction. Missing ids, slug and timestamps are filled in on recipe.
func (s *SQLiteStorage) SaveRecipe(ctx context.Context, recipe *models.Recipe) error {
	if recipe.ID == "" {
		recipe.ID = uuid.NewString()
	}
	if recipe.Slug == "" {
		recipe.Slug = models.Slugify(recipe.Title)
	}
	if recipe.Slug == "" {
		recipe.Slug = recipe.ID
	}
	now := time.Now().UTC()
	if recipe.CreatedAt.IsZero() {
		recipe.CreatedAt = now
	}
	recipe.UpdatedAt = now
	for i := range recipe.Ingredients {
		if recipe.Ingredients[i].ID == "" {
			recipe.Ingredients[i].ID = uuid.NewString()
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx, `SELECT 1 FROM recipes WHERE id = ? OR slug = ?`, recipe.ID, recipe.Slug).Scan(&exists)
	switch {
	case err == nil:
		return fmt.Errorf("%w: %s", ErrAlreadyExists, recipe.Slug)
	case !errors.Is(err, sql.ErrNoRows):
		return fmt.Errorf("failed to check slug: %w", err)
	}

	recipeQuery := `
        INSERT INTO recipes (id, slug, title, description, instructions, base_servings,
            prep_time_minutes, cook_time_minutes, difficulty, cuisine, created_at, updated_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
    `
	_, err = tx.ExecContext(ctx, recipeQuery,
		recipe.ID, recipe.Slug, recipe.Title, recipe.Description, recipe.Instructions,
		recipe.BaseServings, recipe.PrepTimeMinutes, recipe.CookTimeMinutes,
		string(recipe.Difficulty), recipe.Cuisine,
		recipe.CreatedAt.UTC().Format(timeLayout), recipe.UpdatedAt.Format(timeLayout))
	if err != nil {
		return fmt.Errorf("failed to insert recipe: %w", err)
	}

	ingredientQuery := `
        INSERT INTO recipe_ingredients (id, recipe_id, order_index, name, quantity, unit, notes)
        VALUES (?, ?, ?, ?, ?, ?, ?)
    `
	for i, ing := range recipe.Ingredients {
		_, err = tx.ExecContext(ctx, ingredientQuery,
			ing.ID, recipe.ID, i, ing.Name, ing.Quantity, string(ing.Unit), ing.Notes)
		if err != nil {
			return fmt.Errorf("failed to insert ingredient: %w", err)
		}
	}

	for _, tag := range recipe.Tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" {
			continue
		}
		_, err = tx.ExecContext(ctx, `INSERT OR IGNORE INTO recipe_tags (recipe_id, tag) VALUES (?, ?)`, recipe.ID, tag)
		if err != nil {
			return fmt.Errorf("failed to insert tag: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit recipe: %w", err)
	}

	s.log.Debug("saved recipe",
		zap.String("id", recipe.ID),
		zap.String("slug", recipe.Slug),
		zap.Int("ingredients", len(recipe.Ingredients)))
	return nil
}

// GetRecipe loads a recipe by id or slug.
func (s *SQLiteStorage) GetRecipe(ctx context.Context, idOrSlug string) (*models.Recipe, error) {
	query := `
        SELECT id, slug, title, description, instructions, base_servings,
            prep_time_minutes, cook_time_minutes, difficulty, cuisine, created_at, updated_at
        FROM recipes
        WHERE id = ? OR slug = ?
        LIMIT 1
    `

	recipe := &models.Recipe{}
	var difficulty, createdAtStr, updatedAtStr string
	err := s.db.QueryRowContext(ctx, query, idOrSlug, idOrSlug).Scan(
		&recipe.ID, &recipe.Slug, &recipe.Title, &recipe.Description, &recipe.Instructions,
		&recipe.BaseServings, &recipe.PrepTimeMinutes, &recipe.CookTimeMinutes,
		&difficulty, &recipe.Cuisine, &createdAtStr, &updatedAtStr)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, idOrSlug)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query recipe: %w", err)
	}
	recipe.Difficulty = models.Difficulty(difficulty)

	if recipe.CreatedAt, err = time.Parse(timeLayout, createdAtStr); err != nil {
		return nil, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if recipe.UpdatedAt, err = time.Parse(timeLayout, updatedAtStr); err != nil {
		return nil, fmt.Errorf("failed to parse updated_at: %w", err)
	}

	if err := s.loadIngredients(ctx, recipe); err != nil {
		return nil, fmt.Errorf("failed to load ingredients for recipe %s: %w", recipe.ID, err)
	}
	if err := s.loadTags(ctx, recipe); err != nil {
		return nil, fmt.Errorf("failed to load tags for recipe %s: %w", recipe.ID, err)
	}

	return recipe, nil
}

func (s *SQLiteStorage) loadIngredients(ctx context.Context, recipe *models.Recipe) error {
	query := `
        SELECT id, name, quantity, unit, notes
        FROM recipe_ingredients
        WHERE recipe_id = ?
        ORDER BY order_index
    `

	rows, err := s.db.QueryContext(ctx, query, recipe.ID)
	if err != nil {
		return fmt.Errorf("failed to query ingredients: %w", err)
	}
	defer rows.Close()

	var ingredients []scale.Ingredient
	for rows.Next() {
		var ing scale.Ingredient
		var unit string
		if err := rows.Scan(&ing.ID, &ing.Name, &ing.Quantity, &unit, &ing.Notes); err != nil {
			return fmt.Errorf("failed to scan ingredient: %w", err)
		}
		ing.Unit = scale.Unit(unit)
		ingredients = append(ingredients, ing)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to read ingredients: %w", err)
	}

	recipe.Ingredients = ingredients
	return nil
}

func (s *SQLiteStorage) loadTags(ctx context.Context, recipe *models.Recipe) error {
	rows, err := s.db.QueryContext(ctx, `SELECT tag FROM recipe_tags WHERE recipe_id = ? ORDER BY tag`, recipe.ID)
	if err != nil {
		return fmt.Errorf("failed to query tags: %w", err)
	}
	defer rows.Close()

	var tags []string
	for rows.Next() {
		var tag string
		if err := rows.Scan(&tag); err != nil {
			return fmt.Errorf("failed to scan tag: %w", err)
		}
		tags = append(tags, tag)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to read tags: %w", err)
	}

	recipe.Tags = tags
	return nil
}

// ListRecipes returns the newest recipes first. A non-positive limit uses
// DefaultListLimit; limits above MaxListLimit are capped.
func (s *SQLiteStorage) ListRecipes(ctx context.Context, limit int) ([]models.RecipeSummary, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}

	query := `
        SELECT id, slug, title, base_servings, cuisine, created_at
        FROM recipes
        ORDER BY created_at DESC, id
        LIMIT ?
    `

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recipes: %w", err)
	}
	defer rows.Close()

	summaries := []models.RecipeSummary{}
	for rows.Next() {
		var sum models.RecipeSummary
		var createdAtStr string
		if err := rows.Scan(&sum.ID, &sum.Slug, &sum.Title, &sum.BaseServings, &sum.Cuisine, &createdAtStr); err != nil {
			return nil, fmt.Errorf("failed to scan recipe: %w", err)
		}
		if sum.CreatedAt, err = time.Parse(timeLayout, createdAtStr); err != nil {
			return nil, fmt.Errorf("failed to parse created_at: %w", err)
		}
		summaries = append(summaries, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read recipes: %w", err)
	}

	return summaries, nil
}

// DeleteRecipe removes a recipe; ingredients and tags go with it.
func (s *SQLiteStorage) DeleteRecipe(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM recipes WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete recipe: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete recipe: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	s.log.Debug("deleted recipe", zap.String("id", id))
	return nil
}
