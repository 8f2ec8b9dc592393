package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"regexp"

	"recipe-browser/internal/core/recipe"
	"recipe-browser/internal/infrastructure/config"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

var tableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// PostgresSource 從 PostgreSQL 資料表載入目錄，依 position 排序
type PostgresSource struct {
	db    *sqlx.DB
	table string
}

// recipeRow 資料表的一列；食材與用具以 JSONB 儲存，以文字形式傳遞
type recipeRow struct {
	ID          int           `db:"id"`
	Position    int           `db:"position"`
	Name        string        `db:"name"`
	Image       string        `db:"image"`
	Servings    sql.NullInt64 `db:"servings"`
	Time        int           `db:"time"`
	Description string        `db:"description"`
	Appliance   string        `db:"appliance"`
	Ustensils   string        `db:"ustensils"`
	Ingredients string        `db:"ingredients"`
}

// NewPostgresSource 連線資料庫
func NewPostgresSource(cfg config.CatalogConfig) (*PostgresSource, error) {
	table := cfg.Table
	if table == "" {
		table = "recipes"
	}
	if !tableName.MatchString(table) {
		return nil, fmt.Errorf("invalid catalog table name %q", table)
	}

	db, err := sqlx.Connect("postgres", cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return NewPostgresSourceWithDB(db, table), nil
}

// NewPostgresSourceWithDB 使用既有連線
func NewPostgresSourceWithDB(db *sqlx.DB, table string) *PostgresSource {
	return &PostgresSource{db: db, table: table}
}

func (s *PostgresSource) Name() string { return "postgres:" + s.table }

// EnsureSchema 建立資料表（若不存在）
func (s *PostgresSource) EnsureSchema(ctx context.Context) error {
	schema := fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS %s (
		id INTEGER PRIMARY KEY,
		position INTEGER NOT NULL,
		name TEXT NOT NULL,
		image TEXT NOT NULL,
		servings INTEGER,
		time INTEGER NOT NULL DEFAULT 0,
		description TEXT NOT NULL,
		appliance TEXT NOT NULL,
		ustensils JSONB NOT NULL DEFAULT '[]',
		ingredients JSONB NOT NULL
	);`, s.table)

	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create %s table: %w", s.table, err)
	}
	return nil
}

func (s *PostgresSource) Load(ctx context.Context) (*recipe.Catalog, error) {
	query := fmt.Sprintf(
		"SELECT id, position, name, image, servings, time, description, appliance, ustensils, ingredients FROM %s ORDER BY position, id",
		s.table,
	)

	var rows []recipeRow
	if err := s.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("failed to query recipes: %w", err)
	}

	recipes, err := rowsToRecipes(rows)
	if err != nil {
		return nil, err
	}
	return recipe.NewCatalog(recipes)
}

// Import 以目錄內容覆寫資料表，在單一交易中完成
func (s *PostgresSource) Import(ctx context.Context, c *recipe.Catalog) error {
	rows, err := recipesToRows(c.Recipes())
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s", s.table)); err != nil {
		return fmt.Errorf("failed to clear %s: %w", s.table, err)
	}

	insert := fmt.Sprintf(`INSERT INTO %s (id, position, name, image, servings, time, description, appliance, ustensils, ingredients)
		VALUES (:id, :position, :name, :image, :servings, :time, :description, :appliance, :ustensils, :ingredients)`, s.table)
	for _, row := range rows {
		if _, err := tx.NamedExecContext(ctx, insert, row); err != nil {
			return fmt.Errorf("failed to insert recipe %d: %w", row.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit import: %w", err)
	}
	return nil
}

// Close 關閉資料庫連線
func (s *PostgresSource) Close() error {
	return s.db.Close()
}

func rowsToRecipes(rows []recipeRow) ([]recipe.Recipe, error) {
	recipes := make([]recipe.Recipe, 0, len(rows))
	for _, row := range rows {
		r := recipe.Recipe{
			ID:          row.ID,
			Name:        row.Name,
			Image:       row.Image,
			Servings:    int(row.Servings.Int64),
			Time:        row.Time,
			Description: row.Description,
			Appliance:   row.Appliance,
		}
		if err := json.Unmarshal([]byte(row.Ingredients), &r.Ingredients); err != nil {
			return nil, fmt.Errorf("failed to unmarshal ingredients of recipe %d: %w", row.ID, err)
		}
		if row.Ustensils != "" {
			if err := json.Unmarshal([]byte(row.Ustensils), &r.Ustensils); err != nil {
				return nil, fmt.Errorf("failed to unmarshal ustensils of recipe %d: %w", row.ID, err)
			}
		}
		recipes = append(recipes, r)
	}
	return recipes, nil
}

func recipesToRows(recipes []recipe.Recipe) ([]recipeRow, error) {
	rows := make([]recipeRow, 0, len(recipes))
	for i, r := range recipes {
		ingredients, err := json.Marshal(r.Ingredients)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal ingredients: %w", err)
		}
		ustensils := r.Ustensils
		if ustensils == nil {
			ustensils = []string{}
		}
		utensilsJSON, err := json.Marshal(ustensils)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal ustensils: %w", err)
		}
		rows = append(rows, recipeRow{
			ID:          r.ID,
			Position:    i + 1,
			Name:        r.Name,
			Image:       r.Image,
			Servings:    sql.NullInt64{Int64: int64(r.Servings), Valid: r.Servings > 0},
			Time:        r.Time,
			Description: r.Description,
			Appliance:   r.Appliance,
			Ustensils:   string(utensilsJSON),
			Ingredients: string(ingredients),
		})
	}
	return rows, nil
}
