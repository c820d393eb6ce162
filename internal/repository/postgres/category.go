package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/arjan001/tezzaz-hair-kenya-glow-sub000/internal/entity"
	"github.com/arjan001/tezzaz-hair-kenya-glow-sub000/internal/repository"
)

type categoryRepository struct {
	db *sql.DB
}

func NewCategoryRepository(db *sql.DB) repository.CategoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) ListCategories(ctx context.Context) ([]entity.Category, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, name, slug, sort_order FROM categories ORDER BY sort_order, name")
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	var categories []entity.Category
	for rows.Next() {
		var c entity.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.SortOrder); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (r *categoryRepository) Seed(ctx context.Context, categories []entity.Category) error {
	for _, c := range categories {
		_, err := r.db.ExecContext(ctx,
			"INSERT INTO categories (id, name, slug, sort_order) VALUES ($1, $2, $3, $4) ON CONFLICT (id) DO NOTHING",
			c.ID, c.Name, c.Slug, c.SortOrder,
		)
		if err != nil {
			return fmt.Errorf("failed to seed category %s: %w", c.ID, err)
		}
	}
	return nil
}
