package repositories

import (
	"context"

	"github.com/jmoiron/sqlx"

	"khidmaBack/internal/models"
)

type CategoryRepository struct {
	DB *sqlx.DB
}

const categoryColumns = `id, parent_id, slug, name_ar, name_en, icon, sort_order, is_active, created_at, updated_at`

func (r *CategoryRepository) ListCategories(ctx context.Context, activeOnly bool) ([]models.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories`
	if activeOnly {
		query += ` WHERE is_active = 1`
	}
	query += ` ORDER BY sort_order, id`

	categories := []models.Category{}
	if err := r.DB.SelectContext(ctx, &categories, query); err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *CategoryRepository) GetCategoryByID(ctx context.Context, id int64) (models.Category, error) {
	var c models.Category
	if err := r.DB.GetContext(ctx, &c, `SELECT `+categoryColumns+` FROM categories WHERE id = ?`, id); err != nil {
		return models.Category{}, notFound(err)
	}
	return c, nil
}

func (r *CategoryRepository) CreateCategory(ctx context.Context, c models.Category) (models.Category, error) {
	result, err := r.DB.ExecContext(ctx, `
        INSERT INTO categories (parent_id, slug, name_ar, name_en, icon, sort_order, is_active)
        VALUES (?, ?, ?, ?, ?, ?, ?)`,
		c.ParentID, c.Slug, c.NameAr, c.NameEn, c.Icon, c.SortOrder, c.IsActive)
	if err != nil {
		if IsDuplicateError(err) {
			return models.Category{}, models.ErrDuplicateSlug
		}
		return models.Category{}, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return models.Category{}, err
	}
	return r.GetCategoryByID(ctx, id)
}

func (r *CategoryRepository) UpdateCategory(ctx context.Context, c models.Category) (models.Category, error) {
	result, err := r.DB.ExecContext(ctx, `
        UPDATE categories
        SET parent_id = ?, slug = ?, name_ar = ?, name_en = ?, icon = ?, sort_order = ?, is_active = ?,
            updated_at = CURRENT_TIMESTAMP
        WHERE id = ?`,
		c.ParentID, c.Slug, c.NameAr, c.NameEn, c.Icon, c.SortOrder, c.IsActive, c.ID)
	if err != nil {
		if IsDuplicateError(err) {
			return models.Category{}, models.ErrDuplicateSlug
		}
		return models.Category{}, err
	}
	if err := expectOne(result); err != nil {
		return models.Category{}, err
	}
	return r.GetCategoryByID(ctx, c.ID)
}

// DeleteCategory removes a category that has neither services nor children.
func (r *CategoryRepository) DeleteCategory(ctx context.Context, id int64) error {
	return withTx(ctx, r.DB, func(tx *sqlx.Tx) error {
		var used int
		err := tx.GetContext(ctx, &used, `
            SELECT (SELECT COUNT(*) FROM services WHERE category_id = ?) +
                   (SELECT COUNT(*) FROM categories WHERE parent_id = ?)`, id, id)
		if err != nil {
			return err
		}
		if used > 0 {
			return models.ErrCategoryInUse
		}
		result, err := tx.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
		if err != nil {
			return err
		}
		return expectOne(result)
	})
}
