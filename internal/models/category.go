package models

import (
	"time"
)

type Category struct {
	ID        int64      `db:"id" json:"id"`
	ParentID  *int64     `db:"parent_id" json:"parent_id,omitempty"`
	Slug      string     `db:"slug" json:"slug"`
	NameAr    string     `db:"name_ar" json:"name_ar"`
	NameEn    string     `db:"name_en" json:"name_en"`
	Icon      *string    `db:"icon" json:"icon,omitempty"`
	SortOrder int        `db:"sort_order" json:"sort_order"`
	IsActive  bool       `db:"is_active" json:"is_active"`
	Children  []Category `db:"-" json:"children,omitempty"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt *time.Time `db:"updated_at" json:"updated_at,omitempty"`
}

type CategoryRequest struct {
	ParentID  *int64  `json:"parent_id" validate:"omitempty,gt=0"`
	Slug      string  `json:"slug" validate:"required,min=2,max=80,slug"`
	NameAr    string  `json:"name_ar" validate:"required,min=2,max=120"`
	NameEn    string  `json:"name_en" validate:"required,min=2,max=120"`
	Icon      *string `json:"icon" validate:"omitempty,max=255"`
	SortOrder int     `json:"sort_order" validate:"gte=0"`
	IsActive  *bool   `json:"is_active"`
}

// BuildCategoryTree nests categories under their parents preserving input order.
func BuildCategoryTree(flat []Category) []Category {
	children := make(map[int64][]Category)
	var roots []Category
	for _, c := range flat {
		if c.ParentID == nil {
			roots = append(roots, c)
			continue
		}
		children[*c.ParentID] = append(children[*c.ParentID], c)
	}
	var attach func(c Category) Category
	attach = func(c Category) Category {
		for _, child := range children[c.ID] {
			c.Children = append(c.Children, attach(child))
		}
		return c
	}
	tree := make([]Category, 0, len(roots))
	for _, r := range roots {
		tree = append(tree, attach(r))
	}
	return tree
}
