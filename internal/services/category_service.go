package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"khidmaBack/internal/cache"
	"khidmaBack/internal/models"
)

const categoryTreeTTL = 10 * time.Minute

type CategoryService struct {
	CategoryRepo CategoryStore
	Cache        cache.Cache
	Logger       Logger
}

// Tree returns active categories nested under their parents. The public tree is cached.
func (s *CategoryService) Tree(ctx context.Context) ([]models.Category, error) {
	var tree []models.Category
	if s.Cache != nil {
		if hit, err := s.Cache.Get(ctx, cache.KeyCategoryTree, &tree); err != nil {
			s.Logger.Errorf("category tree cache read: %v", err)
		} else if hit {
			return tree, nil
		}
	}
	flat, err := s.CategoryRepo.ListCategories(ctx, true)
	if err != nil {
		return nil, err
	}
	tree = models.BuildCategoryTree(flat)
	if s.Cache != nil {
		if err := s.Cache.Set(ctx, cache.KeyCategoryTree, tree, categoryTreeTTL); err != nil {
			s.Logger.Errorf("category tree cache write: %v", err)
		}
	}
	return tree, nil
}

// ListAll is the admin view including inactive categories.
func (s *CategoryService) ListAll(ctx context.Context) ([]models.Category, error) {
	flat, err := s.CategoryRepo.ListCategories(ctx, false)
	if err != nil {
		return nil, err
	}
	return models.BuildCategoryTree(flat), nil
}

func (s *CategoryService) GetCategory(ctx context.Context, id int64) (models.Category, error) {
	c, err := s.CategoryRepo.GetCategoryByID(ctx, id)
	if errors.Is(err, models.ErrNoRecord) {
		return models.Category{}, models.ErrCategoryNotFound
	}
	return c, err
}

func (s *CategoryService) CreateCategory(ctx context.Context, req models.CategoryRequest) (models.Category, error) {
	c := fromCategoryRequest(req)
	if err := s.checkParent(ctx, 0, c.ParentID); err != nil {
		return models.Category{}, err
	}
	created, err := s.CategoryRepo.CreateCategory(ctx, c)
	if err != nil {
		return models.Category{}, err
	}
	s.invalidate(ctx)
	return created, nil
}

func (s *CategoryService) UpdateCategory(ctx context.Context, id int64, req models.CategoryRequest) (models.Category, error) {
	if _, err := s.GetCategory(ctx, id); err != nil {
		return models.Category{}, err
	}
	c := fromCategoryRequest(req)
	c.ID = id
	if err := s.checkParent(ctx, id, c.ParentID); err != nil {
		return models.Category{}, err
	}
	updated, err := s.CategoryRepo.UpdateCategory(ctx, c)
	if err != nil {
		return models.Category{}, err
	}
	s.invalidate(ctx)
	return updated, nil
}

func (s *CategoryService) DeleteCategory(ctx context.Context, id int64) error {
	err := s.CategoryRepo.DeleteCategory(ctx, id)
	if errors.Is(err, models.ErrNoRecord) {
		return models.ErrCategoryNotFound
	}
	if err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

// checkParent allows a single level of nesting under an existing root.
func (s *CategoryService) checkParent(ctx context.Context, id int64, parentID *int64) error {
	if parentID == nil {
		return nil
	}
	if *parentID == id {
		return models.ErrInvalidAction
	}
	parent, err := s.GetCategory(ctx, *parentID)
	if err != nil {
		return err
	}
	if parent.ParentID != nil {
		return models.ErrInvalidAction
	}
	return nil
}

func (s *CategoryService) invalidate(ctx context.Context) {
	if s.Cache == nil {
		return
	}
	if err := s.Cache.Delete(ctx, cache.KeyCategoryTree); err != nil {
		s.Logger.Errorf("category tree cache invalidate: %v", err)
	}
}

func fromCategoryRequest(req models.CategoryRequest) models.Category {
	c := models.Category{
		ParentID:  req.ParentID,
		Slug:      strings.ToLower(strings.TrimSpace(req.Slug)),
		NameAr:    strings.TrimSpace(req.NameAr),
		NameEn:    strings.TrimSpace(req.NameEn),
		Icon:      req.Icon,
		SortOrder: req.SortOrder,
		IsActive:  true,
	}
	if req.IsActive != nil {
		c.IsActive = *req.IsActive
	}
	return c
}
