package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"khidmaBack/internal/models"
	"khidmaBack/internal/storage"
)

const maxServiceImages = 10

type ServiceService struct {
	ServiceRepo  ServiceStore
	CategoryRepo CategoryStore
	Uploader     storage.Uploader
	Notifier     Notifier
	Logger       Logger
}

func (s *ServiceService) CreateService(ctx context.Context, sellerID int64, req models.ServiceRequest) (models.Service, error) {
	if err := s.checkCategory(ctx, req.CategoryID); err != nil {
		return models.Service{}, err
	}
	svc := fromServiceRequest(req)
	svc.SellerID = sellerID
	return s.ServiceRepo.CreateService(ctx, svc)
}

// UpdateService replaces the listing content. Any edit sends it back to review.
func (s *ServiceService) UpdateService(ctx context.Context, actor models.Actor, id int64, req models.ServiceRequest) (models.Service, error) {
	current, err := s.owned(ctx, actor, id)
	if err != nil {
		return models.Service{}, err
	}
	if err := s.checkCategory(ctx, req.CategoryID); err != nil {
		return models.Service{}, err
	}
	svc := fromServiceRequest(req)
	svc.ID = id
	svc.SellerID = current.SellerID
	if req.Images == nil {
		svc.Images = current.Images
	}
	return s.ServiceRepo.UpdateService(ctx, svc)
}

func (s *ServiceService) DeleteService(ctx context.Context, actor models.Actor, id int64) error {
	svc, err := s.owned(ctx, actor, id)
	if err != nil {
		return err
	}
	if err := s.ServiceRepo.DeleteService(ctx, id); err != nil {
		if errors.Is(err, models.ErrNoRecord) {
			return models.ErrServiceNotFound
		}
		return err
	}
	s.removeImages(ctx, svc.Images)
	return nil
}

// GetService returns a listing. Unapproved listings are visible to their seller and admins only.
func (s *ServiceService) GetService(ctx context.Context, viewer *models.Actor, id int64) (models.Service, error) {
	svc, err := s.ServiceRepo.GetServiceByID(ctx, id)
	if errors.Is(err, models.ErrNoRecord) {
		return models.Service{}, models.ErrServiceNotFound
	}
	if err != nil {
		return models.Service{}, err
	}
	if svc.Status != models.ServiceStatusApproved {
		if viewer == nil || (!viewer.IsAdmin() && viewer.UserID != svc.SellerID) {
			return models.Service{}, models.ErrServiceNotFound
		}
	}
	return svc, nil
}

func (s *ServiceService) ListPublic(ctx context.Context, f models.ServiceFilter) ([]models.Service, int, error) {
	f.PublicOnly = true
	f.Status = ""
	return s.ServiceRepo.ListServices(ctx, f)
}

func (s *ServiceService) ListMine(ctx context.Context, sellerID int64, f models.ServiceFilter) ([]models.Service, int, error) {
	f.PublicOnly = false
	f.SellerID = &sellerID
	return s.ServiceRepo.ListServices(ctx, f)
}

func (s *ServiceService) ListAdmin(ctx context.Context, f models.ServiceFilter) ([]models.Service, int, error) {
	f.PublicOnly = false
	return s.ServiceRepo.ListServices(ctx, f)
}

var serviceActions = map[string]bool{
	models.ServiceActionApprove:   true,
	models.ServiceActionReject:    true,
	models.ServiceActionFeature:   true,
	models.ServiceActionUnfeature: true,
	models.ServiceActionSuspend:   true,
}

// Moderate applies one admin action to every listed service.
func (s *ServiceService) Moderate(ctx context.Context, req models.BulkStatusRequest) (models.BulkResult, error) {
	if !serviceActions[req.Action] {
		return models.BulkResult{}, models.ErrInvalidAction
	}
	reason := strings.TrimSpace(req.Reason)
	if req.Action == models.ServiceActionReject && reason == "" {
		return models.BulkResult{}, models.ErrReasonRequired
	}
	return runBulk(req.IDs, func(id int64) error {
		if err := s.ServiceRepo.Moderate(ctx, id, req.Action, reason); err != nil {
			return err
		}
		if s.Notifier != nil {
			if svc, err := s.ServiceRepo.GetServiceByID(ctx, id); err == nil {
				s.Notifier.ServiceModerated(svc, req.Action)
			}
		}
		return nil
	}), nil
}

// AdminDelete removes any listing regardless of owner.
func (s *ServiceService) AdminDelete(ctx context.Context, id int64) error {
	return s.DeleteService(ctx, models.Actor{Role: models.RoleAdmin}, id)
}

// UploadImage stores one gallery image and appends it to the listing.
func (s *ServiceService) UploadImage(ctx context.Context, actor models.Actor, id int64, fileName string, data []byte) (models.Service, error) {
	svc, err := s.owned(ctx, actor, id)
	if err != nil {
		return models.Service{}, err
	}
	if len(svc.Images) >= maxServiceImages {
		return models.Service{}, models.ErrTooManyImages
	}
	objectName, contentType, err := storage.ObjectName(data)
	if err != nil {
		return models.Service{}, fmt.Errorf("%w: %v", models.ErrInvalidFile, err)
	}
	url, err := s.Uploader.Upload(ctx, fmt.Sprintf("services/%d", id), objectName, data)
	if err != nil {
		return models.Service{}, fmt.Errorf("upload image: %w", err)
	}
	images := append(svc.Images, models.Image{Name: fileName, Path: url, Type: contentType})
	if err := s.ServiceRepo.SetImages(ctx, id, images); err != nil {
		s.removeImages(ctx, models.Images{{Path: url}})
		return models.Service{}, err
	}
	svc.Images = images
	return svc, nil
}

// RemoveImage drops an image by its public URL.
func (s *ServiceService) RemoveImage(ctx context.Context, actor models.Actor, id int64, path string) (models.Service, error) {
	svc, err := s.owned(ctx, actor, id)
	if err != nil {
		return models.Service{}, err
	}
	kept := make(models.Images, 0, len(svc.Images))
	var removed models.Images
	for _, img := range svc.Images {
		if img.Path == path {
			removed = append(removed, img)
			continue
		}
		kept = append(kept, img)
	}
	if len(removed) == 0 {
		return models.Service{}, models.ErrNoRecord
	}
	if err := s.ServiceRepo.SetImages(ctx, id, kept); err != nil {
		return models.Service{}, err
	}
	s.removeImages(ctx, removed)
	svc.Images = kept
	return svc, nil
}

func (s *ServiceService) owned(ctx context.Context, actor models.Actor, id int64) (models.Service, error) {
	svc, err := s.ServiceRepo.GetServiceByID(ctx, id)
	if errors.Is(err, models.ErrNoRecord) {
		return models.Service{}, models.ErrServiceNotFound
	}
	if err != nil {
		return models.Service{}, err
	}
	if !actor.IsAdmin() && svc.SellerID != actor.UserID {
		return models.Service{}, models.ErrForbidden
	}
	return svc, nil
}

func (s *ServiceService) checkCategory(ctx context.Context, id int64) error {
	c, err := s.CategoryRepo.GetCategoryByID(ctx, id)
	if errors.Is(err, models.ErrNoRecord) || (err == nil && !c.IsActive) {
		return models.ErrCategoryNotFound
	}
	return err
}

func (s *ServiceService) removeImages(ctx context.Context, images models.Images) {
	if s.Uploader == nil {
		return
	}
	for _, img := range images {
		if err := s.Uploader.Delete(ctx, img.Path); err != nil {
			s.Logger.Errorf("delete image %s: %v", img.Path, err)
		}
	}
}

func fromServiceRequest(req models.ServiceRequest) models.Service {
	svc := models.Service{
		CategoryID:  req.CategoryID,
		TitleAr:     strings.TrimSpace(req.TitleAr),
		TitleEn:     strings.TrimSpace(req.TitleEn),
		Description: strings.TrimSpace(req.Description),
		Images:      req.Images,
	}
	for _, p := range req.Packages {
		svc.Packages = append(svc.Packages, models.Package{
			Tier:         p.Tier,
			Name:         strings.TrimSpace(p.Name),
			Description:  p.Description,
			PriceCents:   p.PriceCents,
			DeliveryDays: p.DeliveryDays,
			Revisions:    p.Revisions,
		})
	}
	for i, q := range req.FAQs {
		svc.FAQs = append(svc.FAQs, models.FAQ{Question: q.Question, Answer: q.Answer, SortOrder: i})
	}
	return svc
}
