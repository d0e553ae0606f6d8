package repositories

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"khidmaBack/internal/models"
)

type ServiceRepository struct {
	DB *sqlx.DB
}

const serviceSelect = `
        SELECT s.id, s.seller_id, s.category_id, s.title_ar, s.title_en, s.description, s.status,
               s.rejection_reason, s.is_featured, s.avg_rating, s.reviews_count, s.orders_count,
               s.starting_price, s.images, s.created_at, s.updated_at,
               u.name AS seller_name, c.slug AS category_slug
        FROM services s
        JOIN users u ON u.id = s.seller_id
        JOIN categories c ON c.id = s.category_id`

func startingPrice(pkgs []models.Package) int64 {
	var min int64
	for i, p := range pkgs {
		if i == 0 || p.PriceCents < min {
			min = p.PriceCents
		}
	}
	return min
}

func (r *ServiceRepository) CreateService(ctx context.Context, s models.Service) (models.Service, error) {
	err := withTx(ctx, r.DB, func(tx *sqlx.Tx) error {
		result, err := tx.ExecContext(ctx, `
            INSERT INTO services (seller_id, category_id, title_ar, title_en, description, images, status, starting_price)
            VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			s.SellerID, s.CategoryID, s.TitleAr, s.TitleEn, s.Description, s.Images,
			models.ServiceStatusPendingReview, startingPrice(s.Packages))
		if err != nil {
			return err
		}
		id, err := result.LastInsertId()
		if err != nil {
			return err
		}
		s.ID = id
		return replaceChildren(ctx, tx, id, s.Packages, s.FAQs)
	})
	if err != nil {
		return models.Service{}, err
	}
	return r.GetServiceByID(ctx, s.ID)
}

// UpdateService rewrites a listing and sends it back to moderation.
func (r *ServiceRepository) UpdateService(ctx context.Context, s models.Service) (models.Service, error) {
	err := withTx(ctx, r.DB, func(tx *sqlx.Tx) error {
		result, err := tx.ExecContext(ctx, `
            UPDATE services
            SET category_id = ?, title_ar = ?, title_en = ?, description = ?, images = ?,
                status = ?, rejection_reason = NULL, starting_price = ?, updated_at = CURRENT_TIMESTAMP
            WHERE id = ?`,
			s.CategoryID, s.TitleAr, s.TitleEn, s.Description, s.Images,
			models.ServiceStatusPendingReview, startingPrice(s.Packages), s.ID)
		if err != nil {
			return err
		}
		if err := expectOne(result); err != nil {
			return err
		}
		return replaceChildren(ctx, tx, s.ID, s.Packages, s.FAQs)
	})
	if err != nil {
		return models.Service{}, err
	}
	return r.GetServiceByID(ctx, s.ID)
}

func replaceChildren(ctx context.Context, tx *sqlx.Tx, serviceID int64, pkgs []models.Package, faqs []models.FAQ) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM service_packages WHERE service_id = ?`, serviceID); err != nil {
		return err
	}
	for _, p := range pkgs {
		_, err := tx.ExecContext(ctx, `
            INSERT INTO service_packages (service_id, tier, name, description, price_cents, delivery_days, revisions)
            VALUES (?, ?, ?, ?, ?, ?, ?)`,
			serviceID, p.Tier, p.Name, p.Description, p.PriceCents, p.DeliveryDays, p.Revisions)
		if err != nil {
			return fmt.Errorf("insert package %s: %w", p.Tier, err)
		}
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM service_faqs WHERE service_id = ?`, serviceID); err != nil {
		return err
	}
	for i, f := range faqs {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO service_faqs (service_id, question, answer, sort_order) VALUES (?, ?, ?, ?)`,
			serviceID, f.Question, f.Answer, i)
		if err != nil {
			return fmt.Errorf("insert faq: %w", err)
		}
	}
	return nil
}

func (r *ServiceRepository) GetServiceByID(ctx context.Context, id int64) (models.Service, error) {
	var s models.Service
	if err := r.DB.GetContext(ctx, &s, serviceSelect+` WHERE s.id = ?`, id); err != nil {
		return models.Service{}, notFound(err)
	}
	s.Packages = []models.Package{}
	err := r.DB.SelectContext(ctx, &s.Packages, `
        SELECT id, service_id, tier, name, COALESCE(description, '') AS description, price_cents, delivery_days, revisions
        FROM service_packages WHERE service_id = ?
        ORDER BY FIELD(tier, 'basic', 'standard', 'premium')`, id)
	if err != nil {
		return models.Service{}, err
	}
	s.FAQs = []models.FAQ{}
	err = r.DB.SelectContext(ctx, &s.FAQs,
		`SELECT id, service_id, question, answer, sort_order FROM service_faqs WHERE service_id = ? ORDER BY sort_order, id`, id)
	if err != nil {
		return models.Service{}, err
	}
	return s, nil
}

// GetPackage returns a package and the service it belongs to.
func (r *ServiceRepository) GetPackage(ctx context.Context, packageID int64) (models.Package, models.Service, error) {
	var p models.Package
	err := r.DB.GetContext(ctx, &p, `
        SELECT id, service_id, tier, name, COALESCE(description, '') AS description, price_cents, delivery_days, revisions
        FROM service_packages WHERE id = ?`, packageID)
	if err != nil {
		return models.Package{}, models.Service{}, notFound(err)
	}
	var s models.Service
	if err := r.DB.GetContext(ctx, &s, serviceSelect+` WHERE s.id = ?`, p.ServiceID); err != nil {
		return models.Package{}, models.Service{}, notFound(err)
	}
	return p, s, nil
}

var serviceSorts = map[string]string{
	"newest":     "s.created_at DESC",
	"price_asc":  "s.starting_price ASC",
	"price_desc": "s.starting_price DESC",
	"rating":     "s.avg_rating DESC, s.reviews_count DESC",
	"orders":     "s.orders_count DESC",
}

func (r *ServiceRepository) ListServices(ctx context.Context, f models.ServiceFilter) ([]models.Service, int, error) {
	var w whereBuilder
	switch {
	case f.PublicOnly:
		w.add("s.status = ?", models.ServiceStatusApproved)
	case f.Status != "":
		w.add("s.status = ?", f.Status)
	}
	if f.Query != "" {
		w.add("(s.title_ar LIKE ? OR s.title_en LIKE ? OR s.description LIKE ?)",
			likePattern(f.Query), likePattern(f.Query), likePattern(f.Query))
	}
	if f.CategoryID != nil {
		w.add("(s.category_id = ? OR c.parent_id = ?)", *f.CategoryID, *f.CategoryID)
	}
	if f.SellerID != nil {
		w.add("s.seller_id = ?", *f.SellerID)
	}
	if f.Featured != nil {
		w.add("s.is_featured = ?", *f.Featured)
	}
	if f.MinPrice != nil {
		w.add("s.starting_price >= ?", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		w.add("s.starting_price <= ?", *f.MaxPrice)
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM services s JOIN categories c ON c.id = s.category_id` + w.sql()
	if err := r.DB.GetContext(ctx, &total, countQuery, w.args...); err != nil {
		return nil, 0, err
	}

	sort, ok := serviceSorts[f.Sort]
	if !ok {
		sort = serviceSorts["newest"]
	}
	if f.PublicOnly {
		sort = "s.is_featured DESC, " + sort
	}
	services := []models.Service{}
	query := serviceSelect + w.sql() + " ORDER BY " + sort + ", s.id DESC" + limitOffset(f.ListParams)
	if err := r.DB.SelectContext(ctx, &services, query, w.args...); err != nil {
		return nil, 0, err
	}
	return services, total, nil
}

// Moderate applies an admin decision to one listing.
func (r *ServiceRepository) Moderate(ctx context.Context, id int64, action, reason string) error {
	var (
		query string
		args  []interface{}
	)
	switch action {
	case models.ServiceActionApprove:
		query, args = `UPDATE services SET status = ?, rejection_reason = NULL, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
			[]interface{}{models.ServiceStatusApproved, id}
	case models.ServiceActionReject:
		query, args = `UPDATE services SET status = ?, rejection_reason = ?, is_featured = 0, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
			[]interface{}{models.ServiceStatusRejected, reason, id}
	case models.ServiceActionSuspend:
		query, args = `UPDATE services SET status = ?, rejection_reason = ?, is_featured = 0, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
			[]interface{}{models.ServiceStatusSuspended, nullable(reason), id}
	case models.ServiceActionFeature:
		query, args = `UPDATE services SET is_featured = 1, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND status = ?`,
			[]interface{}{id, models.ServiceStatusApproved}
	case models.ServiceActionUnfeature:
		query, args = `UPDATE services SET is_featured = 0, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
			[]interface{}{id}
	default:
		return models.ErrInvalidAction
	}
	result, err := r.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	return expectOne(result)
}

// DeleteService removes a listing with its packages, FAQs and reviews in one transaction.
func (r *ServiceRepository) DeleteService(ctx context.Context, id int64) error {
	return withTx(ctx, r.DB, func(tx *sqlx.Tx) error {
		var open int
		err := tx.GetContext(ctx, &open,
			`SELECT COUNT(*) FROM orders WHERE service_id = ? AND status NOT IN ('COMPLETED', 'CANCELLED')`, id)
		if err != nil {
			return err
		}
		if open > 0 {
			return models.ErrServiceHasOrders
		}
		for _, q := range []string{
			`DELETE FROM reviews WHERE service_id = ?`,
			`DELETE FROM service_faqs WHERE service_id = ?`,
			`DELETE FROM service_packages WHERE service_id = ?`,
		} {
			if _, err := tx.ExecContext(ctx, q, id); err != nil {
				return err
			}
		}
		result, err := tx.ExecContext(ctx, `DELETE FROM services WHERE id = ?`, id)
		if err != nil {
			return err
		}
		return expectOne(result)
	})
}

func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func (r *ServiceRepository) SetImages(ctx context.Context, id int64, images models.Images) error {
	result, err := r.DB.ExecContext(ctx,
		`UPDATE services SET images = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, images, id)
	if err != nil {
		return err
	}
	return expectOne(result)
}
