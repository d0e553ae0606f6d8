package repositories

import (
	"context"

	"github.com/jmoiron/sqlx"

	"khidmaBack/internal/models"
)

type ReviewRepository struct {
	DB *sqlx.DB
}

const reviewSelect = `
        SELECT r.id, r.order_id, r.service_id, r.buyer_id, r.seller_id, r.rating, r.comment, r.seller_reply,
               r.is_hidden, r.created_at, r.updated_at, u.name AS buyer_name
        FROM reviews r
        JOIN users u ON u.id = r.buyer_id`

func recomputeRating(ctx context.Context, tx *sqlx.Tx, serviceID int64) error {
	_, err := tx.ExecContext(ctx, `
        UPDATE services
        SET avg_rating = (SELECT COALESCE(AVG(rating), 0) FROM reviews WHERE service_id = ? AND is_hidden = 0),
            reviews_count = (SELECT COUNT(*) FROM reviews WHERE service_id = ? AND is_hidden = 0)
        WHERE id = ?`, serviceID, serviceID, serviceID)
	return err
}

func (r *ReviewRepository) CreateReview(ctx context.Context, rv models.Review) (models.Review, error) {
	err := withTx(ctx, r.DB, func(tx *sqlx.Tx) error {
		result, err := tx.ExecContext(ctx, `
            INSERT INTO reviews (order_id, service_id, buyer_id, seller_id, rating, comment)
            VALUES (?, ?, ?, ?, ?, ?)`,
			rv.OrderID, rv.ServiceID, rv.BuyerID, rv.SellerID, rv.Rating, rv.Comment)
		if err != nil {
			if IsDuplicateError(err) {
				return models.ErrAlreadyReviewed
			}
			return err
		}
		if rv.ID, err = result.LastInsertId(); err != nil {
			return err
		}
		return recomputeRating(ctx, tx, rv.ServiceID)
	})
	if err != nil {
		return models.Review{}, err
	}
	return r.GetReviewByID(ctx, rv.ID)
}

func (r *ReviewRepository) GetReviewByID(ctx context.Context, id int64) (models.Review, error) {
	var rv models.Review
	if err := r.DB.GetContext(ctx, &rv, reviewSelect+` WHERE r.id = ?`, id); err != nil {
		return models.Review{}, notFound(err)
	}
	return rv, nil
}

var reviewSorts = map[string]string{
	"created_at": "r.created_at",
	"rating":     "r.rating",
}

func (r *ReviewRepository) ListReviews(ctx context.Context, f models.ReviewFilter) ([]models.Review, int, error) {
	var w whereBuilder
	if !f.WithHidden {
		w.add("r.is_hidden = 0")
	}
	if f.ServiceID != nil {
		w.add("r.service_id = ?", *f.ServiceID)
	}
	if f.SellerID != nil {
		w.add("r.seller_id = ?", *f.SellerID)
	}
	if f.Rating != nil {
		w.add("r.rating = ?", *f.Rating)
	}
	if f.Query != "" {
		w.add("r.comment LIKE ?", likePattern(f.Query))
	}

	var total int
	if err := r.DB.GetContext(ctx, &total, `SELECT COUNT(*) FROM reviews r`+w.sql(), w.args...); err != nil {
		return nil, 0, err
	}
	reviews := []models.Review{}
	query := reviewSelect + w.sql() + orderBy(f.Sort, f.Desc, reviewSorts, "r.created_at DESC") + limitOffset(f.ListParams)
	if err := r.DB.SelectContext(ctx, &reviews, query, w.args...); err != nil {
		return nil, 0, err
	}
	return reviews, total, nil
}

func (r *ReviewRepository) Reply(ctx context.Context, id, sellerID int64, reply string) error {
	result, err := r.DB.ExecContext(ctx,
		`UPDATE reviews SET seller_reply = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND seller_id = ?`,
		reply, id, sellerID)
	if err != nil {
		return err
	}
	return expectOne(result)
}

func (r *ReviewRepository) SetHidden(ctx context.Context, id int64, hidden bool) error {
	rv, err := r.GetReviewByID(ctx, id)
	if err != nil {
		return err
	}
	return withTx(ctx, r.DB, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`UPDATE reviews SET is_hidden = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, hidden, id); err != nil {
			return err
		}
		return recomputeRating(ctx, tx, rv.ServiceID)
	})
}

func (r *ReviewRepository) DeleteReview(ctx context.Context, id int64) error {
	rv, err := r.GetReviewByID(ctx, id)
	if err != nil {
		return err
	}
	return withTx(ctx, r.DB, func(tx *sqlx.Tx) error {
		result, err := tx.ExecContext(ctx, `DELETE FROM reviews WHERE id = ?`, id)
		if err != nil {
			return err
		}
		if err := expectOne(result); err != nil {
			return err
		}
		return recomputeRating(ctx, tx, rv.ServiceID)
	})
}
