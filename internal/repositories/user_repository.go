package repositories

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"khidmaBack/internal/models"
)

type UserRepository struct {
	DB *sqlx.DB
}

const userColumns = `id, name, email, phone, password_hash, role, status, is_verified, locale, payout_account_id, created_at, updated_at`

func (r *UserRepository) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	query := `
        INSERT INTO users (name, email, phone, password_hash, role, status, locale, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?)
    `
	user.CreatedAt = time.Now()
	if user.Status == "" {
		user.Status = models.UserStatusActive
	}
	result, err := r.DB.ExecContext(ctx, query,
		user.Name, user.Email, user.Phone, user.PasswordHash, user.Role, user.Status, user.Locale, user.CreatedAt,
	)
	if err != nil {
		if IsDuplicateError(err) {
			return models.User{}, models.ErrDuplicateEmail
		}
		return models.User{}, err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return models.User{}, err
	}
	user.ID = id
	return user, nil
}

func (r *UserRepository) GetUserByID(ctx context.Context, id int64) (models.User, error) {
	var user models.User
	err := r.DB.GetContext(ctx, &user, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	if err != nil {
		return models.User{}, notFound(err)
	}
	return user, nil
}

func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	var user models.User
	err := r.DB.GetContext(ctx, &user, `SELECT `+userColumns+` FROM users WHERE email = ?`, email)
	if err != nil {
		return models.User{}, notFound(err)
	}
	return user, nil
}

func (r *UserRepository) UpdateProfile(ctx context.Context, user models.User) error {
	query := `UPDATE users SET name = ?, phone = ?, locale = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`
	result, err := r.DB.ExecContext(ctx, query, user.Name, user.Phone, user.Locale, user.ID)
	if err != nil {
		return err
	}
	return expectOne(result)
}

func (r *UserRepository) SetPayoutAccount(ctx context.Context, userID int64, accountID string) error {
	result, err := r.DB.ExecContext(ctx,
		`UPDATE users SET payout_account_id = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, accountID, userID)
	if err != nil {
		return err
	}
	return expectOne(result)
}

func (r *UserRepository) SetStatus(ctx context.Context, userID int64, status string) error {
	result, err := r.DB.ExecContext(ctx,
		`UPDATE users SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND role <> 'admin'`, status, userID)
	if err != nil {
		return err
	}
	return expectOne(result)
}

func (r *UserRepository) SetVerified(ctx context.Context, userID int64, verified bool) error {
	result, err := r.DB.ExecContext(ctx,
		`UPDATE users SET is_verified = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND role = 'seller'`, verified, userID)
	if err != nil {
		return err
	}
	return expectOne(result)
}

var userSorts = map[string]string{
	"created_at": "created_at",
	"name":       "name",
	"email":      "email",
}

func (r *UserRepository) ListUsers(ctx context.Context, f models.UserFilter) ([]models.User, int, error) {
	var w whereBuilder
	if f.Query != "" {
		w.add("(name LIKE ? OR email LIKE ?)", likePattern(f.Query), likePattern(f.Query))
	}
	if f.Role != "" {
		w.add("role = ?", f.Role)
	}
	if f.Status != "" {
		w.add("status = ?", f.Status)
	}

	var total int
	if err := r.DB.GetContext(ctx, &total, `SELECT COUNT(*) FROM users`+w.sql(), w.args...); err != nil {
		return nil, 0, err
	}

	users := []models.User{}
	query := `SELECT ` + userColumns + ` FROM users` + w.sql() +
		orderBy(f.Sort, f.Desc, userSorts, "created_at DESC") + limitOffset(f.ListParams)
	if err := r.DB.SelectContext(ctx, &users, query, w.args...); err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (r *UserRepository) GetUserDetail(ctx context.Context, id int64) (models.UserDetail, error) {
	user, err := r.GetUserByID(ctx, id)
	if err != nil {
		return models.UserDetail{}, err
	}
	detail := models.UserDetail{User: user}
	query := `
        SELECT
            (SELECT COUNT(*) FROM services WHERE seller_id = ?) AS services_count,
            (SELECT COUNT(*) FROM orders WHERE buyer_id = ?) AS orders_as_buyer,
            (SELECT COUNT(*) FROM orders WHERE seller_id = ?) AS orders_as_seller,
            (SELECT COALESCE(SUM(price_cents), 0) FROM orders WHERE buyer_id = ? AND status = 'COMPLETED') AS lifetime_spent,
            (SELECT COALESCE(SUM(price_cents - commission_cents), 0) FROM orders WHERE seller_id = ? AND status = 'COMPLETED') AS lifetime_earned,
            (SELECT COUNT(*) FROM disputes d JOIN orders o ON o.id = d.order_id
                WHERE d.status = 'open' AND (o.buyer_id = ? OR o.seller_id = ?)) AS open_disputes
    `
	err = r.DB.QueryRowxContext(ctx, query, id, id, id, id, id, id, id).Scan(
		&detail.ServicesCount, &detail.OrdersAsBuyer, &detail.OrdersAsSeller,
		&detail.LifetimeSpent, &detail.LifetimeEarned, &detail.OpenDisputes,
	)
	if err != nil {
		return models.UserDetail{}, err
	}
	return detail, nil
}

// Contacts returns email and locale for notification fan-out.
func (r *UserRepository) Contacts(ctx context.Context, ids []int64) (map[int64]models.User, error) {
	out := make(map[int64]models.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	query, args, err := sqlx.In(`SELECT `+userColumns+` FROM users WHERE id IN (?)`, ids)
	if err != nil {
		return nil, err
	}
	var users []models.User
	if err := r.DB.SelectContext(ctx, &users, r.DB.Rebind(query), args...); err != nil {
		return nil, err
	}
	for _, u := range users {
		out[u.ID] = u
	}
	return out, nil
}
