package repositories

import (
	"context"

	"github.com/jmoiron/sqlx"

	"khidmaBack/internal/models"
)

type SessionRepository struct {
	DB *sqlx.DB
}

func (r *SessionRepository) CreateSession(ctx context.Context, s models.Session) error {
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO sessions (user_id, refresh_token, expires_at) VALUES (?, ?, ?)`,
		s.UserID, s.RefreshToken, s.ExpiresAt)
	return err
}

// GetSession loads a refresh session together with the owner's current role.
func (r *SessionRepository) GetSession(ctx context.Context, refreshToken string) (models.Session, error) {
	var s models.Session
	err := r.DB.GetContext(ctx, &s, `
        SELECT s.id, s.user_id, u.role, s.refresh_token, s.expires_at
        FROM sessions s
        JOIN users u ON u.id = s.user_id
        WHERE s.refresh_token = ?`, refreshToken)
	if err != nil {
		return models.Session{}, notFound(err)
	}
	return s, nil
}

func (r *SessionRepository) DeleteSession(ctx context.Context, refreshToken string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM sessions WHERE refresh_token = ?`, refreshToken)
	return err
}

func (r *SessionRepository) DeleteUserSessions(ctx context.Context, userID int64) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM sessions WHERE user_id = ?`, userID)
	return err
}

func (r *SessionRepository) DeleteExpired(ctx context.Context) (int64, error) {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at < CURRENT_TIMESTAMP`)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

type DeviceTokenRepository struct {
	DB *sqlx.DB
}

// SaveToken registers token for userID, moving it over if another user held it.
func (r *DeviceTokenRepository) SaveToken(ctx context.Context, userID int64, token, platform string) error {
	_, err := r.DB.ExecContext(ctx, `
        INSERT INTO device_tokens (user_id, token, platform) VALUES (?, ?, ?)
        ON DUPLICATE KEY UPDATE user_id = VALUES(user_id), platform = VALUES(platform)`,
		userID, token, platform)
	return err
}

func (r *DeviceTokenRepository) DeleteToken(ctx context.Context, userID int64, token string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM device_tokens WHERE user_id = ? AND token = ?`, userID, token)
	return err
}

func (r *DeviceTokenRepository) TokensByUser(ctx context.Context, userID int64) ([]string, error) {
	tokens := []string{}
	err := r.DB.SelectContext(ctx, &tokens, `SELECT token FROM device_tokens WHERE user_id = ?`, userID)
	return tokens, err
}

func (r *DeviceTokenRepository) DeleteTokens(ctx context.Context, tokens []string) error {
	if len(tokens) == 0 {
		return nil
	}
	query, args, err := sqlx.In(`DELETE FROM device_tokens WHERE token IN (?)`, tokens)
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx, r.DB.Rebind(query), args...)
	return err
}
