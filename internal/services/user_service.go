package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"khidmaBack/internal/i18n"
	"khidmaBack/internal/models"
	"khidmaBack/utils"
)

type UserService struct {
	UserRepo     UserStore
	SessionRepo  SessionStore
	DeviceRepo   DeviceTokenStore
	TokenManager *utils.Manager
	RefreshTTL   time.Duration
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *UserService) SignUp(ctx context.Context, req models.SignUpRequest) (models.User, models.Tokens, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, models.Tokens{}, fmt.Errorf("hash password: %w", err)
	}
	locale := req.Locale
	if locale == "" {
		locale = i18n.Arabic
	}
	user, err := s.UserRepo.CreateUser(ctx, models.User{
		Name:         strings.TrimSpace(req.Name),
		Email:        normalizeEmail(req.Email),
		Phone:        req.Phone,
		PasswordHash: string(hash),
		Role:         req.Role,
		Status:       models.UserStatusActive,
		Locale:       locale,
	})
	if err != nil {
		return models.User{}, models.Tokens{}, err
	}
	tokens, err := s.issueTokens(ctx, user)
	if err != nil {
		return models.User{}, models.Tokens{}, err
	}
	return user, tokens, nil
}

func (s *UserService) SignIn(ctx context.Context, req models.SignInRequest) (models.User, models.Tokens, error) {
	user, err := s.UserRepo.GetUserByEmail(ctx, normalizeEmail(req.Email))
	if errors.Is(err, models.ErrNoRecord) {
		return models.User{}, models.Tokens{}, models.ErrInvalidCredentials
	}
	if err != nil {
		return models.User{}, models.Tokens{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return models.User{}, models.Tokens{}, models.ErrInvalidCredentials
	}
	if user.Blocked() {
		return models.User{}, models.Tokens{}, models.ErrUserBlocked
	}
	tokens, err := s.issueTokens(ctx, user)
	if err != nil {
		return models.User{}, models.Tokens{}, err
	}
	return user, tokens, nil
}

// Refresh rotates a refresh token: the presented one is consumed.
func (s *UserService) Refresh(ctx context.Context, refreshToken string) (models.Tokens, error) {
	session, err := s.SessionRepo.GetSession(ctx, refreshToken)
	if errors.Is(err, models.ErrNoRecord) {
		return models.Tokens{}, models.ErrSessionExpired
	}
	if err != nil {
		return models.Tokens{}, err
	}
	if err := s.SessionRepo.DeleteSession(ctx, refreshToken); err != nil {
		return models.Tokens{}, err
	}
	if time.Now().After(session.ExpiresAt) {
		return models.Tokens{}, models.ErrSessionExpired
	}
	user, err := s.UserRepo.GetUserByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, models.ErrNoRecord) {
			return models.Tokens{}, models.ErrSessionExpired
		}
		return models.Tokens{}, err
	}
	if user.Blocked() {
		return models.Tokens{}, models.ErrUserBlocked
	}
	return s.issueTokens(ctx, user)
}

func (s *UserService) SignOut(ctx context.Context, refreshToken string) error {
	return s.SessionRepo.DeleteSession(ctx, refreshToken)
}

func (s *UserService) issueTokens(ctx context.Context, user models.User) (models.Tokens, error) {
	access, err := s.TokenManager.NewJWT(user.ID, user.Role)
	if err != nil {
		return models.Tokens{}, err
	}
	refresh, err := s.TokenManager.NewRefreshToken()
	if err != nil {
		return models.Tokens{}, err
	}
	err = s.SessionRepo.CreateSession(ctx, models.Session{
		UserID:       user.ID,
		RefreshToken: refresh,
		ExpiresAt:    time.Now().Add(s.RefreshTTL),
	})
	if err != nil {
		return models.Tokens{}, fmt.Errorf("create session: %w", err)
	}
	return models.Tokens{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(s.TokenManager.AccessTTL().Seconds()),
	}, nil
}

// Authenticate resolves an access token to the acting user. The role is read
// from the database so suspensions and role changes apply immediately.
func (s *UserService) Authenticate(ctx context.Context, accessToken string) (models.Actor, error) {
	claims, err := s.TokenManager.Parse(accessToken)
	if err != nil {
		return models.Actor{}, err
	}
	user, err := s.UserRepo.GetUserByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, models.ErrNoRecord) {
			return models.Actor{}, models.ErrUserNotFound
		}
		return models.Actor{}, err
	}
	if user.Blocked() {
		return models.Actor{}, models.ErrUserBlocked
	}
	return models.Actor{UserID: user.ID, Role: user.Role}, nil
}

func (s *UserService) GetProfile(ctx context.Context, userID int64) (models.User, error) {
	user, err := s.UserRepo.GetUserByID(ctx, userID)
	if errors.Is(err, models.ErrNoRecord) {
		return models.User{}, models.ErrUserNotFound
	}
	return user, err
}

func (s *UserService) UpdateProfile(ctx context.Context, userID int64, req models.UpdateProfileRequest) (models.User, error) {
	user, err := s.GetProfile(ctx, userID)
	if err != nil {
		return models.User{}, err
	}
	if req.Name != nil {
		user.Name = strings.TrimSpace(*req.Name)
	}
	if req.Phone != nil {
		user.Phone = req.Phone
	}
	if req.Locale != nil {
		user.Locale = *req.Locale
	}
	if err := s.UserRepo.UpdateProfile(ctx, user); err != nil {
		return models.User{}, err
	}
	return s.GetProfile(ctx, userID)
}

// SetPayoutAccount stores the seller's connected account at the payment processor.
func (s *UserService) SetPayoutAccount(ctx context.Context, actor models.Actor, req models.PayoutAccountRequest) error {
	if actor.Role != models.RoleSeller {
		return models.ErrForbidden
	}
	return s.UserRepo.SetPayoutAccount(ctx, actor.UserID, strings.TrimSpace(req.AccountID))
}

func (s *UserService) RegisterDevice(ctx context.Context, userID int64, req models.DeviceTokenRequest) error {
	return s.DeviceRepo.SaveToken(ctx, userID, req.Token, req.Platform)
}

func (s *UserService) RemoveDevice(ctx context.Context, userID int64, token string) error {
	return s.DeviceRepo.DeleteToken(ctx, userID, token)
}

func (s *UserService) ListUsers(ctx context.Context, f models.UserFilter) ([]models.User, int, error) {
	return s.UserRepo.ListUsers(ctx, f)
}

func (s *UserService) GetUserDetail(ctx context.Context, id int64) (models.UserDetail, error) {
	detail, err := s.UserRepo.GetUserDetail(ctx, id)
	if errors.Is(err, models.ErrNoRecord) {
		return models.UserDetail{}, models.ErrUserNotFound
	}
	return detail, err
}

var userStatusActions = map[string]string{
	"activate":                 models.UserStatusActive,
	"suspend":                  models.UserStatusSuspended,
	"ban":                      models.UserStatusBanned,
	models.UserStatusActive:    models.UserStatusActive,
	models.UserStatusSuspended: models.UserStatusSuspended,
	models.UserStatusBanned:    models.UserStatusBanned,
}

// UpdateStatus activates, suspends or bans users. Blocked users lose their sessions.
func (s *UserService) UpdateStatus(ctx context.Context, req models.BulkStatusRequest) (models.BulkResult, error) {
	status, ok := userStatusActions[req.Action]
	if !ok {
		return models.BulkResult{}, models.ErrInvalidAction
	}
	return runBulk(req.IDs, func(id int64) error {
		if err := s.UserRepo.SetStatus(ctx, id, status); err != nil {
			return err
		}
		if status != models.UserStatusActive {
			return s.SessionRepo.DeleteUserSessions(ctx, id)
		}
		return nil
	}), nil
}

func (s *UserService) SetVerified(ctx context.Context, id int64, verified bool) error {
	err := s.UserRepo.SetVerified(ctx, id, verified)
	if errors.Is(err, models.ErrNoRecord) {
		return models.ErrUserNotFound
	}
	return err
}

// DeleteUser soft-deletes an account and revokes its sessions.
func (s *UserService) DeleteUser(ctx context.Context, id int64) error {
	if err := s.UserRepo.SetStatus(ctx, id, models.UserStatusDeleted); err != nil {
		if errors.Is(err, models.ErrNoRecord) {
			return models.ErrUserNotFound
		}
		return err
	}
	return s.SessionRepo.DeleteUserSessions(ctx, id)
}
