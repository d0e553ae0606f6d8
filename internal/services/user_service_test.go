package services

import (
	"context"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"khidmaBack/internal/models"
	"khidmaBack/utils"
)

type fakeUsers struct {
	users    map[int64]models.User
	statuses map[int64]string
}

func (f *fakeUsers) CreateUser(_ context.Context, u models.User) (models.User, error) {
	for _, existing := range f.users {
		if existing.Email == u.Email {
			return models.User{}, models.ErrDuplicateEmail
		}
	}
	u.ID = int64(len(f.users) + 1)
	f.users[u.ID] = u
	return u, nil
}

func (f *fakeUsers) GetUserByID(_ context.Context, id int64) (models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return models.User{}, models.ErrNoRecord
	}
	return u, nil
}

func (f *fakeUsers) GetUserByEmail(_ context.Context, email string) (models.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return models.User{}, models.ErrNoRecord
}

func (f *fakeUsers) UpdateProfile(_ context.Context, u models.User) error {
	f.users[u.ID] = u
	return nil
}

func (f *fakeUsers) SetPayoutAccount(context.Context, int64, string) error { return nil }

func (f *fakeUsers) SetStatus(_ context.Context, id int64, status string) error {
	u, ok := f.users[id]
	if !ok || u.Role == models.RoleAdmin {
		return models.ErrNoRecord
	}
	u.Status = status
	f.users[id] = u
	return nil
}

func (f *fakeUsers) SetVerified(context.Context, int64, bool) error { return nil }

func (f *fakeUsers) ListUsers(context.Context, models.UserFilter) ([]models.User, int, error) {
	return nil, 0, nil
}

func (f *fakeUsers) GetUserDetail(context.Context, int64) (models.UserDetail, error) {
	return models.UserDetail{}, models.ErrNoRecord
}

func (f *fakeUsers) Contacts(context.Context, []int64) (map[int64]models.User, error) {
	return nil, nil
}

type fakeSessions struct {
	sessions map[string]models.Session
	revoked  []int64
}

func (f *fakeSessions) CreateSession(_ context.Context, s models.Session) error {
	f.sessions[s.RefreshToken] = s
	return nil
}

func (f *fakeSessions) GetSession(_ context.Context, token string) (models.Session, error) {
	s, ok := f.sessions[token]
	if !ok {
		return models.Session{}, models.ErrNoRecord
	}
	return s, nil
}

func (f *fakeSessions) DeleteSession(_ context.Context, token string) error {
	delete(f.sessions, token)
	return nil
}

func (f *fakeSessions) DeleteUserSessions(_ context.Context, userID int64) error {
	f.revoked = append(f.revoked, userID)
	for k, s := range f.sessions {
		if s.UserID == userID {
			delete(f.sessions, k)
		}
	}
	return nil
}

func newUserService(t *testing.T) (*UserService, *fakeUsers, *fakeSessions) {
	t.Helper()
	tm, err := utils.NewManager("test-signing-key", time.Hour)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte("correct horse"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	users := &fakeUsers{users: map[int64]models.User{
		1: {ID: 1, Email: "admin@example.com", PasswordHash: string(hash), Role: models.RoleAdmin, Status: models.UserStatusActive},
		2: {ID: 2, Email: "seller@example.com", PasswordHash: string(hash), Role: models.RoleSeller, Status: models.UserStatusActive},
		3: {ID: 3, Email: "banned@example.com", PasswordHash: string(hash), Role: models.RoleBuyer, Status: models.UserStatusBanned},
	}}
	sessions := &fakeSessions{sessions: map[string]models.Session{}}
	return &UserService{
		UserRepo:     users,
		SessionRepo:  sessions,
		TokenManager: tm,
		RefreshTTL:   24 * time.Hour,
	}, users, sessions
}

func TestSignInChecksPasswordAndStatus(t *testing.T) {
	svc, _, sessions := newUserService(t)
	ctx := context.Background()

	if _, _, err := svc.SignIn(ctx, models.SignInRequest{Email: "seller@example.com", Password: "wrong"}); err != models.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, _, err := svc.SignIn(ctx, models.SignInRequest{Email: "nobody@example.com", Password: "correct horse"}); err != models.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials for unknown email, got %v", err)
	}
	if _, _, err := svc.SignIn(ctx, models.SignInRequest{Email: "banned@example.com", Password: "correct horse"}); err != models.ErrUserBlocked {
		t.Fatalf("expected ErrUserBlocked, got %v", err)
	}

	user, tokens, err := svc.SignIn(ctx, models.SignInRequest{Email: " Seller@Example.com ", Password: "correct horse"})
	if err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	if user.ID != 2 || tokens.AccessToken == "" || tokens.ExpiresIn != 3600 {
		t.Fatalf("unexpected sign-in result: %+v %+v", user, tokens)
	}
	if _, ok := sessions.sessions[tokens.RefreshToken]; !ok {
		t.Fatal("refresh token was not persisted")
	}

	actor, err := svc.Authenticate(ctx, tokens.AccessToken)
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if actor.UserID != 2 || actor.Role != models.RoleSeller {
		t.Fatalf("unexpected actor %+v", actor)
	}
}

func TestRefreshRotatesToken(t *testing.T) {
	svc, _, sessions := newUserService(t)
	ctx := context.Background()
	_, tokens, err := svc.SignIn(ctx, models.SignInRequest{Email: "seller@example.com", Password: "correct horse"})
	if err != nil {
		t.Fatalf("SignIn: %v", err)
	}

	next, err := svc.Refresh(ctx, tokens.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if next.RefreshToken == tokens.RefreshToken {
		t.Fatal("refresh token was not rotated")
	}
	if _, err := svc.Refresh(ctx, tokens.RefreshToken); err != models.ErrSessionExpired {
		t.Fatalf("expected consumed token to fail with ErrSessionExpired, got %v", err)
	}

	sessions.sessions["old"] = models.Session{UserID: 2, RefreshToken: "old", ExpiresAt: time.Now().Add(-time.Minute)}
	if _, err := svc.Refresh(ctx, "old"); err != models.ErrSessionExpired {
		t.Fatalf("expected ErrSessionExpired for expired session, got %v", err)
	}
	if _, ok := sessions.sessions["old"]; ok {
		t.Fatal("expired session was not removed")
	}
}

func TestBlockingUsersRevokesSessions(t *testing.T) {
	svc, users, sessions := newUserService(t)
	res, err := svc.UpdateStatus(context.Background(), models.BulkStatusRequest{IDs: []int64{2, 1, 2}, Action: "suspend"})
	if err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if len(res.Updated) != 1 || res.Updated[0] != 2 {
		t.Fatalf("unexpected updated ids %v", res.Updated)
	}
	if res.Failed[1] != "error.not_found" {
		t.Fatalf("admin must not be suspended, got %v", res.Failed)
	}
	if users.users[2].Status != models.UserStatusSuspended {
		t.Fatalf("status = %s", users.users[2].Status)
	}
	if len(sessions.revoked) != 1 || sessions.revoked[0] != 2 {
		t.Fatalf("sessions revoked for %v", sessions.revoked)
	}

	if _, err := svc.UpdateStatus(context.Background(), models.BulkStatusRequest{IDs: []int64{2}, Action: "promote"}); err != models.ErrInvalidAction {
		t.Fatalf("expected ErrInvalidAction, got %v", err)
	}
}

func TestSignUpDefaultsLocale(t *testing.T) {
	svc, _, _ := newUserService(t)
	user, tokens, err := svc.SignUp(context.Background(), models.SignUpRequest{
		Name: "Noor", Email: "NOOR@example.com", Password: "long enough", Role: models.RoleBuyer,
	})
	if err != nil {
		t.Fatalf("SignUp: %v", err)
	}
	if user.Locale != "ar" || user.Email != "noor@example.com" || user.Status != models.UserStatusActive {
		t.Fatalf("unexpected user %+v", user)
	}
	if tokens.RefreshToken == "" {
		t.Fatal("missing refresh token")
	}
	_, _, err = svc.SignUp(context.Background(), models.SignUpRequest{
		Name: "Noor", Email: "noor@example.com", Password: "long enough", Role: models.RoleBuyer,
	})
	if err != models.ErrDuplicateEmail {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}
}
