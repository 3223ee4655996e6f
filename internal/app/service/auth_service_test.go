package service

import (
	"context"
	"testing"
	"time"

	"algoarena/internal/common"
	"algoarena/internal/common/security"
	"algoarena/internal/domain/model"
	"algoarena/internal/platform/config"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type memUserRepo struct {
	users map[string]*model.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[string]*model.User)}
}

func (r *memUserRepo) Create(_ context.Context, user *model.User) error {
	for _, u := range r.users {
		if u.Username == user.Username || u.Email == user.Email {
			return common.ErrConflict
		}
	}
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *memUserRepo) FindByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *memUserRepo) FindByUsername(_ context.Context, username string) (*model.User, error) {
	for _, u := range r.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *memUserRepo) FindByID(_ context.Context, id string) (*model.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *memUserRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.users[id]; !ok {
		return common.ErrNotFound
	}
	delete(r.users, id)
	return nil
}

func newTestAuthService(t *testing.T) (*AuthService, *memUserRepo, *memSubmissionRepo) {
	t.Helper()
	config.AppConfig = &config.Config{JWTKey: []byte("test-secret"), JWTExp: time.Hour}
	security.InitJWT()

	userRepo := newMemUserRepo()
	subRepo := newMemSubmissionRepo()
	// nil Redis client is fine here: Revoke is a no-op for expired tokens and
	// these tests only pass expired ones.
	svc := NewAuthService(userRepo, subRepo, security.NewTokenBlacklist(nil), zap.NewNop())
	return svc, userRepo, subRepo
}

func TestSignupAssignsUserRole(t *testing.T) {
	svc, _, _ := newTestAuthService(t)

	resp, err := svc.Signup(context.Background(), SignupRequest{
		Username: "alice", Email: "alice@example.com", Password: "correcthorse",
	})
	require.NoError(t, err)
	require.Equal(t, model.RoleUser, resp.User.Role)
	require.Empty(t, resp.User.HashedPassword)
	require.NotEmpty(t, resp.Token)
}

func TestSignupAdminAssignsAdminRole(t *testing.T) {
	svc, _, _ := newTestAuthService(t)

	resp, err := svc.SignupAdmin(context.Background(), SignupRequest{
		Username: "root", Email: "root@example.com", Password: "correcthorse",
	})
	require.NoError(t, err)
	require.Equal(t, model.RoleAdmin, resp.User.Role)
}

func TestGetProfileStripsPassword(t *testing.T) {
	svc, userRepo, _ := newTestAuthService(t)
	userRepo.users["u-1"] = &model.User{
		ID: "u-1", Username: "alice", Email: "alice@example.com",
		HashedPassword: "bcrypt-hash", Role: model.RoleUser,
	}

	user, err := svc.GetProfile(context.Background(), "u-1")
	require.NoError(t, err)
	require.Equal(t, "alice", user.Username)
	require.Empty(t, user.HashedPassword)

	_, err = svc.GetProfile(context.Background(), "nope")
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestDeleteProfileCascades(t *testing.T) {
	svc, userRepo, subRepo := newTestAuthService(t)
	userRepo.users["u-1"] = &model.User{ID: "u-1", Username: "alice", Email: "alice@example.com"}
	userRepo.users["u-2"] = &model.User{ID: "u-2", Username: "bob", Email: "bob@example.com"}
	subRepo.submissions["s-1"] = &model.Submission{ID: "s-1", UserID: "u-1", ProblemID: "p-1", Status: model.SubmissionAccepted}
	subRepo.submissions["s-2"] = &model.Submission{ID: "s-2", UserID: "u-2", ProblemID: "p-1", Status: model.SubmissionAccepted}
	subRepo.solved["u-1"] = map[string]bool{"p-1": true}
	subRepo.solved["u-2"] = map[string]bool{"p-1": true}

	expired := time.Now().Add(-time.Minute)
	require.NoError(t, svc.DeleteProfile(context.Background(), "u-1", "jti-1", expired))

	_, err := userRepo.FindByID(context.Background(), "u-1")
	require.ErrorIs(t, err, common.ErrNotFound)
	require.NotContains(t, subRepo.submissions, "s-1")
	require.Empty(t, subRepo.solved["u-1"])

	// another user's data is untouched
	require.Contains(t, subRepo.submissions, "s-2")
	require.True(t, subRepo.solved["u-2"]["p-1"])
}

func TestDeleteProfileUnknownUser(t *testing.T) {
	svc, _, _ := newTestAuthService(t)

	err := svc.DeleteProfile(context.Background(), "ghost", "jti-1", time.Now().Add(-time.Minute))
	require.ErrorIs(t, err, common.ErrNotFound)
}
