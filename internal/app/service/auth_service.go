package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"algoarena/internal/common"
	"algoarena/internal/common/security"
	"algoarena/internal/domain/model"
	"algoarena/internal/domain/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type AuthService struct {
	userRepo       repository.UserRepository
	submissionRepo repository.SubmissionRepository
	blacklist      *security.TokenBlacklist
	log            *zap.Logger
}

func NewAuthService(
	userRepo repository.UserRepository,
	submissionRepo repository.SubmissionRepository,
	blacklist *security.TokenBlacklist,
	log *zap.Logger,
) *AuthService {
	return &AuthService{
		userRepo:       userRepo,
		submissionRepo: submissionRepo,
		blacklist:      blacklist,
		log:            log,
	}
}

type SignupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	LoginField string `json:"login_field"` // username or email
	Password   string `json:"password"`
}

type AuthResponse struct {
	User  *model.User `json:"user"`
	Token string      `json:"token"`
}

func (s *AuthService) Signup(ctx context.Context, req SignupRequest) (*AuthResponse, error) {
	return s.register(ctx, req, model.RoleUser)
}

// SignupAdmin registers a user with the admin role. The route is gated by the
// admin middleware; the service trusts its caller on that.
func (s *AuthService) SignupAdmin(ctx context.Context, req SignupRequest) (*AuthResponse, error) {
	return s.register(ctx, req, model.RoleAdmin)
}

func (s *AuthService) register(ctx context.Context, req SignupRequest, role string) (*AuthResponse, error) {
	if req.Username == "" || req.Email == "" || req.Password == "" {
		return nil, common.ErrBadRequest
	}
	if len(req.Password) < 8 {
		return nil, fmt.Errorf("password must be at least 8 characters: %w", common.ErrValidation)
	}

	hashedPassword, err := security.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		ID:             uuid.NewString(),
		Username:       req.Username,
		Email:          req.Email,
		HashedPassword: hashedPassword,
		Role:           role,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	s.log.Info("user registered",
		zap.String("user_id", user.ID),
		zap.String("username", user.Username),
		zap.String("role", role))

	token, err := security.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	user.HashedPassword = ""
	return &AuthResponse{User: user, Token: token}, nil
}

func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	if req.LoginField == "" || req.Password == "" {
		return nil, common.ErrBadRequest
	}

	user, err := s.userRepo.FindByEmail(ctx, req.LoginField)
	if errors.Is(err, common.ErrNotFound) {
		user, err = s.userRepo.FindByUsername(ctx, req.LoginField)
	}
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrUnauthorized // generic message on purpose
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if !security.CheckPasswordHash(req.Password, user.HashedPassword) {
		return nil, common.ErrUnauthorized
	}

	token, err := security.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	user.HashedPassword = ""
	return &AuthResponse{User: user, Token: token}, nil
}

// Logout revokes the presented token until it would have expired anyway.
func (s *AuthService) Logout(ctx context.Context, tokenID string, expiry time.Time) error {
	if err := s.blacklist.Revoke(ctx, tokenID, time.Until(expiry)); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

func (s *AuthService) GetProfile(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.HashedPassword = ""
	return user, nil
}

// DeleteProfile removes the account along with its submissions and solved
// set, then revokes the presented token so it cannot outlive the account.
func (s *AuthService) DeleteProfile(ctx context.Context, userID, tokenID string, expiry time.Time) error {
	if _, err := s.userRepo.FindByID(ctx, userID); err != nil {
		return err
	}
	if err := s.submissionRepo.DeleteAllForUser(ctx, userID); err != nil {
		return fmt.Errorf("failed to delete user activity: %w", err)
	}
	if err := s.userRepo.Delete(ctx, userID); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if err := s.blacklist.Revoke(ctx, tokenID, time.Until(expiry)); err != nil {
		// The account is gone; a token that slips through only authorizes a
		// user id that no longer resolves.
		s.log.Warn("failed to revoke token of deleted account",
			zap.String("user_id", userID), zap.Error(err))
	}
	s.log.Info("account deleted", zap.String("user_id", userID))
	return nil
}
