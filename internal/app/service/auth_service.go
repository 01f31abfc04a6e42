package service

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/bellanovaantonio1-commits/antonio-bellaova-platform/config"
	"github.com/bellanovaantonio1-commits/antonio-bellaova-platform/internal/app/model"
	"github.com/bellanovaantonio1-commits/antonio-bellaova-platform/internal/app/repository"
	"github.com/bellanovaantonio1-commits/antonio-bellaova-platform/pkg/logger"
	"github.com/bellanovaantonio1-commits/antonio-bellaova-platform/pkg/redis"
	"github.com/bellanovaantonio1-commits/antonio-bellaova-platform/pkg/util"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already registered")
	ErrUserNotFound       = errors.New("user not found")
)

type AuthService interface {
	Register(email, password, name, phone, country string) (*model.User, *util.TokenPair, error)
	Login(email, password string) (*model.User, *util.TokenPair, error)
	Logout(ctx context.Context, token string) error
	Refresh(refreshToken string) (*util.TokenPair, error)
	GetUser(userID uint) (*model.User, error)
	UpdateProfile(userID uint, profile *model.CollectorProfile) error
	PromoteToVIP(userID uint) error
}

type authService struct {
	userRepo repository.UserRepository
	jwtCfg   *config.JWTConfig
	useRedis bool
}

func NewAuthService(userRepo repository.UserRepository, jwtCfg *config.JWTConfig, useRedis bool) AuthService {
	return &authService{
		userRepo: userRepo,
		jwtCfg:   jwtCfg,
		useRedis: useRedis,
	}
}

func (s *authService) Register(email, password, name, phone, country string) (*model.User, *util.TokenPair, error) {
	logger.Info("Registering user", map[string]interface{}{
		"email": email,
	})

	if _, err := s.userRepo.FindByEmail(email); err == nil {
		return nil, nil, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, err
	}

	hash, err := util.HashPassword(password)
	if err != nil {
		logger.Error("Failed to hash password", err)
		return nil, nil, err
	}

	user := &model.User{
		Email:        email,
		PasswordHash: hash,
		Name:         name,
		Phone:        phone,
		Country:      country,
		Role:         model.RoleCollector,
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, nil, err
	}

	pair, err := s.tokenPair(user)
	if err != nil {
		return nil, nil, err
	}
	return user, pair, nil
}

func (s *authService) Login(email, password string) (*model.User, *util.TokenPair, error) {
	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, err
	}

	if !util.VerifyPassword(user.PasswordHash, password) {
		logger.Warn("Login failed: wrong password", map[string]interface{}{
			"email": email,
		})
		return nil, nil, ErrInvalidCredentials
	}

	pair, err := s.tokenPair(user)
	if err != nil {
		return nil, nil, err
	}

	logger.Info("User logged in", map[string]interface{}{
		"user_id": user.ID,
		"role":    user.Role,
	})
	return user, pair, nil
}

// Logout blacklists the presented access token until it would have
// expired on its own.
func (s *authService) Logout(ctx context.Context, token string) error {
	if !s.useRedis {
		return nil
	}

	claims, err := util.ValidateToken(token, s.jwtCfg.Secret)
	if err != nil {
		// Already invalid, nothing to revoke
		return nil
	}

	ttl := time.Until(claims.ExpiresAt.Time)
	return redis.BlacklistToken(ctx, token, ttl)
}

func (s *authService) Refresh(refreshToken string) (*util.TokenPair, error) {
	claims, err := util.ValidateToken(refreshToken, s.jwtCfg.Secret)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByID(claims.UserID)
	if err != nil {
		return nil, ErrUserNotFound
	}
	return s.tokenPair(user)
}

func (s *authService) GetUser(userID uint) (*model.User, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *authService) UpdateProfile(userID uint, profile *model.CollectorProfile) error {
	profile.UserID = userID
	return s.userRepo.UpsertProfile(profile)
}

// PromoteToVIP upgrades a collector to vip clientele. Admins keep
// their role.
func (s *authService) PromoteToVIP(userID uint) error {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return ErrUserNotFound
	}

	if user.Role != model.RoleCollector {
		return nil
	}

	now := time.Now()
	user.Role = model.RoleVIP
	user.VIPSince = &now
	if err := s.userRepo.Update(user); err != nil {
		return err
	}

	logger.Info("User promoted to VIP", map[string]interface{}{
		"user_id": userID,
	})
	return nil
}

func (s *authService) tokenPair(user *model.User) (*util.TokenPair, error) {
	return util.GenerateTokenPair(
		user.ID,
		user.Email,
		string(user.Role),
		s.jwtCfg.Secret,
		s.jwtCfg.AccessTokenExpiry,
		s.jwtCfg.RefreshTokenExpiry,
	)
}
