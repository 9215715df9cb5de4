package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/angelmondragon/storefront/internal/users"
	pkgAuth "github.com/angelmondragon/storefront/pkg/auth"
	"github.com/angelmondragon/storefront/pkg/config"
	"github.com/angelmondragon/storefront/pkg/db"
	"github.com/angelmondragon/storefront/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"github.com/angelmondragon/storefront/pkg/security"
	"gorm.io/gorm"
)

// RegisterService handles the account creation transaction.
type RegisterService interface {
	Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error)
}

// TxRunner executes a function inside a database transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type registerUserRepository interface {
	Create(ctx context.Context, dto users.CreateUserDTO) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
}

// RegisterServiceParams packages the dependencies for the registration flow.
type RegisterServiceParams struct {
	DB             TxRunner
	PasswordConfig config.PasswordConfig
	JWTConfig      config.JWTConfig
}

type registerService struct {
	db          TxRunner
	passwordCfg config.PasswordConfig
	jwtCfg      config.JWTConfig
	repos       func(tx *gorm.DB) registerUserRepository
	now         func() time.Time
}

// NewRegisterService builds a registration service with the provided dependencies.
func NewRegisterService(params RegisterServiceParams) (RegisterService, error) {
	if params.DB == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "database client required")
	}
	return &registerService{
		db:          params.DB,
		passwordCfg: params.PasswordConfig,
		jwtCfg:      params.JWTConfig,
		repos: func(tx *gorm.DB) registerUserRepository {
			return users.NewRepository(tx)
		},
		now: func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *registerService) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	username := strings.TrimSpace(req.Username)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if username == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "username is required")
	}
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}

	passwordHash, err := security.HashPassword(req.Password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	var resp *AuthResponse
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repos(tx)

		if _, err := repo.FindByEmail(ctx, email); err == nil {
			return pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check user email")
		}

		if _, err := repo.FindByUsername(ctx, username); err == nil {
			return pkgerrors.New(pkgerrors.CodeConflict, "username already taken")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check username")
		}

		user, err := repo.Create(ctx, users.CreateUserDTO{
			Username:     username,
			Email:        email,
			PasswordHash: passwordHash,
		})
		if err != nil {
			// Concurrent registration can slip past the existence checks.
			if db.IsUniqueViolation(err) {
				return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "account already exists")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create user")
		}

		token, err := pkgAuth.MintSessionToken(s.jwtCfg, s.now(), pkgAuth.SessionTokenPayload{UserID: user.ID})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint jwt")
		}

		resp = &AuthResponse{
			Token: token,
			User:  users.FromModel(user),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}
