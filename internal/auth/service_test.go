package auth

import (
	"context"
	"testing"
	"time"

	"github.com/angelmondragon/storefront/pkg/config"
	pkgmodels "github.com/angelmondragon/storefront/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"github.com/angelmondragon/storefront/pkg/security"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type stubUserFinder struct {
	users map[string]*pkgmodels.User
}

func (s *stubUserFinder) FindByUsername(ctx context.Context, username string) (*pkgmodels.User, error) {
	if user, ok := s.users[username]; ok {
		return user, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func newTestLoginService(t *testing.T, password string) (*service, *pkgmodels.User) {
	t.Helper()
	hash, err := security.HashPassword(password, config.PasswordConfig{})
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	user := &pkgmodels.User{
		ID:           uuid.New(),
		Username:     "shopper",
		Email:        "shopper@example.com",
		PasswordHash: hash,
	}
	svc := &service{
		users:  &stubUserFinder{users: map[string]*pkgmodels.User{"shopper": user}},
		jwtCfg: config.JWTConfig{Secret: "secret", Issuer: "storefront", ExpirationMinutes: 7 * 24 * 60},
		now:    func() time.Time { return time.Now().UTC() },
	}
	return svc, user
}

func TestLoginReturnsTokenAndUser(t *testing.T) {
	svc, user := newTestLoginService(t, "hunter22")

	resp, err := svc.Login(context.Background(), LoginRequest{Username: "shopper", Password: "hunter22"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if resp.Token == "" {
		t.Fatal("expected token")
	}
	if resp.User == nil || resp.User.ID != user.ID {
		t.Fatalf("unexpected user payload %+v", resp.User)
	}
}

func TestLoginRejectsUnknownUser(t *testing.T) {
	svc, _ := newTestLoginService(t, "hunter22")

	_, err := svc.Login(context.Background(), LoginRequest{Username: "nobody", Password: "hunter22"})
	if pkgerrors.As(err).Code() != pkgerrors.CodeInvalidCredentials {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	svc, _ := newTestLoginService(t, "hunter22")

	_, err := svc.Login(context.Background(), LoginRequest{Username: "shopper", Password: "wrong"})
	if pkgerrors.As(err).Code() != pkgerrors.CodeInvalidCredentials {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
}

func TestLoginErrorDoesNotRevealWhichFieldFailed(t *testing.T) {
	svc, _ := newTestLoginService(t, "hunter22")

	_, unknownErr := svc.Login(context.Background(), LoginRequest{Username: "nobody", Password: "hunter22"})
	_, wrongErr := svc.Login(context.Background(), LoginRequest{Username: "shopper", Password: "wrong"})

	if unknownErr == nil || wrongErr == nil {
		t.Fatal("expected both logins to fail")
	}
	if unknownErr.Error() != wrongErr.Error() {
		t.Fatalf("error messages must match: %q vs %q", unknownErr.Error(), wrongErr.Error())
	}
}
