package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/angelmondragon/storefront/internal/auth"
	"github.com/angelmondragon/storefront/internal/users"
	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
)

type stubLoginService struct {
	resp *auth.AuthResponse
	err  error
}

func (s stubLoginService) Login(ctx context.Context, req auth.LoginRequest) (*auth.AuthResponse, error) {
	return s.resp, s.err
}

type stubRegistrar struct {
	resp *auth.AuthResponse
	err  error
	got  *auth.RegisterRequest
}

func (s *stubRegistrar) Register(ctx context.Context, req auth.RegisterRequest) (*auth.AuthResponse, error) {
	s.got = &req
	return s.resp, s.err
}

func TestAuthLoginSuccess(t *testing.T) {
	userID := uuid.New()
	svc := stubLoginService{resp: &auth.AuthResponse{
		Token: "signed-token",
		User:  &users.UserDTO{ID: userID, Username: "zed"},
	}}
	handler := AuthLogin(svc, nil)

	body := `{"username":"zed","password":"secret1"}`
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}

	var envelope struct {
		Data auth.AuthResponse `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.Token != "signed-token" {
		t.Fatalf("unexpected token: %q", envelope.Data.Token)
	}
	if envelope.Data.User == nil || envelope.Data.User.ID != userID {
		t.Fatalf("unexpected user payload: %+v", envelope.Data.User)
	}
}

func TestAuthLoginInvalidCredentials(t *testing.T) {
	svc := stubLoginService{err: pkgerrors.New(pkgerrors.CodeInvalidCredentials, "invalid username or password")}
	handler := AuthLogin(svc, nil)

	body := `{"username":"zed","password":"wrong-pass"}`
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected legacy 400 got %d", resp.Code)
	}
}

func TestAuthLoginRejectsMissingFields(t *testing.T) {
	handler := AuthLogin(stubLoginService{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{"username":"zed"}`))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestAuthRegisterCreated(t *testing.T) {
	registrar := &stubRegistrar{resp: &auth.AuthResponse{Token: "signed-token"}}
	handler := AuthRegister(registrar, nil)

	body := `{"username":"zed","email":"ZED@Example.com","password":"secret1"}`
	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d", resp.Code)
	}
	if registrar.got == nil || registrar.got.Email != "ZED@Example.com" {
		t.Fatalf("register request not forwarded: %+v", registrar.got)
	}
}

func TestAuthRegisterConflictUsesLegacyStatus(t *testing.T) {
	registrar := &stubRegistrar{err: pkgerrors.New(pkgerrors.CodeConflict, "email already registered")}
	handler := AuthRegister(registrar, nil)

	body := `{"username":"zed","email":"zed@example.com","password":"secret1"}`
	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected legacy 400 got %d", resp.Code)
	}

	var envelope struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Error.Message != "email already registered" {
		t.Fatalf("unexpected message: %q", envelope.Error.Message)
	}
}

func TestAuthRegisterRejectsUnknownFields(t *testing.T) {
	handler := AuthRegister(&stubRegistrar{}, nil)

	body := `{"username":"zed","email":"zed@example.com","password":"secret1","role":"admin"}`
	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown field got %d", resp.Code)
	}
}
