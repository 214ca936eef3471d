package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/reciclaja/reciclaja-backend/internal/auth"
	pkgerrors "github.com/reciclaja/reciclaja-backend/pkg/errors"
)

type stubAuthService struct {
	pair *auth.TokenPair
	err  error
}

func (s stubAuthService) Login(ctx context.Context, email, password string) (*auth.TokenPair, error) {
	return s.pair, s.err
}

func (s stubAuthService) Refresh(ctx context.Context, accessToken, refreshToken string) (*auth.TokenPair, error) {
	return s.pair, s.err
}

func (s stubAuthService) Logout(ctx context.Context, accessID string) error {
	return s.err
}

func (s stubAuthService) RequestPasswordRecovery(ctx context.Context, email string) error {
	return s.err
}

func (s stubAuthService) ResetPassword(ctx context.Context, input auth.ResetPasswordInput) error {
	return s.err
}

func TestAuthLoginSuccess(t *testing.T) {
	handler := AuthLogin(stubAuthService{pair: &auth.TokenPair{
		AccessToken:  "access",
		RefreshToken: "refresh",
		ExpiresIn:    900,
	}}, nil)

	payload := []byte(`{"email":"maria@example.com","password":"s3nh4-f0rte"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}

	var envelope struct {
		Data tokenPairView `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.AccessToken != "access" || envelope.Data.ExpiresIn != 900 {
		t.Fatalf("unexpected token pair: %+v", envelope.Data)
	}
}

func TestAuthLoginInvalidCredentials(t *testing.T) {
	handler := AuthLogin(stubAuthService{err: pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")}, nil)

	payload := []byte(`{"email":"maria@example.com","password":"errada"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rec.Code)
	}
}

func TestAuthLoginRejectsMissingEmail(t *testing.T) {
	handler := AuthLogin(stubAuthService{}, nil)

	payload := []byte(`{"password":"s3nh4-f0rte"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestAuthRecoverPasswordAlwaysSucceeds(t *testing.T) {
	handler := AuthRecoverPassword(stubAuthService{}, nil)

	payload := []byte(`{"email":"desconhecido@example.com"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/recuperar-senha", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
}

func TestAuthLogoutWithoutSession(t *testing.T) {
	handler := AuthLogout(stubAuthService{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rec.Code)
	}
}
