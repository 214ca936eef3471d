package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/reciclaja/reciclaja-backend/api/middleware"
	"github.com/reciclaja/reciclaja-backend/internal/users"
	"github.com/reciclaja/reciclaja-backend/pkg/db/models"
	"github.com/reciclaja/reciclaja-backend/pkg/enums"
	pkgerrors "github.com/reciclaja/reciclaja-backend/pkg/errors"
)

type stubUserService struct {
	registerResp *models.User
	profileResp  *users.ProfileResult
	updateResp   *models.User
	listResp     []models.User
	err          error
}

func (s stubUserService) Register(ctx context.Context, input users.RegisterInput) (*models.User, error) {
	return s.registerResp, s.err
}

func (s stubUserService) Get(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if s.profileResp == nil {
		return nil, s.err
	}
	return s.profileResp.User, s.err
}

func (s stubUserService) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return nil, s.err
}

func (s stubUserService) Profile(ctx context.Context, id uuid.UUID) (*users.ProfileResult, error) {
	return s.profileResp, s.err
}

func (s stubUserService) List(ctx context.Context) ([]models.User, error) {
	return s.listResp, s.err
}

func (s stubUserService) Update(ctx context.Context, id uuid.UUID, input users.UpdateInput) (*models.User, error) {
	return s.updateResp, s.err
}

func (s stubUserService) Deactivate(ctx context.Context, id uuid.UUID) error {
	return s.err
}

func routeRequest(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func TestUserRegisterSuccess(t *testing.T) {
	userID := uuid.New()
	handler := UserRegister(stubUserService{registerResp: &models.User{
		ID:       userID,
		Name:     "Maria Silva",
		Email:    "maria@example.com",
		Role:     enums.UserRoleIndividual,
		IsActive: true,
	}}, nil)

	payload := []byte(`{
		"name": "Maria Silva",
		"email": "maria@example.com",
		"password": "s3nh4-f0rte",
		"role": "INDIVIDUAL"
	}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/usuarios", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", rec.Code, rec.Body.String())
	}

	var envelope struct {
		Data userView `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.ID != userID {
		t.Fatalf("expected id %s got %s", userID, envelope.Data.ID)
	}
}

func TestUserRegisterRejectsUnknownRole(t *testing.T) {
	handler := UserRegister(stubUserService{}, nil)

	payload := []byte(`{
		"name": "Maria Silva",
		"email": "maria@example.com",
		"password": "s3nh4-f0rte",
		"role": "ADMIN"
	}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/usuarios", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestUserProfileReturnsBalance(t *testing.T) {
	userID := uuid.New()
	handler := UserProfile(stubUserService{profileResp: &users.ProfileResult{
		User: &models.User{
			ID:       userID,
			Name:     "Maria Silva",
			Email:    "maria@example.com",
			Role:     enums.UserRoleIndividual,
			IsActive: true,
		},
		Balance: 230,
	}}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/usuarios/"+userID.String(), nil)
	req = routeRequest(req, "userId", userID.String())
	req = req.WithContext(middleware.WithUserID(req.Context(), userID.String()))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}

	var envelope struct {
		Data profileView `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.Balance != 230 {
		t.Fatalf("expected balance 230 got %d", envelope.Data.Balance)
	}
}

func TestUserProfileForbiddenForOtherUser(t *testing.T) {
	targetID := uuid.New()
	handler := UserProfile(stubUserService{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/usuarios/"+targetID.String(), nil)
	req = routeRequest(req, "userId", targetID.String())
	req = req.WithContext(middleware.WithUserID(req.Context(), uuid.NewString()))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", rec.Code)
	}
}

func TestUserProfileAdminCanReadAnyUser(t *testing.T) {
	targetID := uuid.New()
	handler := UserProfile(stubUserService{profileResp: &users.ProfileResult{
		User:    &models.User{ID: targetID, Role: enums.UserRoleIndividual},
		Balance: 0,
	}}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/usuarios/"+targetID.String(), nil)
	req = routeRequest(req, "userId", targetID.String())
	ctx := middleware.WithUserID(req.Context(), uuid.NewString())
	ctx = middleware.WithRole(ctx, string(enums.UserRoleAdmin))
	req = req.WithContext(ctx)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestUserProfileNotFound(t *testing.T) {
	targetID := uuid.New()
	handler := UserProfile(stubUserService{err: pkgerrors.New(pkgerrors.CodeNotFound, "user not found")}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/usuarios/"+targetID.String(), nil)
	req = routeRequest(req, "userId", targetID.String())
	req = req.WithContext(middleware.WithUserID(req.Context(), targetID.String()))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", rec.Code)
	}
}
