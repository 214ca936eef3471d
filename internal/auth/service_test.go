package auth

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/reciclaja/reciclaja-backend/internal/mailer"
	"github.com/reciclaja/reciclaja-backend/internal/users"
	pkgauth "github.com/reciclaja/reciclaja-backend/pkg/auth"
	"github.com/reciclaja/reciclaja-backend/pkg/auth/session"
	"github.com/reciclaja/reciclaja-backend/pkg/config"
	"github.com/reciclaja/reciclaja-backend/pkg/db/models"
	"github.com/reciclaja/reciclaja-backend/pkg/enums"
	pkgerrors "github.com/reciclaja/reciclaja-backend/pkg/errors"
	"github.com/reciclaja/reciclaja-backend/pkg/security"
)

var testJWTCfg = config.JWTConfig{
	Secret:            "test-secret",
	Issuer:            "recicla-test",
	ExpirationMinutes: 15,
}

type fakeUserRepo struct {
	users map[uuid.UUID]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[uuid.UUID]*models.User{}}
}

func (f *fakeUserRepo) WithTx(tx *gorm.DB) users.Repository { return f }

func (f *fakeUserRepo) Create(ctx context.Context, user *models.User) error {
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range f.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) FindByCPF(ctx context.Context, cpf string) (*models.User, error) {
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) List(ctx context.Context) ([]models.User, error) { return nil, nil }

func (f *fakeUserRepo) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	user, ok := f.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if v, ok := updates["password_hash"]; ok {
		user.PasswordHash = v.(string)
	}
	if v, ok := updates["recovery_code"]; ok {
		if v == nil {
			user.RecoveryCode = nil
		} else {
			code := v.(string)
			user.RecoveryCode = &code
		}
	}
	if v, ok := updates["recovery_code_expires_at"]; ok {
		if v == nil {
			user.RecoveryCodeExpiresAt = nil
		} else {
			at := v.(time.Time)
			user.RecoveryCodeExpiresAt = &at
		}
	}
	return nil
}

func (f *fakeUserRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(f.users, id)
	return nil
}

type fakeSessionManager struct {
	sessions map[string]string
	revoked  []string
}

func newFakeSessionManager() *fakeSessionManager {
	return &fakeSessionManager{sessions: map[string]string{}}
}

func (f *fakeSessionManager) Generate(ctx context.Context, accessID string) (string, error) {
	token := "refresh-" + accessID
	f.sessions[accessID] = token
	return token, nil
}

func (f *fakeSessionManager) Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error) {
	stored, ok := f.sessions[oldAccessID]
	if !ok || stored != provided {
		return "", "", session.ErrInvalidRefreshToken
	}
	delete(f.sessions, oldAccessID)
	newID := session.NewAccessID()
	token := "refresh-" + newID
	f.sessions[newID] = token
	return newID, token, nil
}

func (f *fakeSessionManager) Revoke(ctx context.Context, accessID string) error {
	delete(f.sessions, accessID)
	f.revoked = append(f.revoked, accessID)
	return nil
}

type recordingMailer struct {
	sent []mailer.Message
}

func (r *recordingMailer) Send(ctx context.Context, msg mailer.Message) error {
	r.sent = append(r.sent, msg)
	return nil
}

type authTestEnv struct {
	svc      Service
	repo     *fakeUserRepo
	sessions *fakeSessionManager
	mail     *recordingMailer
}

func newAuthTest(t *testing.T) *authTestEnv {
	t.Helper()
	repo := newFakeUserRepo()
	sessions := newFakeSessionManager()
	mail := &recordingMailer{}
	svc, err := NewService(repo, sessions, mail, nil, testJWTCfg, config.PasswordConfig{}, 30*time.Minute)
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}
	return &authTestEnv{svc: svc, repo: repo, sessions: sessions, mail: mail}
}

func (e *authTestEnv) seedUser(t *testing.T, password string, active bool) *models.User {
	t.Helper()
	hash, err := security.HashPassword(password, config.PasswordConfig{})
	if err != nil {
		t.Fatalf("hashing password: %v", err)
	}
	user := &models.User{
		ID:           uuid.New(),
		Name:         "Joana Silva",
		Email:        "joana@example.com",
		PasswordHash: hash,
		Role:         enums.UserRoleIndividual,
		IsActive:     active,
	}
	e.repo.users[user.ID] = user
	return user
}

func TestService_Login(t *testing.T) {
	env := newAuthTest(t)
	user := env.seedUser(t, "correct-horse", true)

	pair, err := env.svc.Login(context.Background(), "Joana@Example.com", "correct-horse")
	if err != nil {
		t.Fatalf("Login error: %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatal("expected both tokens")
	}
	if pair.ExpiresIn != 15*60 {
		t.Fatalf("expected expires_in 900, got %d", pair.ExpiresIn)
	}

	claims, err := pkgauth.ParseAccessToken(testJWTCfg, pair.AccessToken)
	if err != nil {
		t.Fatalf("parsing minted token: %v", err)
	}
	if claims.UserID != user.ID || claims.Role != enums.UserRoleIndividual {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if _, ok := env.sessions.sessions[claims.ID]; !ok {
		t.Fatal("expected session stored for the token jti")
	}
}

func TestService_LoginWrongPassword(t *testing.T) {
	env := newAuthTest(t)
	env.seedUser(t, "correct-horse", true)

	_, err := env.svc.Login(context.Background(), "joana@example.com", "wrong")
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestService_LoginInactiveUser(t *testing.T) {
	env := newAuthTest(t)
	env.seedUser(t, "correct-horse", false)

	_, err := env.svc.Login(context.Background(), "joana@example.com", "correct-horse")
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestService_RefreshRotatesSession(t *testing.T) {
	env := newAuthTest(t)
	env.seedUser(t, "correct-horse", true)

	pair, err := env.svc.Login(context.Background(), "joana@example.com", "correct-horse")
	if err != nil {
		t.Fatalf("Login error: %v", err)
	}

	refreshed, err := env.svc.Refresh(context.Background(), pair.AccessToken, pair.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh error: %v", err)
	}
	if refreshed.RefreshToken == pair.RefreshToken {
		t.Fatal("expected a new refresh token")
	}

	// the old pair must be dead after rotation
	_, err = env.svc.Refresh(context.Background(), pair.AccessToken, pair.RefreshToken)
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized on reused refresh token, got %v", err)
	}
}

func TestService_Logout(t *testing.T) {
	env := newAuthTest(t)
	env.seedUser(t, "correct-horse", true)

	pair, err := env.svc.Login(context.Background(), "joana@example.com", "correct-horse")
	if err != nil {
		t.Fatalf("Login error: %v", err)
	}
	claims, err := pkgauth.ParseAccessToken(testJWTCfg, pair.AccessToken)
	if err != nil {
		t.Fatalf("parsing token: %v", err)
	}

	if err := env.svc.Logout(context.Background(), claims.ID); err != nil {
		t.Fatalf("Logout error: %v", err)
	}
	if _, ok := env.sessions.sessions[claims.ID]; ok {
		t.Fatal("expected session removed")
	}
}

func TestService_RequestPasswordRecovery(t *testing.T) {
	env := newAuthTest(t)
	user := env.seedUser(t, "correct-horse", true)

	if err := env.svc.RequestPasswordRecovery(context.Background(), "joana@example.com"); err != nil {
		t.Fatalf("RequestPasswordRecovery error: %v", err)
	}
	if user.RecoveryCode == nil || len(*user.RecoveryCode) != 6 {
		t.Fatalf("expected six digit recovery code, got %v", user.RecoveryCode)
	}
	if user.RecoveryCodeExpiresAt == nil || !user.RecoveryCodeExpiresAt.After(time.Now()) {
		t.Fatal("expected a future expiry")
	}
	if len(env.mail.sent) != 1 {
		t.Fatalf("expected one recovery email, got %d", len(env.mail.sent))
	}
	if !strings.Contains(env.mail.sent[0].HTML, *user.RecoveryCode) {
		t.Fatal("email should carry the code")
	}
}

func TestService_RequestPasswordRecoveryUnknownEmail(t *testing.T) {
	env := newAuthTest(t)

	if err := env.svc.RequestPasswordRecovery(context.Background(), "nobody@example.com"); err != nil {
		t.Fatalf("expected uniform nil response, got %v", err)
	}
	if len(env.mail.sent) != 0 {
		t.Fatal("no email should be sent for unknown addresses")
	}
}

func TestService_ResetPassword(t *testing.T) {
	env := newAuthTest(t)
	user := env.seedUser(t, "correct-horse", true)

	if err := env.svc.RequestPasswordRecovery(context.Background(), user.Email); err != nil {
		t.Fatalf("RequestPasswordRecovery error: %v", err)
	}
	code := *user.RecoveryCode

	err := env.svc.ResetPassword(context.Background(), ResetPasswordInput{
		Email:       user.Email,
		Code:        code,
		NewPassword: "battery-staple",
	})
	if err != nil {
		t.Fatalf("ResetPassword error: %v", err)
	}

	ok, err := security.VerifyPassword("battery-staple", user.PasswordHash)
	if err != nil || !ok {
		t.Fatalf("new password does not verify: ok=%v err=%v", ok, err)
	}
	if user.RecoveryCode != nil || user.RecoveryCodeExpiresAt != nil {
		t.Fatal("recovery code must be cleared after use")
	}

	// the code is single-use
	err = env.svc.ResetPassword(context.Background(), ResetPasswordInput{
		Email:       user.Email,
		Code:        code,
		NewPassword: "battery-staple2",
	})
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized on reused code, got %v", err)
	}
}

func TestService_ResetPasswordExpiredCode(t *testing.T) {
	env := newAuthTest(t)
	user := env.seedUser(t, "correct-horse", true)

	code := "123456"
	expired := time.Now().Add(-time.Minute)
	user.RecoveryCode = &code
	user.RecoveryCodeExpiresAt = &expired

	err := env.svc.ResetPassword(context.Background(), ResetPasswordInput{
		Email:       user.Email,
		Code:        code,
		NewPassword: "battery-staple",
	})
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized on expired code, got %v", err)
	}
}

func TestService_ResetPasswordWrongCode(t *testing.T) {
	env := newAuthTest(t)
	user := env.seedUser(t, "correct-horse", true)

	if err := env.svc.RequestPasswordRecovery(context.Background(), user.Email); err != nil {
		t.Fatalf("RequestPasswordRecovery error: %v", err)
	}

	err := env.svc.ResetPassword(context.Background(), ResetPasswordInput{
		Email:       user.Email,
		Code:        "000000",
		NewPassword: "battery-staple",
	})
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized on wrong code, got %v", err)
	}
}
