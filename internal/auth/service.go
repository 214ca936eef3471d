package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/reciclaja/reciclaja-backend/internal/mailer"
	"github.com/reciclaja/reciclaja-backend/internal/users"
	pkgauth "github.com/reciclaja/reciclaja-backend/pkg/auth"
	"github.com/reciclaja/reciclaja-backend/pkg/auth/session"
	"github.com/reciclaja/reciclaja-backend/pkg/config"
	pkgerrors "github.com/reciclaja/reciclaja-backend/pkg/errors"
	"github.com/reciclaja/reciclaja-backend/pkg/logger"
	"github.com/reciclaja/reciclaja-backend/pkg/security"
)

const recoveryCodeLen = 6

type sessionManager interface {
	Generate(ctx context.Context, accessID string) (string, error)
	Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error)
	Revoke(ctx context.Context, accessID string) error
}

// Service exposes login, token refresh, logout, and password recovery.
type Service interface {
	Login(ctx context.Context, email, password string) (*TokenPair, error)
	Refresh(ctx context.Context, accessToken, refreshToken string) (*TokenPair, error)
	Logout(ctx context.Context, accessID string) error
	RequestPasswordRecovery(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, input ResetPasswordInput) error
}

type service struct {
	users       users.Repository
	sessions    sessionManager
	mail        mailer.Mailer
	logg        *logger.Logger
	jwtCfg      config.JWTConfig
	passwordCfg config.PasswordConfig
	recoveryTTL time.Duration
	now         func() time.Time
}

// TokenPair is the access/refresh pair returned on login and refresh.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int64
}

// ResetPasswordInput carries a password redefinition request.
type ResetPasswordInput struct {
	Email       string
	Code        string
	NewPassword string
}

// NewService wires an auth service with its dependencies.
func NewService(userRepo users.Repository, sessions sessionManager, mail mailer.Mailer, logg *logger.Logger, jwtCfg config.JWTConfig, passwordCfg config.PasswordConfig, recoveryTTL time.Duration) (Service, error) {
	if userRepo == nil {
		return nil, fmt.Errorf("user repository required")
	}
	if sessions == nil {
		return nil, fmt.Errorf("session manager required")
	}
	if mail == nil {
		mail = mailer.Noop{}
	}
	if recoveryTTL <= 0 {
		return nil, fmt.Errorf("recovery code ttl must be positive")
	}
	return &service{
		users:       userRepo,
		sessions:    sessions,
		mail:        mail,
		logg:        logg,
		jwtCfg:      jwtCfg,
		passwordCfg: passwordCfg,
		recoveryTTL: recoveryTTL,
		now:         time.Now,
	}, nil
}

var errInvalidCredentials = pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")

func (s *service) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, errInvalidCredentials
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errInvalidCredentials
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, errInvalidCredentials
	}

	ok, err := security.VerifyPassword(password, user.PasswordHash)
	if err != nil || !ok {
		return nil, errInvalidCredentials
	}

	accessID := session.NewAccessID()
	accessToken, err := pkgauth.MintAccessToken(s.jwtCfg, s.now(), pkgauth.AccessTokenPayload{
		UserID: user.ID,
		Role:   user.Role,
		JTI:    accessID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "minting access token")
	}

	refreshToken, err := s.sessions.Generate(ctx, accessID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "creating session")
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(s.jwtCfg.ExpirationMinutes) * 60,
	}, nil
}

// Refresh rotates the refresh token tied to the (possibly expired) access
// token and issues a fresh pair. The new token picks up the user's current
// role, and deactivated accounts cannot refresh.
func (s *service) Refresh(ctx context.Context, accessToken, refreshToken string) (*TokenPair, error) {
	claims, err := pkgauth.ParseAccessTokenAllowExpired(s.jwtCfg, accessToken)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid access token")
	}

	user, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid session")
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid session")
	}

	newAccessID, newRefresh, err := s.sessions.Rotate(ctx, claims.ID, refreshToken)
	if err != nil {
		if errors.Is(err, session.ErrInvalidRefreshToken) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid refresh token")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rotating session")
	}

	newAccess, err := pkgauth.MintAccessToken(s.jwtCfg, s.now(), pkgauth.AccessTokenPayload{
		UserID: user.ID,
		Role:   user.Role,
		JTI:    newAccessID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "minting access token")
	}

	return &TokenPair{
		AccessToken:  newAccess,
		RefreshToken: newRefresh,
		ExpiresIn:    int64(s.jwtCfg.ExpirationMinutes) * 60,
	}, nil
}

func (s *service) Logout(ctx context.Context, accessID string) error {
	if strings.TrimSpace(accessID) == "" {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid session")
	}
	if err := s.sessions.Revoke(ctx, accessID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revoking session")
	}
	return nil
}

// RequestPasswordRecovery stores a short-lived numeric code and emails it.
// The response is uniform: an unknown email is not distinguishable from a
// known one.
func (s *service) RequestPasswordRecovery(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}

	code, err := security.GenerateNumericCode(recoveryCodeLen)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generating recovery code")
	}
	expiresAt := s.now().Add(s.recoveryTTL)

	err = s.users.Update(ctx, user.ID, map[string]any{
		"recovery_code":            code,
		"recovery_code_expires_at": expiresAt,
	})
	if err != nil {
		return err
	}

	msg := mailer.Message{
		ToEmail: user.Email,
		ToName:  user.Name,
		Subject: "Recuperação de senha",
		HTML: fmt.Sprintf("<p>Olá %s,</p><p>Seu código de recuperação é <strong>%s</strong>. Ele expira em %d minutos.</p>",
			user.Name, code, int(s.recoveryTTL.Minutes())),
	}
	if err := s.mail.Send(ctx, msg); err != nil && s.logg != nil {
		s.logg.Warn(ctx, fmt.Sprintf("recovery email failed: %v", err))
	}
	return nil
}

// ResetPassword redefines the password when the recovery code matches and
// has not expired. The code is single-use: it is cleared on success.
func (s *service) ResetPassword(ctx context.Context, input ResetPasswordInput) error {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	code := strings.TrimSpace(input.Code)
	if email == "" || code == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "email and code are required")
	}
	if len(input.NewPassword) < 8 {
		return pkgerrors.New(pkgerrors.CodeValidation, "password must have at least 8 characters")
	}

	invalidCode := pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid or expired recovery code")

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return invalidCode
		}
		return err
	}
	if user.RecoveryCode == nil || user.RecoveryCodeExpiresAt == nil {
		return invalidCode
	}
	if s.now().After(*user.RecoveryCodeExpiresAt) {
		return invalidCode
	}
	if subtle.ConstantTimeCompare([]byte(*user.RecoveryCode), []byte(code)) != 1 {
		return invalidCode
	}

	hash, err := security.HashPassword(input.NewPassword, s.passwordCfg)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hashing password")
	}

	return s.users.Update(ctx, user.ID, map[string]any{
		"password_hash":            hash,
		"recovery_code":            nil,
		"recovery_code_expires_at": nil,
	})
}
