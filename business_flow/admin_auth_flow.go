package businessflow

import (
	"context"
	"errors"
	"strings"

	"github.com/aetherinc/aether-waitlist/app/dto"
	"github.com/aetherinc/aether-waitlist/app/services"
	"github.com/aetherinc/aether-waitlist/models"
	"github.com/aetherinc/aether-waitlist/repository"
	"github.com/aetherinc/aether-waitlist/utils"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// AdminLoginResult carries the signed token for the handler to set as a cookie
type AdminLoginResult struct {
	Token    string
	Response dto.AdminLoginResponse
}

// AdminAuthFlow signs dashboard users in and out and resolves sessions
type AdminAuthFlow interface {
	InitCaptcha(ctx context.Context) (*dto.CaptchaChallengeResponse, error)
	Login(ctx context.Context, req *dto.AdminLoginRequest, metadata *ClientMetadata) (*AdminLoginResult, error)
	Logout(ctx context.Context, token string) error
	Authenticate(ctx context.Context, token string) (*services.SessionClaims, error)
	Session(ctx context.Context, token string) (*dto.SessionDTO, error)
}

// AdminAuthFlowImpl provides captcha-guarded credential login over the user table
type AdminAuthFlowImpl struct {
	userRepo     repository.UserRepository
	tokenService services.TokenService
	captchaSvc   services.CaptchaService
}

// NewAdminAuthFlow wires the flow; a nil captchaSvc turns the captcha step off
func NewAdminAuthFlow(userRepo repository.UserRepository, tokenService services.TokenService, captchaSvc services.CaptchaService) AdminAuthFlow {
	return &AdminAuthFlowImpl{
		userRepo:     userRepo,
		tokenService: tokenService,
		captchaSvc:   captchaSvc,
	}
}

// dummyHash is compared against when the account does not exist so both paths cost a bcrypt round
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("aether-no-such-user"), bcrypt.DefaultCost)

func invalidCredentialsError() *BusinessError {
	return NewAuthenticationError("INVALID_CREDENTIALS", "Invalid email or password", ErrInvalidCredentials)
}

func (af *AdminAuthFlowImpl) InitCaptcha(ctx context.Context) (*dto.CaptchaChallengeResponse, error) {
	if af.captchaSvc == nil {
		return nil, NewNotFoundError("CAPTCHA_DISABLED", "Captcha is disabled", ErrCaptchaDisabled)
	}
	ch, err := af.captchaSvc.GenerateRotate(ctx)
	if err != nil {
		return nil, NewServerError("CAPTCHA_INIT_FAILED", "Failed to initialize captcha", err)
	}
	return &dto.CaptchaChallengeResponse{
		ID:                ch.ID,
		MasterImageBase64: ch.MasterImageBase64,
		ThumbImageBase64:  ch.ThumbImageBase64,
	}, nil
}

func (af *AdminAuthFlowImpl) Login(ctx context.Context, req *dto.AdminLoginRequest, metadata *ClientMetadata) (*AdminLoginResult, error) {
	if req == nil || strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return nil, NewValidationError("CREDENTIALS_REQUIRED", "Email and password are required", ErrInvalidCredentials)
	}

	// Verify captcha first
	if af.captchaSvc != nil {
		if strings.TrimSpace(req.CaptchaID) == "" || req.CaptchaAngle == nil {
			return nil, NewValidationError("CAPTCHA_REQUIRED", "Captcha is required", ErrCaptchaRequired)
		}
		if !af.captchaSvc.VerifyRotate(ctx, req.CaptchaID, *req.CaptchaAngle) {
			return nil, NewValidationError("CAPTCHA_INVALID", "Captcha validation failed", ErrCaptchaInvalid)
		}
	}

	// Lookup user by email or username
	identifier := strings.TrimSpace(req.Email)
	var (
		user *models.User
		err  error
	)
	if strings.Contains(identifier, "@") {
		user, err = af.userRepo.ByEmail(ctx, identifier)
	} else {
		user, err = af.userRepo.ByUsername(ctx, identifier)
	}
	if err != nil {
		return nil, err
	}

	// Verify password
	hash := dummyHash
	if user != nil {
		hash = []byte(user.PasswordHash)
	}
	pwErr := bcrypt.CompareHashAndPassword(hash, []byte(req.Password))
	if user == nil || pwErr != nil {
		return nil, invalidCredentialsError()
	}
	if !utils.IsTrue(user.IsActive) {
		return nil, NewAuthenticationError("INVALID_CREDENTIALS", "Invalid email or password", ErrAccountInactive)
	}
	if user.Role != utils.RoleAdmin {
		return nil, NewAuthorizationError("ADMIN_ROLE_REQUIRED", "Admin access required", ErrAdminRoleRequired)
	}

	token, claims, err := af.tokenService.GenerateSessionToken(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, NewServerError("TOKEN_GENERATION_FAILED", "Failed to create session", err)
	}

	if err := af.userRepo.TouchLastLogin(ctx, user.ID, utils.UTCNow()); err != nil {
		zap.L().Warn("failed to record last login", zap.Uint("user_id", user.ID), zap.Error(err))
	}

	return &AdminLoginResult{
		Token: token,
		Response: dto.AdminLoginResponse{
			User:      ToSessionUserDTO(*user),
			ExpiresAt: claims.ExpiresAt,
		},
	}, nil
}

// Logout revokes the token; logging out without a session is a no-op
func (af *AdminAuthFlowImpl) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := af.tokenService.RevokeSessionToken(ctx, token); err != nil {
		return NewServerError("LOGOUT_FAILED", "Failed to end session", err)
	}
	return nil
}

// Authenticate resolves a token into claims or an AUTHENTICATION error. It does not check the role.
func (af *AdminAuthFlowImpl) Authenticate(ctx context.Context, token string) (*services.SessionClaims, error) {
	if token == "" {
		return nil, NewAuthenticationError("SESSION_REQUIRED", "Authentication required", ErrSessionRequired)
	}
	claims, err := af.tokenService.ValidateSessionToken(ctx, token)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrTokenExpired):
			return nil, NewAuthenticationError("TOKEN_EXPIRED", "Session has expired", err)
		case errors.Is(err, services.ErrTokenRevoked):
			return nil, NewAuthenticationError("TOKEN_REVOKED", "Session has been revoked", err)
		default:
			return nil, NewAuthenticationError("TOKEN_INVALID", "Invalid session", err)
		}
	}
	return claims, nil
}

func (af *AdminAuthFlowImpl) Session(ctx context.Context, token string) (*dto.SessionDTO, error) {
	claims, err := af.Authenticate(ctx, token)
	if err != nil {
		return nil, err
	}
	return &dto.SessionDTO{
		UserID:    claims.UserID,
		Email:     claims.Email,
		Role:      claims.Role,
		ExpiresAt: claims.ExpiresAt,
	}, nil
}
