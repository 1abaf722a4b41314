package businessflow

import (
	"context"
	"strings"

	"github.com/aetherinc/aether-waitlist/models"
	"github.com/aetherinc/aether-waitlist/repository"
	"github.com/aetherinc/aether-waitlist/utils"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const minAdminPasswordLength = 8

// EnsureAdminUser creates an active ADMIN account, or resets the password and role
// of the account that already owns the email. created reports which happened.
func EnsureAdminUser(ctx context.Context, userRepo repository.UserRepository, email, username, password string, cost int) (user *models.User, created bool, err error) {
	email = strings.ToLower(strings.TrimSpace(email))
	username = strings.TrimSpace(username)
	if !utils.IsBasicEmail(email) {
		return nil, false, NewValidationError("INVALID_EMAIL", "Valid email is required", ErrInvalidEmail)
	}
	if len(password) < minAdminPasswordLength {
		return nil, false, NewValidationError("PASSWORD_TOO_SHORT", "Password must be at least 8 characters", nil)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return nil, false, NewServerError("PASSWORD_HASH_FAILED", "Failed to hash password", err)
	}

	existing, err := userRepo.ByEmail(ctx, email)
	if err != nil {
		return nil, false, err
	}

	if existing != nil {
		existing.PasswordHash = string(hash)
		existing.Role = utils.RoleAdmin
		existing.IsActive = utils.ToPtr(true)
		if username != "" {
			existing.Username = &username
		}
		existing.UpdatedAt = utils.UTCNow()
		if err := userRepo.Update(ctx, existing); err != nil {
			return nil, false, err
		}
		return existing, false, nil
	}

	now := utils.UTCNow()
	user = &models.User{
		UUID:         uuid.New(),
		Email:        email,
		PasswordHash: string(hash),
		Role:         utils.RoleAdmin,
		IsActive:     utils.ToPtr(true),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if username != "" {
		user.Username = &username
	}
	if err := userRepo.Save(ctx, user); err != nil {
		return nil, false, err
	}
	return user, true, nil
}
