package testing

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/aetherinc/aether-waitlist/models"
	"github.com/aetherinc/aether-waitlist/utils"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// TestPassword is the plain password of every user the fixtures create
const TestPassword = "TestPass123!"

// TestFixtures provides helper methods for creating test data
type TestFixtures struct {
	DB *TestDB
}

// NewTestFixtures creates a new test fixtures instance
func NewTestFixtures(db *TestDB) *TestFixtures {
	return &TestFixtures{DB: db}
}

// CreateTestUser creates an active user with TestPassword and the given role
func (tf *TestFixtures) CreateTestUser(role string) (*models.User, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := utils.UTCNow()
	user := &models.User{
		UUID:         uuid.New(),
		Email:        fmt.Sprintf("%s.%d@example.com", strings.ToLower(role), rand.Intn(1_000_000_000)),
		PasswordHash: string(hashedPassword),
		Role:         role,
		IsActive:     utils.ToPtr(true),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := tf.DB.DB.Create(user).Error; err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// CreateTestAdmin creates an active ADMIN user
func (tf *TestFixtures) CreateTestAdmin() (*models.User, error) {
	return tf.CreateTestUser(utils.RoleAdmin)
}

// CreateTestTool creates a tool in category with the given tags
func (tf *TestFixtures) CreateTestTool(name, category string, active bool, tags ...string) (*models.Tool, error) {
	now := utils.UTCNow()
	tool := &models.Tool{
		Name:        name,
		Category:    category,
		License:     "MIT",
		Description: fmt.Sprintf("%s is a test tool", name),
		URL:         "https://example.com/" + strings.ToLower(strings.ReplaceAll(name, " ", "-")),
		IsActive:    utils.ToPtr(active),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	for i, tag := range tags {
		tool.Tags = append(tool.Tags, models.ToolTag{Name: tag, Position: i})
	}
	if err := tf.DB.DB.Create(tool).Error; err != nil {
		return nil, fmt.Errorf("failed to create tool %s: %w", name, err)
	}
	return tool, nil
}

// CreateTestWaitlistEntry adds a waitlist entry joined at createdAt
func (tf *TestFixtures) CreateTestWaitlistEntry(name, email string, createdAt time.Time) (*models.WaitlistEntry, error) {
	entry := &models.WaitlistEntry{
		Name:      name,
		Email:     strings.ToLower(email),
		IP:        "127.0.0.1",
		CreatedAt: createdAt.UTC(),
	}
	if err := tf.DB.DB.Create(entry).Error; err != nil {
		return nil, fmt.Errorf("failed to create waitlist entry: %w", err)
	}
	return entry, nil
}
