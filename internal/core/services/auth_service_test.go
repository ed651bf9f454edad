package services

import (
	"context"
	"errors"
	"testing"

	"coopvote/internal/adapters/persistence/models"
	"coopvote/internal/adapters/persistence/repositories"
	"coopvote/internal/config"
	"coopvote/internal/core/domain"
	"coopvote/internal/pkg/jwt"
	"coopvote/internal/pkg/password"

	"gorm.io/gorm"
)

func newAuthFixture(t *testing.T) (*AuthService, *models.User, *gorm.DB) {
	t.Helper()

	db := newTestDB(t)
	userRepo := repositories.NewUserRepository(db)

	hash, err := password.Hash("admin123456")
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}
	user := &models.User{
		Username: "admin",
		Email:    "admin@coop.example.org",
		Password: hash,
		Role:     models.RoleAdmin,
		IsActive: true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("Failed to seed user: %v", err)
	}

	cfg := &config.Config{
		JWT: config.JWTConfig{Secret: "test-secret", AccessTokenMins: 60},
	}
	return NewAuthService(userRepo, cfg), user, db
}

func TestLoginMintsValidToken(t *testing.T) {
	svc, user, _ := newAuthFixture(t)

	result, err := svc.Login(context.Background(), "admin", "admin123456")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	claims, err := jwt.ValidateAccessToken(result.AccessToken, "test-secret")
	if err != nil {
		t.Fatalf("Minted token did not validate: %v", err)
	}
	if claims.UserID != user.ID || claims.Role != models.RoleAdmin {
		t.Errorf("Unexpected claims: %+v", claims)
	}
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	svc, _, _ := newAuthFixture(t)

	_, err := svc.Login(context.Background(), "admin", "wrong-password")
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Errorf("Expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLoginRejectsUnknownUser(t *testing.T) {
	svc, _, _ := newAuthFixture(t)

	_, err := svc.Login(context.Background(), "nobody", "admin123456")
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Errorf("Expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLoginRejectsDisabledUser(t *testing.T) {
	svc, user, db := newAuthFixture(t)

	user.IsActive = false
	if err := db.Save(user).Error; err != nil {
		t.Fatalf("Failed to disable user: %v", err)
	}

	_, err := svc.Login(context.Background(), "admin", "admin123456")
	if !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("Expected ErrForbidden, got %v", err)
	}
}
