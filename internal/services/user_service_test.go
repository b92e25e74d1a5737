package services

import (
	"context"
	"errors"
	"testing"
	"time"

	domain "github.com/biocart/api/internal/domain"
)

func strPtr(v string) *string {
	return &v
}

func TestUserServiceGetProfileMaterialisesEmpty(t *testing.T) {
	now := time.Date(2025, 5, 6, 9, 0, 0, 0, time.UTC)
	service, err := NewUserService(UserServiceDeps{
		Repository: &stubUserRepository{},
		Clock:      func() time.Time { return now },
	})
	if err != nil {
		t.Fatalf("NewUserService: %v", err)
	}

	profile, err := service.GetProfile(context.Background(), "New@Example.com")
	if err != nil {
		t.Fatalf("GetProfile: %v", err)
	}
	if profile.Email != "new@example.com" || profile.Name != "" {
		t.Fatalf("unexpected profile %#v", profile)
	}
}

func TestUserServiceUpdateProfileAppliesFields(t *testing.T) {
	now := time.Date(2025, 5, 6, 9, 0, 0, 0, time.UTC)
	var stored domain.UserProfile

	repo := &stubUserRepository{
		findByEmailFunc: func(_ context.Context, email string) (domain.UserProfile, error) {
			return domain.UserProfile{Email: email, Name: "김바이오", Phone: "010-0000-0000"}, nil
		},
		upsertFunc: func(_ context.Context, profile domain.UserProfile) (domain.UserProfile, error) {
			stored = profile
			return profile, nil
		},
	}

	service, err := NewUserService(UserServiceDeps{
		Repository: repo,
		Clock:      func() time.Time { return now },
	})
	if err != nil {
		t.Fatalf("NewUserService: %v", err)
	}

	profile, err := service.UpdateProfile(context.Background(), UpdateProfileCommand{
		Email:   "user@example.com",
		Phone:   strPtr(" 010-1234-5678 "),
		Address: strPtr("서울시 강남구"),
	})
	if err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	if profile.Phone != "010-1234-5678" || profile.Address != "서울시 강남구" {
		t.Fatalf("updates not applied: %#v", profile)
	}
	if profile.Name != "김바이오" {
		t.Fatalf("nil field must keep stored value, got %q", profile.Name)
	}
	if !stored.UpdatedAt.Equal(now) {
		t.Fatalf("expected updatedAt %v, got %v", now, stored.UpdatedAt)
	}
}

func TestUserServiceUpdateProfileRequiresAField(t *testing.T) {
	now := time.Date(2025, 5, 6, 9, 0, 0, 0, time.UTC)
	service, err := NewUserService(UserServiceDeps{
		Repository: &stubUserRepository{},
		Clock:      func() time.Time { return now },
	})
	if err != nil {
		t.Fatalf("NewUserService: %v", err)
	}

	if _, err := service.UpdateProfile(context.Background(), UpdateProfileCommand{Email: "user@example.com"}); !errors.Is(err, ErrUserInvalidInput) {
		t.Fatalf("expected ErrUserInvalidInput, got %v", err)
	}
	if _, err := service.GetProfile(context.Background(), " "); !errors.Is(err, ErrUserInvalidInput) {
		t.Fatalf("expected ErrUserInvalidInput, got %v", err)
	}
}
