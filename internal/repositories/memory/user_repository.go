package memory

import (
	"context"
	"sync"

	domain "github.com/biocart/api/internal/domain"
	"github.com/biocart/api/internal/repositories"
)

// UserRepository keeps user profiles in process memory keyed by normalized email.
type UserRepository struct {
	mu       sync.Mutex
	profiles map[string]domain.UserProfile
}

var _ repositories.UserRepository = (*UserRepository)(nil)

// NewUserRepository constructs an empty in-memory user repository.
func NewUserRepository() *UserRepository {
	return &UserRepository{profiles: make(map[string]domain.UserProfile)}
}

// FindByEmail returns the profile stored for the email. Lookup is case insensitive.
func (r *UserRepository) FindByEmail(_ context.Context, email string) (domain.UserProfile, error) {
	key := normaliseEmail(email)
	if key == "" {
		return domain.UserProfile{}, invalidError("user.find", "email is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	profile, ok := r.profiles[key]
	if !ok {
		return domain.UserProfile{}, notFoundError("user.find", "user not found")
	}
	return profile, nil
}

// Upsert stores the profile, replacing any previous state for the email.
func (r *UserRepository) Upsert(_ context.Context, profile domain.UserProfile) (domain.UserProfile, error) {
	key := normaliseEmail(profile.Email)
	if key == "" {
		return domain.UserProfile{}, invalidError("user.upsert", "email is required")
	}

	stored := profile
	stored.Email = key

	r.mu.Lock()
	r.profiles[key] = stored
	r.mu.Unlock()
	return stored, nil
}
