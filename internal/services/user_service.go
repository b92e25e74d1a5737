package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/biocart/api/internal/repositories"
)

var (
	errUserRepositoryRequired = errors.New("user service: repository is required")
	errUserClockRequired      = errors.New("user service: clock is required")
)

// ErrUserInvalidInput indicates the caller supplied invalid input.
var ErrUserInvalidInput = errors.New("user service: invalid input")

// ErrUserNotFound indicates the requested profile does not exist.
var ErrUserNotFound = errors.New("user service: not found")

// ErrUserUnavailable indicates the profile backend cannot fulfil the request.
var ErrUserUnavailable = errors.New("user service: unavailable")

// UserServiceDeps wires the repository for profile operations.
type UserServiceDeps struct {
	Repository repositories.UserRepository
	Clock      func() time.Time
	Logger     Logger
}

type userService struct {
	repo   repositories.UserRepository
	now    func() time.Time
	logger Logger
}

// NewUserService constructs a UserService enforcing dependency validation.
func NewUserService(deps UserServiceDeps) (UserService, error) {
	if deps.Repository == nil {
		return nil, errUserRepositoryRequired
	}
	if deps.Clock == nil {
		return nil, errUserClockRequired
	}

	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}

	return &userService{
		repo:   deps.Repository,
		now:    func() time.Time { return deps.Clock().UTC() },
		logger: logger,
	}, nil
}

// GetProfile returns the profile for the email. A profile that has never been
// saved materialises with the email and empty fields.
func (s *userService) GetProfile(ctx context.Context, email string) (UserProfile, error) {
	if s == nil || s.repo == nil {
		return UserProfile{}, ErrUserUnavailable
	}
	key := strings.ToLower(strings.TrimSpace(email))
	if key == "" {
		return UserProfile{}, ErrUserInvalidInput
	}

	profile, err := s.repo.FindByEmail(ctx, key)
	if err != nil {
		if isRepoNotFound(err) {
			return UserProfile{Email: key}, nil
		}
		return UserProfile{}, s.translateRepoError(err)
	}
	return profile, nil
}

// UpdateProfile applies the provided field updates and stores the profile.
func (s *userService) UpdateProfile(ctx context.Context, cmd UpdateProfileCommand) (UserProfile, error) {
	if s == nil || s.repo == nil {
		return UserProfile{}, ErrUserUnavailable
	}
	key := strings.ToLower(strings.TrimSpace(cmd.Email))
	if key == "" {
		return UserProfile{}, ErrUserInvalidInput
	}
	if cmd.Name == nil && cmd.Phone == nil && cmd.Address == nil {
		return UserProfile{}, ErrUserInvalidInput
	}

	profile, err := s.GetProfile(ctx, key)
	if err != nil {
		return UserProfile{}, err
	}

	if cmd.Name != nil {
		profile.Name = strings.TrimSpace(*cmd.Name)
	}
	if cmd.Phone != nil {
		profile.Phone = strings.TrimSpace(*cmd.Phone)
	}
	if cmd.Address != nil {
		profile.Address = strings.TrimSpace(*cmd.Address)
	}
	profile.UpdatedAt = s.now()

	saved, err := s.repo.Upsert(ctx, profile)
	if err != nil {
		return UserProfile{}, s.translateRepoError(err)
	}

	s.logger(ctx, "user.profile_updated", map[string]any{
		"email": saved.Email,
	})
	return saved, nil
}

func (s *userService) translateRepoError(err error) error {
	if err == nil {
		return nil
	}
	var repoErr repositories.RepositoryError
	if errors.As(err, &repoErr) {
		switch {
		case repoErr.IsNotFound():
			return ErrUserNotFound
		case repoErr.IsConflict():
			return ErrUserInvalidInput
		}
	}
	return ErrUserUnavailable
}
