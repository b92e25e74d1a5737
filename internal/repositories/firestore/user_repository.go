package firestore

import (
	"context"
	"errors"
	"time"

	domain "github.com/biocart/api/internal/domain"
	pfirestore "github.com/biocart/api/internal/platform/firestore"
	"github.com/biocart/api/internal/repositories"
)

const userCollection = "users"

// UserRepository persists user profiles in Firestore keyed by normalized email.
type UserRepository struct {
	base *pfirestore.BaseRepository[userDocument]
}

var _ repositories.UserRepository = (*UserRepository)(nil)

// NewUserRepository constructs a Firestore-backed user repository.
func NewUserRepository(provider *pfirestore.Provider) (*UserRepository, error) {
	if provider == nil {
		return nil, errors.New("user repository requires firestore provider")
	}
	base := pfirestore.NewBaseRepository[userDocument](provider, userCollection, nil, nil)
	return &UserRepository{base: base}, nil
}

// FindByEmail loads the profile stored for the email. Lookup is case insensitive.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (domain.UserProfile, error) {
	if r == nil || r.base == nil {
		return domain.UserProfile{}, errors.New("user repository not initialised")
	}
	key := normaliseEmail(email)
	if key == "" {
		return domain.UserProfile{}, errors.New("user repository: email is required")
	}

	doc, err := r.base.Get(ctx, key)
	if err != nil {
		return domain.UserProfile{}, err
	}
	return doc.Data.toDomain(key), nil
}

// Upsert replaces the stored profile for the email.
func (r *UserRepository) Upsert(ctx context.Context, profile domain.UserProfile) (domain.UserProfile, error) {
	if r == nil || r.base == nil {
		return domain.UserProfile{}, errors.New("user repository not initialised")
	}
	key := normaliseEmail(profile.Email)
	if key == "" {
		return domain.UserProfile{}, errors.New("user repository: email is required")
	}

	doc := userDocument{
		Name:      profile.Name,
		Phone:     profile.Phone,
		Address:   profile.Address,
		UpdatedAt: profile.UpdatedAt.UTC(),
	}
	if _, err := r.base.Set(ctx, key, doc); err != nil {
		return domain.UserProfile{}, err
	}
	return doc.toDomain(key), nil
}

type userDocument struct {
	Name      string    `firestore:"name"`
	Phone     string    `firestore:"phone,omitempty"`
	Address   string    `firestore:"address,omitempty"`
	UpdatedAt time.Time `firestore:"updatedAt"`
}

func (d userDocument) toDomain(email string) domain.UserProfile {
	return domain.UserProfile{
		Email:     email,
		Name:      d.Name,
		Phone:     d.Phone,
		Address:   d.Address,
		UpdatedAt: d.UpdatedAt,
	}
}
