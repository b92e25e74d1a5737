package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

const (
	defaultSessionTTL = 24 * time.Hour
	defaultIssuer     = "biocart-api"
)

var (
	// ErrTokenExpired signals that the provided session token has expired.
	ErrTokenExpired = errors.New("auth: session token expired")
	// ErrTokenInvalid signals that the provided session token is invalid.
	ErrTokenInvalid = errors.New("auth: session token invalid")
)

// SessionClaims is the JWT claim set carried by session tokens.
type SessionClaims struct {
	Name string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// SessionManager issues and verifies HS256 session tokens keyed by email.
type SessionManager struct {
	secret []byte
	issuer string
	ttl    time.Duration
	clock  func() time.Time
}

// SessionOption customises SessionManager construction.
type SessionOption func(*SessionManager)

// WithSessionTTL overrides the token lifetime.
func WithSessionTTL(ttl time.Duration) SessionOption {
	return func(m *SessionManager) {
		if ttl > 0 {
			m.ttl = ttl
		}
	}
}

// WithSessionIssuer overrides the issuer claim.
func WithSessionIssuer(issuer string) SessionOption {
	return func(m *SessionManager) {
		issuer = strings.TrimSpace(issuer)
		if issuer != "" {
			m.issuer = issuer
		}
	}
}

// WithSessionClock injects the time source, primarily for tests.
func WithSessionClock(clock func() time.Time) SessionOption {
	return func(m *SessionManager) {
		if clock != nil {
			m.clock = clock
		}
	}
}

// NewSessionManager constructs a SessionManager with the shared signing secret.
func NewSessionManager(secret string, opts ...SessionOption) (*SessionManager, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return nil, errors.New("auth: session secret is required")
	}

	m := &SessionManager{
		secret: []byte(secret),
		issuer: defaultIssuer,
		ttl:    defaultSessionTTL,
		clock:  time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}
	return m, nil
}

// Issue mints a signed session token for the supplied identity.
func (m *SessionManager) Issue(email, name string) (string, time.Time, error) {
	if m == nil {
		return "", time.Time{}, errors.New("auth: session manager not initialised")
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", time.Time{}, fmt.Errorf("%w: email is required", ErrTokenInvalid)
	}

	now := m.clock().UTC()
	expiresAt := now.Add(m.ttl)
	claims := SessionClaims{
		Name: strings.TrimSpace(name),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.issuer,
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign session token: %w", err)
	}
	return signed, expiresAt, nil
}

// Verify parses and validates a session token, returning the identity it carries.
func (m *SessionManager) Verify(tokenStr string) (*Identity, error) {
	if m == nil {
		return nil, errors.New("auth: session manager not initialised")
	}
	tokenStr = strings.TrimSpace(tokenStr)
	if tokenStr == "" {
		return nil, ErrTokenInvalid
	}

	claims := &SessionClaims{}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(func() time.Time { return m.clock().UTC() }),
	)
	token, err := parser.ParseWithClaims(tokenStr, claims, func(*jwt.Token) (any, error) {
		return m.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	if !token.Valid {
		return nil, ErrTokenInvalid
	}

	email := strings.ToLower(strings.TrimSpace(claims.Subject))
	if email == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrTokenInvalid)
	}
	if m.issuer != "" && claims.Issuer != m.issuer {
		return nil, fmt.Errorf("%w: unexpected issuer", ErrTokenInvalid)
	}

	return &Identity{Email: email, Name: claims.Name}, nil
}
