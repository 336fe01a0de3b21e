package usecase

import (
	"time"

	"madhughor-backend/internal/domain"

	"github.com/golang-jwt/jwt/v5"
)

type UserRepo interface {
	GetUserBySubject(subject string) (*domain.AdminUser, bool)
	HasRole(userID string, role domain.Role) bool
}

// IdentityClient exchanges a provider login code for the provider's
// stable subject. Credential handling stays with the provider.
type IdentityClient interface {
	Exchange(code string) (subject, email string, err error)
}

// AuthService gates the admin console. It does not create accounts:
// operators are provisioned out of band in user_roles, and only the
// admin role gets a token.
type AuthService struct {
	Repo      UserRepo
	Identity  IdentityClient
	JWTSecret string
	TokenTTL  time.Duration
}

func (s *AuthService) Login(code string) (string, *domain.AdminUser, error) {
	subject, _, err := s.Identity.Exchange(code)
	if err != nil {
		return "", nil, err
	}
	u, ok := s.Repo.GetUserBySubject(subject)
	if !ok {
		return "", nil, ErrForbidden("not an operator account")
	}
	if !s.Repo.HasRole(u.UserID, domain.RoleAdmin) {
		return "", nil, ErrForbidden("admin role required")
	}
	// The token asserts the admin role; mirror it on the returned user so
	// the response does not depend on how the store filled the row.
	u.Role = domain.RoleAdmin
	ttl := s.TokenTTL
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	claims := jwt.MapClaims{
		"user_id": u.UserID,
		"sub":     u.Subject,
		"role":    string(domain.RoleAdmin),
		"exp":     time.Now().Add(ttl).Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(s.JWTSecret))
	if err != nil {
		return "", nil, err
	}
	return signed, u, nil
}

// Verify returns the user id and role carried by a bearer token.
func (s *AuthService) Verify(token string) (string, string, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (any, error) {
		return []byte(s.JWTSecret), nil
	})
	if err != nil {
		return "", "", err
	}
	if !parsed.Valid {
		return "", "", ErrForbidden("invalid token")
	}
	m, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return "", "", ErrForbidden("invalid claims")
	}
	uid, _ := m["user_id"].(string)
	role, _ := m["role"].(string)
	return uid, role, nil
}
