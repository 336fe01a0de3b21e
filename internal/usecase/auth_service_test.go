package usecase_test

import (
	"errors"
	"testing"
	"time"

	"madhughor-backend/internal/domain"
	"madhughor-backend/internal/infrastructure/repo"
	"madhughor-backend/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubIdentity struct {
	subjects map[string]string
}

func (s *stubIdentity) Exchange(code string) (string, string, error) {
	sub, ok := s.subjects[code]
	if !ok {
		return "", "", errors.New("bad code")
	}
	return sub, sub + "@example.com", nil
}

func newAuthFixture(t *testing.T) (*usecase.AuthService, *repo.MemoryUserRepo) {
	users := repo.NewMemoryUserRepo()
	require.NoError(t, users.PutUser(&domain.AdminUser{
		UserID:  "u-1",
		Subject: "sub-admin",
		Email:   "admin@madhughor.com",
		Role:    domain.RoleAdmin,
	}))
	require.NoError(t, users.PutUser(&domain.AdminUser{
		UserID:  "u-2",
		Subject: "sub-mod",
		Email:   "mod@madhughor.com",
		Role:    domain.RoleModerator,
	}))
	idp := &stubIdentity{subjects: map[string]string{
		"code-admin": "sub-admin",
		"code-mod":   "sub-mod",
		"code-ghost": "sub-ghost",
	}}
	return &usecase.AuthService{Repo: users, Identity: idp, JWTSecret: "test-secret"}, users
}

func TestLogin_AdminGetsToken(t *testing.T) {
	svc, _ := newAuthFixture(t)

	token, user, err := svc.Login("code-admin")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.Equal(t, "u-1", user.UserID)

	uid, role, err := svc.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "u-1", uid)
	assert.Equal(t, "admin", role)
}

func TestLogin_NonAdminRejected(t *testing.T) {
	svc, _ := newAuthFixture(t)

	_, _, err := svc.Login("code-mod")
	var forbidden usecase.ErrForbidden
	assert.ErrorAs(t, err, &forbidden)
}

func TestLogin_UnknownSubjectRejected(t *testing.T) {
	svc, _ := newAuthFixture(t)

	_, _, err := svc.Login("code-ghost")
	var forbidden usecase.ErrForbidden
	assert.ErrorAs(t, err, &forbidden)

	_, _, err = svc.Login("no-such-code")
	assert.Error(t, err)
}

type roleLessUserRepo struct {
	u domain.AdminUser
}

func (r *roleLessUserRepo) GetUserBySubject(subject string) (*domain.AdminUser, bool) {
	if subject != r.u.Subject {
		return nil, false
	}
	cp := r.u
	return &cp, true
}

func (r *roleLessUserRepo) HasRole(userID string, role domain.Role) bool {
	return userID == r.u.UserID && role == domain.RoleAdmin
}

func TestLogin_RoleFilledFromGrant(t *testing.T) {
	// A store may leave the role off the user row and keep it only in
	// the grants table; the login response must still carry it.
	svc := &usecase.AuthService{
		Repo:      &roleLessUserRepo{u: domain.AdminUser{UserID: "u-9", Subject: "sub-9"}},
		Identity:  &stubIdentity{subjects: map[string]string{"code-9": "sub-9"}},
		JWTSecret: "test-secret",
	}

	_, user, err := svc.Login("code-9")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, user.Role)
}

func TestVerify_RejectsTamperedAndExpired(t *testing.T) {
	svc, _ := newAuthFixture(t)

	token, _, err := svc.Login("code-admin")
	require.NoError(t, err)

	other := &usecase.AuthService{JWTSecret: "other-secret"}
	_, _, err = other.Verify(token)
	assert.Error(t, err)

	short, _ := newAuthFixture(t)
	short.TokenTTL = -time.Minute
	expired, _, err := short.Login("code-admin")
	require.NoError(t, err)
	_, _, err = svc.Verify(expired)
	assert.Error(t, err)
}
