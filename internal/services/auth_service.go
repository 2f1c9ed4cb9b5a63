package services

import (
	"errors"

	"golang.org/x/crypto/bcrypt"

	"hamsterworld/internal/domain"
	"hamsterworld/internal/repos"
)

var ErrBadCreds = errors.New("invalid login or password")

// AuthService is the cookie-session collaborator. The cart/checkout core
// only ever sees the userID it hands out.
type AuthService struct {
	Users *repos.UserRepo
}

func (s *AuthService) Login(sid, login, password string) (*domain.User, error) {
	u, err := s.Users.ByLogin(login)
	if err != nil {
		return nil, ErrBadCreds
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Hash), []byte(password)) != nil {
		return nil, ErrBadCreds
	}
	if u.Role == domain.RoleBanned {
		return nil, ErrBadCreds
	}
	if err := s.Users.BindSession(sid, u.ID); err != nil {
		return nil, err
	}
	// A fresh login picks up the current role; drop the stale-session marker.
	_ = s.Users.ClearRoleChange(u.ID)
	return u, nil
}

func (s *AuthService) Logout(sid string) error {
	return s.Users.UnbindSession(sid)
}

// CurrentUser resolves a session cookie. Sessions of users whose role
// changed since login are treated as invalid and unbound, forcing re-login.
func (s *AuthService) CurrentUser(sid string) (*domain.User, error) {
	u, err := s.Users.SessionUser(sid)
	if err != nil {
		return nil, err
	}
	changed, err := s.Users.RoleChanged(u.ID)
	if err != nil {
		return nil, err
	}
	if changed || u.Role == domain.RoleBanned {
		_ = s.Users.UnbindSession(sid)
		return nil, ErrBadCreds
	}
	return u, nil
}
