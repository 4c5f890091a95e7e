package userservice

import (
	"context"
	"database/sql"
	"errors"

	"github.com/mirabelledev/inkwell/internal/common"
)

var (
	ErrAuthenticationFailure = errors.New("invalid credentials")
	ErrPasswordMismatch      = errors.New("password confirmation does not match")
)

func NewUserService(db *sql.DB, c *common.Cache) *UserService {
	return &UserService{
		m: newUserModel(db),
		c: c,
	}
}

// Register creates a new user account and logs it in. The returned session
// belongs to the freshly created user.
func (s *UserService) Register(ctx context.Context, name, email, password, confirmPassword string) (*Session, error) {
	v := common.NewValidator()
	validateName(v, name)
	validateEmail(v, email)
	validatePassword(v, password)
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	if password != confirmPassword {
		return nil, ErrPasswordMismatch
	}

	u := User{
		Email: email,
		Name:  name,
	}

	err := u.Password.set(password)
	if err != nil {
		return nil, err
	}

	err = s.m.insertUser(ctx, &u)
	if err != nil {
		return nil, err
	}

	return s.m.createSession(ctx, u.ID)
}

// Login verifies the credentials and establishes a new session. An unknown
// email yields ErrNotFound and a wrong password ErrAuthenticationFailure; in
// neither case is any session state touched.
func (s *UserService) Login(ctx context.Context, email, password string) (*Session, error) {
	v := common.NewValidator()
	validateEmail(v, email)
	validatePassword(v, password)
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	user, err := s.m.getUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	ok, err := user.Password.compare(password)
	if err != nil {
		return nil, err
	}

	if !ok {
		return nil, ErrAuthenticationFailure
	}

	return s.m.createSession(ctx, user.ID)
}

// Logout terminates the session identified by the token. It is idempotent:
// logging out an unknown or already removed token succeeds.
func (s *UserService) Logout(ctx context.Context, token string) error {
	v := common.NewValidator()
	ValidateSessionToken(v, token)
	if !v.Valid() {
		return v.ValidationError()
	}

	hash := hashSessionToken(token)
	s.c.Delete(common.CacheKeyUserBySessionToken(hash))

	return s.m.deleteSessionByHash(ctx, hash)
}

// GetUserBySessionToken resolves a session token to its user. Lookups are
// cache-fronted; the cache entry is removed on logout.
func (s *UserService) GetUserBySessionToken(ctx context.Context, token string) (*User, error) {
	v := common.NewValidator()
	ValidateSessionToken(v, token)
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	hash := hashSessionToken(token)

	key := common.CacheKeyUserBySessionToken(hash)
	if cached, found := s.c.Get(key); found {
		if user, ok := cached.(*User); ok {
			return user, nil
		}
	}

	user, err := s.m.getUserBySessionHash(ctx, hash)
	if err != nil {
		return nil, err
	}

	s.c.Set(key, user)

	return user, nil
}

// GetUserByID returns the user with the given identifier.
func (s *UserService) GetUserByID(ctx context.Context, id int) (*User, error) {
	return s.m.getUserByID(ctx, id)
}

// DeleteExpiredSessions removes sessions whose expiry has passed.
func (s *UserService) DeleteExpiredSessions(ctx context.Context) error {
	return s.m.deleteExpiredSessions(ctx)
}

func (u *User) IsAnonymous() bool {
	return u == &AnonymousUser
}

// IsAdmin reports whether the user holds the reserved administrator id.
func (u *User) IsAdmin() bool {
	return u.ID == AdminUserID
}
