package userservice

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/mirabelledev/inkwell/internal/common"
	"github.com/stretchr/testify/assert"
)

func setupTestEnvironment(t *testing.T) (*UserService, *sql.DB, func() error) {
	db := common.TestDB(t)
	cache := common.NewCache(5*time.Minute, 10*time.Minute)

	cleanup := func() error {
		_, err := db.Exec("DELETE FROM sessions")
		if err != nil {
			return err
		}

		_, err = db.Exec("DELETE FROM users")
		if err != nil {
			return err
		}

		cache.Flush()

		return nil
	}

	return NewUserService(db, cache), db, cleanup
}

func TestRegister(t *testing.T) {
	s, db, cleanup := setupTestEnvironment(t)

	testCases := []struct {
		name        string
		userName    string
		email       string
		password    string
		confirm     string
		expectedErr error
	}{
		{
			name:     "valid registration",
			userName: "Test Reader",
			email:    "reader@example.com",
			password: "SecretPassword1",
			confirm:  "SecretPassword1",
		},
		{
			name:        "password mismatch",
			userName:    "Test Reader",
			email:       "reader@example.com",
			password:    "SecretPassword1",
			confirm:     "SomethingElse1",
			expectedErr: ErrPasswordMismatch,
		},
		{
			name:        "empty email",
			userName:    "Test Reader",
			email:       "",
			password:    "SecretPassword1",
			confirm:     "SecretPassword1",
			expectedErr: common.ValidationError{Errors: map[string]string{"email": "must be provided"}},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			session, err := s.Register(ctx, tc.userName, tc.email, tc.password, tc.confirm)
			assert.Equal(t, tc.expectedErr, err)

			var count int
			err = db.QueryRow("SELECT COUNT(*) FROM users").Scan(&count)
			assert.NoError(t, err)

			if tc.expectedErr == nil {
				assert.Equal(t, 1, count)
				assert.NotNil(t, session)

				// the caller is left authenticated as the new user
				user, err := s.GetUserBySessionToken(ctx, session.Plain)
				assert.NoError(t, err)
				assert.Equal(t, tc.email, user.Email)
			} else {
				assert.Equal(t, 0, count)
				assert.Nil(t, session)
			}

			t.Cleanup(func() {
				assert.NoError(t, cleanup())
			})
		})
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	s, db, cleanup := setupTestEnvironment(t)
	t.Cleanup(func() {
		assert.NoError(t, cleanup())
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := s.Register(ctx, "First Reader", "reader@example.com", "SecretPassword1", "SecretPassword1")
	assert.NoError(t, err)

	_, err = s.Register(ctx, "Second Reader", "reader@example.com", "OtherPassword1", "OtherPassword1")
	assert.ErrorIs(t, err, ErrDuplicateEmail)

	// the second call must never create a second user
	var count int
	err = db.QueryRow("SELECT COUNT(*) FROM users").Scan(&count)
	assert.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestLogin(t *testing.T) {
	s, db, cleanup := setupTestEnvironment(t)
	t.Cleanup(func() {
		assert.NoError(t, cleanup())
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := s.Register(ctx, "Test Reader", "reader@example.com", "SecretPassword1", "SecretPassword1")
	assert.NoError(t, err)

	testCases := []struct {
		name        string
		email       string
		password    string
		expectedErr error
	}{
		{
			name:     "correct credentials",
			email:    "reader@example.com",
			password: "SecretPassword1",
		},
		{
			name:        "unknown email",
			email:       "nobody@example.com",
			password:    "SecretPassword1",
			expectedErr: ErrNotFound,
		},
		{
			name:        "wrong password",
			email:       "reader@example.com",
			password:    "WrongPassword1",
			expectedErr: ErrAuthenticationFailure,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var before int
			err := db.QueryRow("SELECT COUNT(*) FROM sessions").Scan(&before)
			assert.NoError(t, err)

			session, err := s.Login(ctx, tc.email, tc.password)
			assert.Equal(t, tc.expectedErr, err)

			var after int
			err = db.QueryRow("SELECT COUNT(*) FROM sessions").Scan(&after)
			assert.NoError(t, err)

			if tc.expectedErr == nil {
				assert.NotNil(t, session)
				assert.Equal(t, before+1, after)
			} else {
				// a failed login must not change session state
				assert.Nil(t, session)
				assert.Equal(t, before, after)
			}
		})
	}
}

func TestLogout(t *testing.T) {
	s, db, cleanup := setupTestEnvironment(t)
	t.Cleanup(func() {
		assert.NoError(t, cleanup())
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	session, err := s.Register(ctx, "Test Reader", "reader@example.com", "SecretPassword1", "SecretPassword1")
	assert.NoError(t, err)

	err = s.Logout(ctx, session.Plain)
	assert.NoError(t, err)

	var count int
	err = db.QueryRow("SELECT COUNT(*) FROM sessions").Scan(&count)
	assert.NoError(t, err)
	assert.Equal(t, 0, count)

	// after logout the token no longer resolves, even via the cache
	_, err = s.GetUserBySessionToken(ctx, session.Plain)
	assert.ErrorIs(t, err, ErrNotFound)

	// logging out twice is fine
	err = s.Logout(ctx, session.Plain)
	assert.NoError(t, err)
}

func TestIsAdmin(t *testing.T) {
	s, _, cleanup := setupTestEnvironment(t)
	t.Cleanup(func() {
		assert.NoError(t, cleanup())
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	first, err := s.Register(ctx, "Site Owner", "owner@example.com", "SecretPassword1", "SecretPassword1")
	assert.NoError(t, err)

	second, err := s.Register(ctx, "Test Reader", "reader@example.com", "SecretPassword1", "SecretPassword1")
	assert.NoError(t, err)

	owner, err := s.GetUserBySessionToken(ctx, first.Plain)
	assert.NoError(t, err)
	assert.True(t, owner.IsAdmin())

	reader, err := s.GetUserBySessionToken(ctx, second.Plain)
	assert.NoError(t, err)
	assert.False(t, reader.IsAdmin())
}
