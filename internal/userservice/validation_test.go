package userservice

import (
	"testing"

	"github.com/mirabelledev/inkwell/internal/common"
	"github.com/stretchr/testify/assert"
)

func TestValidateEmail(t *testing.T) {
	testCases := []struct {
		name  string
		email string
		valid bool
	}{
		{
			name:  "valid email",
			email: "reader@example.com",
			valid: true,
		},
		{
			name:  "empty email",
			email: "",
			valid: false,
		},
		{
			name:  "missing domain",
			email: "reader@",
			valid: false,
		},
		{
			name:  "missing at sign",
			email: "reader.example.com",
			valid: false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			v := common.NewValidator()
			validateEmail(v, tc.email)
			assert.Equal(t, tc.valid, v.Valid())
		})
	}
}

func TestValidatePassword(t *testing.T) {
	testCases := []struct {
		name     string
		password string
		valid    bool
	}{
		{
			name:     "valid password",
			password: "correct horse battery",
			valid:    true,
		},
		{
			name:     "empty password",
			password: "",
			valid:    false,
		},
		{
			name:     "too short",
			password: "short",
			valid:    false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			v := common.NewValidator()
			validatePassword(v, tc.password)
			assert.Equal(t, tc.valid, v.Valid())
		})
	}
}

func TestValidateSessionToken(t *testing.T) {
	v := common.NewValidator()
	ValidateSessionToken(v, "ABCDEFGHIJKLMNOPQRSTUVWXYZ")
	assert.True(t, v.Valid())

	v = common.NewValidator()
	ValidateSessionToken(v, "tooshort")
	assert.False(t, v.Valid())
}
