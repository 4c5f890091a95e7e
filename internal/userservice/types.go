package userservice

import (
	"database/sql"
	"time"

	"github.com/mirabelledev/inkwell/internal/common"
)

const (
	// AdminUserID is the reserved identifier of the sole administrator: the
	// first account ever registered.
	AdminUserID = 1

	SessionTokenTime time.Duration = 7 * 24 * time.Hour
)

var (
	AnonymousUser = User{}
)

type UserService struct {
	m *DBModel
	c *common.Cache
}

type DBModel struct {
	db *sql.DB
}

type User struct {
	ID        int       `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Password  Password  `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

type Password struct {
	Plain string `json:"-"`
	hash  []byte `json:"-"`
}

// Session is a server-side login record. Only the SHA-256 hash of the token
// is stored; the plain form travels to the client inside a signed cookie.
type Session struct {
	Plain  string    `json:"-"`
	Hash   []byte    `json:"-"`
	UserID int       `json:"-"`
	Expiry time.Time `json:"-"`
}
