package main

import (
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/mirabelledev/inkwell/internal/userservice"
)

const sessionCookieName = "inkwell_session"

var errInvalidSessionCookie = errors.New("invalid session cookie")

// signSessionToken wraps the opaque session token in an HS256 JWT so the
// cookie value is tamper-evident.
func (app *application) signSessionToken(token string, expiry time.Time) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   token,
		ExpiresAt: jwt.NewNumericDate(expiry),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(app.config.SessionSecret))
}

// verifySessionCookie checks the cookie signature and expiry and returns the
// opaque session token it carries.
func (app *application) verifySessionCookie(value string) (string, error) {
	parsed, err := jwt.ParseWithClaims(value, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errInvalidSessionCookie
		}
		return []byte(app.config.SessionSecret), nil
	})
	if err != nil || !parsed.Valid {
		return "", errInvalidSessionCookie
	}

	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return "", errInvalidSessionCookie
	}

	return claims.Subject, nil
}

func (app *application) setSessionCookie(w http.ResponseWriter, session *userservice.Session) error {
	signed, err := app.signSessionToken(session.Plain, session.Expiry)
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    signed,
		Path:     "/",
		Expires:  session.Expiry,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   app.config.Environment == "production",
	})

	return nil
}

// readSessionToken extracts and verifies the session token from the request
// cookie. A missing cookie is not an error; it returns the empty string.
func (app *application) readSessionToken(r *http.Request) (string, error) {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		return "", nil
	}

	return app.verifySessionCookie(cookie.Value)
}

func (app *application) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
