package auth

import (
	"crypto/rand"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCode is returned when the submitted room code does not match.
var ErrInvalidCode = errors.New("invalid room code")

// ErrInvalidToken is returned when a presented token fails verification.
var ErrInvalidToken = errors.New("invalid token")

const tokenTTL = 30 * 24 * time.Hour

// Authenticator is the boundary to the auth collaborator: it answers "is this
// request authenticated" and nothing more. When no room code is configured
// the server runs open and every check passes.
//
// The signing secret is random per process, so tokens do not survive a server
// restart (matching the short-lived nature of everything else here).
type Authenticator struct {
	codeHash []byte // bcrypt hash of the configured room code, nil when open
	secret   []byte
}

type claims struct {
	jwt.RegisteredClaims
}

// New builds an authenticator for the given room code. An empty code disables
// authentication.
func New(roomCode string) (*Authenticator, error) {
	a := &Authenticator{secret: make([]byte, 32)}
	if _, err := rand.Read(a.secret); err != nil {
		return nil, err
	}
	if roomCode != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(roomCode), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		a.codeHash = hash
	}
	return a, nil
}

// Required reports whether clients must present a token.
func (a *Authenticator) Required() bool {
	return a.codeHash != nil
}

// Login exchanges a correct room code for a signed token. With auth disabled
// it still issues a token so clients can use one code path.
func (a *Authenticator) Login(code string) (string, error) {
	if a.codeHash != nil {
		if err := bcrypt.CompareHashAndPassword(a.codeHash, []byte(code)); err != nil {
			return "", ErrInvalidCode
		}
	}
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
		},
	})
	return token.SignedString(a.secret)
}

// Verify checks a presented token. It always passes when auth is disabled.
func (a *Authenticator) Verify(tokenString string) error {
	if !a.Required() {
		return nil
	}
	if tokenString == "" {
		return ErrInvalidToken
	}
	parsed, err := jwt.ParseWithClaims(tokenString, &claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return a.secret, nil
	})
	if err != nil || !parsed.Valid {
		return ErrInvalidToken
	}
	return nil
}
