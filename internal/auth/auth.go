// Package auth issues and verifies session tokens for parents and
// children. Children log in with a 6-digit PIN; PINs are stored as
// bcrypt hashes and never logged.
package auth

import (
	"errors"
	"regexp"
	"time"

	"github.com/dgrijalva/jwt-go"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidToken is returned for missing, malformed, or expired tokens
var ErrInvalidToken = errors.New("invalid session token")

// ErrInvalidPIN is returned when a PIN fails format or hash checks
var ErrInvalidPIN = errors.New("invalid PIN")

var pinPattern = regexp.MustCompile(`^\d{6}$`)

// Claims carries the authenticated actor inside a JWT
type Claims struct {
	UserID   string `json:"user_id"`
	FamilyID string `json:"family_id"`
	Role     string `json:"role"`
	jwt.StandardClaims
}

// Manager signs and verifies session tokens
type Manager struct {
	secret []byte
	maxAge time.Duration
}

// NewManager creates a token manager
func NewManager(secret string, maxAge time.Duration) *Manager {
	return &Manager{secret: []byte(secret), maxAge: maxAge}
}

// IssueToken creates a signed session token for a user
func (m *Manager) IssueToken(userID, familyID, role string) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID:   userID,
		FamilyID: familyID,
		Role:     role,
		StandardClaims: jwt.StandardClaims{
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(m.maxAge).Unix(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", err
	}
	return signed, nil
}

// VerifyToken parses and validates a session token
func (m *Manager) VerifyToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// HashPIN validates a 6-digit PIN and returns its bcrypt hash
func HashPIN(pin string) (string, error) {
	if !pinPattern.MatchString(pin) {
		return "", ErrInvalidPIN
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPIN compares a PIN against its stored hash
func CheckPIN(hash, pin string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(pin)); err != nil {
		return ErrInvalidPIN
	}
	return nil
}
