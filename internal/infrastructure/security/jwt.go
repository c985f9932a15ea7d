// Package security provides JWT token utilities
package security

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// SessionClaims is the decoded identity carried by a session token.
// Admin is true only for tokens minted by the operator login; ordinary
// session tokens can never carry it regardless of their user id.
type SessionClaims struct {
	UserID string
	Email  string
	Guest  bool
	Admin  bool
}

// ValidateJWT validates a JWT token and returns the claims
func ValidateJWT(tokenString, jwtSecret string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(jwtSecret), nil
	})
	if err != nil {
		return nil, err
	}
	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, errors.New("invalid token")
}

// SessionFromClaims extracts session identity from JWT claims
func SessionFromClaims(claims jwt.MapClaims) *SessionClaims {
	userID, ok := claims["userId"].(string)
	if !ok || userID == "" {
		return nil
	}

	session := &SessionClaims{UserID: userID}
	if email, ok := claims["email"].(string); ok {
		session.Email = email
	}
	if guest, ok := claims["guest"].(bool); ok {
		session.Guest = guest
	}
	if tokenType, ok := claims["type"].(string); ok && tokenType == "admin" {
		session.Admin = true
	}
	return session
}

// GenerateSessionToken creates a JWT token for a user session
func GenerateSessionToken(userID, email string, guest bool, jwtSecret string, expiry time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"userId": userID,
		"email":  email,
		"guest":  guest,
		"type":   "session",
		"iat":    time.Now().UTC().Unix(),
		"exp":    time.Now().UTC().Add(expiry).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(jwtSecret))
}

// GenerateAdminToken creates a token for the operator session. The
// "admin" type claim is what grants operator access; a session token
// claiming the admin user id does not.
func GenerateAdminToken(jwtSecret string, expiry time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"userId": "admin",
		"type":   "admin",
		"iat":    time.Now().UTC().Unix(),
		"exp":    time.Now().UTC().Add(expiry).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(jwtSecret))
}
