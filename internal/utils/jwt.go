package utils

import (
	"errors"                     // Error values
	"landestate/internal/domain" // Participant type
	"time"                       // Time for token expiration

	"github.com/golang-jwt/jwt/v5" // JWT library
)

// JWT Claims. Only identity fields are embedded, never the account model.
type Claims struct {
	Kind                 domain.ParticipantKind `json:"kind"`  // user or employee
	ID                   uint                   `json:"id"`    // Account primary key
	Email                string                 `json:"email"` // Login email
	Name                 string                 `json:"name"`  // Display name
	jwt.RegisteredClaims                        // Standard JWT claims
}

// Participant returns the principal the token was issued to
func (c *Claims) Participant() domain.Participant {
	return domain.Participant{Kind: c.Kind, ID: c.ID}
}

// GenerateJWT creates a signed token for a user or employee
func GenerateJWT(p domain.Participant, email, name, secret string, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", errors.New("JWT secret not set")
	}
	now := time.Now()
	claims := Claims{
		Kind:  p.Kind,
		ID:    p.ID,
		Email: email,
		Name:  name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.String(),                     // e.g. employee:7
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)), // Token expiry
			IssuedAt:  jwt.NewNumericDate(now),          // Issued at current time
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims) // Create token with claims
	return token.SignedString([]byte(secret))                  // Sign the token with the secret
}

// ParseJWT parses and validates a JWT token string
func ParseJWT(tokenStr, secret string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (any, error) {
		return []byte(secret), nil // Return the secret key for validation
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	// Check for parsing errors
	if err != nil {
		return nil, err // Return error if parsing fails
	}
	// Validate token and extract claims
	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		if _, err := domain.ParseParticipantKind(string(claims.Kind)); err != nil || claims.ID == 0 {
			return nil, jwt.ErrTokenInvalidClaims
		}
		return claims, nil // Return claims if valid
	}
	// Return error if token is invalid
	return nil, jwt.ErrSignatureInvalid
}
