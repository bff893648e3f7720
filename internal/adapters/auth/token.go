package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"lionshub/internal/domain"
)

type jwtClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
}

type JWTSessions struct {
	secret []byte
}

// NewJWTSessions returns a combined TokenIssuer/SessionVerifier that signs
// and verifies HS256 JWTs with the given secret.
func NewJWTSessions(secret string) *JWTSessions {
	return &JWTSessions{secret: []byte(secret)}
}

var (
	_ domain.TokenIssuer     = (*JWTSessions)(nil)
	_ domain.SessionVerifier = (*JWTSessions)(nil)
)

func (s *JWTSessions) Issue(userID, email string, expiry time.Duration) (string, error) {
	now := time.Now()
	claims := jwtClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
		},
		Email: email,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

func (s *JWTSessions) Verify(tokenString string) (*domain.Principal, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwtClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	claims, ok := token.Claims.(*jwtClaims)
	if !ok || !token.Valid || claims.Subject == "" {
		return nil, fmt.Errorf("invalid token claims")
	}
	p := &domain.Principal{UserID: claims.Subject, Email: claims.Email}
	if claims.ExpiresAt != nil {
		p.ExpiresAt = claims.ExpiresAt.Time
	}
	return p, nil
}
