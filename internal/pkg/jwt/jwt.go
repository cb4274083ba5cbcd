package jwt

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

// Service signs and verifies access and refresh tokens. The two kinds use
// independent secrets so a leaked access secret cannot forge refresh tokens
// and vice versa.
type Service struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	jwtlib.RegisteredClaims
}

func New(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *Service {
	return &Service{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

func (s *Service) GenerateAccessToken(userID, email string) (string, error) {
	return s.generate(userID, email, s.accessSecret, s.accessTTL)
}

func (s *Service) GenerateRefreshToken(userID, email string) (string, error) {
	return s.generate(userID, email, s.refreshSecret, s.refreshTTL)
}

func (s *Service) ValidateAccessToken(tokenStr string) (*Claims, error) {
	return validate(tokenStr, s.accessSecret)
}

func (s *Service) ValidateRefreshToken(tokenStr string) (*Claims, error) {
	return validate(tokenStr, s.refreshSecret)
}

func (s *Service) RefreshTTL() time.Duration {
	return s.refreshTTL
}

// HashToken returns the SHA-256 hex digest of a raw token. Only this
// fingerprint is ever stored server-side.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func (s *Service) generate(userID, email string, secret []byte, ttl time.Duration) (string, error) {
	claims := Claims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwtlib.RegisteredClaims{
			ExpiresAt: jwtlib.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwtlib.NewNumericDate(time.Now()),
		},
	}

	token := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

func validate(tokenStr string, secret []byte) (*Claims, error) {
	token, err := jwtlib.ParseWithClaims(tokenStr, &Claims{}, func(t *jwtlib.Token) (any, error) {
		if _, ok := t.Method.(*jwtlib.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
