package auth

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode"

	"taskboard/internal/domain"
	"taskboard/internal/pkg/jwt"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const bcryptCost = 12

// Compared against on the unknown-email path so login latency does not
// reveal whether the email exists.
var dummyPasswordHash []byte

func init() {
	dummyPasswordHash, _ = bcrypt.GenerateFromPassword([]byte("timing-equalizer"), bcryptCost)
}

// Service contains all business logic for registration, login and the
// refresh-token rotation chain.
type Service struct {
	users  UserRepositoryInterface
	tokens RefreshTokenRepositoryInterface
	jwt    tokenCodec
}

func NewService(users UserRepositoryInterface, tokens RefreshTokenRepositoryInterface, jwtService tokenCodec) *Service {
	return &Service{
		users:  users,
		tokens: tokens,
		jwt:    jwtService,
	}
}

func (s *Service) Register(ctx context.Context, req RegisterRequest) (*UserPublic, error) {
	email := normalizeEmail(req.Email)

	exists, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrEmailAlreadyExists
	}

	if !isStrongPassword(req.Password) {
		return nil, ErrWeakPassword
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Email:        email,
		PasswordHash: string(hashed),
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	return &UserPublic{ID: user.ID, Email: user.Email, CreatedAt: user.CreatedAt}, nil
}

func (s *Service) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Burn the same bcrypt cost as the found-user path.
			_ = bcrypt.CompareHashAndPassword(dummyPasswordHash, []byte(req.Password))
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	accessToken, refreshToken, err := s.issueTokenPair(ctx, user.ID, user.Email)
	if err != nil {
		return nil, err
	}

	return &LoginResult{
		User:         UserPublic{ID: user.ID, Email: user.Email, CreatedAt: user.CreatedAt},
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// Refresh rotates a refresh token: the presented token is verified, its
// ledger record consumed and a fresh pair issued. Any failure along the way
// surfaces as the same generic error.
func (s *Service) Refresh(ctx context.Context, refreshRaw string) (*RefreshResult, error) {
	claims, err := s.jwt.ValidateRefreshToken(refreshRaw)
	if err != nil {
		return nil, ErrInvalidRefreshToken
	}

	record, err := s.tokens.FindValid(ctx, jwt.HashToken(refreshRaw), claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidRefreshToken
		}
		return nil, err
	}

	// Exactly one of any concurrent refreshes of the same token gets the
	// row; the others observe it already gone.
	affected, err := s.tokens.ConsumeByID(ctx, record.ID)
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, ErrInvalidRefreshToken
	}

	accessToken, refreshToken, err := s.issueTokenPair(ctx, claims.UserID, claims.Email)
	if err != nil {
		return nil, err
	}

	return &RefreshResult{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// Logout revokes every ledger record matching the presented token. The token
// is not verified first: an expired or tampered cookie must still be
// clearable. An empty token is a no-op success.
func (s *Service) Logout(ctx context.Context, refreshRaw string) error {
	if refreshRaw == "" {
		return nil
	}
	return s.tokens.DeleteByHash(ctx, jwt.HashToken(refreshRaw))
}

func (s *Service) issueTokenPair(ctx context.Context, userID, email string) (string, string, error) {
	accessToken, err := s.jwt.GenerateAccessToken(userID, email)
	if err != nil {
		return "", "", err
	}

	refreshToken, err := s.jwt.GenerateRefreshToken(userID, email)
	if err != nil {
		return "", "", err
	}

	record := &domain.RefreshToken{
		UserID:    userID,
		TokenHash: jwt.HashToken(refreshToken),
		ExpiresAt: time.Now().UTC().Add(s.jwt.RefreshTTL()),
	}
	if err := s.tokens.Create(ctx, record); err != nil {
		return "", "", err
	}

	return accessToken, refreshToken, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func isStrongPassword(password string) bool {
	if len(password) < 8 {
		return false
	}
	var hasUpper, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	return hasUpper && hasDigit
}
