package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"

	"taskboard/internal/domain"
	"taskboard/internal/repository"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

// Credentials - username/password login request.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AuthResult - issued identity for a successful login.
type AuthResult struct {
	UserID int64  `json:"user_id"`
	Token  string `json:"token"`
}

// AuthService verifies credentials against stored password hashes and
// issues JWTs. Hashing is HMAC-SHA256 keyed with the server secret.
type AuthService struct {
	users  *repository.UserRepository
	secret []byte
}

func NewAuthService(users *repository.UserRepository, secret string) *AuthService {
	return &AuthService{users: users, secret: []byte(secret)}
}

// HashPassword derives the stored hash for a password.
func (s *AuthService) HashPassword(password string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(password))
	return hex.EncodeToString(mac.Sum(nil))
}

// Authenticate checks the credentials and returns the user id plus a
// fresh token. Unknown usernames and wrong passwords are not
// distinguished in the error.
func (s *AuthService) Authenticate(ctx context.Context, creds Credentials) (*AuthResult, error) {
	if creds.Username == "" || creds.Password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := s.users.GetByUsername(ctx, creds.Username)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	want := s.HashPassword(creds.Password)
	if !hmac.Equal([]byte(want), []byte(user.PasswordHash)) {
		return nil, ErrInvalidCredentials
	}

	token, err := GenerateJWT(user.ID)
	if err != nil {
		return nil, err
	}
	return &AuthResult{UserID: user.ID, Token: token}, nil
}

// Register creates a user with a hashed password.
func (s *AuthService) Register(ctx context.Context, creds Credentials, email, fullName string) (*domain.User, error) {
	if creds.Username == "" || creds.Password == "" {
		return nil, ErrInvalidCredentials
	}
	u := &domain.User{
		Username:     creds.Username,
		Email:        email,
		FullName:     fullName,
		PasswordHash: s.HashPassword(creds.Password),
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}
