package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrUsernameTaken is returned when registering an existing username.
	ErrUsernameTaken = errors.New("username already taken")
	// ErrInvalidCredentials is returned on a failed login or a bad token.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// AuthUseCase handles registration, login and token verification.
type AuthUseCase struct {
	repository Repository
	logger     *zap.Logger
	secret     []byte
	tokenTTL   time.Duration
}

// NewAuthUseCase creates a new AuthUseCase signing tokens with secret.
func NewAuthUseCase(repository Repository, logger *zap.Logger, secret []byte, tokenTTL time.Duration) *AuthUseCase {
	return &AuthUseCase{
		repository: repository,
		logger:     logger,
		secret:     secret,
		tokenTTL:   tokenTTL,
	}
}

// Register creates a new account with a bcrypt-hashed password.
func (uc *AuthUseCase) Register(ctx context.Context, username, password string) (*User, error) {
	if _, err := uc.repository.GetUserByUsername(ctx, username); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, ErrUserNotFound) {
		return nil, fmt.Errorf("check username: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := NewUser(uuid.New().String(), username, string(hash))
	if err := uc.repository.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	uc.logger.Info("user registered", zap.String("user_id", user.ID), zap.String("username", username))
	return user, nil
}

// Login verifies the password and issues a signed token carrying the
// user id as subject.
func (uc *AuthUseCase) Login(ctx context.Context, username, password string) (string, error) {
	user, err := uc.repository.GetUserByUsername(ctx, username)
	if errors.Is(err, ErrUserNotFound) {
		return "", ErrInvalidCredentials
	}
	if err != nil {
		return "", fmt.Errorf("get user: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", ErrInvalidCredentials
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   user.ID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(uc.tokenTTL)),
	})
	signed, err := token.SignedString(uc.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	uc.logger.Info("user logged in", zap.String("user_id", user.ID))
	return signed, nil
}

// VerifyToken parses a signed token and returns the user id it carries.
func (uc *AuthUseCase) VerifyToken(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return uc.secret, nil
	})
	if err != nil || !token.Valid {
		return "", ErrInvalidCredentials
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return "", ErrInvalidCredentials
	}
	return claims.Subject, nil
}
