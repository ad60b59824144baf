// Package auth issues and verifies the tokens the HTTP layer runs on:
// short-lived JWT access tokens plus opaque refresh tokens kept in
// redis so they can be rotated and revoked server-side.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/sehee-xx/MoneyToad/internal/cache"
	"github.com/sehee-xx/MoneyToad/internal/config"
)

var (
	ErrInvalidToken        = errors.New("invalid token")
	ErrUnknownRefreshToken = errors.New("unknown or expired refresh token")
)

// TokenService issues and verifies access/refresh token pairs.
type TokenService struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	cache      cache.Cache
	clock      func() time.Time
}

// NewTokenService creates a TokenService.
func NewTokenService(cfg config.AuthConfig, c cache.Cache) *TokenService {
	return &TokenService{
		secret:     []byte(cfg.JWTSecret),
		accessTTL:  cfg.AccessTokenTTL,
		refreshTTL: cfg.RefreshTokenTTL,
		cache:      c,
		clock:      func() time.Time { return time.Now().UTC() },
	}
}

// IssueAccessToken signs a short-lived HS256 JWT for the user.
func (s *TokenService) IssueAccessToken(userID int64) (string, error) {
	now := s.clock()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(userID, 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("signing access token: %w", err)
	}
	return signed, nil
}

// VerifyAccessToken validates signature and expiry, returning the user id.
func (s *TokenService) VerifyAccessToken(raw string) (int64, error) {
	token, err := jwt.ParseWithClaims(raw, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return 0, ErrInvalidToken
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return 0, ErrInvalidToken
	}
	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return 0, ErrInvalidToken
	}
	return userID, nil
}

// IssueRefreshToken stores an opaque token in redis bound to the user.
func (s *TokenService) IssueRefreshToken(ctx context.Context, userID int64) (string, error) {
	token := uuid.NewString()
	key := cache.RefreshTokenKey(token)
	value := []byte(strconv.FormatInt(userID, 10))
	if err := s.cache.Set(ctx, key, value, s.refreshTTL); err != nil {
		return "", fmt.Errorf("storing refresh token: %w", err)
	}
	return token, nil
}

// RotateRefreshToken consumes a refresh token and issues a replacement
// pair. The old token is deleted before the new one is stored so it
// cannot be replayed.
func (s *TokenService) RotateRefreshToken(ctx context.Context, raw string) (access string, refresh string, err error) {
	key := cache.RefreshTokenKey(raw)
	value, found, err := s.cache.Get(ctx, key)
	if err != nil {
		return "", "", fmt.Errorf("looking up refresh token: %w", err)
	}
	if !found {
		return "", "", ErrUnknownRefreshToken
	}
	userID, err := strconv.ParseInt(string(value), 10, 64)
	if err != nil {
		return "", "", ErrUnknownRefreshToken
	}

	if err := s.cache.Delete(ctx, key); err != nil {
		return "", "", fmt.Errorf("revoking refresh token: %w", err)
	}

	access, err = s.IssueAccessToken(userID)
	if err != nil {
		return "", "", err
	}
	refresh, err = s.IssueRefreshToken(ctx, userID)
	if err != nil {
		return "", "", err
	}
	return access, refresh, nil
}
