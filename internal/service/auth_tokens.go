package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/facturaja/facturaja-bff/internal/domain"

	"github.com/golang-jwt/jwt/v5"
)

const tokenType = "session"

// JWTClaims represents the custom claims of the browser token. The token
// only names a session; the upstream token never leaves the server.
type JWTClaims struct {
	Sid  string `json:"sid"`
	Role string `json:"role"`
	Type string `json:"type"`
	jwt.RegisteredClaims
}

// ValidateToken checks the signature, expiry and type of a browser token.
func (s *AuthService) ValidateToken(tokenString string) (*JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, &domain.ErrUnauthorized{Message: "Token inválido ou expirado"}
	}

	claims, ok := token.Claims.(*JWTClaims)
	if !ok || !token.Valid {
		return nil, &domain.ErrUnauthorized{Message: "Token inválido"}
	}
	if claims.Type != tokenType || claims.Sid == "" {
		return nil, &domain.ErrUnauthorized{Message: "Tipo de token inválido"}
	}
	return claims, nil
}

// Authenticate resolves a browser token to its live session.
func (s *AuthService) Authenticate(ctx context.Context, tokenString string) (*domain.Session, error) {
	claims, err := s.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}

	sess, err := s.sessions.Get(ctx, claims.Sid)
	if err != nil {
		var notFound *domain.ErrNotFound
		if errors.As(err, &notFound) {
			return nil, &domain.ErrUnauthorized{Message: "Sessão terminada ou expirada"}
		}
		return nil, fmt.Errorf("load session: %w", err)
	}
	if time.Now().After(sess.ExpiresAt) {
		_ = s.sessions.Delete(ctx, sess.ID)
		return nil, &domain.ErrUnauthorized{Message: "Sessão expirada"}
	}
	return sess, nil
}

func (s *AuthService) signSessionToken(sess *domain.Session) (string, error) {
	claims := JWTClaims{
		Sid:  sess.ID,
		Role: sess.Role,
		Type: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(sess.CreatedAt),
			ExpiresAt: jwt.NewNumericDate(sess.ExpiresAt),
			Issuer:    "facturaja-bff",
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}
