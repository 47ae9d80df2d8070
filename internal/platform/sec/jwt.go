// Copyright (c) 2026 WDTP. All rights reserved.
// Author: api@wdtp.dev

// Package sec provides token verification primitives.
//
// # Architecture
//
// This package isolates security-sensitive code (JWT parsing) from the
// domain logic. WDTP never issues tokens itself. Wage reports are anonymous
// by default; an upstream identity provider may mint RS256 tokens that
// attach an opaque submitter ID and a role to a request, and this package
// only verifies them.
package sec

import (
	"crypto/rsa"
	"fmt"
	"os"

	"github.com/golang-jwt/jwt/v5"
)

// AuthClaims represents the payload embedded inside a JWT Access Token.
//
// # Why custom claims?
//
// By embedding the UserID and Role directly inside the JWT, the
// [middleware.Authenticate] can reconstruct the active user context
// WITHOUT querying a user store on every single API request. WDTP has no
// user store at all, so the token is the sole source of identity.
type AuthClaims struct {
	jwt.RegisteredClaims

	// Custom application claims are abbreviated to keep the JWT payload small.
	UserID   string `json:"uid"`
	Username string `json:"unm"`
	Role     string `json:"rol"`
}

// TokenService verifies RS256 JWT tokens against a trusted public key.
type TokenService struct {
	publicKey *rsa.PublicKey
	issuer    string
}

// NewTokenService creates a new TokenService.
// It reads the trusted RSA public key from the provided filesystem path.
func NewTokenService(publicKeyPath, issuer string) (*TokenService, error) {
	publicKeyData, err := os.ReadFile(publicKeyPath)
	if err != nil {
		return nil, fmt.Errorf("sec: failed to read public key from %s: %w", publicKeyPath, err)
	}

	publicKey, err := jwt.ParseRSAPublicKeyFromPEM(publicKeyData)
	if err != nil {
		return nil, fmt.Errorf("sec: failed to parse public key: %w", err)
	}

	return &TokenService{
		publicKey: publicKey,
		issuer:    issuer,
	}, nil
}

// VerifyToken checks the signature and validity of a JWT string.
func (service *TokenService) VerifyToken(tokenString string) (*AuthClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &AuthClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("sec: unexpected signing method: %v", token.Header["alg"])
		}
		return service.publicKey, nil
	}, jwt.WithIssuer(service.issuer))

	if err != nil {
		return nil, fmt.Errorf("sec: invalid token: %w", err)
	}

	claims, ok := token.Claims.(*AuthClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("sec: invalid token claims")
	}

	return claims, nil
}
