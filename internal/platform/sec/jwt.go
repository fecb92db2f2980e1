// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package sec verifies access tokens and defines the role hierarchy.
//
// Tokens are minted by the identity service with RS256. This process only
// holds the public key, so it can check a token but never issue one.
package sec

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"os"

	"github.com/golang-jwt/jwt/v5"
)

// ErrMissingSubject is returned for a well-signed token without a user ID.
var ErrMissingSubject = errors.New("sec: token carries no user id")

// AuthClaims is the payload of an access token.
//
// The user ID and role travel inside the token so authentication needs no
// database round trip.
type AuthClaims struct {
	jwt.RegisteredClaims

	UserID   string `json:"uid"`
	Username string `json:"unm"`
	Role     string `json:"rol"`
}

// UserRole returns the role claim as a [UserRole].
func (claims *AuthClaims) UserRole() UserRole {
	return UserRole(claims.Role)
}

// TokenVerifier checks RS256 access tokens against one public key and issuer.
type TokenVerifier struct {
	publicKey *rsa.PublicKey
	parser    *jwt.Parser
}

// NewTokenVerifier reads a PEM public key from publicKeyPath.
func NewTokenVerifier(publicKeyPath, issuer string) (*TokenVerifier, error) {
	data, err := os.ReadFile(publicKeyPath)
	if err != nil {
		return nil, fmt.Errorf("sec: failed to read public key from %s: %w", publicKeyPath, err)
	}

	publicKey, err := jwt.ParseRSAPublicKeyFromPEM(data)
	if err != nil {
		return nil, fmt.Errorf("sec: failed to parse public key: %w", err)
	}

	return NewTokenVerifierFromKey(publicKey, issuer), nil
}

// NewTokenVerifierFromKey builds a verifier around an already parsed key.
func NewTokenVerifierFromKey(publicKey *rsa.PublicKey, issuer string) *TokenVerifier {
	return &TokenVerifier{
		publicKey: publicKey,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
			jwt.WithIssuer(issuer),
			jwt.WithExpirationRequired(),
		),
	}
}

// VerifyToken checks signature, issuer and expiry, and returns the claims.
func (verifier *TokenVerifier) VerifyToken(tokenString string) (*AuthClaims, error) {
	claims := &AuthClaims{}
	_, err := verifier.parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return verifier.publicKey, nil
	})
	if err != nil {
		return nil, fmt.Errorf("sec: invalid token: %w", err)
	}

	if claims.UserID == "" {
		return nil, ErrMissingSubject
	}

	return claims, nil
}
