// Package auth verifies bearer credentials into caller identities
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/bobmcallan/haito/internal/common"
	"github.com/bobmcallan/haito/internal/models"
)

// ErrInvalidToken is returned for any credential that fails verification.
var ErrInvalidToken = errors.New("invalid token")

// JWTVerifier implements interfaces.IdentityVerifier for HS256 tokens.
type JWTVerifier struct {
	secret   []byte
	issuer   string
	audience string
}

// NewJWTVerifier creates a verifier. Issuer and audience are checked only
// when non-empty.
func NewJWTVerifier(secret, issuer, audience string) *JWTVerifier {
	return &JWTVerifier{
		secret:   []byte(secret),
		issuer:   issuer,
		audience: audience,
	}
}

// NewJWTVerifierFromConfig returns nil when no secret is configured.
func NewJWTVerifierFromConfig(cfg common.AuthConfig) *JWTVerifier {
	if strings.TrimSpace(cfg.JWTSecret) == "" {
		return nil
	}
	return NewJWTVerifier(cfg.JWTSecret, cfg.Issuer, cfg.Audience)
}

type identityClaims struct {
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// Verify parses and validates the token and maps its claims to an Identity.
func (v *JWTVerifier) Verify(ctx context.Context, token string) (*models.Identity, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}
	if v.audience != "" {
		opts = append(opts, jwt.WithAudience(v.audience))
	}

	claims := &identityClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.secret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}

	return &models.Identity{
		UserID: claims.Subject,
		Email:  claims.Email,
		Name:   claims.Name,
	}, nil
}

// Sign issues an HS256 token for an identity. Used by tests and local tooling.
func (v *JWTVerifier) Sign(id models.Identity, claims jwt.RegisteredClaims) (string, error) {
	claims.Subject = id.UserID
	if v.issuer != "" && claims.Issuer == "" {
		claims.Issuer = v.issuer
	}
	if v.audience != "" && len(claims.Audience) == 0 {
		claims.Audience = jwt.ClaimStrings{v.audience}
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, identityClaims{
		Email:            id.Email,
		Name:             id.Name,
		RegisteredClaims: claims,
	})
	return tok.SignedString(v.secret)
}
