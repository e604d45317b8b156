package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"

	"github.com/menuforge/menuforge/internal/shared"
)

// providerClaims mirrors the token payload issued by the identity provider.
type providerClaims struct {
	jwt.RegisteredClaims
	Email        string         `json:"email"`
	Role         string         `json:"role"`
	UserMetadata map[string]any `json:"user_metadata"`
}

// JWKSVerifier validates provider tokens against the provider's JWKS
// endpoint. Keys are fetched and refreshed by keyfunc according to the
// endpoint's cache headers, so token verification itself is never skipped
// or cached across requests.
type JWKSVerifier struct {
	jwks   keyfunc.Keyfunc
	logger *slog.Logger
}

// NewJWKSVerifier constructs a verifier for the given JWKS URL.
func NewJWKSVerifier(ctx context.Context, jwksURL string, logger *slog.Logger) (*JWKSVerifier, error) {
	if jwksURL == "" {
		return nil, errors.New("identity: jwks url cannot be empty")
	}
	jwks, err := keyfunc.NewDefaultCtx(ctx, []string{jwksURL})
	if err != nil {
		return nil, fmt.Errorf("identity: jwks client: %w", err)
	}
	return &JWKSVerifier{jwks: jwks, logger: logger}, nil
}

// Verify parses and validates the raw token. Only asymmetric signatures are
// accepted; anonymous-tier tokens are rejected even when correctly signed.
func (v *JWKSVerifier) Verify(ctx context.Context, raw string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(raw, &providerClaims{}, v.jwks.Keyfunc,
		jwt.WithValidMethods([]string{"RS256", "ES256"}))
	if err != nil || !token.Valid {
		if v.logger != nil {
			v.logger.Debug("token rejected", slog.Any("error", err))
		}
		return nil, shared.ErrInvalidCredential
	}

	claims, ok := token.Claims.(*providerClaims)
	if !ok || claims.Subject == "" {
		return nil, shared.ErrInvalidCredential
	}
	if claims.Role != "authenticated" {
		if v.logger != nil {
			v.logger.Warn("token with non-authenticated role", slog.String("role", claims.Role))
		}
		return nil, shared.ErrInvalidCredential
	}

	return &Claims{
		Subject:  claims.Subject,
		Email:    claims.Email,
		Metadata: claims.UserMetadata,
	}, nil
}
