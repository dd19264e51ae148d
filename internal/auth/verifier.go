package auth

import (
	"context"
	"errors"
	"fmt"

	"lostwatch/internal/apperr"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"
)

// Claims is what a verified token tells us about the caller.
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email,omitempty"`
}

// Verifier checks bearer tokens against the issuer's JSON Web Key Set.
type Verifier struct {
	issuer   string
	audience string
	keys     keyfunc.Keyfunc
}

// NewVerifier fetches the key set once and keeps it refreshed in the
// background until ctx is done. An unreachable key server is not an error
// here; tokens fail to verify until the keys can be fetched.
func NewVerifier(ctx context.Context, issuer, audience, jwksURL string) (*Verifier, error) {
	kf, err := keyfunc.NewDefaultCtx(ctx, []string{jwksURL})
	if err != nil {
		return nil, apperr.Config("AUTH_JWKS_URL", fmt.Sprintf("cannot use key set: %v", err))
	}
	return &Verifier{issuer: issuer, audience: audience, keys: kf}, nil
}

// Verify validates signature, issuer, audience and expiry. Every failure
// is an auth error.
func (v *Verifier) Verify(ctx context.Context, token string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims,
		v.keys.KeyfuncCtx(ctx),
		jwt.WithIssuer(v.issuer),
		jwt.WithAudience(v.audience),
		jwt.WithExpirationRequired(),
		jwt.WithValidMethods([]string{"RS256", "RS384", "RS512", "ES256", "ES384"}),
	)
	if err != nil {
		return nil, apperr.Auth(reason(err), err)
	}
	return claims, nil
}

func reason(err error) string {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return "token expired"
	case errors.Is(err, jwt.ErrTokenInvalidIssuer):
		return "token issuer not accepted"
	case errors.Is(err, jwt.ErrTokenInvalidAudience):
		return "token audience not accepted"
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return "token signature invalid"
	case errors.Is(err, jwt.ErrTokenMalformed):
		return "token malformed"
	}
	return "invalid token"
}
