// Package tokens verifies and mints the bearer credentials carried by
// requests. Verification is the core concern; the Issuer exists solely for
// the login collaborator and is never consulted by the authorization path.
package tokens

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/listly-app/shopping-list-api/internal/app/authz"
	"github.com/listly-app/shopping-list-api/internal/domain"
)

// ErrUnauthenticated is the single error surfaced for any verification
// failure: missing, malformed, badly signed, or expired credentials are
// indistinguishable to the caller.
var ErrUnauthenticated = errors.New("unauthenticated")

type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

type tokenClaims struct {
	RoleID string `json:"role"`
	jwt.RegisteredClaims
}

// Verifier validates HS256 tokens signed with a shared secret.
type Verifier struct {
	secret []byte
	clock  Clock
}

func NewVerifier(secret []byte) *Verifier {
	return NewVerifierWithClock(secret, nil)
}

func NewVerifierWithClock(secret []byte, clock Clock) *Verifier {
	if clock == nil {
		clock = realClock{}
	}
	return &Verifier{secret: secret, clock: clock}
}

// Verify checks the credential and extracts its claims. It is side-effect
// free; a verification failure is terminal for the request.
func (v *Verifier) Verify(credential string) (authz.Claims, error) {
	if credential == "" {
		return authz.Claims{}, ErrUnauthenticated
	}

	var tc tokenClaims
	_, err := jwt.ParseWithClaims(credential, &tc,
		func(t *jwt.Token) (any, error) { return v.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(v.clock.Now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return authz.Claims{}, ErrUnauthenticated
	}
	if tc.Subject == "" || tc.RoleID == "" {
		return authz.Claims{}, ErrUnauthenticated
	}

	return authz.Claims{
		Subject:   domain.UserID(tc.Subject),
		RoleID:    domain.RoleID(tc.RoleID),
		ExpiresAt: tc.ExpiresAt.Time,
	}, nil
}

// Issuer mints credentials for the login flow.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	clock  Clock
}

func NewIssuer(secret []byte, ttl time.Duration) *Issuer {
	return NewIssuerWithClock(secret, ttl, nil)
}

func NewIssuerWithClock(secret []byte, ttl time.Duration, clock Clock) *Issuer {
	if clock == nil {
		clock = realClock{}
	}
	return &Issuer{secret: secret, ttl: ttl, clock: clock}
}

// Issue mints a signed token for the user.
func (i *Issuer) Issue(userID domain.UserID, roleID domain.RoleID) (string, error) {
	now := i.clock.Now()
	tc := tokenClaims{
		RoleID: string(roleID),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   string(userID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, tc).SignedString(i.secret)
}
