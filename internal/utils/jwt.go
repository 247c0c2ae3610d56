package utils // package utils provides helper functions for token creation and hashing

import (
    "errors" // errors builds the sentinel returned for rejected tokens
    "time"   // time utilities for generating expirations

    "github.com/golang-jwt/jwt/v5" // JWT library for creating and verifying signed tokens
)

// AccessTokenTTL is the fixed lifetime of an administrator access token.
const AccessTokenTTL = 24 * time.Hour

// ErrInvalidToken is returned by ParseAccessToken for any token that
// must not be trusted: malformed, forged, expired or signed with an
// unexpected algorithm.
var ErrInvalidToken = errors.New("invalid token")

// AccessToken represents a signed JWT access token along with its expiry.
// The Token field contains the JWT string.  Exp stores the expiration
// timestamp as a time.Time.  Access tokens are sent in the Authorization
// header when calling administrative endpoints.
type AccessToken struct {
    Token string    // the serialized JWT string
    Exp   time.Time // the UTC expiration time
}

// AccessClaims is the claim set carried by an access token.  Subject
// holds the administrator's username.
type AccessClaims struct {
    Role string `json:"role"`
    jwt.RegisteredClaims
}

// NewAccessToken builds and signs an HS256 JWT for an administrator.  It
// takes the signing secret, the username, the role and the issue time.
// The token expires AccessTokenTTL after now.  The JWT includes the
// standard claims subject (sub), expiration (exp) and issued at (iat)
// plus the role.
func NewAccessToken(secret, username, role string, now time.Time) (AccessToken, error) {
    now = now.UTC()
    exp := now.Add(AccessTokenTTL)
    claims := AccessClaims{
        Role: role,
        RegisteredClaims: jwt.RegisteredClaims{
            Subject:   username,
            IssuedAt:  jwt.NewNumericDate(now),
            ExpiresAt: jwt.NewNumericDate(exp),
        },
    }
    // Sign the token with the provided secret and obtain the string form.
    signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
    if err != nil {
        return AccessToken{}, err
    }
    return AccessToken{Token: signed, Exp: exp}, nil
}

// ParseAccessToken verifies the signature and expiry of raw and returns
// its claims.  Only HS256 is accepted and an exp claim is mandatory.
// Every verification failure is reported as ErrInvalidToken.
func ParseAccessToken(secret, raw string) (AccessClaims, error) {
    var claims AccessClaims
    tok, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (interface{}, error) {
        return []byte(secret), nil
    },
        jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
        jwt.WithExpirationRequired(),
        jwt.WithIssuedAt(),
    )
    if err != nil || !tok.Valid || claims.Subject == "" {
        return AccessClaims{}, ErrInvalidToken
    }
    return claims, nil
}
